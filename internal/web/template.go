package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/levelsim/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"onOff": func(b bool) string {
		if b {
			return "ON"
		}
		return "OFF"
	},
	"openClosed": func(b bool) string {
		if b {
			return "CLOSED"
		}
		return "OPEN"
	},
	"pct": func(v float64) string {
		return fmt.Sprintf("%.2f%%", v)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Level Sim</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.closed { color: #c60; font-weight: bold; }
.open { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
canvas { width: 100%; height: 160px; border: 1px solid #ddd; }
</style>
</head>
<body>
<h1>Level Sim</h1>

<h2>State</h2>
<table>
{{if .HasLevel}}<tr><th>Level</th><td id="level">{{pct .Last.Level}}</td></tr>
<tr><th>Measured</th><td id="measured">{{pct .Last.Measured}}</td></tr>{{end}}
<tr><th>High Switch</th><td id="high-switch" class="{{if .Last.HighClosed}}closed{{else}}open{{end}}">{{openClosed .Last.HighClosed}}</td></tr>
<tr><th>Low Switch</th><td id="low-switch" class="{{if .Last.LowClosed}}closed{{else}}open{{end}}">{{openClosed .Last.LowClosed}}</td></tr>
<tr><th>Coil</th><td id="coil" class="{{if .Last.CoilOn}}on{{else}}off{{end}}">{{onOff .Last.CoilOn}}</td></tr>
<tr><th>Pump</th><td id="pump" class="{{if .Last.PumpOn}}on{{else}}off{{end}}">{{onOff .Last.PumpOn}}</td></tr>
</table>

{{if .HasLevel}}
<h2>Trend</h2>
<canvas id="trend" width="600" height="160"></canvas>
{{end}}

{{if .Config.Tank}}
<h2>Process</h2>
<table>
<tr><th>High Setpoint</th><td>{{pct .Config.Tank.HighSP}}</td></tr>
<tr><th>Low Setpoint</th><td>{{pct .Config.Tank.LowSP}}</td></tr>
<tr><th>Fill Rate</th><td>{{.Config.Tank.FillRate}} %/s</td></tr>
<tr><th>Drain Rate</th><td>{{.Config.Tank.DrainRate}} %/s</td></tr>
<tr><th>Noise</th><td>±{{.Config.Tank.NoiseAmp}}</td></tr>
<tr><th>Contact</th><td>{{.Config.Tank.Contact}}</td></tr>
<tr><th>Mode</th><td>{{.Config.Tank.Mode}}</td></tr>
</table>
{{end}}

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Coil ON</th><td>{{.Counts.CoilOn}}</td></tr>
<tr><th>Coil OFF</th><td>{{.Counts.CoilOff}}</td></tr>
<tr><th>Pump ON</th><td>{{.Counts.PumpOn}}</td></tr>
<tr><th>Pump OFF</th><td>{{.Counts.PumpOff}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Mode</th><td>{{.Config.Mode}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Ticks</th><td>{{.Ticks}}</td></tr>
<tr><th>Tick</th><td>{{.Config.TickMs}}ms</td></tr>
<tr><th>Debounce High</th><td>{{.Config.DebounceHighMs}}ms</td></tr>
<tr><th>Debounce Low</th><td>{{.Config.DebounceLowMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> · <a href="/history.json">history</a></p>

<script>
(function() {
  var levelEl = document.getElementById("level");
  var measuredEl = document.getElementById("measured");
  var highEl = document.getElementById("high-switch");
  var lowEl = document.getElementById("low-switch");
  var coilEl = document.getElementById("coil");
  var pumpEl = document.getElementById("pump");
  var canvas = document.getElementById("trend");
  var points = [];
  var maxPts = 420;

  function setOnOff(el, on) {
    el.textContent = on ? "ON" : "OFF";
    el.className = on ? "on" : "off";
  }

  function setSwitch(el, closed) {
    el.textContent = closed ? "CLOSED" : "OPEN";
    el.className = closed ? "closed" : "open";
  }

  function draw() {
    if (!canvas) return;
    var ctx = canvas.getContext("2d");
    var w = canvas.width, h = canvas.height;
    ctx.clearRect(0, 0, w, h);
    ctx.strokeStyle = "#06c";
    ctx.beginPath();
    for (var i = 0; i < points.length; i++) {
      var x = (i / (maxPts - 1)) * w;
      var y = h - (points[i] / 100) * h;
      if (i === 0) ctx.moveTo(x, y); else ctx.lineTo(x, y);
    }
    ctx.stroke();
  }

  function apply(res) {
    if (levelEl && typeof res.level === "number") {
      levelEl.textContent = res.level.toFixed(2) + "%";
      measuredEl.textContent = res.measured.toFixed(2) + "%";
      points.push(res.level);
      if (points.length > maxPts) points.shift();
      draw();
    }
    setSwitch(highEl, res.high_closed);
    setSwitch(lowEl, res.low_closed);
    setOnOff(coilEl, res.coil_on);
    setOnOff(pumpEl, res.pump_on);
  }

  fetch("/history.json").then(function(r) { return r.json(); }).then(function(samples) {
    for (var i = 0; i < samples.length; i++) {
      if (typeof samples[i].result.level === "number") points.push(samples[i].result.level);
    }
    if (points.length > maxPts) points = points.slice(points.length - maxPts);
    draw();
  }).catch(function() {});

  function connect() {
    var proto = location.protocol === "https:" ? "wss:" : "ws:";
    var sock = new WebSocket(proto + "//" + location.host + "/ws");
    sock.onmessage = function(ev) {
      try { apply(JSON.parse(ev.data)); } catch (e) {}
    };
    sock.onclose = function() { setTimeout(connect, 5000); };
  }
  connect();
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() and HasLevel() methods but the template needs
	// plain fields.
	data := struct {
		status.Snapshot
		Uptime   time.Duration
		HasLevel bool
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		HasLevel: snap.HasLevel(),
	}
	indexTmpl.Execute(w, data) //nolint:errcheck
}
