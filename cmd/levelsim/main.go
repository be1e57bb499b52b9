// Command levelsim runs a two-point tank level control loop and publishes
// state to MQTT. In sim mode the tank is simulated; in gpio mode the level
// switches are read from real float switch inputs.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/levelsim/internal/config"
	"github.com/sweeney/levelsim/internal/history"
	"github.com/sweeney/levelsim/internal/mqtt"
	"github.com/sweeney/levelsim/internal/sim"
	"github.com/sweeney/levelsim/internal/status"
	"github.com/sweeney/levelsim/internal/switches"
	"github.com/sweeney/levelsim/internal/web"
	"github.com/sweeney/levelsim/internal/ws"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	mode := flag.String("mode", "", `Run mode: "sim" or "gpio"`)
	tick := flag.Duration("tick", 0, "Control loop interval")
	debounceHigh := flag.Duration("debounce-high", -1, "High switch debounce duration")
	debounceLow := flag.Duration("debounce-low", -1, "Low switch debounce duration")
	broker := flag.String("broker", "", "MQTT broker address")
	heartbeat := flag.Duration("heartbeat", -1, "Heartbeat interval (0 to disable)")
	httpAddr := flag.String("http", "unset", "HTTP status address (empty to disable)")
	seed := flag.Int64("seed", 0, "Noise RNG seed (0 derives from current time)")
	printState := flag.Bool("print-state", false, "Print current switch state and exit (gpio mode)")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	applyFlags(cfg, *mode, *tick, *debounceHigh, *debounceLow, *broker, *heartbeat, *httpAddr, *seed)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	if err := run(cfg, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// applyFlags overrides config values with flags that were set on the command
// line. Flag zero values double as "not set" sentinels, except durations
// which use -1.
func applyFlags(cfg *config.Config, mode string, tick, debounceHigh, debounceLow time.Duration, broker string, heartbeat time.Duration, httpAddr string, seed int64) {
	if mode != "" {
		cfg.Mode = mode
	}
	if tick > 0 {
		cfg.TickMs = tick.Milliseconds()
	}
	if debounceHigh >= 0 {
		cfg.DebounceHighMs = debounceHigh.Milliseconds()
	}
	if debounceLow >= 0 {
		cfg.DebounceLowMs = debounceLow.Milliseconds()
	}
	if broker != "" {
		cfg.MQTT.Broker = broker
	}
	if heartbeat >= 0 {
		cfg.HeartbeatMs = heartbeat.Milliseconds()
	}
	if httpAddr != "unset" {
		cfg.HTTP.Addr = httpAddr
	}
	if seed != 0 {
		cfg.Seed = seed
	}
}

func run(cfg *config.Config, printState bool) error {
	tick := time.Duration(cfg.TickMs) * time.Millisecond
	debounceHigh := time.Duration(cfg.DebounceHighMs) * time.Millisecond
	debounceLow := time.Duration(cfg.DebounceLowMs) * time.Millisecond
	heartbeat := time.Duration(cfg.HeartbeatMs) * time.Millisecond

	var step stepFunc
	var statusTank *sim.Config

	switch cfg.Mode {
	case "gpio":
		reader, err := switches.NewRealReader(cfg.GPIO.Chip, cfg.GPIO.PinHigh, cfg.GPIO.PinLow)
		if err != nil {
			return fmt.Errorf("init gpio: %w", err)
		}
		defer reader.Close()

		if printState {
			high, low, err := reader.Read()
			if err != nil {
				return fmt.Errorf("read gpio: %w", err)
			}
			fmt.Printf("high: %s, low: %s\n", switchString(high), switchString(low))
			return nil
		}

		monitor, err := sim.NewMonitor(cfg.Tank.Contact)
		if err != nil {
			return fmt.Errorf("init monitor: %w", err)
		}
		step = func(dt time.Duration) (sim.StepResult, error) {
			rawHigh, rawLow, err := reader.Read()
			if err != nil {
				return sim.StepResult{}, err
			}
			return monitor.Update(rawHigh, rawLow, dt, debounceHigh, debounceLow), nil
		}

	default: // sim
		if printState {
			return fmt.Errorf("print-state requires gpio mode")
		}
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		tank, err := sim.NewTank(cfg.Tank, sim.NewSeededNoise(seed))
		if err != nil {
			return fmt.Errorf("init tank: %w", err)
		}
		tankCfg := tank.Config()
		statusTank = &tankCfg
		step = func(dt time.Duration) (sim.StepResult, error) {
			return tank.Step(dt, debounceHigh, debounceLow), nil
		}
	}

	publisher, err := mqtt.NewRealPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID)
	if err != nil {
		return fmt.Errorf("connect mqtt: %w", err)
	}
	defer publisher.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		Mode:           cfg.Mode,
		TickMs:         cfg.TickMs,
		DebounceHighMs: cfg.DebounceHighMs,
		DebounceLowMs:  cfg.DebounceLowMs,
		HeartbeatMs:    cfg.HeartbeatMs,
		Seed:           cfg.Seed,
		Broker:         cfg.MQTT.Broker,
		HTTPAddr:       cfg.HTTP.Addr,
		Tank:           statusTank,
	})

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Warnf("failed to publish startup event: %v", err)
	} else {
		log.Info("published startup event")
	}

	hist := history.NewRing(cfg.HistorySize)

	var hub *ws.Hub
	if cfg.HTTP.Addr != "" {
		hub = ws.New()
		hubCtx, hubCancel := context.WithCancel(context.Background())
		defer hubCancel()
		go hub.Run(hubCtx)

		srv := web.New(cfg.HTTP.Addr, tracker, hist, hub)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Errorf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Infof("http status server listening on %s", cfg.HTTP.Addr)
	}

	log.Infof("started: mode=%s tick=%v debounce=%v/%v broker=%s heartbeat=%v",
		cfg.Mode, tick, debounceHigh, debounceLow, cfg.MQTT.Broker, heartbeat)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	deps := loopDeps{
		step:      step,
		publisher: publisher,
		mqttStat:  publisher,
		tracker:   tracker,
		hist:      hist,
		hub:       hub,
	}
	return runLoop(deps, tick, heartbeat, time.Now, ticker.C, sigCh)
}

// stepFunc advances the control loop by dt and returns the resulting state.
type stepFunc func(dt time.Duration) (sim.StepResult, error)

type loopDeps struct {
	step      stepFunc
	publisher mqtt.Publisher
	mqttStat  mqtt.ConnectionStatus
	tracker   *status.Tracker
	hist      *history.Ring
	hub       *ws.Hub
}

func runLoop(d loopDeps, tick, heartbeat time.Duration, now func() time.Time, tickCh <-chan time.Time, sig <-chan os.Signal) error {
	startTime := now()
	lastHeartbeat := startTime
	var prev sim.StepResult
	first := true

	for {
		select {
		case s := <-sig:
			log.Infof("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if d.tracker != nil {
				if d.mqttStat != nil {
					d.tracker.SetMQTTConnected(d.mqttStat.IsConnected())
				}
				snap := d.tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := d.publisher.PublishSystem(event); err != nil {
				log.Warnf("failed to publish shutdown event: %v", err)
			} else {
				log.Info("published shutdown event")
			}
			return nil

		case <-tickCh:
			t := now()
			res, err := d.step(tick)
			if err != nil {
				log.Warnf("step error: %v", err)
				continue
			}

			var events []sim.Event
			if first {
				// First tick establishes the baseline; transitions are
				// reported from the second tick on.
				first = false
			} else {
				events = sim.Diff(prev, res, t)
			}
			prev = res

			if err := d.publisher.PublishSample(res, t); err != nil {
				log.Debugf("sample publish error: %v", err)
			}
			for _, event := range events {
				log.Infof("event: %s (coil=%v pump=%v)", event.Type, event.CoilOn, event.PumpOn)
				if err := d.publisher.PublishEvent(event); err != nil {
					log.Warnf("event publish error: %v", err)
					// Don't crash on publish failure
				}
			}

			if d.tracker != nil {
				d.tracker.Update(res)
				d.tracker.RecordEvents(events)
				if d.mqttStat != nil {
					d.tracker.SetMQTTConnected(d.mqttStat.IsConnected())
				}
			}
			if d.hist != nil {
				d.hist.Append(t, res)
			}
			if d.hub != nil {
				if data, err := json.Marshal(res); err == nil {
					d.hub.Broadcast(data)
				}
			}

			if heartbeat > 0 && t.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = t
				hbEvent := mqtt.SystemEvent{
					Timestamp: t,
					Event:     "HEARTBEAT",
				}
				if d.tracker != nil {
					snap := d.tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
					log.Infof("heartbeat: uptime=%v ticks=%d", snap.Uptime().Truncate(time.Second), snap.Ticks)
				}
				if err := d.publisher.PublishSystem(hbEvent); err != nil {
					log.Warnf("heartbeat publish error: %v", err)
				}
			}
		}
	}
}

func switchString(closed bool) string {
	if closed {
		return "CLOSED"
	}
	return "OPEN"
}
