// Package config loads daemon configuration from a YAML file, environment
// variables, and defaults.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/sweeney/levelsim/internal/sim"
	"github.com/sweeney/levelsim/internal/switches"
)

// Config is the full daemon configuration.
type Config struct {
	Mode           string `mapstructure:"mode"`
	TickMs         int64  `mapstructure:"tick_ms"`
	DebounceHighMs int64  `mapstructure:"debounce_high_ms"`
	DebounceLowMs  int64  `mapstructure:"debounce_low_ms"`
	HeartbeatMs    int64  `mapstructure:"heartbeat_ms"`
	Seed           int64  `mapstructure:"seed"`
	LogLevel       string `mapstructure:"log_level"`
	HistorySize    int    `mapstructure:"history_size"`

	MQTT MQTTConfig `mapstructure:"mqtt"`
	HTTP HTTPConfig `mapstructure:"http"`
	GPIO GPIOConfig `mapstructure:"gpio"`
	Tank sim.Config `mapstructure:"tank"`
}

type MQTTConfig struct {
	Broker   string `mapstructure:"broker"`
	ClientID string `mapstructure:"client_id"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type GPIOConfig struct {
	Chip    string `mapstructure:"chip"`
	PinHigh int    `mapstructure:"pin_high"`
	PinLow  int    `mapstructure:"pin_low"`
}

// Load reads configuration from path. An empty path loads defaults plus
// environment overrides (LEVELSIM_ prefix).
func Load(path string) (*Config, error) {
	vp := viper.New()
	vp.SetConfigType("yaml")

	setDefaults(vp)

	vp.SetEnvPrefix("LEVELSIM")
	vp.AutomaticEnv()

	if path != "" {
		vp.SetConfigFile(path)
		if err := vp.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := vp.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(vp *viper.Viper) {
	def := sim.DefaultConfig()

	vp.SetDefault("mode", "sim")
	vp.SetDefault("tick_ms", 200)
	vp.SetDefault("debounce_high_ms", 200)
	vp.SetDefault("debounce_low_ms", 200)
	vp.SetDefault("heartbeat_ms", 900000)
	vp.SetDefault("seed", 0)
	vp.SetDefault("log_level", "info")
	vp.SetDefault("history_size", 420)

	vp.SetDefault("mqtt.broker", "tcp://127.0.0.1:1883")
	vp.SetDefault("mqtt.client_id", "levelsim")
	vp.SetDefault("http.addr", ":8080")

	vp.SetDefault("gpio.chip", switches.DefaultChip)
	vp.SetDefault("gpio.pin_high", switches.DefaultPinHigh)
	vp.SetDefault("gpio.pin_low", switches.DefaultPinLow)

	vp.SetDefault("tank.high_sp", def.HighSP)
	vp.SetDefault("tank.low_sp", def.LowSP)
	vp.SetDefault("tank.fill_rate", def.FillRate)
	vp.SetDefault("tank.drain_rate", def.DrainRate)
	vp.SetDefault("tank.noise_amp", def.NoiseAmp)
	vp.SetDefault("tank.contact", string(def.Contact))
	vp.SetDefault("tank.mode", string(def.Mode))
	vp.SetDefault("tank.initial_level", def.InitialLevel)
}

// Validate checks ranges and cross-field constraints.
func (c *Config) Validate() error {
	if c.Mode != "sim" && c.Mode != "gpio" {
		return fmt.Errorf("mode must be \"sim\" or \"gpio\", got %q", c.Mode)
	}
	if c.TickMs < 1 {
		return fmt.Errorf("tick_ms must be >= 1, got %d", c.TickMs)
	}
	if c.DebounceHighMs < 0 || c.DebounceLowMs < 0 {
		return fmt.Errorf("debounce must be >= 0, got %d/%d", c.DebounceHighMs, c.DebounceLowMs)
	}
	if c.HeartbeatMs < 0 {
		return fmt.Errorf("heartbeat_ms must be >= 0, got %d", c.HeartbeatMs)
	}
	if c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker must not be empty")
	}
	if c.Mode == "sim" {
		if err := c.Tank.Validate(); err != nil {
			return fmt.Errorf("tank: %w", err)
		}
	}
	if c.Mode == "gpio" {
		if c.GPIO.PinHigh == c.GPIO.PinLow {
			return fmt.Errorf("gpio.pin_high and gpio.pin_low must differ, got %d", c.GPIO.PinHigh)
		}
	}
	return nil
}
