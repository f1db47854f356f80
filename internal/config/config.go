// Package config loads the kettle configuration from configs/config.yml,
// KETTLE_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"smart_kettle/internal/logger"
	"smart_kettle/internal/thermal"
)

const envPrefix = "KETTLE"

// Sensor drivers.
const (
	SensorDS18B20 = "ds18b20"
	SensorSim     = "sim"
)

// Heater drivers.
const (
	HeaterGPIO = "gpio"
	HeaterSim  = "sim"
	HeaterNone = "none"
)

// Config is the fully resolved configuration.
type Config struct {
	HTTP    HTTPConfig
	DB      DBConfig
	Log     LogConfig
	Control ControlConfig
	Status  StatusConfig
	Kettle  KettleConfig
	UI      UIConfig
	Sensor  SensorConfig
	Heater  HeaterConfig
	Sim     SimConfig
	MQTT    MQTTConfig
	Auth    AuthConfig
}

type HTTPConfig struct {
	Port string `mapstructure:"port"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ControlConfig tunes the control loop.
type ControlConfig struct {
	Tick         time.Duration `mapstructure:"tick"`
	StallTimeout time.Duration `mapstructure:"stall_timeout"`
}

type StatusConfig struct {
	KeepAlive time.Duration `mapstructure:"keepalive"`
	Buffer    int           `mapstructure:"buffer"`
}

// KettleConfig bounds the targets accepted from users.
type KettleConfig struct {
	MinTarget int `mapstructure:"min_target"`
	MaxTarget int `mapstructure:"max_target"`
}

type UIConfig struct {
	Locale string `mapstructure:"locale"`
}

type SensorConfig struct {
	Driver  string `mapstructure:"driver"`
	BaseDir string `mapstructure:"base_dir"`
	Device  string `mapstructure:"device"`
}

type HeaterConfig struct {
	Driver    string `mapstructure:"driver"`
	Chip      string `mapstructure:"chip"`
	Line      int    `mapstructure:"line"`
	ActiveLow bool   `mapstructure:"active_low"`
}

// SimConfig drives the simulated kettle.
type SimConfig struct {
	AmbientC    float64 `mapstructure:"ambient_c"`
	HeatCPerSec float64 `mapstructure:"heat_c_per_sec"`
	CoolCPerSec float64 `mapstructure:"cool_c_per_sec"`
	Liquid      bool    `mapstructure:"liquid"`
}

// MQTTConfig enables the MQTT bridge when Broker is set.
type MQTTConfig struct {
	Broker   string `mapstructure:"broker"`
	Topic    string `mapstructure:"topic"`
	ClientID string `mapstructure:"client_id"`
}

// AuthConfig protects the JSON API with bearer tokens when Enabled.
type AuthConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.port", "8080")
	v.SetDefault("db.path", "kettle.db")
	v.SetDefault("log.level", logger.InfoLevel)
	v.SetDefault("control.tick", 200*time.Millisecond)
	v.SetDefault("control.stall_timeout", thermal.DefaultStallTimeout)
	v.SetDefault("status.keepalive", 10*time.Second)
	v.SetDefault("status.buffer", 32)
	v.SetDefault("kettle.min_target", 20)
	v.SetDefault("kettle.max_target", 100)
	v.SetDefault("ui.locale", string(thermal.LocalePL))
	v.SetDefault("sensor.driver", SensorDS18B20)
	v.SetDefault("sensor.base_dir", "/sys/bus/w1/devices")
	v.SetDefault("sensor.device", "")
	v.SetDefault("heater.driver", HeaterGPIO)
	v.SetDefault("heater.chip", "gpiochip0")
	v.SetDefault("heater.line", 17)
	v.SetDefault("heater.active_low", false)
	v.SetDefault("sim.ambient_c", 22.0)
	v.SetDefault("sim.heat_c_per_sec", 0.8)
	v.SetDefault("sim.cool_c_per_sec", 0.05)
	v.SetDefault("sim.liquid", true)
	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.topic", "home/kettle")
	v.SetDefault("mqtt.client_id", "smart-kettle")
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", 12*time.Hour)
}

// Flags registers the command-line flags understood by Load.
func Flags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to config file (default configs/config.yml)")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.String("port", "", "HTTP listen port")
	fs.Bool("simulate", false, "use the simulated kettle instead of hardware")
}

// Load resolves the configuration. fs must have been parsed already; it may
// be nil. A missing config file is not an error.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configFile := ""
	if fs != nil {
		configFile, _ = fs.GetString("config")
		if err := bindFlag(v, fs, "log.level", "log-level"); err != nil {
			return nil, err
		}
		if err := bindFlag(v, fs, "http.port", "port"); err != nil {
			return nil, err
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath("configs")
		v.AddConfigPath(".")
		v.SetConfigName("config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if fs != nil {
		if sim, _ := fs.GetBool("simulate"); sim {
			v.Set("sensor.driver", SensorSim)
			v.Set("heater.driver", HeaterSim)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func bindFlag(v *viper.Viper, fs *pflag.FlagSet, key, name string) error {
	f := fs.Lookup(name)
	if f == nil {
		return nil
	}
	if err := v.BindPFlag(key, f); err != nil {
		return fmt.Errorf("bind flag %s: %w", name, err)
	}
	return nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	var errs []error

	if c.Control.Tick <= 0 {
		errs = append(errs, fmt.Errorf("control.tick must be positive"))
	}
	if c.Control.StallTimeout <= c.Control.Tick {
		errs = append(errs, fmt.Errorf("control.stall_timeout (%s) must exceed control.tick (%s)", c.Control.StallTimeout, c.Control.Tick))
	}
	if c.Status.KeepAlive <= 0 {
		errs = append(errs, fmt.Errorf("status.keepalive must be positive"))
	}
	if c.Kettle.MinTarget < 1 {
		errs = append(errs, fmt.Errorf("kettle.min_target must be at least 1"))
	}
	if c.Kettle.MinTarget > c.Kettle.MaxTarget {
		errs = append(errs, fmt.Errorf("kettle.min_target %d exceeds kettle.max_target %d", c.Kettle.MinTarget, c.Kettle.MaxTarget))
	}
	if !thermal.KnownLocale(thermal.Locale(c.UI.Locale)) {
		errs = append(errs, fmt.Errorf("unknown ui.locale %q", c.UI.Locale))
	}
	if !logger.ValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Errorf("unknown log.level %q", c.Log.Level))
	}
	switch c.Sensor.Driver {
	case SensorDS18B20, SensorSim:
	default:
		errs = append(errs, fmt.Errorf("unknown sensor.driver %q", c.Sensor.Driver))
	}
	switch c.Heater.Driver {
	case HeaterGPIO, HeaterSim, HeaterNone:
	default:
		errs = append(errs, fmt.Errorf("unknown heater.driver %q", c.Heater.Driver))
	}
	if c.Heater.Driver == HeaterSim && c.Sensor.Driver != SensorSim {
		errs = append(errs, fmt.Errorf("heater.driver sim requires sensor.driver sim"))
	}
	if c.Auth.Enabled && c.Auth.SigningKey == "" {
		errs = append(errs, fmt.Errorf("auth.signing_key is required when auth.enabled"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
