// Package config loads the frameloop runner settings from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/valerio/go-frameloop/frameloop"
	"github.com/valerio/go-frameloop/frameloop/backend/mqtt"
	"github.com/valerio/go-frameloop/frameloop/timing"
	"gopkg.in/yaml.v2"
)

// Backend names accepted by the runner.
const (
	BackendHeadless = "headless"
	BackendTerminal = "terminal"
	BackendMQTT     = "mqtt"
)

var (
	ErrUnknownBackend = errors.New("config: unknown backend")
	ErrInvalidFPS     = errors.New("config: fps must be a positive finite rate")
	ErrInvalidSmooth  = errors.New("config: fps_smoothing must be in (0, 1)")
	ErrNegativeMin    = errors.New("config: min_refresh must not be negative")
	ErrInvalidFrames  = errors.New("config: headless backend needs a positive frame count")
	ErrMissingBroker  = errors.New("config: mqtt backend needs a broker url")
)

type Headless struct {
	SnapshotInterval int    `yaml:"snapshot_interval" env:"FRAMELOOP_SNAPSHOT_INTERVAL"`
	SnapshotDir      string `yaml:"snapshot_dir"      env:"FRAMELOOP_SNAPSHOT_DIR"`
}

type Mqtt struct {
	URL      string `yaml:"url"       env:"FRAMELOOP_MQTT_URL"`
	Username string `yaml:"username"  env:"FRAMELOOP_MQTT_USERNAME"`
	Password string `yaml:"password"  env:"FRAMELOOP_MQTT_PASSWORD"`
	Topic    string `yaml:"topic"     env:"FRAMELOOP_MQTT_TOPIC"`
	ClientID string `yaml:"client_id" env:"FRAMELOOP_MQTT_CLIENT_ID"`
}

// Config is the runner configuration. Durations accept Go duration strings
// such as "50ms".
type Config struct {
	FPS          float64       `yaml:"fps"           env:"FRAMELOOP_FPS"`
	Adaptive     bool          `yaml:"adaptive"      env:"FRAMELOOP_ADAPTIVE"`
	MinRefresh   time.Duration `yaml:"min_refresh"   env:"FRAMELOOP_MIN_REFRESH"`
	FPSSmoothing float64       `yaml:"fps_smoothing" env:"FRAMELOOP_FPS_SMOOTHING"`
	Backend      string        `yaml:"backend"       env:"FRAMELOOP_BACKEND"`
	Frames       int           `yaml:"frames"        env:"FRAMELOOP_FRAMES"`
	LogLevel     string        `yaml:"log_level"     env:"FRAMELOOP_LOG_LEVEL"`
	Headless     Headless      `yaml:"headless"`
	Mqtt         Mqtt          `yaml:"mqtt"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		FPS:          60,
		FPSSmoothing: frameloop.DefaultFPSSmoothing,
		Backend:      BackendTerminal,
		LogLevel:     "info",
		Mqtt: Mqtt{
			Topic:    mqtt.DefaultTopic,
			ClientID: mqtt.DefaultClientID,
		},
	}
}

// Load reads path on top of the defaults.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode reads YAML from r on top of the defaults. An empty document yields
// the defaults.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(r)
	decoder.SetStrict(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides c with any FRAMELOOP_* environment variables that are
// set. Unset variables leave the current value alone.
func (c Config) ApplyEnv() (Config, error) {
	if err := env.Parse(&c); err != nil {
		return c, fmt.Errorf("config: parse env: %w", err)
	}
	return c, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendHeadless:
		if c.Frames <= 0 {
			return ErrInvalidFrames
		}
	case BackendTerminal:
	case BackendMQTT:
		if c.Mqtt.URL == "" {
			return ErrMissingBroker
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}

	if math.IsNaN(c.FPS) || math.IsInf(c.FPS, 0) || c.FPS <= 0 || timing.FrameDuration(c.FPS) <= 0 {
		return ErrInvalidFPS
	}
	if math.IsNaN(c.FPSSmoothing) || c.FPSSmoothing <= 0 || c.FPSSmoothing >= 1 {
		return ErrInvalidSmooth
	}
	if c.MinRefresh < 0 {
		return ErrNegativeMin
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel ("debug", "info", "warn", "error", optionally with an
// offset such as "info+2").
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: log_level: %w", err)
	}
	return level, nil
}

// MqttSettings converts the mqtt section for the mqtt backend.
func (c Config) MqttSettings() mqtt.Settings {
	return mqtt.Settings{
		URL:      c.Mqtt.URL,
		Username: c.Mqtt.Username,
		Password: c.Mqtt.Password,
		Topic:    c.Mqtt.Topic,
		ClientID: c.Mqtt.ClientID,
	}
}
