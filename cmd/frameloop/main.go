package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"
	"github.com/valerio/go-frameloop/frameloop"
	"github.com/valerio/go-frameloop/frameloop/backend"
	"github.com/valerio/go-frameloop/frameloop/backend/headless"
	"github.com/valerio/go-frameloop/frameloop/backend/mqtt"
	"github.com/valerio/go-frameloop/frameloop/backend/terminal"
	"github.com/valerio/go-frameloop/frameloop/config"
	"github.com/valerio/go-frameloop/frameloop/runner"
	"github.com/valerio/go-frameloop/frameloop/timing"
)

func main() {
	app := newApp()

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("Error running frame loop", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "frameloop"
	app.Description = "A frame loop timer with pluggable outputs"
	app.Usage = "frameloop [options]"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "Path to a YAML config file",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "Output backend: headless, terminal or mqtt",
			Value: config.BackendTerminal,
		},
		cli.Float64Flag{
			Name:  "fps",
			Usage: "Scheduler tick rate (headless runs unpaced unless --fps or --adaptive is given)",
			Value: timing.DefaultFPS,
		},
		cli.BoolFlag{
			Name:  "adaptive",
			Usage: "Use the drift-correcting scheduler instead of a plain ticker",
		},
		cli.DurationFlag{
			Name:  "min-refresh",
			Usage: "Minimum delta between animate events, e.g. 50ms",
		},
		cli.Float64Flag{
			Name:  "smoothing",
			Usage: "FPS smoothing coefficient in (0, 1)",
			Value: frameloop.DefaultFPSSmoothing,
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of ticks to run in headless mode (required for headless)",
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save data snapshots every N ticks in headless mode (0 = disabled)",
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save snapshots (default: temp directory)",
		},
		cli.StringFlag{
			Name:  "mqtt-url",
			Usage: "Broker URL for the mqtt backend, e.g. tcp://localhost:1883",
		},
		cli.StringFlag{
			Name:  "mqtt-topic",
			Usage: "Topic the mqtt backend publishes to",
			Value: mqtt.DefaultTopic,
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "debug, info, warn or error",
			Value: "info",
		},
	}
	app.Action = runFrameLoop
	return app
}

func runFrameLoop(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}

	out, err := newBackend(cfg)
	if err != nil {
		return err
	}

	r := runner.New(newScheduler(c, cfg), out, runner.WithControllerOptions(
		frameloop.WithMinRefresh(cfg.MinRefresh),
		frameloop.WithFPSSmoothing(cfg.FPSSmoothing),
	))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return r.Run(ctx, backend.Config{
		Title:    fmt.Sprintf("%s @ %.0f fps", cfg.Backend, cfg.FPS),
		LogLevel: level,
	})
}

// loadConfig layers defaults, the config file, FRAMELOOP_* environment
// variables and explicitly set flags, in that order.
func loadConfig(c *cli.Context) (config.Config, error) {
	var err error
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}
	if cfg, err = cfg.ApplyEnv(); err != nil {
		return cfg, err
	}

	if c.IsSet("backend") {
		cfg.Backend = c.String("backend")
	}
	if c.IsSet("fps") {
		cfg.FPS = c.Float64("fps")
	}
	if c.IsSet("adaptive") {
		cfg.Adaptive = c.Bool("adaptive")
	}
	if c.IsSet("min-refresh") {
		cfg.MinRefresh = c.Duration("min-refresh")
	}
	if c.IsSet("smoothing") {
		cfg.FPSSmoothing = c.Float64("smoothing")
	}
	if c.IsSet("frames") {
		cfg.Frames = c.Int("frames")
	}
	if c.IsSet("snapshot-interval") {
		cfg.Headless.SnapshotInterval = c.Int("snapshot-interval")
	}
	if c.IsSet("snapshot-dir") {
		cfg.Headless.SnapshotDir = c.String("snapshot-dir")
	}
	if c.IsSet("mqtt-url") {
		cfg.Mqtt.URL = c.String("mqtt-url")
	}
	if c.IsSet("mqtt-topic") {
		cfg.Mqtt.Topic = c.String("mqtt-topic")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}

	return cfg, cfg.Validate()
}

func newBackend(cfg config.Config) (backend.Backend, error) {
	switch cfg.Backend {
	case config.BackendHeadless:
		snapshots, err := headless.CreateSnapshotConfig(cfg.Headless.SnapshotInterval, cfg.Headless.SnapshotDir, "frameloop")
		if err != nil {
			return nil, err
		}
		return headless.New(cfg.Frames, snapshots), nil
	case config.BackendMQTT:
		return mqtt.New(cfg.MqttSettings()), nil
	default:
		out := terminal.New()
		out.SetTargetFPS(cfg.FPS)
		return out, nil
	}
}

// newScheduler paces headless runs only when a rate was asked for.
func newScheduler(c *cli.Context, cfg config.Config) timing.Runner {
	paced := cfg.Backend != config.BackendHeadless || c.IsSet("fps") || cfg.Adaptive
	switch {
	case !paced:
		return timing.NewManual()
	case cfg.Adaptive:
		return timing.NewAdaptive(cfg.FPS)
	default:
		return timing.NewTicker(cfg.FPS)
	}
}
