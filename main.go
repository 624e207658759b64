package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/smazurov/switchlight/cmd"
	"github.com/smazurov/switchlight/internal/config"
	"github.com/smazurov/switchlight/internal/events"
	"github.com/smazurov/switchlight/internal/light"
	"github.com/smazurov/switchlight/internal/logging"
	"github.com/smazurov/switchlight/internal/metrics"
	"github.com/smazurov/switchlight/internal/script"
	"github.com/smazurov/switchlight/internal/systemd"
	"github.com/smazurov/switchlight/internal/version"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"switchlight.toml"`

	// Controller settings
	LightPeriodMs         int `help:"Execution cycle period in milliseconds" default:"10" toml:"light.period_ms" env:"LIGHT_PERIOD_MS"`
	LightInboxCapacity    int `help:"Pending command capacity" default:"10" toml:"light.inbox_capacity" env:"LIGHT_INBOX_CAPACITY"`
	LightMaxEnqueueWaitMs int `help:"How long a full inbox blocks a submit before dropping" default:"10" toml:"light.max_enqueue_wait_ms" env:"LIGHT_MAX_ENQUEUE_WAIT_MS"`

	// Features settings
	FeaturesLightTask  bool `help:"Run the light execution loop" default:"true" toml:"features.light_task" env:"FEATURES_LIGHT_TASK"`
	FeaturesDebugPrint bool `help:"Log light transitions and drops at info level" default:"false" toml:"features.debug_print" env:"FEATURES_DEBUG_PRINT"`

	// Output settings
	OutputBackend     string `help:"Output backend (auto, sysfs, serial, memory, noop)" default:"auto" toml:"output.backend" env:"OUTPUT_BACKEND"`
	OutputSysfsRoot   string `help:"sysfs LED class directory" default:"/sys/class/leds" toml:"output.sysfs_root" env:"OUTPUT_SYSFS_ROOT"`
	OutputSysfsGreen  string `help:"sysfs name of the green LED" default:"green_led" toml:"output.sysfs_green" env:"OUTPUT_SYSFS_GREEN"`
	OutputSysfsOrange string `help:"sysfs name of the orange LED" default:"orange_led" toml:"output.sysfs_orange" env:"OUTPUT_SYSFS_ORANGE"`
	OutputSerialPort  string `help:"Tower light serial port" default:"/dev/ttyUSB0" toml:"output.serial_port" env:"OUTPUT_SERIAL_PORT"`
	OutputSerialBaud  int    `help:"Tower light baud rate" default:"9600" toml:"output.serial_baud" env:"OUTPUT_SERIAL_BAUD"`

	// Script settings
	ScriptFile  string `help:"Light script to play at startup" default:"" toml:"script.file" env:"SCRIPT_FILE"`
	ScriptWatch bool   `help:"Replay the script whenever the file changes" default:"false" toml:"script.watch" env:"SCRIPT_WATCH"`

	// Logging settings
	LoggingLevel  string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingLight  string `help:"Light controller logging level" default:"info" toml:"logging.light" env:"LOGGING_LIGHT"`
	LoggingScript string `help:"Script player logging level" default:"info" toml:"logging.script" env:"LOGGING_SCRIPT"`
	LoggingConfig string `help:"Config watcher logging level" default:"info" toml:"logging.config" env:"LOGGING_CONFIG"`
}

func (o *Options) lightConfig() light.Config {
	return light.Config{
		Period:         time.Duration(o.LightPeriodMs) * time.Millisecond,
		InboxCapacity:  o.LightInboxCapacity,
		MaxEnqueueWait: time.Duration(o.LightMaxEnqueueWaitMs) * time.Millisecond,
		TaskEnabled:    o.FeaturesLightTask,
		PrintDebug:     o.FeaturesDebugPrint,
	}
}

func (o *Options) outputConfig() light.OutputConfig {
	return light.OutputConfig{
		Backend:     o.OutputBackend,
		SysfsRoot:   o.OutputSysfsRoot,
		SysfsGreen:  o.OutputSysfsGreen,
		SysfsOrange: o.OutputSysfsOrange,
		SerialPort:  o.OutputSerialPort,
		SerialBaud:  o.OutputSerialBaud,
	}
}

func main() {
	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Load configuration automatically
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		// Initialize logging system
		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"light":  opts.LoggingLight,
				"script": opts.LoggingScript,
				"config": opts.LoggingConfig,
			},
		})

		logger := logging.GetLogger("main")

		ctx, cancel := context.WithCancel(context.Background())
		stopped := make(chan struct{})

		hooks.OnStart(func() {
			defer close(stopped)
			if err := run(ctx, opts, logger); err != nil {
				logger.Error("Switch light failed", "error", err)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down switch light")
			cancel()
			select {
			case <-stopped:
			case <-time.After(5 * time.Second):
				logger.Warn("Timed out waiting for shutdown")
			}
		})
	})

	root := cli.Root()
	root.Use = "switchlight"
	root.Short = "Drive a two-color switch light from asynchronous commands"
	root.Version = version.String()

	root.AddCommand(cmd.CreateSimulateCmd())
	root.AddCommand(cmd.CreateValidateScriptCmd())
	root.AddCommand(cmd.CreateVersionCmd())

	// Run the CLI
	cli.Run()
}

// run brings the light up, plays the configured script and blocks until ctx
// is cancelled.
func run(ctx context.Context, opts *Options, logger *slog.Logger) error {
	lightLogger := logging.GetLogger("light")

	cfg := opts.lightConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Load the script before touching hardware so a bad file fails fast.
	var s *script.Script
	if opts.ScriptFile != "" {
		loaded, err := script.Load(opts.ScriptFile)
		if err != nil {
			return err
		}
		s = &loaded
	}

	out, err := light.NewOutputs(opts.outputConfig(), lightLogger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil {
			logger.Warn("Failed to close light outputs", "error", closeErr)
		}
	}()

	reg := prometheus.NewRegistry()
	eventBus := events.New()
	defer eventBus.Close()

	ctrl, err := light.New(cfg, out, &light.Options{
		Logger:  lightLogger,
		Metrics: metrics.NewLight(reg),
		Bus:     eventBus,
	})
	if err != nil {
		return err
	}

	// Other in-process components reach the light through the bus.
	manager := light.NewManager(ctrl, eventBus, lightLogger, opts.FeaturesDebugPrint)
	manager.Start()
	defer manager.Stop()

	notifier := systemd.NewNotifier(logger)
	g, gctx := errgroup.WithContext(ctx)

	if err := ctrl.Start(gctx); err != nil {
		return err
	}
	g.Go(func() error {
		<-gctx.Done()
		notifier.Stopping()
		<-ctrl.Done()
		return nil
	})
	if cfg.TaskEnabled {
		g.Go(func() error {
			return notifier.Watchdog(gctx, systemd.Progress(func() uint64 {
				return uint64(ctrl.Now())
			}))
		})
	}

	if s != nil {
		player := script.NewPlayer(gctx, ctrl, logging.GetLogger("script"))
		player.Replace(*s)
		defer player.Stop()

		if opts.ScriptWatch {
			watcher := config.NewWatcher(opts.ScriptFile, script.Load, logging.GetLogger("config"))
			watcher.OnReload(player.Replace)
			if err := watcher.Start(gctx); err != nil {
				return err
			}
			defer func() {
				if stopErr := watcher.Stop(); stopErr != nil {
					logger.Warn("Failed to stop script watcher", "error", stopErr)
				}
			}()
		}
	}

	logger.Info("Switch light running",
		"period", cfg.Period,
		"task_enabled", cfg.TaskEnabled,
		"backend", opts.OutputBackend,
		"script", opts.ScriptFile)
	notifier.Ready()

	err = g.Wait()
	logTotals(logger, reg)
	return err
}

// logTotals writes the final metric values, one attribute per series.
func logTotals(logger *slog.Logger, g prometheus.Gatherer) {
	totals, err := metrics.Totals(g)
	if err != nil {
		logger.Warn("Failed to gather light metrics", "error", err)
		return
	}
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		attrs = append(attrs, k, fmt.Sprintf("%g", totals[k]))
	}
	logger.Info("Switch light totals", attrs...)
}
