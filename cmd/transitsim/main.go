// Package main implements the entry point for the TransitSim binary.
// TransitSim seeds a transit network scenario and runs it as a set of
// concurrent entity agents coordinating over an in-process message
// broker.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/c360/transitsim/agent"
	"github.com/c360/transitsim/broker"
	"github.com/c360/transitsim/config"
	"github.com/c360/transitsim/metric"
	"github.com/c360/transitsim/seed"
	"github.com/c360/transitsim/sim"
)

const appName = "transitsim"

const shutdownTimeout = 5 * time.Second

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

type cliFlags struct {
	configPath   string
	scenario     string
	duration     time.Duration
	passengers   int
	messaging    bool
	messagingSet bool
	eventLog     string
	metricsOn    bool
	logLevel     string
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.configPath, "config", "", "path to a YAML configuration file")
	flag.StringVar(&f.scenario, "scenario", "", "scenario to run (overrides config)")
	flag.DurationVar(&f.duration, "duration", 0, "run duration, 0 keeps the configured value")
	flag.IntVar(&f.passengers, "passengers", 0, "passenger count, 0 keeps the scenario default")
	flag.BoolVar(&f.messaging, "messaging", true, "enable the message broker and adapters")
	flag.StringVar(&f.eventLog, "event-log", "", "path of the broker event log (overrides config)")
	flag.BoolVar(&f.metricsOn, "metrics", false, "serve Prometheus metrics (overrides config)")
	flag.StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()
	flag.Visit(func(fl *flag.Flag) {
		if fl.Name == "messaging" {
			f.messagingSet = true
		}
	})
	return f
}

func run() error {
	flags := parseFlags()

	logger := newLogger(flags.logLevel)
	slog.SetDefault(logger)

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	logger.Info("starting", "app", appName, "scenario", cfg.Scenario,
		"duration", cfg.Duration.Std(), "messaging", cfg.Messaging)

	network, err := seed.Build(cfg.Scenario, seed.Params{
		AdmitCapacity: cfg.StopAdmitCapacity,
		Passengers:    flags.passengers,
	})
	if err != nil {
		return err
	}
	logger.Info("network seeded",
		"stations", len(network.Stations),
		"stops", len(network.Stops),
		"routes", len(network.Routes),
		"buses", len(network.Buses),
		"passengers", network.TotalPassengers())

	registry := metric.NewRegistry()

	var metricsServer *metric.Server
	if cfg.Metrics.Enabled {
		metricsServer = metric.NewServer(cfg.Metrics.Addr, cfg.Metrics.Path, registry)
		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				logger.Error("Metrics server error", "error", err)
			}
		}()
		defer func() { _ = metricsServer.Stop(shutdownTimeout) }()
		logger.Info("metrics listening", "addr", cfg.Metrics.Addr, "path", cfg.Metrics.Path)
	}

	opts := []sim.Option{
		sim.WithLogger(logger),
		sim.WithMetrics(registry.Sim()),
		sim.WithPacing(agent.Pacing{Min: cfg.Pacing.Min.Std(), Max: cfg.Pacing.Max.Std()}),
	}

	var eventLog *os.File
	if cfg.Messaging {
		b := broker.NewBroker(logger, registry.Sim())
		if cfg.EventLog != "" {
			eventLog, err = os.Create(cfg.EventLog)
			if err != nil {
				return fmt.Errorf("open event log: %w", err)
			}
			defer eventLog.Close()
			if err := broker.NewRecorder(eventLog).Attach(b); err != nil {
				return err
			}
			logger.Info("recording events", "path", cfg.EventLog)
		}
		opts = append(opts, sim.WithBroker(b))
	}

	coordinator := sim.New(network, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := coordinator.Start(ctx); err != nil {
		return err
	}

	if d := cfg.Duration.Std(); d > 0 {
		select {
		case <-ctx.Done():
			logger.Info("interrupted")
		case <-time.After(d):
			logger.Info("run duration elapsed")
		}
	} else {
		<-ctx.Done()
		logger.Info("interrupted")
	}

	if err := coordinator.Stop(shutdownTimeout); err != nil {
		return err
	}

	logger.Info("done",
		"passengers", network.TotalPassengers(),
		"arrived", coordinator.Arrived())
	return nil
}

// loadConfig reads the config file if given and applies flag overrides.
func loadConfig(flags cliFlags) (config.Config, error) {
	cfg := config.Default()
	if flags.configPath != "" {
		loaded, err := config.Load(flags.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if flags.scenario != "" {
		cfg.Scenario = flags.scenario
	}
	if flags.duration > 0 {
		cfg.Duration = config.Duration(flags.duration)
	}
	if flags.eventLog != "" {
		cfg.EventLog = flags.eventLog
	}
	if flags.metricsOn {
		cfg.Metrics.Enabled = true
	}
	if flags.messagingSet {
		cfg.Messaging = flags.messaging
	}

	return cfg, cfg.Validate()
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
