package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/interrobot/taskrunner/src/features/building"
	"github.com/interrobot/taskrunner/src/features/config"
	"github.com/interrobot/taskrunner/src/features/hosting"
	"github.com/interrobot/taskrunner/src/features/logging"
	"github.com/interrobot/taskrunner/src/features/metrics"
	"github.com/interrobot/taskrunner/src/features/taskrunner"
	"github.com/interrobot/taskrunner/src/infra/sass"
	"github.com/interrobot/taskrunner/src/infra/toolchain"
	"github.com/interrobot/taskrunner/src/infra/watcher"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load configuration
	cfgManager, err := config.Load("taskrunner.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.SetupLogger(cfgManager)
	slog.SetDefault(logger)

	if err := run(cfgManager); err != nil {
		slog.Error("Task runner stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfgManager *config.Manager) error {
	cfg := cfgManager.Get()
	slog.Debug("Configuration loaded", "config", cfgManager.GetYAML())

	if cfg.CheckToolchain {
		err := toolchain.Require(
			toolchain.Requirement{Name: cfg.Script.Compiler, Hint: "npm install -g typescript"},
			toolchain.Requirement{Name: cfg.Script.Bundler, Hint: "npm install -g esbuild"},
			toolchain.Requirement{Name: cfg.Style.Compiler, Hint: "npm install -g sass"},
		)
		if err != nil {
			return fmt.Errorf("missing build dependency: %w", err)
		}
	}

	if err := cfgManager.EnsureDirectories(); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	buildMetrics := metrics.NewBuildMetrics(registry)

	styleCompiler, err := sass.NewCompiler(cfg.Style.Compiler)
	if err != nil {
		return err
	}
	defer styleCompiler.Close()

	styleDispatcher := building.NewStyleDispatcher(cfg.Style, styleCompiler, buildMetrics)
	scriptDispatcher := building.NewScriptDispatcher(cfg.Script, toolchain.NewExec(), buildMetrics)

	if cfg.BuildOnStart {
		for _, builder := range []building.Builder{styleDispatcher, scriptDispatcher} {
			if _, err := builder.Build(context.Background()); err != nil {
				slog.Error("Initial build failed", "error", err)
			}
		}
	}

	styleWatcher, err := watcher.NewWatcher(building.DomainStyle, cfg.Style.SourceDir, styleDispatcher)
	if err != nil {
		return fmt.Errorf("failed to create style watcher: %w", err)
	}
	scriptWatcher, err := watcher.NewWatcher(building.DomainScript, cfg.Script.SourceDir, scriptDispatcher)
	if err != nil {
		return fmt.Errorf("failed to create script watcher: %w", err)
	}

	runner := taskrunner.New(styleWatcher, scriptWatcher)
	if err := runner.Start(context.Background()); err != nil {
		return err
	}

	var servers []*hosting.Server
	for _, serverCfg := range cfg.Servers {
		if !serverCfg.Enabled {
			continue
		}
		server := hosting.NewServer(serverCfg, registry)
		servers = append(servers, server)
		go func() {
			if err := server.Start(); err != nil {
				slog.Error("Server stopped", "server", server.Name(), "error", err)
			}
		}()
	}

	slog.Info("Watching for changes. Press Ctrl+C to stop.", "scss", cfg.Style.SourceDir, "ts", cfg.Script.SourceDir)

	// Wait for a shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down...")

	runner.Stop()

	for _, server := range servers {
		if err := server.Shutdown(); err != nil {
			slog.Error("Failed to shut down server", "server", server.Name(), "error", err)
		}
	}
	slog.Info("Task runner gracefully shut down.")
	return nil
}
