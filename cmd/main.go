package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"booksweep/collector"
	"booksweep/config_space"
	"booksweep/middleware"
	"booksweep/runner"

	log "github.com/sirupsen/logrus"
)

func main() {
	// Create a cancellable root context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-shutdownSignal
		log.Infof("Received shutdown signal. No new simulations will be started.")
		cancel()
	}()

	configPath := os.Getenv("BOOKSWEEP_CONFIG")
	if configPath == "" {
		configPath = "booksweep_config.toml"
	}

	cfg, err := middleware.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration from %s: %v", configPath, err)
	}
	logFile, err := middleware.SetupLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logFile.Close()

	sink, err := middleware.OpenSink(ctx, cfg.Store, cfg.Runner.Parallelism)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.Store.Backend, err)
	}
	defer func() {
		if err := sink.Close(); err != nil {
			log.Errorf("Error closing store: %v", err)
		}
	}()

	// booksweep reparse <dir>
	if len(os.Args) > 2 && os.Args[1] == "reparse" {
		summary, err := runner.Reparse(ctx, os.Args[2], sink)
		if err != nil {
			log.Errorf("Reparse failed: %v", err)
		}
		log.Infof("Reparse finished: parsed=%d, skipped=%d, already_stored=%d",
			summary.Parsed, summary.Skipped, summary.AlreadyDone)
		return
	}

	if err := runner.CheckExecutable(cfg.Simulator.Executable); err != nil {
		log.Fatalf("Simulator preflight failed: %v", err)
	}

	configs, warnings := config_space.Generate(cfg.Tasks)
	log.Infof("Generated %d configs from %d tasks, %d warnings", len(configs), len(cfg.Tasks), len(warnings))

	r, err := runner.New(runner.Options{
		Executable:    cfg.Simulator.Executable,
		WorkDir:       cfg.Runner.WorkDir,
		Parallelism:   cfg.Runner.Parallelism,
		Sink:          sink,
		Render:        middleware.RenderOptions(cfg.Simulator),
		JobTimeout:    time.Duration(cfg.Runner.JobTimeoutSeconds) * time.Second,
		KeepOutput:    cfg.Runner.KeepOutput,
		SkipCompleted: cfg.Runner.SkipCompleted,
	})
	if err != nil {
		log.Fatalf("Failed to create runner: %v", err)
	}

	snap, err := collector.CollectSnapshot(r.Options().WorkDir)
	if err != nil {
		log.Warningf("Failed to collect host facts: %v", err)
	} else {
		snap.LogSummary()
	}

	start := time.Now()
	summary, err := r.Run(ctx, configs)
	log.Infof("Batch finished in %s: total=%d, parsed=%d, skipped=%d, already_stored=%d",
		time.Since(start).Round(time.Millisecond), summary.Total, summary.Parsed, summary.Skipped, summary.AlreadyDone)
	for _, job := range summary.Jobs {
		if job.State == runner.StateSkipped && job.Reason != "" {
			log.Debugf("skipped %s: %s", job.Name(), job.Reason)
		}
	}
	if err != nil {
		log.Errorf("Batch aborted: %v", err)
		_ = sink.Close()
		os.Exit(1)
	}
}
