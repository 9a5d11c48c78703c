package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"chatwire/internal/app"
	"chatwire/internal/common/config"
	"chatwire/internal/common/logger"
	"chatwire/internal/supervisor"
)

func main() {
	_ = godotenv.Load()

	role := "primary"
	if supervisor.IsWorkerProcess() {
		role = "worker"
	}

	log, err := logger.New(os.Getenv("LOG_DIR"), "chatwire-"+role, os.Getenv("LOG_LEVEL"))
	if err != nil {
		os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if supervisor.IsWorkerProcess() {
		if err := app.Run(cfg, log); err != nil {
			log.Fatalf("worker failed: %v", err)
		}
		return
	}

	runPrimary(cfg, log)
}

// runPrimary supervises the worker pool until SIGINT/SIGTERM.
func runPrimary(cfg config.Config, log *logger.Logger) {
	spawn, err := supervisor.SelfExecSpawner()
	if err != nil {
		log.Fatalf("failed to build worker spawner: %v", err)
	}

	sup := supervisor.New(supervisor.Config{
		Workers:       cfg.Workers,
		BackoffBase:   cfg.WorkerRestartBackoff,
		BackoffMax:    cfg.WorkerRestartBackoffMax,
		MaxRestarts:   cfg.WorkerMaxRestarts,
		RestartWindow: cfg.WorkerRestartWindow,
	}, spawn, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sup.Run(ctx)
}
