package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"cafe_voice_backend/internal/notify"
	"cafe_voice_backend/platform/config"
	"cafe_voice_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting dispatch worker", "env", cfg.Env, "queue", cfg.DispatchQueueName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	worker, err := notify.NewWorker(cfg, log)
	if err != nil {
		log.Error("failed to initialize dispatch worker", "error", err)
		panic("failed to initialize dispatch worker: " + err.Error())
	}

	workerErr := make(chan error, 1)
	go func() {
		workerErr <- worker.Run()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, stopping worker")
		worker.Shutdown()
	case err := <-workerErr:
		if err != nil {
			log.Error("worker error", "error", err)
			panic("worker error: " + err.Error())
		}
	}
}
