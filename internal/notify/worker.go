package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"

	"cafe_voice_backend/platform/config"
	"cafe_voice_backend/platform/logger"
)

// Worker consumes preparation tickets from the dispatch queue. The handlers
// log the ticket for the respective station; a printer or display
// integration hangs off the same task names.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetDispatchQueueName()
	if queue == "" {
		queue = "default"
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{server: server, mux: mux, log: log}

	mux.HandleFunc(TaskDispatchBar, w.handleDispatch)
	mux.HandleFunc(TaskDispatchKitchen, w.handleDispatch)

	return w, nil
}

func (w *Worker) handleDispatch(_ context.Context, task *asynq.Task) error {
	payload, err := ParseDispatchPayload(task)
	if err != nil {
		return err
	}

	for _, item := range payload.Items {
		line := item.Name
		if len(item.Customizations) > 0 {
			line += " (" + strings.Join(item.Customizations, ", ") + ")"
		}
		w.log.Info("preparation ticket",
			"order_id", payload.OrderID,
			"area", payload.Area,
			"item", line,
		)
	}
	return nil
}

// Run starts the worker and blocks until Shutdown is called.
func (w *Worker) Run() error {
	return w.server.Run(w.mux)
}

// Shutdown stops the worker gracefully.
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}
