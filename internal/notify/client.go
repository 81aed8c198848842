package notify

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"cafe_voice_backend/internal/conversation"
	"cafe_voice_backend/internal/conversation/domain"
	"cafe_voice_backend/platform/config"
)

// Client enqueues preparation tickets. It implements the conversation
// Dispatcher contract; enqueue failures are reported to the caller for
// logging but never abort a finalized order.
type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
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

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Dispatch enqueues one area's ticket for a finalized order.
func (c *Client) Dispatch(ctx context.Context, orderID string, area domain.Area, items []domain.Item) error {
	if c == nil || c.client == nil {
		return nil
	}

	payload := DispatchPayload{OrderID: orderID, Area: string(area)}
	for _, item := range items {
		payload.Items = append(payload.Items, TicketItem{
			Name:           item.Name,
			Customizations: item.Customizations,
		})
	}

	task, err := NewDispatchTask(payload)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue))
	return err
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}

var _ conversation.Dispatcher = (*Client)(nil)
