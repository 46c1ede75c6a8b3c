package client

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/quepay/backend/internal/queue/task"
)

// Dispatcher enqueues background email deliveries. It is injected into the
// service layer instead of living as an ambient global so tests can swap it.
type Dispatcher struct {
	client *asynq.Client
}

func NewDispatcher(redisClient redis.UniversalClient) *Dispatcher {
	return &Dispatcher{
		client: asynq.NewClientFromRedisClient(redisClient),
	}
}

func (d *Dispatcher) DispatchVerificationEmail(ctx context.Context, email string, verificationCode string) error {
	t, err := task.NewSendVerificationEmailTask(email, verificationCode)
	if err != nil {
		return fmt.Errorf("new send verification email task failed: %w", err)
	}

	if _, err := d.client.EnqueueContext(ctx, t); err != nil {
		return fmt.Errorf("enqueue send verification email task failed: %w", err)
	}

	return nil
}

func (d *Dispatcher) Close() error {
	return d.client.Close()
}
