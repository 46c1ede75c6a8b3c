package asynqserver

import (
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/quepay/backend/internal/queue/processor"
	"github.com/quepay/backend/internal/queue/task"
	"github.com/quepay/backend/internal/worker"
)

func New(redisClient redis.UniversalClient, workers *worker.Workers) (*asynq.Server, *asynq.ServeMux) {
	mux, queues := getQueues(workers)
	srv := asynq.NewServerFromRedisClient(
		redisClient,
		asynq.Config{
			Concurrency: 10,
			LogLevel:    asynq.ErrorLevel,
			Queues:      queues,
		},
	)

	return srv, mux
}

func getQueues(workers *worker.Workers) (*asynq.ServeMux, map[string]int) {
	mux := asynq.NewServeMux()
	mux.Handle(task.SendVerificationEmailTaskName, processor.NewSendVerificationEmailProcessor(workers))
	queues := map[string]int{
		task.SendVerificationEmailQueueName: 1,
	}
	return mux, queues
}
