package queue

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/MrDNightCore/warden/internal/application/ports"
	"github.com/MrDNightCore/warden/internal/domain"
)

const TypeSecurityEvent = "security:event"

// TaskEnqueuer pushes security events onto the Asynq queue for out-of-band
// delivery. It doubles as an audit sink, so the recorder can fan out to the
// queue like any other destination.
type TaskEnqueuer struct {
	client *asynq.Client
	log    zerolog.Logger
}

func NewAsynqEnqueuer(redisOpt asynq.RedisClientOpt, log zerolog.Logger) (*TaskEnqueuer, error) {
	client := asynq.NewClient(redisOpt)
	return &TaskEnqueuer{client: client, log: log}, nil
}

func (q *TaskEnqueuer) Close() error {
	return q.client.Close()
}

func (q *TaskEnqueuer) EnqueueSecurityEvent(ctx context.Context, ev domain.SecurityEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeSecurityEvent, payload, asynq.MaxRetry(3))
	if _, err := q.client.EnqueueContext(ctx, task); err != nil {
		q.log.Warn().Err(err).Str("kind", string(ev.Kind)).Msg("enqueue security event failed")
		return err
	}
	return nil
}

func (q *TaskEnqueuer) Write(ctx context.Context, ev domain.SecurityEvent) error {
	return q.EnqueueSecurityEvent(ctx, ev)
}

var _ ports.EventSink = (*TaskEnqueuer)(nil)
