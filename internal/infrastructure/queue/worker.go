package queue

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/MrDNightCore/warden/internal/application/ports"
	"github.com/MrDNightCore/warden/internal/domain"
)

// Worker drains queued security events and pushes them to the configured
// webhook. A failed delivery returns the error to Asynq so the task retries.
type Worker struct {
	srv     *asynq.Server
	mux     *asynq.ServeMux
	emitter ports.WebhookEmitter
	log     zerolog.Logger
}

// NewWorker creates an Asynq server and registers handlers. Call Run to
// start. emitter may be nil, in which case events are logged and dropped.
func NewWorker(redisOpt asynq.RedisClientOpt, emitter ports.WebhookEmitter, log zerolog.Logger) *Worker {
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 2,
		LogLevel:    asynq.InfoLevel,
	})
	mux := asynq.NewServeMux()
	w := &Worker{srv: srv, mux: mux, emitter: emitter, log: log}
	mux.HandleFunc(TypeSecurityEvent, w.handleSecurityEvent)
	return w
}

func (w *Worker) handleSecurityEvent(ctx context.Context, t *asynq.Task) error {
	var ev domain.SecurityEvent
	if err := json.Unmarshal(t.Payload(), &ev); err != nil {
		w.log.Error().Err(err).Msg("security event task payload invalid")
		return err
	}
	if w.emitter == nil {
		w.log.Info().
			Str("kind", string(ev.Kind)).
			Str("username", ev.Username).
			Str("client_ip", ev.ClientIP).
			Msg("security event (log only; configure a webhook URL for delivery)")
		return nil
	}
	if err := w.emitter.Emit(ctx, ev); err != nil {
		w.log.Warn().Err(err).Str("kind", string(ev.Kind)).Msg("webhook delivery failed; will retry")
		return err
	}
	return nil
}

// Run blocks until shutdown. Use Shutdown for graceful stop.
func (w *Worker) Run() error {
	return w.srv.Run(w.mux)
}

// Shutdown stops the worker.
func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}
