package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/MrDNightCore/warden/internal/application/ports"
	"github.com/MrDNightCore/warden/internal/domain"
)

const sinkTimeout = 3 * time.Second

var (
	eventsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warden_security_events_total",
			Help: "Security events recorded, by kind",
		},
		[]string{"kind"},
	)
	sinkFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "warden_audit_sink_failures_total",
			Help: "Audit sink writes that errored or panicked",
		},
	)
)

// Recorder fans security events out to its sinks. Recording never fails the
// calling operation: sink errors and panics are logged and counted here, and
// a canceled request context does not abort the trail.
type Recorder struct {
	sinks []ports.EventSink
	log   zerolog.Logger
	now   func() time.Time
}

func NewRecorder(log zerolog.Logger, sinks ...ports.EventSink) *Recorder {
	return &Recorder{sinks: sinks, log: log, now: time.Now}
}

// Record stamps the event's ID and timestamp when unset and writes it to
// every sink in order.
func (r *Recorder) Record(ctx context.Context, ev domain.SecurityEvent) {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.At.IsZero() {
		ev.At = r.now().UTC()
	}
	eventsRecorded.WithLabelValues(string(ev.Kind)).Inc()
	for _, sink := range r.sinks {
		r.write(ctx, sink, ev)
	}
}

func (r *Recorder) write(ctx context.Context, sink ports.EventSink, ev domain.SecurityEvent) {
	defer func() {
		if rec := recover(); rec != nil {
			sinkFailures.Inc()
			r.log.Error().Interface("panic", rec).Str("kind", string(ev.Kind)).
				Msg("audit sink panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sinkTimeout)
	defer cancel()
	if err := sink.Write(ctx, ev); err != nil {
		sinkFailures.Inc()
		r.log.Error().Err(err).Str("kind", string(ev.Kind)).Msg("audit sink write failed")
	}
}
