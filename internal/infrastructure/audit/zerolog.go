package audit

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/MrDNightCore/warden/internal/application/ports"
	"github.com/MrDNightCore/warden/internal/domain"
)

// ZerologSink writes security events as structured log lines. Suspicious
// kinds go out at warn level so they stand out in tailing and alerting.
type ZerologSink struct {
	log zerolog.Logger
}

func NewZerologSink(log zerolog.Logger) *ZerologSink {
	return &ZerologSink{log: log}
}

func (s *ZerologSink) Write(_ context.Context, ev domain.SecurityEvent) error {
	level := zerolog.InfoLevel
	if ev.Kind.Suspicious() {
		level = zerolog.WarnLevel
	}
	e := s.log.WithLevel(level).
		Str("event_id", ev.ID.String()).
		Str("kind", string(ev.Kind)).
		Str("username", ev.Username).
		Str("client_ip", ev.ClientIP).
		Time("at", ev.At)
	if ev.AccountID != nil {
		e = e.Str("account_id", ev.AccountID.String())
	}
	if len(ev.Context) > 0 {
		e = e.Interface("context", ev.Context)
	}
	e.Msg("security event")
	return nil
}

// NewRotatingWriter returns a size-rotated file writer for the audit trail.
// Rotated files are gzipped in place.
func NewRotatingWriter(path string, maxSizeMB, maxBackups, maxAgeDays int) io.Writer {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}
}

var _ ports.EventSink = (*ZerologSink)(nil)
