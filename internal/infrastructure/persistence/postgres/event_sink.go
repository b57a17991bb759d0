package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MrDNightCore/warden/internal/application/ports"
	"github.com/MrDNightCore/warden/internal/domain"
)

const (
	insertSecurityEventSQL = `INSERT INTO security_events (id, kind, account_id, username, client_ip, context, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	pruneSecurityEventsSQL = `DELETE FROM security_events WHERE occurred_at < $1`
)

// EventSink appends security events to the security_events table for
// after-the-fact investigation. Rows are never updated; the only deletion is
// the retention prune.
type EventSink struct {
	pool *pgxpool.Pool
}

func NewEventSink(pool *pgxpool.Pool) *EventSink {
	return &EventSink{pool: pool}
}

func (s *EventSink) Write(ctx context.Context, ev domain.SecurityEvent) error {
	var accountID *uuid.UUID
	if ev.AccountID != nil {
		id := ev.AccountID.UUID
		accountID = &id
	}
	evCtx := ev.Context
	if evCtx == nil {
		evCtx = map[string]string{}
	}
	_, err := s.pool.Exec(ctx, insertSecurityEventSQL,
		ev.ID, string(ev.Kind), accountID, ev.Username, ev.ClientIP, evCtx, ev.At)
	return err
}

// PruneEventsBefore deletes events recorded before cutoff and reports how
// many rows went away.
func (s *EventSink) PruneEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, pruneSecurityEventsSQL, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ ports.EventSink = (*EventSink)(nil)
var _ ports.EventPruner = (*EventSink)(nil)
