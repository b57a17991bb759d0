package ports

import (
	"context"

	"github.com/MrDNightCore/warden/internal/domain"
)

// WebhookEmitter sends security events to an external endpoint.
type WebhookEmitter interface {
	Emit(ctx context.Context, event domain.SecurityEvent) error
}
