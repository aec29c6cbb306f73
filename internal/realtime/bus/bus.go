package bus

import (
	"context"

	"github.com/md-ibu786/AURA-PROTO-sub001/internal/realtime"
)

// Bus publishes KG change events for other services (explorer clients) to
// consume.
type Bus interface {
	Publish(ctx context.Context, ev realtime.Event) error
	Close() error
}
