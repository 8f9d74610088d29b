package bus

import (
	"context"

	"github.com/yungbote/paissadb/internal/realtime"
)

// Bus moves hub messages between processes. A single-process deployment
// runs without one; the hub broadcasts locally.
type Bus interface {
	Publish(ctx context.Context, msg realtime.Message) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error
	Close() error
}
