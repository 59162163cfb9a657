package gateway

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Notice types.
const (
	NoticeLoadFailed     = "load_failed"
	NoticeCreated        = "created"
	NoticeUpdated        = "updated"
	NoticeDeleted        = "deleted"
	NoticeMutationFailed = "mutation_failed"
)

// Notice is an out-of-band message about a gateway outcome, the server-side
// equivalent of a toast.
type Notice struct {
	Type    string    `json:"type"`
	Entity  string    `json:"entity"`
	ID      int64     `json:"id,omitempty"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier receives notices. Implementations must not block.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// NopNotifier discards notices.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Notice) {}

// LogNotifier writes notices to a zerolog logger.
type LogNotifier struct {
	Logger zerolog.Logger
}

func (l LogNotifier) Notify(_ context.Context, n Notice) {
	evt := l.Logger.Info()
	if n.Type == NoticeLoadFailed || n.Type == NoticeMutationFailed {
		evt = l.Logger.Warn()
	}
	evt.Str("notice", n.Type).Str("entity", n.Entity).Int64("id", n.ID).Msg(n.Message)
}

// Fanout delivers each notice to every notifier in order.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, n Notice) {
	for _, nt := range f {
		if nt != nil {
			nt.Notify(ctx, n)
		}
	}
}
