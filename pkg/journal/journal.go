package journal

import (
	"context"
	"errors"
	"time"
)

var ErrNoSession = errors.New("no session started")

// Session is one run of the daemon against one keyboard.
type Session struct {
	ID        int64
	Device    string
	Layout    string
	StartedAt time.Time
	EndedAt   *time.Time
	Toggles   int
}

// Toggle is one flip of the layout toggle.
type Toggle struct {
	SessionID int64
	Active    bool
	At        time.Time
}

// Store is implemented by the sqlite and in-memory journals.
type Store interface {
	StartSession(device, layout string) error
	RecordToggle(active bool) error
	RecentSessions(ctx context.Context, limit int) ([]Session, error)
	Toggles(ctx context.Context, session int64) ([]Toggle, error)
	Close() error
}
