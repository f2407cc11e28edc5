package memory

import (
	"codeberg.org/miketth/evremap/pkg/journal"
	"context"
	"sort"
	"sync"
	"time"
)

type Journal struct {
	lock     sync.Mutex
	sessions []journal.Session
	toggles  []journal.Toggle
	current  int64
	now      func() time.Time
}

func NewJournal() *Journal {
	return &Journal{now: time.Now}
}

func (j *Journal) StartSession(device, layout string) error {
	j.lock.Lock()
	defer j.lock.Unlock()

	j.current = int64(len(j.sessions) + 1)
	j.sessions = append(j.sessions, journal.Session{
		ID:        j.current,
		Device:    device,
		Layout:    layout,
		StartedAt: j.now(),
	})
	return nil
}

func (j *Journal) RecordToggle(active bool) error {
	j.lock.Lock()
	defer j.lock.Unlock()

	if j.current == 0 {
		return journal.ErrNoSession
	}

	j.toggles = append(j.toggles, journal.Toggle{SessionID: j.current, Active: active, At: j.now()})
	j.sessions[j.current-1].Toggles++
	return nil
}

func (j *Journal) RecentSessions(_ context.Context, limit int) ([]journal.Session, error) {
	j.lock.Lock()
	defer j.lock.Unlock()

	out := make([]journal.Session, len(j.sessions))
	copy(out, j.sessions)
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].StartedAt.Equal(out[b].StartedAt) {
			return out[a].ID > out[b].ID
		}
		return out[a].StartedAt.After(out[b].StartedAt)
	})

	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (j *Journal) Toggles(_ context.Context, session int64) ([]journal.Toggle, error) {
	j.lock.Lock()
	defer j.lock.Unlock()

	var out []journal.Toggle
	for _, t := range j.toggles {
		if t.SessionID == session {
			out = append(out, t)
		}
	}
	return out, nil
}

func (j *Journal) Close() error {
	j.lock.Lock()
	defer j.lock.Unlock()

	if j.current != 0 {
		ended := j.now()
		j.sessions[j.current-1].EndedAt = &ended
		j.current = 0
	}
	return nil
}
