package sqlite

import (
	"codeberg.org/miketth/evremap/pkg/journal"
	"codeberg.org/miketth/evremap/pkg/journal/sqlite/migrations"
	"context"
	"database/sql"
	"fmt"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"time"
)

// Journal records sessions and layout toggles in a sqlite database. It is
// write-mostly: nothing in it is read back to restore state.
type Journal struct {
	db      *sql.DB
	session int64
	now     func() time.Time
}

func NewJournal(filename string, log *zap.SugaredLogger) (*Journal, error) {
	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// sqlite allows one writer at a time
	db.SetMaxOpenConns(1)

	if _, err := migrations.Migrate(db, log); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Journal{db: db, now: time.Now}, nil
}

func (j *Journal) StartSession(device, layout string) error {
	res, err := j.db.Exec(
		`insert into sessions (device, layout, started_at) values (?, ?, ?)`,
		device, layout, j.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("sqlite insert session: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite session id: %w", err)
	}

	j.session = id
	return nil
}

func (j *Journal) RecordToggle(active bool) error {
	if j.session == 0 {
		return journal.ErrNoSession
	}

	if _, err := j.db.Exec(
		`insert into toggles (session_id, active, at) values (?, ?, ?)`,
		j.session, active, j.now().UnixMilli(),
	); err != nil {
		return fmt.Errorf("sqlite insert toggle: %w", err)
	}

	return nil
}

func (j *Journal) RecentSessions(ctx context.Context, limit int) ([]journal.Session, error) {
	rows, err := j.db.QueryContext(ctx, `
		select s.id, s.device, s.layout, s.started_at, s.ended_at, count(t.id)
		from sessions s
		left join toggles t on t.session_id = s.id
		group by s.id
		order by s.started_at desc, s.id desc
		limit ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite select sessions: %w", err)
	}
	defer rows.Close()

	var out []journal.Session
	for rows.Next() {
		var (
			s         journal.Session
			startedAt int64
			endedAt   sql.NullInt64
		)
		if err := rows.Scan(&s.ID, &s.Device, &s.Layout, &startedAt, &endedAt, &s.Toggles); err != nil {
			return nil, fmt.Errorf("sqlite scan session: %w", err)
		}

		s.StartedAt = time.UnixMilli(startedAt)
		if endedAt.Valid {
			t := time.UnixMilli(endedAt.Int64)
			s.EndedAt = &t
		}
		out = append(out, s)
	}

	return out, rows.Err()
}

func (j *Journal) Toggles(ctx context.Context, session int64) ([]journal.Toggle, error) {
	rows, err := j.db.QueryContext(ctx,
		`select session_id, active, at from toggles where session_id = ? order by id`, session)
	if err != nil {
		return nil, fmt.Errorf("sqlite select toggles: %w", err)
	}
	defer rows.Close()

	var out []journal.Toggle
	for rows.Next() {
		var (
			t  journal.Toggle
			at int64
		)
		if err := rows.Scan(&t.SessionID, &t.Active, &at); err != nil {
			return nil, fmt.Errorf("sqlite scan toggle: %w", err)
		}
		t.At = time.UnixMilli(at)
		out = append(out, t)
	}

	return out, rows.Err()
}

// Close ends the current session, if any, and closes the database.
func (j *Journal) Close() error {
	if j.session != 0 {
		if _, err := j.db.Exec(
			`update sessions set ended_at = ? where id = ?`,
			j.now().UnixMilli(), j.session,
		); err != nil {
			j.db.Close()
			return fmt.Errorf("sqlite end session: %w", err)
		}
		j.session = 0
	}

	return j.db.Close()
}
