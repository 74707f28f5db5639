package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"holoupdate/internal/config"
)

// DefaultRecentLimit is used when Recent is called with a non-positive limit.
const DefaultRecentLimit = 20

// NewService opens (creating if needed) the SQLite ledger at dbPath. A
// leading ~ is expanded.
func NewService(dbPath string) (Service, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, errors.New("history path is required")
	}
	resolved, err := config.ExpandPath(dbPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaV1); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &service{db: db, dbPath: resolved, now: time.Now}, nil
}

type service struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

func (s *service) Record(ctx context.Context, e Event) (int64, error) {
	if e.App == "" {
		return 0, errors.New("app is required")
	}
	if e.Operation == "" {
		return 0, errors.New("operation is required")
	}
	if e.Status == "" {
		e.Status = StatusSuccess
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO events (
			app, operation, channel, from_version, to_version,
			strategy, status, message, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.App, string(e.Operation), e.Channel, e.FromVersion, e.ToVersion,
		e.Strategy, string(e.Status), e.Message, e.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}
	return res.LastInsertId()
}

func (s *service) Recent(ctx context.Context, app string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT event_id, app, operation, channel, from_version, to_version,
		       strategy, status, message, created_at
		FROM events
		WHERE app = ?
		ORDER BY event_id DESC
		LIMIT ?
	`, app, limit)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			e                                    Event
			op, status, createdAt                string
			channel, from, to, strategy, message sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.App, &op, &channel, &from, &to, &strategy, &status, &message, &createdAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Operation = Operation(op)
		e.Status = Status(status)
		e.Channel = channel.String
		e.FromVersion = from.String
		e.ToVersion = to.String
		e.Strategy = strategy.String
		e.Message = message.String
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			e.CreatedAt = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *service) Close() error {
	return s.db.Close()
}
