package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"casamira/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// Entry is one recorded admin action.
type Entry struct {
	ID       int64     `json:"id"`
	Actor    string    `json:"actor"`
	ActorID  int64     `json:"actor_id"`
	Role     string    `json:"role"`
	Action   string    `json:"action"`
	Entity   string    `json:"entity"`
	EntityID int64     `json:"entity_id"`
	At       time.Time `json:"at"`
}

// Log is an append-only sqlite-backed record of admin actions. The JSON
// collection files stay the source of truth for entities; the log only
// answers "who did what, when".
type Log struct {
	db     *sql.DB
	logger *zerolog.Logger
}

func New(path string, logger *zerolog.Logger) (*Log, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to audit database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create audit tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("audit log initialized")
	return &Log{db: db, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	query := `CREATE TABLE IF NOT EXISTS audit_entries (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        actor TEXT NOT NULL,
        actor_id INTEGER NOT NULL,
        role TEXT NOT NULL,
        action TEXT NOT NULL,
        entity TEXT NOT NULL,
        entity_id INTEGER NOT NULL,
        at DATETIME NOT NULL
    )`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("error executing query %s: %w", query, err)
	}
	return nil
}

// Record appends one entry. Failures are returned, not fatal; callers log
// and continue since the mutation itself already succeeded.
func (l *Log) Record(ctx context.Context, actor models.Actor, action, entity string, entityID int64) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO audit_entries (actor, actor_id, role, action, entity, entity_id, at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		actor.Name, actor.UserID, actor.Role, action, entity, entityID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

// Recent returns the latest entries, newest first.
func (l *Log) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := l.db.QueryContext(ctx,
		`SELECT id, actor, actor_id, role, action, entity, entity_id, at
         FROM audit_entries ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Actor, &e.ActorID, &e.Role, &e.Action, &e.Entity, &e.EntityID, &e.At); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (l *Log) Close() error {
	return l.db.Close()
}
