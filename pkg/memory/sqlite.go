package memory

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/keepsake-bot/keepsake/pkg/dates"
)

type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &SQLiteStore{db: db, path: dbPath}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS memories (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id     INTEGER NOT NULL,
		date        TEXT NOT NULL,
		date_iso    TEXT NOT NULL,
		place       TEXT,
		rating      INTEGER,
		description TEXT,
		photo_path  TEXT,
		created_at  TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_memories_user_date ON memories(user_id, date_iso);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Insert(ctx context.Context, m *Memory) (*Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day, err := dates.Parse(m.Date)
	if err != nil {
		return nil, fmt.Errorf("parse memory date %q: %w", m.Date, err)
	}
	if m.Rating != 0 && (m.Rating < 1 || m.Rating > 10) {
		return nil, ErrInvalidRating
	}

	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO memories (user_id, date, date_iso, place, rating, description, photo_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.UserID, m.Date, dates.FormatISO(day), m.Place, m.Rating,
		m.Description, m.PhotoPath, now.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("insert memory: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("memory id: %w", err)
	}

	stored := *m
	stored.ID = id
	stored.CreatedAt = now
	return &stored, nil
}

func (s *SQLiteStore) Query(ctx context.Context, userID int64, w Window) ([]*Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, date, place, rating, description, photo_path, created_at
		FROM memories
		WHERE user_id = ? AND date_iso BETWEEN ? AND ?
		ORDER BY date_iso DESC, id DESC`,
		userID, dates.FormatISO(w.Start), dates.FormatISO(w.End),
	)
	if err != nil {
		return nil, fmt.Errorf("query memories: %w", err)
	}
	defer rows.Close()

	var out []*Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanMemory(rows *sql.Rows) (*Memory, error) {
	var m Memory
	var createdAt string
	err := rows.Scan(
		&m.ID, &m.UserID, &m.Date, &m.Place, &m.Rating,
		&m.Description, &m.PhotoPath, &createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan memory: %w", err)
	}
	m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &m, nil
}
