package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/foxseedlab/townsquare/internal/repository"
	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
	}
	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	for _, stmt := range sqliteMigrationStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("run sqlite migration: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) LoadGuildState(ctx context.Context, guildID string) (*repository.GuildState, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT state FROM guild_states WHERE guild_id = ?`, guildID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.NewGuildState(), nil
		}
		return nil, err
	}
	var state repository.GuildState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("failed to decode guild state %s: %w", guildID, err)
	}
	state.Normalize()
	return &state, nil
}

func (s *SQLiteStore) SaveGuildState(ctx context.Context, guildID string, state *repository.GuildState) error {
	b, err := json.Marshal(state)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO guild_states (guild_id, state, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(guild_id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		guildID, string(b), time.Now().UTC().UnixMilli())
	return err
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
