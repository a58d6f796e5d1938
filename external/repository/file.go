package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/foxseedlab/townsquare/internal/repository"
)

// FileStore keeps one JSON document per guild under dir.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (repository.GuildStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{dir: filepath.Clean(dir)}, nil
}

func (s *FileStore) path(guildID string) string {
	return filepath.Join(s.dir, filepath.Base(guildID)+".json")
}

func (s *FileStore) LoadGuildState(ctx context.Context, guildID string) (*repository.GuildState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.path(guildID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return repository.NewGuildState(), nil
		}
		return nil, err
	}
	var state repository.GuildState
	if err := json.Unmarshal(b, &state); err != nil {
		return nil, fmt.Errorf("failed to decode guild state %s: %w", guildID, err)
	}
	state.Normalize()
	return &state, nil
}

// SaveGuildState writes to a temp file and renames it into place.
func (s *FileStore) SaveGuildState(ctx context.Context, guildID string, state *repository.GuildState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, guildID+"-*.json.tmp")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path(guildID))
}

func (s *FileStore) Close() error {
	return nil
}
