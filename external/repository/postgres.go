package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/foxseedlab/townsquare/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) repository.GuildStore {
	return &PostgresStore{pool: pool}
}

func (r *PostgresStore) LoadGuildState(ctx context.Context, guildID string) (*repository.GuildState, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx,
		`SELECT state FROM guild_states WHERE guild_id = $1`,
		guildID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.NewGuildState(), nil
		}
		return nil, err
	}
	var state repository.GuildState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("failed to decode guild state %s: %w", guildID, err)
	}
	state.Normalize()
	return &state, nil
}

func (r *PostgresStore) SaveGuildState(ctx context.Context, guildID string, state *repository.GuildState) error {
	b, err := json.Marshal(state)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO guild_states (guild_id, state, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (guild_id) DO UPDATE SET state = EXCLUDED.state, updated_at = EXCLUDED.updated_at`,
		guildID, b)
	return err
}

func (r *PostgresStore) Close() error {
	r.pool.Close()
	return nil
}
