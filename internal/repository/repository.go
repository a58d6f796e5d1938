package repository

import "context"

// GuildStore persists one GuildState per guild.
// LoadGuildState returns an empty state when nothing has been saved yet.
type GuildStore interface {
	LoadGuildState(ctx context.Context, guildID string) (*GuildState, error)
	SaveGuildState(ctx context.Context, guildID string, state *GuildState) error
	Close() error
}
