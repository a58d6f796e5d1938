package webhook

import (
	"context"
	"time"
)

type EventKind string

const (
	EventGameStarted EventKind = "game_started"
	EventGameLinked  EventKind = "game_linked"
	EventGameEnded   EventKind = "game_ended"
)

type GameEventPayload struct {
	Event       EventKind `json:"event"`
	GuildID     string    `json:"guild_id"`
	OwnerID     string    `json:"owner_id"`
	OwnerName   string    `json:"owner_name"`
	PlayerCount int       `json:"player_count"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type Sender interface {
	SendGameEvent(ctx context.Context, payload GameEventPayload) error
}
