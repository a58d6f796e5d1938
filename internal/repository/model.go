package repository

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// ChannelRef is stored as a two-element array: [id, name].
type ChannelRef struct {
	ID   string
	Name string
}

func (c ChannelRef) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{c.ID, c.Name})
}

func (c *ChannelRef) UnmarshalJSON(b []byte) error {
	var pair []string
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("channel ref: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("channel ref: expected [id, name], got %d elements", len(pair))
	}
	c.ID, c.Name = pair[0], pair[1]
	return nil
}

// CategoryRecord is stored as [id, name, [child id, child name], ...].
type CategoryRecord struct {
	ID       string
	Name     string
	Children []ChannelRef
}

func (c CategoryRecord) MarshalJSON() ([]byte, error) {
	if c.ID == "" {
		return []byte("[]"), nil
	}
	out := make([]any, 0, len(c.Children)+2)
	out = append(out, c.ID, c.Name)
	for _, child := range c.Children {
		out = append(out, child)
	}
	return json.Marshal(out)
}

func (c *CategoryRecord) UnmarshalJSON(b []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(b, &parts); err != nil {
		return fmt.Errorf("category record: %w", err)
	}
	*c = CategoryRecord{}
	if len(parts) == 0 {
		return nil
	}
	if len(parts) < 2 {
		return fmt.Errorf("category record: expected [id, name, children...], got %d elements", len(parts))
	}
	if err := json.Unmarshal(parts[0], &c.ID); err != nil {
		return fmt.Errorf("category record id: %w", err)
	}
	if err := json.Unmarshal(parts[1], &c.Name); err != nil {
		return fmt.Errorf("category record name: %w", err)
	}
	for _, raw := range parts[2:] {
		var child ChannelRef
		if err := json.Unmarshal(raw, &child); err != nil {
			return err
		}
		c.Children = append(c.Children, child)
	}
	return nil
}

type GameRecord struct {
	OwnerName     string            `json:"owner_name"`
	ViewID        string            `json:"view_id"`
	DayCategory   CategoryRecord    `json:"day_category"`
	NightCategory CategoryRecord    `json:"night_category"`
	TownSquare    *ChannelRef       `json:"town_square_channel"`
	GameChat      *ChannelRef       `json:"game_chat_channel"`
	Players       map[string]string `json:"players"`
	Linked        bool              `json:"linked_objects"`
}

// GuildState is everything persisted for one guild.
type GuildState struct {
	Games             map[string]GameRecord `json:"games"`
	LinkedPlayers     map[string][]string   `json:"linked_players"`
	StorytellerRoleID *string               `json:"storyteller_role_id"`
	BotChannels       []string              `json:"bot_channels"`
}

func NewGuildState() *GuildState {
	return &GuildState{
		Games:         map[string]GameRecord{},
		LinkedPlayers: map[string][]string{},
		BotChannels:   []string{},
	}
}

// Normalize replaces nil collections so callers can write without checks.
func (s *GuildState) Normalize() {
	if s.Games == nil {
		s.Games = map[string]GameRecord{}
	}
	if s.LinkedPlayers == nil {
		s.LinkedPlayers = map[string][]string{}
	}
	if s.BotChannels == nil {
		s.BotChannels = []string{}
	}
}

func (s *GuildState) Clone() *GuildState {
	out := &GuildState{
		Games:         make(map[string]GameRecord, len(s.Games)),
		LinkedPlayers: make(map[string][]string, len(s.LinkedPlayers)),
		BotChannels:   slices.Clone(s.BotChannels),
	}
	for k, g := range s.Games {
		g.Players = maps.Clone(g.Players)
		out.Games[k] = g
	}
	for k, v := range s.LinkedPlayers {
		out.LinkedPlayers[k] = slices.Clone(v)
	}
	if s.StorytellerRoleID != nil {
		id := *s.StorytellerRoleID
		out.StorytellerRoleID = &id
	}
	out.Normalize()
	return out
}
