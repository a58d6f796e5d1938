package game

import (
	"maps"
	"slices"
	"strings"

	"github.com/foxseedlab/townsquare/internal/discord"
	"github.com/foxseedlab/townsquare/internal/repository"
)

type Channel struct {
	ID   string
	Name string
}

func (c Channel) IsZero() bool {
	return c.ID == ""
}

type Category struct {
	ID    string
	Name  string
	Rooms []Channel
}

// CategoryFromDiscord keeps only the voice rooms of a platform category.
func CategoryFromDiscord(c discord.Category) Category {
	out := Category{ID: c.ID, Name: c.Name}
	for _, ch := range c.VoiceChannels() {
		out.Rooms = append(out.Rooms, Channel{ID: ch.ID, Name: ch.Name})
	}
	return out
}

// Game is one storyteller's game. Values returned by Registry are copies.
type Game struct {
	OwnerID       string
	OwnerName     string
	ViewID        string
	DayCategory   Category
	NightCategory Category
	TownSquare    Channel
	GameChat      Channel
	Players       map[string]string
	Linked        bool

	timer *Timer
}

func (g Game) Name() string {
	return g.OwnerName + "'s game"
}

func (g Game) HasTimer() bool {
	return g.timer != nil
}

func (g *Game) snapshot() Game {
	out := *g
	out.Players = maps.Clone(g.Players)
	out.DayCategory.Rooms = slices.Clone(g.DayCategory.Rooms)
	out.NightCategory.Rooms = slices.Clone(g.NightCategory.Rooms)
	return out
}

func findTownSquare(rooms []Channel, marker string) Channel {
	for _, room := range rooms {
		if strings.HasPrefix(room.Name, marker) {
			return room
		}
	}
	return Channel{}
}

func (g *Game) record() repository.GameRecord {
	rec := repository.GameRecord{
		OwnerName:     g.OwnerName,
		ViewID:        g.ViewID,
		DayCategory:   categoryRecord(g.DayCategory),
		NightCategory: categoryRecord(g.NightCategory),
		Players:       maps.Clone(g.Players),
		Linked:        g.Linked,
	}
	if rec.Players == nil {
		rec.Players = map[string]string{}
	}
	if !g.TownSquare.IsZero() {
		rec.TownSquare = &repository.ChannelRef{ID: g.TownSquare.ID, Name: g.TownSquare.Name}
	}
	if !g.GameChat.IsZero() {
		rec.GameChat = &repository.ChannelRef{ID: g.GameChat.ID, Name: g.GameChat.Name}
	}
	return rec
}

func gameFromRecord(ownerID string, rec repository.GameRecord) *Game {
	g := &Game{
		OwnerID:       ownerID,
		OwnerName:     rec.OwnerName,
		ViewID:        rec.ViewID,
		DayCategory:   categoryFromRecord(rec.DayCategory),
		NightCategory: categoryFromRecord(rec.NightCategory),
		Players:       maps.Clone(rec.Players),
		Linked:        rec.Linked,
	}
	if g.Players == nil {
		g.Players = map[string]string{}
	}
	if rec.TownSquare != nil {
		g.TownSquare = Channel{ID: rec.TownSquare.ID, Name: rec.TownSquare.Name}
	}
	if rec.GameChat != nil {
		g.GameChat = Channel{ID: rec.GameChat.ID, Name: rec.GameChat.Name}
	}
	return g
}

func categoryRecord(c Category) repository.CategoryRecord {
	rec := repository.CategoryRecord{ID: c.ID, Name: c.Name}
	for _, room := range c.Rooms {
		rec.Children = append(rec.Children, repository.ChannelRef{ID: room.ID, Name: room.Name})
	}
	return rec
}

func categoryFromRecord(rec repository.CategoryRecord) Category {
	c := Category{ID: rec.ID, Name: rec.Name}
	for _, child := range rec.Children {
		c.Rooms = append(c.Rooms, Channel{ID: child.ID, Name: child.Name})
	}
	return c
}
