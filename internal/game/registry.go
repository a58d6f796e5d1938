package game

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/foxseedlab/townsquare/internal/discord"
	"github.com/foxseedlab/townsquare/internal/repository"
	"github.com/foxseedlab/townsquare/internal/telemetry"
	"github.com/google/uuid"
)

// Platform is the subset of the chat client the game layer drives.
type Platform interface {
	ListVoiceChannelMembers(guildID, channelID string) ([]discord.Member, error)
	MoveMember(guildID, userID, channelID string) error
	SendExpiringMessage(channelID, content string, ttl time.Duration) error
}

type Options struct {
	// TownSquareMarker is the name prefix of the day room players gather in.
	TownSquareMarker string
}

type LinkInput struct {
	DayCategory   Category
	NightCategory Category
	GameChat      Channel
	Players       []discord.Member
}

// Registry holds every game of one guild. All mutations are persisted
// before they become visible; a failed save leaves memory unchanged.
type Registry struct {
	guildID  string
	store    repository.GuildStore
	platform Platform
	metrics  telemetry.Recorder
	opts     Options
	baseCtx  context.Context
	tick     func(ctx context.Context) error

	mu    sync.Mutex
	games map[string]*Game
	state *repository.GuildState
}

func newRegistry(
	ctx context.Context,
	guildID string,
	state *repository.GuildState,
	store repository.GuildStore,
	platform Platform,
	metrics telemetry.Recorder,
	opts Options,
) *Registry {
	if metrics == nil {
		metrics = telemetry.Nop{}
	}
	state = state.Clone()
	games := make(map[string]*Game, len(state.Games))
	for ownerID, rec := range state.Games {
		games[ownerID] = gameFromRecord(ownerID, rec)
	}
	state.Games = map[string]repository.GameRecord{}

	r := &Registry{
		guildID:  guildID,
		store:    store,
		platform: platform,
		metrics:  metrics,
		opts:     opts,
		baseCtx:  ctx,
		tick:     sleepOneSecond,
		games:    games,
		state:    state,
	}
	metrics.ActiveGames(guildID, len(games))
	return r
}

func (r *Registry) GuildID() string {
	return r.guildID
}

func (r *Registry) Create(ctx context.Context, ownerID, ownerName string) (Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.games[ownerID]; ok {
		return Game{}, ErrAlreadyActive
	}
	g := &Game{
		OwnerID:   ownerID,
		OwnerName: ownerName,
		ViewID:    uuid.NewString(),
		Players:   map[string]string{},
	}
	r.games[ownerID] = g
	if err := r.commitLocked(ctx, func() { delete(r.games, ownerID) }); err != nil {
		return Game{}, err
	}
	r.metrics.ActiveGames(r.guildID, len(r.games))
	slog.Info("game created", "guild_id", r.guildID, "owner_id", ownerID, "owner_name", ownerName)
	return g.snapshot(), nil
}

func (r *Registry) Get(ownerID string) (Game, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.games[ownerID]
	if !ok {
		return Game{}, false
	}
	return g.snapshot(), true
}

func (r *Registry) Games() []Game {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Game, 0, len(r.games))
	for _, g := range r.games {
		out = append(out, g.snapshot())
	}
	slices.SortFunc(out, func(a, b Game) int {
		return cmp.Or(cmp.Compare(a.OwnerName, b.OwnerName), cmp.Compare(a.OwnerID, b.OwnerID))
	})
	return out
}

// Link binds the game to its day and night categories and snapshots the players.
func (r *Registry) Link(ctx context.Context, ownerID string, in LinkInput) (Game, error) {
	if in.DayCategory.ID == "" || in.NightCategory.ID == "" {
		return Game{}, fmt.Errorf("%w: day and night categories are required", ErrLinkIncomplete)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.games[ownerID]
	if !ok {
		return Game{}, ErrNoActiveGame
	}
	// A day category without a town square still links; transitions refuse
	// until the game is relinked with one.
	townSquare := findTownSquare(in.DayCategory.Rooms, r.opts.TownSquareMarker)
	prev := g.snapshot()

	players := make(map[string]string, len(in.Players))
	for _, m := range in.Players {
		players[m.DisplayName] = m.ID
	}
	g.DayCategory = in.DayCategory
	g.NightCategory = in.NightCategory
	g.TownSquare = townSquare
	g.GameChat = in.GameChat
	g.Players = players
	g.Linked = true

	if err := r.commitLocked(ctx, func() { restoreGame(g, prev) }); err != nil {
		return Game{}, err
	}
	slog.Info("game linked",
		"guild_id", r.guildID,
		"owner_id", ownerID,
		"day_category", g.DayCategory.Name,
		"night_category", g.NightCategory.Name,
		"town_square", townSquare.Name,
		"players", len(players),
	)
	return g.snapshot(), nil
}

// Remove ends the game. A running timer is stopped without relocating anyone.
func (r *Registry) Remove(ctx context.Context, ownerID string) (Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.games[ownerID]
	if !ok {
		return Game{}, ErrNoActiveGame
	}
	delete(r.games, ownerID)
	if err := r.commitLocked(ctx, func() { r.games[ownerID] = g }); err != nil {
		return Game{}, err
	}
	if g.timer != nil {
		g.timer.stop()
		g.timer = nil
	}
	r.metrics.ActiveGames(r.guildID, len(r.games))
	slog.Info("game removed", "guild_id", r.guildID, "owner_id", ownerID)
	return g.snapshot(), nil
}

// Authorize reports whether viewID is the control panel of ownerID's game.
func (r *Registry) Authorize(ownerID, viewID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.games[ownerID]
	return ok && viewID != "" && g.ViewID == viewID
}

// stopTimers interrupts every running timer and returns them so callers can
// wait for their cleanup.
func (r *Registry) stopTimers() []*Timer {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stopped []*Timer
	for _, g := range r.games {
		if g.timer != nil {
			g.timer.stop()
			stopped = append(stopped, g.timer)
		}
	}
	return stopped
}

func restoreGame(g *Game, prev Game) {
	timer := g.timer
	*g = prev
	g.timer = timer
}

func (r *Registry) commitLocked(ctx context.Context, revert func()) error {
	if err := r.saveLocked(ctx); err != nil {
		revert()
		return fmt.Errorf("persist guild %s: %w", r.guildID, err)
	}
	return nil
}

func (r *Registry) saveLocked(ctx context.Context) error {
	state := r.state.Clone()
	state.Games = make(map[string]repository.GameRecord, len(r.games))
	for ownerID, g := range r.games {
		state.Games[ownerID] = g.record()
	}
	return r.store.SaveGuildState(ctx, r.guildID, state)
}
