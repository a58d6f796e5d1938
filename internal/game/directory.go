package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/foxseedlab/townsquare/internal/repository"
	"github.com/foxseedlab/townsquare/internal/telemetry"
	"golang.org/x/sync/singleflight"
)

// Directory hands out one Registry per guild, loading state on first use.
type Directory struct {
	store    repository.GuildStore
	platform Platform
	metrics  telemetry.Recorder
	opts     Options

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	registries map[string]*Registry
	loads      singleflight.Group
}

func NewDirectory(store repository.GuildStore, platform Platform, metrics telemetry.Recorder, opts Options) *Directory {
	if metrics == nil {
		metrics = telemetry.Nop{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Directory{
		store:      store,
		platform:   platform,
		metrics:    metrics,
		opts:       opts,
		ctx:        ctx,
		cancel:     cancel,
		registries: map[string]*Registry{},
	}
}

// Registry returns the guild's registry. State is loaded outside the
// directory lock, and concurrent first uses of one guild share a single load.
func (d *Directory) Registry(ctx context.Context, guildID string) (*Registry, error) {
	if r, ok := d.cached(guildID); ok {
		return r, nil
	}
	v, err, _ := d.loads.Do(guildID, func() (any, error) {
		if r, ok := d.cached(guildID); ok {
			return r, nil
		}
		state, err := d.store.LoadGuildState(ctx, guildID)
		if err != nil {
			return nil, fmt.Errorf("load guild %s: %w", guildID, err)
		}
		r := newRegistry(d.ctx, guildID, state, d.store, d.platform, d.metrics, d.opts)
		d.mu.Lock()
		d.registries[guildID] = r
		d.mu.Unlock()
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Registry), nil
}

func (d *Directory) cached(guildID string) (*Registry, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.registries[guildID]
	return r, ok
}

// Preload loads every listed guild so restored games are known before the
// first interaction arrives.
func (d *Directory) Preload(ctx context.Context, guildIDs []string) error {
	var errs []error
	for _, guildID := range guildIDs {
		r, err := d.Registry(ctx, guildID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, g := range r.Games() {
			slog.Info("restored game",
				"guild_id", guildID,
				"owner_id", g.OwnerID,
				"owner_name", g.OwnerName,
				"linked", g.Linked,
				"players", len(g.Players),
			)
		}
	}
	return errors.Join(errs...)
}

// Shutdown stops every running timer without relocating anyone and waits
// for them to release their games.
func (d *Directory) Shutdown() {
	d.mu.Lock()
	registries := make([]*Registry, 0, len(d.registries))
	for _, r := range d.registries {
		registries = append(registries, r)
	}
	d.mu.Unlock()

	var timers []*Timer
	for _, r := range registries {
		timers = append(timers, r.stopTimers()...)
	}
	d.cancel()
	for _, t := range timers {
		<-t.Done()
	}
}
