package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const (
	announceEvery   = 30
	announcementTTL = 29 * time.Second
	cancelNoticeTTL = 10 * time.Second
	finalizeTimeout = 30 * time.Second

	cancelNotice = "Timer was cancelled!"
)

const (
	timerRunning int32 = iota
	timerCancelled
	timerExpired
)

// Timer counts down to voting. It moves from running to either cancelled or
// expired exactly once; only expiry gathers players into the town square.
type Timer struct {
	ownerID         string
	notifyChannelID string
	sourceRooms     []Channel
	target          Channel
	excludedID      string

	remaining atomic.Int32
	state     atomic.Int32
	cancel    context.CancelFunc
	once      sync.Once
	done      chan struct{}
}

func (t *Timer) Remaining() int {
	return int(t.remaining.Load())
}

// Done is closed after the timer has finalized and been released from its game.
func (t *Timer) Done() <-chan struct{} {
	return t.done
}

func (t *Timer) running() bool {
	return t.state.Load() == timerRunning
}

// stop ends the countdown silently. It reports false when the timer had
// already left the running state.
func (t *Timer) stop() bool {
	ok := t.state.CompareAndSwap(timerRunning, timerCancelled)
	t.cancel()
	return ok
}

func announcement(remaining int32) string {
	return fmt.Sprintf("You have %.1f minutes before voting!", float64(remaining)/60)
}

// StartTimer launches a countdown for the owner's game and returns at once.
// Announcements go to the game chat, or to fallbackNotifyChannelID when the
// game has none.
func (r *Registry) StartTimer(ctx context.Context, ownerID string, seconds int, fallbackNotifyChannelID string) (*Timer, error) {
	if seconds <= 0 {
		return nil, fmt.Errorf("timer duration must be positive, got %d", seconds)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.games[ownerID]
	if !ok {
		return nil, ErrNoActiveGame
	}
	if !g.Linked || g.TownSquare.IsZero() {
		return nil, ErrLinkIncomplete
	}
	if g.timer != nil {
		return nil, ErrTimerAlreadyRunning
	}
	notify := g.GameChat.ID
	if notify == "" {
		notify = fallbackNotifyChannelID
	}

	runCtx, cancel := context.WithCancel(r.baseCtx)
	t := &Timer{
		ownerID:         ownerID,
		notifyChannelID: notify,
		sourceRooms:     g.snapshot().DayCategory.Rooms,
		target:          g.TownSquare,
		excludedID:      g.OwnerID,
		cancel:          cancel,
		done:            make(chan struct{}),
	}
	t.remaining.Store(int32(seconds))
	g.timer = t
	if err := r.commitLocked(ctx, func() { g.timer = nil }); err != nil {
		cancel()
		return nil, err
	}

	slog.Info("timer started", "guild_id", r.guildID, "owner_id", ownerID, "seconds", seconds)
	go r.runTimer(runCtx, t)
	return t, nil
}

// CancelTimer stops the owner's countdown without relocating anyone.
func (r *Registry) CancelTimer(_ context.Context, ownerID string) error {
	r.mu.Lock()
	g, ok := r.games[ownerID]
	var t *Timer
	if ok {
		t = g.timer
	}
	r.mu.Unlock()

	if !ok {
		return ErrNoActiveGame
	}
	if t == nil || !t.stop() {
		return ErrNoTimerFound
	}
	if err := r.platform.SendExpiringMessage(t.notifyChannelID, cancelNotice, cancelNoticeTTL); err != nil {
		slog.Warn("failed to send timer cancel notice", "guild_id", r.guildID, "owner_id", ownerID, "error", err)
	}
	slog.Info("timer cancelled", "guild_id", r.guildID, "owner_id", ownerID, "remaining", t.Remaining())
	return nil
}

func (r *Registry) runTimer(ctx context.Context, t *Timer) {
	defer close(t.done)
	defer t.cancel()

	for t.running() {
		remaining := t.remaining.Load()
		if remaining <= 0 {
			break
		}
		if remaining%announceEvery == 0 {
			if err := r.platform.SendExpiringMessage(t.notifyChannelID, announcement(remaining), announcementTTL); err != nil {
				slog.Warn("failed to send timer announcement", "guild_id", r.guildID, "owner_id", t.ownerID, "error", err)
			}
		}
		if err := r.tick(ctx); err != nil {
			break
		}
		t.remaining.Add(-1)
	}
	r.finalizeTimer(t)
}

func (r *Registry) finalizeTimer(t *Timer) {
	t.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
		defer cancel()

		outcome := "cancelled"
		if t.remaining.Load() == 0 && t.state.CompareAndSwap(timerRunning, timerExpired) {
			outcome = "expired"
			r.gatherOnExpiry(ctx, t)
		} else {
			t.state.CompareAndSwap(timerRunning, timerCancelled)
		}
		r.releaseTimer(ctx, t)
		r.metrics.TimerFinished(outcome)
	})
}

func (r *Registry) gatherOnExpiry(ctx context.Context, t *Timer) {
	ctx, span := r.startSpan(ctx, "game.TimerExpired", t.ownerID)
	defer span.End()

	report, err := r.gather(ctx, operationTimerExpiry, t.sourceRooms, t.target, t.excludedID)
	endSpan(span, report, err)
	if err != nil {
		slog.Error("failed to gather players after timer", "guild_id", r.guildID, "owner_id", t.ownerID, "error", err)
		return
	}
	slog.Info("timer expired",
		"guild_id", r.guildID,
		"owner_id", t.ownerID,
		"moved", len(report.Moved),
		"failed", len(report.Failed),
	)
}

func (r *Registry) releaseTimer(ctx context.Context, t *Timer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.games[t.ownerID]
	if !ok || g.timer != t {
		return
	}
	g.timer = nil
	if err := r.saveLocked(ctx); err != nil {
		slog.Error("failed to persist game after timer", "guild_id", r.guildID, "owner_id", t.ownerID, "error", err)
	}
}

func sleepOneSecond(ctx context.Context) error {
	timer := time.NewTimer(time.Second)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
