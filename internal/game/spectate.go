package game

import (
	"context"
	"log/slog"
	"slices"
)

// Spectate makes spectatorID follow targetID's voice moves. A spectator
// follows one target at a time, so spectating again switches targets.
func (r *Registry) Spectate(ctx context.Context, spectatorID, targetID string) error {
	if spectatorID == targetID {
		return ErrSelfSpectate
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.state.Clone()
	r.unfollowLocked(spectatorID)
	r.state.LinkedPlayers[targetID] = append(r.state.LinkedPlayers[targetID], spectatorID)
	if err := r.commitLocked(ctx, func() { r.state = prev }); err != nil {
		return err
	}
	slog.Info("spectator linked", "guild_id", r.guildID, "spectator_id", spectatorID, "target_id", targetID)
	return nil
}

// StopSpectate returns the target the spectator was following.
func (r *Registry) StopSpectate(ctx context.Context, spectatorID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.state.Clone()
	targetID, ok := r.unfollowLocked(spectatorID)
	if !ok {
		return "", ErrNotSpectating
	}
	if err := r.commitLocked(ctx, func() { r.state = prev }); err != nil {
		return "", err
	}
	slog.Info("spectator unlinked", "guild_id", r.guildID, "spectator_id", spectatorID, "target_id", targetID)
	return targetID, nil
}

func (r *Registry) SpectatorsOf(targetID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.state.LinkedPlayers[targetID])
}

func (r *Registry) unfollowLocked(spectatorID string) (string, bool) {
	for targetID, spectators := range r.state.LinkedPlayers {
		i := slices.Index(spectators, spectatorID)
		if i < 0 {
			continue
		}
		spectators = slices.Delete(spectators, i, i+1)
		if len(spectators) == 0 {
			delete(r.state.LinkedPlayers, targetID)
		} else {
			r.state.LinkedPlayers[targetID] = spectators
		}
		return targetID, true
	}
	return "", false
}
