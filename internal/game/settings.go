package game

import (
	"context"
	"slices"
)

func (r *Registry) StorytellerRoleID() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.StorytellerRoleID == nil {
		return ""
	}
	return *r.state.StorytellerRoleID
}

func (r *Registry) SetStorytellerRoleID(ctx context.Context, roleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.state.StorytellerRoleID
	r.state.StorytellerRoleID = &roleID
	return r.commitLocked(ctx, func() { r.state.StorytellerRoleID = prev })
}

// RecordBotChannels remembers channels the bot created so that only those
// may later be deleted or purged.
func (r *Registry) RecordBotChannels(ctx context.Context, channelIDs ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := slices.Clone(r.state.BotChannels)
	for _, id := range channelIDs {
		if !slices.Contains(r.state.BotChannels, id) {
			r.state.BotChannels = append(r.state.BotChannels, id)
		}
	}
	return r.commitLocked(ctx, func() { r.state.BotChannels = prev })
}

func (r *Registry) ForgetBotChannels(ctx context.Context, channelIDs ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := slices.Clone(r.state.BotChannels)
	r.state.BotChannels = slices.DeleteFunc(slices.Clone(r.state.BotChannels), func(id string) bool {
		return slices.Contains(channelIDs, id)
	})
	return r.commitLocked(ctx, func() { r.state.BotChannels = prev })
}

func (r *Registry) IsBotChannel(channelID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Contains(r.state.BotChannels, channelID)
}
