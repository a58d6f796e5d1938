package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/foxseedlab/townsquare/internal/discord"
	"github.com/foxseedlab/townsquare/internal/game"
	"github.com/foxseedlab/townsquare/internal/webhook"
)

func (m *Manager) handlePanelAction(ctx context.Context, reg *game.Registry, action, viewID string, event discord.ComponentEvent) error {
	if !reg.Authorize(event.UserID, viewID) {
		slog.Warn("control panel used by someone other than its owner", "guild_id", event.GuildID, "user_id", event.UserID, "action", action)
		return answer(game.ErrUnauthorized, replyTo(event.Responder))
	}

	switch action {
	case actionDay:
		return m.panelMove(event, "the Town Square", func() (game.MoveReport, error) {
			return reg.ToDay(ctx, event.UserID)
		})
	case actionNight:
		return m.panelMove(event, "the night rooms", func() (game.MoveReport, error) {
			return reg.ToNight(ctx, event.UserID)
		})
	case actionCancelTimer:
		if err := reg.CancelTimer(ctx, event.UserID); err != nil {
			return answer(err, replyTo(event.Responder))
		}
		respondEphemeral(event.Responder, messageTimerCancelled)
		return nil
	case actionTimer:
		return m.panelStartTimer(ctx, reg, event)
	case actionQuit:
		return m.panelQuit(ctx, reg, event)
	default:
		slog.Warn("unknown control panel action", "guild_id", event.GuildID, "action", action)
		respondEphemeral(event.Responder, messageUnknownCommand)
		return nil
	}
}

func (m *Manager) panelMove(event discord.ComponentEvent, destination string, move func() (game.MoveReport, error)) error {
	if err := event.Responder.DeferEphemeral(); err != nil {
		return fmt.Errorf("defer response: %w", err)
	}
	report, err := move()
	if err != nil {
		return answer(err, replyTo(event.Responder))
	}
	respondEphemeral(event.Responder, moveSummary(destination, report.Moved, report.Failed))
	return nil
}

func (m *Manager) panelStartTimer(ctx context.Context, reg *game.Registry, event discord.ComponentEvent) error {
	seconds, ok := parseDuration(event.Values)
	if !ok {
		respondEphemeral(event.Responder, messageInvalidDuration)
		return nil
	}
	if _, err := reg.StartTimer(ctx, event.UserID, seconds, event.ChannelID); err != nil {
		return answer(err, replyTo(event.Responder))
	}
	respondEphemeral(event.Responder, timerStartedMessage(seconds))
	return nil
}

func (m *Manager) panelQuit(ctx context.Context, reg *game.Registry, event discord.ComponentEvent) error {
	if roleID := reg.StorytellerRoleID(); roleID != "" {
		err := m.discord.RemoveMemberRole(event.GuildID, event.UserID, roleID)
		switch {
		case errors.Is(err, discord.ErrForbidden):
			slog.Warn("could not remove storyteller role, member probably outranks the bot", "guild_id", event.GuildID, "user_id", event.UserID)
		case err != nil:
			slog.Error("failed to remove storyteller role", "guild_id", event.GuildID, "user_id", event.UserID, "error", err)
		}
	}

	g, err := reg.Remove(ctx, event.UserID)
	if err != nil {
		return answer(err, replyTo(event.Responder))
	}
	if err := event.Responder.UpdateMessage(messageGameEnded, nil); err != nil {
		slog.Error("failed to close control panel", "guild_id", event.GuildID, "owner_id", event.UserID, "error", err)
	}
	m.publish(ctx, webhook.EventGameEnded, event.GuildID, g)
	return nil
}
