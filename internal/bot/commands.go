package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/foxseedlab/townsquare/internal/discord"
	"github.com/foxseedlab/townsquare/internal/game"
	"github.com/foxseedlab/townsquare/internal/webhook"
)

const (
	optionPlayerRoom    = "player_room"
	optionDayCategory   = "day_category"
	optionNightCategory = "night_category"
	optionPlayerCount   = "player_count"
	optionChannel       = "channel"
	optionTarget        = "target"
	optionPage          = "page"
)

func (m *Manager) handleGame(ctx context.Context, reg *game.Registry, event discord.SlashCommandEvent) error {
	g, err := reg.Create(ctx, event.UserID, event.UserName)
	if err != nil {
		return answer(err, replyTo(event.Responder))
	}
	if err := event.Responder.RespondMessage(panelTitle(g.Name()), panelRows(g.ViewID)); err != nil {
		if _, rerr := reg.Remove(ctx, event.UserID); rerr != nil {
			err = errors.Join(err, rerr)
		}
		return fmt.Errorf("post control panel: %w", err)
	}
	m.publish(ctx, webhook.EventGameStarted, event.GuildID, g)
	return nil
}

func (m *Manager) handleLinkToGame(ctx context.Context, reg *game.Registry, event discord.SlashCommandEvent) error {
	roomID := event.Options[optionPlayerRoom]
	dayID := event.Options[optionDayCategory]
	nightID := event.Options[optionNightCategory]
	if roomID == "" || dayID == "" || nightID == "" {
		respondEphemeral(event.Responder, messageMissingOption)
		return nil
	}
	if _, ok := reg.Get(event.UserID); !ok {
		respondEphemeral(event.Responder, messageNoActiveGame)
		return nil
	}

	day, err := m.discord.GetCategory(event.GuildID, dayID)
	if err != nil {
		return fmt.Errorf("resolve day category: %w", err)
	}
	night, err := m.discord.GetCategory(event.GuildID, nightID)
	if err != nil {
		return fmt.Errorf("resolve night category: %w", err)
	}
	members, err := m.discord.ListVoiceChannelMembers(event.GuildID, roomID)
	if err != nil {
		return fmt.Errorf("list players: %w", err)
	}
	players := make([]discord.Member, 0, len(members))
	for _, member := range members {
		if !member.IsBot {
			players = append(players, member)
		}
	}

	g, err := reg.Link(ctx, event.UserID, game.LinkInput{
		DayCategory:   game.CategoryFromDiscord(day),
		NightCategory: game.CategoryFromDiscord(night),
		GameChat:      m.findGameChat(day, event.ChannelID),
		Players:       players,
	})
	if err != nil {
		return answer(err, replyTo(event.Responder))
	}
	content := linkedMessage(len(g.Players), day.Name, night.Name)
	if g.TownSquare.IsZero() {
		content += "\n" + missingTownSquareMessage(m.cfg.TownSquareMarker, day.Name)
	}
	if err := event.Responder.RespondMessage(content, nil); err != nil {
		slog.Error("failed to confirm link", "guild_id", event.GuildID, "owner_id", event.UserID, "error", err)
	}
	m.publish(ctx, webhook.EventGameLinked, event.GuildID, g)
	return nil
}

// findGameChat picks the first text channel of the day category named with
// the game chat marker, falling back to the channel the command came from.
func (m *Manager) findGameChat(day discord.Category, fallbackChannelID string) game.Channel {
	for _, ch := range day.TextChannels() {
		if strings.HasPrefix(ch.Name, m.cfg.GameChatMarker) {
			return game.Channel{ID: ch.ID, Name: ch.Name}
		}
	}
	return game.Channel{ID: fallbackChannelID}
}

func (m *Manager) handleStopGame(ctx context.Context, reg *game.Registry, event discord.SlashCommandEvent) error {
	g, err := reg.Remove(ctx, event.UserID)
	if err != nil {
		return answer(err, replyTo(event.Responder))
	}
	respondEphemeral(event.Responder, messageGameStopped)
	m.publish(ctx, webhook.EventGameEnded, event.GuildID, g)
	return nil
}

func (m *Manager) handleSpectate(ctx context.Context, reg *game.Registry, event discord.SlashCommandEvent) error {
	targetID := event.Options[optionTarget]
	if targetID == "" {
		respondEphemeral(event.Responder, messageMissingOption)
		return nil
	}
	if err := reg.Spectate(ctx, event.UserID, targetID); err != nil {
		return answer(err, replyTo(event.Responder))
	}
	channelID, err := m.discord.GetUserVoiceChannelID(event.GuildID, targetID)
	if err != nil {
		slog.Warn("failed to resolve spectated player channel", "guild_id", event.GuildID, "user_id", targetID, "error", err)
	} else if channelID != "" {
		m.followInto(event.GuildID, event.UserID, channelID)
	}
	respondEphemeral(event.Responder, spectatingMessage(targetID))
	return nil
}

func (m *Manager) handleStopSpectate(ctx context.Context, reg *game.Registry, event discord.SlashCommandEvent) error {
	targetID, err := reg.StopSpectate(ctx, event.UserID)
	if err != nil {
		return answer(err, replyTo(event.Responder))
	}
	respondEphemeral(event.Responder, stoppedSpectatingMessage(targetID))
	return nil
}

func (m *Manager) handleHelp(_ context.Context, _ *game.Registry, event discord.SlashCommandEvent) error {
	page := 1
	if raw, ok := event.Options[optionPage]; ok {
		if n, err := strconv.Atoi(raw); err == nil {
			page = n
		}
	}
	respondEphemeral(event.Responder, helpPage(page))
	return nil
}

func replyTo(r discord.Responder) func(string) {
	return func(content string) {
		respondEphemeral(r, content)
	}
}
