package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/foxseedlab/townsquare/internal/discord"
	"github.com/foxseedlab/townsquare/internal/game"
)

const (
	minPlayerCount = 1
	maxPlayerCount = 20
)

func (m *Manager) handleCreateGameChannels(ctx context.Context, reg *game.Registry, event discord.SlashCommandEvent) error {
	count, err := strconv.Atoi(event.Options[optionPlayerCount])
	if err != nil || count < minPlayerCount || count > maxPlayerCount {
		respondEphemeral(event.Responder, fmt.Sprintf(messagePlayerCountInvalid, minPlayerCount, maxPlayerCount))
		return nil
	}
	if err := event.Responder.DeferEphemeral(); err != nil {
		return fmt.Errorf("defer response: %w", err)
	}

	roleID, err := m.storytellerRole(ctx, reg, event.GuildID)
	if errors.Is(err, discord.ErrForbidden) {
		respondEphemeral(event.Responder, messageRoleForbidden)
		return nil
	}
	if err != nil {
		return err
	}

	dayName := event.UserName + "'s Day"
	nightName := event.UserName + "'s Night"
	created, err := m.createGameChannels(event.GuildID, dayName, nightName, roleID, count)
	if len(created) > 0 {
		if rerr := reg.RecordBotChannels(ctx, created...); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}
	if errors.Is(err, discord.ErrForbidden) {
		respondEphemeral(event.Responder, messageChannelsForbidden)
		return nil
	}
	if err != nil {
		return err
	}

	slog.Info("game channels created", "guild_id", event.GuildID, "owner_id", event.UserID, "rooms", count, "channels", len(created))
	respondEphemeral(event.Responder, channelsCreatedMessage(dayName, nightName, count))
	return nil
}

// createGameChannels returns the ids of every channel it managed to create,
// including on error, so partial layouts can still be deleted later.
func (m *Manager) createGameChannels(guildID, dayName, nightName, roleID string, rooms int) ([]string, error) {
	var created []string
	create := func(input discord.CreateChannelInput) (discord.Channel, error) {
		input.GuildID = guildID
		ch, err := m.discord.CreateChannel(input)
		if err != nil {
			return discord.Channel{}, fmt.Errorf("create channel %q: %w", input.Name, err)
		}
		created = append(created, ch.ID)
		return ch, nil
	}

	day, err := create(discord.CreateChannelInput{Name: dayName, Kind: discord.ChannelKindCategory})
	if err != nil {
		return created, err
	}
	if _, err := create(discord.CreateChannelInput{Name: m.cfg.GameChatMarker, Kind: discord.ChannelKindText, ParentID: day.ID}); err != nil {
		return created, err
	}
	if _, err := create(discord.CreateChannelInput{Name: m.cfg.TownSquareMarker, Kind: discord.ChannelKindVoice, ParentID: day.ID}); err != nil {
		return created, err
	}

	hidden := discord.CreateChannelInput{HiddenFromEveryone: true, VisibleToRoleIDs: []string{roleID}}
	nightInput := hidden
	nightInput.Name, nightInput.Kind = nightName, discord.ChannelKindCategory
	night, err := create(nightInput)
	if err != nil {
		return created, err
	}
	for _, name := range pickRoomNames(rooms) {
		roomInput := hidden
		roomInput.Name, roomInput.Kind, roomInput.ParentID = name, discord.ChannelKindVoice, night.ID
		if _, err := create(roomInput); err != nil {
			return created, err
		}
	}
	return created, nil
}

func (m *Manager) handleDeleteGameChannels(ctx context.Context, reg *game.Registry, event discord.SlashCommandEvent) error {
	dayID := event.Options[optionDayCategory]
	nightID := event.Options[optionNightCategory]
	if dayID == "" || nightID == "" {
		respondEphemeral(event.Responder, messageMissingOption)
		return nil
	}
	if !reg.IsBotChannel(dayID) || !reg.IsBotChannel(nightID) {
		respondEphemeral(event.Responder, messageNotBotChannel)
		return nil
	}
	if err := event.Responder.DeferEphemeral(); err != nil {
		return fmt.Errorf("defer response: %w", err)
	}

	var deleted []string
	err := m.deleteCategories(event.GuildID, []string{dayID, nightID}, func(id string) {
		deleted = append(deleted, id)
	})
	if len(deleted) > 0 {
		if ferr := reg.ForgetBotChannels(ctx, deleted...); ferr != nil {
			err = errors.Join(err, ferr)
		}
	}
	if errors.Is(err, discord.ErrForbidden) {
		respondEphemeral(event.Responder, messageChannelsForbidden)
		return nil
	}
	if err != nil {
		return err
	}

	slog.Info("game channels deleted", "guild_id", event.GuildID, "user_id", event.UserID, "channels", len(deleted))
	respondEphemeral(event.Responder, channelsDeletedMessage(len(deleted)))
	return nil
}

func (m *Manager) deleteCategories(guildID string, categoryIDs []string, onDeleted func(id string)) error {
	for _, categoryID := range categoryIDs {
		category, err := m.discord.GetCategory(guildID, categoryID)
		if err != nil {
			return fmt.Errorf("resolve category %s: %w", categoryID, err)
		}
		for _, ch := range category.Channels {
			if err := m.discord.DeleteChannel(ch.ID); err != nil {
				return fmt.Errorf("delete channel %q: %w", ch.Name, err)
			}
			onDeleted(ch.ID)
		}
		if err := m.discord.DeleteChannel(categoryID); err != nil {
			return fmt.Errorf("delete category %q: %w", category.Name, err)
		}
		onDeleted(categoryID)
	}
	return nil
}

func (m *Manager) handleClearChannel(ctx context.Context, reg *game.Registry, event discord.SlashCommandEvent) error {
	channelID := event.Options[optionChannel]
	if channelID == "" {
		respondEphemeral(event.Responder, messageMissingOption)
		return nil
	}
	if !reg.IsBotChannel(channelID) {
		respondEphemeral(event.Responder, messageNotBotChannel)
		return nil
	}
	ch, err := m.discord.GetChannel(event.GuildID, channelID)
	if err != nil {
		return fmt.Errorf("resolve channel: %w", err)
	}
	if ch.Kind != discord.ChannelKindText {
		respondEphemeral(event.Responder, messageNotTextChannel)
		return nil
	}
	if err := event.Responder.DeferEphemeral(); err != nil {
		return fmt.Errorf("defer response: %w", err)
	}

	count, err := m.discord.PurgeChannel(ctx, channelID)
	if errors.Is(err, discord.ErrForbidden) {
		respondEphemeral(event.Responder, messageChannelsForbidden)
		return nil
	}
	if err != nil {
		return fmt.Errorf("purge channel: %w", err)
	}
	respondEphemeral(event.Responder, channelClearedMessage(channelID, count))
	return nil
}

func (m *Manager) handleStoryteller(ctx context.Context, reg *game.Registry, event discord.SlashCommandEvent) error {
	roleID, err := m.storytellerRole(ctx, reg, event.GuildID)
	if errors.Is(err, discord.ErrForbidden) {
		respondEphemeral(event.Responder, messageRoleForbidden)
		return nil
	}
	if err != nil {
		return err
	}

	has, err := m.discord.MemberHasRole(event.GuildID, event.UserID, roleID)
	if err != nil {
		return fmt.Errorf("check storyteller role: %w", err)
	}
	if has {
		err = m.discord.RemoveMemberRole(event.GuildID, event.UserID, roleID)
	} else {
		err = m.discord.AddMemberRole(event.GuildID, event.UserID, roleID)
	}
	if errors.Is(err, discord.ErrForbidden) {
		respondEphemeral(event.Responder, messageRoleForbidden)
		return nil
	}
	if err != nil {
		return fmt.Errorf("toggle storyteller role: %w", err)
	}

	slog.Info("storyteller role toggled", "guild_id", event.GuildID, "user_id", event.UserID, "granted", !has)
	respondEphemeral(event.Responder, storytellerToggledMessage(!has, m.cfg.StorytellerRoleName))
	return nil
}

// storytellerRole returns the cached role id, looking the role up by name or
// creating it on first use.
func (m *Manager) storytellerRole(ctx context.Context, reg *game.Registry, guildID string) (string, error) {
	if id := reg.StorytellerRoleID(); id != "" {
		return id, nil
	}
	role, found, err := m.discord.FindRoleByName(guildID, m.cfg.StorytellerRoleName)
	if err != nil {
		return "", fmt.Errorf("find storyteller role: %w", err)
	}
	if !found {
		role, err = m.discord.CreateRole(guildID, m.cfg.StorytellerRoleName)
		if err != nil {
			return "", fmt.Errorf("create storyteller role: %w", err)
		}
		slog.Info("storyteller role created", "guild_id", guildID, "role_id", role.ID)
	}
	if err := reg.SetStorytellerRoleID(ctx, role.ID); err != nil {
		return "", err
	}
	return role.ID, nil
}
