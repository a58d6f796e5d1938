package bot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/foxseedlab/townsquare/internal/config"
	"github.com/foxseedlab/townsquare/internal/discord"
	"github.com/foxseedlab/townsquare/internal/game"
	"github.com/foxseedlab/townsquare/internal/telemetry"
	"github.com/foxseedlab/townsquare/internal/webhook"
)

const interactionTimeout = 60 * time.Second

const (
	commandGame               = "game"
	commandLinkToGame         = "link_to_game"
	commandCreateGameChannels = "create_game_channels"
	commandDeleteGameChannels = "delete_game_channels"
	commandClearChannel       = "clear_channel"
	commandStoryteller        = "st"
	commandSpectate           = "spectate"
	commandStopSpectate       = "stop_spectate"
	commandStopGame           = "stop_game"
	commandHelp               = "help"
)

type Manager struct {
	cfg     *config.Config
	discord discord.Client
	games   *game.Directory
	webhook webhook.Sender
	metrics telemetry.Recorder
	now     func() time.Time
}

func NewManager(cfg *config.Config, dc discord.Client, games *game.Directory, wh webhook.Sender, metrics telemetry.Recorder) *Manager {
	if metrics == nil {
		metrics = telemetry.Nop{}
	}
	return &Manager{
		cfg:     cfg,
		discord: dc,
		games:   games,
		webhook: wh,
		metrics: metrics,
		now:     time.Now,
	}
}

type commandHandler func(ctx context.Context, reg *game.Registry, event discord.SlashCommandEvent) error

func (m *Manager) commandHandlers() map[string]commandHandler {
	return map[string]commandHandler{
		commandGame:               m.handleGame,
		commandLinkToGame:         m.handleLinkToGame,
		commandCreateGameChannels: m.handleCreateGameChannels,
		commandDeleteGameChannels: m.handleDeleteGameChannels,
		commandClearChannel:       m.handleClearChannel,
		commandStoryteller:        m.handleStoryteller,
		commandSpectate:           m.handleSpectate,
		commandStopSpectate:       m.handleStopSpectate,
		commandStopGame:           m.handleStopGame,
		commandHelp:               m.handleHelp,
	}
}

func (m *Manager) HandleSlashCommand(event discord.SlashCommandEvent) {
	event.Responder = &deferAwareResponder{Responder: event.Responder}
	if !m.guildAllowed(event.GuildID) {
		respondEphemeral(event.Responder, messageWrongGuild)
		return
	}
	handler, ok := m.commandHandlers()[event.CommandName]
	if !ok {
		slog.Warn("unknown slash command", "guild_id", event.GuildID, "command", event.CommandName)
		respondEphemeral(event.Responder, messageUnknownCommand)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	reg, err := m.games.Registry(ctx, event.GuildID)
	if err == nil {
		err = handler(ctx, reg, event)
	}
	m.metrics.InteractionHandled(event.CommandName, err)
	if err != nil {
		slog.Error("slash command failed",
			"guild_id", event.GuildID,
			"user_id", event.UserID,
			"command", event.CommandName,
			"error", err,
		)
		respondEphemeral(event.Responder, messageGenericFailure)
	}
}

func (m *Manager) HandleComponent(event discord.ComponentEvent) {
	action, viewID, ok := parseCustomID(event.CustomID)
	if !ok {
		return
	}
	event.Responder = &deferAwareResponder{Responder: event.Responder}
	if !m.guildAllowed(event.GuildID) {
		respondEphemeral(event.Responder, messageWrongGuild)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	reg, err := m.games.Registry(ctx, event.GuildID)
	if err == nil {
		err = m.handlePanelAction(ctx, reg, action, viewID, event)
	}
	m.metrics.InteractionHandled("panel_"+action, err)
	if err != nil {
		slog.Error("panel action failed",
			"guild_id", event.GuildID,
			"user_id", event.UserID,
			"action", action,
			"error", err,
		)
		respondEphemeral(event.Responder, messageGenericFailure)
	}
}

// HandleVoiceStateUpdate moves spectators after the player they follow.
func (m *Manager) HandleVoiceStateUpdate(event discord.VoiceStateEvent) {
	if event.UserIsBot || event.AfterChannelID == "" || event.AfterChannelID == event.BeforeChannelID {
		return
	}
	if !m.guildAllowed(event.GuildID) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	reg, err := m.games.Registry(ctx, event.GuildID)
	if err != nil {
		slog.Error("failed to load guild for voice update", "guild_id", event.GuildID, "error", err)
		return
	}
	for _, spectatorID := range reg.SpectatorsOf(event.UserID) {
		m.followInto(event.GuildID, spectatorID, event.AfterChannelID)
	}
}

// followInto moves a spectator to channelID when they are connected elsewhere.
func (m *Manager) followInto(guildID, spectatorID, channelID string) {
	current, err := m.discord.GetUserVoiceChannelID(guildID, spectatorID)
	if err != nil {
		slog.Warn("failed to resolve spectator voice channel", "guild_id", guildID, "user_id", spectatorID, "error", err)
		return
	}
	if current == "" || current == channelID {
		return
	}
	err = m.discord.MoveMember(guildID, spectatorID, channelID)
	m.metrics.MemberMoved("spectate", err)
	if err != nil {
		slog.Warn("failed to move spectator", "guild_id", guildID, "user_id", spectatorID, "channel_id", channelID, "error", err)
		return
	}
	slog.Debug("spectator followed", "guild_id", guildID, "user_id", spectatorID, "channel_id", channelID)
}

func (m *Manager) guildAllowed(guildID string) bool {
	if guildID == "" {
		return false
	}
	return m.cfg.DiscordGuildID == "" || m.cfg.DiscordGuildID == guildID
}

func (m *Manager) publish(ctx context.Context, kind webhook.EventKind, guildID string, g game.Game) {
	err := m.webhook.SendGameEvent(ctx, webhook.GameEventPayload{
		Event:       kind,
		GuildID:     guildID,
		OwnerID:     g.OwnerID,
		OwnerName:   g.OwnerName,
		PlayerCount: len(g.Players),
		OccurredAt:  m.now().UTC(),
	})
	if err != nil {
		slog.Error("failed to send game event webhook", "guild_id", guildID, "owner_id", g.OwnerID, "event", kind, "error", err)
	}
}

func respondEphemeral(r discord.Responder, content string) {
	if err := r.RespondEphemeral(content); err != nil {
		slog.Error("failed to respond to interaction", "error", err)
	}
}

// deferAwareResponder turns ephemeral replies into followups once the
// interaction has been deferred.
type deferAwareResponder struct {
	discord.Responder
	deferred bool
}

func (r *deferAwareResponder) DeferEphemeral() error {
	if err := r.Responder.DeferEphemeral(); err != nil {
		return err
	}
	r.deferred = true
	return nil
}

func (r *deferAwareResponder) RespondEphemeral(content string) error {
	if r.deferred {
		return r.Responder.Followup(content)
	}
	return r.Responder.RespondEphemeral(content)
}

// gameErrorMessage maps domain errors to a notice; ok is false for unexpected errors.
func gameErrorMessage(err error) (string, bool) {
	var rooms *game.InsufficientRoomsError
	switch {
	case errors.As(err, &rooms):
		return insufficientRoomsMessage(rooms.Players, rooms.Rooms), true
	case errors.Is(err, game.ErrAlreadyActive):
		return messageAlreadyActive, true
	case errors.Is(err, game.ErrNoActiveGame):
		return messageNoActiveGame, true
	case errors.Is(err, game.ErrLinkIncomplete):
		return messageNotLinked, true
	case errors.Is(err, game.ErrTimerAlreadyRunning):
		return messageTimerRunning, true
	case errors.Is(err, game.ErrNoTimerFound):
		return messageNoTimer, true
	case errors.Is(err, game.ErrUnauthorized):
		return messageNotYourPanel, true
	case errors.Is(err, game.ErrSelfSpectate):
		return messageSelfSpectate, true
	case errors.Is(err, game.ErrNotSpectating):
		return messageNotSpectating, true
	default:
		return "", false
	}
}

// answer replies with the notice for a known domain error and returns nil,
// or returns err unchanged so the caller logs it.
func answer(err error, reply func(string)) error {
	msg, ok := gameErrorMessage(err)
	if !ok {
		return err
	}
	reply(msg)
	return nil
}

func SlashCommandDefinitions() []discord.SlashCommandDefinition {
	return []discord.SlashCommandDefinition{
		{Name: commandGame, Description: "Start a game and post its control panel"},
		{
			Name:        commandLinkToGame,
			Description: "Link players and a day and night category to your game",
			Options: []discord.CommandOption{
				{Name: optionPlayerRoom, Description: "Voice channel with the players", Type: discord.CommandOptionVoiceChannel, Required: true},
				{Name: optionDayCategory, Description: "Category used during the day", Type: discord.CommandOptionCategory, Required: true},
				{Name: optionNightCategory, Description: "Category used during the night", Type: discord.CommandOptionCategory, Required: true},
			},
		},
		{
			Name:        commandCreateGameChannels,
			Description: "Create day and night channels for a game",
			Options: []discord.CommandOption{
				{Name: optionPlayerCount, Description: "Number of night rooms", Type: discord.CommandOptionInteger, Required: true, MinValue: minPlayerCount, MaxValue: maxPlayerCount},
			},
		},
		{
			Name:        commandDeleteGameChannels,
			Description: "Delete game categories created by this bot",
			Options: []discord.CommandOption{
				{Name: optionDayCategory, Description: "Day category to delete", Type: discord.CommandOptionCategory, Required: true},
				{Name: optionNightCategory, Description: "Night category to delete", Type: discord.CommandOptionCategory, Required: true},
			},
		},
		{
			Name:        commandClearChannel,
			Description: "Delete all messages in a channel created by this bot",
			Options: []discord.CommandOption{
				{Name: optionChannel, Description: "Text channel to clear", Type: discord.CommandOptionTextChannel, Required: true},
			},
		},
		{Name: commandStoryteller, Description: "Toggle the Storyteller role"},
		{
			Name:        commandSpectate,
			Description: "Follow another player between voice channels",
			Options: []discord.CommandOption{
				{Name: optionTarget, Description: "Player to follow", Type: discord.CommandOptionUser, Required: true},
			},
		},
		{Name: commandStopSpectate, Description: "Stop following a player"},
		{Name: commandStopGame, Description: "Stop your game"},
		{
			Name:        commandHelp,
			Description: "Show help",
			Options: []discord.CommandOption{
				{Name: optionPage, Description: "Help page", Type: discord.CommandOptionInteger, MinValue: 1, MaxValue: len(helpPages)},
			},
		},
	}
}
