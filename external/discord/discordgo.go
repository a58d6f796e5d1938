package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	discordpkg "github.com/foxseedlab/townsquare/internal/discord"
)

const (
	purgeBatchSize   = 100
	bulkDeleteMaxAge = 14 * 24 * time.Hour
)

type Client struct {
	session   *discordgo.Session
	token     string
	botUserID string
}

func NewClient(token string) discordpkg.Client {
	return &Client{
		token: token,
	}
}

func (c *Client) Connect(ctx context.Context) error {
	_ = ctx
	s, err := discordgo.New("Bot " + c.token)
	if err != nil {
		return err
	}
	c.session = s
	s.Identify.Intents = discordgo.MakeIntent(discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates)
	s.State.TrackVoice = true
	s.State.TrackChannels = true
	s.State.TrackRoles = true
	if err := s.Open(); err != nil {
		return err
	}
	userID, err := c.GetBotUserID()
	if err != nil {
		return err
	}
	c.botUserID = userID
	return nil
}

func (c *Client) Close() error {
	if c.session != nil {
		return c.session.Close()
	}
	return nil
}

func (c *Client) Run() error {
	select {}
}

func (c *Client) GuildIDs() []string {
	if c.session == nil || c.session.State == nil {
		return nil
	}
	c.session.State.RLock()
	defer c.session.State.RUnlock()
	ids := make([]string, 0, len(c.session.State.Guilds))
	for _, g := range c.session.State.Guilds {
		if g != nil && g.ID != "" {
			ids = append(ids, g.ID)
		}
	}
	return ids
}

func (c *Client) GetBotUserID() (string, error) {
	if c.botUserID != "" {
		return c.botUserID, nil
	}
	if c.session == nil {
		return "", fmt.Errorf("discord session is not initialized")
	}
	if c.session.State != nil && c.session.State.User != nil && c.session.State.User.ID != "" {
		c.botUserID = c.session.State.User.ID
		return c.botUserID, nil
	}
	u, err := c.session.User("@me")
	if err != nil {
		return "", err
	}
	c.botUserID = u.ID
	return c.botUserID, nil
}

func (c *Client) RegisterVoiceStateUpdateHandler(handler func(discordpkg.VoiceStateEvent)) {
	c.session.AddHandler(func(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
		if vs == nil || vs.VoiceState == nil {
			return
		}
		beforeChannelID := ""
		if vs.BeforeUpdate != nil {
			beforeChannelID = vs.BeforeUpdate.ChannelID
		}
		afterChannelID := vs.ChannelID
		if beforeChannelID == afterChannelID && beforeChannelID != "" {
			return
		}
		if vs.GuildID == "" || vs.UserID == "" {
			return
		}
		handler(discordpkg.VoiceStateEvent{
			GuildID:         vs.GuildID,
			UserID:          vs.UserID,
			UserIsBot:       botFlagFromVoiceState(vs.VoiceState),
			BeforeChannelID: beforeChannelID,
			AfterChannelID:  afterChannelID,
		})
	})
}

func (c *Client) RegisterSlashCommandHandler(handler func(discordpkg.SlashCommandEvent)) {
	c.session.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		if ic == nil || ic.Type != discordgo.InteractionApplicationCommand {
			return
		}
		data := ic.ApplicationCommandData()
		if data.Name == "" {
			return
		}
		userID, userName := interactionUser(ic.Interaction)
		if userID == "" {
			return
		}
		slog.Info("slash command interaction received", "guild_id", ic.GuildID, "channel_id", ic.ChannelID, "command", data.Name, "user_id", userID)
		handler(discordpkg.SlashCommandEvent{
			GuildID:     ic.GuildID,
			ChannelID:   ic.ChannelID,
			CommandName: data.Name,
			UserID:      userID,
			UserName:    userName,
			Options:     commandOptionValues(data.Options),
			Responder:   &interactionResponder{session: s, interaction: ic.Interaction},
		})
	})
}

func (c *Client) RegisterComponentHandler(handler func(discordpkg.ComponentEvent)) {
	c.session.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		if ic == nil || ic.Type != discordgo.InteractionMessageComponent {
			return
		}
		data := ic.MessageComponentData()
		userID, userName := interactionUser(ic.Interaction)
		if userID == "" || data.CustomID == "" {
			return
		}
		messageID := ""
		if ic.Message != nil {
			messageID = ic.Message.ID
		}
		slog.Info("component interaction received", "guild_id", ic.GuildID, "channel_id", ic.ChannelID, "custom_id", data.CustomID, "user_id", userID)
		handler(discordpkg.ComponentEvent{
			GuildID:   ic.GuildID,
			ChannelID: ic.ChannelID,
			MessageID: messageID,
			CustomID:  data.CustomID,
			UserID:    userID,
			UserName:  userName,
			Values:    data.Values,
			Responder: &interactionResponder{session: s, interaction: ic.Interaction},
		})
	})
}

func interactionUser(i *discordgo.Interaction) (string, string) {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID, memberDisplayName(i.Member)
	}
	if i.User != nil {
		return i.User.ID, preferredDiscordName(i.User.GlobalName, i.User.Username, i.User.ID)
	}
	return "", ""
}

func commandOptionValues(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]string {
	values := make(map[string]string, len(opts))
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch v := opt.Value.(type) {
		case string:
			values[opt.Name] = v
		case float64:
			values[opt.Name] = strconv.FormatInt(int64(v), 10)
		case bool:
			values[opt.Name] = strconv.FormatBool(v)
		}
	}
	return values
}

func (c *Client) UpsertGuildSlashCommands(guildID string, defs []discordpkg.SlashCommandDefinition) error {
	appID := c.applicationID()
	if appID == "" {
		return fmt.Errorf("discord application id is not available")
	}
	payload := make([]*discordgo.ApplicationCommand, 0, len(defs))
	for _, def := range defs {
		if def.Name == "" {
			continue
		}
		payload = append(payload, toApplicationCommand(def))
	}
	_, err := c.session.ApplicationCommandBulkOverwrite(appID, guildID, payload)
	return wrapRESTError(err)
}

func toApplicationCommand(def discordpkg.SlashCommandDefinition) *discordgo.ApplicationCommand {
	cmd := &discordgo.ApplicationCommand{
		Name:        def.Name,
		Description: def.Description,
	}
	for _, opt := range def.Options {
		o := &discordgo.ApplicationCommandOption{
			Name:        opt.Name,
			Description: opt.Description,
			Required:    opt.Required,
		}
		switch opt.Type {
		case discordpkg.CommandOptionInteger:
			o.Type = discordgo.ApplicationCommandOptionInteger
			if opt.MaxValue > 0 {
				minValue := float64(opt.MinValue)
				o.MinValue = &minValue
				o.MaxValue = float64(opt.MaxValue)
			}
		case discordpkg.CommandOptionUser:
			o.Type = discordgo.ApplicationCommandOptionUser
		case discordpkg.CommandOptionVoiceChannel:
			o.Type = discordgo.ApplicationCommandOptionChannel
			o.ChannelTypes = []discordgo.ChannelType{discordgo.ChannelTypeGuildVoice}
		case discordpkg.CommandOptionTextChannel:
			o.Type = discordgo.ApplicationCommandOptionChannel
			o.ChannelTypes = []discordgo.ChannelType{discordgo.ChannelTypeGuildText}
		case discordpkg.CommandOptionCategory:
			o.Type = discordgo.ApplicationCommandOptionChannel
			o.ChannelTypes = []discordgo.ChannelType{discordgo.ChannelTypeGuildCategory}
		}
		cmd.Options = append(cmd.Options, o)
	}
	return cmd
}

func (c *Client) SendExpiringMessage(channelID, content string, ttl time.Duration) error {
	msg, err := c.session.ChannelMessageSend(channelID, content)
	if err != nil {
		return wrapRESTError(err)
	}
	time.AfterFunc(ttl, func() {
		if err := c.session.ChannelMessageDelete(channelID, msg.ID); err != nil && !isRESTStatus(err, http.StatusNotFound) {
			slog.Warn("failed to delete expiring message", "error", err, "channel_id", channelID, "message_id", msg.ID)
		}
	})
	return nil
}

// PurgeChannel deletes every message in the channel, newest first.
func (c *Client) PurgeChannel(ctx context.Context, channelID string) (int, error) {
	deleted := 0
	before := ""
	for {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		msgs, err := c.session.ChannelMessages(channelID, purgeBatchSize, before, "", "")
		if err != nil {
			return deleted, wrapRESTError(err)
		}
		if len(msgs) == 0 {
			return deleted, nil
		}
		bulk := make([]string, 0, len(msgs))
		cutoff := time.Now().Add(-bulkDeleteMaxAge)
		for _, m := range msgs {
			if m.Timestamp.After(cutoff) {
				bulk = append(bulk, m.ID)
				continue
			}
			if err := c.session.ChannelMessageDelete(channelID, m.ID); err != nil {
				return deleted, wrapRESTError(err)
			}
			deleted++
		}
		if len(bulk) > 0 {
			if err := c.session.ChannelMessagesBulkDelete(channelID, bulk); err != nil {
				return deleted, wrapRESTError(err)
			}
			deleted += len(bulk)
		}
		before = msgs[len(msgs)-1].ID
	}
}

func (c *Client) GetChannel(guildID, channelID string) (discordpkg.Channel, error) {
	ch := c.resolveChannel(channelID)
	if ch == nil {
		return discordpkg.Channel{}, fmt.Errorf("channel %s not found", channelID)
	}
	if guildID != "" && ch.GuildID != "" && ch.GuildID != guildID {
		return discordpkg.Channel{}, fmt.Errorf("channel %s does not belong to guild %s", channelID, guildID)
	}
	return toChannel(ch), nil
}

func (c *Client) GetCategory(guildID, categoryID string) (discordpkg.Category, error) {
	cat := c.resolveChannel(categoryID)
	if cat == nil || cat.Type != discordgo.ChannelTypeGuildCategory {
		return discordpkg.Category{}, fmt.Errorf("category %s not found", categoryID)
	}
	channels, err := c.guildChannels(guildID)
	if err != nil {
		return discordpkg.Category{}, err
	}
	out := discordpkg.Category{ID: cat.ID, Name: cat.Name}
	for _, ch := range channels {
		if ch == nil || ch.ParentID != categoryID {
			continue
		}
		out.Channels = append(out.Channels, toChannel(ch))
	}
	slices.SortStableFunc(out.Channels, func(a, b discordpkg.Channel) int {
		if a.Position != b.Position {
			return a.Position - b.Position
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (c *Client) guildChannels(guildID string) ([]*discordgo.Channel, error) {
	if c.session.State != nil {
		guild, err := c.session.State.Guild(guildID)
		if err == nil && guild != nil && len(guild.Channels) > 0 {
			return guild.Channels, nil
		}
	}
	channels, err := c.session.GuildChannels(guildID)
	return channels, wrapRESTError(err)
}

func (c *Client) CreateChannel(input discordpkg.CreateChannelInput) (discordpkg.Channel, error) {
	data := discordgo.GuildChannelCreateData{
		Name:     input.Name,
		Type:     toChannelType(input.Kind),
		ParentID: input.ParentID,
	}
	if input.HiddenFromEveryone {
		data.PermissionOverwrites = c.hiddenChannelOverwrites(input.GuildID, input.VisibleToRoleIDs)
	}
	ch, err := c.session.GuildChannelCreateComplex(input.GuildID, data)
	if err != nil {
		return discordpkg.Channel{}, wrapRESTError(err)
	}
	return toChannel(ch), nil
}

func (c *Client) hiddenChannelOverwrites(guildID string, roleIDs []string) []*discordgo.PermissionOverwrite {
	const visible = discordgo.PermissionViewChannel | discordgo.PermissionVoiceConnect
	overwrites := []*discordgo.PermissionOverwrite{
		// the @everyone role shares the guild id
		{ID: guildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
	}
	for _, roleID := range roleIDs {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{ID: roleID, Type: discordgo.PermissionOverwriteTypeRole, Allow: visible})
	}
	if botID, err := c.GetBotUserID(); err == nil {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    botID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: visible | discordgo.PermissionVoiceMoveMembers,
		})
	}
	return overwrites
}

func (c *Client) DeleteChannel(channelID string) error {
	_, err := c.session.ChannelDelete(channelID)
	return wrapRESTError(err)
}

func (c *Client) GetUserVoiceChannelID(guildID, userID string) (string, error) {
	if c.session == nil {
		return "", nil
	}
	if c.session.State != nil {
		vs, err := c.session.State.VoiceState(guildID, userID)
		if err == nil && vs != nil {
			return vs.ChannelID, nil
		}
		guild, err := c.session.State.Guild(guildID)
		if err == nil && guild != nil {
			for _, state := range guild.VoiceStates {
				if state != nil && state.UserID == userID {
					return state.ChannelID, nil
				}
			}
		}
	}

	// Cache may be cold right after bot startup; ask Discord API directly as fallback.
	vs, err := c.session.UserVoiceState(guildID, userID)
	if err != nil {
		if isRESTStatus(err, http.StatusNotFound) {
			return "", nil
		}
		return "", err
	}
	if vs == nil {
		return "", nil
	}
	return vs.ChannelID, nil
}

func (c *Client) ListVoiceChannelMembers(guildID, channelID string) ([]discordpkg.Member, error) {
	if c.session == nil || c.session.State == nil {
		return nil, fmt.Errorf("discord session is not initialized")
	}
	guild, err := c.session.State.Guild(guildID)
	if err != nil || guild == nil {
		return nil, fmt.Errorf("guild %s is not cached: %w", guildID, err)
	}
	members := make([]discordpkg.Member, 0)
	seen := make(map[string]struct{})
	for _, state := range guild.VoiceStates {
		if state == nil || state.ChannelID != channelID || state.UserID == "" {
			continue
		}
		if _, exists := seen[state.UserID]; exists {
			continue
		}
		seen[state.UserID] = struct{}{}
		members = append(members, c.resolveMember(guildID, state))
	}
	return members, nil
}

func (c *Client) resolveMember(guildID string, state *discordgo.VoiceState) discordpkg.Member {
	member := state.Member
	if member == nil || member.User == nil {
		member = c.resolveGuildMember(guildID, state.UserID)
	}
	if member == nil || member.User == nil {
		return discordpkg.Member{ID: state.UserID, DisplayName: state.UserID}
	}
	return discordpkg.Member{
		ID:          state.UserID,
		DisplayName: memberDisplayName(member),
		IsBot:       member.User.Bot,
	}
}

func (c *Client) MoveMember(guildID, userID, channelID string) error {
	return wrapRESTError(c.session.GuildMemberMove(guildID, userID, &channelID))
}

func (c *Client) FindRoleByName(guildID, name string) (discordpkg.Role, bool, error) {
	roles, err := c.guildRoles(guildID)
	if err != nil {
		return discordpkg.Role{}, false, err
	}
	for _, r := range roles {
		if r != nil && r.Name == name {
			return discordpkg.Role{ID: r.ID, Name: r.Name}, true, nil
		}
	}
	return discordpkg.Role{}, false, nil
}

func (c *Client) guildRoles(guildID string) ([]*discordgo.Role, error) {
	if c.session.State != nil {
		guild, err := c.session.State.Guild(guildID)
		if err == nil && guild != nil && len(guild.Roles) > 0 {
			return guild.Roles, nil
		}
	}
	roles, err := c.session.GuildRoles(guildID)
	return roles, wrapRESTError(err)
}

func (c *Client) CreateRole(guildID, name string) (discordpkg.Role, error) {
	mentionable := true
	r, err := c.session.GuildRoleCreate(guildID, &discordgo.RoleParams{Name: name, Mentionable: &mentionable})
	if err != nil {
		return discordpkg.Role{}, wrapRESTError(err)
	}
	return discordpkg.Role{ID: r.ID, Name: r.Name}, nil
}

func (c *Client) MemberHasRole(guildID, userID, roleID string) (bool, error) {
	member := c.resolveGuildMember(guildID, userID)
	if member == nil {
		return false, fmt.Errorf("member %s not found in guild %s", userID, guildID)
	}
	return slices.Contains(member.Roles, roleID), nil
}

func (c *Client) AddMemberRole(guildID, userID, roleID string) error {
	return wrapRESTError(c.session.GuildMemberRoleAdd(guildID, userID, roleID))
}

func (c *Client) RemoveMemberRole(guildID, userID, roleID string) error {
	return wrapRESTError(c.session.GuildMemberRoleRemove(guildID, userID, roleID))
}

func wrapRESTError(err error) error {
	if err == nil {
		return nil
	}
	if isRESTStatus(err, http.StatusForbidden) {
		return fmt.Errorf("%w: %v", discordpkg.ErrForbidden, err)
	}
	return err
}

func isRESTStatus(err error, status int) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Response == nil {
		return false
	}
	return restErr.Response.StatusCode == status
}

func botFlagFromVoiceState(state *discordgo.VoiceState) bool {
	if state != nil && state.Member != nil && state.Member.User != nil {
		return state.Member.User.Bot
	}
	return false
}

func (c *Client) resolveChannel(channelID string) *discordgo.Channel {
	if c.session == nil {
		return nil
	}
	if c.session.State != nil {
		channel, err := c.session.State.Channel(channelID)
		if err == nil && channel != nil {
			return channel
		}
	}
	channel, err := c.session.Channel(channelID)
	if err != nil || channel == nil {
		return nil
	}
	return channel
}

func (c *Client) resolveGuildMember(guildID, userID string) *discordgo.Member {
	if c.session == nil {
		return nil
	}
	if c.session.State != nil {
		member, err := c.session.State.Member(guildID, userID)
		if err == nil && member != nil {
			return member
		}
	}
	member, err := c.session.GuildMember(guildID, userID)
	if err != nil {
		return nil
	}
	return member
}

func memberDisplayName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	if member.User == nil {
		return ""
	}
	return preferredDiscordName(member.User.GlobalName, member.User.Username, member.User.ID)
}

func preferredDiscordName(globalName, username, fallback string) string {
	if globalName != "" {
		return globalName
	}
	if username != "" {
		return username
	}
	return fallback
}

func toChannel(ch *discordgo.Channel) discordpkg.Channel {
	return discordpkg.Channel{
		ID:       ch.ID,
		Name:     ch.Name,
		Kind:     toChannelKind(ch.Type),
		ParentID: ch.ParentID,
		Position: ch.Position,
	}
}

func toChannelKind(t discordgo.ChannelType) discordpkg.ChannelKind {
	switch t {
	case discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice:
		return discordpkg.ChannelKindVoice
	case discordgo.ChannelTypeGuildCategory:
		return discordpkg.ChannelKindCategory
	default:
		return discordpkg.ChannelKindText
	}
}

func toChannelType(kind discordpkg.ChannelKind) discordgo.ChannelType {
	switch kind {
	case discordpkg.ChannelKindVoice:
		return discordgo.ChannelTypeGuildVoice
	case discordpkg.ChannelKindCategory:
		return discordgo.ChannelTypeGuildCategory
	default:
		return discordgo.ChannelTypeGuildText
	}
}

func (c *Client) applicationID() string {
	if c.session == nil || c.session.State == nil {
		return ""
	}
	if c.session.State.Application != nil && c.session.State.Application.ID != "" {
		return c.session.State.Application.ID
	}
	if c.session.State.User != nil {
		return c.session.State.User.ID
	}
	return ""
}
