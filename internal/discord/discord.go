package discord

import (
	"context"
	"errors"
	"time"
)

// ErrForbidden is returned when Discord refuses a privileged action (HTTP 403).
var ErrForbidden = errors.New("discord: forbidden")

type ChannelKind int

const (
	ChannelKindText ChannelKind = iota
	ChannelKindVoice
	ChannelKindCategory
)

type Channel struct {
	ID       string
	Name     string
	Kind     ChannelKind
	ParentID string
	Position int
}

type Category struct {
	ID       string
	Name     string
	Channels []Channel
}

// VoiceChannels returns the voice children in position order.
func (c Category) VoiceChannels() []Channel {
	return c.channelsOfKind(ChannelKindVoice)
}

func (c Category) TextChannels() []Channel {
	return c.channelsOfKind(ChannelKindText)
}

func (c Category) channelsOfKind(kind ChannelKind) []Channel {
	out := make([]Channel, 0, len(c.Channels))
	for _, ch := range c.Channels {
		if ch.Kind == kind {
			out = append(out, ch)
		}
	}
	return out
}

type Member struct {
	ID          string
	DisplayName string
	IsBot       bool
}

type Role struct {
	ID   string
	Name string
}

type CreateChannelInput struct {
	GuildID  string
	Name     string
	Kind     ChannelKind
	ParentID string
	// HiddenFromEveryone denies View Channel to @everyone and allows it to VisibleToRoleIDs.
	HiddenFromEveryone bool
	VisibleToRoleIDs   []string
}

type ButtonStyle int

const (
	ButtonStylePrimary ButtonStyle = iota
	ButtonStyleSecondary
	ButtonStyleSuccess
	ButtonStyleDanger
)

type Button struct {
	CustomID string
	Label    string
	Style    ButtonStyle
}

type SelectOption struct {
	Label string
	Value string
}

type Select struct {
	CustomID    string
	Placeholder string
	Options     []SelectOption
}

// ComponentRow is one action row; either Buttons or Select is set.
type ComponentRow struct {
	Buttons []Button
	Select  *Select
}

type CommandOptionType int

const (
	CommandOptionInteger CommandOptionType = iota
	CommandOptionUser
	CommandOptionVoiceChannel
	CommandOptionTextChannel
	CommandOptionCategory
)

type CommandOption struct {
	Name        string
	Description string
	Type        CommandOptionType
	Required    bool
	MinValue    int
	MaxValue    int
}

type SlashCommandDefinition struct {
	Name        string
	Description string
	Options     []CommandOption
}

// Responder answers a single interaction. Implementations are not safe for concurrent use.
type Responder interface {
	RespondEphemeral(content string) error
	RespondMessage(content string, rows []ComponentRow) error
	DeferEphemeral() error
	Followup(content string) error
	UpdateMessage(content string, rows []ComponentRow) error
}

type SlashCommandEvent struct {
	GuildID     string
	ChannelID   string
	CommandName string
	UserID      string
	UserName    string
	// Options holds option values keyed by name; ids and integers are rendered as strings.
	Options   map[string]string
	Responder Responder
}

type ComponentEvent struct {
	GuildID   string
	ChannelID string
	MessageID string
	CustomID  string
	UserID    string
	UserName  string
	Values    []string
	Responder Responder
}

type VoiceStateEvent struct {
	GuildID         string
	UserID          string
	UserIsBot       bool
	BeforeChannelID string
	AfterChannelID  string
}

type Client interface {
	Connect(ctx context.Context) error
	Close() error
	Run() error
	GuildIDs() []string
	GetBotUserID() (string, error)

	RegisterVoiceStateUpdateHandler(handler func(VoiceStateEvent))
	RegisterSlashCommandHandler(handler func(SlashCommandEvent))
	RegisterComponentHandler(handler func(ComponentEvent))
	UpsertGuildSlashCommands(guildID string, defs []SlashCommandDefinition) error

	SendExpiringMessage(channelID, content string, ttl time.Duration) error
	PurgeChannel(ctx context.Context, channelID string) (int, error)

	GetChannel(guildID, channelID string) (Channel, error)
	GetCategory(guildID, categoryID string) (Category, error)
	CreateChannel(input CreateChannelInput) (Channel, error)
	DeleteChannel(channelID string) error

	GetUserVoiceChannelID(guildID, userID string) (string, error)
	ListVoiceChannelMembers(guildID, channelID string) ([]Member, error)
	MoveMember(guildID, userID, channelID string) error

	FindRoleByName(guildID, name string) (Role, bool, error)
	CreateRole(guildID, name string) (Role, error)
	MemberHasRole(guildID, userID, roleID string) (bool, error)
	AddMemberRole(guildID, userID, roleID string) error
	RemoveMemberRole(guildID, userID, roleID string) error
}
