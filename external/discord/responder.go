package discord

import (
	"github.com/bwmarrin/discordgo"
	discordpkg "github.com/foxseedlab/townsquare/internal/discord"
)

type interactionResponder struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction
}

func (r *interactionResponder) RespondEphemeral(content string) error {
	return r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func (r *interactionResponder) RespondMessage(content string, rows []discordpkg.ComponentRow) error {
	return r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: toMessageComponents(rows),
		},
	})
}

func (r *interactionResponder) DeferEphemeral() error {
	return r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

func (r *interactionResponder) Followup(content string) error {
	_, err := r.session.FollowupMessageCreate(r.interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	return err
}

func (r *interactionResponder) UpdateMessage(content string, rows []discordpkg.ComponentRow) error {
	return r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: toMessageComponents(rows),
		},
	})
}

// toMessageComponents never returns nil so that an update with no rows clears the panel.
func toMessageComponents(rows []discordpkg.ComponentRow) []discordgo.MessageComponent {
	out := make([]discordgo.MessageComponent, 0, len(rows))
	for _, row := range rows {
		if row.Select != nil {
			out = append(out, discordgo.ActionsRow{Components: []discordgo.MessageComponent{toSelectMenu(*row.Select)}})
			continue
		}
		buttons := make([]discordgo.MessageComponent, 0, len(row.Buttons))
		for _, b := range row.Buttons {
			buttons = append(buttons, discordgo.Button{
				CustomID: b.CustomID,
				Label:    b.Label,
				Style:    toButtonStyle(b.Style),
			})
		}
		if len(buttons) > 0 {
			out = append(out, discordgo.ActionsRow{Components: buttons})
		}
	}
	return out
}

func toSelectMenu(s discordpkg.Select) discordgo.SelectMenu {
	minValues := 1
	options := make([]discordgo.SelectMenuOption, 0, len(s.Options))
	for _, o := range s.Options {
		options = append(options, discordgo.SelectMenuOption{Label: o.Label, Value: o.Value})
	}
	return discordgo.SelectMenu{
		MenuType:    discordgo.StringSelectMenu,
		CustomID:    s.CustomID,
		Placeholder: s.Placeholder,
		MinValues:   &minValues,
		MaxValues:   1,
		Options:     options,
	}
}

func toButtonStyle(style discordpkg.ButtonStyle) discordgo.ButtonStyle {
	switch style {
	case discordpkg.ButtonStyleSecondary:
		return discordgo.SecondaryButton
	case discordpkg.ButtonStyleSuccess:
		return discordgo.SuccessButton
	case discordpkg.ButtonStyleDanger:
		return discordgo.DangerButton
	default:
		return discordgo.PrimaryButton
	}
}
