package bot

import (
	"fmt"
	"strings"
)

const (
	messageUnknownCommand     = ":warning: **Unknown command.**"
	messageWrongGuild         = ":warning: **This bot is not enabled on this server.**"
	messageGenericFailure     = ":warning: **Something went wrong, please try again.**"
	messageAlreadyActive      = "You already have a running game, first quit the other game."
	messageNoActiveGame       = "You do not have an active game, start one first with /game."
	messageNotLinked          = "No categories or players linked to this game yet! Run /link_to_game."
	messageNotYourPanel       = "These controls belong to another storyteller."
	messageNoTimer            = "No timer found!"
	messageTimerCancelled     = "Timer cancelled!"
	messageTimerRunning       = "A timer is already running, cancel it first."
	messageInvalidDuration    = "That is not a valid duration."
	messageGameEnded          = "Game ended"
	messageGameStopped        = "Your game has been stopped."
	messageSelfSpectate       = "You cannot spectate yourself."
	messageNotSpectating      = "You are not spectating anyone."
	messageNotBotChannel      = "Only channels created by this bot can be changed with this command. Nothing was deleted."
	messageRoleForbidden      = "I am not allowed to change your roles. Ask an admin to move my role above the Storyteller role."
	messageChannelsForbidden  = "I am not allowed to manage channels on this server."
	messageMissingOption      = "A required option is missing."
	messageNotTextChannel     = "Only text channels can be cleared."
	messagePlayerCountInvalid = "Player count must be between %d and %d."

	panelPlaceholder = "Select time players have until vote"
)

func panelTitle(gameName string) string {
	return "Game commands for " + gameName
}

func linkedMessage(players int, day, night string) string {
	return fmt.Sprintf("Linked %d players, %q category as day and %q category as night to your game.", players, day, night)
}

func missingTownSquareMessage(marker, day string) string {
	return fmt.Sprintf(":warning: Could not find a voice channel starting with %q in %q. Day, Night and the timer stay disabled until you add one and link again.", marker, day)
}

func moveSummary(destination string, moved, failed []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Moved %d players to %s.", len(moved), destination)
	if len(failed) > 0 {
		fmt.Fprintf(&b, "\nCould not move: %s", strings.Join(failed, ", "))
	}
	return b.String()
}

func insufficientRoomsMessage(players, rooms int) string {
	return fmt.Sprintf("Not enough night rooms: %d players but only %d rooms. Nobody was moved.", players, rooms)
}

func timerStartedMessage(seconds int) string {
	return fmt.Sprintf("Will return players to Town Square after %s.", durationLabel(seconds))
}

func durationLabel(seconds int) string {
	return fmt.Sprintf("%.1f minutes", float64(seconds)/60)
}

func spectatingMessage(targetID string) string {
	return fmt.Sprintf("You are now spectating <@%s>.", targetID)
}

func stoppedSpectatingMessage(targetID string) string {
	return fmt.Sprintf("You stopped spectating <@%s>.", targetID)
}

func storytellerToggledMessage(granted bool, roleName string) string {
	if granted {
		return fmt.Sprintf("You now have the %s role.", roleName)
	}
	return fmt.Sprintf("The %s role was removed from you.", roleName)
}

func channelsCreatedMessage(day, night string, rooms int) string {
	return fmt.Sprintf("Created %q with a game chat and town square, and %q with %d night rooms.", day, night, rooms)
}

func channelsDeletedMessage(count int) string {
	return fmt.Sprintf("Deleted %d channels.", count)
}

func channelClearedMessage(channelID string, count int) string {
	return fmt.Sprintf("Deleted %d messages from <#%s>.", count, channelID)
}
