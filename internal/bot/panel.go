package bot

import (
	"strconv"
	"strings"

	"github.com/foxseedlab/townsquare/internal/discord"
)

const customIDPrefix = "tsq"

const (
	actionDay         = "day"
	actionNight       = "night"
	actionCancelTimer = "cancel"
	actionQuit        = "quit"
	actionTimer       = "timer"
)

const (
	minTimerSteps = 4
	maxTimerSteps = 26
	timerStep     = 30
)

func customID(action, viewID string) string {
	return customIDPrefix + ":" + action + ":" + viewID
}

func parseCustomID(id string) (action, viewID string, ok bool) {
	parts := strings.Split(id, ":")
	if len(parts) != 3 || parts[0] != customIDPrefix || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

func panelRows(viewID string) []discord.ComponentRow {
	return []discord.ComponentRow{
		{Buttons: []discord.Button{
			{CustomID: customID(actionDay, viewID), Label: "Day", Style: discord.ButtonStyleSuccess},
			{CustomID: customID(actionNight, viewID), Label: "Night", Style: discord.ButtonStyleSecondary},
			{CustomID: customID(actionCancelTimer, viewID), Label: "Cancel timer", Style: discord.ButtonStyleDanger},
			{CustomID: customID(actionQuit, viewID), Label: "Quit game", Style: discord.ButtonStyleDanger},
		}},
		{Select: &discord.Select{
			CustomID:    customID(actionTimer, viewID),
			Placeholder: panelPlaceholder,
			Options:     durationOptions(),
		}},
	}
}

// durationOptions offers 2 to 13 minutes in half-minute steps; values are seconds.
func durationOptions() []discord.SelectOption {
	opts := make([]discord.SelectOption, 0, maxTimerSteps-minTimerSteps+1)
	for i := minTimerSteps; i <= maxTimerSteps; i++ {
		seconds := i * timerStep
		opts = append(opts, discord.SelectOption{
			Label: durationLabel(seconds),
			Value: strconv.Itoa(seconds),
		})
	}
	return opts
}

func parseDuration(values []string) (int, bool) {
	if len(values) != 1 {
		return 0, false
	}
	seconds, err := strconv.Atoi(values[0])
	if err != nil || seconds < minTimerSteps*timerStep || seconds > maxTimerSteps*timerStep || seconds%timerStep != 0 {
		return 0, false
	}
	return seconds, true
}
