package bot

const helpPageOne = `**Commands (1/2)**

**/spectate** <player>
Follow another player. Whenever they move to a different voice channel you are moved along with them. Handy for watching a Storyteller run a game.

**/stop_spectate**
Stop following the player you were spectating.

**/game**
Start a new game and post its control panel. The panel only responds to you, so several games can run side by side.

**/link_to_game** <player room> <day category> <night category>
Bind a day and a night category to your game and record everyone in the player room as a player. The day category needs a voice channel whose name starts with "Town Square". You need the Storyteller role to see the night category, use /st for that.

The control panel has these controls:
- Day: moves every player except you from the night rooms to the Town Square.
- Night: moves every player except you from the Town Square to the night rooms, one player per room.
- Cancel timer: stops a running timer.
- Quit game: ends the game and removes the Storyteller role from you.
- Timer select: pick how long players may talk before voting. When time runs out everyone in the day rooms is moved to the Town Square. The game chat gets a reminder every 30 seconds.

**/stop_game**
End your game without the panel. Prefer the Quit game button; this command leaves your roles untouched.`

const helpPageTwo = `**Commands (2/2)**

**/create_game_channels** <player count>
Create a day category with a game chat and a Town Square, plus a hidden night category with one room per player. Channels made this way always give the bot the permissions it needs.

**/delete_game_channels** <day category> <night category>
Delete game categories and everything inside them. Only categories created by this bot can be deleted; anything else is refused and nothing is removed.

**/clear_channel** <channel>
Delete every message in a text channel, meant for resetting the game chat. Only channels created by this bot can be cleared.

**/st**
Give yourself the Storyteller role, or take it away if you already have it. The role lets you see and join the night rooms.

**/help** <page>
Show this help.`

var helpPages = []string{helpPageOne, helpPageTwo}

func helpPage(page int) string {
	if page < 1 || page > len(helpPages) {
		page = 1
	}
	return helpPages[page-1]
}
