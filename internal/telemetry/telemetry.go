package telemetry

// Recorder receives operational counters from the game and bot layers.
type Recorder interface {
	ActiveGames(guildID string, count int)
	MemberMoved(operation string, err error)
	TimerFinished(outcome string)
	InteractionHandled(name string, err error)
}

type Nop struct{}

func (Nop) ActiveGames(string, int)          {}
func (Nop) MemberMoved(string, error)        {}
func (Nop) TimerFinished(string)             {}
func (Nop) InteractionHandled(string, error) {}
