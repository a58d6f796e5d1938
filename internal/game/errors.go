package game

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyActive       = errors.New("owner already has an active game")
	ErrNoActiveGame        = errors.New("owner has no active game")
	ErrLinkIncomplete      = errors.New("game categories are not linked")
	ErrInsufficientRooms   = errors.New("not enough night rooms for every player")
	ErrTimerAlreadyRunning = errors.New("a timer is already running for this game")
	ErrNoTimerFound        = errors.New("no running timer found")
	ErrUnauthorized        = errors.New("control panel belongs to another storyteller")
	ErrSelfSpectate        = errors.New("cannot spectate yourself")
	ErrNotSpectating       = errors.New("not spectating anyone")
)

// InsufficientRoomsError reports the shortfall of a refused night transition.
type InsufficientRoomsError struct {
	Players int
	Rooms   int
}

func (e *InsufficientRoomsError) Error() string {
	return fmt.Sprintf("%s: %d players, %d rooms", ErrInsufficientRooms, e.Players, e.Rooms)
}

func (e *InsufficientRoomsError) Is(target error) bool {
	return target == ErrInsufficientRooms
}
