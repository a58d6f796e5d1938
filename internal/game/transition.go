package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/foxseedlab/townsquare/internal/discord"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/foxseedlab/townsquare/internal/game")

const (
	operationToDay       = "to_day"
	operationToNight     = "to_night"
	operationTimerExpiry = "timer_expiry"
)

// MoveReport lists members by display name. Order follows the platform's
// channel listing, which is not guaranteed to be stable.
type MoveReport struct {
	Moved  []string
	Failed []string
}

// ToDay gathers everyone from the night rooms into the town square.
func (r *Registry) ToDay(ctx context.Context, ownerID string) (MoveReport, error) {
	ctx, span := r.startSpan(ctx, "game.ToDay", ownerID)
	defer span.End()

	g, err := r.linkedGame(ownerID)
	if err != nil {
		endSpan(span, MoveReport{}, err)
		return MoveReport{}, err
	}
	report, err := r.gather(ctx, operationToDay, g.NightCategory.Rooms, g.TownSquare, g.OwnerID)
	endSpan(span, report, err)
	return report, err
}

// ToNight sends each town square member to their own night room. Nobody is
// moved when there are fewer rooms than members.
func (r *Registry) ToNight(ctx context.Context, ownerID string) (MoveReport, error) {
	ctx, span := r.startSpan(ctx, "game.ToNight", ownerID)
	defer span.End()

	g, err := r.linkedGame(ownerID)
	if err != nil {
		endSpan(span, MoveReport{}, err)
		return MoveReport{}, err
	}
	report, err := r.scatter(ctx, g)
	endSpan(span, report, err)
	return report, err
}

func (r *Registry) scatter(_ context.Context, g Game) (MoveReport, error) {
	members, err := r.platform.ListVoiceChannelMembers(r.guildID, g.TownSquare.ID)
	if err != nil {
		return MoveReport{}, fmt.Errorf("list members of %s: %w", g.TownSquare.Name, err)
	}
	travellers := make([]discord.Member, 0, len(members))
	for _, m := range members {
		if m.ID != g.OwnerID {
			travellers = append(travellers, m)
		}
	}
	rooms := make([]Channel, 0, len(g.NightCategory.Rooms))
	for _, room := range g.NightCategory.Rooms {
		if room.ID != g.TownSquare.ID {
			rooms = append(rooms, room)
		}
	}
	if len(travellers) > len(rooms) {
		return MoveReport{}, &InsufficientRoomsError{Players: len(travellers), Rooms: len(rooms)}
	}

	var report MoveReport
	for i, m := range travellers {
		r.move(operationToNight, m, rooms[i], &report)
	}
	return report, nil
}

// gather moves every member of rooms, except excludedID, into target.
// Rooms matching target by id or name are skipped.
func (r *Registry) gather(_ context.Context, operation string, rooms []Channel, target Channel, excludedID string) (MoveReport, error) {
	var report MoveReport
	for _, room := range rooms {
		if room.ID == target.ID || room.Name == target.Name {
			continue
		}
		members, err := r.platform.ListVoiceChannelMembers(r.guildID, room.ID)
		if err != nil {
			return report, fmt.Errorf("list members of %s: %w", room.Name, err)
		}
		for _, m := range members {
			if m.ID == excludedID {
				continue
			}
			r.move(operation, m, target, &report)
		}
	}
	return report, nil
}

func (r *Registry) move(operation string, m discord.Member, target Channel, report *MoveReport) {
	err := r.platform.MoveMember(r.guildID, m.ID, target.ID)
	r.metrics.MemberMoved(operation, err)
	if err != nil {
		slog.Warn("failed to move member",
			"guild_id", r.guildID,
			"operation", operation,
			"member", m.DisplayName,
			"target", target.Name,
			"error", err,
		)
		report.Failed = append(report.Failed, m.DisplayName)
		return
	}
	report.Moved = append(report.Moved, m.DisplayName)
}

func (r *Registry) linkedGame(ownerID string) (Game, error) {
	g, ok := r.Get(ownerID)
	if !ok {
		return Game{}, ErrNoActiveGame
	}
	if !g.Linked || g.TownSquare.IsZero() {
		return Game{}, ErrLinkIncomplete
	}
	return g, nil
}

func (r *Registry) startSpan(ctx context.Context, name, ownerID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("guild.id", r.guildID),
		attribute.String("owner.id", ownerID),
	))
}

func endSpan(span trace.Span, report MoveReport, err error) {
	span.SetAttributes(
		attribute.Int("members.moved", len(report.Moved)),
		attribute.Int("members.failed", len(report.Failed)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
