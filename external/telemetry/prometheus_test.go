package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/foxseedlab/townsquare/internal/discord"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusRecorder_MoveOutcomes(t *testing.T) {
	p := NewPrometheusRecorder()
	p.MemberMoved("to_day", nil)
	p.MemberMoved("to_day", nil)
	p.MemberMoved("to_day", fmt.Errorf("move: %w", discord.ErrForbidden))
	p.MemberMoved("to_night", errors.New("boom"))

	if got := testutil.ToFloat64(p.memberMoves.WithLabelValues("to_day", "ok")); got != 2 {
		t.Fatalf("unexpected ok count: %v", got)
	}
	if got := testutil.ToFloat64(p.memberMoves.WithLabelValues("to_day", "forbidden")); got != 1 {
		t.Fatalf("unexpected forbidden count: %v", got)
	}
	if got := testutil.ToFloat64(p.memberMoves.WithLabelValues("to_night", "error")); got != 1 {
		t.Fatalf("unexpected error count: %v", got)
	}
}

func TestPrometheusRecorder_GaugeTracksLatestValue(t *testing.T) {
	p := NewPrometheusRecorder()
	p.ActiveGames("guild-1", 3)
	p.ActiveGames("guild-1", 1)
	if got := testutil.ToFloat64(p.activeGames.WithLabelValues("guild-1")); got != 1 {
		t.Fatalf("unexpected gauge: %v", got)
	}
}

func TestPrometheusRecorder_HandlerExposesMetrics(t *testing.T) {
	p := NewPrometheusRecorder()
	p.TimerFinished("expired")
	p.InteractionHandled("game", nil)

	server := httptest.NewServer(p.Handler())
	defer server.Close()

	resp, err := server.Client().Get(server.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	for _, want := range []string{
		`townsquare_timers_finished_total{outcome="expired"} 1`,
		`townsquare_interactions_total{name="game",outcome="ok"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}

func TestSetupTracing_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), "", "townsquare")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("unexpected shutdown error: %v", err)
	}
}
