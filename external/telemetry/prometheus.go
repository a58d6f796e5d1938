package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/foxseedlab/townsquare/internal/discord"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsReadHeaderTimeout = 5 * time.Second

// PrometheusRecorder keeps its own registry so tests can build several.
type PrometheusRecorder struct {
	registry     *prometheus.Registry
	activeGames  *prometheus.GaugeVec
	memberMoves  *prometheus.CounterVec
	timers       *prometheus.CounterVec
	interactions *prometheus.CounterVec
}

func NewPrometheusRecorder() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		registry: reg,
		activeGames: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "townsquare_active_games",
			Help: "Number of active games per guild",
		}, []string{"guild_id"}),
		memberMoves: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "townsquare_member_moves_total",
			Help: "Voice channel moves by operation and outcome",
		}, []string{"operation", "outcome"}),
		timers: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "townsquare_timers_finished_total",
			Help: "Finished countdown timers by outcome",
		}, []string{"outcome"}),
		interactions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "townsquare_interactions_total",
			Help: "Handled slash commands and component interactions",
		}, []string{"name", "outcome"}),
	}
}

func (p *PrometheusRecorder) ActiveGames(guildID string, count int) {
	p.activeGames.WithLabelValues(guildID).Set(float64(count))
}

func (p *PrometheusRecorder) MemberMoved(operation string, err error) {
	p.memberMoves.WithLabelValues(operation, outcome(err)).Inc()
}

func (p *PrometheusRecorder) TimerFinished(result string) {
	p.timers.WithLabelValues(result).Inc()
}

func (p *PrometheusRecorder) InteractionHandled(name string, err error) {
	p.interactions.WithLabelValues(name, outcome(err)).Inc()
}

func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, discord.ErrForbidden):
		return "forbidden"
	default:
		return "error"
	}
}

// MetricsServer exposes /metrics on its own listener.
type MetricsServer struct {
	server *http.Server
}

func NewMetricsServer(addr string, recorder *PrometheusRecorder) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", recorder.Handler())
	return &MetricsServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: metricsReadHeaderTimeout,
		},
	}
}

func (s *MetricsServer) Start() {
	go func() {
		slog.Info("metrics server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server stopped", "error", err)
		}
	}()
}

func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
