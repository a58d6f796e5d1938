package telemetry

import (
	"github.com/foxseedlab/townsquare/internal/config"
	"github.com/foxseedlab/townsquare/internal/telemetry"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*PrometheusRecorder, error) {
		return NewPrometheusRecorder(), nil
	})
	do.Provide(injector, func(i do.Injector) (telemetry.Recorder, error) {
		return do.MustInvoke[*PrometheusRecorder](i), nil
	})
	do.Provide(injector, func(i do.Injector) (*MetricsServer, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewMetricsServer(cfg.MetricsAddr, do.MustInvoke[*PrometheusRecorder](i)), nil
	})
}
