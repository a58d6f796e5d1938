package game

import (
	"github.com/foxseedlab/townsquare/internal/config"
	"github.com/foxseedlab/townsquare/internal/discord"
	"github.com/foxseedlab/townsquare/internal/repository"
	"github.com/foxseedlab/townsquare/internal/telemetry"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Directory, error) {
		cfg := do.MustInvoke[*config.Config](i)
		store := do.MustInvoke[repository.GuildStore](i)
		dc := do.MustInvoke[discord.Client](i)
		metrics := do.MustInvoke[telemetry.Recorder](i)
		return NewDirectory(store, dc, metrics, Options{TownSquareMarker: cfg.TownSquareMarker}), nil
	})
}
