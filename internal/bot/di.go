package bot

import (
	"github.com/foxseedlab/townsquare/internal/config"
	"github.com/foxseedlab/townsquare/internal/discord"
	"github.com/foxseedlab/townsquare/internal/game"
	"github.com/foxseedlab/townsquare/internal/telemetry"
	"github.com/foxseedlab/townsquare/internal/webhook"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Manager, error) {
		cfg := do.MustInvoke[*config.Config](i)
		dc := do.MustInvoke[discord.Client](i)
		games := do.MustInvoke[*game.Directory](i)
		wh := do.MustInvoke[webhook.Sender](i)
		metrics := do.MustInvoke[telemetry.Recorder](i)
		return NewManager(cfg, dc, games, wh, metrics), nil
	})
}
