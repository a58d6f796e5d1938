package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	configloader "github.com/foxseedlab/townsquare/external/config"
	"github.com/foxseedlab/townsquare/external/discord"
	repositoryimpl "github.com/foxseedlab/townsquare/external/repository"
	telemetryimpl "github.com/foxseedlab/townsquare/external/telemetry"
	webhookimpl "github.com/foxseedlab/townsquare/external/webhook"
	"github.com/foxseedlab/townsquare/internal/bot"
	"github.com/foxseedlab/townsquare/internal/config"
	discordpkg "github.com/foxseedlab/townsquare/internal/discord"
	"github.com/foxseedlab/townsquare/internal/game"
	"github.com/foxseedlab/townsquare/internal/repository"
	"github.com/samber/do/v2"
)

const (
	discordConnectTimeout = 20 * time.Second
	shutdownTimeout       = 10 * time.Second
	serviceName           = "townsquare"
)

func main() {
	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env, "storage", cfg.StorageBackend)

	shutdownTracing, err := telemetryimpl.SetupTracing(context.Background(), cfg.OTelEndpoint, serviceName)
	if err != nil {
		slog.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg)

	slog.Info("startup: launching discord bot")
	runBot(cfg, injector)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdownTracing(ctx); err != nil {
		slog.Error("tracing shutdown failed", "error", err)
	}
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	repositoryimpl.RegisterDI(injector)
	telemetryimpl.RegisterDI(injector)
	discord.RegisterDI(injector)
	webhookimpl.RegisterDI(injector)
	game.RegisterDI(injector)
	bot.RegisterDI(injector)

	return injector
}

func mustInvoke[T any](injector do.Injector, what string) T {
	v, err := do.Invoke[T](injector)
	if err != nil {
		slog.Error("failed to resolve "+what, "error", err)
		os.Exit(1)
	}
	return v
}

func runBot(cfg *config.Config, injector do.Injector) {
	dc := mustInvoke[discordpkg.Client](injector, "discord client")
	store := mustInvoke[repository.GuildStore](injector, "guild store")
	games := mustInvoke[*game.Directory](injector, "game directory")
	manager := mustInvoke[*bot.Manager](injector, "bot manager")
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("guild store close failed", "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), discordConnectTimeout)
	defer cancel()

	slog.Info("startup: connecting to discord gateway")
	if err := dc.Connect(ctx); err != nil {
		slog.Error("discord connect failed", "error", err)
		os.Exit(1)
	}
	slog.Info("startup: discord connected")
	defer func() {
		if err := dc.Close(); err != nil {
			slog.Error("discord close failed", "error", err)
		}
	}()

	guildIDs := dc.GuildIDs()
	if err := games.Preload(ctx, guildIDs); err != nil {
		slog.Error("some guild states could not be restored", "error", err)
	}
	defer games.Shutdown()

	targets := guildIDs
	if cfg.DiscordGuildID != "" {
		targets = []string{cfg.DiscordGuildID}
	}
	for _, guildID := range targets {
		if err := dc.UpsertGuildSlashCommands(guildID, bot.SlashCommandDefinitions()); err != nil {
			slog.Error("failed to upsert slash commands", "error", err, "guild_id", guildID)
			os.Exit(1)
		}
	}

	dc.RegisterVoiceStateUpdateHandler(manager.HandleVoiceStateUpdate)
	dc.RegisterSlashCommandHandler(manager.HandleSlashCommand)
	dc.RegisterComponentHandler(manager.HandleComponent)
	slog.Info("discord handlers registered", "guilds", len(targets))

	if cfg.MetricsAddr != "" {
		metrics := mustInvoke[*telemetryimpl.MetricsServer](injector, "metrics server")
		metrics.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := metrics.Shutdown(ctx); err != nil {
				slog.Error("metrics server shutdown failed", "error", err)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		slog.Info("startup: entering discord run loop")
		if err := dc.Run(); err != nil {
			slog.Error("discord run failed", "error", err)
		}
		close(done)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		slog.Info("shutting down")
	case <-done:
	}
}
