package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/foxseedlab/townsquare/internal/config"
	"github.com/joho/godotenv"
)

type envConfig struct {
	Env                 string `env:"ENV" envDefault:"production"`
	DiscordToken        string `env:"DISCORD_TOKEN,required"`
	DiscordGuildID      string `env:"DISCORD_GUILD_ID"`
	StorageBackend      string `env:"STORAGE_BACKEND" envDefault:"file"`
	DataDir             string `env:"DATA_DIR" envDefault:"databases"`
	DatabaseURL         string `env:"DATABASE_URL"`
	SQLitePath          string `env:"SQLITE_PATH" envDefault:"databases/townsquare.db"`
	MetricsAddr         string `env:"METRICS_ADDR"`
	OTelEndpoint        string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	GameEventWebhookURL string `env:"GAME_EVENT_WEBHOOK_URL"`
	TownSquareMarker    string `env:"TOWN_SQUARE_MARKER" envDefault:"Town Square"`
	GameChatMarker      string `env:"GAME_CHAT_MARKER" envDefault:"game-chat"`
	StorytellerRoleName string `env:"STORYTELLER_ROLE_NAME" envDefault:"Storyteller"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*internalconfig.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                 raw.Env,
		DiscordToken:        raw.DiscordToken,
		DiscordGuildID:      raw.DiscordGuildID,
		StorageBackend:      raw.StorageBackend,
		DataDir:             raw.DataDir,
		DatabaseURL:         raw.DatabaseURL,
		SQLitePath:          raw.SQLitePath,
		MetricsAddr:         raw.MetricsAddr,
		OTelEndpoint:        raw.OTelEndpoint,
		GameEventWebhookURL: raw.GameEventWebhookURL,
		TownSquareMarker:    raw.TownSquareMarker,
		GameChatMarker:      raw.GameChatMarker,
		StorytellerRoleName: raw.StorytellerRoleName,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
