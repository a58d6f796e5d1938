package config

import (
	"fmt"
	"strings"
)

const (
	StorageBackendFile     = "file"
	StorageBackendPostgres = "postgres"
	StorageBackendSQLite   = "sqlite"
)

type Config struct {
	Env                 string
	DiscordToken        string
	DiscordGuildID      string
	StorageBackend      string
	DataDir             string
	DatabaseURL         string
	SQLitePath          string
	MetricsAddr         string
	OTelEndpoint        string
	GameEventWebhookURL string
	TownSquareMarker    string
	GameChatMarker      string
	StorytellerRoleName string
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if strings.TrimSpace(req.value) == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	switch c.StorageBackend {
	case StorageBackendFile:
		if c.DataDir == "" {
			return fmt.Errorf("DATA_DIR is required when STORAGE_BACKEND=file")
		}
	case StorageBackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND=postgres")
		}
	case StorageBackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORAGE_BACKEND=sqlite")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of file, postgres, sqlite, got %q", c.StorageBackend)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "DISCORD_TOKEN", value: c.DiscordToken},
		{name: "TOWN_SQUARE_MARKER", value: c.TownSquareMarker},
		{name: "GAME_CHAT_MARKER", value: c.GameChatMarker},
		{name: "STORYTELLER_ROLE_NAME", value: c.StorytellerRoleName},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
