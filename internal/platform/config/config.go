package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	coreerrors "github.com/thewoodenpuppet/forest-sticker-bot/internal/core/errors"
)

type Config struct {
	AppEnv   string  `env:"APP_ENV" envDefault:"local"`
	BotToken string  `env:"BOT_TOKEN,required"`
	AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`

	// DatasetPath is the two-column trigger CSV shared with the offline pipeline.
	DatasetPath string `env:"DATASET_PATH" envDefault:"stickers.csv"`

	// Cooldown is the minimum gap between admitted dispatches per (chat, sender).
	Cooldown time.Duration `env:"COOLDOWN" envDefault:"5s"`

	// MaxMessageAge guards against backlog replay after a restart.
	MaxMessageAge time.Duration `env:"MAX_MESSAGE_AGE" envDefault:"3m"`

	// TriggerMarker must be present in a message before matching is attempted.
	TriggerMarker string `env:"TRIGGER_MARKER" envDefault:"forestapp.cc/join-room?token="`

	// CooldownSweepInterval and CooldownRetention bound the cooldown record map.
	// Retention must be at least the cooldown window; idle records past it are dropped.
	CooldownSweepInterval time.Duration `env:"COOLDOWN_SWEEP_INTERVAL" envDefault:"10m"`
	CooldownRetention     time.Duration `env:"COOLDOWN_RETENTION" envDefault:"1h"`

	HealthPort int `env:"HEALTH_PORT" envDefault:"8080"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	if cfg.CooldownRetention < cfg.Cooldown {
		cfg.CooldownRetention = cfg.Cooldown
	}

	return cfg, nil
}

// IsAdmin reports whether the given user ID is in the configured admin list.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}

	return false
}

// CheckAdmin returns ErrPermissionDenied when the user is not a configured
// admin. Every permission gate goes through this so denials carry the same
// error.
func (c *Config) CheckAdmin(userID int64) error {
	if !c.IsAdmin(userID) {
		return fmt.Errorf("user %d: %w", userID, coreerrors.ErrPermissionDenied)
	}

	return nil
}
