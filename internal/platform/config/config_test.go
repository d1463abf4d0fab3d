package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreerrors "github.com/thewoodenpuppet/forest-sticker-bot/internal/core/errors"
)

const (
	testEnvBotToken = "BOT_TOKEN"
	testBotToken    = "123456:ABC-DEF"
)

func TestLoad_MissingRequired(t *testing.T) {
	os.Unsetenv(testEnvBotToken)

	_, err := Load()
	require.Error(t, err, "expected error for missing BOT_TOKEN")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(testEnvBotToken, testBotToken)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.AppEnv)
	assert.Equal(t, "stickers.csv", cfg.DatasetPath)
	assert.Equal(t, 5*time.Second, cfg.Cooldown)
	assert.Equal(t, 3*time.Minute, cfg.MaxMessageAge)
	assert.Equal(t, "forestapp.cc/join-room?token=", cfg.TriggerMarker)
	assert.Equal(t, 8080, cfg.HealthPort)
	assert.Empty(t, cfg.AdminIDs)
}

func TestLoad_AdminIDs(t *testing.T) {
	t.Setenv(testEnvBotToken, testBotToken)
	t.Setenv("ADMIN_IDS", "7441793409,1463187459")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []int64{7441793409, 1463187459}, cfg.AdminIDs)
	assert.True(t, cfg.IsAdmin(7441793409))
	assert.False(t, cfg.IsAdmin(42))
}

func TestCheckAdmin(t *testing.T) {
	cfg := &Config{AdminIDs: []int64{7441793409}}

	require.NoError(t, cfg.CheckAdmin(7441793409))

	err := cfg.CheckAdmin(42)
	require.ErrorIs(t, err, coreerrors.ErrPermissionDenied)
}

func TestLoad_RetentionAtLeastCooldown(t *testing.T) {
	t.Setenv(testEnvBotToken, testBotToken)
	t.Setenv("COOLDOWN", "2h")
	t.Setenv("COOLDOWN_RETENTION", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Hour, cfg.CooldownRetention)
}
