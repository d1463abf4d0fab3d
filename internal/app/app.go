// Package app provides the application bootstrap and runtime orchestration.
//
// The App type wires together the dataset store, trigger index, cooldown
// tracker, registration workflow and the Telegram transport, and exposes the
// bot mode plus the health/metrics server.
package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/thewoodenpuppet/forest-sticker-bot/internal/conversation"
	"github.com/thewoodenpuppet/forest-sticker-bot/internal/cooldown"
	"github.com/thewoodenpuppet/forest-sticker-bot/internal/dataset"
	"github.com/thewoodenpuppet/forest-sticker-bot/internal/dispatch"
	"github.com/thewoodenpuppet/forest-sticker-bot/internal/platform/config"
	"github.com/thewoodenpuppet/forest-sticker-bot/internal/platform/observability"
	"github.com/thewoodenpuppet/forest-sticker-bot/internal/platform/worker"
	"github.com/thewoodenpuppet/forest-sticker-bot/internal/telegrambot"
	"github.com/thewoodenpuppet/forest-sticker-bot/internal/trigger"
)

// App holds the application dependencies and provides methods to run the bot.
type App struct {
	cfg    *config.Config
	logger *zerolog.Logger
	ready  atomic.Bool
}

// New creates a new App instance with the given dependencies.
func New(cfg *config.Config, logger *zerolog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
	}
}

// StartHealthServer starts the health check and metrics server. Readiness
// reports whether the trigger index has been loaded.
func (a *App) StartHealthServer(ctx context.Context) error {
	srv := observability.NewServer(a.cfg.HealthPort, a.ready.Load, a.logger)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("health server start: %w", err)
	}

	return nil
}

// RunBot loads the trigger index and runs the update loop until the context
// is canceled. A missing dataset is a fatal startup error: the bot must not
// come up silently answering no triggers.
func (a *App) RunBot(ctx context.Context) error {
	a.logger.Info().Msg("Starting bot mode")

	store := dataset.NewStore(a.cfg.DatasetPath, a.logger)

	index, err := trigger.Load(store, a.logger)
	if err != nil {
		return fmt.Errorf("loading trigger index: %w", err)
	}

	observability.TriggersLoaded.Set(float64(index.Len()))
	a.ready.Store(true)

	tracker := cooldown.NewTracker(a.cfg.Cooldown)
	fsm := conversation.NewManager(store, a.cfg.CheckAdmin, a.logger)

	bot, err := telegrambot.New(a.cfg, store, fsm, a.logger)
	if err != nil {
		return err
	}

	bot.SetDispatcher(dispatch.New(index, tracker, bot, a.cfg.TriggerMarker, a.cfg.MaxMessageAge, a.logger))

	go a.runCooldownSweep(ctx, tracker)

	return bot.Run(ctx)
}

// runCooldownSweep periodically drops idle cooldown records so the map stays
// bounded by recent activity rather than every sender ever seen.
func (a *App) runCooldownSweep(ctx context.Context, tracker *cooldown.Tracker) {
	_ = worker.TickerLoop(ctx, worker.TickerConfig{
		Name:     "cooldown-sweep",
		Interval: a.cfg.CooldownSweepInterval,
		OnTick: func(_ context.Context) {
			removed, remaining := tracker.Sweep(time.Now(), a.cfg.CooldownRetention)
			observability.CooldownRecords.Set(float64(remaining))

			if removed > 0 {
				a.logger.Debug().Int("removed", removed).Int("remaining", remaining).Msg("cooldown records swept")
			}
		},
		Logger: a.logger,
	})
}
