// Package dispatch implements the per-message decision chain: staleness and
// origin gates, the referral-link marker gate, the cooldown gate, and finally
// trigger resolution and the sticker reply.
package dispatch

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/thewoodenpuppet/forest-sticker-bot/internal/cooldown"
	"github.com/thewoodenpuppet/forest-sticker-bot/internal/platform/observability"
	"github.com/thewoodenpuppet/forest-sticker-bot/internal/trigger"
)

// Skip reasons reported in metrics and logs.
const (
	reasonStale     = "stale"
	reasonForwarded = "forwarded"
	reasonRelayed   = "relayed"
	reasonNoMarker  = "no_marker"
)

// Message is an inbound text message as seen by the dispatcher, already
// detached from the transport's update types.
type Message struct {
	ChatID    int64
	SenderID  int64 // cooldown.ChannelSender when the source has no individual sender
	MessageID int
	Text      string
	SentAt    time.Time
	Forwarded bool
	Relayed   bool // posted on behalf of a chat rather than a user
}

// Sender delivers a sticker reply. Implemented by the Telegram transport.
type Sender interface {
	SendSticker(ctx context.Context, chatID int64, replyTo int, stickerID string) error
}

type Dispatcher struct {
	index   *trigger.Index
	tracker *cooldown.Tracker
	sender  Sender
	marker  string
	maxAge  time.Duration
	now     func() time.Time
	logger  *zerolog.Logger
}

func New(index *trigger.Index, tracker *cooldown.Tracker, sender Sender, marker string, maxAge time.Duration, logger *zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		index:   index,
		tracker: tracker,
		sender:  sender,
		marker:  marker,
		maxAge:  maxAge,
		now:     time.Now,
		logger:  logger,
	}
}

// Handle runs one message through the gate chain. Transport failures are
// logged and not retried; the cooldown window stays consumed either way.
func (d *Dispatcher) Handle(ctx context.Context, msg Message) {
	now := d.now()

	// Ignore backlog replayed by the transport after a restart.
	if now.Sub(msg.SentAt) > d.maxAge {
		d.skip(msg, reasonStale)
		return
	}

	if msg.Forwarded {
		d.skip(msg, reasonForwarded)
		return
	}

	if msg.Relayed {
		d.skip(msg, reasonRelayed)
		return
	}

	if !strings.Contains(msg.Text, d.marker) {
		d.skip(msg, reasonNoMarker)
		return
	}

	key := cooldown.Key{ChatID: msg.ChatID, SenderID: msg.SenderID}
	if !d.tracker.Admit(key, now) {
		observability.CooldownDenied.Inc()
		return
	}

	// The window above is consumed even when nothing matches below.
	stickerID, ok := d.index.Resolve(msg.Text)
	if !ok {
		return
	}

	if err := d.sender.SendSticker(ctx, msg.ChatID, msg.MessageID, stickerID); err != nil {
		observability.SendFailures.Inc()
		d.logger.Error().Err(err).Int64("chat_id", msg.ChatID).Msg("failed to send sticker reply")

		return
	}

	observability.StickersSent.Inc()
	d.logger.Debug().Int64("chat_id", msg.ChatID).Int64("sender_id", msg.SenderID).Msg("sticker sent")
}

func (d *Dispatcher) skip(msg Message, reason string) {
	observability.MessagesSkipped.WithLabelValues(reason).Inc()
	d.logger.Debug().Int64("chat_id", msg.ChatID).Str("reason", reason).Msg("message skipped")
}
