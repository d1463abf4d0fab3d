package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thewoodenpuppet/forest-sticker-bot/internal/cooldown"
	"github.com/thewoodenpuppet/forest-sticker-bot/internal/dataset"
	"github.com/thewoodenpuppet/forest-sticker-bot/internal/trigger"
)

const marker = "forestapp.cc/join-room?token="

type sentSticker struct {
	chatID    int64
	replyTo   int
	stickerID string
}

type fakeSender struct {
	sent []sentSticker
	err  error
}

func (f *fakeSender) SendSticker(_ context.Context, chatID int64, replyTo int, stickerID string) error {
	if f.err != nil {
		return f.err
	}

	f.sent = append(f.sent, sentSticker{chatID: chatID, replyTo: replyTo, stickerID: stickerID})

	return nil
}

func newTestDispatcher(t *testing.T, window time.Duration) (*Dispatcher, *fakeSender, *cooldown.Tracker) {
	t.Helper()

	ix := trigger.New([]dataset.Entry{
		{Trigger: "redwood", StickerID: "S1"},
		{Trigger: "redwood tree", StickerID: "S2"},
	})
	tracker := cooldown.NewTracker(window)
	sender := &fakeSender{}
	logger := zerolog.Nop()

	return New(ix, tracker, sender, marker, 3*time.Minute, &logger), sender, tracker
}

func msgAt(sentAt time.Time, text string) Message {
	return Message{
		ChatID:    -100,
		SenderID:  7,
		MessageID: 42,
		Text:      text,
		SentAt:    sentAt,
	}
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestHandle_SendsOnMatch(t *testing.T) {
	d, sender, _ := newTestDispatcher(t, 5*time.Second)
	d.now = fixedNow

	d.Handle(context.Background(), msgAt(fixedNow(), "join me "+marker+"abc, look at this redwood tree"))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, sentSticker{chatID: -100, replyTo: 42, stickerID: "S2"}, sender.sent[0])
}

func TestHandle_IgnoresStaleMessages(t *testing.T) {
	d, sender, _ := newTestDispatcher(t, 5*time.Second)
	d.now = fixedNow

	d.Handle(context.Background(), msgAt(fixedNow().Add(-4*time.Minute), marker+" redwood"))

	assert.Empty(t, sender.sent)
}

func TestHandle_IgnoresForwardedAndRelayed(t *testing.T) {
	d, sender, _ := newTestDispatcher(t, 5*time.Second)
	d.now = fixedNow

	forwarded := msgAt(fixedNow(), marker+" redwood")
	forwarded.Forwarded = true
	d.Handle(context.Background(), forwarded)

	relayed := msgAt(fixedNow(), marker+" redwood")
	relayed.Relayed = true
	d.Handle(context.Background(), relayed)

	assert.Empty(t, sender.sent)
}

func TestHandle_RequiresMarker(t *testing.T) {
	d, sender, tracker := newTestDispatcher(t, 5*time.Second)
	d.now = fixedNow

	d.Handle(context.Background(), msgAt(fixedNow(), "look at this redwood tree"))

	assert.Empty(t, sender.sent)
	// The marker gate runs before the cooldown gate, so nothing was consumed.
	assert.True(t, tracker.Admit(cooldown.Key{ChatID: -100, SenderID: 7}, fixedNow()))
}

func TestHandle_CooldownConsumedWithoutMatch(t *testing.T) {
	d, sender, _ := newTestDispatcher(t, 5*time.Second)
	d.now = fixedNow

	// Passes every gate but matches no trigger: the window is still burned.
	d.Handle(context.Background(), msgAt(fixedNow(), marker+" nothing matching here"))
	require.Empty(t, sender.sent)

	d.Handle(context.Background(), msgAt(fixedNow(), marker+" redwood"))
	assert.Empty(t, sender.sent, "second message within the window must be denied")
}

func TestHandle_CooldownScenario(t *testing.T) {
	d, sender, _ := newTestDispatcher(t, 5*time.Second)

	current := fixedNow()
	d.now = func() time.Time { return current }

	send := func() {
		d.Handle(context.Background(), msgAt(current, marker+" redwood"))
	}

	send()
	require.Len(t, sender.sent, 1, "t=0 admitted")

	current = fixedNow().Add(3 * time.Second)
	send()
	require.Len(t, sender.sent, 1, "t=3 denied")

	current = fixedNow().Add(6 * time.Second)
	send()
	require.Len(t, sender.sent, 2, "t=6 admitted")
}

func TestHandle_SendFailureLoggedNotRetried(t *testing.T) {
	d, sender, _ := newTestDispatcher(t, 5*time.Second)
	d.now = fixedNow
	sender.err = assert.AnError

	d.Handle(context.Background(), msgAt(fixedNow(), marker+" redwood"))

	assert.Empty(t, sender.sent)
}
