// Package cooldown implements the per-(chat, sender) dispatch rate gate.
//
// Each key owns a token bucket with burst 1 refilling once per cooldown
// window, which gives Admit exactly the required check-and-set semantics: an
// admitted dispatch consumes the window, a denied one changes nothing.
package cooldown

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ChannelSender is the sentinel sender ID for channel posts, which carry no
// individual sender; the cooldown then applies to the channel as a whole.
const ChannelSender int64 = 0

// Key identifies one cooldown record.
type Key struct {
	ChatID   int64
	SenderID int64
}

type record struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Tracker answers admit/deny queries per key. All methods are safe for
// concurrent use; the check-and-set inside Admit is atomic per call.
type Tracker struct {
	mu      sync.Mutex
	window  time.Duration
	records map[Key]*record
}

func NewTracker(window time.Duration) *Tracker {
	return &Tracker{
		window:  window,
		records: make(map[Key]*record),
	}
}

// Admit reports whether a dispatch for key may proceed at the given time, and
// if so consumes the cooldown window. Two near-simultaneous calls for the same
// key can never both be admitted.
func (t *Tracker) Admit(key Key, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[key]
	if !ok {
		rec = &record{limiter: rate.NewLimiter(rate.Every(t.window), 1)}
		t.records[key] = rec
	}

	rec.lastSeen = now

	return rec.limiter.AllowN(now, 1)
}

// Sweep drops records idle for longer than retention and returns the number
// removed and the number remaining. Retention must be at least the cooldown
// window; a record idle that long would be admitted again anyway, so dropping
// it cannot change admit results.
func (t *Tracker) Sweep(now time.Time, retention time.Duration) (removed, remaining int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for key, rec := range t.records {
		if now.Sub(rec.lastSeen) > retention {
			delete(t.records, key)

			removed++
		}
	}

	return removed, len(t.records)
}

// Size returns the current number of records.
func (t *Tracker) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.records)
}
