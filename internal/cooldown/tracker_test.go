package cooldown

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func at(seconds int) time.Time {
	return base.Add(time.Duration(seconds) * time.Second)
}

func TestAdmit_WindowSemantics(t *testing.T) {
	tr := NewTracker(5 * time.Second)
	key := Key{ChatID: -100, SenderID: 7}

	assert.True(t, tr.Admit(key, at(0)), "first dispatch admitted")
	assert.False(t, tr.Admit(key, at(3)), "still inside the window")
	assert.True(t, tr.Admit(key, at(6)), "window elapsed")
}

func TestAdmit_ExactBoundaryAdmitted(t *testing.T) {
	tr := NewTracker(5 * time.Second)
	key := Key{ChatID: 1, SenderID: 2}

	assert.True(t, tr.Admit(key, at(0)))
	assert.True(t, tr.Admit(key, at(5)), "elapsed == window must be admitted")
}

func TestAdmit_DenialDoesNotExtendWindow(t *testing.T) {
	tr := NewTracker(5 * time.Second)
	key := Key{ChatID: 1, SenderID: 2}

	assert.True(t, tr.Admit(key, at(0)))
	assert.False(t, tr.Admit(key, at(4)))
	// The denied attempt at t=4 must not push the next admission past t=5.
	assert.True(t, tr.Admit(key, at(5)))
}

func TestAdmit_KeysAreIndependent(t *testing.T) {
	tr := NewTracker(5 * time.Second)

	assert.True(t, tr.Admit(Key{ChatID: 1, SenderID: 2}, at(0)))
	assert.True(t, tr.Admit(Key{ChatID: 1, SenderID: 3}, at(0)), "different sender")
	assert.True(t, tr.Admit(Key{ChatID: 2, SenderID: 2}, at(0)), "different chat")
}

func TestAdmit_ChannelSentinelSharesRecord(t *testing.T) {
	tr := NewTracker(5 * time.Second)
	key := Key{ChatID: -100, SenderID: ChannelSender}

	assert.True(t, tr.Admit(key, at(0)), "channel post admitted")
	// A 1:1 message from the same chat with no individual sender hits the
	// same sentinel record.
	assert.False(t, tr.Admit(Key{ChatID: -100, SenderID: 0}, at(2)))
}

func TestAdmit_ConcurrentSameKeyAdmitsOnce(t *testing.T) {
	tr := NewTracker(5 * time.Second)
	key := Key{ChatID: 9, SenderID: 9}
	now := at(0)

	const callers = 16

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
	)

	for i := 0; i < callers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if tr.Admit(key, now) {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, admitted)
}

func TestSweep(t *testing.T) {
	tr := NewTracker(5 * time.Second)

	tr.Admit(Key{ChatID: 1, SenderID: 1}, at(0))
	tr.Admit(Key{ChatID: 2, SenderID: 2}, at(50))

	removed, remaining := tr.Sweep(at(60), 30*time.Second)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, remaining)
	assert.Equal(t, 1, tr.Size())

	// The surviving key is the recently seen one.
	assert.False(t, tr.Admit(Key{ChatID: 2, SenderID: 2}, at(51)))
}
