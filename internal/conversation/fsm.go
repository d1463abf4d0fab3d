// Package conversation implements the admin-only add-sticker workflow as an
// explicit finite-state machine.
//
// Each admin owns at most one in-memory session; sessions never touch each
// other and do not survive a restart. Rows saved here land in the persisted
// dataset and are picked up by the trigger index on the next process start.
package conversation

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	coreerrors "github.com/thewoodenpuppet/forest-sticker-bot/internal/core/errors"
	"github.com/thewoodenpuppet/forest-sticker-bot/internal/dataset"
	"github.com/thewoodenpuppet/forest-sticker-bot/internal/platform/observability"
)

// State enumerates the workflow positions.
type State int

const (
	// StateIdle means no session exists for the user.
	StateIdle State = iota
	// StateAwaitingSticker waits for the sticker whose ID will be saved.
	StateAwaitingSticker
	// StateAwaitingTrigger waits for the trigger phrase for the pending sticker.
	StateAwaitingTrigger
)

// Replies sent back to the admin at each transition.
const (
	replyDenied = "⛔ Sorry, this is an admin-only command."
	replyIntro  = "Hi! Let's add some stickers.\n\n" +
		"Send me the first sticker. When you're finished, type /done."
	replyNotASticker = "That's not a sticker! Please send a sticker, or type /done to finish."
	replyAskTrigger  = "Got it! Now, what text should trigger this sticker?"
	replyConflictFmt = "⚠️ The trigger '%s' already exists! Please try a different name."
	replySavedFmt    = "✅ Success! Trigger '%s' has been saved and will go live after the next restart.\n\n" +
		"Send the next sticker, or type /done to finish."
	replySaveFailed = "Could not save that trigger, please try again."
	replyDone       = "Use /export and forward the file to @TheWoodenPuppet."
)

type session struct {
	state            State
	pendingStickerID string
}

// Manager owns all sessions and drives transitions. The admin check is
// injected so the package stays independent of the config source; it returns
// ErrPermissionDenied for anyone outside the admin list.
type Manager struct {
	store      *dataset.Store
	checkAdmin func(int64) error
	logger     *zerolog.Logger

	mu       sync.Mutex
	sessions map[int64]*session
}

func NewManager(store *dataset.Store, checkAdmin func(int64) error, logger *zerolog.Logger) *Manager {
	return &Manager{
		store:      store,
		checkAdmin: checkAdmin,
		logger:     logger,
		sessions:   make(map[int64]*session),
	}
}

// Begin handles the entry command. Non-admins are rejected without creating
// any state.
func (m *Manager) Begin(userID int64) string {
	if err := m.checkAdmin(userID); err != nil {
		m.logger.Warn().Err(err).Msg("registration denied")
		return replyDenied
	}

	m.mu.Lock()
	m.sessions[userID] = &session{state: StateAwaitingSticker}
	m.mu.Unlock()

	return replyIntro
}

// Finish handles the finish command. It clears the session from any non-idle
// state; with no session active it returns false and no reply.
func (m *Manager) Finish(userID int64) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[userID]; !ok {
		return "", false
	}

	delete(m.sessions, userID)

	return replyDone, true
}

// HandleMessage advances the user's session with a text or sticker message.
// It returns false when the user has no active session, so the caller can
// treat the message as ordinary chat traffic.
func (m *Manager) HandleMessage(userID int64, text, stickerID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[userID]
	if !ok {
		return "", false
	}

	switch sess.state {
	case StateAwaitingSticker:
		return m.onAwaitingSticker(sess, stickerID), true
	case StateAwaitingTrigger:
		return m.onAwaitingTrigger(sess, text, stickerID), true
	default:
		return "", false
	}
}

// State reports the user's current workflow state.
func (m *Manager) State(userID int64) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sess, ok := m.sessions[userID]; ok {
		return sess.state
	}

	return StateIdle
}

func (m *Manager) onAwaitingSticker(sess *session, stickerID string) string {
	if stickerID == "" {
		return replyNotASticker
	}

	sess.pendingStickerID = stickerID
	sess.state = StateAwaitingTrigger

	return replyAskTrigger
}

func (m *Manager) onAwaitingTrigger(sess *session, text, stickerID string) string {
	if stickerID != "" || text == "" {
		// Not the trigger phrase; stay put and wait for text.
		return ""
	}

	trigger := dataset.Normalize(text)

	err := m.store.AppendIfAbsent(trigger, sess.pendingStickerID)

	switch {
	case err == nil:
		observability.DatasetAppends.Inc()
		m.logger.Info().Str("trigger", trigger).Msg("trigger saved")

		sess.pendingStickerID = ""
		sess.state = StateAwaitingSticker

		return fmt.Sprintf(replySavedFmt, trigger)

	case errors.Is(err, coreerrors.ErrDuplicateTrigger):
		return fmt.Sprintf(replyConflictFmt, trigger)

	case errors.Is(err, coreerrors.ErrEmptyTrigger):
		return replyAskTrigger

	default:
		m.logger.Error().Err(err).Msg("failed to append trigger")
		return replySaveFailed
	}
}
