// Package dataset implements the persisted trigger dataset: a two-column CSV
// of {trigger text, sticker file ID} rows, append-only in normal operation and
// fully rewritten only by the offline merge pipeline.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	coreerrors "github.com/thewoodenpuppet/forest-sticker-bot/internal/core/errors"
)

const fieldsPerRow = 2

// Entry is one trigger row: a normalized phrase and the sticker it selects.
type Entry struct {
	Trigger   string
	StickerID string
}

// Store provides serialized access to the dataset file. The mutex spans the
// duplicate check and the append so concurrent admin sessions cannot race past
// the check together.
type Store struct {
	path   string
	mu     sync.Mutex
	logger *zerolog.Logger
}

func NewStore(path string, logger *zerolog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Path returns the dataset file location, used by the export command.
func (s *Store) Path() string {
	return s.path
}

// Load reads all well-formed rows in file order. Rows without exactly two
// non-empty fields are skipped and counted; a missing or unreadable file is an
// error the caller must treat as fatal at startup.
func (s *Store) Load() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadLocked()
}

func (s *Store) loadLocked() ([]Entry, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", coreerrors.ErrDatasetMissing, s.path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var (
		entries []Entry
		skipped int
	)

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			skipped++
			continue
		}

		if len(row) != fieldsPerRow {
			skipped++
			continue
		}

		trigger := strings.TrimSpace(row[0])
		stickerID := strings.TrimSpace(row[1])

		if trigger == "" || stickerID == "" {
			skipped++
			continue
		}

		entries = append(entries, Entry{Trigger: trigger, StickerID: stickerID})
	}

	if skipped > 0 {
		s.logger.Warn().Int("skipped", skipped).Str("path", s.path).Msg("skipped malformed dataset rows")
	}

	return entries, nil
}

// AppendIfAbsent re-reads the dataset, rejects a trigger that already exists
// (case-insensitive) with ErrDuplicateTrigger, and otherwise appends the row
// and flushes it to stable storage before returning.
func (s *Store) AppendIfAbsent(trigger, stickerID string) error {
	trigger = Normalize(trigger)
	if trigger == "" {
		return coreerrors.ErrEmptyTrigger
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadLocked()
	if err != nil {
		return err
	}

	for _, e := range entries {
		if Normalize(e.Trigger) == trigger {
			return fmt.Errorf("%w: %q", coreerrors.ErrDuplicateTrigger, trigger)
		}
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", coreerrors.ErrDatasetMissing, s.path, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write([]string{trigger, stickerID}); err != nil {
		return fmt.Errorf("writing dataset row: %w", err)
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing dataset row: %w", err)
	}

	// The success reply must not be sent before the row is on stable storage.
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing dataset: %w", err)
	}

	return nil
}
