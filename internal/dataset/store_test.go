package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreerrors "github.com/thewoodenpuppet/forest-sticker-bot/internal/core/errors"
)

func newTestStore(t *testing.T, content string) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "stickers.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	logger := zerolog.Nop()

	return NewStore(path, &logger)
}

func TestLoad_MissingFileIsError(t *testing.T) {
	logger := zerolog.Nop()
	s := NewStore(filepath.Join(t.TempDir(), "nope.csv"), &logger)

	_, err := s.Load()
	require.ErrorIs(t, err, coreerrors.ErrDatasetMissing)
}

func TestLoad_SkipsMalformedRows(t *testing.T) {
	s := newTestStore(t, "redwood,S1\nonly-one-field\nredwood tree,S2\n,empty-trigger\na,b,c\n")

	entries, err := s.Load()
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{Trigger: "redwood", StickerID: "S1"},
		{Trigger: "redwood tree", StickerID: "S2"},
	}, entries)
}

func TestAppendIfAbsent_Appends(t *testing.T) {
	s := newTestStore(t, "redwood,S1\n")

	require.NoError(t, s.AppendIfAbsent("  Golden Wings ", "S3"))

	entries, err := s.Load()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{Trigger: "golden wings", StickerID: "S3"}, entries[1])
}

func TestAppendIfAbsent_RejectsDuplicate(t *testing.T) {
	s := newTestStore(t, "redwood,S1\n")

	err := s.AppendIfAbsent("ReDwOoD", "S9")
	require.ErrorIs(t, err, coreerrors.ErrDuplicateTrigger)

	// Dataset unchanged on rejection.
	entries, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Trigger: "redwood", StickerID: "S1"}}, entries)
}

func TestAppendIfAbsent_RejectsEmpty(t *testing.T) {
	s := newTestStore(t, "redwood,S1\n")

	err := s.AppendIfAbsent("   ", "S9")
	require.ErrorIs(t, err, coreerrors.ErrEmptyTrigger)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "redwood tree", Normalize("  Redwood Tree "))
	assert.Equal(t, "sapin de noël", Normalize("Sapin de Noël"))

	// Letters must survive lowercasing unchanged so the stored trigger still
	// matches the same word in live messages.
	assert.Equal(t, "straße", Normalize("Straße"))
	assert.Equal(t, "ёлка", Normalize("Ёлка"))
}
