// Package trigger implements the compiled trigger matcher table.
//
// The index is built once at process start from the persisted dataset and is
// immutable afterwards: Resolve performs no mutation and is safe for
// concurrent use. Triggers appended through the registration workflow become
// visible on the next restart.
package trigger

import (
	"regexp"
	"sort"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/thewoodenpuppet/forest-sticker-bot/internal/dataset"
)

type matcher struct {
	trigger   string
	stickerID string
	pattern   *regexp.Regexp
	length    int
}

// Index is an ordered matcher table, longest trigger first so the most
// specific phrase wins when several triggers occur in the same message.
type Index struct {
	matchers []matcher
}

// New compiles the given entries and sorts them by descending trigger length
// in runes; equal-length entries keep their dataset order.
func New(entries []dataset.Entry) *Index {
	matchers := make([]matcher, 0, len(entries))

	for _, e := range entries {
		matchers = append(matchers, matcher{
			trigger:   e.Trigger,
			stickerID: e.StickerID,
			pattern:   compile(e.Trigger),
			length:    utf8.RuneCountInString(e.Trigger),
		})
	}

	sort.SliceStable(matchers, func(i, j int) bool {
		return matchers[i].length > matchers[j].length
	})

	return &Index{matchers: matchers}
}

// Load reads the dataset through the store and builds the index. A missing or
// unreadable dataset propagates as an error so startup can refuse to continue.
func Load(store *dataset.Store, logger *zerolog.Logger) (*Index, error) {
	entries, err := store.Load()
	if err != nil {
		return nil, err
	}

	logger.Info().Int("triggers", len(entries)).Str("path", store.Path()).Msg("trigger dataset loaded")

	return New(entries), nil
}

// compile builds a case-insensitive matcher for a boundary-anchored phrase
// occurrence: the trigger must not be directly adjacent to a non-whitespace
// character on either side. This is looser than a dictionary word boundary
// (punctuation inside the trigger is fine) but never matches inside a longer
// unbroken token.
func compile(trigger string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:\A|\s)` + regexp.QuoteMeta(trigger) + `(?:\s|\z)`)
}

// Resolve scans the matcher table in order and returns the sticker ID of the
// first trigger occurring in text, or false if none match.
func (ix *Index) Resolve(text string) (string, bool) {
	for _, m := range ix.matchers {
		if m.pattern.MatchString(text) {
			return m.stickerID, true
		}
	}

	return "", false
}

// Len returns the number of compiled triggers.
func (ix *Index) Len() int {
	return len(ix.matchers)
}
