// Package merge joins the multi-locale master list against the curated
// sticker map and emits the final trigger dataset.
//
// Every language cell of a matched entry becomes a trigger candidate; junk
// columns that encode device metadata rather than a language are dropped, and
// trigger texts are deduplicated globally, first occurrence wins. The output
// row order is the iteration order (rows in file order, columns in header
// order), so two runs over the same inputs produce identical files.
package merge

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	coreerrors "github.com/thewoodenpuppet/forest-sticker-bot/internal/core/errors"
	"github.com/thewoodenpuppet/forest-sticker-bot/internal/dataset"
)

const defaultColumn = "default"

// junkPatterns identify pseudo-language columns leaked from the resource
// tree: density, orientation, API version, night mode and display class
// variants.
var junkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d+dp`),
	regexp.MustCompile(`v\d+`),
	regexp.MustCompile(`night`),
	regexp.MustCompile(`land`),
	regexp.MustCompile(`port`),
	regexp.MustCompile(`watch`),
	regexp.MustCompile(`dpi`),
}

func isJunkColumn(name string) bool {
	for _, p := range junkPatterns {
		if p.MatchString(name) {
			return true
		}
	}

	return false
}

// normalizeCell trims whitespace and stray surrounding quotes, then lowercases
// case, matching how triggers are normalized everywhere else.
func normalizeCell(s string) string {
	return dataset.Normalize(strings.Trim(strings.TrimSpace(s), `"`))
}

// LoadStickerMap reads the curated reference-text → sticker ID map. Rows need
// at least two fields; on duplicate keys the last row read wins.
func LoadStickerMap(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening sticker map: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	stickers := make(map[string]string)

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("reading sticker map: %w", err)
		}

		if len(row) < 2 {
			continue
		}

		name := normalizeCell(row[0])
		if name == "" {
			continue
		}

		stickers[name] = strings.TrimSpace(row[1])
	}

	return stickers, nil
}

// Run merges the master list with the sticker map and writes the trigger
// dataset to outPath. It returns the number of trigger rows written.
func Run(masterPath, stickerPath, outPath string, logger *zerolog.Logger) (int, error) {
	stickers, err := LoadStickerMap(stickerPath)
	if err != nil {
		return 0, err
	}

	logger.Info().Int("stickers", len(stickers)).Msg("sticker map loaded")

	rows, err := mergeMasterList(masterPath, stickers, logger)
	if err != nil {
		return 0, err
	}

	if err := writeDataset(outPath, rows); err != nil {
		return 0, err
	}

	logger.Info().Int("triggers", len(rows)).Str("path", outPath).Msg("trigger dataset written")

	return len(rows), nil
}

func mergeMasterList(masterPath string, stickers map[string]string, logger *zerolog.Logger) ([]dataset.Entry, error) {
	f, err := os.Open(masterPath)
	if err != nil {
		return nil, fmt.Errorf("opening master list: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading master list header: %w", err)
	}

	defaultIdx := -1

	for i, col := range header {
		if col == defaultColumn {
			defaultIdx = i
			break
		}
	}

	if defaultIdx < 0 {
		return nil, coreerrors.ErrNoDefaultColumn
	}

	var (
		entries []dataset.Entry
		seen    = make(map[string]struct{})
		dropped int
	)

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("reading master list: %w", err)
		}

		if defaultIdx >= len(row) {
			continue
		}

		referenceName := normalizeCell(row[defaultIdx])

		stickerID, ok := stickers[referenceName]
		if !ok {
			dropped++

			logger.Debug().Str("entry", referenceName).Msg("no sticker for entry, dropping")

			continue
		}

		for i, cell := range row {
			if i >= len(header) {
				break
			}

			if header[i] == "ID" || header[i] == "Key" || isJunkColumn(header[i]) {
				continue
			}

			trigger := normalizeCell(cell)
			if trigger == "" {
				continue
			}

			if _, dup := seen[trigger]; dup {
				continue
			}

			seen[trigger] = struct{}{}

			entries = append(entries, dataset.Entry{Trigger: trigger, StickerID: stickerID})
		}
	}

	if dropped > 0 {
		logger.Info().Int("dropped", dropped).Msg("entries without a sticker were dropped")
	}

	return entries, nil
}

func writeDataset(path string, entries []dataset.Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating trigger dataset: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	for _, e := range entries {
		if err := writer.Write([]string{e.Trigger, e.StickerID}); err != nil {
			return fmt.Errorf("writing trigger row: %w", err)
		}
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing trigger dataset: %w", err)
	}

	return nil
}
