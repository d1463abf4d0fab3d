// Package extract reads per-language Android string tables and produces the
// multi-locale master list the merge step consumes.
//
// The resource root holds one values* directory per language variant (plain
// "values" is the default language) with a strings.xml each. Only entries
// whose key follows the numbered entity convention are kept. One corrupt or
// missing file never aborts the run; the remaining variants are still
// extracted.
package extract

import (
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	coreerrors "github.com/thewoodenpuppet/forest-sticker-bot/internal/core/errors"
)

const (
	defaultLanguage = "default"
	valuesPrefix    = "values"
	stringsFileName = "strings.xml"
)

// keyPattern recognizes numbered entity definitions, anchored at the start of
// the key only.
var keyPattern = regexp.MustCompile(`^tree_type_(\d+)_title`)

var digits = regexp.MustCompile(`\d+`)

// Result is the extractor output: canonical ID → language → text, plus the
// deterministically sorted language set.
type Result struct {
	Entries      map[string]map[string]string
	Languages    []string
	SkippedFiles int
}

type stringsFile struct {
	Strings []stringEntry `xml:"string"`
}

type stringEntry struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

// Run walks the resource root and extracts every recognized entry.
func Run(resPath string, logger *zerolog.Logger) (*Result, error) {
	dirs, err := os.ReadDir(resPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", coreerrors.ErrNoResourceDir, resPath, err)
	}

	res := &Result{Entries: make(map[string]map[string]string)}
	languages := map[string]struct{}{defaultLanguage: {}}

	for _, dir := range dirs {
		if !dir.IsDir() || !strings.HasPrefix(dir.Name(), valuesPrefix) {
			continue
		}

		lang := languageCode(dir.Name())
		if lang == "" {
			continue
		}

		languages[lang] = struct{}{}

		path := filepath.Join(resPath, dir.Name(), stringsFileName)
		if err := extractFile(path, lang, res.Entries); err != nil {
			if os.IsNotExist(err) {
				logger.Debug().Str("dir", dir.Name()).Msg("no string table in variant")
				continue
			}

			res.SkippedFiles++

			logger.Warn().Err(err).Str("dir", dir.Name()).Msg("could not parse string table, skipping")
		}
	}

	res.Languages = make([]string, 0, len(languages))
	for lang := range languages {
		res.Languages = append(res.Languages, lang)
	}

	sort.Strings(res.Languages)

	logger.Info().
		Int("entries", len(res.Entries)).
		Int("languages", len(res.Languages)).
		Int("skipped_files", res.SkippedFiles).
		Msg("extraction finished")

	return res, nil
}

// languageCode maps a values directory name to its language code, or "" for
// directory names outside the convention.
func languageCode(dirName string) string {
	if dirName == valuesPrefix {
		return defaultLanguage
	}

	if code, ok := strings.CutPrefix(dirName, valuesPrefix+"-"); ok {
		return code
	}

	return ""
}

func extractFile(path, lang string, entries map[string]map[string]string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var table stringsFile
	if err := xml.Unmarshal(data, &table); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	for _, entry := range table.Strings {
		if entry.Name == "" || !keyPattern.MatchString(entry.Name) {
			continue
		}

		text := strings.TrimSpace(entry.Value)
		if text == "" {
			continue
		}

		if entries[entry.Name] == nil {
			entries[entry.Name] = make(map[string]string)
		}

		entries[entry.Name][lang] = text
	}

	return nil
}

// EntityID returns the numeric ID embedded in a canonical key.
func EntityID(key string) int {
	id, _ := strconv.Atoi(digits.FindString(key))
	return id
}

// WriteMasterList writes the wide audit table: a header of ID, Key and every
// language, then one row per entry ordered by numeric entity ID.
func WriteMasterList(res *Result, path string) error {
	keys := make([]string, 0, len(res.Entries))
	for key := range res.Entries {
		keys = append(keys, key)
	}

	sort.Slice(keys, func(i, j int) bool { return EntityID(keys[i]) < EntityID(keys[j]) })

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating master list: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	header := append([]string{"ID", "Key"}, res.Languages...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("writing master list header: %w", err)
	}

	for _, key := range keys {
		row := []string{strconv.Itoa(EntityID(key)), key}
		for _, lang := range res.Languages {
			row = append(row, res.Entries[key][lang])
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing master list row: %w", err)
		}
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing master list: %w", err)
	}

	return nil
}
