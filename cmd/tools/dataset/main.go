// Command dataset runs the offline pipeline that builds the trigger dataset.
//
// Extract mode walks a decoded resource tree and writes the multi-locale
// master list; merge mode joins the master list against the curated sticker
// map and writes the final trigger dataset the bot loads at startup.
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/thewoodenpuppet/forest-sticker-bot/internal/extract"
	"github.com/thewoodenpuppet/forest-sticker-bot/internal/merge"
)

func main() {
	mode := flag.String("mode", "", "Pipeline mode (extract, merge)")
	resDir := flag.String("res", "res", "Resource directory with values* subdirectories (extract)")
	masterPath := flag.String("master", "forest_master_list.csv", "Master list CSV path (extract output, merge input)")
	stickerPath := flag.String("stickers", "stickers.csv", "Curated sticker map CSV (merge input)")
	outPath := flag.String("out", "stickers_final.csv", "Trigger dataset output path (merge)")

	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	switch *mode {
	case "extract":
		runExtract(&logger, *resDir, *masterPath)
	case "merge":
		runMerge(&logger, *masterPath, *stickerPath, *outPath)
	default:
		log.Fatalf("Usage: %s --mode=[extract|merge]", os.Args[0])
	}
}

func runExtract(logger *zerolog.Logger, resDir, masterPath string) {
	res, err := extract.Run(resDir, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("extraction failed")
	}

	if err := extract.WriteMasterList(res, masterPath); err != nil {
		logger.Fatal().Err(err).Msg("failed to write master list")
	}

	logger.Info().Str("path", masterPath).Msg("master list written")
}

func runMerge(logger *zerolog.Logger, masterPath, stickerPath, outPath string) {
	n, err := merge.Run(masterPath, stickerPath, outPath, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("merge failed")
	}

	logger.Info().Int("triggers", n).Str("path", outPath).Msg("merge finished, replace the live dataset with this file")
}
