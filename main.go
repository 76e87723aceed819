package main

import (
	"bytes"
	_ "embed"
	"flag"
	"fmt"
	"os"

	"github.com/Southclaws/fault/ftag"
	"github.com/charmbracelet/log"
)

// Default drum mapping shipped with the tool: Addictive Drums 2 key
// map to General MIDI percussion.
//
//go:embed ad2gm.csv
var defaultDrumMapCSV []byte

func main() {
	drumMapPath := flag.String("drum-map", "", "Drum mapping CSV file. Default is the built-in Addictive Drums 2 to GM map.")
	discardUnmapped := flag.Bool("discard-unmapped", false, "Discard notes that are not defined in the drum map.")
	forcePercussion := flag.Bool("force-percussion", false, "Force notes onto the General MIDI percussion channel.")
	channel := flag.Int("channel", 10, "Percussion channel (1-16) used with -force-percussion.")
	logLevel := flag.String("log-level", "info", "Logging verbosity: debug, info, warn, error.")
	preserveMeta := flag.Bool("preserve-meta", false, "Preserve tempo/time signature meta events from the source file (may produce duplicate meta events).")
	tempo := flag.Int("tempo", 0, "Tempo for the output MIDI file in BPM, e.g. 120. 0 keeps the source tempo.")
	timeSignature := flag.String("time-signature", "", "Time signature for the output MIDI file, e.g. 4/4. Empty keeps the source.")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <infile.mid> <outfile.mid>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	infile := flag.Arg(0)
	outfile := flag.Arg(1)

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		logger.Error("invalid log level", "level", *logLevel)
		os.Exit(2)
	}
	logger.SetLevel(level)

	if *channel < 1 || *channel > 16 {
		logger.Error("percussion channel out of range", "channel", *channel, "allowed", "1-16")
		os.Exit(2)
	}

	opts := ConvertOptions{Policy: DefaultPolicy()}
	opts.Policy.DiscardUnmapped = *discardUnmapped
	opts.Policy.ForcePercussion = *forcePercussion
	opts.Policy.PreserveMeta = *preserveMeta
	opts.Policy.TargetChannel = uint8(*channel - 1)
	opts.TempoBPM = *tempo

	if *timeSignature != "" {
		ts, err := ParseTimeSignature(*timeSignature)
		if err != nil {
			logger.Error("invalid time signature", "value", *timeSignature, "err", err)
			os.Exit(2)
		}
		opts.TimeSig = &ts
	}

	opts.Notify = func(change NoteChange) {
		switch change.Action {
		case ActionDiscarded:
			logger.Info("discarded unmapped note",
				"track", change.Track, "tick", change.Tick,
				"channel", change.FromChannel, "note", change.FromNote)
		case ActionDeduplicated:
			logger.Info("removed duplicate note",
				"track", change.Track, "tick", change.Tick,
				"channel", change.FromChannel, "note", change.FromNote)
		case ActionRemapped:
			logger.Debug("remapped note",
				"track", change.Track, "tick", change.Tick,
				"from", change.FromNote, "to", change.ToNote,
				"channel", change.ToChannel, "name", getGMPercussionName(change.ToNote))
		case ActionForcedChannel:
			logger.Debug("forced percussion channel",
				"track", change.Track, "tick", change.Tick,
				"note", change.FromNote, "channel", change.ToChannel)
		}
	}

	mapping, err := loadDrumMapping(*drumMapPath)
	if err != nil {
		logger.Error("loading drum mapping failed", "err", err)
		os.Exit(1)
	}
	logger.Debug("loaded drum mapping", "entries", mapping.Len())

	input, err := os.ReadFile(infile)
	if err != nil {
		logger.Error("input MIDI file not found", "file", infile, "err", err)
		os.Exit(2)
	}

	output, err := Convert(input, mapping, opts)
	if err != nil {
		logger.Error("conversion failed", "err", err)
		if ftag.Get(err) == ErrInvalidPolicy {
			os.Exit(2)
		}
		os.Exit(1)
	}

	if err := os.WriteFile(outfile, output, 0o644); err != nil {
		logger.Error("writing output failed", "file", outfile, "err", err)
		os.Exit(1)
	}

	logger.Info("new MIDI file saved", "file", outfile)
}

// loadDrumMapping reads the mapping from path, falling back to the
// embedded default map when path is empty.
func loadDrumMapping(path string) (*DrumMap, error) {
	if path == "" {
		return ReadDrumMapCSV(bytes.NewReader(defaultDrumMapCSV))
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadDrumMapCSV(file)
}
