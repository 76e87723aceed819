package main

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

// LookupResult classifies what a DrumMap knows about a source note.
type LookupResult int

const (
	// LookupUnknown means the note does not appear in the map at all.
	LookupUnknown LookupResult = iota
	// LookupMapped means the note has an explicit target note.
	LookupMapped
	// LookupPlaceholder means the note is listed but deliberately has no
	// target, so it keeps its pitch.
	LookupPlaceholder
)

// DrumMap holds source-to-target drum note associations loaded from a
// mapping file. It is built once per run and read-only afterwards.
type DrumMap struct {
	targets      map[uint8]uint8
	placeholders map[uint8]bool
}

// LoadDrumMap builds a DrumMap from raw rows, typically CSV records.
//
// A row is used only when its first field parses as an integer in
// 0-127; everything else (headers, separators, note names) is skipped.
// The second field becomes the target note when it also parses as an
// integer in 0-127, otherwise the source note is recorded as a
// placeholder. Extra fields are ignored. When the same source note
// appears more than once the last row wins.
func LoadDrumMap(rows [][]string) (*DrumMap, error) {
	dm := &DrumMap{
		targets:      make(map[uint8]uint8),
		placeholders: make(map[uint8]bool),
	}

	for _, row := range rows {
		if len(row) == 0 {
			continue
		}

		source, ok := parseNote(row[0])
		if !ok {
			continue
		}

		var target uint8
		targetOK := false
		if len(row) >= 2 {
			target, targetOK = parseNote(row[1])
		}

		if targetOK {
			delete(dm.placeholders, source)
			dm.targets[source] = target
		} else {
			delete(dm.targets, source)
			dm.placeholders[source] = true
		}
	}

	if len(dm.targets) == 0 && len(dm.placeholders) == 0 {
		return nil, fault.New("no usable rows in drum mapping",
			ftag.With(ErrMappingFormat),
			fmsg.WithDesc("empty drum mapping",
				"The drum mapping file contains no rows with a note number in the first column."))
	}

	return dm, nil
}

// ReadDrumMapCSV reads a comma-delimited, double-quoted mapping file
// and loads it into a DrumMap.
func ReadDrumMapCSV(r io.Reader) (*DrumMap, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fault.Wrap(err,
			ftag.With(ErrMappingFormat),
			fmsg.With("read drum mapping csv"))
	}

	return LoadDrumMap(rows)
}

// Lookup reports how sourceNote should be treated. The returned target
// is only meaningful when the result is LookupMapped.
func (dm *DrumMap) Lookup(sourceNote uint8) (uint8, LookupResult) {
	if target, ok := dm.targets[sourceNote]; ok {
		return target, LookupMapped
	}
	if dm.placeholders[sourceNote] {
		return 0, LookupPlaceholder
	}
	return 0, LookupUnknown
}

// Len returns the number of source notes the map knows about,
// placeholders included.
func (dm *DrumMap) Len() int {
	return len(dm.targets) + len(dm.placeholders)
}

// parseNote parses a MIDI note number in the range 0-127.
func parseNote(field string) (uint8, bool) {
	field = strings.TrimSpace(field)
	if field == "" {
		return 0, false
	}
	n, err := strconv.Atoi(field)
	if err != nil || n < 0 || n > 127 {
		return 0, false
	}
	return uint8(n), true
}
