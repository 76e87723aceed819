package main

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

const gmDrumChannel uint8 = 9 // default percussion channel in GM, 0-indexed

// Tempo range accepted for the output file, in BPM.
const (
	minTempoBPM = 20
	maxTempoBPM = 300
)

// RemapPolicy controls how note events are rewritten.
type RemapPolicy struct {
	// ForcePercussion moves every note event that is not explicitly
	// mapped away onto TargetChannel, known and unknown notes alike.
	ForcePercussion bool
	// PreserveMeta keeps existing tempo/time-signature events when new
	// ones are injected, producing duplicates on purpose.
	PreserveMeta bool
	// DiscardUnmapped drops note events whose note is absent from the
	// drum map, along with their paired note ends.
	DiscardUnmapped bool
	// TargetChannel is the channel forced notes land on, 0-indexed.
	TargetChannel uint8
}

// DefaultPolicy returns a policy targeting the GM percussion channel
// with all transformations switched off.
func DefaultPolicy() RemapPolicy {
	return RemapPolicy{TargetChannel: gmDrumChannel}
}

// Validate checks the policy for values the MIDI wire format cannot
// express.
func (p RemapPolicy) Validate() error {
	if p.TargetChannel > 15 {
		return fault.New(fmt.Sprintf("target channel %d out of range 0-15", p.TargetChannel),
			ftag.With(ErrInvalidPolicy))
	}
	return nil
}

// TimeSignature is a parsed and validated time signature such as 7/4.
type TimeSignature struct {
	Numerator   uint8
	Denominator uint8
}

func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.Numerator, ts.Denominator)
}

var timeSignatureRE = regexp.MustCompile(`^(\d+)/(\d+)$`)

// beat units a MIDI time signature denominator can sensibly take
var validBeatUnits = []int{1, 2, 4, 8, 16, 32}

// ParseTimeSignature parses a string like "7/4" into a TimeSignature.
// Beats per bar must be at least 1 and the beat unit a power of two up
// to 32.
func ParseTimeSignature(s string) (TimeSignature, error) {
	m := timeSignatureRE.FindStringSubmatch(s)
	if m == nil {
		return TimeSignature{}, fault.New(fmt.Sprintf("invalid time signature %q, expected N/D such as 4/4", s),
			ftag.With(ErrInvalidPolicy),
			fmsg.WithDesc("unparseable time signature",
				fmt.Sprintf("Time signature %q is not in N/D form, e.g. 4/4 or 7/8.", s)))
	}

	beats, _ := strconv.Atoi(m[1])
	unit, _ := strconv.Atoi(m[2])

	if beats < 1 || beats > 255 {
		return TimeSignature{}, fault.New(fmt.Sprintf("invalid beats per bar %d, must be at least 1", beats),
			ftag.With(ErrInvalidPolicy))
	}

	unitOK := false
	for _, valid := range validBeatUnits {
		if unit == valid {
			unitOK = true
			break
		}
	}
	if !unitOK {
		return TimeSignature{}, fault.New(fmt.Sprintf("invalid beat unit %d, allowed: %v", unit, validBeatUnits),
			ftag.With(ErrInvalidPolicy))
	}

	return TimeSignature{Numerator: uint8(beats), Denominator: uint8(unit)}, nil
}

// validateTempo checks a configured tempo against the supported range.
func validateTempo(bpm int) error {
	if bpm < minTempoBPM || bpm > maxTempoBPM {
		return fault.New(fmt.Sprintf("tempo %d out of range, must be %d-%d BPM", bpm, minTempoBPM, maxTempoBPM),
			ftag.With(ErrInvalidPolicy))
	}
	return nil
}
