package main

import (
	"gitlab.com/gomidi/midi/v2/smf"
)

// ConvertOptions bundles everything Convert needs besides the input
// bytes and the drum map.
type ConvertOptions struct {
	Policy RemapPolicy
	// TempoBPM overrides the output tempo when non-zero.
	TempoBPM int
	// TimeSig overrides the output time signature when non-nil.
	TimeSig *TimeSignature
	// Notify receives a NoteChange for every note the remapper
	// touches. May be nil.
	Notify func(NoteChange)
}

// Convert runs the full transformation: decode, remap every track,
// rewrite tempo/time-signature metadata, encode. The output keeps the
// input's timing resolution, and a single-track format 0 file stays
// format 0. Nothing is returned unless the whole transform succeeds.
func Convert(input []byte, mapping *DrumMap, opts ConvertOptions) ([]byte, error) {
	if err := opts.Policy.Validate(); err != nil {
		return nil, err
	}
	if opts.TempoBPM != 0 {
		if err := validateTempo(opts.TempoBPM); err != nil {
			return nil, err
		}
	}

	source, err := DecodeDocument(input)
	if err != nil {
		return nil, err
	}

	remapper := NewRemapper(mapping, opts.Policy, opts.Notify)

	tracks := make([]smf.Track, 0, len(source.Tracks))
	for i, track := range source.Tracks {
		tracks = append(tracks, remapper.RemapTrack(i, track))
	}

	tracks = rewriteMetaEvents(tracks, opts.TempoBPM, opts.TimeSig, opts.Policy.PreserveMeta)

	var target *smf.SMF
	if source.Format() == 0 && len(tracks) == 1 {
		target = smf.New()
	} else {
		target = smf.NewSMF1()
	}
	target.TimeFormat = source.TimeFormat

	for _, track := range tracks {
		target.Add(track)
	}

	return EncodeDocument(target)
}
