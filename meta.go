package main

import (
	"gitlab.com/gomidi/midi/v2/smf"
)

// MIDI time signature metadata defaults: 24 MIDI clocks per metronome
// click, 8 demisemiquavers per quarter note.
const (
	clocksPerClick           uint8 = 24
	demiSemiQuaverPerQuarter uint8 = 8
)

// rewriteMetaEvents applies the configured tempo and time-signature
// overrides to a set of tracks.
//
// With a tempo configured (bpm > 0), existing tempo events are removed
// from every track unless preserve is set, and a fresh tempo event is
// inserted at tick 0 of the first track. The same goes for the time
// signature when ts is non-nil. With preserve set the new events are
// inserted anyway, so duplicates are expected. With neither override
// configured the tracks come back unchanged.
func rewriteMetaEvents(tracks []smf.Track, bpm int, ts *TimeSignature, preserve bool) []smf.Track {
	if bpm == 0 && ts == nil {
		return tracks
	}

	out := make([]smf.Track, len(tracks))
	for i, track := range tracks {
		events := trackEvents(track)

		if !preserve {
			events = stripMeta(events, bpm > 0, ts != nil)
		}

		if i == 0 {
			events = append(metaPrefix(bpm, ts), events...)
		}

		out[i] = buildTrack(events)
	}

	return out
}

// stripMeta removes tempo and/or time-signature events. Surviving
// events keep their absolute ticks.
func stripMeta(events []MidiEvent, dropTempo, dropTimeSig bool) []MidiEvent {
	kept := events[:0]
	for _, event := range events {
		switch event.Message.Type() {
		case smf.MetaTempoMsg:
			if dropTempo {
				continue
			}
		case smf.MetaTimeSigMsg:
			if dropTimeSig {
				continue
			}
		}
		kept = append(kept, event)
	}
	return kept
}

// metaPrefix builds the tick-0 events injected into the first track.
func metaPrefix(bpm int, ts *TimeSignature) []MidiEvent {
	var prefix []MidiEvent

	if bpm > 0 {
		prefix = append(prefix, MidiEvent{
			Time:    0,
			Message: smf.Message(smf.MetaTempo(float64(bpm))),
		})
	}

	if ts != nil {
		prefix = append(prefix, MidiEvent{
			Time:    0,
			Message: smf.Message(smf.MetaTimeSig(ts.Numerator, ts.Denominator, clocksPerClick, demiSemiQuaverPerQuarter)),
		})
	}

	return prefix
}
