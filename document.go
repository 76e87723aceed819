package main

import (
	"bytes"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"gitlab.com/gomidi/midi/v2/smf"
)

// MidiEvent represents a MIDI event with absolute timing
type MidiEvent struct {
	Time    uint32
	Message smf.Message
}

// DecodeDocument parses SMF bytes into an in-memory document. Running
// status is resolved during the parse, so every event in the returned
// tracks carries an explicit status byte. Messages the parser does not
// interpret are kept verbatim as raw bytes.
func DecodeDocument(data []byte) (*smf.SMF, error) {
	if len(data) == 0 {
		return nil, fault.New("empty input",
			ftag.With(ErrMalformedMidi),
			fmsg.WithDesc("empty midi file", "The input MIDI file contains no data."))
	}

	doc, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fault.Wrap(err,
			ftag.With(ErrMalformedMidi),
			fmsg.WithDesc("parse midi container",
				"The input file is not a readable Standard MIDI File."))
	}

	if len(doc.Tracks) == 0 {
		return nil, fault.New("midi file declares no tracks",
			ftag.With(ErrMalformedMidi))
	}

	return doc, nil
}

// EncodeDocument serializes a document back to SMF bytes. Status bytes
// are always written explicitly; decoding the result yields the same
// event sequence at the same absolute ticks.
func EncodeDocument(doc *smf.SMF) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fault.Wrap(err, fmsg.With("write midi container"))
	}
	return buf.Bytes(), nil
}

// trackEvents flattens a track to events with absolute times, dropping
// End Of Track markers. buildTrack is its inverse.
func trackEvents(track smf.Track) []MidiEvent {
	var events []MidiEvent
	var now uint32

	for _, event := range track {
		now += event.Delta
		if event.Message.Type() == smf.MetaEndOfTrackMsg {
			continue
		}
		events = append(events, MidiEvent{Time: now, Message: event.Message})
	}

	return events
}

// buildTrack converts absolute-time events back into a delta-timed
// track terminated by a single End Of Track. Events must already be in
// time order.
func buildTrack(events []MidiEvent) smf.Track {
	track := make(smf.Track, 0, len(events)+1)

	var lastTime uint32
	for _, event := range events {
		track = append(track, smf.Event{Delta: event.Time - lastTime, Message: event.Message})
		lastTime = event.Time
	}

	track = append(track, smf.Event{Delta: 0, Message: smf.EOT})
	return track
}
