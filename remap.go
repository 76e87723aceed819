package main

import (
	"gitlab.com/gomidi/midi/v2/smf"
)

// ChangeAction says what the remapper did to a note.
type ChangeAction int

const (
	// ActionRemapped: the note number was rewritten per the drum map.
	ActionRemapped ChangeAction = iota
	// ActionForcedChannel: only the channel changed, the pitch stayed.
	ActionForcedChannel
	// ActionDiscarded: an unmapped note was dropped entirely.
	ActionDiscarded
	// ActionDeduplicated: a note collapsed onto an already emitted one
	// at the same tick and was dropped.
	ActionDeduplicated
)

func (a ChangeAction) String() string {
	switch a {
	case ActionRemapped:
		return "remapped"
	case ActionForcedChannel:
		return "forced-channel"
	case ActionDiscarded:
		return "discarded"
	case ActionDeduplicated:
		return "deduplicated"
	}
	return "unknown"
}

// NoteChange describes a single note transformation, reported through
// the remapper's notification callback. For discarded and deduplicated
// notes the To fields equal the From fields.
type NoteChange struct {
	Track       int
	Tick        uint32
	FromChannel uint8
	FromNote    uint8
	ToChannel   uint8
	ToNote      uint8
	Action      ChangeAction
}

// Remapper rewrites note events of a document according to a DrumMap
// and a RemapPolicy. Everything that is not a note event passes
// through untouched.
type Remapper struct {
	mapping *DrumMap
	policy  RemapPolicy
	notify  func(NoteChange)
}

// NewRemapper creates a Remapper. notify may be nil, in which case no
// notifications are delivered.
func NewRemapper(mapping *DrumMap, policy RemapPolicy, notify func(NoteChange)) *Remapper {
	return &Remapper{mapping: mapping, policy: policy, notify: notify}
}

// noteKey identifies a sounding note by its original channel and note,
// before any rewriting.
type noteKey struct {
	channel uint8
	note    uint8
}

// openNote records the rewrite decision taken at a note start so the
// paired note end gets the same treatment.
type openNote struct {
	outChannel uint8
	outNote    uint8
	dropped    bool
}

// dedupKey identifies a note start by its post-rewrite identity at an
// absolute tick.
type dedupKey struct {
	tick    uint32
	channel uint8
	note    uint8
}

// RemapTrack transforms one track. Note starts are rewritten per the
// drum map and policy; note ends follow whatever happened to their
// note start, keyed by the original (channel, note). Two note starts
// collapsing onto the same (tick, note, channel) keep only the first.
// A note start without a matching end at track end is passed through
// as-is, since such files exist in the wild.
func (r *Remapper) RemapTrack(trackIndex int, track smf.Track) smf.Track {
	open := make(map[noteKey]openNote)
	seen := make(map[dedupKey]bool)

	var events []MidiEvent
	var now uint32

	for _, event := range track {
		now += event.Delta
		msg := event.Message

		var ch, key, vel uint8
		switch {
		case msg.GetNoteOn(&ch, &key, &vel) && vel > 0:
			origin := noteKey{channel: ch, note: key}

			outCh, outKey, keep := r.resolve(ch, key)
			if !keep {
				open[origin] = openNote{dropped: true}
				r.report(trackIndex, now, ch, key, ch, key, ActionDiscarded)
				continue
			}

			id := dedupKey{tick: now, channel: outCh, note: outKey}
			if seen[id] {
				open[origin] = openNote{dropped: true}
				r.report(trackIndex, now, ch, key, ch, key, ActionDeduplicated)
				continue
			}
			seen[id] = true

			open[origin] = openNote{outChannel: outCh, outNote: outKey}
			if outKey != key {
				r.report(trackIndex, now, ch, key, outCh, outKey, ActionRemapped)
			} else if outCh != ch {
				r.report(trackIndex, now, ch, key, outCh, outKey, ActionForcedChannel)
			}
			events = append(events, MidiEvent{Time: now, Message: patchNote(msg, outCh, outKey)})

		// a NoteOn with velocity 0 ends a note, same as a NoteOff
		case msg.GetNoteOff(&ch, &key, &vel) || (msg.GetNoteOn(&ch, &key, &vel) && vel == 0):
			origin := noteKey{channel: ch, note: key}

			if state, ok := open[origin]; ok {
				delete(open, origin)
				if state.dropped {
					continue
				}
				events = append(events, MidiEvent{Time: now, Message: patchNote(msg, state.outChannel, state.outNote)})
				continue
			}

			// unmatched note end: rewrite it the same way its start
			// would have been
			outCh, outKey, keep := r.resolve(ch, key)
			if !keep {
				continue
			}
			events = append(events, MidiEvent{Time: now, Message: patchNote(msg, outCh, outKey)})

		case msg.Type() == smf.MetaEndOfTrackMsg:
			// buildTrack appends exactly one

		default:
			events = append(events, MidiEvent{Time: now, Message: msg})
		}
	}

	return buildTrack(events)
}

// resolve applies the drum map and policy to a note. keep is false
// when the note must be dropped. Channel forcing applies to every note
// without an explicit mapping, placeholders and unknown notes alike.
func (r *Remapper) resolve(channel, note uint8) (outChannel, outNote uint8, keep bool) {
	target, result := r.mapping.Lookup(note)

	outChannel, outNote = channel, note

	switch result {
	case LookupMapped:
		outNote = target
		if r.policy.ForcePercussion {
			outChannel = r.policy.TargetChannel
		}
	case LookupPlaceholder:
		if r.policy.ForcePercussion {
			outChannel = r.policy.TargetChannel
		}
	case LookupUnknown:
		if r.policy.DiscardUnmapped {
			return 0, 0, false
		}
		if r.policy.ForcePercussion {
			outChannel = r.policy.TargetChannel
		}
	}

	return outChannel, outNote, true
}

func (r *Remapper) report(track int, tick uint32, fromCh, fromNote, toCh, toNote uint8, action ChangeAction) {
	if r.notify == nil {
		return
	}
	r.notify(NoteChange{
		Track:       track,
		Tick:        tick,
		FromChannel: fromCh,
		FromNote:    fromNote,
		ToChannel:   toCh,
		ToNote:      toNote,
		Action:      action,
	})
}

// patchNote copies a note message and rewrites its channel and note
// number in place, preserving the message type and velocity byte.
func patchNote(msg smf.Message, channel, note uint8) smf.Message {
	out := append(smf.Message(nil), msg...)
	out[0] = out[0]&0xf0 | channel&0x0f
	out[1] = note
	return out
}
