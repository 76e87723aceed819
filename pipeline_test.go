package main

import (
	"testing"

	"github.com/Southclaws/fault/ftag"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// mirror of the original tool's fixture: one track, tempo and time
// signature at tick 0, a percussion note on channel 9 and a second
// note on channel 0
func conversionFixture(t *testing.T) []byte {
	return encodeTestSMF(t, true, smf.Track{
		{Delta: 0, Message: smf.Message(smf.MetaTempo(120))},
		{Delta: 0, Message: smf.Message(smf.MetaTimeSig(4, 4, 24, 8))},
		{Delta: 0, Message: smf.Message(midi.NoteOn(9, 36, 64))},
		{Delta: 240, Message: smf.Message(midi.NoteOff(9, 36))},
		{Delta: 0, Message: smf.Message(midi.NoteOn(0, 38, 64))},
		{Delta: 240, Message: smf.Message(midi.NoteOff(0, 38))},
	})
}

func conversionMap(t *testing.T) *DrumMap {
	return mustDrumMap(t, [][]string{
		{"036", "036", "Kick", "Electric Bass Drum"},
		{"038", "040", "Snare Open Hit", "Electric Snare or Rimshot"},
	})
}

func TestConvertBasicMapping(t *testing.T) {
	opts := ConvertOptions{Policy: DefaultPolicy()}
	opts.Policy.PreserveMeta = true

	output, err := Convert(conversionFixture(t), conversionMap(t), opts)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	notes := collectNotes(t, output)

	var note36, note40 []noteEvt
	for _, n := range notes {
		switch n.note {
		case 36:
			note36 = append(note36, n)
		case 40:
			note40 = append(note40, n)
		}
	}

	if len(note36) != 2 {
		t.Errorf("expected note 36 pair, got %+v", note36)
	}
	for _, n := range note36 {
		if n.channel != 9 {
			t.Errorf("note 36 should stay on channel 9, got %+v", n)
		}
	}

	if len(note40) != 2 {
		t.Errorf("expected 38 remapped to a note 40 pair, got %+v", note40)
	}
	for _, n := range note40 {
		if n.channel != 0 {
			t.Errorf("without force-percussion the channel stays 0, got %+v", n)
		}
	}
}

func TestConvertForcePercussion(t *testing.T) {
	opts := ConvertOptions{Policy: DefaultPolicy()}
	opts.Policy.PreserveMeta = true
	opts.Policy.ForcePercussion = true

	output, err := Convert(conversionFixture(t), conversionMap(t), opts)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	for _, n := range collectNotes(t, output) {
		if n.channel != 9 {
			t.Errorf("every note should land on channel 9, got %+v", n)
		}
	}
}

func TestConvertDiscardUnmapped(t *testing.T) {
	input := encodeTestSMF(t, true, smf.Track{
		{Delta: 0, Message: smf.Message(midi.NoteOn(9, 50, 64))}, // unknown
		{Delta: 10, Message: smf.Message(midi.NoteOff(9, 50))},
		{Delta: 0, Message: smf.Message(midi.NoteOn(9, 36, 64))},
		{Delta: 10, Message: smf.Message(midi.NoteOff(9, 36))},
	})

	opts := ConvertOptions{Policy: DefaultPolicy()}
	opts.Policy.DiscardUnmapped = true

	output, err := Convert(input, conversionMap(t), opts)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	for _, n := range collectNotes(t, output) {
		if n.note == 50 {
			t.Errorf("note 50 must not appear in the output, got %+v", n)
		}
	}
}

func TestConvertAppliesMetaOverrides(t *testing.T) {
	ts := TimeSignature{Numerator: 7, Denominator: 4}
	opts := ConvertOptions{
		Policy:   DefaultPolicy(),
		TempoBPM: 140,
		TimeSig:  &ts,
	}

	output, err := Convert(conversionFixture(t), conversionMap(t), opts)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	doc, err := DecodeDocument(output)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}

	tempos := collectTempos(doc.Tracks[0])
	if len(tempos) != 1 || tempos[0].tick != 0 {
		t.Fatalf("expected one tempo at tick 0, got %+v", tempos)
	}
	if tempos[0].bpm < 139.9 || tempos[0].bpm > 140.1 {
		t.Errorf("expected 140 BPM, got %f", tempos[0].bpm)
	}

	var num, denom, clocks, dsq uint8
	sigCount := 0
	for _, event := range doc.Tracks[0] {
		if event.Message.GetMetaTimeSig(&num, &denom, &clocks, &dsq) {
			sigCount++
		}
	}
	if sigCount != 1 || num != 7 || denom != 4 {
		t.Errorf("expected a single 7/4 time signature, got count=%d %d/%d", sigCount, num, denom)
	}
}

func TestConvertPreservesFormatAndResolution(t *testing.T) {
	input := encodeTestSMF(t, true, smf.Track{
		{Delta: 0, Message: smf.Message(midi.NoteOn(9, 36, 64))},
		{Delta: 10, Message: smf.Message(midi.NoteOff(9, 36))},
	})

	output, err := Convert(input, conversionMap(t), ConvertOptions{Policy: DefaultPolicy()})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	doc, err := DecodeDocument(output)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if doc.Format() != 0 {
		t.Errorf("format 0 input should yield format 0 output, got %d", doc.Format())
	}
	if ticks, ok := doc.TimeFormat.(smf.MetricTicks); !ok || uint16(ticks) != 480 {
		t.Errorf("expected 480 ticks per quarter preserved, got %v", doc.TimeFormat)
	}

	multi := encodeTestSMF(t, false,
		smf.Track{{Delta: 0, Message: smf.Message(smf.MetaTempo(120))}},
		smf.Track{
			{Delta: 0, Message: smf.Message(midi.NoteOn(9, 36, 64))},
			{Delta: 10, Message: smf.Message(midi.NoteOff(9, 36))},
		},
	)

	output, err = Convert(multi, conversionMap(t), ConvertOptions{Policy: DefaultPolicy()})
	if err != nil {
		t.Fatalf("convert multi-track: %v", err)
	}
	doc, err = DecodeDocument(output)
	if err != nil {
		t.Fatalf("decode multi-track output: %v", err)
	}
	if doc.Format() != 1 {
		t.Errorf("multi-track input should yield format 1 output, got %d", doc.Format())
	}
	if len(doc.Tracks) != 2 {
		t.Errorf("track count changed: expected 2, got %d", len(doc.Tracks))
	}
}

func TestConvertRejectsBadOptions(t *testing.T) {
	input := conversionFixture(t)
	dm := conversionMap(t)

	opts := ConvertOptions{Policy: DefaultPolicy(), TempoBPM: 500}
	if _, err := Convert(input, dm, opts); ftag.Get(err) != ErrInvalidPolicy {
		t.Errorf("tempo 500: expected ErrInvalidPolicy, got %v", err)
	}

	opts = ConvertOptions{Policy: RemapPolicy{TargetChannel: 42}}
	if _, err := Convert(input, dm, opts); ftag.Get(err) != ErrInvalidPolicy {
		t.Errorf("channel 42: expected ErrInvalidPolicy, got %v", err)
	}

	if _, err := Convert([]byte("junk"), dm, ConvertOptions{Policy: DefaultPolicy()}); ftag.Get(err) != ErrMalformedMidi {
		t.Errorf("junk input: expected ErrMalformedMidi, got %v", err)
	}
}
