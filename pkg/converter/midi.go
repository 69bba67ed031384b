package converter

import (
	"bytes"
	"fmt"
	"os"

	"github.com/james-see/bank2sf2/pkg/sf2"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	percussionChannel = 9
	metaMarker        = 0x06
)

// AuditionEntry is one preset played by an audition file
type AuditionEntry struct {
	Name    string
	Channel uint8
	Bank    uint16
	Program uint8
	Note    uint8
}

// AuditionGenerator writes Standard MIDI Files that select and play every
// preset of a bank in turn
type AuditionGenerator struct {
	ticksPerQuarter uint16
	tempo           float64
	melodicNote     uint8
	percussionNote  uint8
	velocity        uint8
}

// NewAuditionGenerator creates a generator playing middle C (and the bass
// drum key on percussion presets) for one beat per preset
func NewAuditionGenerator() *AuditionGenerator {
	return &AuditionGenerator{
		ticksPerQuarter: 480,
		tempo:           120.0,
		melodicNote:     60,
		percussionNote:  36,
		velocity:        100,
	}
}

// GenerateAudition creates an audition SMF with the default settings
func GenerateAudition(bank *sf2.Bank) ([]byte, error) {
	return NewAuditionGenerator().Generate(bank)
}

// Generate creates MIDI data playing every preset of bank. Presets in the
// percussion bank play on channel 10.
func (a *AuditionGenerator) Generate(bank *sf2.Bank) ([]byte, error) {
	if bank == nil {
		return nil, errors.New("nil bank")
	}
	if len(bank.Presets) < 2 {
		return nil, errors.New("bank has no presets")
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(a.ticksPerQuarter)

	var track smf.Track

	// Tempo (FF 51 03) and 4/4 time signature (FF 58 04)
	microsecondsPerBeat := uint32(60000000.0 / a.tempo)
	track.Add(0, smf.Message([]byte{
		0xFF, 0x51, 0x03,
		byte(microsecondsPerBeat >> 16),
		byte(microsecondsPerBeat >> 8),
		byte(microsecondsPerBeat),
	}))
	track.Add(0, smf.Message([]byte{0xFF, 0x58, 0x04, 0x04, 0x02, 0x18, 0x08}))

	beat := uint32(a.ticksPerQuarter)
	noteLength := beat * 3 / 4
	var gap uint32

	for i := 0; i+1 < len(bank.Presets); i++ {
		p := bank.Presets[i]
		channel, note := uint8(0), a.melodicNote
		if p.Bank == percussionBank {
			channel, note = percussionChannel, a.percussionNote
		}

		track.Add(gap, marker(p.Name))
		track.Add(0, midi.ControlChange(channel, 0, uint8(p.Bank&0x7f)))
		track.Add(0, midi.ControlChange(channel, 32, uint8(p.Bank>>7&0x7f)))
		track.Add(0, midi.ProgramChange(channel, uint8(p.Program&0x7f)))
		track.Add(0, midi.NoteOn(channel, note, a.velocity))
		track.Add(noteLength, midi.NoteOff(channel, note))
		gap = beat - noteLength
	}

	track.Close(gap)

	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes the audition of bank to filename
func (a *AuditionGenerator) WriteFile(bank *sf2.Bank, filename string) error {
	data, err := a.Generate(bank)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

// marker builds a marker meta event (FF 06) carrying a preset name
func marker(text string) smf.Message {
	if len(text) > 127 {
		text = text[:127]
	}
	msg := []byte{0xFF, metaMarker, byte(len(text))}
	return smf.Message(append(msg, text...))
}

// ParseAudition reads back the presets an audition file plays
func ParseAudition(data []byte) ([]AuditionEntry, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIDI: %w", err)
	}

	var entries []AuditionEntry
	var current AuditionEntry
	for _, track := range s.Tracks {
		for _, ev := range track {
			msg := ev.Message
			if len(msg) < 2 {
				continue
			}

			if msg[0] == 0xFF && msg[1] == metaMarker && len(msg) >= 3 {
				current = AuditionEntry{Name: string(msg[3:])}
				continue
			}

			status := msg[0] & 0xF0
			channel := msg[0] & 0x0F
			switch {
			case status == 0xB0 && len(msg) >= 3 && msg[1] == 0:
				current.Bank = current.Bank&^0x7f | uint16(msg[2])
			case status == 0xB0 && len(msg) >= 3 && msg[1] == 32:
				current.Bank = current.Bank&0x7f | uint16(msg[2])<<7
			case status == 0xC0:
				current.Program = msg[1]
			case status == 0x90 && len(msg) >= 3 && msg[2] > 0:
				current.Channel = channel
				current.Note = msg[1]
				entries = append(entries, current)
			}
		}
	}
	return entries, nil
}
