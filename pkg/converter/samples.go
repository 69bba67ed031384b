package converter

import (
	"encoding/binary"
	"fmt"

	"github.com/james-see/bank2sf2/pkg/dls"
	"github.com/james-see/bank2sf2/pkg/sf2"
)

const defaultUnityNote = 60

// samplePlan is the layout of one wave in the output pool. Wave points
// before split are copied first, then inserted points repeating the loop,
// then the rest of the wave. Points after the wave repeat the loop up to
// repeatTo; silence pads the sample up to total.
type samplePlan struct {
	frames    int
	split     int
	inserted  int
	period    int
	repeatTo  int
	total     int
	loopStart int
	loopEnd   int
	looped    bool
}

// waveLoop returns the first loop of a wave sample. Zero-length loops do
// not count.
func waveLoop(ws *dls.WaveSample) (dls.Loop, bool) {
	if !ws.HasLoop() || ws.Loops[0].Length == 0 {
		return dls.Loop{}, false
	}
	return ws.Loops[0], true
}

// planSample lays out a wave of frames points so the emitted sample meets
// the SF2 minimum sizes. A loop that is too short or too close to the start
// is unrolled by whole periods inserted at its end; the wave after the loop
// follows unchanged. A loop too close to the end is followed by more
// periods.
func planSample(frames int, ws *dls.WaveSample) samplePlan {
	p := samplePlan{frames: frames, split: frames, total: frames}

	loop, ok := waveLoop(ws)
	if ok && int(loop.Start) < frames {
		ls := int(loop.Start)
		le := clamp(ls+int(loop.Length), ls, frames)
		if le > ls {
			period := le - ls
			newStart, newEnd := ls, le
			for newEnd-newStart < sf2.MinLoopPoints {
				newEnd += period
			}
			for newStart < sf2.MinPreRoll {
				newStart += period
				newEnd += period
			}

			p.split = le
			p.inserted = newEnd - le
			p.period = period
			p.total = frames + p.inserted
			if tail := frames - le; tail < sf2.MinPostRoll {
				p.total += sf2.MinPostRoll - tail
			}
			p.repeatTo = p.total
			p.loopStart, p.loopEnd = newStart, newEnd
			p.looped = true
		}
	}

	if p.total < sf2.MinSamplePoints {
		p.total = sf2.MinSamplePoints
	}
	if !p.looped {
		p.loopStart, p.loopEnd = 0, p.total-1
	}
	return p
}

// position maps a point of the original wave into the planned sample. A
// loop end at the split point stays before the inserted periods.
func (p samplePlan) position(x int, end bool) int {
	if x < p.split || (end && x == p.split) {
		return x
	}
	return x + p.inserted
}

// checkWave rejects waves the sample pool cannot hold
func checkWave(i int, w *dls.Wave) error {
	name := waveName(i, w)
	if w.Channels != 1 {
		return bankErrorf(UnsupportedFormat, "Unsupported sample %q: %d channels, only mono is supported", name, w.Channels)
	}
	switch w.FormatTag {
	case dls.FormatPCM:
		if w.BitsPerSample != 8 && w.BitsPerSample != 16 {
			return bankErrorf(UnsupportedFormat, "Unsupported sample %q: %d-bit PCM", name, w.BitsPerSample)
		}
	case dls.FormatALaw:
		if w.BitsPerSample != 8 {
			return bankErrorf(UnsupportedFormat, "Unsupported sample %q: %d-bit A-law", name, w.BitsPerSample)
		}
	default:
		return bankErrorf(UnsupportedFormat, "Unsupported sample %q: format tag 0x%04x", name, w.FormatTag)
	}
	return nil
}

func waveName(i int, w *dls.Wave) string {
	if w.Name != "" {
		return w.Name
	}
	return fmt.Sprintf("Sample %d", i)
}

// convertSamples decodes the wave pool into one 16-bit PCM buffer and
// returns a sample header per wave followed by EOS.
func (c *Converter) convertSamples(waves []dls.Wave) ([]byte, []sf2.Sample, []samplePlan, error) {
	if len(waves)+1 > sf2.MaxTableRows {
		return nil, nil, nil, bankErrorf(CapacityExceeded, "Maximum number of samples exceeded: %d waves", len(waves))
	}

	plans := make([]samplePlan, len(waves))
	points := 0
	for i := range waves {
		w := &waves[i]
		if err := checkWave(i, w); err != nil {
			return nil, nil, nil, err
		}
		plans[i] = planSample(w.Frames(), w.WaveSample)
		points += plans[i].total
	}

	data := make([]byte, points*2)
	samples := make([]sf2.Sample, 0, len(waves)+1)
	cursor := 0
	for i := range waves {
		w := &waves[i]
		p := plans[i]
		out := data[cursor*2 : (cursor+p.total)*2]
		decodeWave(out, w, 0, p.split)
		for j := p.split; j < p.split+p.inserted; j++ {
			copy(out[j*2:j*2+2], out[(j-p.period)*2:])
		}
		decodeWave(out[(p.split+p.inserted)*2:], w, p.split, p.frames)
		for j := p.frames + p.inserted; j < p.repeatTo; j++ {
			copy(out[j*2:j*2+2], out[(j-p.period)*2:])
		}

		unity, fine := int32(defaultUnityNote), int32(0)
		if w.WaveSample != nil {
			unity, fine = int32(w.WaveSample.UnityNote), int32(w.WaveSample.FineTune)
		}
		semis, cents := splitTuning(fine)

		start := uint32(cursor)
		samples = append(samples, sf2.Sample{
			Name:            waveName(i, w),
			Start:           start,
			End:             start + uint32(p.total),
			LoopStart:       start + uint32(p.loopStart),
			LoopEnd:         start + uint32(p.loopEnd),
			SampleRate:      w.SamplesPerSec,
			Pitch:           uint8(clamp(int(unity+semis), 0, 127)),
			PitchCorrection: int8(cents),
			SampleType:      sf2.MonoSample,
		})
		cursor += p.total
	}

	samples = append(samples, sf2.Sample{Name: sf2.TerminalSample})
	return data, samples, plans, nil
}

// decodeWave writes points from..to of w to the start of out as
// little-endian 16-bit PCM
func decodeWave(out []byte, w *dls.Wave, from, to int) {
	for i := from; i < to; i++ {
		var v int16
		switch {
		case w.FormatTag == dls.FormatALaw:
			v = aLawToPCM(w.Data[i])
		case w.BitsPerSample == 8:
			v = pcm8ToPCM16(w.Data[i])
		default:
			v = int16(binary.LittleEndian.Uint16(w.Data[i*2:]))
		}
		binary.LittleEndian.PutUint16(out[(i-from)*2:], uint16(v))
	}
}
