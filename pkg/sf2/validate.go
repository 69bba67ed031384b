package sf2

import "fmt"

// Minimum sample geometry (§7.10)
const (
	MinSamplePoints = 48
	MinLoopPoints   = 32
	MinPreRoll      = 8
	MinPostRoll     = 8
)

// Validate checks the structural invariants of a bank and returns one
// warning per violation. A bank produced by the converter yields none.
func Validate(b *Bank) []string {
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	tables := []struct {
		name string
		n    int
	}{
		{"presets", len(b.Presets)}, {"preset zones", len(b.PresetZones)},
		{"preset generators", len(b.PresetGenerators)}, {"preset modulators", len(b.PresetModulators)},
		{"instruments", len(b.Instruments)}, {"instrument zones", len(b.InstrumentZones)},
		{"instrument generators", len(b.InstrumentGenerators)}, {"instrument modulators", len(b.InstrumentModulators)},
		{"samples", len(b.Samples)},
	}
	for _, t := range tables {
		if t.n == 0 {
			warn("%s table has no terminator row", t.name)
		}
		if t.n > MaxTableRows {
			warn("%s table holds %d rows, limit is %d", t.name, t.n, MaxTableRows)
		}
	}

	if n := len(b.Presets); n > 0 && b.Presets[n-1].Name != TerminalPreset {
		warn("last preset is %q, want %q", b.Presets[n-1].Name, TerminalPreset)
	}
	if n := len(b.Instruments); n > 0 && b.Instruments[n-1].Name != TerminalInstrument {
		warn("last instrument is %q, want %q", b.Instruments[n-1].Name, TerminalInstrument)
	}
	if n := len(b.Samples); n > 0 && b.Samples[n-1].Name != TerminalSample {
		warn("last sample is %q, want %q", b.Samples[n-1].Name, TerminalSample)
	}

	for p := 0; p+1 < len(b.Presets); p++ {
		name := b.Presets[p].Name
		if b.Presets[p].ZoneIndex > b.Presets[p+1].ZoneIndex {
			warn("preset %q: zone index %d goes backwards", name, b.Presets[p].ZoneIndex)
			continue
		}
		lo, hi := b.PresetZoneRange(p)
		checkZones(fmt.Sprintf("preset %q", name), lo, hi, len(b.PresetZones), GenInstrument,
			len(b.Instruments)-1, b.PresetZoneGenerators, warn)
	}

	for i := 0; i+1 < len(b.Instruments); i++ {
		name := b.Instruments[i].Name
		if b.Instruments[i].ZoneIndex > b.Instruments[i+1].ZoneIndex {
			warn("instrument %q: zone index %d goes backwards", name, b.Instruments[i].ZoneIndex)
			continue
		}
		lo, hi := b.InstrumentZoneRange(i)
		checkZones(fmt.Sprintf("instrument %q", name), lo, hi, len(b.InstrumentZones), GenSampleID,
			len(b.Samples)-1, b.InstrumentZoneGenerators, warn)
	}

	validateSamples(b, warn)
	return warnings
}

// checkZones verifies the zones [lo, hi) of one preset or instrument.
// terminal is the generator that closes a local zone and refs the number
// of rows it may point at.
func checkZones(owner string, lo, hi, zoneRows int, terminal GenOper, refs int,
	generators func(int) []Generator, warn func(string, ...any)) {
	if hi >= zoneRows {
		warn("%s: zone range [%d,%d) has no past-the-end zone", owner, lo, hi)
		return
	}

	locals := 0
	for z := lo; z < hi; z++ {
		gens := generators(z)
		global := len(gens) == 0 || gens[len(gens)-1].Oper != terminal

		for i, g := range gens {
			switch g.Oper {
			case GenKeyRange:
				if i != 0 {
					warn("%s zone %d: keyRange at position %d, want first", owner, z, i)
				}
			case GenVelRange:
				if i > 1 || (i == 1 && gens[0].Oper != GenKeyRange) {
					warn("%s zone %d: velRange at position %d follows non-keyRange generators", owner, z, i)
				}
			case terminal:
				if i != len(gens)-1 {
					warn("%s zone %d: %s is not the last generator", owner, z, terminal)
				}
				if int(uint16(g.Amount)) >= refs {
					warn("%s zone %d: %s %d out of range", owner, z, terminal, uint16(g.Amount))
				}
			}
		}

		if global {
			if z != lo {
				warn("%s zone %d: global zone is not the first zone", owner, z)
			}
			continue
		}
		locals++
	}

	if locals == 0 && terminal == GenInstrument {
		warn("%s has no local zones", owner)
	}
}

func validateSamples(b *Bank, warn func(string, ...any)) {
	points := uint32(len(b.SampleData) / 2)
	looped := loopedSamples(b)

	for i := 0; i+1 < len(b.Samples); i++ {
		s := b.Samples[i]
		if s.SampleType&ROMSample != 0 {
			continue
		}
		if s.Start >= s.End || s.End > points {
			warn("sample %q: range [%d,%d) outside %d sample points", s.Name, s.Start, s.End, points)
			continue
		}
		if s.End-s.Start < MinSamplePoints {
			warn("sample %q: %d points, want at least %d", s.Name, s.End-s.Start, MinSamplePoints)
		}
		if s.LoopStart < s.Start || s.LoopEnd > s.End || s.LoopStart > s.LoopEnd {
			warn("sample %q: loop [%d,%d) outside sample [%d,%d)", s.Name, s.LoopStart, s.LoopEnd, s.Start, s.End)
			continue
		}
		if i > 0 {
			prev := b.Samples[i-1]
			if s.Start <= prev.Start || s.Start < prev.End {
				warn("sample %q: starts at %d, inside or before sample %q", s.Name, s.Start, prev.Name)
			}
		}
		if !looped[i] {
			continue
		}
		if s.LoopEnd-s.LoopStart < MinLoopPoints {
			warn("sample %q: loop of %d points, want at least %d", s.Name, s.LoopEnd-s.LoopStart, MinLoopPoints)
		}
		if s.LoopStart-s.Start < MinPreRoll {
			warn("sample %q: %d points before the loop, want at least %d", s.Name, s.LoopStart-s.Start, MinPreRoll)
		}
		if s.End-s.LoopEnd < MinPostRoll {
			warn("sample %q: %d points after the loop, want at least %d", s.Name, s.End-s.LoopEnd, MinPostRoll)
		}
	}
}

// loopedSamples returns the samples played by at least one zone whose
// effective sampleModes loops.
func loopedSamples(b *Bank) map[int]bool {
	looped := make(map[int]bool)
	for i := 0; i+1 < len(b.Instruments); i++ {
		lo, hi := b.InstrumentZoneRange(i)
		globalMode := SampleModeNoLoop
		for z := lo; z < hi; z++ {
			gens := b.InstrumentZoneGenerators(z)
			mode := globalMode
			sample := -1
			for _, g := range gens {
				switch g.Oper {
				case GenSampleModes:
					mode = g.Amount
				case GenSampleID:
					sample = int(uint16(g.Amount))
				}
			}
			if sample < 0 {
				if z == lo {
					globalMode = mode
				}
				continue
			}
			if mode&1 == 1 {
				looped[sample] = true
			}
		}
	}
	return looped
}
