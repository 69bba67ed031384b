package converter

import (
	"fmt"

	"github.com/james-see/bank2sf2/pkg/dls"
	"github.com/james-see/bank2sf2/pkg/sf2"
)

const (
	percussionBank = 128
	loopCoarseSize = 32768
)

// hydra appends rows to the nine tables of a bank. Every append first
// checks that the table keeps room for its terminator row.
type hydra struct {
	bank *sf2.Bank
}

func full(n, adding int) bool {
	return n+adding >= sf2.MaxTableRows
}

func (h *hydra) addPreset(name string, program, bank uint16) error {
	if full(len(h.bank.Presets), 1) {
		return bankErrorf(CapacityExceeded, "Maximum number of presets exceeded when creating preset %q", name)
	}
	h.bank.Presets = append(h.bank.Presets, sf2.Preset{
		Name:      name,
		Program:   program,
		Bank:      bank,
		ZoneIndex: uint16(len(h.bank.PresetZones)),
	})
	return nil
}

func (h *hydra) addPresetZone(preset string, gens []sf2.Generator, mods []sf2.Modulator) error {
	b := h.bank
	switch {
	case full(len(b.PresetZones), 1):
		return bankErrorf(CapacityExceeded, "Maximum number of preset zones exceeded when creating preset %q", preset)
	case full(len(b.PresetGenerators), len(gens)):
		return bankErrorf(CapacityExceeded, "Maximum number of preset generators exceeded when creating preset %q", preset)
	case full(len(b.PresetModulators), len(mods)):
		return bankErrorf(CapacityExceeded, "Maximum number of preset modulators exceeded when creating preset %q", preset)
	}
	b.PresetZones = append(b.PresetZones, sf2.Zone{
		GeneratorIndex: uint16(len(b.PresetGenerators)),
		ModulatorIndex: uint16(len(b.PresetModulators)),
	})
	b.PresetGenerators = append(b.PresetGenerators, gens...)
	b.PresetModulators = append(b.PresetModulators, mods...)
	return nil
}

func (h *hydra) addInstrument(name string) error {
	if full(len(h.bank.Instruments), 1) {
		return bankErrorf(CapacityExceeded, "Maximum number of instruments exceeded when creating instrument %q", name)
	}
	h.bank.Instruments = append(h.bank.Instruments, sf2.Instrument{
		Name:      name,
		ZoneIndex: uint16(len(h.bank.InstrumentZones)),
	})
	return nil
}

func (h *hydra) addInstrumentZone(instrument string, gens []sf2.Generator, mods []sf2.Modulator) error {
	b := h.bank
	switch {
	case full(len(b.InstrumentZones), 1):
		return bankErrorf(CapacityExceeded, "Maximum number of instrument zones exceeded when creating instrument %q", instrument)
	case full(len(b.InstrumentGenerators), len(gens)):
		return bankErrorf(CapacityExceeded, "Maximum number of instrument generators exceeded when creating instrument %q", instrument)
	case full(len(b.InstrumentModulators), len(mods)):
		return bankErrorf(CapacityExceeded, "Maximum number of instrument modulators exceeded when creating instrument %q", instrument)
	}
	b.InstrumentZones = append(b.InstrumentZones, sf2.Zone{
		GeneratorIndex: uint16(len(b.InstrumentGenerators)),
		ModulatorIndex: uint16(len(b.InstrumentModulators)),
	})
	b.InstrumentGenerators = append(b.InstrumentGenerators, gens...)
	b.InstrumentModulators = append(b.InstrumentModulators, mods...)
	return nil
}

// terminate appends the EOI and EOP rows with their past-the-end zones
// and null generator and modulator rows
func (h *hydra) terminate() {
	b := h.bank
	b.Instruments = append(b.Instruments, sf2.Instrument{
		Name:      sf2.TerminalInstrument,
		ZoneIndex: uint16(len(b.InstrumentZones)),
	})
	b.InstrumentZones = append(b.InstrumentZones, sf2.Zone{
		GeneratorIndex: uint16(len(b.InstrumentGenerators)),
		ModulatorIndex: uint16(len(b.InstrumentModulators)),
	})
	b.InstrumentModulators = append(b.InstrumentModulators, sf2.Modulator{})
	b.InstrumentGenerators = append(b.InstrumentGenerators, sf2.Generator{})

	b.Presets = append(b.Presets, sf2.Preset{
		Name:      sf2.TerminalPreset,
		ZoneIndex: uint16(len(b.PresetZones)),
	})
	b.PresetZones = append(b.PresetZones, sf2.Zone{
		GeneratorIndex: uint16(len(b.PresetGenerators)),
		ModulatorIndex: uint16(len(b.PresetModulators)),
	})
	b.PresetModulators = append(b.PresetModulators, sf2.Modulator{})
	b.PresetGenerators = append(b.PresetGenerators, sf2.Generator{})
}

// bankNumber picks the SF2 bank of a DLS instrument
func bankNumber(ins *dls.Instrument) uint16 {
	switch {
	case ins.IsPercussion:
		return percussionBank
	case ins.BankMSB != 0:
		return uint16(ins.BankMSB)
	default:
		return uint16(ins.BankLSB)
	}
}

func instrumentName(i int, ins *dls.Instrument) string {
	if ins.Name != "" {
		return ins.Name
	}
	return fmt.Sprintf("Instrument %d", i)
}

// addDLSInstrument emits the preset, instrument and zones of one DLS
// instrument
func (c *Converter) addDLSInstrument(h *hydra, i int, ins *dls.Instrument, waves []dls.Wave, plans []samplePlan) error {
	name := instrumentName(i, ins)

	if err := h.addPreset(name, uint16(ins.Program), bankNumber(ins)); err != nil {
		return err
	}
	if err := h.addPresetZone(name, nil, nil); err != nil {
		return err
	}
	link := []sf2.Generator{{Oper: sf2.GenInstrument, Amount: int16(len(h.bank.Instruments))}}
	if err := h.addPresetZone(name, link, nil); err != nil {
		return err
	}

	if err := h.addInstrument(name); err != nil {
		return err
	}
	gens, mods := c.lowerArticulators(ins.Articulators)
	if c.opts.EffectModulators {
		mods = withEffectModulators(mods)
	}
	if err := h.addInstrumentZone(name, gens, mods); err != nil {
		return err
	}

	for r := range ins.Regions {
		gens, mods, err := c.regionZone(name, &ins.Regions[r], waves, plans)
		if err != nil {
			return err
		}
		if err := h.addInstrumentZone(name, gens, mods); err != nil {
			return err
		}
	}
	return nil
}

// regionZone builds the generators and modulators of a region's local
// zone in the order SF2 players expect
func (c *Converter) regionZone(instrument string, rgn *dls.Region, waves []dls.Wave, plans []samplePlan) ([]sf2.Generator, []sf2.Modulator, error) {
	cue := int(rgn.WaveLink.CueIndex)
	if cue >= len(waves) {
		return nil, nil, &BankError{
			Kind:    MalformedInput,
			Context: fmt.Sprintf("Region of instrument %q links to wave %d of %d", instrument, cue, len(waves)),
		}
	}
	wave := &waves[cue]
	plan := plans[cue]

	var z zoneGenerators
	z.set(sf2.GenKeyRange, sf2.RangeAmount(key(rgn.LowKey), key(rgn.HighKey)))
	lowVel, highVel := key(rgn.LowVelocity), key(rgn.HighVelocity)
	if highVel == 0 {
		highVel = 127
	}
	z.set(sf2.GenVelRange, sf2.RangeAmount(lowVel, highVel))
	if rgn.KeyGroup != 0 {
		z.set(sf2.GenExclusiveClass, int16(rgn.KeyGroup))
	}

	gens, mods := c.lowerArticulators(rgn.Articulators)
	for _, g := range gens {
		z.add(g.Oper, int32(g.Amount))
	}

	ws := rgn.WaveSample
	if ws == nil {
		ws = wave.WaveSample
	}
	var gain int32
	if ws != nil {
		gain = ws.Gain
	}
	z.add(sf2.GenInitialAttenuation, attenuation(gain, c.opts.AttenuationFactor))
	z.limit(sf2.GenInitialAttenuation, 0, MaxAttenuation)

	if loop, ok := waveLoop(ws); ok {
		mode := sf2.SampleModeLoop
		if loop.Type == dls.LoopRelease {
			mode = sf2.SampleModeLoopThenRelease
		}
		z.add(sf2.GenSampleModes, int32(mode))

		if rgn.WaveSample != nil {
			base, hasBase := waveLoop(wave.WaveSample)
			if !hasBase || base.Start != loop.Start || base.Length != loop.Length {
				start := plan.position(int(loop.Start), false)
				end := plan.position(int(loop.Start+loop.Length), true)
				addLoopOffset(&z, int32(start-plan.loopStart), sf2.GenStartloopAddrsOffset, sf2.GenStartloopAddrsCoarseOffset)
				addLoopOffset(&z, int32(end-plan.loopEnd), sf2.GenEndloopAddrsOffset, sf2.GenEndloopAddrsCoarseOffset)
			}
		}
	}

	waveUnity, waveFine := int32(defaultUnityNote), int32(0)
	if wave.WaveSample != nil {
		waveUnity, waveFine = int32(wave.WaveSample.UnityNote), int32(wave.WaveSample.FineTune)
	}
	if rgn.WaveSample != nil {
		z.addTuning(int32(rgn.WaveSample.FineTune)-waveFine, false)
		if unity := int32(rgn.WaveSample.UnityNote); unity != waveUnity {
			z.add(sf2.GenOverridingRootKey, unity)
		}
	}

	z.set(sf2.GenSampleID, int16(cue))
	return z.gens, mods, nil
}

// addLoopOffset splits a loop point delta into fine and coarse generators
func addLoopOffset(z *zoneGenerators, delta int32, fine, coarse sf2.GenOper) {
	c := delta / loopCoarseSize
	f := delta - c*loopCoarseSize
	if f != 0 {
		z.add(fine, f)
	}
	if c != 0 {
		z.add(coarse, c)
	}
}

func key(v uint16) uint8 {
	return uint8(clamp(int(v), 0, 127))
}
