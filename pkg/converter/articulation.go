package converter

import (
	"math"

	"github.com/james-see/bank2sf2/pkg/dls"
	"github.com/james-see/bank2sf2/pkg/sf2"
)

// staticRule maps a DLS destination fed by no source to one generator
type staticRule struct {
	oper     sf2.GenOper
	sentinel bool // omit when the amount is the absent-time sentinel
	sustain  bool // amount is a sustain level
}

var staticRules = map[uint16]staticRule{
	dls.DstPan:             {oper: sf2.GenPan},
	dls.DstChorus:          {oper: sf2.GenChorusEffectsSend},
	dls.DstReverb:          {oper: sf2.GenReverbEffectsSend},
	dls.DstLFOFrequency:    {oper: sf2.GenFreqModLFO},
	dls.DstLFOStartDelay:   {oper: sf2.GenDelayModLFO, sentinel: true},
	dls.DstVibFrequency:    {oper: sf2.GenFreqVibLFO},
	dls.DstVibStartDelay:   {oper: sf2.GenDelayVibLFO, sentinel: true},
	dls.DstEG1AttackTime:   {oper: sf2.GenAttackVolEnv, sentinel: true},
	dls.DstEG1DecayTime:    {oper: sf2.GenDecayVolEnv},
	dls.DstEG1SustainLevel: {oper: sf2.GenSustainVolEnv, sustain: true},
	dls.DstEG1ReleaseTime:  {oper: sf2.GenReleaseVolEnv},
	dls.DstEG1DelayTime:    {oper: sf2.GenDelayVolEnv, sentinel: true},
	dls.DstEG1HoldTime:     {oper: sf2.GenHoldVolEnv, sentinel: true},
	dls.DstEG2AttackTime:   {oper: sf2.GenAttackModEnv, sentinel: true},
	dls.DstEG2DecayTime:    {oper: sf2.GenDecayModEnv},
	dls.DstEG2SustainLevel: {oper: sf2.GenSustainModEnv, sustain: true},
	dls.DstEG2ReleaseTime:  {oper: sf2.GenReleaseModEnv},
	dls.DstEG2DelayTime:    {oper: sf2.GenDelayModEnv, sentinel: true},
	dls.DstEG2HoldTime:     {oper: sf2.GenHoldModEnv, sentinel: true},
	dls.DstFilterCutoff:    {oper: sf2.GenInitialFilterFc},
	dls.DstFilterQ:         {oper: sf2.GenInitialFilterQ},
}

type routing struct {
	source      uint16
	destination uint16
}

// engineRoutes are the LFO, vibrato and EG2 paths SF2 has a dedicated
// generator for
var engineRoutes = map[routing]sf2.GenOper{
	{dls.SrcLFO, dls.DstPitch}:        sf2.GenModLfoToPitch,
	{dls.SrcLFO, dls.DstGain}:         sf2.GenModLfoToVolume,
	{dls.SrcLFO, dls.DstFilterCutoff}: sf2.GenModLfoToFilterFc,
	{dls.SrcVibrato, dls.DstPitch}:    sf2.GenVibLfoToPitch,
	{dls.SrcEG2, dls.DstPitch}:        sf2.GenModEnvToPitch,
	{dls.SrcEG2, dls.DstFilterCutoff}: sf2.GenModEnvToFilterFc,
}

// keyTrack pairs a key-number scaled envelope time with the time it
// scales
type keyTrack struct {
	track sf2.GenOper
	base  sf2.GenOper
}

var keyTracks = map[uint16]keyTrack{
	dls.DstEG1HoldTime:  {sf2.GenKeynumToVolEnvHold, sf2.GenHoldVolEnv},
	dls.DstEG1DecayTime: {sf2.GenKeynumToVolEnvDecay, sf2.GenDecayVolEnv},
	dls.DstEG2HoldTime:  {sf2.GenKeynumToModEnvHold, sf2.GenHoldModEnv},
	dls.DstEG2DecayTime: {sf2.GenKeynumToModEnvDecay, sf2.GenDecayModEnv},
}

// maxKeyTrack bounds the keynumTo* amount that still gets a time
// correction
const maxKeyTrack = 120

// zoneGenerators accumulates the generators of one zone. Adding an
// operator that is already present sums the amounts in place.
type zoneGenerators struct {
	gens []sf2.Generator
	sums []int32
}

func (z *zoneGenerators) add(oper sf2.GenOper, amount int32) {
	if i := z.index(oper); i >= 0 {
		z.sums[i] += amount
		z.gens[i].Amount = clamp16(z.sums[i])
		return
	}
	z.gens = append(z.gens, sf2.Generator{Oper: oper, Amount: clamp16(amount)})
	z.sums = append(z.sums, amount)
}

// set appends a structural generator whose amount is never summed
func (z *zoneGenerators) set(oper sf2.GenOper, amount int16) {
	z.gens = append(z.gens, sf2.Generator{Oper: oper, Amount: amount})
	z.sums = append(z.sums, int32(amount))
}

// limit clamps the summed amount of oper, if present, to lo..hi
func (z *zoneGenerators) limit(oper sf2.GenOper, lo, hi int32) {
	if i := z.index(oper); i >= 0 {
		z.sums[i] = int32(clamp(int(z.sums[i]), int(lo), int(hi)))
		z.gens[i].Amount = int16(z.sums[i])
	}
}

func (z *zoneGenerators) index(oper sf2.GenOper) int {
	for i, g := range z.gens {
		if g.Oper == oper {
			return i
		}
	}
	return -1
}

func (z *zoneGenerators) has(oper sf2.GenOper) bool {
	return z.index(oper) >= 0
}

// addTuning splits cents into coarseTune and fineTune and adds the
// non-zero parts
func (z *zoneGenerators) addTuning(cents int32, always bool) {
	coarse, fine := splitTuning(cents)
	if coarse != 0 || always {
		z.add(sf2.GenCoarseTune, coarse)
	}
	if fine != 0 || always {
		z.add(sf2.GenFineTune, fine)
	}
}

// dropDefaults removes the generators left at their SF2 default
func (z *zoneGenerators) dropDefaults() {
	gens, sums := z.gens[:0], z.sums[:0]
	for i, g := range z.gens {
		if def, ok := sf2.DefaultAmount(g.Oper); ok && def == g.Amount {
			continue
		}
		gens = append(gens, g)
		sums = append(sums, z.sums[i])
	}
	z.gens, z.sums = gens, sums
}

// lowerArticulators converts a set of DLS articulators into the
// generators and modulators of one zone
func (c *Converter) lowerArticulators(arts []dls.Articulator) ([]sf2.Generator, []sf2.Modulator) {
	var z zoneGenerators
	var mods []sf2.Modulator
	var tracked []dls.ConnectionBlock

	for _, art := range arts {
		for _, b := range art.ConnectionBlocks {
			if b.Control == dls.SrcNone && b.Source == dls.SrcKeyNumber {
				if _, ok := keyTracks[b.Destination]; ok {
					tracked = append(tracked, b)
					continue
				}
			}
			if c.lowerStatic(&z, b) {
				continue
			}
			if m, ok := c.buildModulator(b); ok {
				mods = appendModulator(mods, m)
				continue
			}
			c.drop(b)
		}
	}

	for _, b := range tracked {
		t := keyTracks[b.Destination]
		amount := b.Amount()
		track := -amount / 128
		z.add(t.track, track)
		if track > maxKeyTrack {
			continue
		}
		correction := int32(math.Round(60.0 / 128 * float64(amount)))
		if !z.has(t.base) {
			def, _ := sf2.DefaultAmount(t.base)
			z.add(t.base, int32(def))
		}
		z.add(t.base, correction)
	}

	z.dropDefaults()
	return z.gens, mods
}

// lowerStatic emits the generator for a block that needs no modulator.
// It reports false when the block has to become a modulator instead.
func (c *Converter) lowerStatic(z *zoneGenerators, b dls.ConnectionBlock) bool {
	if b.Control != dls.SrcNone {
		return false
	}
	amount := b.Amount()

	switch b.Source {
	case dls.SrcNone:
		if b.Transform != dls.TrnNone {
			return false
		}
		switch b.Destination {
		case dls.DstAttenuation:
			z.add(sf2.GenInitialAttenuation, attenuation(b.Scale, c.opts.AttenuationFactor))
			return true
		case dls.DstPitch:
			z.addTuning(amount, false)
			return true
		}
		rule, ok := staticRules[b.Destination]
		if !ok {
			return false
		}
		if rule.sentinel && amount == timeAbsent {
			return true
		}
		if rule.sustain {
			amount = sustainLevel(amount)
		}
		z.add(rule.oper, amount)
		return true

	case dls.SrcLFO, dls.SrcVibrato, dls.SrcEG2:
		oper, ok := engineRoutes[routing{b.Source, b.Destination}]
		if !ok {
			return false
		}
		z.add(oper, amount)
		return true

	case dls.SrcKeyNumber:
		if b.Destination != dls.DstPitch {
			return false
		}
		z.add(sf2.GenScaleTuning, amount/128)
		return true
	}
	return false
}

// appendModulator adds m unless an identical routing is already present,
// in which case the amounts are summed
func appendModulator(mods []sf2.Modulator, m sf2.Modulator) []sf2.Modulator {
	for i := range mods {
		if mods[i].SrcOper == m.SrcOper && mods[i].DstOper == m.DstOper &&
			mods[i].AmtSrcOper == m.AmtSrcOper && mods[i].TransOper == m.TransOper {
			mods[i].Amount = clamp16(int32(mods[i].Amount) + int32(m.Amount))
			return mods
		}
	}
	return append(mods, m)
}

func (c *Converter) drop(b dls.ConnectionBlock) {
	c.dropped++
	c.logf("dropped connection block src=0x%04x ctrl=0x%04x dst=0x%04x trn=0x%04x scale=%d",
		b.Source, b.Control, b.Destination, b.Transform, b.Scale)
}
