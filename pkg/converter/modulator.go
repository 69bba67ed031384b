package converter

import (
	"github.com/james-see/bank2sf2/pkg/dls"
	"github.com/james-see/bank2sf2/pkg/sf2"
)

// modSources maps the DLS inputs a MIDI synth can supply onto the SF2
// controller palette
var modSources = map[uint16]uint16{
	dls.SrcNone:            sf2.CtrlNoController,
	dls.SrcKeyOnVelocity:   sf2.CtrlNoteOnVelocity,
	dls.SrcKeyNumber:       sf2.CtrlNoteOnKeyNumber,
	dls.SrcPolyPressure:    sf2.CtrlPolyPressure,
	dls.SrcChannelPressure: sf2.CtrlChannelPressure,
	dls.SrcPitchWheel:      sf2.CtrlPitchWheel,
	dls.SrcRPN0:            sf2.CtrlPitchWheelSensitivity,
	dls.SrcCC1:             sf2.CC(1),
	dls.SrcCC7:             sf2.CC(7),
	dls.SrcCC10:            sf2.CC(10),
	dls.SrcCC11:            sf2.CC(11),
	dls.SrcCC91:            sf2.CC(91),
	dls.SrcCC93:            sf2.CC(93),
}

// modDestinations maps DLS destinations onto the generator a modulator
// drives. Pitch goes to fineTune since a modulator cannot split it.
var modDestinations = map[uint16]sf2.GenOper{
	dls.DstAttenuation: sf2.GenInitialAttenuation,
	dls.DstPitch:       sf2.GenFineTune,
}

func init() {
	for dst, rule := range staticRules {
		modDestinations[dst] = rule.oper
	}
}

// modDestination resolves the generator of a modulated block and whether
// the DLS source is folded into it
func modDestination(b dls.ConnectionBlock) (oper sf2.GenOper, folded bool, ok bool) {
	if oper, ok := engineRoutes[routing{b.Source, b.Destination}]; ok {
		return oper, true, true
	}
	oper, ok = modDestinations[b.Destination]
	return oper, false, ok
}

// sourceOperator builds an SF2 source operator from a palette index and
// the curve, polarity and direction taken from a DLS transform
func sourceOperator(index, curve uint16, bipolar, invert bool) uint16 {
	op := index | curve<<sf2.SrcCurveShift
	if bipolar {
		op |= sf2.SrcBipolar
	}
	if invert {
		op |= sf2.SrcDirection
	}
	return op
}

// buildModulator converts one connection block into a modulator. It
// reports false when either input or the destination has no SF2 form.
func (c *Converter) buildModulator(b dls.ConnectionBlock) (sf2.Modulator, bool) {
	dst, folded, ok := modDestination(b)
	if !ok {
		return sf2.Modulator{}, false
	}

	var src uint16
	if !folded {
		index, ok := modSources[b.Source]
		if !ok {
			return sf2.Modulator{}, false
		}
		src = sourceOperator(index, dls.SourceCurve(b.Transform),
			b.Transform&dls.TrnSourceBipolar != 0, b.Transform&dls.TrnSourceInvert != 0)
	}

	index, ok := modSources[b.Control]
	if !ok {
		return sf2.Modulator{}, false
	}
	amtSrc := sourceOperator(index, dls.ControlCurve(b.Transform),
		b.Transform&dls.TrnControlBipolar != 0, b.Transform&dls.TrnControlInvert != 0)

	amount := b.Amount()
	if dst == sf2.GenInitialAttenuation {
		if amount < 0 {
			src |= sf2.SrcDirection
			amount = -amount
		}
		amount = int32(clamp(int(amount), 0, MaxAttenuation))
	}

	m := sf2.Modulator{
		SrcOper:    src,
		DstOper:    dst,
		Amount:     clamp16(amount),
		AmtSrcOper: amtSrc,
		TransOper:  sf2.TransformLinear,
	}
	if folded {
		m.SrcOper, m.AmtSrcOper = m.AmtSrcOper, m.SrcOper
	}
	return m, true
}

// effectModulators are added to instrument global zones that lack a
// reverb or chorus send modulator
var effectModulators = []sf2.Modulator{
	{SrcOper: sf2.CC(91), DstOper: sf2.GenReverbEffectsSend, Amount: 1000},
	{SrcOper: sf2.CC(93), DstOper: sf2.GenChorusEffectsSend, Amount: 1000},
}

func withEffectModulators(mods []sf2.Modulator) []sf2.Modulator {
	for _, em := range effectModulators {
		found := false
		for _, m := range mods {
			if m.DstOper == em.DstOper && m.SrcOper&^sf2.SrcDirection == em.SrcOper {
				found = true
				break
			}
		}
		if !found {
			mods = append(mods, em)
		}
	}
	return mods
}
