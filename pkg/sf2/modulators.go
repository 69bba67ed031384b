package sf2

import "fmt"

// General controller palette indices (§8.2.1)
const (
	CtrlNoController          uint16 = 0
	CtrlNoteOnVelocity        uint16 = 2
	CtrlNoteOnKeyNumber       uint16 = 3
	CtrlPolyPressure          uint16 = 10
	CtrlChannelPressure       uint16 = 13
	CtrlPitchWheel            uint16 = 14
	CtrlPitchWheelSensitivity uint16 = 16
)

// Modulator source bit layout
const (
	SrcIndexMask   uint16 = 0x007f
	SrcMIDICC      uint16 = 1 << 7
	SrcDirection   uint16 = 1 << 8 // max to min
	SrcBipolar     uint16 = 1 << 9
	SrcCurveShift         = 10
)

// Source curve types
const (
	CurveLinear  uint16 = 0
	CurveConcave uint16 = 1
	CurveConvex  uint16 = 2
	CurveSwitch  uint16 = 3
)

// Modulator transforms
const (
	TransformLinear   uint16 = 0
	TransformAbsolute uint16 = 2
)

// CC returns the source operator of MIDI continuous controller n
func CC(n uint8) uint16 {
	return SrcMIDICC | uint16(n)&SrcIndexMask
}

// SourceCurve extracts the curve type of a source operator
func SourceCurve(src uint16) uint16 {
	return src >> SrcCurveShift
}

// DescribeSource renders a modulator source operator for diagnostics
func DescribeSource(src uint16) string {
	var name string
	idx := src & SrcIndexMask
	switch {
	case src&SrcMIDICC != 0:
		name = fmt.Sprintf("CC%d", idx)
	case idx == CtrlNoController:
		name = "none"
	case idx == CtrlNoteOnVelocity:
		name = "velocity"
	case idx == CtrlNoteOnKeyNumber:
		name = "key"
	case idx == CtrlPolyPressure:
		name = "polyPressure"
	case idx == CtrlChannelPressure:
		name = "channelPressure"
	case idx == CtrlPitchWheel:
		name = "pitchWheel"
	case idx == CtrlPitchWheelSensitivity:
		name = "pitchWheelSensitivity"
	default:
		name = fmt.Sprintf("ctrl%d", idx)
	}
	if src&SrcDirection != 0 {
		name += "-"
	}
	if src&SrcBipolar != 0 {
		name += "±"
	}
	return name
}

func (m Modulator) String() string {
	return fmt.Sprintf("%s x %s -> %s (%d, trans %d)",
		DescribeSource(m.SrcOper), DescribeSource(m.AmtSrcOper), m.DstOper, m.Amount, m.TransOper)
}
