package dls

// Connection sources
const (
	SrcNone            uint16 = 0x0000
	SrcLFO             uint16 = 0x0001
	SrcKeyOnVelocity   uint16 = 0x0002
	SrcKeyNumber       uint16 = 0x0003
	SrcEG1             uint16 = 0x0004
	SrcEG2             uint16 = 0x0005
	SrcPitchWheel      uint16 = 0x0006
	SrcPolyPressure    uint16 = 0x0007
	SrcChannelPressure uint16 = 0x0008
	SrcVibrato         uint16 = 0x0009
	SrcMonoPressure    uint16 = 0x000a
	SrcCC1             uint16 = 0x0081
	SrcCC7             uint16 = 0x0087
	SrcCC10            uint16 = 0x008a
	SrcCC11            uint16 = 0x008b
	SrcCC91            uint16 = 0x00db
	SrcCC93            uint16 = 0x00dd
	SrcRPN0            uint16 = 0x0100
	SrcRPN1            uint16 = 0x0101
	SrcRPN2            uint16 = 0x0102
)

// Connection destinations
const (
	DstNone             uint16 = 0x0000
	DstAttenuation      uint16 = 0x0001
	DstGain             uint16 = DstAttenuation
	DstReserved         uint16 = 0x0002
	DstPitch            uint16 = 0x0003
	DstPan              uint16 = 0x0004
	DstKeyNumber        uint16 = 0x0005
	DstLeft             uint16 = 0x0010
	DstRight            uint16 = 0x0011
	DstCenter           uint16 = 0x0012
	DstLFEChannel       uint16 = 0x0013
	DstLeftRear         uint16 = 0x0014
	DstRightRear        uint16 = 0x0015
	DstChorus           uint16 = 0x0080
	DstReverb           uint16 = 0x0081
	DstLFOFrequency     uint16 = 0x0104
	DstLFOStartDelay    uint16 = 0x0105
	DstVibFrequency     uint16 = 0x0114
	DstVibStartDelay    uint16 = 0x0115
	DstEG1AttackTime    uint16 = 0x0206
	DstEG1DecayTime     uint16 = 0x0207
	DstEG1Reserved      uint16 = 0x0208
	DstEG1ReleaseTime   uint16 = 0x0209
	DstEG1SustainLevel  uint16 = 0x020a
	DstEG1DelayTime     uint16 = 0x020b
	DstEG1HoldTime      uint16 = 0x020c
	DstEG1ShutdownTime  uint16 = 0x020d
	DstEG2AttackTime    uint16 = 0x030a
	DstEG2DecayTime     uint16 = 0x030b
	DstEG2Reserved      uint16 = 0x030c
	DstEG2ReleaseTime   uint16 = 0x030d
	DstEG2SustainLevel  uint16 = 0x030e
	DstEG2DelayTime     uint16 = 0x030f
	DstEG2HoldTime      uint16 = 0x0310
	DstFilterCutoff     uint16 = 0x0500
	DstFilterQ          uint16 = 0x0501
)

// Transform curves
const (
	TrnNone    uint16 = 0x0000
	TrnConcave uint16 = 0x0001
	TrnConvex  uint16 = 0x0002
	TrnSwitch  uint16 = 0x0003
)

// Transform field layout (DLS2 2.10): output curve in bits 0-3, control
// curve in bits 4-7, control bipolar bit 8, control invert bit 9, source
// curve in bits 10-13, source bipolar bit 14, source invert bit 15.
const (
	TrnOutputMask     uint16 = 0x000f
	TrnControlShift          = 4
	TrnControlBipolar uint16 = 1 << 8
	TrnControlInvert  uint16 = 1 << 9
	TrnSourceShift           = 10
	TrnSourceBipolar  uint16 = 1 << 14
	TrnSourceInvert   uint16 = 1 << 15
)

// SourceCurve returns the source transform curve of a transform field
func SourceCurve(transform uint16) uint16 {
	return (transform >> TrnSourceShift) & 0x0f
}

// ControlCurve returns the control transform curve of a transform field
func ControlCurve(transform uint16) uint16 {
	return (transform >> TrnControlShift) & 0x0f
}

// Locale bits of insh
const (
	localeDrums   uint32 = 0x80000000
	localeMSBMask uint32 = 0x00007f00
	localeLSBMask uint32 = 0x0000007f
)

// F_RGN_OPTION_SELFNONEXCLUSIVE
const RegionSelfNonExclusive uint16 = 0x0001
