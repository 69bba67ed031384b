package sf2

import "fmt"

// GenOper is an SF2 generator operator number
type GenOper uint16

// Generator operators (SoundFont 2.04 §8.1.2)
const (
	GenStartAddrsOffset           GenOper = 0
	GenEndAddrsOffset             GenOper = 1
	GenStartloopAddrsOffset       GenOper = 2
	GenEndloopAddrsOffset         GenOper = 3
	GenStartAddrsCoarseOffset     GenOper = 4
	GenModLfoToPitch              GenOper = 5
	GenVibLfoToPitch              GenOper = 6
	GenModEnvToPitch              GenOper = 7
	GenInitialFilterFc            GenOper = 8
	GenInitialFilterQ             GenOper = 9
	GenModLfoToFilterFc           GenOper = 10
	GenModEnvToFilterFc           GenOper = 11
	GenEndAddrsCoarseOffset       GenOper = 12
	GenModLfoToVolume             GenOper = 13
	GenUnused1                    GenOper = 14
	GenChorusEffectsSend          GenOper = 15
	GenReverbEffectsSend          GenOper = 16
	GenPan                        GenOper = 17
	GenUnused2                    GenOper = 18
	GenUnused3                    GenOper = 19
	GenUnused4                    GenOper = 20
	GenDelayModLFO                GenOper = 21
	GenFreqModLFO                 GenOper = 22
	GenDelayVibLFO                GenOper = 23
	GenFreqVibLFO                 GenOper = 24
	GenDelayModEnv                GenOper = 25
	GenAttackModEnv               GenOper = 26
	GenHoldModEnv                 GenOper = 27
	GenDecayModEnv                GenOper = 28
	GenSustainModEnv              GenOper = 29
	GenReleaseModEnv              GenOper = 30
	GenKeynumToModEnvHold         GenOper = 31
	GenKeynumToModEnvDecay        GenOper = 32
	GenDelayVolEnv                GenOper = 33
	GenAttackVolEnv               GenOper = 34
	GenHoldVolEnv                 GenOper = 35
	GenDecayVolEnv                GenOper = 36
	GenSustainVolEnv              GenOper = 37
	GenReleaseVolEnv              GenOper = 38
	GenKeynumToVolEnvHold         GenOper = 39
	GenKeynumToVolEnvDecay        GenOper = 40
	GenInstrument                 GenOper = 41
	GenReserved1                  GenOper = 42
	GenKeyRange                   GenOper = 43
	GenVelRange                   GenOper = 44
	GenStartloopAddrsCoarseOffset GenOper = 45
	GenKeynum                     GenOper = 46
	GenVelocity                   GenOper = 47
	GenInitialAttenuation         GenOper = 48
	GenReserved2                  GenOper = 49
	GenEndloopAddrsCoarseOffset   GenOper = 50
	GenCoarseTune                 GenOper = 51
	GenFineTune                   GenOper = 52
	GenSampleID                   GenOper = 53
	GenSampleModes                GenOper = 54
	GenReserved3                  GenOper = 55
	GenScaleTuning                GenOper = 56
	GenExclusiveClass             GenOper = 57
	GenOverridingRootKey          GenOper = 58
	GenUnused5                    GenOper = 59
	GenEndOper                    GenOper = 60
)

var genNames = [...]string{
	"startAddrsOffset", "endAddrsOffset", "startloopAddrsOffset", "endloopAddrsOffset",
	"startAddrsCoarseOffset", "modLfoToPitch", "vibLfoToPitch", "modEnvToPitch",
	"initialFilterFc", "initialFilterQ", "modLfoToFilterFc", "modEnvToFilterFc",
	"endAddrsCoarseOffset", "modLfoToVolume", "unused1", "chorusEffectsSend",
	"reverbEffectsSend", "pan", "unused2", "unused3", "unused4", "delayModLFO",
	"freqModLFO", "delayVibLFO", "freqVibLFO", "delayModEnv", "attackModEnv",
	"holdModEnv", "decayModEnv", "sustainModEnv", "releaseModEnv",
	"keynumToModEnvHold", "keynumToModEnvDecay", "delayVolEnv", "attackVolEnv",
	"holdVolEnv", "decayVolEnv", "sustainVolEnv", "releaseVolEnv",
	"keynumToVolEnvHold", "keynumToVolEnvDecay", "instrument", "reserved1",
	"keyRange", "velRange", "startloopAddrsCoarseOffset", "keynum", "velocity",
	"initialAttenuation", "reserved2", "endloopAddrsCoarseOffset", "coarseTune",
	"fineTune", "sampleID", "sampleModes", "reserved3", "scaleTuning",
	"exclusiveClass", "overridingRootKey", "unused5", "endOper",
}

func (g GenOper) String() string {
	if int(g) < len(genNames) {
		return genNames[g]
	}
	return fmt.Sprintf("gen%d", uint16(g))
}

// Defaults of the generators that carry a synthesis value (§8.1.3)
var genDefaults = map[GenOper]int16{
	GenStartAddrsOffset:           0,
	GenEndAddrsOffset:             0,
	GenStartloopAddrsOffset:       0,
	GenEndloopAddrsOffset:         0,
	GenStartAddrsCoarseOffset:     0,
	GenModLfoToPitch:              0,
	GenVibLfoToPitch:              0,
	GenModEnvToPitch:              0,
	GenInitialFilterFc:            13500,
	GenInitialFilterQ:             0,
	GenModLfoToFilterFc:           0,
	GenModEnvToFilterFc:           0,
	GenEndAddrsCoarseOffset:       0,
	GenModLfoToVolume:             0,
	GenChorusEffectsSend:          0,
	GenReverbEffectsSend:          0,
	GenPan:                        0,
	GenDelayModLFO:                -12000,
	GenFreqModLFO:                 0,
	GenDelayVibLFO:                -12000,
	GenFreqVibLFO:                 0,
	GenDelayModEnv:                -12000,
	GenAttackModEnv:               -12000,
	GenHoldModEnv:                 -12000,
	GenDecayModEnv:                -12000,
	GenSustainModEnv:              0,
	GenReleaseModEnv:              -12000,
	GenKeynumToModEnvHold:         0,
	GenKeynumToModEnvDecay:        0,
	GenDelayVolEnv:                -12000,
	GenAttackVolEnv:               -12000,
	GenHoldVolEnv:                 -12000,
	GenDecayVolEnv:                -12000,
	GenSustainVolEnv:              0,
	GenReleaseVolEnv:              -12000,
	GenKeynumToVolEnvHold:         0,
	GenKeynumToVolEnvDecay:        0,
	GenStartloopAddrsCoarseOffset: 0,
	GenKeynum:                     -1,
	GenVelocity:                   -1,
	GenInitialAttenuation:         0,
	GenEndloopAddrsCoarseOffset:   0,
	GenCoarseTune:                 0,
	GenFineTune:                   0,
	GenSampleModes:                0,
	GenScaleTuning:                100,
	GenExclusiveClass:             0,
	GenOverridingRootKey:          -1,
}

// DefaultAmount returns the default of g. Structural generators (ranges,
// instrument, sampleID) have none.
func DefaultAmount(g GenOper) (int16, bool) {
	v, ok := genDefaults[g]
	return v, ok
}

// RangeAmount packs a key or velocity range
func RangeAmount(lo, hi uint8) int16 {
	return int16(uint16(lo) | uint16(hi)<<8)
}

// Range unpacks a keyRange or velRange amount
func (g Generator) Range() (lo, hi uint8) {
	u := uint16(g.Amount)
	return uint8(u), uint8(u >> 8)
}

func (g Generator) String() string {
	if g.Oper == GenKeyRange || g.Oper == GenVelRange {
		lo, hi := g.Range()
		return fmt.Sprintf("%s=%d-%d", g.Oper, lo, hi)
	}
	return fmt.Sprintf("%s=%d", g.Oper, g.Amount)
}

// Sample modes
const (
	SampleModeNoLoop          int16 = 0
	SampleModeLoop            int16 = 1
	SampleModeLoopThenRelease int16 = 3
)
