package converter

import "math"

// MaxAttenuation is the largest initialAttenuation in centibels
const MaxAttenuation = 1440

// timeAbsent is the DLS absolute-zero time amount
const timeAbsent = -32768

// attenuation converts a DLS gain in 1/65536 dB into SF2 centibels
func attenuation(gain int32, factor float64) int32 {
	cb := math.Round((-float64(gain) / 65536) / factor)
	return int32(clamp(int(cb), 0, MaxAttenuation))
}

// splitTuning splits a pitch offset in cents into semitones and cents.
// fine keeps the sign of cents and stays within -99..99.
func splitTuning(cents int32) (coarse, fine int32) {
	coarse = cents / 100
	fine = cents - coarse*100
	return coarse, fine
}

// sustainLevel turns a DLS sustain level in 0.1% into SF2 attenuation
// from peak
func sustainLevel(v int32) int32 {
	return 1000 - v
}

// aLawToPCM expands one G.711 A-law code word
func aLawToPCM(a byte) int16 {
	a ^= 0x55
	t := int32(a&0x0f) << 4
	seg := int32(a&0x70) >> 4
	switch seg {
	case 0:
		t += 8
	case 1:
		t += 0x108
	default:
		t += 0x108
		t <<= seg - 1
	}
	if a&0x80 != 0 {
		return int16(t)
	}
	return int16(-t)
}

// pcm8ToPCM16 maps unsigned 8-bit PCM onto the full signed 16-bit range
func pcm8ToPCM16(b byte) int16 {
	return int16(int32(b)*257 - 32768)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp16(v int32) int16 {
	return int16(clamp(int(v), math.MinInt16, math.MaxInt16))
}
