// Package converter transcodes soundbanks, chiefly DLS collections into
// SoundFont 2 banks, and provides inspection, audition and sample export
// helpers around them.
package converter

import (
	"time"

	"github.com/james-see/bank2sf2/pkg/riffio"
)

// Options tunes a conversion. Start from DefaultOptions; the zero value
// disables the effect modulators.
type Options struct {
	// AttenuationFactor divides DLS gain (in dB) to get SF2 centibels.
	// The 0.4 default matches the EMU attenuation curve.
	AttenuationFactor float64

	// EffectModulators adds CC91->reverb and CC93->chorus modulators to
	// every instrument that lacks them.
	EffectModulators bool

	// Codec decodes and encodes chunk strings
	Codec *riffio.Codec

	// Now stamps the ICRD property
	Now func() time.Time

	// Logf receives one line per connection block that has no SF2 form
	Logf func(format string, args ...any)
}

// DefaultAttenuationFactor is the DLS gain to SF2 centibel divisor
const DefaultAttenuationFactor = 0.4

// DefaultOptions returns the options the CLI starts from
func DefaultOptions() Options {
	return Options{
		AttenuationFactor: DefaultAttenuationFactor,
		EffectModulators:  true,
		Codec:             riffio.DefaultCodec,
		Now:               time.Now,
	}
}

// Converter handles soundbank conversions. A Converter is not safe for
// concurrent use; create one per goroutine.
type Converter struct {
	opts    Options
	dropped int
}

// New creates a Converter. Unset numeric, codec and clock fields fall back
// to their defaults.
func New(opts Options) *Converter {
	if opts.AttenuationFactor <= 0 {
		opts.AttenuationFactor = DefaultAttenuationFactor
	}
	if opts.Codec == nil {
		opts.Codec = riffio.DefaultCodec
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Converter{opts: opts}
}

// Options returns the options in effect
func (c *Converter) Options() Options {
	return c.opts
}

// Dropped returns how many connection blocks the last conversion could
// not express in SF2
func (c *Converter) Dropped() int {
	return c.dropped
}

func (c *Converter) logf(format string, args ...any) {
	if c.opts.Logf != nil {
		c.opts.Logf(format, args...)
	}
}
