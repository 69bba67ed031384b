// Package dls models and parses Downloadable Sounds (DLS Level 1 and 2) collections
package dls

// Property is one INFO sub-chunk
type Property struct {
	ID    string
	Value string
}

// Properties is an ordered INFO list
type Properties []Property

// Get returns the value of the first property with the given id
func (p Properties) Get(id string) string {
	for _, prop := range p {
		if prop.ID == id {
			return prop.Value
		}
	}
	return ""
}

// Collection is the root of a parsed DLS file
type Collection struct {
	Version     [4]uint16 // major, minor, release, build from 'vers'
	HasVersion  bool
	Properties  Properties
	Instruments []Instrument
	Waves       []Wave
	Cues        []uint32 // pool table offsets into the wave pool
}

// Instrument is one DLS instrument
type Instrument struct {
	Name         string
	BankMSB      uint8 // CC0
	BankLSB      uint8 // CC32
	Program      uint8
	IsPercussion bool
	Regions      []Region
	Articulators []Articulator
	Properties   Properties
}

// Region maps a key/velocity range of an instrument to a wave
type Region struct {
	LowKey       uint16
	HighKey      uint16
	LowVelocity  uint16
	HighVelocity uint16
	Options      uint16
	KeyGroup     uint16
	Layer        uint16
	WaveSample   *WaveSample // nil when the region carries no wsmp override
	WaveLink     WaveLink
	Articulators []Articulator
}

// Articulator is one art1/art2 chunk
type Articulator struct {
	Level2           bool
	ConnectionBlocks []ConnectionBlock
}

// ConnectionBlock is one modulation path. Scale is 16.16 fixed point.
type ConnectionBlock struct {
	Source      uint16
	Control     uint16
	Destination uint16
	Transform   uint16
	Scale       int32
}

// Amount returns the integer part of Scale
func (c ConnectionBlock) Amount() int32 {
	return c.Scale >> 16
}

// Loop is one wsmp loop record
type Loop struct {
	Type   uint32
	Start  uint32
	Length uint32
}

// Loop types
const (
	LoopForward uint32 = 0
	LoopRelease uint32 = 1
)

// WaveSample is the wsmp chunk. FineTune is in cents, Gain in 1/65536 dB.
type WaveSample struct {
	UnityNote uint16
	FineTune  int16
	Gain      int32
	Options   uint32
	Loops     []Loop
}

// HasLoop reports whether the wave sample defines at least one loop
func (w *WaveSample) HasLoop() bool {
	return w != nil && len(w.Loops) > 0
}

// WaveLink is the wlnk chunk. CueIndex is resolved to a wave index.
type WaveLink struct {
	Options    uint16
	PhaseGroup uint16
	Channel    uint32
	CueIndex   uint32
}

// Wave formats
const (
	FormatPCM  uint16 = 0x0001
	FormatALaw uint16 = 0x0006
)

// Wave is one entry of the wave pool
type Wave struct {
	Name          string
	FormatTag     uint16
	Channels      uint16
	SamplesPerSec uint32
	BitsPerSample uint16
	WaveSample    *WaveSample
	Data          []byte
	Properties    Properties
}

// Frames returns the number of sample frames in Data
func (w *Wave) Frames() int {
	if w.Channels == 0 {
		return 0
	}
	bytesPerFrame := int(w.Channels) * ((int(w.BitsPerSample) + 7) / 8)
	if bytesPerFrame == 0 {
		return 0
	}
	return len(w.Data) / bytesPerFrame
}
