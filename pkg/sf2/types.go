// Package sf2 holds the SoundFont 2 bank model together with its reader,
// writer and structural validator
package sf2

// Terminator row names
const (
	TerminalPreset     = "EOP"
	TerminalInstrument = "EOI"
	TerminalSample     = "EOS"
)

// MaxTableRows is the largest number of rows a Hydra table may hold;
// indices into the tables are 16-bit.
const MaxTableRows = 65536

// Property is one INFO sub-chunk
type Property struct {
	ID    string
	Value string
}

// Bank is an in-memory SoundFont. Every Hydra table carries its terminator
// row, so zone and generator spans are always [row i, row i+1).
type Bank struct {
	Major       uint16
	Minor       uint16
	SoundEngine string
	Name        string
	ROMName     string
	ROMMajor    uint16
	ROMMinor    uint16
	HasROM      bool
	Properties  []Property

	SampleData    []byte // little-endian 16-bit PCM (or compressed data for SF3)
	SampleDataLSB []byte // optional sm24 bytes

	Presets          []Preset
	PresetZones      []Zone
	PresetGenerators []Generator
	PresetModulators []Modulator

	Instruments          []Instrument
	InstrumentZones      []Zone
	InstrumentGenerators []Generator
	InstrumentModulators []Modulator

	Samples []Sample
}

// Property returns the value of the first INFO property with the given id
func (b *Bank) Property(id string) string {
	for _, p := range b.Properties {
		if p.ID == id {
			return p.Value
		}
	}
	return ""
}

// Preset is one phdr row
type Preset struct {
	Name       string
	Program    uint16
	Bank       uint16
	ZoneIndex  uint16
	Library    uint32
	Genre      uint32
	Morphology uint32
}

// Instrument is one inst row
type Instrument struct {
	Name      string
	ZoneIndex uint16
}

// Zone is one pbag or ibag row
type Zone struct {
	GeneratorIndex uint16
	ModulatorIndex uint16
}

// Generator is one pgen or igen row
type Generator struct {
	Oper   GenOper
	Amount int16
}

// Modulator is one pmod or imod row
type Modulator struct {
	SrcOper    uint16
	DstOper    GenOper
	Amount     int16
	AmtSrcOper uint16
	TransOper  uint16
}

// SampleType is the sfSampleLink type of a sample header
type SampleType uint16

// Sample types
const (
	MonoSample   SampleType = 1
	RightSample  SampleType = 2
	LeftSample   SampleType = 4
	LinkedSample SampleType = 8
	ROMSample    SampleType = 0x8000
)

// Sample is one shdr row. Offsets count 16-bit sample points.
type Sample struct {
	Name            string
	Start           uint32
	End             uint32
	LoopStart       uint32
	LoopEnd         uint32
	SampleRate      uint32
	Pitch           uint8
	PitchCorrection int8
	SampleLink      uint16
	SampleType      SampleType
}

// span converts two consecutive index rows into a half-open range clamped
// to a table of n rows.
func span(lo, hi uint16, n int) (int, int) {
	start, end := int(lo), int(hi)
	if start > n {
		start = n
	}
	if end > n {
		end = n
	}
	if end < start {
		end = start
	}
	return start, end
}

// PresetZoneRange returns the zones of preset p
func (b *Bank) PresetZoneRange(p int) (int, int) {
	if p+1 >= len(b.Presets) {
		return 0, 0
	}
	return span(b.Presets[p].ZoneIndex, b.Presets[p+1].ZoneIndex, len(b.PresetZones))
}

// InstrumentZoneRange returns the zones of instrument i
func (b *Bank) InstrumentZoneRange(i int) (int, int) {
	if i+1 >= len(b.Instruments) {
		return 0, 0
	}
	return span(b.Instruments[i].ZoneIndex, b.Instruments[i+1].ZoneIndex, len(b.InstrumentZones))
}

// PresetZoneGenerators returns the generators of preset zone z
func (b *Bank) PresetZoneGenerators(z int) []Generator {
	if z+1 >= len(b.PresetZones) {
		return nil
	}
	lo, hi := span(b.PresetZones[z].GeneratorIndex, b.PresetZones[z+1].GeneratorIndex, len(b.PresetGenerators))
	return b.PresetGenerators[lo:hi]
}

// PresetZoneModulators returns the modulators of preset zone z
func (b *Bank) PresetZoneModulators(z int) []Modulator {
	if z+1 >= len(b.PresetZones) {
		return nil
	}
	lo, hi := span(b.PresetZones[z].ModulatorIndex, b.PresetZones[z+1].ModulatorIndex, len(b.PresetModulators))
	return b.PresetModulators[lo:hi]
}

// InstrumentZoneGenerators returns the generators of instrument zone z
func (b *Bank) InstrumentZoneGenerators(z int) []Generator {
	if z+1 >= len(b.InstrumentZones) {
		return nil
	}
	lo, hi := span(b.InstrumentZones[z].GeneratorIndex, b.InstrumentZones[z+1].GeneratorIndex, len(b.InstrumentGenerators))
	return b.InstrumentGenerators[lo:hi]
}

// InstrumentZoneModulators returns the modulators of instrument zone z
func (b *Bank) InstrumentZoneModulators(z int) []Modulator {
	if z+1 >= len(b.InstrumentZones) {
		return nil
	}
	lo, hi := span(b.InstrumentZones[z].ModulatorIndex, b.InstrumentZones[z+1].ModulatorIndex, len(b.InstrumentModulators))
	return b.InstrumentModulators[lo:hi]
}
