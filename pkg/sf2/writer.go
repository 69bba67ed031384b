package sf2

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/james-see/bank2sf2/pkg/riffio"
	"github.com/pkg/errors"
)

// Record sizes of the pdta sub-chunks
const (
	phdrSize = 38
	bagSize  = 4
	modSize  = 10
	genSize  = 4
	instSize = 22
	shdrSize = 46

	nameSize = 20

	// GuardSamples is the run of silence written after the last sample
	GuardSamples = 46
)

const (
	defaultSoundEngine = "EMU8000"
	defaultBankName    = "Unnamed"
	maxInfoLen         = 256
	maxCommentLen      = 65536
)

// infoOrder lists the optional INFO chunks a SoundFont may carry, in the
// order they are written.
var infoOrder = []string{"ICRD", "IENG", "IPRD", "ICOP", "ICMT", "ISFT"}

// Writer serialises banks as RIFF sfbk files
type Writer struct {
	codec *riffio.Codec
}

// NewWriter creates a writer encoding names with codec (nil for the default)
func NewWriter(codec *riffio.Codec) *Writer {
	if codec == nil {
		codec = riffio.DefaultCodec
	}
	return &Writer{codec: codec}
}

// WriteTo writes the bank with the default code page
func (b *Bank) WriteTo(w io.Writer) (int64, error) {
	return NewWriter(nil).WriteBank(w, b)
}

// WriteBank encodes b and writes it to w
func (wr *Writer) WriteBank(w io.Writer, b *Bank) (int64, error) {
	data, err := wr.Encode(b)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// WriteFile encodes the bank and writes it to filename
func (wr *Writer) WriteFile(b *Bank, filename string) error {
	data, err := wr.Encode(b)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

// Encode serialises the bank. The Hydra tables are written as held, so
// they must already carry their terminator rows.
func (wr *Writer) Encode(b *Bank) ([]byte, error) {
	if err := checkTables(b); err != nil {
		return nil, err
	}

	tree := riffio.Form("sfbk",
		wr.infoList(b),
		wr.sampleList(b),
		wr.hydraList(b),
	)
	return riffio.Encode(tree), nil
}

func checkTables(b *Bank) error {
	tables := []struct {
		name string
		n    int
	}{
		{"phdr", len(b.Presets)}, {"pbag", len(b.PresetZones)},
		{"pmod", len(b.PresetModulators)}, {"pgen", len(b.PresetGenerators)},
		{"inst", len(b.Instruments)}, {"ibag", len(b.InstrumentZones)},
		{"imod", len(b.InstrumentModulators)}, {"igen", len(b.InstrumentGenerators)},
		{"shdr", len(b.Samples)},
	}
	for _, t := range tables {
		if t.n > MaxTableRows {
			return errors.Errorf("%s holds %d rows, limit is %d", t.name, t.n, MaxTableRows)
		}
	}
	if len(b.Presets) == 0 || len(b.Instruments) == 0 || len(b.Samples) == 0 {
		return errors.New("bank is missing its terminator rows")
	}
	return nil
}

func (wr *Writer) infoList(b *Bank) riffio.Node {
	engine := b.SoundEngine
	if engine == "" {
		engine = defaultSoundEngine
	}
	name := b.Name
	if name == "" {
		name = defaultBankName
	}

	children := []riffio.Node{
		riffio.Leaf("ifil", le16(b.Major, b.Minor)),
		riffio.Leaf("isng", wr.zstr(engine, maxInfoLen)),
		riffio.Leaf("INAM", wr.zstr(name, maxInfoLen)),
	}
	if b.ROMName != "" {
		children = append(children, riffio.Leaf("irom", wr.zstr(b.ROMName, maxInfoLen)))
	}
	if b.HasROM {
		children = append(children, riffio.Leaf("iver", le16(b.ROMMajor, b.ROMMinor)))
	}

	for _, id := range infoOrder {
		value := b.Property(id)
		if value == "" {
			continue
		}
		limit := maxInfoLen
		if id == "ICMT" {
			limit = maxCommentLen
		}
		children = append(children, riffio.Leaf(id, wr.zstr(value, limit)))
	}
	return riffio.List("INFO", children...)
}

func (wr *Writer) zstr(s string, limit int) []byte {
	b := wr.codec.EncodeZSTR(s)
	if len(b) > limit {
		b = b[:limit]
		b[limit-1] = 0
	}
	return b
}

func (wr *Writer) sampleList(b *Bank) riffio.Node {
	smpl := make([]byte, len(b.SampleData)+GuardSamples*2)
	copy(smpl, b.SampleData)
	children := []riffio.Node{riffio.Leaf("smpl", smpl)}

	if len(b.SampleDataLSB) > 0 {
		sm24 := make([]byte, len(smpl)/2)
		copy(sm24, b.SampleDataLSB)
		children = append(children, riffio.Leaf("sm24", sm24))
	}
	return riffio.List("sdta", children...)
}

func (wr *Writer) hydraList(b *Bank) riffio.Node {
	phdr := make([]byte, 0, len(b.Presets)*phdrSize)
	for _, p := range b.Presets {
		phdr = append(phdr, wr.codec.EncodeName(p.Name, nameSize)...)
		phdr = binary.LittleEndian.AppendUint16(phdr, p.Program)
		phdr = binary.LittleEndian.AppendUint16(phdr, p.Bank)
		phdr = binary.LittleEndian.AppendUint16(phdr, p.ZoneIndex)
		phdr = binary.LittleEndian.AppendUint32(phdr, p.Library)
		phdr = binary.LittleEndian.AppendUint32(phdr, p.Genre)
		phdr = binary.LittleEndian.AppendUint32(phdr, p.Morphology)
	}

	inst := make([]byte, 0, len(b.Instruments)*instSize)
	for _, i := range b.Instruments {
		inst = append(inst, wr.codec.EncodeName(i.Name, nameSize)...)
		inst = binary.LittleEndian.AppendUint16(inst, i.ZoneIndex)
	}

	shdr := make([]byte, 0, len(b.Samples)*shdrSize)
	for _, s := range b.Samples {
		shdr = append(shdr, wr.codec.EncodeName(s.Name, nameSize)...)
		shdr = binary.LittleEndian.AppendUint32(shdr, s.Start)
		shdr = binary.LittleEndian.AppendUint32(shdr, s.End)
		shdr = binary.LittleEndian.AppendUint32(shdr, s.LoopStart)
		shdr = binary.LittleEndian.AppendUint32(shdr, s.LoopEnd)
		shdr = binary.LittleEndian.AppendUint32(shdr, s.SampleRate)
		shdr = append(shdr, s.Pitch, byte(s.PitchCorrection))
		shdr = binary.LittleEndian.AppendUint16(shdr, s.SampleLink)
		shdr = binary.LittleEndian.AppendUint16(shdr, uint16(s.SampleType))
	}

	return riffio.List("pdta",
		riffio.Leaf("phdr", phdr),
		riffio.Leaf("pbag", encodeZones(b.PresetZones)),
		riffio.Leaf("pmod", encodeModulators(b.PresetModulators)),
		riffio.Leaf("pgen", encodeGenerators(b.PresetGenerators)),
		riffio.Leaf("inst", inst),
		riffio.Leaf("ibag", encodeZones(b.InstrumentZones)),
		riffio.Leaf("imod", encodeModulators(b.InstrumentModulators)),
		riffio.Leaf("igen", encodeGenerators(b.InstrumentGenerators)),
		riffio.Leaf("shdr", shdr),
	)
}

func encodeZones(zones []Zone) []byte {
	out := make([]byte, 0, len(zones)*bagSize)
	for _, z := range zones {
		out = binary.LittleEndian.AppendUint16(out, z.GeneratorIndex)
		out = binary.LittleEndian.AppendUint16(out, z.ModulatorIndex)
	}
	return out
}

func encodeGenerators(gens []Generator) []byte {
	out := make([]byte, 0, len(gens)*genSize)
	for _, g := range gens {
		out = binary.LittleEndian.AppendUint16(out, uint16(g.Oper))
		out = binary.LittleEndian.AppendUint16(out, uint16(g.Amount))
	}
	return out
}

func encodeModulators(mods []Modulator) []byte {
	out := make([]byte, 0, len(mods)*modSize)
	for _, m := range mods {
		out = binary.LittleEndian.AppendUint16(out, m.SrcOper)
		out = binary.LittleEndian.AppendUint16(out, uint16(m.DstOper))
		out = binary.LittleEndian.AppendUint16(out, uint16(m.Amount))
		out = binary.LittleEndian.AppendUint16(out, m.AmtSrcOper)
		out = binary.LittleEndian.AppendUint16(out, m.TransOper)
	}
	return out
}

func le16(v ...uint16) []byte {
	var out []byte
	for _, x := range v {
		out = binary.LittleEndian.AppendUint16(out, x)
	}
	return out
}
