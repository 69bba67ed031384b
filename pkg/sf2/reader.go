package sf2

import (
	"encoding/binary"
	"os"

	"github.com/james-see/bank2sf2/pkg/riffio"
	"github.com/pkg/errors"
)

// ErrMalformed is returned for structurally invalid SoundFont data
var ErrMalformed = errors.New("malformed SoundFont data")

// Reader parses SF2, SF3 and SBK files into a Bank
type Reader struct {
	codec *riffio.Codec
}

// NewReader creates a reader decoding names with codec (nil for the default)
func NewReader(codec *riffio.Codec) *Reader {
	if codec == nil {
		codec = riffio.DefaultCodec
	}
	return &Reader{codec: codec}
}

// ReadFile reads and parses a SoundFont file
func (r *Reader) ReadFile(filename string) (*Bank, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read SoundFont file")
	}
	return r.Read(data)
}

// Read parses a SoundFont held in memory. SF3 sample data is kept in its
// compressed form.
func (r *Reader) Read(data []byte) (*Bank, error) {
	body, err := riffio.ReadForm(data, "sfbk")
	if err != nil {
		return nil, errors.Wrap(err, "SoundFont header")
	}
	chunks, _ := riffio.Walk(body)

	b := &Bank{}
	hasHydra := false
	for _, c := range chunks {
		switch {
		case c.IsList("INFO"):
			r.readInfo(b, c.Data)
		case c.IsList("sdta"):
			sub, _ := riffio.Walk(c.Data)
			if smpl, ok := riffio.Find(sub, "smpl"); ok {
				b.SampleData = smpl.Data
			}
			if sm24, ok := riffio.Find(sub, "sm24"); ok {
				b.SampleDataLSB = sm24.Data
			}
		case c.IsList("pdta"):
			if err := r.readHydra(b, c.Data); err != nil {
				return nil, err
			}
			hasHydra = true
		}
	}

	if !hasHydra {
		return nil, errors.Wrap(ErrMalformed, "missing pdta list")
	}
	return b, nil
}

func (r *Reader) readInfo(b *Bank, data []byte) {
	chunks, _ := riffio.Walk(data)
	for _, c := range chunks {
		switch c.ID {
		case "ifil":
			if len(c.Data) >= 4 {
				b.Major = binary.LittleEndian.Uint16(c.Data[0:])
				b.Minor = binary.LittleEndian.Uint16(c.Data[2:])
			}
		case "iver":
			if len(c.Data) >= 4 {
				b.ROMMajor = binary.LittleEndian.Uint16(c.Data[0:])
				b.ROMMinor = binary.LittleEndian.Uint16(c.Data[2:])
				b.HasROM = true
			}
		case "isng":
			b.SoundEngine = r.codec.DecodeZSTR(c.Data)
		case "INAM":
			b.Name = r.codec.DecodeZSTR(c.Data)
		case "irom":
			b.ROMName = r.codec.DecodeZSTR(c.Data)
		default:
			b.Properties = append(b.Properties, Property{ID: c.ID, Value: r.codec.DecodeZSTR(c.Data)})
		}
	}
}

// records splits a pdta sub-chunk into fixed-size records
func records(chunks []riffio.Chunk, id string, size int) ([][]byte, error) {
	c, ok := riffio.Find(chunks, id)
	if !ok {
		return nil, errors.Wrapf(ErrMalformed, "missing %s chunk", id)
	}
	if len(c.Data)%size != 0 {
		return nil, errors.Wrapf(ErrMalformed, "%s chunk of %d bytes is not a multiple of %d", id, len(c.Data), size)
	}
	n := len(c.Data) / size
	if n > MaxTableRows {
		return nil, errors.Wrapf(ErrMalformed, "%s holds %d rows", id, n)
	}
	out := make([][]byte, n)
	for i := range out {
		out[i] = c.Data[i*size : (i+1)*size]
	}
	return out, nil
}

func (r *Reader) readHydra(b *Bank, data []byte) error {
	chunks, _ := riffio.Walk(data)

	phdr, err := records(chunks, "phdr", phdrSize)
	if err != nil {
		return err
	}
	for _, rec := range phdr {
		b.Presets = append(b.Presets, Preset{
			Name:       r.codec.DecodeZSTR(rec[:nameSize]),
			Program:    binary.LittleEndian.Uint16(rec[20:]),
			Bank:       binary.LittleEndian.Uint16(rec[22:]),
			ZoneIndex:  binary.LittleEndian.Uint16(rec[24:]),
			Library:    binary.LittleEndian.Uint32(rec[26:]),
			Genre:      binary.LittleEndian.Uint32(rec[30:]),
			Morphology: binary.LittleEndian.Uint32(rec[34:]),
		})
	}

	if b.PresetZones, err = readZones(chunks, "pbag"); err != nil {
		return err
	}
	if b.PresetModulators, err = readModulators(chunks, "pmod"); err != nil {
		return err
	}
	if b.PresetGenerators, err = readGenerators(chunks, "pgen"); err != nil {
		return err
	}

	inst, err := records(chunks, "inst", instSize)
	if err != nil {
		return err
	}
	for _, rec := range inst {
		b.Instruments = append(b.Instruments, Instrument{
			Name:      r.codec.DecodeZSTR(rec[:nameSize]),
			ZoneIndex: binary.LittleEndian.Uint16(rec[20:]),
		})
	}

	if b.InstrumentZones, err = readZones(chunks, "ibag"); err != nil {
		return err
	}
	if b.InstrumentModulators, err = readModulators(chunks, "imod"); err != nil {
		return err
	}
	if b.InstrumentGenerators, err = readGenerators(chunks, "igen"); err != nil {
		return err
	}

	shdr, err := records(chunks, "shdr", shdrSize)
	if err != nil {
		return err
	}
	for _, rec := range shdr {
		b.Samples = append(b.Samples, Sample{
			Name:            r.codec.DecodeZSTR(rec[:nameSize]),
			Start:           binary.LittleEndian.Uint32(rec[20:]),
			End:             binary.LittleEndian.Uint32(rec[24:]),
			LoopStart:       binary.LittleEndian.Uint32(rec[28:]),
			LoopEnd:         binary.LittleEndian.Uint32(rec[32:]),
			SampleRate:      binary.LittleEndian.Uint32(rec[36:]),
			Pitch:           rec[40],
			PitchCorrection: int8(rec[41]),
			SampleLink:      binary.LittleEndian.Uint16(rec[42:]),
			SampleType:      SampleType(binary.LittleEndian.Uint16(rec[44:])),
		})
	}
	return nil
}

func readZones(chunks []riffio.Chunk, id string) ([]Zone, error) {
	recs, err := records(chunks, id, bagSize)
	if err != nil {
		return nil, err
	}
	zones := make([]Zone, len(recs))
	for i, rec := range recs {
		zones[i] = Zone{
			GeneratorIndex: binary.LittleEndian.Uint16(rec[0:]),
			ModulatorIndex: binary.LittleEndian.Uint16(rec[2:]),
		}
	}
	return zones, nil
}

func readGenerators(chunks []riffio.Chunk, id string) ([]Generator, error) {
	recs, err := records(chunks, id, genSize)
	if err != nil {
		return nil, err
	}
	gens := make([]Generator, len(recs))
	for i, rec := range recs {
		gens[i] = Generator{
			Oper:   GenOper(binary.LittleEndian.Uint16(rec[0:])),
			Amount: int16(binary.LittleEndian.Uint16(rec[2:])),
		}
	}
	return gens, nil
}

func readModulators(chunks []riffio.Chunk, id string) ([]Modulator, error) {
	recs, err := records(chunks, id, modSize)
	if err != nil {
		return nil, err
	}
	mods := make([]Modulator, len(recs))
	for i, rec := range recs {
		mods[i] = Modulator{
			SrcOper:    binary.LittleEndian.Uint16(rec[0:]),
			DstOper:    GenOper(binary.LittleEndian.Uint16(rec[2:])),
			Amount:     int16(binary.LittleEndian.Uint16(rec[4:])),
			AmtSrcOper: binary.LittleEndian.Uint16(rec[6:]),
			TransOper:  binary.LittleEndian.Uint16(rec[8:]),
		}
	}
	return mods, nil
}
