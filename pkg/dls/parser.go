package dls

import (
	"encoding/binary"
	"os"

	"github.com/james-see/bank2sf2/pkg/riffio"
	"github.com/pkg/errors"
)

// ErrMalformed is returned for structurally invalid DLS data
var ErrMalformed = errors.New("malformed DLS data")

const (
	formDLS = "DLS "

	rgnhSize     = 12
	wlnkSize     = 12
	fmtSize      = 16
	wsmpMinSize  = 20
	loopSize     = 16
	blockSize    = 12
	artHeaderLen = 8
)

// Parser reads DLS collections
type Parser struct {
	codec *riffio.Codec
}

// NewParser creates a parser decoding names with codec (nil for the default)
func NewParser(codec *riffio.Codec) *Parser {
	if codec == nil {
		codec = riffio.DefaultCodec
	}
	return &Parser{codec: codec}
}

// ParseFile reads and parses a DLS file
func (p *Parser) ParseFile(filename string) (*Collection, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read DLS file")
	}
	return p.Parse(data)
}

// Parse parses a DLS collection held in memory. A chunk overrunning its
// parent ends the walk of that parent; everything read before it is kept.
func (p *Parser) Parse(data []byte) (*Collection, error) {
	body, err := riffio.ReadForm(data, formDLS)
	if err != nil {
		return nil, errors.Wrap(err, "DLS header")
	}
	chunks, _ := riffio.Walk(body)

	coll := &Collection{}
	var waveOffsets map[uint32]int
	hasPoolTable := false

	for _, c := range chunks {
		switch {
		case c.ID == "vers":
			if len(c.Data) < 8 {
				return nil, errors.Wrap(ErrMalformed, "vers chunk too short")
			}
			ms := binary.LittleEndian.Uint32(c.Data[0:])
			ls := binary.LittleEndian.Uint32(c.Data[4:])
			coll.Version = [4]uint16{uint16(ms >> 16), uint16(ms), uint16(ls >> 16), uint16(ls)}
			coll.HasVersion = true
		case c.ID == "ptbl":
			cues, err := parsePoolTable(c.Data)
			if err != nil {
				return nil, err
			}
			coll.Cues = cues
			hasPoolTable = true
		case c.IsList("INFO"):
			coll.Properties = p.parseInfo(c.Data)
		case c.IsList("wvpl"):
			waves, offsets, err := p.parseWavePool(c.Data)
			if err != nil {
				return nil, err
			}
			coll.Waves = waves
			waveOffsets = offsets
		case c.IsList("lins"):
			instruments, err := p.parseInstruments(c.Data)
			if err != nil {
				return nil, err
			}
			coll.Instruments = instruments
		}
	}

	if err := resolveCues(coll, hasPoolTable, waveOffsets); err != nil {
		return nil, err
	}
	return coll, nil
}

// resolveCues rewrites every wave link's pool table index to the index of
// the wave it points at.
func resolveCues(coll *Collection, hasPoolTable bool, waveOffsets map[uint32]int) error {
	for i := range coll.Instruments {
		ins := &coll.Instruments[i]
		for j := range ins.Regions {
			link := &ins.Regions[j].WaveLink
			idx := link.CueIndex

			if hasPoolTable {
				if int(idx) >= len(coll.Cues) {
					return errors.Wrapf(ErrMalformed, "instrument %q region %d: cue index %d out of range (%d cues)",
						ins.Name, j, idx, len(coll.Cues))
				}
				wave, ok := waveOffsets[coll.Cues[idx]]
				if !ok {
					return errors.Wrapf(ErrMalformed, "instrument %q region %d: cue %d points at offset %d with no wave",
						ins.Name, j, idx, coll.Cues[idx])
				}
				link.CueIndex = uint32(wave)
				continue
			}

			if int(idx) >= len(coll.Waves) {
				return errors.Wrapf(ErrMalformed, "instrument %q region %d: wave index %d out of range (%d waves)",
					ins.Name, j, idx, len(coll.Waves))
			}
		}
	}
	return nil
}

func parsePoolTable(data []byte) ([]uint32, error) {
	if len(data) < 8 {
		return nil, errors.Wrap(ErrMalformed, "ptbl chunk too short")
	}
	size := int(binary.LittleEndian.Uint32(data[0:]))
	count := int(binary.LittleEndian.Uint32(data[4:]))
	if size < 8 || size+count*4 > len(data) {
		return nil, errors.Wrapf(ErrMalformed, "ptbl declares %d cues in %d bytes", count, len(data))
	}

	cues := make([]uint32, count)
	for i := range cues {
		cues[i] = binary.LittleEndian.Uint32(data[size+i*4:])
	}
	return cues, nil
}

func (p *Parser) parseInfo(data []byte) Properties {
	chunks, _ := riffio.Walk(data)
	props := make(Properties, 0, len(chunks))
	for _, c := range chunks {
		props = append(props, Property{ID: c.ID, Value: p.codec.DecodeZSTR(c.Data)})
	}
	return props
}

func (p *Parser) parseWavePool(data []byte) ([]Wave, map[uint32]int, error) {
	chunks, _ := riffio.Walk(data)
	waves := make([]Wave, 0, len(chunks))
	offsets := make(map[uint32]int, len(chunks))

	for _, c := range chunks {
		if !c.IsList("wave") {
			continue
		}
		w, err := p.parseWave(c.Data)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "wave %d", len(waves))
		}
		offsets[uint32(c.Offset)] = len(waves)
		waves = append(waves, w)
	}
	return waves, offsets, nil
}

func (p *Parser) parseWave(data []byte) (Wave, error) {
	chunks, _ := riffio.Walk(data)
	var w Wave
	hasFmt := false

	for _, c := range chunks {
		switch {
		case c.ID == "fmt ":
			if len(c.Data) < fmtSize {
				return w, errors.Wrap(ErrMalformed, "fmt chunk too short")
			}
			w.FormatTag = binary.LittleEndian.Uint16(c.Data[0:])
			w.Channels = binary.LittleEndian.Uint16(c.Data[2:])
			w.SamplesPerSec = binary.LittleEndian.Uint32(c.Data[4:])
			w.BitsPerSample = binary.LittleEndian.Uint16(c.Data[14:])
			hasFmt = true
		case c.ID == "data":
			w.Data = c.Data
		case c.ID == "wsmp":
			ws, err := parseWaveSample(c.Data)
			if err != nil {
				return w, err
			}
			w.WaveSample = ws
		case c.IsList("INFO"):
			w.Properties = p.parseInfo(c.Data)
			w.Name = w.Properties.Get("INAM")
		}
	}

	if !hasFmt {
		return w, errors.Wrap(ErrMalformed, "wave without fmt chunk")
	}
	return w, nil
}

func parseWaveSample(data []byte) (*WaveSample, error) {
	if len(data) < wsmpMinSize {
		return nil, errors.Wrap(ErrMalformed, "wsmp chunk too short")
	}
	size := int(binary.LittleEndian.Uint32(data[0:]))
	ws := &WaveSample{
		UnityNote: binary.LittleEndian.Uint16(data[4:]),
		FineTune:  int16(binary.LittleEndian.Uint16(data[6:])),
		Gain:      int32(binary.LittleEndian.Uint32(data[8:])),
		Options:   binary.LittleEndian.Uint32(data[12:]),
	}
	count := int(binary.LittleEndian.Uint32(data[16:]))
	if size < wsmpMinSize {
		size = wsmpMinSize
	}

	off := size
	for i := 0; i < count; i++ {
		if off+loopSize > len(data) {
			return nil, errors.Wrapf(ErrMalformed, "wsmp declares %d loops, room for %d", count, i)
		}
		loopLen := int(binary.LittleEndian.Uint32(data[off:]))
		ws.Loops = append(ws.Loops, Loop{
			Type:   binary.LittleEndian.Uint32(data[off+4:]),
			Start:  binary.LittleEndian.Uint32(data[off+8:]),
			Length: binary.LittleEndian.Uint32(data[off+12:]),
		})
		if loopLen < loopSize {
			loopLen = loopSize
		}
		off += loopLen
	}
	return ws, nil
}

func (p *Parser) parseInstruments(data []byte) ([]Instrument, error) {
	chunks, _ := riffio.Walk(data)
	instruments := make([]Instrument, 0, len(chunks))
	for _, c := range chunks {
		if !c.IsList("ins ") {
			continue
		}
		ins, err := p.parseInstrument(c.Data)
		if err != nil {
			return nil, errors.Wrapf(err, "instrument %d", len(instruments))
		}
		instruments = append(instruments, ins)
	}
	return instruments, nil
}

func (p *Parser) parseInstrument(data []byte) (Instrument, error) {
	chunks, _ := riffio.Walk(data)
	var ins Instrument

	for _, c := range chunks {
		switch {
		case c.ID == "insh":
			if len(c.Data) < 12 {
				return ins, errors.Wrap(ErrMalformed, "insh chunk too short")
			}
			bank := binary.LittleEndian.Uint32(c.Data[4:])
			ins.BankMSB = uint8((bank & localeMSBMask) >> 8)
			ins.BankLSB = uint8(bank & localeLSBMask)
			ins.IsPercussion = bank&localeDrums != 0
			ins.Program = uint8(binary.LittleEndian.Uint32(c.Data[8:]) & 0x7f)
		case c.IsList("lrgn"):
			regions, err := parseRegions(c.Data)
			if err != nil {
				return ins, err
			}
			ins.Regions = regions
		case c.IsList("lart"), c.IsList("lar2"):
			arts, err := parseArticulators(c.Data)
			if err != nil {
				return ins, err
			}
			ins.Articulators = append(ins.Articulators, arts...)
		case c.IsList("INFO"):
			ins.Properties = p.parseInfo(c.Data)
			ins.Name = ins.Properties.Get("INAM")
		}
	}
	return ins, nil
}

func parseRegions(data []byte) ([]Region, error) {
	chunks, _ := riffio.Walk(data)
	regions := make([]Region, 0, len(chunks))
	for _, c := range chunks {
		if !c.IsList("rgn ") && !c.IsList("rgn2") {
			continue
		}
		rgn, err := parseRegion(c.Data)
		if err != nil {
			return nil, errors.Wrapf(err, "region %d", len(regions))
		}
		regions = append(regions, rgn)
	}
	return regions, nil
}

func parseRegion(data []byte) (Region, error) {
	chunks, _ := riffio.Walk(data)
	var rgn Region
	hasHeader, hasLink := false, false

	for _, c := range chunks {
		switch {
		case c.ID == "rgnh":
			if len(c.Data) < rgnhSize {
				return rgn, errors.Wrap(ErrMalformed, "rgnh chunk too short")
			}
			rgn.LowKey = binary.LittleEndian.Uint16(c.Data[0:])
			rgn.HighKey = binary.LittleEndian.Uint16(c.Data[2:])
			rgn.LowVelocity = binary.LittleEndian.Uint16(c.Data[4:])
			rgn.HighVelocity = binary.LittleEndian.Uint16(c.Data[6:])
			rgn.Options = binary.LittleEndian.Uint16(c.Data[8:])
			rgn.KeyGroup = binary.LittleEndian.Uint16(c.Data[10:])
			if len(c.Data) >= rgnhSize+2 {
				rgn.Layer = binary.LittleEndian.Uint16(c.Data[12:])
			}
			hasHeader = true
		case c.ID == "wsmp":
			ws, err := parseWaveSample(c.Data)
			if err != nil {
				return rgn, err
			}
			rgn.WaveSample = ws
		case c.ID == "wlnk":
			if len(c.Data) < wlnkSize {
				return rgn, errors.Wrap(ErrMalformed, "wlnk chunk too short")
			}
			rgn.WaveLink = WaveLink{
				Options:    binary.LittleEndian.Uint16(c.Data[0:]),
				PhaseGroup: binary.LittleEndian.Uint16(c.Data[2:]),
				Channel:    binary.LittleEndian.Uint32(c.Data[4:]),
				CueIndex:   binary.LittleEndian.Uint32(c.Data[8:]),
			}
			hasLink = true
		case c.IsList("lart"), c.IsList("lar2"):
			arts, err := parseArticulators(c.Data)
			if err != nil {
				return rgn, err
			}
			rgn.Articulators = append(rgn.Articulators, arts...)
		}
	}

	if !hasHeader {
		return rgn, errors.Wrap(ErrMalformed, "region without rgnh")
	}
	if !hasLink {
		return rgn, errors.Wrap(ErrMalformed, "region without wlnk")
	}
	return rgn, nil
}

func parseArticulators(data []byte) ([]Articulator, error) {
	chunks, _ := riffio.Walk(data)
	var arts []Articulator
	for _, c := range chunks {
		if c.ID != "art1" && c.ID != "art2" {
			continue
		}
		art, err := parseArticulator(c.Data)
		if err != nil {
			return nil, err
		}
		art.Level2 = c.ID == "art2"
		arts = append(arts, art)
	}
	return arts, nil
}

func parseArticulator(data []byte) (Articulator, error) {
	var art Articulator
	if len(data) < artHeaderLen {
		return art, errors.Wrap(ErrMalformed, "articulator chunk too short")
	}
	size := int(binary.LittleEndian.Uint32(data[0:]))
	count := int(binary.LittleEndian.Uint32(data[4:]))
	if size < artHeaderLen {
		size = artHeaderLen
	}
	if size+count*blockSize > len(data) {
		return art, errors.Wrapf(ErrMalformed, "articulator declares %d connection blocks in %d bytes", count, len(data))
	}

	art.ConnectionBlocks = make([]ConnectionBlock, count)
	for i := range art.ConnectionBlocks {
		b := data[size+i*blockSize:]
		art.ConnectionBlocks[i] = ConnectionBlock{
			Source:      binary.LittleEndian.Uint16(b[0:]),
			Control:     binary.LittleEndian.Uint16(b[2:]),
			Destination: binary.LittleEndian.Uint16(b[4:]),
			Transform:   binary.LittleEndian.Uint16(b[6:]),
			Scale:       int32(binary.LittleEndian.Uint32(b[8:])),
		}
	}
	return art, nil
}
