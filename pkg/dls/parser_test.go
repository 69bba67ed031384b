package dls

import (
	"encoding/binary"
	"testing"

	"github.com/james-see/bank2sf2/pkg/riffio"
	"github.com/pkg/errors"
)

func le16(v ...uint16) []byte {
	var b []byte
	for _, x := range v {
		b = binary.LittleEndian.AppendUint16(b, x)
	}
	return b
}

func le32(v ...uint32) []byte {
	var b []byte
	for _, x := range v {
		b = binary.LittleEndian.AppendUint32(b, x)
	}
	return b
}

func scaleOf(v int32) uint32 {
	return uint32(v << 16)
}

func cat(parts ...[]byte) []byte {
	var b []byte
	for _, p := range parts {
		b = append(b, p...)
	}
	return b
}

func info(name string) riffio.Node {
	return riffio.List("INFO", riffio.Leaf("INAM", riffio.DefaultCodec.EncodeZSTR(name)))
}

func wsmpChunk(unity uint16, fine int16, gain int32, loops ...Loop) riffio.Node {
	data := cat(le32(20), le16(unity, uint16(fine)), le32(uint32(gain), 0, uint32(len(loops))))
	for _, l := range loops {
		data = cat(data, le32(16, l.Type, l.Start, l.Length))
	}
	return riffio.Leaf("wsmp", data)
}

func waveList(name string, bits uint16, data []byte, ws riffio.Node) riffio.Node {
	fmtData := cat(le16(FormatPCM, 1), le32(22050, 44100), le16(2, bits))
	children := []riffio.Node{riffio.Leaf("fmt ", fmtData)}
	if ws != nil {
		children = append(children, ws)
	}
	children = append(children, riffio.Leaf("data", data), info(name))
	return riffio.List("wave", children...)
}

func buildCollection(cueTable []uint32, tableIndex uint32) []byte {
	block := cat(le16(SrcNone, SrcNone, DstPan, TrnNone), le32(scaleOf(-250)))
	art := riffio.Leaf("art1", cat(le32(8, 1), block))

	region := riffio.List("rgn ",
		riffio.Leaf("rgnh", le16(36, 72, 0, 127, RegionSelfNonExclusive, 2)),
		wsmpChunk(62, -20, 0, Loop{Type: LoopForward, Start: 10, Length: 40}),
		riffio.Leaf("wlnk", cat(le16(0, 0), le32(1, tableIndex))),
		riffio.List("lart", art),
	)

	ins := riffio.List("ins ",
		riffio.Leaf("insh", le32(1, 0x80000000|(3<<8)|5, 42)),
		riffio.List("lrgn", region),
		riffio.List("lar2", riffio.Leaf("art2", cat(le32(8, 0)))),
		info("Kit"),
	)

	waveA := waveList("First", 16, make([]byte, 200), wsmpChunk(60, 0, 0))
	waveB := waveList("Second", 8, make([]byte, 101), nil)

	ptblData := le32(8, uint32(len(cueTable)))
	ptblData = cat(ptblData, le32(cueTable...))

	return riffio.Encode(riffio.Form("DLS ",
		riffio.Leaf("colh", le32(1)),
		riffio.Leaf("vers", le32(1<<16|2, 3<<16|4)),
		riffio.List("lins", ins),
		riffio.Leaf("ptbl", ptblData),
		riffio.List("wvpl", waveA, waveB),
		info("Test Collection"),
	))
}

func waveOffsets() []uint32 {
	first := waveList("First", 16, make([]byte, 200), wsmpChunk(60, 0, 0))
	return []uint32{0, uint32(len(riffio.Encode(first)))}
}

func TestParse(t *testing.T) {
	offsets := waveOffsets()
	// cue 0 points at the second wave
	data := buildCollection([]uint32{offsets[1], offsets[0]}, 0)

	coll, err := NewParser(nil).Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if !coll.HasVersion || coll.Version != [4]uint16{1, 2, 3, 4} {
		t.Errorf("Version = %v (has %v), want [1 2 3 4]", coll.Version, coll.HasVersion)
	}
	if got := coll.Properties.Get("INAM"); got != "Test Collection" {
		t.Errorf("INAM = %q", got)
	}
	if len(coll.Cues) != 2 {
		t.Errorf("Cues = %v, want 2 entries", coll.Cues)
	}

	if len(coll.Waves) != 2 {
		t.Fatalf("Waves = %d, want 2", len(coll.Waves))
	}
	first, second := coll.Waves[0], coll.Waves[1]
	if first.Name != "First" || first.BitsPerSample != 16 || first.Frames() != 100 {
		t.Errorf("wave 0 = %q bits %d frames %d", first.Name, first.BitsPerSample, first.Frames())
	}
	if first.WaveSample == nil || first.WaveSample.UnityNote != 60 {
		t.Errorf("wave 0 wsmp = %+v", first.WaveSample)
	}
	// odd data chunks keep their declared length
	if second.Name != "Second" || len(second.Data) != 101 || second.WaveSample != nil {
		t.Errorf("wave 1 = %q data %d wsmp %v", second.Name, len(second.Data), second.WaveSample)
	}
	if first.SamplesPerSec != 22050 || first.Channels != 1 || first.FormatTag != FormatPCM {
		t.Errorf("wave 0 format = %+v", first)
	}

	if len(coll.Instruments) != 1 {
		t.Fatalf("Instruments = %d, want 1", len(coll.Instruments))
	}
	ins := coll.Instruments[0]
	if ins.Name != "Kit" || ins.BankMSB != 3 || ins.BankLSB != 5 || ins.Program != 42 || !ins.IsPercussion {
		t.Errorf("instrument = %+v", ins)
	}
	if len(ins.Articulators) != 1 || !ins.Articulators[0].Level2 || len(ins.Articulators[0].ConnectionBlocks) != 0 {
		t.Errorf("instrument articulators = %+v", ins.Articulators)
	}

	if len(ins.Regions) != 1 {
		t.Fatalf("Regions = %d, want 1", len(ins.Regions))
	}
	rgn := ins.Regions[0]
	if rgn.LowKey != 36 || rgn.HighKey != 72 || rgn.HighVelocity != 127 || rgn.KeyGroup != 2 {
		t.Errorf("region header = %+v", rgn)
	}
	if rgn.WaveLink.CueIndex != 1 {
		t.Errorf("CueIndex = %d, want 1 (resolved through ptbl)", rgn.WaveLink.CueIndex)
	}
	if rgn.WaveSample == nil || rgn.WaveSample.FineTune != -20 || len(rgn.WaveSample.Loops) != 1 {
		t.Fatalf("region wsmp = %+v", rgn.WaveSample)
	}
	if l := rgn.WaveSample.Loops[0]; l.Start != 10 || l.Length != 40 {
		t.Errorf("loop = %+v", l)
	}

	if len(rgn.Articulators) != 1 || len(rgn.Articulators[0].ConnectionBlocks) != 1 {
		t.Fatalf("region articulators = %+v", rgn.Articulators)
	}
	blk := rgn.Articulators[0].ConnectionBlocks[0]
	if blk.Destination != DstPan || blk.Amount() != -250 || rgn.Articulators[0].Level2 {
		t.Errorf("block = %+v amount %d", blk, blk.Amount())
	}
}

func TestParseMalformed(t *testing.T) {
	offsets := waveOffsets()

	tests := []struct {
		name string
		data []byte
	}{
		{"cue index out of range", buildCollection([]uint32{offsets[0]}, 3)},
		{"cue offset without wave", buildCollection([]uint32{7}, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(nil).Parse(tt.data)
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Parse() error = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestParseNotDLS(t *testing.T) {
	data := riffio.Encode(riffio.Form("sfbk"))
	if _, err := NewParser(nil).Parse(data); !errors.Is(err, riffio.ErrNotRIFF) {
		t.Errorf("Parse() error = %v, want ErrNotRIFF", err)
	}
}

func TestSourceCurve(t *testing.T) {
	trn := TrnConvex<<TrnSourceShift | TrnSourceBipolar | TrnConcave<<TrnControlShift
	if SourceCurve(trn) != TrnConvex {
		t.Errorf("SourceCurve() = %d, want %d", SourceCurve(trn), TrnConvex)
	}
	if ControlCurve(trn) != TrnConcave {
		t.Errorf("ControlCurve() = %d, want %d", ControlCurve(trn), TrnConcave)
	}
}
