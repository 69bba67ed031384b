package converter

import (
	"fmt"

	"github.com/james-see/bank2sf2/pkg/dls"
	"github.com/james-see/bank2sf2/pkg/sf2"
)

// PresetSummary describes one preset (or DLS instrument)
type PresetSummary struct {
	Name    string `json:"name"`
	Bank    uint16 `json:"bank"`
	Program uint16 `json:"program"`
	Zones   int    `json:"zones"`
}

// Summary is a format-independent overview of a soundbank
type Summary struct {
	Format      Format            `json:"format"`
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	SoundEngine string            `json:"soundEngine,omitempty"`
	Presets     []PresetSummary   `json:"presets"`
	Instruments int               `json:"instruments"`
	Samples     int               `json:"samples"`
	SampleBytes int               `json:"sampleBytes"`
	Properties  map[string]string `json:"properties,omitempty"`
	Warnings    []string          `json:"warnings,omitempty"`
}

// Inspect summarises a soundbank held in memory. FormatUnknown falls back
// to content detection.
func (c *Converter) Inspect(data []byte, format Format) (*Summary, error) {
	if format == FormatUnknown {
		format = DetectFormatFromContent(data)
	}

	switch format {
	case FormatDLS:
		coll, err := dls.NewParser(c.opts.Codec).Parse(data)
		if err != nil {
			return nil, &BankError{Kind: MalformedInput, Context: "Cannot read DLS collection", Err: err}
		}
		return SummarizeDLS(coll), nil
	case FormatSF2, FormatSBK, FormatSF3:
		bank, err := sf2.NewReader(c.opts.Codec).Read(data)
		if err != nil {
			return nil, &BankError{Kind: MalformedInput, Context: "Cannot read SoundFont", Err: err}
		}
		s := SummarizeBank(bank)
		s.Format = format
		return s, nil
	case FormatECW:
		return nil, &BankError{Kind: UnsupportedFormat, Context: "Cannot inspect ECW wavetable", Err: errECW}
	default:
		return nil, bankErrorf(UnsupportedFormat, "Unrecognised soundbank format %q", format)
	}
}

// SummarizeDLS describes a parsed DLS collection
func SummarizeDLS(coll *dls.Collection) *Summary {
	s := &Summary{
		Format:      FormatDLS,
		Name:        coll.Properties.Get("INAM"),
		Instruments: len(coll.Instruments),
		Samples:     len(coll.Waves),
		Properties:  make(map[string]string),
	}
	if coll.HasVersion {
		v := coll.Version
		s.Version = fmt.Sprintf("%d.%d.%d.%d", v[0], v[1], v[2], v[3])
	}
	for _, p := range coll.Properties {
		s.Properties[p.ID] = p.Value
	}
	for i := range coll.Instruments {
		ins := &coll.Instruments[i]
		s.Presets = append(s.Presets, PresetSummary{
			Name:    instrumentName(i, ins),
			Bank:    bankNumber(ins),
			Program: uint16(ins.Program),
			Zones:   len(ins.Regions),
		})
	}
	for i := range coll.Waves {
		w := &coll.Waves[i]
		s.SampleBytes += len(w.Data)
		if err := checkWave(i, w); err != nil {
			s.Warnings = append(s.Warnings, err.Error())
		}
	}
	return s
}

// SummarizeBank describes a SoundFont bank and lists its structural
// problems as warnings
func SummarizeBank(bank *sf2.Bank) *Summary {
	s := &Summary{
		Format:      FormatSF2,
		Name:        bank.Name,
		Version:     fmt.Sprintf("%d.%d", bank.Major, bank.Minor),
		SoundEngine: bank.SoundEngine,
		SampleBytes: len(bank.SampleData),
		Properties:  make(map[string]string),
		Warnings:    sf2.Validate(bank),
	}
	for _, p := range bank.Properties {
		s.Properties[p.ID] = p.Value
	}
	if n := len(bank.Instruments); n > 0 {
		s.Instruments = n - 1
	}
	if n := len(bank.Samples); n > 0 {
		s.Samples = n - 1
	}
	for i := 0; i+1 < len(bank.Presets); i++ {
		p := bank.Presets[i]
		lo, hi := bank.PresetZoneRange(i)
		s.Presets = append(s.Presets, PresetSummary{
			Name:    p.Name,
			Bank:    p.Bank,
			Program: p.Program,
			Zones:   hi - lo,
		})
	}
	return s
}
