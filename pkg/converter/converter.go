package converter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/james-see/bank2sf2/pkg/dls"
	"github.com/james-see/bank2sf2/pkg/sf2"
	"github.com/pkg/errors"
)

// Format represents a soundbank file format
type Format string

const (
	FormatSF2     Format = "sf2"
	FormatSBK     Format = "sbk"
	FormatSF3     Format = "sf3"
	FormatDLS     Format = "dls"
	FormatECW     Format = "ecw"
	FormatUnknown Format = "unknown"
)

// Header values of every converted bank
const (
	OutputMajor       = 2
	OutputMinor       = 4
	OutputSoundEngine = "E-mu 10K2"
)

const creationDateLayout = "2006-01-02 15:04:05"

// DetectFormat detects the format of a file based on extension
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".sf2":
		return FormatSF2
	case ".sbk":
		return FormatSBK
	case ".sf3":
		return FormatSF3
	case ".dls":
		return FormatDLS
	case ".ecw":
		return FormatECW
	default:
		return FormatUnknown
	}
}

// DetectFormatFromContent detects the format from the RIFF form type. It
// is only a fallback for files without a known extension.
func DetectFormatFromContent(data []byte) Format {
	if len(data) < 12 || string(data[:4]) != "RIFF" {
		return FormatUnknown
	}

	switch string(data[8:12]) {
	case "DLS ":
		return FormatDLS
	case "sfbk":
		return FormatSF2
	default:
		return FormatUnknown
	}
}

// ConvertFrom converts a parsed DLS collection into a SoundFont bank. On
// failure it returns a *BankError and no bank.
func (c *Converter) ConvertFrom(coll *dls.Collection) (*sf2.Bank, error) {
	c.dropped = 0

	bank := &sf2.Bank{
		Major:       OutputMajor,
		Minor:       OutputMinor,
		SoundEngine: OutputSoundEngine,
		Name:        coll.Properties.Get("INAM"),
		Properties: []sf2.Property{
			{ID: "ICRD", Value: c.opts.Now().Local().Format(creationDateLayout)},
		},
	}
	for _, p := range coll.Properties {
		if p.ID == "INAM" {
			continue
		}
		bank.Properties = append(bank.Properties, sf2.Property{ID: p.ID, Value: p.Value})
	}

	data, samples, plans, err := c.convertSamples(coll.Waves)
	if err != nil {
		return nil, err
	}

	h := &hydra{bank: bank}
	for i := range coll.Instruments {
		if err := c.addDLSInstrument(h, i, &coll.Instruments[i], coll.Waves, plans); err != nil {
			return nil, err
		}
	}
	h.terminate()

	bank.SampleData = data
	bank.Samples = samples
	return bank, nil
}

// ConvertDLS parses DLS data and converts it into an encoded SoundFont
func (c *Converter) ConvertDLS(data []byte) ([]byte, error) {
	coll, err := dls.NewParser(c.opts.Codec).Parse(data)
	if err != nil {
		return nil, &BankError{Kind: MalformedInput, Context: "Cannot read DLS collection", Err: err}
	}
	bank, err := c.ConvertFrom(coll)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := sf2.NewWriter(c.opts.Codec).WriteBank(&buf, bank); err != nil {
		return nil, errors.Wrap(err, "failed to encode SoundFont")
	}
	return buf.Bytes(), nil
}

// LoadBank returns the SoundFont view of a bank file. DLS collections are
// converted on the fly; SoundFont banks are read as they are.
func (c *Converter) LoadBank(path string) (*sf2.Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	format := DetectFormat(path)
	if format == FormatUnknown {
		format = DetectFormatFromContent(data)
	}
	switch format {
	case FormatDLS:
		coll, err := dls.NewParser(c.opts.Codec).Parse(data)
		if err != nil {
			return nil, &BankError{Kind: MalformedInput, Context: "Cannot read DLS collection", Err: err}
		}
		return c.ConvertFrom(coll)
	case FormatSF2, FormatSBK, FormatSF3:
		bank, err := sf2.NewReader(c.opts.Codec).Read(data)
		if err != nil {
			return nil, &BankError{Kind: MalformedInput, Context: "Cannot read SoundFont", Err: err}
		}
		return bank, nil
	case FormatECW:
		return nil, &BankError{Kind: UnsupportedFormat, Context: fmt.Sprintf("Cannot load %s", filepath.Base(path)), Err: errECW}
	default:
		return nil, bankErrorf(UnsupportedFormat, "Unrecognised soundbank format for %s", filepath.Base(path))
	}
}

// ConvertFile converts a file from one format to another
func (c *Converter) ConvertFile(inputPath, outputPath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	inputFormat := DetectFormat(inputPath)
	if inputFormat == FormatUnknown {
		inputFormat = DetectFormatFromContent(data)
	}
	outputFormat := DetectFormat(outputPath)
	if outputFormat == FormatUnknown {
		return errors.New("cannot determine output format from filename")
	}

	var outputData []byte
	switch {
	case inputFormat == FormatDLS && outputFormat == FormatSF2:
		outputData, err = c.ConvertDLS(data)
	case inputFormat == FormatECW:
		return &BankError{Kind: UnsupportedFormat, Context: fmt.Sprintf("Cannot convert %s", filepath.Base(inputPath)), Err: errECW}
	default:
		return fmt.Errorf("unsupported conversion: %s to %s", inputFormat, outputFormat)
	}

	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	if err := os.WriteFile(outputPath, outputData, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

var errECW = errors.New("ECW wavetables are recognised but not supported")

// GetSupportedConversions returns a list of supported conversion paths
func GetSupportedConversions() []string {
	return []string{
		"dls -> sf2",
	}
}
