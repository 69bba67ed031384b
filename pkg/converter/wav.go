package converter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/james-see/bank2sf2/pkg/sf2"
	"github.com/pkg/errors"
	"github.com/zenwerk/go-wave"
)

// WriteSampleWAV writes sample i of bank to out as a mono 16-bit WAV and
// closes out
func WriteSampleWAV(bank *sf2.Bank, i int, out io.WriteCloser) error {
	if i < 0 || i+1 >= len(bank.Samples) {
		out.Close()
		return errors.Errorf("sample %d out of range", i)
	}
	s := bank.Samples[i]
	if bank.Major >= 3 {
		out.Close()
		return errors.Errorf("sample %q is compressed", s.Name)
	}
	if s.SampleType&sf2.ROMSample != 0 {
		out.Close()
		return errors.Errorf("sample %q lives in ROM", s.Name)
	}
	if s.Start >= s.End || int(s.End)*2 > len(bank.SampleData) {
		out.Close()
		return errors.Errorf("sample %q: range [%d,%d) outside the sample data", s.Name, s.Start, s.End)
	}

	w, err := wave.NewWriter(wave.WriterParam{
		Out:           out,
		Channel:       1,
		SampleRate:    int(s.SampleRate),
		BitsPerSample: 16,
	})
	if err != nil {
		out.Close()
		return errors.Wrap(err, "failed to create WAV writer")
	}
	if _, err := w.Write(bank.SampleData[s.Start*2 : s.End*2]); err != nil {
		out.Close()
		return errors.Wrapf(err, "failed to write sample %q", s.Name)
	}
	return w.Close()
}

// ExtractSamples writes every sample of bank as a WAV file into dir and
// returns the paths written
func ExtractSamples(bank *sf2.Bank, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var paths []string
	for i := 0; i+1 < len(bank.Samples); i++ {
		path := filepath.Join(dir, fmt.Sprintf("%03d_%s.wav", i, fileSafe(bank.Samples[i].Name)))
		f, err := os.Create(path)
		if err != nil {
			return paths, fmt.Errorf("failed to create %s: %w", path, err)
		}
		if err := WriteSampleWAV(bank, i, f); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func fileSafe(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "sample"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			return '_'
		}
		return r
	}, name)
}
