package sf2

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
	"github.com/sinshu/go-meltysynth/meltysynth"
)

// VerifyReport describes a bank as seen by an independent SoundFont
// loader
type VerifyReport struct {
	Presets     int
	Instruments int
	Samples     int
	WavePoints  int
	PresetNames []string
}

// Verify loads encoded SoundFont data with the meltysynth synthesizer and
// reports what it found. An error means a player would reject the file.
func Verify(data []byte) (report *VerifyReport, err error) {
	// meltysynth panics on some truncated tables
	defer func() {
		if r := recover(); r != nil {
			report = nil
			err = errors.Errorf("SoundFont rejected by loader: %v", r)
		}
	}()

	sf, err := meltysynth.NewSoundFont(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "SoundFont rejected by loader")
	}

	report = &VerifyReport{
		Presets:     len(sf.Presets),
		Instruments: len(sf.Instruments),
		Samples:     len(sf.SampleHeaders),
		WavePoints:  len(sf.WaveData),
	}
	for _, p := range sf.Presets {
		report.PresetNames = append(report.PresetNames,
			fmt.Sprintf("%03d:%03d %s", p.BankNumber, p.PatchNumber, p.Name))
	}
	return report, nil
}
