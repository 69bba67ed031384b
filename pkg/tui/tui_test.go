package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/james-see/bank2sf2/pkg/converter"
)

func press(m Model, k tea.KeyType) Model {
	next, _ := m.Update(tea.KeyMsg{Type: k})
	return next.(Model)
}

func TestMenuNavigation(t *testing.T) {
	m := New(converter.DefaultOptions())

	m = press(m, tea.KeyUp)
	if m.menuIndex != 0 {
		t.Errorf("menuIndex after up = %d, want 0", m.menuIndex)
	}
	for i := 0; i < len(menuItems)+2; i++ {
		m = press(m, tea.KeyDown)
	}
	if m.menuIndex != len(menuItems)-1 {
		t.Errorf("menuIndex after downs = %d, want %d", m.menuIndex, len(menuItems)-1)
	}

	m.menuIndex = 1
	m = press(m, tea.KeyEnter)
	if m.state != StateFilePicker || m.item.Action != ActionInspect {
		t.Fatalf("state = %v item = %+v", m.state, m.item)
	}
	if len(m.filePicker.AllowedTypes) != len(bankExtensions) {
		t.Errorf("AllowedTypes = %v", m.filePicker.AllowedTypes)
	}

	m = press(m, tea.KeyEsc)
	if m.state != StateMenu {
		t.Errorf("esc did not return to the menu")
	}
}

func TestWorkDone(t *testing.T) {
	m := New(converter.DefaultOptions())
	m.state = StateWorking
	m.item = menuItems[0]

	next, _ := m.Update(workDoneMsg{result: "Output: a.sf2"})
	m = next.(Model)
	if m.state != StateResult {
		t.Fatalf("state = %v, want StateResult", m.state)
	}
	if view := m.View(); !strings.Contains(view, "Output: a.sf2") {
		t.Errorf("result view missing output:\n%s", view)
	}

	m = press(m, tea.KeyEnter)
	if m.state != StateMenu || m.result != "" {
		t.Errorf("enter did not reset to the menu")
	}
}

func TestRunRejectsJunk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.dls")
	if err := os.WriteFile(path, []byte("not a bank"), 0644); err != nil {
		t.Fatal(err)
	}

	for _, action := range []Action{ActionConvert, ActionInspect, ActionExtract, ActionAudition} {
		if _, err := run(action, path, converter.DefaultOptions()); err == nil {
			t.Errorf("run(%d) on junk should fail", action)
		}
	}
}

func TestDescribe(t *testing.T) {
	s := &converter.Summary{
		Format:   converter.FormatSF2,
		Name:     "GM",
		Version:  "2.4",
		Presets:  []converter.PresetSummary{{Name: "Piano", Bank: 0, Program: 1}},
		Samples:  3,
		Warnings: []string{"sample 2: 10 points, want at least 48"},
	}
	got := describe(s)
	for _, want := range []string{`SF2  "GM"  version 2.4`, "000:001 Piano", "warning: sample 2"} {
		if !strings.Contains(got, want) {
			t.Errorf("describe() missing %q:\n%s", want, got)
		}
	}
}
