// Package tui provides a terminal user interface for bank2sf2
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/james-see/bank2sf2/pkg/converter"
)

// Sample-ROM colour scheme, amber on charcoal
var (
	amber     = lipgloss.Color("#FFB000")
	paleGreen = lipgloss.Color("#9EF01A")
	steelGray = lipgloss.Color("#B0B7C0")
	charcoal  = lipgloss.Color("#2B2B2B")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(amber).
			Background(charcoal).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(steelGray).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(amber).
			Bold(true).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(paleGreen).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF3B30")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(paleGreen).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(amber).
			Padding(1, 2)
)

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StateFilePicker
	StateWorking
	StateResult
)

// Action is what a menu entry does with the picked file
type Action int

const (
	ActionConvert Action = iota
	ActionInspect
	ActionExtract
	ActionAudition
	ActionExit
)

// MenuItem represents a menu option
type MenuItem struct {
	Title       string
	Description string
	Action      Action
	Extensions  []string
}

var bankExtensions = []string{".dls", ".sf2", ".sbk"}

var menuItems = []MenuItem{
	{Title: "DLS → SF2", Description: "Convert a DLS collection to a SoundFont 2 bank", Action: ActionConvert, Extensions: []string{".dls"}},
	{Title: "Inspect bank", Description: "Show presets, samples and structural warnings", Action: ActionInspect, Extensions: bankExtensions},
	{Title: "Extract samples", Description: "Write every sample of a bank as a WAV file", Action: ActionExtract, Extensions: bankExtensions},
	{Title: "Audition MIDI", Description: "Write a MIDI file that plays one note per preset", Action: ActionAudition, Extensions: bankExtensions},
	{Title: "Exit", Description: "Exit the application", Action: ActionExit},
}

// Model represents the TUI model
type Model struct {
	state        State
	menuIndex    int
	filePicker   filepicker.Model
	spinner      spinner.Model
	opts         converter.Options
	selectedFile string
	item         MenuItem
	result       string
	err          error
	width        int
	height       int
}

// workDoneMsg signals that the selected action finished
type workDoneMsg struct {
	result string
	err    error
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick)
}

// New creates a new TUI model converting with opts
func New(opts converter.Options) Model {
	fp := filepicker.New()
	fp.AllowedTypes = bankExtensions
	fp.CurrentDirectory, _ = os.Getwd()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(amber)

	return Model{
		state:      StateMenu,
		menuIndex:  0,
		filePicker: fp,
		spinner:    s,
		opts:       opts,
	}
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The file picker needs every message, including its own readDir results
	if m.state == StateFilePicker {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateMenu
				return m, nil
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		}

		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			m.state = StateWorking
			return m, tea.Batch(m.spinner.Tick, m.perform())
		}

		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StateResult:
			return m.updateResult(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case workDoneMsg:
		m.state = StateResult
		m.result = msg.result
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(menuItems)-1 {
			m.menuIndex++
		}
	case "enter":
		m.item = menuItems[m.menuIndex]
		if m.item.Action == ActionExit {
			return m, tea.Quit
		}
		m.state = StateFilePicker
		m.filePicker.AllowedTypes = m.item.Extensions
		return m, m.filePicker.Init()
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = StateMenu
		m.err = nil
		m.selectedFile = ""
		m.result = ""
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) perform() tea.Cmd {
	item, path, opts := m.item, m.selectedFile, m.opts
	return func() tea.Msg {
		result, err := run(item.Action, path, opts)
		return workDoneMsg{result: result, err: err}
	}
}

// run carries out action on the bank at path and describes the outcome
func run(action Action, path string, opts converter.Options) (string, error) {
	conv := converter.New(opts)
	base := strings.TrimSuffix(path, filepath.Ext(path))

	switch action {
	case ActionConvert:
		out := base + ".sf2"
		if err := conv.ConvertFile(path, out); err != nil {
			return "", err
		}
		msg := fmt.Sprintf("Output: %s", filepath.Base(out))
		if n := conv.Dropped(); n > 0 {
			msg += fmt.Sprintf("\nDropped %d articulation blocks", n)
		}
		return msg, nil

	case ActionInspect:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		s, err := conv.Inspect(data, converter.DetectFormat(path))
		if err != nil {
			return "", err
		}
		return describe(s), nil

	case ActionExtract:
		bank, err := conv.LoadBank(path)
		if err != nil {
			return "", err
		}
		paths, err := converter.ExtractSamples(bank, base+"_samples")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Wrote %d WAV files to %s", len(paths), filepath.Base(base+"_samples")), nil

	case ActionAudition:
		bank, err := conv.LoadBank(path)
		if err != nil {
			return "", err
		}
		out := base + "_audition.mid"
		if err := converter.NewAuditionGenerator().WriteFile(bank, out); err != nil {
			return "", err
		}
		return fmt.Sprintf("Output: %s", filepath.Base(out)), nil
	}
	return "", fmt.Errorf("unknown action %d", action)
}

func describe(s *converter.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %q  version %s\n", strings.ToUpper(string(s.Format)), s.Name, s.Version)
	fmt.Fprintf(&b, "%d presets, %d instruments, %d samples (%d bytes)\n",
		len(s.Presets), s.Instruments, s.Samples, s.SampleBytes)
	for i, p := range s.Presets {
		if i == 10 {
			fmt.Fprintf(&b, "  ... %d more\n", len(s.Presets)-i)
			break
		}
		fmt.Fprintf(&b, "  %03d:%03d %s\n", p.Bank, p.Program, p.Name)
	}
	for _, w := range s.Warnings {
		fmt.Fprintf(&b, "warning: %s\n", w)
	}
	return strings.TrimRight(b.String(), "\n")
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(asciiLogo())
	s.WriteString("\n")

	switch m.state {
	case StateMenu:
		s.WriteString(m.viewMenu())
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateWorking:
		s.WriteString(m.viewWorking())
	case StateResult:
		s.WriteString(m.viewResult())
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓: navigate • enter: select • q: quit"))

	return s.String()
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT ACTION "))
	s.WriteString("\n\n")

	for i, item := range menuItems {
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", item.Title)))
			s.WriteString("\n")
			s.WriteString(lipgloss.NewStyle().Foreground(paleGreen).PaddingLeft(4).Render(item.Description))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", item.Title)))
		}
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(fmt.Sprintf(" SELECT %s FILE ", strings.ToUpper(strings.Join(m.item.Extensions, " ")))))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back to menu"))

	return s.String()
}

func (m Model) viewWorking() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" WORKING "))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%s Processing %s...\n", m.spinner.View(), filepath.Base(m.selectedFile)))
	s.WriteString(statusStyle.Render(fmt.Sprintf("  %s", m.item.Title)))

	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	if m.err != nil {
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s failed: %s", m.item.Title, m.err.Error())))
	} else {
		s.WriteString(titleStyle.Render(" SUCCESS "))
		s.WriteString("\n\n")
		s.WriteString(successStyle.Render(fmt.Sprintf("✓ %s complete!", m.item.Title)))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("Input:  %s\n", filepath.Base(m.selectedFile)))
		s.WriteString(m.result)
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press enter to continue"))

	return boxStyle.Render(s.String())
}

func asciiLogo() string {
	logo := `
   ____    _    _   _ _  ______  ____  _____ ____
  | __ )  / \  | \ | | |/ /___ \/ ___||  ___|___ \
  |  _ \ / _ \ |  \| | ' /  __) \___ \| |_    __) |
  | |_) / ___ \| |\  | . \ / __/ ___) |  _|  / __/
  |____/_/   \_\_| \_|_|\_\_____|____/|_|   |_____|
`
	return lipgloss.NewStyle().Foreground(amber).Render(logo)
}

// Run starts the TUI application
func Run(opts converter.Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
