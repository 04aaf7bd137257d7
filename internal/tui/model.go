package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/csheth/leadcalc/internal/controller"
	"github.com/csheth/leadcalc/internal/fields"
	"github.com/csheth/leadcalc/internal/submit"
)

// Config wires runtime options into the TUI program.
type Config struct {
	Mode    controller.Mode
	Client  submit.Client
	Timeout time.Duration
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	revenueInput := textinput.New()
	revenueInput.Placeholder = "500000"
	revenueInput.CharLimit = 15
	revenueInput.Width = 20
	revenueInput.Focus()

	emailInput := textinput.New()
	emailInput.Placeholder = "Enter your email"
	emailInput.CharLimit = 120
	emailInput.Width = 40

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := &model{
		config:       config,
		stage:        stageForm,
		jobs:         newJobBus(),
		pipeline:     submit.Pipeline{Client: config.Client, Timeout: config.Timeout},
		specs:        fields.Visible(config.Mode == controller.ModeStandalone),
		revenueInput: revenueInput,
		emailInput:   emailInput,
		spinner:      spin,
		wrapWidth:    defaultWrapWidth,
	}
	m.ctrl = controller.New(controller.Options{
		Mode: config.Mode,
		Sinks: submit.Sinks{
			LoanAmount:   func(v float64) { m.figures.LoanAmount = v },
			Interest:     func(v float64) { m.figures.Interest = v },
			Amortization: func(v float64) { m.figures.Amortization = v },
		},
	})
	if m.ctrl.Standalone() {
		m.infoMessage = "Fill in the form, then press Enter on Calculate (or Ctrl+S)."
	} else {
		m.infoMessage = "Figures update as you type."
	}
	return m
}

type model struct {
	config   Config
	stage    stage
	ctrl     *controller.Controller
	jobs     *jobBus
	pipeline submit.Pipeline

	specs        []fields.Spec
	focus        int
	revenueInput textinput.Model
	emailInput   textinput.Model
	spinner      spinner.Model

	figures     submit.Result
	lastJob     jobSnapshot
	infoMessage string
	errMessage  string
	wrapWidth   int
}

func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if req, ok := m.ctrl.Refresh(); ok {
		cmds = append(cmds, m.dispatch(req))
	}
	return tea.Batch(cmds...)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.ctrl.State() == controller.Doing {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case jobSignalMsg:
		m.lastJob = msg.Snapshot
		return m, nil
	case jobResultEnvelope:
		m.lastJob = msg.Snapshot
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case calculationMsg:
		return m, m.handleCalculation(msg)
	case tea.WindowSizeMsg:
		width := msg.Width - horizontalMargin
		if width < minWrapWidth {
			width = minWrapWidth
		}
		m.wrapWidth = width
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		}
		if m.stage == stageResults {
			if msg.String() == "q" {
				return m, tea.Quit
			}
			return m, nil
		}
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *model) handleCalculation(msg calculationMsg) tea.Cmd {
	if !m.ctrl.Resolve(msg.outcome) {
		return nil
	}
	if err := m.ctrl.LastError(); err != nil {
		m.errMessage = submit.Describe(err)
		if m.ctrl.Standalone() {
			m.infoMessage = "Press Enter on Calculate to try again."
		} else {
			m.infoMessage = "Edit any field to try again."
		}
		return nil
	}
	m.errMessage = ""
	if m.ctrl.Finished() {
		m.stage = stageResults
		m.revenueInput.Blur()
		m.emailInput.Blur()
		m.infoMessage = "Press q to quit."
		return nil
	}
	m.infoMessage = "Figures updated."
	return nil
}

func (m *model) handleKey(key tea.KeyMsg) tea.Cmd {
	switch key.Type {
	case tea.KeyTab, tea.KeyDown:
		return m.moveFocus(1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m.moveFocus(-1)
	case tea.KeyCtrlS:
		return m.submit()
	case tea.KeyEnter:
		if m.focusedOnButton() {
			return m.submit()
		}
		return m.moveFocus(1)
	}
	if m.focusedOnButton() {
		return nil
	}
	spec := m.specs[m.focus]
	switch spec.Kind {
	case fields.KindText:
		return m.handleTextKey(spec, key)
	default:
		switch key.String() {
		case "left", "h":
			return m.stepChoice(spec, -1)
		case "right", "l", " ":
			return m.stepChoice(spec, 1)
		}
	}
	return nil
}

func (m *model) handleTextKey(spec fields.Spec, key tea.KeyMsg) tea.Cmd {
	input := m.inputFor(spec.Field)
	if input == nil {
		return nil
	}
	before := input.Value()
	var cmd tea.Cmd
	*input, cmd = input.Update(key)
	after := input.Value()
	if after == before {
		return cmd
	}
	return tea.Batch(cmd, m.change(spec.Field, after))
}

func (m *model) stepChoice(spec fields.Spec, delta int) tea.Cmd {
	if len(spec.Choices) == 0 {
		return nil
	}
	current := fields.SelectedChoice(spec, m.ctrl.Form())
	next := current + delta
	if current < 0 {
		next = 0
	}
	if next < 0 || next >= len(spec.Choices) {
		return nil
	}
	return m.change(spec.Field, spec.Choices[next].Value)
}

func (m *model) change(field fields.Field, raw any) tea.Cmd {
	req, ok, err := m.ctrl.Change(field, raw)
	if err != nil {
		m.errMessage = err.Error()
		return nil
	}
	if !ok {
		return nil
	}
	m.errMessage = ""
	return m.dispatch(req)
}

func (m *model) submit() tea.Cmd {
	if !m.ctrl.Standalone() {
		return nil
	}
	req, err := m.ctrl.Submit()
	if err != nil {
		switch {
		case errors.Is(err, controller.ErrBusy):
			m.infoMessage = "Already calculating…"
		case errors.Is(err, controller.ErrEmailRequired):
			m.errMessage = "Enter your email to see what you can get."
			m.focusField(fields.Email)
		default:
			m.errMessage = err.Error()
		}
		return nil
	}
	m.errMessage = ""
	m.infoMessage = "Calculating your offer…"
	return m.dispatch(req)
}

func (m *model) dispatch(req submit.Request) tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindCalculate, calculateJob(m.pipeline, req)))
}

func (m *model) inputFor(field fields.Field) *textinput.Model {
	switch field {
	case fields.Revenue:
		return &m.revenueInput
	case fields.Email:
		return &m.emailInput
	default:
		return nil
	}
}

func (m *model) focusCount() int {
	if m.ctrl.Standalone() {
		return len(m.specs) + 1
	}
	return len(m.specs)
}

func (m *model) focusedOnButton() bool {
	return m.ctrl.Standalone() && m.focus == len(m.specs)
}

func (m *model) moveFocus(delta int) tea.Cmd {
	count := m.focusCount()
	m.focus = (m.focus + delta + count) % count
	return m.syncFocus()
}

func (m *model) focusField(field fields.Field) {
	for idx, spec := range m.specs {
		if spec.Field == field {
			m.focus = idx
			m.syncFocus()
			return
		}
	}
}

func (m *model) syncFocus() tea.Cmd {
	m.revenueInput.Blur()
	m.emailInput.Blur()
	if m.focusedOnButton() {
		return nil
	}
	if input := m.inputFor(m.specs[m.focus].Field); input != nil {
		return input.Focus()
	}
	return nil
}

func (m *model) focusedField() (fields.Field, bool) {
	if m.focusedOnButton() || m.focus >= len(m.specs) {
		return "", false
	}
	return m.specs[m.focus].Field, true
}

func (m *model) statusLine() string {
	parts := []string{
		fmt.Sprintf("Mode %s", strings.ToUpper(m.ctrl.Mode().String())),
		fmt.Sprintf("State %s", m.ctrl.State()),
	}
	if m.ctrl.Standalone() {
		parts = append(parts, fmt.Sprintf("Phase %s", m.ctrl.Phase()))
	}
	if n := m.jobs.Running(); n > 0 {
		parts = append(parts, fmt.Sprintf("In flight %d", n))
	}
	if m.lastJob.ID != "" {
		parts = append(parts, fmt.Sprintf("Last %s %s", m.lastJob.ID, m.lastJob.Status))
	}
	return statusBarStyle.Render(strings.Join(parts, "  •  "))
}

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	labelStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	focusedLabelStyle  = lipgloss.NewStyle().Bold(true).Foreground(heroAccentColor)

	heroAccentColor        = lipgloss.Color("#ff8c00")
	heroEmberColor         = lipgloss.Color("#2b1400")
	heroTextColor          = lipgloss.Color("#ffe8cc")
	heroSecondaryTextColor = lipgloss.Color("#c9a27e")

	heroTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(heroAccentColor)
	heroBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(heroAccentColor).Foreground(heroTextColor).Background(heroEmberColor).Padding(1, 2)
	taglineStyle     = lipgloss.NewStyle().Foreground(heroSecondaryTextColor).Italic(true)
	statusBarStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	keyStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	choiceStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4")).Padding(0, 1)
	chosenStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	buttonStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#3f51b5")).Padding(0, 3)
	buttonFocusStyle = buttonStyle.Copy().Background(lipgloss.Color("#536dfe")).Underline(true)
	figuresBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(1, 2)
	resultsBoxStyle  = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#7f5af0")).Padding(1, 2)
)
