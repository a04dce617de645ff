package main

import (
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"grin/smile"
)

const gaugeWidth = 40

var (
	tuiProgram   *tea.Program
	tuiMu        sync.Mutex
	tuiReady     = make(chan struct{})
	tuiReadyOnce sync.Once
)

func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

type tuiReadyMsg struct{}

var (
	styleSmiling  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	styleQuiet    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	styleAbsent   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	styleDisabled = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true)
	styleGaugeOn  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleGaugeMid = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	styleGaugeOff = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleMarker   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	styleError    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styleHelp     = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	styleCal      = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

type tuiModel struct {
	width, height int

	enabled    bool
	state      smile.State
	score      float64
	absent     bool
	volumePct  int
	suppressed bool
	hasVolume  bool
	status     string

	th smile.Thresholds

	calActive   bool
	calProgress smile.Progress
	calResult   string

	toggleCh    chan<- struct{}
	calibrateCh chan<- struct{}
}

func NewTUIProgram(th smile.Thresholds, toggleCh, calibrateCh chan<- struct{}) *tea.Program {
	m := tuiModel{
		enabled:     true,
		th:          th,
		toggleCh:    toggleCh,
		calibrateCh: calibrateCh,
	}
	return tea.NewProgram(m, tea.WithAltScreen())
}

func (m tuiModel) Init() tea.Cmd {
	return func() tea.Msg {
		tuiReadyOnce.Do(func() { close(tuiReady) })
		return tuiReadyMsg{}
	}
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "e":
			select {
			case m.toggleCh <- struct{}{}:
			default:
			}
		case "c":
			if !m.calActive {
				select {
				case m.calibrateCh <- struct{}{}:
				default:
				}
			}
		}

	case ScoreMsg:
		m.score = msg.Score
		m.absent = msg.Absent

	case StateMsg:
		m.state = msg.State

	case EnabledMsg:
		m.enabled = msg.Enabled

	case VolumeMsg:
		m.volumePct = msg.Pct
		m.suppressed = msg.Suppressed
		m.hasVolume = true

	case CalProgressMsg:
		m.calActive = true
		m.calProgress = msg.P
		m.calResult = ""

	case CalDoneMsg:
		m.calActive = false
		if msg.Err != nil {
			m.calResult = "calibration failed: " + msg.Err.Error()
		} else {
			m.th.On = msg.Cal.On
			m.th.Off = msg.Cal.Off
			m.calResult = fmt.Sprintf("calibrated: on=%.3f off=%.3f", msg.Cal.On, msg.Cal.Off)
		}

	case StatusMsg:
		m.status = msg.Text
	}
	return m, nil
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString("grin " + version + "\n\n")

	// State line
	switch {
	case !m.enabled:
		b.WriteString(styleDisabled.Render("○ DISABLED"))
	case m.state == smile.Smiling:
		b.WriteString(styleSmiling.Render("● SMILING"))
	case m.absent:
		b.WriteString(styleAbsent.Render("○ NO FACE"))
	default:
		b.WriteString(styleQuiet.Render("○ quiet"))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderGauge())
	b.WriteString(fmt.Sprintf("  %.3f\n", m.score))
	b.WriteString(styleHelp.Render(m.renderGaugeLegend()) + "\n\n")

	if m.hasVolume {
		suffix := ""
		if m.suppressed {
			suffix = " (suppressed)"
		}
		b.WriteString(fmt.Sprintf("volume: %d%%%s\n", m.volumePct, suffix))
	}

	if m.calActive {
		p := m.calProgress
		if p.LeadIn {
			b.WriteString(styleCal.Render(fmt.Sprintf(
				"calibrating: hold a %s expression in %d...", p.Phase, int(p.Remaining.Seconds()+0.999))) + "\n")
		} else {
			b.WriteString(styleCal.Render(fmt.Sprintf(
				"calibrating: sampling %s, %.1fs left (%d samples)", p.Phase, p.Remaining.Seconds(), p.Samples)) + "\n")
		}
	} else if m.calResult != "" {
		style := styleCal
		if strings.HasPrefix(m.calResult, "calibration failed") {
			style = styleError
		}
		b.WriteString(style.Render(m.calResult) + "\n")
	}

	if m.status != "" {
		b.WriteString(styleError.Render(m.status) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(styleHelp.Render("e toggle · c calibrate · q quit (ctrl+shift+m toggles globally)"))
	return b.String()
}

// renderGauge draws the conditioned score as a bar with both hysteresis
// thresholds marked.
func (m tuiModel) renderGauge() string {
	fill := int(m.score*gaugeWidth + 0.5)
	if fill > gaugeWidth {
		fill = gaugeWidth
	}
	onPos := int(m.th.On * gaugeWidth)
	offPos := int(m.th.Off * gaugeWidth)

	fillStyle := styleGaugeOff
	if m.score >= m.th.On {
		fillStyle = styleGaugeOn
	} else if m.score > m.th.Off {
		fillStyle = styleGaugeMid
	}

	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < gaugeWidth; i++ {
		switch {
		case i == onPos || i == offPos:
			b.WriteString(styleMarker.Render("|"))
		case i < fill:
			b.WriteString(fillStyle.Render("█"))
		default:
			b.WriteString(styleGaugeOff.Render("·"))
		}
	}
	b.WriteString("]")
	return b.String()
}

func (m tuiModel) renderGaugeLegend() string {
	return fmt.Sprintf(" off=%.2f on=%.2f", m.th.Off, m.th.On)
}
