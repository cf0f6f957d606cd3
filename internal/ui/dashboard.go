package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bytescribe/fuzz/pkg/types"
)

// Status is the dashboard's view of whether the run is still going.
type Status int

const (
	StatusRunning Status = iota
	StatusStopped
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "Running"
	case StatusStopped:
		return "Stopped"
	case StatusCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// LogEntry is one line in the dashboard's activity log.
type LogEntry struct {
	Time    time.Time
	Level   string
	Message string
}

// Dashboard is a bubbletea model rendering a live ProgressSnapshot
// stream from the fuzzing engine, plus a scrolling activity log.
type Dashboard struct {
	width, height int
	status        Status
	maxIterations int

	snapshot types.ProgressSnapshot
	progress *ProgressBar

	logs    []LogEntry
	maxLogs int

	updates <-chan types.ProgressSnapshot
}

// TickMsg drives the animation frame rate.
type TickMsg time.Time

// snapshotMsg carries a new ProgressSnapshot into Update.
type snapshotMsg types.ProgressSnapshot

// NewDashboard builds a dashboard that reads progress off updates
// until the channel closes.
func NewDashboard(maxIterations int, updates <-chan types.ProgressSnapshot) *Dashboard {
	return &Dashboard{
		width:         80,
		height:        24,
		status:        StatusRunning,
		maxIterations: maxIterations,
		progress:      NewProgressBar(60),
		logs:          make([]LogEntry, 0, 64),
		maxLogs:       12,
		updates:       updates,
	}
}

// AddLog appends one activity-log line, trimming the oldest entries
// past maxLogs.
func (d *Dashboard) AddLog(level, message string) {
	d.logs = append(d.logs, LogEntry{Time: time.Now(), Level: level, Message: message})
	if len(d.logs) > d.maxLogs {
		d.logs = d.logs[len(d.logs)-d.maxLogs:]
	}
}

func (d *Dashboard) Init() tea.Cmd {
	return tea.Batch(tickCmd(), waitForSnapshot(d.updates), tea.EnterAltScreen)
}

func tickCmd() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func waitForSnapshot(ch <-chan types.ProgressSnapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return tea.Quit()
		}
		return snapshotMsg(snap)
	}
}

func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			d.status = StatusStopped
			return d, tea.Quit
		}

	case tea.WindowSizeMsg:
		d.width, d.height = msg.Width, msg.Height

	case snapshotMsg:
		d.snapshot = types.ProgressSnapshot(msg)
		if d.snapshot.CrashCount > 0 {
			d.AddLog("CRASH", fmt.Sprintf("%d distinct crashes found", d.snapshot.CrashCount))
		}
		return d, waitForSnapshot(d.updates)

	case TickMsg:
		return d, tickCmd()
	}

	return d, nil
}

func (d *Dashboard) View() string {
	if d.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(d.renderHeader())
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, d.renderStatsPanel(), d.renderLogPanel()))
	b.WriteString("\n")
	b.WriteString(d.renderProgress())
	b.WriteString("\n")
	b.WriteString(FooterStyle.Render(RenderHelp("q", "quit")))
	return b.String()
}

func (d *Dashboard) renderHeader() string {
	title := TitleStyle.Render("bytescribe-fuzz")
	var statusText string
	switch d.status {
	case StatusRunning:
		statusText = RunningStyle.Render("● RUNNING")
	case StatusCompleted:
		statusText = RunningStyle.Render("✓ COMPLETED")
	default:
		statusText = StoppedStyle.Render("■ STOPPED")
	}
	return title + "  " + statusText
}

func (d *Dashboard) renderStatsPanel() string {
	var b strings.Builder
	b.WriteString(RenderLabelValue("Iteration", fmt.Sprintf("%d", d.snapshot.Iteration)))
	b.WriteString("\n")
	b.WriteString(RenderLabelValue("Corpus size", fmt.Sprintf("%d", d.snapshot.CorpusSize)))
	b.WriteString("\n")
	b.WriteString(RenderLabelValue("Covered edges", fmt.Sprintf("%d", d.snapshot.CoveredEdges)))
	b.WriteString("\n")
	b.WriteString(RenderLabelValue("Crashes", fmt.Sprintf("%d", d.snapshot.CrashCount)))
	b.WriteString("\n")
	b.WriteString(RenderLabelValue("Execs/sec", fmt.Sprintf("%.1f", d.snapshot.ExecsPerSec)))
	return PanelStyle.Width(36).Render(b.String())
}

func (d *Dashboard) renderLogPanel() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Activity"))
	b.WriteString("\n\n")
	for _, l := range d.logs {
		style := HelpStyle
		if l.Level == "CRASH" {
			style = CrashStyle
		}
		b.WriteString(fmt.Sprintf("%s %s\n", HelpStyle.Render(l.Time.Format("15:04:05")), style.Render(l.Message)))
	}
	return LogPanelStyle.Width(d.width/2 - 4).Render(b.String())
}

func (d *Dashboard) renderProgress() string {
	fraction := 0.0
	if d.maxIterations > 0 {
		fraction = float64(d.snapshot.Iteration) / float64(d.maxIterations)
	}
	return d.progress.Render(fraction)
}

// Run starts the TUI event loop, blocking until the user quits or the
// snapshot channel closes.
func Run(d *Dashboard) error {
	p := tea.NewProgram(d, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
