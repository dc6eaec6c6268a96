// ABOUTME: Bubbletea model for the live intensity meter
// ABOUTME: Shows dispatched intensity, device names, and session info
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

const meterWidth = 40

// IntensityMsg carries one dispatched intensity value in [0, 1].
type IntensityMsg struct {
	Intensity float64
}

// LevelMsg carries the low-passed signal level observed at the tap.
type LevelMsg struct {
	Level float64
}

// StatusMsg updates static session information.
type StatusMsg struct {
	ServerName string
	AudioName  string
	Devices    []string
	State      string
}

// Model represents the meter state.
type Model struct {
	serverName string
	audioName  string
	devices    []string
	state      string
	intensity  float64
	peak       float64
	level      float64

	width  int
	height int

	quit chan struct{}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			// Further quit keys may arrive before shutdown completes;
			// only the first one closes the channel.
			if m.quit != nil {
				close(m.quit)
				m.quit = nil
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case IntensityMsg:
		m.intensity = msg.Intensity
		if msg.Intensity > m.peak {
			m.peak = msg.Intensity
		}
	case LevelMsg:
		m.level = msg.Level
	case StatusMsg:
		if msg.ServerName != "" {
			m.serverName = msg.ServerName
		}
		if msg.AudioName != "" {
			m.audioName = msg.AudioName
		}
		if len(msg.Devices) > 0 {
			m.devices = msg.Devices
		}
		if msg.State != "" {
			m.state = msg.State
		}
	}

	return m, nil
}

// View renders the meter.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString("  subwoofer\n\n")
	b.WriteString(fmt.Sprintf("  server: %s\n", m.serverName))
	b.WriteString(fmt.Sprintf("  audio:  %s\n", m.audioName))
	b.WriteString(fmt.Sprintf("  state:  %s\n\n", m.state))

	b.WriteString(fmt.Sprintf("  signal    %s %.3f\n", renderBar(m.level), m.level))
	b.WriteString(fmt.Sprintf("  intensity %s %.2f (peak %.2f)\n\n",
		renderBar(m.intensity), m.intensity, m.peak))

	b.WriteString("  devices:\n")
	for _, d := range m.devices {
		b.WriteString(fmt.Sprintf("   - %s\n", d))
	}

	b.WriteString("\n  q: quit\n")
	return b.String()
}

// renderBar draws a fixed-width level bar for a value in [0, 1].
func renderBar(v float64) string {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	filled := int(v*meterWidth + 0.5)
	return "[" + strings.Repeat("█", filled) + strings.Repeat(" ", meterWidth-filled) + "]"
}
