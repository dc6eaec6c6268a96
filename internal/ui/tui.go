// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program for the intensity meter
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Meter is a running intensity meter program.
type Meter struct {
	prog *tea.Program

	// Quit is closed when the user quits the meter.
	Quit chan struct{}
}

// Run starts the meter in the alternate screen. The caller owns the returned
// Meter and should watch Quit for user-initiated shutdown.
func Run() *Meter {
	quit := make(chan struct{})
	prog := tea.NewProgram(Model{state: "starting", quit: quit}, tea.WithAltScreen())
	go func() { _, _ = prog.Run() }()
	return &Meter{prog: prog, Quit: quit}
}

// SetIntensity publishes a dispatched intensity. Non-blocking.
func (m *Meter) SetIntensity(v float64) {
	m.prog.Send(IntensityMsg{Intensity: v})
}

// SetLevel publishes the filtered signal level seen at the tap. Non-blocking.
func (m *Meter) SetLevel(v float64) {
	m.prog.Send(LevelMsg{Level: v})
}

// SetStatus publishes session information. Non-blocking.
func (m *Meter) SetStatus(msg StatusMsg) {
	m.prog.Send(msg)
}

// Stop tears the meter down.
func (m *Meter) Stop() {
	m.prog.Quit()
}
