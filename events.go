package main

import "grin/smile"

// Messages flowing from the control loop to the presentation layer. The
// same types serve the Bubble Tea TUI, the tray dispatcher, and the
// headless test driver.

type ScoreMsg struct {
	Score  float64
	Absent bool
}

type StateMsg struct{ State smile.State }

type EnabledMsg struct{ Enabled bool }

type VolumeMsg struct {
	Pct        int
	Suppressed bool
}

type CalProgressMsg struct{ P smile.Progress }

type CalDoneMsg struct {
	Cal smile.Calibration
	Err error
}

type StatusMsg struct{ Text string }
