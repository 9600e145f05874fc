package base

import "github.com/mitchellh/cli"

// ErrorTrackingUi wraps a cli.Ui and records whether an error was reported.
// Workflow steps report failures through the UI rather than returned errors.
type ErrorTrackingUi struct {
	cli.Ui

	failed bool
}

// NewErrorTrackingUi returns an ErrorTrackingUi writing to ui.
func NewErrorTrackingUi(ui cli.Ui) *ErrorTrackingUi {
	return &ErrorTrackingUi{Ui: ui}
}

func (u *ErrorTrackingUi) Error(message string) {
	u.failed = true
	u.Ui.Error(message)
}

// Failed reports whether Error was called.
func (u *ErrorTrackingUi) Failed() bool {
	return u.failed
}
