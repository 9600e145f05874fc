package base

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
)

// Command is embedded by every subcommand and carries the shared logger and
// UI.
type Command struct {
	Log hclog.Logger
	UI  cli.Ui
}

// NewCommand returns a Command using log and ui.
func NewCommand(log hclog.Logger, ui cli.Ui) *Command {
	return &Command{
		Log: log,
		UI:  ui,
	}
}
