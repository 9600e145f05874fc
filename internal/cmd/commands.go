package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/search-provisioner/internal/cmd/base"
	"github.com/hashicorp-forge/search-provisioner/internal/cmd/commands/connector"
	"github.com/hashicorp-forge/search-provisioner/internal/cmd/commands/indexes"
	"github.com/hashicorp-forge/search-provisioner/internal/cmd/commands/provision"
	"github.com/hashicorp-forge/search-provisioner/internal/cmd/commands/status"
	"github.com/hashicorp-forge/search-provisioner/internal/cmd/commands/version"
)

// Commands is the mapping of all available commands.
var Commands map[string]cli.CommandFactory

func initCommands(log hclog.Logger, ui cli.Ui) {
	b := base.NewCommand(log, ui)

	Commands = map[string]cli.CommandFactory{
		"provision": func() (cli.Command, error) {
			return &provision.Command{Command: b}, nil
		},
		"status": func() (cli.Command, error) {
			return &status.Command{Command: b}, nil
		},
		"indexes": func() (cli.Command, error) {
			return &indexes.Command{Command: b}, nil
		},
		"connector": func() (cli.Command, error) {
			return &connector.Command{Command: b}, nil
		},
		"connector sync": func() (cli.Command, error) {
			return &connector.SyncCommand{Command: b}, nil
		},
		"connector register": func() (cli.Command, error) {
			return &connector.RegisterCommand{Command: b}, nil
		},
		"connector subscription": func() (cli.Command, error) {
			return &connector.SubscriptionCommand{Command: b}, nil
		},
		"version": func() (cli.Command, error) {
			return &version.Command{Command: b}, nil
		},
	}
}
