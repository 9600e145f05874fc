package connector

import (
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/search-provisioner/internal/cmd/base"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Manage local connector and search server data"
}

func (c *Command) Help() string {
	return `Usage: search-provisioner connector <subcommand> [options] [args]

  This command groups subcommands for the local Acquia connector data used
  before a search index is created.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}
