package version

import (
	"github.com/hashicorp-forge/search-provisioner/internal/cmd/base"
	"github.com/hashicorp-forge/search-provisioner/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the version"
}

func (c *Command) Help() string {
	return "Usage: search-provisioner version"
}

func (c *Command) Run(args []string) int {
	c.UI.Output(version.Version)
	return 0
}
