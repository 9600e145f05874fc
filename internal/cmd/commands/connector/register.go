package connector

import (
	"context"
	"flag"
	"fmt"

	"github.com/hashicorp-forge/search-provisioner/internal/cmd/base"
	"github.com/hashicorp-forge/search-provisioner/pkg/models"
)

type RegisterCommand struct {
	*base.Command

	flagConfig  string
	flagName    string
	flagBackend string
}

func (c *RegisterCommand) Synopsis() string {
	return "Register a local search server"
}

func (c *RegisterCommand) Help() string {
	return `Usage: search-provisioner connector register -config=<path> -name=<name>

  This command creates or updates a search server entity. Registered servers
  receive the connector storage on every sync.` +
		c.Flags().Help()
}

func (c *RegisterCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("connector register", flag.ContinueOnError))

	f.StringVar(
		&c.flagConfig, "config", "", "(Required) Path to the config file",
	)
	f.StringVar(
		&c.flagName, "name", "", "(Required) Unique search server name",
	)
	f.StringVar(
		&c.flagBackend, "backend", models.DefaultSearchServerBackend, "Search backend plugin",
	)

	return f
}

func (c *RegisterCommand) Run(args []string) int {
	ui := c.UI

	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if c.flagName == "" {
		ui.Error("name flag is required")
		return 1
	}

	rt, err := c.LoadRuntime(c.flagConfig)
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	defer rt.Close()

	server, err := rt.Syncer.Register(context.Background(), c.flagName, c.flagBackend)
	if err != nil {
		ui.Error(err.Error())
		return 1
	}

	ui.Info(fmt.Sprintf("Registered search server %q (%s).", server.Name, server.ID))
	return 0
}
