package connector

import (
	"context"
	"flag"
	"fmt"

	"github.com/hashicorp-forge/search-provisioner/internal/cmd/base"
)

type SyncCommand struct {
	*base.Command

	flagConfig string
}

func (c *SyncCommand) Synopsis() string {
	return "Update search servers with the cached subscription data"
}

func (c *SyncCommand) Help() string {
	return `Usage: search-provisioner connector sync -config=<path>

  This command saves every registered search server with the connector
  storage of the cached subscription.` +
		c.Flags().Help()
}

func (c *SyncCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("connector sync", flag.ContinueOnError))

	f.StringVar(
		&c.flagConfig, "config", "", "(Required) Path to the config file",
	)

	return f
}

func (c *SyncCommand) Run(args []string) int {
	ui := c.UI

	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	rt, err := c.LoadRuntime(c.flagConfig)
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	defer rt.Close()

	ok, err := rt.Syncer.Sync(context.Background())
	if err != nil {
		ui.Error(fmt.Sprintf("error synchronizing search servers: %v", err))
		return 1
	}
	if !ok {
		ui.Warn("The connector is disabled or has no valid subscription data.")
		return 1
	}

	ui.Info("Search servers synchronized.")
	return 0
}
