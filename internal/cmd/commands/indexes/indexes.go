package indexes

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/hashicorp-forge/search-provisioner/internal/cmd/base"
	"github.com/hashicorp-forge/search-provisioner/internal/config"
)

type Command struct {
	*base.Command

	flagConfig      string
	flagCredentials string
}

func (c *Command) Synopsis() string {
	return "List the search indexes of the current environment"
}

func (c *Command) Help() string {
	return `Usage: search-provisioner indexes -config=<path>

  This command lists the Acquia Search indexes of the environment the site
  runs in.` +
		c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("indexes", flag.ContinueOnError))

	f.StringVar(
		&c.flagConfig, "config", "", "(Required) Path to the config file",
	)
	f.StringVar(
		&c.flagCredentials, "credentials", config.DefaultCredentialsID,
		"Label of the credentials block to use",
	)

	return f
}

func (c *Command) Run(args []string) int {
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

	workflow, err := rt.Workflow()
	if err != nil {
		ui.Error(fmt.Sprintf("error initializing provisioner: %v", err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !workflow.SetAPICredentials(ctx, c.flagCredentials) {
		return 1
	}

	indexes, err := workflow.SearchIndexes(ctx)
	if err != nil {
		return 1
	}

	if len(indexes) == 0 {
		ui.Info("No search indexes found.")
		return 0
	}

	for _, index := range indexes {
		ui.Output(fmt.Sprintf("%s\t%s\t%s", index.ID, index.DatabaseRole, index.Status))
	}
	return 0
}
