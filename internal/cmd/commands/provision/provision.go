package provision

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/cenkalti/backoff/v4"

	"github.com/hashicorp-forge/search-provisioner/internal/cmd/base"
	"github.com/hashicorp-forge/search-provisioner/internal/config"
)

type Command struct {
	*base.Command

	flagConfig      string
	flagCredentials string
	flagDatabase    string
	flagWait        bool
}

func (c *Command) Synopsis() string {
	return "Create the Acquia Search index for a database"
}

func (c *Command) Help() string {
	return `Usage: search-provisioner provision -config=<path> -database=<name>

  This command resolves the current Acquia environment, and creates a search
  index for the database unless one already exists. The local connector data
  is synchronized before the index is requested.` +
		c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("provision", flag.ContinueOnError))

	f.StringVar(
		&c.flagConfig, "config", "", "(Required) Path to the config file",
	)
	f.StringVar(
		&c.flagCredentials, "credentials", config.DefaultCredentialsID,
		"Label of the credentials block to use",
	)
	f.StringVar(
		&c.flagDatabase, "database", "", "(Required) Database role to create an index for",
	)
	f.BoolVar(
		&c.flagWait, "wait", false,
		"Wait until index provisioning is no longer in progress.",
	)

	return f
}

func (c *Command) Run(args []string) int {
	ui := base.NewErrorTrackingUi(c.UI)
	cmd := base.NewCommand(c.Log, ui)

	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if c.flagDatabase == "" {
		ui.Error("database flag is required")
		return 1
	}

	rt, err := cmd.LoadRuntime(c.flagConfig)
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

	notificationURL := workflow.CreateSearchIndex(ctx, c.flagDatabase)
	if ui.Failed() {
		return 1
	}
	if notificationURL == "" || !c.flagWait {
		return 0
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = rt.Config.PollInterval()
	b.MaxElapsedTime = rt.Config.PollMaxElapsedTime()
	b.Reset()

	if err := workflow.WaitForIndex(ctx, notificationURL, b); err != nil {
		ui.Error(err.Error())
		return 1
	}
	if ui.Failed() {
		return 1
	}

	return 0
}
