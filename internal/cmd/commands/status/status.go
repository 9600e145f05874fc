package status

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
	return "Check whether a search index is still being provisioned"
}

func (c *Command) Help() string {
	return `Usage: search-provisioner status -config=<path> <notification-url>

  This command polls the notification returned when a search index was
  requested, once, and reports whether provisioning is still in progress.
  It exits with status 2 while provisioning is in progress, and with status 1
  when the notification could not be fetched.` +
		c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("status", flag.ContinueOnError))

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
	ui := base.NewErrorTrackingUi(c.UI)
	cmd := base.NewCommand(c.Log, ui)

	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if flags.NArg() != 1 {
		ui.Error("expected exactly one argument: the notification URL")
		return 1
	}
	notificationURL := flags.Arg(0)

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

	inProgress := workflow.CheckIndexStatus(ctx, notificationURL)
	if ui.Failed() {
		return 1
	}
	if inProgress {
		ui.Output("Search index provisioning is in progress.")
		return 2
	}

	ui.Output("Search index provisioning is not in progress.")
	return 0
}
