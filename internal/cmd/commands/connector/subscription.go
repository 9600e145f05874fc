package connector

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/hashicorp-forge/search-provisioner/internal/cmd/base"
	"github.com/hashicorp-forge/search-provisioner/pkg/models"
)

type SubscriptionCommand struct {
	*base.Command

	flagConfig     string
	flagUUID       string
	flagIdentifier string
	flagAPIKey     string
	flagAPIHost    string
	flagExpires    string
}

func (c *SubscriptionCommand) Synopsis() string {
	return "Cache Acquia subscription data for the connector"
}

func (c *SubscriptionCommand) Help() string {
	return `Usage: search-provisioner connector subscription -config=<path> [options]

  This command stores the subscription data that search servers are
  configured with. An existing subscription with the same UUID is updated.` +
		c.Flags().Help()
}

func (c *SubscriptionCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("connector subscription", flag.ContinueOnError))

	f.StringVar(
		&c.flagConfig, "config", "", "(Required) Path to the config file",
	)
	f.StringVar(
		&c.flagUUID, "uuid", "", "(Required) Subscription UUID",
	)
	f.StringVar(
		&c.flagIdentifier, "identifier", "", "(Required) Subscription identifier",
	)
	f.StringVar(
		&c.flagAPIKey, "api-key", "", "(Required) Subscription key",
	)
	f.StringVar(
		&c.flagAPIHost, "api-host", "", "Connector API host",
	)
	f.StringVar(
		&c.flagExpires, "expires", "",
		"Expiration time of the cached data in RFC 3339 format (e.g., 2030-01-02T15:04:05Z)",
	)

	return f
}

func (c *SubscriptionCommand) Run(args []string) int {
	ui := c.UI

	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	sub := &models.Subscription{
		UUID:       c.flagUUID,
		Identifier: c.flagIdentifier,
		APIKey:     c.flagAPIKey,
		APIHost:    c.flagAPIHost,
	}
	if c.flagExpires != "" {
		expires, err := time.Parse(time.RFC3339, c.flagExpires)
		if err != nil {
			ui.Error(fmt.Sprintf("invalid expires value: %v", err))
			return 1
		}
		sub.ExpiresAt = &expires
	}

	rt, err := c.LoadRuntime(c.flagConfig)
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	defer rt.Close()

	if err := rt.Syncer.CacheSubscription(context.Background(), sub); err != nil {
		ui.Error(err.Error())
		return 1
	}

	ui.Info(fmt.Sprintf("Cached subscription %q.", sub.Identifier))
	return 0
}
