// Package provisioner creates Acquia Search indexes for a site's database and
// tracks their provisioning.
//
// A Workflow is driven in four steps:
//
//  1. SetAPICredentials loads the named credentials and resolves the
//     environment the site runs in.
//  2. CreateSearchIndex checks the environment's indexes and, when none exists
//     for the database role, synchronizes the local connector and requests one.
//  3. CheckIndexStatus polls the notification URL returned by the create call.
//  4. WaitForIndex repeats CheckIndexStatus under a caller-supplied backoff.
//
// A Workflow is not safe for concurrent use.
package provisioner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/search-provisioner/pkg/acquia"
)

var (
	// ErrMissingEnvironmentName is returned when no environment name was
	// configured.
	ErrMissingEnvironmentName = errors.New("environment name is not set")

	// ErrEnvironmentNotFound is returned when the application has no
	// environment with the configured name.
	ErrEnvironmentNotFound = errors.New("environment not found")

	// ErrNoCredentials is returned when an operation needs an API client but
	// SetAPICredentials has not succeeded.
	ErrNoCredentials = errors.New("API credentials are not set")
)

// CredentialStore resolves credentials by configuration id.
type CredentialStore interface {
	Lookup(configID string) (acquia.Credentials, error)
}

// ConnectorSyncer synchronizes local search server entities with the
// connector subscription. It returns false when the connector is not usable.
type ConnectorSyncer interface {
	Sync(ctx context.Context) (bool, error)
}

// Options configures a Workflow.
type Options struct {
	// BaseURL and TokenURL override the Acquia Cloud endpoints.
	BaseURL  string
	TokenURL string

	// EnvironmentName is the name of the environment the site runs in.
	EnvironmentName string

	Credentials CredentialStore
	Connector   ConnectorSyncer

	HTTPClient *http.Client
	Logger     hclog.Logger

	// UI receives the user-facing status and error messages.
	UI cli.Ui
}

// Workflow provisions a search index for the current environment.
type Workflow struct {
	baseURL         string
	tokenURL        string
	environmentName string
	credentials     CredentialStore
	connector       ConnectorSyncer
	httpClient      *http.Client
	logger          hclog.Logger
	ui              cli.Ui

	client        *acquia.Client
	environmentID string
}

// New creates a new Workflow.
func New(opts Options) (*Workflow, error) {
	if opts.Credentials == nil {
		return nil, fmt.Errorf("credential store is required")
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	if opts.UI == nil {
		opts.UI = &cli.BasicUi{Writer: io.Discard, ErrorWriter: io.Discard}
	}

	return &Workflow{
		baseURL:         opts.BaseURL,
		tokenURL:        opts.TokenURL,
		environmentName: opts.EnvironmentName,
		credentials:     opts.Credentials,
		connector:       opts.Connector,
		httpClient:      opts.HTTPClient,
		logger:          opts.Logger.Named("provisioner"),
		ui:              opts.UI,
	}, nil
}

// EnvironmentIDResolved returns the environment id stored by
// SetAPICredentials.
func (w *Workflow) EnvironmentIDResolved() string {
	return w.environmentID
}

// SetAPICredentials loads the credentials stored under configID, builds the
// API client, and resolves the environment id. It returns false after
// reporting the problem to the UI when any step fails; the workflow then has
// no client and no environment id.
func (w *Workflow) SetAPICredentials(ctx context.Context, configID string) bool {
	w.client = nil
	w.environmentID = ""

	if configID == "" {
		w.ui.Error("No Acquia Search API credentials are configured.")
		return false
	}

	creds, err := w.credentials.Lookup(configID)
	if err != nil {
		w.logger.Error("error loading API credentials", "config_id", configID, "error", err)
		w.ui.Error(fmt.Sprintf("Unable to load Acquia Search API credentials %q: %v", configID, err))
		return false
	}

	client, err := acquia.NewClient(acquia.Config{
		BaseURL:     w.baseURL,
		TokenURL:    w.tokenURL,
		Credentials: creds,
		HTTPClient:  w.httpClient,
		Logger:      w.logger,
	})
	if err != nil {
		w.logger.Error("error creating API client", "config_id", configID, "error", err)
		w.ui.Error(fmt.Sprintf("Invalid Acquia Search API credentials %q: %v", configID, err))
		return false
	}

	envID, err := w.lookupEnvironment(ctx, client)
	if err != nil {
		return false
	}
	w.client = client
	w.environmentID = envID

	w.logger.Debug("resolved environment",
		"environment", w.environmentName,
		"environment_id", envID,
	)
	return true
}

// EnvironmentID finds the id of the first environment of the application
// whose name matches the configured environment name. It returns
// ErrEnvironmentNotFound when there is no match; request failures are
// returned as *acquia.TransportError or *acquia.UnexpectedStatusError.
func (w *Workflow) EnvironmentID(ctx context.Context) (string, error) {
	return w.lookupEnvironment(ctx, w.client)
}

func (w *Workflow) lookupEnvironment(ctx context.Context, client *acquia.Client) (string, error) {
	if w.environmentName == "" {
		w.ui.Error("The environment name is not set; cannot determine the Acquia environment.")
		return "", ErrMissingEnvironmentName
	}
	if client == nil {
		w.ui.Error("Acquia Search API credentials are not set.")
		return "", ErrNoCredentials
	}

	envs, err := client.ListEnvironments(ctx)
	if err != nil {
		w.reportAPIError("list environments", err)
		return "", err
	}

	for _, env := range envs {
		if env.Name == w.environmentName {
			return env.ID, nil
		}
	}

	w.logger.Warn("environment not found",
		"environment", w.environmentName,
		"application_id", client.Credentials().ApplicationID,
		"environments", len(envs),
	)
	w.ui.Error(fmt.Sprintf("Environment %q was not found in the Acquia application.", w.environmentName))
	return "", ErrEnvironmentNotFound
}

// reportAPIError logs a failed API call and surfaces a user message.
func (w *Workflow) reportAPIError(action string, err error) {
	var statusErr *acquia.UnexpectedStatusError
	if errors.As(err, &statusErr) {
		w.logger.Error("unexpected response from Acquia Cloud API",
			"action", action,
			"status", statusErr.StatusCode,
			"expected", statusErr.Expected,
			"body", statusErr.Body,
		)
		w.ui.Error(fmt.Sprintf("Acquia Cloud API returned HTTP %d while trying to %s.", statusErr.StatusCode, action))
		return
	}

	w.logger.Error("Acquia Cloud API request failed", "action", action, "error", err.Error())
	w.ui.Error(fmt.Sprintf("Unable to %s. Check the logs for details.", action))
}
