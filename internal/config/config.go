package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/hashicorp-forge/search-provisioner/pkg/acquia"
	"github.com/hashicorp-forge/search-provisioner/pkg/connector"
	"github.com/hashicorp-forge/search-provisioner/pkg/database"
)

// ErrCredentialsNotFound is returned by Lookup for an unknown config id.
var ErrCredentialsNotFound = errors.New("credentials not found")

const (
	defaultTimeout        = "30s"
	defaultDatabasePath   = ".search-provisioner/state.db"
	defaultPollInterval   = "5s"
	defaultPollMaxElapsed = "10m"
)

// DefaultCredentialsID is the credentials label used when none is given.
const DefaultCredentialsID = "default"

// Config is the search-provisioner configuration.
type Config struct {
	// APIHost is the Acquia Cloud API root.
	APIHost string `hcl:"api_host,optional"`

	// TokenURL is the OAuth2 client-credentials token endpoint.
	TokenURL string `hcl:"token_url,optional"`

	// EnvironmentName is the name of the environment this site runs in,
	// usually env("AH_SITE_ENVIRONMENT").
	EnvironmentName string `hcl:"environment_name,optional"`

	// Timeout for API requests (e.g., "30s").
	Timeout string `hcl:"timeout,optional"`

	// Credentials are API credential sets keyed by their label.
	Credentials []*Credentials `hcl:"credentials,block"`

	Connector *Connector `hcl:"connector,block"`
	Database  *Database  `hcl:"database,block"`
	Polling   *Polling   `hcl:"polling,block"`
}

// Credentials is an Acquia Cloud API credential set.
type Credentials struct {
	ID            string `hcl:"id,label"`
	ClientID      string `hcl:"client_id"`
	ClientSecret  string `hcl:"client_secret"`
	ApplicationID string `hcl:"application_id"`
	ConfigSetID   string `hcl:"config_set_id,optional"`
}

// Connector configures the Acquia connector integration.
type Connector struct {
	Enabled          bool   `hcl:"enabled,optional"`
	SubscriptionUUID string `hcl:"subscription_uuid,optional"`
	APIHost          string `hcl:"api_host,optional"`
}

// Database configures the local entity store.
type Database struct {
	Driver   string `hcl:"driver,optional"`
	Path     string `hcl:"path,optional"`
	Host     string `hcl:"host,optional"`
	Port     int    `hcl:"port,optional"`
	User     string `hcl:"user,optional"`
	Password string `hcl:"password,optional"`
	DBName   string `hcl:"dbname,optional"`
	SSLMode  string `hcl:"sslmode,optional"`
}

// Polling configures how long to wait for index provisioning.
type Polling struct {
	Interval       string `hcl:"interval,optional"`
	MaxElapsedTime string `hcl:"max_elapsed_time,optional"`
}

// NewConfig parses the HCL configuration file at path.
func NewConfig(path string) (*Config, error) {
	return Load(afero.NewOsFs(), path)
}

// Load parses the HCL configuration file at path on fs, applies defaults,
// and validates the result.
func Load(fs afero.Fs, path string) (*Config, error) {
	src, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := hclsimple.Decode(path, src, evalContext(), &cfg); err != nil {
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"env": envFunc,
		},
	}
}

// envFunc returns the value of an environment variable, or "" when unset.
var envFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "name", Type: cty.String},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		return cty.StringVal(os.Getenv(args[0].AsString())), nil
	},
})

func (c *Config) applyDefaults() {
	if c.APIHost == "" {
		c.APIHost = acquia.DefaultBaseURL
	}
	if c.TokenURL == "" {
		c.TokenURL = acquia.DefaultTokenURL
	}
	if c.Timeout == "" {
		c.Timeout = defaultTimeout
	}
	if c.Connector == nil {
		c.Connector = &Connector{}
	}
	if c.Database == nil {
		c.Database = &Database{}
	}
	if c.Database.Driver == "" {
		c.Database.Driver = database.DriverSQLite
	}
	if c.Database.Driver == database.DriverSQLite && c.Database.Path == "" {
		c.Database.Path = defaultDatabasePath
	}
	if c.Polling == nil {
		c.Polling = &Polling{}
	}
	if c.Polling.Interval == "" {
		c.Polling.Interval = defaultPollInterval
	}
	if c.Polling.MaxElapsedTime == "" {
		c.Polling.MaxElapsedTime = defaultPollMaxElapsed
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.APIHost, validation.Required, validation.By(httpURL)),
		validation.Field(&c.TokenURL, validation.Required, validation.By(httpURL)),
		validation.Field(&c.Timeout, validation.By(duration)),
		validation.Field(&c.Credentials, validation.By(uniqueCredentialIDs)),
	); err != nil {
		return err
	}

	if err := validation.ValidateStruct(c.Database,
		validation.Field(&c.Database.Driver, validation.In(database.DriverSQLite, database.DriverPostgres)),
		validation.Field(&c.Database.DBName, validation.When(c.Database.Driver == database.DriverPostgres, validation.Required)),
	); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := validation.ValidateStruct(c.Polling,
		validation.Field(&c.Polling.Interval, validation.By(duration)),
		validation.Field(&c.Polling.MaxElapsedTime, validation.By(duration)),
	); err != nil {
		return fmt.Errorf("polling: %w", err)
	}

	return nil
}

// Lookup returns the API credentials with the given label.
func (c *Config) Lookup(configID string) (acquia.Credentials, error) {
	for _, creds := range c.Credentials {
		if creds.ID == configID {
			return acquia.Credentials{
				ClientID:      creds.ClientID,
				ClientSecret:  creds.ClientSecret,
				ApplicationID: creds.ApplicationID,
				ConfigSetID:   creds.ConfigSetID,
			}, nil
		}
	}
	return acquia.Credentials{}, fmt.Errorf("%w: %q", ErrCredentialsNotFound, configID)
}

// TimeoutDuration returns the parsed API request timeout.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// PollInterval returns the parsed initial polling interval.
func (c *Config) PollInterval() time.Duration {
	d, _ := time.ParseDuration(c.Polling.Interval)
	return d
}

// PollMaxElapsedTime returns how long to keep polling before giving up.
func (c *Config) PollMaxElapsedTime() time.Duration {
	d, _ := time.ParseDuration(c.Polling.MaxElapsedTime)
	return d
}

// DatabaseConfig converts the database block to a database.Config.
func (c *Config) DatabaseConfig() database.Config {
	return database.Config{
		Driver:   c.Database.Driver,
		Path:     c.Database.Path,
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		User:     c.Database.User,
		Password: c.Database.Password,
		DBName:   c.Database.DBName,
		SSLMode:  c.Database.SSLMode,
	}
}

// ConnectorConfig converts the connector block to a connector.Config.
func (c *Config) ConnectorConfig() connector.Config {
	return connector.Config{
		Enabled:          c.Connector.Enabled,
		SubscriptionUUID: c.Connector.SubscriptionUUID,
		APIHost:          c.Connector.APIHost,
	}
}

func httpURL(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must use http or https scheme, got: %q", u.Scheme)
	}
	return nil
}

func duration(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("must be positive, got: %v", d)
	}
	return nil
}

func uniqueCredentialIDs(value interface{}) error {
	creds, _ := value.([]*Credentials)
	seen := make(map[string]bool, len(creds))
	for _, c := range creds {
		if seen[c.ID] {
			return fmt.Errorf("duplicate credentials %q", c.ID)
		}
		seen[c.ID] = true
	}
	return nil
}
