package config

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/search-provisioner/pkg/acquia"
	"github.com/hashicorp-forge/search-provisioner/pkg/database"
)

const fullConfig = `
api_host         = "https://api.example.com"
token_url        = "https://auth.example.com/token"
environment_name = env("TEST_SITE_ENVIRONMENT")
timeout          = "10s"

credentials "default" {
  client_id      = env("TEST_CLIENT_ID")
  client_secret  = "secret"
  application_id = "app-1"
  config_set_id  = "cs-1"
}

credentials "staging" {
  client_id      = "staging-id"
  client_secret  = "staging-secret"
  application_id = "app-2"
}

connector {
  enabled           = true
  subscription_uuid = "sub-1"
}

database {
  driver = "sqlite"
  path   = "/tmp/state.db"
}

polling {
  interval         = "2s"
  max_elapsed_time = "1m"
}
`

func writeConfig(t *testing.T, src string) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/provisioner/config.hcl", []byte(src), 0o644))
	return fs
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_SITE_ENVIRONMENT", "prod")
	t.Setenv("TEST_CLIENT_ID", "client-from-env")

	cfg, err := Load(writeConfig(t, fullConfig), "/etc/provisioner/config.hcl")
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.APIHost)
	assert.Equal(t, "https://auth.example.com/token", cfg.TokenURL)
	assert.Equal(t, "prod", cfg.EnvironmentName)
	assert.Equal(t, 10*time.Second, cfg.TimeoutDuration())
	assert.Equal(t, 2*time.Second, cfg.PollInterval())
	assert.Equal(t, time.Minute, cfg.PollMaxElapsedTime())

	assert.True(t, cfg.ConnectorConfig().Enabled)
	assert.Equal(t, "sub-1", cfg.ConnectorConfig().SubscriptionUUID)

	dbCfg := cfg.DatabaseConfig()
	assert.Equal(t, database.DriverSQLite, dbCfg.Driver)
	assert.Equal(t, "/tmp/state.db", dbCfg.Path)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""), "/etc/provisioner/config.hcl")
	require.NoError(t, err)

	assert.Equal(t, acquia.DefaultBaseURL, cfg.APIHost)
	assert.Equal(t, acquia.DefaultTokenURL, cfg.TokenURL)
	assert.Empty(t, cfg.EnvironmentName)
	assert.Equal(t, 30*time.Second, cfg.TimeoutDuration())
	assert.Equal(t, 5*time.Second, cfg.PollInterval())
	assert.Equal(t, 10*time.Minute, cfg.PollMaxElapsedTime())
	assert.False(t, cfg.ConnectorConfig().Enabled)
	assert.Equal(t, defaultDatabasePath, cfg.DatabaseConfig().Path)
}

func TestLoad_UnsetEnvironmentVariable(t *testing.T) {
	t.Setenv("TEST_SITE_ENVIRONMENT", "")

	cfg, err := Load(writeConfig(t, `environment_name = env("TEST_SITE_ENVIRONMENT")`), "/etc/provisioner/config.hcl")
	require.NoError(t, err)
	assert.Empty(t, cfg.EnvironmentName)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			name:    "invalid hcl",
			src:     `api_host = `,
			wantErr: "error decoding config file",
		},
		{
			name:    "bad api host scheme",
			src:     `api_host = "ftp://api.example.com"`,
			wantErr: "http or https",
		},
		{
			name:    "bad timeout",
			src:     `timeout = "soon"`,
			wantErr: "timeout",
		},
		{
			name:    "negative poll interval",
			src:     "polling {\n  interval = \"-1s\"\n}",
			wantErr: "must be positive",
		},
		{
			name:    "unknown database driver",
			src:     "database {\n  driver = \"mysql\"\n}",
			wantErr: "database",
		},
		{
			name:    "postgres without dbname",
			src:     "database {\n  driver = \"postgres\"\n}",
			wantErr: "dbname",
		},
		{
			name: "duplicate credentials",
			src: `
credentials "default" {
  client_id      = "a"
  client_secret  = "b"
  application_id = "c"
}
credentials "default" {
  client_id      = "d"
  client_secret  = "e"
  application_id = "f"
}`,
			wantErr: `duplicate credentials "default"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.src), "/etc/provisioner/config.hcl")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "/nope.hcl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLookup(t *testing.T) {
	t.Setenv("TEST_CLIENT_ID", "client-from-env")

	cfg, err := Load(writeConfig(t, fullConfig), "/etc/provisioner/config.hcl")
	require.NoError(t, err)

	creds, err := cfg.Lookup(DefaultCredentialsID)
	require.NoError(t, err)
	assert.Equal(t, acquia.Credentials{
		ClientID:      "client-from-env",
		ClientSecret:  "secret",
		ApplicationID: "app-1",
		ConfigSetID:   "cs-1",
	}, creds)

	creds, err = cfg.Lookup("staging")
	require.NoError(t, err)
	assert.Empty(t, creds.ConfigSetID)

	_, err = cfg.Lookup("missing")
	assert.True(t, errors.Is(err, ErrCredentialsNotFound))
}
