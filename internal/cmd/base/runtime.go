package base

import (
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"github.com/hashicorp-forge/search-provisioner/internal/config"
	"github.com/hashicorp-forge/search-provisioner/pkg/connector"
	"github.com/hashicorp-forge/search-provisioner/pkg/database"
	"github.com/hashicorp-forge/search-provisioner/pkg/provisioner"
)

// Runtime holds the dependencies shared by commands that talk to the local
// store or the Acquia Cloud API.
type Runtime struct {
	Config *config.Config
	DB     *gorm.DB
	Syncer *connector.Syncer

	cmd *Command
}

// LoadRuntime parses the config file at configPath and opens the local store.
// Callers must Close the returned Runtime.
func (c *Command) LoadRuntime(configPath string) (*Runtime, error) {
	if configPath == "" {
		return nil, fmt.Errorf("config flag is required")
	}

	cfg, err := config.NewConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	db, err := database.Connect(cfg.DatabaseConfig(), c.Log)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	syncer, err := connector.NewSyncer(db, cfg.ConnectorConfig(), c.Log)
	if err != nil {
		closeDB(db)
		return nil, fmt.Errorf("error initializing connector: %w", err)
	}

	return &Runtime{
		Config: cfg,
		DB:     db,
		Syncer: syncer,
		cmd:    c,
	}, nil
}

// Workflow builds a provisioner workflow from the runtime's configuration.
func (r *Runtime) Workflow() (*provisioner.Workflow, error) {
	return provisioner.New(provisioner.Options{
		BaseURL:         r.Config.APIHost,
		TokenURL:        r.Config.TokenURL,
		EnvironmentName: r.Config.EnvironmentName,
		Credentials:     r.Config,
		Connector:       r.Syncer,
		HTTPClient: &http.Client{
			Timeout: r.Config.TimeoutDuration(),
		},
		Logger: r.cmd.Log,
		UI:     r.cmd.UI,
	})
}

// Close releases the database connection.
func (r *Runtime) Close() {
	closeDB(r.DB)
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
