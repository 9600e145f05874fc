// Package connector keeps locally registered search servers in step with the
// Acquia connector subscription.
package connector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"gorm.io/gorm"

	"github.com/hashicorp-forge/search-provisioner/pkg/models"
)

// Config controls the connector integration.
type Config struct {
	// Enabled reports whether the connector integration is active.
	Enabled bool

	// SubscriptionUUID selects the cached subscription. The most recently
	// updated subscription is used when empty.
	SubscriptionUUID string

	// APIHost is used when the cached subscription does not carry one.
	APIHost string
}

// Syncer re-saves search server entities with the current subscription's
// connector storage.
type Syncer struct {
	db     *gorm.DB
	cfg    Config
	logger hclog.Logger
	now    func() time.Time
}

// NewSyncer creates a new connector syncer.
func NewSyncer(db *gorm.DB, cfg Config, logger hclog.Logger) (*Syncer, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Syncer{
		db:     db,
		cfg:    cfg,
		logger: logger.Named("connector"),
		now:    time.Now,
	}, nil
}

// Sync returns false without side effects when the integration is disabled or
// no valid subscription is cached. Otherwise every search server is saved with
// the subscription's connector storage. Save failures are collected and
// returned together.
func (s *Syncer) Sync(ctx context.Context) (bool, error) {
	if !s.cfg.Enabled {
		s.logger.Debug("connector integration is disabled")
		return false, nil
	}

	db := s.db.WithContext(ctx)

	sub, err := s.subscription(db)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Warn("no cached subscription data", "subscription_uuid", s.cfg.SubscriptionUUID)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error loading subscription: %w", err)
	}

	now := s.now()
	if !sub.IsValid(now) {
		s.logger.Warn("cached subscription data is incomplete or expired", "subscription_uuid", sub.UUID)
		return false, nil
	}

	storage := &models.ConnectorStorage{
		APIHost:          sub.APIHost,
		APIKey:           sub.APIKey,
		Identifier:       sub.Identifier,
		SubscriptionUUID: sub.UUID,
	}
	if storage.APIHost == "" {
		storage.APIHost = s.cfg.APIHost
	}

	servers, err := models.GetAllSearchServers(db)
	if err != nil {
		return false, fmt.Errorf("error listing search servers: %w", err)
	}

	var result *multierror.Error
	for i := range servers {
		server := &servers[i]
		if err := server.SetConnector(storage); err != nil {
			result = multierror.Append(result, fmt.Errorf("search server %q: %w", server.Name, err))
			continue
		}
		server.LastSyncedAt = &now

		if err := server.Save(db); err != nil {
			result = multierror.Append(result, fmt.Errorf("error saving search server %q: %w", server.Name, err))
			continue
		}
		s.logger.Debug("saved search server", "name", server.Name)
	}

	if err := result.ErrorOrNil(); err != nil {
		return false, err
	}

	s.logger.Info("synchronized search servers",
		"count", len(servers),
		"identifier", sub.Identifier,
	)
	return true, nil
}

// Register creates or updates a search server entity.
func (s *Syncer) Register(ctx context.Context, name, backend string) (*models.SearchServer, error) {
	server := &models.SearchServer{
		Name:    name,
		Backend: backend,
	}
	if err := server.Upsert(s.db.WithContext(ctx)); err != nil {
		return nil, fmt.Errorf("error registering search server: %w", err)
	}
	return server, nil
}

// CacheSubscription stores subscription data for later syncs.
func (s *Syncer) CacheSubscription(ctx context.Context, sub *models.Subscription) error {
	if err := sub.Upsert(s.db.WithContext(ctx)); err != nil {
		return fmt.Errorf("error caching subscription: %w", err)
	}
	return nil
}

func (s *Syncer) subscription(db *gorm.DB) (*models.Subscription, error) {
	sub := &models.Subscription{}
	if s.cfg.SubscriptionUUID != "" {
		return sub, sub.GetByUUID(db, s.cfg.SubscriptionUUID)
	}
	return sub, sub.GetLatest(db)
}
