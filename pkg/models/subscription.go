package models

import (
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"
)

// Subscription is the locally cached Acquia subscription data the connector
// needs to configure search servers.
type Subscription struct {
	gorm.Model

	// UUID is the subscription UUID.
	UUID string `gorm:"type:varchar(64);uniqueIndex;not null"`

	// Identifier is the subscription identifier (e.g., "ABCD-12345").
	Identifier string `gorm:"type:varchar(255);not null"`

	// APIKey is the subscription key used to derive search credentials.
	APIKey string `gorm:"type:varchar(255);not null"`

	// APIHost is the connector API host the subscription was fetched from.
	APIHost string `gorm:"type:varchar(1024)"`

	// ExpiresAt is when the cached data must be refreshed (nil = no expiration).
	ExpiresAt *time.Time
}

// Upsert creates or updates a subscription by UUID.
func (s *Subscription) Upsert(db *gorm.DB) error {
	if err := validation.ValidateStruct(s,
		validation.Field(&s.UUID, validation.Required),
		validation.Field(&s.Identifier, validation.Required),
		validation.Field(&s.APIKey, validation.Required),
	); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	existing := &Subscription{}
	err := existing.GetByUUID(db, s.UUID)
	switch {
	case err == nil:
		s.ID = existing.ID
		s.CreatedAt = existing.CreatedAt
		return db.Save(s).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		return db.Create(s).Error
	}

	return fmt.Errorf("error checking for existing subscription: %w", err)
}

// GetByUUID retrieves a subscription by UUID.
func (s *Subscription) GetByUUID(db *gorm.DB, subscriptionUUID string) error {
	if err := validation.Validate(subscriptionUUID, validation.Required); err != nil {
		return err
	}

	return db.
		Where("uuid = ?", subscriptionUUID).
		First(s).
		Error
}

// GetLatest retrieves the most recently updated subscription.
func (s *Subscription) GetLatest(db *gorm.DB) error {
	return db.
		Order("updated_at DESC").
		First(s).
		Error
}

// IsValid checks the cached data is complete and not expired.
func (s *Subscription) IsValid(now time.Time) bool {
	if s.UUID == "" || s.Identifier == "" || s.APIKey == "" {
		return false
	}

	if s.ExpiresAt != nil && now.After(*s.ExpiresAt) {
		return false
	}

	return true
}
