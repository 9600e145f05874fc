package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SearchServer is a locally registered search server configuration. Servers
// using the Acquia Search backend carry the connector storage settings they
// authenticate with.
type SearchServer struct {
	// ID is the unique server identifier (UUID).
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Name is the machine name of the server (e.g., "acquia_search_server").
	Name string `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`

	// Backend identifies the search backend plugin.
	Backend string `gorm:"type:varchar(100);not null;default:'search_api_solr'" json:"backend"`

	// Status is enabled or disabled.
	Status string `gorm:"type:varchar(50);not null;default:'enabled'" json:"status"`

	// ConnectorJSON stores the serialized ConnectorStorage.
	ConnectorJSON string `gorm:"type:text" json:"-"`

	// LastSyncedAt is when the connector settings were last re-saved.
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
}

// SearchServer status constants
const (
	SearchServerStatusEnabled  = "enabled"
	SearchServerStatusDisabled = "disabled"
)

// DefaultSearchServerBackend is the backend assigned when none is given.
const DefaultSearchServerBackend = "search_api_solr"

// ConnectorStorage holds the Acquia connector settings a search server uses to
// reach its index.
type ConnectorStorage struct {
	APIHost          string `json:"api_host"`
	APIKey           string `json:"api_key"`
	Identifier       string `json:"identifier"`
	SubscriptionUUID string `json:"subscription_uuid"`
}

// BeforeCreate hook to generate UUID if not set.
func (s *SearchServer) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *SearchServer) validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Name, validation.Required),
		validation.Field(&s.Backend, validation.Required),
		validation.Field(&s.Status, validation.Required,
			validation.In(SearchServerStatusEnabled, SearchServerStatusDisabled)),
	)
}

// Create creates a new search server in the database.
func (s *SearchServer) Create(db *gorm.DB) error {
	if s.Backend == "" {
		s.Backend = DefaultSearchServerBackend
	}
	if s.Status == "" {
		s.Status = SearchServerStatusEnabled
	}
	if err := s.validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	return db.Create(s).Error
}

// GetByName retrieves a search server by name.
func (s *SearchServer) GetByName(db *gorm.DB, name string) error {
	if err := validation.Validate(name, validation.Required); err != nil {
		return err
	}

	return db.
		Where("name = ?", name).
		First(s).
		Error
}

// Save persists all fields of an existing search server.
func (s *SearchServer) Save(db *gorm.DB) error {
	if s.ID == uuid.Nil {
		return errors.New("search server ID is required")
	}
	if err := s.validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	return db.Save(s).Error
}

// Upsert creates or updates a search server by name.
func (s *SearchServer) Upsert(db *gorm.DB) error {
	existing := &SearchServer{}
	err := existing.GetByName(db, s.Name)
	switch {
	case err == nil:
		s.ID = existing.ID
		s.CreatedAt = existing.CreatedAt
		if s.Backend == "" {
			s.Backend = existing.Backend
		}
		if s.Status == "" {
			s.Status = existing.Status
		}
		if s.ConnectorJSON == "" {
			s.ConnectorJSON = existing.ConnectorJSON
		}
		if s.LastSyncedAt == nil {
			s.LastSyncedAt = existing.LastSyncedAt
		}
		return s.Save(db)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.Create(db)
	}

	return fmt.Errorf("error checking for existing search server: %w", err)
}

// GetAllSearchServers retrieves all search servers ordered by name.
func GetAllSearchServers(db *gorm.DB) ([]SearchServer, error) {
	var servers []SearchServer
	err := db.
		Order("name ASC").
		Find(&servers).
		Error
	return servers, err
}

// GetConnector deserializes the ConnectorJSON field.
func (s *SearchServer) GetConnector() (*ConnectorStorage, error) {
	if s.ConnectorJSON == "" {
		return &ConnectorStorage{}, nil
	}

	var data ConnectorStorage
	if err := json.Unmarshal([]byte(s.ConnectorJSON), &data); err != nil {
		return nil, fmt.Errorf("error unmarshaling connector JSON: %w", err)
	}
	return &data, nil
}

// SetConnector serializes connector settings to the ConnectorJSON field.
func (s *SearchServer) SetConnector(data *ConnectorStorage) error {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("error marshaling connector to JSON: %w", err)
	}
	s.ConnectorJSON = string(jsonBytes)
	return nil
}
