package models

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "models.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(ModelsToAutoMigrate()...))
	return db
}

func TestSearchServer_Create(t *testing.T) {
	db := newTestDB(t)

	t.Run("applies defaults", func(t *testing.T) {
		s := &SearchServer{Name: "acquia_search_server"}
		require.NoError(t, s.Create(db))

		assert.NotEqual(t, uuid.Nil, s.ID)
		assert.Equal(t, DefaultSearchServerBackend, s.Backend)
		assert.Equal(t, SearchServerStatusEnabled, s.Status)
	})

	t.Run("requires name", func(t *testing.T) {
		err := (&SearchServer{}).Create(db)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation error")
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		err := (&SearchServer{Name: "x", Status: "broken"}).Create(db)
		require.Error(t, err)
	})
}

func TestSearchServer_Upsert(t *testing.T) {
	db := newTestDB(t)

	first := &SearchServer{Name: "primary", Backend: "search_api_solr"}
	require.NoError(t, first.Upsert(db))

	second := &SearchServer{Name: "primary", Status: SearchServerStatusDisabled}
	require.NoError(t, second.Upsert(db))
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "search_api_solr", second.Backend)

	servers, err := GetAllSearchServers(db)
	require.NoError(t, err)
	require.Len(t, servers, 1)
	assert.Equal(t, SearchServerStatusDisabled, servers[0].Status)
}

func TestSearchServer_UpsertKeepsLastSyncedAt(t *testing.T) {
	db := newTestDB(t)

	server := &SearchServer{Name: "primary"}
	require.NoError(t, server.Create(db))

	synced := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	server.LastSyncedAt = &synced
	require.NoError(t, server.Save(db))

	require.NoError(t, (&SearchServer{Name: "primary"}).Upsert(db))

	stored := &SearchServer{}
	require.NoError(t, stored.GetByName(db, "primary"))
	require.NotNil(t, stored.LastSyncedAt)
	assert.True(t, synced.Equal(*stored.LastSyncedAt))
}

func TestSearchServer_Save(t *testing.T) {
	db := newTestDB(t)

	err := (&SearchServer{Name: "unsaved"}).Save(db)
	require.Error(t, err)

	s := &SearchServer{Name: "server"}
	require.NoError(t, s.Create(db))

	now := time.Now()
	require.NoError(t, s.SetConnector(&ConnectorStorage{
		APIHost:          "https://connector.example.com",
		APIKey:           "key",
		Identifier:       "ABCD-1234",
		SubscriptionUUID: "sub-uuid",
	}))
	s.LastSyncedAt = &now
	require.NoError(t, s.Save(db))

	reloaded := &SearchServer{}
	require.NoError(t, reloaded.GetByName(db, "server"))
	connector, err := reloaded.GetConnector()
	require.NoError(t, err)
	assert.Equal(t, "ABCD-1234", connector.Identifier)
	assert.Equal(t, "sub-uuid", connector.SubscriptionUUID)
	require.NotNil(t, reloaded.LastSyncedAt)
}

func TestSearchServer_GetConnectorEmpty(t *testing.T) {
	s := &SearchServer{}
	connector, err := s.GetConnector()
	require.NoError(t, err)
	assert.Equal(t, &ConnectorStorage{}, connector)

	s.ConnectorJSON = "{not json"
	_, err = s.GetConnector()
	require.Error(t, err)
}

func TestSubscription(t *testing.T) {
	db := newTestDB(t)

	sub := &Subscription{UUID: "sub-1", Identifier: "ABCD-1", APIKey: "key-1"}
	require.NoError(t, sub.Upsert(db))

	updated := &Subscription{UUID: "sub-1", Identifier: "ABCD-1", APIKey: "key-2"}
	require.NoError(t, updated.Upsert(db))
	assert.Equal(t, sub.ID, updated.ID)

	found := &Subscription{}
	require.NoError(t, found.GetByUUID(db, "sub-1"))
	assert.Equal(t, "key-2", found.APIKey)

	latest := &Subscription{}
	require.NoError(t, latest.GetLatest(db))
	assert.Equal(t, "sub-1", latest.UUID)

	err := (&Subscription{UUID: "sub-2"}).Upsert(db)
	require.Error(t, err)
}

func TestSubscription_IsValid(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, (&Subscription{UUID: "u", Identifier: "i", APIKey: "k"}).IsValid(now))
	assert.True(t, (&Subscription{UUID: "u", Identifier: "i", APIKey: "k", ExpiresAt: &future}).IsValid(now))
	assert.False(t, (&Subscription{UUID: "u", Identifier: "i", APIKey: "k", ExpiresAt: &past}).IsValid(now))
	assert.False(t, (&Subscription{UUID: "u", Identifier: "i"}).IsValid(now))
}
