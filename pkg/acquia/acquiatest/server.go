// Package acquiatest provides an in-memory Acquia Cloud API for tests.
package acquiatest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/hashicorp-forge/search-provisioner/pkg/acquia"
)

const (
	ClientID     = "test-client-id"
	ClientSecret = "test-client-secret"
	AccessToken  = "test-access-token"
)

// Server serves the token endpoint and the subset of the Acquia Cloud API the
// provisioner uses. Fields may be changed between requests; access is
// synchronized with the handlers.
type Server struct {
	*httptest.Server

	mu sync.Mutex

	Environments []acquia.Environment
	Indexes      []acquia.SearchIndex

	// NotificationStatuses is consumed one entry per poll. The last entry is
	// repeated once the list is exhausted.
	NotificationStatuses []string

	// Status overrides. Zero means the documented success status.
	EnvironmentsStatus int
	IndexesStatus      int
	CreateStatus       int
	NotificationStatus int

	CreateMessage string

	tokenRequests        int
	createBodies         []map[string]interface{}
	notificationPolls    int
	unauthorizedRequests int
}

// NewServer starts a server that is closed when the test finishes.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		CreateMessage: "Search index is being created.",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token", s.handleToken)
	mux.HandleFunc("GET /api/applications/{application}/environments", s.authorized(s.handleEnvironments))
	mux.HandleFunc("GET /api/environments/{environment}/search/indexes", s.authorized(s.handleListIndexes))
	mux.HandleFunc("POST /api/environments/{environment}/search/indexes", s.authorized(s.handleCreateIndex))
	mux.HandleFunc("GET /api/notifications/{uuid}", s.authorized(s.handleNotification))

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)

	return s
}

// BaseURL is the API root to configure clients with.
func (s *Server) BaseURL() string {
	return s.URL + "/api"
}

// TokenURL is the client-credentials token endpoint.
func (s *Server) TokenURL() string {
	return s.URL + "/oauth/token"
}

// NotificationURL returns the polling URL for a notification id.
func (s *Server) NotificationURL(id string) string {
	return fmt.Sprintf("%s/api/notifications/%s", s.URL, id)
}

// Credentials returns credentials accepted by the token endpoint.
func (s *Server) Credentials(applicationID, configSetID string) acquia.Credentials {
	return acquia.Credentials{
		ClientID:      ClientID,
		ClientSecret:  ClientSecret,
		ApplicationID: applicationID,
		ConfigSetID:   configSetID,
	}
}

// TokenRequests returns how many tokens were issued.
func (s *Server) TokenRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenRequests
}

// CreateBodies returns the decoded bodies of every create-index request.
func (s *Server) CreateBodies() []map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]interface{}(nil), s.createBodies...)
}

// NotificationPolls returns how many times a notification was fetched.
func (s *Server) NotificationPolls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notificationPolls
}

// UnauthorizedRequests returns how many API requests lacked a valid token.
func (s *Server) UnauthorizedRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unauthorizedRequests
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, secret, ok := r.BasicAuth()
	if !ok {
		id, secret = r.PostForm.Get("client_id"), r.PostForm.Get("client_secret")
	}
	if r.PostForm.Get("grant_type") != "client_credentials" || id != ClientID || secret != ClientSecret {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_client"})
		return
	}

	s.mu.Lock()
	s.tokenRequests++
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": AccessToken,
		"token_type":   "Bearer",
		"expires_in":   300,
	})
}

func (s *Server) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+AccessToken {
			s.mu.Lock()
			s.unauthorizedRequests++
			s.mu.Unlock()
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next(w, r)
	}
}

func (s *Server) handleEnvironments(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.EnvironmentsStatus != 0 && s.EnvironmentsStatus != http.StatusOK {
		writeJSON(w, s.EnvironmentsStatus, map[string]string{"error": "environments unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, embedded(s.Environments))
}

func (s *Server) handleListIndexes(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.IndexesStatus != 0 && s.IndexesStatus != http.StatusOK {
		writeJSON(w, s.IndexesStatus, map[string]string{"error": "indexes unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, embedded(s.Indexes))
}

func (s *Server) handleCreateIndex(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.createBodies = append(s.createBodies, body)

	if s.CreateStatus != 0 && s.CreateStatus != http.StatusAccepted {
		writeJSON(w, s.CreateStatus, map[string]string{"error": "conflict", "message": "index cannot be created"})
		return
	}

	id := fmt.Sprintf("op-%d", len(s.createBodies))
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"message": s.CreateMessage,
		"_links": map[string]interface{}{
			"self":         map[string]string{"href": s.URL + r.URL.Path},
			"notification": map[string]string{"href": s.NotificationURL(id)},
		},
	})
}

func (s *Server) handleNotification(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationPolls++

	if s.NotificationStatus != 0 && s.NotificationStatus != http.StatusOK {
		writeJSON(w, s.NotificationStatus, map[string]string{"error": "not found"})
		return
	}

	status := "completed"
	if n := len(s.NotificationStatuses); n > 0 {
		status = s.NotificationStatuses[0]
		if n > 1 {
			s.NotificationStatuses = s.NotificationStatuses[1:]
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"uuid":   r.PathValue("uuid"),
		"event":  "SearchIndexCreated",
		"status": status,
	})
}

func embedded[T any](items []T) map[string]interface{} {
	if items == nil {
		items = []T{}
	}
	return map[string]interface{}{
		"total": len(items),
		"_embedded": map[string]interface{}{
			"items": items,
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
