package acquia

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	// DefaultBaseURL is the Acquia Cloud API root.
	DefaultBaseURL = "https://cloud.acquia.com/api"

	// DefaultTokenURL is the OAuth2 token endpoint for Acquia Cloud API
	// clients.
	DefaultTokenURL = "https://accounts.acquia.com/api/auth/oauth/token"
)

// Config contains configuration for the Acquia Cloud API client.
type Config struct {
	// BaseURL is the API root. Default: DefaultBaseURL.
	BaseURL string

	// TokenURL is the client-credentials token endpoint.
	// Default: DefaultTokenURL.
	TokenURL string

	Credentials Credentials

	// HTTPClient is used for both token and API requests. A client with
	// Timeout is created when nil.
	HTTPClient *http.Client

	// Timeout for requests when HTTPClient is nil.
	// Default: 30 seconds
	Timeout time.Duration

	Logger hclog.Logger
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	for _, f := range []struct{ name, raw string }{
		{"base_url", c.BaseURL},
		{"token_url", c.TokenURL},
	} {
		name := f.name
		u, err := url.Parse(f.raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("%s must use http or https scheme, got: %q", name, u.Scheme)
		}
	}

	if c.Credentials.ClientID == "" {
		return fmt.Errorf("client_id is required")
	}
	if c.Credentials.ClientSecret == "" {
		return fmt.Errorf("client_secret is required")
	}
	if c.Credentials.ApplicationID == "" {
		return fmt.Errorf("application_id is required")
	}

	return nil
}

// Client issues authenticated requests against the Acquia Cloud API.
//
// A fresh access token is requested before every API call; tokens are never
// cached between requests.
type Client struct {
	baseURL     string
	credentials Credentials
	oauth       *clientcredentials.Config
	httpClient  *http.Client
	logger      hclog.Logger
}

// NewClient creates a new Acquia Cloud API client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Acquia Cloud API config: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		credentials: cfg.Credentials,
		oauth: &clientcredentials.Config{
			ClientID:     cfg.Credentials.ClientID,
			ClientSecret: cfg.Credentials.ClientSecret,
			TokenURL:     cfg.TokenURL,
		},
		httpClient: httpClient,
		logger:     cfg.Logger.Named("acquia-client"),
	}, nil
}

// Credentials returns the credentials the client was built with.
func (c *Client) Credentials() Credentials {
	return c.credentials
}

// ListEnvironments returns the environments of the configured application.
func (c *Client) ListEnvironments(ctx context.Context) ([]Environment, error) {
	var envs collection[Environment]
	path := fmt.Sprintf("/applications/%s/environments",
		url.PathEscape(c.credentials.ApplicationID))
	if err := c.doRequest(ctx, http.MethodGet, path, nil, http.StatusOK, &envs); err != nil {
		return nil, err
	}
	return envs.Embedded.Items, nil
}

// ListSearchIndexes returns the search indexes of an environment.
func (c *Client) ListSearchIndexes(ctx context.Context, environmentID string) ([]SearchIndex, error) {
	var indexes collection[SearchIndex]
	if err := c.doRequest(ctx, http.MethodGet, indexesPath(environmentID), nil, http.StatusOK, &indexes); err != nil {
		return nil, err
	}
	return indexes.Embedded.Items, nil
}

// CreateSearchIndex starts provisioning a search index. The API accepts the
// request and completes it asynchronously; poll the returned notification URL
// for progress.
func (c *Client) CreateSearchIndex(ctx context.Context, environmentID string, req CreateSearchIndexRequest) (*OperationResponse, error) {
	var resp OperationResponse
	if err := c.doRequest(ctx, http.MethodPost, indexesPath(environmentID), req, http.StatusAccepted, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetNotification fetches an asynchronous operation's notification. The
// notification URL is used as returned by the API, but must share the scheme
// and host of the base URL.
func (c *Client) GetNotification(ctx context.Context, notificationURL string) (*Notification, error) {
	if err := c.checkSameHost(notificationURL); err != nil {
		c.logger.Warn("refusing to send credentials to foreign URL", "url", notificationURL)
		return nil, err
	}

	var n Notification
	if err := c.doRequest(ctx, http.MethodGet, notificationURL, nil, http.StatusOK, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func indexesPath(environmentID string) string {
	return fmt.Sprintf("/environments/%s/search/indexes", url.PathEscape(environmentID))
}

// resolve turns an API path into an absolute URL. Absolute URLs are returned
// unchanged.
func (c *Client) resolve(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return c.baseURL + endpoint
}

// checkSameHost returns ErrForeignURL when endpoint is an absolute URL whose
// scheme or host differ from the base URL's.
func (c *Client) checkSameHost(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", endpoint, err)
	}
	if !u.IsAbs() {
		return nil
	}

	base, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if !strings.EqualFold(u.Scheme, base.Scheme) || !strings.EqualFold(u.Host, base.Host) {
		return fmt.Errorf("%w: %s", ErrForeignURL, endpoint)
	}
	return nil
}

// token requests a new access token using the client-credentials grant.
func (c *Client) token(ctx context.Context) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	return c.oauth.Token(ctx)
}

// doRequest executes an authenticated request and decodes the response into
// result. Any status other than expected yields an *UnexpectedStatusError;
// failures before a status is known yield a *TransportError.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, body interface{}, expected int, result interface{}) error {
	endpoint = c.resolve(endpoint)

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	tok, err := c.token(ctx)
	if err != nil {
		return &TransportError{Op: "token", URL: c.oauth.TokenURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	tok.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("sending request", "method", method, "url", endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: method, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: method, URL: endpoint, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode != expected {
		return &UnexpectedStatusError{
			Method:     method,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Expected:   expected,
			Body:       string(respBody),
		}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return &TransportError{Op: method, URL: endpoint, Err: fmt.Errorf("failed to decode response: %w", err)}
		}
	}

	return nil
}
