package acquia

// NotificationStatusInProgress is the notification status reported while an
// asynchronous operation is still running.
const NotificationStatusInProgress = "in-progress"

// Credentials identify an Acquia Cloud API client and the application it acts
// on.
type Credentials struct {
	ClientID      string
	ClientSecret  string
	ApplicationID string

	// ConfigSetID is the predefined index configuration template used when
	// creating search indexes.
	ConfigSetID string
}

// Environment is a deployment target of an application.
type Environment struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Label string `json:"label,omitempty"`
}

// SearchIndex is a provisioned search index bound to one environment and one
// database role.
type SearchIndex struct {
	ID            string `json:"id"`
	EnvironmentID string `json:"environment_id"`
	DatabaseRole  string `json:"database_role"`
	Status        string `json:"status"`
}

// CreateSearchIndexRequest is the body of a create-index call.
type CreateSearchIndexRequest struct {
	ConfigSetID  string `json:"config_set_id"`
	DatabaseRole string `json:"database_role"`
}

// Link is a HAL link.
type Link struct {
	Href string `json:"href"`
}

// OperationResponse is returned by endpoints that start asynchronous work.
type OperationResponse struct {
	Message string `json:"message"`
	Links   struct {
		Self         Link `json:"self"`
		Notification Link `json:"notification"`
	} `json:"_links"`
}

// NotificationURL returns the polling endpoint of the operation.
func (r *OperationResponse) NotificationURL() string {
	return r.Links.Notification.Href
}

// Notification describes the progress of an asynchronous operation.
type Notification struct {
	UUID        string `json:"uuid"`
	Event       string `json:"event,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
}

// InProgress reports whether the operation is still running.
func (n *Notification) InProgress() bool {
	return n.Status == NotificationStatusInProgress
}

// collection is the paginated envelope used by list endpoints.
type collection[T any] struct {
	Total    int `json:"total"`
	Embedded struct {
		Items []T `json:"items"`
	} `json:"_embedded"`
}
