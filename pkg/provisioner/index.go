package provisioner

import (
	"context"
	"fmt"

	"github.com/hashicorp-forge/search-provisioner/pkg/acquia"
)

// SearchIndexes lists the indexes of the resolved environment.
func (w *Workflow) SearchIndexes(ctx context.Context) ([]acquia.SearchIndex, error) {
	if w.client == nil || w.environmentID == "" {
		return nil, ErrNoCredentials
	}

	indexes, err := w.client.ListSearchIndexes(ctx, w.environmentID)
	if err != nil {
		w.reportAPIError("list search indexes", err)
		return nil, err
	}
	return indexes, nil
}

// CreateSearchIndex makes sure an index exists for databaseName in the
// resolved environment. An existing index is reported and left alone. If
// none of the environment's indexes match, the connector is synchronized once
// and, when that succeeds, a single create request is issued.
//
// The returned notification URL is empty unless a create request was
// accepted.
func (w *Workflow) CreateSearchIndex(ctx context.Context, databaseName string) string {
	if w.environmentID == "" || databaseName == "" {
		return ""
	}

	indexes, err := w.SearchIndexes(ctx)
	if err != nil {
		return ""
	}

	for _, index := range indexes {
		if index.EnvironmentID == w.environmentID && index.DatabaseRole == databaseName {
			w.ui.Info(fmt.Sprintf("Search index for database %q already exists (status: %s).",
				databaseName, index.Status))
			return ""
		}
	}

	if !w.syncConnector(ctx) {
		return ""
	}

	notificationURL, ok := w.createSolrSearchIndex(ctx, w.environmentID, databaseName)
	if !ok {
		return ""
	}
	return notificationURL
}

func (w *Workflow) syncConnector(ctx context.Context) bool {
	if w.connector == nil {
		w.ui.Warn("The Acquia connector is not configured; skipping search index creation.")
		return false
	}

	ok, err := w.connector.Sync(ctx)
	if err != nil {
		w.logger.Error("error synchronizing search servers", "error", err.Error())
		w.ui.Error("Unable to update local search server configuration. Check the logs for details.")
		return false
	}
	if !ok {
		w.ui.Warn("The Acquia connector is inactive or has no subscription data; skipping search index creation.")
		return false
	}
	return true
}

// createSolrSearchIndex requests a new index. It makes no request when no
// config set is configured.
func (w *Workflow) createSolrSearchIndex(ctx context.Context, environmentID, databaseName string) (string, bool) {
	if w.client == nil {
		w.ui.Error("Acquia Search API credentials are not set.")
		return "", false
	}

	configSetID := w.client.Credentials().ConfigSetID
	if configSetID == "" {
		w.ui.Error("No Acquia Search config set is configured; cannot create a search index.")
		return "", false
	}

	resp, err := w.client.CreateSearchIndex(ctx, environmentID, acquia.CreateSearchIndexRequest{
		ConfigSetID:  configSetID,
		DatabaseRole: databaseName,
	})
	if err != nil {
		w.reportAPIError("create search index", err)
		return "", false
	}

	w.logger.Info("search index creation accepted",
		"environment_id", environmentID,
		"database_role", databaseName,
		"notification", resp.NotificationURL(),
	)
	w.ui.Info(resp.Message)
	return resp.NotificationURL(), true
}
