package provisioner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrStillInProgress is returned by WaitForIndex when the backoff gave up
// while the index was still being provisioned.
var ErrStillInProgress = errors.New("search index provisioning is still in progress")

// CheckIndexStatus reports whether the operation behind notificationURL is
// still in progress. Completed, failed, and unknown states all yield false, as
// do request failures, which are logged and reported to the UI.
func (w *Workflow) CheckIndexStatus(ctx context.Context, notificationURL string) bool {
	inProgress, _ := w.indexInProgress(ctx, notificationURL)
	return inProgress
}

// indexInProgress is CheckIndexStatus with request failures returned after
// they were reported.
func (w *Workflow) indexInProgress(ctx context.Context, notificationURL string) (bool, error) {
	if notificationURL == "" {
		return false, nil
	}
	if w.client == nil {
		w.ui.Error("Acquia Search API credentials are not set.")
		return false, ErrNoCredentials
	}

	n, err := w.client.GetNotification(ctx, notificationURL)
	if err != nil {
		w.reportAPIError("check search index status", err)
		return false, err
	}

	w.logger.Debug("search index status", "notification", notificationURL, "status", n.Status)
	return n.InProgress(), nil
}

// WaitForIndex polls notificationURL until provisioning is no longer in
// progress. The backoff decides the delay between polls and when to give up;
// ErrStillInProgress is returned in the latter case. A failed poll stops
// waiting and its error is returned.
func (w *Workflow) WaitForIndex(ctx context.Context, notificationURL string, b backoff.BackOff) error {
	operation := func() error {
		inProgress, err := w.indexInProgress(ctx, notificationURL)
		if err != nil {
			return backoff.Permanent(err)
		}
		if inProgress {
			return ErrStillInProgress
		}
		return nil
	}

	notify := func(_ error, next time.Duration) {
		w.ui.Output(fmt.Sprintf("Search index provisioning in progress; checking again in %s.", next.Round(time.Second)))
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify); err != nil {
		return fmt.Errorf("error waiting for search index: %w", err)
	}

	w.ui.Info("Search index provisioning finished.")
	return nil
}
