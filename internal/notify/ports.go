// Package notify gatekeeps notification drafts: preference filtering,
// debouncing, deterministic ids, persistence and popup queueing.
package notify

import (
	"context"

	"fincore/internal/core"
)

// Ports for outbound adapters.
type (
	// Store persists notifications. InsertIfAbsent must be atomic per id:
	// it reports false, without error, when a record with the same id
	// already exists.
	Store interface {
		InsertIfAbsent(ctx context.Context, n core.Notification) (created bool, err error)
	}

	// Publisher fans a persisted notification out to presentation.
	Publisher interface {
		PublishNotification(ctx context.Context, n core.Notification) error
	}

	// Presenter shows transient popups.
	Presenter interface {
		VisibleCount() int
		Show(n core.Notification)
	}
)
