// Package engine orchestrates a scan cycle: fetch, dedup, classify, sink,
// record, mark seen. It owns no decision logic of its own.
package engine

import (
	"context"
	"time"

	"github.com/aristotlemanolakos/nyc-apartment-scraper/internal/model"
)

// Source supplies a batch of raw listings.
type Source interface {
	FetchNewListings(ctx context.Context, limit int) ([]model.Listing, error)
}

// Sink consumes every evaluated decision, passing or not.
type Sink interface {
	Append(ctx context.Context, decisions []model.Decision) (int, error)
}

// SeenStore bounds reprocessing across runs.
type SeenStore interface {
	FilterUnseen(listings []model.Listing) []model.Listing
	MarkManySeen(ids []string) error
	Count() int
}

// DecisionRecorder persists decisions for later audit.
type DecisionRecorder interface {
	RecordRun(ctx context.Context, runID string, startedAt time.Time, decisions []model.Decision) error
}
