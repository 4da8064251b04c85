package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aristotlemanolakos/nyc-apartment-scraper/internal/classify"
	"github.com/aristotlemanolakos/nyc-apartment-scraper/internal/model"
)

// Stats summarizes one scan cycle.
type Stats struct {
	RunID   string
	Fetched int
	New     int
	Passed  int
	Added   int
}

// Engine wires the collaborators of a scan cycle together.
type Engine struct {
	source     Source
	classifier classify.Classifier
	sink       Sink
	recorder   DecisionRecorder
	seen       SeenStore
	logger     *slog.Logger
	criteria   model.Criteria
	fetchLimit int
}

// Config holds the engine's collaborators and settings. Sink and Recorder are
// optional: a nil Sink means test mode (no sheet writes), a nil Recorder
// disables the audit log.
type Config struct {
	Source     Source
	Classifier classify.Classifier
	Sink       Sink
	Recorder   DecisionRecorder
	Seen       SeenStore
	Logger     *slog.Logger
	Criteria   model.Criteria
	FetchLimit int
}

// New creates an engine from the given configuration.
func New(cfg Config) (*Engine, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("source is required")
	}
	if cfg.Classifier == nil {
		return nil, fmt.Errorf("classifier is required")
	}
	if cfg.Seen == nil {
		return nil, fmt.Errorf("seen store is required")
	}
	if err := cfg.Criteria.Validate(); err != nil {
		return nil, fmt.Errorf("invalid criteria: %w", err)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = 50
	}

	return &Engine{
		source:     cfg.Source,
		classifier: cfg.Classifier,
		sink:       cfg.Sink,
		recorder:   cfg.Recorder,
		seen:       cfg.Seen,
		logger:     cfg.Logger,
		criteria:   cfg.Criteria,
		fetchLimit: cfg.FetchLimit,
	}, nil
}

// RunCycle executes one scan cycle. Listings are classified sequentially;
// the seen store is mutated once, after classification of the whole batch
// completes, so a crash mid-cycle re-evaluates rather than drops listings.
func (e *Engine) RunCycle(ctx context.Context) (Stats, error) {
	stats := Stats{RunID: uuid.NewString()}
	startedAt := time.Now()

	listings, err := e.source.FetchNewListings(ctx, e.fetchLimit)
	if err != nil {
		return stats, fmt.Errorf("failed to fetch listings: %w", err)
	}
	stats.Fetched = len(listings)
	if len(listings) == 0 {
		return stats, nil
	}

	unseen := e.seen.FilterUnseen(listings)
	stats.New = len(unseen)
	e.logger.Info("filtered listings", "fetched", len(listings), "unseen", len(unseen))
	if len(unseen) == 0 {
		return stats, nil
	}

	decisions := make([]model.Decision, 0, len(unseen))
	for _, listing := range unseen {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		result := e.classifier.Classify(ctx, listing, e.criteria)
		decisions = append(decisions, model.Decision{
			Listing:  listing,
			Result:   result,
			Strategy: e.classifier.Name(),
		})

		if result.Passed {
			stats.Passed++
			e.logger.Info("listing passed", "listing_id", listing.ID, "title", snippet(listing.Title))
		} else {
			reason := "unknown"
			if len(result.Reasons) > 0 {
				reason = result.Reasons[len(result.Reasons)-1]
			}
			e.logger.Debug("listing filtered", "listing_id", listing.ID, "title", snippet(listing.Title), "reason", reason)
		}
	}

	if e.sink != nil {
		added, appendErr := e.sink.Append(ctx, decisions)
		if appendErr != nil {
			// The sink is best-effort; the decision log and seen store still run.
			e.logger.Error("failed to append listings to sink", "error", appendErr)
		}
		stats.Added = added
	}

	if e.recorder != nil {
		if recordErr := e.recorder.RecordRun(ctx, stats.RunID, startedAt, decisions); recordErr != nil {
			e.logger.Error("failed to record decisions", "run_id", stats.RunID, "error", recordErr)
		}
	}

	ids := make([]string, len(unseen))
	for i, l := range unseen {
		ids[i] = l.ID
	}
	if err := e.seen.MarkManySeen(ids); err != nil {
		e.logger.Error("failed to persist seen listings", "error", err)
	}

	e.logger.Info("scan cycle complete",
		"run_id", stats.RunID,
		"fetched", stats.Fetched,
		"new", stats.New,
		"passed", stats.Passed,
		"added", stats.Added)

	return stats, nil
}

// Watch runs scan cycles until the context is canceled.
func (e *Engine) Watch(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}

	e.logger.Info("watch mode started", "interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := e.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			e.logger.Error("scan cycle failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func snippet(s string) string {
	const limit = 50
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
