// Package classify turns free-form listing text into a structured verdict
// against configured criteria. Two strategies exist behind one interface: a
// deterministic rules engine and an AI-delegated structured extraction.
package classify

import (
	"context"

	"github.com/aristotlemanolakos/nyc-apartment-scraper/internal/model"
)

// Strategy names accepted by configuration.
const (
	StrategyRules = "rules"
	StrategyAI    = "ai"
)

// Classifier evaluates a single listing against the criteria. Implementations
// never fail a whole batch over one listing: any per-listing fault degrades
// into a Result with Passed=false and an explanatory reason.
type Classifier interface {
	Classify(ctx context.Context, listing model.Listing, criteria model.Criteria) model.Result
	// Name identifies the strategy for logging and the decision log.
	Name() string
}
