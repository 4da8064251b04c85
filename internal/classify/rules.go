package classify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aristotlemanolakos/nyc-apartment-scraper/internal/model"
)

// Title phrases that indicate a request rather than an offering.
var seekingSignals = []string{"looking for", "searching for", "need", "seeking", "wanted"}

// RulesClassifier is the deterministic strategy: an ordered short-circuit
// decision chain over lexical and fuzzy matching. The first failing check
// terminates evaluation; checks already evaluated leave their reasons and
// extracted fields in place.
type RulesClassifier struct {
	logger *slog.Logger
}

// NewRulesClassifier creates the deterministic classifier.
func NewRulesClassifier(logger *slog.Logger) *RulesClassifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &RulesClassifier{logger: logger}
}

// Name implements Classifier.
func (rc *RulesClassifier) Name() string { return StrategyRules }

// Classify implements Classifier.
func (rc *RulesClassifier) Classify(_ context.Context, listing model.Listing, criteria model.Criteria) model.Result {
	var res model.Result
	fullText := listing.FullText()
	matcher := NewMatcher(criteria.FuzzyThreshold)

	// Offering check: a seeking-phrased title without an offering flair is a
	// request, not a listing.
	if !isOfferingFlair(listing.Flair) {
		titleLower := strings.ToLower(listing.Title)
		for _, signal := range seekingSignals {
			if strings.Contains(titleLower, signal) {
				res.Reasons = append(res.Reasons, "Not an offering (appears to be a request)")
				return res
			}
		}
	}

	// Exclusion check: sublets, room shares and the like disqualify outright.
	if excluded, term := matcher.MatchAny(fullText, criteria.ExcludeTerms); excluded {
		res.Reasons = append(res.Reasons, fmt.Sprintf("Excluded term found: '%s'", term))
		return res
	}

	// Price check: a missing price is advisory, not gating. Rent is often
	// negotiable or posted only in comments.
	res.Price = ExtractPrice(fullText)
	switch {
	case res.Price == nil:
		res.Reasons = append(res.Reasons, "No price detected")
	case *res.Price < criteria.PriceMin:
		res.Reasons = append(res.Reasons, fmt.Sprintf("Price $%d below minimum $%d", *res.Price, criteria.PriceMin))
		return res
	case *res.Price > criteria.PriceMax:
		res.Reasons = append(res.Reasons, fmt.Sprintf("Price $%d above maximum $%d", *res.Price, criteria.PriceMax))
		return res
	default:
		res.Reasons = append(res.Reasons, fmt.Sprintf("Price $%d within range", *res.Price))
	}

	// Apartment type is informative, not gating.
	if ok, matched := matcher.MatchAny(fullText, criteria.ApartmentTypes); ok {
		res.MatchedType = matched
		res.Reasons = append(res.Reasons, fmt.Sprintf("Matched apartment type: '%s'", matched))
	} else {
		res.Reasons = append(res.Reasons, "No matching apartment type found")
	}

	// Neighborhood is the one mandatory positive signal.
	if ok, matched := matcher.MatchAny(fullText, criteria.Neighborhoods); ok {
		res.MatchedNeighborhood = matched
		res.Reasons = append(res.Reasons, fmt.Sprintf("Matched neighborhood: '%s'", matched))
	} else {
		res.Reasons = append(res.Reasons, "No matching neighborhood found")
		return res
	}

	res.Passed = true
	return res
}

// isOfferingFlair reports whether the post flair marks an apartment offering.
// NYC listing subreddits tag offers with flairs like "[Offering]".
func isOfferingFlair(flair string) bool {
	flairLower := strings.ToLower(flair)
	return strings.Contains(flairLower, "offering") || strings.Contains(flairLower, "listing")
}
