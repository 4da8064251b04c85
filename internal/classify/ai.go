package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/aristotlemanolakos/nyc-apartment-scraper/internal/common"
	"github.com/aristotlemanolakos/nyc-apartment-scraper/internal/llm"
	"github.com/aristotlemanolakos/nyc-apartment-scraper/internal/model"
)

const aiSystemPrompt = "You are an expert at parsing NYC apartment rental listings from Reddit. " +
	"Extract structured information from listing posts. " +
	"Respond with ONLY a valid JSON object. No markdown, no explanation."

// aiResponse mirrors the response schema the model is instructed to follow.
// Every field is independently optional; absent booleans default to false
// rather than being inferred from other fields.
type aiResponse struct {
	IsOffering                *bool    `json:"is_offering"`
	Price                     *float64 `json:"price"`
	Neighborhood              *string  `json:"neighborhood"`
	NeighborhoodMatchesTarget *bool    `json:"neighborhood_matches_target"`
	ApartmentType             *string  `json:"apartment_type"`
	HasExclusion              *bool    `json:"has_exclusion"`
	ExclusionReason           *string  `json:"exclusion_reason"`
	MatchesCriteria           *bool    `json:"matches_criteria"`
	Confidence                *string  `json:"confidence"`
	Summary                   *string  `json:"summary"`
}

// AIClassifier delegates extraction and judgment to a language model in a
// single structured call per listing. The model is the sole source of truth
// for this strategy; returned fields are not independently re-verified.
type AIClassifier struct {
	client    llm.Client
	logger    *slog.Logger
	retryOpts common.RetryOptions
}

// NewAIClassifier creates the AI-delegated classifier.
func NewAIClassifier(client llm.Client, logger *slog.Logger) *AIClassifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &AIClassifier{
		client: client,
		logger: logger,
		retryOpts: common.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: time.Second,
		},
	}
}

// Name implements Classifier.
func (ac *AIClassifier) Name() string { return StrategyAI }

// Classify implements Classifier. A model-call failure or undecodable
// response degrades this one listing to Passed=false with a distinguishable
// reason; it never propagates a fault that would abort the batch.
func (ac *AIClassifier) Classify(ctx context.Context, listing model.Listing, criteria model.Criteria) model.Result {
	var res model.Result

	prompt := buildUserPrompt(listing, criteria)

	var raw string
	err := common.WithRetry(ctx, func() error {
		var callErr error
		raw, callErr = ac.client.Parse(ctx, aiSystemPrompt, prompt)
		return callErr
	}, ac.retryOpts)
	if err != nil {
		ac.logger.Error("AI parsing failed", "listing_id", listing.ID, "error", err)
		res.Reasons = append(res.Reasons, "AI error")
		return res
	}

	cleaned := llm.CleanMarkdownWrapper(raw)

	var parsed aiResponse
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		ac.logger.Error("failed to decode AI response as JSON", "listing_id", listing.ID, "error", err)
		res.Reasons = append(res.Reasons, "AI parse error")
		return res
	}

	res.Raw = json.RawMessage(cleaned)
	if parsed.Price != nil {
		price := int(math.Round(*parsed.Price))
		res.Price = &price
	}
	if parsed.ApartmentType != nil {
		res.MatchedType = *parsed.ApartmentType
	}
	if parsed.Neighborhood != nil {
		res.MatchedNeighborhood = *parsed.Neighborhood
	}

	// Same four-bucket chain as the rules strategy, judged from model output.
	if parsed.IsOffering == nil || !*parsed.IsOffering {
		res.Reasons = append(res.Reasons, "Not an offering")
		return res
	}

	if parsed.HasExclusion != nil && *parsed.HasExclusion {
		reason := "exclusion term"
		if parsed.ExclusionReason != nil && *parsed.ExclusionReason != "" {
			reason = *parsed.ExclusionReason
		}
		res.Reasons = append(res.Reasons, fmt.Sprintf("Excluded: %s", reason))
		return res
	}

	if res.Price != nil {
		if *res.Price < criteria.PriceMin {
			res.Reasons = append(res.Reasons, fmt.Sprintf("$%d < $%d min", *res.Price, criteria.PriceMin))
			return res
		}
		if *res.Price > criteria.PriceMax {
			res.Reasons = append(res.Reasons, fmt.Sprintf("$%d > $%d max", *res.Price, criteria.PriceMax))
			return res
		}
	}

	if parsed.NeighborhoodMatchesTarget == nil || !*parsed.NeighborhoodMatchesTarget {
		hood := "unknown"
		if parsed.Neighborhood != nil && *parsed.Neighborhood != "" {
			hood = *parsed.Neighborhood
		}
		res.Reasons = append(res.Reasons, fmt.Sprintf("Not in target area (%s)", hood))
		return res
	}

	if parsed.MatchesCriteria != nil && *parsed.MatchesCriteria {
		res.Passed = true
		summary := "Matches criteria"
		if parsed.Summary != nil && *parsed.Summary != "" {
			summary = *parsed.Summary
		}
		res.Reasons = append(res.Reasons, summary)
	} else {
		res.Reasons = append(res.Reasons, "Does not match criteria")
	}

	return res
}

// buildUserPrompt renders the listing plus the criteria as plain descriptive
// lists alongside the fixed response schema.
func buildUserPrompt(listing model.Listing, criteria model.Criteria) string {
	neighborhoods := joinOrDefault(criteria.Neighborhoods, "any")
	types := joinOrDefault(criteria.ApartmentTypes, "any")
	exclusions := joinOrDefault(criteria.ExcludeTerms, "none")

	flair := listing.Flair
	if flair == "" {
		flair = "None"
	}
	body := listing.Body
	if body == "" {
		body = "No body text"
	}

	return fmt.Sprintf(`Analyze this NYC apartment listing.

FLAIR: %s
TITLE: %s
BODY: %s

TARGET NEIGHBORHOODS: %s
TARGET APARTMENT TYPES: %s
EXCLUSION TERMS: %s

Return a JSON object:

{
  "is_offering": boolean,
  "price": number or null,
  "neighborhood": string or null,
  "neighborhood_matches_target": boolean,
  "apartment_type": string or null,
  "has_exclusion": boolean,
  "exclusion_reason": string or null,
  "matches_criteria": boolean,
  "confidence": "high" | "medium" | "low",
  "summary": string
}

Rules:
- is_offering: false if post says "looking for", "searching", "need apartment", "seeking"
- neighborhood: ALWAYS extract or deduce the neighborhood, even if not in TARGET list. Use cross streets, landmarks, subway stations, zip codes, or any location context to determine the neighborhood. Use canonical NYC neighborhood names.
- neighborhood_matches_target: true only if the neighborhood matches one in TARGET NEIGHBORHOODS (including abbreviations like LES, FiDi, Wburg)
- has_exclusion: true for sublets, subleases, room shares, roommate situations. Lease assignments/takeovers are NOT exclusions.
- price: monthly rent only (not deposits or broker fees)
- apartment_type: use canonical name from TARGET APARTMENT TYPES if it matches
- matches_criteria: true if is_offering AND neighborhood_matches_target AND no exclusions AND price in range $%d-$%d (or price unknown)
- summary: one concise sentence describing the listing`,
		flair, listing.Title, body, neighborhoods, types, exclusions,
		criteria.PriceMin, criteria.PriceMax)
}

func joinOrDefault(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}
