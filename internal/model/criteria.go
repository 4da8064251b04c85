package model

import "fmt"

// DefaultFuzzyThreshold is the minimum similarity score (0-100) a token needs
// to count as a fuzzy match against a criteria term.
const DefaultFuzzyThreshold = 80

// Criteria describes what the user is looking for. Every classification
// strategy evaluates listings against the same criteria.
type Criteria struct {
	ApartmentTypes []string
	Neighborhoods  []string
	ExcludeTerms   []string
	PriceMin       int
	PriceMax       int
	FuzzyThreshold int
}

// Validate checks the criteria for internal consistency.
func (c Criteria) Validate() error {
	if c.PriceMin < 0 {
		return fmt.Errorf("price minimum cannot be negative")
	}
	if c.PriceMax < c.PriceMin {
		return fmt.Errorf("price maximum %d is below minimum %d", c.PriceMax, c.PriceMin)
	}
	if c.FuzzyThreshold < 0 || c.FuzzyThreshold > 100 {
		return fmt.Errorf("fuzzy threshold must be between 0 and 100, got %d", c.FuzzyThreshold)
	}
	return nil
}
