package classify

import (
	"regexp"
	"strconv"
	"strings"
)

// Plausible monthly rent band for the target market. Candidates outside it
// (years, deposits, broker fees) are rejected and the cascade continues.
const (
	priceFloor   = 500
	priceCeiling = 15000
)

// pricePatterns is an ordered cascade, most specific first. The first pattern
// that yields a plausible amount wins; within a pattern the first match in
// reading order wins.
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\$\s*([\d,]+)(?:\s*/\s*(?:mo|month|m)\b)?`), // $2500/mo, $2,500/month
	regexp.MustCompile(`(?i)([\d,]+)\s*/\s*(?:mo|month|m)\b`),           // 2500/mo
	regexp.MustCompile(`(?i)\$\s*([\d,]+)`),                             // $2500
	regexp.MustCompile(`(?i)rent[:\s]+\$?\s*([\d,]+)`),                  // rent: $2500
	regexp.MustCompile(`(?i)asking\s+\$?\s*([\d,]+)`),                   // asking $2500
}

// ExtractPrice pulls a plausible monthly rent out of free text. It returns
// nil when nothing plausible is found; that is not an error.
func ExtractPrice(text string) *int {
	for _, re := range pricePatterns {
		for _, match := range re.FindAllStringSubmatch(text, -1) {
			raw := strings.ReplaceAll(match[1], ",", "")
			price, err := strconv.Atoi(raw)
			if err != nil {
				continue
			}
			if price >= priceFloor && price <= priceCeiling {
				return &price
			}
		}
	}
	return nil
}
