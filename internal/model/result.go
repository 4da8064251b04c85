package model

import "encoding/json"

// Result is the outcome of classifying one listing. Reasons accumulate in
// evaluation order; when a check fails the chain stops, so fields computed by
// later checks stay at their zero values.
type Result struct {
	Price               *int
	MatchedType         string
	MatchedNeighborhood string
	Reasons             []string
	Raw                 json.RawMessage
	Passed              bool
}

// Decision pairs a listing with its classification result and the strategy
// that produced it.
type Decision struct {
	Listing  Listing
	Result   Result
	Strategy string
}
