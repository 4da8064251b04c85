package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristotlemanolakos/nyc-apartment-scraper/internal/model"
)

func testDecisionLog(t *testing.T) *DecisionLog {
	t.Helper()
	log, err := NewDecisionLog(filepath.Join(t.TempDir(), "decisions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })
	return log
}

func sampleDecisions() []model.Decision {
	price := 2400
	return []model.Decision{
		{
			Listing: model.Listing{
				ID:        "abc123",
				Subreddit: "NYCapartments",
				Title:     "1BR in East Village - $2400/mo",
				URL:       "https://www.reddit.com/r/NYCapartments/comments/abc123/",
			},
			Result: model.Result{
				Passed:              true,
				Price:               &price,
				MatchedType:         "1br",
				MatchedNeighborhood: "east village",
				Reasons:             []string{"Price $2400 within range", "Matched neighborhood: 'east village'"},
			},
			Strategy: "rules",
		},
		{
			Listing: model.Listing{
				ID:        "def456",
				Subreddit: "NYCapartments",
				Title:     "Sublease available",
			},
			Result: model.Result{
				Passed:  false,
				Reasons: []string{"Excluded term found: 'sublease'"},
			},
			Strategy: "rules",
		},
	}
}

func TestDecisionLogRecordAndReadBack(t *testing.T) {
	log := testDecisionLog(t)
	ctx := context.Background()

	started := time.Now().Add(-time.Minute)
	require.NoError(t, log.RecordRun(ctx, "run-1", started, sampleDecisions()))

	rows, err := log.RecentDecisions(ctx, 10, false)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Newest first.
	assert.Equal(t, "def456", rows[0].ListingID)
	assert.False(t, rows[0].Passed)
	assert.Equal(t, "Excluded term found: 'sublease'", rows[0].Reasons)
	assert.Nil(t, rows[0].Price)

	assert.Equal(t, "abc123", rows[1].ListingID)
	assert.True(t, rows[1].Passed)
	require.NotNil(t, rows[1].Price)
	assert.Equal(t, 2400, *rows[1].Price)
	assert.Equal(t, "1br", rows[1].MatchedType)
	assert.Equal(t, "east village", rows[1].MatchedNeighborhood)
	assert.Equal(t, "rules", rows[1].Strategy)
	assert.Equal(t, "Price $2400 within range; Matched neighborhood: 'east village'", rows[1].Reasons)
}

func TestDecisionLogPassedOnly(t *testing.T) {
	log := testDecisionLog(t)
	ctx := context.Background()

	require.NoError(t, log.RecordRun(ctx, "run-1", time.Now(), sampleDecisions()))

	rows, err := log.RecentDecisions(ctx, 10, true)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "abc123", rows[0].ListingID)
}

func TestDecisionLogLimit(t *testing.T) {
	log := testDecisionLog(t)
	ctx := context.Background()

	require.NoError(t, log.RecordRun(ctx, "run-1", time.Now(), sampleDecisions()))

	rows, err := log.RecentDecisions(ctx, 1, false)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestDecisionLogRequiresRunID(t *testing.T) {
	log := testDecisionLog(t)

	err := log.RecordRun(context.Background(), "", time.Now(), nil)
	require.Error(t, err)
}

func TestDecisionLogEmptyRunStillRecorded(t *testing.T) {
	log := testDecisionLog(t)
	ctx := context.Background()

	require.NoError(t, log.RecordRun(ctx, "run-empty", time.Now(), nil))

	rows, err := log.RecentDecisions(ctx, 10, false)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestNewDecisionLogRequiresPath(t *testing.T) {
	_, err := NewDecisionLog("")
	require.Error(t, err)
}
