package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aristotlemanolakos/nyc-apartment-scraper/internal/model"
)

// DecisionRow is a stored decision as read back from the log.
type DecisionRow struct {
	CreatedAt           time.Time
	RunID               string
	ListingID           string
	Subreddit           string
	Title               string
	URL                 string
	Reasons             string
	Strategy            string
	MatchedType         string
	MatchedNeighborhood string
	Price               *int
	Passed              bool
}

// RecordRun stores one scan run with all of its decisions in a single
// transaction.
func (l *DecisionLog) RecordRun(ctx context.Context, runID string, startedAt time.Time, decisions []model.Decision) error {
	if runID == "" {
		return fmt.Errorf("runID cannot be empty")
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	passed := 0
	for _, d := range decisions {
		if d.Result.Passed {
			passed++
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO scan_runs (id, started_at, evaluated, passed)
		VALUES (?, ?, ?, ?)
	`, runID, startedAt.UTC(), len(decisions), passed)
	if err != nil {
		return fmt.Errorf("failed to insert scan run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO decisions (run_id, listing_id, subreddit, title, url, passed,
			reasons, price, matched_type, matched_neighborhood, strategy)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare decision insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, d := range decisions {
		var price any
		if d.Result.Price != nil {
			price = *d.Result.Price
		}
		_, err = stmt.ExecContext(ctx,
			runID,
			d.Listing.ID,
			d.Listing.Subreddit,
			d.Listing.Title,
			d.Listing.URL,
			d.Result.Passed,
			strings.Join(d.Result.Reasons, "; "),
			price,
			d.Result.MatchedType,
			d.Result.MatchedNeighborhood,
			d.Strategy,
		)
		if err != nil {
			return fmt.Errorf("failed to insert decision for listing %s: %w", d.Listing.ID, err)
		}
	}

	return tx.Commit()
}

// RecentDecisions returns the most recent decisions, newest first. When
// passedOnly is set, failing decisions are omitted.
func (l *DecisionLog) RecentDecisions(ctx context.Context, limit int, passedOnly bool) ([]DecisionRow, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT run_id, listing_id, subreddit, title, url, passed, reasons,
			price, matched_type, matched_neighborhood, strategy, created_at
		FROM decisions
	`
	var args []any
	if passedOnly {
		query += ` WHERE passed = 1`
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []DecisionRow
	for rows.Next() {
		var r DecisionRow
		var price sql.NullInt64
		if err := rows.Scan(&r.RunID, &r.ListingID, &r.Subreddit, &r.Title, &r.URL,
			&r.Passed, &r.Reasons, &price, &r.MatchedType, &r.MatchedNeighborhood,
			&r.Strategy, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		if price.Valid {
			p := int(price.Int64)
			r.Price = &p
		}
		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate decisions: %w", err)
	}
	return out, nil
}
