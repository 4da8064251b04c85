package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/aristotlemanolakos/nyc-apartment-scraper/internal/common"
	"github.com/aristotlemanolakos/nyc-apartment-scraper/internal/model"
)

// Column layout of the listings worksheet. The link column doubles as the
// sink-side deduplication key.
var headers = []any{
	"Date Added",
	"Title",
	"Price",
	"Neighborhood",
	"Apartment Type",
	"Meets Criteria",
	"Filter Reason",
	"Author",
	"Posted Date",
	"Link",
	"Score",
	"Comments",
	"Notes",
}

const (
	linkColumn      = "J"
	maxTitleLength  = 200
	maxReasonLength = 500
)

// Writer appends classified listings to a Google Sheet.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a Google Sheets writer and verifies spreadsheet access.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	service, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	w := &Writer{
		config:  config,
		service: service,
		logger:  logger,
	}

	if err := w.ensureWorksheet(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		oauthConfig := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}
		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}
		tokenSource = oauthConfig.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// ensureWorksheet verifies the spreadsheet is reachable, creates the
// worksheet tab if missing, and makes sure the header row is in place.
func (w *Writer) ensureWorksheet(ctx context.Context) error {
	spreadsheet, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
	}

	found := false
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == w.config.WorksheetName {
			found = true
			break
		}
	}

	if !found {
		req := &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: w.config.WorksheetName},
				},
			}},
		}
		if _, err := w.service.Spreadsheets.BatchUpdate(w.config.SpreadsheetID, req).Context(ctx).Do(); err != nil {
			return fmt.Errorf("unable to create worksheet %q: %w", w.config.WorksheetName, err)
		}
		w.logger.Info("created worksheet", "name", w.config.WorksheetName)
	}

	return w.ensureHeaders(ctx)
}

func (w *Writer) ensureHeaders(ctx context.Context) error {
	headerRange := fmt.Sprintf("%s!1:1", w.config.WorksheetName)

	resp, err := w.service.Spreadsheets.Values.Get(w.config.SpreadsheetID, headerRange).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to read header row: %w", err)
	}

	if len(resp.Values) > 0 && headerRowMatches(resp.Values[0]) {
		return nil
	}

	_, err = w.service.Spreadsheets.Values.Update(w.config.SpreadsheetID, headerRange, &sheets.ValueRange{
		Values: [][]any{headers},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to write header row: %w", err)
	}
	return nil
}

func headerRowMatches(row []any) bool {
	if len(row) != len(headers) {
		return false
	}
	for i, cell := range row {
		if fmt.Sprint(cell) != fmt.Sprint(headers[i]) {
			return false
		}
	}
	return true
}

// existingLinks returns the URLs already present in the sheet so the sink can
// deduplicate by permalink independently of the seen-ID store.
func (w *Writer) existingLinks(ctx context.Context) (map[string]struct{}, error) {
	linkRange := fmt.Sprintf("%s!%s2:%s", w.config.WorksheetName, linkColumn, linkColumn)

	resp, err := w.service.Spreadsheets.Values.Get(w.config.SpreadsheetID, linkRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to read link column: %w", err)
	}

	links := make(map[string]struct{}, len(resp.Values))
	for _, row := range resp.Values {
		if len(row) > 0 {
			links[fmt.Sprint(row[0])] = struct{}{}
		}
	}
	return links, nil
}

// Append adds one row per decision (passing and failing alike) in a single
// batch, skipping listings whose link is already in the sheet. It returns the
// number of rows actually appended.
func (w *Writer) Append(ctx context.Context, decisions []model.Decision) (int, error) {
	if len(decisions) == 0 {
		return 0, nil
	}

	existing, err := w.existingLinks(ctx)
	if err != nil {
		return 0, err
	}

	rows := make([][]any, 0, len(decisions))
	for _, d := range decisions {
		if _, dup := existing[d.Listing.URL]; dup && d.Listing.URL != "" {
			continue
		}
		rows = append(rows, buildRow(d, time.Now()))
		existing[d.Listing.URL] = struct{}{}
	}

	if len(rows) == 0 {
		return 0, nil
	}

	retryOpts := common.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	appendRange := fmt.Sprintf("%s!A:%s", w.config.WorksheetName, linkColumn)
	err = common.WithRetry(ctx, func() error {
		_, appendErr := w.service.Spreadsheets.Values.Append(w.config.SpreadsheetID, appendRange, &sheets.ValueRange{
			Values: rows,
		}).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
		return appendErr
	}, retryOpts)
	if err != nil {
		return 0, fmt.Errorf("failed to append listings: %w", err)
	}

	w.logger.Info("appended listings to sheet", "rows", len(rows))
	return len(rows), nil
}

// buildRow renders one decision as a worksheet row.
func buildRow(d model.Decision, now time.Time) []any {
	price := "N/A"
	if d.Result.Price != nil {
		price = fmt.Sprintf("$%d", *d.Result.Price)
	}

	meetsCriteria := "No"
	if d.Result.Passed {
		meetsCriteria = "Yes"
	}

	reason := "N/A"
	if len(d.Result.Reasons) > 0 {
		reason = truncate(strings.Join(d.Result.Reasons, "; "), maxReasonLength)
	}

	postedDate := ""
	if !d.Listing.Created.IsZero() {
		postedDate = d.Listing.Created.Format("2006-01-02")
	}

	return []any{
		now.Format("2006-01-02 15:04"),
		truncate(d.Listing.Title, maxTitleLength),
		price,
		orNA(d.Result.MatchedNeighborhood),
		orNA(d.Result.MatchedType),
		meetsCriteria,
		reason,
		d.Listing.Author,
		postedDate,
		d.Listing.URL,
		fmt.Sprint(d.Listing.Score),
		fmt.Sprint(d.Listing.NumComments),
		"",
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
