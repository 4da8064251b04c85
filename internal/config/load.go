package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/aristotlemanolakos/nyc-apartment-scraper/internal/common"
	"github.com/aristotlemanolakos/nyc-apartment-scraper/internal/llm"
	"github.com/aristotlemanolakos/nyc-apartment-scraper/internal/model"
	"github.com/aristotlemanolakos/nyc-apartment-scraper/internal/sheets"
)

// LoadCriteria builds the classification criteria from configuration.
func LoadCriteria() (model.Criteria, error) {
	criteria := model.Criteria{
		PriceMin:       viper.GetInt("price.min"),
		PriceMax:       viper.GetInt("price.max"),
		ApartmentTypes: viper.GetStringSlice("apartment_types"),
		Neighborhoods:  viper.GetStringSlice("neighborhoods"),
		ExcludeTerms:   viper.GetStringSlice("exclude_terms"),
		FuzzyThreshold: viper.GetInt("filter.fuzzy_threshold"),
	}
	if criteria.FuzzyThreshold == 0 {
		criteria.FuzzyThreshold = model.DefaultFuzzyThreshold
	}
	if criteria.PriceMax == 0 {
		criteria.PriceMax = 99999
	}

	if err := criteria.Validate(); err != nil {
		return model.Criteria{}, fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}
	if len(criteria.Neighborhoods) == 0 {
		return model.Criteria{}, fmt.Errorf("%w: at least one neighborhood is required", common.ErrMissingConfig)
	}
	return criteria, nil
}

// ScraperConfig holds the feed-source settings.
type ScraperConfig struct {
	UserAgent  string
	Subreddits []string
	FetchLimit int
	Interval   time.Duration
}

// LoadScraperConfig builds the feed-source settings from configuration.
func LoadScraperConfig() (ScraperConfig, error) {
	cfg := ScraperConfig{
		Subreddits: viper.GetStringSlice("scraping.subreddits"),
		UserAgent:  viper.GetString("scraping.user_agent"),
		FetchLimit: viper.GetInt("scraping.limit"),
		Interval:   time.Duration(viper.GetInt("scraping.interval_minutes")) * time.Minute,
	}

	// Older configs carried a single subreddit string.
	if len(cfg.Subreddits) == 0 {
		if single := viper.GetString("scraping.subreddit"); single != "" {
			cfg.Subreddits = []string{single}
		}
	}
	if len(cfg.Subreddits) == 0 {
		return ScraperConfig{}, fmt.Errorf("%w: at least one subreddit is required", common.ErrMissingConfig)
	}
	if cfg.UserAgent == "" {
		return ScraperConfig{}, fmt.Errorf("%w: scraping.user_agent is required", common.ErrMissingConfig)
	}
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = 50
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	return cfg, nil
}

// LoadLLMConfig builds the AI-strategy provider settings from configuration.
// The API key falls back to ANTHROPIC_API_KEY.
func LoadLLMConfig() (llm.Config, error) {
	cfg := llm.Config{
		Provider:    viper.GetString("ai.provider"),
		APIKey:      viper.GetString("ai.api_key"),
		Model:       viper.GetString("ai.model"),
		Temperature: viper.GetFloat64("ai.temperature"),
		MaxTokens:   viper.GetInt("ai.max_tokens"),
		RateLimit:   viper.GetInt("ai.rate_limit"),
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.APIKey == "" {
		return llm.Config{}, fmt.Errorf("%w: set ai.api_key or ANTHROPIC_API_KEY", common.ErrMissingConfig)
	}
	return cfg, nil
}

// StorageConfig holds the persistence paths and bounds.
type StorageConfig struct {
	SeenFile    string
	DecisionsDB string
	MaxSeen     int
}

// LoadStorageConfig builds the persistence settings from configuration.
func LoadStorageConfig() StorageConfig {
	cfg := StorageConfig{
		SeenFile:    ExpandPath(viper.GetString("storage.seen_file")),
		DecisionsDB: ExpandPath(viper.GetString("storage.decisions_db")),
		MaxSeen:     viper.GetInt("storage.max_seen"),
	}
	if cfg.SeenFile == "" {
		cfg.SeenFile = "seen_listings.json"
	}
	return cfg
}

// LoadSheetsConfig loads Google Sheets configuration from Viper with
// GOOGLE_SHEETS_* environment variables as fallback.
func LoadSheetsConfig() (sheets.Config, error) {
	cfg := sheets.DefaultConfig()

	if v := viper.GetString("sheets.service_account_path"); v != "" {
		cfg.ServiceAccountPath = ExpandPath(v)
	}
	if v := viper.GetString("sheets.client_id"); v != "" {
		cfg.ClientID = v
	}
	if v := viper.GetString("sheets.client_secret"); v != "" {
		cfg.ClientSecret = v
	}
	if v := viper.GetString("sheets.refresh_token"); v != "" {
		cfg.RefreshToken = v
	}
	if v := viper.GetString("sheets.spreadsheet_id"); v != "" {
		cfg.SpreadsheetID = v
	}
	if v := viper.GetString("sheets.worksheet_name"); v != "" {
		cfg.WorksheetName = v
	}

	if cfg.ServiceAccountPath == "" {
		if v := os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"); v != "" {
			cfg.ServiceAccountPath = ExpandPath(v)
		}
	}
	if cfg.ClientID == "" {
		cfg.ClientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	}
	if cfg.ClientSecret == "" {
		cfg.ClientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	}
	if cfg.RefreshToken == "" {
		cfg.RefreshToken = os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN")
	}
	if cfg.SpreadsheetID == "" {
		cfg.SpreadsheetID = os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID")
	}

	if err := cfg.Validate(); err != nil {
		return sheets.Config{}, fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}
	return cfg, nil
}
