package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/aristotlemanolakos/nyc-apartment-scraper/internal/classify"
	"github.com/aristotlemanolakos/nyc-apartment-scraper/internal/config"
	"github.com/aristotlemanolakos/nyc-apartment-scraper/internal/engine"
	"github.com/aristotlemanolakos/nyc-apartment-scraper/internal/llm"
	"github.com/aristotlemanolakos/nyc-apartment-scraper/internal/reddit"
	"github.com/aristotlemanolakos/nyc-apartment-scraper/internal/sheets"
	"github.com/aristotlemanolakos/nyc-apartment-scraper/internal/storage"
)

// buildEngine assembles the scan engine from configuration. In test mode the
// sheet sink is skipped entirely; everything else still runs.
func buildEngine(ctx context.Context, testMode bool) (*engine.Engine, func(), error) {
	logger := slog.Default()
	cleanup := func() {}

	criteria, err := config.LoadCriteria()
	if err != nil {
		return nil, cleanup, err
	}

	scraperCfg, err := config.LoadScraperConfig()
	if err != nil {
		return nil, cleanup, err
	}

	source, err := reddit.NewClient(scraperCfg.Subreddits, scraperCfg.UserAgent, logger)
	if err != nil {
		return nil, cleanup, fmt.Errorf("failed to create reddit client: %w", err)
	}

	classifier, err := buildClassifier(logger)
	if err != nil {
		return nil, cleanup, err
	}

	storageCfg := config.LoadStorageConfig()
	seen := storage.NewSeenStore(storageCfg.SeenFile, storageCfg.MaxSeen, logger)

	var recorder engine.DecisionRecorder
	if storageCfg.DecisionsDB != "" {
		decisionLog, logErr := storage.NewDecisionLog(storageCfg.DecisionsDB)
		if logErr != nil {
			return nil, cleanup, fmt.Errorf("failed to open decision log: %w", logErr)
		}
		cleanup = func() { _ = decisionLog.Close() }
		recorder = decisionLog
	}

	var sink engine.Sink
	if !testMode {
		sheetsCfg, cfgErr := config.LoadSheetsConfig()
		if cfgErr != nil {
			return nil, cleanup, cfgErr
		}
		writer, writerErr := sheets.NewWriter(ctx, sheetsCfg, logger)
		if writerErr != nil {
			return nil, cleanup, fmt.Errorf("failed to connect to Google Sheets (use --test to skip): %w", writerErr)
		}
		sink = writer
	} else {
		logger.Info("TEST MODE: sheet writes disabled")
	}

	eng, err := engine.New(engine.Config{
		Source:     source,
		Classifier: classifier,
		Sink:       sink,
		Recorder:   recorder,
		Seen:       seen,
		Logger:     logger,
		Criteria:   criteria,
		FetchLimit: scraperCfg.FetchLimit,
	})
	if err != nil {
		return nil, cleanup, err
	}

	logger.Info("scout configured",
		"subreddits", scraperCfg.Subreddits,
		"strategy", classifier.Name(),
		"price_min", criteria.PriceMin,
		"price_max", criteria.PriceMax,
		"neighborhoods", len(criteria.Neighborhoods),
		"seen", seen.Count())

	return eng, cleanup, nil
}

func buildClassifier(logger *slog.Logger) (classify.Classifier, error) {
	strategy := viper.GetString("filter.strategy")
	switch strategy {
	case classify.StrategyRules:
		return classify.NewRulesClassifier(logger), nil
	case classify.StrategyAI, "":
		llmCfg, err := config.LoadLLMConfig()
		if err != nil {
			return nil, err
		}
		client, err := llm.NewClient(llmCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		return classify.NewAIClassifier(client, logger), nil
	default:
		return nil, fmt.Errorf("unknown filter strategy: %s", strategy)
	}
}
