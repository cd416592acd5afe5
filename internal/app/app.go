package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"JudgmentScanner/internal/api"
	"JudgmentScanner/internal/config"
	"JudgmentScanner/internal/infrastructure/llm"
	"JudgmentScanner/internal/infrastructure/parser"
	"JudgmentScanner/internal/infrastructure/pdf"
	"JudgmentScanner/internal/infrastructure/scheduler"
	"JudgmentScanner/internal/infrastructure/storage"
	"JudgmentScanner/internal/infrastructure/telegram"
	"JudgmentScanner/internal/logging"
	"JudgmentScanner/internal/ports"
	"JudgmentScanner/internal/scanner"
	"JudgmentScanner/internal/usecase"
)

const llmTimeout = 30 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	repo   *storage.PostgresRepository
	close  func()
}

// New validates the configuration and connects to the database.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	pool, err := storage.Connect(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	return &Application{
		cfg:    cfg,
		logger: baseLogger,
		repo:   storage.NewPostgresRepository(pool, cfg.Database.DefaultJudgeID),
		close:  pool.Close,
	}, nil
}

// Close releases the database pool.
func (a *Application) Close() {
	if a.close != nil {
		a.close()
	}
}

// Migrate creates the database tables.
func (a *Application) Migrate(ctx context.Context) error {
	return a.repo.Migrate(ctx)
}

// RunCases executes the case pipeline, repeating every period when it is positive.
func (a *Application) RunCases(ctx context.Context, every time.Duration) error {
	var lastErr error
	err := scheduler.NewIntervalScheduler(every).Run(ctx, func(ctx context.Context, trigger time.Time) {
		logger := a.logger.With("run_id", uuid.NewString())
		logger.Info("case run triggered", "at", trigger.Format(time.RFC3339))

		if _, err := a.runCasesOnce(ctx, logger); err != nil {
			logger.Error("case run failed", "error", err)
			lastErr = err
			return
		}
		lastErr = nil
	})
	if every > 0 && ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return err
	}
	return lastErr
}

func (a *Application) runCasesOnce(ctx context.Context, logger *slog.Logger) (usecase.RunStats, error) {
	sc := a.cfg.Scraper
	fetcher := parser.NewFetcher(&http.Client{Timeout: sc.Timeout()}, sc.RequestsPerSecond)

	enricher, closeEnricher, err := a.buildEnricher(ctx, logger)
	if err != nil {
		return usecase.RunStats{}, err
	}
	defer closeEnricher()

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Pages:      parser.PageIndexes(),
		Listing:    parser.NewListingScraper(fetcher, sc.BaseURL, sc.QueryExtension, logger.With("component", "listing")),
		Details:    parser.NewDetailFetcher(fetcher),
		Acquirer:   pdf.NewAcquirer(fetcher.Client(), sc.BaseURL, sc.StorageFolder, logger.With("component", "acquirer")),
		Extractor:  pdf.Extractor{},
		Enricher:   enricher,
		Repository: a.repo,
		Notifier:   a.buildNotifier(),
		Logger:     logger,
		StartPage:  sc.StartPage,
		EndPage:    sc.EndPage,
		Workers:    sc.Workers,
	})

	return pipeline.Run(ctx)
}

// IngestJudges scrapes the configured judiciary directories into the judge tables.
func (a *Application) IngestJudges(ctx context.Context) (int, error) {
	logger := a.logger.With("run_id", uuid.NewString())
	fetcher := parser.NewFetcher(&http.Client{Timeout: a.cfg.Scraper.Timeout()}, a.cfg.Scraper.RequestsPerSecond)

	registry := scanner.NewRegistry()
	registry.Register(parser.NewTwoColumnScanner(fetcher, logger.With("component", "scanner."+parser.LayoutTwoColumn)))
	registry.Register(parser.NewThreeColumnScanner(fetcher, logger.With("component", "scanner."+parser.LayoutThreeColumn)))

	source := parser.NewDirectorySource(registry, a.cfg.Directories, logger.With("component", "directories"))
	return usecase.NewJudgeIngest(source, a.repo, logger).Run(ctx)
}

// Serve runs the read-only API until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	return api.NewServer(a.repo, a.cfg.Server.Port, a.logger).Start(ctx)
}

func (a *Application) buildEnricher(ctx context.Context, logger *slog.Logger) (ports.Enricher, func(), error) {
	noop := func() {}

	switch a.cfg.Enrichment.Provider {
	case config.ProviderGemini:
		if a.cfg.Gemini.APIKey == "" {
			logger.Warn("gemini api key missing, enrichment disabled")
			return nil, noop, nil
		}
		client, err := llm.NewGeminiClient(ctx, a.cfg.Gemini)
		if err != nil {
			return nil, noop, fmt.Errorf("gemini client: %w", err)
		}
		return client, func() { _ = client.Close() }, nil
	default:
		if a.cfg.ChatGPT.APIKey == "" {
			logger.Warn("openai api key missing, enrichment disabled")
			return nil, noop, nil
		}
		return llm.NewChatGPTClient(a.cfg.ChatGPT, llmTimeout), noop, nil
	}
}

func (a *Application) buildNotifier() ports.Notifier {
	tg := a.cfg.Notifications.Telegram
	if tg.BotToken == "" || tg.ChatID == "" {
		return nil
	}
	return telegram.NewNotifier(tg.BotToken, tg.ChatID)
}
