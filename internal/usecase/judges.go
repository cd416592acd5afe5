package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"JudgmentScanner/internal/domain"
	"JudgmentScanner/internal/logging"
	"JudgmentScanner/internal/ports"
)

// JudgeSource yields judge entries from every configured directory.
type JudgeSource interface {
	FetchJudges(ctx context.Context) ([]domain.Judge, error)
}

// JudgeIngest loads the judiciary directories into the judge tables.
type JudgeIngest struct {
	source     JudgeSource
	repository ports.JudgeRepository
	logger     *slog.Logger
}

// NewJudgeIngest wires the directory source to the judge repository.
func NewJudgeIngest(source JudgeSource, repository ports.JudgeRepository, logger *slog.Logger) *JudgeIngest {
	if logger == nil {
		logger = logging.Discard()
	}
	return &JudgeIngest{
		source:     source,
		repository: repository,
		logger:     logger.With("component", "judges"),
	}
}

// Run scrapes every directory and stores the judges it found. It returns the
// number of judges inserted.
func (j *JudgeIngest) Run(ctx context.Context) (int, error) {
	if j.source == nil || j.repository == nil {
		return 0, errors.New("judge ingest misconfigured")
	}

	judges, err := j.source.FetchJudges(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch judges: %w", err)
	}
	if len(judges) == 0 {
		j.logger.Warn("no judges found")
		return 0, nil
	}

	inserted, err := j.repository.SaveJudges(ctx, judges)
	if err != nil {
		return 0, fmt.Errorf("save judges: %w", err)
	}

	j.logger.Info("judges stored", "scraped", len(judges), "inserted", inserted)
	return inserted, nil
}
