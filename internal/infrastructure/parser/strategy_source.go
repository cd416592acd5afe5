package parser

import (
	"context"
	"fmt"
	"log/slog"

	"JudgmentScanner/internal/config"
	"JudgmentScanner/internal/domain"
	"JudgmentScanner/internal/scanner"
)

// DirectorySource reads every configured judiciary directory through its layout strategy.
type DirectorySource struct {
	registry    *scanner.Registry
	directories []config.DirectoryConfig
	logger      *slog.Logger
}

// NewDirectorySource wires the layout registry with config-defined directories.
func NewDirectorySource(reg *scanner.Registry, dirs []config.DirectoryConfig, log *slog.Logger) *DirectorySource {
	return &DirectorySource{
		registry:    reg,
		directories: dirs,
		logger:      log,
	}
}

// FetchJudges scans each directory. A directory that cannot be fetched is
// logged and skipped; an unknown layout is a configuration error.
func (s *DirectorySource) FetchJudges(ctx context.Context) ([]domain.Judge, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	s.debug("fetch judges", "directories", len(s.directories))

	var aggregated []domain.Judge
	for _, dir := range s.directories {
		strategy, err := s.registry.Resolve(dir.Layout)
		if err != nil {
			return nil, fmt.Errorf("directory %s: %w", dir.Name, err)
		}

		req := scanner.Request{
			Name:    dir.Name,
			URL:     dir.URL,
			Title:   dir.Title,
			Type:    dir.Type,
			Circuit: dir.Circuit,
		}

		results, err := strategy.Scan(ctx, req)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("directory scan failed", "directory", dir.Name, "error", err)
			}
			continue
		}

		s.debug("directory produced judges", "directory", dir.Name, "count", len(results))
		aggregated = append(aggregated, results...)
	}

	s.debug("directory source done", "total_judges", len(aggregated))
	return aggregated, nil
}

func (s *DirectorySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
