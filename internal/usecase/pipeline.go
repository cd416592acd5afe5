package usecase

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"JudgmentScanner/internal/dedup"
	"JudgmentScanner/internal/domain"
	"JudgmentScanner/internal/logging"
	"JudgmentScanner/internal/normalize"
	"JudgmentScanner/internal/ports"
)

// PipelineDeps wires all driven adapters into the case pipeline.
type PipelineDeps struct {
	Pages      iter.Seq[int]
	Listing    ports.ListingSource
	Details    ports.DetailSource
	Acquirer   ports.Acquirer
	Extractor  ports.FieldExtractor
	Enricher   ports.Enricher
	Repository ports.CaseRepository
	Notifier   ports.Notifier
	Logger     *slog.Logger

	StartPage int
	EndPage   int
	Workers   int
}

// RunStats summarises one pipeline run.
type RunStats struct {
	Pages    int
	Links    int
	Skipped  int
	Accepted int
	Rejected int
	Loaded   int
}

// Pipeline implements the judgment-ingestion workflow.
type Pipeline struct {
	pages      iter.Seq[int]
	listing    ports.ListingSource
	details    ports.DetailSource
	acquirer   ports.Acquirer
	extractor  ports.FieldExtractor
	enricher   ports.Enricher
	repository ports.CaseRepository
	notifier   ports.Notifier
	logger     *slog.Logger

	startPage int
	endPage   int
	workers   int
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	workers := deps.Workers
	if workers < 1 {
		workers = 1
	}
	startPage := deps.StartPage
	if startPage < 1 {
		startPage = 1
	}

	return &Pipeline{
		pages:      deps.Pages,
		listing:    deps.Listing,
		details:    deps.Details,
		acquirer:   deps.Acquirer,
		extractor:  deps.Extractor,
		enricher:   deps.Enricher,
		repository: deps.Repository,
		notifier:   deps.Notifier,
		logger:     logger.With("component", "pipeline"),
		startPage:  startPage,
		endPage:    deps.EndPage,
		workers:    workers,
	}
}

type finishedRow struct {
	seq int
	row domain.CaseRow
}

// Run walks the listing pages, processes every new judgment and loads the
// finished rows. Per-record failures are logged and never abort the run.
func (p *Pipeline) Run(ctx context.Context) (RunStats, error) {
	var stats RunStats
	if p.pages == nil || p.listing == nil || p.details == nil {
		return stats, errors.New("pipeline misconfigured: pages, listing and details are required")
	}

	stored := map[string]struct{}{}
	if p.repository != nil {
		var err error
		stored, err = p.repository.StoredTitles(ctx)
		if err != nil {
			return stats, fmt.Errorf("load stored titles: %w", err)
		}
	}
	gate := dedup.NewGate(stored)
	p.logger.Info("pipeline started", "stored_titles", len(stored), "workers", p.workers)

	var (
		mu       sync.Mutex
		finished []finishedRow
		rejected int
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for page := range p.pages {
		if page < p.startPage {
			continue
		}
		if p.endPage > 0 && page > p.endPage {
			break
		}
		if ctx.Err() != nil {
			break
		}

		links := p.listing.Links(ctx, page)
		if len(links) == 0 {
			// With a fixed end page an empty page may be a failed fetch;
			// only an open-ended walk treats it as the end of the listing.
			if p.endPage > 0 {
				p.logger.Warn("listing page empty", "page", page)
				continue
			}
			p.logger.Info("listing exhausted", "page", page)
			break
		}
		stats.Pages++
		stats.Links += len(links)

		for _, href := range links {
			rec, ok := p.describe(ctx, href)
			if !ok {
				stats.Skipped++
				continue
			}
			if !gate.Accept(rec.Title) {
				p.logger.Debug("already stored", "title", rec.Title)
				stats.Skipped++
				continue
			}

			seq := stats.Accepted
			stats.Accepted++
			g.Go(func() error {
				row, err := p.process(gCtx, rec)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					rejected++
					p.logRejection(err)
					return nil
				}
				finished = append(finished, finishedRow{seq: seq, row: row})
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return stats, err
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	stats.Rejected = rejected
	sort.Slice(finished, func(i, j int) bool { return finished[i].seq < finished[j].seq })

	rows := make([]domain.CaseRow, len(finished))
	for i, f := range finished {
		rows[i] = f.row
	}

	loaded, err := p.load(ctx, rows)
	if err != nil {
		return stats, err
	}
	stats.Loaded = loaded

	p.logger.Info("pipeline finished",
		"pages", stats.Pages,
		"accepted", stats.Accepted,
		"rejected", stats.Rejected,
		"loaded", stats.Loaded)

	p.report(ctx, stats, gate.Accepted())
	return stats, nil
}

// describe fetches a detail page and builds the in-flight record. Any missing
// element skips the link.
func (p *Pipeline) describe(ctx context.Context, href string) (domain.CaseRecord, bool) {
	detailURL := p.listing.DetailURL(href)

	page, err := p.details.Fetch(ctx, detailURL)
	if err != nil {
		p.logger.Warn("detail fetch failed", "url", detailURL, "error", err)
		return domain.CaseRecord{}, false
	}

	title, err := page.Title()
	if err != nil {
		p.logger.Warn("detail title missing", "url", detailURL, "error", err)
		return domain.CaseRecord{}, false
	}

	pdfURL, err := page.PDFURL()
	if err != nil {
		p.logger.Warn("detail pdf link missing", "title", title, "error", err)
		return domain.CaseRecord{}, false
	}

	return domain.CaseRecord{Title: title, DetailURL: detailURL, PDFURL: pdfURL}, true
}

// process runs one accepted record through acquire, extract, normalize and enrich.
func (p *Pipeline) process(ctx context.Context, rec domain.CaseRecord) (domain.CaseRow, error) {
	var err error

	if p.acquirer != nil {
		if rec, err = p.acquirer.Acquire(ctx, rec); err != nil {
			return domain.CaseRow{}, err
		}
	}

	if p.extractor != nil {
		if rec, err = p.extractor.Extract(ctx, rec); err != nil {
			return domain.CaseRow{}, err
		}
	}

	if rec, err = normalize.Record(rec); err != nil {
		return domain.CaseRow{}, err
	}

	rec = p.enrich(ctx, rec)

	date, err := normalize.ParseDate(rec.HearingDate)
	if err != nil {
		return domain.CaseRow{}, domain.Reject(rec.Title, domain.StageNormalize, "invalid hearing date", err)
	}

	return domain.CaseRow{
		CaseNo:    rec.CaseNo,
		Title:     rec.Title,
		JudgeName: rec.JudgeName,
		Verdict:   rec.Verdict,
		Summary:   rec.Summary,
		Date:      date,
	}, nil
}

// load resolves judge ids and persists the rows in one batch.
func (p *Pipeline) load(ctx context.Context, rows []domain.CaseRow) (int, error) {
	if p.repository == nil || len(rows) == 0 {
		return 0, nil
	}

	for i := range rows {
		id, err := p.repository.ResolveJudgeID(ctx, rows[i].JudgeName)
		if err != nil {
			return 0, fmt.Errorf("resolve judge for %s: %w", rows[i].Title, err)
		}
		rows[i].JudgeID = id
	}

	loaded, err := p.repository.SaveCases(ctx, rows)
	if err != nil {
		return 0, fmt.Errorf("save cases: %w", err)
	}
	return loaded, nil
}

func (p *Pipeline) report(ctx context.Context, stats RunStats, accepted []string) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.PublishReport(ctx, buildReportMessage(stats, accepted)); err != nil {
		p.logger.Warn("report not delivered", "error", err)
	}
}

func (p *Pipeline) logRejection(err error) {
	var rej *domain.Rejection
	if errors.As(err, &rej) {
		p.logger.Warn("record rejected", "title", rej.Title, "stage", rej.Stage, "reason", rej.Reason, "error", rej.Err)
		return
	}
	p.logger.Warn("record failed", "error", err)
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "[", "\\[", "`", "\\`")

// buildReportMessage renders the run summary in Telegram Markdown, followed by
// the titles accepted this run.
func buildReportMessage(stats RunStats, accepted []string) string {
	var b strings.Builder
	b.WriteString("*Judgment scan finished*\n")
	fmt.Fprintf(&b, "Pages scanned: %d\n", stats.Pages)
	fmt.Fprintf(&b, "Links seen: %d\n", stats.Links)
	fmt.Fprintf(&b, "Accepted: %d\n", stats.Accepted)
	fmt.Fprintf(&b, "Rejected: %d\n", stats.Rejected)
	fmt.Fprintf(&b, "Loaded: %d", stats.Loaded)

	if len(accepted) > 0 {
		b.WriteString("\n\n*New judgments*")
		for _, title := range accepted {
			b.WriteString("\n- ")
			b.WriteString(markdownEscaper.Replace(title))
		}
	}
	return b.String()
}
