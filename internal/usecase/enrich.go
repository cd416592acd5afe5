package usecase

import (
	"context"
	"fmt"
	"strings"

	"JudgmentScanner/internal/domain"
)

const (
	verdictSystemPrompt = "You are a solicitor reading case conclusion statements."
	verdictPrompt       = "For the given case: '%s'. State in one word and no punctuation, in favour of whom did the judge rule, claimant or defendant?"

	summarySystemPrompt = "You are a solicitor reading case introduction statements."
	summaryPrompt       = "Given this introduction: '%s'. Summarise the introduction to a few lines."
)

// enrich asks the LLM for a verdict and a summary. A failed call leaves the
// field empty; the record is still loaded.
func (p *Pipeline) enrich(ctx context.Context, rec domain.CaseRecord) domain.CaseRecord {
	if p.enricher == nil {
		return rec
	}

	if strings.TrimSpace(rec.Conclusion) != "" {
		verdict, err := p.enricher.Complete(ctx, verdictSystemPrompt, fmt.Sprintf(verdictPrompt, rec.Conclusion))
		if err != nil {
			p.logger.Warn("verdict enrichment failed", "title", rec.Title, "error", err)
		} else {
			rec.Verdict = cleanVerdict(verdict)
		}
	}

	if strings.TrimSpace(rec.Introduction) != "" {
		summary, err := p.enricher.Complete(ctx, summarySystemPrompt, fmt.Sprintf(summaryPrompt, rec.Introduction))
		if err != nil {
			p.logger.Warn("summary enrichment failed", "title", rec.Title, "error", err)
		} else {
			rec.Summary = strings.TrimSpace(summary)
		}
	}

	return rec
}

// cleanVerdict keeps the one-word answer lower-cased and stripped of punctuation.
func cleanVerdict(answer string) string {
	answer = strings.ToLower(strings.TrimSpace(answer))
	return strings.TrimRight(answer, ".!,;: ")
}
