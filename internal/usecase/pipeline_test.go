package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"JudgmentScanner/internal/domain"
	"JudgmentScanner/internal/infrastructure/parser"
	"JudgmentScanner/internal/ports"
)

type fakeListing struct {
	pages     map[int][]string
	requested []int
}

func (f *fakeListing) Links(_ context.Context, page int) []string {
	f.requested = append(f.requested, page)
	return f.pages[page]
}

func (f *fakeListing) DetailURL(href string) string {
	return "https://example.test/" + strings.TrimPrefix(href, "/")
}

type fakePage struct {
	title string
	pdf   string
}

func (p fakePage) Title() (string, error) {
	if p.title == "" {
		return "", parser.ErrElementNotFound
	}
	return p.title, nil
}

func (p fakePage) PDFURL() (string, error) {
	if p.pdf == "" {
		return "", parser.ErrElementNotFound
	}
	return p.pdf, nil
}

type fakeDetails map[string]fakePage

func (f fakeDetails) Fetch(_ context.Context, detailURL string) (ports.DetailPage, error) {
	page, ok := f[detailURL]
	if !ok {
		return nil, errors.New("404 Not Found")
	}
	return page, nil
}

type fakeAcquirer struct {
	mu       sync.Mutex
	acquired []string
}

func (f *fakeAcquirer) Acquire(_ context.Context, rec domain.CaseRecord) (domain.CaseRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acquired = append(f.acquired, rec.Title)
	rec.LocalPath = "transcripts/" + rec.Title + ".pdf"
	return rec, nil
}

type fakeExtractor map[string]domain.CaseRecord

func (f fakeExtractor) Extract(_ context.Context, rec domain.CaseRecord) (domain.CaseRecord, error) {
	fields, ok := f[rec.Title]
	if !ok {
		return domain.CaseRecord{}, domain.Reject(rec.Title, domain.StageExtract, "judge name not found", nil)
	}
	rec.JudgeName = fields.JudgeName
	rec.CaseNo = fields.CaseNo
	rec.HearingDate = fields.HearingDate
	rec.Introduction = "Introduction of " + rec.Title
	rec.Conclusion = "Conclusion of " + rec.Title
	return rec, nil
}

type fakeEnricher struct {
	fail bool
}

func (f fakeEnricher) Complete(_ context.Context, system, _ string) (string, error) {
	if f.fail {
		return "", errors.New("quota exceeded")
	}
	if system == verdictSystemPrompt {
		return "Claimant.", nil
	}
	return "  A short summary.  ", nil
}

type fakeCaseRepo struct {
	stored    map[string]struct{}
	judgeIDs  map[string]int
	saved     []domain.CaseRow
	storedErr error
}

func (f *fakeCaseRepo) StoredTitles(context.Context) (map[string]struct{}, error) {
	return f.stored, f.storedErr
}

func (f *fakeCaseRepo) ResolveJudgeID(_ context.Context, name string) (int, error) {
	if id, ok := f.judgeIDs[name]; ok {
		return id, nil
	}
	return 1, nil
}

func (f *fakeCaseRepo) SaveCases(_ context.Context, rows []domain.CaseRow) (int, error) {
	f.saved = append(f.saved, rows...)
	return len(rows), nil
}

type fakeNotifier struct {
	reports []string
}

func (f *fakeNotifier) PublishReport(_ context.Context, report string) error {
	f.reports = append(f.reports, report)
	return nil
}

func headerFields() domain.CaseRecord {
	return domain.CaseRecord{
		JudgeName:   "THE HONOURABLE MR JUSTICE HENSHAW",
		CaseNo:      "CL -2023- 000873",
		HearingDate: "Friday, 22 March 2024",
	}
}

type fixture struct {
	listing   *fakeListing
	details   fakeDetails
	acquirer  *fakeAcquirer
	extractor fakeExtractor
	repo      *fakeCaseRepo
	notifier  *fakeNotifier
}

func newFixture() *fixture {
	return &fixture{
		listing: &fakeListing{pages: map[int][]string{
			1: {"/ewhc/comm/2024/1", "/ewhc/comm/2024/2"},
			2: {"/ewhc/comm/2024/3"},
		}},
		details: fakeDetails{
			"https://example.test/ewhc/comm/2024/1": {title: "Acme v Widget", pdf: "https://example.test/1.pdf"},
			"https://example.test/ewhc/comm/2024/2": {title: "Stored v Case", pdf: "https://example.test/2.pdf"},
			"https://example.test/ewhc/comm/2024/3": {title: "Foo v Bar", pdf: "https://example.test/3.pdf"},
		},
		acquirer: &fakeAcquirer{},
		extractor: fakeExtractor{
			"Acme v Widget": headerFields(),
			"Stored v Case": headerFields(),
			"Foo v Bar":     {JudgeName: "MRS JUSTICE DIAS DBE", CaseNo: "LM- 2022- 000232", HearingDate: "5/3/24"},
		},
		repo: &fakeCaseRepo{
			stored:   map[string]struct{}{"Stored v Case": {}},
			judgeIDs: map[string]int{"HENSHAW": 7, "DIAS": 9},
		},
		notifier: &fakeNotifier{},
	}
}

func (f *fixture) pipeline(enricher ports.Enricher, mutate func(*PipelineDeps)) *Pipeline {
	deps := PipelineDeps{
		Pages:      parser.PageIndexes(),
		Listing:    f.listing,
		Details:    f.details,
		Acquirer:   f.acquirer,
		Extractor:  f.extractor,
		Enricher:   enricher,
		Repository: f.repo,
		Notifier:   f.notifier,
		StartPage:  1,
		Workers:    1,
	}
	if mutate != nil {
		mutate(&deps)
	}
	return NewPipeline(deps)
}

func TestPipeline_Run(t *testing.T) {
	f := newFixture()

	stats, err := f.pipeline(fakeEnricher{}, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, f.listing.requested, "walks pages until an empty listing")
	assert.Equal(t, []string{"Acme v Widget", "Foo v Bar"}, f.acquirer.acquired, "stored titles are never downloaded")
	assert.Equal(t, RunStats{Pages: 2, Links: 3, Skipped: 1, Accepted: 2, Rejected: 0, Loaded: 2}, stats)

	require.Len(t, f.repo.saved, 2)
	first := f.repo.saved[0]
	assert.Equal(t, "CL-2023-000873", first.CaseNo)
	assert.Equal(t, "Acme v Widget", first.Title)
	assert.Equal(t, "HENSHAW", first.JudgeName)
	assert.Equal(t, 7, first.JudgeID)
	assert.Equal(t, "claimant", first.Verdict)
	assert.Equal(t, "A short summary.", first.Summary)
	assert.Equal(t, time.Date(2024, time.March, 22, 0, 0, 0, 0, time.UTC), first.Date)

	second := f.repo.saved[1]
	assert.Equal(t, "LM-2022-000232", second.CaseNo)
	assert.Equal(t, 9, second.JudgeID)
	assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), second.Date)

	require.Len(t, f.notifier.reports, 1)
	assert.Contains(t, f.notifier.reports[0], "Loaded: 2")
	assert.Contains(t, f.notifier.reports[0], "- Acme v Widget\n- Foo v Bar")
}

func TestPipeline_DuplicateTitleWithinRun(t *testing.T) {
	f := newFixture()
	f.listing.pages = map[int][]string{1: {"/ewhc/comm/2024/1", "/ewhc/comm/2024/1-copy"}}
	f.details["https://example.test/ewhc/comm/2024/1-copy"] = fakePage{title: "Acme v Widget", pdf: "https://example.test/1b.pdf"}

	stats, err := f.pipeline(nil, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme v Widget"}, f.acquirer.acquired)
	assert.Equal(t, 1, stats.Accepted)
	assert.Len(t, f.repo.saved, 1)
}

func TestPipeline_PageBounds(t *testing.T) {
	f := newFixture()
	_, err := f.pipeline(nil, func(d *PipelineDeps) { d.EndPage = 1 }).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1}, f.listing.requested)

	f = newFixture()
	_, err = f.pipeline(nil, func(d *PipelineDeps) { d.StartPage = 2 }).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, f.listing.requested)
	assert.Equal(t, []string{"Foo v Bar"}, f.acquirer.acquired)
}

func TestPipeline_EmptyPageWithinBoundsIsSkipped(t *testing.T) {
	f := newFixture()
	f.listing.pages = map[int][]string{
		1: {"/ewhc/comm/2024/1"},
		3: {"/ewhc/comm/2024/3"},
	}

	stats, err := f.pipeline(nil, func(d *PipelineDeps) { d.EndPage = 3 }).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, f.listing.requested)
	assert.Equal(t, []string{"Acme v Widget", "Foo v Bar"}, f.acquirer.acquired)
	assert.Equal(t, 2, stats.Pages)
	assert.Equal(t, 2, stats.Loaded)
}

func TestPipeline_RejectedRecordIsDropped(t *testing.T) {
	f := newFixture()
	delete(f.extractor, "Foo v Bar")

	stats, err := f.pipeline(nil, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Rejected)
	assert.Equal(t, 1, stats.Loaded)
	require.Len(t, f.repo.saved, 1)
	assert.Equal(t, "Acme v Widget", f.repo.saved[0].Title)
}

func TestPipeline_UnparseableDateRejects(t *testing.T) {
	f := newFixture()
	f.extractor["Foo v Bar"] = domain.CaseRecord{JudgeName: "MR JUSTICE FOXTON", CaseNo: "CL-2024-000001", HearingDate: "SDFGHJKJHGFC"}

	stats, err := f.pipeline(nil, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Rejected)
	assert.Len(t, f.repo.saved, 1)
}

func TestPipeline_EnrichmentFailureKeepsRecord(t *testing.T) {
	f := newFixture()

	stats, err := f.pipeline(fakeEnricher{fail: true}, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Loaded)
	for _, row := range f.repo.saved {
		assert.Empty(t, row.Verdict)
		assert.Empty(t, row.Summary)
	}
}

func TestPipeline_DetailErrorsSkipLink(t *testing.T) {
	f := newFixture()
	delete(f.details, "https://example.test/ewhc/comm/2024/1")
	f.details["https://example.test/ewhc/comm/2024/3"] = fakePage{title: "Foo v Bar"}

	stats, err := f.pipeline(nil, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, f.acquirer.acquired)
	assert.Equal(t, 3, stats.Skipped)
	assert.Zero(t, stats.Loaded)
	assert.Empty(t, f.repo.saved)
}

func TestPipeline_ConcurrentWorkersKeepOrder(t *testing.T) {
	f := newFixture()
	f.listing.pages = map[int][]string{1: {}}
	links := make([]string, 0, 20)
	for i := range 20 {
		href := "/case/" + string(rune('a'+i))
		title := "Case " + string(rune('A'+i))
		links = append(links, href)
		f.details["https://example.test"+href] = fakePage{title: title, pdf: "https://example.test" + href + ".pdf"}
		f.extractor[title] = headerFields()
	}
	f.listing.pages[1] = links

	stats, err := f.pipeline(fakeEnricher{}, func(d *PipelineDeps) { d.Workers = 4 }).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 20, stats.Loaded)
	require.Len(t, f.repo.saved, 20)
	for i, row := range f.repo.saved {
		assert.Equal(t, "Case "+string(rune('A'+i)), row.Title)
	}
}

func TestPipeline_StoredTitlesErrorAborts(t *testing.T) {
	f := newFixture()
	f.repo.storedErr = errors.New("connection refused")

	_, err := f.pipeline(nil, nil).Run(context.Background())
	require.Error(t, err)
	assert.Empty(t, f.listing.requested)
}

func TestBuildReportMessage(t *testing.T) {
	msg := buildReportMessage(RunStats{Pages: 3, Links: 30, Accepted: 4, Rejected: 1, Loaded: 3}, []string{"Re X_Y Holdings [2024]"})
	assert.Contains(t, msg, "*Judgment scan finished*")
	assert.Contains(t, msg, "- Re X\\_Y Holdings \\[2024]")
	assert.Contains(t, msg, "Pages scanned: 3")
	assert.Contains(t, msg, "Accepted: 4")
	assert.Contains(t, msg, "Rejected: 1")
	assert.Contains(t, msg, "Loaded: 3")
}

func TestCleanVerdict(t *testing.T) {
	assert.Equal(t, "claimant", cleanVerdict(" Claimant.\n"))
	assert.Equal(t, "defendant", cleanVerdict("DEFENDANT"))
}
