package pdf

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"JudgmentScanner/internal/domain"
	"JudgmentScanner/internal/ports"
)

// Pages holds the transcript pages the extractor looks at.
type Pages struct {
	First  string
	Second string
	Last   string
	Count  int
}

// matcher returns the trimmed capture of its pattern, or false.
type matcher func(text string) (string, bool)

func pattern(expr string) matcher {
	re := regexp.MustCompile(expr)
	return func(text string) (string, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return "", false
		}
		value := strings.TrimSpace(m[1])
		return value, value != ""
	}
}

// Layout variants seen in transcripts, in priority order. The first match wins.
var (
	judgeCascade = []matcher{
		pattern(`Before :\s*([^\n]+)`),
		pattern(`Before  : \s*([^\n]+)`),
		pattern(`Before\s+:\s+([^\n]+)`),
		pattern(`Before:\s*([^\n]+)`),
		pattern(`BEFORE:\s*([^\n]+)`),
		pattern(`(THE HONOURABLE [A-Z][A-Z .'-]*[A-Z])`),
	}

	caseNoCascade = []matcher{
		pattern(`([A-Z]{2}[ \t-]*\d{4}[ \t-]*\d{6}(?:[ \t]*&[ \t]*[A-Z]{2}[ \t-]*\d{4}[ \t-]*\d{6})*)`),
	}

	dateCascade = []matcher{
		pattern(`Date:[ \t]*([^\n]+)`),
		pattern(`Date :[ \t]*([^\n]+)`),
		pattern(`((?:[A-Z][a-z]+,?\s+)?\d{1,2}(?:st|nd|rd|th)?\s+[A-Z][a-z]+\s+\d{4}|\d{1,2}/\d{1,2}/\d{2,4})`),
	}
)

func firstMatch(cascade []matcher, text string) (string, bool) {
	for _, match := range cascade {
		if value, ok := match(text); ok {
			return value, true
		}
	}
	return "", false
}

// ExtractFields resolves judge, case number and hearing date from the header
// pages. Every field must resolve or the record is rejected as a whole.
func ExtractFields(rec domain.CaseRecord, pages Pages) (domain.CaseRecord, error) {
	header := pages.First + "\n" + pages.Second

	judge, ok := firstMatch(judgeCascade, header)
	if !ok {
		return domain.CaseRecord{}, domain.Reject(rec.Title, domain.StageExtract, "judge name not found", nil)
	}

	caseNo, ok := firstMatch(caseNoCascade, header)
	if !ok {
		return domain.CaseRecord{}, domain.Reject(rec.Title, domain.StageExtract, "case number not found", nil)
	}

	date, ok := firstMatch(dateCascade, header)
	if !ok {
		return domain.CaseRecord{}, domain.Reject(rec.Title, domain.StageExtract, "hearing date not found", nil)
	}

	rec.JudgeName = judge
	rec.CaseNo = caseNo
	rec.HearingDate = date
	rec.Introduction = pages.Second
	if pages.Count < 2 {
		rec.Introduction = pages.First
	}
	rec.Conclusion = pages.Last
	return rec, nil
}

// Extractor reads downloaded transcripts from disk.
type Extractor struct{}

var _ ports.FieldExtractor = Extractor{}

// Extract reads the record's PDF and fills the header fields.
func (Extractor) Extract(_ context.Context, rec domain.CaseRecord) (domain.CaseRecord, error) {
	pages, err := ReadPages(rec.LocalPath)
	if err != nil {
		return domain.CaseRecord{}, domain.Reject(rec.Title, domain.StageExtract, "read pdf", err)
	}
	return ExtractFields(rec, pages)
}

// ReadPages returns the plain text of the first, second and last pages.
func ReadPages(path string) (Pages, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return Pages{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	total := r.NumPage()
	if total == 0 {
		return Pages{}, fmt.Errorf("%s has no pages", path)
	}

	// The pdf package panics on malformed content streams.
	text := func(i int) (s string, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("page %d of %s: %v", i, path, rec)
			}
		}()
		p := r.Page(i)
		if p.V.IsNull() {
			return "", nil
		}
		return pageLines(p.Content().Text), nil
	}

	pages := Pages{Count: total}
	if pages.First, err = text(1); err != nil {
		return Pages{}, err
	}
	if total >= 2 {
		if pages.Second, err = text(2); err != nil {
			return Pages{}, err
		}
	}
	if pages.Last, err = text(total); err != nil {
		return Pages{}, err
	}
	return pages, nil
}

// rowTolerance is how far apart two glyph baselines may be and still share a line.
const rowTolerance = 2.0

type textRow struct {
	y     float64
	glyph []pdf.Text
}

// pageLines rebuilds the page's lines from positioned glyphs: glyphs are grouped
// into rows by baseline, rows run top to bottom and glyphs left to right.
// A horizontal gap wider than a third of the font size becomes a space.
func pageLines(texts []pdf.Text) string {
	var rows []textRow
	for _, t := range texts {
		if t.S == "" {
			continue
		}
		placed := false
		for i := range rows {
			if math.Abs(rows[i].y-t.Y) < rowTolerance {
				rows[i].glyph = append(rows[i].glyph, t)
				placed = true
				break
			}
		}
		if !placed {
			rows = append(rows, textRow{y: t.Y, glyph: []pdf.Text{t}})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].y > rows[j].y })

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		sort.SliceStable(row.glyph, func(i, j int) bool { return row.glyph[i].X < row.glyph[j].X })

		var b strings.Builder
		for i, t := range row.glyph {
			if i > 0 {
				prev := row.glyph[i-1]
				gap := t.X - (prev.X + prev.W)
				if prev.W > 0 && gap > t.FontSize/3 && !strings.HasSuffix(prev.S, " ") && !strings.HasPrefix(t.S, " ") {
					b.WriteByte(' ')
				}
			}
			b.WriteString(t.S)
		}

		if line := strings.TrimSpace(b.String()); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
