package parser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"JudgmentScanner/internal/domain"
	"JudgmentScanner/internal/scanner"
)

const directoryCellSelector = "td.govuk-table__cell"

// Directory layouts.
const (
	LayoutTwoColumn   = "two-column"
	LayoutThreeColumn = "three-column"
)

// TableScanner reads judiciary directory tables laid out as
// (judge, appointment) or (judge, circuit, appointment).
type TableScanner struct {
	fetcher *Fetcher
	columns int
	logger  *slog.Logger
}

var _ scanner.Scanner = (*TableScanner)(nil)

// NewTwoColumnScanner reads (judge, appointment) tables.
func NewTwoColumnScanner(fetcher *Fetcher, log *slog.Logger) *TableScanner {
	return &TableScanner{fetcher: fetcher, columns: 2, logger: log}
}

// NewThreeColumnScanner reads (judge, circuit, appointment) tables.
func NewThreeColumnScanner(fetcher *Fetcher, log *slog.Logger) *TableScanner {
	return &TableScanner{fetcher: fetcher, columns: 3, logger: log}
}

// Name identifies the layout inside the registry.
func (s *TableScanner) Name() string {
	if s.columns == 3 {
		return LayoutThreeColumn
	}
	return LayoutTwoColumn
}

// Scan fetches the directory page and converts its rows. Rows whose name or
// appointment date cannot be read are skipped.
func (s *TableScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Judge, error) {
	doc, err := s.fetcher.Document(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("directory %s: %w", req.Name, err)
	}

	rows := directoryRows(doc, s.columns)
	judges := make([]domain.Judge, 0, len(rows))
	for _, row := range rows {
		judge, err := s.toJudge(row, req)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("skip directory row", "directory", req.Name, "row", row, "error", err)
			}
			continue
		}
		judges = append(judges, judge)
	}
	return judges, nil
}

func (s *TableScanner) toJudge(row []string, req scanner.Request) (domain.Judge, error) {
	appointed, err := ConvertAppointment(row[len(row)-1])
	if err != nil {
		return domain.Judge{}, err
	}

	name, gender, err := ExtractNameGender(row[0], req.Title)
	if err != nil {
		return domain.Judge{}, err
	}

	circuit := req.Circuit
	if s.columns == 3 {
		circuit = row[1]
	}

	return domain.Judge{
		Name:      name,
		Gender:    gender,
		Appointed: appointed,
		Type:      req.Type,
		Circuit:   circuit,
	}, nil
}

// directoryRows groups table cells into rows, skipping header cells that hold <strong>.
func directoryRows(doc *goquery.Document, columns int) [][]string {
	var cells []string
	doc.Find(directoryCellSelector).Each(func(_ int, td *goquery.Selection) {
		if td.Find("strong").Length() > 0 {
			return
		}
		cells = append(cells, strings.TrimSpace(td.Text()))
	})

	rows := make([][]string, 0, len(cells)/columns)
	for c := 0; c+columns <= len(cells); c += columns {
		rows = append(rows, cells[c:c+columns])
	}
	return rows
}

// ConvertAppointment parses directory dates such as 12-03-2024, 12-03-24 or 12-Mar-24.
func ConvertAppointment(value string) (time.Time, error) {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return time.Time{}, fmt.Errorf("empty appointment date")
	}

	token := fields[0]
	var layout string
	switch len(token) {
	case 10:
		layout = "02-01-2006"
	case 8:
		layout = "02-01-06"
	case 9:
		layout = "02-Jan-06"
	default:
		return time.Time{}, fmt.Errorf("unrecognised appointment date %q", value)
	}

	t, err := time.Parse(layout, token)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse appointment date %q: %w", value, err)
	}
	return t, nil
}

// ExtractNameGender splits "His Honour Judge Smith (Resident)" on the judicial
// title into a bare name and a gender code derived from the honorific prefix.
func ExtractNameGender(judge, title string) (string, string, error) {
	judge = strings.Join(strings.Fields(judge), " ")

	prefix, name, ok := strings.Cut(judge, " "+title+" ")
	if !ok {
		for _, token := range strings.Fields(title) {
			if prefix, name, ok = strings.Cut(judge, " "+token+" "); ok {
				break
			}
		}
	}
	if !ok {
		return "", "", fmt.Errorf("title %q not found in %q", title, judge)
	}

	if i := strings.Index(name, "("); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", fmt.Errorf("no name after title in %q", judge)
	}

	return name, genderFromPrefix(prefix), nil
}

func genderFromPrefix(prefix string) string {
	words := strings.Fields(prefix)
	if len(words) == 0 {
		return domain.GenderUnknown
	}
	switch words[len(words)-1] {
	case "Her", "Mrs", "Ms", "Miss", "Dame":
		return domain.GenderFemale
	case "His", "Mr", "Sir":
		return domain.GenderMale
	default:
		return domain.GenderUnknown
	}
}
