// Package normalize canonicalizes the raw fields pulled out of judgment transcripts.
package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"JudgmentScanner/internal/domain"
)

// CaseNoLength is the length of one canonical case number, e.g. CL-2023-000873.
const CaseNoLength = 14

// DateLayout is the canonical hearing date layout (dd/mm/yyyy).
const DateLayout = "02/01/2006"

var (
	canonicalDate = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
	writtenDate   = regexp.MustCompile(`(\d{1,2})(?:st|nd|rd|th)? ([A-Za-z]+),? (\d{4}|\d{2})\b`)
	slashDate     = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4}|\d{2})\b`)
)

var months = map[string]string{
	"january":   "01",
	"february":  "02",
	"march":     "03",
	"april":     "04",
	"may":       "05",
	"june":      "06",
	"july":      "07",
	"august":    "08",
	"september": "09",
	"october":   "10",
	"november":  "11",
	"december":  "12",
}

var honorifics = map[string]struct{}{
	"mr": {}, "mrs": {}, "miss": {}, "ms": {}, "sir": {}, "justice": {},
	"the": {}, "honourable": {}, "his": {}, "her": {}, "honour": {},
	"hon": {}, "kc": {}, "dbe": {}, "judge": {}, "dame": {},
}

// IsCanonicalDate reports whether s is already dd/mm/yyyy.
func IsCanonicalDate(s string) bool {
	return canonicalDate.MatchString(strings.TrimSpace(s))
}

// CleanDate turns a hearing date into dd/mm/yyyy. The second result is false
// when no written or slash date can be found. Two-digit years are read as 20xx.
func CleanDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if canonicalDate.MatchString(s) {
		return s, true
	}

	written, writtenAt := firstWrittenDate(s)
	slash := slashDate.FindStringSubmatchIndex(s)

	// The leftmost date wins when a line carries both forms.
	if written != "" && (slash == nil || writtenAt <= slash[0]) {
		return written, true
	}

	if slash != nil {
		m := slashDate.FindStringSubmatch(s[slash[0]:])
		return join(m[1], m[2], m[3]), true
	}

	return "", false
}

// firstWrittenDate returns the first "<day> <Month> <year>" whose month name is real.
func firstWrittenDate(s string) (string, int) {
	for _, idx := range writtenDate.FindAllStringSubmatchIndex(s, -1) {
		month, ok := months[strings.ToLower(s[idx[4]:idx[5]])]
		if !ok {
			continue
		}
		return join(s[idx[2]:idx[3]], month, s[idx[6]:idx[7]]), idx[0]
	}
	return "", -1
}

func join(day, month, year string) string {
	if len(day) == 1 {
		day = "0" + day
	}
	if len(month) == 1 {
		month = "0" + month
	}
	if len(year) == 2 {
		year = "20" + year
	}
	return day + "/" + month + "/" + year
}

// ParseDate converts a canonical dd/mm/yyyy string into a date value.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse hearing date %q: %w", s, err)
	}
	return t, nil
}

// StripTitles removes honorifics and judicial titles and upper-cases the rest.
//
//	StripTitles("MRS JUSTICE DIAS DBE") == "DIAS"
//	StripTitles("SIR NIGEL TEARE")      == "NIGEL TEARE"
func StripTitles(fullName string) string {
	var kept []string
	for _, part := range strings.Fields(fullName) {
		if _, drop := honorifics[strings.ToLower(part)]; drop {
			continue
		}
		kept = append(kept, part)
	}
	return strings.ToUpper(strings.Join(kept, " "))
}

// StandardizeCaseNo removes stray spaces from a case number and spaces every
// "&" separator as " & ". A single canonical number is returned unchanged.
func StandardizeCaseNo(caseNo string) string {
	if len(caseNo) == CaseNoLength {
		return caseNo
	}
	compact := strings.ReplaceAll(caseNo, " ", "")
	return strings.ReplaceAll(compact, "&", " & ")
}

// Record applies every field transform to an extracted record. A record whose
// date cannot be normalized is rejected.
func Record(rec domain.CaseRecord) (domain.CaseRecord, error) {
	date, ok := CleanDate(rec.HearingDate)
	if !ok {
		return domain.CaseRecord{}, domain.Reject(rec.Title, domain.StageNormalize,
			fmt.Sprintf("unparseable hearing date %q", rec.HearingDate), nil)
	}

	rec.HearingDate = date
	rec.JudgeName = StripTitles(rec.JudgeName)
	rec.CaseNo = StandardizeCaseNo(rec.CaseNo)
	return rec, nil
}
