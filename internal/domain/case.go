package domain

import (
	"fmt"
	"time"
)

// CaseRecord is a judgment travelling through the extraction pipeline.
// Fields are filled additively by each stage; transient fields never reach storage.
type CaseRecord struct {
	Title     string
	DetailURL string
	PDFURL    string
	LocalPath string

	JudgeName   string
	CaseNo      string
	HearingDate string

	Introduction string
	Conclusion   string

	Verdict string
	Summary string
}

// CaseRow is the loader input: (case_no, title, judge_id, verdict, summary, date).
type CaseRow struct {
	CaseNo    string
	Title     string
	JudgeName string
	JudgeID   int
	Verdict   string
	Summary   string
	Date      time.Time
}

// Pipeline stages that may reject a record.
const (
	StageDetail    = "detail"
	StageAcquire   = "acquire"
	StageExtract   = "extract"
	StageNormalize = "normalize"
)

// Rejection drops a single record from the run. It never aborts the run.
type Rejection struct {
	Title  string
	Stage  string
	Reason string
	Err    error
}

// Reject builds a rejection for the given record title.
func Reject(title, stage, reason string, err error) *Rejection {
	return &Rejection{Title: title, Stage: stage, Reason: reason, Err: err}
}

func (r *Rejection) Error() string {
	if r.Err != nil {
		return fmt.Sprintf("%s: %s rejected: %s: %v", r.Title, r.Stage, r.Reason, r.Err)
	}
	return fmt.Sprintf("%s: %s rejected: %s", r.Title, r.Stage, r.Reason)
}

func (r *Rejection) Unwrap() error {
	return r.Err
}
