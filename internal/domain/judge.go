package domain

import "time"

// Gender codes derived from judicial honorifics.
const (
	GenderFemale  = "F"
	GenderMale    = "M"
	GenderUnknown = "X"
)

// Judge is a directory entry scraped from judiciary listings.
type Judge struct {
	Name      string
	Gender    string
	Appointed time.Time
	Type      string
	Circuit   string
}

// StoredJudge is a judge row as exposed by the API.
type StoredJudge struct {
	ID          int        `json:"judge_id"`
	Name        string     `json:"judge_name"`
	Gender      string     `json:"gender"`
	Appointed   *time.Time `json:"appointment_date,omitempty"`
	JudgeTypeID *int       `json:"judge_type_id,omitempty"`
	CircuitID   *int       `json:"circuit_id,omitempty"`
}

// StoredCase is a court_case row as exposed by the API.
type StoredCase struct {
	CaseNo  string    `json:"case_no_id"`
	Title   string    `json:"title"`
	JudgeID int       `json:"judge_id"`
	Verdict string    `json:"verdict"`
	Summary string    `json:"summary"`
	Date    time.Time `json:"transcript_date"`
}

// Reference is a row of a small lookup table (circuit, judge_type).
type Reference struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
