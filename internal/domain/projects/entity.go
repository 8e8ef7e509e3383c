package projects

import (
	"encoding/json"
	"fmt"
	"time"
)

// ReportID type for report identifiers
type ReportID string

// Status enum
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// RawContentComponent is the special component whose answers are written to
// the report's top-level content fields instead of the component map.
const RawContentComponent = "report_content"

// FileRef points at one uploaded asset inside the active working tree.
type FileRef struct {
	Filename     string `json:"filename"`
	RelativePath string `json:"relative_path"`
	Type         string `json:"type"`
}

// AnswerValue is either free text or an ordered list of attached files.
// Historical project files stored three shapes for the same field (string,
// single object, list of objects); the union resolves them once at decode
// time instead of re-inferring on every read.
type AnswerValue struct {
	Text  string
	Files []FileRef
}

// IsFile reports whether the value carries file attachments.
func (v AnswerValue) IsFile() bool { return v.Files != nil }

// AppendFiles returns the value with refs appended. A scalar value is
// replaced; an existing list grows.
func (v AnswerValue) AppendFiles(refs ...FileRef) AnswerValue {
	if v.Files == nil {
		return AnswerValue{Files: append([]FileRef{}, refs...)}
	}
	return AnswerValue{Files: append(v.Files, refs...)}
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	if v.Files != nil {
		return json.Marshal(v.Files)
	}
	return json.Marshal(v.Text)
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = AnswerValue{Text: s}
		return nil
	}
	var one FileRef
	if err := json.Unmarshal(data, &one); err == nil && one.Filename != "" {
		*v = AnswerValue{Files: []FileRef{one}}
		return nil
	}
	var many []FileRef
	if err := json.Unmarshal(data, &many); err == nil {
		*v = AnswerValue{Files: many}
		return nil
	}
	return fmt.Errorf("answer value: unsupported shape: %s", string(data))
}

// ComponentData holds one department's answers.
type ComponentData struct {
	Answers     map[string]AnswerValue `json:"answers"`
	LastUpdated time.Time              `json:"last_updated"`
}

// Report is one versioned investor-report artifact.
type Report struct {
	ReportID        ReportID                 `json:"report_id"`
	ReportDate      string                   `json:"report_date"`
	CreatedAt       time.Time                `json:"created_at"`
	LastUpdated     time.Time                `json:"last_updated"`
	Components      map[string]ComponentData `json:"components"`
	Status          Status                   `json:"status"`
	ReportGenerated bool                     `json:"report_generated"`
	ReportContent   string                   `json:"report_content,omitempty"`
	PDFPath         string                   `json:"pdf_path,omitempty"`
	IsFinalized     bool                     `json:"is_finalized"`
	FinalizedAt     *time.Time               `json:"finalized_at,omitempty"`
}

// Aggregate Root: Project
type Project struct {
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	LastUpdated  time.Time `json:"last_updated"`
	ActiveReport *Report   `json:"active_report"`
	Reports      []*Report `json:"reports"`
}

// NewReport returns an empty in-progress report.
func NewReport(id ReportID, reportDate string, now time.Time) *Report {
	return &Report{
		ReportID:    id,
		ReportDate:  reportDate,
		CreatedAt:   now,
		LastUpdated: now,
		Components:  make(map[string]ComponentData),
		Status:      StatusInProgress,
	}
}
