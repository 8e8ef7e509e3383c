package projects

import "errors"

var (
	// ErrProjectNotFound indicates no project file exists for the name.
	ErrProjectNotFound = errors.New("project not found")

	// ErrCorruptProjectFile indicates the project file exists but cannot be
	// decoded. Kept distinct from not-found so callers can answer 500 vs 404.
	ErrCorruptProjectFile = errors.New("project file corrupt")

	// ErrActiveReportExists rejects a second active report for a project.
	ErrActiveReportExists = errors.New("active report already exists")

	// ErrNoActiveReport indicates the project has no editable report.
	ErrNoActiveReport = errors.New("no active report")

	// ErrReportNotFound indicates the requested report id is unknown.
	ErrReportNotFound = errors.New("report not found")

	// ErrReportNotGenerated rejects finalize/distribution before a draft
	// has been rendered.
	ErrReportNotGenerated = errors.New("report not generated")

	// ErrReportMissingID rejects reset on a report without an id.
	ErrReportMissingID = errors.New("active report has no report id")

	// ErrPDFMissing indicates metadata claims a generated report but the
	// file is physically absent.
	ErrPDFMissing = errors.New("report pdf missing on disk")

	// ErrMailAuth indicates the SMTP server rejected our credentials.
	ErrMailAuth = errors.New("smtp authentication failed")

	// ErrMailSend indicates a non-auth SMTP transport failure.
	ErrMailSend = errors.New("smtp send failed")
)

// ValidationError carries a client-facing field problem.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Field + ": " + e.Reason
}
