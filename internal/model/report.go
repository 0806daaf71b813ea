package model

import "time"

// Report statuses. A report starts pending and transitions exactly once to
// done or error.
const (
	ReportStatusPending = "pending"
	ReportStatusDone    = "done"
	ReportStatusError   = "error"
)

// Report is a generated archive integrity report tracked in the database.
// The workbook itself lives in object storage under StoragePath.
type Report struct {
	ID           string     `json:"id"`
	PeriodDays   int        `json:"period_days"`
	Status       string     `json:"status"`
	StoragePath  string     `json:"storage_path,omitempty"`
	Size         int64      `json:"size"`
	CameraCount  int        `json:"camera_count"`
	ProblemCount int        `json:"problem_count"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}
