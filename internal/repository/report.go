package repository

import (
	"context"
	"time"

	"camportal/internal/model"
)

// ReportRepository defines data access for generated reports using SQL
// queries only. No business logic here, strictly persistence operations.
type ReportRepository interface {
	// Create inserts a new report row, typically in pending status.
	Create(ctx context.Context, report *model.Report) (*model.Report, error)

	// FindByID returns a report by its ID.
	FindByID(ctx context.Context, id string) (*model.Report, error)

	// List returns a paginated list of reports, newest first, with a total count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Report], error)

	// MarkDone transitions a report to done with its workbook location and counts.
	MarkDone(ctx context.Context, id, storagePath string, size int64, cameraCount, problemCount int, completedAt time.Time) error

	// MarkFailed transitions a report to error with a message.
	MarkFailed(ctx context.Context, id, errorMessage string, completedAt time.Time) error

	// Delete removes a report row by ID. It returns nil if the row did not exist.
	Delete(ctx context.Context, id string) error
}
