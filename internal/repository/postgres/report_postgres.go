package postgres

import (
	"context"
	"database/sql"
	"time"

	"camportal/internal/model"
	"camportal/internal/repository"
)

// ReportPostgres is a PostgreSQL implementation of repository.ReportRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type ReportPostgres struct {
	db *sql.DB
}

// NewReportPostgres creates a new ReportPostgres repository.
func NewReportPostgres(db *sql.DB) *ReportPostgres {
	return &ReportPostgres{db: db}
}

var _ repository.ReportRepository = (*ReportPostgres)(nil)

const reportColumns = `id, period_days, status, storage_path, size, camera_count, problem_count, error_message, created_at, completed_at`

func scanReport(row interface{ Scan(...any) error }) (*model.Report, error) {
	var r model.Report
	var completedAt sql.NullTime
	if err := row.Scan(
		&r.ID,
		&r.PeriodDays,
		&r.Status,
		&r.StoragePath,
		&r.Size,
		&r.CameraCount,
		&r.ProblemCount,
		&r.ErrorMessage,
		&r.CreatedAt,
		&completedAt,
	); err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		r.CompletedAt = &t
	}
	return &r, nil
}

// Create inserts a new report row and returns the stored record.
func (r *ReportPostgres) Create(ctx context.Context, report *model.Report) (*model.Report, error) {
	const q = `
		INSERT INTO reports (id, period_days, status, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + reportColumns
	row := r.db.QueryRowContext(ctx, q,
		report.ID,
		report.PeriodDays,
		report.Status,
		report.CreatedAt,
	)
	return scanReport(row)
}

// FindByID fetches a single report by its ID.
func (r *ReportPostgres) FindByID(ctx context.Context, id string) (*model.Report, error) {
	const q = `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`
	return scanReport(r.db.QueryRowContext(ctx, q, id))
}

// List returns reports using LIMIT/OFFSET pagination and a total count.
func (r *ReportPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Report], error) {
	const qCount = `SELECT COUNT(*) FROM reports`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + reportColumns + `
		FROM reports
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Report, 0)
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Report]{Items: items, Total: total}, nil
}

// MarkDone transitions a pending report to done.
func (r *ReportPostgres) MarkDone(ctx context.Context, id, storagePath string, size int64, cameraCount, problemCount int, completedAt time.Time) error {
	const q = `
		UPDATE reports
		SET status = $2, storage_path = $3, size = $4, camera_count = $5, problem_count = $6, completed_at = $7
		WHERE id = $1 AND status = $8
	`
	res, err := r.db.ExecContext(ctx, q, id, model.ReportStatusDone, storagePath, size, cameraCount, problemCount, completedAt, model.ReportStatusPending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkFailed transitions a pending report to error.
func (r *ReportPostgres) MarkFailed(ctx context.Context, id, errorMessage string, completedAt time.Time) error {
	const q = `
		UPDATE reports
		SET status = $2, error_message = $3, completed_at = $4
		WHERE id = $1 AND status = $5
	`
	res, err := r.db.ExecContext(ctx, q, id, model.ReportStatusError, errorMessage, completedAt, model.ReportStatusPending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a report by ID. It does not return an error if the row does not exist.
func (r *ReportPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM reports WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
