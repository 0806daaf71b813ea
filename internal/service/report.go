package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"camportal/internal/metrics"
	"camportal/internal/model"
	"camportal/internal/report"
	"camportal/internal/repository"
	"camportal/internal/storage"
)

var (
	ErrReportNotFound = errors.New("report not found")
	ErrReportNotReady = errors.New("report is not ready for download")
	ErrInvalidPeriod  = errors.New("period must be between 1 and 90 days")
)

// DownloadURLExpiry is how long a presigned report download link stays valid.
const DownloadURLExpiry = 15 * time.Minute

// MaxPeriodDays bounds report sweeps; the provider keeps at most ~90 days of
// cloud archive.
const MaxPeriodDays = 90

// DefaultReportPeriodDays is used when a create request omits the period.
const DefaultReportPeriodDays = 7

// ReportListResult is the service-level DTO for paginated reports.
type ReportListResult struct {
	Items []model.Report `json:"data"`
	Total int            `json:"total"`
}

// Collector sweeps the fleet for archive analyses.
type Collector interface {
	Collect(ctx context.Context, periodDays int) (*report.Result, error)
}

// WorkbookWriter renders a sweep result as an XLSX stream.
type WorkbookWriter interface {
	WriteTo(w io.Writer, res *report.Result) (int64, error)
}

// ReportService manages archive integrity reports: creation kicks off an
// asynchronous fleet sweep whose workbook lands in object storage, with the
// report row tracking progress.
type ReportService interface {
	// Create inserts a pending report and starts generation in the background.
	Create(ctx context.Context, periodDays int) (*model.Report, error)

	// List returns reports using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*ReportListResult, error)

	// Get returns a single report by its ID.
	Get(ctx context.Context, id string) (*model.Report, error)

	// DownloadURL returns a presigned URL for a finished report's workbook.
	DownloadURL(ctx context.Context, id string) (string, error)

	// Delete removes a report and its stored workbook.
	Delete(ctx context.Context, id string) error
}

type reportService struct {
	repo      repository.ReportRepository
	store     storage.ObjectStore
	collector Collector
	builder   WorkbookWriter
	log       *zap.SugaredLogger
	metrics   *metrics.Fleet
}

// NewReportService constructs a ReportService. metrics may be nil.
func NewReportService(
	repo repository.ReportRepository,
	store storage.ObjectStore,
	collector Collector,
	builder WorkbookWriter,
	log *zap.SugaredLogger,
	m *metrics.Fleet,
) ReportService {
	return &reportService{
		repo:      repo,
		store:     store,
		collector: collector,
		builder:   builder,
		log:       log,
		metrics:   m,
	}
}

func (s *reportService) Create(ctx context.Context, periodDays int) (*model.Report, error) {
	if periodDays < 1 || periodDays > MaxPeriodDays {
		return nil, ErrInvalidPeriod
	}

	rep := &model.Report{
		ID:         uuid.NewString(),
		PeriodDays: periodDays,
		Status:     model.ReportStatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, rep)
	if err != nil {
		return nil, fmt.Errorf("create report row: %w", err)
	}

	// Generation outlives the request; detach from its cancellation while
	// keeping trace context.
	go s.generate(context.WithoutCancel(ctx), stored.ID, stored.PeriodDays)

	return stored, nil
}

// generate runs the sweep, uploads the workbook and settles the report row.
func (s *reportService) generate(ctx context.Context, id string, periodDays int) {
	start := time.Now()
	log := s.log.With("report_id", id, "period_days", periodDays)

	fail := func(stage string, err error) {
		log.Errorw("report_generation_failed", "stage", stage, "error", err)
		msg := fmt.Sprintf("%s: %v", stage, err)
		if dbErr := s.repo.MarkFailed(ctx, id, msg, time.Now().UTC()); dbErr != nil {
			log.Errorw("report_status_update_failed", "error", dbErr)
		}
	}

	res, err := s.collector.Collect(ctx, periodDays)
	if err != nil {
		fail("collect", err)
		return
	}

	var buf bytes.Buffer
	if _, err := s.builder.WriteTo(&buf, res); err != nil {
		fail("render", err)
		return
	}

	key := storage.ReportKey(id)
	size := int64(buf.Len())
	if _, err := s.store.Put(ctx, key, &buf, storage.PutOptions{
		Size:        size,
		ContentType: storage.XLSXContentType,
	}); err != nil {
		fail("upload", err)
		return
	}

	problems := report.CountProblems(res.Data)
	if err := s.repo.MarkDone(ctx, id, key, size, len(res.Data), problems, time.Now().UTC()); err != nil {
		fail("finalize", err)
		return
	}

	if s.metrics != nil {
		s.metrics.ReportDuration.Observe(time.Since(start).Seconds())
	}
	log.Infow("report_generated",
		"cameras", len(res.Data),
		"problems", problems,
		"sweep_errors", res.Errors,
		"size", size,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (s *reportService) List(ctx context.Context, limit, offset int) (*ReportListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &ReportListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *reportService) Get(ctx context.Context, id string) (*model.Report, error) {
	rep, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return rep, nil
}

func (s *reportService) DownloadURL(ctx context.Context, id string) (string, error) {
	rep, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if rep.Status != model.ReportStatusDone || rep.StoragePath == "" {
		return "", ErrReportNotReady
	}
	url, err := s.store.PresignGet(ctx, rep.StoragePath, DownloadURLExpiry)
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}
	return url, nil
}

func (s *reportService) Delete(ctx context.Context, id string) error {
	rep, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if rep.StoragePath != "" {
		if err := s.store.Delete(ctx, rep.StoragePath); err != nil {
			return fmt.Errorf("delete workbook: %w", err)
		}
	}
	return s.repo.Delete(ctx, id)
}
