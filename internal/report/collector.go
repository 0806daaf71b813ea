package report

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"camportal/internal/config"
	"camportal/internal/model"
	"camportal/internal/rtcam"
	"camportal/internal/stats"
)

// Package report produces archive integrity reports: it sweeps the fleet for
// recording fragments, analyzes each camera's archive, and renders the result
// as an XLSX workbook.

// Problem thresholds. A camera is flagged when it has no archive at all, its
// coverage or depth fall below these floors, or a single gap exceeds the cap.
const (
	ProblemCoverageThreshold = 50.0
	ProblemMaxGapThreshold   = 3600
	ProblemDepthThreshold    = 1.0
)

// CameraArchive pairs a camera with its archive analysis. FetchFailed marks
// cameras whose fragments could not be retrieved; their analysis is zeroed.
type CameraArchive struct {
	Camera      model.Camera
	Archive     *stats.Analysis
	FetchFailed bool
}

// IsProblem classifies a camera archive against the problem thresholds.
func (ca *CameraArchive) IsProblem() bool {
	a := ca.Archive
	if a.TotalFragments == 0 {
		return true
	}
	if a.CoveragePct < ProblemCoverageThreshold {
		return true
	}
	if a.MaxGap > ProblemMaxGapThreshold {
		return true
	}
	if a.DepthDays < ProblemDepthThreshold {
		return true
	}
	return false
}

// ProblemReasons lists why a camera archive is flagged, in threshold order.
func (ca *CameraArchive) ProblemReasons() []string {
	a := ca.Archive
	var reasons []string
	if a.TotalFragments == 0 {
		reasons = append(reasons, "No archive")
	}
	if a.CoveragePct < ProblemCoverageThreshold {
		reasons = append(reasons, fmt.Sprintf("Low coverage (%.1f%%)", a.CoveragePct))
	}
	if a.MaxGap > ProblemMaxGapThreshold {
		reasons = append(reasons, fmt.Sprintf("Long gap (%s)", stats.FormatDuration(float64(a.MaxGap))))
	}
	if a.DepthDays > 0 && a.DepthDays < ProblemDepthThreshold {
		reasons = append(reasons, fmt.Sprintf("Shallow depth (%.1fd)", a.DepthDays))
	}
	return reasons
}

// CountProblems returns how many archives are flagged.
func CountProblems(data []CameraArchive) int {
	n := 0
	for i := range data {
		if data[i].IsProblem() {
			n++
		}
	}
	return n
}

// Result is a completed fleet sweep.
type Result struct {
	Data        []CameraArchive
	GeneratedAt time.Time
	PeriodDays  int
	Errors      int
}

// Collector sweeps the fleet with a bounded worker pool. Per-camera fragment
// fetches are retried with exponential backoff; a camera that still fails is
// recorded with an empty analysis rather than failing the whole sweep.
type Collector struct {
	api        rtcam.API
	log        *zap.SugaredLogger
	workers    int
	maxRetries int
	retryDelay time.Duration
}

// NewCollector creates a collector with the report settings from config.
func NewCollector(api rtcam.API, log *zap.SugaredLogger, cfg config.ReportConfig) *Collector {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	retries := cfg.MaxRetries
	if retries < 1 {
		retries = 1
	}
	return &Collector{
		api:        api,
		log:        log,
		workers:    workers,
		maxRetries: retries,
		retryDelay: cfg.RetryDelay,
	}
}

// Collect fetches the camera list and analyzes each camera's archive over the
// last periodDays. It stops promptly when ctx is cancelled, including while a
// retry backoff is pending.
func (c *Collector) Collect(ctx context.Context, periodDays int) (*Result, error) {
	cameras, err := c.api.AllCameras(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cameras: %w", err)
	}

	now := time.Now()
	since := now.Unix() - int64(periodDays)*86400
	till := now.Unix()

	c.log.Infow("report_sweep_start",
		"cameras", len(cameras),
		"period_days", periodDays,
		"workers", c.workers,
		"retries", c.maxRetries,
	)

	data := make([]CameraArchive, len(cameras))
	var errCount, doneCount atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i := range cameras {
		i := i
		cam := cameras[i]
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			frags, err := c.fetchWithRetry(gctx, cam.UID, since, till)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				errCount.Add(1)
				c.log.Errorw("fragments_fetch_failed", "uid", cam.UID, "name", cam.DisplayName(), "error", err)
			}

			data[i] = CameraArchive{
				Camera:      cam,
				Archive:     stats.AnalyzeArchive(frags, now),
				FetchFailed: err != nil,
			}

			if n := doneCount.Add(1); n%25 == 0 || int(n) == len(cameras) {
				c.log.Infow("report_sweep_progress", "done", n, "total", len(cameras), "errors", errCount.Load())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.log.Infow("report_sweep_done", "cameras", len(cameras), "errors", errCount.Load())
	return &Result{
		Data:        data,
		GeneratedAt: now,
		PeriodDays:  periodDays,
		Errors:      int(errCount.Load()),
	}, nil
}

func (c *Collector) fetchWithRetry(ctx context.Context, uid string, since, till int64) ([]model.Fragment, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0

	var frags []model.Fragment
	op := func() error {
		var err error
		frags, err = c.api.CameraFragments(ctx, uid, since, till)
		return err
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxRetries-1)), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return frags, nil
}
