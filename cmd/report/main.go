package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"camportal/internal/config"
	"camportal/internal/logger"
	"camportal/internal/report"
	"camportal/internal/rtcam"
)

// One-shot report generation: sweeps the fleet and writes the XLSX workbook
// to a local file instead of object storage. Useful for cron and ad-hoc runs.
func main() {
	days := flag.Int("days", 0, "report period in days (default: REPORT_PERIOD_DAYS)")
	out := flag.String("out", "", "output path (default: report_YYYY-MM-DD_HHMMSS.xlsx)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	periodDays := *days
	if periodDays <= 0 {
		periodDays = cfg.Report.PeriodDays
	}

	path := *out
	if path == "" {
		path = time.Now().Format("report_2006-01-02_150405.xlsx")
	}

	api := rtcam.New(cfg.RT)
	collector := report.NewCollector(api, log, cfg.Report)

	start := time.Now()
	res, err := collector.Collect(ctx, periodDays)
	if err != nil {
		log.Fatalw("sweep failed", "error", err)
	}

	f, err := os.Create(path)
	if err != nil {
		log.Fatalw("cannot create output file", "path", path, "error", err)
	}
	defer f.Close()

	size, err := report.NewBuilder().WriteTo(f, res)
	if err != nil {
		log.Fatalw("workbook render failed", "error", err)
	}

	log.Infow("report_written",
		"path", path,
		"period_days", periodDays,
		"cameras", len(res.Data),
		"problems", report.CountProblems(res.Data),
		"sweep_errors", res.Errors,
		"size", size,
		"duration", time.Since(start).Round(time.Second).String(),
	)
}
