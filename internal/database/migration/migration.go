package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_reports",
		SQL: `CREATE TABLE IF NOT EXISTS reports (
  id            UUID        PRIMARY KEY,
  period_days   INT         NOT NULL CHECK (period_days > 0),
  status        TEXT        NOT NULL,
  storage_path  TEXT        NOT NULL DEFAULT '',
  size          BIGINT      NOT NULL DEFAULT 0 CHECK (size >= 0),
  camera_count  INT         NOT NULL DEFAULT 0,
  problem_count INT         NOT NULL DEFAULT 0,
  error_message TEXT        NOT NULL DEFAULT '',
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  completed_at  TIMESTAMPTZ
);`,
	},
	{
		Name: "create_index_reports_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports (created_at);`,
	},
	{
		Name: "create_index_reports_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_reports_status ON reports (status);`,
	},
}

// EnsureMigrated checks for the reports table and runs the migration steps
// if it is missing. Steps are idempotent, so a partial earlier run is safe.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.SugaredLogger) error {
	start := time.Now()

	var exists bool
	if err := db.QueryRowContext(ctx, "SELECT to_regclass('public.reports') IS NOT NULL").Scan(&exists); err != nil {
		return fmt.Errorf("check sentinel table: %w", err)
	}
	if exists {
		log.Infow("db_migration_skip", "msg", "schema already exists", "duration_ms", time.Since(start).Milliseconds())
		return nil
	}

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Errorw("db_migration_failed", "step", step.Name, "error", err)
			return fmt.Errorf("migration step %s: %w", step.Name, err)
		}
		log.Infow("db_migration_step", "step", step.Name, "duration_ms", time.Since(stepStart).Milliseconds())
	}

	log.Infow("db_migration_done", "duration_ms", time.Since(start).Milliseconds())
	return nil
}
