// Package cron runs the daily maintenance pass: status reconciliation and
// calendar repair.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// SessionMaintainer is the slice of the session service the job needs.
type SessionMaintainer interface {
	Reconcile(ctx context.Context, now time.Time) (int, error)
	RepairCalendar(ctx context.Context, now time.Time) (int, error)
}

// Start schedules the daily maintenance job and returns the running cron
// so the caller can stop it on shutdown.
func Start(maintainer SessionMaintainer, logger *slog.Logger) *cron.Cron {
	c := cron.New()

	c.AddFunc("@daily", func() {
		ctx := context.Background()
		now := time.Now()

		corrected, err := maintainer.Reconcile(ctx, now)
		if err != nil {
			logger.Error("daily reconcile failed", "error", err)
		} else if corrected > 0 {
			logger.Info("daily reconcile complete", "corrected", corrected)
		}

		repaired, err := maintainer.RepairCalendar(ctx, now)
		if err != nil {
			logger.Error("daily calendar repair failed", "error", err)
		} else if repaired > 0 {
			logger.Info("daily calendar repair complete", "repaired", repaired)
		}
	})

	c.Start()
	return c
}
