package cron

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubMaintainer struct {
	reconciled int
	repaired   int
}

func (s *stubMaintainer) Reconcile(ctx context.Context, now time.Time) (int, error) {
	s.reconciled++
	return 1, nil
}

func (s *stubMaintainer) RepairCalendar(ctx context.Context, now time.Time) (int, error) {
	s.repaired++
	return 0, nil
}

func TestStart_SchedulesDailyJob(t *testing.T) {
	m := &stubMaintainer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	c := Start(m, logger)
	defer c.Stop()

	entries := c.Entries()
	require.Len(t, entries, 1)

	// The next run lands on a midnight boundary.
	next := entries[0].Next
	require.False(t, next.IsZero())
	require.Zero(t, next.Hour())
	require.Zero(t, next.Minute())

	// Run the job body directly to check it drives the maintainer.
	entries[0].Job.Run()
	require.Equal(t, 1, m.reconciled)
	require.Equal(t, 1, m.repaired)
}
