// Package cleaner removes private data that is only kept for a limited time.
package cleaner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/steemit/topics/pkg/logging"
	"github.com/steemit/topics/pkg/telemetry"
)

// VisitStore deletes stored topic visits
type VisitStore interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Cleaner deletes topic visits older than the retention period
type Cleaner struct {
	visits    VisitStore
	retention time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

// New creates a new cleaner. now may be nil to use the system clock.
func New(visits VisitStore, retention time.Duration, now func() time.Time) (*Cleaner, error) {
	if retention <= 0 {
		return nil, fmt.Errorf("retention must be positive, got %s", retention)
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Cleaner{
		visits:    visits,
		retention: retention,
		now:       now,
		logger:    logging.WithComponent("cleaner"),
	}, nil
}

// Cutoff returns the time before which visits are deleted
func (c *Cleaner) Cutoff() time.Time {
	return c.now().Add(-c.retention)
}

// CleanVisits deletes every visit made before the cutoff and returns how
// many were removed
func (c *Cleaner) CleanVisits(ctx context.Context) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "cleaner.clean_visits")
	defer span.End()

	cutoff := c.Cutoff()
	deleted, err := c.visits.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old topic visits: %w", err)
	}

	c.logger.Info("Deleted old topic visits",
		zap.Time("cutoff", cutoff),
		zap.Int64("deleted", deleted),
	)
	return deleted, nil
}
