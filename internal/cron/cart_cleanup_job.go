package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const (
	defaultMergedRetention = 7 * 24 * time.Hour
	defaultAbandonedTTL    = 30 * 24 * time.Hour
)

type cartSweeper interface {
	DeleteMergedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteAbandonedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// CartCleanupJobParams configure the cart sweep.
type CartCleanupJobParams struct {
	Logger          *logger.Logger
	Carts           cartSweeper
	MergedRetention time.Duration
	AbandonedTTL    time.Duration
}

// NewCartCleanupJob removes merged carts past retention and anonymous carts
// nobody touched within the abandonment window.
func NewCartCleanupJob(params CartCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	merged := params.MergedRetention
	if merged <= 0 {
		merged = defaultMergedRetention
	}
	abandoned := params.AbandonedTTL
	if abandoned <= 0 {
		abandoned = defaultAbandonedTTL
	}
	return &cartCleanupJob{
		logg:      params.Logger,
		carts:     params.Carts,
		merged:    merged,
		abandoned: abandoned,
		now:       time.Now,
	}, nil
}

type cartCleanupJob struct {
	logg      *logger.Logger
	carts     cartSweeper
	merged    time.Duration
	abandoned time.Duration
	now       func() time.Time
}

func (j *cartCleanupJob) Name() string { return "cart-cleanup" }

// Run attempts both sweeps even when the first fails.
func (j *cartCleanupJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	var errs error

	mergedCutoff := now.Add(-j.merged)
	merged, err := j.carts.DeleteMergedBefore(ctx, mergedCutoff)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("delete merged carts: %w", err))
	}

	abandonedCutoff := now.Add(-j.abandoned)
	abandoned, err := j.carts.DeleteAbandonedBefore(ctx, abandonedCutoff)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("delete abandoned carts: %w", err))
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"merged_cutoff":     mergedCutoff,
		"abandoned_cutoff":  abandonedCutoff,
		"merged_deleted":    merged,
		"abandoned_deleted": abandoned,
	})
	j.logg.Info(logCtx, "cart.cleanup")
	return errs
}
