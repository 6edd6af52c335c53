package discounts

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type activeLoader interface {
	ListActive(ctx context.Context) ([]models.Discount, error)
}

// Match keeps the discounts that are active at now and target the line.
func Match(line LineContext, discounts []Discount, now time.Time) []Discount {
	var out []Discount
	for _, d := range discounts {
		if d.Target == nil || !d.ActiveAt(now) {
			continue
		}
		if d.Target.Matches(line) {
			out = append(out, d)
		}
	}
	return out
}

// Matcher loads active discounts and matches them against cart lines.
type Matcher struct {
	repo activeLoader
	logg *logger.Logger
	now  func() time.Time
}

func NewMatcher(repo activeLoader, logg *logger.Logger, now func() time.Time) *Matcher {
	if now == nil {
		now = time.Now
	}
	return &Matcher{repo: repo, logg: logg, now: now}
}

// Now exposes the matcher clock so callers evaluate windows consistently.
func (m *Matcher) Now() time.Time {
	return m.now()
}

// Match filters discounts for one line at the matcher's current time.
func (m *Matcher) Match(line LineContext, discounts []Discount) []Discount {
	return Match(line, discounts, m.now())
}

// Active returns every enabled discount that converts cleanly. Rows with an
// unusable target are skipped and logged, never applied.
func (m *Matcher) Active(ctx context.Context) ([]Discount, error) {
	rows, err := m.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	now := m.now()
	out := make([]Discount, 0, len(rows))
	for _, row := range rows {
		d, err := FromModel(row)
		if err != nil {
			if m.logg != nil {
				warnCtx := m.logg.WithFields(ctx, map[string]any{
					"discount_id": row.ID.String(),
					"scope":       row.Scope,
					"reason":      err.Error(),
				})
				m.logg.Warn(warnCtx, "skipping discount with invalid target")
			}
			continue
		}
		if d.ActiveAt(now) {
			out = append(out, d)
		}
	}
	return out, nil
}

// MatchActive loads active discounts and returns those applying to line.
func (m *Matcher) MatchActive(ctx context.Context, line LineContext) ([]Discount, error) {
	active, err := m.Active(ctx)
	if err != nil {
		return nil, err
	}
	return m.Match(line, active), nil
}
