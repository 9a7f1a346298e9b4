package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"kalakarigar/internal/sqlinline"
)

// UsageDaily is one day of product usage counters.
type UsageDaily struct {
	Day               string `json:"day"`
	SessionsStarted   int    `json:"sessions_started"`
	KitsGenerated     int    `json:"kits_generated"`
	ImagesEnhanced    int    `json:"images_enhanced"`
	ExportsCompleted  int    `json:"exports_completed"`
	ProviderFallbacks int    `json:"provider_fallbacks"`
}

// UsageRepositoryPG persists daily usage counters in PostgreSQL.
type UsageRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewUsageRepository constructs the repository.
func NewUsageRepository(pool *pgxpool.Pool) *UsageRepositoryPG {
	return &UsageRepositoryPG{pool: pool}
}

// IncrementCounters upserts counters for the given day. Missing keys count
// as zero.
func (r *UsageRepositoryPG) IncrementCounters(ctx context.Context, day time.Time, counters map[string]int) error {
	_, err := r.pool.Exec(ctx, sqlinline.QUpsertUsageDaily,
		day.Format("2006-01-02"),
		counters["sessions_started"],
		counters["kits_generated"],
		counters["images_enhanced"],
		counters["exports_completed"],
		counters["provider_fallbacks"],
	)
	return err
}

// LatestSummary returns the most recent day of counters.
func (r *UsageRepositoryPG) LatestSummary(ctx context.Context) (*UsageDaily, error) {
	row := r.pool.QueryRow(ctx, sqlinline.QSelectUsageDaily)

	var (
		summary UsageDaily
		day     time.Time
	)
	if err := row.Scan(
		&day,
		&summary.SessionsStarted,
		&summary.KitsGenerated,
		&summary.ImagesEnhanced,
		&summary.ExportsCompleted,
		&summary.ProviderFallbacks,
	); err != nil {
		return nil, err
	}
	summary.Day = day.Format("2006-01-02")
	return &summary, nil
}
