package records

import (
	"context"
	"fmt"
	"time"

	"github.com/JaimeStill/corretora/pkg/query"
	"github.com/JaimeStill/corretora/pkg/repository"
)

// statsMonths is the window of the monthly series, current month included.
const statsMonths = 12

type bucket struct {
	key   string
	total int
}

func scanBucket(s repository.Scanner) (bucket, error) {
	var b bucket
	err := s.Scan(&b.key, &b.total)
	return b, err
}

// Stats returns per-status totals and monthly creation counts for the last
// twelve months. Months without records are reported with zero.
func (r *repo[T]) Stats(ctx context.Context, filters Filters) (*Stats, error) {
	statusSQL, statusArgs := filters.
		Apply(query.NewBuilder(r.projection)).
		BuildGroupCount(r.projection.Column("acao"))

	byStatus, err := repository.QueryMany(ctx, r.db, statusSQL, statusArgs, scanBucket)
	if err != nil {
		return nil, fmt.Errorf("count %s by status: %w", r.def.Name, err)
	}

	start := monthStart(r.now().UTC()).AddDate(0, -(statsMonths - 1), 0)
	monthExpr := fmt.Sprintf("to_char(date_trunc('month', %s AT TIME ZONE 'UTC'), 'YYYY-MM')",
		r.projection.Column("created_at"))

	monthSQL, monthArgs := filters.
		Apply(query.NewBuilder(r.projection)).
		WhereSince("created_at", start).
		BuildGroupCount(monthExpr)

	byMonth, err := repository.QueryMany(ctx, r.db, monthSQL, monthArgs, scanBucket)
	if err != nil {
		return nil, fmt.Errorf("count %s by month: %w", r.def.Name, err)
	}

	return buildStats(r.def.Name, byStatus, byMonth, start), nil
}

func buildStats(collection string, byStatus, byMonth []bucket, start time.Time) *Stats {
	stats := &Stats{
		Collection: collection,
		ByStatus: []StatusCount{
			{Status: StatusPendente},
			{Status: StatusFinalizado},
		},
		Monthly: make([]MonthCount, statsMonths),
	}

	for _, b := range byStatus {
		stats.Total += b.total
		for i := range stats.ByStatus {
			if string(stats.ByStatus[i].Status) == b.key {
				stats.ByStatus[i].Total = b.total
			}
		}
	}

	counts := make(map[string]int, len(byMonth))
	for _, b := range byMonth {
		counts[b.key] = b.total
	}
	for i := range stats.Monthly {
		month := start.AddDate(0, i, 0).Format("2006-01")
		stats.Monthly[i] = MonthCount{Month: month, Total: counts[month]}
	}

	return stats
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
