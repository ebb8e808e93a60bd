package repositories

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/myrjola/finsight/internal/errors"
	"github.com/myrjola/finsight/internal/investigation"
	"github.com/myrjola/finsight/internal/models"
	"github.com/myrjola/finsight/internal/sqlite"
)

const topCategoryCount = 3

type StatisticsRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewStatisticsRepository(dbs *sqlite.Database, logger *slog.Logger) *StatisticsRepository {
	return &StatisticsRepository{
		dbs:    dbs,
		logger: logger.With("source", "StatisticsRepository"),
	}
}

// Overview computes cross-month spending statistics. The per-category mean
// and standard deviation treat months without spending in a category as
// zero, so a category bought every other month reads as volatile rather
// than stable.
func (r *StatisticsRepository) Overview(ctx context.Context) (models.FinancialOverview, error) {
	var overview models.FinancialOverview

	type monthlyTotal struct {
		MonthYear string  `db:"month_year"`
		Category  string  `db:"category"`
		Total     float64 `db:"total"`
	}
	var rows []monthlyTotal
	stmt := `SELECT month_year, category, total FROM monthly_category_totals ORDER BY month_year`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &rows, stmt); err != nil {
		return overview, errors.Wrap(err, "query category totals")
	}

	months := make(map[string]struct{})
	byCategory := make(map[string][]float64)
	for _, row := range rows {
		months[row.MonthYear] = struct{}{}
		byCategory[row.Category] = append(byCategory[row.Category], row.Total)
	}
	monthCount := len(months)

	stats := make([]models.CategoryStat, 0, len(byCategory))
	for category, totals := range byCategory {
		stat := models.CategoryStat{Category: category, Months: monthCount}
		for _, total := range totals {
			stat.Total += total
		}
		overview.TotalSpending += stat.Total
		if monthCount == 0 {
			stats = append(stats, stat)
			continue
		}
		stat.Mean = stat.Total / float64(monthCount)
		var squares float64
		for _, total := range totals {
			squares += (total - stat.Mean) * (total - stat.Mean)
		}
		// Months with no row for the category count as zero spend.
		squares += float64(monthCount-len(totals)) * stat.Mean * stat.Mean
		stat.StdDev = math.Sqrt(squares / float64(monthCount))
		if stat.Mean > 0 {
			stat.Volatility = stat.StdDev / stat.Mean
		}
		stats = append(stats, stat)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Total > stats[j].Total })

	overview.CategoryStats = stats
	overview.TopCategories = investigation.TopCategories(stats, topCategoryCount)
	overview.MonthsAnalyzed = monthCount
	return overview, nil
}
