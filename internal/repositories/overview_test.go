package repositories_test

import (
	"context"
	"io"
	"testing"

	"github.com/myrjola/finsight/internal/models"
	"github.com/myrjola/finsight/internal/repositories"
	"github.com/myrjola/finsight/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatisticsRepository_Overview(t *testing.T) {
	t.Parallel()
	repo := repositories.NewStatisticsRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))

	overview, err := repo.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, overview.MonthsAnalyzed)
	require.NotEmpty(t, overview.CategoryStats)
	assert.Equal(t, "Housing", overview.CategoryStats[0].Category, "sorted by total descending")
	assert.Equal(t, []string{"Housing", "Investments", "Dining"}, overview.TopCategories)

	stats := make(map[string]models.CategoryStat)
	for _, stat := range overview.CategoryStats {
		stats[stat.Category] = stat
	}

	// Stable spend reads as zero volatility.
	housing := stats["Housing"]
	assert.InDelta(t, 1900, housing.Total, 1e-9)
	assert.InDelta(t, 950, housing.Mean, 1e-9)
	assert.InDelta(t, 0, housing.Volatility, 1e-9)

	// A single-month purchase against two analyzed months is maximally
	// volatile: mean equals stddev.
	travel := stats["Travel"]
	assert.InDelta(t, 17.45, travel.Mean, 1e-9)
	assert.InDelta(t, 1.0, travel.Volatility, 1e-9)
}
