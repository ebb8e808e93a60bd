package repositories

import (
	"context"
	"log/slog"

	"github.com/myrjola/finsight/internal/errors"
	"github.com/myrjola/finsight/internal/models"
	"github.com/myrjola/finsight/internal/sqlite"
)

type PatternRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewPatternRepository(dbs *sqlite.Database, logger *slog.Logger) *PatternRepository {
	return &PatternRepository{
		dbs:    dbs,
		logger: logger.With("source", "PatternRepository"),
	}
}

// Patterns lists the detected spending patterns, most confident first.
func (r *PatternRepository) Patterns(ctx context.Context) ([]models.SpendingPattern, error) {
	var patterns []models.SpendingPattern
	stmt := `SELECT id, type, category, description, confidence
FROM spending_patterns
ORDER BY confidence DESC, id`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &patterns, stmt); err != nil {
		return nil, errors.Wrap(err, "query spending patterns")
	}
	return patterns, nil
}
