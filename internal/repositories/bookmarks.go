package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/myrjola/finsight/internal/errors"
	"github.com/myrjola/finsight/internal/investigation"
	"github.com/myrjola/finsight/internal/sqlite"
)

type BookmarkRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewBookmarkRepository(dbs *sqlite.Database, logger *slog.Logger) *BookmarkRepository {
	return &BookmarkRepository{
		dbs:    dbs,
		logger: logger.With("source", "BookmarkRepository"),
	}
}

// Save persists a bookmark. Saving an existing ID overwrites it, which
// lets the caller sync the in-memory bookmark list without diffing.
func (r *BookmarkRepository) Save(ctx context.Context, b investigation.Bookmark) error {
	snapshot, err := json.Marshal(b.Investigation)
	if err != nil {
		return errors.Wrap(err, "marshal investigation snapshot", slog.String("bookmark_id", b.ID))
	}
	stmt := `INSERT OR REPLACE INTO bookmarks (id, investigation, notes, custom_title, tags, created_at)
VALUES (@id, @investigation, @notes, @custom_title, @tags, @created_at)`
	params := []any{
		sql.Named("id", b.ID),
		sql.Named("investigation", string(snapshot)),
		sql.Named("notes", b.Notes),
		sql.Named("custom_title", b.CustomTitle),
		sql.Named("tags", strings.Join(b.Tags, ",")),
		sql.Named("created_at", b.CreatedAt),
	}
	if _, err = r.dbs.ReadWrite.ExecContext(ctx, stmt, params...); err != nil {
		return errors.Wrap(err, "insert bookmark", slog.String("bookmark_id", b.ID))
	}
	return nil
}

// List returns all saved bookmarks, newest first.
func (r *BookmarkRepository) List(ctx context.Context) ([]investigation.Bookmark, error) {
	type bookmarkRow struct {
		ID            string    `db:"id"`
		Investigation string    `db:"investigation"`
		Notes         string    `db:"notes"`
		CustomTitle   string    `db:"custom_title"`
		Tags          string    `db:"tags"`
		CreatedAt     time.Time `db:"created_at"`
	}
	var rows []bookmarkRow
	stmt := `SELECT id, investigation, notes, custom_title, tags, created_at
FROM bookmarks
ORDER BY created_at DESC, id`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &rows, stmt); err != nil {
		return nil, errors.Wrap(err, "query bookmarks")
	}

	bookmarks := make([]investigation.Bookmark, 0, len(rows))
	for _, row := range rows {
		b := investigation.Bookmark{
			ID:          row.ID,
			Notes:       row.Notes,
			CustomTitle: row.CustomTitle,
			CreatedAt:   row.CreatedAt,
		}
		if row.Tags != "" {
			b.Tags = strings.Split(row.Tags, ",")
		}
		if err := json.Unmarshal([]byte(row.Investigation), &b.Investigation); err != nil {
			return nil, errors.Wrap(err, "unmarshal investigation snapshot", slog.String("bookmark_id", row.ID))
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, nil
}

// Delete removes a bookmark. Deleting an unknown ID is a no-op.
func (r *BookmarkRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.dbs.ReadWrite.ExecContext(ctx, `DELETE FROM bookmarks WHERE id = ?`, id); err != nil {
		return errors.Wrap(err, "delete bookmark", slog.String("bookmark_id", id))
	}
	return nil
}
