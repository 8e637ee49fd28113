package matching

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// SQLStore serves the pipeline collaborators from the application database.
type SQLStore struct {
	DB *sql.DB
}

// NewSQLPipeline returns a pipeline backed by db.
func NewSQLPipeline(db *sql.DB, cfg Config) *Pipeline {
	s := SQLStore{DB: db}
	return NewPipeline(s, s, s, cfg)
}

func (s SQLStore) ListPendingFoundItems(ctx context.Context) ([]model.FoundItem, error) {
	return store.ListPendingFoundItems(ctx, s.DB)
}

func (s SQLStore) UpsertMatch(ctx context.Context, reportID, foundID int64, score int, matchedAt time.Time) (int64, error) {
	id, err := store.UpsertMatch(ctx, s.DB, reportID, foundID, score, matchedAt)
	if errors.Is(err, store.ErrFoundNotPending) {
		return 0, ErrFoundNotPending
	}
	return id, err
}

func (s SQLStore) MarkMatchNotified(ctx context.Context, matchID int64) error {
	return store.MarkMatchNotified(ctx, s.DB, matchID)
}

func (s SQLStore) CreateNotification(ctx context.Context, studentID, matchID int64, message string) error {
	_, err := store.CreateNotification(ctx, s.DB, studentID, &matchID, message)
	return err
}
