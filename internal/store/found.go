package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/lostfound/internal/model"
)

// FoundParams holds the fields security personnel record for a found item.
type FoundParams struct {
	ItemName    string
	Description string
	Category    string
	Location    string
	FoundAt     time.Time
}

const foundColumns = `id, logged_by, item_name, description, category, location,
	status, found_at, image_mime, updated_at`

// CreateFoundItem logs a new pending found item.
func CreateFoundItem(ctx context.Context, db *sql.DB, loggedBy int64, p FoundParams) (*model.FoundItem, error) {
	if p.FoundAt.IsZero() {
		p.FoundAt = time.Now()
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO found_items (logged_by, item_name, description, category, location, found_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		loggedBy, p.ItemName, nullString(p.Description), p.Category, nullString(p.Location), p.FoundAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating found item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting found item id: %w", err)
	}

	return GetFoundItem(ctx, db, id)
}

// GetFoundItem returns a found item by ID.
func GetFoundItem(ctx context.Context, db *sql.DB, id int64) (*model.FoundItem, error) {
	row := db.QueryRowContext(ctx, `SELECT `+foundColumns+` FROM found_items WHERE id = ?`, id)
	f, err := scanFound(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting found item: %w", err)
	}
	return f, nil
}

// ListFoundItems returns found items, optionally filtered by status, in the order
// they were logged.
func ListFoundItems(ctx context.Context, db *sql.DB, status string) ([]model.FoundItem, error) {
	var rows *sql.Rows
	var err error

	if status != "" {
		rows, err = db.QueryContext(ctx,
			`SELECT `+foundColumns+` FROM found_items WHERE status = ? ORDER BY id`, status,
		)
	} else {
		rows, err = db.QueryContext(ctx,
			`SELECT `+foundColumns+` FROM found_items ORDER BY id`,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing found items: %w", err)
	}
	defer rows.Close()

	var items []model.FoundItem
	for rows.Next() {
		f, err := scanFound(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning found item: %w", err)
		}
		items = append(items, *f)
	}
	return items, rows.Err()
}

// ListPendingFoundItems returns every found item still waiting for its owner.
// These are the only items the matcher may consider.
func ListPendingFoundItems(ctx context.Context, db *sql.DB) ([]model.FoundItem, error) {
	return ListFoundItems(ctx, db, model.FoundStatusPending)
}

// UpdateFoundStatus moves a found item along the claims workflow.
func UpdateFoundStatus(ctx context.Context, db *sql.DB, id int64, status string) error {
	var current string
	err := db.QueryRowContext(ctx, `SELECT status FROM found_items WHERE id = ?`, id).Scan(&current)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("checking found item status: %w", err)
	}

	if !model.FoundTransitionAllowed(current, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, status)
	}

	result, err := db.ExecContext(ctx,
		`UPDATE found_items SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		status, id, current,
	)
	if err != nil {
		return fmt.Errorf("updating found item status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s changed concurrently", ErrInvalidTransition, current)
	}
	return nil
}

// SetFoundImage sets a found item's image data.
func SetFoundImage(ctx context.Context, db *sql.DB, id int64, image []byte, mime string) error {
	return setImage(ctx, db, "found_items", id, image, mime)
}

// GetFoundImage returns a found item's image data and MIME type.
func GetFoundImage(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	return getImage(ctx, db, "found_items", id)
}

func scanFound(s rowScanner) (*model.FoundItem, error) {
	f := &model.FoundItem{}
	var description, location, imageMime sql.NullString
	err := s.Scan(&f.ID, &f.LoggedBy, &f.ItemName, &description, &f.Category, &location,
		&f.Status, &f.FoundAt, &imageMime, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	f.Description = description.String
	f.Location = location.String
	f.ImageMime = imageMime.String
	return f, nil
}
