package store

import (
	"context"
	"database/sql"
	"fmt"
)

// setImage and getImage are shared by lost_reports and found_items, which carry
// identical image columns. table is always a package constant, never user input.
func setImage(ctx context.Context, db *sql.DB, table string, id int64, image []byte, mime string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE `+table+` SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting %s image: %w", table, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func getImage(ctx context.Context, db *sql.DB, table string, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM `+table+` WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting %s image: %w", table, err)
	}
	return image, mime.String, nil
}
