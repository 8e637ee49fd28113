package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/lostfound/internal/model"
)

// UpsertMatch records the score for a (report, found item) pair and returns the
// match ID. A second call for the same pair overwrites score and matched_at
// instead of inserting a new row; notified is only initialised on first insert.
// The write is refused with ErrFoundNotPending once the found item has left
// the pending status.
func UpsertMatch(ctx context.Context, db *sql.DB, reportID, foundID int64, score int, matchedAt time.Time) (int64, error) {
	if score < 0 || score > 100 {
		return 0, fmt.Errorf("match score out of range: %d", score)
	}

	var id int64
	err := db.QueryRowContext(ctx,
		`INSERT INTO matches (report_id, found_id, score, notified, matched_at)
		 SELECT ?, f.id, ?, 0, ? FROM found_items f WHERE f.id = ? AND f.status = 'pending'
		 ON CONFLICT (report_id, found_id) DO UPDATE SET score = excluded.score, matched_at = excluded.matched_at
		 RETURNING id`,
		reportID, score, matchedAt.UTC(), foundID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, ErrFoundNotPending
	}
	if err != nil {
		return 0, fmt.Errorf("upserting match: %w", err)
	}
	return id, nil
}

// GetMatch returns a match by ID.
func GetMatch(ctx context.Context, db *sql.DB, id int64) (*model.Match, error) {
	rows, err := db.QueryContext(ctx, matchSelect+` WHERE m.id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("getting match: %w", err)
	}
	defer rows.Close()

	matches, err := scanMatches(rows)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

// ListMatchesForReport returns the matches of a report, best first.
func ListMatchesForReport(ctx context.Context, db *sql.DB, reportID int64) ([]model.Match, error) {
	rows, err := db.QueryContext(ctx,
		matchSelect+` WHERE m.report_id = ? ORDER BY m.score DESC, m.id`, reportID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing report matches: %w", err)
	}
	defer rows.Close()

	return scanMatches(rows)
}

// ListMatchesForFound returns the reports matched to a found item, best first.
func ListMatchesForFound(ctx context.Context, db *sql.DB, foundID int64) ([]model.Match, error) {
	rows, err := db.QueryContext(ctx,
		matchSelect+` WHERE m.found_id = ? ORDER BY m.score DESC, m.id`, foundID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing found item matches: %w", err)
	}
	defer rows.Close()

	return scanMatches(rows)
}

// MarkMatchNotified flags a match once its owner has been notified.
func MarkMatchNotified(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `UPDATE matches SET notified = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("marking match notified: %w", err)
	}
	return nil
}

const matchSelect = `SELECT m.id, m.report_id, m.found_id, m.score, m.notified, m.matched_at,
	        r.item_name, f.item_name, f.location, f.status
	 FROM matches m
	 JOIN lost_reports r ON r.id = m.report_id
	 JOIN found_items f ON f.id = m.found_id`

func scanMatches(rows *sql.Rows) ([]model.Match, error) {
	var matches []model.Match
	for rows.Next() {
		var m model.Match
		var location sql.NullString
		if err := rows.Scan(&m.ID, &m.ReportID, &m.FoundID, &m.Score, &m.Notified, &m.MatchedAt,
			&m.ReportItemName, &m.FoundItemName, &location, &m.FoundStatus); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		m.FoundLocation = location.String
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
