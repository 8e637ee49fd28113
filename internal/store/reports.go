package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/lostfound/internal/model"
)

// ReportParams holds the student-supplied fields of a lost report.
type ReportParams struct {
	ItemName    string
	Description string
	Category    string
	Location    string
	ReportedAt  time.Time
}

const reportColumns = `r.id, r.student_id, r.item_name, r.description, r.category, r.location,
	r.status, r.reported_at, r.image_mime, r.updated_at, u.username`

const reportFrom = ` FROM lost_reports r JOIN users u ON u.id = r.student_id`

// CreateReport creates a new active lost report owned by studentID.
func CreateReport(ctx context.Context, db *sql.DB, studentID int64, p ReportParams) (*model.LostReport, error) {
	if p.ReportedAt.IsZero() {
		p.ReportedAt = time.Now()
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO lost_reports (student_id, item_name, description, category, location, reported_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		studentID, p.ItemName, nullString(p.Description), p.Category, nullString(p.Location), p.ReportedAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting report id: %w", err)
	}

	return GetReport(ctx, db, id)
}

// GetReport returns a lost report by ID.
func GetReport(ctx context.Context, db *sql.DB, id int64) (*model.LostReport, error) {
	row := db.QueryRowContext(ctx, `SELECT `+reportColumns+reportFrom+` WHERE r.id = ?`, id)
	r, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting report: %w", err)
	}
	return r, nil
}

// ReportFilter narrows ListReports. Zero values match everything.
type ReportFilter struct {
	StudentID int64
	Status    string
}

// ListReports returns lost reports, newest first.
func ListReports(ctx context.Context, db *sql.DB, f ReportFilter) ([]model.LostReport, error) {
	query := `SELECT ` + reportColumns + reportFrom + ` WHERE 1=1`
	var args []any

	if f.StudentID > 0 {
		query += ` AND r.student_id = ?`
		args = append(args, f.StudentID)
	}
	if f.Status != "" {
		query += ` AND r.status = ?`
		args = append(args, f.Status)
	}
	query += ` ORDER BY r.reported_at DESC, r.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	var reports []model.LostReport
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		reports = append(reports, *r)
	}
	return reports, rows.Err()
}

// UpdateReportStatus moves a report to a new status if the transition is allowed
// from its current status. The update only applies if the status did not change
// concurrently.
func UpdateReportStatus(ctx context.Context, db *sql.DB, id int64, status string) error {
	var current string
	err := db.QueryRowContext(ctx, `SELECT status FROM lost_reports WHERE id = ?`, id).Scan(&current)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("checking report status: %w", err)
	}

	if !model.ReportTransitionAllowed(current, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, status)
	}

	result, err := db.ExecContext(ctx,
		`UPDATE lost_reports SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		status, id, current,
	)
	if err != nil {
		return fmt.Errorf("updating report status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s changed concurrently", ErrInvalidTransition, current)
	}
	return nil
}

// SetReportImage sets a report's image data.
func SetReportImage(ctx context.Context, db *sql.DB, id int64, image []byte, mime string) error {
	return setImage(ctx, db, "lost_reports", id, image, mime)
}

// GetReportImage returns a report's image data and MIME type.
func GetReportImage(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	return getImage(ctx, db, "lost_reports", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(s rowScanner) (*model.LostReport, error) {
	r := &model.LostReport{}
	var description, location, imageMime sql.NullString
	err := s.Scan(&r.ID, &r.StudentID, &r.ItemName, &description, &r.Category, &location,
		&r.Status, &r.ReportedAt, &imageMime, &r.UpdatedAt, &r.StudentName)
	if err != nil {
		return nil, err
	}
	r.Description = description.String
	r.Location = location.String
	r.ImageMime = imageMime.String
	return r, nil
}

// nullString stores empty optional text as NULL.
func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
