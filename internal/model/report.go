package model

import "time"

// LostReport is a student's claim of a missing possession.
type LostReport struct {
	ID          int64     `json:"id"`
	StudentID   int64     `json:"student_id"`
	ItemName    string    `json:"item_name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	Location    string    `json:"location,omitempty"`
	Status      string    `json:"status"`
	ReportedAt  time.Time `json:"reported_at"`
	ImageMime   string    `json:"image_mime,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Joined fields (not always populated).
	StudentName string `json:"student_name,omitempty"`
}

// Report statuses.
const (
	ReportStatusActive    = "active"
	ReportStatusClosed    = "closed"
	ReportStatusCancelled = "cancelled"
)

var reportTransitions = map[string][]string{
	ReportStatusActive:    {ReportStatusCancelled, ReportStatusClosed},
	ReportStatusCancelled: {ReportStatusActive},
}

// ReportTransitionAllowed reports whether a lost report may move from one status to another.
// Closed reports are terminal.
func ReportTransitionAllowed(from, to string) bool {
	for _, s := range reportTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
