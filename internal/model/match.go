package model

import "time"

// Match is a scored association between one lost report and one found item.
// There is at most one match per (ReportID, FoundID) pair.
type Match struct {
	ID        int64     `json:"id"`
	ReportID  int64     `json:"report_id"`
	FoundID   int64     `json:"found_id"`
	Score     int       `json:"score"`
	Notified  bool      `json:"notified"`
	MatchedAt time.Time `json:"matched_at"`

	// Joined fields (not always populated).
	ReportItemName string `json:"report_item_name,omitempty"`
	FoundItemName  string `json:"found_item_name,omitempty"`
	FoundLocation  string `json:"found_location,omitempty"`
	FoundStatus    string `json:"found_status,omitempty"`
}

// Notification is an in-app message addressed to a user.
type Notification struct {
	ID          int64     `json:"id"`
	RecipientID int64     `json:"recipient_id"`
	MatchID     *int64    `json:"match_id,omitempty"`
	Message     string    `json:"message"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}
