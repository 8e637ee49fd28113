package model

import "time"

// FoundItem is an item recovered and logged by security personnel.
type FoundItem struct {
	ID          int64     `json:"id"`
	LoggedBy    int64     `json:"logged_by"`
	ItemName    string    `json:"item_name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	Location    string    `json:"location,omitempty"`
	Status      string    `json:"status"`
	FoundAt     time.Time `json:"found_at"`
	ImageMime   string    `json:"image_mime,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Found item statuses.
const (
	FoundStatusPending  = "pending"
	FoundStatusClaimed  = "claimed"
	FoundStatusReturned = "returned"
)

var foundTransitions = map[string][]string{
	FoundStatusPending: {FoundStatusClaimed},
	FoundStatusClaimed: {FoundStatusReturned, FoundStatusPending},
}

// FoundTransitionAllowed reports whether a found item may move from one status to another.
// A rejected claim sends the item back to pending; returned is terminal.
func FoundTransitionAllowed(from, to string) bool {
	for _, s := range foundTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
