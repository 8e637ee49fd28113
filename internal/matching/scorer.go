package matching

import (
	"math"
	"strings"
	"time"

	"github.com/erazemk/lostfound/internal/model"
)

// Point budget of each scoring component. They add up to 100.
const (
	CategoryPoints    = 40
	NamePoints        = 35
	DescriptionPoints = 15
	TimePoints        = 10

	// TimeWindowDays is the report/found gap after which time proximity earns nothing.
	TimeWindowDays = 7
)

// Score rates how likely found is the item described by lost, from 0 to 100.
// A category mismatch always scores 0. The description only counts when both
// sides have one.
func Score(lost model.LostReport, found model.FoundItem) int {
	if lost.Category != found.Category {
		return 0
	}

	score := float64(CategoryPoints)
	score += Similarity(lost.ItemName, found.ItemName) * NamePoints

	if strings.TrimSpace(lost.Description) != "" && strings.TrimSpace(found.Description) != "" {
		score += Similarity(lost.Description, found.Description) * DescriptionPoints
	}

	score += timeProximity(lost.ReportedAt, found.FoundAt)

	return int(math.Round(math.Min(score, 100)))
}

// timeProximity decays linearly from TimePoints at zero days apart to nothing
// at TimeWindowDays. Order does not matter: an item may be found before it is
// reported lost.
func timeProximity(reportedAt, foundAt time.Time) float64 {
	days := math.Abs(foundAt.Sub(reportedAt).Hours()) / 24
	if days > TimeWindowDays {
		return 0
	}
	return (TimeWindowDays - days) / TimeWindowDays * TimePoints
}
