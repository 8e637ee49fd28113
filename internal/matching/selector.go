package matching

import (
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/lostfound/internal/model"
)

// Candidate is a found item together with its score against a report.
type Candidate struct {
	Item  model.FoundItem
	Score int
}

// Selector picks the best scoring found items for a report.
type Selector struct {
	// TopN caps the number of results. Zero or less means no cap.
	TopN int
	// MinScore is the lowest score that still qualifies.
	MinScore int
	// Workers scores candidates in parallel when greater than 1.
	Workers int
}

// Select scores every candidate against lost, drops those below MinScore and
// returns the rest best first. Equal scores keep their input order.
func (s Selector) Select(lost model.LostReport, candidates []model.FoundItem) []Candidate {
	scores := make([]int, len(candidates))

	if s.Workers > 1 && len(candidates) > 1 {
		var g errgroup.Group
		g.SetLimit(s.Workers)
		for i := range candidates {
			g.Go(func() error {
				scores[i] = Score(lost, candidates[i])
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range candidates {
			scores[i] = Score(lost, candidates[i])
		}
	}

	var out []Candidate
	for i, c := range candidates {
		if scores[i] < s.MinScore {
			continue
		}
		out = append(out, Candidate{Item: c, Score: scores[i]})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	if s.TopN > 0 && len(out) > s.TopN {
		out = out[:s.TopN]
	}
	return out
}
