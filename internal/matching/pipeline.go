package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/erazemk/lostfound/internal/metrics"
	"github.com/erazemk/lostfound/internal/model"
)

// ErrFoundNotPending is returned by a MatchStore that refuses to record a
// match for a found item that has left the pending status.
var ErrFoundNotPending = errors.New("found item is not pending")

// CandidateSource lists the found items a report may be matched against.
// Implementations must only return items in pending status.
type CandidateSource interface {
	ListPendingFoundItems(ctx context.Context) ([]model.FoundItem, error)
}

// MatchStore persists matches. UpsertMatch must be idempotent on the
// (reportID, foundID) pair, overwriting score and matchedAt on conflict.
type MatchStore interface {
	UpsertMatch(ctx context.Context, reportID, foundID int64, score int, matchedAt time.Time) (int64, error)
	MarkMatchNotified(ctx context.Context, matchID int64) error
}

// NotificationSink delivers a message to a student about a match.
type NotificationSink interface {
	CreateNotification(ctx context.Context, studentID, matchID int64, message string) error
}

// Config holds the pipeline thresholds.
type Config struct {
	TopN         int
	MinScore     int
	NotifyScore  int
	ScoreWorkers int
}

// DefaultConfig returns the standard thresholds: the ten best matches scoring
// at least 40, with a notification from 50 up.
func DefaultConfig() Config {
	return Config{TopN: 10, MinScore: 40, NotifyScore: 50, ScoreWorkers: 1}
}

// Result summarizes one pipeline run.
type Result struct {
	RunID      string `json:"run_id"`
	Candidates int    `json:"candidates"`
	Matches    int    `json:"matches"`
	Notified   int    `json:"notified"`
	Skipped    int    `json:"skipped"`
	Failures   int    `json:"failures"`
}

// Pipeline matches a lost report against the pending found items, records
// every qualifying match and notifies the report owner of confident ones.
type Pipeline struct {
	source   CandidateSource
	matches  MatchStore
	notifier NotificationSink
	cfg      Config
	now      func() time.Time
}

// NewPipeline creates a pipeline over the given collaborators.
func NewPipeline(source CandidateSource, matches MatchStore, notifier NotificationSink, cfg Config) *Pipeline {
	return &Pipeline{
		source:   source,
		matches:  matches,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Selector returns the selector the pipeline runs with.
func (p *Pipeline) Selector() Selector {
	return Selector{TopN: p.cfg.TopN, MinScore: p.cfg.MinScore, Workers: p.cfg.ScoreWorkers}
}

// Run matches report against the current candidate pool. Work is best effort:
// a failed match or notification is logged and counted, and the run moves on
// to the next candidate. Run only returns an error when the candidate pool
// cannot be loaded or ctx is done; matches written before that stand.
func (p *Pipeline) Run(ctx context.Context, report model.LostReport) (Result, error) {
	start := time.Now()
	res := Result{RunID: ulid.Make().String()}
	log := slog.With("report_id", report.ID, "run_id", res.RunID)

	outcome, err := p.run(ctx, report, &res, log)

	d := time.Since(start)
	metrics.IncPipelineRun(outcome)
	metrics.ObservePipelineDuration(d)

	if err != nil {
		log.Error("match pipeline failed", "outcome", outcome, "error", err)
		return res, err
	}
	log.Info("match pipeline finished",
		"candidates", res.Candidates,
		"matches", res.Matches,
		"notified", res.Notified,
		"skipped", res.Skipped,
		"failures", res.Failures,
		"duration", d,
	)
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, report model.LostReport, res *Result, log *slog.Logger) (string, error) {
	if err := ctx.Err(); err != nil {
		return metrics.OutcomeCanceled, err
	}

	items, err := p.source.ListPendingFoundItems(ctx)
	if err != nil {
		return metrics.OutcomeFailed, fmt.Errorf("loading candidates: %w", err)
	}

	pending := items[:0:0]
	for _, it := range items {
		if it.Status == model.FoundStatusPending {
			pending = append(pending, it)
		}
	}
	res.Candidates = len(pending)
	if len(pending) == 0 {
		return metrics.OutcomeEmpty, nil
	}

	selected := p.Selector().Select(report, pending)
	if len(selected) == 0 {
		return metrics.OutcomeNoMatches, nil
	}

	for _, c := range selected {
		if err := ctx.Err(); err != nil {
			return metrics.OutcomeCanceled, err
		}
		p.record(ctx, report, c, res, log)
	}

	return metrics.OutcomeMatched, nil
}

// record writes one match and, when it is confident enough, notifies the owner.
func (p *Pipeline) record(ctx context.Context, report model.LostReport, c Candidate, res *Result, log *slog.Logger) {
	matchID, err := p.matches.UpsertMatch(ctx, report.ID, c.Item.ID, c.Score, p.now().UTC())
	if errors.Is(err, ErrFoundNotPending) {
		log.Info("found item left pending before match was recorded", "found_id", c.Item.ID)
		res.Skipped++
		return
	}
	if err != nil {
		log.Error("recording match", "found_id", c.Item.ID, "score", c.Score, "error", err)
		metrics.IncUpsertFailures()
		res.Failures++
		return
	}
	res.Matches++
	metrics.IncMatchesRecorded()

	if c.Score < p.cfg.NotifyScore {
		return
	}

	msg := NotificationMessage(report.ItemName, c.Score)
	if err := p.notifier.CreateNotification(ctx, report.StudentID, matchID, msg); err != nil {
		log.Error("notifying student", "match_id", matchID, "student_id", report.StudentID, "error", err)
		metrics.IncNotificationFailures()
		res.Failures++
		return
	}
	res.Notified++
	metrics.IncNotificationsCreated()

	if err := p.matches.MarkMatchNotified(ctx, matchID); err != nil {
		log.Error("flagging match notified", "match_id", matchID, "error", err)
		res.Failures++
	}
}

// NotificationMessage is the text a student receives about a new match.
func NotificationMessage(itemName string, score int) string {
	return fmt.Sprintf("Possible match found for your \"%s\" (score %d%%)", itemName, score)
}
