package matching

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

func TestSQLPipelineEndToEnd(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	student, err := store.CreateUser(ctx, database, "ana", "hash", model.RoleStudent)
	require.NoError(t, err)
	guard, err := store.CreateUser(ctx, database, "guard", "hash", model.RoleSecurity)
	require.NoError(t, err)

	report, err := store.CreateReport(ctx, database, student.ID, store.ReportParams{
		ItemName:   "Blue Backpack",
		Category:   model.CategoryBags,
		ReportedAt: day0,
	})
	require.NoError(t, err)

	typo, err := store.CreateFoundItem(ctx, database, guard.ID, store.FoundParams{
		ItemName: "Blu Bakpack",
		Category: model.CategoryBags,
		FoundAt:  day0.AddDate(0, 0, 3),
	})
	require.NoError(t, err)
	_, err = store.CreateFoundItem(ctx, database, guard.ID, store.FoundParams{
		ItemName: "Blue Backpack",
		Category: model.CategoryClothing,
		FoundAt:  day0,
	})
	require.NoError(t, err)
	claimed, err := store.CreateFoundItem(ctx, database, guard.ID, store.FoundParams{
		ItemName: "Blue Backpack",
		Category: model.CategoryBags,
		FoundAt:  day0,
	})
	require.NoError(t, err)
	require.NoError(t, store.UpdateFoundStatus(ctx, database, claimed.ID, model.FoundStatusClaimed))

	p := NewSQLPipeline(database, DefaultConfig())

	res, err := p.Run(ctx, *report)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Candidates)
	assert.Equal(t, 1, res.Matches)
	assert.Equal(t, 1, res.Notified)

	matches, err := store.ListMatchesForReport(ctx, database, report.ID)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, typo.ID, matches[0].FoundID)
	assert.Equal(t, 75, matches[0].Score)
	assert.True(t, matches[0].Notified)

	notes, err := store.ListNotifications(ctx, database, student.ID, false)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, `Possible match found for your "Blue Backpack" (score 75%)`, notes[0].Message)
	require.NotNil(t, notes[0].MatchID)
	assert.Equal(t, matches[0].ID, *notes[0].MatchID)

	// Rerunning re-scores in place.
	p.now = func() time.Time { return day0.AddDate(0, 0, 5) }
	_, err = p.Run(ctx, *report)
	require.NoError(t, err)

	matches, err = store.ListMatchesForReport(ctx, database, report.ID)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.True(t, matches[0].MatchedAt.Equal(day0.AddDate(0, 0, 5)))
}

func TestSQLStoreMapsNotPending(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	student, _ := store.CreateUser(ctx, database, "ana", "hash", model.RoleStudent)
	guard, _ := store.CreateUser(ctx, database, "guard", "hash", model.RoleSecurity)
	report, _ := store.CreateReport(ctx, database, student.ID, store.ReportParams{ItemName: "Keys", Category: model.CategoryKeys})
	found, _ := store.CreateFoundItem(ctx, database, guard.ID, store.FoundParams{ItemName: "Keys", Category: model.CategoryKeys})
	require.NoError(t, store.UpdateFoundStatus(ctx, database, found.ID, model.FoundStatusClaimed))

	_, err := SQLStore{DB: database}.UpsertMatch(ctx, report.ID, found.ID, 90, time.Now())
	assert.ErrorIs(t, err, ErrFoundNotPending)
}
