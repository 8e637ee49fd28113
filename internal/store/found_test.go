package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/model"
)

func TestCreateFoundItemIsPending(t *testing.T) {
	database := db.NewTestDB(t)
	s := seedData(t, database)

	if s.found.Status != model.FoundStatusPending {
		t.Errorf("expected pending, got %q", s.found.Status)
	}
	if s.found.LoggedBy != s.security.ID {
		t.Errorf("expected logged_by %d, got %d", s.security.ID, s.found.LoggedBy)
	}
}

func TestListPendingFoundItems(t *testing.T) {
	database := db.NewTestDB(t)
	s := seedData(t, database)
	ctx := context.Background()

	second, _ := CreateFoundItem(ctx, database, s.security.ID, FoundParams{ItemName: "Umbrella", Category: model.CategoryOther})
	if err := UpdateFoundStatus(ctx, database, second.ID, model.FoundStatusClaimed); err != nil {
		t.Fatalf("UpdateFoundStatus: %v", err)
	}

	pending, err := ListPendingFoundItems(ctx, database)
	if err != nil {
		t.Fatalf("ListPendingFoundItems: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != s.found.ID {
		t.Errorf("expected only the first item pending, got %v", pending)
	}

	all, _ := ListFoundItems(ctx, database, "")
	if len(all) != 2 {
		t.Errorf("expected 2 items, got %d", len(all))
	}
}

func TestFoundClaimsWorkflow(t *testing.T) {
	database := db.NewTestDB(t)
	s := seedData(t, database)
	ctx := context.Background()

	if err := UpdateFoundStatus(ctx, database, s.found.ID, model.FoundStatusReturned); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected pending -> returned to be rejected, got %v", err)
	}

	steps := []string{model.FoundStatusClaimed, model.FoundStatusPending, model.FoundStatusClaimed, model.FoundStatusReturned}
	for _, st := range steps {
		if err := UpdateFoundStatus(ctx, database, s.found.ID, st); err != nil {
			t.Fatalf("transition to %s: %v", st, err)
		}
	}

	if err := UpdateFoundStatus(ctx, database, s.found.ID, model.FoundStatusPending); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected returned to be terminal, got %v", err)
	}
}
