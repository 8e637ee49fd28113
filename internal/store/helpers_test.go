package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/erazemk/lostfound/internal/model"
)

// seed holds a student, a security officer, one lost report and one pending found item.
type seed struct {
	student  *model.User
	security *model.User
	report   *model.LostReport
	found    *model.FoundItem
}

func seedData(t *testing.T, database *sql.DB) seed {
	t.Helper()
	ctx := context.Background()

	student, err := CreateUser(ctx, database, "ana", "hash", model.RoleStudent)
	if err != nil {
		t.Fatalf("CreateUser student: %v", err)
	}
	security, err := CreateUser(ctx, database, "guard", "hash", model.RoleSecurity)
	if err != nil {
		t.Fatalf("CreateUser security: %v", err)
	}

	day0 := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	report, err := CreateReport(ctx, database, student.ID, ReportParams{
		ItemName:    "iPhone 13",
		Description: "black case",
		Category:    model.CategoryElectronics,
		Location:    "Library",
		ReportedAt:  day0,
	})
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	found, err := CreateFoundItem(ctx, database, security.ID, FoundParams{
		ItemName: "iPhone 13",
		Category: model.CategoryElectronics,
		FoundAt:  day0.Add(2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateFoundItem: %v", err)
	}

	return seed{student: student, security: security, report: report, found: found}
}
