package matching

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/erazemk/lostfound/internal/model"
)

type mockSource struct{ mock.Mock }

func (m *mockSource) ListPendingFoundItems(ctx context.Context) ([]model.FoundItem, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.FoundItem)
	return items, args.Error(1)
}

type mockMatches struct{ mock.Mock }

func (m *mockMatches) UpsertMatch(ctx context.Context, reportID, foundID int64, score int, matchedAt time.Time) (int64, error) {
	args := m.Called(ctx, reportID, foundID, score, matchedAt)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockMatches) MarkMatchNotified(ctx context.Context, matchID int64) error {
	return m.Called(ctx, matchID).Error(0)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) CreateNotification(ctx context.Context, studentID, matchID int64, message string) error {
	return m.Called(ctx, studentID, matchID, message).Error(0)
}

type mockRunner struct{ mock.Mock }

func (m *mockRunner) Run(ctx context.Context, report model.LostReport) (Result, error) {
	args := m.Called(ctx, report)
	return args.Get(0).(Result), args.Error(1)
}
