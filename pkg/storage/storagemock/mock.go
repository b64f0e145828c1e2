package storagemock

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/tempotrack/tempotrack/pkg/storage"
	"github.com/tempotrack/tempotrack/pkg/types"
)

type MockDatabase struct {
	mock.Mock
}

var _ storage.Database = (*MockDatabase)(nil)

func (m *MockDatabase) InsertSnapshot(ctx context.Context, snap types.ConsumptionSnapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

func (m *MockDatabase) GetSnapshotHistory(ctx context.Context, start, end time.Time) ([]types.ConsumptionSnapshot, error) {
	args := m.Called(ctx, start, end)
	if v := args.Get(0); v != nil {
		return v.([]types.ConsumptionSnapshot), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDatabase) GetLatestSnapshotTime(ctx context.Context) (time.Time, error) {
	args := m.Called(ctx)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockDatabase) Close() error {
	args := m.Called()
	return args.Error(0)
}
