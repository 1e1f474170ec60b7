package usecase

import (
	"context"
	"testing"
	"time"

	"crm-service/internal/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockStatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) CountLeads(ctx context.Context, tenantID uint) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatsRepository) CountLeadsSince(ctx context.Context, tenantID uint, since time.Time) (int64, error) {
	args := m.Called(ctx, tenantID, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatsRepository) CountConvertedSince(ctx context.Context, tenantID uint, since time.Time) (int64, error) {
	args := m.Called(ctx, tenantID, since)
	return args.Get(0).(int64), args.Error(1)
}

func TestDashboardStats(t *testing.T) {
	ctx := context.Background()
	stats := new(MockStatsRepository)
	organizer := policy.NewOrganizer(1, 10)

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	cutoff := now.Add(-30 * 24 * time.Hour)

	stats.On("CountLeads", ctx, uint(10)).Return(int64(120), nil)
	stats.On("CountLeadsSince", ctx, uint(10), cutoff).Return(int64(15), nil)
	stats.On("CountConvertedSince", ctx, uint(10), cutoff).Return(int64(4), nil)

	uc := NewDashboard(stats)
	uc.now = func() time.Time { return now }

	got, err := uc.Stats(ctx, organizer)

	assert.NoError(t, err)
	assert.Equal(t, int64(120), got.TotalLeads)
	assert.Equal(t, int64(15), got.LeadsLast30Days)
	assert.Equal(t, int64(4), got.ConvertedLast30d)
}

func TestDashboardStatsEmptyTenant(t *testing.T) {
	ctx := context.Background()
	stats := new(MockStatsRepository)
	organizer := policy.NewOrganizer(1, 10)

	// A tenant with no leads at all gets a zero dashboard, not an error.
	stats.On("CountLeads", ctx, uint(10)).Return(int64(0), nil)
	stats.On("CountLeadsSince", ctx, uint(10), mock.Anything).Return(int64(0), nil)
	stats.On("CountConvertedSince", ctx, uint(10), mock.Anything).Return(int64(0), nil)

	uc := NewDashboard(stats)

	got, err := uc.Stats(ctx, organizer)

	assert.NoError(t, err)
	assert.Equal(t, int64(0), got.TotalLeads)
	assert.Equal(t, int64(0), got.LeadsLast30Days)
	assert.Equal(t, int64(0), got.ConvertedLast30d)
}

func TestDashboardRejectsAgents(t *testing.T) {
	ctx := context.Background()
	agent := policy.NewAgent(2, 10, 7)

	uc := NewDashboard(new(MockStatsRepository))

	_, err := uc.Stats(ctx, agent)

	assert.ErrorIs(t, err, ErrForbidden)
}
