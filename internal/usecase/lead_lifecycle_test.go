package usecase

import (
	"context"
	"testing"
	"time"

	"crm-service/internal/model"
	"crm-service/internal/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *model.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) FindScoped(ctx context.Context, actor policy.Actor, id uint) (*model.Lead, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lead), args.Error(1)
}

func (m *MockLeadRepository) UpdateLocked(ctx context.Context, actor policy.Actor, id uint, fn func(*model.Lead) error) (*model.Lead, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	lead := args.Get(0).(*model.Lead)
	if err := fn(lead); err != nil {
		return nil, err
	}
	return lead, args.Error(1)
}

func (m *MockLeadRepository) DeleteWithFollowUps(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLeadRepository) ExportAll(ctx context.Context) ([]LeadExportRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]LeadExportRow), args.Error(1)
}

// MockCategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindScoped(ctx context.Context, actor policy.Actor, id uint) (*model.Category, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

// MockAgentRepository
type MockAgentRepository struct {
	mock.Mock
}

func (m *MockAgentRepository) FindByTenant(ctx context.Context, tenantID, agentID uint) (*model.Agent, error) {
	args := m.Called(ctx, tenantID, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Agent), args.Error(1)
}

// MockNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) LeadCreated(ctx context.Context, lead *model.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func newTestLifecycle(leads *MockLeadRepository, categories *MockCategoryRepository, agents *MockAgentRepository, notifier *MockNotifier, now time.Time) *LeadLifecycle {
	uc := NewLeadLifecycle(leads, categories, agents, notifier, zap.NewNop())
	uc.now = func() time.Time { return now }
	return uc
}

func TestCreateLead(t *testing.T) {
	ctx := context.Background()
	leads := new(MockLeadRepository)
	notifier := new(MockNotifier)
	organizer := policy.NewOrganizer(1, 10)

	leads.On("Create", ctx, mock.Anything).Return(nil)
	notifier.On("LeadCreated", ctx, mock.Anything).Return(nil)

	uc := newTestLifecycle(leads, nil, nil, notifier, time.Now())

	lead, err := uc.Create(ctx, organizer, CreateLeadInput{FirstName: "Ana", LastName: "Reis", Age: 31})

	assert.NoError(t, err)
	assert.Equal(t, uint(10), lead.ProfileID)
	assert.Nil(t, lead.AgentID)
	assert.Nil(t, lead.CategoryID)
	assert.Nil(t, lead.ConvertedAt)
	leads.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestCreateLeadSurvivesNotifierFailure(t *testing.T) {
	ctx := context.Background()
	leads := new(MockLeadRepository)
	notifier := new(MockNotifier)
	organizer := policy.NewOrganizer(1, 10)

	leads.On("Create", ctx, mock.Anything).Return(nil)
	notifier.On("LeadCreated", ctx, mock.Anything).Return(assert.AnError)

	uc := newTestLifecycle(leads, nil, nil, notifier, time.Now())

	lead, err := uc.Create(ctx, organizer, CreateLeadInput{FirstName: "Ana", LastName: "Reis"})

	assert.NoError(t, err)
	assert.NotNil(t, lead)
}

func TestCreateLeadRejectsAgents(t *testing.T) {
	ctx := context.Background()
	leads := new(MockLeadRepository)
	agent := policy.NewAgent(2, 10, 7)

	uc := newTestLifecycle(leads, nil, nil, new(MockNotifier), time.Now())

	_, err := uc.Create(ctx, agent, CreateLeadInput{FirstName: "Ana", LastName: "Reis"})

	assert.ErrorIs(t, err, ErrForbidden)
	leads.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateLeadRequiresName(t *testing.T) {
	ctx := context.Background()
	organizer := policy.NewOrganizer(1, 10)

	uc := newTestLifecycle(new(MockLeadRepository), nil, nil, new(MockNotifier), time.Now())

	_, err := uc.Create(ctx, organizer, CreateLeadInput{FirstName: "  ", LastName: "Reis"})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestAssignAgent(t *testing.T) {
	ctx := context.Background()
	leads := new(MockLeadRepository)
	agents := new(MockAgentRepository)
	organizer := policy.NewOrganizer(1, 10)

	agentRec := &model.Agent{ProfileID: 10}
	agentRec.ID = 7
	agents.On("FindByTenant", ctx, uint(10), uint(7)).Return(agentRec, nil)
	leads.On("UpdateLocked", ctx, organizer, uint(42)).Return(&model.Lead{ProfileID: 10}, nil)

	uc := newTestLifecycle(leads, nil, agents, new(MockNotifier), time.Now())

	lead, err := uc.AssignAgent(ctx, organizer, 42, 7)

	assert.NoError(t, err)
	assert.Equal(t, uint(7), *lead.AgentID)
}

func TestAssignAgentRejectsCrossTenantAgent(t *testing.T) {
	ctx := context.Background()
	leads := new(MockLeadRepository)
	agents := new(MockAgentRepository)
	organizer := policy.NewOrganizer(1, 10)

	// The agent exists, but in another tenant; tenant-scoped lookup sees
	// nothing.
	agents.On("FindByTenant", ctx, uint(10), uint(7)).Return(nil, ErrNotFound)

	uc := newTestLifecycle(leads, nil, agents, new(MockNotifier), time.Now())

	_, err := uc.AssignAgent(ctx, organizer, 42, 7)

	assert.ErrorIs(t, err, ErrNotFound)
	leads.AssertNotCalled(t, "UpdateLocked", mock.Anything, mock.Anything, mock.Anything)
}

func TestAssignAgentRejectsAgents(t *testing.T) {
	ctx := context.Background()
	agent := policy.NewAgent(2, 10, 7)

	uc := newTestLifecycle(new(MockLeadRepository), nil, new(MockAgentRepository), new(MockNotifier), time.Now())

	_, err := uc.AssignAgent(ctx, agent, 42, 7)

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateCategoryStampsConversion(t *testing.T) {
	ctx := context.Background()
	leads := new(MockLeadRepository)
	categories := new(MockCategoryRepository)
	organizer := policy.NewOrganizer(1, 10)
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	converted := &model.Category{Name: "Converted", ProfileID: 10, Converted: true}
	converted.ID = 3
	lead := &model.Lead{ProfileID: 10}

	categories.On("FindScoped", ctx, organizer, uint(3)).Return(converted, nil)
	leads.On("UpdateLocked", ctx, organizer, uint(42)).Return(lead, nil)

	uc := newTestLifecycle(leads, categories, nil, new(MockNotifier), now)

	got, err := uc.UpdateCategory(ctx, organizer, 42, 3)

	assert.NoError(t, err)
	assert.Equal(t, converted.ID, *got.CategoryID)
	assert.Equal(t, now, *got.ConvertedAt)
}

func TestUpdateCategoryStampIsIdempotent(t *testing.T) {
	ctx := context.Background()
	leads := new(MockLeadRepository)
	categories := new(MockCategoryRepository)
	organizer := policy.NewOrganizer(1, 10)

	first := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)

	converted := &model.Category{Name: "Converted", ProfileID: 10, Converted: true}
	converted.ID = 3
	lead := &model.Lead{ProfileID: 10, ConvertedAt: &first}

	categories.On("FindScoped", ctx, organizer, uint(3)).Return(converted, nil)
	leads.On("UpdateLocked", ctx, organizer, uint(42)).Return(lead, nil)

	uc := newTestLifecycle(leads, categories, nil, new(MockNotifier), later)

	got, err := uc.UpdateCategory(ctx, organizer, 42, 3)

	assert.NoError(t, err)
	assert.Equal(t, first, *got.ConvertedAt)
}

func TestConversionStampSurvivesLeavingTheStage(t *testing.T) {
	ctx := context.Background()
	leads := new(MockLeadRepository)
	categories := new(MockCategoryRepository)
	organizer := policy.NewOrganizer(1, 10)

	first := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	later := first.Add(72 * time.Hour)

	contacted := &model.Category{Name: "Contacted", ProfileID: 10}
	contacted.ID = 2
	lead := &model.Lead{ProfileID: 10, ConvertedAt: &first}

	categories.On("FindScoped", ctx, organizer, uint(2)).Return(contacted, nil)
	leads.On("UpdateLocked", ctx, organizer, uint(42)).Return(lead, nil)

	uc := newTestLifecycle(leads, categories, nil, new(MockNotifier), later)

	got, err := uc.UpdateCategory(ctx, organizer, 42, 2)

	assert.NoError(t, err)
	assert.Equal(t, contacted.ID, *got.CategoryID)
	assert.Equal(t, first, *got.ConvertedAt)
}

func TestAgentCanMoveAssignedLead(t *testing.T) {
	ctx := context.Background()
	leads := new(MockLeadRepository)
	categories := new(MockCategoryRepository)
	agent := policy.NewAgent(2, 10, 7)

	stage := &model.Category{Name: "Contacted", ProfileID: 10}
	stage.ID = 2
	self := uint(7)
	lead := &model.Lead{ProfileID: 10, AgentID: &self}

	categories.On("FindScoped", ctx, agent, uint(2)).Return(stage, nil)
	leads.On("UpdateLocked", ctx, agent, uint(42)).Return(lead, nil)

	uc := newTestLifecycle(leads, categories, nil, new(MockNotifier), time.Now())

	got, err := uc.UpdateCategory(ctx, agent, 42, 2)

	assert.NoError(t, err)
	assert.Equal(t, stage.ID, *got.CategoryID)
}

func TestUpdateCategoryRejectsForeignCategory(t *testing.T) {
	ctx := context.Background()
	leads := new(MockLeadRepository)
	categories := new(MockCategoryRepository)
	organizer := policy.NewOrganizer(1, 10)

	categories.On("FindScoped", ctx, organizer, uint(9)).Return(nil, ErrNotFound)

	uc := newTestLifecycle(leads, categories, nil, new(MockNotifier), time.Now())

	_, err := uc.UpdateCategory(ctx, organizer, 42, 9)

	assert.ErrorIs(t, err, ErrNotFound)
	leads.AssertNotCalled(t, "UpdateLocked", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteLeadRemovesFollowUps(t *testing.T) {
	ctx := context.Background()
	leads := new(MockLeadRepository)
	organizer := policy.NewOrganizer(1, 10)

	lead := &model.Lead{ProfileID: 10}
	lead.ID = 42

	leads.On("FindScoped", ctx, organizer, uint(42)).Return(lead, nil)
	leads.On("DeleteWithFollowUps", ctx, uint(42)).Return(nil)

	uc := newTestLifecycle(leads, nil, nil, new(MockNotifier), time.Now())

	err := uc.Delete(ctx, organizer, 42)

	assert.NoError(t, err)
	leads.AssertExpectations(t)
}

func TestDeleteLeadRejectsAgents(t *testing.T) {
	ctx := context.Background()
	leads := new(MockLeadRepository)
	agent := policy.NewAgent(2, 10, 7)

	uc := newTestLifecycle(leads, nil, nil, new(MockNotifier), time.Now())

	err := uc.Delete(ctx, agent, 42)

	assert.ErrorIs(t, err, ErrForbidden)
	leads.AssertNotCalled(t, "DeleteWithFollowUps", mock.Anything, mock.Anything)
}

func TestExportAllIsUnscoped(t *testing.T) {
	ctx := context.Background()
	leads := new(MockLeadRepository)

	// Rows from two different tenants come back in one dump.
	rows := []LeadExportRow{
		{FirstName: "Ana", LastName: "Reis", Age: 31},
		{FirstName: "Bea", LastName: "Sol", Age: 45},
	}
	leads.On("ExportAll", ctx).Return(rows, nil)

	uc := newTestLifecycle(leads, nil, nil, new(MockNotifier), time.Now())

	got, err := uc.ExportAll(ctx)

	assert.NoError(t, err)
	assert.Equal(t, rows, got)
}
