package usecase

import (
	"context"
	"time"

	"crm-service/internal/policy"
)

// dashboardWindow is how far back the "recent" dashboard counters look.
const dashboardWindow = 30 * 24 * time.Hour

// DashboardStats is the organizer landing-page aggregate.
type DashboardStats struct {
	TotalLeads       int64 `json:"total_leads"`
	LeadsLast30Days  int64 `json:"leads_last_30_days"`
	ConvertedLast30d int64 `json:"converted_last_30_days"`
}

// Dashboard computes tenant-level lead statistics.
type Dashboard struct {
	stats StatsRepository
	now   func() time.Time
}

// NewDashboard wires the dashboard aggregate.
func NewDashboard(stats StatsRepository) *Dashboard {
	return &Dashboard{stats: stats, now: time.Now}
}

// Stats returns the aggregate for the organizer's tenant. A tenant with no
// leads, or no converted stage at all, yields zero counts rather than an
// error: conversions are counted by the leads' conversion timestamps, not by
// resolving a specially named category.
func (uc *Dashboard) Stats(ctx context.Context, actor policy.Actor) (*DashboardStats, error) {
	if !actor.IsOrganizer() {
		return nil, ErrForbidden
	}

	cutoff := uc.now().Add(-dashboardWindow)

	total, err := uc.stats.CountLeads(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}

	recent, err := uc.stats.CountLeadsSince(ctx, actor.TenantID, cutoff)
	if err != nil {
		return nil, err
	}

	converted, err := uc.stats.CountConvertedSince(ctx, actor.TenantID, cutoff)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		TotalLeads:       total,
		LeadsLast30Days:  recent,
		ConvertedLast30d: converted,
	}, nil
}
