package domain

import "context"

// DashboardListSize is how many rows each dashboard list shows.
const DashboardListSize = 5

// DashboardOverview summarizes the directory for the landing page.
// swagger:model DashboardOverview
type DashboardOverview struct {
	TotalSpeakers    int        `json:"total_speakers"`
	TotalEvents      int        `json:"total_events"`
	RecentSpeakers   []*Speaker `json:"recent_speakers"`
	UpcomingEvents   []*Event   `json:"upcoming_events"`
	TopRatedSpeakers []*Speaker `json:"top_rated_speakers"`
}

// DashboardService builds the overview.
type DashboardService interface {
	Overview(ctx context.Context) (*DashboardOverview, error)
}
