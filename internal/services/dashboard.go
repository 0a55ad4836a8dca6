package services

import (
	"context"
	"fmt"
	"time"

	"speakerhub/internal/domain"
)

type dashboardService struct {
	repos          domain.Repositories
	contextTimeout time.Duration
	now            func() time.Time
}

func NewDashboardService(repos domain.Repositories, timeout time.Duration) domain.DashboardService {
	return &dashboardService{
		repos:          repos,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *dashboardService) Overview(ctx context.Context) (*domain.DashboardOverview, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var (
		out = &domain.DashboardOverview{}
		err error
	)
	if out.TotalSpeakers, err = s.repos.Speakers.Count(ctx); err != nil {
		return nil, fmt.Errorf("count speakers: %w", err)
	}
	if out.TotalEvents, err = s.repos.Events.Count(ctx); err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	if out.RecentSpeakers, err = s.repos.Speakers.ListRecent(ctx, domain.DashboardListSize); err != nil {
		return nil, fmt.Errorf("list recent speakers: %w", err)
	}
	if out.UpcomingEvents, err = s.repos.Events.ListUpcoming(ctx, s.now().UTC(), domain.DashboardListSize); err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	if out.TopRatedSpeakers, err = s.repos.Speakers.ListTopRated(ctx, domain.DashboardListSize); err != nil {
		return nil, fmt.Errorf("list top rated speakers: %w", err)
	}
	return out, nil
}
