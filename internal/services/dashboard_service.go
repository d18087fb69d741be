package services

import (
	"context"

	"github.com/ddproperty/ddproperty-api/internal/repository"
	"github.com/ddproperty/ddproperty-api/internal/types"
)

// DashboardService computes backoffice counters. Administrators see every
// property; other users see their own.
type DashboardService struct {
	repo *repository.DashboardRepository
}

func NewDashboardService(repo *repository.DashboardRepository) *DashboardService {
	return &DashboardService{repo: repo}
}

func (s *DashboardService) Stats(ctx context.Context, actor Actor) (*repository.DashboardStats, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	var owner *uint
	if !actor.IsAdmin() {
		id := actor.ID
		owner = &id
	}
	stats, err := s.repo.Stats(ctx, owner)
	if err != nil {
		return nil, types.FromStorage(err, "Dashboard statistics")
	}
	return stats, nil
}
