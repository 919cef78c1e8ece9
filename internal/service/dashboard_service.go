package service

import (
	"context"
	"time"

	"indrhi-inventory/internal/repository"
)

type DashboardService interface {
	GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error)
	GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error)
}

type dashboardService struct {
	movements repository.StockMovementRepository
	now       func() time.Time
}

func NewDashboardService(movements repository.StockMovementRepository) DashboardService {
	return &dashboardService{movements: movements, now: time.Now}
}

func (s *dashboardService) GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error) {
	endDate := s.now()
	startDate := endDate.AddDate(0, 0, -days)

	data, err := s.movements.GetStockMovement(ctx, startDate, endDate)
	if err != nil {
		return nil, storageErr(err, "stock movement")
	}
	if data == nil {
		data = []repository.StockMovementData{}
	}
	return data, nil
}

func (s *dashboardService) GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error) {
	stats, err := s.movements.GetDashboardStats(ctx)
	if err != nil {
		return nil, storageErr(err, "dashboard stats")
	}
	return stats, nil
}
