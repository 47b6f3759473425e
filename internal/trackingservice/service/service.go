package service

import (
	"context"

	"dinehub/internal/trackingservice/db"
	"dinehub/pkg/logger"
	"dinehub/pkg/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type TrackingService struct {
	dbService *db.TrackingDB
	logger    *logger.Logger
}

func NewTrackingService(dbPool *pgxpool.Pool, log *logger.Logger) *TrackingService {
	return &TrackingService{
		dbService: db.NewTrackingDB(dbPool, log),
		logger:    log,
	}
}

func (s *TrackingService) GetOrderStatus(ctx context.Context, orderNumber string) (*models.OrderStatusResponse, error) {
	order, err := s.dbService.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	return &models.OrderStatusResponse{
		OrderNumber:     order.OrderNumber,
		CurrentStatus:   order.Status,
		UpdatedAt:       order.UpdatedAt,
		StartedAt:       order.StartedAt,
		CompletedAt:     order.CompletedAt,
		PrepTimeSeconds: order.PrepTimeSeconds,
	}, nil
}

func (s *TrackingService) GetOrderHistory(ctx context.Context, orderNumber string) ([]models.OrderHistoryEntry, error) {
	order, err := s.dbService.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	history, err := s.dbService.GetOrderStatusHistory(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	entries := make([]models.OrderHistoryEntry, 0, len(history))
	for _, entry := range history {
		entries = append(entries, models.OrderHistoryEntry{
			Status:    entry.Status,
			Timestamp: entry.ChangedAt,
			ChangedBy: entry.ChangedBy,
		})
	}
	return entries, nil
}

func (s *TrackingService) GetPrepTimeStats(ctx context.Context) (*models.PrepTimeStats, error) {
	return s.dbService.GetPrepTimeStats(ctx)
}

func (s *TrackingService) GetAvgPrepTime(ctx context.Context, days int) (float64, error) {
	return s.dbService.GetAvgPrepTime(ctx, days)
}

func (s *TrackingService) GetKitchenQueue(ctx context.Context) ([]models.KitchenQueueEntry, error) {
	return s.dbService.GetKitchenQueue(ctx)
}
