package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	kdb "dinehub/internal/kitchenservice/db"
	"dinehub/internal/kitchenservice/settlement"
	"dinehub/internal/kitchenservice/statemachine"
	"dinehub/internal/loyalty"
	"dinehub/pkg/logger"
	"dinehub/pkg/models"
	"dinehub/pkg/rabbitmq"

	"github.com/jackc/pgx/v5/pgxpool"
)

type TransitionService struct {
	dbService *kdb.KitchenDB
	engine    *settlement.Engine
	rabbitMQ  *rabbitmq.RabbitMQ
	logger    *logger.Logger
}

func NewTransitionService(dbPool *pgxpool.Pool, rmq *rabbitmq.RabbitMQ, log *logger.Logger) *TransitionService {
	ledger := loyalty.NewLedger(dbPool, log)
	return &TransitionService{
		dbService: kdb.NewKitchenDB(dbPool, log),
		engine:    settlement.NewEngine(ledger, log),
		rabbitMQ:  rmq,
		logger:    log,
	}
}

// Transition drives the order state machine. A concurrent-modification
// conflict is retried once with a fresh read; a second conflict is
// surfaced to the caller.
func (s *TransitionService) Transition(ctx context.Context, orderNumber, target, changedBy, requestID string) (*models.Order, error) {
	order, err := s.transitionOnce(ctx, orderNumber, target, changedBy, requestID)
	if errors.Is(err, kdb.ErrConcurrentModification) {
		s.logger.Warn(requestID, "transition_conflict",
			fmt.Sprintf("Retrying transition of order %s to %s after conflict", orderNumber, target))
		order, err = s.transitionOnce(ctx, orderNumber, target, changedBy, requestID)
	}
	return order, err
}

func (s *TransitionService) transitionOnce(ctx context.Context, orderNumber, target, changedBy, requestID string) (*models.Order, error) {
	tx, err := s.dbService.Pool().Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	order, err := s.dbService.GetOrderForUpdate(ctx, tx, orderNumber)
	if err != nil {
		return nil, err
	}
	oldStatus := order.Status

	now := time.Now().UTC()
	eff, err := statemachine.Apply(order, target, now)
	if err != nil {
		return nil, err
	}

	if err := s.dbService.ApplyTransition(ctx, tx, order, eff, now); err != nil {
		return nil, err
	}

	notes := fmt.Sprintf("Status changed from '%s' to '%s'", oldStatus, target)
	if err := s.dbService.LogOrderStatus(ctx, tx, order.ID, target, changedBy, notes); err != nil {
		return nil, err
	}

	// Settlement shares the transaction: a failed settlement rolls the
	// status write back too, so the order never reaches completed with
	// half-applied loyalty effects.
	if eff.Settle {
		if err := s.engine.Settle(ctx, tx, order, requestID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transition: %w", err)
	}

	s.applyEffectsLocally(order, eff, now)
	s.publishStatusUpdate(order.OrderNumber, oldStatus, target, changedBy, requestID)
	return order, nil
}

func (s *TransitionService) applyEffectsLocally(order *models.Order, eff statemachine.Effects, now time.Time) {
	order.Status = eff.Target
	order.UpdatedAt = now
	if eff.SetStartedAt {
		order.StartedAt = &now
	}
	if eff.SetCompletedAt {
		order.CompletedAt = &now
	}
	if eff.PrepTimeSeconds != nil {
		order.PrepTimeSeconds = eff.PrepTimeSeconds
	}
	if eff.Settle {
		order.SettledAt = &now
		if order.PaymentStatus == models.PaymentPending {
			order.PaymentStatus = models.PaymentPaid
		}
	}
}

func (s *TransitionService) publishStatusUpdate(orderNumber, oldStatus, newStatus, changedBy, requestID string) {
	if s.rabbitMQ == nil {
		return
	}
	msg := models.StatusUpdateMessage{
		OrderNumber: orderNumber,
		OldStatus:   oldStatus,
		NewStatus:   newStatus,
		ChangedBy:   changedBy,
		Timestamp:   time.Now().UTC(),
	}
	body, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error(requestID, "status_update_marshal_failed", "Failed to marshal status update", err)
		return
	}
	if err := s.rabbitMQ.PublishMessage(rabbitmq.NotificationsExchange, "", body); err != nil {
		// The transition is already committed; a lost notification is
		// logged, not propagated.
		s.logger.Error(requestID, "status_update_publish_failed", "Failed to publish status update", err)
	}
}
