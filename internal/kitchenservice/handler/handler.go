package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	kdb "dinehub/internal/kitchenservice/db"
	"dinehub/internal/kitchenservice/service"
	"dinehub/internal/kitchenservice/settlement"
	"dinehub/internal/kitchenservice/statemachine"
	"dinehub/internal/loyalty"
	"dinehub/internal/promotion"
	"dinehub/pkg/logger"
	"dinehub/pkg/models"
	"dinehub/pkg/rabbitmq"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type KitchenHandler struct {
	service *service.TransitionService
	logger  *logger.Logger
}

func NewKitchenHandler(dbPool *pgxpool.Pool, rmq *rabbitmq.RabbitMQ, log *logger.Logger) *KitchenHandler {
	return &KitchenHandler{
		service: service.NewTransitionService(dbPool, rmq, log),
		logger:  log,
	}
}

// TransitionOrder handles POST /orders/{number}/status.
func (h *KitchenHandler) TransitionOrder(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = "req-" + uuid.NewString()
	}

	orderNumber := r.PathValue("number")
	if orderNumber == "" {
		http.Error(w, "Order number is required", http.StatusBadRequest)
		return
	}

	var req models.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error(requestID, "validation_failed", "Invalid JSON payload", err)
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if req.Status == "" {
		http.Error(w, "status is required", http.StatusBadRequest)
		return
	}
	if req.ChangedBy == "" {
		req.ChangedBy = "kitchen-service"
	}

	h.logger.Debug(requestID, "transition_requested",
		"Transition requested for order "+orderNumber+" to "+req.Status)

	order, err := h.service.Transition(r.Context(), orderNumber, req.Status, req.ChangedBy, requestID)
	if err != nil {
		h.writeError(w, requestID, orderNumber, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(order)
}

func (h *KitchenHandler) writeError(w http.ResponseWriter, requestID, orderNumber string, err error) {
	var invalid *statemachine.InvalidTransitionError
	var settleErr *settlement.Error

	switch {
	case errors.Is(err, kdb.ErrOrderNotFound):
		http.Error(w, "Order not found", http.StatusNotFound)
	case errors.As(err, &invalid):
		http.Error(w, invalid.Error(), http.StatusConflict)
	case errors.Is(err, statemachine.ErrAlreadyTerminal):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, statemachine.ErrUnknownStatus):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &settleErr):
		h.logger.Error(requestID, "settlement_failed",
			"Settlement failed for order "+orderNumber, err)
		status := http.StatusInternalServerError
		if errors.Is(err, loyalty.ErrInsufficientPoints) || errors.Is(err, promotion.ErrExhausted) {
			status = http.StatusConflict
		}
		http.Error(w, settleErr.Error(), status)
	case errors.Is(err, kdb.ErrConcurrentModification):
		http.Error(w, "Order was modified concurrently, please retry", http.StatusConflict)
	default:
		h.logger.Error(requestID, "transition_failed",
			"Failed to transition order "+orderNumber, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
