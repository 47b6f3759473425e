package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"dinehub/internal/loyalty"
	"dinehub/internal/orderservice/service"
	"dinehub/internal/orderservice/validation"
	"dinehub/internal/promotion"
	"dinehub/pkg/config"
	"dinehub/pkg/logger"
	"dinehub/pkg/models"
	"dinehub/pkg/rabbitmq"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	service   *service.OrderService
	validator *validation.OrderValidator
	logger    *logger.Logger
}

func NewOrderHandler(dbPool *pgxpool.Pool, rmq *rabbitmq.RabbitMQ, cfg *config.Config, log *logger.Logger) *OrderHandler {
	return &OrderHandler{
		service:   service.NewOrderService(dbPool, rmq, cfg, log),
		validator: validation.NewOrderValidator(),
		logger:    log,
	}
}

func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFor(r)

	var req models.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error(requestID, "validation_failed", "Invalid JSON payload", err)
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		h.logger.Error(requestID, "validation_failed", "Validation failed", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.logger.Debug(requestID, "order_received", "New order received")

	response, err := h.service.CreateOrder(r.Context(), &req, requestID)
	if err != nil {
		h.logger.Error(requestID, "order_processing_failed", "Failed to create order", err)
		switch {
		case errors.Is(err, loyalty.ErrInsufficientPoints),
			errors.Is(err, loyalty.ErrCustomerNotFound):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case isPromotionError(err):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

func (h *OrderHandler) ValidatePromotion(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFor(r)

	var req models.ValidatePromotionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error(requestID, "validation_failed", "Invalid JSON payload", err)
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if req.Code == "" {
		http.Error(w, "code is required", http.StatusBadRequest)
		return
	}

	result := h.service.ValidatePromotion(r.Context(), req.Code, decimal.NewFromFloat(req.OrderTotal))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (h *OrderHandler) AdjustPoints(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFor(r)

	customerID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid customer id", http.StatusBadRequest)
		return
	}

	var req models.AdjustPointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error(requestID, "validation_failed", "Invalid JSON payload", err)
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if req.Reason == "" {
		http.Error(w, "reason is required", http.StatusBadRequest)
		return
	}

	if err := h.service.AdjustPoints(r.Context(), customerID, req.Points, req.Reason); err != nil {
		h.logger.Error(requestID, "points_adjustment_failed", "Failed to adjust customer points", err)
		switch {
		case errors.Is(err, loyalty.ErrCustomerNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, loyalty.ErrInsufficientPoints):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func requestIDFor(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	return "req-" + uuid.NewString()
}

func isPromotionError(err error) bool {
	for _, target := range []error{
		promotion.ErrNotFound, promotion.ErrInactive, promotion.ErrExpired,
		promotion.ErrExhausted, promotion.ErrBelowMinimum,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
