package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"dinehub/internal/trackingservice/db"
	"dinehub/internal/trackingservice/service"
	"dinehub/pkg/logger"
	"dinehub/pkg/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TrackingHandler struct {
	service *service.TrackingService
	logger  *logger.Logger
}

func NewTrackingHandler(dbPool *pgxpool.Pool, log *logger.Logger) *TrackingHandler {
	return &TrackingHandler{
		service: service.NewTrackingService(dbPool, log),
		logger:  log,
	}
}

func (h *TrackingHandler) GetOrderStatus(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFor(r)
	orderNumber := r.PathValue("number")

	h.logger.Debug(requestID, "request_received", "Get order status request for order: "+orderNumber)

	status, err := h.service.GetOrderStatus(r.Context(), orderNumber)
	if err != nil {
		h.writeReadError(w, requestID, err, "Failed to get order status")
		return
	}

	writeJSON(w, status)
}

func (h *TrackingHandler) GetOrderHistory(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFor(r)
	orderNumber := r.PathValue("number")

	h.logger.Debug(requestID, "request_received", "Get order history request for order: "+orderNumber)

	history, err := h.service.GetOrderHistory(r.Context(), orderNumber)
	if err != nil {
		h.writeReadError(w, requestID, err, "Failed to get order history")
		return
	}

	writeJSON(w, history)
}

func (h *TrackingHandler) GetPrepTimeStats(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFor(r)

	stats, err := h.service.GetPrepTimeStats(r.Context())
	if err != nil {
		h.writeReadError(w, requestID, err, "Failed to get prep time stats")
		return
	}

	writeJSON(w, stats)
}

func (h *TrackingHandler) GetAvgPrepTime(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFor(r)

	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 365 {
			http.Error(w, "days must be between 1 and 365", http.StatusBadRequest)
			return
		}
		days = n
	}

	avg, err := h.service.GetAvgPrepTime(r.Context(), days)
	if err != nil {
		h.writeReadError(w, requestID, err, "Failed to get average prep time")
		return
	}

	writeJSON(w, map[string]any{"days": days, "avg_seconds": avg})
}

func (h *TrackingHandler) GetKitchenQueue(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFor(r)

	queue, err := h.service.GetKitchenQueue(r.Context())
	if err != nil {
		h.writeReadError(w, requestID, err, "Failed to get kitchen queue")
		return
	}
	if queue == nil {
		queue = []models.KitchenQueueEntry{}
	}

	writeJSON(w, queue)
}

func (h *TrackingHandler) writeReadError(w http.ResponseWriter, requestID string, err error, message string) {
	if errors.Is(err, db.ErrOrderNotFound) {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}
	h.logger.Error(requestID, "db_query_failed", message, err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func requestIDFor(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	return "req-" + uuid.NewString()
}
