package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"dinehub/internal/trackingservice/handler"
	"dinehub/pkg/config"
	"dinehub/pkg/db"
	"dinehub/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Server struct {
	port       int
	config     *config.Config
	logger     *logger.Logger
	httpServer *http.Server
	dbPool     *pgxpool.Pool
}

func NewServer(port int, cfg *config.Config, log *logger.Logger) *Server {
	return &Server{
		port:   port,
		config: cfg,
		logger: log,
	}
}

func (s *Server) Start() error {
	pool, err := db.ConnectDB(&s.config.Database, s.logger)
	if err != nil {
		return err
	}
	s.dbPool = pool

	trackingHandler := handler.NewTrackingHandler(s.dbPool, s.logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /orders/{number}/status", trackingHandler.GetOrderStatus)
	mux.HandleFunc("GET /orders/{number}/history", trackingHandler.GetOrderHistory)
	mux.HandleFunc("GET /kitchen/queue", trackingHandler.GetKitchenQueue)
	mux.HandleFunc("GET /stats/prep-time", trackingHandler.GetPrepTimeStats)
	mux.HandleFunc("GET /stats/prep-time/average", trackingHandler.GetAvgPrepTime)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("startup", "server_started", fmt.Sprintf("Tracking Service started on port %d", s.port))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
