package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"dinehub/internal/orderservice/handler"
	"dinehub/pkg/config"
	"dinehub/pkg/db"
	"dinehub/pkg/logger"
	"dinehub/pkg/rabbitmq"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Server struct {
	port       int
	config     *config.Config
	logger     *logger.Logger
	httpServer *http.Server
	dbPool     *pgxpool.Pool
	rabbitMQ   *rabbitmq.RabbitMQ
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

	rmq, err := rabbitmq.ConnectRabbitMQ(&s.config.RabbitMQ, s.logger)
	if err != nil {
		return err
	}
	s.rabbitMQ = rmq

	orderHandler := handler.NewOrderHandler(s.dbPool, s.rabbitMQ, s.config, s.logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /orders", orderHandler.CreateOrder)
	mux.HandleFunc("POST /promotions/validate", orderHandler.ValidatePromotion)
	mux.HandleFunc("POST /customers/{id}/points/adjust", orderHandler.AdjustPoints)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("startup", "server_started", fmt.Sprintf("Order Service started on port %d", s.port))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.rabbitMQ != nil {
		s.rabbitMQ.Close()
	}
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
