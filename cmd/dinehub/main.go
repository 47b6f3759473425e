package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	kitchenserver "dinehub/internal/kitchenservice/server"
	"dinehub/internal/notificationsubscriber/subscriber"
	orderserver "dinehub/internal/orderservice/server"
	trackingserver "dinehub/internal/trackingservice/server"
	"dinehub/pkg/config"
	"dinehub/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type shutdowner interface {
	Start() error
	Shutdown(ctx context.Context) error
}

func main() {
	mode := flag.String("mode", "", "service to run: order-service | kitchen-service | tracking-service | notification-subscriber")
	port := flag.Int("port", 0, "HTTP port (defaults per service)")
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	if *mode == "" {
		printUsage()
		os.Exit(1)
	}

	cfg := loadConfig(*configPath)
	log := logger.NewLogger(*mode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch *mode {
	case "order-service":
		err = runServer(ctx, log, orderserver.NewServer(defaultPort(*port, 3000), cfg, log))
	case "kitchen-service":
		err = runServer(ctx, log, kitchenserver.NewServer(defaultPort(*port, 3001), cfg, log))
	case "tracking-service":
		err = runServer(ctx, log, trackingserver.NewServer(defaultPort(*port, 3002), cfg, log))
	case "notification-subscriber":
		err = runSubscriber(ctx, log, cfg)
	default:
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		log.Error("shutdown", "service_failed", "Service exited with error", err)
		os.Exit(1)
	}
	log.Info("shutdown", "service_stopped", "Service exited")
}

func runServer(ctx context.Context, log *logger.Logger, srv shutdowner) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown", "graceful_shutdown_started", "Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func runSubscriber(ctx context.Context, log *logger.Logger, cfg *config.Config) error {
	sub := subscriber.NewNotificationSubscriber(cfg, log)
	defer sub.Stop()
	return sub.Start(ctx)
}

func loadConfig(path string) *config.Config {
	if _, err := os.Stat(path); err == nil {
		cfg, err := config.LoadConfig(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config %s: %v\n", path, err)
			os.Exit(1)
		}
		return cfg
	}
	return config.LoadEnv()
}

func defaultPort(port, fallback int) int {
	if port > 0 {
		return port
	}
	return fallback
}

func printUsage() {
	fmt.Println("Usage:")
	flag.PrintDefaults()
	fmt.Println("\nExample:")
	fmt.Println("  ./dinehub --mode=order-service --port=3000")
}
