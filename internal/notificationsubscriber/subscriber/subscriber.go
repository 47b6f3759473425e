package subscriber

import (
	"context"
	"encoding/json"
	"fmt"

	"dinehub/internal/notificationsubscriber/notifier"
	"dinehub/pkg/config"
	"dinehub/pkg/logger"
	"dinehub/pkg/models"
	"dinehub/pkg/rabbitmq"
)

type NotificationSubscriber struct {
	config   *config.Config
	logger   *logger.Logger
	rabbitMQ *rabbitmq.RabbitMQ
	notifier *notifier.Notifier
}

func NewNotificationSubscriber(cfg *config.Config, log *logger.Logger) *NotificationSubscriber {
	return &NotificationSubscriber{
		config:   cfg,
		logger:   log,
		notifier: notifier.NewNotifier(log),
	}
}

func (s *NotificationSubscriber) Start(ctx context.Context) error {
	rmq, err := rabbitmq.ConnectRabbitMQ(&s.config.RabbitMQ, s.logger)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	s.rabbitMQ = rmq

	// Exclusive server-named queue so every subscriber instance sees
	// every status update.
	q, err := rmq.Channel.QueueDeclare(
		"",    // name (let server generate)
		false, // durable
		false, // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	err = rmq.Channel.QueueBind(
		q.Name,                         // queue name
		"",                             // routing key
		rabbitmq.NotificationsExchange, // exchange
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	messages, err := rmq.Channel.Consume(
		q.Name, // queue
		"",     // consumer
		true,   // auto-ack
		false,  // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming messages: %w", err)
	}

	s.logger.Info("startup", "subscriber_started", "Notification subscriber started successfully")

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			if err := s.processMessage(msg.Body); err != nil {
				s.logger.Error("message_processing", "process_failed", "Failed to process message", err)
			}
		}
	}
}

func (s *NotificationSubscriber) processMessage(body []byte) error {
	var statusUpdate models.StatusUpdateMessage
	if err := json.Unmarshal(body, &statusUpdate); err != nil {
		return fmt.Errorf("failed to parse status update: %w", err)
	}

	s.notifier.DisplayNotification(&statusUpdate)

	s.logger.Debug("message_processing", "notification_displayed",
		fmt.Sprintf("Displayed notification for order %s", statusUpdate.OrderNumber))
	return nil
}

func (s *NotificationSubscriber) Stop() {
	if s.rabbitMQ != nil {
		s.rabbitMQ.Close()
	}
}
