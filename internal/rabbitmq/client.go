package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/BlogApp/internal/config"
	"github.com/GoArmGo/BlogApp/internal/messaging/payloads"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// Client представляет собой клиент RabbitMQ.
// Реализует ports.PostEventPublisher и ports.PostEventConsumer.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	logger  *slog.Logger
}

// NewClient подключается к брокеру и объявляет durable очередь событий
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	client := &Client{
		logger: logger.With("component", "rabbitmq"),
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	client.conn = conn

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	client.channel = ch

	// идемпотентно: существующая очередь не пересоздаётся
	q, err := ch.QueueDeclare(
		cfg.RabbitMQ.RabbitMQQueueName, // name
		true,                           // durable
		false,                          // delete when unused
		false,                          // exclusive
		false,                          // no-wait
		nil,                            // arguments
	)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}
	client.queue = q

	client.logger.Info("connected to RabbitMQ", "queue", q.Name, "messages", q.Messages)
	return client, nil
}

// Close закрывает канал и соединение
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close RabbitMQ channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close RabbitMQ connection: %w", err))
		}
	}
	c.logger.Info("RabbitMQ connection closed")
	return errors.Join(errs...)
}

// newPublishing сериализует событие в persistent-сообщение
func newPublishing(event payloads.PostEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal post event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         string(event.Type),
		MessageId:    event.PostID.String(),
		Timestamp:    event.OccurredAt,
		Body:         body,
	}, nil
}

// PublishPostEvent публикует событие о посте в очередь
func (c *Client) PublishPostEvent(ctx context.Context, event payloads.PostEvent) error {
	msg, err := newPublishing(event)
	if err != nil {
		return err
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.channel.PublishWithContext(
		publishCtx,
		"",           // exchange
		c.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		msg,
	)
	if err != nil {
		return fmt.Errorf("failed to publish a message: %w", err)
	}

	c.logger.Debug("post event published", "type", event.Type, "post_id", event.PostID)
	return nil
}

// acknowledger - часть amqp.Delivery, нужная для подтверждения
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// StartConsumingPostEvents регистрирует потребителя с ручным подтверждением
// и обрабатывает сообщения в отдельной горутине до отмены ctx
func (c *Client) StartConsumingPostEvents(ctx context.Context, handler func(context.Context, payloads.PostEvent) error) error {
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := c.channel.Consume(
		c.queue.Name, // queue
		"",           // consumer
		false,        // auto-ack
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	c.logger.Info("consumer registered, waiting for messages", "queue", c.queue.Name)

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					c.logger.Info("RabbitMQ channel closed, stopping consumer")
					return
				}
				c.handleDelivery(ctx, msg.Body, msg, handler)
			case <-ctx.Done():
				c.logger.Info("context cancelled, stopping RabbitMQ consumer")
				return
			}
		}
	}()

	return nil
}

// handleDelivery: битое сообщение отбрасывается без возврата в очередь,
// ошибка обработчика возвращает сообщение в очередь
func (c *Client) handleDelivery(ctx context.Context, body []byte, ack acknowledger, handler func(context.Context, payloads.PostEvent) error) {
	event, err := payloads.DecodePostEvent(body)
	if err != nil {
		c.logger.Warn("dropping malformed message", "error", err, "body", string(body))
		if err := ack.Nack(false, false); err != nil {
			c.logger.Error("error NACKing malformed message", "error", err)
		}
		return
	}

	if err := handler(ctx, event); err != nil {
		c.logger.Error("error processing message, requeueing",
			"type", event.Type,
			"post_id", event.PostID,
			"error", err,
		)
		if err := ack.Nack(false, true); err != nil {
			c.logger.Error("error NACKing message after processing failure", "error", err)
		}
		return
	}

	if err := ack.Ack(false); err != nil {
		c.logger.Error("error ACKing message", "error", err)
		return
	}
	c.logger.Debug("message processed", "type", event.Type, "post_id", event.PostID)
}
