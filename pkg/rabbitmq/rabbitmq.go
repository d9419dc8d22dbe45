package rabbitmq

import (
	"fmt"
	"sync"
	"time"

	"inventory/internal/logger"

	amqp "github.com/streadway/amqp"
)

const (
	// ProductEventsQueue receives every product change event.
	ProductEventsQueue = "product_events"
	productEventsKey   = "product.#"
)

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	log      *logger.Logger
	mu       sync.Mutex // amqp.Channel is not safe for concurrent publishes
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL      string
	Exchange string
}

// NewClient connects to RabbitMQ, declares the topic exchange and binds the
// product events queue to it.
func NewClient(cfg Config, log *logger.Logger) (*Client, error) {
	if cfg.Exchange == "" {
		return nil, fmt.Errorf("rabbitmq: exchange name is required")
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(ch, cfg.Exchange); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Info("RabbitMQ client connected", "exchange", cfg.Exchange, "queue", ProductEventsQueue)

	return &Client{
		conn:     conn,
		channel:  ch,
		exchange: cfg.Exchange,
		log:      log,
	}, nil
}

func declareTopology(ch *amqp.Channel, exchange string) error {
	err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	_, err = ch.QueueDeclare(
		ProductEventsQueue, // name
		true,               // durable
		false,              // delete when unused
		false,              // exclusive
		false,              // no-wait
		nil,                // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s: %w", ProductEventsQueue, err)
	}

	if err := ch.QueueBind(ProductEventsQueue, productEventsKey, exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind %s to %s: %w", ProductEventsQueue, exchange, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// Publish sends a persistent JSON message to exchange with routingKey.
func (c *Client) Publish(exchange, routingKey string, body []byte) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.channel.Publish(
		exchange,   // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.log.Debug("event published", "exchange", exchange, "routingKey", routingKey)
	return nil
}

// ConsumeProductEvents delivers messages from the product events queue to
// handler in a background goroutine. A nil handler result acks the message;
// an error nacks it without requeue.
func (c *Client) ConsumeProductEvents(handler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		ProductEventsQueue, // queue
		"",                 // consumer tag
		false,              // auto-ack
		false,              // exclusive
		false,              // no-local
		false,              // no-wait
		nil,                // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.log.Info("waiting for product events", "queue", ProductEventsQueue)

	go func() {
		for msg := range msgs {
			if err := handler(msg); err != nil {
				c.log.Warn("failed to process message", "deliveryTag", msg.DeliveryTag, "routingKey", msg.RoutingKey, "error", err)
				if nackErr := msg.Nack(false, false); nackErr != nil {
					c.log.Error("failed to nack message", "deliveryTag", msg.DeliveryTag, "error", nackErr)
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				c.log.Error("failed to ack message", "deliveryTag", msg.DeliveryTag, "error", ackErr)
			}
		}
		c.log.Info("product event consumer stopped")
	}()

	return nil
}
