package rabbitmq

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"catalogo/internal/models"

	"github.com/rs/zerolog"
	amqp "github.com/streadway/amqp"
)

// DefaultQueue is the queue product events are published to when Config.Queue is empty.
const DefaultQueue = "product_events"

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	log     zerolog.Logger
	// amqp channels are not safe for concurrent publishing.
	mu sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// NewClient connects to RabbitMQ, opens a channel and declares the event queue.
func NewClient(cfg Config, log zerolog.Logger) (*Client, error) {
	queue := cfg.Queue
	if queue == "" {
		queue = DefaultQueue
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

	if _, err = declareQueue(ch, queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Info().Str("queue", queue).Msg("RabbitMQ client connected")

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   queue,
		log:     log,
	}, nil
}

func declareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("failed to declare %s: %w", name, err)
	}
	return q, nil
}

// Close closes the RabbitMQ channel and connection.
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
		return fmt.Errorf("errors during RabbitMQ client close: %v", errs)
	}
	return nil
}

// PublishProductEvent publishes event as a persistent JSON message.
func (c *Client) PublishProductEvent(event models.ProductEvent) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal product event: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err = c.channel.Publish(
		"",      // default exchange
		c.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         event.Type,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	c.log.Debug().Str("type", event.Type).Str("product_id", event.ProductID).Msg("product event sent")
	return nil
}

// ConsumeProductEvents starts a goroutine that decodes each delivery and passes
// it to handler. Deliveries are acked on success and requeued on handler error;
// undecodable messages are rejected without requeue.
func (c *Client) ConsumeProductEvents(handler func(models.ProductEvent) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			var event models.ProductEvent
			if err := json.Unmarshal(msg.Body, &event); err != nil {
				c.log.Error().Err(err).Uint64("tag", msg.DeliveryTag).Msg("discarding malformed product event")
				if rejectErr := msg.Reject(false); rejectErr != nil {
					c.log.Error().Err(rejectErr).Uint64("tag", msg.DeliveryTag).Msg("reject failed")
				}
				continue
			}
			if err := handler(event); err != nil {
				c.log.Error().Err(err).Uint64("tag", msg.DeliveryTag).Msg("product event handler failed")
				if nackErr := msg.Nack(false, true); nackErr != nil {
					c.log.Error().Err(nackErr).Uint64("tag", msg.DeliveryTag).Msg("nack failed")
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				c.log.Error().Err(ackErr).Uint64("tag", msg.DeliveryTag).Msg("ack failed")
			}
		}
		c.log.Info().Msg("product event consumer stopped")
	}()

	return nil
}
