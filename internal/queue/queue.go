package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/OFFIS-RIT/wikigraph/internal/util"
)

// ImportQueue carries ImportMessage payloads from the API to the workers.
const ImportQueue = "import_queue"

// MaxRetries is the number of redeliveries through the retry queue before a
// message is parked in the dead letter queue.
const MaxRetries = 10

const retryDelay = 10 * time.Second

// Init connects to RabbitMQ using the RABBITMQ_* variables, retrying while
// the broker starts up.
func Init(ctx context.Context) (*amqp091.Connection, error) {
	connURL := fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		util.GetEnv("RABBITMQ_USER"),
		util.GetEnv("RABBITMQ_PASSWORD"),
		util.GetEnvString("RABBITMQ_HOST", "localhost"),
		util.GetEnvString("RABBITMQ_PORT", "5672"),
	)

	conn, err := util.RetryWithContext(ctx, 5, time.Second, func(ctx context.Context) (*amqp091.Connection, error) {
		return amqp091.Dial(connURL)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return conn, nil
}

// SetupQueues declares every queue with its _dlq and _retry companions. The
// retry queue dead-letters back into the main queue after retryDelay.
func SetupQueues(ch *amqp091.Channel, queueNames []string) error {
	for _, name := range queueNames {
		if _, err := ch.QueueDeclare(
			name,
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,   // args
		); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", name, err)
		}

		dlqName := name + "_dlq"
		if _, err := ch.QueueDeclare(dlqName, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", dlqName, err)
		}

		retryName := name + "_retry"
		if _, err := ch.QueueDeclare(
			retryName,
			true,
			false,
			false,
			false,
			amqp091.Table{
				"x-message-ttl":             int32(retryDelay.Milliseconds()),
				"x-dead-letter-exchange":    "",
				"x-dead-letter-routing-key": name,
			},
		); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", retryName, err)
		}
	}

	return nil
}

// PublishFIFO publishes a persistent message to queueName on the default
// exchange.
func PublishFIFO(ctx context.Context, ch *amqp091.Channel, queueName string, data []byte) error {
	publishing := amqp091.Publishing{
		ContentType:  "application/json",
		Body:         data,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
	}

	if err := ch.PublishWithContext(ctx, "", queueName, false, false, publishing); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", queueName, err)
	}
	return nil
}

// RetryCount reads the x-retries header. AMQP tables decode integers with
// the width they were encoded with, so every integer type is accepted.
func RetryCount(headers amqp091.Table) int {
	switch v := headers["x-retries"].(type) {
	case int:
		return v
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	default:
		return 0
	}
}

// HandleProcessingError moves a failed delivery to the retry queue, or to
// the dead letter queue once MaxRetries is reached, and acks the original.
func HandleProcessingError(ctx context.Context, ch *amqp091.Channel, msg amqp091.Delivery, queueName string) error {
	retries := RetryCount(msg.Headers)
	target := queueName + "_retry"
	headers := amqp091.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	if retries >= MaxRetries {
		target = queueName + "_dlq"
	} else {
		headers["x-retries"] = int32(retries + 1)
	}

	err := ch.PublishWithContext(ctx, "", target, false, false, amqp091.Publishing{
		ContentType:  msg.ContentType,
		Body:         msg.Body,
		Headers:      headers,
		DeliveryMode: amqp091.Persistent,
	})
	if err != nil {
		if nackErr := msg.Nack(false, true); nackErr != nil {
			err = fmt.Errorf("%w (nack failed: %v)", err, nackErr)
		}
		return fmt.Errorf("failed to publish to %s: %w", target, err)
	}
	return msg.Ack(false)
}

// ChannelPublisher publishes FIFO messages on one channel.
type ChannelPublisher struct {
	ch *amqp091.Channel
}

func NewChannelPublisher(ch *amqp091.Channel) *ChannelPublisher {
	return &ChannelPublisher{ch: ch}
}

func (p *ChannelPublisher) Publish(ctx context.Context, queueName string, data []byte) error {
	return PublishFIFO(ctx, p.ch, queueName, data)
}
