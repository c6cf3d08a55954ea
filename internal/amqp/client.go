package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"
)

const (
	publishTimeout     = 5 * time.Second
	maxPublishRetries  = 4
	maxConsecutiveFail = 5
	breakerOpenTimeout = 30 * time.Second
)

// ErrCircuitOpen is returned when the broker has failed too often and
// publishing is suspended for a while.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

type Client struct {
	mu      sync.Mutex
	url     string
	conn    *amqp091.Connection
	channel *amqp091.Channel
	pub     publisher

	exchangeName string
	queueName    string

	breaker         *gobreaker.CircuitBreaker
	initialInterval time.Duration
	maxRetries      uint64
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	client := newClient(url, exchangeName, queueName, nil)
	if err := client.connect(); err != nil {
		return nil, err
	}
	return client, nil
}

func newClient(url, exchangeName, queueName string, pub publisher) *Client {
	return &Client{
		url:             url,
		pub:             pub,
		exchangeName:    exchangeName,
		queueName:       queueName,
		breaker:         newBreaker(exchangeName),
		initialInterval: time.Second,
		maxRetries:      maxPublishRetries,
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "amqp:" + name,
		Timeout: breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxConsecutiveFail
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("AMQP circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// retryPolicy doubles the wait from initial up to 30 seconds.
func retryPolicy(initial time.Duration) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 2 * time.Minute
	b.Reset()
	return b
}

func (c *Client) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if err := setup(channel, c.exchangeName, c.queueName); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}

	c.conn = conn
	c.channel = channel
	c.pub = channel
	return nil
}

func setup(ch *amqp091.Channel, exchangeName, queueName string) error {
	if err := ch.ExchangeDeclare(exchangeName, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	// routing key is the queue name
	if err := ch.QueueBind(queueName, queueName, exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

func (c *Client) reconnect(ctx context.Context) {
	if c.url == "" {
		return
	}
	c.closeConn()
	if err := c.connect(); err != nil {
		slog.WarnContext(ctx, "AMQP reconnect failed", "error", err)
		return
	}
	slog.InfoContext(ctx, "AMQP connection re-established", "exchange", c.exchangeName)
}

// PublishMonthUpdated publishes the notification as a persistent message.
// Failed attempts are retried with exponential backoff; a broken connection
// is re-dialled between attempts.
func (c *Client) PublishMonthUpdated(ctx context.Context, msg *MonthUpdatedMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	attempt := func() error {
		_, err := c.breaker.Execute(func() (interface{}, error) {
			return nil, c.publishOnce(ctx, body)
		})
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return backoff.Permanent(fmt.Errorf("%w: %v", ErrCircuitOpen, err))
		case err != nil && isConnectionError(err):
			c.reconnect(ctx)
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(retryPolicy(c.initialInterval), c.maxRetries), ctx)
	if err := backoff.Retry(attempt, policy); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("publish message: %w", err)
	}

	slog.InfoContext(ctx, "Published month update message",
		"user", msg.User,
		"month_id", msg.MonthID,
		"archive_key", msg.ArchiveKey,
		"exchange", c.exchangeName,
		"queue", c.queueName)
	return nil
}

func (c *Client) publishOnce(ctx context.Context, body []byte) error {
	c.mu.Lock()
	pub := c.pub
	c.mu.Unlock()
	if pub == nil {
		return amqp091.ErrClosed
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return pub.PublishWithContext(ctx,
		c.exchangeName,
		c.queueName,
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

// MonthUpdateHandler processes one decoded notification.
type MonthUpdateHandler func(ctx context.Context, msg *MonthUpdatedMessage) error

// ConsumeMonthUpdates delivers queued notifications to handler until ctx is
// cancelled or the channel closes.
func (c *Client) ConsumeMonthUpdates(ctx context.Context, handler MonthUpdateHandler) error {
	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()
	if channel == nil {
		return amqp091.ErrClosed
	}

	if err := channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set prefetch: %w", err)
	}
	msgs, err := channel.Consume(
		c.queueName,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming month update messages", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			handleDelivery(ctx, delivery, handler)
		}
	}
}

// handleDelivery acks processed messages. Undecodable bodies are dropped;
// handler failures are requeued once and dropped when they fail again.
func handleDelivery(ctx context.Context, delivery amqp091.Delivery, handler MonthUpdateHandler) {
	msg, err := MonthUpdatedMessageFromJSON(delivery.Body)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to unmarshal message", "error", err)
		delivery.Nack(false, false)
		return
	}

	if err := handler(ctx, msg); err != nil {
		requeue := !delivery.Redelivered
		slog.ErrorContext(ctx, "Failed to handle message",
			"error", err,
			"month_id", msg.MonthID,
			"archive_key", msg.ArchiveKey,
			"requeue", requeue)
		delivery.Nack(false, requeue)
		return
	}

	delivery.Ack(false)
	slog.InfoContext(ctx, "Processed month update message",
		"month_id", msg.MonthID,
		"archive_key", msg.ArchiveKey)
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{
		"connection refused",
		"connection reset",
		"connection closed",
		"channel/connection is not open",
		"unexpected eof",
		"broken pipe",
		"use of closed network connection",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (c *Client) closeConn() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	c.pub = nil
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

func (c *Client) Close() error {
	return c.closeConn()
}
