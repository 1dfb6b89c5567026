package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Circuit breaker states
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures    = 5
	openTimeout    = 30 * time.Second
	publishTimeout = 5 * time.Second
	maxBackoff     = 30 * time.Second
	requeueDelay   = 1 * time.Second
)

// ErrCircuitOpen is returned by publishes while the broker is considered down.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Handler processes decoded messages. A returned error marked permanent with
// Permanent drops the message; any other error requeues it.
type Handler interface {
	HandleTransactionSync(ctx context.Context, msg *TransactionSyncMessage) error
	HandleBudgetAlert(ctx context.Context, msg *BudgetAlertMessage) error
}

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err so the consumer does not requeue the message.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

func isPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

type Client struct {
	url          string
	exchangeName string
	queueName    string

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	state        int32
	failureCount int64
	lastFailure  time.Time

	// Consumer side, touched only by the Consume goroutine.
	requeueDelay time.Duration
	retryStreak  int
}

// NewClient dials the broker and declares the exchange and queue.
func NewClient(url, exchangeName, queueName string) (*Client, error) {
	c := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		requeueDelay: requeueDelay,
	}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

// connect (re)establishes the connection. Callers must not hold c.mu.
func (c *Client) connect() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := declare(channel, c.exchangeName, c.queueName); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}

	c.mu.Lock()
	c.conn, c.channel = conn, channel
	c.mu.Unlock()
	return nil
}

func declare(ch *amqp091.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	// Routing key equals the queue name on the direct exchange.
	if err := ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

func (c *Client) currentChannel() *amqp091.Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel == nil || c.channel.IsClosed() {
		return nil
	}
	return c.channel
}

func (c *Client) dropConnection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		_ = c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

// PublishTransactionSync announces that ledger entry id needs mirroring.
func (c *Client) PublishTransactionSync(ctx context.Context, id int64) error {
	env, err := NewTransactionSyncMessage(id)
	if err != nil {
		return err
	}
	return c.publish(ctx, env, "transaction_id", id)
}

// PublishBudgetAlert queues a budget notification for the phone number to.
func (c *Client) PublishBudgetAlert(ctx context.Context, to, body string) error {
	env, err := NewBudgetAlertMessage(to, body)
	if err != nil {
		return err
	}
	return c.publish(ctx, env)
}

func (c *Client) publish(ctx context.Context, env *Envelope, logArgs ...any) error {
	if c.isCircuitOpen() {
		return fmt.Errorf("publish %s: %w", env.Type, ErrCircuitOpen)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := env.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ch := c.currentChannel()
	if ch == nil {
		if err := c.connect(); err != nil {
			c.recordFailure()
			return fmt.Errorf("reconnect: %w", err)
		}
		ch = c.currentChannel()
		if ch == nil {
			c.recordFailure()
			return fmt.Errorf("publish %s: channel unavailable", env.Type)
		}
	}

	pctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(pctx, c.exchangeName, c.queueName, false, false,
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    env.Timestamp,
			Type:         string(env.Type),
			Body:         body,
		})
	if err != nil {
		if isConnectionError(err) {
			c.dropConnection()
		}
		c.recordFailure()
		return fmt.Errorf("publish message: %w", err)
	}
	c.recordSuccess()

	slog.InfoContext(ctx, "Published message",
		append([]any{"type", env.Type, "exchange", c.exchangeName, "queue", c.queueName}, logArgs...)...)
	return nil
}

// Consume delivers messages to h until ctx is cancelled, reconnecting with
// exponential backoff when the broker drops the channel.
func (c *Client) Consume(ctx context.Context, h Handler) error {
	for attempt := 0; ; attempt++ {
		err := c.consumeOnce(ctx, h, func() { attempt = 0 })
		if ctx.Err() != nil {
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		}

		wait := exponentialBackoff(attempt)
		slog.WarnContext(ctx, "AMQP consumer interrupted, reconnecting",
			"error", err, "attempt", attempt+1, "backoff", wait)
		c.dropConnection()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		if err := c.connect(); err != nil {
			slog.ErrorContext(ctx, "AMQP reconnect failed", "error", err)
		}
	}
}

func (c *Client) consumeOnce(ctx context.Context, h Handler, onStarted func()) error {
	ch := c.currentChannel()
	if ch == nil {
		return errors.New("channel unavailable")
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	msgs, err := ch.Consume(c.queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}
	onStarted()
	slog.InfoContext(ctx, "Started consuming messages", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}
			c.dispatch(ctx, h, delivery)
		}
	}
}

func (c *Client) dispatch(ctx context.Context, h Handler, d amqp091.Delivery) {
	err := Dispatch(ctx, h, d.Body)
	switch {
	case err == nil:
		c.retryStreak = 0
		_ = d.Ack(false)
	case isPermanent(err):
		c.retryStreak = 0
		slog.ErrorContext(ctx, "Dropping message", "error", err)
		_ = d.Nack(false, false)
	default:
		// With prefetch 1 the held message pauses the queue, so a failing
		// downstream is retried at a growing interval instead of in a loop.
		wait := c.requeueWait()
		c.retryStreak++
		slog.ErrorContext(ctx, "Failed to handle message, requeueing",
			"error", err, "delay", wait, "streak", c.retryStreak)
		select {
		case <-ctx.Done():
		case <-time.After(wait):
		}
		_ = d.Nack(false, true)
	}
}

// requeueWait doubles requeueDelay for each consecutive retryable failure,
// capped at maxBackoff.
func (c *Client) requeueWait() time.Duration {
	d := c.requeueDelay << min(c.retryStreak, 10)
	if d > maxBackoff {
		d = maxBackoff
	}
	return d
}

// Dispatch decodes body and calls the matching handler method. Undecodable
// and unknown messages yield a permanent error.
func Dispatch(ctx context.Context, h Handler, body []byte) error {
	env, err := EnvelopeFromJSON(body)
	if err != nil {
		return Permanent(fmt.Errorf("unmarshal message: %w", err))
	}

	switch env.Type {
	case TypeTransactionSync:
		msg, err := env.TransactionSync()
		if err != nil {
			return Permanent(err)
		}
		return h.HandleTransactionSync(ctx, msg)
	case TypeBudgetAlert:
		msg, err := env.BudgetAlert()
		if err != nil {
			return Permanent(err)
		}
		return h.HandleBudgetAlert(ctx, msg)
	}
	return Permanent(fmt.Errorf("unknown message type %q", env.Type))
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.state) != StateOpen {
		return false
	}
	c.mu.Lock()
	last := c.lastFailure
	c.mu.Unlock()
	if time.Since(last) > openTimeout {
		atomic.CompareAndSwapInt32(&c.state, StateOpen, StateHalfOpen)
		return false
	}
	return true
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	c.mu.Lock()
	c.lastFailure = time.Now()
	c.mu.Unlock()
	if atomic.AddInt64(&c.failureCount, 1) >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

// exponentialBackoff returns 1s, 2s, 4s... capped at maxBackoff.
func exponentialBackoff(attempt int) time.Duration {
	if attempt > 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection refused", "connection closed", "unexpected eof", "broken pipe", "use of closed network connection", "channel/connection is not open"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		_ = c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}
