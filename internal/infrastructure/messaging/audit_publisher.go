package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Mulandii/Clinic-cms/domain"
)

// channel is the part of *amqp.Channel the publisher needs
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type dialFunc func(ctx context.Context, url string) (channel, io.Closer, error)

// retryAfter is how long a failed dial keeps the broker marked down
const retryAfter = 5 * time.Second

// AuditPublisher implements domain.AuditPublisher on a durable RabbitMQ queue.
// The connection is opened lazily and dropped after any publish failure so
// the next entry redials. Every step is bounded by the caller's context, and
// after a failed dial publishes fail fast until retryAfter has passed.
type AuditPublisher struct {
	url   string
	queue string
	dial  dialFunc
	now   func() time.Time

	// lock is a one-slot semaphore so waiters can give up on ctx
	lock      chan struct{}
	ch        channel
	conn      io.Closer
	downUntil time.Time
}

// NewAuditPublisher creates a publisher for queue on the broker at url
func NewAuditPublisher(url, queue string) *AuditPublisher {
	return &AuditPublisher{
		url:   url,
		queue: queue,
		dial:  dialAMQP,
		now:   time.Now,
		lock:  make(chan struct{}, 1),
	}
}

func dialAMQP(ctx context.Context, url string) (channel, io.Closer, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Dial: func(network, addr string) (net.Conn, error) {
			var d net.Dialer
			c, err := d.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			// bounds the handshake; the client clears it once the connection is open
			if deadline, ok := ctx.Deadline(); ok {
				_ = c.SetDeadline(deadline)
			}
			return c, nil
		},
	})
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return ch, conn, nil
}

func (p *AuditPublisher) acquire(ctx context.Context) error {
	select {
	case p.lock <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("rabbitmq publisher busy: %w", ctx.Err())
	}
}

func (p *AuditPublisher) release() {
	<-p.lock
}

// Publish implements domain.AuditPublisher
func (p *AuditPublisher) Publish(ctx context.Context, entry *domain.AuditEntry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	if err := p.acquire(ctx); err != nil {
		return err
	}
	defer p.release()

	if p.ch == nil {
		if err := p.connectLocked(ctx); err != nil {
			return err
		}
	}

	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    entry.ID,
		Timestamp:    time.Now().UTC(),
		Type:         string(entry.Action),
		Body:         body,
	})
	if err != nil {
		p.closeLocked()
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

// Close releases the broker connection
func (p *AuditPublisher) Close() error {
	_ = p.acquire(context.Background())
	defer p.release()
	p.closeLocked()
	return nil
}

func (p *AuditPublisher) connectLocked(ctx context.Context) error {
	if p.now().Before(p.downUntil) {
		return fmt.Errorf("rabbitmq unavailable until %s", p.downUntil.Format(time.RFC3339))
	}

	ch, conn, err := p.dialContext(ctx)
	if err != nil {
		p.downUntil = p.now().Add(retryAfter)
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}
	p.ch, p.conn = ch, conn
	p.downUntil = time.Time{}
	return nil
}

// dialContext returns when ctx ends even if the dialer does not; a
// connection that completes afterwards is closed.
func (p *AuditPublisher) dialContext(ctx context.Context) (channel, io.Closer, error) {
	type result struct {
		ch   channel
		conn io.Closer
		err  error
	}
	done := make(chan result, 1)
	go func() {
		ch, conn, err := p.dial(ctx, p.url)
		done <- result{ch: ch, conn: conn, err: err}
	}()

	select {
	case r := <-done:
		return r.ch, r.conn, r.err
	case <-ctx.Done():
		go func() {
			if r := <-done; r.err == nil {
				_ = r.ch.Close()
				_ = r.conn.Close()
			}
		}()
		return nil, nil, ctx.Err()
	}
}

func (p *AuditPublisher) closeLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}
