package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"go-restaurant-pos/models"
)

// KitchenExchange is the fanout exchange kitchen events are published to.
const KitchenExchange = "kitchen_events_fanout"

const (
	dialAttempts   = 5
	publishTimeout = 10 * time.Second
)

// Publisher sends kitchen events to RabbitMQ. It redials once when it finds
// its connection closed.
type Publisher struct {
	url  string
	log  logrus.FieldLogger
	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(url string, log logrus.FieldLogger) (*Publisher, error) {
	p := &Publisher{url: url, log: log}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) connect() error {
	var err error
	for i := 0; i < dialAttempts; i++ {
		if err = p.dial(); err == nil {
			return nil
		}
		if i < dialAttempts-1 {
			wait := time.Duration(i+1) * 2 * time.Second
			p.log.WithError(err).WithField("action", "rabbitmq_connect").Warnf("rabbitmq unavailable, retrying in %v", wait)
			time.Sleep(wait)
		}
	}
	return fmt.Errorf("connect to rabbitmq after %d attempts: %w", dialAttempts, err)
}

func (p *Publisher) dial() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}
	err = ch.ExchangeDeclare(
		KitchenExchange,
		"fanout",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("declare %s: %w", KitchenExchange, err)
	}
	p.conn, p.ch = conn, ch
	return nil
}

// Notify publishes n as a transient JSON message.
func (p *Publisher) Notify(ctx context.Context, n models.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.conn.IsClosed() {
		p.closeLocked()
		if err := p.dial(); err != nil {
			return fmt.Errorf("reconnect to rabbitmq: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	err = p.ch.PublishWithContext(ctx, KitchenExchange, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Transient,
		Timestamp:    n.SentAt,
		Type:         n.Event,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", n.Event, err)
	}
	p.log.WithFields(logrus.Fields{"action": "amqp_publish", "event": n.Event, "order_id": n.OrderID}).Debug("kitchen event published")
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeLocked()
}

func (p *Publisher) closeLocked() error {
	if p.ch != nil {
		p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		err := p.conn.Close()
		p.conn = nil
		if err != nil && err != amqp.ErrClosed {
			return err
		}
	}
	return nil
}
