// Package queue_publisher publishes session audit events to RabbitMQ.
// Failures are logged and never reach the session store: the terminal
// keeps working when the broker is down.
package queue_publisher

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/iliyamo/pos-backoffice/internal/queue"
	"github.com/iliyamo/pos-backoffice/internal/session"
)

// PublishFunc sends one event.  Publish is the broker implementation;
// tests substitute their own.
type PublishFunc func(ctx context.Context, ev q.SessionEvent) error

// Publisher turns session transitions into events and sends them from its
// own goroutine, so store writers never wait on the broker.
type Publisher struct {
	publish  PublishFunc
	terminal string
	logger   echo.Logger
	events   chan q.SessionEvent
	now      func() time.Time
	wg       sync.WaitGroup
}

// New returns a publisher buffering up to size events.
func New(publish PublishFunc, terminal string, size int, logger echo.Logger) *Publisher {
	if logger == nil {
		logger = log.New("audit")
	}
	if size < 1 {
		size = 64
	}
	return &Publisher{
		publish:  publish,
		terminal: terminal,
		logger:   logger,
		events:   make(chan q.SessionEvent, size),
		now:      time.Now,
	}
}

// Attach subscribes to store.  Transitions are judged against the
// snapshot taken at attach time, so attach after Rehydrate to keep a
// restored session from being recorded as a login.
func (p *Publisher) Attach(store *session.Store) (detach func()) {
	var mu sync.Mutex
	prev := store.Snapshot()
	return store.Subscribe(func(next session.Session) {
		mu.Lock()
		ev, ok := q.Derive(prev, next, p.now())
		prev = next
		mu.Unlock()
		if !ok {
			return
		}
		ev.Terminal = p.terminal
		select {
		case p.events <- ev:
		default:
			p.logger.Warnf("audit: buffer full, dropping %s event %s", ev.Kind, ev.ID)
		}
	})
}

// Start sends buffered events from a new goroutine until ctx ends, then
// drains what is left with a short deadline.
func (p *Publisher) Start(ctx context.Context) {
	p.wg.Add(1)
	go p.run(ctx)
}

func (p *Publisher) run(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case ev := <-p.events:
			p.send(ctx, ev)
		case <-ctx.Done():
			drain, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			for {
				select {
				case ev := <-p.events:
					p.send(drain, ev)
				default:
					return
				}
			}
		}
	}
}

// Wait blocks until the goroutine started by Start has returned.
func (p *Publisher) Wait() { p.wg.Wait() }

func (p *Publisher) send(ctx context.Context, ev q.SessionEvent) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.publish(ctx, ev); err != nil {
		p.logger.Warnf("audit: publish %s event %s: %v", ev.Kind, ev.ID, err)
	}
}

// Broker returns a PublishFunc that dials url for every event.  Session
// events are rare, so no connection is held open between them.
func Broker(url string) PublishFunc {
	return func(ctx context.Context, ev q.SessionEvent) error {
		return Publish(ctx, url, ev)
	}
}

// Publish sends ev to the durable session queue as a persistent message.
func Publish(ctx context.Context, url string, ev q.SessionEvent) error {
	conn, err := amqp.Dial(url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		q.QueueName, // name
		true,        // durable
		false,       // autoDelete
		false,       // exclusive
		false,       // noWait
		nil,         // args
	); err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx,
		"",          // default exchange
		q.QueueName, // routing key = queue name
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    ev.ID.String(),
			Timestamp:    ev.At,
			Body:         body,
		},
	)
}
