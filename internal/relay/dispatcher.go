package relay

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"glowcandles/internal/metrics"
)

// Sink is an external delivery target for relay events.
type Sink interface {
	Name() string
	Send(ctx context.Context, ev Event) error
	Close() error
}

// Dispatcher implements Publisher. The hub broadcast happens inline; sink
// delivery is queued and drained by one background worker so a slow broker
// never holds up a request.
type Dispatcher struct {
	hub         *Hub
	sinks       []Sink
	log         *zap.Logger
	sendTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan Event
	done   chan struct{}
}

func NewDispatcher(hub *Hub, log *zap.Logger, buffer int, sinks ...Sink) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	if buffer < 1 {
		buffer = 256
	}
	d := &Dispatcher{
		hub:         hub,
		sinks:       sinks,
		log:         log,
		sendTimeout: 5 * time.Second,
		queue:       make(chan Event, buffer),
		done:        make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) Publish(_ context.Context, ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	if d.hub != nil {
		d.hub.Broadcast(ev)
	}
	if len(d.sinks) == 0 {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	select {
	case d.queue <- ev:
	default:
		metrics.RecordRelay("queue", false)
		d.log.Warn("relay queue full, event dropped",
			zap.String("kind", string(ev.Kind)), zap.String("order_number", ev.OrderNumber))
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for ev := range d.queue {
		for _, s := range d.sinks {
			d.deliver(s, ev)
		}
	}
}

func (d *Dispatcher) deliver(s Sink, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordRelay(s.Name(), false)
			d.log.Error("relay sink panicked", zap.String("sink", s.Name()), zap.Any("panic", r))
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
	defer cancel()
	if err := s.Send(ctx, ev); err != nil {
		metrics.RecordRelay(s.Name(), false)
		d.log.Error("relay delivery failed",
			zap.String("sink", s.Name()), zap.String("kind", string(ev.Kind)),
			zap.String("order_number", ev.OrderNumber), zap.Error(err))
		return
	}
	metrics.RecordRelay(s.Name(), true)
}

// Close stops accepting events, drains the queue and closes the sinks.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	select {
	case <-d.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	for _, s := range d.sinks {
		if err := s.Close(); err != nil {
			d.log.Warn("relay sink close", zap.String("sink", s.Name()), zap.Error(err))
		}
	}
	return nil
}
