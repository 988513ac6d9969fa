package event

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type subscription struct {
	queue   string
	handler Handler
}

// LocalBus is an in-process Bus backed by a bounded queue and a fixed pool of
// workers. Publish never blocks: a full queue returns ErrQueueFull.
type LocalBus struct {
	log   *logrus.Logger
	queue chan *Message

	mu     sync.RWMutex
	subs   map[string][]subscription
	closed bool

	wg sync.WaitGroup
}

func NewLocalBus(workers, queueSize int, log *logrus.Logger) *LocalBus {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}

	b := &LocalBus{
		log:   log,
		queue: make(chan *Message, queueSize),
		subs:  make(map[string][]subscription),
	}

	b.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go b.worker()
	}
	return b
}

func (b *LocalBus) Publish(ctx context.Context, subject string, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBusClosed
	}

	select {
	case b.queue <- &Message{Subject: subject, Data: payload, Timestamp: time.Now()}:
		return nil
	default:
		return ErrQueueFull
	}
}

// QueueSubscribe registers handler under queue. Within one queue group only the
// first registered handler receives messages, mirroring a single consumer.
func (b *LocalBus) QueueSubscribe(subject, queue string, handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}
	for _, s := range b.subs[subject] {
		if s.queue == queue {
			return nil
		}
	}
	b.subs[subject] = append(b.subs[subject], subscription{queue: queue, handler: handler})
	return nil
}

func (b *LocalBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.queue)
	b.mu.Unlock()

	b.wg.Wait()
	return nil
}

func (b *LocalBus) worker() {
	defer b.wg.Done()
	for msg := range b.queue {
		b.dispatch(msg)
	}
}

func (b *LocalBus) dispatch(msg *Message) {
	b.mu.RLock()
	subs := append([]subscription(nil), b.subs[msg.Subject]...)
	b.mu.RUnlock()

	if len(subs) == 0 {
		b.log.Debugf("No subscriber for event %s", msg.Subject)
		return
	}

	for _, s := range subs {
		b.invoke(s, msg)
	}
}

func (b *LocalBus) invoke(s subscription, msg *Message) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Errorf("Event handler for %s (queue %s) panicked: %v", msg.Subject, s.queue, r)
		}
	}()
	s.handler(context.Background(), msg)
}
