package event

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestLocalBusDeliversToEachQueueGroupOnce(t *testing.T) {
	bus := NewLocalBus(2, 16, quietLogger())

	var mu sync.Mutex
	got := map[string][]string{}
	record := func(name string) Handler {
		return func(_ context.Context, msg *Message) {
			var ev ClientRegisteredEvent
			if err := msg.Decode(&ev); err != nil {
				t.Errorf("decode: %v", err)
				return
			}
			mu.Lock()
			got[name] = append(got[name], ev.Email)
			mu.Unlock()
		}
	}

	if err := bus.QueueSubscribe(ClientRegistered, "mailer", record("mailer-1")); err != nil {
		t.Fatal(err)
	}
	// second member of the same group is ignored in-process
	if err := bus.QueueSubscribe(ClientRegistered, "mailer", record("mailer-2")); err != nil {
		t.Fatal(err)
	}
	if err := bus.QueueSubscribe(ClientRegistered, "audit", record("audit")); err != nil {
		t.Fatal(err)
	}

	if err := bus.Publish(context.Background(), ClientRegistered, ClientRegisteredEvent{Email: "jane@example.com"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if len(got["mailer-1"]) != 1 || got["mailer-1"][0] != "jane@example.com" {
		t.Errorf("mailer-1 got %v", got["mailer-1"])
	}
	if len(got["mailer-2"]) != 0 {
		t.Errorf("mailer-2 should not receive, got %v", got["mailer-2"])
	}
	if len(got["audit"]) != 1 {
		t.Errorf("audit got %v", got["audit"])
	}
}

func TestLocalBusRejectsWhenFull(t *testing.T) {
	bus := NewLocalBus(1, 1, quietLogger())

	release := make(chan struct{})
	started := make(chan struct{}, 1)
	_ = bus.QueueSubscribe(OTPIssued, "q", func(context.Context, *Message) {
		started <- struct{}{}
		<-release
	})

	ctx := context.Background()
	if err := bus.Publish(ctx, OTPIssued, OTPIssuedEvent{Code: "1"}); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not start")
	}

	// worker is busy; one slot in the queue
	if err := bus.Publish(ctx, OTPIssued, OTPIssuedEvent{Code: "2"}); err != nil {
		t.Fatalf("second publish: %v", err)
	}
	if err := bus.Publish(ctx, OTPIssued, OTPIssuedEvent{Code: "3"}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}

	close(release)
	_ = bus.Close()

	if err := bus.Publish(ctx, OTPIssued, OTPIssuedEvent{}); !errors.Is(err, ErrBusClosed) {
		t.Fatalf("expected ErrBusClosed, got %v", err)
	}
}

func TestLocalBusSurvivesHandlerPanic(t *testing.T) {
	bus := NewLocalBus(1, 4, quietLogger())

	done := make(chan struct{})
	calls := 0
	_ = bus.QueueSubscribe(EnrollmentCreated, "q", func(context.Context, *Message) {
		calls++
		if calls == 1 {
			panic("boom")
		}
		close(done)
	})

	_ = bus.Publish(context.Background(), EnrollmentCreated, EnrollmentCreatedEvent{EnrollmentID: 1})
	_ = bus.Publish(context.Background(), EnrollmentCreated, EnrollmentCreatedEvent{EnrollmentID: 2})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second event was not handled after a panic")
	}
	_ = bus.Close()
}
