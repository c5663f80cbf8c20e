package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"netpulse/internal/domain"
	"netpulse/internal/queue"
	qmemory "netpulse/internal/queue/memory"
)

func testService(q queue.Producer) *Service {
	return NewService(q, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func metricEnvelope() *domain.EventEnvelope {
	return &domain.EventEnvelope{
		Kind: domain.EventKindMetric,
		Metric: &domain.MetricEvent{
			ServiceName: "radius",
			MetricType:  "cpu_usage",
			Value:       42,
			Timestamp:   time.Now().UTC(),
		},
	}
}

func TestPublish(t *testing.T) {
	ctx := context.Background()
	q := qmemory.NewQueue(4)
	defer q.Close()
	svc := testService(q)

	if err := svc.Publish(ctx, metricEnvelope()); err != nil {
		t.Fatalf("Publish error: %v", err)
	}
	if q.Len() != 1 {
		t.Fatalf("queue length = %d, want 1", q.Len())
	}

	done := make(chan *queue.Message, 1)
	consumeCtx, cancel := context.WithCancel(ctx)
	go q.Start(consumeCtx, func(ctx context.Context, msg *queue.Message) error {
		done <- msg
		cancel()
		return nil
	})

	select {
	case msg := <-done:
		if string(msg.Key) != "radius" {
			t.Errorf("message key = %q, want radius", msg.Key)
		}
		if msg.Headers["kind"] != "metric" {
			t.Errorf("kind header = %q", msg.Headers["kind"])
		}
		var env domain.EventEnvelope
		if err := json.Unmarshal(msg.Value, &env); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		if env.ReceivedAt.IsZero() {
			t.Error("ReceivedAt should be stamped before publishing")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestPublish_InvalidEnvelope(t *testing.T) {
	q := qmemory.NewQueue(4)
	defer q.Close()
	svc := testService(q)

	env := &domain.EventEnvelope{Kind: "trace"}
	if err := svc.Publish(context.Background(), env); !errors.Is(err, domain.ErrInvalidEventKind) {
		t.Errorf("Publish = %v, want ErrInvalidEventKind", err)
	}
	if q.Len() != 0 {
		t.Error("invalid envelopes must not reach the queue")
	}
}

type failingProducer struct{}

func (failingProducer) Publish(ctx context.Context, msg *queue.Message) error {
	return errors.New("broker unavailable")
}
func (failingProducer) Close() error { return nil }

func TestPublish_QueueFailure(t *testing.T) {
	svc := testService(failingProducer{})
	if err := svc.Publish(context.Background(), metricEnvelope()); !errors.Is(err, ErrPublishFailed) {
		t.Errorf("Publish = %v, want ErrPublishFailed", err)
	}
}

func TestMemoryQueue_PublishAfterClose(t *testing.T) {
	q := qmemory.NewQueue(1)
	q.Close()
	err := q.Publish(context.Background(), &queue.Message{Value: []byte("x")})
	if !errors.Is(err, qmemory.ErrQueueClosed) {
		t.Errorf("Publish after close = %v, want ErrQueueClosed", err)
	}
}
