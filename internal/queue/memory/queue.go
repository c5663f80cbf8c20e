// Package memory provides an in-process implementation of the queue
// interfaces, used in memory storage mode and in tests.
package memory

import (
	"context"
	"errors"
	"sync"

	"netpulse/internal/queue"
)

// ErrQueueClosed is returned when publishing to a closed queue.
var ErrQueueClosed = errors.New("queue is closed")

// Queue implements both Producer and Consumer over a buffered channel.
// It is safe for concurrent use.
type Queue struct {
	messages chan *queue.Message
	closed   bool
	mu       sync.RWMutex
	wg       sync.WaitGroup
}

// NewQueue creates an in-process queue with the given buffer size. Publish
// blocks when the buffer is full.
func NewQueue(bufferSize int) *Queue {
	return &Queue{
		messages: make(chan *queue.Message, bufferSize),
	}
}

// Publish places a message on the queue, blocking until there is space or
// the context is canceled. The read lock is held across the send so Close
// cannot close the channel mid-publish.
func (q *Queue) Publish(ctx context.Context, msg *queue.Message) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.messages <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start consumes messages and calls the handler for each one. Handler
// errors are swallowed; the message is dropped.
func (q *Queue) Start(ctx context.Context, handler queue.MessageHandler) error {
	q.wg.Add(1)
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-q.messages:
			if !ok {
				return nil
			}
			if err := handler(ctx, msg); err != nil {
				continue
			}
		}
	}
}

// Close shuts the queue down and waits for consumers to drain.
func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	q.closed = true
	close(q.messages)
	q.wg.Wait()
	return nil
}

// Len reports the number of buffered messages. Used by tests.
func (q *Queue) Len() int {
	return len(q.messages)
}
