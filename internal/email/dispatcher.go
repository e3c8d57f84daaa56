// Package email provides the asynchronous dispatcher for code assignment
// emails. The real mail transport sits behind the Sender interface; the
// service only guarantees that accepted messages are handed to it off the
// request path.
package email

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

// ErrQueueFull is returned when the dispatch queue cannot accept a message.
var ErrQueueFull = errors.New("email queue is full")

// Message is a single assignment email to deliver.
type Message struct {
	Recipient string
	Subject   string
	Body      string
}

// Dispatcher accepts messages for asynchronous delivery.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg Message) error
}

// Sender performs the actual delivery of a message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender is the default Sender: it records the delivery in the log and
// drops the message. Used when no mail transport is configured.
type LogSender struct{}

// Send logs the message instead of delivering it.
func (LogSender) Send(_ context.Context, msg Message) error {
	log.Info().
		Str("recipient", msg.Recipient).
		Str("subject", msg.Subject).
		Msg("assignment email delivered to log sender")
	return nil
}

// QueueDispatcher buffers messages on a bounded channel drained by Run.
type QueueDispatcher struct {
	queue  chan Message
	sender Sender
}

// NewQueueDispatcher creates a dispatcher with the given queue capacity and
// sender. A nil sender falls back to LogSender.
func NewQueueDispatcher(size int, sender Sender) *QueueDispatcher {
	if size < 1 {
		size = 1
	}
	if sender == nil {
		sender = LogSender{}
	}
	return &QueueDispatcher{
		queue:  make(chan Message, size),
		sender: sender,
	}
}

// Dispatch enqueues a message for delivery. Returns ErrQueueFull immediately
// when the queue has no capacity left; the caller reports the entry as failed
// rather than blocking the request.
func (d *QueueDispatcher) Dispatch(_ context.Context, msg Message) error {
	select {
	case d.queue <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run drains the queue until the context is cancelled. Delivery failures are
// logged and do not stop the worker.
func (d *QueueDispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-d.queue:
			if err := d.sender.Send(ctx, msg); err != nil {
				log.Error().Err(err).
					Str("recipient", msg.Recipient).
					Msg("failed to send assignment email")
			}
		}
	}
}
