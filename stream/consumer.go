// Copyright 2026 Helix Wallet
// This file is part of the Helix Wallet backend.
//
// This software is provided "as is", without warranty of any kind,
// express or implied, including but not limited to the warranties
// of merchantability, fitness for a particular purpose and
// noninfringement. In no event shall the authors or copyright
// holders be liable for any claim, damages, or other liability,
// whether in an action of contract, tort or otherwise, arising
// from, out of or in connection with the software or the use or
// other dealings in the software.

package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	amqp "github.com/rabbitmq/amqp091-go"
)

// redeliveryLimit caps how often a bad message is retried before it is
// dead-lettered.
const redeliveryLimit = 3

var (
	consumedMeter   = metrics.NewRegisteredMeter("stream/consumed", nil)
	rejectedMeter   = metrics.NewRegisteredMeter("stream/rejected", nil)
	deadLetterMeter = metrics.NewRegisteredMeter("stream/deadlettered", nil)
)

// BadMessageError marks a payload that can never succeed no matter how often
// it is redelivered. Bad messages count against the redelivery limit and end
// up on the DeadLetters queue; every other handler error is treated as a
// transient outage and keeps the message on its queue.
type BadMessageError struct {
	Err error
}

func (e *BadMessageError) Error() string { return e.Err.Error() }
func (e *BadMessageError) Unwrap() error { return e.Err }

// BadMessage wraps err so the consumer loop dead-letters the delivery instead
// of stalling on it.
func BadMessage(err error) error {
	return &BadMessageError{Err: err}
}

// ConsumerOptions tunes one consumer loop.
type ConsumerOptions struct {
	// Prefetch is the unacked-message window. 1 preserves ordering on
	// per-chain queues; larger values trade ordering for throughput.
	Prefetch int
}

// Handler processes one decoded message. A nil return acks the delivery. A
// BadMessage error counts against the redelivery limit; any other error
// requeues the delivery in place and restarts the consumer.
type Handler[T any] func(ctx context.Context, payload T) error

// Consume runs the handler for every delivery until ctx is cancelled. Each
// consumer owns a dedicated broker connection so a stalled queue cannot
// flow-control the others. Delivery is at least once; handlers are expected
// to be idempotent.
func Consume[T any](ctx context.Context, c *Client, queue string, opts ConsumerOptions, handler Handler[T]) error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial for %s: %w", queue, err)
	}
	defer conn.Close()
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel for %s: %w", queue, err)
	}
	defer ch.Close()

	prefetch := opts.Prefetch
	if prefetch <= 0 {
		prefetch = 1
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("set qos for %s: %w", queue, err)
	}
	deliveries, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", queue, err)
	}
	log.Info("Consumer started", "queue", queue, "prefetch", prefetch)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("consume %s: channel closed", queue)
			}
			if err := handleDelivery(ctx, c, queue, delivery, handler); err != nil {
				// Transient failure: the requeued delivery sits at the queue
				// head and the supervisor's backoff paces the retries.
				return err
			}
		}
	}
}

// handleDelivery decodes, dispatches and acks a single message. Undecodable
// payloads and BadMessage failures count against the redelivery limit and are
// dead-lettered past it. Any other failure is requeued in place and returned
// so the consumer exits and restarts; with prefetch 1 the same message is the
// next one delivered, which keeps per-chain block order across retries.
// Panics in the handler are contained and treated as a bad message.
func handleDelivery[T any](ctx context.Context, c *Client, queue string, delivery amqp.Delivery, handler Handler[T]) error {
	var payload T
	if err := json.Unmarshal(delivery.Body, &payload); err != nil {
		log.Error("Undecodable message", "queue", queue, "body", string(delivery.Body), "err", err)
		c.retryBadMessage(ctx, queue, delivery, err)
		return nil
	}

	err := runHandler(ctx, payload, handler)
	if err == nil {
		consumedMeter.Mark(1)
		delivery.Ack(false)
		return nil
	}
	var bad *BadMessageError
	if errors.As(err, &bad) {
		c.retryBadMessage(ctx, queue, delivery, err)
		return nil
	}

	rejectedMeter.Mark(1)
	log.Warn("Requeueing failed message", "queue", queue, "err", err)
	delivery.Nack(false, true)
	return fmt.Errorf("handle %s: %w", queue, err)
}

// retryBadMessage republishes a bad message to the back of its queue with an
// incremented attempt counter. Past the limit it is nacked without requeue so
// the queue's dead-letter exchange retains it for inspection.
func (c *Client) retryBadMessage(ctx context.Context, queue string, delivery amqp.Delivery, cause error) {
	attempts := deliveryAttempts(delivery)
	if attempts+1 >= redeliveryLimit {
		log.Error("Dead-lettering message", "queue", queue, "attempts", attempts+1, "err", cause)
		deadLetterMeter.Mark(1)
		delivery.Nack(false, false)
		return
	}
	log.Warn("Retrying bad message", "queue", queue, "attempts", attempts+1, "err", cause)
	if err := c.republish(ctx, queue, delivery, attempts+1); err != nil {
		// The broker still holds the original; a plain requeue loses the
		// counter but keeps the message.
		log.Error("Republish failed, requeueing in place", "queue", queue, "err", err)
		delivery.Nack(false, true)
		return
	}
	delivery.Ack(false)
}

// republish re-enqueues a bad delivery at the back of its queue, carrying the
// incremented attempt counter in a header.
func (c *Client) republish(ctx context.Context, queue string, delivery amqp.Delivery, attempts int64) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	headers := amqp.Table{}
	for k, v := range delivery.Headers {
		headers[k] = v
	}
	headers["x-delivery-attempts"] = attempts
	confirm, err := c.channel.PublishWithDeferredConfirmWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  delivery.ContentType,
		DeliveryMode: amqp.Persistent,
		Headers:      headers,
		Body:         delivery.Body,
	})
	if err != nil {
		return err
	}
	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !acked {
		return fmt.Errorf("republish to %s nacked by broker", queue)
	}
	return nil
}

func runHandler[T any](ctx context.Context, payload T, handler Handler[T]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = BadMessage(fmt.Errorf("handler panic: %v", r))
		}
	}()
	return handler(ctx, payload)
}

// deliveryAttempts reads the attempt counter carried by republished messages.
// First deliveries have no header and count as attempt zero.
func deliveryAttempts(delivery amqp.Delivery) int64 {
	if v, ok := delivery.Headers["x-delivery-attempts"]; ok {
		switch n := v.(type) {
		case int32:
			return int64(n)
		case int64:
			return n
		}
	}
	return 0
}
