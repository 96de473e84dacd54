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

// Package stream wraps RabbitMQ: queue topology, publisher-confirmed
// publishing and a generic at-least-once consumer loop.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/helix-wallet/walletd/types"
)

// publishTimeout bounds waiting for a broker confirm.
const publishTimeout = 10 * time.Second

// Client owns the publishing connection and a channel in confirm mode.
// Consumers dial their own connections so ack bookkeeping and broker flow
// control never cross tasks.
type Client struct {
	url     string
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Dial connects to the broker and switches the publish channel into confirm
// mode so a returned publish is a durable publish.
func Dial(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable confirms: %w", err)
	}
	return &Client{url: url, conn: conn, channel: ch}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Setup declares the full topology: the fanout exchange, its bound queues,
// the per-chain block queues and the global work queues. Declaration is
// idempotent; every process declares what it uses.
func (c *Client) Setup(chains []types.Chain) error {
	if err := c.channel.ExchangeDeclare(ExchangeDeadLetters, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", ExchangeDeadLetters, err)
	}
	if _, err := c.channel.QueueDeclare(DeadLetters.String(), true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", DeadLetters, err)
	}
	if err := c.channel.QueueBind(DeadLetters.String(), "", ExchangeDeadLetters, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", DeadLetters, err)
	}
	if err := c.channel.ExchangeDeclare(ExchangeNewAddresses, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", ExchangeNewAddresses, err)
	}
	for _, q := range newAddressesQueues {
		if err := c.declareQueue(q.String()); err != nil {
			return err
		}
		if err := c.channel.QueueBind(q.String(), "", ExchangeNewAddresses, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", q, err)
		}
	}
	for _, chain := range chains {
		if err := c.declareQueue(FetchBlockTransactions.ChainQueue(chain)); err != nil {
			return err
		}
	}
	globals := []Queue{
		FetchTokenAssociations,
		FetchCoinAssociations,
		FetchNftAssociations,
		FetchTransactions,
		FetchAssets,
		NotificationsTransactions,
		NotificationsPriceAlerts,
	}
	for _, q := range globals {
		if err := c.declareQueue(q.String()); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) declareQueue(name string) error {
	// Messages nacked without requeue are retained on the DeadLetters queue
	// instead of being discarded.
	args := amqp.Table{"x-dead-letter-exchange": ExchangeDeadLetters}
	if _, err := c.channel.QueueDeclare(name, true, false, false, false, args); err != nil {
		return fmt.Errorf("declare queue %s: %w", name, err)
	}
	return nil
}

func (c *Client) publish(ctx context.Context, exchange, key string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	confirm, err := c.channel.PublishWithDeferredConfirmWithContext(ctx, exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         data,
	})
	if err != nil {
		return fmt.Errorf("publish to %s/%s: %w", exchange, key, err)
	}
	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("confirm publish to %s/%s: %w", exchange, key, err)
	}
	if !acked {
		return fmt.Errorf("publish to %s/%s nacked by broker", exchange, key)
	}
	return nil
}

// PublishBlockTransactions routes a parsed block to its chain's shard of the
// FetchBlockTransactions queue.
func (c *Client) PublishBlockTransactions(ctx context.Context, payload types.TransactionsPayload) error {
	return c.publish(ctx, "", FetchBlockTransactions.ChainQueue(payload.Chain), payload)
}

// PublishTransactions enqueues a transactions batch on a global queue.
func (c *Client) PublishTransactions(ctx context.Context, queue Queue, payload types.TransactionsPayload) error {
	return c.publish(ctx, "", queue.String(), payload)
}

// PublishFetchAssets requests metadata resolution for unknown assets.
func (c *Client) PublishFetchAssets(ctx context.Context, payload types.FetchAssetsPayload) error {
	return c.publish(ctx, "", FetchAssets.String(), payload)
}

// PublishNotifications enqueues push messages for delivery.
func (c *Client) PublishNotifications(ctx context.Context, payload types.NotificationsPayload) error {
	return c.publish(ctx, "", NotificationsTransactions.String(), payload)
}

// PublishNewAddress fans a freshly subscribed address out to every
// association consumer.
func (c *Client) PublishNewAddress(ctx context.Context, payload types.ChainAddressPayload) error {
	return c.publish(ctx, ExchangeNewAddresses, "", payload)
}
