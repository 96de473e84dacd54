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

package consumer

import (
	"context"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"

	"github.com/helix-wallet/walletd/types"
)

var (
	pushedMeter     = metrics.NewRegisteredMeter("consumer/notifications/pushed", nil)
	pushErrorsMeter = metrics.NewRegisteredMeter("consumer/notifications/errors", nil)
	skippedMeter    = metrics.NewRegisteredMeter("consumer/notifications/skipped", nil)
)

// DeviceStore resolves devices for push delivery.
type DeviceStore interface {
	GetDevice(ctx context.Context, id int64) (types.Device, error)
}

// Pusher delivers one message to one device.
type Pusher interface {
	Push(ctx context.Context, device types.Device, msg types.PushMessage) error
}

// Notifications resolves device tokens and hands messages to the push
// gateway.
type Notifications struct {
	store  DeviceStore
	pusher Pusher
}

func NewNotifications(store DeviceStore, pusher Pusher) *Notifications {
	return &Notifications{store: store, pusher: pusher}
}

// Handle delivers a notification batch. Per-message failures are logged and
// skipped rather than failing the batch; a redelivered batch would double
// push the messages that already went out.
func (c *Notifications) Handle(ctx context.Context, payload types.NotificationsPayload) error {
	for _, msg := range payload.Notifications {
		device, err := c.store.GetDevice(ctx, msg.DeviceID)
		if err != nil {
			pushErrorsMeter.Mark(1)
			log.Warn("Device lookup failed", "device", msg.DeviceID, "err", err)
			continue
		}
		if device.Token == "" {
			skippedMeter.Mark(1)
			continue
		}
		if err := c.pusher.Push(ctx, device, msg); err != nil {
			pushErrorsMeter.Mark(1)
			log.Warn("Push failed", "device", msg.DeviceID, "err", err)
			continue
		}
		pushedMeter.Mark(1)
	}
	return nil
}
