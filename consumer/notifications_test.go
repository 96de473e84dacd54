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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helix-wallet/walletd/types"
)

type fakeDeviceStore struct {
	devices map[int64]types.Device
}

func (f *fakeDeviceStore) GetDevice(ctx context.Context, id int64) (types.Device, error) {
	d, ok := f.devices[id]
	if !ok {
		return types.Device{}, errors.New("device not found")
	}
	return d, nil
}

type fakePusher struct {
	pushed []types.PushMessage
	err    error
}

func (f *fakePusher) Push(ctx context.Context, device types.Device, msg types.PushMessage) error {
	if f.err != nil {
		return f.err
	}
	f.pushed = append(f.pushed, msg)
	return nil
}

func TestNotificationsDeliver(t *testing.T) {
	store := &fakeDeviceStore{devices: map[int64]types.Device{
		1: {ID: 1, Token: "tok-1", Platform: "ios"},
		2: {ID: 2, Token: "", Platform: "android"},
	}}
	pusher := &fakePusher{}
	c := NewNotifications(store, pusher)

	payload := types.NotificationsPayload{Notifications: []types.PushMessage{
		{DeviceID: 1, Title: "Transfer received"},
		{DeviceID: 2, Title: "Skipped, no token"},
		{DeviceID: 3, Title: "Skipped, unknown device"},
	}}
	require.NoError(t, c.Handle(context.Background(), payload))

	require.Len(t, pusher.pushed, 1)
	assert.Equal(t, "Transfer received", pusher.pushed[0].Title)
}

func TestNotificationsPushFailureDoesNotFailBatch(t *testing.T) {
	store := &fakeDeviceStore{devices: map[int64]types.Device{
		1: {ID: 1, Token: "tok-1", Platform: "ios"},
	}}
	pusher := &fakePusher{err: errors.New("gateway down")}
	c := NewNotifications(store, pusher)

	payload := types.NotificationsPayload{Notifications: []types.PushMessage{{DeviceID: 1}}}
	require.NoError(t, c.Handle(context.Background(), payload))
	assert.Empty(t, pusher.pushed)
}
