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

package types

// TransactionsPayload is one parsed block published by a block parser, or a
// bootstrap batch republished by the address-transactions consumer (block 0).
type TransactionsPayload struct {
	Chain        Chain         `json:"chain"`
	Block        uint64        `json:"block"`
	Transactions []Transaction `json:"transactions"`
}

// ChainAddressPayload announces a newly subscribed address; fanned out to the
// association consumers.
type ChainAddressPayload struct {
	Chain   Chain  `json:"chain"`
	Address string `json:"address"`
}

// FetchAssetsPayload requests metadata resolution for assets first seen in a
// transaction.
type FetchAssetsPayload struct {
	AssetIDs []string `json:"assetIds"`
}

// PushMessage is one notification addressed to a device. The device token is
// resolved by the notifications consumer, not carried on the wire.
type PushMessage struct {
	DeviceID    int64             `json:"deviceId"`
	WalletIndex int32             `json:"walletIndex"`
	Title       string            `json:"title"`
	Message     string            `json:"message"`
	Data        map[string]string `json:"data,omitempty"`
}

// NotificationsPayload is a batch of push messages.
type NotificationsPayload struct {
	Notifications []PushMessage `json:"notifications"`
}
