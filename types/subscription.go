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

import "time"

// Subscription is a device's declared interest in activity at one address on
// one chain. Unique by (device, wallet index, chain, address).
type Subscription struct {
	DeviceID    int64  `json:"deviceId"`
	WalletIndex int32  `json:"walletIndex"`
	Chain       Chain  `json:"chain"`
	Address     string `json:"address"`
}

// Device is a registered mobile device. PublicKey, when present, enables
// signed-request authentication on the API surface.
type Device struct {
	ID        int64     `json:"id"`
	DeviceID  string    `json:"deviceId"`
	Platform  string    `json:"platform"`
	Token     string    `json:"token"`
	PublicKey string    `json:"publicKey,omitempty"`
	Locale    string    `json:"locale"`
	Currency  string    `json:"currency"`
	UpdatedAt time.Time `json:"updatedAt"`
}
