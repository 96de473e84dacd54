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

import "github.com/helix-wallet/walletd/types"

// Queue names the durable queues of the pipeline. FetchBlockTransactions is
// sharded per chain via ChainQueue so each chain keeps in-order delivery with
// prefetch 1; the remaining queues are global.
type Queue string

const (
	FetchBlockTransactions Queue = "FetchBlockTransactions"

	// Asset-driven association queues, fed by the API layer when an asset
	// is added or enabled. Declared here so setup owns the full topology.
	FetchTokenAssociations Queue = "FetchTokenAssociations"
	FetchCoinAssociations  Queue = "FetchCoinAssociations"
	FetchNftAssociations   Queue = "FetchNftAssociations"

	// Address-driven association queues, bound to the NewAddresses
	// exchange and consumed by the association consumers.
	FetchAddressTransactions            Queue = "FetchAddressTransactions"
	FetchTokenAddressesAssociations     Queue = "FetchTokenAddressesAssociations"
	FetchCoinAddressesAssociations      Queue = "FetchCoinAddressesAssociations"
	FetchNftAssetsAddressesAssociations Queue = "FetchNftAssetsAddressesAssociations"

	FetchTransactions Queue = "FetchTransactions"
	FetchAssets       Queue = "FetchAssets"

	NotificationsTransactions Queue = "NotificationsTransactions"
	NotificationsPriceAlerts  Queue = "NotificationsPriceAlerts"

	// DeadLetters retains messages that exhausted their redelivery budget,
	// for later inspection and replay.
	DeadLetters Queue = "DeadLetters"
)

// ExchangeNewAddresses fans a new subscription address out to the association
// consumers and the address-transactions bootstrap.
const ExchangeNewAddresses = "NewAddresses"

// ExchangeDeadLetters is set as the dead-letter exchange of every work queue
// and routes into the DeadLetters queue.
const ExchangeDeadLetters = "DeadLetters"

// newAddressesQueues are the queues bound to ExchangeNewAddresses, one per
// association consumer.
var newAddressesQueues = []Queue{
	FetchTokenAddressesAssociations,
	FetchCoinAddressesAssociations,
	FetchNftAssetsAddressesAssociations,
	FetchAddressTransactions,
}

func (q Queue) String() string {
	return string(q)
}

// ChainQueue returns the per-chain shard name of a queue.
func (q Queue) ChainQueue(chain types.Chain) string {
	return string(q) + "." + chain.String()
}
