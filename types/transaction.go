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

import (
	"time"
)

// TransactionState is the lifecycle state of a transaction. Pending
// transactions may transition to confirmed, failed or reverted in a later
// block; confirmed ones are immutable.
type TransactionState string

const (
	StatePending   TransactionState = "pending"
	StateConfirmed TransactionState = "confirmed"
	StateFailed    TransactionState = "failed"
	StateReverted  TransactionState = "reverted"
)

// TransactionDirection classifies a transaction relative to an observer's
// address set. It is computed at notification time, never stored globally.
type TransactionDirection string

const (
	DirectionIncoming TransactionDirection = "incoming"
	DirectionOutgoing TransactionDirection = "outgoing"
	DirectionSelf     TransactionDirection = "self"
)

// TransactionType is the decoded kind of on-chain activity.
type TransactionType string

const (
	TypeTransfer          TransactionType = "transfer"
	TypeTokenApproval     TransactionType = "tokenApproval"
	TypeSwap              TransactionType = "swap"
	TypeSmartContractCall TransactionType = "smartContractCall"
)

// UTXO is one input or output of a UTXO-family transaction.
type UTXO struct {
	Address string `json:"address"`
	Value   string `json:"value"`
}

// Transaction is the chain-agnostic transaction model. ID is "<chain>_<hash>"
// and is the primary key everywhere.
type Transaction struct {
	ID          string               `json:"id"`
	Hash        string               `json:"hash"`
	AssetID     AssetID              `json:"assetId"`
	From        string               `json:"from"`
	To          string               `json:"to"`
	Memo        string               `json:"memo,omitempty"`
	Type        TransactionType      `json:"type"`
	State       TransactionState     `json:"state"`
	BlockNumber uint64               `json:"blockNumber"`
	Sequence    uint64               `json:"sequence"`
	Fee         string               `json:"fee"`
	FeeAssetID  AssetID              `json:"feeAssetId"`
	Value       string               `json:"value"`
	Direction   TransactionDirection `json:"direction,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
	UTXOInputs  []UTXO               `json:"utxoInputs,omitempty"`
	UTXOOutputs []UTXO               `json:"utxoOutputs,omitempty"`
	Metadata    map[string]string    `json:"metadata,omitempty"`
}

// TransactionID builds the canonical transaction primary key.
func TransactionID(chain Chain, hash string) string {
	return string(chain) + "_" + hash
}

// NewTransaction fills in the derived ID for a transaction.
func NewTransaction(chain Chain, hash string, tx Transaction) Transaction {
	tx.ID = TransactionID(chain, hash)
	tx.Hash = hash
	return tx
}

// AssetIDs returns the distinct assets the transaction references.
func (t Transaction) AssetIDs() []AssetID {
	ids := []AssetID{t.AssetID}
	if t.FeeAssetID != t.AssetID {
		ids = append(ids, t.FeeAssetID)
	}
	return ids
}

// Addresses returns every address the transaction touches, including UTXO
// inputs and outputs.
func (t Transaction) Addresses() []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(addr string) {
		if addr == "" {
			return
		}
		if _, ok := seen[addr]; ok {
			return
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	add(t.From)
	add(t.To)
	for _, in := range t.UTXOInputs {
		add(in.Address)
	}
	for _, o := range t.UTXOOutputs {
		add(o.Address)
	}
	return out
}

// InputAddresses returns the sending side of the transaction.
func (t Transaction) InputAddresses() []string {
	if len(t.UTXOInputs) == 0 {
		return []string{t.From}
	}
	addrs := make([]string, 0, len(t.UTXOInputs))
	for _, in := range t.UTXOInputs {
		addrs = append(addrs, in.Address)
	}
	return addrs
}

// OutputAddresses returns the receiving side of the transaction.
func (t Transaction) OutputAddresses() []string {
	if len(t.UTXOOutputs) == 0 {
		return []string{t.To}
	}
	addrs := make([]string, 0, len(t.UTXOOutputs))
	for _, o := range t.UTXOOutputs {
		addrs = append(addrs, o.Address)
	}
	return addrs
}

// Finalize re-projects the transaction for one observer, fixing its
// direction relative to the observer's addresses.
func (t Transaction) Finalize(observers []string) Transaction {
	obs := make(map[string]struct{}, len(observers))
	for _, a := range observers {
		obs[a] = struct{}{}
	}
	in := containsAny(obs, t.OutputAddresses())
	out := containsAny(obs, t.InputAddresses())
	switch {
	case in && out:
		t.Direction = DirectionSelf
	case out:
		t.Direction = DirectionOutgoing
	default:
		t.Direction = DirectionIncoming
	}
	return t
}

func containsAny(set map[string]struct{}, addrs []string) bool {
	for _, a := range addrs {
		if _, ok := set[a]; ok {
			return true
		}
	}
	return false
}
