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

package evm

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helix-wallet/walletd/types"
)

var (
	sender    = common.HexToAddress("0x1111111111111111111111111111111111111111")
	recipient = common.HexToAddress("0x2222222222222222222222222222222222222222")
	contract  = common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")
	txHash    = common.HexToHash("0xabc0000000000000000000000000000000000000000000000000000000000000")
)

func erc20TransferInput(to common.Address, amount int64) hexutil.Bytes {
	input := make([]byte, 68)
	copy(input[:4], erc20TransferSelector)
	copy(input[16:36], to.Bytes())
	input[67] = byte(amount)
	return input
}

func testBlock(txs ...rpcTransaction) rpcBlock {
	return rpcBlock{Number: 100, Timestamp: 1700000000, Transactions: txs}
}

func receiptFor(hash common.Hash, status uint64) rpcReceipt {
	return rpcReceipt{
		TxHash:            hash,
		Status:            hexutil.Uint64(status),
		GasUsed:           21000,
		EffectiveGasPrice: (*hexutil.Big)(hexutil.MustDecodeBig("0x3b9aca00")), // 1 gwei
	}
}

func TestDeriveNativeTransfer(t *testing.T) {
	oneEth := hexutil.MustDecodeBig("0xde0b6b3a7640000")
	blk := testBlock(rpcTransaction{
		Hash:  txHash,
		From:  sender,
		To:    &recipient,
		Value: (*hexutil.Big)(oneEth),
		Nonce: 7,
	})
	txs := deriveTransactions(types.Ethereum, blk, []rpcReceipt{receiptFor(txHash, 1)})

	require.Len(t, txs, 1)
	tx := txs[0]
	assert.Equal(t, "ethereum_"+txHash.Hex(), tx.ID)
	assert.Equal(t, types.StateConfirmed, tx.State)
	assert.Equal(t, "1000000000000000000", tx.Value)
	assert.Equal(t, sender.Hex(), tx.From)
	assert.Equal(t, recipient.Hex(), tx.To)
	assert.True(t, tx.AssetID.IsNative())
	assert.Equal(t, "21000000000000", tx.Fee) // 21000 * 1 gwei
	assert.Equal(t, uint64(100), tx.BlockNumber)
	assert.Equal(t, uint64(7), tx.Sequence)
}

func TestDeriveFailedNativeTransfer(t *testing.T) {
	blk := testBlock(rpcTransaction{
		Hash:  txHash,
		From:  sender,
		To:    &recipient,
		Value: (*hexutil.Big)(hexutil.MustDecodeBig("0x1")),
	})
	txs := deriveTransactions(types.Ethereum, blk, []rpcReceipt{receiptFor(txHash, 0)})

	require.Len(t, txs, 1)
	assert.Equal(t, types.StateFailed, txs[0].State)
}

func TestDeriveERC20Transfer(t *testing.T) {
	blk := testBlock(rpcTransaction{
		Hash:  txHash,
		From:  sender,
		To:    &contract,
		Value: (*hexutil.Big)(hexutil.MustDecodeBig("0x0")),
		Input: erc20TransferInput(recipient, 42),
	})
	txs := deriveTransactions(types.Ethereum, blk, []rpcReceipt{receiptFor(txHash, 1)})

	require.Len(t, txs, 1)
	tx := txs[0]
	assert.Equal(t, contract.Hex(), tx.AssetID.TokenID, "asset is the token contract")
	assert.Equal(t, recipient.Hex(), tx.To, "recipient from calldata")
	assert.Equal(t, "42", tx.Value, "amount from calldata")
	assert.Equal(t, types.StateConfirmed, tx.State)
	assert.True(t, tx.FeeAssetID.IsNative())
}

func TestDeriveFailedERC20Dropped(t *testing.T) {
	blk := testBlock(rpcTransaction{
		Hash:  txHash,
		From:  sender,
		To:    &contract,
		Input: erc20TransferInput(recipient, 42),
	})
	txs := deriveTransactions(types.Ethereum, blk, []rpcReceipt{receiptFor(txHash, 0)})
	assert.Empty(t, txs)
}

func TestDeriveSkipsContractCalls(t *testing.T) {
	blk := testBlock(rpcTransaction{
		Hash:  txHash,
		From:  sender,
		To:    &contract,
		Input: hexutil.MustDecode("0x095ea7b3"), // approve selector
	})
	txs := deriveTransactions(types.Ethereum, blk, []rpcReceipt{receiptFor(txHash, 1)})
	assert.Empty(t, txs)
}

func TestDeriveSkipsContractCreation(t *testing.T) {
	blk := testBlock(rpcTransaction{Hash: txHash, From: sender, To: nil})
	txs := deriveTransactions(types.Ethereum, blk, []rpcReceipt{receiptFor(txHash, 1)})
	assert.Empty(t, txs)
}

func TestDecodeABIString(t *testing.T) {
	// Dynamic string "USDT": offset 32, length 4, padded data.
	raw := make([]byte, 96)
	raw[31] = 32
	raw[63] = 4
	copy(raw[64:], "USDT")
	s, err := decodeABIString(raw)
	require.NoError(t, err)
	assert.Equal(t, "USDT", s)

	// Legacy bytes32 return.
	fixed := make([]byte, 32)
	copy(fixed, "MKR")
	s, err = decodeABIString(fixed)
	require.NoError(t, err)
	assert.Equal(t, "MKR", s)

	_, err = decodeABIString([]byte{1, 2, 3})
	assert.Error(t, err)
}
