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

package parser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helix-wallet/walletd/store"
	"github.com/helix-wallet/walletd/types"
)

type fakeProvider struct {
	chain   types.Chain
	latest  uint64
	blocks  map[uint64][]types.Transaction
	errs    map[uint64]error
	fetched []uint64
}

func (f *fakeProvider) Chain() types.Chain { return f.chain }

func (f *fakeProvider) LatestBlock(ctx context.Context) (uint64, error) {
	return f.latest, nil
}

func (f *fakeProvider) GetTransactions(ctx context.Context, block uint64) ([]types.Transaction, error) {
	f.fetched = append(f.fetched, block)
	if err := f.errs[block]; err != nil {
		return nil, err
	}
	return f.blocks[block], nil
}

type fakeState struct {
	current, latest uint64
	await           uint64
	deadLetters     map[uint64]string
}

func newFakeState(current uint64) *fakeState {
	return &fakeState{current: current, deadLetters: make(map[uint64]string)}
}

func (f *fakeState) GetParserState(ctx context.Context, chain types.Chain) (store.ParserState, error) {
	return store.ParserState{Chain: chain, CurrentBlock: f.current, LatestBlock: f.latest, AwaitBlocks: f.await}, nil
}

func (f *fakeState) EnsureParserState(ctx context.Context, chain types.Chain, startBlock uint64) error {
	return nil
}

func (f *fakeState) SetCurrentBlock(ctx context.Context, chain types.Chain, block uint64) error {
	if block < f.current || block > f.latest {
		return errors.New("cursor rejected")
	}
	f.current = block
	return nil
}

func (f *fakeState) SetLatestBlock(ctx context.Context, chain types.Chain, block uint64) error {
	if block > f.latest {
		f.latest = block
	}
	return nil
}

func (f *fakeState) AddParserDeadLetter(ctx context.Context, chain types.Chain, block uint64, reason string) error {
	f.deadLetters[block] = reason
	return nil
}

type fakePublisher struct {
	published []types.TransactionsPayload
	err       error
}

func (f *fakePublisher) PublishBlockTransactions(ctx context.Context, payload types.TransactionsPayload) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, payload)
	return nil
}

func testTx(block uint64) types.Transaction {
	return types.NewTransaction(types.Ethereum, "0xabc", types.Transaction{
		AssetID:     types.NewAssetID(types.Ethereum),
		Type:        types.TypeTransfer,
		State:       types.StateConfirmed,
		BlockNumber: block,
		Value:       "1",
	})
}

func testConfig() Config {
	cfg := DefaultConfig
	cfg.AwaitBlocks = 2
	return cfg
}

func TestRoundProcessesInOrder(t *testing.T) {
	provider := &fakeProvider{
		chain:  types.Ethereum,
		latest: 105,
		blocks: map[uint64][]types.Transaction{
			101: {testTx(101)},
			103: {testTx(103)},
		},
	}
	state := newFakeState(100)
	pub := &fakePublisher{}
	p := New(provider, state, pub, testConfig())

	require.NoError(t, p.round(context.Background()))

	// Await window of 2 stops the cursor two blocks short of the tip.
	assert.Equal(t, []uint64{101, 102, 103}, provider.fetched)
	assert.EqualValues(t, 103, state.current)

	// Empty blocks publish nothing.
	require.Len(t, pub.published, 2)
	assert.EqualValues(t, 101, pub.published[0].Block)
	assert.EqualValues(t, 103, pub.published[1].Block)
}

func TestRoundRespectsAwaitWindow(t *testing.T) {
	provider := &fakeProvider{chain: types.Ethereum, latest: 102}
	state := newFakeState(100)
	p := New(provider, state, &fakePublisher{}, testConfig())

	require.NoError(t, p.round(context.Background()))
	assert.Empty(t, provider.fetched)
	assert.EqualValues(t, 100, state.current)
}

func TestRoundLeavesCursorOnPublishFailure(t *testing.T) {
	provider := &fakeProvider{
		chain:  types.Ethereum,
		latest: 105,
		blocks: map[uint64][]types.Transaction{101: {testTx(101)}},
	}
	state := newFakeState(100)
	pub := &fakePublisher{err: errors.New("broker down")}
	p := New(provider, state, pub, testConfig())

	require.Error(t, p.round(context.Background()))
	assert.EqualValues(t, 100, state.current)
}

func TestRoundDeadLettersAfterBudget(t *testing.T) {
	provider := &fakeProvider{
		chain:  types.Ethereum,
		latest: 105,
		errs:   map[uint64]error{101: errors.New("bad block")},
	}
	state := newFakeState(100)
	p := New(provider, state, &fakePublisher{}, testConfig())

	// The failing block burns the retry budget across rounds before it is
	// skipped.
	for i := 0; i < DefaultConfig.RetryBudget-1; i++ {
		require.Error(t, p.round(context.Background()))
		assert.EqualValues(t, 100, state.current)
	}
	require.NoError(t, p.round(context.Background()))
	assert.Contains(t, state.deadLetters, uint64(101))
	assert.EqualValues(t, 103, state.current)
}

func TestFilterTransactionTypes(t *testing.T) {
	cfg := testConfig()
	cfg.TransactionTypes = []types.TransactionType{types.TypeTransfer}
	provider := &fakeProvider{chain: types.Ethereum}
	p := New(provider, newFakeState(0), &fakePublisher{}, cfg)

	swap := testTx(1)
	swap.Type = types.TypeSwap
	out := p.filter([]types.Transaction{testTx(1), swap})
	require.Len(t, out, 1)
	assert.Equal(t, types.TypeTransfer, out[0].Type)
}

func TestStatusFeed(t *testing.T) {
	provider := &fakeProvider{chain: types.Ethereum, latest: 110}
	state := newFakeState(100)
	p := New(provider, state, &fakePublisher{}, testConfig())

	ch := make(chan StatusEvent, 1)
	sub := p.SubscribeStatus(ch)
	defer sub.Unsubscribe()

	require.NoError(t, p.round(context.Background()))
	ev := <-ch
	assert.Equal(t, types.Ethereum, ev.Chain)
	assert.EqualValues(t, 108, ev.CurrentBlock)
	assert.EqualValues(t, 110, ev.LatestBlock)
}
