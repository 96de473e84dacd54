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

package daemon

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"

	"github.com/helix-wallet/walletd/parser"
	"github.com/helix-wallet/walletd/types"
)

// reportInterval is how often the reporter logs per-chain progress.
const reportInterval = 30 * time.Second

// Reporter aggregates parser status events and periodically logs each
// chain's cursor and lag.
type Reporter struct {
	parsers []*parser.Parser

	mu     sync.Mutex
	status map[types.Chain]parser.StatusEvent
}

func NewReporter(parsers []*parser.Parser) *Reporter {
	return &Reporter{
		parsers: parsers,
		status:  make(map[types.Chain]parser.StatusEvent),
	}
}

// Run collects status events until ctx ends.
func (r *Reporter) Run(ctx context.Context) error {
	ch := make(chan parser.StatusEvent, 64)
	subs := make([]event.Subscription, 0, len(r.parsers))
	for _, p := range r.parsers {
		subs = append(subs, p.SubscribeStatus(ch))
	}
	defer func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	}()

	ticker := time.NewTicker(reportInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-ch:
			r.mu.Lock()
			r.status[ev.Chain] = ev
			r.mu.Unlock()
		case <-ticker.C:
			r.report()
		}
	}
}

func (r *Reporter) report() {
	r.mu.Lock()
	events := make([]parser.StatusEvent, 0, len(r.status))
	for _, ev := range r.status {
		events = append(events, ev)
	}
	r.mu.Unlock()

	sort.Slice(events, func(i, j int) bool { return events[i].Chain < events[j].Chain })
	for _, ev := range events {
		lag := int64(ev.LatestBlock) - int64(ev.CurrentBlock)
		log.Info("Chain progress", "chain", ev.Chain, "current", ev.CurrentBlock, "latest", ev.LatestBlock, "lag", lag)
	}
}
