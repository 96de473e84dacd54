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

package store

import (
	"context"
	"fmt"

	"github.com/helix-wallet/walletd/types"
)

// AddParserDeadLetter records a block the parser gave up on, so operators can
// replay it after the root cause is fixed.
func (s *Store) AddParserDeadLetter(ctx context.Context, chain types.Chain, block uint64, reason string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO parser_deadletter (chain, block, reason)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (chain, block) DO UPDATE SET reason = EXCLUDED.reason`,
		chain.String(), block, reason)
	if err != nil {
		return fmt.Errorf("add dead letter %s/%d: %w", chain, block, err)
	}
	return nil
}
