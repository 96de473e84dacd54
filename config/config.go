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

// Package config loads the daemon's TOML configuration, with environment
// overrides for the connection secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/naoina/toml"

	"github.com/helix-wallet/walletd/types"
)

type Config struct {
	Postgres PostgresConfig `toml:"postgres"`
	RabbitMQ RabbitMQConfig `toml:"rabbitmq"`
	Pusher   PusherConfig   `toml:"pusher"`
	Parser   ParserConfig   `toml:"parser"`

	// Chains maps chain name to its endpoint settings. Chains without an
	// entry are not indexed.
	Chains map[string]ChainConfig `toml:"chains"`
}

type PostgresConfig struct {
	URL string `toml:"url"`
}

type RabbitMQConfig struct {
	URL string `toml:"url"`
	// Prefetch is the consumer window for the global queues. Per-chain
	// block queues always use 1 to keep ordering.
	Prefetch int `toml:"prefetch"`
}

type PusherConfig struct {
	URL string `toml:"url"`
}

type ParserConfig struct {
	PollInterval time.Duration `toml:"poll_interval"`
	AwaitBlocks  uint64        `toml:"await_blocks"`
	RetryBudget  int           `toml:"retry_budget"`
	// BatchSize is the max transactions per database insert chunk.
	BatchSize int `toml:"batch_size"`
}

type ChainConfig struct {
	URL        string `toml:"url"`
	StartBlock uint64 `toml:"start_block"`
	// PollSecs overrides the global polling interval, in seconds.
	PollSecs uint64 `toml:"poll_secs"`
	// Await overrides the global confirmation delay, in blocks.
	Await uint64 `toml:"await"`
	// Outdated is the max transaction age, in seconds, that still produces
	// a notification on this chain.
	Outdated uint64 `toml:"outdated"`
	// TransactionTypes restricts what the chain's parser publishes. Empty
	// means everything the provider decodes.
	TransactionTypes []string `toml:"transaction_types"`
}

// Default mirrors production settings; a config file overrides per field.
func Default() Config {
	return Config{
		RabbitMQ: RabbitMQConfig{Prefetch: 32},
		Parser: ParserConfig{
			PollInterval: 2 * time.Second,
			AwaitBlocks:  2,
			RetryBudget:  3,
			BatchSize:    300,
		},
		Chains: make(map[string]ChainConfig),
	}
}

// Load reads the TOML file into the defaults and applies environment
// overrides. An empty path loads defaults and environment only.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		if err := toml.NewDecoder(f).Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if url := os.Getenv("POSTGRES_URL"); url != "" {
		cfg.Postgres.URL = url
	}
	if url := os.Getenv("RABBITMQ_URL"); url != "" {
		cfg.RabbitMQ.URL = url
	}
	if url := os.Getenv("PUSHER_URL"); url != "" {
		cfg.Pusher.URL = url
	}
	return cfg, nil
}

// Endpoints returns the configured chains and their RPC URLs, rejecting
// unknown chain names early.
func (c Config) Endpoints() (map[types.Chain]string, error) {
	endpoints := make(map[types.Chain]string, len(c.Chains))
	for name, chainCfg := range c.Chains {
		chainID, err := types.ParseChain(name)
		if err != nil {
			return nil, fmt.Errorf("config chain %q: %w", name, err)
		}
		if chainCfg.URL == "" {
			return nil, fmt.Errorf("config chain %q: missing url", name)
		}
		endpoints[chainID] = chainCfg.URL
	}
	return endpoints, nil
}

// ParserFor builds the parser settings for one chain, merging the global
// parser section with the chain's overrides.
func (c Config) ParserFor(chainID types.Chain) (pollInterval time.Duration, awaitBlocks uint64, retryBudget int, startBlock uint64, txTypes []types.TransactionType) {
	pollInterval = c.Parser.PollInterval
	awaitBlocks = c.Parser.AwaitBlocks
	retryBudget = c.Parser.RetryBudget
	if chainCfg, ok := c.Chains[chainID.String()]; ok {
		if chainCfg.PollSecs > 0 {
			pollInterval = time.Duration(chainCfg.PollSecs) * time.Second
		}
		if chainCfg.Await > 0 {
			awaitBlocks = chainCfg.Await
		}
		startBlock = chainCfg.StartBlock
		for _, t := range chainCfg.TransactionTypes {
			txTypes = append(txTypes, types.TransactionType(t))
		}
	}
	return pollInterval, awaitBlocks, retryBudget, startBlock, txTypes
}

// defaultOutdatedWindow applies to chains without an outdated override.
const defaultOutdatedWindow = time.Hour

// OutdatedFor returns the chain's maximum transaction age that still produces
// a notification. Older transactions are persisted silently.
func (c Config) OutdatedFor(chainID types.Chain) time.Duration {
	if chainCfg, ok := c.Chains[chainID.String()]; ok && chainCfg.Outdated > 0 {
		return time.Duration(chainCfg.Outdated) * time.Second
	}
	return defaultOutdatedWindow
}
