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

// Package types defines the domain model shared by the indexing pipeline:
// chains, assets, transactions, subscriptions and queue payloads.
package types

import "fmt"

// Chain identifies one supported blockchain.
type Chain string

const (
	Ethereum    Chain = "ethereum"
	SmartChain  Chain = "smartchain"
	Polygon     Chain = "polygon"
	Arbitrum    Chain = "arbitrum"
	Optimism    Chain = "optimism"
	Base        Chain = "base"
	AvalancheC  Chain = "avalanchec"
	OpBNB       Chain = "opbnb"
	Fantom      Chain = "fantom"
	Gnosis      Chain = "gnosis"
	Manta       Chain = "manta"
	Blast       Chain = "blast"
	ZkSync      Chain = "zksync"
	Linea       Chain = "linea"
	Mantle      Chain = "mantle"
	Celo        Chain = "celo"
	Hyperliquid Chain = "hyperliquid"
	Solana      Chain = "solana"
	Bitcoin     Chain = "bitcoin"
	Litecoin    Chain = "litecoin"
	Doge        Chain = "doge"
	Cosmos      Chain = "cosmos"
	Osmosis     Chain = "osmosis"
	Celestia    Chain = "celestia"
	Injective   Chain = "injective"
	Sei         Chain = "sei"
	Noble       Chain = "noble"
	Tron        Chain = "tron"
	Near        Chain = "near"
	Xrp         Chain = "xrp"
	Ton         Chain = "ton"
	Aptos       Chain = "aptos"
	Sui         Chain = "sui"
	Algorand    Chain = "algorand"
	Stellar     Chain = "stellar"
	Polkadot    Chain = "polkadot"
	Cardano     Chain = "cardano"
)

// ChainType groups chains that share one provider implementation.
type ChainType string

const (
	TypeEthereum ChainType = "ethereum"
	TypeSolana   ChainType = "solana"
	TypeUTXO     ChainType = "utxo"
	TypeCosmos   ChainType = "cosmos"
	TypeTron     ChainType = "tron"
	TypeNear     ChainType = "near"
	TypeXrp      ChainType = "xrp"
	TypeTon      ChainType = "ton"
	TypeAptos    ChainType = "aptos"
	TypeSui      ChainType = "sui"
	TypeAlgorand ChainType = "algorand"
	TypeStellar  ChainType = "stellar"
	TypePolkadot ChainType = "polkadot"
	TypeCardano  ChainType = "cardano"
)

var chainTypes = map[Chain]ChainType{
	Ethereum: TypeEthereum, SmartChain: TypeEthereum, Polygon: TypeEthereum,
	Arbitrum: TypeEthereum, Optimism: TypeEthereum, Base: TypeEthereum,
	AvalancheC: TypeEthereum, OpBNB: TypeEthereum, Fantom: TypeEthereum,
	Gnosis: TypeEthereum, Manta: TypeEthereum, Blast: TypeEthereum,
	ZkSync: TypeEthereum, Linea: TypeEthereum, Mantle: TypeEthereum,
	Celo: TypeEthereum, Hyperliquid: TypeEthereum,

	Solana: TypeSolana,

	Bitcoin: TypeUTXO, Litecoin: TypeUTXO, Doge: TypeUTXO,

	Cosmos: TypeCosmos, Osmosis: TypeCosmos, Celestia: TypeCosmos,
	Injective: TypeCosmos, Sei: TypeCosmos, Noble: TypeCosmos,

	Tron:     TypeTron,
	Near:     TypeNear,
	Xrp:      TypeXrp,
	Ton:      TypeTon,
	Aptos:    TypeAptos,
	Sui:      TypeSui,
	Algorand: TypeAlgorand,
	Stellar:  TypeStellar,
	Polkadot: TypePolkadot,
	Cardano:  TypeCardano,
}

// nativeAssets carries the metadata of each chain's native coin.
var nativeAssets = map[Chain]Asset{
	Ethereum:    {Name: "Ethereum", Symbol: "ETH", Decimals: 18},
	SmartChain:  {Name: "BNB", Symbol: "BNB", Decimals: 18},
	Polygon:     {Name: "Polygon", Symbol: "POL", Decimals: 18},
	Arbitrum:    {Name: "Ethereum", Symbol: "ETH", Decimals: 18},
	Optimism:    {Name: "Ethereum", Symbol: "ETH", Decimals: 18},
	Base:        {Name: "Ethereum", Symbol: "ETH", Decimals: 18},
	AvalancheC:  {Name: "Avalanche", Symbol: "AVAX", Decimals: 18},
	OpBNB:       {Name: "BNB", Symbol: "BNB", Decimals: 18},
	Fantom:      {Name: "Fantom", Symbol: "FTM", Decimals: 18},
	Gnosis:      {Name: "xDai", Symbol: "xDAI", Decimals: 18},
	Manta:       {Name: "Ethereum", Symbol: "ETH", Decimals: 18},
	Blast:       {Name: "Ethereum", Symbol: "ETH", Decimals: 18},
	ZkSync:      {Name: "Ethereum", Symbol: "ETH", Decimals: 18},
	Linea:       {Name: "Ethereum", Symbol: "ETH", Decimals: 18},
	Mantle:      {Name: "Mantle", Symbol: "MNT", Decimals: 18},
	Celo:        {Name: "Celo", Symbol: "CELO", Decimals: 18},
	Hyperliquid: {Name: "Hyperliquid", Symbol: "HYPE", Decimals: 18},
	Solana:      {Name: "Solana", Symbol: "SOL", Decimals: 9},
	Bitcoin:     {Name: "Bitcoin", Symbol: "BTC", Decimals: 8},
	Litecoin:    {Name: "Litecoin", Symbol: "LTC", Decimals: 8},
	Doge:        {Name: "Dogecoin", Symbol: "DOGE", Decimals: 8},
	Cosmos:      {Name: "Cosmos", Symbol: "ATOM", Decimals: 6},
	Osmosis:     {Name: "Osmosis", Symbol: "OSMO", Decimals: 6},
	Celestia:    {Name: "Celestia", Symbol: "TIA", Decimals: 6},
	Injective:   {Name: "Injective", Symbol: "INJ", Decimals: 18},
	Sei:         {Name: "Sei", Symbol: "SEI", Decimals: 6},
	Noble:       {Name: "USDC", Symbol: "USDC", Decimals: 6},
	Tron:        {Name: "TRON", Symbol: "TRX", Decimals: 6},
	Near:        {Name: "NEAR", Symbol: "NEAR", Decimals: 24},
	Xrp:         {Name: "XRP", Symbol: "XRP", Decimals: 6},
	Ton:         {Name: "TON", Symbol: "TON", Decimals: 9},
	Aptos:       {Name: "Aptos", Symbol: "APT", Decimals: 8},
	Sui:         {Name: "Sui", Symbol: "SUI", Decimals: 9},
	Algorand:    {Name: "Algorand", Symbol: "ALGO", Decimals: 6},
	Stellar:     {Name: "Stellar", Symbol: "XLM", Decimals: 7},
	Polkadot:    {Name: "Polkadot", Symbol: "DOT", Decimals: 10},
	Cardano:     {Name: "Cardano", Symbol: "ADA", Decimals: 6},
}

// AllChains returns every known chain in a stable order.
func AllChains() []Chain {
	return []Chain{
		Ethereum, SmartChain, Polygon, Arbitrum, Optimism, Base, AvalancheC,
		OpBNB, Fantom, Gnosis, Manta, Blast, ZkSync, Linea, Mantle, Celo,
		Hyperliquid,
		Solana, Bitcoin, Litecoin, Doge,
		Cosmos, Osmosis, Celestia, Injective, Sei, Noble,
		Tron, Near, Xrp, Ton, Aptos, Sui, Algorand, Stellar, Polkadot, Cardano,
	}
}

// ParseChain validates a chain identifier coming off the wire.
func ParseChain(s string) (Chain, error) {
	c := Chain(s)
	if _, ok := chainTypes[c]; !ok {
		return "", fmt.Errorf("unknown chain %q", s)
	}
	return c, nil
}

// Type returns the provider family of the chain.
func (c Chain) Type() ChainType {
	return chainTypes[c]
}

func (c Chain) String() string {
	return string(c)
}

// NativeAsset returns the metadata of the chain's native coin.
func (c Chain) NativeAsset() Asset {
	a := nativeAssets[c]
	a.ID = AssetID{Chain: c}
	a.Type = AssetTypeNative
	return a
}
