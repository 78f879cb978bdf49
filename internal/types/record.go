package types

import (
	"github.com/gagliardetto/solana-go"
)

// PoolGenesisRecord is the canonical description of a freshly created
// Raydium pool, reconstructed from its initialize2 transaction.
// Immutable once persisted: built by the genesis pipeline, written to
// MySQL, then only ever read back.
//
// Orientation is canonical: when wrapped SOL is one of the two mints it
// is always the quote side (mint, vault and initial amount swapped
// together by the economics pass).
type PoolGenesisRecord struct {
	ID               int64            `json:"id"`
	ProgramID        solana.PublicKey `json:"programId"`
	AmmID            solana.PublicKey `json:"ammId"`
	LpMint           solana.PublicKey `json:"lpMint"`
	Authority        solana.PublicKey `json:"authority"`
	OpenOrders       solana.PublicKey `json:"openOrders"`
	BaseMint         solana.PublicKey `json:"baseMint"`
	QuoteMint        solana.PublicKey `json:"quoteMint"`
	BaseVault        solana.PublicKey `json:"baseVault"`
	QuoteVault       solana.PublicKey `json:"quoteVault"`
	TargetOrders     solana.PublicKey `json:"targetOrders"`
	WithdrawQueue    solana.PublicKey `json:"withdrawQueue"`
	LpVault          solana.PublicKey `json:"lpVault"`
	MarketProgramID  solana.PublicKey `json:"marketProgramId"`
	MarketID         solana.PublicKey `json:"marketId"`
	MarketAuthority  solana.PublicKey `json:"marketAuthority"`
	MarketBaseVault  solana.PublicKey `json:"marketBaseVault"`
	MarketQuoteVault solana.PublicKey `json:"marketQuoteVault"`
	MarketEventQueue solana.PublicKey `json:"marketEventQueue"`
	MarketBids       solana.PublicKey `json:"marketBids"`
	MarketAsks       solana.PublicKey `json:"marketAsks"`

	BaseDecimals  int `json:"baseDecimals"`
	QuoteDecimals int `json:"quoteDecimals"`
	LpDecimals    int `json:"lpDecimals"`

	// Raw on-chain reserve amounts at genesis, canonical orientation.
	InitBaseAmount  uint64 `json:"initBaseAmount"`
	InitQuoteAmount uint64 `json:"initQuoteAmount"`

	SwapFeeNumerator   uint64 `json:"swapFeeNumerator"`
	SwapFeeDenominator uint64 `json:"swapFeeDenominator"`

	Version       int    `json:"version"`
	MarketVersion int    `json:"marketVersion"`
	Status        uint64 `json:"status"`
	OpenTime      uint64 `json:"openTime"`

	// IsNativeQuote is set when the canonical quote mint is wrapped
	// SOL; the trade executor wraps/unwraps around the swap.
	IsNativeQuote bool `json:"isNativeQuote"`

	// K is the decimal-normalized constant product of the initial
	// reserves, stored as a decimal string (arbitrary precision).
	K string `json:"k"`

	// LaunchPrice is quote-per-base at genesis. Display and trigger
	// quantity only, never a settlement amount.
	LaunchPrice float64 `json:"launchPrice"`

	// DecimalFactor is quoteDecimals minus baseDecimals, the exponent
	// used for lamport-to-human conversions.
	DecimalFactor int `json:"decimalFactor"`
}

// MarketSideAccounts are the three order-book accounts read from the
// fixed tail of the market account.
type MarketSideAccounts struct {
	EventQueue solana.PublicKey `json:"eventQueue"`
	Bids       solana.PublicKey `json:"bids"`
	Asks       solana.PublicKey `json:"asks"`
}
