package genesis

import (
	"math"
	"math/big"

	"github.com/iqbalbaharum/pool-sniper/internal/config"
	"github.com/iqbalbaharum/pool-sniper/internal/types"
)

// Canonicalize swaps the base and quote sides of a record, pairwise
// over (mint, vault, initial amount, decimals), when the raw base mint
// is wrapped SOL. A pure swap: applying it twice restores the input,
// and a record already in canonical orientation is left untouched.
func Canonicalize(rec *types.PoolGenesisRecord) {
	if !rec.BaseMint.Equals(config.WRAPPED_SOL) {
		return
	}

	rec.BaseMint, rec.QuoteMint = rec.QuoteMint, rec.BaseMint
	rec.BaseVault, rec.QuoteVault = rec.QuoteVault, rec.BaseVault
	rec.InitBaseAmount, rec.InitQuoteAmount = rec.InitQuoteAmount, rec.InitBaseAmount
	rec.BaseDecimals, rec.QuoteDecimals = rec.QuoteDecimals, rec.BaseDecimals
}

// ConstantProduct computes K = floor((initQuote * initBase) /
// 10^(quoteDecimals+baseDecimals)) with integer arithmetic. Raw
// reserves multiply to magnitudes beyond float precision, so the
// product is never routed through floating point.
func ConstantProduct(initBase, initQuote uint64, baseDecimals, quoteDecimals int) *big.Int {
	product := new(big.Int).Mul(
		new(big.Int).SetUint64(initQuote),
		new(big.Int).SetUint64(initBase),
	)

	scale := new(big.Int).Exp(
		big.NewInt(10),
		big.NewInt(int64(quoteDecimals+baseDecimals)),
		nil,
	)

	return product.Quo(product, scale)
}

// LaunchPrice computes V, the quote-per-base rate at genesis. A
// trigger heuristic, so float rounding is acceptable here.
func LaunchPrice(initBase, initQuote uint64, baseDecimals, quoteDecimals int) float64 {
	base := float64(initBase) / math.Pow10(baseDecimals)
	if base == 0 {
		return 0
	}
	quote := float64(initQuote) / math.Pow10(quoteDecimals)
	return quote / base
}

// ApplyEconomics canonicalizes the record's orientation and fills in
// the derived quantities.
func ApplyEconomics(rec *types.PoolGenesisRecord) {
	Canonicalize(rec)

	rec.K = ConstantProduct(rec.InitBaseAmount, rec.InitQuoteAmount, rec.BaseDecimals, rec.QuoteDecimals).String()
	rec.LaunchPrice = LaunchPrice(rec.InitBaseAmount, rec.InitQuoteAmount, rec.BaseDecimals, rec.QuoteDecimals)
	rec.DecimalFactor = rec.QuoteDecimals - rec.BaseDecimals
	rec.IsNativeQuote = rec.QuoteMint.Equals(config.WRAPPED_SOL)
}
