package coder

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/pool-sniper/internal/types"
)

// Field offsets of the Raydium AMM v4 liquidity state account. The
// u64 block comes first, then the u128 swap counters, then the pubkey
// block.
const (
	liquidityStatusOffset         = 0
	liquidityNonceOffset          = 8
	liquidityBaseDecimalOffset    = 32
	liquidityQuoteDecimalOffset   = 40
	liquidityStateOffset          = 48
	liquidityResetFlagOffset      = 56
	liquidityMinSizeOffset        = 64
	liquidityDepthOffset          = 24
	liquidityWithdrawFeeNumOffset = 128
	liquidityWithdrawFeeDenOffset = 136
	liquidityTradeFeeNumOffset    = 144
	liquidityTradeFeeDenOffset    = 152
	liquidityPnlNumOffset         = 160
	liquidityPnlDenOffset         = 168
	liquiditySwapFeeNumOffset     = 176
	liquiditySwapFeeDenOffset     = 184
	liquidityOpenTimeOffset       = 224

	liquidityBaseVaultOffset     = 336
	liquidityQuoteVaultOffset    = 368
	liquidityBaseMintOffset      = 400
	liquidityQuoteMintOffset     = 432
	liquidityLpMintOffset        = 464
	liquidityOpenOrdersOffset    = 496
	liquidityMarketIdOffset      = 528
	liquidityMarketProgramOffset = 560
	liquidityTargetOrdersOffset  = 592
	liquidityWithdrawQueueOffset = 624
	liquidityLpVaultOffset       = 656
	liquidityOwnerOffset         = 688

	liquidityAddressSectionEnd = 720
)

// Fallbacks for descriptive fields when the account predates a layout
// revision or a field reads back unusable. Address fields never fall
// back.
const (
	defaultStatus                 = 6
	defaultState                  = 1
	defaultResetFlag              = 0
	defaultMinSize                = 1
	defaultSwapFeeNumerator       = 25
	defaultSwapFeeDenominator     = 10000
	defaultOwnerFeeNumerator      = 5
	defaultOwnerFeeDenominator    = 10000
	defaultWithdrawFeeNumerator   = 0
	defaultWithdrawFeeDenominator = 10000
	defaultPnlNumerator           = 0
	defaultPnlDenominator         = 1
)

// PoolState carries the named fields the genesis pipeline depends on.
// Degraded is set when any descriptive field fell back to a default.
type PoolState struct {
	Status       uint64
	Nonce        uint64
	State        uint64
	ResetFlag    uint64
	MinSize      uint64
	Depth        uint64
	BaseDecimal  uint64
	QuoteDecimal uint64
	OpenTime     uint64

	SwapFeeNumerator       uint64
	SwapFeeDenominator     uint64
	TradeFeeNumerator      uint64
	TradeFeeDenominator    uint64
	WithdrawFeeNumerator   uint64
	WithdrawFeeDenominator uint64
	PnlNumerator           uint64
	PnlDenominator         uint64

	BaseVault       solana.PublicKey
	QuoteVault      solana.PublicKey
	BaseMint        solana.PublicKey
	QuoteMint       solana.PublicKey
	LpMint          solana.PublicKey
	OpenOrders      solana.PublicKey
	MarketId        solana.PublicKey
	MarketProgramId solana.PublicKey
	TargetOrders    solana.PublicKey
	WithdrawQueue   solana.PublicKey
	LpVault         solana.PublicKey
	Owner           solana.PublicKey

	Degraded bool
}

// DecodePoolState decodes a liquidity state account. Address-bearing
// fields are mandatory: an account too short for the pubkey block is a
// decode failure. Descriptive fields degrade to documented defaults
// instead, so a partially revised layout still yields a usable state.
func DecodePoolState(data []byte) (*PoolState, error) {
	if len(data) < liquidityAddressSectionEnd {
		return nil, fmt.Errorf("%w: liquidity state is %d bytes, need %d", types.ErrDecode, len(data), liquidityAddressSectionEnd)
	}

	s := &PoolState{
		BaseVault:       readKey(data, liquidityBaseVaultOffset),
		QuoteVault:      readKey(data, liquidityQuoteVaultOffset),
		BaseMint:        readKey(data, liquidityBaseMintOffset),
		QuoteMint:       readKey(data, liquidityQuoteMintOffset),
		LpMint:          readKey(data, liquidityLpMintOffset),
		OpenOrders:      readKey(data, liquidityOpenOrdersOffset),
		MarketId:        readKey(data, liquidityMarketIdOffset),
		MarketProgramId: readKey(data, liquidityMarketProgramOffset),
		TargetOrders:    readKey(data, liquidityTargetOrdersOffset),
		WithdrawQueue:   readKey(data, liquidityWithdrawQueueOffset),
		LpVault:         readKey(data, liquidityLpVaultOffset),
		Owner:           readKey(data, liquidityOwnerOffset),
	}

	if s.WithdrawQueue.IsZero() && s.LpVault.IsZero() && s.BaseMint.IsZero() {
		return nil, fmt.Errorf("%w: liquidity state address section is empty", types.ErrDecode)
	}

	s.Nonce = s.readU64(data, liquidityNonceOffset, 0)
	s.Depth = s.readU64(data, liquidityDepthOffset, 0)
	s.BaseDecimal = s.readU64(data, liquidityBaseDecimalOffset, 0)
	s.QuoteDecimal = s.readU64(data, liquidityQuoteDecimalOffset, 0)
	s.OpenTime = s.readU64(data, liquidityOpenTimeOffset, 0)

	s.Status = s.readU64(data, liquidityStatusOffset, defaultStatus)
	s.State = s.readU64(data, liquidityStateOffset, defaultState)
	s.ResetFlag = s.readU64(data, liquidityResetFlagOffset, defaultResetFlag)
	s.MinSize = s.readU64(data, liquidityMinSizeOffset, defaultMinSize)

	s.SwapFeeNumerator, s.SwapFeeDenominator = s.readRatio(data,
		liquiditySwapFeeNumOffset, liquiditySwapFeeDenOffset,
		defaultSwapFeeNumerator, defaultSwapFeeDenominator)
	s.TradeFeeNumerator, s.TradeFeeDenominator = s.readRatio(data,
		liquidityTradeFeeNumOffset, liquidityTradeFeeDenOffset,
		defaultOwnerFeeNumerator, defaultOwnerFeeDenominator)
	s.WithdrawFeeNumerator, s.WithdrawFeeDenominator = s.readRatio(data,
		liquidityWithdrawFeeNumOffset, liquidityWithdrawFeeDenOffset,
		defaultWithdrawFeeNumerator, defaultWithdrawFeeDenominator)
	s.PnlNumerator, s.PnlDenominator = s.readRatio(data,
		liquidityPnlNumOffset, liquidityPnlDenOffset,
		defaultPnlNumerator, defaultPnlDenominator)

	if s.Status == 0 {
		s.Status = defaultStatus
		s.Degraded = true
	}
	if s.MinSize == 0 {
		s.MinSize = defaultMinSize
		s.Degraded = true
	}

	return s, nil
}

func (s *PoolState) readU64(data []byte, off int, def uint64) uint64 {
	if off+8 > len(data) {
		s.Degraded = true
		return def
	}
	return binary.LittleEndian.Uint64(data[off:])
}

// readRatio treats a zero denominator as an unreadable pair and
// substitutes the documented default for both sides.
func (s *PoolState) readRatio(data []byte, numOff, denOff int, defNum, defDen uint64) (uint64, uint64) {
	if numOff+8 > len(data) || denOff+8 > len(data) {
		s.Degraded = true
		return defNum, defDen
	}
	num := binary.LittleEndian.Uint64(data[numOff:])
	den := binary.LittleEndian.Uint64(data[denOff:])
	if den == 0 {
		s.Degraded = true
		return defNum, defDen
	}
	return num, den
}

func readKey(data []byte, off int) solana.PublicKey {
	return solana.PublicKeyFromBytes(data[off : off+32])
}
