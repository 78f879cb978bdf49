package coder

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/pool-sniper/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type liquidityAccount []byte

func newLiquidityAccount() liquidityAccount {
	return make(liquidityAccount, 752)
}

func (a liquidityAccount) putU64(off int, v uint64) liquidityAccount {
	binary.LittleEndian.PutUint64(a[off:], v)
	return a
}

func (a liquidityAccount) putKey(off int, key solana.PublicKey) liquidityAccount {
	copy(a[off:off+32], key.Bytes())
	return a
}

func TestDecodePoolState(t *testing.T) {
	baseMint := solana.NewWallet().PublicKey()
	quoteMint := solana.NewWallet().PublicKey()
	lpMint := solana.NewWallet().PublicKey()
	marketId := solana.NewWallet().PublicKey()

	data := newLiquidityAccount().
		putU64(liquidityStatusOffset, 6).
		putU64(liquidityNonceOffset, 253).
		putU64(liquidityBaseDecimalOffset, 6).
		putU64(liquidityQuoteDecimalOffset, 9).
		putU64(liquidityStateOffset, 1).
		putU64(liquidityMinSizeOffset, 1).
		putU64(liquiditySwapFeeNumOffset, 25).
		putU64(liquiditySwapFeeDenOffset, 10000).
		putU64(liquidityTradeFeeNumOffset, 5).
		putU64(liquidityTradeFeeDenOffset, 10000).
		putU64(liquidityWithdrawFeeDenOffset, 10000).
		putU64(liquidityPnlDenOffset, 1).
		putU64(liquidityOpenTimeOffset, 1700000000).
		putKey(liquidityBaseMintOffset, baseMint).
		putKey(liquidityQuoteMintOffset, quoteMint).
		putKey(liquidityLpMintOffset, lpMint).
		putKey(liquidityMarketIdOffset, marketId)

	state, err := DecodePoolState(data)
	require.NoError(t, err)

	assert.Equal(t, uint64(6), state.Status)
	assert.Equal(t, uint64(253), state.Nonce)
	assert.Equal(t, uint64(6), state.BaseDecimal)
	assert.Equal(t, uint64(9), state.QuoteDecimal)
	assert.Equal(t, uint64(1700000000), state.OpenTime)
	assert.Equal(t, uint64(25), state.SwapFeeNumerator)
	assert.Equal(t, uint64(10000), state.SwapFeeDenominator)
	assert.Equal(t, uint64(0), state.WithdrawFeeNumerator)
	assert.Equal(t, uint64(10000), state.WithdrawFeeDenominator)
	assert.Equal(t, baseMint, state.BaseMint)
	assert.Equal(t, quoteMint, state.QuoteMint)
	assert.Equal(t, lpMint, state.LpMint)
	assert.Equal(t, marketId, state.MarketId)
	assert.False(t, state.Degraded)
}

func TestDecodePoolStateTooShort(t *testing.T) {
	_, err := DecodePoolState(make([]byte, liquidityAddressSectionEnd-1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrDecode))
}

func TestDecodePoolStateEmptyAddressSection(t *testing.T) {
	_, err := DecodePoolState(newLiquidityAccount())
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrDecode))
}

// A zero fee denominator reads back as the documented default and
// marks the state degraded instead of failing the whole decode.
func TestDecodePoolStateDefaultsOnZeroRatio(t *testing.T) {
	data := newLiquidityAccount().
		putU64(liquidityStatusOffset, 6).
		putU64(liquidityMinSizeOffset, 1).
		putU64(liquidityPnlDenOffset, 1).
		putKey(liquidityBaseMintOffset, solana.NewWallet().PublicKey())

	state, err := DecodePoolState(data)
	require.NoError(t, err)

	assert.Equal(t, uint64(defaultSwapFeeNumerator), state.SwapFeeNumerator)
	assert.Equal(t, uint64(defaultSwapFeeDenominator), state.SwapFeeDenominator)
	assert.Equal(t, uint64(defaultOwnerFeeNumerator), state.TradeFeeNumerator)
	assert.Equal(t, uint64(defaultOwnerFeeDenominator), state.TradeFeeDenominator)
	assert.Equal(t, uint64(defaultWithdrawFeeNumerator), state.WithdrawFeeNumerator)
	assert.Equal(t, uint64(defaultWithdrawFeeDenominator), state.WithdrawFeeDenominator)
	assert.True(t, state.Degraded)
}

func TestDecodePoolStateDefaultsOnZeroStatus(t *testing.T) {
	data := newLiquidityAccount().
		putU64(liquiditySwapFeeNumOffset, 25).
		putU64(liquiditySwapFeeDenOffset, 10000).
		putU64(liquidityTradeFeeDenOffset, 10000).
		putU64(liquidityPnlDenOffset, 1).
		putKey(liquidityLpVaultOffset, solana.NewWallet().PublicKey())

	state, err := DecodePoolState(data)
	require.NoError(t, err)

	assert.Equal(t, uint64(defaultStatus), state.Status)
	assert.Equal(t, uint64(defaultMinSize), state.MinSize)
	assert.True(t, state.Degraded)
}
