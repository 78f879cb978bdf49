package coder

import (
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/pool-sniper/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMarketSideAccounts(t *testing.T) {
	eventQueue := solana.NewWallet().PublicKey()
	bids := solana.NewWallet().PublicKey()
	asks := solana.NewWallet().PublicKey()

	data := make([]byte, MarketMinLen)
	copy(data[marketEventQueueOffset:], eventQueue.Bytes())
	copy(data[marketBidsOffset:], bids.Bytes())
	copy(data[marketAsksOffset:], asks.Bytes())

	side, err := DecodeMarketSideAccounts(data)
	require.NoError(t, err)

	assert.Equal(t, eventQueue, side.EventQueue)
	assert.Equal(t, bids, side.Bids)
	assert.Equal(t, asks, side.Asks)
}

// A short market account means the order book does not exist yet, so
// the caller should treat the pool as not-yet-tradeable rather than
// malformed.
func TestDecodeMarketSideAccountsTooShort(t *testing.T) {
	_, err := DecodeMarketSideAccounts(make([]byte, MarketMinLen-1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrNotFound))
	assert.False(t, errors.Is(err, types.ErrDecode))
}

func TestDecodeMarketStateTooShortForFullLayout(t *testing.T) {
	_, err := DecodeMarketState(make([]byte, MarketMinLen))
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrDecode))
}
