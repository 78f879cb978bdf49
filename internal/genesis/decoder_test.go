package genesis

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/pool-sniper/internal/coder"
	"github.com/iqbalbaharum/pool-sniper/internal/config"
	"github.com/iqbalbaharum/pool-sniper/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRecordRejectsIdenticalMints(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	state := &coder.PoolState{
		BaseMint:  mint,
		QuoteMint: mint,
	}
	accounts := &GenesisAccounts{
		AmmID:      solana.NewWallet().PublicKey(),
		Authority:  config.RAYDIUM_AUTHORITY,
		OpenOrders: solana.NewWallet().PublicKey(),
	}

	d := NewDecoder(config.RAYDIUM_AMM_V4, nil, nil, nil)

	_, err := d.buildRecord(context.Background(), accounts, state, coder.Initialize2{}, types.MarketSideAccounts{}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrValidation))
}
