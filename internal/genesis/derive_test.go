package genesis

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/pool-sniper/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The vault authority for the mainnet AMM program is a fixed, publicly
// known address.
func TestDeriveVaultAuthority(t *testing.T) {
	authority, err := DeriveVaultAuthority(config.RAYDIUM_AMM_V4)
	require.NoError(t, err)
	assert.Equal(t, config.RAYDIUM_AUTHORITY, authority)
}

func TestDeriveUserTokenAccount(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	mintA := solana.NewWallet().PublicKey()
	mintB := solana.NewWallet().PublicKey()

	accountA, err := DeriveUserTokenAccount(owner, mintA)
	require.NoError(t, err)
	accountA2, err := DeriveUserTokenAccount(owner, mintA)
	require.NoError(t, err)
	accountB, err := DeriveUserTokenAccount(owner, mintB)
	require.NoError(t, err)

	assert.Equal(t, accountA, accountA2)
	assert.NotEqual(t, accountA, accountB)
	assert.False(t, accountA.IsZero())
}

func TestDeriveMarketAuthority(t *testing.T) {
	marketID := solana.NewWallet().PublicKey()

	// Not every nonce yields an off-curve address; scan like the market
	// initializer does and check the first hit is stable.
	var nonce uint64
	var derived solana.PublicKey
	var err error
	for nonce = 0; nonce < 256; nonce++ {
		derived, err = DeriveMarketAuthority(config.OPENBOOK_ID, marketID, nonce)
		if err == nil {
			break
		}
	}
	require.NoError(t, err)

	again, err := DeriveMarketAuthority(config.OPENBOOK_ID, marketID, nonce)
	require.NoError(t, err)
	assert.Equal(t, derived, again)
	assert.False(t, derived.IsZero())
}
