package genesis

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

var ammAuthoritySeed = []byte("amm authority")

// DeriveVaultAuthority returns the program authority that owns the
// pool vaults. Deterministic given the program id; used both for the
// record and as a cross-check against the instruction's authority
// slot.
func DeriveVaultAuthority(programID solana.PublicKey) (solana.PublicKey, error) {
	address, _, err := solana.FindProgramAddress([][]byte{ammAuthoritySeed}, programID)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return address, nil
}

// DeriveUserTokenAccount returns the owner's associated token account
// for a mint.
func DeriveUserTokenAccount(owner solana.PublicKey, mint solana.PublicKey) (solana.PublicKey, error) {
	address, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return address, nil
}

// DeriveMarketAuthority computes the market's vault signer from the
// market id and the nonce stored in the market account.
func DeriveMarketAuthority(marketProgram solana.PublicKey, marketID solana.PublicKey, vaultSignerNonce uint64) (solana.PublicKey, error) {
	nonce := make([]byte, 8)
	binary.LittleEndian.PutUint64(nonce, vaultSignerNonce)

	return solana.CreateProgramAddress([][]byte{marketID.Bytes(), nonce}, marketProgram)
}
