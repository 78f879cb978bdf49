package coder

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/pool-sniper/internal/types"
)

// Order-book account tail. A market account shorter than this is a
// pool that is not tradeable yet, not a decode failure.
const (
	marketEventQueueOffset = 245
	marketBidsOffset       = 277
	marketAsksOffset       = 309
	MarketMinLen           = 341
)

// MarketStateLayoutV3 is the full serum market account, used for the
// vault fields and the vault-signer nonce when the account carries the
// complete layout.
type MarketStateLayoutV3 struct {
	Unused1                [5]byte
	Unused2                [8]byte
	OwnAddress             solana.PublicKey
	VaultSignerNonce       uint64
	BaseMint               solana.PublicKey
	QuoteMint              solana.PublicKey
	BaseVault              solana.PublicKey
	BaseDepositsTotal      uint64
	BaseFeesAccrued        uint64
	QuoteVault             solana.PublicKey
	QuoteDepositsTotal     uint64
	QuoteFeesAccrued       uint64
	QuoteDustThreshold     uint64
	RequestQueue           solana.PublicKey
	EventQueue             solana.PublicKey
	Bids                   solana.PublicKey
	Asks                   solana.PublicKey
	BaseLotSize            uint64
	QuoteLotSize           uint64
	FeeRateBps             uint64
	ReferrerRebatesAccrued uint64
	Unused3                [7]byte
}

// DecodeMarketSideAccounts reads the event-queue, bids and asks keys
// from the fixed tail of the market account.
func DecodeMarketSideAccounts(data []byte) (types.MarketSideAccounts, error) {
	if len(data) < MarketMinLen {
		return types.MarketSideAccounts{}, fmt.Errorf("%w: market account is %d bytes, need %d", types.ErrNotFound, len(data), MarketMinLen)
	}

	return types.MarketSideAccounts{
		EventQueue: readKey(data, marketEventQueueOffset),
		Bids:       readKey(data, marketBidsOffset),
		Asks:       readKey(data, marketAsksOffset),
	}, nil
}

// DecodeMarketState decodes the complete layout. Only called after the
// tail check passed; accounts shorter than the full struct report a
// decode failure so the caller can fall back to derived addresses.
func DecodeMarketState(data []byte) (*MarketStateLayoutV3, error) {
	var state MarketStateLayoutV3

	if len(data) < binary.Size(state) {
		return nil, fmt.Errorf("%w: market account too short for full layout", types.ErrDecode)
	}

	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &state); err != nil {
		return nil, fmt.Errorf("%w: market layout: %v", types.ErrDecode, err)
	}

	return &state, nil
}
