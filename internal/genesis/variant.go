package genesis

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/pool-sniper/internal/config"
	"github.com/iqbalbaharum/pool-sniper/internal/types"
)

// The initialize2 account list comes in two known layouts. Some pool
// variants keep the clock sysvar at slot 5, pushing the authority and
// open-orders slots one down. The variant is resolved once into a tag
// and extraction goes through the index table for that tag; everything
// else in the record comes from the pool-state fetch, not the
// instruction.
type layoutVariant int

const (
	layoutStandard layoutVariant = iota
	layoutWithClock
)

func (v layoutVariant) String() string {
	if v == layoutWithClock {
		return "with-clock"
	}
	return "standard"
}

type indexMap struct {
	Amm        int
	Authority  int
	OpenOrders int
}

var layoutIndexes = map[layoutVariant]indexMap{
	layoutStandard:  {Amm: 4, Authority: 5, OpenOrders: 6},
	layoutWithClock: {Amm: 4, Authority: 6, OpenOrders: 7},
}

// GenesisAccounts is the canonical instruction-sourced account set of
// a pool creation, after variant resolution.
type GenesisAccounts struct {
	Variant    layoutVariant
	AmmID      solana.PublicKey
	Authority  solana.PublicKey
	OpenOrders solana.PublicKey
}

// ResolveGenesisAccounts maps the instruction's account-index list
// onto the transaction's key table, picks the layout variant, and
// extracts the canonical account set. Any index out of bounds is a
// malformed instruction.
func ResolveGenesisAccounts(accountKeys []string, ixAccounts []int) (*GenesisAccounts, error) {
	resolved := make([]solana.PublicKey, len(ixAccounts))
	for i, idx := range ixAccounts {
		if idx < 0 || idx >= len(accountKeys) {
			return nil, fmt.Errorf("%w: account index %d outside key table of %d", types.ErrDecode, idx, len(accountKeys))
		}
		key, err := solana.PublicKeyFromBase58(accountKeys[idx])
		if err != nil {
			return nil, fmt.Errorf("%w: account key %q: %v", types.ErrDecode, accountKeys[idx], err)
		}
		resolved[i] = key
	}

	variant := layoutStandard
	if len(resolved) > 5 && resolved[5].Equals(config.CLOCK_SYSVAR) {
		variant = layoutWithClock
	}

	idx := layoutIndexes[variant]
	pick := func(slot int) (solana.PublicKey, error) {
		if slot >= len(resolved) {
			return solana.PublicKey{}, fmt.Errorf("%w: %s layout needs slot %d, instruction has %d accounts", types.ErrDecode, variant, slot, len(resolved))
		}
		return resolved[slot], nil
	}

	out := &GenesisAccounts{Variant: variant}
	var err error
	if out.AmmID, err = pick(idx.Amm); err != nil {
		return nil, err
	}
	if out.Authority, err = pick(idx.Authority); err != nil {
		return nil, err
	}
	if out.OpenOrders, err = pick(idx.OpenOrders); err != nil {
		return nil, err
	}

	return out, nil
}
