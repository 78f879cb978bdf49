package genesis

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/pool-sniper/internal/coder"
	"github.com/iqbalbaharum/pool-sniper/internal/rpc"
	"github.com/iqbalbaharum/pool-sniper/internal/types"
)

// Fetcher pulls the on-chain account state the pipeline needs and
// hands it to the layout decoders.
type Fetcher struct {
	rpc *rpc.Client
}

func NewFetcher(client *rpc.Client) *Fetcher {
	return &Fetcher{rpc: client}
}

func (f *Fetcher) FetchPoolState(ctx context.Context, ammID solana.PublicKey) (*coder.PoolState, error) {
	data, err := f.rpc.GetAccountData(ctx, ammID)
	if err != nil {
		return nil, fmt.Errorf("pool account %s: %w", ammID, err)
	}

	return coder.DecodePoolState(data)
}

// FetchMarket returns the order-book tail and, when the account
// carries the full layout, the complete market state. A market too
// short for the tail means the pool is not tradeable yet.
func (f *Fetcher) FetchMarket(ctx context.Context, marketID solana.PublicKey) (types.MarketSideAccounts, *coder.MarketStateLayoutV3, error) {
	data, err := f.rpc.GetAccountData(ctx, marketID)
	if err != nil {
		return types.MarketSideAccounts{}, nil, fmt.Errorf("market account %s: %w", marketID, err)
	}

	tail, err := coder.DecodeMarketSideAccounts(data)
	if err != nil {
		return types.MarketSideAccounts{}, nil, err
	}

	// The full layout is best-effort: vault fields fall back to zero
	// and get caught by trade-time validation if ever needed.
	state, err := coder.DecodeMarketState(data)
	if err != nil {
		return tail, nil, nil
	}

	return tail, state, nil
}

func (f *Fetcher) FetchDecimals(ctx context.Context, mint solana.PublicKey) (int, error) {
	supply, err := f.rpc.GetTokenSupply(ctx, mint)
	if err != nil {
		return 0, fmt.Errorf("token supply %s: %w", mint, err)
	}
	return supply.Decimals, nil
}
