package genesis

import (
	"context"
	"fmt"
	"log"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/pool-sniper/internal/coder"
	"github.com/iqbalbaharum/pool-sniper/internal/config"
	"github.com/iqbalbaharum/pool-sniper/internal/rpc"
	"github.com/iqbalbaharum/pool-sniper/internal/types"
	"github.com/mr-tron/base58"
)

// RecordStore is the durable store bridging the decode and trade
// phases.
type RecordStore interface {
	Insert(ctx context.Context, rec *types.PoolGenesisRecord) (int64, error)
}

// RecordCache is the hot copy consulted before the durable store.
type RecordCache interface {
	Set(ctx context.Context, rec *types.PoolGenesisRecord) error
}

// Decoder runs the full genesis pipeline: isolate the initialize2
// instruction, resolve the account layout, fetch and decode the pool
// and market accounts, derive the remaining addresses, compute the
// economics, and persist the record.
type Decoder struct {
	programID solana.PublicKey
	rpc       *rpc.Client
	fetcher   *Fetcher
	store     RecordStore
	cache     RecordCache
}

func NewDecoder(programID solana.PublicKey, client *rpc.Client, store RecordStore, cache RecordCache) *Decoder {
	return &Decoder{
		programID: programID,
		rpc:       client,
		fetcher:   NewFetcher(client),
		store:     store,
		cache:     cache,
	}
}

// ProcessSignature decodes the pool created by the given transaction.
// Returns (nil, nil) when the transaction carries no genesis
// instruction; most transactions on the program are unrelated. A nil
// error with a non-nil record means the record was persisted.
func (d *Decoder) ProcessSignature(ctx context.Context, signature string) (*types.PoolGenesisRecord, error) {
	tx, err := d.rpc.GetTransaction(ctx, signature)
	if err != nil {
		return nil, err
	}

	message := tx.Transaction.Message

	var genesisIx *rpc.TransactionInstruction
	var payload []byte
	for i, ins := range message.Instructions {
		if ins.ProgramIdIndex < 0 || ins.ProgramIdIndex >= len(message.AccountKeys) {
			continue
		}
		if message.AccountKeys[ins.ProgramIdIndex] != d.programID.String() {
			continue
		}
		data, err := base58.Decode(ins.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: instruction data: %v", types.ErrDecode, err)
		}
		if coder.IsInitialize2(data) {
			genesisIx = &message.Instructions[i]
			payload = data
			break
		}
	}

	if genesisIx == nil {
		return nil, nil
	}

	init, err := coder.DecodeInitialize2(payload)
	if err != nil {
		return nil, err
	}

	accounts, err := ResolveGenesisAccounts(message.AccountKeys, genesisIx.Accounts)
	if err != nil {
		return nil, err
	}

	state, err := d.fetcher.FetchPoolState(ctx, accounts.AmmID)
	if err != nil {
		return nil, err
	}
	if state.Degraded {
		log.Printf("%s | pool state decoded degraded, defaults substituted", accounts.AmmID)
	}

	tail, marketState, err := d.fetcher.FetchMarket(ctx, state.MarketId)
	if err != nil {
		return nil, err
	}

	rec, err := d.buildRecord(ctx, accounts, state, init, tail, marketState)
	if err != nil {
		return nil, err
	}

	id, err := d.store.Insert(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrStorage, err)
	}
	rec.ID = id

	if d.cache != nil {
		if err := d.cache.Set(ctx, rec); err != nil {
			log.Printf("%s | record cache write failed: %v", rec.AmmID, err)
		}
	}

	return rec, nil
}

func (d *Decoder) buildRecord(
	ctx context.Context,
	accounts *GenesisAccounts,
	state *coder.PoolState,
	init coder.Initialize2,
	tail types.MarketSideAccounts,
	marketState *coder.MarketStateLayoutV3,
) (*types.PoolGenesisRecord, error) {
	// Equal mints cannot be oriented by canonicalization and describe
	// no real pool; refuse to persist such a record.
	if state.BaseMint.Equals(state.QuoteMint) {
		return nil, fmt.Errorf("%w: pool %s has identical base and quote mints %s", types.ErrValidation, accounts.AmmID, state.BaseMint)
	}

	rec := &types.PoolGenesisRecord{
		ProgramID:        d.programID,
		AmmID:            accounts.AmmID,
		LpMint:           state.LpMint,
		Authority:        accounts.Authority,
		OpenOrders:       accounts.OpenOrders,
		BaseMint:         state.BaseMint,
		QuoteMint:        state.QuoteMint,
		BaseVault:        state.BaseVault,
		QuoteVault:       state.QuoteVault,
		TargetOrders:     state.TargetOrders,
		WithdrawQueue:    state.WithdrawQueue,
		LpVault:          state.LpVault,
		MarketProgramID:  state.MarketProgramId,
		MarketID:         state.MarketId,
		MarketEventQueue: tail.EventQueue,
		MarketBids:       tail.Bids,
		MarketAsks:       tail.Asks,

		InitBaseAmount:  init.InitCoinAmount,
		InitQuoteAmount: init.InitPcAmount,

		SwapFeeNumerator:   state.SwapFeeNumerator,
		SwapFeeDenominator: state.SwapFeeDenominator,

		Version:       4,
		MarketVersion: 3,
		Status:        state.Status,
		OpenTime:      init.OpenTime,
	}

	rec.BaseDecimals = int(state.BaseDecimal)
	rec.QuoteDecimals = int(state.QuoteDecimal)

	var err error
	if rec.BaseDecimals == 0 {
		if state.BaseMint.Equals(config.WRAPPED_SOL) {
			rec.BaseDecimals = 9
		} else if rec.BaseDecimals, err = d.fetcher.FetchDecimals(ctx, state.BaseMint); err != nil {
			return nil, err
		}
	}
	if rec.QuoteDecimals == 0 {
		if state.QuoteMint.Equals(config.WRAPPED_SOL) {
			rec.QuoteDecimals = 9
		} else if rec.QuoteDecimals, err = d.fetcher.FetchDecimals(ctx, state.QuoteMint); err != nil {
			return nil, err
		}
	}
	if rec.LpDecimals, err = d.fetcher.FetchDecimals(ctx, state.LpMint); err != nil {
		return nil, err
	}

	// Cross-check the instruction's authority slot against the derived
	// one. Non-canonical authorities are legitimate for some pool
	// configurations, so a mismatch only warns.
	vaultAuthority, err := DeriveVaultAuthority(d.programID)
	if err != nil {
		return nil, fmt.Errorf("%w: vault authority: %v", types.ErrDecode, err)
	}
	if !rec.Authority.Equals(vaultAuthority) {
		log.Printf("%s | authority %s differs from derived %s", rec.AmmID, rec.Authority, vaultAuthority)
	}
	if rec.Authority.IsZero() {
		rec.Authority = vaultAuthority
	}

	if marketState != nil {
		rec.MarketBaseVault = marketState.BaseVault
		rec.MarketQuoteVault = marketState.QuoteVault
		rec.MarketAuthority, err = DeriveMarketAuthority(state.MarketProgramId, state.MarketId, marketState.VaultSignerNonce)
		if err != nil {
			log.Printf("%s | market authority derivation failed, using vault authority: %v", rec.AmmID, err)
			rec.MarketAuthority = vaultAuthority
		}
	} else {
		log.Printf("%s | market layout incomplete, market vaults unresolved", rec.AmmID)
		rec.MarketAuthority = vaultAuthority
	}

	ApplyEconomics(rec)

	return rec, nil
}
