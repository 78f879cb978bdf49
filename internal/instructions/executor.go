package instructions

import (
	"context"
	"fmt"
	"log"
	"math"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/iqbalbaharum/pool-sniper/internal/config"
	"github.com/iqbalbaharum/pool-sniper/internal/genesis"
	"github.com/iqbalbaharum/pool-sniper/internal/rpc"
	"github.com/iqbalbaharum/pool-sniper/internal/types"
)

type ComputeUnit struct {
	MicroLamports uint64
	Units         uint32
}

// TradeSink receives a row for every submitted swap. Logging only;
// sink failures never fail the trade.
type TradeSink interface {
	Set(trade *types.Trade) error
}

// Executor builds, signs and submits swaps against a pool described by
// a genesis record. It is the only component that touches the payer
// key.
type Executor struct {
	payer       *solana.Wallet
	rpc         *rpc.Client
	slippageBps uint64
	compute     ComputeUnit
	trades      TradeSink
}

func NewExecutor(payer *solana.Wallet, client *rpc.Client, slippageBps uint64, trades TradeSink) *Executor {
	return &Executor{
		payer:       payer,
		rpc:         client,
		slippageBps: slippageBps,
		compute: ComputeUnit{
			MicroLamports: 100000,
			Units:         600000,
		},
		trades: trades,
	}
}

// Buy swaps amountIn of the quote token into the pool's base token.
func (e *Executor) Buy(ctx context.Context, rec *types.PoolGenesisRecord, amountIn uint64) (solana.Signature, error) {
	if err := validateRecord(rec); err != nil {
		return solana.Signature{}, err
	}

	owner := e.payer.PublicKey()

	quoteAccount, err := genesis.DeriveUserTokenAccount(owner, rec.QuoteMint)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: %v", types.ErrTrade, err)
	}

	baseAccount, createIns, err := e.createTokenAccountInstructions(rec.BaseMint)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: %v", types.ErrTrade, err)
	}

	// Expected fill from the launch price, haircut by slippage. The
	// launch price is a heuristic, so the minimum is intentionally
	// loose.
	minOut := expectedBaseOut(rec, amountIn)
	minOut = minOut * (10000 - e.slippageBps) / 10000

	sig, err := e.submit(ctx, rec, createIns, &SwapFixedInParams{
		InAmount:         amountIn,
		MinimumOutAmount: minOut,
		Record:           rec,
		TokenAccountIn:   quoteAccount,
		TokenAccountOut:  baseAccount,
		Owner:            owner,
	})
	if err != nil {
		return solana.Signature{}, err
	}

	e.recordTrade(rec, "BUY", amountIn, sig)

	return sig, nil
}

// Sell swaps the payer's entire held base-token balance back into the
// quote token.
func (e *Executor) Sell(ctx context.Context, rec *types.PoolGenesisRecord) (solana.Signature, error) {
	if err := validateRecord(rec); err != nil {
		return solana.Signature{}, err
	}

	owner := e.payer.PublicKey()

	baseAccount, err := genesis.DeriveUserTokenAccount(owner, rec.BaseMint)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: %v", types.ErrTrade, err)
	}

	held, err := e.rpc.GetTokenAccountBalance(ctx, baseAccount)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: held balance: %v", types.ErrTrade, err)
	}
	if held == 0 {
		return solana.Signature{}, fmt.Errorf("%w: nothing held for %s", types.ErrTrade, rec.BaseMint)
	}

	quoteAccount, err := genesis.DeriveUserTokenAccount(owner, rec.QuoteMint)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: %v", types.ErrTrade, err)
	}

	// Exit takes any fill; the trigger already decided the price.
	sig, err := e.submit(ctx, rec, nil, &SwapFixedInParams{
		InAmount:         held,
		MinimumOutAmount: 1,
		Record:           rec,
		TokenAccountIn:   baseAccount,
		TokenAccountOut:  quoteAccount,
		Owner:            owner,
	})
	if err != nil {
		return solana.Signature{}, err
	}

	e.recordTrade(rec, "SELL", held, sig)

	return sig, nil
}

func (e *Executor) submit(ctx context.Context, rec *types.PoolGenesisRecord, setup []solana.Instruction, params *SwapFixedInParams) (solana.Signature, error) {
	ins := []solana.Instruction{}

	if e.compute.Units > 0 {
		ins = append(ins, computebudget.NewSetComputeUnitLimitInstruction(e.compute.Units).Build())
	}
	if e.compute.MicroLamports > 0 {
		ins = append(ins, computebudget.NewSetComputeUnitPriceInstruction(e.compute.MicroLamports).Build())
	}

	ins = append(ins, setup...)
	ins = append(ins, MakeSwapFixedInInstruction(params))

	blockhash, err := e.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: blockhash: %v", types.ErrTrade, err)
	}

	tx, err := solana.NewTransaction(
		ins,
		blockhash,
		solana.TransactionPayer(e.payer.PublicKey()),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: %v", types.ErrTrade, err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if e.payer.PublicKey().Equals(key) {
			return &e.payer.PrivateKey
		}
		return nil
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: sign: %v", types.ErrTrade, err)
	}

	sig, err := e.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: send: %v", types.ErrTrade, err)
	}

	log.Printf("%s | swap submitted | %s", rec.AmmID, sig)

	return sig, nil
}

func (e *Executor) createTokenAccountInstructions(mint solana.PublicKey) (solana.PublicKey, []solana.Instruction, error) {
	account, err := genesis.DeriveUserTokenAccount(e.payer.PublicKey(), mint)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}

	createInstr, err := system.NewCreateAccountInstruction(
		uint64(config.TA_RENT_LAMPORTS),
		uint64(config.TA_SIZE),
		solana.TokenProgramID,
		e.payer.PublicKey(),
		account).ValidateAndBuild()
	if err != nil {
		return solana.PublicKey{}, nil, err
	}

	initInstr, err := token.NewInitializeAccountInstruction(
		account,
		mint,
		e.payer.PublicKey(),
		solana.SysVarRentPubkey).ValidateAndBuild()
	if err != nil {
		return solana.PublicKey{}, nil, err
	}

	return account, []solana.Instruction{createInstr, initInstr}, nil
}

func (e *Executor) recordTrade(rec *types.PoolGenesisRecord, action string, amount uint64, sig solana.Signature) {
	if e.trades == nil {
		return
	}

	ammID := rec.AmmID
	mint := rec.BaseMint
	err := e.trades.Set(&types.Trade{
		AmmId:     &ammID,
		Mint:      &mint,
		Action:    action,
		Amount:    strconv.FormatUint(amount, 10),
		Signature: sig.String(),
		Status:    "SUBMITTED",
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		log.Printf("%s | trade log: %v", rec.AmmID, err)
	}
}

// validateRecord rejects a trade when any account the swap touches is
// missing. Address fields are never defaulted, so a zero key here
// means the record was built from an incomplete decode.
func validateRecord(rec *types.PoolGenesisRecord) error {
	required := map[string]solana.PublicKey{
		"programId":        rec.ProgramID,
		"ammId":            rec.AmmID,
		"authority":        rec.Authority,
		"openOrders":       rec.OpenOrders,
		"targetOrders":     rec.TargetOrders,
		"baseMint":         rec.BaseMint,
		"quoteMint":        rec.QuoteMint,
		"baseVault":        rec.BaseVault,
		"quoteVault":       rec.QuoteVault,
		"marketProgramId":  rec.MarketProgramID,
		"marketId":         rec.MarketID,
		"marketAuthority":  rec.MarketAuthority,
		"marketBaseVault":  rec.MarketBaseVault,
		"marketQuoteVault": rec.MarketQuoteVault,
		"marketEventQueue": rec.MarketEventQueue,
		"marketBids":       rec.MarketBids,
		"marketAsks":       rec.MarketAsks,
	}

	for name, key := range required {
		if key.IsZero() {
			return fmt.Errorf("%w: record %d is missing %s", types.ErrValidation, rec.ID, name)
		}
	}

	return nil
}

func expectedBaseOut(rec *types.PoolGenesisRecord, quoteIn uint64) uint64 {
	if rec.LaunchPrice <= 0 {
		return 0
	}

	quoteHuman := float64(quoteIn) / math.Pow10(rec.QuoteDecimals)
	baseHuman := quoteHuman / rec.LaunchPrice

	return uint64(baseHuman * math.Pow10(rec.BaseDecimals))
}
