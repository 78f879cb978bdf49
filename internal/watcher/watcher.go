package watcher

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/big"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/pool-sniper/internal/types"
)

// Session lifecycle. Transitions only move forward; Closed is
// terminal.
type State int32

const (
	StateArmed State = iota
	StateBought
	StateWatching
	StateTriggered
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateArmed:
		return "ARMED"
	case StateBought:
		return "BOUGHT"
	case StateWatching:
		return "WATCHING"
	case StateTriggered:
		return "TRIGGERED"
	default:
		return "CLOSED"
	}
}

// TradeExecutor submits the entry and exit swaps. Sell sizes itself to
// the entire held base balance.
type TradeExecutor interface {
	Buy(ctx context.Context, rec *types.PoolGenesisRecord, amountIn uint64) (solana.Signature, error)
	Sell(ctx context.Context, rec *types.PoolGenesisRecord) (solana.Signature, error)
}

// RecordSource is the persisted store bridging the buy and sell
// phases; the in-memory record is discarded after the buy.
type RecordSource interface {
	FindByID(ctx context.Context, id int64) (*types.PoolGenesisRecord, error)
}

// VaultSubscriber delivers the quote vault's current raw balance,
// at-least-once with latest-state semantics.
type VaultSubscriber interface {
	SubscribeTokenAccount(account solana.PublicKey, commitment string, callback func(amount uint64)) (uint64, error)
	Unsubscribe(subID uint64) error
}

// StatusSink mirrors lifecycle transitions for operator visibility.
// Optional; mirror failures never affect the session.
type StatusSink interface {
	Set(ctx context.Context, status types.SessionStatus) error
}

// Session drives one pool through buy → watch → sell. Exactly one buy
// and at most one sell per session, enforced by atomic guards rather
// than any assumption about callback concurrency.
type Session struct {
	recordID      int64
	ammID         solana.PublicKey
	quoteVault    solana.PublicKey
	quoteDecimals int

	kHuman      float64
	targetPrice float64
	buyAmount   uint64

	executor TradeExecutor
	records  RecordSource
	vaults   VaultSubscriber
	status   StatusSink

	// rec is the write-once in-memory copy, released after the buy to
	// bound memory across many concurrently armed sessions.
	rec *types.PoolGenesisRecord

	state     atomic.Int32
	triggered atomic.Bool

	// pendingBalance parks a notification delivered while the
	// subscribe handshake is still in flight; replayed once Watching.
	pendingBalance atomic.Uint64

	subID     uint64
	subActive atomic.Bool
}

// NewSession arms a session from a freshly persisted genesis record.
// The sell target is launch price scaled by sellTargetPercent.
func NewSession(
	rec *types.PoolGenesisRecord,
	buyAmount uint64,
	sellTargetPercent float64,
	executor TradeExecutor,
	records RecordSource,
	vaults VaultSubscriber,
	status StatusSink,
) (*Session, error) {
	if rec == nil || rec.ID == 0 {
		return nil, fmt.Errorf("%w: session needs a persisted record", types.ErrValidation)
	}
	if rec.QuoteVault.IsZero() {
		return nil, fmt.Errorf("%w: record %d has no quote vault", types.ErrValidation, rec.ID)
	}

	k, ok := new(big.Float).SetString(rec.K)
	if !ok {
		return nil, fmt.Errorf("%w: record %d has invariant %q", types.ErrValidation, rec.ID, rec.K)
	}
	kHuman, _ := k.Float64()

	s := &Session{
		recordID:      rec.ID,
		ammID:         rec.AmmID,
		quoteVault:    rec.QuoteVault,
		quoteDecimals: rec.QuoteDecimals,
		kHuman:        kHuman,
		targetPrice:   rec.LaunchPrice * (1 + sellTargetPercent/100),
		buyAmount:     buyAmount,
		executor:      executor,
		records:       records,
		vaults:        vaults,
		status:        status,
		rec:           rec,
	}
	s.state.Store(int32(StateArmed))

	return s, nil
}

func (s *Session) State() State {
	return State(s.state.Load())
}

func (s *Session) TargetPrice() float64 {
	return s.targetPrice
}

// ExecuteBuy issues the entry swap exactly once. The cached record is
// released on both the success and the failure path; after this call
// every record read goes through the persisted store.
func (s *Session) ExecuteBuy(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(StateArmed), int32(StateBought)) {
		return fmt.Errorf("%w: buy already issued for %s", types.ErrTrade, s.ammID)
	}

	rec := s.rec
	defer func() {
		s.rec = nil
		s.mirror(ctx)
	}()

	sig, err := s.executor.Buy(ctx, rec, s.buyAmount)
	if err != nil {
		return fmt.Errorf("buy %s: %w", s.ammID, err)
	}

	log.Printf("%s | buy executed | %s", s.ammID, sig)

	return nil
}

// StartWatching subscribes to the quote vault and begins evaluating
// the price trigger on every notification. The session stays in Bought
// until the subscription id is recorded: the transport registers the
// callback before the subscribe call returns, and a trigger that ran
// before subID/subActive were stored would sell with the subscription
// still live. Notifications seen in that window are parked and
// replayed once Watching.
func (s *Session) StartWatching(ctx context.Context) error {
	if s.State() != StateBought {
		return fmt.Errorf("%w: session for %s is %s, not %s", types.ErrTrade, s.ammID, s.State(), StateBought)
	}

	subID, err := s.vaults.SubscribeTokenAccount(s.quoteVault, "confirmed", s.onNotification)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", s.quoteVault, err)
	}

	s.subID = subID
	s.subActive.Store(true)

	if !s.state.CompareAndSwap(int32(StateBought), int32(StateWatching)) {
		s.releaseSubscription()
		return fmt.Errorf("%w: session for %s closed during subscribe", types.ErrTrade, s.ammID)
	}

	s.mirror(ctx)
	log.Printf("%s | watching vault %s for price >= %f", s.ammID, s.quoteVault, s.targetPrice)

	s.replayPending()

	return nil
}

// onNotification runs on the subscription's delivery path and must not
// block. Before the session enters Watching the balance is only
// parked; the re-check closes the window where the store lands just
// after StartWatching replayed.
func (s *Session) onNotification(rawBalance uint64) {
	if s.State() == StateWatching {
		s.evaluate(rawBalance)
		return
	}

	s.pendingBalance.Store(rawBalance)
	if s.State() == StateWatching {
		s.replayPending()
	}
}

func (s *Session) replayPending() {
	if pending := s.pendingBalance.Swap(0); pending > 0 {
		s.evaluate(pending)
	}
}

// evaluate converts, compares, and hands off to a goroutine when the
// compare-and-set is won. Duplicate or concurrent notifications lose
// the CAS and return.
func (s *Session) evaluate(rawBalance uint64) {
	if s.triggered.Load() || s.State() != StateWatching {
		return
	}

	quoteHuman := float64(rawBalance) / math.Pow10(s.quoteDecimals)
	if quoteHuman <= 0 {
		return
	}

	// Approximation: ignores swap fees and any base-side trading since
	// genesis. Good enough for a trigger, not for settlement.
	priceNow := s.kHuman / quoteHuman
	if priceNow < s.targetPrice {
		return
	}

	if !s.triggered.CompareAndSwap(false, true) {
		return
	}

	s.state.Store(int32(StateTriggered))
	log.Printf("%s | target hit: price %f >= %f", s.ammID, priceNow, s.targetPrice)

	go s.executeSell(context.Background())
}

// executeSell tears down the subscription before awaiting the sell so
// no further notification can be processed, then exits the entire held
// position. The session closes regardless of the sell outcome.
func (s *Session) executeSell(ctx context.Context) {
	s.releaseSubscription()

	defer func() {
		s.state.Store(int32(StateClosed))
		s.mirror(ctx)
	}()

	rec, err := s.records.FindByID(ctx, s.recordID)
	if err != nil {
		log.Printf("%s | record %d unavailable at trigger: %v", s.ammID, s.recordID, err)
		return
	}

	sig, err := s.executor.Sell(ctx, rec)
	if err != nil {
		log.Printf("%s | sell failed: %v", s.ammID, err)
		return
	}

	log.Printf("%s | sell executed | %s", s.ammID, sig)
}

// Close tears the session down from outside, e.g. on shutdown.
// Idempotent.
func (s *Session) Close() {
	s.releaseSubscription()
	s.state.Store(int32(StateClosed))
}

func (s *Session) releaseSubscription() {
	if !s.subActive.CompareAndSwap(true, false) {
		return
	}
	if err := s.vaults.Unsubscribe(s.subID); err != nil {
		log.Printf("%s | unsubscribe: %v", s.ammID, err)
	}
}

func (s *Session) mirror(ctx context.Context) {
	if s.status == nil {
		return
	}

	ammID := s.ammID
	err := s.status.Set(ctx, types.SessionStatus{
		AmmId:       &ammID,
		RecordID:    s.recordID,
		State:       s.State().String(),
		TargetPrice: s.targetPrice,
		LastUpdated: time.Now().Unix(),
	})
	if err != nil {
		log.Printf("%s | session mirror: %v", s.ammID, err)
	}
}

// Run executes the armed session end to end: one buy, then the watch.
// It returns once the subscription is live; the sell happens on the
// notification path.
func (s *Session) Run(ctx context.Context) error {
	if err := s.ExecuteBuy(ctx); err != nil {
		return err
	}
	return s.StartWatching(ctx)
}
