package watcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/pool-sniper/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(e string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

type fakeExecutor struct {
	mu      sync.Mutex
	buys    int
	sells   int
	buyErr  error
	sellErr error
	log     *eventLog
}

func (f *fakeExecutor) Buy(ctx context.Context, rec *types.PoolGenesisRecord, amountIn uint64) (solana.Signature, error) {
	f.mu.Lock()
	f.buys++
	f.mu.Unlock()
	if f.log != nil {
		f.log.add("buy")
	}
	return solana.Signature{}, f.buyErr
}

func (f *fakeExecutor) Sell(ctx context.Context, rec *types.PoolGenesisRecord) (solana.Signature, error) {
	f.mu.Lock()
	f.sells++
	f.mu.Unlock()
	if f.log != nil {
		f.log.add("sell")
	}
	return solana.Signature{}, f.sellErr
}

func (f *fakeExecutor) sellCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sells
}

func (f *fakeExecutor) buyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buys
}

type fakeRecords struct {
	rec *types.PoolGenesisRecord
	err error
}

func (f *fakeRecords) FindByID(ctx context.Context, id int64) (*types.PoolGenesisRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rec, nil
}

type fakeVaults struct {
	mu       sync.Mutex
	callback func(amount uint64)
	subErr   error
	unsubs   int
	log      *eventLog
}

func (f *fakeVaults) SubscribeTokenAccount(account solana.PublicKey, commitment string, callback func(amount uint64)) (uint64, error) {
	if f.subErr != nil {
		return 0, f.subErr
	}
	f.mu.Lock()
	f.callback = callback
	f.mu.Unlock()
	if f.log != nil {
		f.log.add("subscribe")
	}
	return 7, nil
}

func (f *fakeVaults) Unsubscribe(subID uint64) error {
	f.mu.Lock()
	f.unsubs++
	f.mu.Unlock()
	if f.log != nil {
		f.log.add("unsubscribe")
	}
	return nil
}

func (f *fakeVaults) notify(amount uint64) {
	f.mu.Lock()
	cb := f.callback
	f.mu.Unlock()
	if cb != nil {
		cb(amount)
	}
}

func (f *fakeVaults) unsubCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unsubs
}

// K=600 with launch price 50 and a 20% target: the sell triggers when
// the quote vault drains to 10 human units, price exactly 60.
func testRecord() *types.PoolGenesisRecord {
	return &types.PoolGenesisRecord{
		ID:            1,
		AmmID:         solana.NewWallet().PublicKey(),
		QuoteVault:    solana.NewWallet().PublicKey(),
		QuoteDecimals: 9,
		K:             "600",
		LaunchPrice:   50,
	}
}

func newTestSession(t *testing.T, rec *types.PoolGenesisRecord, executor *fakeExecutor, vaults *fakeVaults) *Session {
	t.Helper()
	s, err := NewSession(rec, 1_000_000, 20, executor, &fakeRecords{rec: rec}, vaults, nil)
	require.NoError(t, err)
	return s
}

func TestNewSessionValidation(t *testing.T) {
	executor := &fakeExecutor{}
	vaults := &fakeVaults{}

	_, err := NewSession(nil, 1, 20, executor, &fakeRecords{}, vaults, nil)
	assert.True(t, errors.Is(err, types.ErrValidation))

	unsaved := testRecord()
	unsaved.ID = 0
	_, err = NewSession(unsaved, 1, 20, executor, &fakeRecords{}, vaults, nil)
	assert.True(t, errors.Is(err, types.ErrValidation))

	noVault := testRecord()
	noVault.QuoteVault = solana.PublicKey{}
	_, err = NewSession(noVault, 1, 20, executor, &fakeRecords{}, vaults, nil)
	assert.True(t, errors.Is(err, types.ErrValidation))

	badK := testRecord()
	badK.K = "not-a-number"
	_, err = NewSession(badK, 1, 20, executor, &fakeRecords{}, vaults, nil)
	assert.True(t, errors.Is(err, types.ErrValidation))
}

func TestTargetPrice(t *testing.T) {
	s := newTestSession(t, testRecord(), &fakeExecutor{}, &fakeVaults{})
	assert.InDelta(t, 60.0, s.TargetPrice(), 1e-9)
}

func TestRunBuysOnceAndReleasesRecord(t *testing.T) {
	executor := &fakeExecutor{}
	vaults := &fakeVaults{}
	s := newTestSession(t, testRecord(), executor, vaults)

	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, 1, executor.buyCount())
	assert.Nil(t, s.rec)
	assert.Equal(t, StateWatching, s.State())

	err := s.ExecuteBuy(context.Background())
	assert.True(t, errors.Is(err, types.ErrTrade))
	assert.Equal(t, 1, executor.buyCount())
}

func TestBuyFailureReleasesRecordAndStopsBeforeWatching(t *testing.T) {
	executor := &fakeExecutor{buyErr: errors.New("blockhash expired")}
	vaults := &fakeVaults{}
	s := newTestSession(t, testRecord(), executor, vaults)

	err := s.Run(context.Background())
	require.Error(t, err)

	assert.Nil(t, s.rec)
	assert.Equal(t, StateBought, s.State())
	assert.Nil(t, vaults.callback)
}

// racingVaults models the real transport, which registers the callback
// and can deliver a notification before the subscribe call returns.
type racingVaults struct {
	fakeVaults
	balance uint64
}

func (f *racingVaults) SubscribeTokenAccount(account solana.PublicKey, commitment string, callback func(amount uint64)) (uint64, error) {
	callback(f.balance)
	return f.fakeVaults.SubscribeTokenAccount(account, commitment, callback)
}

// A trigger-worthy balance delivered mid-handshake must neither be
// lost nor sell before the subscription id is recorded; the sell still
// happens and the subscription is still torn down first.
func TestNotificationDuringSubscribeStillTearsDownSubscription(t *testing.T) {
	events := &eventLog{}
	executor := &fakeExecutor{log: events}
	vaults := &racingVaults{fakeVaults: fakeVaults{log: events}, balance: 9_000_000_000}

	rec := testRecord()
	s, err := NewSession(rec, 1_000_000, 20, executor, &fakeRecords{rec: rec}, vaults, nil)
	require.NoError(t, err)
	require.NoError(t, s.Run(context.Background()))

	require.Eventually(t, func() bool {
		return s.State() == StateClosed
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, executor.sellCount())
	assert.Equal(t, 1, vaults.unsubCount())
	assert.False(t, s.subActive.Load())
	assert.Equal(t, []string{"buy", "subscribe", "unsubscribe", "sell"}, events.snapshot())
}

func TestSubscribeFailureRevertsState(t *testing.T) {
	executor := &fakeExecutor{}
	vaults := &fakeVaults{subErr: errors.New("ws closed")}
	s := newTestSession(t, testRecord(), executor, vaults)

	err := s.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateBought, s.State())
}

func TestNoTriggerBelowTarget(t *testing.T) {
	executor := &fakeExecutor{}
	vaults := &fakeVaults{}
	s := newTestSession(t, testRecord(), executor, vaults)
	require.NoError(t, s.Run(context.Background()))

	// 600 / 10.1 = 59.4..., just under the 60.0 target.
	vaults.notify(10_100_000_000)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, executor.sellCount())
	assert.Equal(t, StateWatching, s.State())
}

func TestTriggerAtExactTarget(t *testing.T) {
	executor := &fakeExecutor{}
	vaults := &fakeVaults{}
	s := newTestSession(t, testRecord(), executor, vaults)
	require.NoError(t, s.Run(context.Background()))

	vaults.notify(10_000_000_000)

	require.Eventually(t, func() bool {
		return executor.sellCount() == 1 && s.State() == StateClosed
	}, time.Second, 5*time.Millisecond)
}

func TestZeroBalanceNotificationIsIgnored(t *testing.T) {
	executor := &fakeExecutor{}
	vaults := &fakeVaults{}
	s := newTestSession(t, testRecord(), executor, vaults)
	require.NoError(t, s.Run(context.Background()))

	vaults.notify(0)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, executor.sellCount())
	assert.Equal(t, StateWatching, s.State())
}

// Back-to-back above-target notifications race the trigger; exactly one
// may win.
func TestSingleSellAcrossNotifications(t *testing.T) {
	executor := &fakeExecutor{}
	vaults := &fakeVaults{}
	s := newTestSession(t, testRecord(), executor, vaults)
	require.NoError(t, s.Run(context.Background()))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vaults.notify(9_000_000_000)
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		return s.State() == StateClosed
	}, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, executor.sellCount())
	assert.Equal(t, 1, vaults.unsubCount())
}

func TestUnsubscribeHappensBeforeSell(t *testing.T) {
	log := &eventLog{}
	executor := &fakeExecutor{log: log}
	vaults := &fakeVaults{log: log}
	s := newTestSession(t, testRecord(), executor, vaults)
	require.NoError(t, s.Run(context.Background()))

	vaults.notify(9_000_000_000)

	require.Eventually(t, func() bool {
		return s.State() == StateClosed
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"buy", "subscribe", "unsubscribe", "sell"}, log.snapshot())
}

func TestSellFailureStillClosesSession(t *testing.T) {
	executor := &fakeExecutor{sellErr: errors.New("send failed")}
	vaults := &fakeVaults{}
	s := newTestSession(t, testRecord(), executor, vaults)
	require.NoError(t, s.Run(context.Background()))

	vaults.notify(9_000_000_000)

	require.Eventually(t, func() bool {
		return s.State() == StateClosed
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, executor.sellCount())
}

func TestRecordUnavailableAtTriggerStillCloses(t *testing.T) {
	executor := &fakeExecutor{}
	vaults := &fakeVaults{}
	rec := testRecord()
	s, err := NewSession(rec, 1_000_000, 20, executor, &fakeRecords{err: types.ErrNotFound}, vaults, nil)
	require.NoError(t, err)
	require.NoError(t, s.Run(context.Background()))

	vaults.notify(9_000_000_000)

	require.Eventually(t, func() bool {
		return s.State() == StateClosed
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, executor.sellCount())
	assert.Equal(t, 1, vaults.unsubCount())
}

func TestCloseIsIdempotent(t *testing.T) {
	executor := &fakeExecutor{}
	vaults := &fakeVaults{}
	s := newTestSession(t, testRecord(), executor, vaults)
	require.NoError(t, s.Run(context.Background()))

	s.Close()
	s.Close()

	assert.Equal(t, StateClosed, s.State())
	assert.Equal(t, 1, vaults.unsubCount())
}
