package lotto

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sammyalhashe/Lotto/internal/state"
	"github.com/Sammyalhashe/Lotto/internal/strategy"
)

var (
	alice = common.HexToAddress("0x0000000000000000000000000000000000000a11")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	carol = common.HexToAddress("0x0000000000000000000000000000000000000ca1")
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

type fixture struct {
	clock   *fakeClock
	strat   *strategy.SharedBalance
	credits *state.Credits
	ledger  *Ledger
	engine  *Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	strat := strategy.NewSharedBalance()
	credits := state.NewCredits()
	ledger := NewLedger(strat, nil)
	ledger.SetClock(clock.Now)
	engine := NewEngine(ledger, strat, credits, nil)

	return &fixture{
		clock:   clock,
		strat:   strat,
		credits: credits,
		ledger:  ledger,
		engine:  engine,
	}
}

func (f *fixture) createPool(t *testing.T, creator common.Address, fee int64, duration time.Duration) uint64 {
	t.Helper()
	id, err := f.ledger.Create(creator, big.NewInt(fee), duration)
	require.NoError(t, err)
	return id
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.Create(alice, big.NewInt(0), time.Hour)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = f.ledger.Create(alice, big.NewInt(-1), time.Hour)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = f.ledger.Create(alice, nil, time.Hour)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = f.ledger.Create(alice, big.NewInt(1), 0)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	assert.Equal(t, uint64(0), f.ledger.Count())
}

func TestCreateAssignsSequentialIDs(t *testing.T) {
	f := newFixture(t)

	first := f.createPool(t, alice, 1, time.Hour)
	second := f.createPool(t, bob, 2, time.Hour)
	third := f.createPool(t, alice, 3, time.Hour)

	assert.Equal(t, uint64(1), first)
	assert.Equal(t, uint64(2), second)
	assert.Equal(t, uint64(3), third)
	assert.Equal(t, uint64(3), f.ledger.Count())

	assert.Equal(t, []uint64{1, 3}, f.ledger.CreatedBy(alice))
	assert.Equal(t, []uint64{2}, f.ledger.CreatedBy(bob))
	assert.Empty(t, f.ledger.CreatedBy(carol))
}

func TestCreateSetsCloseTime(t *testing.T) {
	f := newFixture(t)

	id := f.createPool(t, alice, 1, time.Hour)

	pool, err := f.ledger.Get(id)
	require.NoError(t, err)
	assert.Equal(t, f.clock.Now().Add(time.Hour), pool.CloseTime)
	assert.Equal(t, StatusOpen, pool.Status)
	assert.Empty(t, pool.Participants)
	assert.Nil(t, pool.Winner)
	assert.Zero(t, pool.PrincipalPaid.Sign())
	assert.Zero(t, pool.YieldAttributed.Sign())
}

func TestEnterExactPayment(t *testing.T) {
	f := newFixture(t)
	id := f.createPool(t, alice, 10, time.Hour)

	require.NoError(t, f.ledger.Enter(id, bob, big.NewInt(10)))

	pool, err := f.ledger.Get(id)
	require.NoError(t, err)
	assert.Equal(t, []common.Address{bob}, pool.Participants)
	assert.Equal(t, []uint64{id}, f.ledger.JoinedBy(bob))

	// The fee is forwarded to the strategy, not held by the ledger.
	assert.Equal(t, big.NewInt(10), f.strat.Balance())
	assert.Equal(t, big.NewInt(10), f.ledger.Outstanding())
}

func TestEnterRejectsWrongPayment(t *testing.T) {
	f := newFixture(t)
	id := f.createPool(t, alice, 10, time.Hour)

	for _, amount := range []*big.Int{big.NewInt(5), big.NewInt(11), big.NewInt(0), nil} {
		err := f.ledger.Enter(id, bob, amount)
		assert.ErrorIs(t, err, ErrInvalidPayment)
	}

	pool, err := f.ledger.Get(id)
	require.NoError(t, err)
	assert.Empty(t, pool.Participants, "rejected payments must not append a participant")
	assert.Empty(t, f.ledger.JoinedBy(bob))
	assert.Zero(t, f.strat.Balance().Sign())
}

func TestEnterUnknownPool(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.ledger.Enter(42, bob, big.NewInt(1)), ErrPoolNotFound)
}

func TestEnterAfterCloseTime(t *testing.T) {
	f := newFixture(t)
	id := f.createPool(t, alice, 10, time.Hour)

	f.clock.Advance(time.Hour)

	assert.ErrorIs(t, f.ledger.Enter(id, bob, big.NewInt(10)), ErrPoolClosed)
}

func TestEnterAfterSettlement(t *testing.T) {
	f := newFixture(t)
	id := f.createPool(t, alice, 10, time.Hour)
	require.NoError(t, f.ledger.Enter(id, bob, big.NewInt(10)))

	f.clock.Advance(2 * time.Hour)
	require.NoError(t, f.engine.Settle(id))

	assert.ErrorIs(t, f.ledger.Enter(id, carol, big.NewInt(10)), ErrPoolClosed)

	pool, err := f.ledger.Get(id)
	require.NoError(t, err)
	assert.Len(t, pool.Participants, 1, "participants must not change after settlement")
}

func TestEnterSameIdentityTwice(t *testing.T) {
	f := newFixture(t)
	id := f.createPool(t, alice, 10, time.Hour)

	require.NoError(t, f.ledger.Enter(id, bob, big.NewInt(10)))
	require.NoError(t, f.ledger.Enter(id, bob, big.NewInt(10)))

	pool, err := f.ledger.Get(id)
	require.NoError(t, err)
	assert.Equal(t, []common.Address{bob, bob}, pool.Participants)

	// The joined index mirrors entries, so the pool id appears twice.
	assert.Equal(t, []uint64{id, id}, f.ledger.JoinedBy(bob))
}

func TestCancel(t *testing.T) {
	t.Run("OnlyCreator", func(t *testing.T) {
		f := newFixture(t)
		id := f.createPool(t, alice, 10, time.Hour)

		assert.ErrorIs(t, f.ledger.Cancel(id, bob), ErrNotCreator)
		require.NoError(t, f.ledger.Cancel(id, alice))

		pool, err := f.ledger.Get(id)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, pool.Status)
	})

	t.Run("RejectedAfterEntries", func(t *testing.T) {
		f := newFixture(t)
		id := f.createPool(t, alice, 10, time.Hour)
		require.NoError(t, f.ledger.Enter(id, bob, big.NewInt(10)))

		assert.ErrorIs(t, f.ledger.Cancel(id, alice), ErrPoolHasEntries)
	})

	t.Run("TerminalForEntryAndSettlement", func(t *testing.T) {
		f := newFixture(t)
		id := f.createPool(t, alice, 10, time.Hour)
		require.NoError(t, f.ledger.Cancel(id, alice))

		assert.ErrorIs(t, f.ledger.Enter(id, bob, big.NewInt(10)), ErrPoolClosed)
		assert.ErrorIs(t, f.ledger.Cancel(id, alice), ErrPoolCancelled)

		f.clock.Advance(2 * time.Hour)
		assert.ErrorIs(t, f.engine.Settle(id), ErrPoolCancelled)
	})

	t.Run("RejectedAfterSettlement", func(t *testing.T) {
		f := newFixture(t)
		id := f.createPool(t, alice, 10, time.Hour)
		f.clock.Advance(2 * time.Hour)
		require.NoError(t, f.engine.Settle(id))

		assert.ErrorIs(t, f.ledger.Cancel(id, alice), ErrAlreadySettled)
	})
}

func TestGetReturnsSnapshot(t *testing.T) {
	f := newFixture(t)
	id := f.createPool(t, alice, 10, time.Hour)
	require.NoError(t, f.ledger.Enter(id, bob, big.NewInt(10)))

	pool, err := f.ledger.Get(id)
	require.NoError(t, err)

	// Mutating the snapshot must not leak into the ledger.
	pool.Participants[0] = carol
	pool.EntryFee.SetInt64(999)
	pool.Status = StatusCancelled

	fresh, err := f.ledger.Get(id)
	require.NoError(t, err)
	assert.Equal(t, []common.Address{bob}, fresh.Participants)
	assert.Equal(t, big.NewInt(10), fresh.EntryFee)
	assert.Equal(t, StatusOpen, fresh.Status)
}

func TestGetUnknownPool(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.Get(1)
	assert.ErrorIs(t, err, ErrPoolNotFound)
}

func TestListOrderedByID(t *testing.T) {
	f := newFixture(t)
	f.createPool(t, alice, 1, time.Hour)
	f.createPool(t, bob, 2, time.Hour)
	f.createPool(t, carol, 3, time.Hour)

	pools := f.ledger.List()
	require.Len(t, pools, 3)
	for i, pool := range pools {
		assert.Equal(t, uint64(i+1), pool.ID)
	}
}

func TestLedgerEvents(t *testing.T) {
	f := newFixture(t)

	var events []Event
	f.ledger.SetEventCallback(func(evt Event) {
		events = append(events, evt)
	})

	id := f.createPool(t, alice, 10, time.Hour)
	require.NoError(t, f.ledger.Enter(id, bob, big.NewInt(10)))
	f.clock.Advance(2 * time.Hour)
	require.NoError(t, f.engine.Settle(id))

	cancelled := f.createPool(t, alice, 10, time.Hour)
	require.NoError(t, f.ledger.Cancel(cancelled, alice))

	require.Len(t, events, 5)
	assert.Equal(t, EventPoolCreated, events[0].Type)
	assert.Equal(t, EventPoolEntered, events[1].Type)
	assert.Equal(t, EventPoolSettled, events[2].Type)
	assert.Equal(t, EventPoolCreated, events[3].Type)
	assert.Equal(t, EventPoolCancelled, events[4].Type)

	for _, evt := range events {
		assert.NotEmpty(t, evt.ID)
	}

	settled, ok := events[2].Data.(PoolSettledData)
	require.True(t, ok)
	assert.Equal(t, id, settled.PoolID)
	require.NotNil(t, settled.Winner)
	assert.Equal(t, bob.Hex(), *settled.Winner)
}

func TestPoolToJSON(t *testing.T) {
	f := newFixture(t)
	id := f.createPool(t, alice, 10, time.Hour)
	require.NoError(t, f.ledger.Enter(id, bob, big.NewInt(10)))

	pool, err := f.ledger.Get(id)
	require.NoError(t, err)

	pj := pool.ToJSON()
	assert.Equal(t, id, pj.ID)
	assert.Equal(t, alice.Hex(), pj.Creator)
	assert.Equal(t, "10", pj.EntryFee)
	assert.Equal(t, "open", pj.Status)
	assert.Equal(t, []string{bob.Hex()}, pj.Participants)
	assert.Nil(t, pj.Winner)
	assert.Nil(t, pj.SettledAt)
}
