package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"lotto/events"
	"lotto/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestReversalService(store *memoryStore) *reversalService {
	svc := NewReversalService(store).(*reversalService)
	svc.now = func() time.Time { return fixedNow.Add(time.Hour) }
	return svc
}

func keyOf(username string, result *models.PlaceResult) models.PlayKey {
	return models.PlayKey{Username: username, PlayTime: result.PlayTime, Draw: result.Draw}
}

func assertConserved(t *testing.T, store *memoryStore, username string) {
	t.Helper()
	assert.Equal(t, store.balance(username), 1000+store.ledgerNet(username), "balance drifted from ledger")
}

func TestReversalService_DeletePlay(t *testing.T) {
	store := newMemoryStore()
	store.addAccount("alice", 1000)
	plays := newTestPlayService(store, "1234")
	reversal := newTestReversalService(store)
	ctx := context.Background()

	placed, err := plays.PlacePlay(ctx, "alice", []models.CartItem{
		{Num: "0034", Bet: 200},
		{Num: "5555", Bet: 100, Label: "AB"},
	})
	require.NoError(t, err)
	require.Equal(t, int64(300), placed.TotalBet)
	require.Equal(t, int64(1200), placed.TotalWin)
	require.Equal(t, int64(1900), placed.NewBalance)

	deleted, err := reversal.DeletePlay(ctx, keyOf("alice", placed))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), deleted.NewBalance)
	assert.Equal(t, int64(300), deleted.DeletedBet)
	assert.Equal(t, int64(1200), deleted.DeletedWin)
	assert.Empty(t, store.rowsOf("alice"))
	assertConserved(t, store, "alice")

	_, err = reversal.DeletePlay(ctx, keyOf("alice", placed))
	assert.True(t, errors.Is(err, ErrPlayNotFound))
	assert.Equal(t, int64(1000), store.balance("alice"))
}

func TestReversalService_DeletePlay_ClampsAtZero(t *testing.T) {
	store := newMemoryStore()
	store.addAccount("alice", 1000)
	plays := newTestPlayService(store, "1234")
	reversal := newTestReversalService(store)
	ctx := context.Background()

	winner, err := plays.PlacePlay(ctx, "alice", []models.CartItem{{Num: "34", Bet: 200}})
	require.NoError(t, err)
	require.Equal(t, int64(1800), winner.NewBalance)

	plays.now = func() time.Time { return fixedNow.Add(time.Minute) }
	_, err = plays.PlacePlay(ctx, "alice", []models.CartItem{{Num: "1111", Bet: 1700}})
	require.NoError(t, err)
	require.Equal(t, int64(100), store.balance("alice"))

	deleted, err := reversal.DeletePlay(ctx, keyOf("alice", winner))
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted.NewBalance)
	assert.Equal(t, int64(0), store.balance("alice"))

	history := store.history[len(store.history)-1]
	assert.Equal(t, models.TransactionTypePlayDeleted, history.TransactionType)
	assert.Equal(t, true, history.TransactionMetadata["clamped"])
	assert.Equal(t, int64(-100), history.ChangeAmount)
}

func TestReversalService_DeletePlay_Validation(t *testing.T) {
	store := newMemoryStore()
	store.addAccount("alice", 1000)
	reversal := newTestReversalService(store)
	ctx := context.Background()

	_, err := reversal.DeletePlay(ctx, models.PlayKey{PlayTime: fixedNow, Draw: "1234"})
	assert.True(t, errors.Is(err, ErrNotAuthenticated))

	_, err = reversal.DeletePlay(ctx, models.PlayKey{Username: "alice", Draw: "1234"})
	assert.True(t, errors.Is(err, ErrMissingParameters))

	_, err = reversal.DeletePlay(ctx, models.PlayKey{Username: "alice", PlayTime: fixedNow})
	assert.True(t, errors.Is(err, ErrMissingParameters))

	_, err = reversal.DeletePlay(ctx, models.PlayKey{Username: "ghost", PlayTime: fixedNow, Draw: "1234"})
	assert.True(t, errors.Is(err, ErrAccountNotFound))
}

func TestReversalService_RefundPlay(t *testing.T) {
	store := newMemoryStore()
	store.addAccount("alice", 1000)
	plays := newTestPlayService(store, "1234")
	reversal := newTestReversalService(store)
	ctx := context.Background()

	placed, err := plays.PlacePlay(ctx, "alice", []models.CartItem{{Num: "1234", Bet: 100}, {Num: "9", Bet: 50}})
	require.NoError(t, err)
	require.Equal(t, int64(10850), placed.NewBalance)

	refund, err := reversal.RefundPlay(ctx, keyOf("alice", placed))
	require.NoError(t, err)
	assert.Equal(t, int64(150), refund.Refunded)
	assert.Equal(t, int64(11000), refund.NewBalance)
	assertConserved(t, store, "alice")

	rows := store.rowsOf("alice")
	require.Len(t, rows, 3)
	refundRow := rows[2]
	assert.Equal(t, models.RowKindRefund, refundRow.Kind)
	assert.Equal(t, int64(-150), refundRow.Bet)
	assert.Equal(t, int64(0), refundRow.Win)
	assert.Equal(t, "1234", refundRow.Draw)
	assert.Equal(t, models.NoteRefund, refundRow.Note)
	require.NotNil(t, refundRow.RefPlayTime)
	assert.True(t, refundRow.RefPlayTime.Equal(placed.PlayTime))
	assert.False(t, refundRow.PlayTime.Equal(placed.PlayTime))

	t.Run("second refund is rejected", func(t *testing.T) {
		_, err := reversal.RefundPlay(ctx, keyOf("alice", placed))
		assert.True(t, errors.Is(err, ErrAlreadyRefunded))
		assert.Equal(t, int64(11000), store.balance("alice"))
		assert.Len(t, store.rowsOf("alice"), 3)
	})

	t.Run("refunded play cannot be deleted or edited", func(t *testing.T) {
		_, err := reversal.DeletePlay(ctx, keyOf("alice", placed))
		assert.True(t, errors.Is(err, ErrAlreadyRefunded))

		_, err = reversal.EditPlay(ctx, models.EditRequest{Key: keyOf("alice", placed)})
		assert.True(t, errors.Is(err, ErrAlreadyRefunded))
		assertConserved(t, store, "alice")
	})

	assert.Contains(t, store.eventTypes(), events.EventTypePlayRefunded)
}

func TestReversalService_RefundPlay_NothingToRefund(t *testing.T) {
	store := newMemoryStore()
	store.addAccount("alice", 1000)
	plays := newTestPlayService(store, "1234")
	reversal := newTestReversalService(store)
	ctx := context.Background()

	labelOnly, err := plays.PlacePlay(ctx, "alice", []models.CartItem{{Label: "ABCD"}})
	require.NoError(t, err)

	_, err = reversal.RefundPlay(ctx, keyOf("alice", labelOnly))
	assert.True(t, errors.Is(err, ErrNothingToRefund))

	_, err = reversal.RefundPlay(ctx, models.PlayKey{Username: "alice", PlayTime: fixedNow.Add(time.Hour), Draw: "0000"})
	assert.True(t, errors.Is(err, ErrNothingToRefund))
	assert.Equal(t, int64(1000), store.balance("alice"))
}

func TestReversalService_RefundPlay_Concurrent(t *testing.T) {
	store := newMemoryStore()
	store.addAccount("alice", 1000)
	plays := newTestPlayService(store, "9999")
	reversal := newTestReversalService(store)
	ctx := context.Background()

	placed, err := plays.PlacePlay(ctx, "alice", []models.CartItem{{Num: "1", Bet: 300}})
	require.NoError(t, err)

	const attempts = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := reversal.RefundPlay(ctx, keyOf("alice", placed)); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, int64(1000), store.balance("alice"))
	assertConserved(t, store, "alice")
}

func TestReversalService_RefundPlay_UniqueViolation(t *testing.T) {
	ctx := context.Background()
	playTime := fixedNow.Truncate(time.Microsecond)
	key := models.PlayKey{Username: "alice", PlayTime: playTime, Draw: "1234"}

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockWagerRepo := new(MockWagerRepository)
	mockHistoryRepo := new(MockBalanceHistoryRepository)
	mockUoW.SetRepositories(mockAccountRepo, mockWagerRepo, mockHistoryRepo, nil)

	svc := NewReversalService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("LockByUsername", ctx, "alice").Return(&models.Account{Username: "alice", Balance: 700}, nil)
	mockWagerRepo.On("HasRefundFor", ctx, "alice", playTime).Return(false, nil)
	mockWagerRepo.On("SumByPlay", ctx, key).Return(&models.PlayTotals{TotalBet: 300, Rows: 1}, nil)
	mockAccountRepo.On("UpdateBalance", ctx, "alice", int64(1000)).Return(nil)
	// A concurrent refund committed between the check and the insert
	mockWagerRepo.On("InsertRows", ctx, mock.Anything).Return(ErrAlreadyRefunded)

	_, err := svc.RefundPlay(ctx, key)
	assert.True(t, errors.Is(err, ErrAlreadyRefunded))

	mockUoW.AssertExpectations(t)
	mockUoW.AssertNotCalled(t, "Commit")
	mockHistoryRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestReversalService_EditPlay(t *testing.T) {
	setup := func(t *testing.T) (*memoryStore, *reversalService, *models.PlaceResult, []models.WagerRow) {
		store := newMemoryStore()
		store.addAccount("alice", 1000)
		plays := newTestPlayService(store, "0000")
		placed, err := plays.PlacePlay(context.Background(), "alice", []models.CartItem{
			{Num: "1111", Bet: 100},
			{Num: "2222", Bet: 100},
		})
		require.NoError(t, err)
		require.Equal(t, int64(800), placed.NewBalance)
		return store, newTestReversalService(store), placed, store.rowsOf("alice")
	}
	ctx := context.Background()

	t.Run("bet change settles the difference", func(t *testing.T) {
		store, reversal, placed, rows := setup(t)

		edited, err := reversal.EditPlay(ctx, models.EditRequest{
			Key:   keyOf("alice", placed),
			Items: []models.EditItem{{RowID: rows[0].ID, NumRaw: "1111", Bet: 50}},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(850), edited.NewBalance)
		assert.Equal(t, int64(150), edited.Play.TotalBet)
		assert.Equal(t, int64(0), edited.Play.Adjustments)
		assert.Len(t, store.rowsOf("alice"), 2)
		assertConserved(t, store, "alice")
	})

	t.Run("num and label are rewritten and win is kept", func(t *testing.T) {
		store, reversal, placed, rows := setup(t)

		_, err := reversal.EditPlay(ctx, models.EditRequest{
			Key:   keyOf("alice", placed),
			Items: []models.EditItem{{RowID: rows[1].ID, NumRaw: "0-0", Bet: 100, Label: " CD "}},
		})
		require.NoError(t, err)

		updated := store.rowsOf("alice")[1]
		assert.Equal(t, "0000", updated.Num)
		assert.Equal(t, "00", updated.Opts.Raw)
		assert.Equal(t, "CD", updated.Opts.Label)
		assert.Equal(t, int64(0), updated.Win)
		assert.Equal(t, int64(800), store.balance("alice"))
	})

	t.Run("total bet override writes an adjustment row", func(t *testing.T) {
		store, reversal, placed, rows := setup(t)

		override := int64(150)
		edited, err := reversal.EditPlay(ctx, models.EditRequest{
			Key:      keyOf("alice", placed),
			TotalBet: &override,
			Items:    []models.EditItem{{RowID: rows[0].ID, NumRaw: "1111", Bet: 20}},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(850), edited.NewBalance)
		assert.Equal(t, int64(150), edited.Play.TotalBet)
		assert.Equal(t, int64(30), edited.Play.Adjustments)

		all := store.rowsOf("alice")
		require.Len(t, all, 3)
		adj := all[2]
		assert.Equal(t, models.RowKindAdjustment, adj.Kind)
		assert.Equal(t, int64(30), adj.Bet)
		assert.Equal(t, models.NoteTotalBetOverride, adj.Note)
		require.NotNil(t, adj.RefPlayTime)
		assert.True(t, adj.RefPlayTime.Equal(placed.PlayTime))
		assertConserved(t, store, "alice")
	})

	t.Run("override equal to recomputed writes no adjustment", func(t *testing.T) {
		store, reversal, placed, _ := setup(t)

		override := int64(200)
		edited, err := reversal.EditPlay(ctx, models.EditRequest{Key: keyOf("alice", placed), TotalBet: &override})
		require.NoError(t, err)
		assert.Equal(t, int64(800), edited.NewBalance)
		assert.Len(t, store.rowsOf("alice"), 2)
	})

	t.Run("raising the bet beyond the balance clamps at zero", func(t *testing.T) {
		store, reversal, placed, rows := setup(t)

		edited, err := reversal.EditPlay(ctx, models.EditRequest{
			Key:   keyOf("alice", placed),
			Items: []models.EditItem{{RowID: rows[0].ID, NumRaw: "1111", Bet: 5000}},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(0), edited.NewBalance)
		assert.Equal(t, int64(0), store.balance("alice"))
	})

	t.Run("row from another play is rejected", func(t *testing.T) {
		store, reversal, placed, rows := setup(t)
		other := newTestPlayService(store, "0000")
		other.now = func() time.Time { return fixedNow.Add(time.Minute) }
		_, err := other.PlacePlay(ctx, "alice", []models.CartItem{{Num: "3333", Bet: 10}})
		require.NoError(t, err)
		foreignID := store.rowsOf("alice")[2].ID

		_, err = reversal.EditPlay(ctx, models.EditRequest{
			Key: keyOf("alice", placed),
			Items: []models.EditItem{
				{RowID: rows[0].ID, NumRaw: "1111", Bet: 1},
				{RowID: foreignID, NumRaw: "3333", Bet: 1},
			},
		})
		assert.True(t, errors.Is(err, ErrRowNotInPlay))
		assert.Equal(t, int64(100), store.rowsOf("alice")[0].Bet)
		assert.Equal(t, int64(790), store.balance("alice"))
	})

	t.Run("invalid input", func(t *testing.T) {
		_, reversal, placed, rows := setup(t)

		negative := int64(-1)
		_, err := reversal.EditPlay(ctx, models.EditRequest{Key: keyOf("alice", placed), TotalBet: &negative})
		assert.True(t, errors.Is(err, ErrInvalidAmount))

		_, err = reversal.EditPlay(ctx, models.EditRequest{
			Key:   keyOf("alice", placed),
			Items: []models.EditItem{{RowID: rows[0].ID, NumRaw: "1111", Bet: -5}},
		})
		assert.True(t, errors.Is(err, ErrInvalidAmount))

		_, err = reversal.EditPlay(ctx, models.EditRequest{
			Key:   keyOf("alice", placed),
			Items: []models.EditItem{{RowID: rows[0].ID, NumRaw: "12345", Bet: 5}},
		})
		assert.True(t, errors.Is(err, ErrInvalidNumber))
	})

	t.Run("bets above the cap leave the play untouched", func(t *testing.T) {
		store, reversal, placed, rows := setup(t)

		_, err := reversal.EditPlay(ctx, models.EditRequest{
			Key: keyOf("alice", placed),
			Items: []models.EditItem{
				{RowID: rows[0].ID, NumRaw: "1111", Bet: math.MaxInt64},
				{RowID: rows[1].ID, NumRaw: "2222", Bet: 2},
			},
		})
		assert.True(t, errors.Is(err, ErrInvalidAmount))

		_, err = reversal.EditPlay(ctx, models.EditRequest{
			Key:   keyOf("alice", placed),
			Items: []models.EditItem{{RowID: rows[0].ID, NumRaw: "1111", Bet: MaxBet + 1}},
		})
		assert.True(t, errors.Is(err, ErrInvalidAmount))

		oversized := MaxPlayBet + 1
		_, err = reversal.EditPlay(ctx, models.EditRequest{Key: keyOf("alice", placed), TotalBet: &oversized})
		assert.True(t, errors.Is(err, ErrInvalidAmount))

		assert.Equal(t, rows, store.rowsOf("alice"))
		assert.Equal(t, int64(800), store.balance("alice"))
		assertConserved(t, store, "alice")
	})

	t.Run("unknown play", func(t *testing.T) {
		_, reversal, placed, _ := setup(t)
		key := keyOf("alice", placed)
		key.Draw = "9999"

		_, err := reversal.EditPlay(ctx, models.EditRequest{Key: key})
		assert.True(t, errors.Is(err, ErrPlayNotFound))
	})
}

func TestReversalService_ConservationAcrossOperations(t *testing.T) {
	store := newMemoryStore()
	store.addAccount("alice", 1000)
	plays := newTestPlayService(store, "1234")
	reversal := newTestReversalService(store)
	ctx := context.Background()

	first, err := plays.PlacePlay(ctx, "alice", []models.CartItem{{Num: "34", Bet: 100}, {Num: "7", Bet: 50, Label: "A"}})
	require.NoError(t, err)
	assertConserved(t, store, "alice")

	plays.now = func() time.Time { return fixedNow.Add(time.Minute) }
	second, err := plays.PlacePlay(ctx, "alice", []models.CartItem{{Num: "1111", Bet: 200}})
	require.NoError(t, err)
	assertConserved(t, store, "alice")

	plays.now = func() time.Time { return fixedNow.Add(2 * time.Minute) }
	third, err := plays.PlacePlay(ctx, "alice", []models.CartItem{{Num: "2222", Bet: 80}})
	require.NoError(t, err)
	assertConserved(t, store, "alice")

	override := int64(120)
	firstRows := store.rowsOf("alice")[:2]
	_, err = reversal.EditPlay(ctx, models.EditRequest{
		Key:      keyOf("alice", first),
		TotalBet: &override,
		Items:    []models.EditItem{{RowID: firstRows[1].ID, NumRaw: "7", Bet: 10, Label: "A"}},
	})
	require.NoError(t, err)
	assertConserved(t, store, "alice")

	_, err = reversal.RefundPlay(ctx, keyOf("alice", second))
	require.NoError(t, err)
	assertConserved(t, store, "alice")

	_, err = reversal.DeletePlay(ctx, keyOf("alice", third))
	require.NoError(t, err)
	assertConserved(t, store, "alice")

	listed, err := plays.ListPlays(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.True(t, listed[0].Refunded)
	assert.Equal(t, int64(120), listed[1].TotalBet)
}
