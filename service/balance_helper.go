package service

import (
	"context"
	"fmt"

	"lotto/events"
	"lotto/models"
)

// RecordBalanceChange records a balance history entry and emits the matching event.
// This is the single entry point for all balance changes in the system.
func RecordBalanceChange(ctx context.Context, uow UnitOfWork, history *models.BalanceHistory) error {
	if err := uow.BalanceHistoryRepository().Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}

	// Flushed after the transaction commits
	uow.EventBus().Publish(events.BalanceChangeEvent{
		Username:        history.Username,
		OldBalance:      history.BalanceBefore,
		NewBalance:      history.BalanceAfter,
		TransactionType: history.TransactionType,
		ChangeAmount:    history.ChangeAmount,
	})

	if history.TransactionType == models.TransactionTypeInitial {
		uow.EventBus().Publish(events.AccountOpenedEvent{
			Username:       history.Username,
			InitialBalance: history.BalanceAfter,
		})
	}

	return nil
}

// clampBalance applies a reversal delta and floors the result at zero
func clampBalance(balance, delta int64) (int64, bool, error) {
	next, err := subAmounts(balance, delta)
	if err != nil {
		return 0, false, err
	}
	if next < 0 {
		return 0, true, nil
	}
	return next, false, nil
}

// addAmounts adds two amounts, failing with ErrInvalidAmount when the sum leaves int64
func addAmounts(a, b int64) (int64, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, ErrInvalidAmount
	}
	return sum, nil
}

// subAmounts subtracts b from a, failing with ErrInvalidAmount when the result leaves int64
func subAmounts(a, b int64) (int64, error) {
	diff := a - b
	if (b > 0 && diff > a) || (b < 0 && diff < a) {
		return 0, ErrInvalidAmount
	}
	return diff, nil
}

// lockAccount takes the account row lock that serialises every ledger change of one user
func lockAccount(ctx context.Context, uow UnitOfWork, username string) (*models.Account, error) {
	account, err := uow.AccountRepository().LockByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account %s: %w", username, err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}
