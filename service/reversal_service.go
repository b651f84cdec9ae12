package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lotto/events"
	"lotto/models"

	log "github.com/sirupsen/logrus"
)

// reversalService implements the ReversalService interface
type reversalService struct {
	uowFactory UnitOfWorkFactory
	now        func() time.Time
}

// NewReversalService creates a new reversal service
func NewReversalService(uowFactory UnitOfWorkFactory) ReversalService {
	return &reversalService{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

func validateKey(key models.PlayKey) error {
	if key.Username == "" {
		return ErrNotAuthenticated
	}
	if key.PlayTime.IsZero() || key.Draw == "" {
		return ErrMissingParameters
	}
	return nil
}

// ensureNotRefunded rejects corrections to a play whose bet was already returned
func ensureNotRefunded(ctx context.Context, uow UnitOfWork, key models.PlayKey) error {
	refunded, err := uow.WagerRepository().HasRefundFor(ctx, key.Username, key.PlayTime)
	if err != nil {
		return fmt.Errorf("failed to check refund for play: %w", err)
	}
	if refunded {
		return ErrAlreadyRefunded
	}
	return nil
}

// DeletePlay reverses the balance effect of a play and removes its wager rows.
// The balance is floored at zero.
func (s *reversalService) DeletePlay(ctx context.Context, key models.PlayKey) (*models.DeleteResult, error) {
	key = key.Normalize()
	if err := validateKey(key); err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := lockAccount(ctx, uow, key.Username)
	if err != nil {
		return nil, err
	}

	if err := ensureNotRefunded(ctx, uow, key); err != nil {
		return nil, err
	}

	totals, err := uow.WagerRepository().SumByPlay(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to total play: %w", err)
	}
	if totals.Rows == 0 {
		return nil, ErrPlayNotFound
	}

	delta, err := subAmounts(totals.TotalWin, totals.TotalBet)
	if err != nil {
		return nil, err
	}
	newBalance, clamped, err := clampBalance(account.Balance, delta)
	if err != nil {
		return nil, err
	}

	if err := uow.AccountRepository().UpdateBalance(ctx, key.Username, newBalance); err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	if _, err := uow.WagerRepository().DeleteByPlay(ctx, key); err != nil {
		return nil, fmt.Errorf("failed to delete play: %w", err)
	}

	history := &models.BalanceHistory{
		Username:        key.Username,
		BalanceBefore:   account.Balance,
		BalanceAfter:    newBalance,
		ChangeAmount:    newBalance - account.Balance,
		TransactionType: models.TransactionTypePlayDeleted,
		TransactionMetadata: map[string]any{
			"draw":        key.Draw,
			"deleted_bet": totals.TotalBet,
			"deleted_win": totals.TotalWin,
			"rows":        totals.Rows,
			"clamped":     clamped,
		},
		PlayTime: &key.PlayTime,
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.PlayDeletedEvent{
		Username:   key.Username,
		PlayTime:   key.PlayTime,
		Draw:       key.Draw,
		DeletedBet: totals.TotalBet,
		DeletedWin: totals.TotalWin,
		Clamped:    clamped,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"username":   key.Username,
		"draw":       key.Draw,
		"playTime":   key.PlayTime,
		"deletedBet": totals.TotalBet,
		"deletedWin": totals.TotalWin,
		"clamped":    clamped,
		"newBalance": newBalance,
	}).Info("Play deleted")

	return &models.DeleteResult{
		NewBalance: newBalance,
		DeletedBet: totals.TotalBet,
		DeletedWin: totals.TotalWin,
	}, nil
}

// EditPlay rewrites rows of a play and settles the difference in total bet.
// Stored wins are kept as drawn. When TotalBet is given it replaces the recomputed
// total, and the gap between the two is written as an adjustment row.
func (s *reversalService) EditPlay(ctx context.Context, req models.EditRequest) (*models.EditResult, error) {
	key := req.Key.Normalize()
	if err := validateKey(key); err != nil {
		return nil, err
	}
	if req.TotalBet != nil && (*req.TotalBet < 0 || *req.TotalBet > MaxPlayBet) {
		return nil, ErrInvalidAmount
	}
	for _, item := range req.Items {
		if item.RowID <= 0 {
			continue
		}
		if item.Bet < 0 || item.Bet > MaxBet {
			return nil, ErrInvalidAmount
		}
		if len(ExtractDigits(item.NumRaw)) > NumLength {
			return nil, ErrInvalidNumber
		}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := lockAccount(ctx, uow, key.Username)
	if err != nil {
		return nil, err
	}

	if err := ensureNotRefunded(ctx, uow, key); err != nil {
		return nil, err
	}

	wagers := uow.WagerRepository()
	rows, err := wagers.ListByPlay(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load play: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrPlayNotFound
	}

	var originalTotal int64
	byID := make(map[int64]*models.WagerRow, len(rows))
	for _, row := range rows {
		if originalTotal, err = addAmounts(originalTotal, row.Bet); err != nil {
			return nil, err
		}
		byID[row.ID] = row
	}

	for _, item := range req.Items {
		if item.RowID <= 0 {
			continue
		}
		row, ok := byID[item.RowID]
		if !ok {
			log.WithFields(log.Fields{
				"username": key.Username,
				"rowID":    item.RowID,
				"draw":     key.Draw,
			}).Warn("Edit rejected, row does not belong to play")
			return nil, ErrRowNotInPlay
		}

		digits := ExtractDigits(item.NumRaw)
		row.Num = PadNum(digits)
		row.Bet = item.Bet
		row.Opts = models.WagerOpts{Raw: digits, Label: strings.TrimSpace(item.Label)}

		found, err := wagers.UpdateRow(ctx, key, row)
		if err != nil {
			return nil, fmt.Errorf("failed to update row %d: %w", row.ID, err)
		}
		if !found {
			return nil, ErrRowNotInPlay
		}
	}

	var recomputed, totalWin int64
	for _, row := range rows {
		if recomputed, err = addAmounts(recomputed, row.Bet); err != nil {
			return nil, err
		}
		if totalWin, err = addAmounts(totalWin, row.Win); err != nil {
			return nil, err
		}
	}
	if recomputed > MaxPlayBet {
		log.WithFields(log.Fields{
			"username":   key.Username,
			"draw":       key.Draw,
			"recomputed": recomputed,
		}).Warn("Edit rejected, total bet above maximum")
		return nil, ErrInvalidAmount
	}

	effective := recomputed
	if req.TotalBet != nil {
		effective = *req.TotalBet
	}
	delta, err := subAmounts(effective, originalTotal)
	if err != nil {
		return nil, err
	}
	newBalance, clamped, err := clampBalance(account.Balance, delta)
	if err != nil {
		return nil, err
	}

	if err := uow.AccountRepository().UpdateBalance(ctx, key.Username, newBalance); err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	var adjustment int64
	if req.TotalBet != nil && effective != recomputed {
		adjustment = effective - recomputed
		refPlayTime := key.PlayTime
		adj := &models.WagerRow{
			Username:    key.Username,
			PlayTime:    models.NormalizePlayTime(s.now()),
			Kind:        models.RowKindAdjustment,
			Bet:         adjustment,
			Draw:        key.Draw,
			Win:         0,
			RefPlayTime: &refPlayTime,
			Note:        models.NoteTotalBetOverride,
		}
		if err := wagers.InsertRows(ctx, []*models.WagerRow{adj}); err != nil {
			return nil, fmt.Errorf("failed to write adjustment: %w", err)
		}
	}

	history := &models.BalanceHistory{
		Username:        key.Username,
		BalanceBefore:   account.Balance,
		BalanceAfter:    newBalance,
		ChangeAmount:    newBalance - account.Balance,
		TransactionType: models.TransactionTypePlayEdited,
		TransactionMetadata: map[string]any{
			"draw":           key.Draw,
			"original_total": originalTotal,
			"recomputed":     recomputed,
			"effective":      effective,
			"adjustment":     adjustment,
			"clamped":        clamped,
		},
		PlayTime: &key.PlayTime,
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.PlayEditedEvent{
		Username:      key.Username,
		PlayTime:      key.PlayTime,
		Draw:          key.Draw,
		OriginalTotal: originalTotal,
		EffectiveBet:  effective,
		Adjustment:    adjustment,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"username":      key.Username,
		"draw":          key.Draw,
		"playTime":      key.PlayTime,
		"originalTotal": originalTotal,
		"effective":     effective,
		"adjustment":    adjustment,
		"newBalance":    newBalance,
	}).Info("Play edited")

	play := &models.Play{
		PlayTime:    key.PlayTime,
		Draw:        key.Draw,
		TotalBet:    effective,
		TotalWin:    totalWin,
		Adjustments: adjustment,
	}
	for _, row := range rows {
		play.Items = append(play.Items, playItem(row))
	}

	return &models.EditResult{Play: play, NewBalance: newBalance}, nil
}

// RefundPlay returns the total bet of a play once and records a refund row.
// The play's own rows stay untouched.
func (s *reversalService) RefundPlay(ctx context.Context, key models.PlayKey) (*models.RefundResult, error) {
	key = key.Normalize()
	if err := validateKey(key); err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := lockAccount(ctx, uow, key.Username)
	if err != nil {
		return nil, err
	}

	if err := ensureNotRefunded(ctx, uow, key); err != nil {
		log.WithFields(log.Fields{
			"username": key.Username,
			"draw":     key.Draw,
			"playTime": key.PlayTime,
		}).Warn("Refund rejected")
		return nil, err
	}

	totals, err := uow.WagerRepository().SumByPlay(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to total play: %w", err)
	}
	if totals.TotalBet <= 0 {
		return nil, ErrNothingToRefund
	}

	newBalance, err := addAmounts(account.Balance, totals.TotalBet)
	if err != nil {
		return nil, err
	}
	if err := uow.AccountRepository().UpdateBalance(ctx, key.Username, newBalance); err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	refPlayTime := key.PlayTime
	refund := &models.WagerRow{
		Username:    key.Username,
		PlayTime:    models.NormalizePlayTime(s.now()),
		Kind:        models.RowKindRefund,
		Bet:         -totals.TotalBet,
		Draw:        key.Draw,
		Win:         0,
		RefPlayTime: &refPlayTime,
		Note:        models.NoteRefund,
	}
	if err := uow.WagerRepository().InsertRows(ctx, []*models.WagerRow{refund}); err != nil {
		return nil, fmt.Errorf("failed to write refund: %w", err)
	}

	history := &models.BalanceHistory{
		Username:        key.Username,
		BalanceBefore:   account.Balance,
		BalanceAfter:    newBalance,
		ChangeAmount:    totals.TotalBet,
		TransactionType: models.TransactionTypePlayRefunded,
		TransactionMetadata: map[string]any{
			"draw":     key.Draw,
			"refunded": totals.TotalBet,
		},
		PlayTime: &key.PlayTime,
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.PlayRefundedEvent{
		Username: key.Username,
		PlayTime: key.PlayTime,
		Draw:     key.Draw,
		Refunded: totals.TotalBet,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"username":   key.Username,
		"draw":       key.Draw,
		"playTime":   key.PlayTime,
		"refunded":   totals.TotalBet,
		"newBalance": newBalance,
	}).Info("Play refunded")

	return &models.RefundResult{NewBalance: newBalance, Refunded: totals.TotalBet}, nil
}
