package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"lotto/events"
	"lotto/models"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultHistoryRows = 100
	MaxHistoryRows     = 500
)

// playService implements the PlayService interface
type playService struct {
	uowFactory UnitOfWorkFactory
	draws      DrawSource
	now        func() time.Time
}

// NewPlayService creates a new play service
func NewPlayService(uowFactory UnitOfWorkFactory, draws DrawSource) PlayService {
	if draws == nil {
		draws = RandomDraw{}
	}
	return &playService{
		uowFactory: uowFactory,
		draws:      draws,
		now:        time.Now,
	}
}

// PlacePlay validates the cart, draws once and writes every ticket with the balance change
func (s *playService) PlacePlay(ctx context.Context, username string, items []models.CartItem) (*models.PlaceResult, error) {
	if username == "" {
		return nil, ErrNotAuthenticated
	}

	tickets, rejected := ParseCart(items)
	for _, r := range rejected {
		if r.Reason == reasonBetTooLarge {
			log.WithFields(log.Fields{
				"username": username,
				"index":    r.Index,
			}).Warn("Play rejected, bet above maximum")
			return nil, ErrInvalidAmount
		}
	}
	if len(tickets) == 0 {
		log.WithFields(log.Fields{
			"username": username,
			"items":    len(items),
			"rejected": len(rejected),
		}).Warn("Play rejected, no valid tickets")
		return nil, ErrNothingToPlay
	}

	var totalBet int64
	for _, t := range tickets {
		sum, err := addAmounts(totalBet, t.Bet)
		if err != nil || sum > MaxPlayBet {
			log.WithFields(log.Fields{
				"username": username,
				"tickets":  len(tickets),
			}).Warn("Play rejected, total bet above maximum")
			return nil, ErrInvalidAmount
		}
		totalBet = sum
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := lockAccount(ctx, uow, username)
	if err != nil {
		return nil, err
	}

	if totalBet > account.Balance {
		log.WithFields(log.Fields{
			"username": username,
			"totalBet": totalBet,
			"balance":  account.Balance,
		}).Warn("Play rejected, insufficient balance")
		return nil, ErrInsufficientBalance
	}

	draw := s.draws.Next()
	playTime := models.NormalizePlayTime(s.now())

	var totalWin int64
	rows := make([]*models.WagerRow, 0, len(tickets))
	for i := range tickets {
		t := &tickets[i]
		t.Win = EvaluateWin(t.Num, t.Opts.Label, t.Bet, draw)
		totalWin += t.Win
		rows = append(rows, &models.WagerRow{
			Username: username,
			PlayTime: playTime,
			Kind:     models.RowKindWager,
			Num:      t.Num,
			Bet:      t.Bet,
			Draw:     draw,
			Win:      t.Win,
			Opts:     t.Opts,
		})
	}

	if err := uow.WagerRepository().InsertRows(ctx, rows); err != nil {
		return nil, fmt.Errorf("failed to write play: %w", err)
	}

	newBalance, err := addAmounts(account.Balance-totalBet, totalWin)
	if err != nil {
		return nil, err
	}
	if err := uow.AccountRepository().UpdateBalance(ctx, username, newBalance); err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	history := &models.BalanceHistory{
		Username:        username,
		BalanceBefore:   account.Balance,
		BalanceAfter:    newBalance,
		ChangeAmount:    totalWin - totalBet,
		TransactionType: models.TransactionTypePlayPlaced,
		TransactionMetadata: map[string]any{
			"draw":      draw,
			"tickets":   len(tickets),
			"total_bet": totalBet,
			"total_win": totalWin,
		},
		PlayTime: &playTime,
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.PlayPlacedEvent{
		Username: username,
		PlayTime: playTime,
		Draw:     draw,
		Tickets:  len(tickets),
		TotalBet: totalBet,
		TotalWin: totalWin,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"username":   username,
		"draw":       draw,
		"playTime":   playTime,
		"totalBet":   totalBet,
		"totalWin":   totalWin,
		"newBalance": newBalance,
	}).Info("Play placed")

	return &models.PlaceResult{
		Message:    PlayMessage(draw, totalWin),
		TotalBet:   totalBet,
		TotalWin:   totalWin,
		Draw:       draw,
		PlayTime:   playTime,
		NewBalance: newBalance,
		Tickets:    tickets,
		Rejected:   rejected,
	}, nil
}

// ListPlays returns the user's recent plays grouped from their newest ledger rows
func (s *playService) ListPlays(ctx context.Context, username string, limit int) ([]*models.Play, error) {
	if username == "" {
		return nil, ErrNotAuthenticated
	}
	if limit <= 0 {
		limit = DefaultHistoryRows
	}
	if limit > MaxHistoryRows {
		limit = MaxHistoryRows
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	rows, err := uow.WagerRepository().ListRecent(ctx, username, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list plays: %w", err)
	}

	return GroupPlays(rows), nil
}

type playGroupKey struct {
	playTime int64
	draw     string
}

// GroupPlays folds ledger rows, newest first, into plays.
// Refund rows mark their play refunded and adjustment rows add to its total bet.
// Corrections whose play is outside the rows are ignored.
func GroupPlays(rows []*models.WagerRow) []*models.Play {
	var plays []*models.Play
	byKey := make(map[playGroupKey]*models.Play)

	for _, row := range rows {
		if row.Kind != models.RowKindWager {
			continue
		}
		k := playGroupKey{playTime: row.PlayTime.UnixMicro(), draw: row.Draw}
		play, ok := byKey[k]
		if !ok {
			play = &models.Play{PlayTime: row.PlayTime, Draw: row.Draw}
			byKey[k] = play
			plays = append(plays, play)
		}
		play.Items = append(play.Items, playItem(row))
		play.TotalBet += row.Bet
		play.TotalWin += row.Win
	}

	for _, row := range rows {
		if !row.Kind.IsCorrection() || row.RefPlayTime == nil {
			continue
		}
		play, ok := byKey[playGroupKey{playTime: row.RefPlayTime.UnixMicro(), draw: row.Draw}]
		if !ok {
			continue
		}
		switch row.Kind {
		case models.RowKindRefund:
			play.Refunded = true
		case models.RowKindAdjustment:
			play.Adjustments += row.Bet
			play.TotalBet += row.Bet
		}
	}

	for _, play := range plays {
		sort.Slice(play.Items, func(i, j int) bool {
			return play.Items[i].RowID < play.Items[j].RowID
		})
	}

	return plays
}

func playItem(row *models.WagerRow) models.PlayItem {
	return models.PlayItem{
		RowID:  row.ID,
		Num:    row.Num,
		NumRaw: row.Opts.Raw,
		Label:  row.Opts.Label,
		Bet:    row.Bet,
		Win:    row.Win,
	}
}
