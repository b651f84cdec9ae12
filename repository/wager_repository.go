package repository

import (
	"context"
	"fmt"
	"time"

	"lotto/database"
	"lotto/models"
	"lotto/service"

	"github.com/jackc/pgx/v5"
)

// WagerRepository implements the WagerRepository interface over the wager_rows ledger
type WagerRepository struct {
	q queryable
}

// NewWagerRepository creates a new wager repository
func NewWagerRepository(db *database.DB) *WagerRepository {
	return &WagerRepository{q: db.Pool}
}

// newWagerRepositoryWithTx creates a new wager repository with a transaction
func newWagerRepositoryWithTx(tx queryable) *WagerRepository {
	return &WagerRepository{q: tx}
}

const wagerColumns = `id, username, play_time, kind, num, bet, draw, win, opt_raw, opt_label, ref_play_time, note, created_at`

func scanWagerRow(row pgx.Row) (*models.WagerRow, error) {
	var w models.WagerRow
	err := row.Scan(
		&w.ID,
		&w.Username,
		&w.PlayTime,
		&w.Kind,
		&w.Num,
		&w.Bet,
		&w.Draw,
		&w.Win,
		&w.Opts.Raw,
		&w.Opts.Label,
		&w.RefPlayTime,
		&w.Note,
		&w.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	w.PlayTime = w.PlayTime.UTC()
	if w.RefPlayTime != nil {
		ref := w.RefPlayTime.UTC()
		w.RefPlayTime = &ref
	}
	return &w, nil
}

func collectWagerRows(rows pgx.Rows) ([]*models.WagerRow, error) {
	defer rows.Close()

	var result []*models.WagerRow
	for rows.Next() {
		w, err := scanWagerRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wager row: %w", err)
		}
		result = append(result, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wager rows: %w", err)
	}
	return result, nil
}

// InsertRows writes rows in order and fills in their IDs and creation times
func (r *WagerRepository) InsertRows(ctx context.Context, rows []*models.WagerRow) error {
	query := `
		INSERT INTO wager_rows
		(username, play_time, kind, num, bet, draw, win, opt_raw, opt_label, ref_play_time, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`

	for _, w := range rows {
		err := r.q.QueryRow(ctx, query,
			w.Username,
			w.PlayTime,
			w.Kind,
			w.Num,
			w.Bet,
			w.Draw,
			w.Win,
			w.Opts.Raw,
			w.Opts.Label,
			w.RefPlayTime,
			w.Note,
		).Scan(&w.ID, &w.CreatedAt)

		if uniqueViolationOn(err, "ux_wager_rows_refund_once") {
			return service.ErrAlreadyRefunded
		}
		if err != nil {
			return fmt.Errorf("failed to insert %s row for user %s: %w", w.Kind, w.Username, err)
		}
	}

	return nil
}

// SumByPlay aggregates the wager rows of a play
func (r *WagerRepository) SumByPlay(ctx context.Context, key models.PlayKey) (*models.PlayTotals, error) {
	query := `
		SELECT COALESCE(SUM(bet), 0), COALESCE(SUM(win), 0), COUNT(*)
		FROM wager_rows
		WHERE username = $1 AND play_time = $2 AND draw = $3 AND kind = 'wager'
	`

	var totals models.PlayTotals
	err := r.q.QueryRow(ctx, query, key.Username, key.PlayTime, key.Draw).Scan(
		&totals.TotalBet,
		&totals.TotalWin,
		&totals.Rows,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to sum play for user %s: %w", key.Username, err)
	}
	return &totals, nil
}

// ListByPlay returns the wager rows of a play ordered by id
func (r *WagerRepository) ListByPlay(ctx context.Context, key models.PlayKey) ([]*models.WagerRow, error) {
	query := `SELECT ` + wagerColumns + `
		FROM wager_rows
		WHERE username = $1 AND play_time = $2 AND draw = $3 AND kind = 'wager'
		ORDER BY id ASC
	`

	rows, err := r.q.Query(ctx, query, key.Username, key.PlayTime, key.Draw)
	if err != nil {
		return nil, fmt.Errorf("failed to list play for user %s: %w", key.Username, err)
	}
	return collectWagerRows(rows)
}

// UpdateRow rewrites num, bet and opts of one wager row of the play.
// The win column is never touched.
func (r *WagerRepository) UpdateRow(ctx context.Context, key models.PlayKey, row *models.WagerRow) (bool, error) {
	query := `
		UPDATE wager_rows
		SET num = $1, bet = $2, opt_raw = $3, opt_label = $4
		WHERE id = $5 AND username = $6 AND play_time = $7 AND draw = $8 AND kind = 'wager'
	`

	result, err := r.q.Exec(ctx, query,
		row.Num,
		row.Bet,
		row.Opts.Raw,
		row.Opts.Label,
		row.ID,
		key.Username,
		key.PlayTime,
		key.Draw,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update wager row %d: %w", row.ID, err)
	}
	return result.RowsAffected() == 1, nil
}

// DeleteByPlay removes the wager rows of a play. Correction rows stay as history.
func (r *WagerRepository) DeleteByPlay(ctx context.Context, key models.PlayKey) (int64, error) {
	query := `
		DELETE FROM wager_rows
		WHERE username = $1 AND play_time = $2 AND draw = $3 AND kind = 'wager'
	`

	result, err := r.q.Exec(ctx, query, key.Username, key.PlayTime, key.Draw)
	if err != nil {
		return 0, fmt.Errorf("failed to delete play for user %s: %w", key.Username, err)
	}
	return result.RowsAffected(), nil
}

// HasRefundFor reports whether a refund row already references the play time
func (r *WagerRepository) HasRefundFor(ctx context.Context, username string, playTime time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM wager_rows
			WHERE username = $1 AND ref_play_time = $2 AND kind = 'refund'
		)
	`

	var exists bool
	if err := r.q.QueryRow(ctx, query, username, playTime).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check refund for user %s: %w", username, err)
	}
	return exists, nil
}

// ListRecent returns the newest rows of a user, newest first
func (r *WagerRepository) ListRecent(ctx context.Context, username string, limit int) ([]*models.WagerRow, error) {
	query := `SELECT ` + wagerColumns + `
		FROM wager_rows
		WHERE username = $1
		ORDER BY id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, username, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent rows for user %s: %w", username, err)
	}
	return collectWagerRows(rows)
}
