package models

import (
	"time"
)

// RowKind distinguishes ordinary wager rows from correction rows
type RowKind string

const (
	RowKindWager      RowKind = "wager"
	RowKindRefund     RowKind = "refund"
	RowKindAdjustment RowKind = "adjustment"
)

// IsCorrection reports whether rows of this kind record a correction to an earlier play
func (k RowKind) IsCorrection() bool {
	return k == RowKindRefund || k == RowKindAdjustment
}

// Marker returns the short label shown in play history for correction rows
func (k RowKind) Marker() string {
	switch k {
	case RowKindRefund:
		return "REFUND"
	case RowKindAdjustment:
		return "ADJ"
	default:
		return ""
	}
}

// Note values stored on correction rows
const (
	NoteRefund           = "refund"
	NoteTotalBetOverride = "total_bet_override"
)

// WagerOpts holds the ticket's original digits and its label
type WagerOpts struct {
	Raw   string `json:"raw"`
	Label string `json:"label"`
}

// WagerRow is a single persisted ledger row.
// Wager rows belong to a play; refund and adjustment rows point back at one through RefPlayTime.
type WagerRow struct {
	ID          int64      `db:"id"`
	Username    string     `db:"username"`
	PlayTime    time.Time  `db:"play_time"`
	Kind        RowKind    `db:"kind"`
	Num         string     `db:"num"`
	Bet         int64      `db:"bet"`
	Draw        string     `db:"draw"`
	Win         int64      `db:"win"`
	Opts        WagerOpts  `db:"opts"`
	RefPlayTime *time.Time `db:"ref_play_time"`
	Note        string     `db:"note"`
	CreatedAt   time.Time  `db:"created_at"`
}

// Net is the row's contribution to the account balance
func (r *WagerRow) Net() int64 {
	return r.Win - r.Bet
}

// Key returns the play this row belongs to, or the play it corrects for correction rows
func (r *WagerRow) Key() PlayKey {
	if r.Kind.IsCorrection() && r.RefPlayTime != nil {
		return PlayKey{Username: r.Username, PlayTime: *r.RefPlayTime, Draw: r.Draw}
	}
	return PlayKey{Username: r.Username, PlayTime: r.PlayTime, Draw: r.Draw}
}
