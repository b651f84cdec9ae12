package models

import (
	"fmt"
	"strings"
	"time"
)

// PlayKey identifies one play: all wager rows a user placed against a single draw
type PlayKey struct {
	Username string
	PlayTime time.Time
	Draw     string
}

// Normalize truncates the play time to the precision stored by the database
func (k PlayKey) Normalize() PlayKey {
	k.PlayTime = NormalizePlayTime(k.PlayTime)
	return k
}

// NormalizePlayTime returns t in UTC truncated to microseconds
func NormalizePlayTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

var playTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

// ParsePlayTime reads a play time as clients echo it back, treating values without a zone as UTC
func ParsePlayTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range playTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return NormalizePlayTime(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised play time %q", raw)
}

// CartItem is one ticket as submitted by a client
type CartItem struct {
	Num   string `json:"num"`
	Bet   int64  `json:"bet"`
	Label string `json:"label"`
}

// Ticket is a validated cart item ready to be evaluated and written
type Ticket struct {
	Num  string    `json:"num"`
	Bet  int64     `json:"bet"`
	Opts WagerOpts `json:"opts"`
	Win  int64     `json:"win"`
}

// Rejection explains why a cart item was not accepted
type Rejection struct {
	Index  int    `json:"index"`
	Num    string `json:"num"`
	Reason string `json:"reason"`
}

// PlaceResult is the outcome of placing a play
type PlaceResult struct {
	Message    string      `json:"message"`
	TotalBet   int64       `json:"total_bet"`
	TotalWin   int64       `json:"total_win"`
	Draw       string      `json:"draw"`
	PlayTime   time.Time   `json:"play_time"`
	NewBalance int64       `json:"new_balance"`
	Tickets    []Ticket    `json:"tickets"`
	Rejected   []Rejection `json:"rejected"`
}

// PlayTotals aggregates the wager rows of one play
type PlayTotals struct {
	TotalBet int64
	TotalWin int64
	Rows     int
}

// PlayItem is one wager row as shown in play history and edit results
type PlayItem struct {
	RowID  int64  `json:"db_id"`
	Num    string `json:"num"`
	NumRaw string `json:"num_raw"`
	Label  string `json:"label"`
	Bet    int64  `json:"bet"`
	Win    int64  `json:"win"`
}

// Play groups the wager rows of one play with its corrections
type Play struct {
	PlayTime    time.Time  `json:"play_time"`
	Draw        string     `json:"draw"`
	Items       []PlayItem `json:"items"`
	TotalBet    int64      `json:"total_bet"`
	TotalWin    int64      `json:"total_win"`
	Refunded    bool       `json:"refunded"`
	Adjustments int64      `json:"adjustments"`
}

// EditItem changes one wager row of a play
type EditItem struct {
	RowID  int64  `json:"db_id"`
	NumRaw string `json:"num_raw"`
	Bet    int64  `json:"bet"`
	Label  string `json:"label"`
}

// EditRequest edits the rows of a play, optionally overriding its total bet
type EditRequest struct {
	Key      PlayKey
	TotalBet *int64
	Items    []EditItem
}

// EditResult is the outcome of editing a play
type EditResult struct {
	Play       *Play `json:"play"`
	NewBalance int64 `json:"new_balance"`
}

// DeleteResult is the outcome of deleting a play
type DeleteResult struct {
	NewBalance int64 `json:"new_balance"`
	DeletedBet int64 `json:"deleted_bet"`
	DeletedWin int64 `json:"deleted_win"`
}

// RefundResult is the outcome of refunding a play
type RefundResult struct {
	NewBalance int64 `json:"new_balance"`
	Refunded   int64 `json:"refunded"`
}
