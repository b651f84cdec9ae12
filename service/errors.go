package service

import "errors"

var (
	ErrMissingParameters   = errors.New("missing parameters")
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUsernameTaken       = errors.New("username taken")
	ErrAccountNotFound     = errors.New("user not found")
	ErrNothingToPlay       = errors.New("nothing to play")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrPlayNotFound        = errors.New("play not found")
	ErrAlreadyRefunded     = errors.New("already refunded")
	ErrNothingToRefund     = errors.New("no bet found to refund")
	ErrRowNotInPlay        = errors.New("row not in play")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidNumber       = errors.New("invalid number")
)
