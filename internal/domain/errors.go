package domain

import "errors"

// Trade rejections. A rejected trade never mutates the account.
var (
	ErrInvalidQuantity    = errors.New("quantity must be a positive integer")
	ErrUnknownSymbol      = errors.New("unknown symbol")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("insufficient shares")
)

var (
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidPrice        = errors.New("price must be at least 0.01")
	ErrInvalidInstrument   = errors.New("invalid instrument")
	ErrDuplicateInstrument = errors.New("instrument with same symbol already exists")
	ErrAccountNotFound     = errors.New("account not found")
)
