package repo

import "errors"

var (
	// ErrItemNotFound is returned when an item id does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrTransactionNotFound is returned when a transaction id does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrInsufficientStock is returned when committing a sale would drive an
	// item quantity below zero. Nothing is persisted when it is returned.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidTransition is returned on a status change the forward-only
	// state machine does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrDuplicatedValueUnique is returned when a write violates a unique
	// constraint.
	ErrDuplicatedValueUnique = errors.New("duplicated value in unique column")
)
