// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/ava-labs/reflectvm/codec"
)

var (
	ErrDegenerateSupply        = errors.New("reflective ledger requires a non-zero supply")
	ErrAlreadyInitialized      = errors.New("ledger already initialized")
	ErrRateUndefined           = errors.New("rate undefined")
	ErrReflectionTotalTooSmall = errors.New("amount must be less than total reflections")
	ErrInsufficientBalance     = errors.New("insufficient balance")
	ErrArithmeticOverflow      = errors.New("arithmetic overflow")
)

// InsufficientBalanceError reports a debit larger than the sender's
// reflected balance. Amounts are in reflected units.
type InsufficientBalanceError struct {
	Account   codec.Address
	Available *uint256.Int
	Requested *uint256.Int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf(
		"%s: account=%s available=%s requested=%s",
		ErrInsufficientBalance,
		e.Account,
		e.Available.Dec(),
		e.Requested.Dec(),
	)
}

func (*InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}
