// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/ava-labs/reflectvm/codec"
	"github.com/ava-labs/reflectvm/state"
	"github.com/ava-labs/reflectvm/storage"
)

// Ledger holds reflected ("r-space") balances and the reflected total, and
// converts between reflected and nominal units.
//
// The exchange rate is never stored: it is derived from the reflected total
// and the nominal supply at every conversion.
type Ledger struct {
	mu state.Mutable
}

func New(mu state.Mutable) *Ledger {
	return &Ledger{mu: mu}
}

// Initialize sets the reflected total to the largest multiple of
// [initialNominalSupply] that fits in 256 bits and assigns all of it to
// [owner].
func (l *Ledger) Initialize(ctx context.Context, initialNominalSupply *uint256.Int, owner codec.Address) error {
	if initialNominalSupply.IsZero() {
		return ErrDegenerateSupply
	}
	rTotal, err := storage.GetRTotal(ctx, l.mu)
	if err != nil {
		return err
	}
	if !rTotal.IsZero() {
		return ErrAlreadyInitialized
	}

	maxUint := new(uint256.Int).SetAllOne()
	rTotal.Sub(maxUint, new(uint256.Int).Mod(maxUint, initialNominalSupply))
	if err := storage.SetRTotal(ctx, l.mu, rTotal); err != nil {
		return err
	}
	if err := storage.SetFeeTotal(ctx, l.mu, new(uint256.Int)); err != nil {
		return err
	}
	return storage.SetBalance(ctx, l.mu, owner, rTotal)
}

// RateOf returns rTotal / [nominalTotalSupply].
func (l *Ledger) RateOf(ctx context.Context, nominalTotalSupply *uint256.Int) (*uint256.Int, error) {
	rTotal, err := storage.GetRTotal(ctx, l.mu)
	if err != nil {
		return nil, err
	}
	return rate(rTotal, nominalTotalSupply)
}

func rate(rTotal *uint256.Int, nominalTotalSupply *uint256.Int) (*uint256.Int, error) {
	if nominalTotalSupply.IsZero() {
		return nil, fmt.Errorf("%w: zero nominal supply", ErrRateUndefined)
	}
	r := new(uint256.Int).Div(rTotal, nominalTotalSupply)
	if r.IsZero() {
		return nil, fmt.Errorf(
			"%w: reflected total %s below nominal supply %s",
			ErrRateUndefined,
			rTotal.Dec(),
			nominalTotalSupply.Dec(),
		)
	}
	return r, nil
}

// NominalBalanceOf converts the reflected balance of [account] to nominal
// units. Unknown accounts have a zero balance.
func (l *Ledger) NominalBalanceOf(ctx context.Context, account codec.Address, nominalTotalSupply *uint256.Int) (*uint256.Int, error) {
	r, err := l.RateOf(ctx, nominalTotalSupply)
	if err != nil {
		return nil, err
	}
	rBalance, err := storage.GetBalance(ctx, l.mu, account)
	if err != nil {
		return nil, err
	}
	return rBalance.Div(rBalance, r), nil
}

// NominalFromReflected converts an arbitrary reflected amount to nominal
// units. Amounts above the reflected total cannot have come from this
// ledger.
func (l *Ledger) NominalFromReflected(ctx context.Context, rAmount *uint256.Int, nominalTotalSupply *uint256.Int) (*uint256.Int, error) {
	rTotal, err := storage.GetRTotal(ctx, l.mu)
	if err != nil {
		return nil, err
	}
	if rAmount.Gt(rTotal) {
		return nil, fmt.Errorf(
			"%w: amount=%s total=%s",
			ErrReflectionTotalTooSmall,
			rAmount.Dec(),
			rTotal.Dec(),
		)
	}
	r, err := rate(rTotal, nominalTotalSupply)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).Div(rAmount, r), nil
}

// DebitCredit subtracts [rDebit] from [sender] and adds [rCredit] to
// [recipient]. It is the only mutator of account balances and performs no
// conversion. Both balances are computed before either is written.
func (l *Ledger) DebitCredit(
	ctx context.Context,
	sender codec.Address,
	recipient codec.Address,
	rDebit *uint256.Int,
	rCredit *uint256.Int,
) error {
	senderBalance, err := storage.GetBalance(ctx, l.mu, sender)
	if err != nil {
		return err
	}
	if senderBalance.Lt(rDebit) {
		return &InsufficientBalanceError{
			Account:   sender,
			Available: senderBalance,
			Requested: rDebit.Clone(),
		}
	}
	senderBalance.Sub(senderBalance, rDebit)

	if sender == recipient {
		if _, overflow := senderBalance.AddOverflow(senderBalance, rCredit); overflow {
			return fmt.Errorf("%w: credit %s to %s", ErrArithmeticOverflow, rCredit.Dec(), recipient)
		}
		return storage.SetBalance(ctx, l.mu, sender, senderBalance)
	}

	recipientBalance, err := storage.GetBalance(ctx, l.mu, recipient)
	if err != nil {
		return err
	}
	if _, overflow := recipientBalance.AddOverflow(recipientBalance, rCredit); overflow {
		return fmt.Errorf("%w: credit %s to %s", ErrArithmeticOverflow, rCredit.Dec(), recipient)
	}
	if err := storage.SetBalance(ctx, l.mu, sender, senderBalance); err != nil {
		return err
	}
	return storage.SetBalance(ctx, l.mu, recipient, recipientBalance)
}

// CheckReflectFee fails with [ErrRateUndefined] when removing [rFee] from the
// reflected total would leave it below [nominalTotalSupply], which would
// drive the rate to zero. It reads only.
func (l *Ledger) CheckReflectFee(ctx context.Context, rFee *uint256.Int, nominalTotalSupply *uint256.Int) error {
	rTotal, err := storage.GetRTotal(ctx, l.mu)
	if err != nil {
		return err
	}
	remaining, underflow := new(uint256.Int).SubOverflow(rTotal, rFee)
	if underflow || remaining.Lt(nominalTotalSupply) {
		return fmt.Errorf(
			"%w: reflecting %s leaves reflected total %s below nominal supply %s",
			ErrRateUndefined,
			rFee.Dec(),
			rTotal.Dec(),
			nominalTotalSupply.Dec(),
		)
	}
	return nil
}

// ReflectFee removes [rFee] from the reflected total, raising the nominal
// balance of every holder, and records [tFee] in the accumulated fee total.
// It is the only mutator of the reflected total.
func (l *Ledger) ReflectFee(ctx context.Context, rFee *uint256.Int, tFee *uint256.Int) error {
	rTotal, err := storage.GetRTotal(ctx, l.mu)
	if err != nil {
		return err
	}
	tFeeTotal, err := storage.GetFeeTotal(ctx, l.mu)
	if err != nil {
		return err
	}
	if _, underflow := rTotal.SubOverflow(rTotal, rFee); underflow {
		return fmt.Errorf("%w: reflected fee %s exceeds reflected total", ErrArithmeticOverflow, rFee.Dec())
	}
	if _, overflow := tFeeTotal.AddOverflow(tFeeTotal, tFee); overflow {
		return fmt.Errorf("%w: accumulated fee total", ErrArithmeticOverflow)
	}
	if err := storage.SetRTotal(ctx, l.mu, rTotal); err != nil {
		return err
	}
	return storage.SetFeeTotal(ctx, l.mu, tFeeTotal)
}

// RTotal returns the current reflected total.
func (l *Ledger) RTotal(ctx context.Context) (*uint256.Int, error) {
	return storage.GetRTotal(ctx, l.mu)
}

// FeeTotal returns the nominal sum of all fees ever reflected.
func (l *Ledger) FeeTotal(ctx context.Context) (*uint256.Int, error) {
	return storage.GetFeeTotal(ctx, l.mu)
}

// ReflectedBalanceOf returns the raw reflected balance of [account].
func (l *Ledger) ReflectedBalanceOf(ctx context.Context, account codec.Address) (*uint256.Int, error) {
	return storage.GetBalance(ctx, l.mu, account)
}
