// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package token

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/ava-labs/reflectvm/codec"
	"github.com/ava-labs/reflectvm/genesis"
	"github.com/ava-labs/reflectvm/ledger"
	"github.com/ava-labs/reflectvm/reflection"
	"github.com/ava-labs/reflectvm/state"
	"github.com/ava-labs/reflectvm/storage"
)

var (
	_ accounting = (*reflective)(nil)
	_ accounting = (*standard)(nil)
)

// ReflectionInfo is a snapshot of the reflected totals.
type ReflectionInfo struct {
	RTotal    *uint256.Int `json:"rTotal"`
	Rate      *uint256.Int `json:"rate"`
	TFeeTotal *uint256.Int `json:"tFeeTotal"`
}

// accounting is the balance model selected when the token is created. Every
// method runs against a staged view supplied by the token.
type accounting interface {
	genesis.Allocator

	mode() byte
	balanceOf(ctx context.Context, mu state.Mutable, account codec.Address, supply *uint256.Int) (*uint256.Int, error)
	transfer(ctx context.Context, mu state.Mutable, from, to codec.Address, amount *uint256.Int, feeBps uint16, supply *uint256.Int) (*reflection.Transfer, error)
	transferExempt(ctx context.Context, mu state.Mutable, from, to codec.Address, amount *uint256.Int, supply *uint256.Int) (*reflection.Transfer, error)
	tokenFromReflection(ctx context.Context, mu state.Mutable, rAmount *uint256.Int, supply *uint256.Int) (*uint256.Int, error)
	reflectionInfo(ctx context.Context, mu state.Mutable, supply *uint256.Int) (*ReflectionInfo, error)
	mint(ctx context.Context, mu state.Mutable, to codec.Address, amount *uint256.Int, supply *uint256.Int) error
	burn(ctx context.Context, mu state.Mutable, from codec.Address, amount *uint256.Int, supply *uint256.Int) error
}

func newAccounting(mode byte) (accounting, error) {
	switch mode {
	case genesis.ModeReflective:
		return reflective{}, nil
	case genesis.ModeStandard:
		return standard{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, mode)
	}
}

// reflective keeps balances in reflected units and charges a fee that is
// reflected to every holder.
type reflective struct{}

func (reflective) mode() byte {
	return genesis.ModeReflective
}

func (reflective) Allocate(ctx context.Context, mu state.Mutable, owner codec.Address, supply *uint256.Int) error {
	return ledger.New(mu).Initialize(ctx, supply, owner)
}

func (reflective) balanceOf(ctx context.Context, mu state.Mutable, account codec.Address, supply *uint256.Int) (*uint256.Int, error) {
	return ledger.New(mu).NominalBalanceOf(ctx, account, supply)
}

func (reflective) transfer(
	ctx context.Context,
	mu state.Mutable,
	from, to codec.Address,
	amount *uint256.Int,
	feeBps uint16,
	supply *uint256.Int,
) (*reflection.Transfer, error) {
	return reflection.New(ledger.New(mu)).TransferWithReflection(ctx, from, to, amount, feeBps, supply)
}

func (reflective) transferExempt(
	ctx context.Context,
	mu state.Mutable,
	from, to codec.Address,
	amount *uint256.Int,
	supply *uint256.Int,
) (*reflection.Transfer, error) {
	return reflection.New(ledger.New(mu)).TransferWithoutReflection(ctx, from, to, amount, supply)
}

func (reflective) tokenFromReflection(ctx context.Context, mu state.Mutable, rAmount *uint256.Int, supply *uint256.Int) (*uint256.Int, error) {
	return ledger.New(mu).NominalFromReflected(ctx, rAmount, supply)
}

func (reflective) reflectionInfo(ctx context.Context, mu state.Mutable, supply *uint256.Int) (*ReflectionInfo, error) {
	l := ledger.New(mu)
	rTotal, err := l.RTotal(ctx)
	if err != nil {
		return nil, err
	}
	rate, err := l.RateOf(ctx, supply)
	if err != nil {
		return nil, err
	}
	tFeeTotal, err := l.FeeTotal(ctx)
	if err != nil {
		return nil, err
	}
	return &ReflectionInfo{RTotal: rTotal, Rate: rate, TFeeTotal: tFeeTotal}, nil
}

func (reflective) mint(context.Context, state.Mutable, codec.Address, *uint256.Int, *uint256.Int) error {
	return ErrMintingDisabled
}

func (reflective) burn(context.Context, state.Mutable, codec.Address, *uint256.Int, *uint256.Int) error {
	return ErrBurningDisabled
}

// standard keeps plain nominal balances. Transfers move exact amounts and
// the supply can change.
type standard struct{}

func (standard) mode() byte {
	return genesis.ModeStandard
}

func (standard) Allocate(ctx context.Context, mu state.Mutable, owner codec.Address, supply *uint256.Int) error {
	return storage.SetBalance(ctx, mu, owner, supply)
}

func (standard) balanceOf(ctx context.Context, mu state.Mutable, account codec.Address, _ *uint256.Int) (*uint256.Int, error) {
	return storage.GetBalance(ctx, mu, account)
}

// No fee is charged in standard mode.
func (s standard) transfer(
	ctx context.Context,
	mu state.Mutable,
	from, to codec.Address,
	amount *uint256.Int,
	_ uint16,
	supply *uint256.Int,
) (*reflection.Transfer, error) {
	return s.transferExempt(ctx, mu, from, to, amount, supply)
}

func (standard) transferExempt(
	ctx context.Context,
	mu state.Mutable,
	from, to codec.Address,
	amount *uint256.Int,
	_ *uint256.Int,
) (*reflection.Transfer, error) {
	if amount.IsZero() {
		return nil, nil
	}
	// Balances are nominal, so the ledger's raw mover applies unchanged
	if err := ledger.New(mu).DebitCredit(ctx, from, to, amount, amount); err != nil {
		return nil, err
	}
	return &reflection.Transfer{
		From:     from,
		To:       to,
		Amount:   amount.Clone(),
		Credited: amount.Clone(),
		Fee:      new(uint256.Int),
	}, nil
}

func (standard) tokenFromReflection(context.Context, state.Mutable, *uint256.Int, *uint256.Int) (*uint256.Int, error) {
	return nil, ErrReflectionDisabled
}

func (standard) reflectionInfo(context.Context, state.Mutable, *uint256.Int) (*ReflectionInfo, error) {
	return nil, ErrReflectionDisabled
}

func (standard) mint(ctx context.Context, mu state.Mutable, to codec.Address, amount *uint256.Int, supply *uint256.Int) error {
	newSupply, overflow := new(uint256.Int).AddOverflow(supply, amount)
	if overflow {
		return fmt.Errorf("%w: supply %s + %s", ledger.ErrArithmeticOverflow, supply.Dec(), amount.Dec())
	}
	bal, err := storage.GetBalance(ctx, mu, to)
	if err != nil {
		return err
	}
	// Every balance is bounded by the supply, so this cannot overflow once
	// the supply check passed.
	bal.Add(bal, amount)
	if err := storage.SetBalance(ctx, mu, to, bal); err != nil {
		return err
	}
	return storage.SetSupply(ctx, mu, newSupply)
}

func (standard) burn(ctx context.Context, mu state.Mutable, from codec.Address, amount *uint256.Int, supply *uint256.Int) error {
	bal, err := storage.GetBalance(ctx, mu, from)
	if err != nil {
		return err
	}
	if bal.Lt(amount) {
		return &ledger.InsufficientBalanceError{
			Account:   from,
			Available: bal,
			Requested: amount.Clone(),
		}
	}
	newSupply, underflow := new(uint256.Int).SubOverflow(supply, amount)
	if underflow {
		return fmt.Errorf("%w: supply %s - %s", ledger.ErrArithmeticOverflow, supply.Dec(), amount.Dec())
	}
	if err := storage.SetBalance(ctx, mu, from, bal.Sub(bal, amount)); err != nil {
		return err
	}
	return storage.SetSupply(ctx, mu, newSupply)
}
