// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package reflection

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/ava-labs/reflectvm/codec"
	"github.com/ava-labs/reflectvm/consts"
	"github.com/ava-labs/reflectvm/ledger"
)

// Transfer describes an applied transfer in nominal units.
//
// Amount is the amount the sender asked to move and is what observers are
// told was transferred. Credited is what the recipient actually received,
// which is lower than Amount by Fee on the reflecting path.
type Transfer struct {
	From      codec.Address `json:"from"`
	To        codec.Address `json:"to"`
	Amount    *uint256.Int  `json:"amount"`
	Credited  *uint256.Int  `json:"credited"`
	Fee       *uint256.Int  `json:"fee"`
	Reflected bool          `json:"reflected"`
}

// Engine sequences ledger calls for both transfer variants. It holds no
// state of its own between calls.
type Engine struct {
	ledger *ledger.Ledger
}

func New(l *ledger.Ledger) *Engine {
	return &Engine{ledger: l}
}

// ComputeFee splits [tAmount] into the fee floor(tAmount*feeBps/10000) and
// the remainder credited to the recipient.
func ComputeFee(tAmount *uint256.Int, feeBps uint16) (*uint256.Int, *uint256.Int, error) {
	if feeBps > consts.MaxFeeBps {
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidFeeBps, feeBps)
	}
	tFee, overflow := new(uint256.Int).MulOverflow(tAmount, uint256.NewInt(uint64(feeBps)))
	if overflow {
		return nil, nil, fmt.Errorf("%w: fee on %s", ledger.ErrArithmeticOverflow, tAmount.Dec())
	}
	tFee.Div(tFee, uint256.NewInt(consts.BasisPointsDenominator))
	return tFee, new(uint256.Int).Sub(tAmount, tFee), nil
}

// TransferWithReflection moves [tAmount] from [sender] to [recipient],
// charging [feeBps] and reflecting the fee to every holder by shrinking the
// reflected total.
//
// All reflected amounts are derived from the rate observed before the fee
// is reflected. The debit and credit are applied before the total shrinks.
// A fee that would push the reflected total below the nominal supply is
// rejected before anything is written.
func (e *Engine) TransferWithReflection(
	ctx context.Context,
	sender codec.Address,
	recipient codec.Address,
	tAmount *uint256.Int,
	feeBps uint16,
	nominalTotalSupply *uint256.Int,
) (*Transfer, error) {
	if tAmount.IsZero() {
		return nil, ErrZeroTransfer
	}
	tFee, tTransferAmount, err := ComputeFee(tAmount, feeBps)
	if err != nil {
		return nil, err
	}
	rate, err := e.ledger.RateOf(ctx, nominalTotalSupply)
	if err != nil {
		return nil, err
	}
	rAmount, err := toReflected(tAmount, rate)
	if err != nil {
		return nil, err
	}
	rFee, err := toReflected(tFee, rate)
	if err != nil {
		return nil, err
	}
	rTransferAmount, err := toReflected(tTransferAmount, rate)
	if err != nil {
		return nil, err
	}

	if err := e.ledger.CheckReflectFee(ctx, rFee, nominalTotalSupply); err != nil {
		return nil, err
	}
	if err := e.ledger.DebitCredit(ctx, sender, recipient, rAmount, rTransferAmount); err != nil {
		return nil, err
	}
	if err := e.ledger.ReflectFee(ctx, rFee, tFee); err != nil {
		return nil, err
	}
	return &Transfer{
		From:      sender,
		To:        recipient,
		Amount:    tAmount.Clone(),
		Credited:  tTransferAmount,
		Fee:       tFee,
		Reflected: true,
	}, nil
}

// TransferWithoutReflection moves [tAmount] from [sender] to [recipient]
// without a fee. A zero amount is accepted and does nothing, in which case
// the returned transfer is nil.
func (e *Engine) TransferWithoutReflection(
	ctx context.Context,
	sender codec.Address,
	recipient codec.Address,
	tAmount *uint256.Int,
	nominalTotalSupply *uint256.Int,
) (*Transfer, error) {
	if tAmount.IsZero() {
		return nil, nil
	}
	rate, err := e.ledger.RateOf(ctx, nominalTotalSupply)
	if err != nil {
		return nil, err
	}
	rAmount, err := toReflected(tAmount, rate)
	if err != nil {
		return nil, err
	}
	if err := e.ledger.DebitCredit(ctx, sender, recipient, rAmount, rAmount); err != nil {
		return nil, err
	}
	return &Transfer{
		From:     sender,
		To:       recipient,
		Amount:   tAmount.Clone(),
		Credited: tAmount.Clone(),
		Fee:      new(uint256.Int),
	}, nil
}

func toReflected(tAmount *uint256.Int, rate *uint256.Int) (*uint256.Int, error) {
	r, overflow := new(uint256.Int).MulOverflow(tAmount, rate)
	if overflow {
		return nil, fmt.Errorf("%w: %s at rate %s", ledger.ErrArithmeticOverflow, tAmount.Dec(), rate.Dec())
	}
	return r, nil
}
