// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package reflection

import (
	"context"
	"errors"
	"testing"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/reflectvm/codec"
	"github.com/ava-labs/reflectvm/codec/codectest"
	"github.com/ava-labs/reflectvm/ledger"
	"github.com/ava-labs/reflectvm/storage"
	"github.com/ava-labs/reflectvm/tstate"
)

const wei = 1_000_000_000_000_000_000

func tokens(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(wei))
}

type fixture struct {
	ctx    context.Context
	view   *tstate.TStateView
	ledger *ledger.Ledger
	engine *Engine
	supply *uint256.Int

	owner codec.Address
	alice codec.Address
	carol codec.Address
}

func newFixture(t *testing.T, supply *uint256.Int) *fixture {
	t.Helper()
	f := &fixture{
		ctx:    context.Background(),
		supply: supply,
		owner:  codectest.NewRandomAddress(),
		alice:  codectest.NewRandomAddress(),
		carol:  codectest.NewRandomAddress(),
	}
	ts := tstate.New(memdb.New(), 16)
	f.view = ts.NewView(storage.AccountKeys(f.owner, f.alice, f.carol))
	f.ledger = ledger.New(f.view)
	f.engine = New(f.ledger)
	require.NoError(t, f.ledger.Initialize(f.ctx, supply, f.owner))
	return f
}

func (f *fixture) nominal(t *testing.T, addr codec.Address) *uint256.Int {
	t.Helper()
	bal, err := f.ledger.NominalBalanceOf(f.ctx, addr, f.supply)
	require.NoError(t, err)
	return bal
}

func (f *fixture) rate(t *testing.T) *uint256.Int {
	t.Helper()
	r, err := f.ledger.RateOf(f.ctx, f.supply)
	require.NoError(t, err)
	return r
}

func TestComputeFee(t *testing.T) {
	tests := []struct {
		name      string
		amount    *uint256.Int
		feeBps    uint16
		fee       *uint256.Int
		remainder *uint256.Int
		err       error
	}{
		{
			name:      "one percent",
			amount:    uint256.NewInt(1_000),
			feeBps:    100,
			fee:       uint256.NewInt(10),
			remainder: uint256.NewInt(990),
		},
		{
			name:      "rounds down",
			amount:    uint256.NewInt(999),
			feeBps:    100,
			fee:       uint256.NewInt(9),
			remainder: uint256.NewInt(990),
		},
		{
			name:      "below one unit",
			amount:    uint256.NewInt(99),
			feeBps:    100,
			fee:       uint256.NewInt(0),
			remainder: uint256.NewInt(99),
		},
		{
			name:      "no fee",
			amount:    tokens(5),
			feeBps:    0,
			fee:       uint256.NewInt(0),
			remainder: tokens(5),
		},
		{
			name:      "whole amount",
			amount:    tokens(5),
			feeBps:    10_000,
			fee:       tokens(5),
			remainder: uint256.NewInt(0),
		},
		{
			name:   "fee above denominator",
			amount: uint256.NewInt(1),
			feeBps: 10_001,
			err:    ErrInvalidFeeBps,
		},
		{
			name:   "overflow",
			amount: new(uint256.Int).SetAllOne(),
			feeBps: 2,
			err:    ledger.ErrArithmeticOverflow,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			fee, remainder, err := ComputeFee(tt.amount, tt.feeBps)
			require.ErrorIs(err, tt.err)
			if tt.err != nil {
				return
			}
			require.Equal(tt.fee, fee)
			require.Equal(tt.remainder, remainder)
		})
	}
}

// 1,000,000 tokens with 18 decimals and a 1% fee. The owner first seeds a
// third holder without a fee, then sends 1,000 tokens to alice.
func TestTransferWithReflectionScenario(t *testing.T) {
	require := require.New(t)
	f := newFixture(t, tokens(1_000_000))

	seed, err := f.engine.TransferWithoutReflection(f.ctx, f.owner, f.carol, tokens(100_000), f.supply)
	require.NoError(err)
	require.False(seed.Reflected)
	require.Equal(tokens(100_000), f.nominal(t, f.carol))
	require.Equal(tokens(900_000), f.nominal(t, f.owner))

	carolReflected, err := f.ledger.ReflectedBalanceOf(f.ctx, f.carol)
	require.NoError(err)
	rateBefore := f.rate(t)

	transfer, err := f.engine.TransferWithReflection(f.ctx, f.owner, f.alice, tokens(1_000), 100, f.supply)
	require.NoError(err)
	require.Equal(&Transfer{
		From:      f.owner,
		To:        f.alice,
		Amount:    tokens(1_000),
		Credited:  tokens(990),
		Fee:       tokens(10),
		Reflected: true,
	}, transfer)

	rateAfter := f.rate(t)
	require.Equal(-1, rateAfter.Cmp(rateBefore))

	// Alice is credited 990 tokens worth of reflected units and also gains
	// her share of the fee.
	alice := f.nominal(t, f.alice)
	require.True(alice.Cmp(tokens(990)) >= 0)
	require.True(alice.Cmp(new(uint256.Int).Add(tokens(990), tokens(1))) < 0)

	owner := f.nominal(t, f.owner)
	require.True(owner.Cmp(tokens(899_000)) >= 0)
	require.True(owner.Cmp(tokens(899_010)) < 0)

	// Carol was not part of the transfer: her reflected balance is fixed
	// but her nominal balance grew.
	after, err := f.ledger.ReflectedBalanceOf(f.ctx, f.carol)
	require.NoError(err)
	require.Equal(carolReflected, after)
	require.Equal(1, f.nominal(t, f.carol).Cmp(tokens(100_000)))

	feeTotal, err := f.ledger.FeeTotal(f.ctx)
	require.NoError(err)
	require.Equal(tokens(10), feeTotal)
}

func TestTransferWithReflectionConservation(t *testing.T) {
	require := require.New(t)
	f := newFixture(t, tokens(1_000_000))

	holders := []codec.Address{f.owner, f.alice, f.carol}
	transfers := []struct {
		from   codec.Address
		to     codec.Address
		amount *uint256.Int
		feeBps uint16
	}{
		{from: f.owner, to: f.alice, amount: tokens(250_000), feeBps: 100},
		{from: f.alice, to: f.carol, amount: tokens(12_345), feeBps: 250},
		{from: f.carol, to: f.owner, amount: uint256.NewInt(7), feeBps: 9_999},
		{from: f.owner, to: f.owner, amount: tokens(1), feeBps: 500},
		{from: f.alice, to: f.owner, amount: uint256.NewInt(123_456_789), feeBps: 10_000},
	}

	prevRate := f.rate(t)
	for _, tr := range transfers {
		_, err := f.engine.TransferWithReflection(f.ctx, tr.from, tr.to, tr.amount, tr.feeBps, f.supply)
		require.NoError(err)

		rate := f.rate(t)
		require.True(rate.Cmp(prevRate) <= 0)
		prevRate = rate

		sum := new(uint256.Int)
		for _, h := range holders {
			sum.Add(sum, f.nominal(t, h))
		}
		// Truncation loses less than one unit per holder
		require.True(sum.Cmp(f.supply) <= 0)
		require.True(sum.AddUint64(sum, uint64(len(holders))).Gt(f.supply))

		// Every reflected balance sits within the reflected total
		rTotal, err := f.ledger.RTotal(f.ctx)
		require.NoError(err)
		rSum := new(uint256.Int)
		for _, h := range holders {
			bal, err := f.ledger.ReflectedBalanceOf(f.ctx, h)
			require.NoError(err)
			require.True(bal.Cmp(rTotal) <= 0)
			rSum.Add(rSum, bal)
		}
		require.True(rSum.Cmp(rTotal) <= 0)
	}
}

func TestTransferWithoutReflectionPreservesBalances(t *testing.T) {
	require := require.New(t)
	f := newFixture(t, tokens(1_000_000))

	// Shift the rate off a round value first
	_, err := f.engine.TransferWithReflection(f.ctx, f.owner, f.carol, tokens(3_333), 300, f.supply)
	require.NoError(err)
	rTotal, err := f.ledger.RTotal(f.ctx)
	require.NoError(err)
	feeTotal, err := f.ledger.FeeTotal(f.ctx)
	require.NoError(err)

	for _, amount := range []*uint256.Int{uint256.NewInt(1), tokens(17), uint256.NewInt(987_654_321)} {
		before := new(uint256.Int).Add(f.nominal(t, f.owner), f.nominal(t, f.alice))
		transfer, err := f.engine.TransferWithoutReflection(f.ctx, f.owner, f.alice, amount, f.supply)
		require.NoError(err)
		require.Equal(amount, transfer.Amount)
		require.Equal(amount, transfer.Credited)
		require.True(transfer.Fee.IsZero())

		after := new(uint256.Int).Add(f.nominal(t, f.owner), f.nominal(t, f.alice))
		diff := new(uint256.Int)
		if before.Gt(after) {
			diff.Sub(before, after)
		} else {
			diff.Sub(after, before)
		}
		require.True(diff.Cmp(uint256.NewInt(1)) <= 0)
	}

	// No fee accounting happened
	rTotalAfter, err := f.ledger.RTotal(f.ctx)
	require.NoError(err)
	require.Equal(rTotal, rTotalAfter)
	feeTotalAfter, err := f.ledger.FeeTotal(f.ctx)
	require.NoError(err)
	require.Equal(feeTotal, feeTotalAfter)
}

func TestInsufficientBalance(t *testing.T) {
	require := require.New(t)
	f := newFixture(t, tokens(1_000_000))
	_, err := f.engine.TransferWithoutReflection(f.ctx, f.owner, f.alice, tokens(10), f.supply)
	require.NoError(err)

	rTotal, err := f.ledger.RTotal(f.ctx)
	require.NoError(err)
	ops := f.view.OpIndex()

	_, err = f.engine.TransferWithReflection(f.ctx, f.alice, f.carol, tokens(11), 100, f.supply)
	require.ErrorIs(err, ledger.ErrInsufficientBalance)
	var balanceErr *ledger.InsufficientBalanceError
	require.True(errors.As(err, &balanceErr))
	require.Equal(f.alice, balanceErr.Account)

	_, err = f.engine.TransferWithoutReflection(f.ctx, f.carol, f.alice, uint256.NewInt(1), f.supply)
	require.ErrorIs(err, ledger.ErrInsufficientBalance)

	require.Equal(ops, f.view.OpIndex())
	after, err := f.ledger.RTotal(f.ctx)
	require.NoError(err)
	require.Equal(rTotal, after)
	require.Equal(tokens(10), f.nominal(t, f.alice))
	require.True(f.nominal(t, f.carol).IsZero())
}

func TestZeroAmount(t *testing.T) {
	require := require.New(t)
	f := newFixture(t, tokens(1_000))
	ops := f.view.OpIndex()

	_, err := f.engine.TransferWithReflection(f.ctx, f.owner, f.alice, new(uint256.Int), 100, f.supply)
	require.ErrorIs(err, ErrZeroTransfer)

	transfer, err := f.engine.TransferWithoutReflection(f.ctx, f.owner, f.alice, new(uint256.Int), f.supply)
	require.NoError(err)
	require.Nil(transfer)

	require.Equal(ops, f.view.OpIndex())
}

func TestRateUndefined(t *testing.T) {
	require := require.New(t)
	f := newFixture(t, tokens(1_000))

	_, err := f.engine.TransferWithReflection(f.ctx, f.owner, f.alice, uint256.NewInt(1), 100, new(uint256.Int))
	require.ErrorIs(err, ledger.ErrRateUndefined)
	_, err = f.engine.TransferWithoutReflection(f.ctx, f.owner, f.alice, uint256.NewInt(1), new(uint256.Int))
	require.ErrorIs(err, ledger.ErrRateUndefined)
}

func TestFeeCannotExhaustReflectedTotal(t *testing.T) {
	require := require.New(t)
	f := newFixture(t, tokens(1_000_000))
	ops := f.view.OpIndex()
	rTotal, err := f.ledger.RTotal(f.ctx)
	require.NoError(err)

	// the sole holder sends everything at the maximum fee
	_, err = f.engine.TransferWithReflection(f.ctx, f.owner, f.alice, f.supply, 10_000, f.supply)
	require.ErrorIs(err, ledger.ErrRateUndefined)
	require.Equal(ops, f.view.OpIndex())
	require.Equal(f.supply, f.nominal(t, f.owner))
	after, err := f.ledger.RTotal(f.ctx)
	require.NoError(err)
	require.Equal(rTotal, after)

	// half the supply at the maximum fee still leaves a usable rate
	transfer, err := f.engine.TransferWithReflection(f.ctx, f.owner, f.alice, tokens(500_000), 10_000, f.supply)
	require.NoError(err)
	require.True(transfer.Credited.IsZero())
	require.False(f.rate(t).IsZero())
	require.True(f.nominal(t, f.alice).IsZero())
}

func TestReflectedAmountOverflow(t *testing.T) {
	require := require.New(t)
	f := newFixture(t, tokens(1_000))
	ops := f.view.OpIndex()

	huge := new(uint256.Int).Lsh(uint256.NewInt(1), 200)
	_, err := f.engine.TransferWithReflection(f.ctx, f.owner, f.alice, huge, 0, f.supply)
	require.ErrorIs(err, ledger.ErrArithmeticOverflow)
	_, err = f.engine.TransferWithoutReflection(f.ctx, f.owner, f.alice, huge, f.supply)
	require.ErrorIs(err, ledger.ErrArithmeticOverflow)
	require.Equal(ops, f.view.OpIndex())
}

func TestNominalFromReflectedAfterFees(t *testing.T) {
	require := require.New(t)
	f := newFixture(t, tokens(1_000_000))
	_, err := f.engine.TransferWithReflection(f.ctx, f.owner, f.alice, tokens(42), 100, f.supply)
	require.NoError(err)

	rTotal, err := f.ledger.RTotal(f.ctx)
	require.NoError(err)
	_, err = f.ledger.NominalFromReflected(f.ctx, new(uint256.Int).AddUint64(rTotal, 1), f.supply)
	require.ErrorIs(err, ledger.ErrReflectionTotalTooSmall)

	rate := f.rate(t)
	for _, addr := range []codec.Address{f.owner, f.alice} {
		nominal := f.nominal(t, addr)
		got, err := f.ledger.NominalFromReflected(f.ctx, new(uint256.Int).Mul(nominal, rate), f.supply)
		require.NoError(err)
		require.Equal(nominal, got)
	}
}
