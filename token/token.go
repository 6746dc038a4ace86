// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package token

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/set"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/ava-labs/reflectvm/codec"
	"github.com/ava-labs/reflectvm/consts"
	"github.com/ava-labs/reflectvm/event"
	"github.com/ava-labs/reflectvm/genesis"
	"github.com/ava-labs/reflectvm/reflection"
	"github.com/ava-labs/reflectvm/state"
	"github.com/ava-labs/reflectvm/storage"
	"github.com/ava-labs/reflectvm/tstate"
)

// Token is a fungible token whose balances are kept either in reflected
// units (reflective mode) or as plain amounts (standard mode).
//
// State-changing operations are serialized. Each one is staged in a view
// scoped to the keys it declares and reaches [state.Database] in a single
// batch, or not at all.
type Token struct {
	db            state.Database
	log           logging.Logger
	tracer        trace.Tracer
	metrics       *metrics
	authority     Authority
	subscriptions []event.Subscription[*reflection.Transfer]

	name     string
	symbol   string
	decimals uint8

	accounting accounting
	feeBps     atomic.Uint32

	l sync.RWMutex
}

// Quote is the outcome of a transfer that was evaluated and then discarded.
type Quote struct {
	Transfer *reflection.Transfer `json:"transfer"`

	// Nominal balances as they would be after the transfer
	FromBalance *uint256.Int `json:"fromBalance"`
	ToBalance   *uint256.Int `json:"toBalance"`
}

// New opens the token stored in [db]. On first open the state is created
// from [g]. Afterwards the persisted mode, metadata and fee take precedence
// over [g], which then only supplies the default authority.
func New(ctx context.Context, db state.Database, g *genesis.Genesis, opts ...Option) (*Token, error) {
	o := &Options{
		Log:        logging.NoLog{},
		Tracer:     trace.Noop,
		Registerer: prometheus.NewRegistry(),
		Authority:  OwnerAuthority{Owner: g.Owner},
	}
	for _, opt := range opts {
		opt(o)
	}
	if err := g.Verify(); err != nil {
		return nil, err
	}
	m, err := newMetrics(o.Registerer)
	if err != nil {
		return nil, err
	}
	t := &Token{
		db:            db,
		log:           o.Log,
		tracer:        o.Tracer,
		metrics:       m,
		authority:     o.Authority,
		subscriptions: o.Subscriptions,
	}

	ctx, span := t.tracer.Start(ctx, "Token.New")
	defer span.End()

	keys := storage.AccountKeys(g.Owner)
	ts := tstate.New(db, keys.Len())
	view := ts.NewView(keys)
	initialized, err := storage.Initialized(ctx, view)
	if err != nil {
		return nil, err
	}
	if initialized {
		mode, err := storage.GetMode(ctx, view)
		if err != nil {
			return nil, err
		}
		if t.accounting, err = newAccounting(mode); err != nil {
			return nil, err
		}
	} else {
		if t.accounting, err = newAccounting(g.Mode()); err != nil {
			return nil, err
		}
		if err := g.InitializeState(ctx, t.tracer, view, t.accounting); err != nil {
			return nil, err
		}
		if err := t.write(ts, view); err != nil {
			return nil, err
		}
		t.log.Info("initialized token state",
			zap.String("name", g.Name),
			zap.String("symbol", g.Symbol),
			zap.Bool("reflective", g.Reflective),
			zap.String("supply", g.InitialSupply),
			zap.Stringer("owner", g.Owner),
		)
	}

	if t.name, t.symbol, t.decimals, err = storage.GetMetadata(ctx, view); err != nil {
		return nil, err
	}
	feeBps, err := storage.GetFeeBps(ctx, view)
	if err != nil {
		return nil, err
	}
	t.setFeeMirror(feeBps)
	return t, nil
}

func (t *Token) Name() string {
	return t.name
}

func (t *Token) Symbol() string {
	return t.symbol
}

func (t *Token) Decimals() uint8 {
	return t.decimals
}

// Reflective reports whether balances are kept in reflected units.
func (t *Token) Reflective() bool {
	return t.accounting.mode() == genesis.ModeReflective
}

// CurrentFeeBps returns the fee charged on reflecting transfers without
// taking the token lock.
func (t *Token) CurrentFeeBps() uint16 {
	return uint16(t.feeBps.Load())
}

func (t *Token) TotalSupply(ctx context.Context) (*uint256.Int, error) {
	ctx, span := t.tracer.Start(ctx, "Token.TotalSupply")
	defer span.End()

	t.l.RLock()
	defer t.l.RUnlock()

	var supply *uint256.Int
	err := t.execute(ctx, storage.GlobalKeys(), false, func(_ state.Mutable, s *uint256.Int) error {
		supply = s
		return nil
	})
	return supply, err
}

// BalanceOf returns the nominal balance of [account].
func (t *Token) BalanceOf(ctx context.Context, account codec.Address) (*uint256.Int, error) {
	ctx, span := t.tracer.Start(ctx, "Token.BalanceOf")
	defer span.End()

	t.l.RLock()
	defer t.l.RUnlock()

	var bal *uint256.Int
	err := t.execute(ctx, storage.AccountKeys(account), false, func(mu state.Mutable, supply *uint256.Int) error {
		var err error
		bal, err = t.accounting.balanceOf(ctx, mu, account, supply)
		return err
	})
	return bal, err
}

// Transfer moves [amount] from [from] to [to], charging the current fee in
// reflective mode. A zero amount does nothing and returns a nil transfer.
func (t *Token) Transfer(ctx context.Context, from codec.Address, to codec.Address, amount *uint256.Int) (*reflection.Transfer, error) {
	ctx, span := t.tracer.Start(ctx, "Token.Transfer", oteltrace.WithAttributes(
		attribute.Stringer("from", from),
		attribute.Stringer("to", to),
		attribute.String("amount", amount.Dec()),
	))
	defer span.End()

	if err := validateAddresses(from, to); err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return nil, nil
	}
	return t.applyTransfer(ctx, from, to, func(mu state.Mutable, supply *uint256.Int) (*reflection.Transfer, error) {
		feeBps, err := storage.GetFeeBps(ctx, mu)
		if err != nil {
			return nil, err
		}
		return t.accounting.transfer(ctx, mu, from, to, amount, feeBps, supply)
	})
}

// TransferWithoutReflection moves [amount] from [from] to [to] without
// charging a fee.
func (t *Token) TransferWithoutReflection(ctx context.Context, from codec.Address, to codec.Address, amount *uint256.Int) (*reflection.Transfer, error) {
	ctx, span := t.tracer.Start(ctx, "Token.TransferWithoutReflection", oteltrace.WithAttributes(
		attribute.Stringer("from", from),
		attribute.Stringer("to", to),
		attribute.String("amount", amount.Dec()),
	))
	defer span.End()

	if err := validateAddresses(from, to); err != nil {
		return nil, err
	}
	return t.applyTransfer(ctx, from, to, func(mu state.Mutable, supply *uint256.Int) (*reflection.Transfer, error) {
		return t.accounting.transferExempt(ctx, mu, from, to, amount, supply)
	})
}

func (t *Token) applyTransfer(
	ctx context.Context,
	from codec.Address,
	to codec.Address,
	f func(state.Mutable, *uint256.Int) (*reflection.Transfer, error),
) (*reflection.Transfer, error) {
	t.l.Lock()
	defer t.l.Unlock()

	start := time.Now()
	var tr *reflection.Transfer
	err := t.execute(ctx, storage.AccountKeys(from, to), true, func(mu state.Mutable, supply *uint256.Int) error {
		var err error
		tr, err = f(mu, supply)
		return err
	})
	if err != nil {
		t.metrics.failedOperations.Inc()
		return nil, err
	}
	if tr == nil {
		return nil, nil
	}
	t.metrics.transfer.Observe(float64(time.Since(start)))
	if tr.Reflected {
		t.metrics.reflectedTransfers.Inc()
	} else {
		t.metrics.exemptTransfers.Inc()
	}
	t.log.Debug("transfer committed",
		zap.Stringer("from", tr.From),
		zap.Stringer("to", tr.To),
		zap.String("amount", tr.Amount.Dec()),
		zap.String("fee", tr.Fee.Dec()),
		zap.Bool("reflected", tr.Reflected),
	)
	t.notify(ctx, tr)
	return tr, nil
}

// Quote evaluates a fee-charging transfer and reports the balances it would
// produce without committing anything.
func (t *Token) Quote(ctx context.Context, from codec.Address, to codec.Address, amount *uint256.Int) (*Quote, error) {
	ctx, span := t.tracer.Start(ctx, "Token.Quote")
	defer span.End()

	if err := validateAddresses(from, to); err != nil {
		return nil, err
	}

	t.l.RLock()
	defer t.l.RUnlock()

	keys := storage.AccountKeys(from, to)
	view := tstate.New(t.db, keys.Len()).NewView(keys)
	defer view.Rollback(ctx, 0)

	supply, err := storage.GetSupply(ctx, view)
	if err != nil {
		return nil, err
	}
	q := &Quote{}
	if !amount.IsZero() {
		feeBps, err := storage.GetFeeBps(ctx, view)
		if err != nil {
			return nil, err
		}
		if q.Transfer, err = t.accounting.transfer(ctx, view, from, to, amount, feeBps, supply); err != nil {
			return nil, err
		}
	}
	if q.FromBalance, err = t.accounting.balanceOf(ctx, view, from, supply); err != nil {
		return nil, err
	}
	if q.ToBalance, err = t.accounting.balanceOf(ctx, view, to, supply); err != nil {
		return nil, err
	}
	return q, nil
}

// TokenFromReflection converts a reflected amount to nominal units.
func (t *Token) TokenFromReflection(ctx context.Context, rAmount *uint256.Int) (*uint256.Int, error) {
	ctx, span := t.tracer.Start(ctx, "Token.TokenFromReflection")
	defer span.End()

	t.l.RLock()
	defer t.l.RUnlock()

	var amount *uint256.Int
	err := t.execute(ctx, storage.GlobalKeys(), false, func(mu state.Mutable, supply *uint256.Int) error {
		var err error
		amount, err = t.accounting.tokenFromReflection(ctx, mu, rAmount, supply)
		return err
	})
	return amount, err
}

func (t *Token) ReflectionInfo(ctx context.Context) (*ReflectionInfo, error) {
	ctx, span := t.tracer.Start(ctx, "Token.ReflectionInfo")
	defer span.End()

	t.l.RLock()
	defer t.l.RUnlock()

	var info *ReflectionInfo
	err := t.execute(ctx, storage.GlobalKeys(), false, func(mu state.Mutable, supply *uint256.Int) error {
		var err error
		info, err = t.accounting.reflectionInfo(ctx, mu, supply)
		return err
	})
	return info, err
}

// SetFeeBps changes the fee charged on reflecting transfers. Only callers
// approved by the authority may change it.
func (t *Token) SetFeeBps(ctx context.Context, caller codec.Address, bps uint16) error {
	ctx, span := t.tracer.Start(ctx, "Token.SetFeeBps", oteltrace.WithAttributes(
		attribute.Stringer("caller", caller),
		attribute.Int("bps", int(bps)),
	))
	defer span.End()

	if bps > consts.MaxFeeBps {
		return fmt.Errorf("%w: %d", ErrInvalidFeeBps, bps)
	}
	if !t.authority.CanSetFee(ctx, caller) {
		return fmt.Errorf("%w: %s cannot set fee", ErrUnauthorized, caller)
	}

	t.l.Lock()
	defer t.l.Unlock()

	prev := t.CurrentFeeBps()
	if err := t.execute(ctx, storage.GlobalKeys(), true, func(mu state.Mutable, _ *uint256.Int) error {
		return storage.SetFeeBps(ctx, mu, bps)
	}); err != nil {
		t.metrics.failedOperations.Inc()
		return err
	}
	t.setFeeMirror(bps)
	t.log.Info("fee updated",
		zap.Stringer("caller", caller),
		zap.Uint16("previous", prev),
		zap.Uint16("bps", bps),
	)
	return nil
}

// Mint creates [amount] new tokens for [to]. Minting is only possible in
// standard mode.
func (t *Token) Mint(ctx context.Context, caller codec.Address, to codec.Address, amount *uint256.Int) (*reflection.Transfer, error) {
	ctx, span := t.tracer.Start(ctx, "Token.Mint", oteltrace.WithAttributes(
		attribute.Stringer("to", to),
		attribute.String("amount", amount.Dec()),
	))
	defer span.End()

	if to == codec.EmptyAddress {
		return nil, ErrInvalidAddress
	}
	if !t.authority.CanMint(ctx, caller) {
		return nil, fmt.Errorf("%w: %s cannot mint", ErrUnauthorized, caller)
	}
	return t.applySupplyChange(ctx, to, func(mu state.Mutable, supply *uint256.Int) error {
		return t.accounting.mint(ctx, mu, to, amount, supply)
	}, &reflection.Transfer{
		From:     codec.EmptyAddress,
		To:       to,
		Amount:   amount.Clone(),
		Credited: amount.Clone(),
		Fee:      new(uint256.Int),
	}, t.metrics.mints)
}

// Burn destroys [amount] tokens held by [from]. Burning is only possible in
// standard mode.
func (t *Token) Burn(ctx context.Context, caller codec.Address, from codec.Address, amount *uint256.Int) (*reflection.Transfer, error) {
	ctx, span := t.tracer.Start(ctx, "Token.Burn", oteltrace.WithAttributes(
		attribute.Stringer("from", from),
		attribute.String("amount", amount.Dec()),
	))
	defer span.End()

	if from == codec.EmptyAddress {
		return nil, ErrInvalidAddress
	}
	if !t.authority.CanBurn(ctx, caller) {
		return nil, fmt.Errorf("%w: %s cannot burn", ErrUnauthorized, caller)
	}
	return t.applySupplyChange(ctx, from, func(mu state.Mutable, supply *uint256.Int) error {
		return t.accounting.burn(ctx, mu, from, amount, supply)
	}, &reflection.Transfer{
		From:     from,
		To:       codec.EmptyAddress,
		Amount:   amount.Clone(),
		Credited: amount.Clone(),
		Fee:      new(uint256.Int),
	}, t.metrics.burns)
}

func (t *Token) applySupplyChange(
	ctx context.Context,
	account codec.Address,
	f func(state.Mutable, *uint256.Int) error,
	tr *reflection.Transfer,
	counter prometheus.Counter,
) (*reflection.Transfer, error) {
	t.l.Lock()
	defer t.l.Unlock()

	if err := t.execute(ctx, storage.AccountKeys(account), true, f); err != nil {
		t.metrics.failedOperations.Inc()
		return nil, err
	}
	if tr.Amount.IsZero() {
		return nil, nil
	}
	counter.Inc()
	t.log.Debug("supply changed",
		zap.Stringer("from", tr.From),
		zap.Stringer("to", tr.To),
		zap.String("amount", tr.Amount.Dec()),
	)
	t.notify(ctx, tr)
	return tr, nil
}

// Close releases every subscription.
func (t *Token) Close() error {
	return event.CloseAll(t.subscriptions...)
}

// execute runs [f] against a fresh view scoped to [keys]. When [commit] is
// set and [f] succeeds, every staged change is written in one batch.
func (t *Token) execute(
	ctx context.Context,
	keys set.Set[string],
	commit bool,
	f func(state.Mutable, *uint256.Int) error,
) error {
	ts := tstate.New(t.db, keys.Len())
	view := ts.NewView(keys)
	supply, err := storage.GetSupply(ctx, view)
	if err != nil {
		return err
	}
	if err := f(view, supply); err != nil {
		return err
	}
	if !commit {
		return nil
	}
	return t.write(ts, view)
}

func (t *Token) write(ts *tstate.TState, view *tstate.TStateView) error {
	view.Commit()
	batch := t.db.NewBatch()
	if err := ts.WriteTo(batch); err != nil {
		return err
	}
	return batch.Write()
}

func (t *Token) notify(ctx context.Context, tr *reflection.Transfer) {
	if err := event.NotifyAll(ctx, tr, t.subscriptions...); err != nil {
		t.log.Warn("subscriber rejected event",
			zap.Stringer("from", tr.From),
			zap.Stringer("to", tr.To),
			zap.Error(err),
		)
	}
}

func (t *Token) setFeeMirror(bps uint16) {
	t.feeBps.Store(uint32(bps))
	t.metrics.feeBps.Set(float64(bps))
}

func validateAddresses(from codec.Address, to codec.Address) error {
	if from == codec.EmptyAddress {
		return fmt.Errorf("%w: empty sender", ErrInvalidAddress)
	}
	if to == codec.EmptyAddress {
		return fmt.Errorf("%w: empty recipient", ErrInvalidAddress)
	}
	return nil
}
