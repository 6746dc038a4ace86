// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ava-labs/avalanchego/trace"
	"github.com/holiman/uint256"

	"github.com/ava-labs/reflectvm/codec"
	"github.com/ava-labs/reflectvm/consts"
	"github.com/ava-labs/reflectvm/state"
	"github.com/ava-labs/reflectvm/storage"
)

// Persisted accounting modes
const (
	ModeStandard byte = iota
	ModeReflective
)

// Allocator credits the initial supply to the owner in whatever unit the
// selected accounting mode stores balances in.
type Allocator interface {
	Allocate(ctx context.Context, mu state.Mutable, owner codec.Address, supply *uint256.Int) error
}

type Genesis struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`

	// InitialSupply is a decimal string in base units
	InitialSupply string        `json:"initialSupply"`
	Owner         codec.Address `json:"owner"`
	FeeBps        uint16        `json:"feeBps"`
	Reflective    bool          `json:"reflective"`
}

// Default returns a reflective token of 1,000,000 whole tokens with 18
// decimals and a 1% fee, all held by [owner].
func Default(owner codec.Address) *Genesis {
	return &Genesis{
		Name:          "Reflect",
		Symbol:        "RFL",
		Decimals:      18,
		InitialSupply: "1000000000000000000000000",
		Owner:         owner,
		FeeBps:        100,
		Reflective:    true,
	}
}

func Load(genesisBytes []byte) (*Genesis, error) {
	g := &Genesis{}
	if err := json.Unmarshal(genesisBytes, g); err != nil {
		return nil, err
	}
	if err := g.Verify(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Genesis) Verify() error {
	switch {
	case len(g.Name) == 0 || len(g.Name) > consts.MaxNameLen:
		return fmt.Errorf("%w: name length %d", ErrInvalidMetadata, len(g.Name))
	case len(g.Symbol) == 0 || len(g.Symbol) > consts.MaxSymbolLen:
		return fmt.Errorf("%w: symbol length %d", ErrInvalidMetadata, len(g.Symbol))
	case g.Decimals > consts.MaxDecimals:
		return fmt.Errorf("%w: decimals %d", ErrInvalidMetadata, g.Decimals)
	case g.FeeBps > consts.MaxFeeBps:
		return fmt.Errorf("%w: %d", ErrInvalidFeeBps, g.FeeBps)
	case g.Owner == codec.EmptyAddress:
		return ErrInvalidAddress
	}
	_, err := g.Supply()
	return err
}

// Supply parses [InitialSupply].
func (g *Genesis) Supply() (*uint256.Int, error) {
	supply, err := uint256.FromDecimal(g.InitialSupply)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidSupply, g.InitialSupply, err)
	}
	return supply, nil
}

func (g *Genesis) Mode() byte {
	if g.Reflective {
		return ModeReflective
	}
	return ModeStandard
}

// InitializeState writes the token globals and allocates the initial supply
// to the owner through [allocator].
func (g *Genesis) InitializeState(ctx context.Context, tracer trace.Tracer, mu state.Mutable, allocator Allocator) error {
	ctx, span := tracer.Start(ctx, "Genesis.InitializeState")
	defer span.End()

	supply, err := g.Supply()
	if err != nil {
		return err
	}
	if err := storage.SetMode(ctx, mu, g.Mode()); err != nil {
		return err
	}
	if err := storage.SetMetadata(ctx, mu, g.Name, g.Symbol, g.Decimals); err != nil {
		return err
	}
	if err := storage.SetSupply(ctx, mu, supply); err != nil {
		return err
	}
	if err := storage.SetFeeBps(ctx, mu, g.FeeBps); err != nil {
		return err
	}
	if err := allocator.Allocate(ctx, mu, g.Owner, supply); err != nil {
		return fmt.Errorf("%w: owner=%s supply=%s", err, g.Owner, supply.Dec())
	}
	return nil
}
