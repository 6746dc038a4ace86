// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"context"

	"github.com/holiman/uint256"

	"github.com/ava-labs/reflectvm/codec"
	"github.com/ava-labs/reflectvm/token"
)

// Token is the read side of a token exposed over the API.
type Token interface {
	Name() string
	Symbol() string
	Decimals() uint8
	Reflective() bool
	CurrentFeeBps() uint16
	TotalSupply(ctx context.Context) (*uint256.Int, error)
	BalanceOf(ctx context.Context, account codec.Address) (*uint256.Int, error)
	Quote(ctx context.Context, from codec.Address, to codec.Address, amount *uint256.Int) (*token.Quote, error)
	TokenFromReflection(ctx context.Context, rAmount *uint256.Int) (*uint256.Int, error)
	ReflectionInfo(ctx context.Context) (*token.ReflectionInfo, error)
}

var _ Token = (*token.Token)(nil)
