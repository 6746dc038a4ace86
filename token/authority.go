// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package token

import (
	"context"

	"github.com/ava-labs/reflectvm/codec"
)

var _ Authority = (*OwnerAuthority)(nil)

// Authority decides who may change the fee rate and the supply.
type Authority interface {
	CanSetFee(ctx context.Context, caller codec.Address) bool
	CanMint(ctx context.Context, caller codec.Address) bool
	CanBurn(ctx context.Context, caller codec.Address) bool
}

// OwnerAuthority grants every privilege to a single address.
type OwnerAuthority struct {
	Owner codec.Address
}

func (o OwnerAuthority) CanSetFee(_ context.Context, caller codec.Address) bool {
	return caller == o.Owner
}

func (o OwnerAuthority) CanMint(_ context.Context, caller codec.Address) bool {
	return caller == o.Owner
}

func (o OwnerAuthority) CanBurn(_ context.Context, caller codec.Address) bool {
	return caller == o.Owner
}
