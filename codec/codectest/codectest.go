// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codectest

import (
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/reflectvm/codec"
)

// NewRandomAddress returns a random address
// for use during testing
func NewRandomAddress() codec.Address {
	return codec.CreateAddress(0, ids.GenerateTestID())
}

// NewRandomAddresses returns [n] distinct random addresses.
func NewRandomAddresses(n int) []codec.Address {
	addrs := make([]codec.Address, n)
	for i := range addrs {
		addrs[i] = NewRandomAddress()
	}
	return addrs
}
