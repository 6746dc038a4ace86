// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

const (
	ByteLen    = 1
	Uint16Len  = 2
	Uint64Len  = 8
	Uint256Len = 32
	IDLen      = 32
	MaxUint8   = ^uint8(0)
	MaxUint16  = ^uint16(0)
	MaxUint64  = ^uint64(0)

	// BasisPointsDenominator is the divisor applied to a fee expressed in
	// basis points (1 bps = 0.01%).
	BasisPointsDenominator = 10_000
	MaxFeeBps              = uint16(BasisPointsDenominator)

	MaxNameLen   = 64
	MaxSymbolLen = 16
	MaxDecimals  = 77
)
