// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package reflection

import "errors"

var (
	ErrZeroTransfer  = errors.New("zero transfer amount")
	ErrInvalidFeeBps = errors.New("invalid fee basis points")
)
