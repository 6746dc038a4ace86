// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import "errors"

var (
	ErrInvalidFeeBps   = errors.New("invalid fee basis points")
	ErrInvalidAddress  = errors.New("invalid owner address")
	ErrInvalidSupply   = errors.New("invalid initial supply")
	ErrInvalidMetadata = errors.New("invalid token metadata")
)
