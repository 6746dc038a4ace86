// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package token

import "errors"

var (
	ErrMintingDisabled    = errors.New("minting disabled in reflective mode")
	ErrBurningDisabled    = errors.New("burning disabled in reflective mode")
	ErrReflectionDisabled = errors.New("reflection disabled in standard mode")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidAddress     = errors.New("invalid address")
	ErrInvalidFeeBps      = errors.New("invalid fee basis points")
	ErrUnknownMode        = errors.New("unknown accounting mode")
)
