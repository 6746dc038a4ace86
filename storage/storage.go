// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/set"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/holiman/uint256"

	"github.com/ava-labs/reflectvm/codec"
	"github.com/ava-labs/reflectvm/consts"
	"github.com/ava-labs/reflectvm/state"
)

// State
// 0x0/ (mode)
// 0x1/ (metadata)
//   -> name|symbol|decimals
// 0x2/ (nominal total supply)
// 0x3/ (reflected total)
// 0x4/ (accumulated fee total)
// 0x5/ (fee rate in basis points)
// 0x6/ (balance)
//   -> [address] => balance (reflected units in reflective mode)

const (
	modePrefix byte = iota
	metadataPrefix
	supplyPrefix
	rTotalPrefix
	feeTotalPrefix
	feeBpsPrefix
	balancePrefix
)

const maxMetadataSize = 2*consts.Uint16Len + consts.MaxNameLen + consts.MaxSymbolLen + consts.ByteLen

var (
	modeKey     = []byte{modePrefix}
	metadataKey = []byte{metadataPrefix}
	supplyKey   = []byte{supplyPrefix}
	rTotalKey   = []byte{rTotalPrefix}
	feeTotalKey = []byte{feeTotalPrefix}
	feeBpsKey   = []byte{feeBpsPrefix}
)

// [balancePrefix] + [address]
func BalanceKey(addr codec.Address) (k []byte) {
	k = make([]byte, 1+codec.AddressLen)
	k[0] = balancePrefix
	copy(k[1:], addr[:])
	return
}

// GlobalKeys returns the keys every ledger operation may touch regardless of
// the accounts involved.
func GlobalKeys() set.Set[string] {
	return set.Of(
		string(modeKey),
		string(metadataKey),
		string(supplyKey),
		string(rTotalKey),
		string(feeTotalKey),
		string(feeBpsKey),
	)
}

// AccountKeys returns [GlobalKeys] plus the balance keys of [addrs].
func AccountKeys(addrs ...codec.Address) set.Set[string] {
	keys := GlobalKeys()
	for _, addr := range addrs {
		keys.Add(string(BalanceKey(addr)))
	}
	return keys
}

// Initialized returns true once a mode has been written.
func Initialized(ctx context.Context, im state.Immutable) (bool, error) {
	_, err := im.GetValue(ctx, modeKey)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func GetMode(ctx context.Context, im state.Immutable) (byte, error) {
	v, err := im.GetValue(ctx, modeKey)
	if err != nil {
		return 0, err
	}
	if len(v) != consts.ByteLen {
		return 0, fmt.Errorf("%w: mode has length %d", ErrInvalidValue, len(v))
	}
	return v[0], nil
}

func SetMode(ctx context.Context, mu state.Mutable, mode byte) error {
	return mu.Insert(ctx, modeKey, []byte{mode})
}

func GetMetadata(ctx context.Context, im state.Immutable) (string, string, uint8, error) {
	v, err := im.GetValue(ctx, metadataKey)
	if err != nil {
		return "", "", 0, err
	}
	p := wrappers.Packer{Bytes: v, MaxSize: maxMetadataSize}
	name := p.UnpackStr()
	symbol := p.UnpackStr()
	decimals := p.UnpackByte()
	if p.Err != nil {
		return "", "", 0, fmt.Errorf("%w: %w", ErrInvalidValue, p.Err)
	}
	return name, symbol, decimals, nil
}

func SetMetadata(ctx context.Context, mu state.Mutable, name string, symbol string, decimals uint8) error {
	p := wrappers.Packer{
		Bytes:   make([]byte, 0, 2*consts.Uint16Len+len(name)+len(symbol)+consts.ByteLen),
		MaxSize: maxMetadataSize,
	}
	p.PackStr(name)
	p.PackStr(symbol)
	p.PackByte(decimals)
	if p.Err != nil {
		return p.Err
	}
	return mu.Insert(ctx, metadataKey, p.Bytes)
}

func GetSupply(ctx context.Context, im state.Immutable) (*uint256.Int, error) {
	return getUint256(ctx, im, supplyKey)
}

func SetSupply(ctx context.Context, mu state.Mutable, supply *uint256.Int) error {
	return setUint256(ctx, mu, supplyKey, supply)
}

func GetRTotal(ctx context.Context, im state.Immutable) (*uint256.Int, error) {
	return getUint256(ctx, im, rTotalKey)
}

func SetRTotal(ctx context.Context, mu state.Mutable, rTotal *uint256.Int) error {
	return setUint256(ctx, mu, rTotalKey, rTotal)
}

func GetFeeTotal(ctx context.Context, im state.Immutable) (*uint256.Int, error) {
	return getUint256(ctx, im, feeTotalKey)
}

func SetFeeTotal(ctx context.Context, mu state.Mutable, tFeeTotal *uint256.Int) error {
	return setUint256(ctx, mu, feeTotalKey, tFeeTotal)
}

func GetFeeBps(ctx context.Context, im state.Immutable) (uint16, error) {
	v, err := im.GetValue(ctx, feeBpsKey)
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(v) != consts.Uint16Len {
		return 0, fmt.Errorf("%w: fee has length %d", ErrInvalidValue, len(v))
	}
	return binary.BigEndian.Uint16(v), nil
}

func SetFeeBps(ctx context.Context, mu state.Mutable, bps uint16) error {
	return mu.Insert(ctx, feeBpsKey, binary.BigEndian.AppendUint16(nil, bps))
}

// GetBalance returns the stored balance of [addr]. A missing account has a
// zero balance.
func GetBalance(ctx context.Context, im state.Immutable, addr codec.Address) (*uint256.Int, error) {
	return getUint256(ctx, im, BalanceKey(addr))
}

// SetBalance stores [balance] for [addr]. Zero balances are removed rather
// than stored.
func SetBalance(ctx context.Context, mu state.Mutable, addr codec.Address, balance *uint256.Int) error {
	k := BalanceKey(addr)
	if balance.IsZero() {
		return mu.Remove(ctx, k)
	}
	return setUint256(ctx, mu, k, balance)
}

func getUint256(ctx context.Context, im state.Immutable, key []byte) (*uint256.Int, error) {
	v, err := im.GetValue(ctx, key)
	if errors.Is(err, database.ErrNotFound) {
		return new(uint256.Int), nil
	}
	if err != nil {
		return nil, err
	}
	if len(v) != consts.Uint256Len {
		return nil, fmt.Errorf("%w: key=%x has length %d", ErrInvalidValue, key, len(v))
	}
	return new(uint256.Int).SetBytes32(v), nil
}

func setUint256(ctx context.Context, mu state.Mutable, key []byte, v *uint256.Int) error {
	b := v.Bytes32()
	return mu.Insert(ctx, key, b[:])
}
