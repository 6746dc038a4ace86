// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"bytes"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"
)

const (
	AddressLen = 33

	checksumLen = 4
)

// Address represents the 33 byte address of a ledger account
type Address [AddressLen]byte

var EmptyAddress = Address{}

// CreateAddress returns [Address] made from concatenating
// [typeID] with [id].
func CreateAddress(typeID uint8, id ids.ID) Address {
	a := make([]byte, AddressLen)
	a[0] = typeID
	copy(a[1:], id[:])
	return Address(a)
}

// ToAddress returns an Address from the exact byte representation b.
func ToAddress(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLen {
		return a, ErrInvalidSize
	}
	copy(a[:], b)
	return a, nil
}

// StringToAddress parses the checksummed hex representation produced by
// [Address.String].
func StringToAddress(s string) (Address, error) {
	b, err := fromChecksum(s)
	if err != nil {
		return EmptyAddress, err
	}
	return ToAddress(b)
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return "0x" + ToHex(withChecksum(a[:]))
}

// MarshalText returns the checksummed hex representation of a.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses a checksummed hex address.
func (a *Address) UnmarshalText(input []byte) error {
	addr, err := StringToAddress(string(input))
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

func withChecksum(b []byte) []byte {
	return append(b, hashing.Checksum(b, checksumLen)...)
}

func fromChecksum(s string) ([]byte, error) {
	b, err := LoadHex(s, AddressLen+checksumLen)
	if err != nil {
		return nil, ErrBadChecksum
	}
	raw := b[:AddressLen]
	if !bytes.Equal(b[AddressLen:], hashing.Checksum(raw, checksumLen)) {
		return nil, ErrBadChecksum
	}
	return raw, nil
}
