// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/ava-labs/avalanchego/utils/perms"
	"github.com/holiman/uint256"

	formatter "github.com/onsi/ginkgo/v2/formatter"
)

var ErrInvalidBalance = errors.New("invalid balance")

func InitSubDirectory(rootPath string, name string) (string, error) {
	p := path.Join(rootPath, name)
	return p, os.MkdirAll(p, perms.ReadWriteExecute)
}

// Outputs to stdout.
//
// e.g.,
//
//	Out("{{green}}{{bold}}hi there %q{{/}}", "aa")
//	Out("{{magenta}}{{bold}}hi therea{{/}} {{cyan}}{{underline}}b{{/}}")
//
// ref.
// https://github.com/onsi/ginkgo/blob/v2.0.0/formatter/formatter.go#L52-L73
func Outf(format string, args ...interface{}) {
	s := formatter.F(format, args...)
	fmt.Fprint(formatter.ColorableStdOut, s)
}

// FormatBalance renders [bal] base units as a decimal number with exactly
// [decimals] fractional digits.
func FormatBalance(bal *uint256.Int, decimals uint8) string {
	s := bal.Dec()
	if decimals == 0 {
		return s
	}
	d := int(decimals)
	if len(s) <= d {
		s = strings.Repeat("0", d-len(s)+1) + s
	}
	return s[:len(s)-d] + "." + s[len(s)-d:]
}

// ParseBalance is the inverse of [FormatBalance]. The fractional part may be
// shorter than [decimals] but never longer.
func ParseBalance(bal string, decimals uint8) (*uint256.Int, error) {
	whole, frac, _ := strings.Cut(bal, ".")
	if len(whole) == 0 || len(frac) > int(decimals) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBalance, bal)
	}
	v, err := uint256.FromDecimal(whole + frac + strings.Repeat("0", int(decimals)-len(frac)))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBalance, bal)
	}
	return v, nil
}
