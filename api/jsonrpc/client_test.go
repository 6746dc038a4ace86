// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonrpc

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/reflectvm/codec"
	"github.com/ava-labs/reflectvm/codec/codectest"
	"github.com/ava-labs/reflectvm/genesis"
	"github.com/ava-labs/reflectvm/token"
)

const wei = 1_000_000_000_000_000_000

func tokens(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(wei))
}

func newTestServer(t *testing.T, g *genesis.Genesis) (*token.Token, *JSONRPCClient) {
	t.Helper()
	require := require.New(t)

	tk, err := token.New(context.Background(), memdb.New(), g)
	require.NoError(err)
	handler, err := NewHandler(logging.NoLog{}, trace.Noop, tk)
	require.NoError(err)
	require.Equal(Endpoint, handler.Path)

	httpServer := httptest.NewServer(handler.Handler)
	t.Cleanup(func() {
		httpServer.Close()
	})
	return tk, NewJSONRPCClient(httpServer.URL)
}

func TestJSONRPCClient(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	owner, alice := codectest.NewRandomAddress(), codectest.NewRandomAddress()
	tk, client := newTestServer(t, genesis.Default(owner))

	_, err := tk.TransferWithoutReflection(ctx, owner, alice, tokens(1_000))
	require.NoError(err)

	ok, err := client.Ping(ctx)
	require.NoError(err)
	require.True(ok)

	md, err := client.Metadata(ctx)
	require.NoError(err)
	require.Equal(&MetadataReply{
		Name:       "Reflect",
		Symbol:     "RFL",
		Decimals:   18,
		Reflective: true,
	}, md)

	supply, err := client.TotalSupply(ctx)
	require.NoError(err)
	require.Equal(tokens(1_000_000), supply)

	bal, err := client.Balance(ctx, alice)
	require.NoError(err)
	require.Equal(tokens(1_000), bal)

	bal, err = client.Balance(ctx, codectest.NewRandomAddress())
	require.NoError(err)
	require.True(bal.IsZero())

	feeBps, err := client.FeeBps(ctx)
	require.NoError(err)
	require.Equal(uint16(100), feeBps)

	info, err := client.ReflectionInfo(ctx)
	require.NoError(err)
	require.True(info.TFeeTotal.IsZero())
	require.Equal(new(uint256.Int).Div(info.RTotal, supply), info.Rate)

	amount, err := client.TokenFromReflection(ctx, info.Rate)
	require.NoError(err)
	require.Equal(uint256.NewInt(1), amount)
}

func TestJSONRPCQuote(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	owner, alice := codectest.NewRandomAddress(), codectest.NewRandomAddress()
	tk, client := newTestServer(t, genesis.Default(owner))

	q, err := client.Quote(ctx, owner, alice, tokens(1_000))
	require.NoError(err)
	require.Equal(tokens(990).Dec(), q.Credited)
	require.Equal(tokens(10).Dec(), q.Fee)
	toBalance, err := parseAmount(q.ToBalance)
	require.NoError(err)
	require.False(toBalance.Lt(tokens(990)))
	fromBalance, err := parseAmount(q.FromBalance)
	require.NoError(err)
	require.True(fromBalance.Lt(tokens(1_000_000)))

	// nothing was committed
	bal, err := tk.BalanceOf(ctx, alice)
	require.NoError(err)
	require.True(bal.IsZero())

	q, err = client.Quote(ctx, owner, alice, new(uint256.Int))
	require.NoError(err)
	require.Equal("0", q.Credited)
	require.Equal("0", q.Fee)

	_, err = client.Quote(ctx, owner, codec.EmptyAddress, tokens(1))
	require.ErrorContains(err, token.ErrInvalidAddress.Error())
}

func TestJSONRPCStandardMode(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	g := genesis.Default(codectest.NewRandomAddress())
	g.Reflective = false
	_, client := newTestServer(t, g)

	md, err := client.Metadata(ctx)
	require.NoError(err)
	require.False(md.Reflective)

	_, err = client.ReflectionInfo(ctx)
	require.ErrorContains(err, token.ErrReflectionDisabled.Error())

	_, err = client.TokenFromReflection(ctx, uint256.NewInt(1))
	require.ErrorContains(err, token.ErrReflectionDisabled.Error())
}

func TestParseAmount(t *testing.T) {
	require := require.New(t)

	v, err := parseAmount("1000")
	require.NoError(err)
	require.Equal(uint256.NewInt(1_000), v)

	for _, s := range []string{"-1", "0x10", "1.5", "ten"} {
		_, err := parseAmount(s)
		require.ErrorIs(err, ErrInvalidAmount, s)
	}
}
