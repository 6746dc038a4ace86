// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonrpc

import (
	"context"
	"strings"

	"github.com/ava-labs/avalanchego/utils/rpc"
	"github.com/holiman/uint256"

	"github.com/ava-labs/reflectvm/api"
	"github.com/ava-labs/reflectvm/codec"
	"github.com/ava-labs/reflectvm/token"
)

type JSONRPCClient struct {
	requester rpc.EndpointRequester

	// cached after the first call
	metadata *MetadataReply
}

func NewJSONRPCClient(uri string) *JSONRPCClient {
	uri = strings.TrimSuffix(uri, "/")
	uri += Endpoint
	return &JSONRPCClient{requester: rpc.NewEndpointRequester(uri)}
}

func (cli *JSONRPCClient) send(ctx context.Context, method string, args interface{}, reply interface{}) error {
	return cli.requester.SendRequest(ctx, api.Name+"."+method, args, reply)
}

func (cli *JSONRPCClient) Ping(ctx context.Context) (bool, error) {
	resp := new(PingReply)
	err := cli.send(ctx, "ping", struct{}{}, resp)
	return resp.Success, err
}

func (cli *JSONRPCClient) Metadata(ctx context.Context) (*MetadataReply, error) {
	if cli.metadata != nil {
		return cli.metadata, nil
	}
	resp := new(MetadataReply)
	if err := cli.send(ctx, "metadata", struct{}{}, resp); err != nil {
		return nil, err
	}
	cli.metadata = resp
	return resp, nil
}

func (cli *JSONRPCClient) TotalSupply(ctx context.Context) (*uint256.Int, error) {
	resp := new(TotalSupplyReply)
	if err := cli.send(ctx, "totalSupply", struct{}{}, resp); err != nil {
		return nil, err
	}
	return parseAmount(resp.Supply)
}

func (cli *JSONRPCClient) Balance(ctx context.Context, addr codec.Address) (*uint256.Int, error) {
	resp := new(BalanceReply)
	err := cli.send(ctx, "balance", &BalanceArgs{Address: addr}, resp)
	if err != nil {
		return nil, err
	}
	return parseAmount(resp.Amount)
}

func (cli *JSONRPCClient) FeeBps(ctx context.Context) (uint16, error) {
	resp := new(FeeBpsReply)
	err := cli.send(ctx, "feeBps", struct{}{}, resp)
	return resp.FeeBps, err
}

// Quote returns the credit and fee of a hypothetical transfer and the
// balances it would leave behind.
func (cli *JSONRPCClient) Quote(ctx context.Context, from codec.Address, to codec.Address, amount *uint256.Int) (*QuoteReply, error) {
	resp := new(QuoteReply)
	err := cli.send(ctx, "quote", &QuoteArgs{
		From:   from,
		To:     to,
		Amount: amount.Dec(),
	}, resp)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (cli *JSONRPCClient) TokenFromReflection(ctx context.Context, rAmount *uint256.Int) (*uint256.Int, error) {
	resp := new(TokenFromReflectionReply)
	err := cli.send(ctx, "tokenFromReflection", &TokenFromReflectionArgs{RAmount: rAmount.Dec()}, resp)
	if err != nil {
		return nil, err
	}
	return parseAmount(resp.Amount)
}

func (cli *JSONRPCClient) ReflectionInfo(ctx context.Context) (*token.ReflectionInfo, error) {
	resp := new(ReflectionInfoReply)
	if err := cli.send(ctx, "reflectionInfo", struct{}{}, resp); err != nil {
		return nil, err
	}
	rTotal, err := parseAmount(resp.RTotal)
	if err != nil {
		return nil, err
	}
	rate, err := parseAmount(resp.Rate)
	if err != nil {
		return nil, err
	}
	tFeeTotal, err := parseAmount(resp.TFeeTotal)
	if err != nil {
		return nil, err
	}
	return &token.ReflectionInfo{
		RTotal:    rTotal,
		Rate:      rate,
		TFeeTotal: tFeeTotal,
	}, nil
}
