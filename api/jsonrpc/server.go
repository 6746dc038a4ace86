// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonrpc

import (
	"fmt"
	"net/http"

	"github.com/NYTimes/gziphandler"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/ava-labs/reflectvm/api"
	"github.com/ava-labs/reflectvm/codec"
)

const Endpoint = "/reflectapi"

// NewHandler returns the JSON-RPC service for [t] mounted at [Endpoint].
func NewHandler(log logging.Logger, tracer trace.Tracer, t api.Token) (api.Handler, error) {
	handler, err := api.NewJSONRPCHandler(api.Name, NewJSONRPCServer(log, tracer, t))
	if err != nil {
		return api.Handler{}, err
	}
	return api.Handler{
		Path:    Endpoint,
		Handler: gziphandler.GzipHandler(handler),
	}, nil
}

type JSONRPCServer struct {
	log    logging.Logger
	tracer trace.Tracer
	token  api.Token
}

func NewJSONRPCServer(log logging.Logger, tracer trace.Tracer, t api.Token) *JSONRPCServer {
	return &JSONRPCServer{
		log:    log,
		tracer: tracer,
		token:  t,
	}
}

type PingReply struct {
	Success bool `json:"success"`
}

func (j *JSONRPCServer) Ping(_ *http.Request, _ *struct{}, reply *PingReply) error {
	j.log.Info("ping")
	reply.Success = true
	return nil
}

type MetadataReply struct {
	Name       string `json:"name"`
	Symbol     string `json:"symbol"`
	Decimals   uint8  `json:"decimals"`
	Reflective bool   `json:"reflective"`
}

func (j *JSONRPCServer) Metadata(_ *http.Request, _ *struct{}, reply *MetadataReply) error {
	reply.Name = j.token.Name()
	reply.Symbol = j.token.Symbol()
	reply.Decimals = j.token.Decimals()
	reply.Reflective = j.token.Reflective()
	return nil
}

type TotalSupplyReply struct {
	Supply string `json:"supply"`
}

func (j *JSONRPCServer) TotalSupply(req *http.Request, _ *struct{}, reply *TotalSupplyReply) error {
	ctx, span := j.tracer.Start(req.Context(), "JSONRPCServer.TotalSupply")
	defer span.End()

	supply, err := j.token.TotalSupply(ctx)
	if err != nil {
		return err
	}
	reply.Supply = supply.Dec()
	return nil
}

type BalanceArgs struct {
	Address codec.Address `json:"address"`
}

type BalanceReply struct {
	Amount string `json:"amount"`
}

func (j *JSONRPCServer) Balance(req *http.Request, args *BalanceArgs, reply *BalanceReply) error {
	ctx, span := j.tracer.Start(req.Context(), "JSONRPCServer.Balance")
	defer span.End()

	balance, err := j.token.BalanceOf(ctx, args.Address)
	if err != nil {
		return err
	}
	reply.Amount = balance.Dec()
	return nil
}

type FeeBpsReply struct {
	FeeBps uint16 `json:"feeBps"`
}

func (j *JSONRPCServer) FeeBps(_ *http.Request, _ *struct{}, reply *FeeBpsReply) error {
	reply.FeeBps = j.token.CurrentFeeBps()
	return nil
}

type QuoteArgs struct {
	From   codec.Address `json:"from"`
	To     codec.Address `json:"to"`
	Amount string        `json:"amount"`
}

type QuoteReply struct {
	Credited    string `json:"credited"`
	Fee         string `json:"fee"`
	FromBalance string `json:"fromBalance"`
	ToBalance   string `json:"toBalance"`
}

// Quote reports what a fee-charging transfer would do without applying it.
func (j *JSONRPCServer) Quote(req *http.Request, args *QuoteArgs, reply *QuoteReply) error {
	ctx, span := j.tracer.Start(req.Context(), "JSONRPCServer.Quote")
	defer span.End()

	amount, err := parseAmount(args.Amount)
	if err != nil {
		return err
	}
	q, err := j.token.Quote(ctx, args.From, args.To, amount)
	if err != nil {
		j.log.Debug("quote failed",
			zap.Stringer("from", args.From),
			zap.Stringer("to", args.To),
			zap.Error(err),
		)
		return err
	}
	reply.Credited, reply.Fee = "0", "0"
	if q.Transfer != nil {
		reply.Credited = q.Transfer.Credited.Dec()
		reply.Fee = q.Transfer.Fee.Dec()
	}
	reply.FromBalance = q.FromBalance.Dec()
	reply.ToBalance = q.ToBalance.Dec()
	return nil
}

type TokenFromReflectionArgs struct {
	RAmount string `json:"rAmount"`
}

type TokenFromReflectionReply struct {
	Amount string `json:"amount"`
}

func (j *JSONRPCServer) TokenFromReflection(req *http.Request, args *TokenFromReflectionArgs, reply *TokenFromReflectionReply) error {
	ctx, span := j.tracer.Start(req.Context(), "JSONRPCServer.TokenFromReflection")
	defer span.End()

	rAmount, err := parseAmount(args.RAmount)
	if err != nil {
		return err
	}
	amount, err := j.token.TokenFromReflection(ctx, rAmount)
	if err != nil {
		return err
	}
	reply.Amount = amount.Dec()
	return nil
}

type ReflectionInfoReply struct {
	RTotal    string `json:"rTotal"`
	Rate      string `json:"rate"`
	TFeeTotal string `json:"tFeeTotal"`
}

func (j *JSONRPCServer) ReflectionInfo(req *http.Request, _ *struct{}, reply *ReflectionInfoReply) error {
	ctx, span := j.tracer.Start(req.Context(), "JSONRPCServer.ReflectionInfo")
	defer span.End()

	info, err := j.token.ReflectionInfo(ctx)
	if err != nil {
		return err
	}
	reply.RTotal = info.RTotal.Dec()
	reply.Rate = info.Rate.Dec()
	reply.TFeeTotal = info.TFeeTotal.Dec()
	return nil
}

func parseAmount(s string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return v, nil
}
