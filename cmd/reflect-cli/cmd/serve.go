// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"net"

	"github.com/neilotoole/errgroup"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ava-labs/reflectvm/api"
	"github.com/ava-labs/reflectvm/api/jsonrpc"
	"github.com/ava-labs/reflectvm/api/ws"
	"github.com/ava-labs/reflectvm/server"
)

const metricsPath = "/metrics"

func newServeCmd(c *cli) *cobra.Command {
	var address string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only JSON-RPC API, the transfer stream and metrics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("http-address") {
				c.cfg.HTTPAddress = address
			}
			c.serveLogs = true
			return c.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&address, "http-address", "", "address to listen on")
	return cmd
}

func (c *cli) serve(ctx context.Context) error {
	if err := c.initLogger(); err != nil {
		return err
	}
	stream := ws.NewTransferStream(c.log, c.cfg.Stream)
	c.subscriptions = append(c.subscriptions, stream)
	tk, err := c.openToken(ctx)
	if err != nil {
		return err
	}
	rpcHandler, err := jsonrpc.NewHandler(c.log, c.tracer, tk)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", c.cfg.HTTPAddress)
	if err != nil {
		return err
	}
	s := server.New(c.log, listener, c.cfg.Server)
	s.AddRoute(rpcHandler)
	s.AddRoute(stream.Handler())
	s.AddRoute(api.Handler{
		Path:    metricsPath,
		Handler: promhttp.HandlerFor(c.gatherers, promhttp.HandlerOpts{}),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c.log.Info("serving",
			zap.Stringer("address", listener.Addr()),
		)
		return s.Dispatch()
	})
	g.Go(func() error {
		<-gctx.Done()
		c.log.Info("shutting down")
		return s.Shutdown()
	})
	return g.Wait()
}
