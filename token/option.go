// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package token

import (
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/reflectvm/event"
	"github.com/ava-labs/reflectvm/reflection"
)

type Options struct {
	Log           logging.Logger
	Tracer        trace.Tracer
	Registerer    prometheus.Registerer
	Authority     Authority
	Subscriptions []event.Subscription[*reflection.Transfer]
}

type Option func(*Options)

func WithLogger(log logging.Logger) Option {
	return func(o *Options) {
		o.Log = log
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(o *Options) {
		o.Tracer = tracer
	}
}

// WithRegisterer registers the token metrics on [r] instead of a private
// registry.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(o *Options) {
		o.Registerer = r
	}
}

// WithAuthority replaces the default authority, which grants every privilege
// to the genesis owner.
func WithAuthority(a Authority) Option {
	return func(o *Options) {
		o.Authority = a
	}
}

// WithSubscriptions registers consumers of committed transfers, mints and
// burns.
func WithSubscriptions(subs ...event.Subscription[*reflection.Transfer]) Option {
	return func(o *Options) {
		o.Subscriptions = append(o.Subscriptions, subs...)
	}
}
