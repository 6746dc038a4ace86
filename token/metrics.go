// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package token

import (
	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "reflect"

type metrics struct {
	reflectedTransfers prometheus.Counter
	exemptTransfers    prometheus.Counter
	failedOperations   prometheus.Counter
	mints              prometheus.Counter
	burns              prometheus.Counter
	feeBps             prometheus.Gauge
	transfer           metric.Averager
}

func newMetrics(r prometheus.Registerer) (*metrics, error) {
	transfer, err := metric.NewAverager(
		namespace+"_transfer",
		"time spent applying a transfer",
		r,
	)
	if err != nil {
		return nil, err
	}
	m := &metrics{
		reflectedTransfers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reflected_transfers",
			Help:      "number of committed transfers that reflected a fee",
		}),
		exemptTransfers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exempt_transfers",
			Help:      "number of committed transfers that skipped the fee",
		}),
		failedOperations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failed_operations",
			Help:      "number of state-changing operations that were rejected",
		}),
		mints: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mints",
			Help:      "number of committed mints",
		}),
		burns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "burns",
			Help:      "number of committed burns",
		}),
		feeBps: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fee_bps",
			Help:      "current transfer fee in basis points",
		}),
		transfer: transfer,
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.reflectedTransfers),
		r.Register(m.exemptTransfers),
		r.Register(m.failedOperations),
		r.Register(m.mints),
		r.Register(m.burns),
		r.Register(m.feeBps),
	)
	return m, errs.Err
}
