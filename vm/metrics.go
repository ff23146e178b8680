// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/avalanchego/utils/wrappers"
)

const metricsNamespace = "ledgervm"

type metrics struct {
	txs            *prometheus.CounterVec
	blocksAccepted prometheus.Counter
	mempoolSize    prometheus.Gauge
}

func newMetrics(registerer prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		txs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "txs_executed",
				Help:      "Number of executed transactions by action and result",
			},
			[]string{"action", "result"},
		),
		blocksAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "blocks_accepted",
			Help:      "Number of accepted blocks",
		}),
		mempoolSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "mempool_size",
			Help:      "Number of transactions waiting to be built into a block",
		}),
	}

	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(m.txs),
		registerer.Register(m.blocksAccepted),
		registerer.Register(m.mempoolSize),
	)
	return m, errs.Err
}

func (m *metrics) executed(action string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.txs.WithLabelValues(action, result).Inc()
}
