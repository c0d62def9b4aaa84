// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type ledgerMetrics struct {
	totalSupply      prometheus.Gauge
	holders          prometheus.Gauge
	transfersTotal   prometheus.Counter
	approvalsTotal   prometheus.Counter
	delegationsTotal prometheus.Counter
}

func (m *ledgerMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.totalSupply = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "bravo_ledger_total_supply",
		Help: "current total token supply",
	})
	m.holders = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "bravo_ledger_holders",
		Help: "current count of accounts with a non-zero balance",
	})
	m.transfersTotal = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "bravo_ledger_transfers_total",
		Help: "total transfers processed",
	})
	m.approvalsTotal = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "bravo_ledger_approvals_total",
		Help: "total approvals processed",
	})
	m.delegationsTotal = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "bravo_ledger_delegations_total",
		Help: "total delegation changes processed",
	})
}
