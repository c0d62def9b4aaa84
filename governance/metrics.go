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

package governance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type governanceMetrics struct {
	proposals             prometheus.Gauge
	votesTotal            prometheus.Counter
	executionsTotal       prometheus.Counter
	failedExecutionsTotal prometheus.Counter
}

func (m *governanceMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.proposals = promautoFactory.NewGauge(
		prometheus.GaugeOpts{
			Name: "bravo_governance_proposals",
			Help: "number of proposals ever created",
		},
	)
	m.votesTotal = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "bravo_governance_votes_total",
			Help: "total number of votes cast",
		},
	)
	m.executionsTotal = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "bravo_governance_executions_total",
			Help: "total number of proposals executed",
		},
	)
	m.failedExecutionsTotal = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "bravo_governance_failed_executions_total",
			Help: "total number of failed proposal executions",
		},
	)
}

type timelockMetrics struct {
	queuedTasks prometheus.Gauge
}

func (m *timelockMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.queuedTasks = promautoFactory.NewGauge(
		prometheus.GaugeOpts{
			Name: "bravo_timelock_queued_tasks",
			Help: "number of tasks waiting in the timelock",
		},
	)
}
