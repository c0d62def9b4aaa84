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

package governance_test

import (
	"testing"

	"github.com/blinklabs-io/bravo/governance"

	"github.com/stretchr/testify/assert"
)

func TestStateAt(t *testing.T) {
	const (
		start  = uint64(1_000)
		end    = uint64(2_000)
		quorum = uint64(5_000)
		eta    = uint64(10_000)
	)
	tests := []struct {
		name   string
		mutate func(p *governance.Proposal)
		now    uint64
		want   governance.ProposalState
	}{
		{
			name: "pending before start",
			now:  start - 1,
			want: governance.StatePending,
		},
		{
			name: "active at start",
			now:  start,
			want: governance.StateActive,
		},
		{
			name: "active until just before end",
			now:  end - 1,
			want: governance.StateActive,
		},
		{
			name: "canceled beats every other state",
			mutate: func(p *governance.Proposal) {
				p.Canceled = true
				p.Executed = true
			},
			now:  start - 1,
			want: governance.StateCanceled,
		},
		{
			name: "defeated when support ties against",
			mutate: func(p *governance.Proposal) {
				p.SupportVotes = quorum
				p.AgainstVotes = quorum
			},
			now:  end,
			want: governance.StateDefeated,
		},
		{
			name: "defeated one vote below quorum",
			mutate: func(p *governance.Proposal) {
				p.SupportVotes = quorum - 1
			},
			now:  end,
			want: governance.StateDefeated,
		},
		{
			name: "succeeded at exactly quorum",
			mutate: func(p *governance.Proposal) {
				p.SupportVotes = quorum
			},
			now:  end,
			want: governance.StateSucceeded,
		},
		{
			name: "queued before eta",
			mutate: func(p *governance.Proposal) {
				p.SupportVotes = quorum
				p.Task.Eta = eta
			},
			now:  end,
			want: governance.StateQueued,
		},
		{
			name: "still queued at the end of the grace period",
			mutate: func(p *governance.Proposal) {
				p.SupportVotes = quorum
				p.Task.Eta = eta
			},
			now:  eta + governance.GracePeriod,
			want: governance.StateQueued,
		},
		{
			name: "expired past the grace period",
			mutate: func(p *governance.Proposal) {
				p.SupportVotes = quorum
				p.Task.Eta = eta
			},
			now:  eta + governance.GracePeriod + 1,
			want: governance.StateExpired,
		},
		{
			name: "executing",
			mutate: func(p *governance.Proposal) {
				p.SupportVotes = quorum
				p.Task.Eta = eta
				p.Executing = true
			},
			now:  eta,
			want: governance.StateExecuting,
		},
		{
			name: "executed beats executing",
			mutate: func(p *governance.Proposal) {
				p.SupportVotes = quorum
				p.Task.Eta = eta
				p.Executing = true
				p.Executed = true
			},
			now:  eta,
			want: governance.StateExecuted,
		},
		{
			name: "executed survives past the grace period",
			mutate: func(p *governance.Proposal) {
				p.SupportVotes = quorum
				p.Task.Eta = eta
				p.Executed = true
			},
			now:  eta + governance.GracePeriod + 1,
			want: governance.StateExecuted,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := governance.Proposal{
				ID:        7,
				Proposer:  "alice",
				StartTime: start,
				EndTime:   end,
			}
			if tt.mutate != nil {
				tt.mutate(&p)
			}
			got := p.StateAt(quorum, tt.now)
			assert.Equal(
				t,
				tt.want,
				got,
				"want %s, got %s",
				tt.want,
				got,
			)
		})
	}
}
