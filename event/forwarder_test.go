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

package event_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/blinklabs-io/bravo/event"
)

// failingSink fails delivery while failures > 0 and records everything
// successfully delivered
type failingSink struct {
	mu        sync.Mutex
	failures  int
	delivered []event.Event
	attempts  int
}

func (s *failingSink) Deliver(evt event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if s.failures > 0 {
		s.failures--
		return errors.New("intentional sink failure")
	}
	s.delivered = append(s.delivered, evt)
	return nil
}

func (s *failingSink) Close() error {
	return nil
}

func (s *failingSink) deliveredData() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret := make([]any, 0, len(s.delivered))
	for _, evt := range s.delivered {
		ret = append(ret, evt.Data)
	}
	return ret
}

func TestForwarderDelivers(t *testing.T) {
	defer goleak.VerifyNone(
		t,
		goleak.IgnoreTopFunction(
			"github.com/blinklabs-io/bravo/event.(*EventBus).asyncWorker",
		),
	)
	var testEvtType event.EventType = "test.forward"
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	sink := &failingSink{}
	f := event.NewForwarder(eb, sink, nil, testEvtType)
	defer f.Stop() //nolint:errcheck

	eb.Publish(testEvtType, event.NewEvent(testEvtType, 1))
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 2))

	require.Eventually(t, func() bool {
		return len(sink.deliveredData()) == 2
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, []any{1, 2}, sink.deliveredData())
}

func TestForwarderRetriesFailedEvent(t *testing.T) {
	var testEvtType event.EventType = "test.forward"
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	// First delivery fails, everything afterward succeeds
	sink := &failingSink{failures: 1}
	f := event.NewForwarder(eb, sink, nil, testEvtType)
	defer f.Stop() //nolint:errcheck

	eb.Publish(testEvtType, event.NewEvent(testEvtType, 1))
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 2))

	// The failed event is retried before the next one is attempted
	require.Eventually(t, func() bool {
		return len(sink.deliveredData()) == 2
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, []any{1, 2}, sink.deliveredData())
}

func TestForwarderSingleRetrySlot(t *testing.T) {
	var testEvtType event.EventType = "test.forward"
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	// Fail the first three attempts: initial delivery of event 1, then
	// the retry of event 1 and initial delivery of event 2. Event 1 is
	// dropped when event 2 takes the retry slot, then event 2 is retried
	// successfully ahead of event 3.
	sink := &failingSink{failures: 3}
	f := event.NewForwarder(eb, sink, nil, testEvtType)
	defer f.Stop() //nolint:errcheck

	eb.Publish(testEvtType, event.NewEvent(testEvtType, 1))
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 2))
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 3))

	require.Eventually(t, func() bool {
		return len(sink.deliveredData()) == 2
	}, 2*time.Second, 10*time.Millisecond)
	// Event 2 was retained in the slot and retried, event 1 was dropped
	require.Equal(t, []any{2, 3}, sink.deliveredData())
}

func TestForwarderFlush(t *testing.T) {
	var testEvtType event.EventType = "test.forward"
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	sink := &failingSink{failures: 1}
	f := event.NewForwarder(eb, sink, nil, testEvtType)
	defer f.Stop() //nolint:errcheck

	eb.Publish(testEvtType, event.NewEvent(testEvtType, 1))

	// Wait for the failed delivery attempt
	require.Eventually(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return sink.attempts == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, f.Flush())
	require.Equal(t, []any{1}, sink.deliveredData())
	// A second flush with nothing retained is a no-op
	require.NoError(t, f.Flush())
}
