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

package event

import (
	"io"
	"log/slog"
	"sync"
)

// Sink delivers events to an external system, such as a message broker
type Sink interface {
	Deliver(Event) error
	Close() error
}

// Forwarder drains events from an EventBus into a Sink. Delivery is
// best-effort: a failed delivery is retained in a single retry slot and
// retried before the next event is attempted. A newer failure overwrites
// the slot, so at most one undelivered event is buffered at any time.
type Forwarder struct {
	logger  *slog.Logger
	sink    Sink
	bus     *EventBus
	subIds  map[EventType]EventSubscriberId
	pending *Event
	mu      sync.Mutex
}

// NewForwarder creates a Forwarder that subscribes to the given event
// types on the bus and forwards them to the sink
func NewForwarder(
	bus *EventBus,
	sink Sink,
	logger *slog.Logger,
	eventTypes ...EventType,
) *Forwarder {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	f := &Forwarder{
		logger: logger.With("component", "event-forwarder"),
		sink:   sink,
		bus:    bus,
		subIds: make(map[EventType]EventSubscriberId),
	}
	for _, eventType := range eventTypes {
		f.subIds[eventType] = bus.SubscribeFunc(eventType, f.forward)
	}
	return f
}

// forward attempts delivery of any retained event before the new one. The
// retry slot keeps the most recent undelivered event.
func (f *Forwarder) forward(evt Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending != nil {
		if err := f.sink.Deliver(*f.pending); err == nil {
			f.pending = nil
		} else {
			f.logger.Debug(
				"retry delivery failed",
				"type", f.pending.Type,
				"error", err,
			)
		}
	}
	if err := f.sink.Deliver(evt); err != nil {
		if f.pending != nil {
			f.logger.Warn(
				"dropping undelivered event",
				"type", f.pending.Type,
			)
		}
		f.pending = &evt
		f.logger.Debug(
			"delivery failed, event retained for retry",
			"type", evt.Type,
			"error", err,
		)
	}
}

// Flush attempts delivery of the retained event, if any
func (f *Forwarder) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending == nil {
		return nil
	}
	if err := f.sink.Deliver(*f.pending); err != nil {
		return err
	}
	f.pending = nil
	return nil
}

// Stop unsubscribes from the bus and closes the sink
func (f *Forwarder) Stop() error {
	for eventType, subId := range f.subIds {
		f.bus.Unsubscribe(eventType, subId)
	}
	f.subIds = make(map[EventType]EventSubscriberId)
	return f.sink.Close()
}
