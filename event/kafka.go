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
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

// KafkaSink publishes events to a Kafka topic as JSON messages keyed by
// event type
type KafkaSink struct {
	producer sarama.SyncProducer
	topic    string
}

// kafkaEventEnvelope is the JSON wire format for forwarded events
type kafkaEventEnvelope struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// NewKafkaSink creates a KafkaSink connected to the given brokers
func NewKafkaSink(brokers []string, topic string) (*KafkaSink, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Retry.Max = 3
	config.Producer.Return.Successes = true
	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return &KafkaSink{
		producer: producer,
		topic:    topic,
	}, nil
}

// Deliver publishes an event to the configured topic
func (k *KafkaSink) Deliver(evt Event) error {
	payload, err := json.Marshal(kafkaEventEnvelope{
		Type:      evt.Type,
		Timestamp: evt.Timestamp,
		Data:      evt.Data,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	_, _, err = k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(evt.Type),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Close shuts down the underlying producer
func (k *KafkaSink) Close() error {
	return k.producer.Close()
}
