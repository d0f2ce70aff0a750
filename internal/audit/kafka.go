package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaSink publishes audit events to a Kafka topic so downstream compliance
// consumers get the same trail the in-process store holds. Events are keyed
// by asset to keep per-instance ordering.
type KafkaSink struct {
	client *kgo.Client
	topic  string
}

// NewKafkaSink dials the given brokers. The caller owns Close.
func NewKafkaSink(brokers []string, topic string) (*KafkaSink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("dial kafka: %w", err)
	}
	return &KafkaSink{client: client, topic: topic}, nil
}

func (s *KafkaSink) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.Asset),
		Value: payload,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// ListByAsset is unsupported on the Kafka sink; reads stay on the local store.
func (s *KafkaSink) ListByAsset(context.Context, string) ([]Event, error) {
	return nil, fmt.Errorf("kafka sink is write-only")
}

func (s *KafkaSink) Close() {
	s.client.Close()
}

// Tee fans one Append out to several stores, failing on the first error.
// main uses it to pair the queryable memory store with the Kafka sink.
type Tee []Store

func (t Tee) Append(ctx context.Context, event Event) error {
	for _, store := range t {
		if err := store.Append(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

func (t Tee) ListByAsset(ctx context.Context, asset string) ([]Event, error) {
	if len(t) == 0 {
		return nil, nil
	}
	return t[0].ListByAsset(ctx, asset)
}
