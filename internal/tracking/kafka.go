package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prohmpiriya/event-storefront/pkg/config"
	"github.com/prohmpiriya/event-storefront/pkg/logger"
	"github.com/twmb/franz-go/pkg/kgo"
)

// PromoClick is the record published for each click
type PromoClick struct {
	EventID   string    `json:"event_id"`
	Code      string    `json:"code"`
	SessionID string    `json:"session_id,omitempty"`
	ClickedAt time.Time `json:"clicked_at"`
}

// Producer is the subset of *kgo.Client used to publish clicks
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaTracker publishes clicks to a Kafka topic keyed by event id
type KafkaTracker struct {
	producer Producer
	topic    string
	now      func() time.Time
}

// NewKafkaTracker creates a tracker publishing to topic
func NewKafkaTracker(producer Producer, topic string) *KafkaTracker {
	return &KafkaTracker{producer: producer, topic: topic, now: time.Now}
}

// NewKafkaClient connects a franz-go client for the click topic
func NewKafkaClient(cfg *config.KafkaConfig) (*kgo.Client, error) {
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.DefaultProduceTopic(cfg.PromoClickTopic),
		kgo.ProducerLinger(5*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}
	return cl, nil
}

// Name identifies the tracker in metrics
func (t *KafkaTracker) Name() string { return "kafka" }

// TrackPromoClick publishes one PromoClick record
func (t *KafkaTracker) TrackPromoClick(ctx context.Context, eventID, code string) error {
	click := PromoClick{
		EventID:   eventID,
		Code:      code,
		ClickedAt: t.now().UTC(),
	}
	if sid, ok := ctx.Value(logger.SessionIDKey).(string); ok {
		click.SessionID = sid
	}

	value, err := json.Marshal(click)
	if err != nil {
		return fmt.Errorf("failed to encode promo click: %w", err)
	}

	record := &kgo.Record{
		Topic:     t.topic,
		Key:       []byte(eventID),
		Value:     value,
		Timestamp: click.ClickedAt,
	}
	if err := t.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to publish promo click: %w", err)
	}
	return nil
}
