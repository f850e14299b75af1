package repository

import (
	"context"
	"fmt"

	"TokenPulse/internal/domain/models"
	pkgkafka "TokenPulse/pkg/kafka"
	applogger "TokenPulse/pkg/logger"
)

// KafkaAlertPublisher fans BUY records out to a Kafka topic, keyed by token
// so per-token ordering is preserved across runs.
type KafkaAlertPublisher struct {
	producer *pkgkafka.Producer
	topic    string
	l        *applogger.Logger
}

func NewKafkaAlertPublisher(producer *pkgkafka.Producer, topic string, l *applogger.Logger) *KafkaAlertPublisher {
	if l == nil {
		l = applogger.Nop()
	}
	return &KafkaAlertPublisher{producer: producer, topic: topic, l: l}
}

// buyAlert is the published payload for one BUY record.
type buyAlert struct {
	RunID      string   `json:"run_id"`
	Token      string   `json:"token"`
	Source     string   `json:"source"`
	AsOf       string   `json:"as_of"`
	Price      float64  `json:"price"`
	Confidence float64  `json:"confidence"`
	Rationale  []string `json:"rationale"`
}

// PublishBuys implements AlertPublisher.
func (p *KafkaAlertPublisher) PublishBuys(ctx context.Context, result *models.ScanResult) error {
	buys := result.Buys()
	if len(buys) == 0 {
		return nil
	}

	msgs := make([]pkgkafka.Message, 0, len(buys))
	for _, r := range buys {
		alert := buyAlert{
			RunID:     result.RunID,
			Token:     r.Token,
			Source:    r.Source,
			AsOf:      r.AsOf.UTC().Format("2006-01-02T15:04:05Z"),
			Price:     r.Price,
			Rationale: r.Rationale,
		}
		if r.Confidence != nil {
			alert.Confidence = *r.Confidence
		}
		msgs = append(msgs, pkgkafka.Message{Key: []byte(r.Token), Value: alert})
	}

	if err := p.producer.PublishBatch(ctx, p.topic, msgs); err != nil {
		return fmt.Errorf("publish buy alerts: %w", err)
	}
	p.l.Info("buy alerts published",
		applogger.String("topic", p.topic),
		applogger.String("run_id", result.RunID),
		applogger.Int("count", len(msgs)),
	)
	return nil
}

// Close closes the underlying producer.
func (p *KafkaAlertPublisher) Close() error {
	return p.producer.Close()
}
