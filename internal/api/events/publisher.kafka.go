package events

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"github.com/KraitOPP/PerishPro-sub000/internal/logger"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

// MessageWriter phần của kafka.Writer mà publisher dùng
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig cấu hình kết nối Kafka
type KafkaConfig struct {
	Brokers  []string
	Topic    string
	Username string // để trống thì không dùng SASL
	Password string
}

// ChangeMessage payload JSON gửi lên topic
type ChangeMessage struct {
	ID         string      `json:"id"`
	Collection string      `json:"collection"`
	Operation  string      `json:"op"`
	At         time.Time   `json:"at"`
	Document   interface{} `json:"document,omitempty"`
}

// KafkaPublisher đẩy sự kiện thay đổi của các collection được theo dõi lên Kafka
type KafkaPublisher struct {
	writer      MessageWriter
	collections map[string]bool
	timeout     time.Duration
	now         func() time.Time
}

// NewKafkaPublisher tạo publisher với kafka.Writer bất đồng bộ.
// collections rỗng thì publish mọi collection.
func NewKafkaPublisher(cfg KafkaConfig, collections ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		Async:                  true,
		AllowAutoTopicCreation: true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.GetErrorLogger().WithError(err).WithField("count", len(messages)).Error("Kafka: gửi message thất bại")
			}
		},
	}
	if cfg.Username != "" && cfg.Password != "" {
		// SASL/PLAIN luôn đi kèm TLS
		w.Transport = &kafka.Transport{
			SASL: plain.Mechanism{Username: cfg.Username, Password: cfg.Password},
			TLS:  &tls.Config{MinVersion: tls.VersionTLS12},
		}
	}
	return newKafkaPublisher(w, collections...)
}

func newKafkaPublisher(w MessageWriter, collections ...string) *KafkaPublisher {
	p := &KafkaPublisher{
		writer:  w,
		timeout: 5 * time.Second,
		now:     time.Now,
	}
	if len(collections) > 0 {
		p.collections = make(map[string]bool, len(collections))
		for _, c := range collections {
			p.collections[c] = true
		}
	}
	return p
}

// Handle là DataChangeHandler, đăng ký bằng events.OnDataChanged(p.Handle)
func (p *KafkaPublisher) Handle(ctx context.Context, e DataChangeEvent) {
	if p.collections != nil && !p.collections[e.CollectionName] {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		logger.GetErrorLogger().WithError(err).WithFields(map[string]interface{}{
			"collection": e.CollectionName,
			"operation":  e.Operation,
			"id":         e.DocumentID,
		}).Error("Kafka: publish sự kiện thất bại")
	}
}

// Publish ghi một sự kiện, key là id của document để giữ thứ tự theo document
func (p *KafkaPublisher) Publish(ctx context.Context, e DataChangeEvent) error {
	payload, err := json.Marshal(ChangeMessage{
		ID:         e.DocumentID,
		Collection: e.CollectionName,
		Operation:  e.Operation,
		At:         p.now().UTC(),
		Document:   e.Document,
	})
	if err != nil {
		return fmt.Errorf("marshal change message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.DocumentID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "collection", Value: []byte(e.CollectionName)},
			{Key: "op", Value: []byte(e.Operation)},
		},
	})
}

// Close flush và đóng writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
