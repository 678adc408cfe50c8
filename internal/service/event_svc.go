package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// ==================== 事件定义 ====================

const (
	publishTopic = "publish-events"

	EventListingPublished = "listing.published"
	EventListingFailed    = "listing.failed"
	EventTemplateCreated  = "template.created"
)

// PublishEvent 发布动作的领域事件，下游报表/通知消费
type PublishEvent struct {
	Type      string    `json:"type"`
	UserID    int64     `json:"user_id"`
	Platform  string    `json:"platform"`
	ProductID string    `json:"product_id"`
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
}

// ==================== 服务实现 ====================

// EventService 向 Kafka 投递领域事件
// 事件是旁路：投递失败只记日志，绝不影响主流程结果
type EventService struct {
	writer *kafka.Writer
}

// NewEventService brokers 为空时返回空 writer 的服务，Emit 变为空操作
func NewEventService(brokers []string) *EventService {
	if len(brokers) == 0 {
		return &EventService{}
	}
	return &EventService{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        publishTopic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 100 * time.Millisecond,
		},
	}
}

// Emit 投递单条事件
func (s *EventService) Emit(ctx context.Context, event PublishEvent) {
	if s == nil || s.writer == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("[Event] 事件序列化失败: %v", err)
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(event.Platform),
		Value: payload,
	}); err != nil {
		log.Printf("[Event] 事件投递失败 (type=%s): %v", event.Type, err)
	}
}

// Close 进程退出前冲刷缓冲
func (s *EventService) Close() error {
	if s == nil || s.writer == nil {
		return nil
	}
	return s.writer.Close()
}
