package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelAnalysisStatus = "analysis_status"
)

// StatusMessage 分析状态变更消息，经 websocket 推给发起人
type StatusMessage struct {
	Type       string `json:"type"`
	UserID     int64  `json:"user_id"`
	CompanyID  int64  `json:"company_id"`
	AnalysisID int64  `json:"analysis_id"`
	CallID     int64  `json:"call_id"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
}

// 状态对应的提示消息
var StatusMessages = map[string]string{
	"pending":    "分析已排队",
	"processing": "正在分析通话",
	"completed":  "分析完成",
	"failed":     "分析失败",
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishStatus 发布状态变更消息
func (p *Publisher) PublishStatus(ctx context.Context, msg *StatusMessage) error {
	msg.Type = "analysis_status"

	if msg.Message == "" {
		if message, ok := StatusMessages[msg.Status]; ok {
			msg.Message = message
		}
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal status message: %w", err)
	}

	return p.client.Publish(ctx, ChannelAnalysisStatus, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅状态变更消息
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*StatusMessage)) error {
	pubsub := s.client.Subscribe(ctx, ChannelAnalysisStatus)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var statusMsg StatusMessage
			if err := json.Unmarshal([]byte(msg.Payload), &statusMsg); err != nil {
				continue // 忽略解析错误
			}

			handler(&statusMsg)
		}
	}
}
