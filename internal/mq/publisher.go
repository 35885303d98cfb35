package mq

import (
	"context"
	"time"

	"mm-client-sol/internal/pkg/logger"
	"mm-client-sol/internal/pkg/utils"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/zeromicro/go-zero/core/jsonx"
)

// OutcomeEvent 一次提交的结果事件
type OutcomeEvent struct {
	Wallet    string `json:"wallet"`
	Action    string `json:"action"`
	Signature string `json:"signature,omitempty"`
	Status    string `json:"status"`
	Slot      uint64 `json:"slot,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Timestamp int64  `json:"timestamp"` // 毫秒
}

// OutcomePublisher 发布失败只记录日志，不影响提交结果
type OutcomePublisher interface {
	Publish(ctx context.Context, wallet common.PublicKey, event OutcomeEvent)
	Close()
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, common.PublicKey, OutcomeEvent) {}
func (NopPublisher) Close()                                                  {}

// KafkaPublisher 同一钱包的事件写入同一分区
type KafkaPublisher struct {
	producer   *kafka.Producer
	topic      string
	partitions uint32
	timeout    time.Duration
}

func NewKafkaPublisher(producer *kafka.Producer, topic string, partitions int, timeout time.Duration) *KafkaPublisher {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if partitions < 0 {
		partitions = 0
	}
	return &KafkaPublisher{
		producer:   producer,
		topic:      topic,
		partitions: uint32(partitions),
		timeout:    timeout,
	}
}

func (p *KafkaPublisher) newJob(wallet common.PublicKey, event OutcomeEvent) (*KafkaJob, error) {
	value, err := jsonx.Marshal(event)
	if err != nil {
		return nil, err
	}
	partition := kafka.PartitionAny
	if p.partitions > 1 {
		partition = int32(utils.PartitionHashBytes(wallet[:], p.partitions))
	}
	return &KafkaJob{Topic: p.topic, Partition: partition, Key: []byte(event.Wallet), Value: value}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, wallet common.PublicKey, event OutcomeEvent) {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	job, err := p.newJob(wallet, event)
	if err != nil {
		logger.Errorf("[mq] 结果事件编码失败: sig=%s err=%v", event.Signature, err)
		return
	}

	if err := SendKafkaJob(ctx, p.producer, job, p.timeout); err != nil {
		logger.Warnf("[mq] 结果事件发送失败: topic=%s partition=%d sig=%s err=%v", job.Topic, job.Partition, event.Signature, err)
	}
}

func (p *KafkaPublisher) Close() {
	// 最多等待 5 秒把未确认的消息发完
	if remaining := p.producer.Flush(5000); remaining > 0 {
		logger.Warnf("[mq] 关闭时仍有 %d 条消息未发送", remaining)
	}
	p.producer.Close()
}
