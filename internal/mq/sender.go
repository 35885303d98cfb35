package mq

import (
	"context"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// KafkaJob 表示一条需要发送的 Kafka 消息
type KafkaJob struct {
	Topic     string
	Partition int32  // kafka.PartitionAny 表示由 broker 分配
	Key       []byte // 钱包地址，下游按钱包聚合
	Value     []byte
}

// SendKafkaJob 发送一条消息并等待 broker ack，超时或 ctx 结束时返回错误。
// deliveryChan 带缓冲，放弃等待后迟到的回执不会阻塞 librdkafka 的回调
func SendKafkaJob(ctx context.Context, producer *kafka.Producer, job *KafkaJob, timeout time.Duration) error {
	deliveryChan := make(chan kafka.Event, 1)
	err := producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &job.Topic,
			Partition: job.Partition,
		},
		Key:   job.Key,
		Value: job.Value,
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("produce error: %w", err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case e := <-deliveryChan:
		msg, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("invalid delivery event type: %T", e)
		}
		if msg.TopicPartition.Error != nil {
			return msg.TopicPartition.Error
		}
		return nil
	case <-timer.C:
		return fmt.Errorf("delivery timeout (>%v)", timeout)
	case <-ctx.Done():
		return fmt.Errorf("ctx cancelled: %w", ctx.Err())
	}
}
