package mq

import (
	"context"
	"fmt"
	"os"
	"time"

	"mm-client-sol/internal/config"
	"mm-client-sol/internal/pkg/logger"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

const (
	defaultBatchSize  = 32 * 1024
	defaultLingerMs   = 5
	metadataTimeoutMs = 10000
)

// NewKafkaProducer 确保结果 topic 存在后创建生产者
func NewKafkaProducer(cfg config.KafkaConfig) (*kafka.Producer, error) {
	if err := ensureTopic(cfg); err != nil {
		return nil, err
	}

	producer, err := kafka.NewProducer(producerConfigMap(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}
	return producer, nil
}

// ensureTopic topic 不存在时按配置的分区数创建，副本数随 broker 数量取 1 或 2
func ensureTopic(cfg config.KafkaConfig) error {
	adminCfg := &kafka.ConfigMap{"bootstrap.servers": cfg.Brokers}
	applySecurity(adminCfg, cfg)
	adminClient, err := kafka.NewAdminClient(adminCfg)
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer adminClient.Close()

	meta, err := adminClient.GetMetadata(nil, true, metadataTimeoutMs)
	if err != nil {
		return fmt.Errorf("failed to get metadata: %w", err)
	}
	if _, ok := meta.Topics[cfg.Topic]; ok {
		return nil
	}

	replicationFactor := 1
	if len(meta.Brokers) > 1 {
		replicationFactor = 2
	}
	partitions := cfg.Partitions
	if partitions <= 0 {
		partitions = 1
	}
	logger.Infof("[mq] 创建结果 topic: %s partitions=%d replication=%d", cfg.Topic, partitions, replicationFactor)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	results, err := adminClient.CreateTopics(ctx, []kafka.TopicSpecification{{
		Topic:             cfg.Topic,
		NumPartitions:     partitions,
		ReplicationFactor: replicationFactor,
	}})
	if err != nil {
		return fmt.Errorf("failed to create topic %s: %w", cfg.Topic, err)
	}
	for _, result := range results {
		// 并发启动时可能已被其他进程创建
		if code := result.Error.Code(); code != kafka.ErrNoError && code != kafka.ErrTopicAlreadyExists {
			return fmt.Errorf("failed to create topic %s: %w", result.Topic, result.Error)
		}
	}
	return nil
}

func producerConfigMap(cfg config.KafkaConfig) *kafka.ConfigMap {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	lingerMs := cfg.LingerMs
	if lingerMs < 0 {
		lingerMs = defaultLingerMs
	}

	cm := &kafka.ConfigMap{
		"bootstrap.servers": cfg.Brokers,
		"client.id":         fmt.Sprintf("mm-client-sol-%s", hostname()),

		// 结果事件不可丢、不可重复
		"acks":                                  "all",
		"enable.idempotence":                    true,
		"max.in.flight.requests.per.connection": 5, // 幂等场景下最大值为 5

		"delivery.timeout.ms": 30000,
		"request.timeout.ms":  30000,
		"retries":             5,
		"retry.backoff.ms":    100,

		"batch.size":       batchSize,
		"linger.ms":        lingerMs,
		"compression.type": "none",
	}
	applySecurity(cm, cfg)
	return cm
}

func applySecurity(cm *kafka.ConfigMap, cfg config.KafkaConfig) {
	if cfg.SecurityProtocol == "" {
		return
	}
	_ = cm.SetKey("security.protocol", cfg.SecurityProtocol)
	if cfg.SaslMechanism != "" {
		_ = cm.SetKey("sasl.mechanisms", cfg.SaslMechanism)
		_ = cm.SetKey("sasl.username", cfg.SaslUsername)
		_ = cm.SetKey("sasl.password", cfg.SaslPassword)
	}
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "unknown"
	}
	return name
}
