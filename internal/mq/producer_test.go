package mq

import (
	"context"
	"testing"
	"time"

	"mm-client-sol/internal/config"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTopic = "mm-client-outcome-test"

// newMockCluster 进程内 broker，无需外部 Kafka
func newMockCluster(t *testing.T, partitions int) *kafka.MockCluster {
	t.Helper()
	mc, err := kafka.NewMockCluster(1)
	require.NoError(t, err)
	t.Cleanup(mc.Close)
	require.NoError(t, mc.CreateTopic(testTopic, partitions, 1))
	return mc
}

func testKafkaConfig(brokers string, partitions int) config.KafkaConfig {
	return config.KafkaConfig{
		Brokers:       brokers,
		Topic:         testTopic,
		Partitions:    partitions,
		LingerMs:      1,
		SendTimeoutMs: 5000,
	}
}

func TestProducerConfigMap(t *testing.T) {
	cfg := testKafkaConfig("127.0.0.1:9092", 4)
	cm := producerConfigMap(cfg)

	v, err := cm.Get("batch.size", nil)
	require.NoError(t, err)
	assert.Equal(t, defaultBatchSize, v, "未配置时使用默认批大小")

	v, err = cm.Get("enable.idempotence", nil)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = cm.Get("security.protocol", nil)
	require.NoError(t, err)
	assert.Nil(t, v, "未配置认证时不设置")

	cfg.SecurityProtocol = "SASL_SSL"
	cfg.SaslMechanism = "SCRAM-SHA-256"
	cfg.SaslUsername = "mm"
	cfg.SaslPassword = "secret"
	cm = producerConfigMap(cfg)
	v, _ = cm.Get("security.protocol", nil)
	assert.Equal(t, "SASL_SSL", v)
	v, _ = cm.Get("sasl.username", nil)
	assert.Equal(t, "mm", v)
}

func TestNewKafkaProducer_ExistingTopic(t *testing.T) {
	mc := newMockCluster(t, 4)

	producer, err := NewKafkaProducer(testKafkaConfig(mc.BootstrapServers(), 4))
	require.NoError(t, err)
	defer producer.Close()

	job := &KafkaJob{Topic: testTopic, Partition: 2, Key: []byte("wallet"), Value: []byte(`{"status":"committed"}`)}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	assert.NoError(t, SendKafkaJob(ctx, producer, job, 5*time.Second))
}

func TestSendKafkaJob_BrokerDown(t *testing.T) {
	mc := newMockCluster(t, 1)
	producer, err := kafka.NewProducer(&kafka.ConfigMap{"bootstrap.servers": mc.BootstrapServers()})
	require.NoError(t, err)
	defer producer.Close()

	require.NoError(t, mc.SetBrokerDown(1))

	job := &KafkaJob{Topic: testTopic, Partition: kafka.PartitionAny, Value: []byte("x")}
	start := time.Now()
	err = SendKafkaJob(context.Background(), producer, job, 200*time.Millisecond)
	assert.Error(t, err, "broker 不可用时等待 ack 超时")
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestSendKafkaJob_ContextCancelled(t *testing.T) {
	mc := newMockCluster(t, 1)
	producer, err := kafka.NewProducer(&kafka.ConfigMap{"bootstrap.servers": mc.BootstrapServers()})
	require.NoError(t, err)
	defer producer.Close()
	require.NoError(t, mc.SetBrokerDown(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = SendKafkaJob(ctx, producer, &KafkaJob{Topic: testTopic, Partition: kafka.PartitionAny, Value: []byte("x")}, 5*time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}
