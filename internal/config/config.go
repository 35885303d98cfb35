package config

import (
	"errors"
	"fmt"
	"time"

	"mm-client-sol/internal/consts"
	"mm-client-sol/internal/logic/pda"
	"mm-client-sol/internal/pkg/logger"
	"mm-client-sol/internal/pkg/retry"
	"mm-client-sol/internal/rpcclient"
	"mm-client-sol/internal/types"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/zeromicro/go-zero/core/conf"
)

type LogConfig struct {
	Format   string `json:",default=console,options=console|json"` // 日志格式
	LogDir   string `json:",optional"`                             // 日志目录，为空只输出 stdout
	Level    string `json:",default=info"`                         // debug / info / warn / error
	Compress bool   `json:",optional"`                             // 是否压缩旧日志文件
}

func (c *LogConfig) ToLogOption() logger.LogOption {
	return logger.LogOption{
		Format:   c.Format,
		LogDir:   c.LogDir,
		Level:    c.Level,
		Compress: c.Compress,
	}
}

// RpcConfig 节点连接与确认等待参数
type RpcConfig struct {
	Endpoint          string `json:",default=https://api.mainnet-beta.solana.com"`
	Commitment        string `json:",default=confirmed,options=processed|confirmed|finalized"` // 提交默认确认级别
	PollIntervalMs    int    `json:",default=500"`                                             // 确认轮询间隔（毫秒）
	ConfirmTimeoutSec int    `json:",default=60"`                                              // 等待确认上限（秒），超时视为不确定
	RequestTimeoutSec int    `json:",default=5"`                                               // 单次查询超时（秒）
	SkipPreflight     bool   `json:",optional"`                                                // 跳过节点模拟
	MaxRetries        uint64 `json:",optional"`                                                // 节点侧重发次数
}

func (c *RpcConfig) ToOption() rpcclient.Option {
	return rpcclient.Option{
		SkipPreflight:       c.SkipPreflight,
		PreflightCommitment: rpcclient.Commitment(c.Commitment),
		MaxRetries:          c.MaxRetries,
	}
}

// RetryConfig 查询与提交共用的退避策略
type RetryConfig struct {
	InitialIntervalMs int `json:",default=200"`
	MaxIntervalMs     int `json:",default=2000"`
	MaxAttempts       int `json:",default=3"` // 含首次
}

func (c *RetryConfig) ToPolicy() retry.Policy {
	p := retry.DefaultPolicy()
	if c.InitialIntervalMs > 0 {
		p.InitialInterval = time.Duration(c.InitialIntervalMs) * time.Millisecond
	}
	if c.MaxIntervalMs > 0 {
		p.MaxInterval = time.Duration(c.MaxIntervalMs) * time.Millisecond
	}
	if c.MaxAttempts > 0 {
		p.MaxAttempts = c.MaxAttempts
	}
	return p
}

// ProgramsConfig 程序地址与计价币，base58；除 Cypher 外留空时使用主网地址
type ProgramsConfig struct {
	Cypher          string // 交易程序，必填
	Dex             string `json:",optional"` // 默认 Serum v3
	Token           string `json:",optional"`
	AssociatedToken string `json:",optional"`
	QuoteMint       string `json:",optional"` // 默认 USDC
}

func (c *ProgramsConfig) ToPrograms() (pda.Programs, error) {
	cypher, err := types.TryPubkeyFromBase58(c.Cypher)
	if err != nil {
		return pda.Programs{}, fmt.Errorf("Programs.Cypher: %w", err)
	}
	p := pda.Programs{Cypher: cypher}

	fields := []struct {
		name     string
		val      string
		fallback common.PublicKey
		dst      *common.PublicKey
	}{
		{"Dex", c.Dex, consts.SerumDexProgram, &p.Dex},
		{"Token", c.Token, consts.TokenProgram, &p.Token},
		{"AssociatedToken", c.AssociatedToken, consts.AssociatedTokenProgram, &p.AssociatedToken},
		{"QuoteMint", c.QuoteMint, consts.USDCMint, &p.QuoteMint},
	}
	for _, f := range fields {
		key, err := types.OptionalPubkey(f.val)
		if err != nil {
			return pda.Programs{}, fmt.Errorf("Programs.%s: %w", f.name, err)
		}
		if key == (common.PublicKey{}) {
			key = f.fallback
		}
		*f.dst = key
	}
	return p, nil
}

// CypherConfig 保证金账户所在的 group 与其 vault
type CypherConfig struct {
	Group string
	Vault string
}

type RedisConfig struct {
	Addr          string `json:",optional"` // 为空时使用进程内 journal
	Password      string `json:",optional"`
	DB            int    `json:",optional"`
	PendingTTLSec int    `json:",default=86400"` // 不确定交易记录保留时间
}

// KafkaConfig 结果事件输出，Brokers 为空时不发送
type KafkaConfig struct {
	Brokers       string `json:",optional"` // 多个用英文逗号分隔
	Topic         string `json:",default=mm-client-outcome"`
	Partitions    int    `json:",default=4"`
	BatchSize     int    `json:",optional"`     // 字节
	LingerMs      int    `json:",default=5"`    // 毫秒
	SendTimeoutMs int    `json:",default=3000"` // 单条消息等待 ack 的超时

	// 认证，留空为 PLAINTEXT
	SecurityProtocol string `json:",optional,options=PLAINTEXT|SSL|SASL_PLAINTEXT|SASL_SSL"`
	SaslMechanism    string `json:",optional"` // PLAIN / SCRAM-SHA-256 / SCRAM-SHA-512
	SaslUsername     string `json:",optional"`
	SaslPassword     string `json:",optional"`
}

func (c *KafkaConfig) Enabled() bool { return c.Brokers != "" }

// ClientConfig 主配置
type ClientConfig struct {
	Log      LogConfig   `json:",optional"`
	Rpc      RpcConfig   `json:",optional"`
	Retry    RetryConfig `json:",optional"`
	Programs ProgramsConfig
	Cypher   CypherConfig
	Redis    RedisConfig `json:",optional"`
	Kafka    KafkaConfig `json:",optional"`
}

// Validate 检查地址与确认级别，地址错误属于配置错误，启动时暴露
func (c *ClientConfig) Validate() error {
	if _, err := c.Programs.ToPrograms(); err != nil {
		return err
	}
	if _, err := types.TryPubkeyFromBase58(c.Cypher.Group); err != nil {
		return fmt.Errorf("Cypher.Group: %w", err)
	}
	if _, err := types.TryPubkeyFromBase58(c.Cypher.Vault); err != nil {
		return fmt.Errorf("Cypher.Vault: %w", err)
	}
	if !rpcclient.Commitment(c.Rpc.Commitment).Valid() {
		return fmt.Errorf("Rpc.Commitment: unknown level %q", c.Rpc.Commitment)
	}
	if c.Kafka.Enabled() && c.Kafka.Topic == "" {
		return errors.New("Kafka.Topic: required when Brokers is set")
	}
	return nil
}

// Load 读取并校验配置文件
func Load(path string) (ClientConfig, error) {
	var c ClientConfig
	if err := conf.Load(path, &c); err != nil {
		return ClientConfig{}, err
	}
	if err := c.Validate(); err != nil {
		return ClientConfig{}, err
	}
	return c, nil
}
