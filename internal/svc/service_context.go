package svc

import (
	"time"

	"mm-client-sol/internal/config"
	"mm-client-sol/internal/logic/cypher"
	"mm-client-sol/internal/logic/ixfactory"
	"mm-client-sol/internal/logic/journal"
	"mm-client-sol/internal/logic/pda"
	"mm-client-sol/internal/logic/query"
	"mm-client-sol/internal/logic/submit"
	"mm-client-sol/internal/mq"
	"mm-client-sol/internal/pkg/logger"
	"mm-client-sol/internal/rpcclient"
	"mm-client-sol/internal/service"
	"mm-client-sol/internal/types"

	"github.com/redis/go-redis/v9"
)

// ServiceContext 包含客户端运行所需的全部资源
type ServiceContext struct {
	Config    config.ClientConfig
	Rpc       *rpcclient.Client
	Deriver   pda.Deriver
	Factory   *ixfactory.Factory
	Submitter *submit.Client
	Query     *query.Helper
	Journal   *journal.Journal
	Publisher mq.OutcomePublisher
	Accounts  *service.AccountService

	redis *redis.Client
}

// NewServiceContext 按配置初始化各组件，c 需已通过 Validate
func NewServiceContext(c config.ClientConfig) (*ServiceContext, error) {
	// 1. 地址派生与指令构造
	programs, err := c.Programs.ToPrograms()
	if err != nil {
		return nil, err
	}
	deriver := pda.NewDeriver(programs)
	program := cypher.NewProgram(programs.Cypher, programs.Dex, programs.Token)
	factory := ixfactory.NewFactory(program, deriver, ixfactory.LogHook{})

	// 2. 节点连接，提交与查询共用
	rpc := rpcclient.NewClient(c.Rpc.Endpoint, c.Rpc.ToOption())
	commitment := rpcclient.Commitment(c.Rpc.Commitment)
	policy := c.Retry.ToPolicy()

	submitter := submit.NewClient(rpc, submit.Config{
		Commitment:     commitment,
		PollInterval:   time.Duration(c.Rpc.PollIntervalMs) * time.Millisecond,
		ConfirmTimeout: time.Duration(c.Rpc.ConfirmTimeoutSec) * time.Second,
	})
	helper := query.NewHelper(rpc, policy, time.Duration(c.Rpc.RequestTimeoutSec)*time.Second)

	ctx := &ServiceContext{
		Config:    c,
		Rpc:       rpc,
		Deriver:   deriver,
		Factory:   factory,
		Submitter: submitter,
		Query:     helper,
	}

	// 3. 不确定交易记录：配置了 Redis 时多进程共享，否则进程内
	var store journal.Store
	if c.Redis.Addr != "" {
		ctx.redis = redis.NewClient(&redis.Options{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		})
		store = journal.NewRedisStore(ctx.redis, time.Duration(c.Redis.PendingTTLSec)*time.Second)
	} else {
		logger.Warnf("[svc] 未配置 Redis，不确定交易仅记录在进程内")
		store = journal.NewMemoryStore()
	}
	ctx.Journal = journal.New(store, helper)

	// 4. 结果事件
	ctx.Publisher = mq.NopPublisher{}
	if c.Kafka.Enabled() {
		producer, err := mq.NewKafkaProducer(c.Kafka)
		if err != nil {
			logger.Errorf("Kafka producer 初始化失败: %v", err)
			ctx.Close()
			return nil, err
		}
		ctx.Publisher = mq.NewKafkaPublisher(producer, c.Kafka.Topic, c.Kafka.Partitions,
			time.Duration(c.Kafka.SendTimeoutMs)*time.Millisecond)
	}

	// 5. 账户流程
	group, err := types.TryPubkeyFromBase58(c.Cypher.Group)
	if err != nil {
		ctx.Close()
		return nil, err
	}
	vault, err := types.TryPubkeyFromBase58(c.Cypher.Vault)
	if err != nil {
		ctx.Close()
		return nil, err
	}
	ctx.Accounts = service.NewAccountService(service.AccountServiceParam{
		Factory:    factory,
		Blockhash:  rpc,
		Submitter:  submitter,
		Query:      helper,
		Journal:    ctx.Journal,
		Publisher:  ctx.Publisher,
		Policy:     policy,
		Group:      group,
		Vault:      vault,
		Commitment: commitment,
	})

	logger.Infof("[svc] 服务上下文初始化完成: endpoint=%s cypher=%s group=%s",
		c.Rpc.Endpoint, programs.Cypher.ToBase58(), c.Cypher.Group)
	return ctx, nil
}

// Close 关闭服务上下文中的资源
func (ctx *ServiceContext) Close() {
	if ctx.Publisher != nil {
		ctx.Publisher.Close()
	}
	if ctx.redis != nil {
		_ = ctx.redis.Close()
	}
}
