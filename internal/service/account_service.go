// Package service 面向调用方的账户流程：注册用户、存入保证金、初始化订单账户、查询计价币余额。
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mm-client-sol/internal/logic/ixfactory"
	"mm-client-sol/internal/logic/journal"
	"mm-client-sol/internal/logic/query"
	"mm-client-sol/internal/logic/submit"
	"mm-client-sol/internal/logic/txbuilder"
	"mm-client-sol/internal/mq"
	"mm-client-sol/internal/pkg/logger"
	"mm-client-sol/internal/pkg/retry"
	"mm-client-sol/internal/rpcclient"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
)

const recordTimeout = 5 * time.Second

// BlockhashSource 每次提交前获取新的 blockhash
type BlockhashSource interface {
	GetLatestBlockhash(ctx context.Context, commitment rpcclient.Commitment) (rpcclient.LatestBlockhash, error)
}

type AccountService struct {
	factory    *ixfactory.Factory
	blockhash  BlockhashSource
	submitter  *submit.Client
	query      *query.Helper
	journal    *journal.Journal
	publisher  mq.OutcomePublisher
	policy     retry.Policy
	group      common.PublicKey
	vault      common.PublicKey
	commitment rpcclient.Commitment
}

type AccountServiceParam struct {
	Factory    *ixfactory.Factory
	Blockhash  BlockhashSource
	Submitter  *submit.Client
	Query      *query.Helper
	Journal    *journal.Journal
	Publisher  mq.OutcomePublisher // 可为 nil
	Policy     retry.Policy
	Group      common.PublicKey
	Vault      common.PublicKey
	Commitment rpcclient.Commitment // 提交等待的确认级别
}

func NewAccountService(p AccountServiceParam) *AccountService {
	if p.Publisher == nil {
		p.Publisher = mq.NopPublisher{}
	}
	if !p.Commitment.Valid() {
		p.Commitment = rpcclient.CommitmentConfirmed
	}
	return &AccountService{
		factory:    p.Factory,
		blockhash:  p.Blockhash,
		submitter:  p.Submitter,
		query:      p.Query,
		journal:    p.Journal,
		publisher:  p.Publisher,
		policy:     p.Policy,
		group:      p.Group,
		vault:      p.Vault,
		commitment: p.Commitment,
	}
}

// InitUser 在配置的 group 下为 owner 创建用户账户，返回派生出的用户地址
func (s *AccountService) InitUser(ctx context.Context, owner txbuilder.Signer) (submit.Result, common.PublicKey, error) {
	ix, user, err := s.factory.InitUser(s.group, owner.PublicKey())
	if err != nil {
		return submit.Result{}, common.PublicKey{}, err
	}
	res, err := s.execute(ctx, ixfactory.ActionInitUser, owner, []types.Instruction{ix})
	return res, user, err
}

// Deposit 从 owner 的计价币 token 账户存入 amount（最小单位）到金库
func (s *AccountService) Deposit(ctx context.Context, owner txbuilder.Signer, amount uint64) (submit.Result, error) {
	if amount == 0 {
		return submit.Result{}, errors.New("deposit amount must be positive")
	}
	wallet := owner.PublicKey()
	deriver := s.factory.Deriver()

	user, _, err := deriver.UserAddress(s.group, wallet)
	if err != nil {
		return submit.Result{}, fmt.Errorf("derive user address: %w", err)
	}
	source, err := deriver.QuoteTokenAddress(wallet)
	if err != nil {
		return submit.Result{}, fmt.Errorf("derive quote token address: %w", err)
	}

	ix, err := s.factory.DepositCollateral(ixfactory.DepositAccounts{
		Group:  s.group,
		User:   user,
		Vault:  s.vault,
		Source: source,
		Owner:  wallet,
	}, amount)
	if err != nil {
		return submit.Result{}, err
	}
	return s.execute(ctx, ixfactory.ActionDepositCollateral, owner, []types.Instruction{ix})
}

// InitOpenOrders 为 market 创建订单跟踪账户。openOrders 需要签名时通过 cosigners 传入
func (s *AccountService) InitOpenOrders(ctx context.Context, owner txbuilder.Signer, market, openOrders common.PublicKey, cosigners ...txbuilder.Signer) (submit.Result, error) {
	wallet := owner.PublicKey()
	user, _, err := s.factory.Deriver().UserAddress(s.group, wallet)
	if err != nil {
		return submit.Result{}, fmt.Errorf("derive user address: %w", err)
	}

	ix, err := s.factory.InitOpenOrders(s.group, user, wallet, market, openOrders)
	if err != nil {
		return submit.Result{}, err
	}
	return s.execute(ctx, ixfactory.ActionInitOpenOrders, owner, []types.Instruction{ix}, cosigners...)
}

// QuoteBalance 查询 owner 计价币 token 账户在 confirmed 级别的余额，不做缓存
func (s *AccountService) QuoteBalance(ctx context.Context, owner common.PublicKey) (rpcclient.TokenAmount, error) {
	account, err := s.factory.Deriver().QuoteTokenAddress(owner)
	if err != nil {
		return rpcclient.TokenAmount{}, fmt.Errorf("derive quote token address: %w", err)
	}
	return s.query.TokenBalance(ctx, account, rpcclient.CommitmentConfirmed)
}

// execute 先处理该钱包遗留的不确定交易，然后每次尝试都用新 blockhash 重建并签名。
// 只有传输类失败会重试，程序拒绝与不确定结果立即返回。
func (s *AccountService) execute(ctx context.Context, action string, owner txbuilder.Signer, ixs []types.Instruction, cosigners ...txbuilder.Signer) (submit.Result, error) {
	wallet := owner.PublicKey()
	if err := s.journal.Reconcile(ctx, wallet.ToBase58()); err != nil {
		return submit.Result{}, err
	}

	var (
		res       submit.Result
		submitted bool
		attempt   int
	)
	err := retry.Do(ctx, s.policy, submit.IsTransport, func() error {
		attempt++
		res, submitted = submit.Result{}, false

		bh, err := s.blockhash.GetLatestBlockhash(ctx, s.commitment)
		if err != nil {
			err = fmt.Errorf("get latest blockhash: %w", err)
			res = submit.Result{Status: submit.StatusTransportFailed, Reason: err.Error()}
			return &submit.SubmitError{Kind: submit.KindTransport, Err: err}
		}

		b := txbuilder.New()
		for _, ix := range ixs {
			b.Add(ix)
		}
		tx, err := b.Build(txbuilder.Blockhash{Hash: bh.Blockhash, LastValidBlockHeight: bh.LastValidBlockHeight}, owner, cosigners...)
		if err != nil {
			return err
		}

		res, err = s.submitter.Submit(ctx, tx, s.commitment)
		submitted = true
		return err
	}, func(err error, wait time.Duration) {
		logger.Warnf("[Account] %s 第 %d 次提交失败，%v 后换新 blockhash 重试: %v", action, attempt, wait, err)
	})

	if !submitted {
		return res, err
	}

	s.publish(ctx, wallet, action, res)
	if rerr := s.record(ctx, wallet, action, res); rerr != nil {
		logger.Errorf("[Account] 记录不确定交易失败: sig=%s err=%v", res.Signature, rerr)
	}
	if err != nil {
		logger.Warnf("[Account] %s 提交失败: status=%s sig=%s err=%v", action, res.Status, res.Signature, err)
		return res, err
	}
	logger.Infof("[Account] %s 已确认: sig=%s slot=%d", action, res.Signature, res.Slot)
	return res, nil
}

// record 在调用方取消后仍需写入，否则下次提交会在不知道旧交易结果的情况下发出
func (s *AccountService) record(ctx context.Context, wallet common.PublicKey, action string, res submit.Result) error {
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	return s.journal.Record(recordCtx, wallet.ToBase58(), action, res)
}

func (s *AccountService) publish(ctx context.Context, wallet common.PublicKey, action string, res submit.Result) {
	s.publisher.Publish(context.WithoutCancel(ctx), wallet, mq.OutcomeEvent{
		Wallet:    wallet.ToBase58(),
		Action:    action,
		Signature: res.Signature,
		Status:    res.Status.String(),
		Slot:      res.Slot,
		Reason:    res.Reason,
	})
}
