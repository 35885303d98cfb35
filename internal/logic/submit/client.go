// Package submit 发送已签名交易并轮询确认，把结果归类为：已确认、程序拒绝、传输失败、不确定。
package submit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mm-client-sol/internal/logic/txbuilder"
	"mm-client-sol/internal/pkg/logger"
	"mm-client-sol/internal/rpcclient"

	sdktypes "github.com/blocto/solana-go-sdk/types"
)

// RPC 提交与确认所需的节点调用
type RPC interface {
	SendTransaction(ctx context.Context, tx sdktypes.Transaction) (string, error)
	GetSignatureStatus(ctx context.Context, signature string) (*rpcclient.SignatureStatus, error)
	GetBlockHeight(ctx context.Context, commitment rpcclient.Commitment) (uint64, error)
}

const (
	defaultPollInterval   = 500 * time.Millisecond
	defaultConfirmTimeout = 60 * time.Second
)

type Config struct {
	Commitment     rpcclient.Commitment // 默认确认级别
	PollInterval   time.Duration
	ConfirmTimeout time.Duration // 等待确认的最长时间，超时视为不确定
}

// Client 无跨调用状态，可被多个 goroutine 同时使用
type Client struct {
	rpc RPC
	cfg Config
}

func NewClient(rpc RPC, cfg Config) *Client {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = defaultConfirmTimeout
	}
	if !cfg.Commitment.Valid() {
		cfg.Commitment = rpcclient.CommitmentConfirmed
	}
	return &Client{rpc: rpc, cfg: cfg}
}

// Submit 发送 tx 并阻塞直到达到 level 或观察到终态。level 为空时使用默认确认级别。
// 返回的 Result 总是填充；error 为 nil 表示已确认，否则为 *SubmitError。
func (c *Client) Submit(ctx context.Context, tx *txbuilder.Transaction, level rpcclient.Commitment) (Result, error) {
	if !level.Valid() {
		level = c.cfg.Commitment
	}
	res := Result{
		Signature:            tx.Signature,
		LastValidBlockHeight: tx.Blockhash.LastValidBlockHeight,
	}

	if _, err := c.rpc.SendTransaction(ctx, tx.Raw); err != nil {
		kind := classifySendError(ctx, err)
		logger.Warnf("[Submit] 发送交易失败: sig=%s kind=%s err=%v", tx.Signature, kind, err)
		return c.fail(res, kind, err)
	}
	logger.Infof("[Submit] 交易已发送: sig=%s, 等待 %s 确认", tx.Signature, level)

	return c.waitForConfirmation(ctx, res, level)
}

func classifySendError(ctx context.Context, err error) Kind {
	if rpcclient.IsBlockhashNotFound(err) {
		return KindTransport
	}
	if _, ok := rpcclient.SimulationError(err); ok {
		return KindRejected
	}
	// 请求已发出但未收到响应，节点可能已经接收了交易
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindIndeterminate
	}
	return KindTransport
}

func (c *Client) fail(res Result, kind Kind, err error) (Result, error) {
	if kind == KindTransport && rpcclient.IsBlockhashNotFound(err) {
		err = fmt.Errorf("%w: %v", ErrBlockhashExpired, err)
	}
	res.Status = statusOf(kind)
	res.Reason = err.Error()
	return res, &SubmitError{Kind: kind, Signature: res.Signature, Err: err}
}

func (c *Client) waitForConfirmation(ctx context.Context, res Result, level rpcclient.Commitment) (Result, error) {
	waitCtx, cancel := context.WithTimeout(ctx, c.cfg.ConfirmTimeout)
	defer cancel()

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-waitCtx.Done():
			cause := ErrConfirmTimeout
			if ctx.Err() != nil {
				cause = ErrAbandoned
			}
			logger.Warnf("[Submit] 放弃等待确认，结果不确定: sig=%s cause=%v", res.Signature, cause)
			return c.fail(res, KindIndeterminate, cause)

		case <-ticker.C:
			done, out, err := c.poll(waitCtx, res, level)
			if done {
				return out, err
			}
		}
	}
}

// poll 单次查询，done=true 表示已得到终态
func (c *Client) poll(ctx context.Context, res Result, level rpcclient.Commitment) (bool, Result, error) {
	status, err := c.rpc.GetSignatureStatus(ctx, res.Signature)
	if err != nil {
		// 查询失败不代表交易失败，继续轮询直到超时
		logger.Debugf("[Submit] 查询签名状态失败: sig=%s err=%v", res.Signature, err)
		return false, res, nil
	}
	if status != nil {
		if done, out, err := c.settle(res, status, level); done {
			return true, out, err
		}
		return false, res, nil
	}

	if res.LastValidBlockHeight == 0 {
		return false, res, nil
	}
	height, err := c.rpc.GetBlockHeight(ctx, rpcclient.CommitmentConfirmed)
	if err != nil || height <= res.LastValidBlockHeight {
		return false, res, nil
	}

	// blockhash 已过期，再查一次状态，避免在两次查询之间交易恰好上链
	status, err = c.rpc.GetSignatureStatus(ctx, res.Signature)
	if err != nil {
		return false, res, nil
	}
	if status != nil {
		if done, out, err := c.settle(res, status, level); done {
			return true, out, err
		}
		return false, res, nil
	}

	logger.Warnf("[Submit] blockhash 已过期且交易未上链: sig=%s height=%d lastValid=%d",
		res.Signature, height, res.LastValidBlockHeight)
	out, ferr := c.fail(res, KindTransport, fmt.Errorf("%w: height=%d lastValid=%d", ErrBlockhashExpired, height, res.LastValidBlockHeight))
	return true, out, ferr
}

func (c *Client) settle(res Result, status *rpcclient.SignatureStatus, level rpcclient.Commitment) (bool, Result, error) {
	if status.Err != nil {
		logger.Warnf("[Submit] 交易执行失败: sig=%s slot=%d err=%v", res.Signature, status.Slot, status.Err)
		res.Slot = status.Slot
		out, err := c.fail(res, KindRejected, fmt.Errorf("transaction failed on chain: %v", status.Err))
		return true, out, err
	}
	if !status.ConfirmationStatus.Reached(level) {
		return false, res, nil
	}

	res.Status = StatusCommitted
	res.Slot = status.Slot
	logger.Infof("[Submit] 交易已确认: sig=%s slot=%d status=%s", res.Signature, status.Slot, status.ConfirmationStatus)
	return true, res, nil
}
