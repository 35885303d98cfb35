// Package query 链上账户状态的只读查询，每次都直接请求节点，不做缓存。
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mm-client-sol/internal/pkg/logger"
	"mm-client-sol/internal/pkg/retry"
	"mm-client-sol/internal/rpcclient"

	"github.com/blocto/solana-go-sdk/common"
)

var ErrAccountNotFound = errors.New("query: account not found")

type RPC interface {
	GetTokenAccountBalance(ctx context.Context, account string, commitment rpcclient.Commitment) (rpcclient.TokenAmount, error)
	GetSignatureStatus(ctx context.Context, signature string) (*rpcclient.SignatureStatus, error)
	GetBlockHeight(ctx context.Context, commitment rpcclient.Commitment) (uint64, error)
}

type Helper struct {
	rpc     RPC
	policy  retry.Policy
	timeout time.Duration // 单次请求超时
}

func NewHelper(rpc RPC, policy retry.Policy, timeout time.Duration) *Helper {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Helper{rpc: rpc, policy: policy, timeout: timeout}
}

func retryable(err error) bool {
	return !errors.Is(err, ErrAccountNotFound)
}

// TokenBalance 读取 token 账户余额，账户不存在返回 ErrAccountNotFound
func (h *Helper) TokenBalance(ctx context.Context, account common.PublicKey, commitment rpcclient.Commitment) (rpcclient.TokenAmount, error) {
	var out rpcclient.TokenAmount
	err := retry.Do(ctx, h.policy, retryable, func() error {
		reqCtx, cancel := context.WithTimeout(ctx, h.timeout)
		defer cancel()

		amount, err := h.rpc.GetTokenAccountBalance(reqCtx, account.ToBase58(), commitment)
		if err != nil {
			if rpcclient.IsAccountNotFound(err) {
				return fmt.Errorf("%w: %s", ErrAccountNotFound, account.ToBase58())
			}
			return err
		}
		out = amount
		return nil
	}, func(err error, wait time.Duration) {
		logger.Warnf("[Query] 查询余额失败，%v 后重试: account=%s err=%v", wait, account.ToBase58(), err)
	})
	if err != nil {
		return rpcclient.TokenAmount{}, err
	}
	return out, nil
}

// SignatureStatus 查询交易状态，节点未知时返回 nil
func (h *Helper) SignatureStatus(ctx context.Context, signature string) (*rpcclient.SignatureStatus, error) {
	var out *rpcclient.SignatureStatus
	err := retry.Do(ctx, h.policy, nil, func() error {
		reqCtx, cancel := context.WithTimeout(ctx, h.timeout)
		defer cancel()

		status, err := h.rpc.GetSignatureStatus(reqCtx, signature)
		if err != nil {
			return err
		}
		out = status
		return nil
	}, nil)
	return out, err
}

// BlockHeight 当前区块高度
func (h *Helper) BlockHeight(ctx context.Context, commitment rpcclient.Commitment) (uint64, error) {
	var out uint64
	err := retry.Do(ctx, h.policy, nil, func() error {
		reqCtx, cancel := context.WithTimeout(ctx, h.timeout)
		defer cancel()

		height, err := h.rpc.GetBlockHeight(reqCtx, commitment)
		if err != nil {
			return err
		}
		out = height
		return nil
	}, nil)
	return out, err
}
