// Package rpcclient 包装 Solana JSON-RPC 客户端，只暴露交易提交与查询流程用到的调用，
// 并把节点错误统一转换为 *RPCError 便于分类。
package rpcclient

import (
	"context"
	"errors"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"
)

// Option 发送交易时的节点参数
type Option struct {
	SkipPreflight       bool
	PreflightCommitment Commitment
	MaxRetries          uint64 // 节点侧重发次数，0 表示使用节点默认值
}

// Client 并发安全，多个 in-flight 请求可共享同一实例
type Client struct {
	cli *client.Client
	opt Option
}

func NewClient(endpoint string, opt Option) *Client {
	if !opt.PreflightCommitment.Valid() {
		opt.PreflightCommitment = CommitmentConfirmed
	}
	return &Client{
		cli: client.NewClient(endpoint),
		opt: opt,
	}
}

func (c *Client) GetLatestBlockhash(ctx context.Context, commitment Commitment) (LatestBlockhash, error) {
	res, err := c.cli.GetLatestBlockhashWithConfig(ctx, client.GetLatestBlockhashConfig{
		Commitment: rpc.Commitment(commitment),
	})
	if err != nil {
		return LatestBlockhash{}, convertError(err)
	}
	return LatestBlockhash{
		Blockhash:            res.Blockhash,
		LastValidBlockHeight: res.LatestValidBlockHeight,
	}, nil
}

func (c *Client) SendTransaction(ctx context.Context, tx types.Transaction) (string, error) {
	sig, err := c.cli.SendTransactionWithConfig(ctx, tx, client.SendTransactionConfig{
		SkipPreflight:       c.opt.SkipPreflight,
		PreflightCommitment: rpc.Commitment(c.opt.PreflightCommitment),
		MaxRetries:          c.opt.MaxRetries,
	})
	if err != nil {
		return "", convertError(err)
	}
	return sig, nil
}

// GetSignatureStatus 节点未知该签名时返回 (nil, nil)
func (c *Client) GetSignatureStatus(ctx context.Context, signature string) (*SignatureStatus, error) {
	status, err := c.cli.GetSignatureStatusWithConfig(ctx, signature, client.GetSignatureStatusesConfig{
		SearchTransactionHistory: true,
	})
	if err != nil {
		return nil, convertError(err)
	}
	if status == nil {
		return nil, nil
	}

	out := &SignatureStatus{
		Slot: status.Slot,
		Err:  status.Err,
	}
	if status.ConfirmationStatus != nil {
		out.ConfirmationStatus = Commitment(*status.ConfirmationStatus)
	}
	return out, nil
}

func (c *Client) GetBlockHeight(ctx context.Context, commitment Commitment) (uint64, error) {
	// client.Client 没有带 commitment 的 getBlockHeight，直接走底层 RpcClient
	res, err := c.cli.RpcClient.GetBlockHeightWithConfig(ctx, rpc.GetBlockHeightConfig{
		Commitment: rpc.Commitment(commitment),
	})
	if err == nil && res.Error != nil {
		err = res.Error
	}
	if err != nil {
		return 0, convertError(err)
	}
	return res.Result, nil
}

func (c *Client) GetTokenAccountBalance(ctx context.Context, account string, commitment Commitment) (TokenAmount, error) {
	res, err := c.cli.GetTokenAccountBalanceWithConfig(ctx, account, client.GetTokenAccountBalanceConfig{
		Commitment: rpc.Commitment(commitment),
	})
	if err != nil {
		return TokenAmount{}, convertError(err)
	}
	return TokenAmount{
		Amount:         res.Amount,
		Decimals:       res.Decimals,
		UIAmountString: res.UIAmountString,
	}, nil
}

// convertError 把 SDK 的 JSON-RPC 错误转换为 *RPCError，其余错误（网络、解码）原样返回
func convertError(err error) error {
	var jsonErr *rpc.JsonRpcError
	if errors.As(err, &jsonErr) {
		return &RPCError{
			Code:    jsonErr.Code,
			Message: jsonErr.Message,
			Data:    jsonErr.Data,
		}
	}
	return err
}
