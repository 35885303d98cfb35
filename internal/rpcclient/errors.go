package rpcclient

import (
	"errors"
	"fmt"
	"strings"
)

// JSON-RPC 错误码（Solana 节点）
const (
	CodeBlockCleanedUp                  = -32001
	CodeSendTransactionPreflightFailure = -32002
	CodeNodeUnhealthy                   = -32005
	CodeInvalidParams                   = -32602
)

// RPCError 节点返回的 JSON-RPC 错误
type RPCError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *RPCError) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("rpc error %d: %s (data=%v)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// SimulationError 若 err 为预检（simulate）失败，返回程序层面的错误原因
func SimulationError(err error) (interface{}, bool) {
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) || rpcErr.Code != CodeSendTransactionPreflightFailure {
		return nil, false
	}
	data, ok := rpcErr.Data.(map[string]interface{})
	if !ok {
		return rpcErr.Message, true
	}
	if reason, ok := data["err"]; ok && reason != nil {
		return reason, true
	}
	return rpcErr.Message, true
}

// IsBlockhashNotFound 预检失败原因为 blockhash 过期/未知，此时换新 blockhash 重试是安全的
func IsBlockhashNotFound(err error) bool {
	reason, ok := SimulationError(err)
	if !ok {
		return false
	}
	s, isStr := reason.(string)
	if isStr {
		return s == "BlockhashNotFound" || strings.Contains(s, "Blockhash not found")
	}
	return false
}

// IsAccountNotFound 查询的账户不存在
func IsAccountNotFound(err error) bool {
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		return false
	}
	return rpcErr.Code == CodeInvalidParams && strings.Contains(strings.ToLower(rpcErr.Message), "could not find account")
}
