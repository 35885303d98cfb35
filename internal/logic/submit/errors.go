package submit

import (
	"errors"
	"fmt"
)

var (
	// ErrBlockhashExpired 交易的 blockhash 已过期且未上链，换新 blockhash 重建后重试是安全的
	ErrBlockhashExpired = errors.New("submit: blockhash expired before the transaction landed")
	// ErrConfirmTimeout 等待确认超时，交易是否上链未知
	ErrConfirmTimeout = errors.New("submit: gave up waiting for confirmation")
	// ErrAbandoned 调用方取消了等待，交易是否上链未知
	ErrAbandoned = errors.New("submit: confirmation wait abandoned by caller")
)

// Kind 提交失败的分类，不同分类的补救方式不同
type Kind int

const (
	// KindTransport 网络层失败或交易确定未上链：可换新 blockhash 重试
	KindTransport Kind = iota + 1
	// KindRejected 程序执行返回错误：需修改参数，不可直接重试
	KindRejected
	// KindIndeterminate 放弃等待时未观察到终态：必须先查询链上状态再决定是否重发
	KindIndeterminate
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindRejected:
		return "rejected"
	case KindIndeterminate:
		return "indeterminate"
	default:
		return "unknown"
	}
}

// SubmitError 带分类的提交错误
type SubmitError struct {
	Kind      Kind
	Signature string
	Err       error
}

func (e *SubmitError) Error() string {
	if e.Signature == "" {
		return fmt.Sprintf("submit %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("submit %s (sig=%s): %v", e.Kind, e.Signature, e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }

// KindOf 返回 err 链上的提交错误分类，非提交错误返回 0
func KindOf(err error) Kind {
	var se *SubmitError
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

func IsTransport(err error) bool     { return KindOf(err) == KindTransport }
func IsRejected(err error) bool      { return KindOf(err) == KindRejected }
func IsIndeterminate(err error) bool { return KindOf(err) == KindIndeterminate }
