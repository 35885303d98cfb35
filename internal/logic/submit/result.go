package submit

// Status 提交的终态
type Status int

const (
	StatusUnknown Status = iota
	StatusCommitted
	StatusRejected
	StatusTransportFailed
	StatusIndeterminate
)

func (s Status) String() string {
	switch s {
	case StatusCommitted:
		return "committed"
	case StatusRejected:
		return "rejected"
	case StatusTransportFailed:
		return "transport_failed"
	case StatusIndeterminate:
		return "indeterminate"
	default:
		return "unknown"
	}
}

// Result 一次提交的结果。Status 与返回的 error 分类一一对应：
// Committed -> nil，Rejected -> KindRejected，TransportFailed -> KindTransport，Indeterminate -> KindIndeterminate
type Result struct {
	Signature            string
	Status               Status
	Slot                 uint64 // 仅 Committed 有效
	Reason               string // 失败或不确定的原因
	LastValidBlockHeight uint64 // 用于后续判定不确定交易是否已过期
}

func statusOf(kind Kind) Status {
	switch kind {
	case KindTransport:
		return StatusTransportFailed
	case KindRejected:
		return StatusRejected
	case KindIndeterminate:
		return StatusIndeterminate
	default:
		return StatusUnknown
	}
}
