package journal

import "time"

// Entry 一笔结果不确定、尚未证明已失效的交易
type Entry struct {
	Wallet               string    `json:"wallet"`
	Signature            string    `json:"signature"`
	Action               string    `json:"action"`
	LastValidBlockHeight uint64    `json:"lastValidBlockHeight"`
	RecordedAt           time.Time `json:"recordedAt"`
}

// Resolution Reconcile 对单条记录的判定
type Resolution int

const (
	ResolutionPending   Resolution = 0 // 仍可能上链
	ResolutionCommitted Resolution = 1 // ✅ 已确认
	ResolutionFailed    Resolution = 2 // ❌ 程序执行失败
	ResolutionExpired   Resolution = 3 // 🕒 blockhash 过期且未上链
)

func (r Resolution) String() string {
	switch r {
	case ResolutionCommitted:
		return "committed"
	case ResolutionFailed:
		return "failed"
	case ResolutionExpired:
		return "expired"
	default:
		return "pending"
	}
}
