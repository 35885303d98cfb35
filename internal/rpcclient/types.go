package rpcclient

// Commitment 确认级别，由弱到强：processed < confirmed < finalized
type Commitment string

const (
	CommitmentProcessed Commitment = "processed"
	CommitmentConfirmed Commitment = "confirmed"
	CommitmentFinalized Commitment = "finalized"
)

func (c Commitment) rank() int {
	switch c {
	case CommitmentProcessed:
		return 1
	case CommitmentConfirmed:
		return 2
	case CommitmentFinalized:
		return 3
	default:
		return 0
	}
}

// Reached 当前确认级别是否已达到 target
func (c Commitment) Reached(target Commitment) bool {
	return c.rank() > 0 && c.rank() >= target.rank()
}

// Valid 是否为已知的确认级别
func (c Commitment) Valid() bool { return c.rank() > 0 }

// LatestBlockhash getLatestBlockhash 结果
type LatestBlockhash struct {
	Blockhash            string
	LastValidBlockHeight uint64
}

// SignatureStatus getSignatureStatuses 中单笔交易的状态
type SignatureStatus struct {
	Slot               uint64
	ConfirmationStatus Commitment
	Err                interface{} // 非空表示程序执行失败
}

// TokenAmount token 账户余额
type TokenAmount struct {
	Amount         uint64
	Decimals       uint8
	UIAmountString string
}
