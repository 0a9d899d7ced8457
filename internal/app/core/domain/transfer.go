package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transfer 單筆轉帳請求
type Transfer struct {
	// SourceID, TargetID: 帳戶 ID
	SourceID int64
	TargetID int64
	// CreatedAt: 建立時間 (UnixNano)
	CreatedAt int64
	// Amount: 已四捨五入到 2 位小數的金額
	Amount decimal.Decimal
	// ID: 追蹤號，用於 log 串接
	ID uuid.UUID
}

// NewTransfer 建立轉帳請求並配發追蹤號
func NewTransfer(sourceID, targetID int64, amount decimal.Decimal) *Transfer {
	return &Transfer{
		ID:        uuid.New(),
		SourceID:  sourceID,
		TargetID:  targetID,
		Amount:    RoundFunds(amount),
		CreatedAt: time.Now().UnixNano(),
	}
}

// Validate 檢查轉帳請求本身 (不含帳戶是否存在)
func (t *Transfer) Validate() error {
	if t.SourceID == t.TargetID {
		return ErrSameAccount
	}
	if !t.Amount.IsPositive() {
		return ErrAmountMustBePositive
	}
	return nil
}

// GetLockIDs 回傳需要鎖定的帳號 ID，固定由大到小排序以避免死鎖
// 不論 A->B 或 B->A，兩邊都會以相同順序取鎖
func (t *Transfer) GetLockIDs() [2]int64 {
	if t.SourceID > t.TargetID {
		return [2]int64{t.SourceID, t.TargetID}
	}
	return [2]int64{t.TargetID, t.SourceID}
}
