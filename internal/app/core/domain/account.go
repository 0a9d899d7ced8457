package domain

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Account 帳戶實體
//
// 結構:
//
//	id, name: 建立後不可變
//	funds: 僅能在持有寫鎖時修改
//	mu: 每個帳戶獨立的讀寫鎖
type Account struct {
	mu    sync.RWMutex
	funds decimal.Decimal
	name  string
	id    int64
}

// NewAccount 建立帳戶，初始金額四捨五入到 2 位小數
func NewAccount(id int64, name string, funds decimal.Decimal) *Account {
	return &Account{
		id:    id,
		name:  name,
		funds: RoundFunds(funds),
	}
}

func (a *Account) ID() int64 {
	return a.id
}

func (a *Account) Name() string {
	return a.name
}

// Funds 目前餘額，呼叫端至少需持有讀鎖
func (a *Account) Funds() decimal.Decimal {
	return a.funds
}

// Snapshot 產生唯讀投影，呼叫端至少需持有讀鎖
func (a *Account) Snapshot() AccountView {
	return AccountView{
		ID:    a.id,
		Name:  a.name,
		Funds: FormatFunds(a.funds),
	}
}

func (a *Account) LockRead() {
	a.mu.RLock()
}

func (a *Account) UnlockRead() {
	a.mu.RUnlock()
}

func (a *Account) LockWrite() {
	a.mu.Lock()
}

func (a *Account) UnlockWrite() {
	a.mu.Unlock()
}

// Deposit 存入，呼叫端需持有寫鎖
func (a *Account) Deposit(amount decimal.Decimal) {
	a.funds = a.funds.Add(amount)
}

// Withdraw 扣款，呼叫端需持有寫鎖
// 餘額不足時回傳 ErrInsufficientFunds 且不修改餘額
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if a.funds.LessThan(amount) {
		return ErrInsufficientFunds
	}
	a.funds = a.funds.Sub(amount)
	return nil
}
