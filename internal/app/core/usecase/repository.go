package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-mem-accounting/internal/app/core/domain"
)

// AccountRepository 帳戶儲存層介面
// 儲存層擁有所有帳戶實體，本身不提供交易保證；
// 帳戶狀態的讀寫需透過帳戶自己的鎖
type AccountRepository interface {
	// Create 配發新 ID 並建立帳戶 (驗證由呼叫端負責)
	Create(ctx context.Context, name string, funds decimal.Decimal) (*domain.Account, error)
	// Find 依 ID 查詢帳戶
	Find(ctx context.Context, id int64) (*domain.Account, bool)
	// FindAll 回傳目前所有帳戶 (不保證順序)
	FindAll(ctx context.Context) []*domain.Account
	// Persist 帳戶變更完成後呼叫，記憶體實作為 no-op
	Persist(ctx context.Context, account *domain.Account) error
}
