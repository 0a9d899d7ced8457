package memory

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-mem-accounting/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-accounting/internal/app/core/usecase"
)

// Store 是記憶體版本的帳戶儲存層
//
// 結構:
//
//	accounts: 帳戶資料 Map，只新增不刪除
//	mu: 只保護 Map 本身，帳戶狀態由帳戶自己的鎖保護
//	sequence: 帳戶 ID 序號 (atomic 遞增)
type Store struct {
	accounts map[int64]*domain.Account
	mu       sync.RWMutex
	sequence atomic.Int64
}

// NewStore 建立空的記憶體儲存層
func NewStore() *Store {
	return &Store{
		accounts: make(map[int64]*domain.Account),
	}
}

// Create 配發新 ID 並建立帳戶，記憶體實作永遠成功
func (s *Store) Create(ctx context.Context, name string, funds decimal.Decimal) (*domain.Account, error) {
	id := s.sequence.Add(1)
	account := domain.NewAccount(id, name, funds)

	s.mu.Lock()
	s.accounts[id] = account
	s.mu.Unlock()
	return account, nil
}

// Find 依 ID 查詢帳戶，不會鎖定帳戶本身
func (s *Store) Find(ctx context.Context, id int64) (*domain.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[id]
	return account, ok
}

// FindAll 回傳目前所有帳戶的複本切片 (順序不固定)
func (s *Store) FindAll(ctx context.Context) []*domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts := make([]*domain.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		accounts = append(accounts, account)
	}
	return accounts
}

// Persist 記憶體實作不需要寫出，變更已透過共用的實體立即可見
func (s *Store) Persist(ctx context.Context, account *domain.Account) error {
	return nil
}

// Restore 以既有 ID 放回帳戶，並把序號推進到至少 id
// 只在啟動復原時 (單執行緒) 使用，同一個 ID 只能 Restore 一次
//
// 參數:
//
//	id: 帳戶 ID
//	name: 帳戶名稱
//	funds: 餘額
//
// 回傳:
//
//	*domain.Account: 放回的帳戶實體
func (s *Store) Restore(id int64, name string, funds decimal.Decimal) *domain.Account {
	account := domain.NewAccount(id, name, funds)

	s.mu.Lock()
	s.accounts[id] = account
	s.mu.Unlock()

	for {
		current := s.sequence.Load()
		if current >= id || s.sequence.CompareAndSwap(current, id) {
			break
		}
	}
	return account
}

// Len 目前帳戶數量
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}

var _ usecase.AccountRepository = (*Store)(nil)
