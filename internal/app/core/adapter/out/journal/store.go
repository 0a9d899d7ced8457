package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-mem-accounting/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-mem-accounting/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-accounting/internal/app/core/usecase"
	"github.com/JoeShih716/go-mem-accounting/pkg/wal"
)

// record WAL 中的一筆帳戶狀態，同一帳戶以最後一筆為準
type record struct {
	AccountID int64           `json:"account_id"`
	Name      string          `json:"name"`
	Funds     decimal.Decimal `json:"funds"`
	WrittenAt int64           `json:"written_at"`
}

// Store 以 WAL 持久化的帳戶儲存層
// 讀取全部走記憶體，Create 與 Persist 時把帳戶狀態追加到 WAL
type Store struct {
	*memory.Store
	wal    *wal.WAL
	logger *zap.Logger
}

// NewStore 建立 Store，並在啟動前從 WAL 恢復帳戶
//
// 參數:
//
//	w: Write-Ahead Log 實例
//	logger: 可為 nil
//
// 回傳:
//
//	*Store: Store 實例
//	error: 恢復過程錯誤
func NewStore(w *wal.WAL, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		Store:  memory.NewStore(),
		wal:    w,
		logger: logger.Named("journal_store"),
	}
	if err := s.recoverFromWAL(); err != nil {
		return nil, err
	}
	return s, nil
}

// recoverFromWAL 重放 WAL，只有 NewStore 呼叫，無需 Lock (單執行緒)
func (s *Store) recoverFromWAL() error {
	latest := make(map[int64]record)
	records := 0
	err := s.wal.ReadAll(func(raw json.RawMessage) error {
		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("decode account record: %w", err)
		}
		latest[rec.AccountID] = rec
		records++
		return nil
	})
	if err != nil {
		return fmt.Errorf("recover accounts from wal: %w", err)
	}

	for _, rec := range latest {
		s.Restore(rec.AccountID, rec.Name, rec.Funds)
	}
	s.logger.Info("recovered accounts from wal", zap.Int("records", records), zap.Int("accounts", len(latest)))
	return nil
}

// Create 建立帳戶並寫入 WAL
// WAL 寫入失敗時帳戶仍留在記憶體中，錯誤交由上層處理
func (s *Store) Create(ctx context.Context, name string, funds decimal.Decimal) (*domain.Account, error) {
	account, err := s.Store.Create(ctx, name, funds)
	if err != nil {
		return nil, err
	}
	account.LockRead()
	rec := newRecord(account)
	account.UnlockRead()

	if err := s.wal.Write(rec); err != nil {
		return account, fmt.Errorf("write wal: %w", err)
	}
	return account, nil
}

// Persist 把帳戶目前狀態追加到 WAL，呼叫端需持有帳戶的寫鎖
func (s *Store) Persist(ctx context.Context, account *domain.Account) error {
	if err := s.wal.Write(newRecord(account)); err != nil {
		return fmt.Errorf("write wal: %w", err)
	}
	return nil
}

func newRecord(account *domain.Account) record {
	return record{
		AccountID: account.ID(),
		Name:      account.Name(),
		Funds:     account.Funds(),
		WrittenAt: time.Now().UnixNano(),
	}
}

var _ usecase.AccountRepository = (*Store)(nil)
