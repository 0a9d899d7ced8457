package mysql

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JoeShih716/go-mem-accounting/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-mem-accounting/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-accounting/internal/app/core/usecase"
)

// sqlAccount 對應資料庫的 accounts 表
type sqlAccount struct {
	ID        int64           `gorm:"primaryKey;autoIncrement:false"`
	Name      string          `gorm:"size:255;not null"`
	Funds     decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	UpdatedAt int64           `gorm:"autoUpdateTime:milli"` // 自動更新時間
}

func (*sqlAccount) TableName() string {
	return "accounts"
}

// Store 以 MySQL 持久化的帳戶儲存層
// 啟動時把所有帳戶載入記憶體，之後讀取全走記憶體，Create 與 Persist 時 upsert 該帳戶
type Store struct {
	*memory.Store
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore 建立 Store 並從 accounts 表載入所有帳戶
//
// 參數:
//
//	ctx: 上下文
//	db: GORM DB 實例
//	logger: 可為 nil
//
// 回傳:
//
//	*Store: Store 實例
//	error: 載入錯誤
func NewStore(ctx context.Context, db *gorm.DB, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		Store:  memory.NewStore(),
		db:     db,
		logger: logger.Named("mysql_store"),
	}
	if err := s.loadAllAccounts(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Migrate 建立或更新 accounts 表結構
func Migrate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(&sqlAccount{})
}

func (s *Store) loadAllAccounts(ctx context.Context) error {
	var rows []sqlAccount
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return fmt.Errorf("load accounts: %w", err)
	}
	for _, row := range rows {
		s.Restore(row.ID, row.Name, row.Funds)
	}
	s.logger.Info("loaded accounts from mysql", zap.Int("accounts", len(rows)))
	return nil
}

// Create 建立帳戶並寫入資料庫
// 寫入失敗時帳戶仍留在記憶體中，錯誤交由上層處理
func (s *Store) Create(ctx context.Context, name string, funds decimal.Decimal) (*domain.Account, error) {
	account, err := s.Store.Create(ctx, name, funds)
	if err != nil {
		return nil, err
	}
	account.LockRead()
	row := toRow(account)
	account.UnlockRead()

	if err := s.save(ctx, row); err != nil {
		return account, err
	}
	return account, nil
}

// Persist upsert 帳戶目前狀態，呼叫端需持有帳戶的寫鎖
func (s *Store) Persist(ctx context.Context, account *domain.Account) error {
	return s.save(ctx, toRow(account))
}

func (s *Store) save(ctx context.Context, row *sqlAccount) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(row).Error
	if err != nil {
		return fmt.Errorf("save account %d: %w", row.ID, err)
	}
	return nil
}

func toRow(account *domain.Account) *sqlAccount {
	return &sqlAccount{
		ID:    account.ID(),
		Name:  account.Name(),
		Funds: account.Funds(),
	}
}

var _ usecase.AccountRepository = (*Store)(nil)
