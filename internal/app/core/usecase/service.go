package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-mem-accounting/internal/app/core/domain"
)

// AccountService 是核心業務邏輯層
// 負責輸入驗證、雙帳戶鎖定的轉帳流程，並只對外回傳唯讀投影
type AccountService struct {
	repo   AccountRepository
	logger *zap.Logger
}

// NewAccountService 建立 AccountService
//
// 參數:
//
//	repo: 帳戶儲存層
//	logger: 可為 nil，nil 時不輸出 log
func NewAccountService(repo AccountRepository, logger *zap.Logger) *AccountService {
	if repo == nil {
		panic("usecase: nil AccountRepository")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		repo:   repo,
		logger: logger.Named("account_service"),
	}
}

// ListAccounts 列出所有帳戶
// 每個帳戶各自在讀鎖下取快照，帳戶之間不保證是同一時間點
func (s *AccountService) ListAccounts(ctx context.Context) []domain.AccountView {
	accounts := s.repo.FindAll(ctx)
	views := make([]domain.AccountView, 0, len(accounts))
	for _, account := range accounts {
		views = append(views, snapshot(account))
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })
	return views
}

// GetAccount 取得單一帳戶，不存在時 ok 為 false
func (s *AccountService) GetAccount(ctx context.Context, id int64) (view domain.AccountView, ok bool) {
	account, ok := s.repo.Find(ctx, id)
	if !ok {
		return domain.AccountView{}, false
	}
	return snapshot(account), true
}

// CreateAccount 建立帳戶
//
// 參數:
//
//	name: 帳戶名稱，去除空白後不可為空
//	funds: 初始金額，不可為負
//
// 回傳:
//
//	domain.AccountView: 新帳戶的投影
//	error: ErrValidation 或儲存層錯誤
func (s *AccountService) CreateAccount(ctx context.Context, name string, funds decimal.Decimal) (domain.AccountView, error) {
	if strings.TrimSpace(name) == "" {
		return domain.AccountView{}, domain.ErrEmptyName
	}
	funds = domain.RoundFunds(funds)
	if funds.IsNegative() {
		return domain.AccountView{}, domain.ErrNegativeFunds
	}

	// 帳戶一旦建立就會留在記憶體，寫入不隨請求取消而中斷
	account, err := s.repo.Create(context.WithoutCancel(ctx), name, funds)
	if err != nil {
		s.logger.Error("create account failed", zap.String("name", name), zap.Error(err))
		return domain.AccountView{}, fmt.Errorf("%w: %w", domain.ErrPersistFailed, err)
	}
	view := snapshot(account)
	s.logger.Info("account created", zap.Int64("account_id", view.ID), zap.String("funds", view.Funds))
	return view, nil
}

// TransferFunds 從 source 轉帳 amount 到 target
//
// 流程:
//
//	驗證 -> 查詢兩個帳戶 -> 依 ID 由大到小取寫鎖 -> 檢查餘額 -> 扣款/入帳 -> Persist -> 取快照 -> 反序解鎖
//
// 回傳:
//
//	domain.AccountView: 轉帳後的來源帳戶投影
//	error: ErrValidation, ErrAccountNotFound, ErrInsufficientFunds 或 ErrPersistFailed
func (s *AccountService) TransferFunds(ctx context.Context, sourceID, targetID int64, amount decimal.Decimal) (domain.AccountView, error) {
	tran := domain.NewTransfer(sourceID, targetID, amount)
	if err := tran.Validate(); err != nil {
		return domain.AccountView{}, err
	}

	source, ok := s.repo.Find(ctx, tran.SourceID)
	if !ok {
		return domain.AccountView{}, fmt.Errorf("%w: %d", domain.ErrAccountNotFound, tran.SourceID)
	}
	target, ok := s.repo.Find(ctx, tran.TargetID)
	if !ok {
		return domain.AccountView{}, fmt.Errorf("%w: %d", domain.ErrAccountNotFound, tran.TargetID)
	}

	unlock := lockInOrder(tran, source, target)
	defer unlock()

	if err := source.Withdraw(tran.Amount); err != nil {
		s.logger.Info("transfer rejected",
			zap.Stringer("transfer_id", tran.ID),
			zap.Int64("source_id", tran.SourceID),
			zap.Int64("target_id", tran.TargetID),
			zap.String("amount", domain.FormatFunds(tran.Amount)),
			zap.Error(err),
		)
		return domain.AccountView{}, err
	}
	target.Deposit(tran.Amount)

	// 兩邊的變更已經完成，即使 Persist 失敗也不回滾，交由上層視為服務異常
	if err := s.persist(ctx, tran, source, target); err != nil {
		return domain.AccountView{}, err
	}

	s.logger.Debug("transfer completed",
		zap.Stringer("transfer_id", tran.ID),
		zap.Int64("source_id", tran.SourceID),
		zap.Int64("target_id", tran.TargetID),
		zap.String("amount", domain.FormatFunds(tran.Amount)),
	)
	return source.Snapshot(), nil
}

// persist 兩邊的變更已在記憶體生效，呼叫端取消也必須寫完兩個帳戶
func (s *AccountService) persist(ctx context.Context, tran *domain.Transfer, accounts ...*domain.Account) error {
	ctx = context.WithoutCancel(ctx)
	var errs []error
	for _, account := range accounts {
		if err := s.repo.Persist(ctx, account); err != nil {
			errs = append(errs, fmt.Errorf("account %d: %w", account.ID(), err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	err := errors.Join(errs...)
	s.logger.Error("persist after transfer failed", zap.Stringer("transfer_id", tran.ID), zap.Error(err))
	return fmt.Errorf("%w: %w", domain.ErrPersistFailed, err)
}

// lockInOrder 依 tran.GetLockIDs() 的順序取得兩個帳戶的寫鎖
// 回傳的函式以相反順序解鎖
func lockInOrder(tran *domain.Transfer, source, target *domain.Account) (unlock func()) {
	first, second := source, target
	if tran.GetLockIDs()[0] != source.ID() {
		first, second = target, source
	}

	first.LockWrite()
	second.LockWrite()
	return func() {
		second.UnlockWrite()
		first.UnlockWrite()
	}
}

func snapshot(account *domain.Account) domain.AccountView {
	account.LockRead()
	defer account.UnlockRead()
	return account.Snapshot()
}
