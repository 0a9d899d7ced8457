package domain

import (
	"errors"
	"fmt"
)

// 三種業務錯誤：呼叫端可預期、可恢復，皆不會造成部分變更
var (
	// ErrValidation 輸入格式或語意不合法
	ErrValidation = errors.New("validation failed")

	// ErrAccountNotFound 找不到帳戶
	ErrAccountNotFound = errors.New("account not found")

	// ErrInsufficientFunds 來源帳戶餘額不足
	ErrInsufficientFunds = errors.New("insufficient funds on source account")
)

// 具體的驗證錯誤，皆包裹 ErrValidation，可用 errors.Is 判斷
var (
	// ErrEmptyName 帳戶名稱不可為空
	ErrEmptyName = fmt.Errorf("%w: new account name must be non-empty", ErrValidation)

	// ErrNegativeFunds 初始金額不可為負
	ErrNegativeFunds = fmt.Errorf("%w: new account initial funds must be a non-negative value", ErrValidation)

	// ErrSameAccount 來源與目標帳戶相同
	ErrSameAccount = fmt.Errorf("%w: cannot transfer funds within same account", ErrValidation)

	// ErrAmountMustBePositive 轉帳金額必須為正數
	ErrAmountMustBePositive = fmt.Errorf("%w: transfer amount must be a positive value", ErrValidation)
)

// ErrPersistFailed 儲存層寫入失敗 (非業務錯誤，屬於服務異常)
var ErrPersistFailed = errors.New("persist account failed")
