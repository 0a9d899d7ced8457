package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FundsScale 金額固定小數點後 2 位
const FundsScale int32 = 2

// RoundFunds 將金額四捨五入到小數點後 2 位 (half-up，遠離零)
func RoundFunds(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(FundsScale)
}

// FormatFunds 輸出固定 2 位小數的字串，例如 "40.00"
func FormatFunds(amount decimal.Decimal) string {
	return amount.StringFixed(FundsScale)
}

// ParseFunds 解析外部傳入的金額字串並四捨五入到 2 位小數
//
// 參數:
//
//	raw: 金額字串，例如 "10", "10.005", " 3.1 "
//
// 回傳:
//
//	decimal.Decimal: 已四捨五入的金額
//	error: 格式錯誤 (包裹 ErrValidation)
func ParseFunds(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid amount %q", ErrValidation, raw)
	}
	return RoundFunds(amount), nil
}
