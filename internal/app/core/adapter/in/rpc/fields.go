package rpc

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JoeShih716/go-mem-accounting/internal/app/core/domain"
)

// maxExactInt float64 可精確表示的最大整數 (2^53)
const maxExactInt = 1 << 53

// int64Field 讀取整數欄位，接受 number 或十進位字串
func int64Field(s *structpb.Struct, key string) (int64, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing field %q", domain.ErrValidation, key)
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		f := kind.NumberValue
		if f != math.Trunc(f) || math.Abs(f) > maxExactInt {
			return 0, fmt.Errorf("%w: field %q must be an integer", domain.ErrValidation, key)
		}
		return int64(f), nil
	case *structpb.Value_StringValue:
		n, err := strconv.ParseInt(kind.StringValue, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: field %q must be an integer", domain.ErrValidation, key)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: field %q must be an integer", domain.ErrValidation, key)
	}
}

// amountField 讀取金額欄位並四捨五入到 2 位小數
//
// 建議以字串傳遞 ("10.25")，number 會經過 float64 轉換
func amountField(s *structpb.Struct, key string) (decimal.Decimal, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: missing field %q", domain.ErrValidation, key)
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		if math.IsNaN(kind.NumberValue) || math.IsInf(kind.NumberValue, 0) {
			return decimal.Zero, fmt.Errorf("%w: field %q is not a finite number", domain.ErrValidation, key)
		}
		return domain.RoundFunds(decimal.NewFromFloat(kind.NumberValue)), nil
	case *structpb.Value_StringValue:
		return domain.ParseFunds(kind.StringValue)
	default:
		return decimal.Zero, fmt.Errorf("%w: field %q must be a string or number", domain.ErrValidation, key)
	}
}

// stringField 缺少欄位時回傳空字串，交由業務層驗證
func stringField(s *structpb.Struct, key string) (string, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return "", nil
	}
	str, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%w: field %q must be a string", domain.ErrValidation, key)
	}
	return str.StringValue, nil
}

func viewToMap(view domain.AccountView) map[string]any {
	return map[string]any{
		"id":    view.ID,
		"name":  view.Name,
		"funds": view.Funds,
	}
}

func viewToStruct(view domain.AccountView) (*structpb.Struct, error) {
	return structpb.NewStruct(viewToMap(view))
}

func viewFromStruct(s *structpb.Struct) (domain.AccountView, error) {
	id, err := int64Field(s, "id")
	if err != nil {
		return domain.AccountView{}, err
	}
	name, err := stringField(s, "name")
	if err != nil {
		return domain.AccountView{}, err
	}
	funds, err := stringField(s, "funds")
	if err != nil {
		return domain.AccountView{}, err
	}
	return domain.AccountView{ID: id, Name: name, Funds: funds}, nil
}
