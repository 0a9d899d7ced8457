package rpc

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JoeShih716/go-mem-accounting/internal/app/core/domain"
)

// Client AccountService 的型別化 gRPC 客戶端
//
// 服務端回傳的業務錯誤會轉回 domain 的錯誤，可直接用 errors.Is 判斷
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) ListAccounts(ctx context.Context, opts ...grpc.CallOption) ([]domain.AccountView, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ListAccountsMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, fromStatus(err)
	}
	list := out.GetFields()["accounts"].GetListValue().GetValues()
	views := make([]domain.AccountView, 0, len(list))
	for _, v := range list {
		view, err := viewFromStruct(v.GetStructValue())
		if err != nil {
			return nil, fmt.Errorf("decode account: %w", err)
		}
		views = append(views, view)
	}
	return views, nil
}

func (c *Client) GetAccount(ctx context.Context, id int64, opts ...grpc.CallOption) (domain.AccountView, error) {
	return c.call(ctx, GetAccountMethod, map[string]any{"id": id}, opts)
}

func (c *Client) CreateAccount(ctx context.Context, name string, funds decimal.Decimal, opts ...grpc.CallOption) (domain.AccountView, error) {
	return c.call(ctx, CreateAccountMethod, map[string]any{
		"name":         name,
		"initialFunds": funds.String(),
	}, opts)
}

// TransferFunds 回傳轉帳後的來源帳戶
func (c *Client) TransferFunds(ctx context.Context, sourceID, targetID int64, amount decimal.Decimal, opts ...grpc.CallOption) (domain.AccountView, error) {
	return c.call(ctx, TransferFundsMethod, map[string]any{
		"sourceId": sourceID,
		"targetId": targetID,
		"amount":   amount.String(),
	}, opts)
}

func (c *Client) call(ctx context.Context, method string, fields map[string]any, opts []grpc.CallOption) (domain.AccountView, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return domain.AccountView{}, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return domain.AccountView{}, fromStatus(err)
	}
	return viewFromStruct(out)
}

// remoteError 保留服務端訊息，並可 Unwrap 成對應的 domain 錯誤
type remoteError struct {
	kind error
	msg  string
}

func (e *remoteError) Error() string { return e.msg }
func (e *remoteError) Unwrap() error { return e.kind }

func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	var kind error
	switch st.Code() {
	case codes.InvalidArgument:
		kind = domain.ErrValidation
	case codes.NotFound:
		kind = domain.ErrAccountNotFound
	case codes.FailedPrecondition:
		kind = domain.ErrInsufficientFunds
	default:
		return err
	}
	if st.Message() == "" {
		return kind
	}
	return &remoteError{kind: kind, msg: st.Message()}
}
