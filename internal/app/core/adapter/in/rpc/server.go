package rpc

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JoeShih716/go-mem-accounting/internal/app/core/domain"
)

const msgServiceError = "Service error, contact support team"

// AccountService gRPC 層需要的業務操作
type AccountService interface {
	ListAccounts(ctx context.Context) []domain.AccountView
	GetAccount(ctx context.Context, id int64) (domain.AccountView, bool)
	CreateAccount(ctx context.Context, name string, funds decimal.Decimal) (domain.AccountView, error)
	TransferFunds(ctx context.Context, sourceID, targetID int64, amount decimal.Decimal) (domain.AccountView, error)
}

type Server struct {
	svc    AccountService
	logger *zap.Logger
}

var _ AccountServiceServer = (*Server)(nil)

func NewServer(svc AccountService, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{svc: svc, logger: logger}
}

func (s *Server) ListAccounts(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	views := s.svc.ListAccounts(ctx)
	accounts := make([]any, 0, len(views))
	for _, view := range views {
		accounts = append(accounts, viewToMap(view))
	}
	resp, err := structpb.NewStruct(map[string]any{"accounts": accounts})
	if err != nil {
		return nil, s.toStatus(err)
	}
	return resp, nil
}

func (s *Server) GetAccount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := int64Field(req, "id")
	if err != nil {
		return nil, s.toStatus(err)
	}
	view, ok := s.svc.GetAccount(ctx, id)
	if !ok {
		return nil, status.Error(codes.NotFound, domain.ErrAccountNotFound.Error())
	}
	return s.respond(view, nil)
}

func (s *Server) CreateAccount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name, err := stringField(req, "name")
	if err != nil {
		return nil, s.toStatus(err)
	}
	funds, err := amountField(req, "initialFunds")
	if err != nil {
		return nil, s.toStatus(err)
	}
	return s.respond(s.svc.CreateAccount(ctx, name, funds))
}

// TransferFunds 成功時回傳來源帳戶
func (s *Server) TransferFunds(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sourceID, err := int64Field(req, "sourceId")
	if err != nil {
		return nil, s.toStatus(err)
	}
	targetID, err := int64Field(req, "targetId")
	if err != nil {
		return nil, s.toStatus(err)
	}
	amount, err := amountField(req, "amount")
	if err != nil {
		return nil, s.toStatus(err)
	}
	return s.respond(s.svc.TransferFunds(ctx, sourceID, targetID, amount))
}

func (s *Server) respond(view domain.AccountView, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, s.toStatus(err)
	}
	resp, err := viewToStruct(view)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return resp, nil
}

// toStatus 業務錯誤轉成對應的 gRPC code，其他錯誤記錄後回傳 Internal
func (s *Server) toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrAccountNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		s.logger.Error("rpc failed", zap.Error(err))
		return status.Error(codes.Internal, msgServiceError)
	}
}
