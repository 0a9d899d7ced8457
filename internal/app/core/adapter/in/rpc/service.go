package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName gRPC 服務全名
const ServiceName = "accounting.v1.AccountService"

const (
	ListAccountsMethod  = "/" + ServiceName + "/ListAccounts"
	GetAccountMethod    = "/" + ServiceName + "/GetAccount"
	CreateAccountMethod = "/" + ServiceName + "/CreateAccount"
	TransferFundsMethod = "/" + ServiceName + "/TransferFunds"
)

// AccountServiceServer 服務端需實作的方法
//
// 訊息皆使用 google.protobuf.Struct，欄位名稱與 REST JSON 相同:
//
//	GetAccount    {"id"}
//	CreateAccount {"name", "initialFunds"}
//	TransferFunds {"sourceId", "targetId", "amount"}
type AccountServiceServer interface {
	ListAccounts(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	GetAccount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CreateAccount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	TransferFunds(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// AccountServiceDesc 手寫的 ServiceDesc，等同 protoc-gen-go-grpc 產生的內容
var AccountServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AccountServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListAccounts",
			Handler:    unaryHandler[emptypb.Empty, *emptypb.Empty](ListAccountsMethod, AccountServiceServer.ListAccounts),
		},
		{
			MethodName: "GetAccount",
			Handler:    unaryHandler[structpb.Struct, *structpb.Struct](GetAccountMethod, AccountServiceServer.GetAccount),
		},
		{
			MethodName: "CreateAccount",
			Handler:    unaryHandler[structpb.Struct, *structpb.Struct](CreateAccountMethod, AccountServiceServer.CreateAccount),
		},
		{
			MethodName: "TransferFunds",
			Handler:    unaryHandler[structpb.Struct, *structpb.Struct](TransferFundsMethod, AccountServiceServer.TransferFunds),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "accounting/v1/account.proto",
}

// RegisterAccountServiceServer 將實作註冊到 gRPC Server
func RegisterAccountServiceServer(s grpc.ServiceRegistrar, srv AccountServiceServer) {
	s.RegisterService(&AccountServiceDesc, srv)
}

func unaryHandler[T any, PT interface {
	*T
	proto.Message
}](fullMethod string, call func(AccountServiceServer, context.Context, PT) (*structpb.Struct, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := PT(new(T))
		if err := dec(in); err != nil {
			return nil, err
		}
		server := srv.(AccountServiceServer)
		if interceptor == nil {
			return call(server, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(server, ctx, req.(PT))
		}
		return interceptor(ctx, in, info, handler)
	}
}
