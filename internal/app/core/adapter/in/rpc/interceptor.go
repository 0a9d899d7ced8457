package rpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	grpcpool "github.com/JoeShih716/go-mem-accounting/pkg/grpc"
)

// RequestIDKey 呼叫端可在 metadata 帶入的追蹤 id
const RequestIDKey = grpcpool.RequestIDHeader

// UnaryLoggingInterceptor 記錄每個 unary 呼叫的方法、狀態碼與耗時
//
// 非 OK 的呼叫以 Info 記錄，其餘為 Debug
func UnaryLoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.Stringer("code", status.Code(err)),
			zap.Duration("latency", time.Since(start)),
		}
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(RequestIDKey); len(ids) > 0 {
				fields = append(fields, zap.String("request_id", ids[0]))
			}
		}
		if err != nil {
			logger.Info("grpc request failed", append(fields, zap.Error(err))...)
		} else {
			logger.Debug("grpc request", fields...)
		}
		return resp, err
	}
}
