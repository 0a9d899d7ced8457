package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/JoeShih716/go-mem-accounting/internal/app/core/adapter/in/rest"
	"github.com/JoeShih716/go-mem-accounting/internal/app/core/adapter/in/rpc"
	"github.com/JoeShih716/go-mem-accounting/internal/app/core/adapter/out/journal"
	"github.com/JoeShih716/go-mem-accounting/internal/app/core/adapter/out/memory"
	mysql_adapter "github.com/JoeShih716/go-mem-accounting/internal/app/core/adapter/out/mysql"
	"github.com/JoeShih716/go-mem-accounting/internal/app/core/usecase"
	"github.com/JoeShih716/go-mem-accounting/internal/config"
	"github.com/JoeShih716/go-mem-accounting/pkg/logger"
	"github.com/JoeShih716/go-mem-accounting/pkg/mysql"
	"github.com/JoeShih716/go-mem-accounting/pkg/wal"
)

func main() {
	os.Exit(start())
}

// start 回傳 process exit code，確保 logger 在結束前 Sync
func start() int {
	// 1. 載入設定
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		return 1
	}

	// 2. 初始化 Logger
	logg, err := logger.New(cfg.Log)
	if err != nil {
		log.Printf("Failed to init logger: %v", err)
		return 1
	}
	return finish(logg, run(cfg, logg))
}

// finish 記錄結束原因並 Sync logger
func finish(logg *zap.Logger, err error) int {
	code := 0
	if err != nil {
		logg.Error("server exited with error", zap.Error(err))
		code = 1
	} else {
		logg.Info("server exited")
	}
	_ = logg.Sync()
	return code
}

func run(cfg config.Config, logg *zap.Logger) error {
	ctx := context.Background()

	// 3. 依設定選擇儲存後端
	repo, closer, err := newRepository(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closer.Close(); err != nil {
			logg.Error("failed to close storage", zap.Error(err))
		}
	}()

	// 4. 初始化 UseCase
	svc := usecase.NewAccountService(repo, logg)

	// 5. 啟動 gRPC Server
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen grpc %s: %w", cfg.Server.GRPCAddr, err)
	}
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(rpc.UnaryLoggingInterceptor(logg.Named("grpc"))))
	rpc.RegisterAccountServiceServer(grpcServer, rpc.NewServer(svc, logg.Named("grpc")))

	// 6. 啟動 HTTP Server
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: rest.NewRouter(rest.NewHandler(svc, logg.Named("http"))),
	}

	errCh := make(chan error, 2)
	go func() {
		logg.Info("starting grpc server", zap.String("addr", cfg.Server.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc serve: %w", err)
		}
	}()
	go func() {
		logg.Info("starting http server", zap.String("addr", cfg.Server.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http serve: %w", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	var serveErr error
	select {
	case sig := <-quit:
		logg.Info("shutting down server", zap.Stringer("signal", sig))
	case serveErr = <-errCh:
		logg.Error("server failed, shutting down", zap.Error(serveErr))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logg.Error("http shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()
	return serveErr
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// newRepository 建立帳戶儲存層，回傳的 io.Closer 用於關閉底層資源
func newRepository(ctx context.Context, cfg config.Config, logg *zap.Logger) (usecase.AccountRepository, io.Closer, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return memory.NewStore(), closerFunc(func() error { return nil }), nil

	case config.BackendJournal:
		walFile, err := wal.NewWAL(cfg.Storage.WALPath)
		if err != nil {
			return nil, nil, fmt.Errorf("init wal: %w", err)
		}
		store, err := journal.NewStore(walFile, logg.Named("journal"))
		if err != nil {
			_ = walFile.Close()
			return nil, nil, fmt.Errorf("recover from wal: %w", err)
		}
		logg.Info("accounts recovered from wal",
			zap.String("path", cfg.Storage.WALPath),
			zap.Int("accounts", store.Len()),
		)
		return store, walFile, nil

	case config.BackendMySQL:
		client, err := mysql.NewClient(cfg.MySQL, logg.Named("mysql"))
		if err != nil {
			return nil, nil, fmt.Errorf("connect mysql: %w", err)
		}
		if cfg.MySQL.AutoMigrate {
			if err := mysql_adapter.Migrate(ctx, client.DB()); err != nil {
				_ = client.Close()
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}
		store, err := mysql_adapter.NewStore(ctx, client.DB(), logg.Named("mysql"))
		if err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("load accounts: %w", err)
		}
		logg.Info("accounts loaded from mysql", zap.Int("accounts", store.Len()))
		return store, client, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
