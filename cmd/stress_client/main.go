package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-mem-accounting/internal/app/core/adapter/in/rpc"
	"github.com/JoeShih716/go-mem-accounting/internal/app/core/domain"
	grpcpool "github.com/JoeShih716/go-mem-accounting/pkg/grpc"
	"github.com/JoeShih716/go-mem-accounting/pkg/logger"
)

// 建立兩個帳戶後同時進行 A->B 與 B->A 的轉帳，最後檢查總額不變
func main() {
	target := flag.String("target", "localhost:50051", "gRPC server address")
	total := flag.Int("n", 100000, "number of transfers per direction")
	concurrency := flag.Int("c", 500, "max in-flight requests")
	amountRaw := flag.String("amount", "1.00", "amount of each transfer")
	timeout := flag.Duration("timeout", 120*time.Second, "overall timeout")
	flag.Parse()

	logg, err := logger.New(logger.Config{Level: "info"})
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	amount, err := domain.ParseFunds(*amountRaw)
	if err != nil {
		logg.Fatal("invalid amount", zap.Error(err))
	}

	pool := grpcpool.NewPool(grpcpool.WithUnaryInterceptors(grpcpool.RequestIDInterceptor()))
	defer func() { _ = pool.Close() }()
	conn, err := pool.Get(*target)
	if err != nil {
		logg.Fatal("did not connect", zap.Error(err))
	}
	client := rpc.NewClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	initial := amount.Mul(decimal.NewFromInt(int64(*total)))
	a, err := client.CreateAccount(ctx, "stress-a", initial)
	if err != nil {
		logg.Fatal("create account a", zap.Error(err))
	}
	b, err := client.CreateAccount(ctx, "stress-b", initial)
	if err != nil {
		logg.Fatal("create account b", zap.Error(err))
	}

	var (
		wg           sync.WaitGroup
		failed       atomic.Int64
		insufficient atomic.Int64
	)
	sem := make(chan struct{}, *concurrency)
	send := func(idx int, from, to int64) {
		defer wg.Done()
		defer func() { <-sem }()
		_, err := client.TransferFunds(ctx, from, to, amount)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrInsufficientFunds):
			insufficient.Add(1)
		default:
			if failed.Add(1)%1000 == 1 {
				logg.Warn("transfer failed", zap.Int("idx", idx), zap.Error(err))
			}
		}
	}

	start := time.Now()
	for i := 0; i < *total; i++ {
		wg.Add(2)
		sem <- struct{}{}
		go send(i, a.ID, b.ID)
		sem <- struct{}{}
		go send(i, b.ID, a.ID)
	}
	wg.Wait()
	elapsed := time.Since(start)

	finalA, err := client.GetAccount(ctx, a.ID)
	if err != nil {
		logg.Fatal("get account a", zap.Error(err))
	}
	finalB, err := client.GetAccount(ctx, b.ID)
	if err != nil {
		logg.Fatal("get account b", zap.Error(err))
	}
	sum := decimal.RequireFromString(finalA.Funds).Add(decimal.RequireFromString(finalB.Funds))

	requests := 2 * *total
	fmt.Printf("Completed %d transfers in %v\n", requests, elapsed)
	fmt.Printf("TPS: %.2f\n", float64(requests)/elapsed.Seconds())
	fmt.Printf("Failed: %d, insufficient funds: %d\n", failed.Load(), insufficient.Load())
	fmt.Printf("Final balances: %s=%s %s=%s\n", finalA.Name, finalA.Funds, finalB.Name, finalB.Funds)
	if !sum.Equal(initial.Mul(decimal.NewFromInt(2))) {
		logg.Fatal("total funds changed",
			zap.String("expected", domain.FormatFunds(initial.Mul(decimal.NewFromInt(2)))),
			zap.String("actual", domain.FormatFunds(sum)),
		)
	}
}
