package journal

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-mem-accounting/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-accounting/internal/app/core/usecase"
	"github.com/JoeShih716/go-mem-accounting/pkg/wal"
)

func openStore(t *testing.T, path string) (*Store, *wal.WAL) {
	t.Helper()
	w, err := wal.NewWAL(path)
	require.NoError(t, err)
	store, err := NewStore(w, nil)
	require.NoError(t, err)
	return store, w
}

func TestStoreRecoversAccountsAfterRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "wal.log")

	store, w := openStore(t, path)
	svc := usecase.NewAccountService(store, nil)
	_, err := svc.CreateAccount(ctx, "Alice", decimal.NewFromInt(70))
	require.NoError(t, err)
	_, err = svc.CreateAccount(ctx, "Bob", decimal.NewFromInt(10))
	require.NoError(t, err)
	_, err = svc.TransferFunds(ctx, 1, 2, decimal.RequireFromString("30.25"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	restored, w2 := openStore(t, path)
	defer w2.Close()
	svc = usecase.NewAccountService(restored, nil)

	assert.Equal(t, []domain.AccountView{
		{ID: 1, Name: "Alice", Funds: "39.75"},
		{ID: 2, Name: "Bob", Funds: "40.25"},
	}, svc.ListAccounts(ctx))

	// 序號從最大 ID 之後繼續
	created, err := svc.CreateAccount(ctx, "Carol", decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, int64(3), created.ID)
}

func TestStoreFailedTransferIsNotJournaled(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "wal.log")

	store, w := openStore(t, path)
	svc := usecase.NewAccountService(store, nil)
	_, err := svc.CreateAccount(ctx, "Alice", decimal.NewFromInt(20))
	require.NoError(t, err)
	_, err = svc.CreateAccount(ctx, "Bob", decimal.NewFromInt(10))
	require.NoError(t, err)
	_, err = svc.TransferFunds(ctx, 1, 2, decimal.NewFromInt(30))
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	require.NoError(t, w.Close())

	restored, w2 := openStore(t, path)
	defer w2.Close()
	account, ok := restored.Find(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, "20.00", account.Snapshot().Funds)
}

func TestStoreWriteFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	store, w := openStore(t, filepath.Join(t.TempDir(), "wal.log"))
	require.NoError(t, w.Close())

	_, err := store.Create(ctx, "Alice", decimal.NewFromInt(1))
	assert.Error(t, err)
}

func TestStoreSurvivesTornRecordAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "wal.log")

	store, w := openStore(t, path)
	_, err := usecase.NewAccountService(store, nil).CreateAccount(ctx, "Alice", decimal.NewFromInt(70))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	// 模擬寫入途中崩潰
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, wal.FileModeReadOnly)
	require.NoError(t, err)
	_, err = f.WriteString(`{"account_id":2,"na`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	restored, w2 := openStore(t, path)
	_, err = usecase.NewAccountService(restored, nil).CreateAccount(ctx, "Bob", decimal.NewFromInt(10))
	require.NoError(t, err)
	require.NoError(t, w2.Close())

	again, w3 := openStore(t, path)
	defer w3.Close()
	assert.Equal(t, []domain.AccountView{
		{ID: 1, Name: "Alice", Funds: "70.00"},
		{ID: 2, Name: "Bob", Funds: "10.00"},
	}, usecase.NewAccountService(again, nil).ListAccounts(ctx))
}
