package rpc

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/JoeShih716/go-mem-accounting/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-mem-accounting/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-accounting/internal/app/core/usecase"
)

type failingStore struct {
	*memory.Store
}

func (failingStore) Persist(context.Context, *domain.Account) error {
	return errors.New("disk full")
}

func newTestClient(t *testing.T, repo usecase.AccountRepository) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(UnaryLoggingInterceptor(nil)))
	RegisterAccountServiceServer(srv, NewServer(usecase.NewAccountService(repo, nil), nil))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewClient(conn)
}

func TestClientServerRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, memory.NewStore())

	alice, err := client.CreateAccount(ctx, "Alice", decimal.RequireFromString("70"))
	require.NoError(t, err)
	assert.Equal(t, domain.AccountView{ID: 1, Name: "Alice", Funds: "70.00"}, alice)

	bob, err := client.CreateAccount(ctx, "Bob", decimal.RequireFromString("10.005"))
	require.NoError(t, err)
	assert.Equal(t, "10.01", bob.Funds)

	source, err := client.TransferFunds(ctx, alice.ID, bob.ID, decimal.RequireFromString("30"))
	require.NoError(t, err)
	assert.Equal(t, "40.00", source.Funds)

	got, err := client.GetAccount(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "40.01", got.Funds)

	all, err := client.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, int64(1), all[0].ID)
	assert.Equal(t, int64(2), all[1].ID)
}

func TestClientMapsBusinessErrors(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, memory.NewStore())
	a, err := client.CreateAccount(ctx, "A", decimal.RequireFromString("20"))
	require.NoError(t, err)
	b, err := client.CreateAccount(ctx, "B", decimal.RequireFromString("10"))
	require.NoError(t, err)

	_, err = client.TransferFunds(ctx, a.ID, a.ID, decimal.RequireFromString("1"))
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, domain.ErrSameAccount.Error(), err.Error())

	_, err = client.TransferFunds(ctx, a.ID, b.ID, decimal.RequireFromString("-1"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = client.TransferFunds(ctx, a.ID, 99, decimal.RequireFromString("1"))
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, err = client.TransferFunds(ctx, a.ID, b.ID, decimal.RequireFromString("30"))
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	_, err = client.GetAccount(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, err = client.CreateAccount(ctx, " ", decimal.RequireFromString("1"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := client.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "20.00", got.Funds)
}

func TestPersistFailureIsInternal(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, failingStore{memory.NewStore()})
	a, err := client.CreateAccount(ctx, "A", decimal.RequireFromString("20"))
	require.NoError(t, err)
	b, err := client.CreateAccount(ctx, "B", decimal.RequireFromString("10"))
	require.NoError(t, err)

	_, err = client.TransferFunds(ctx, a.ID, b.ID, decimal.RequireFromString("5"))
	require.Error(t, err)
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.False(t, errors.Is(err, domain.ErrValidation))
}

func TestConcurrentOppositeTransfersOverRPC(t *testing.T) {
	ctx := metadata.AppendToOutgoingContext(context.Background(), RequestIDKey, "test")
	client := newTestClient(t, memory.NewStore())
	a, err := client.CreateAccount(ctx, "A", decimal.RequireFromString("1000"))
	require.NoError(t, err)
	b, err := client.CreateAccount(ctx, "B", decimal.RequireFromString("1000"))
	require.NoError(t, err)

	const rounds = 200
	one := decimal.RequireFromString("1.00")
	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := client.TransferFunds(ctx, a.ID, b.ID, one)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := client.TransferFunds(ctx, b.ID, a.ID, one)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := client.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1000.00", all[0].Funds)
	assert.Equal(t, "1000.00", all[1].Funds)
}

func TestServerRejectsMalformedFields(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, memory.NewStore())

	cases := []map[string]any{
		{"sourceId": 1, "targetId": 2},
		{"sourceId": 1.5, "targetId": 2, "amount": "1"},
		{"sourceId": "x", "targetId": 2, "amount": "1"},
		{"sourceId": 1, "targetId": 2, "amount": "ten"},
		{"sourceId": 1, "targetId": 2, "amount": true},
	}
	for _, fields := range cases {
		_, err := client.call(ctx, TransferFundsMethod, fields, nil)
		assert.ErrorIs(t, err, domain.ErrValidation, "%v", fields)
	}
}
