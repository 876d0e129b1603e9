//go:build integration

package postgres

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/xenking/shop-wallet/internal/domain/customer"
	"github.com/xenking/shop-wallet/internal/domain/order"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	os.Exit(testMain(m))
}

func testMain(m *testing.M) int {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "shop",
				"POSTGRES_PASSWORD": "shop",
				"POSTGRES_DB":       "shop",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("start postgres: %v", err)
	}
	defer func() { _ = ctr.Terminate(context.Background()) }()

	host, err := ctr.Host(ctx)
	if err != nil {
		log.Fatalf("host: %v", err)
	}
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	if err != nil {
		log.Fatalf("port: %v", err)
	}

	pool, err := NewPool(ctx, fmt.Sprintf("postgres://shop:shop@%s:%s/shop?sslmode=disable", host, port.Port()))
	if err != nil {
		log.Fatalf("pool: %v", err)
	}
	defer pool.Close()

	if err := RunMigrations(ctx, pool); err != nil {
		log.Fatalf("migrations: %v", err)
	}
	testPool = pool

	return m.Run()
}

func resetTables(t *testing.T) {
	t.Helper()
	_, err := testPool.Exec(context.Background(), `TRUNCATE customers, orders`)
	require.NoError(t, err)
}

func TestCustomerRepository_CRUD(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := NewCustomerRepository(testPool)

	c := &customer.Customer{Name: "Alice", Email: "alice@example.com", PasswordHash: "h", Phone: "1"}
	require.NoError(t, repo.Create(ctx, c))
	require.NotEmpty(t, c.ID)

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.Nil(t, got.RateDiscount)
	assert.True(t, got.Wallet.IsZero())
	assert.Equal(t, int64(1), got.Version)

	email := "new@example.com"
	updated, err := repo.Update(ctx, c.ID, customer.Patch{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", updated.Email)
	assert.Equal(t, "1", updated.Phone)
	assert.Equal(t, int64(2), updated.Version)

	_, err = repo.Update(ctx, "missing", customer.Patch{Email: &email})
	require.ErrorIs(t, err, customer.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, c.ID))
	require.NoError(t, repo.Delete(ctx, c.ID))
	_, err = repo.GetByID(ctx, c.ID)
	require.ErrorIs(t, err, customer.ErrNotFound)
}

func TestCustomerRepository_SaveVersioned(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := NewCustomerRepository(testPool)

	c := &customer.Customer{Name: "Alice"}
	require.NoError(t, repo.Create(ctx, c))

	first, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)

	rate := decimal.RequireFromString("20")
	first.Wallet = decimal.RequireFromString("80.5")
	first.RateDiscount = &rate
	require.NoError(t, repo.Save(ctx, first))
	assert.Equal(t, int64(2), first.Version)

	require.ErrorIs(t, repo.Save(ctx, second), customer.ErrConflict)

	stored, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("80.5").Equal(stored.Wallet))
	require.NotNil(t, stored.RateDiscount)
	assert.True(t, rate.Equal(*stored.RateDiscount))

	require.NoError(t, repo.Delete(ctx, c.ID))
	require.ErrorIs(t, repo.Save(ctx, stored), customer.ErrNotFound)
}

func TestCustomerRepository_RateOutOfRangeRejected(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := NewCustomerRepository(testPool)

	c := &customer.Customer{Name: "Alice"}
	require.NoError(t, repo.Create(ctx, c))

	rate := decimal.RequireFromString("150")
	c.RateDiscount = &rate
	require.Error(t, repo.Save(ctx, c))
}

func TestOrderRepository(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	customers := NewCustomerRepository(testPool)
	orders := NewOrderRepository(testPool)

	alice := &customer.Customer{Name: "Alice"}
	bob := &customer.Customer{Name: "Bob"}
	require.NoError(t, customers.Create(ctx, alice))
	require.NoError(t, customers.Create(ctx, bob))

	for i, cid := range []string{alice.ID, bob.ID, alice.ID} {
		o := &order.Order{
			CustomerID:   cid,
			ProductName:  fmt.Sprintf("item-%d", i),
			ProductPrice: decimal.NewFromInt(int64(10 * (i + 1))),
		}
		require.NoError(t, orders.Create(ctx, o))
		require.NotEmpty(t, o.ID)
	}

	all, err := orders.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "item-0", all[0].ProductName)
	assert.Equal(t, "item-2", all[2].ProductName)
	assert.Equal(t, time.UTC, all[0].PurchaseDate.Location())

	mine, err := orders.ListByCustomer(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.True(t, decimal.NewFromInt(30).Equal(mine[1].ProductPrice))

	// Orders outlive their customer.
	require.NoError(t, customers.Delete(ctx, alice.ID))
	mine, err = orders.ListByCustomer(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	found, err := customers.GetByIDs(ctx, []string{alice.ID, bob.ID})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Bob", found[0].Name)
}

func TestRepositories_KeepExactDecimals(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	customers := NewCustomerRepository(testPool)
	orders := NewOrderRepository(testPool)

	c := &customer.Customer{Name: "Alice"}
	require.NoError(t, customers.Create(ctx, c))

	// 9.99 at 12.5% off.
	price := decimal.RequireFromString("8.74125")
	rate := decimal.RequireFromString("12.5")
	c.Wallet = decimal.RequireFromString("91.25875")
	c.RateDiscount = &rate
	require.NoError(t, customers.Save(ctx, c))

	o := &order.Order{CustomerID: c.ID, ProductName: "Mug", ProductPrice: price}
	require.NoError(t, orders.Create(ctx, o))

	stored, err := customers.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "91.25875", stored.Wallet.String())

	list, err := orders.ListByCustomer(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "8.74125", list[0].ProductPrice.String())
	assert.True(t, o.ProductPrice.Equal(list[0].ProductPrice))
}
