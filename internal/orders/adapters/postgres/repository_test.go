//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/partshub/api/internal/database"
	"github.com/partshub/api/internal/orders/adapters/postgres"
	"github.com/partshub/api/internal/orders/domain"
	"github.com/testcontainers/testcontainers-go"
	testpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := testpostgres.Run(ctx,
		"postgres:16-alpine",
		testpostgres.WithDatabase("test"),
		testpostgres.WithUsername("test"),
		testpostgres.WithPassword("test"),
		testpostgres.BasicWaitStrategies(),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").WithOccurrence(2)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	projectRoot := findProjectRoot(t)
	migrationsPath := filepath.Join(projectRoot, "migrations")

	if err := database.RunMigrations(connStr, migrationsPath); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	pool, err := database.NewPool(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
	})

	return pool
}

func findProjectRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

func newTestOrder(id, userID string, createdAt time.Time) domain.Order {
	return domain.Order{
		ID:     id,
		UserID: userID,
		LineItems: []domain.LineItem{
			{PartID: "part-1", Quantity: 2},
			{PartID: "part-2", Quantity: 1},
		},
		TotalPrice:               decimal.NewFromInt(45),
		EstimatedFulfillmentDays: 3,
		Status:                   domain.StatusPending,
		PaymentStatus:            domain.PaymentPending,
		CreatedAt:                createdAt,
		UpdatedAt:                createdAt,
	}
}

func TestRepositoryCreate(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	order := newTestOrder("test-order-1", "user-1", time.Now().UTC())

	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	retrieved, err := repo.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("failed to retrieve order: %v", err)
	}

	if retrieved.UserID != order.UserID {
		t.Errorf("expected user %s, got %s", order.UserID, retrieved.UserID)
	}
	if !retrieved.TotalPrice.Equal(order.TotalPrice) {
		t.Errorf("expected total %s, got %s", order.TotalPrice, retrieved.TotalPrice)
	}
	if retrieved.EstimatedFulfillmentDays != order.EstimatedFulfillmentDays {
		t.Errorf("expected %d fulfillment days, got %d", order.EstimatedFulfillmentDays, retrieved.EstimatedFulfillmentDays)
	}
	if len(retrieved.LineItems) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(retrieved.LineItems))
	}
	if retrieved.LineItems[0].PartID != "part-1" || retrieved.LineItems[0].Quantity != 2 {
		t.Errorf("unexpected first line item: %+v", retrieved.LineItems[0])
	}
}

func TestRepositoryGetByID_NotFound(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "nonexistent-id")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRepositoryListByUser(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	now := time.Now().UTC()
	orders := []domain.Order{
		newTestOrder("order-1", "user-1", now),
		newTestOrder("order-2", "user-1", now.Add(1*time.Second)),
		newTestOrder("order-3", "user-2", now.Add(2*time.Second)),
	}

	for _, order := range orders {
		if err := repo.Create(ctx, order); err != nil {
			t.Fatalf("failed to create order: %v", err)
		}
	}

	result, err := repo.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("failed to list orders: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("expected 2 orders for user-1, got %d", len(result))
	}

	if result[0].ID != "order-2" {
		t.Errorf("expected first order to be order-2 (newest), got %s", result[0].ID)
	}

	for _, order := range result {
		if len(order.LineItems) != 2 {
			t.Errorf("order %s: expected 2 line items, got %d", order.ID, len(order.LineItems))
		}
	}
}

func TestRepositoryMarkPaid(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	order := newTestOrder("order-pay", "user-1", time.Now().UTC())
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	paid, err := repo.MarkPaid(ctx, order.ID)
	if err != nil {
		t.Fatalf("failed to mark paid: %v", err)
	}
	if paid.PaymentStatus != domain.PaymentCompleted {
		t.Errorf("expected payment status completed, got %s", paid.PaymentStatus)
	}
	if !paid.UpdatedAt.After(order.UpdatedAt) {
		t.Error("expected updated_at to be updated")
	}

	_, err = repo.MarkPaid(ctx, order.ID)
	if !errors.Is(err, domain.ErrAlreadyPaid) {
		t.Errorf("expected ErrAlreadyPaid on second attempt, got %v", err)
	}
}

func TestRepositoryMarkPaid_NotFound(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	_, err := repo.MarkPaid(ctx, "nonexistent-id")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRepositoryMarkCancelled(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	order := newTestOrder("order-cancel", "user-1", time.Now().UTC())
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	cancelled, err := repo.MarkCancelled(ctx, order.ID)
	if err != nil {
		t.Fatalf("failed to mark cancelled: %v", err)
	}
	if cancelled.Status != domain.StatusCancelled {
		t.Errorf("expected status cancelled, got %s", cancelled.Status)
	}

	_, err = repo.MarkCancelled(ctx, order.ID)
	if !errors.Is(err, domain.ErrAlreadyCancelled) {
		t.Errorf("expected ErrAlreadyCancelled on second attempt, got %v", err)
	}
}

func TestRepositoryMarkCancelled_AfterShipment(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	order := newTestOrder("order-shipped", "user-1", time.Now().UTC())
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	if err := repo.SetStatus(ctx, order.ID, domain.StatusShipped); err != nil {
		t.Fatalf("failed to set status: %v", err)
	}

	_, err := repo.MarkCancelled(ctx, order.ID)
	if !errors.Is(err, domain.ErrAlreadyShipped) {
		t.Errorf("expected ErrAlreadyShipped, got %v", err)
	}
}
