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
	"github.com/partshub/api/internal/catalog/adapters/postgres"
	"github.com/partshub/api/internal/catalog/domain"
	"github.com/partshub/api/internal/catalog/ports"
	"github.com/partshub/api/internal/database"
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

func newTestPart(id, name string, price int64, createdAt time.Time) domain.Part {
	return domain.Part{
		ID:            id,
		Name:          name,
		Price:         decimal.NewFromInt(price),
		StockQuantity: 10,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

func TestRepositoryCreateAndGet(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	delivery := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Second)
	part := newTestPart("part-1", "Brake pad", 25, time.Now().UTC())
	part.DateOfDelivery = &delivery

	if err := repo.Create(ctx, part); err != nil {
		t.Fatalf("failed to create part: %v", err)
	}

	retrieved, err := repo.GetByID(ctx, part.ID)
	if err != nil {
		t.Fatalf("failed to retrieve part: %v", err)
	}

	if retrieved.Name != part.Name {
		t.Errorf("expected name %s, got %s", part.Name, retrieved.Name)
	}
	if !retrieved.Price.Equal(part.Price) {
		t.Errorf("expected price %s, got %s", part.Price, retrieved.Price)
	}
	if retrieved.DateOfDelivery == nil || !retrieved.DateOfDelivery.Equal(delivery) {
		t.Errorf("expected delivery date %v, got %v", delivery, retrieved.DateOfDelivery)
	}
}

func TestRepositoryGetByIDs(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	now := time.Now().UTC()
	for _, part := range []domain.Part{
		newTestPart("part-1", "Brake pad", 25, now),
		newTestPart("part-2", "Oil filter", 12, now),
	} {
		if err := repo.Create(ctx, part); err != nil {
			t.Fatalf("failed to create part: %v", err)
		}
	}

	result, err := repo.GetByIDs(ctx, []string{"part-1", "part-2", "part-missing"})
	if err != nil {
		t.Fatalf("failed to get parts: %v", err)
	}

	if len(result) != 2 {
		t.Errorf("expected 2 parts, got %d", len(result))
	}
	if _, ok := result["part-missing"]; ok {
		t.Error("expected missing part to be absent from result")
	}
}

func TestRepositoryList(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	now := time.Now().UTC()
	for _, part := range []domain.Part{
		newTestPart("part-1", "Brake pad", 25, now),
		newTestPart("part-2", "Brake disc", 80, now.Add(time.Second)),
		newTestPart("part-3", "Oil filter", 12, now.Add(2*time.Second)),
	} {
		if err := repo.Create(ctx, part); err != nil {
			t.Fatalf("failed to create part: %v", err)
		}
	}

	t.Run("all parts newest first", func(t *testing.T) {
		result, err := repo.List(ctx, ports.ListFilter{})
		if err != nil {
			t.Fatalf("failed to list parts: %v", err)
		}
		if len(result) != 3 {
			t.Fatalf("expected 3 parts, got %d", len(result))
		}
		if result[0].ID != "part-3" {
			t.Errorf("expected first part to be part-3 (newest), got %s", result[0].ID)
		}
	})

	t.Run("filter by name", func(t *testing.T) {
		result, err := repo.List(ctx, ports.ListFilter{NameQuery: "brake"})
		if err != nil {
			t.Fatalf("failed to list parts: %v", err)
		}
		if len(result) != 2 {
			t.Errorf("expected 2 brake parts, got %d", len(result))
		}
	})

	t.Run("filter by price range", func(t *testing.T) {
		min := decimal.NewFromInt(20)
		max := decimal.NewFromInt(30)
		result, err := repo.List(ctx, ports.ListFilter{MinPrice: &min, MaxPrice: &max})
		if err != nil {
			t.Fatalf("failed to list parts: %v", err)
		}
		if len(result) != 1 || result[0].ID != "part-1" {
			t.Errorf("expected only part-1 in range, got %+v", result)
		}
	})
}

func TestRepositoryUpdate(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	part := newTestPart("part-1", "Brake pad", 25, time.Now().UTC())
	if err := repo.Create(ctx, part); err != nil {
		t.Fatalf("failed to create part: %v", err)
	}

	part.StockQuantity = 0
	part.UpdatedAt = time.Now().UTC()
	if err := repo.Update(ctx, part); err != nil {
		t.Fatalf("failed to update part: %v", err)
	}

	updated, err := repo.GetByID(ctx, part.ID)
	if err != nil {
		t.Fatalf("failed to retrieve part: %v", err)
	}
	if updated.StockQuantity != 0 {
		t.Errorf("expected stock 0, got %d", updated.StockQuantity)
	}
}

func TestRepositoryDelete_NotFound(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	err := repo.Delete(ctx, "nonexistent-id")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
