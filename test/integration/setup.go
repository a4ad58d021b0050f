package integration

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"shopping-mart/internal/catalog"
	"shopping-mart/internal/handler"
	"shopping-mart/internal/metrics"
	"shopping-mart/internal/middleware"
	"shopping-mart/internal/router"
	"shopping-mart/internal/service"
	"shopping-mart/internal/storage"
	"shopping-mart/internal/view"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	Storage   *storage.Postgres
}

// SetupTestDB creates a PostgreSQL test container, a pool and the storage schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	pg := storage.NewPostgres(pool, zerolog.Nop())
	if err := pg.EnsureSchema(ctx); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		Storage:   pg,
	}
}

// CleanupDB removes every stored item.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	if _, err := pool.Exec(context.Background(), "DELETE FROM storefront_items"); err != nil {
		t.Logf("failed to clean storefront_items: %v", err)
	}
}

// NewTestServer wires the full storefront on top of s, the way the binary does.
func NewTestServer(t *testing.T, s storage.Storage) *httptest.Server {
	t.Helper()

	logger := zerolog.Nop()
	products := catalog.Default()
	registry := prometheus.NewRegistry()
	m := metrics.NewWithRegisterer(registry)

	carts := service.NewCartService(s, products, m, logger)
	checkout := service.NewCheckoutService(carts, products, m, logger)

	views, err := view.NewRouter(products, m, logger)
	require.NoError(t, err)

	h := router.New(
		handler.NewStorefrontHandler(carts, checkout, views, logger),
		handler.NewAPIHandler(service.NewProductService(products, logger), carts, products, logger),
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		middleware.SessionOptions{CookieName: "mart_session", MaxAge: time.Hour},
		logger,
	)

	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return server
}

// NewBrowser returns a client that keeps cookies, like a single browser profile.
func NewBrowser(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar, Timeout: 10 * time.Second}
}
