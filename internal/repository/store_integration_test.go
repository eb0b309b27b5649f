//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/persistence"
	"github.com/spec-kit/account-service/internal/repository"
)

func startPostgres(t *testing.T) repository.UserRepository {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("accounts_test"),
		postgres.WithUsername("accounts"),
		postgres.WithPassword("accounts"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, persistence.RunMigrations(dsn, zap.NewNop()))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return repository.NewUserRepository(pool)
}

func startRedis(t *testing.T) repository.UserRepository {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })

	return repository.NewRedisUserRepository(client, "test")
}

func TestStores(t *testing.T) {
	drivers := map[string]func(*testing.T) repository.UserRepository{
		"postgres": startPostgres,
		"redis":    startRedis,
	}

	for name, start := range drivers {
		t.Run(name, func(t *testing.T) {
			repo := start(t)
			ctx := context.Background()

			require.NoError(t, repo.Ping(ctx))

			user := &domain.User{
				ID:            uuid.NewString(),
				Name:          "A",
				Email:         "a@x.com",
				ContactNumber: "1234567890",
				PasswordHash:  "$2a$10$abcdefghijklmnopqrstuv",
				TermsAccepted: true,
			}
			require.NoError(t, repo.Insert(ctx, user))

			found, err := repo.FindByEmail(ctx, "a@x.com")
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, user.ID, found.ID)
			assert.Equal(t, user.PasswordHash, found.PasswordHash)

			byID, err := repo.GetByID(ctx, user.ID)
			require.NoError(t, err)
			require.NotNil(t, byID)
			assert.Equal(t, "a@x.com", byID.Email)

			missing, err := repo.FindByEmail(ctx, "nobody@x.com")
			require.NoError(t, err)
			assert.Nil(t, missing)

			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				succeeded int
			)
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					err := repo.Insert(ctx, &domain.User{
						ID:            uuid.NewString(),
						Name:          fmt.Sprintf("racer-%d", i),
						Email:         "race@x.com",
						ContactNumber: "1234567890",
						PasswordHash:  "hash",
						TermsAccepted: true,
					})
					if err == nil {
						mu.Lock()
						succeeded++
						mu.Unlock()
						return
					}
					assert.True(t, errors.Is(err, repository.ErrEmailTaken), "unexpected error: %v", err)
				}(i)
			}
			wg.Wait()
			assert.Equal(t, 1, succeeded)
		})
	}
}
