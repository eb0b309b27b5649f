package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/account-service/internal/domain"
)

func TestMemoryUserRepository_InsertAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	user := newUser()
	require.NoError(t, repo.Insert(ctx, user))
	assert.False(t, user.CreatedAt.IsZero())

	got, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "a@x.com", byID.Email)
}

func TestMemoryUserRepository_Miss(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	got, err := repo.FindByEmail(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.GetByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryUserRepository_EmailIsExactMatch(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()
	require.NoError(t, repo.Insert(ctx, newUser()))

	got, err := repo.FindByEmail(ctx, "A@X.COM")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryUserRepository_Duplicate(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()
	require.NoError(t, repo.Insert(ctx, newUser()))

	dup := newUser()
	dup.ID = "other-id"
	assert.ErrorIs(t, repo.Insert(ctx, dup), ErrEmailTaken)

	got, err := repo.GetByID(ctx, "other-id")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryUserRepository_ConcurrentInsertSameEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	const workers = 32
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		conflicts atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repo.Insert(ctx, &domain.User{ID: fmt.Sprintf("id-%d", i), Email: "race@x.com"})
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, ErrEmailTaken):
				conflicts.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(workers-1), conflicts.Load())
}

func TestMemoryUserRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()
	user := newUser()
	require.NoError(t, repo.Insert(ctx, user))

	user.Name = "mutated"
	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)
}
