package users

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_CreateAndFind(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	u, err := repo.CreateUser(ctx, "a@x.com", "hash", "A")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	got, err := repo.FindUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u, got)

	_, err = repo.FindUserByEmail(ctx, "A@x.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	u, err := repo.CreateUser(ctx, "a@x.com", "hash", "A")
	require.NoError(t, err)
	u.Name = "changed"

	got, err := repo.FindUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)
}

func TestMemoryRepository_ConcurrentCreateIsUnique(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		ok, dupes atomic.Int32
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.CreateUser(ctx, "race@x.com", "hash", "R")
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, common.ErrDuplicateUser):
				dupes.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(31), dupes.Load())
}
