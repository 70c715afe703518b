package repository

import (
	"context"
	"testing"
	"time"

	"museobot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionRepository(t *testing.T) {
	repo := NewMemorySessionRepository(time.Hour)
	ctx := context.Background()

	t.Run("SetAndGetSession", func(t *testing.T) {
		session := &models.Session{ID: "mem-1", Step: models.StepAddress}
		require.NoError(t, repo.SetSession(ctx, session))

		got, err := repo.GetSession(ctx, "mem-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, models.StepAddress, got.Step)
	})

	t.Run("GetNonExistentSession", func(t *testing.T) {
		got, err := repo.GetSession(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ClearSession", func(t *testing.T) {
		session := &models.Session{ID: "mem-2", Step: models.StepGreeting}
		require.NoError(t, repo.SetSession(ctx, session))
		require.NoError(t, repo.ClearSession(ctx, "mem-2"))

		got, _ := repo.GetSession(ctx, "mem-2")
		assert.Nil(t, got)
	})

	t.Run("RateLimit", func(t *testing.T) {
		id := "mem-rl"
		window := 50 * time.Millisecond

		allowed, err := repo.CheckRateLimit(ctx, id, 2, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, _ = repo.CheckRateLimit(ctx, id, 2, window)
		assert.True(t, allowed)

		allowed, _ = repo.CheckRateLimit(ctx, id, 2, window)
		assert.False(t, allowed)

		time.Sleep(window + 10*time.Millisecond)

		allowed, _ = repo.CheckRateLimit(ctx, id, 2, window)
		assert.True(t, allowed)
	})
}
