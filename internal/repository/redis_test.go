package repository

import (
	"context"
	"testing"
	"time"

	"museobot/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSessionRepository(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	defer client.Close()

	repo := NewRedisSessionRepository(client, time.Hour)
	ctx := context.Background()

	t.Run("SetAndGetSession", func(t *testing.T) {
		session := &models.Session{
			ID:   "abc-123",
			Step: models.StepName,
			Draft: map[string]interface{}{
				models.DraftName: "Jane Visitor",
			},
			ShowDatePicker: true,
		}

		err := repo.SetSession(ctx, session)
		require.NoError(t, err)

		got, err := repo.GetSession(ctx, "abc-123")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, session.ID, got.ID)
		assert.Equal(t, session.Step, got.Step)
		assert.Equal(t, "Jane Visitor", got.GetString(models.DraftName))
		assert.True(t, got.ShowDatePicker)
	})

	t.Run("DateSurvivesRoundTrip", func(t *testing.T) {
		date := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
		session := &models.Session{ID: "date-rt", Step: models.StepTimeSlot}
		session.Set(models.DraftDate, date.Format(time.RFC3339))

		require.NoError(t, repo.SetSession(ctx, session))

		got, err := repo.GetSession(ctx, "date-rt")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "2026-06-01", got.GetTime(models.DraftDate).Format(models.DateLayout))
	})

	t.Run("GetNonExistentSession", func(t *testing.T) {
		got, err := repo.GetSession(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ClearSession", func(t *testing.T) {
		session := &models.Session{ID: "to-clear", Step: models.StepGreeting}
		require.NoError(t, repo.SetSession(ctx, session))

		err := repo.ClearSession(ctx, "to-clear")
		require.NoError(t, err)

		got, _ := repo.GetSession(ctx, "to-clear")
		assert.Nil(t, got)
	})

	t.Run("SessionExpires", func(t *testing.T) {
		short := NewRedisSessionRepository(client, time.Minute)
		session := &models.Session{ID: "short-lived", Step: models.StepGreeting}
		require.NoError(t, short.SetSession(ctx, session))

		s.FastForward(time.Minute + time.Second)

		got, err := short.GetSession(ctx, "short-lived")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("RateLimit", func(t *testing.T) {
		id := "session-789"
		limit := 2
		window := time.Second

		allowed, err := repo.CheckRateLimit(ctx, id, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.CheckRateLimit(ctx, id, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		// Third request exceeds the limit.
		allowed, err = repo.CheckRateLimit(ctx, id, limit, window)
		require.NoError(t, err)
		assert.False(t, allowed)

		s.FastForward(window + time.Millisecond)

		allowed, err = repo.CheckRateLimit(ctx, id, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("NilClient", func(t *testing.T) {
		repo := NewRedisSessionRepository(nil, time.Hour)
		_, err := repo.GetSession(ctx, "x")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "redis client is nil")
	})

	t.Run("Ping", func(t *testing.T) {
		err := Ping(ctx, client)
		assert.NoError(t, err)
	})

	t.Run("Close", func(t *testing.T) {
		err := Close(client)
		assert.NoError(t, err)
	})
}
