package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetRedisForTesting(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	return mr
}

func TestEnqueueDequeueRoundTrip(t *testing.T) {
	setupRedis(t)

	job := VerificationJob{
		Name:      "Artem",
		Email:     "artem@example.com",
		VerifyURL: "http://localhost:8080/api/users/verify/abc",
	}
	require.NoError(t, EnqueueVerificationEmail(job))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got, err := DequeueVerificationJob(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, job, *got)
}

func TestDequeueEmptyQueueReturnsNil(t *testing.T) {
	mr := setupRedis(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// miniredis does not block on BRPOP with a waiting timeout the way a real
	// server does; fast-forward past the timeout instead.
	go func() {
		time.Sleep(50 * time.Millisecond)
		mr.FastForward(2 * time.Second)
	}()

	got, err := DequeueVerificationJob(ctx, 100*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestQueueOrderIsFIFO(t *testing.T) {
	setupRedis(t)

	require.NoError(t, EnqueueVerificationEmail(VerificationJob{Email: "first@example.com"}))
	require.NoError(t, EnqueueVerificationEmail(VerificationJob{Email: "second@example.com"}))

	ctx := context.Background()
	first, err := DequeueVerificationJob(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "first@example.com", first.Email)

	second, err := DequeueVerificationJob(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, "second@example.com", second.Email)
}
