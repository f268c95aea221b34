// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"app/modules/clock"
)

type memCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newMemCounter() *memCounter {
	return &memCounter{counts: make(map[string]int64)}
}

func (m *memCounter) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.counts[key]++
	return m.counts[key], nil
}

func (m *memCounter) Get(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return m.counts[key], nil
}

// windowStart is aligned to a minute boundary so the first request lands at
// elapsed zero within its window.
var windowStart = time.Unix(600, 0)

func newTestLimiter(limit int64, window time.Duration) (*clock.ManualClock, RateLimiter, *memCounter) {
	clk := clock.NewManualClock(windowStart)
	counter := newMemCounter()
	limiter := SlidingWindowFactory(clk, counter, "rl:test")(limit, window)
	return clk, limiter, counter
}

func Test_SlidingWindow_EnforcesLimitWithinWindow(t *testing.T) {
	_, limiter, _ := newTestLimiter(5, time.Minute)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		res, err := limiter.Allow(ctx, "login")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i)
		assert.EqualValues(t, 5-i, res.Remaining, "request %d", i)
		assert.Zero(t, res.RetryAfter)
	}

	res, err := limiter.Allow(ctx, "login")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Zero(t, res.Remaining)
	assert.Equal(t, time.Minute, res.RetryAfter)
}

func Test_SlidingWindow_PreviousWindowWeighsIn(t *testing.T) {
	clk, limiter, _ := newTestLimiter(5, time.Minute)
	ctx := context.Background()

	// saturate the first window
	for i := 0; i < 5; i++ {
		res, err := limiter.Allow(ctx, "login")
		require.NoError(t, err)
		require.True(t, res.Allowed)
	}

	// halfway into the next window the previous five count at half weight
	clk.Advance(90 * time.Second)

	res, err := limiter.Allow(ctx, "login")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.EqualValues(t, 1, res.Remaining)

	res, err = limiter.Allow(ctx, "login")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Zero(t, res.Remaining)

	res, err = limiter.Allow(ctx, "login")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 30*time.Second, res.RetryAfter)
}

func Test_SlidingWindow_AllowanceRecoversAfterTwoWindows(t *testing.T) {
	clk, limiter, _ := newTestLimiter(5, time.Minute)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		_, err := limiter.Allow(ctx, "login")
		require.NoError(t, err)
	}

	clk.Advance(3 * time.Minute)

	res, err := limiter.Allow(ctx, "login")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.EqualValues(t, 4, res.Remaining)
}

func Test_SlidingWindow_KeysAreIndependent(t *testing.T) {
	_, limiter, _ := newTestLimiter(1, time.Minute)
	ctx := context.Background()

	res, err := limiter.Allow(ctx, "login")
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = limiter.Allow(ctx, "login")
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	res, err = limiter.Allow(ctx, "registration")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func Test_SlidingWindow_CounterFailurePropagates(t *testing.T) {
	_, limiter, counter := newTestLimiter(5, time.Minute)
	counter.err = errors.New("connection refused")

	_, err := limiter.Allow(context.Background(), "login")
	assert.ErrorContains(t, err, "connection refused")
}
