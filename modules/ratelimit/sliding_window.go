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
	"fmt"
	"math/bits"
	"time"

	"app/modules/clock"
)

var _ RateLimiter = (*SlidingWindowRateLimiter)(nil)

// SlidingWindowRateLimiter approximates a sliding window with two adjacent
// fixed windows: the previous window's count is weighted by how much of it
// still overlaps the sliding window ending now.
//
// All arithmetic is integer-only (128-bit via math/bits) so two requests
// arriving in the same nanosecond never observe a rounded-away difference.
type SlidingWindowRateLimiter struct {
	clock     clock.Clock
	counter   CounterStore
	keyPrefix string

	limit  uint64
	window time.Duration
}

func SlidingWindowFactory(clock clock.Clock, counter CounterStore, keyPrefix string) LimiterFactory {
	return func(l int64, w time.Duration) RateLimiter {
		return &SlidingWindowRateLimiter{
			clock:     clock,
			counter:   counter,
			keyPrefix: keyPrefix,
			limit:     uint64(l),
			window:    w,
		}
	}
}

// uint128 is a weighted usage value in count*nanosecond units. A full window
// of requests at the limit can overflow 64 bits, hence the wide type.
type uint128 struct{ hi, lo uint64 }

func mul128(a, b uint64) uint128 {
	hi, lo := bits.Mul64(a, b)
	return uint128{hi, lo}
}

func (u uint128) add(v uint128) uint128 {
	lo, carry := bits.Add64(u.lo, v.lo, 0)
	hi, _ := bits.Add64(u.hi, v.hi, carry)
	return uint128{hi, lo}
}

func (u uint128) lte(v uint128) bool {
	return u.hi < v.hi || (u.hi == v.hi && u.lo <= v.lo)
}

// divCeil returns ceil(u / d), saturating at MaxUint64 when the quotient
// does not fit.
func (u uint128) divCeil(d uint64) uint64 {
	if u.hi >= d {
		return ^uint64(0)
	}
	if u.hi == 0 {
		return (u.lo + d - 1) / d
	}
	q, r := bits.Div64(u.hi, u.lo, d)
	if r != 0 && q != ^uint64(0) {
		q++
	}
	return q
}

// Allow implements RateLimiter.
func (s *SlidingWindowRateLimiter) Allow(ctx context.Context, key Key) (Result, error) {
	nowNs := s.clock.Now().UnixNano()
	windowNs := s.window.Nanoseconds()
	windowIdx := nowNs / windowNs

	currentCount, err := s.incrementWindow(ctx, key, windowIdx)
	if err != nil {
		return Result{}, err
	}
	previousCount, err := s.counter.Get(ctx, s.buildKey(key, windowIdx-1))
	if err != nil {
		return Result{}, err
	}
	currentCount = max(currentCount, 0)
	previousCount = max(previousCount, 0)

	elapsedNs := nowNs - windowIdx*windowNs
	elapsedNs = min(max(elapsedNs, 0), windowNs)
	previousWeightNs := windowNs - elapsedNs
	windowResetIn := max(s.window-time.Duration(elapsedNs), 0)

	// usage and budget share the count*window unit:
	//   usage  = current*window + previous*previous_weight
	//   budget = limit*window
	usage := mul128(uint64(currentCount), uint64(windowNs)).
		add(mul128(uint64(previousCount), uint64(previousWeightNs)))
	budget := mul128(s.limit, uint64(windowNs))

	var remaining uint64
	if used := usage.divCeil(uint64(windowNs)); used < s.limit {
		remaining = s.limit - used
	}

	result := Result{
		Allowed:       usage.lte(budget),
		Remaining:     int64(remaining),
		Limit:         int64(s.limit),
		Window:        s.window,
		WindowResetIn: windowResetIn,
	}
	if !result.Allowed {
		result.RetryAfter = windowResetIn
	}
	return result, nil
}

func (s *SlidingWindowRateLimiter) incrementWindow(ctx context.Context, key Key, windowIdx int64) (int64, error) {
	// keep the counter alive long enough to serve as the "previous" window
	return s.counter.Incr(ctx, s.buildKey(key, windowIdx), 2*s.window)
}

func (s *SlidingWindowRateLimiter) buildKey(key Key, windowIdx int64) string {
	return fmt.Sprintf("%s:%s:%d", s.keyPrefix, key, windowIdx)
}
