// Copyright 2026 The jdipipeline Authors
// SPDX-License-Identifier: Apache-2.0

package memo

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
)

func TestGetCachesOnHit(t *testing.T) {
	var computeCount atomic.Int32
	cell := New(
		func(i int) int { return i },
		func(i int) (string, error) {
			computeCount.Add(1)
			return fmt.Sprintf("value-%d", i), nil
		},
		func(int) bool { return false },
	)

	first, err := cell.Get(1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	second, err := cell.Get(1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if first != second {
		t.Errorf("first = %q, second = %q, want equal", first, second)
	}
	if computeCount.Load() != 1 {
		t.Errorf("compute called %d times, want exactly 1", computeCount.Load())
	}
}

func TestGetRecomputesWhenInvalid(t *testing.T) {
	var computeCount atomic.Int32
	invalid := false
	cell := New(
		func(i int) int { return i },
		func(i int) (string, error) {
			computeCount.Add(1)
			return fmt.Sprintf("value-%d-%d", i, computeCount.Load()), nil
		},
		func(int) bool { return invalid },
	)

	if _, err := cell.Get(1); err != nil {
		t.Fatalf("Get: %v", err)
	}

	invalid = true
	if _, err := cell.Get(1); err != nil {
		t.Fatalf("Get: %v", err)
	}

	if computeCount.Load() != 2 {
		t.Errorf("compute called %d times after invalidation, want 2", computeCount.Load())
	}
}

func TestGetPropagatesComputeError(t *testing.T) {
	wantErr := fmt.Errorf("boom")
	cell := New(
		func(i int) int { return i },
		func(i int) (string, error) { return "", wantErr },
		func(int) bool { return false },
	)

	_, err := cell.Get(1)
	if err != wantErr {
		t.Errorf("Get error = %v, want %v", err, wantErr)
	}
}

func TestGetConcurrentMissesComputeOnce(t *testing.T) {
	var computeCount atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{}, 10)

	cell := New(
		func(i int) int { return i },
		func(i int) (int, error) {
			computeCount.Add(1)
			started <- struct{}{}
			<-release
			return i * 10, nil
		},
		func(int) bool { return false },
	)

	var wg sync.WaitGroup
	results := make([]int, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			out, err := cell.Get(5)
			if err != nil {
				t.Errorf("Get: %v", err)
				return
			}
			results[idx] = out
		}(i)
	}

	<-started
	close(release)
	wg.Wait()

	if computeCount.Load() != 1 {
		t.Errorf("compute called %d times for concurrent misses on the same key, want exactly 1", computeCount.Load())
	}
	for _, r := range results {
		if r != 50 {
			t.Errorf("result = %d, want 50", r)
		}
	}
}

func TestForgetDropsCachedEntry(t *testing.T) {
	var computeCount atomic.Int32
	cell := New(
		func(i int) int { return i },
		func(i int) (int, error) {
			computeCount.Add(1)
			return i, nil
		},
		func(int) bool { return false },
	)

	if _, err := cell.Get(1); err != nil {
		t.Fatalf("Get: %v", err)
	}
	cell.Forget(1)
	if _, err := cell.Get(1); err != nil {
		t.Fatalf("Get: %v", err)
	}

	if computeCount.Load() != 2 {
		t.Errorf("compute called %d times after Forget, want 2 (forced miss)", computeCount.Load())
	}
}

func TestGetDistinguishesKeys(t *testing.T) {
	cell := New(
		func(i int) int { return i },
		func(i int) (int, error) { return i * 100, nil },
		func(int) bool { return false },
	)

	a, err := cell.Get(1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	b, err := cell.Get(2)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if a == b {
		t.Errorf("distinct keys produced the same cached value: %d", a)
	}
}
