package utils

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestURLSetNoDuplicates(t *testing.T) {
	s := NewURLSet()

	if !s.Add("https://example.com/products/jogger") {
		t.Error("first Add should return true")
	}
	if s.Add("https://example.com/products/jogger") {
		t.Error("second Add of same URL should return false")
	}
	if !s.Contains("https://example.com/products/jogger") {
		t.Error("Contains should report the captured URL")
	}
	if s.Size() != 1 {
		t.Errorf("size: got %d, want 1", s.Size())
	}
}

func TestURLSetConcurrentWorkers(t *testing.T) {
	s := NewURLSet()
	var added int64

	pool := NewWorkerPool(10, 0)
	for i := 0; i < 100; i++ {
		pool.Submit(func() {
			if s.Add("https://example.com/products/same") {
				atomic.AddInt64(&added, 1)
			}
		})
	}
	pool.Wait()

	if added != 1 {
		t.Errorf("expected exactly 1 successful add, got %d", added)
	}
}

func TestWorkerPoolThrottle(t *testing.T) {
	minInterval := 100 * time.Millisecond
	pool := NewWorkerPool(1, minInterval)

	var timestamps []time.Time
	token := make(chan struct{}, 1)
	token <- struct{}{}

	for i := 0; i < 3; i++ {
		pool.Submit(func() {
			<-token
			timestamps = append(timestamps, time.Now())
			token <- struct{}{}
		})
	}
	pool.Wait()

	for i := 1; i < len(timestamps); i++ {
		if gap := timestamps[i].Sub(timestamps[i-1]); gap < minInterval {
			t.Errorf("gap between job %d and %d: %v < minimum %v", i-1, i, gap, minInterval)
		}
	}
}
