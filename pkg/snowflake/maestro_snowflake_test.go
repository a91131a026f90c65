package snowflake

import (
	"sync"
	"testing"
	"time"
)

func TestNewGeneratorInvalidWorkerID(t *testing.T) {
	if _, err := NewGenerator(-1); err != ErrInvalidWorkerID {
		t.Errorf("expected ErrInvalidWorkerID for -1, got %v", err)
	}
	if _, err := NewGenerator(1024); err != ErrInvalidWorkerID {
		t.Errorf("expected ErrInvalidWorkerID for 1024, got %v", err)
	}
	if _, err := NewGenerator(0); err != nil {
		t.Errorf("expected no error for 0, got %v", err)
	}
}

func TestGenerateUnique(t *testing.T) {
	g, err := NewGenerator(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := make(map[int64]bool)
	for i := 0; i < 10000; i++ {
		id := g.MustGenerate()
		if seen[id] {
			t.Fatalf("duplicate ID generated: %d", id)
		}
		seen[id] = true
	}
}

func TestGenerateMonotonic(t *testing.T) {
	g, _ := NewGenerator(1)

	prev := g.MustGenerate()
	for i := 0; i < 1000; i++ {
		id := g.MustGenerate()
		if id <= prev {
			t.Fatalf("IDs not monotonic: %d <= %d", id, prev)
		}
		prev = id
	}
}

func TestGenerateConcurrent(t *testing.T) {
	g, _ := NewGenerator(1)

	const workers = 8
	const perWorker = 1000

	var mu sync.Mutex
	seen := make(map[int64]bool)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := g.MustGenerate()
				mu.Lock()
				if seen[id] {
					t.Errorf("duplicate ID under concurrency: %d", id)
				}
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Errorf("expected %d unique IDs, got %d", workers*perWorker, len(seen))
	}
}

func TestTimestamp(t *testing.T) {
	g, _ := NewGenerator(1)

	before := time.Now().Add(-time.Second)
	id := g.MustGenerate()
	after := time.Now().Add(time.Second)

	ts := Timestamp(id)
	if ts.Before(before) || ts.After(after) {
		t.Errorf("timestamp %v outside window [%v, %v]", ts, before, after)
	}
}
