package watch

import (
	"fmt"
	"sync"
	"testing"
)

func TestQueue_FIFODrain(t *testing.T) {
	q := NewQueue(10)
	q.Push("a")
	q.Push("b")
	q.Push("c")

	got := q.Drain(2)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("got %v, want [a b]", got)
	}
	got = q.Drain(5)
	if len(got) != 1 || got[0] != "c" {
		t.Errorf("got %v, want [c]", got)
	}
	if got := q.Drain(5); got != nil {
		t.Errorf("drain of empty queue returned %v", got)
	}
}

func TestQueue_DrainNeverReturnsTwice(t *testing.T) {
	q := NewQueue(10)
	for i := 0; i < 6; i++ {
		q.Push(fmt.Sprintf("alert-%d", i))
	}

	seen := make(map[string]bool)
	for {
		batch := q.Drain(2)
		if len(batch) == 0 {
			break
		}
		for _, msg := range batch {
			if seen[msg] {
				t.Fatalf("entry %q returned twice", msg)
			}
			seen[msg] = true
		}
	}
	if len(seen) != 6 {
		t.Errorf("drained %d entries, want 6", len(seen))
	}
}

func TestQueue_EvictsOldestWhenFull(t *testing.T) {
	q := NewQueue(3)
	for i := 0; i < 5; i++ {
		q.Push(fmt.Sprintf("alert-%d", i))
	}
	if q.Len() != 3 {
		t.Fatalf("got len %d, want 3", q.Len())
	}
	got := q.Drain(3)
	if got[0] != "alert-2" || got[2] != "alert-4" {
		t.Errorf("oldest entries should be evicted, got %v", got)
	}
}

func TestQueue_ZeroCapUsesDefault(t *testing.T) {
	q := NewQueue(0)
	q.Push("a")
	if q.Len() != 1 {
		t.Errorf("got len %d, want 1", q.Len())
	}
}

func TestQueue_ConcurrentPushDrain(t *testing.T) {
	q := NewQueue(10000)
	const producers = 4
	const perProducer = 250

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(fmt.Sprintf("p%d-%d", p, i))
			}
		}(p)
	}

	var mu sync.Mutex
	seen := make(map[string]bool)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			batch := q.Drain(7)
			mu.Lock()
			for _, msg := range batch {
				if seen[msg] {
					t.Errorf("entry %q seen twice", msg)
				}
				seen[msg] = true
			}
			n := len(seen)
			mu.Unlock()
			if n == producers*perProducer {
				return
			}
		}
	}()

	wg.Wait()
	<-done

	if len(seen) != producers*perProducer {
		t.Errorf("drained %d entries, want %d", len(seen), producers*perProducer)
	}
}
