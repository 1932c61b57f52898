package lock

import (
	"sync"
	"testing"
	"time"
)

func TestKeyed_SerializesSameKey(t *testing.T) {
	k := NewKeyed()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("doc-1")
			defer unlock()

			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("max concurrent holders = %d, want 1", maxSeen)
	}
	if k.Len() != 0 {
		t.Errorf("Len = %d after all unlocks", k.Len())
	}
}

func TestKeyed_DifferentKeysIndependent(t *testing.T) {
	k := NewKeyed()
	unlockA := k.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := k.Lock("b")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on b blocked behind a")
	}
}

func TestKeyed_UnlockIdempotent(t *testing.T) {
	k := NewKeyed()
	unlock := k.Lock("a")
	unlock()
	unlock()
	if k.Len() != 0 {
		t.Errorf("Len = %d", k.Len())
	}
	again := k.Lock("a")
	again()
}
