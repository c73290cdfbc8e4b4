package vulkan

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSafeQueueCallSerializesFamily(t *testing.T) {
	locks := NewQueueLocks(0, 1)

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = locks.SafeQueueCall(0, func() error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Errorf("%d callers inside one family at once", maxInside)
	}
}

func TestSafeQueueCallFamiliesIndependent(t *testing.T) {
	locks := NewQueueLocks(0)

	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = locks.SafeQueueCall(0, func() error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	// Family 3 was never registered; it gets its own lock on first use.
	done := make(chan struct{})
	go func() {
		_ = locks.SafeQueueCall(3, func() error { return nil })
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("call on another family blocked")
	}
	close(release)
}
