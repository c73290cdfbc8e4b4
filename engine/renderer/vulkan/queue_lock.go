package vulkan

import "sync"

// QueueLocks serializes access to queues. vkQueueSubmit and vkQueuePresentKHR
// require external synchronization of the queue, and several roles may share
// one family (and therefore one VkQueue).
type QueueLocks struct {
	mu sync.Mutex // Protects access to the locks map

	locks map[uint32]*sync.Mutex // Queue family index as key
}

func NewQueueLocks(families ...uint32) *QueueLocks {
	q := &QueueLocks{
		locks: make(map[uint32]*sync.Mutex, len(families)),
	}
	for _, f := range families {
		q.Register(f)
	}
	return q
}

// Register makes sure a mutex exists for the family.
func (q *QueueLocks) Register(family uint32) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.locks[family]; !exists {
		q.locks[family] = &sync.Mutex{}
	}
}

func (q *QueueLocks) lock(family uint32) *sync.Mutex {
	q.mu.Lock()
	l, exists := q.locks[family]
	if !exists {
		l = &sync.Mutex{}
		q.locks[family] = l
	}
	q.mu.Unlock()

	l.Lock()
	return l
}

// SafeQueueCall runs fn while holding the family's queue lock. The map lock
// is released before fn runs so different families never block each other.
func (q *QueueLocks) SafeQueueCall(family uint32, fn func() error) error {
	l := q.lock(family)
	defer l.Unlock()

	return fn()
}
