package store

import "sync"

// recordLocks serializes mutations per backing record so interleaved
// read-modify-write cycles on the same lecture or session cannot lose
// updates, while operations on different records proceed in parallel.
type recordLocks struct {
	locks sync.Map // map[string]*sync.Mutex
}

// acquire returns the mutex for a record key, creating it on first use
func (rl *recordLocks) acquire(key string) *sync.Mutex {
	muInterface, _ := rl.locks.LoadOrStore(key, &sync.Mutex{})
	return muInterface.(*sync.Mutex)
}

// release drops the lock entry for a deleted record
func (rl *recordLocks) release(key string) {
	rl.locks.Delete(key)
}
