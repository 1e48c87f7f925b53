package utils

import "sync"

// KeyedMutex hands out one mutex per key. It backs the per-event and
// per-participant critical sections: operations for different keys
// proceed in parallel, operations for the same key serialize.
type KeyedMutex struct {
	locks sync.Map // key -> *sync.Mutex
}

// Lock acquires the mutex for key and returns its unlock func.
func (k *KeyedMutex) Lock(key string) func() {
	v, _ := k.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
