package engine

import "sync"

// LockArena hands out one mutex per workflow id so unrelated workflows run
// concurrently while a single workflow never runs twice at once.
type LockArena struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLockArena() *LockArena {
	return &LockArena{locks: make(map[string]*sync.Mutex)}
}

func (a *LockArena) get(workflowId string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	lock, ok := a.locks[workflowId]
	if !ok {
		lock = &sync.Mutex{}
		a.locks[workflowId] = lock
	}
	return lock
}

// TryAcquire returns false without blocking when the workflow is already
// executing; the caller records the attempt as skipped.
func (a *LockArena) TryAcquire(workflowId string) bool {
	return a.get(workflowId).TryLock()
}

func (a *LockArena) Release(workflowId string) {
	a.get(workflowId).Unlock()
}
