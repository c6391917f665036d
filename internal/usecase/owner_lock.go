package usecase

import "sync"

// owner_idごとの排他。使われていないエントリは解放時に消す。
type ownerLocks struct {
	mu    sync.Mutex
	locks map[string]*ownerLock
}

type ownerLock struct {
	mu   sync.Mutex
	refs int
}

func newOwnerLocks() *ownerLocks {
	return &ownerLocks{locks: make(map[string]*ownerLock)}
}

// ownerIDのロックを取り、解放関数を返す
func (l *ownerLocks) acquire(ownerID string) func() {
	l.mu.Lock()
	lk, ok := l.locks[ownerID]
	if !ok {
		lk = &ownerLock{}
		l.locks[ownerID] = lk
	}
	lk.refs++
	l.mu.Unlock()

	lk.mu.Lock()

	return func() {
		lk.mu.Unlock()

		l.mu.Lock()
		lk.refs--
		if lk.refs == 0 {
			delete(l.locks, ownerID)
		}
		l.mu.Unlock()
	}
}

// 保持中のエントリ数
func (l *ownerLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
