package usecase

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOwnerLocks_SerializesSameOwner(t *testing.T) {
	l := newOwnerLocks()

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := l.acquire("u1")
			defer release()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
	// 使い終わったエントリは残らない
	assert.Equal(t, 0, l.size())
}

// 別ownerのロックは互いに待たない
func TestOwnerLocks_DifferentOwnersIndependent(t *testing.T) {
	l := newOwnerLocks()

	releaseA := l.acquire("a")
	done := make(chan struct{})
	go func() {
		release := l.acquire("b")
		release()
		close(done)
	}()
	<-done

	assert.Equal(t, 1, l.size())
	releaseA()
	assert.Equal(t, 0, l.size())
}
