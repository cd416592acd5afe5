package dedup

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGate_AcceptsEachNewTitleOnce(t *testing.T) {
	gate := NewGate(map[string]struct{}{"A": {}})

	var passed []string
	for _, title := range []string{"A", "B", "A", "C"} {
		if gate.Accept(title) {
			passed = append(passed, title)
		}
	}

	assert.Equal(t, []string{"B", "C"}, passed)
	assert.Equal(t, []string{"B", "C"}, gate.Accepted())
	assert.False(t, gate.Accept("B"))
}

func TestGate_DoesNotMutateStoredSet(t *testing.T) {
	stored := map[string]struct{}{"A": {}}
	gate := NewGate(stored)

	assert.True(t, gate.Accept("B"))
	assert.Len(t, stored, 1)
}

func TestGate_NilStoredSet(t *testing.T) {
	gate := NewGate(nil)
	assert.True(t, gate.Accept("A"))
	assert.False(t, gate.Accept("A"))
}

func TestGate_ConcurrentAccept(t *testing.T) {
	gate := NewGate(nil)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins = map[string]int{}
	)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				title := fmt.Sprintf("case-%d", i)
				if gate.Accept(title) {
					mu.Lock()
					wins[title]++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	assert.Len(t, wins, 50)
	for title, n := range wins {
		assert.Equal(t, 1, n, title)
	}
	assert.Len(t, gate.Accepted(), 50)
}
