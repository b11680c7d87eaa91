package debounce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncerCollapsesBurst(t *testing.T) {
	d := New(30 * time.Millisecond)

	var mu sync.Mutex
	var fired []Token

	for i := 0; i < 5; i++ {
		d.Trigger(func(token Token) {
			mu.Lock()
			fired = append(fired, token)
			mu.Unlock()
		})
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, fired, 1)
	assert.Equal(t, Token(5), fired[0])
}

func TestDebouncerStop(t *testing.T) {
	d := New(20 * time.Millisecond)

	fired := make(chan Token, 1)
	d.Trigger(func(token Token) { fired <- token })
	d.Stop()

	select {
	case <-fired:
		t.Fatal("stopped debouncer must not fire")
	case <-time.After(60 * time.Millisecond):
	}
}

func TestDebouncerSpacedTriggersAllFire(t *testing.T) {
	d := New(10 * time.Millisecond)

	var mu sync.Mutex
	count := 0

	for i := 0; i < 3; i++ {
		d.Trigger(func(Token) {
			mu.Lock()
			count++
			mu.Unlock()
		})
		time.Sleep(40 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, count)
}

func TestGuardRejectsStaleResults(t *testing.T) {
	var g Guard

	first := g.Next()
	second := g.Next()

	// The newer result lands first; the older one must be discarded
	assert.True(t, g.Accept(second))
	assert.False(t, g.Accept(first))

	third := g.Next()
	assert.True(t, g.Accept(third))
}

func TestGuardStale(t *testing.T) {
	var g Guard

	first := g.Next()
	assert.False(t, g.Stale(first))

	g.Next()
	assert.True(t, g.Stale(first))
}

func TestGuardConcurrentAcceptKeepsNewest(t *testing.T) {
	var g Guard

	tokens := make([]Token, 50)
	for i := range tokens {
		tokens[i] = g.Next()
	}

	var wg sync.WaitGroup
	for _, token := range tokens {
		wg.Add(1)
		go func(tk Token) {
			defer wg.Done()
			g.Accept(tk)
		}(token)
	}
	wg.Wait()

	// Whatever interleaving happened, the newest token wins
	assert.False(t, g.Accept(tokens[len(tokens)-1]))
	assert.True(t, g.Accept(g.Next()))
}
