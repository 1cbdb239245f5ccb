package shutdown

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShutdownReverseOrderOnce(t *testing.T) {
	m := NewManager(nil)

	var mu sync.Mutex
	var order []string
	add := func(name string) {
		m.Register(name, Func(func() {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
		}))
	}
	add("first")
	add("second")
	add("third")

	m.Shutdown()
	m.Shutdown()

	assert.Equal(t, []string{"third", "second", "first"}, order)

	select {
	case <-m.Done():
	default:
		t.Fatal("done channel not closed")
	}
}

func TestShutdownTimeoutDoesNotBlock(t *testing.T) {
	m := NewManager(nil)
	m.setTimeout(20 * time.Millisecond)

	release := make(chan struct{})
	defer close(release)
	m.Register("stuck", Func(func() { <-release }))

	ran := false
	m.Register("fast", Func(func() { ran = true }))

	start := time.Now()
	m.Shutdown()

	assert.True(t, ran)
	assert.Less(t, time.Since(start), 5*time.Second)
}
