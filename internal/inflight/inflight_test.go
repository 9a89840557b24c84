package inflight

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardRejectsDuplicate(t *testing.T) {
	g := New()

	release, err := g.Acquire("create")
	require.NoError(t, err)
	assert.True(t, g.Busy("create"))
	assert.True(t, g.Any())

	_, err = g.Acquire("create")
	assert.ErrorIs(t, err, ErrBusy)

	// Other keys are independent
	releaseOther, err := g.Acquire("delete:1")
	require.NoError(t, err)
	releaseOther()

	release()
	release() // idempotent
	assert.False(t, g.Busy("create"))
	assert.False(t, g.Any())

	release, err = g.Acquire("create")
	require.NoError(t, err)
	release()
}

func TestGuardOnlyOneWinnerUnderContention(t *testing.T) {
	g := New()
	var winners int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	releases := make(chan func(), 32)

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if release, err := g.Acquire("op"); err == nil {
				atomic.AddInt32(&winners, 1)
				releases <- release
			}
		}()
	}
	close(start)
	wg.Wait()
	close(releases)

	assert.Equal(t, int32(1), winners)
	for r := range releases {
		r()
	}
}
