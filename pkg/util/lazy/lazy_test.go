package lazy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCellStartsUnresolved(t *testing.T) {
	c := NewCell[int]()
	assert.Equal(t, Unresolved, c.State())
	assert.False(t, c.IsResolved())
}

func TestResolveRunsComputeOnceAndCaches(t *testing.T) {
	c := NewCell[int]()
	calls := 0
	compute := func() int {
		calls++
		return 42
	}
	//
	v, ok := c.Resolve(compute)
	assert.True(t, ok)
	assert.Equal(t, 42, v)
	assert.True(t, c.IsResolved())
	//
	v2, ok2 := c.Resolve(compute)
	assert.True(t, ok2)
	assert.Equal(t, 42, v2)
	assert.Equal(t, 1, calls)
}

func TestResolveReentrantCallIsCycle(t *testing.T) {
	c := NewCell[int]()
	var sawCycle bool
	//
	c.Resolve(func() int {
		_, ok := c.Resolve(func() int { return 1 })
		sawCycle = !ok
		return 7
	})
	//
	assert.True(t, sawCycle)
	assert.Equal(t, 7, c.Value())
}
