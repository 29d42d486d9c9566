package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundedPoolExhaustion(t *testing.T) {
	p := newBoundedPool(256, 64) // ceil((256/64)/2) = 2 slots
	a := p.acquire()
	require.NotNil(t, a)
	b := p.acquire()
	require.NotNil(t, b)

	assert.Nil(t, p.acquire(), "pool should be exhausted")

	p.release(a)
	c := p.acquire()
	assert.NotNil(t, c, "released slot should be reusable")
}

func TestBoundedPoolMinimumOneSlot(t *testing.T) {
	p := newBoundedPool(64, 64) // ceil((64/64)/2) = 1
	assert.NotNil(t, p.acquire())
	assert.Nil(t, p.acquire())
}

func TestAmortizedPoolGrowsAndRecycles(t *testing.T) {
	p := newAmortizedPool()
	a := p.acquire()
	require.NotNil(t, a)
	b := p.acquire()
	require.NotNil(t, b)
	assert.NotSame(t, a, b)

	p.release(a)
	c := p.acquire()
	assert.Same(t, a, c, "acquire should recycle the released node")
}

func TestAcquiredNodesAreZeroed(t *testing.T) {
	for _, p := range []nodeStorage{newBoundedPool(256, 64), newAmortizedPool()} {
		s := p.acquire()
		s.Base, s.Length = 42, 99
		p.release(s)
		s2 := p.acquire()
		assert.Equal(t, uint64(0), s2.Base)
		assert.Equal(t, uint64(0), s2.Length)
	}
}
