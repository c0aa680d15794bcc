package raptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitsetSetClearTest(t *testing.T) {
	b := NewBitset(130)
	assert.False(t, b.Test(5))
	b.Set(5)
	b.Set(127)
	assert.True(t, b.Test(5))
	assert.True(t, b.Test(127))
	assert.Equal(t, 2, b.Count())

	b.Clear(5)
	assert.False(t, b.Test(5))
	assert.Equal(t, 1, b.Count())
}

func TestBitsetForEachAscending(t *testing.T) {
	b := NewBitset(200)
	for _, i := range []int{3, 130, 64, 1, 199} {
		b.Set(i)
	}
	var seen []int
	b.ForEach(func(i int) { seen = append(seen, i) })
	assert.Equal(t, []int{1, 3, 64, 130, 199}, seen)
}

func TestBitsetResetClearsAllBits(t *testing.T) {
	b := NewBitset(64)
	b.Set(1)
	b.Set(2)
	b.Reset()
	assert.Equal(t, 0, b.Count())
}

func TestBitsetResizePreservesBits(t *testing.T) {
	b := NewBitset(10)
	b.Set(3)
	b.Resize(200)
	assert.True(t, b.Test(3))
	b.Set(150)
	assert.True(t, b.Test(150))
}
