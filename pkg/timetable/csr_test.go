package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildCSRFlattensBucketsInOrder(t *testing.T) {
	buckets := [][]string{
		{"a0", "a1"},
		{},
		{"c0"},
	}
	entries, offsets := buildCSR[int32](buckets)

	assert.Equal(t, []string{"a0", "a1", "c0"}, entries)
	assert.Equal(t, []int32{0, 2, 2, 3}, offsets)
}

func TestBuildCSREmptyInput(t *testing.T) {
	entries, offsets := buildCSR[int32]([][]int{})
	assert.Empty(t, entries)
	assert.Equal(t, []int32{0}, offsets)
}
