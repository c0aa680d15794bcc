package raptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDestinationTrackerEgressConsistency verifies spec.md §9 Open
// Question 1's resolution: egress duration is always distance/1.38
// regardless of direction, never the original implementation's
// suspected meters/seconds mixup.
func TestDestinationTrackerEgressConsistency(t *testing.T) {
	fwd := NewDestinationTracker(ForwardDirection, 2)
	fwd.SetEgress(0, 138) // 138m / 1.38 m/s = 100s

	improved := fwd.Consider(0, NewDateTime(0, 1000))
	assert.True(t, improved)
	assert.Equal(t, NewDateTime(0, 1100), fwd.Bound())

	rev := NewDestinationTracker(ReverseDirection, 2)
	rev.SetEgress(0, 138)
	rev.Consider(0, NewDateTime(0, 1000))
	assert.Equal(t, NewDateTime(0, 900), rev.Bound())
}

func TestDestinationTrackerPruneRespectsBoundAndEquality(t *testing.T) {
	tr := NewDestinationTracker(ForwardDirection, 2)
	tr.SetEgress(0, 0)
	tr.Consider(0, NewDateTime(0, 1000))

	assert.False(t, tr.Prune(NewDateTime(0, 999)))  // strictly better
	assert.False(t, tr.Prune(NewDateTime(0, 1000))) // equal, not pruned
	assert.True(t, tr.Prune(NewDateTime(0, 1001)))  // worse, pruned
}

func TestDestinationTrackerNoEgressNeverImproves(t *testing.T) {
	tr := NewDestinationTracker(ForwardDirection, 2)
	improved := tr.Consider(1, NewDateTime(0, 1000))
	assert.False(t, improved)
	assert.False(t, tr.HasEgress(1))
}

func TestDestinationTrackerResetClearsBoundAndEgress(t *testing.T) {
	tr := NewDestinationTracker(ForwardDirection, 2)
	tr.SetEgress(0, 138)
	tr.Consider(0, NewDateTime(0, 1000))
	tr.Reset()
	assert.False(t, tr.HasEgress(0))
	assert.Equal(t, DateTimeMIN, tr.Bound())
}
