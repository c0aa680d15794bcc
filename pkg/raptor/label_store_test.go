package raptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabelStoreUpdateBestFirstWriteAlwaysWins(t *testing.T) {
	store := NewLabelStore(ForwardDirection, 4, 4)
	l := Label{Arrival: NewDateTime(0, 100), Kind: KindVehicle}
	improved := store.UpdateBest(1, 0, l)
	assert.True(t, improved)
	assert.Equal(t, l, store.Best(0))
	assert.Equal(t, 1, store.BestRound(0))
}

// This governs LabelStore.UpdateBest's own bookkeeping of B[rp] only.
// TransferRelaxer.relaxFootPaths writes L[k][rp] through a separate
// equal-or-better acceptance rule (offerEqualOrBetter) precisely
// because spec.md §4.3(b) requires the opposite behavior for the
// per-round label array; see transfer_relaxer_test.go.
func TestLabelStoreUpdateBestRejectsEqualAfterFirstWrite(t *testing.T) {
	store := NewLabelStore(ForwardDirection, 4, 4)
	first := Label{Arrival: NewDateTime(0, 100), Kind: KindVehicle}
	store.UpdateBest(1, 0, first)

	tie := Label{Arrival: NewDateTime(0, 100), Kind: KindTransferWalk}
	improved := store.UpdateBest(2, 0, tie)
	assert.False(t, improved, "equal instant must not overwrite an already-discovered best")
	assert.Equal(t, first, store.Best(0))
}

func TestLabelStoreUpdateBestAcceptsStrictImprovement(t *testing.T) {
	store := NewLabelStore(ForwardDirection, 4, 4)
	store.UpdateBest(1, 0, Label{Arrival: NewDateTime(0, 200), Kind: KindVehicle})
	improved := store.UpdateBest(2, 0, Label{Arrival: NewDateTime(0, 100), Kind: KindVehicle})
	assert.True(t, improved)
	assert.Equal(t, 2, store.BestRound(0))
}

func TestLabelStoreCopyRoundCarriesForwardUnimproved(t *testing.T) {
	store := NewLabelStore(ForwardDirection, 2, 2)
	l := Label{Arrival: NewDateTime(0, 50), Kind: KindOrigin}
	store.Set(0, 0, l)
	store.CopyRound(0, 1)
	assert.Equal(t, l, store.Get(1, 0))
}

func TestLabelStoreMarksTrackAscendingOrder(t *testing.T) {
	store := NewLabelStore(ForwardDirection, 10, 10)
	store.MarkRP(7)
	store.MarkRP(2)
	store.MarkSP(5)

	var rps []RoutePointIdx
	store.MarkedRoutePoints(func(rp RoutePointIdx) { rps = append(rps, rp) })
	assert.Equal(t, []RoutePointIdx{2, 7}, rps)

	assert.True(t, store.IsMarkedSP(5))
	store.ClearMarks()
	assert.False(t, store.IsMarkedSP(5))
}

func TestLabelStoreVisitedStopPointsSurvivesClearMarks(t *testing.T) {
	store := NewLabelStore(ForwardDirection, 10, 10)
	store.MarkSP(1)
	store.MarkSP(2)
	store.ClearMarks() // simulates the round driver starting a new round

	store.MarkSP(2) // rediscovered in a later round, not a new stop-point
	store.MarkSP(3)

	assert.Equal(t, 3, store.VisitedStopPoints())
	assert.False(t, store.IsMarkedSP(1), "ClearMarks still resets the per-round mark")
}

func TestLabelStoreVisitedStopPointsResetsWithStore(t *testing.T) {
	store := NewLabelStore(ForwardDirection, 10, 10)
	store.MarkSP(4)
	store.Reset()
	assert.Equal(t, 0, store.VisitedStopPoints())
}
