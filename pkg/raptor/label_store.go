package raptor

// LabelStore owns the per-round label array L[k][rp], the best-so-far
// label B[rp] across all rounds, and the marked_rp/marked_sp bitsets
// (spec.md §3/§4.2). One LabelStore is created per Session and reused
// across every query the session runs, following the teacher's
// session-owned mutable buffer pattern (fBufPool/bBufPool in
// pkg/engine): allocate once, Reset between queries instead of
// reallocating.
type LabelStore struct {
	dir Direction

	numRoutePoints int
	numStopPoints  int

	rounds [][]Label // rounds[k][rp], grown lazily as rounds proceed
	best   []Label   // B[rp]
	// bestRound[rp] is the round at which best[rp] was recorded, needed
	// by the path reconstructor to know which round's array to keep
	// walking predecessors through.
	bestRound []int

	markedRP *Bitset
	markedSP *Bitset

	// visitedSP accumulates every stop-point MarkSP has ever touched
	// across the whole search, surviving the per-round ClearMarks calls
	// that markedSP itself is subject to. A stop-point whose only label
	// was consumed by the destination tracker is never marked, so it is
	// not counted here.
	visitedSP *Bitset
}

func NewLabelStore(dir Direction, numRoutePoints, numStopPoints int) *LabelStore {
	s := &LabelStore{
		dir:            dir,
		numRoutePoints: numRoutePoints,
		numStopPoints:  numStopPoints,
		best:           make([]Label, numRoutePoints),
		bestRound:      make([]int, numRoutePoints),
		markedRP:       NewBitset(numRoutePoints),
		markedSP:       NewBitset(numStopPoints),
		visitedSP:      NewBitset(numStopPoints),
	}
	s.EnsureRound(0)
	return s
}

// Reset clears every label and mark, keeping the underlying arrays'
// capacity so a session can run many queries without reallocating.
func (s *LabelStore) Reset() {
	for k := range s.rounds {
		row := s.rounds[k]
		for i := range row {
			row[i] = UninitializedLabel
		}
	}
	for i := range s.best {
		s.best[i] = UninitializedLabel
		s.bestRound[i] = 0
	}
	s.markedRP.Reset()
	s.markedSP.Reset()
	s.visitedSP.Reset()
}

// EnsureRound grows the round table so round k exists, initialized to
// UninitializedLabel.
func (s *LabelStore) EnsureRound(k int) {
	for len(s.rounds) <= k {
		row := make([]Label, s.numRoutePoints)
		for i := range row {
			row[i] = UninitializedLabel
		}
		s.rounds = append(s.rounds, row)
	}
}

// CopyRound initializes round to's label array from round from's,
// implementing the "a route-stop keeps its best label if this round
// doesn't improve it" convention: every round starts as a copy of the
// previous one, and the round scanner only ever overwrites entries it
// strictly improves.
func (s *LabelStore) CopyRound(from, to int) {
	s.EnsureRound(to)
	copy(s.rounds[to], s.rounds[from])
}

// Get returns L[k][rp].
func (s *LabelStore) Get(k int, rp RoutePointIdx) Label {
	return s.rounds[k][rp]
}

// Set writes L[k][rp].
func (s *LabelStore) Set(k int, rp RoutePointIdx, l Label) {
	s.rounds[k][rp] = l
}

// Best returns B[rp], the best label found across every round so far.
func (s *LabelStore) Best(rp RoutePointIdx) Label {
	return s.best[rp]
}

// UpdateBest overwrites B[rp] with l if l strictly improves on the
// current best, returning whether it did. Per spec.md §9 "equality
// writes on first discovery": when l's instant ties the current best
// exactly, the write still happens the first time a route-stop is
// reached (Kind transitions away from KindUninitialized), so a
// same-instant label discovered in round 0 is not silently discarded
// in favor of nothing.
func (s *LabelStore) UpdateBest(round int, rp RoutePointIdx, l Label) bool {
	cur := s.best[rp]
	if cur.Kind == KindUninitialized || s.dir.Better(l.Instant(s.dir), cur.Instant(s.dir)) {
		s.best[rp] = l
		s.bestRound[rp] = round
		return true
	}
	return false
}

// BestRound returns the round at which Best(rp) was recorded.
func (s *LabelStore) BestRound(rp RoutePointIdx) int {
	return s.bestRound[rp]
}

func (s *LabelStore) MarkRP(rp RoutePointIdx) { s.markedRP.Set(int(rp)) }

func (s *LabelStore) MarkSP(sp StopPointIdx) {
	s.markedSP.Set(int(sp))
	s.visitedSP.Set(int(sp))
}

func (s *LabelStore) IsMarkedRP(rp RoutePointIdx) bool { return s.markedRP.Test(int(rp)) }
func (s *LabelStore) IsMarkedSP(sp StopPointIdx) bool  { return s.markedSP.Test(int(sp)) }

func (s *LabelStore) ClearMarks() {
	s.markedRP.Reset()
	s.markedSP.Reset()
}

// MarkedRoutePoints calls f for every currently marked route-point, in
// ascending index order.
func (s *LabelStore) MarkedRoutePoints(f func(rp RoutePointIdx)) {
	s.markedRP.ForEach(func(i int) { f(RoutePointIdx(i)) })
}

// MarkedStopPoints calls f for every currently marked stop-point, in
// ascending index order.
func (s *LabelStore) MarkedStopPoints(f func(sp StopPointIdx)) {
	s.markedSP.ForEach(func(i int) { f(StopPointIdx(i)) })
}

// VisitedStopPoints returns how many distinct stop-points were ever
// marked across the whole search. Unlike markedSP, visitedSP survives
// the per-round ClearMarks calls the round scanner's Scan makes at the
// start of each round.
func (s *LabelStore) VisitedStopPoints() int {
	return s.visitedSP.Count()
}
