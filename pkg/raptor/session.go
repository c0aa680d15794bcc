package raptor

import (
	"sync"

	"github.com/lintang-b-s/raptorx/pkg/timetable"
)

// Session bundles one direction's mutable search state — label store,
// destination tracker, round scanner and transfer relaxer — sized for
// one Timetable. A Session is not safe for concurrent use, but is
// cheap to Reset and reuse across many queries against the same
// Timetable, following the teacher's fBufPool/bBufPool pattern of
// pooling per-query scratch state instead of reallocating it per
// request.
type Session struct {
	dir Direction
	tt  *timetable.Timetable

	Store    *LabelStore
	Tracker  *DestinationTracker
	Scanner  *RoundScanner
	Relaxer  *TransferRelaxer
	rounds   int
}

func NewSession(dir Direction, tt *timetable.Timetable) *Session {
	return &Session{
		dir:     dir,
		tt:      tt,
		Store:   NewLabelStore(dir, tt.NumRoutePoints(), tt.NumStopPoints()),
		Tracker: NewDestinationTracker(dir, tt.NumStopPoints()),
		Scanner: NewRoundScanner(dir, tt),
		Relaxer: NewTransferRelaxer(dir, tt),
	}
}

// Reset clears every piece of mutable state so the session can be
// reused for a fresh query.
func (s *Session) Reset() {
	s.Store.Reset()
	s.Tracker.Reset()
	s.rounds = 0
}

// SessionPool pools Sessions for both search directions, keyed by
// Timetable, sized once at pool construction. QueryDriver's forward-
// then-reverse-refine (or reverse-then-forward-refine) algorithm
// borrows one of each per query: the primary direction's session for
// the upper-bound pass, the opposite direction's for the per-candidate
// refine pass.
type SessionPool struct {
	tt       *timetable.Timetable
	forward  sync.Pool
	backward sync.Pool
}

func NewSessionPool(tt *timetable.Timetable) *SessionPool {
	p := &SessionPool{tt: tt}
	p.forward.New = func() any { return NewSession(ForwardDirection, tt) }
	p.backward.New = func() any { return NewSession(ReverseDirection, tt) }
	return p
}

func (p *SessionPool) GetForward() *Session {
	return p.forward.Get().(*Session)
}

func (p *SessionPool) PutForward(s *Session) {
	s.Reset()
	p.forward.Put(s)
}

func (p *SessionPool) GetBackward() *Session {
	return p.backward.Get().(*Session)
}

func (p *SessionPool) PutBackward(s *Session) {
	s.Reset()
	p.backward.Put(s)
}
