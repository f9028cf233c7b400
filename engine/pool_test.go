package engine

import (
	"testing"
	"time"

	"github.com/ctessum/sparse"
	"github.com/jimc101/pylag-go/particle"
	"github.com/jimc101/pylag-go/randomwalk"
	"github.com/jimc101/pylag-go/reader"
)

// bracketAdvanceSource serves one bracket for t < 10000 and a second,
// distinguishable bracket for t >= 10000, and counts how many times
// LoadBracket is called so a test can assert ReadData's once-per-step
// suspension contract.
type bracketAdvanceSource struct {
	calls int
}

func (s *bracketAdvanceSource) LoadBracket(t time.Time) (last, next reader.Frame, tLast, tNext time.Time, err error) {
	s.calls++
	u := sparse.ZerosDense(1, 2)
	v := sparse.ZerosDense(1, 2)
	frame := reader.Frame{
		Zeta:    []float64{0, 0, 0, 0},
		U:       u,
		V:       v,
		W:       sparse.ZerosDense(1, 2),
		Kh:      sparse.ZerosDense(2, 4),
		Viscofh: sparse.ZerosDense(1, 4),
	}
	if t.Unix() < 10000 {
		return frame, frame, time.Unix(0, 0), time.Unix(10000, 0), nil
	}
	return frame, frame, time.Unix(10000, 0), time.Unix(20000, 0), nil
}

func TestStepAllAdvancesReaderBracketAcrossStepBoundary(t *testing.T) {
	g := squareGrid(t)
	src := &bracketAdvanceSource{}
	r, err := reader.NewReader(g, src, reader.Forward)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if err := r.SetupDataAccess(time.Unix(0, 0), time.Unix(20000, 0)); err != nil {
		t.Fatalf("SetupDataAccess: %v", err)
	}
	if src.calls != 1 {
		t.Fatalf("expected exactly 1 LoadBracket call after setup, got %d", src.calls)
	}
	if !r.TLast.Equal(time.Unix(0, 0)) || !r.TNext.Equal(time.Unix(10000, 0)) {
		t.Fatalf("unexpected initial bracket: %v - %v", r.TLast, r.TNext)
	}

	cfg := &Config{Reader: r}
	streams := randomwalk.NewStreamSet(1, 1)
	particles := make([]particle.Particle, 0)

	// Still inside the first bracket: no refill expected.
	if errs := StepAll(cfg, time.Unix(5000, 0), 1.0, particles, streams); len(errs) != 0 {
		t.Fatalf("unexpected errors mid-bracket: %v", errs)
	}
	if src.calls != 1 {
		t.Fatalf("expected no extra LoadBracket call mid-bracket, got %d total calls", src.calls)
	}

	// t has moved past the first bracket: StepAll must call ReadData once,
	// at the top, before any worker runs, advancing TLast/TNext.
	if errs := StepAll(cfg, time.Unix(10000, 0), 1.0, particles, streams); len(errs) != 0 {
		t.Fatalf("unexpected errors at bracket boundary: %v", errs)
	}
	if src.calls != 2 {
		t.Fatalf("expected exactly one refill call at the bracket boundary, got %d total calls", src.calls)
	}
	if !r.TLast.Equal(time.Unix(10000, 0)) || !r.TNext.Equal(time.Unix(20000, 0)) {
		t.Fatalf("expected bracket to advance to (10000, 20000), got (%v, %v)", r.TLast, r.TNext)
	}
}
