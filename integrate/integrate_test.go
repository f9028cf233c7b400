package integrate

import (
	"math"
	"testing"
	"time"

	"github.com/ctessum/sparse"
	"github.com/jimc101/pylag-go/mesh"
	"github.com/jimc101/pylag-go/particle"
	"github.com/jimc101/pylag-go/reader"
)

// uniformFlowGrid builds a two-triangle square mesh with a single sigma
// layer, used to check advection-only trajectories against a known
// analytic answer (spec.md §8 S1).
func uniformFlowGrid(t *testing.T) *mesh.Grid {
	t.Helper()
	nv := [3][]int{{0, 0}, {1, 2}, {2, 3}}
	nbe := [3][]int{{-1, -1}, {1, -1}, {-1, 0}}
	x := []float64{0, 10, 10, 0}
	y := []float64{0, 0, 10, 10}
	xc := []float64{6.6667, 3.3333}
	yc := []float64{3.3333, 6.6667}
	siglev := [][]float64{{0, 0, 0, 0}, {-1, -1, -1, -1}}
	siglay := [][]float64{{-0.5, -0.5, -0.5, -0.5}}
	h := []float64{10, 10, 10, 10}
	g, err := mesh.NewGrid(nv, nbe, x, y, xc, yc, siglev, siglay, h, false)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	return g
}

type constSource struct {
	u float64
}

func (c constSource) LoadBracket(t time.Time) (last, next reader.Frame, tLast, tNext time.Time, err error) {
	u := sparse.ZerosDense(1, 2)
	zero := sparse.ZerosDense(1, 4)
	for e := 0; e < 2; e++ {
		u.Set(c.u, 0, e)
	}
	frame := reader.Frame{
		Zeta:    []float64{0, 0, 0, 0},
		U:       u,
		V:       sparse.ZerosDense(1, 2),
		W:       sparse.ZerosDense(1, 2),
		Kh:      sparse.ZerosDense(2, 4),
		Viscofh: zero,
	}
	return frame, frame, time.Unix(0, 0), time.Unix(1000, 0), nil
}

func newUniformReader(t *testing.T, u float64) *reader.Reader {
	t.Helper()
	g := uniformFlowGrid(t)
	r, err := reader.NewReader(g, constSource{u: u}, reader.Forward)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if err := r.SetupDataAccess(time.Unix(0, 0), time.Unix(1000, 0)); err != nil {
		t.Fatalf("SetupDataAccess: %v", err)
	}
	return r
}

func particleAt(t *testing.T, r *reader.Reader, x, y, z float64) *particle.Particle {
	t.Helper()
	host := r.Grid.FindHostUsingGlobalSearch(x, y)
	if host < 0 {
		t.Fatalf("no host found for (%v, %v)", x, y)
	}
	p := &particle.Particle{X1: x, X2: y, X3: z, HostHorizontalElem: host, InDomain: true}
	r.Grid.SetDefaultLocation(p)
	p.X1, p.X2 = x, y
	p.Phi = r.Grid.Barycentric(host, x, y)
	if flag := r.SetVerticalGridVars(time.Unix(0, 0), p); flag != mesh.InDomain {
		t.Fatalf("SetVerticalGridVars: flag %d", flag)
	}
	return p
}

func TestEulerUniformFlow(t *testing.T) {
	r := newUniformReader(t, 1.0)
	p := particleAt(t, r, 2, 2, -5)

	var d Delta
	flag := Euler{}.Advect(r, time.Unix(0, 0), 1.0, p, &d)
	if flag != mesh.InDomain {
		t.Fatalf("unexpected flag %d", flag)
	}
	if math.Abs(d.DX-1.0) > 1e-9 || math.Abs(d.DY) > 1e-9 || math.Abs(d.DZ) > 1e-9 {
		t.Fatalf("unexpected displacement %+v", d)
	}
}

func TestRK4MatchesEulerInUniformFlow(t *testing.T) {
	r := newUniformReader(t, 2.0)
	p := particleAt(t, r, 2, 2, -5)

	var eulerDelta, rk4Delta Delta
	if flag := (Euler{}).Advect(r, time.Unix(0, 0), 1.0, p, &eulerDelta); flag != mesh.InDomain {
		t.Fatalf("euler flag %d", flag)
	}
	if flag := (RK4{}).Advect(r, time.Unix(0, 0), 1.0, p, &rk4Delta); flag != mesh.InDomain {
		t.Fatalf("rk4 flag %d", flag)
	}
	if math.Abs(eulerDelta.DX-rk4Delta.DX) > 1e-9 {
		t.Fatalf("euler %+v vs rk4 %+v diverge in a spatially uniform, steady flow", eulerDelta, rk4Delta)
	}
}
