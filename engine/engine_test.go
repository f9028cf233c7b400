package engine

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/ctessum/sparse"
	"github.com/jimc101/pylag-go/boundary"
	"github.com/jimc101/pylag-go/integrate"
	"github.com/jimc101/pylag-go/mesh"
	"github.com/jimc101/pylag-go/particle"
	"github.com/jimc101/pylag-go/reader"
)

func squareGrid(t *testing.T) *mesh.Grid {
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
	u, v float64
}

func (c constSource) LoadBracket(t time.Time) (last, next reader.Frame, tLast, tNext time.Time, err error) {
	u := sparse.ZerosDense(1, 2)
	v := sparse.ZerosDense(1, 2)
	for e := 0; e < 2; e++ {
		u.Set(c.u, 0, e)
		v.Set(c.v, 0, e)
	}
	frame := reader.Frame{
		Zeta:    []float64{0, 0, 0, 0},
		U:       u,
		V:       v,
		W:       sparse.ZerosDense(1, 2),
		Kh:      sparse.ZerosDense(2, 4),
		Viscofh: sparse.ZerosDense(1, 4),
	}
	return frame, frame, time.Unix(0, 0), time.Unix(10000, 0), nil
}

func newTestReader(t *testing.T, u, v float64) *reader.Reader {
	t.Helper()
	g := squareGrid(t)
	r, err := reader.NewReader(g, constSource{u: u, v: v}, reader.Forward)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if err := r.SetupDataAccess(time.Unix(0, 0), time.Unix(10000, 0)); err != nil {
		t.Fatalf("SetupDataAccess: %v", err)
	}
	return r
}

func TestStepAdvectionOnlyUniformFlow(t *testing.T) {
	r := newTestReader(t, 1.0, 0)
	seed, err := particle.NewSeed([]particle.SeedRecord{{GroupID: 0, X: 2, Y: 2, Z: -5}}, particle.DepthCartesian)
	if err != nil {
		t.Fatalf("NewSeed: %v", err)
	}
	particles, errs := Initialize(r, seed, time.Unix(0, 0))
	if len(errs) != 0 {
		t.Fatalf("unexpected seeding errors: %v", errs)
	}
	if len(particles) != 1 {
		t.Fatalf("expected 1 particle, got %d", len(particles))
	}

	cfg := &Config{Reader: r, Advection: integrate.Euler{}}
	rng := rand.New(rand.NewSource(1))
	if err := cfg.Step(time.Unix(0, 0), 1.0, &particles[0], rng); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if math.Abs(particles[0].X1-3) > 1e-6 {
		t.Fatalf("expected x1 to advance by 1 in a 1 m/s uniform flow, got %v", particles[0].X1)
	}
	if !particles[0].InDomain {
		t.Fatalf("particle unexpectedly left the domain")
	}
}

func TestStepReflectsOffLandBoundary(t *testing.T) {
	r := newTestReader(t, 0, -5.0)
	seed, err := particle.NewSeed([]particle.SeedRecord{{GroupID: 0, X: 5, Y: 0.5, Z: -5}}, particle.DepthCartesian)
	if err != nil {
		t.Fatalf("NewSeed: %v", err)
	}
	particles, errs := Initialize(r, seed, time.Unix(0, 0))
	if len(errs) != 0 {
		t.Fatalf("unexpected seeding errors: %v", errs)
	}

	cfg := &Config{
		Reader:             r,
		Advection:          integrate.Euler{},
		HorizontalBoundary: boundary.Reflecting{},
	}
	rng := rand.New(rand.NewSource(1))
	if err := cfg.Step(time.Unix(0, 0), 1.0, &particles[0], rng); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !particles[0].InDomain {
		t.Fatalf("expected particle reflected back into the domain")
	}
	if particles[0].X2 < 0 {
		t.Fatalf("expected reflected y >= 0, got %v", particles[0].X2)
	}
}

// stuckHorizontalBoundary always reports that the particle is still
// crossing land, regardless of where it puts the particle, simulating a
// corner trap that never resolves on its own.
type stuckHorizontalBoundary struct{}

func (stuckHorizontalBoundary) Handle(g *mesh.Grid, exitFlag int, old, new *particle.Particle) int {
	new.HostHorizontalElem = old.HostHorizontalElem
	return mesh.LandBdyCrossed
}

func TestStepSnapsToCentroidWhenLandLoopCapExceeded(t *testing.T) {
	r := newTestReader(t, 0, -5.0)
	seed, err := particle.NewSeed([]particle.SeedRecord{{GroupID: 0, X: 5, Y: 0.5, Z: -5}}, particle.DepthCartesian)
	if err != nil {
		t.Fatalf("NewSeed: %v", err)
	}
	particles, errs := Initialize(r, seed, time.Unix(0, 0))
	if len(errs) != 0 {
		t.Fatalf("unexpected seeding errors: %v", errs)
	}

	cfg := &Config{
		Reader:             r,
		Advection:          integrate.Euler{},
		HorizontalBoundary: stuckHorizontalBoundary{},
	}
	rng := rand.New(rand.NewSource(1))
	if err := cfg.Step(time.Unix(0, 0), 1.0, &particles[0], rng); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !particles[0].InDomain {
		t.Fatalf("expected the loop-cap fallback to leave the particle InDomain")
	}
	wantX, wantY := r.Grid.Centroid(0)
	if math.Abs(particles[0].X1-wantX) > 1e-6 || math.Abs(particles[0].X2-wantY) > 1e-6 {
		t.Fatalf("expected the particle snapped to element 0's centroid (%v, %v), got (%v, %v)", wantX, wantY, particles[0].X1, particles[0].X2)
	}
}

// openBoundaryGrid is squareGrid with its right-hand edge (elem0's edge0,
// x=10) marked as an open boundary instead of land.
func openBoundaryGrid(t *testing.T) *mesh.Grid {
	t.Helper()
	nv := [3][]int{{0, 0}, {1, 2}, {2, 3}}
	nbe := [3][]int{{-2, -1}, {1, -1}, {-1, 0}}
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

func TestStepEscapesOpenBoundaryWithNoBoundaryCondition(t *testing.T) {
	g := openBoundaryGrid(t)
	r, err := reader.NewReader(g, constSource{u: 5.0, v: 0}, reader.Forward)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if err := r.SetupDataAccess(time.Unix(0, 0), time.Unix(10000, 0)); err != nil {
		t.Fatalf("SetupDataAccess: %v", err)
	}

	seed, err := particle.NewSeed([]particle.SeedRecord{{GroupID: 0, X: 9.5, Y: 5, Z: -5}}, particle.DepthCartesian)
	if err != nil {
		t.Fatalf("NewSeed: %v", err)
	}
	particles, errs := Initialize(r, seed, time.Unix(0, 0))
	if len(errs) != 0 {
		t.Fatalf("unexpected seeding errors: %v", errs)
	}

	cfg := &Config{Reader: r, Advection: integrate.Euler{}}
	rng := rand.New(rand.NewSource(1))
	if err := cfg.Step(time.Unix(0, 0), 1.0, &particles[0], rng); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if particles[0].InDomain {
		t.Fatalf("expected particle to be marked as having escaped the open boundary")
	}
}

func TestStepVerticalReflectingKeepsParticleInColumn(t *testing.T) {
	r := newTestReader(t, 0, 0)
	seed, err := particle.NewSeed([]particle.SeedRecord{{GroupID: 0, X: 5, Y: 5, Z: -9.5}}, particle.DepthCartesian)
	if err != nil {
		t.Fatalf("NewSeed: %v", err)
	}
	particles, errs := Initialize(r, seed, time.Unix(0, 0))
	if len(errs) != 0 {
		t.Fatalf("unexpected seeding errors: %v", errs)
	}

	cfg := &Config{
		Reader:           r,
		Advection:        integrate.Euler{},
		Vertical:         constantDownwardVertical{dz: -5},
		VerticalBoundary: boundary.VerticalReflecting{},
	}
	rng := rand.New(rand.NewSource(1))
	if err := cfg.Step(time.Unix(0, 0), 1.0, &particles[0], rng); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if particles[0].X3 < -10 || particles[0].X3 > 0 {
		t.Fatalf("expected particle reflected back inside [-10, 0], got %v", particles[0].X3)
	}
}

func TestStepVerticalAbsorbingBeachesAtSeabed(t *testing.T) {
	r := newTestReader(t, 0, 0)
	seed, err := particle.NewSeed([]particle.SeedRecord{{GroupID: 0, X: 5, Y: 5, Z: -9.5}}, particle.DepthCartesian)
	if err != nil {
		t.Fatalf("NewSeed: %v", err)
	}
	particles, errs := Initialize(r, seed, time.Unix(0, 0))
	if len(errs) != 0 {
		t.Fatalf("unexpected seeding errors: %v", errs)
	}

	cfg := &Config{
		Reader:           r,
		Advection:        integrate.Euler{},
		Vertical:         constantDownwardVertical{dz: -5},
		VerticalBoundary: boundary.VerticalAbsorbing{},
	}
	rng := rand.New(rand.NewSource(1))
	if err := cfg.Step(time.Unix(0, 0), 1.0, &particles[0], rng); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if particles[0].IsBeached == 0 {
		t.Fatalf("expected particle to be marked beached at the seabed")
	}
	if particles[0].X3 != -10 {
		t.Fatalf("expected particle clamped to zmin=-10, got %v", particles[0].X3)
	}
}

// constantDownwardVertical is a fixed, non-random vertical displacement
// used to drive a particle across a vertical boundary deterministically.
type constantDownwardVertical struct{ dz float64 }

func (c constantDownwardVertical) Displace(r *reader.Reader, t time.Time, dt float64, p *particle.Particle, rng *rand.Rand) float64 {
	return c.dz
}

func TestInitializeReportsSeedingErrorOutsideDomain(t *testing.T) {
	r := newTestReader(t, 1.0, 0)
	seed, err := particle.NewSeed([]particle.SeedRecord{{GroupID: 0, X: 500, Y: 500, Z: -5}}, particle.DepthCartesian)
	if err != nil {
		t.Fatalf("NewSeed: %v", err)
	}
	placed, errs := Initialize(r, seed, time.Unix(0, 0))
	if len(placed) != 0 {
		t.Fatalf("expected no particles placed, got %d", len(placed))
	}
	if len(errs) != 1 {
		t.Fatalf("expected exactly 1 seeding error, got %d", len(errs))
	}
	var seedErr *SeedingError
	if !errors.As(errs[0], &seedErr) {
		t.Fatalf("expected a *SeedingError, got %T", errs[0])
	}
}

func TestInitializeReportsSeedingErrorOutsideWaterColumn(t *testing.T) {
	r := newTestReader(t, 1.0, 0)
	seed, err := particle.NewSeed([]particle.SeedRecord{{GroupID: 0, X: 5, Y: 5, Z: -50}}, particle.DepthCartesian)
	if err != nil {
		t.Fatalf("NewSeed: %v", err)
	}
	placed, errs := Initialize(r, seed, time.Unix(0, 0))
	if len(placed) != 0 {
		t.Fatalf("expected no particles placed, got %d", len(placed))
	}
	if len(errs) != 1 {
		t.Fatalf("expected exactly 1 seeding error, got %d", len(errs))
	}
}

func TestStepSkipsParticlesOutOfDomain(t *testing.T) {
	r := newTestReader(t, 1.0, 0)
	p := particle.Particle{InDomain: false, X1: 5, X2: 5}
	cfg := &Config{Reader: r, Advection: integrate.Euler{}}
	rng := rand.New(rand.NewSource(1))
	if err := cfg.Step(time.Unix(0, 0), 1.0, &p, rng); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if p.X1 != 5 {
		t.Fatalf("expected out-of-domain particle left untouched, got x1=%v", p.X1)
	}
}
