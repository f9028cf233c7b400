package randomwalk

import (
	"math"
	"math/rand"
	"testing"
)

func TestNewStreamSetReproducible(t *testing.T) {
	a := NewStreamSet(42, 4)
	b := NewStreamSet(42, 4)
	for i := 0; i < 4; i++ {
		va := a.Stream(i).Float64()
		vb := b.Stream(i).Float64()
		if va != vb {
			t.Fatalf("stream %d not reproducible: %v vs %v", i, va, vb)
		}
	}
}

func TestNewStreamSetStreamsDiffer(t *testing.T) {
	s := NewStreamSet(1, 2)
	if s.Stream(0).Float64() == s.Stream(1).Float64() {
		t.Fatalf("expected distinct streams to diverge at the first draw")
	}
}

func TestNormalDrawIsStandardNormal(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	n := 20000
	var sum, sumSq float64
	for i := 0; i < n; i++ {
		v := normalDraw(rng)
		sum += v
		sumSq += v * v
	}
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if math.Abs(mean) > 0.05 {
		t.Fatalf("mean too far from 0: %v", mean)
	}
	if math.Abs(variance-1) > 0.1 {
		t.Fatalf("variance too far from 1: %v", variance)
	}
}
