package particle

import "fmt"

// Depth coordinate conventions recognised for seed input (spec.md §6).
const (
	DepthCartesian = "cartesian" // geometric z, positive up, 0 at the free surface
	DepthSigma     = "sigma"     // sigma coordinate, in [-1, 0]
)

// SeedRecord is one (group, x, y, z) tuple as supplied by an external seed
// reader, before host-element resolution.
type SeedRecord struct {
	GroupID int
	X, Y, Z float64
}

// Seed is the immutable population a simulation is released from. It is
// retained for the lifetime of the run (even after the active particle
// vector has been mutated) so that ensemble simulations can re-release the
// same population at a later start time.
type Seed struct {
	Records          []SeedRecord
	DepthCoordinates string
}

// NewSeed validates records and the depth-coordinate convention and returns
// an immutable Seed. This is a configuration-time check only; whether an
// individual record actually lies within the water column is resolved
// later, once a host element and free-surface/bathymetry value are known
// (see engine.Initialize).
func NewSeed(records []SeedRecord, depthCoordinates string) (*Seed, error) {
	switch depthCoordinates {
	case DepthCartesian, DepthSigma:
	default:
		return nil, fmt.Errorf("particle: unrecognised depth coordinate convention %q", depthCoordinates)
	}
	cp := make([]SeedRecord, len(records))
	copy(cp, records)
	return &Seed{Records: cp, DepthCoordinates: depthCoordinates}, nil
}

// Particles returns a fresh active-particle vector built from the seed
// records. Each particle starts out of domain with X3 holding the raw,
// not-yet-resolved seed depth (geometric z or sigma, per
// DepthCoordinates) — resolving it into geometric depth and finding the
// host element is the job of the caller (engine.Initialize), which has
// access to the mesh and data reader this package does not depend on.
func (s *Seed) Particles() []Particle {
	out := make([]Particle, len(s.Records))
	for i, r := range s.Records {
		out[i] = Particle{
			GroupID:            r.GroupID,
			ID:                 i,
			X1:                 r.X,
			X2:                 r.Y,
			X3:                 r.Z,
			HostHorizontalElem: -1,
			InDomain:           false,
		}
	}
	return out
}

// Release is an alias for Particles kept for readability at call sites that
// re-release the same seed population at a later start time (ensemble
// simulations) — ownership of the result is exclusively the caller's; the
// seed itself is never mutated.
func (s *Seed) Release() []Particle {
	return s.Particles()
}
