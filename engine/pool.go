package engine

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/jimc101/pylag-go/particle"
	"github.com/jimc101/pylag-go/randomwalk"
)

// StepAll advances every particle in particles by one step of dt,
// dispatched across nprocs goroutines (the smaller of runtime.GOMAXPROCS(0)
// and streams.Len()) using the same range-partitioned stride assignment
// (worker k handles indices k, k+nprocs, k+2*nprocs, ...) as framework.go's
// InitInMAPdata, and drawing each worker's random-walk terms from its own
// entry in streams. The outcome is reproducible for a given master seed and
// worker count; a different worker count changes which stream, and which
// draws from it, each particle receives.
//
// Before any worker is dispatched, StepAll calls cfg.Reader.ReadData(t) once
// for the whole step (spec.md §4.C, §5: ReadData is the sole suspension
// point vis-à-vis the external mediator, "called once per step at most,
// outside any per-particle loop"). If that call fails, no particle is
// advanced and a single-element error slice is returned.
//
// Particles with InDomain == false or IsBeached != 0 are left untouched.
// Errors are collected per particle index; a non-nil entry at index i
// means particles[i] was not advanced this step.
func StepAll(cfg *Config, t time.Time, dt float64, particles []particle.Particle, streams *randomwalk.StreamSet) []error {
	if err := cfg.Reader.ReadData(t); err != nil {
		return []error{fmt.Errorf("engine: advancing reader data: %w", err)}
	}

	nprocs := runtime.GOMAXPROCS(0)
	if streams.Len() < nprocs {
		nprocs = streams.Len()
	}
	if nprocs < 1 {
		nprocs = 1
	}

	errs := make([]error, len(particles))
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for worker := 0; worker < nprocs; worker++ {
		go func(worker int) {
			defer wg.Done()
			rng := streams.Stream(worker)
			for i := worker; i < len(particles); i += nprocs {
				if err := cfg.Step(t, dt, &particles[i], rng); err != nil {
					errs[i] = err
				}
			}
		}(worker)
	}
	wg.Wait()
	return errs
}
