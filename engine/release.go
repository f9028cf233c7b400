package engine

import (
	"sort"
	"time"

	"github.com/jimc101/pylag-go/particle"
	"github.com/jimc101/pylag-go/reader"
)

// ReleaseEvent schedules one seed to be placed onto the mesh at a given
// time, supporting the multi-release and ensemble runs that spec.md's
// single-release description leaves implicit.
type ReleaseEvent struct {
	Time time.Time
	Seed *particle.Seed
}

// ReleasePlan orders and applies a set of ReleaseEvents over the course of
// a run.
type ReleasePlan struct {
	events []ReleaseEvent
}

// NewReleasePlan builds a plan from events sorted by time.
func NewReleasePlan(events []ReleaseEvent) *ReleasePlan {
	sorted := make([]ReleaseEvent, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })
	return &ReleasePlan{events: sorted}
}

// Due pops and returns every event whose Time is not after t, in schedule
// order, leaving the remaining events in the plan.
func (p *ReleasePlan) Due(t time.Time) []ReleaseEvent {
	i := 0
	for i < len(p.events) && !p.events[i].Time.After(t) {
		i++
	}
	due := p.events[:i]
	p.events = p.events[i:]
	return due
}

// Remaining reports how many release events have not yet occurred.
func (p *ReleasePlan) Remaining() int {
	return len(p.events)
}

// Apply places every due event's seed onto the mesh at t and appends the
// placed particles to active, returning the updated slice. Seeding errors
// are collected per event in schedule order and returned alongside.
func Apply(r *reader.Reader, active []particle.Particle, due []ReleaseEvent, t time.Time) ([]particle.Particle, []error) {
	var allErrs []error
	for _, ev := range due {
		placed, errs := Initialize(r, ev.Seed, t)
		active = append(active, placed...)
		allErrs = append(allErrs, errs...)
	}
	return active, allErrs
}
