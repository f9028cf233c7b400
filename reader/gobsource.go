package reader

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sort"
	"time"
)

// gobFrame is the Gob wire representation of one timestamped Frame,
// mirroring the teacher's framework.go gob.Register/UseReaders pattern for
// transferring model state between processes.
type gobFrame struct {
	T     time.Time
	Frame Frame
}

// GobFrameSource is a reference FrameSource implementation that serves
// bracket frames out of an in-memory, time-sorted slice, loadable from a
// Gob stream. It stands in for the external mediator (spec.md §1) in
// tests; it is not a NetCDF reader and is not meant for production input.
type GobFrameSource struct {
	frames []gobFrame
}

// NewGobFrameSource builds a GobFrameSource from timestamped frames,
// sorting them by time.
func NewGobFrameSource(times []time.Time, frames []Frame) (*GobFrameSource, error) {
	if len(times) != len(frames) {
		return nil, fmt.Errorf("reader: times/frames length mismatch")
	}
	if len(times) < 2 {
		return nil, fmt.Errorf("reader: at least two frames are required to form a bracket")
	}
	gf := make([]gobFrame, len(times))
	for i := range times {
		gf[i] = gobFrame{T: times[i], Frame: frames[i]}
	}
	sort.Slice(gf, func(i, j int) bool { return gf[i].T.Before(gf[j].T) })
	return &GobFrameSource{frames: gf}, nil
}

// Encode serializes the source's frames to Gob, for checkpoint/restart use.
func (s *GobFrameSource) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s.frames); err != nil {
		return nil, fmt.Errorf("reader: encoding frames: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeGobFrameSource reconstructs a GobFrameSource from bytes written by Encode.
func DecodeGobFrameSource(data []byte) (*GobFrameSource, error) {
	var frames []gobFrame
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&frames); err != nil {
		return nil, fmt.Errorf("reader: decoding frames: %w", err)
	}
	return &GobFrameSource{frames: frames}, nil
}

// LoadBracket returns the two adjacent stored frames bracketing t.
func (s *GobFrameSource) LoadBracket(t time.Time) (last, next Frame, tLast, tNext time.Time, err error) {
	for i := 0; i < len(s.frames)-1; i++ {
		a, b := s.frames[i], s.frames[i+1]
		if !t.Before(a.T) && !t.After(b.T) {
			return a.Frame, b.Frame, a.T, b.T, nil
		}
	}
	// Outside the stored range: clamp to the nearest bracket so a
	// simulation's first/last step can still resolve tau (the mediator in
	// production would instead load the next file on disk).
	if t.Before(s.frames[0].T) {
		return s.frames[0].Frame, s.frames[1].Frame, s.frames[0].T, s.frames[1].T, nil
	}
	n := len(s.frames)
	return s.frames[n-2].Frame, s.frames[n-1].Frame, s.frames[n-2].T, s.frames[n-1].T, nil
}
