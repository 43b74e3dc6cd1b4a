// Package stream defines the waveform segment contract the converter
// consumes. Segments arrive already decoded; the upstream MiniSEED
// reader (or any other producer) is an external collaborator.
package stream

import (
	"fmt"
	"time"
)

// Segment is one contiguous, decoded waveform recording.
type Segment struct {
	Network    string    `json:"network"`
	Station    string    `json:"station"`
	Location   string    `json:"location"`
	Channel    string    `json:"channel"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	SampleRate float64   `json:"sample_rate"`
	Samples    []int32   `json:"samples"`
}

// ID returns the segment's NET.STA.LOC.CHAN identifier for logging.
func (s Segment) ID() string {
	return fmt.Sprintf("%s.%s.%s.%s", s.Network, s.Station, s.Location, s.Channel)
}

// Source produces a finite sequence of segments. Loading again restarts
// the sequence from the backing input.
type Source interface {
	Load() ([]Segment, error)
}
