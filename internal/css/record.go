// Package css implements the CSS3.0 flat-file record model: the seven
// entity types, their fixed-width row encodings, and the keyed working
// set that holds one conversion run's records until they are flushed.
package css

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"
)

// Sentinel defaults for fields the metadata source could not supply.
// These match the flat-file conventions expected by downstream tooling.
const (
	StrNull    = "-"
	IntNull    = int64(-1)
	CoordNull  = -999.0
	TimeNull   = 9999999999.999
	WfTimeNull = -9999999999.999
)

// Record is a single CSS3.0 table row.
type Record interface {
	// Table returns the entity name, which is also the table file suffix.
	Table() string
	// Key returns the record's uniqueness key, built from its declared
	// key columns.
	Key() string
	// Row renders the record as one fixed-width text line, no trailing
	// newline.
	Row() string
}

// Set is the working set for one entity type. Records are kept in
// insertion order; keys enforce first-write-wins uniqueness.
type Set struct {
	name    string
	keys    map[string]struct{}
	records []Record
}

// NewSet creates an empty working set for the named entity.
func NewSet(name string) *Set {
	return &Set{name: name, keys: make(map[string]struct{})}
}

// Name returns the entity name this set holds.
func (s *Set) Name() string { return s.name }

// Insert adds a record unless its key is already present. A duplicate is
// silently discarded and Insert reports false; the caller uses the
// result only for success accounting, never as an error.
func (s *Set) Insert(r Record) bool {
	k := r.Key()
	if _, ok := s.keys[k]; ok {
		zap.L().Debug("css: duplicate record discarded",
			zap.String("table", s.name),
			zap.String("key", k),
		)
		return false
	}
	s.keys[k] = struct{}{}
	s.records = append(s.records, r)
	return true
}

// Len returns the number of records held.
func (s *Set) Len() int { return len(s.records) }

// Records returns the held records in insertion order.
func (s *Set) Records() []Record { return s.records }

// Tables holds the working sets for all seven entity types in the order
// they are written out.
type Tables struct {
	Network     *Set
	Site        *Set
	Affiliation *Set
	Sitechan    *Set
	Instrument  *Set
	Sensor      *Set
	Wfdisc      *Set
}

// NewTables creates empty working sets for every entity type.
func NewTables() *Tables {
	return &Tables{
		Network:     NewSet("network"),
		Site:        NewSet("site"),
		Affiliation: NewSet("affiliation"),
		Sitechan:    NewSet("sitechan"),
		Instrument:  NewSet("instrument"),
		Sensor:      NewSet("sensor"),
		Wfdisc:      NewSet("wfdisc"),
	}
}

// All returns the sets in the fixed declared write order.
func (t *Tables) All() []*Set {
	return []*Set{
		t.Network, t.Site, t.Affiliation, t.Sitechan,
		t.Instrument, t.Sensor, t.Wfdisc,
	}
}

// keyPart renders a float key column in a stable form for map keys.
func keyPart(v float64) string {
	return strconv.FormatFloat(v, 'f', 5, 64)
}

// keyJoin builds a composite key from already-rendered parts.
func keyJoin(parts ...string) string {
	k := parts[0]
	for _, p := range parts[1:] {
		k += "\x00" + p
	}
	return k
}

// fixed-width column renderers; widths and precisions are contractual.

func fs(width int, s string) string {
	return fmt.Sprintf("%-*.*s", width, width, s)
}

func fi(width int, v int64) string {
	return fmt.Sprintf("%*d", width, v)
}

func ff(width, prec int, v float64) string {
	return fmt.Sprintf("%*.*f", width, prec, v)
}
