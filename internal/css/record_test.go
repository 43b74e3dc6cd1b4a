package css

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freezeClock(t *testing.T) time.Time {
	t.Helper()
	at := time.Unix(1700000000, 0).UTC()
	SetClock(clockwork.NewFakeClockAt(at))
	t.Cleanup(func() { SetClock(nil) })
	return at
}

func TestSetInsertFirstWriteWins(t *testing.T) {
	freezeClock(t)

	s := NewSet("network")

	first := NewNetwork()
	first.Net = "IU"
	first.Netname = "Global Seismograph Network"
	require.True(t, s.Insert(first))

	second := NewNetwork()
	second.Net = "IU"
	second.Netname = "a different description"
	assert.False(t, s.Insert(second))

	require.Equal(t, 1, s.Len())
	assert.Equal(t, "Global Seismograph Network", s.Records()[0].(*Network).Netname)
}

func TestSetInsertDistinctKeys(t *testing.T) {
	freezeClock(t)

	s := NewSet("affiliation")

	a := NewAffiliation()
	a.Net, a.Sta = "IU", "ANMO"
	b := NewAffiliation()
	b.Net, b.Sta = "IU", "COLA"

	assert.True(t, s.Insert(a))
	assert.True(t, s.Insert(b))
	assert.Equal(t, 2, s.Len())
}

func TestCompositeKeysDoNotCollide(t *testing.T) {
	freezeClock(t)

	// "AB"+"C" and "A"+"BC" must produce different composite keys.
	a := NewAffiliation()
	a.Net, a.Sta = "AB", "C"
	b := NewAffiliation()
	b.Net, b.Sta = "A", "BC"

	assert.NotEqual(t, a.Key(), b.Key())
}

func TestTablesAllOrder(t *testing.T) {
	tables := NewTables()

	var names []string
	for _, set := range tables.All() {
		names = append(names, set.Name())
	}
	assert.Equal(t, []string{
		"network", "site", "affiliation", "sitechan",
		"instrument", "sensor", "wfdisc",
	}, names)
}
