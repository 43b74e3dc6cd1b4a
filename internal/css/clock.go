package css

import "github.com/jonboulle/clockwork"

// clock is a package-level time source so tests can freeze lddate values.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source used for lddate stamping. Pass nil to
// reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// loadDate returns the current wall-clock time as epoch seconds with
// millisecond precision, the value stored in every lddate column.
func loadDate() float64 {
	return float64(clock.Now().UnixMilli()) / 1000.0
}
