package convert

import (
	"math"

	"github.com/seisnet/css3convert/internal/meta"
)

// Calibration derives the calibration factor and period from an
// instrument sensitivity. The factor scales counts to nanometers
// (1e9 / sensitivity value); the period is the inverse of the reference
// frequency. Both round to 6 decimals. An absent sensitivity, or a zero
// value or frequency, yields the neutral 1.0.
func Calibration(sens *meta.Sensitivity) (calib, calper float64) {
	calib, calper = 1.0, 1.0
	if sens == nil {
		return calib, calper
	}
	if sens.Value != 0 {
		calib = round6(1e9 / sens.Value)
	}
	if sens.Frequency != 0 {
		calper = round6(1.0 / sens.Frequency)
	}
	return calib, calper
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
