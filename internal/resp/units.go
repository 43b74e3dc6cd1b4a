// Package resp classifies instrument response units and encodes
// responses in the fixed-column PAZFIR text format.
package resp

import (
	"strings"

	"go.uber.org/zap"
)

// Response type codes used in instrument.rsptype and wfdisc.segtype.
const (
	TypeDisplacement = "D"
	TypeVelocity     = "V"
	TypeAcceleration = "A"
)

// unitMap holds the recognized unit spellings per response type code.
var unitMap = map[string][]string{
	TypeDisplacement: {"M"},
	TypeVelocity:     {"M/S", "M/SEC"},
	TypeAcceleration: {"M/S**2", "M/(S**2)", "M/SEC**2", "M/(SEC**2)", "M/S/S"},
}

// ResponseType maps a physical units string onto a response type code,
// or "" when the units are missing or unrecognized. Matching is
// case-insensitive and exact. The description is used only for logging.
func ResponseType(units, description string) string {
	if units == "" {
		zap.L().Warn("resp: no units provided", zap.String("description", description))
		return ""
	}

	upper := strings.ToUpper(units)
	for code, spellings := range unitMap {
		for _, s := range spellings {
			if upper == s {
				zap.L().Debug("resp: response type resolved",
					zap.String("units", units),
					zap.String("type", code),
				)
				return code
			}
		}
	}

	zap.L().Warn("resp: unknown units",
		zap.String("units", units),
		zap.String("description", description),
	)
	return ""
}
