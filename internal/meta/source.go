package meta

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrNotFound reports that a source holds no metadata for a selector.
var ErrNotFound = eris.New("meta: no metadata found")

// Selector scopes a metadata lookup to one segment's identity and time
// range.
type Selector struct {
	Network  string
	Station  string
	Location string
	Channel  string
	Start    time.Time
	End      time.Time
}

// Source resolves the metadata tree applicable to a selector. Resolve
// returns ErrNotFound (possibly wrapped) when the backend has no
// matching metadata; any other error is a backend failure.
type Source interface {
	Resolve(ctx context.Context, sel Selector) (*Tree, error)
}

// Chain tries sources in order, falling through on ErrNotFound or
// backend failure. The conversion run configures it local-first with a
// network service fallback.
type Chain []Source

// Resolve implements Source.
func (c Chain) Resolve(ctx context.Context, sel Selector) (*Tree, error) {
	for i, src := range c {
		tree, err := src.Resolve(ctx, sel)
		if err == nil {
			return tree, nil
		}
		if !eris.Is(err, ErrNotFound) {
			zap.L().Warn("meta: source failed, trying next",
				zap.Int("source", i),
				zap.Error(err),
			)
		}
	}
	return nil, ErrNotFound
}

// matches reports whether a channel epoch overlaps the selector's codes
// and time range. Empty selector codes match anything; location compares
// "" and "--" as equal.
func (sel Selector) matches(netCode string, sta *Station, ch *Channel) bool {
	if sel.Network != "" && sel.Network != netCode {
		return false
	}
	if sel.Station != "" && sel.Station != sta.Code {
		return false
	}
	if sel.Channel != "" && sel.Channel != ch.Code {
		return false
	}
	if normalizeLocation(sel.Location) != normalizeLocation(ch.LocationCode) {
		return false
	}
	if !sel.Start.IsZero() && ch.EndDate != nil && ch.EndDate.Before(sel.Start) {
		return false
	}
	if !sel.End.IsZero() && ch.StartDate != nil && ch.StartDate.After(sel.End) {
		return false
	}
	return true
}

func normalizeLocation(loc string) string {
	if loc == "--" {
		return ""
	}
	return loc
}

// filter returns a copy of t reduced to the channels matching sel, or
// nil when nothing matches.
func filter(t *Tree, sel Selector) *Tree {
	out := &Tree{
		Source:  t.Source,
		Sender:  t.Sender,
		Module:  t.Module,
		Created: t.Created,
	}
	for _, net := range t.Networks {
		var stations []Station
		for _, sta := range net.Stations {
			var channels []Channel
			for _, ch := range sta.Channels {
				if sel.matches(net.Code, &sta, &ch) {
					channels = append(channels, ch)
				}
			}
			if len(channels) > 0 {
				fsta := sta
				fsta.Channels = channels
				stations = append(stations, fsta)
			}
		}
		if len(stations) > 0 {
			fnet := net
			fnet.Stations = stations
			out.Networks = append(out.Networks, fnet)
		}
	}
	if len(out.Networks) == 0 {
		return nil
	}
	return out
}
