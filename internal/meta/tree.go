// Package meta models the station metadata tree a conversion run pairs
// with each waveform segment: network, station, channel, and the
// instrument response chain. Trees arrive already parsed, either from a
// local document or from a metadata service; decoding the upstream
// exchange format is the producer's concern, not this package's.
package meta

import "time"

// Tree is the root of one resolved metadata document.
type Tree struct {
	Source   string     `yaml:"source" json:"source"`
	Sender   string     `yaml:"sender" json:"sender"`
	Module   string     `yaml:"module" json:"module"`
	Created  *time.Time `yaml:"created" json:"created"`
	Networks []Network  `yaml:"networks" json:"networks"`
}

// Network is a seismic network and its stations.
type Network struct {
	Code        string    `yaml:"code" json:"code"`
	Description string    `yaml:"description" json:"description"`
	Stations    []Station `yaml:"stations" json:"stations"`
}

// Station is one recording site.
type Station struct {
	Code      string     `yaml:"code" json:"code"`
	StartDate *time.Time `yaml:"start_date" json:"start_date"`
	EndDate   *time.Time `yaml:"end_date" json:"end_date"`
	Latitude  *float64   `yaml:"latitude" json:"latitude"`
	Longitude *float64   `yaml:"longitude" json:"longitude"`
	Elevation *float64   `yaml:"elevation" json:"elevation"`
	SiteName  string     `yaml:"site_name" json:"site_name"`
	Vault     string     `yaml:"vault" json:"vault"`
	Channels  []Channel  `yaml:"channels" json:"channels"`
}

// Channel is one recording channel at a station.
type Channel struct {
	Code         string     `yaml:"code" json:"code"`
	LocationCode string     `yaml:"location_code" json:"location_code"`
	StartDate    *time.Time `yaml:"start_date" json:"start_date"`
	EndDate      *time.Time `yaml:"end_date" json:"end_date"`
	Depth        *float64   `yaml:"depth" json:"depth"`
	Azimuth      *float64   `yaml:"azimuth" json:"azimuth"`
	Dip          *float64   `yaml:"dip" json:"dip"`
	SampleRate   *float64   `yaml:"sample_rate" json:"sample_rate"`
	Description  string     `yaml:"description" json:"description"`
	Sensor       *Equipment `yaml:"sensor" json:"sensor"`
	Response     *Response  `yaml:"response" json:"response"`
}

// Equipment describes the physical sensor attached to a channel.
type Equipment struct {
	Description string `yaml:"description" json:"description"`
}

// Response is a channel's full instrument response.
type Response struct {
	Sensitivity *Sensitivity `yaml:"sensitivity" json:"sensitivity"`
	Stages      []Stage      `yaml:"stages" json:"stages"`
}

// Sensitivity is the overall scale factor converting counts to physical
// units, with its reference frequency.
type Sensitivity struct {
	Value                  float64 `yaml:"value" json:"value"`
	Frequency              float64 `yaml:"frequency" json:"frequency"`
	InputUnits             string  `yaml:"input_units" json:"input_units"`
	InputUnitsDescription  string  `yaml:"input_units_description" json:"input_units_description"`
	OutputUnits            string  `yaml:"output_units" json:"output_units"`
	OutputUnitsDescription string  `yaml:"output_units_description" json:"output_units_description"`
}

// StageKind discriminates response stage types.
type StageKind string

const (
	StagePolesZeros   StageKind = "paz"
	StageCoefficients StageKind = "fir"
)

// Complex is a complex value with explicit parts so it round-trips
// through YAML and JSON.
type Complex struct {
	Real float64 `yaml:"real" json:"real"`
	Imag float64 `yaml:"imag" json:"imag"`
}

// Stage is one stage of the response processing chain. Sequence is the
// ordinal position in the physical signal path; pole-zero and
// coefficient fields are populated according to Kind.
type Stage struct {
	Kind        StageKind `yaml:"kind" json:"kind"`
	Sequence    int       `yaml:"sequence" json:"sequence"`
	InputUnits  string    `yaml:"input_units" json:"input_units"`
	OutputUnits string    `yaml:"output_units" json:"output_units"`

	// Pole-zero stages.
	NormFactor    float64   `yaml:"norm_factor" json:"norm_factor"`
	NormFrequency float64   `yaml:"norm_frequency" json:"norm_frequency"`
	Poles         []Complex `yaml:"poles" json:"poles"`
	Zeros         []Complex `yaml:"zeros" json:"zeros"`

	// Coefficient (FIR) stages.
	InputSampleRate  float64   `yaml:"input_sample_rate" json:"input_sample_rate"`
	DecimationFactor int       `yaml:"decimation_factor" json:"decimation_factor"`
	Numerators       []Complex `yaml:"numerators" json:"numerators"`
	Denominators     []Complex `yaml:"denominators" json:"denominators"`
}

// First returns the tree's first network, station and channel. A
// resolved tree is already scoped to one segment, so the first leaf is
// the applicable one.
func (t *Tree) First() (*Network, *Station, *Channel, bool) {
	if t == nil || len(t.Networks) == 0 {
		return nil, nil, nil, false
	}
	net := &t.Networks[0]
	if len(net.Stations) == 0 {
		return nil, nil, nil, false
	}
	sta := &net.Stations[0]
	if len(sta.Channels) == 0 {
		return nil, nil, nil, false
	}
	return net, sta, &sta.Channels[0], true
}
