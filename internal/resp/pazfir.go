package resp

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/seisnet/css3convert/internal/meta"
)

// ErrNoSensitivity reports a response that cannot be encoded because its
// overall sensitivity is missing. The orchestrator treats it as a
// per-segment failure, not a run failure.
var ErrNoSensitivity = eris.New("resp: response has no instrument sensitivity")

// Encode writes the PAZFIR encoding of the channel's response to w.
//
// The format is consumed by legacy tooling that reads exact byte
// columns: the stage header occupies positions 1-12 (source), 15-16
// (sequence), 18-29 (description), 32-37 (stage type) and 40-83 (data
// source); counters are right-justified in 8 columns; all reals use
// scientific notation with 10 fractional digits. Lines end with a
// single line feed.
func Encode(w io.Writer, tree *meta.Tree, sta *meta.Station, ch *meta.Channel) error {
	if ch.Response == nil || ch.Response.Sensitivity == nil {
		return eris.Wrapf(ErrNoSensitivity, "%s/%s", sta.Code, ch.Code)
	}
	sens := ch.Response.Sensitivity

	buf := bufio.NewWriter(w)
	write := func(line string) {
		buf.WriteString(line) //nolint:errcheck
		buf.WriteByte('\n')   //nolint:errcheck
	}

	writeHeader(write, tree, sta, ch, sens)

	source := tree.Source
	if source == "" {
		source = "unknown"
	}

	for _, st := range orderedStages(ch.Response.Stages) {
		tag := "paz"
		if st.Kind == meta.StageCoefficients {
			tag = "fir"
		}
		write(fmt.Sprintf("%-12s  %2d %-12s  %-6s  %44s",
			"theoretical", st.Sequence, "unknown", tag, source))

		switch st.Kind {
		case meta.StagePolesZeros:
			write(fmt.Sprintf("%.10e  %.10e", st.NormFactor, st.NormFrequency))
			write(fmt.Sprintf("%8d", len(st.Poles)))
			for _, p := range st.Poles {
				write(fmt.Sprintf("%.10e %.10e %.10e %.10e", p.Real, p.Imag, 0.0, 0.0))
			}
			write(fmt.Sprintf("%8d", len(st.Zeros)))
			for _, z := range st.Zeros {
				write(fmt.Sprintf("%.10e %.10e %.10e %.10e", z.Real, z.Imag, 0.0, 0.0))
			}
		case meta.StageCoefficients:
			write(fmt.Sprintf("%12.4f  %d", st.InputSampleRate, st.DecimationFactor))
			write(fmt.Sprintf("%8d", len(st.Numerators)))
			for _, c := range st.Numerators {
				write(fmt.Sprintf("%.10e %.10e", c.Real, c.Imag))
			}
			write(fmt.Sprintf("%8d", len(st.Denominators)))
			for _, c := range st.Denominators {
				write(fmt.Sprintf("%.10e %.10e", c.Real, c.Imag))
			}
		}
	}

	return eris.Wrap(buf.Flush(), "resp: write encoding")
}

// WriteFile encodes the channel's response to the given path.
func WriteFile(path string, tree *meta.Tree, sta *meta.Station, ch *meta.Channel) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "resp: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	if err := Encode(f, tree, sta, ch); err != nil {
		return err
	}

	zap.L().Debug("resp: response file written", zap.String("file", path))
	return nil
}

// FileName derives the response file name from the sensor description
// and the channel identity: the description reduced to its lowercase
// alphanumeric characters, capped at 20, dot-joined with NET.STA.CHAN.
func FileName(sensorDesc, net, sta, cha string) string {
	var b strings.Builder
	for _, r := range sensorDesc {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	name := b.String()
	if len(name) > 20 {
		name = name[:20]
	}
	return fmt.Sprintf("%s.%s.%s.%s", name, net, sta, cha)
}

// orderedStages returns the stages with pole-zero stages ahead of
// coefficient stages for equal sequence numbers, sorted ascending.
func orderedStages(stages []meta.Stage) []meta.Stage {
	var paz, fir []meta.Stage
	for _, st := range stages {
		switch st.Kind {
		case meta.StagePolesZeros:
			paz = append(paz, st)
		case meta.StageCoefficients:
			fir = append(fir, st)
		}
	}
	out := make([]meta.Stage, 0, len(paz)+len(fir))
	out = append(out, paz...)
	out = append(out, fir...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out
}

func writeHeader(write func(string), tree *meta.Tree, sta *meta.Station, ch *meta.Channel, sens *meta.Sensitivity) {
	orUnknown := func(s string) string {
		if s == "" {
			return "Unknown"
		}
		return s
	}

	created := time.Now().UTC().Format(time.RFC3339)
	if tree.Created != nil {
		created = tree.Created.UTC().Format(time.RFC3339)
	}

	start := "unknown"
	if ch.StartDate != nil {
		start = ch.StartDate.UTC().Format(time.RFC3339)
	}
	end := "ongoing"
	if ch.EndDate != nil {
		end = ch.EndDate.UTC().Format(time.RFC3339)
	}

	sensorDesc := "Unknown"
	if ch.Sensor != nil && ch.Sensor.Description != "" {
		sensorDesc = ch.Sensor.Description
	}

	units := ResponseType(sens.InputUnits, sens.InputUnitsDescription)

	write("# Response file generated by css3convert")
	write(fmt.Sprintf("# Source: %s (%s)", orUnknown(tree.Sender), orUnknown(tree.Source)))
	write(fmt.Sprintf("# Module: %s", orUnknown(tree.Module)))
	write(fmt.Sprintf("# Created: %s", created))
	write("# Response type: pazfir")
	write("# Contact: css3convert")
	write("#")
	write(fmt.Sprintf("# Station/Channel/Location: %s/%s/%s", sta.Code, ch.Code, ch.LocationCode))
	write(fmt.Sprintf("# Channel description: %s", orUnknown(ch.Description)))
	write(fmt.Sprintf("# Sensor description: %s", sensorDesc))
	write(fmt.Sprintf("# Channel active period: %s - %s", start, end))
	write("#")
	write(fmt.Sprintf("# Instrument sensitivity: %.10e", sens.Value))
	write(fmt.Sprintf("# Sensitivity frequency: %.10e", sens.Frequency))
	write(fmt.Sprintf("# Input units: %s - %s", sens.InputUnits, sens.InputUnitsDescription))
	write(fmt.Sprintf("# Output units: %s - %s", sens.OutputUnits, sens.OutputUnitsDescription))
	write(fmt.Sprintf("# Response units: %s", units))
	write("#")

	desc := sensorDesc
	if len(desc) > 78 {
		desc = desc[:78]
	}
	write("# " + desc)
}
