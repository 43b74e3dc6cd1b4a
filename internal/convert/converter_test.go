package convert

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seisnet/css3convert/internal/css"
	"github.com/seisnet/css3convert/internal/meta"
	"github.com/seisnet/css3convert/internal/stream"
)

type stubMeta struct {
	tree *meta.Tree
	err  error
}

func (s *stubMeta) Resolve(_ context.Context, _ meta.Selector) (*meta.Tree, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.tree, nil
}

func testMetaTree(withSensitivity bool) *meta.Tree {
	lat, lon, elev := 34.9459, -106.4572, 1820.0
	depth, azimuth, dip := 100.0, 0.0, -90.0
	sr := 40.0
	chStart := time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)

	ch := meta.Channel{
		Code:         "BHZ",
		LocationCode: "00",
		StartDate:    &chStart,
		Depth:        &depth,
		Azimuth:      &azimuth,
		Dip:          &dip,
		SampleRate:   &sr,
		Description:  "broadband vertical",
		Sensor:       &meta.Equipment{Description: "Streckeisen STS-2"},
		Response:     &meta.Response{},
	}
	if withSensitivity {
		ch.Response.Sensitivity = &meta.Sensitivity{
			Value:      1e9,
			Frequency:  1.0,
			InputUnits: "M/S",
		}
		ch.Response.Stages = []meta.Stage{{
			Kind:          meta.StagePolesZeros,
			Sequence:      1,
			NormFactor:    3.1,
			NormFrequency: 1.0,
			Poles:         []meta.Complex{{Real: -0.037, Imag: 0.037}},
			Zeros:         []meta.Complex{{Real: 0, Imag: 0}},
		}}
	}

	return &meta.Tree{
		Source: "IRIS-DMC",
		Networks: []meta.Network{{
			Code:        "IU",
			Description: "Global Seismograph Network",
			Stations: []meta.Station{{
				Code:      "ANMO",
				Latitude:  &lat,
				Longitude: &lon,
				Elevation: &elev,
				SiteName:  "Albuquerque, New Mexico, USA",
				Channels:  []meta.Channel{ch},
			}},
		}},
	}
}

func testSegment(start time.Time, samples []int32) stream.Segment {
	return stream.Segment{
		Network:    "IU",
		Station:    "ANMO",
		Location:   "00",
		Channel:    "BHZ",
		Start:      start,
		End:        start.Add(time.Minute),
		SampleRate: 40.0,
		Samples:    samples,
	}
}

func TestRunSingleSegment(t *testing.T) {
	dir := t.TempDir()
	src := &stubMeta{tree: testMetaTree(true)}
	start := time.Date(2017, 7, 14, 4, 0, 0, 0, time.UTC)

	c := New(Options{OutputDir: dir}, src)
	sum, err := c.Run(context.Background(), []stream.Segment{
		testSegment(start, []int32{1, 2, 3, 4}),
	})
	require.NoError(t, err)

	assert.Equal(t, "20170714040000", sum.Database)
	assert.Equal(t, 1, sum.Total)
	assert.Equal(t, 1, sum.Succeeded)

	for _, set := range c.Tables().All() {
		assert.Equal(t, 1, set.Len(), set.Name())
		_, err := os.Stat(filepath.Join(dir, sum.Database+"."+set.Name()))
		assert.NoError(t, err, set.Name())
	}

	info, err := os.Stat(filepath.Join(dir, sum.Database+".w"))
	require.NoError(t, err)
	assert.Equal(t, int64(16), info.Size())

	respFiles, err := os.ReadDir(filepath.Join(dir, "response"))
	require.NoError(t, err)
	require.Len(t, respFiles, 1)
	assert.Equal(t, "streckeisensts2.IU.ANMO.BHZ", respFiles[0].Name())

	wfdisc := c.Tables().Wfdisc.Records()[0].(*css.Wfdisc)
	assert.Equal(t, int64(4), wfdisc.Nsamp)
	assert.Equal(t, int64(0), wfdisc.Foff)
	assert.Equal(t, "i4", wfdisc.Datatype)
	assert.Equal(t, "V", wfdisc.Segtype)
	assert.Equal(t, ".", wfdisc.Dir)
	assert.Equal(t, sum.Database+".w", wfdisc.Dfile)
	assert.InDelta(t, 1.0, wfdisc.Calib, 1e-9)
}

func TestRunReusesChanID(t *testing.T) {
	dir := t.TempDir()
	src := &stubMeta{tree: testMetaTree(true)}
	start := time.Date(2017, 7, 14, 4, 0, 0, 0, time.UTC)

	c := New(Options{OutputDir: dir, DatabaseName: "testdb"}, src)
	sum, err := c.Run(context.Background(), []stream.Segment{
		testSegment(start, []int32{1, 2}),
		testSegment(start.Add(time.Hour), []int32{3, 4, 5}),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Succeeded)

	// One channel identity: one sitechan, one chanid shared by both wfdiscs.
	assert.Equal(t, 1, c.Tables().Sitechan.Len())
	require.Equal(t, 2, c.Tables().Wfdisc.Len())
	a := c.Tables().Wfdisc.Records()[0].(*css.Wfdisc)
	b := c.Tables().Wfdisc.Records()[1].(*css.Wfdisc)
	assert.Equal(t, a.Chanid, b.Chanid)
	assert.NotEqual(t, a.Wfid, b.Wfid)

	// Offsets are cumulative.
	assert.Equal(t, int64(0), a.Foff)
	assert.Equal(t, int64(8), b.Foff)

	// Shared records are inserted once; per-segment instruments are not.
	assert.Equal(t, 1, c.Tables().Network.Len())
	assert.Equal(t, 1, c.Tables().Site.Len())
	assert.Equal(t, 1, c.Tables().Affiliation.Len())
	assert.Equal(t, 1, c.Tables().Sensor.Len())
	assert.Equal(t, 2, c.Tables().Instrument.Len())
}

func TestRunNoSensitivityWritesUncalibratedRecords(t *testing.T) {
	dir := t.TempDir()
	src := &stubMeta{tree: testMetaTree(false)}
	start := time.Date(2017, 7, 14, 4, 0, 0, 0, time.UTC)

	c := New(Options{OutputDir: dir, DatabaseName: "testdb"}, src)
	sum, err := c.Run(context.Background(), []stream.Segment{
		testSegment(start, []int32{1, 2, 3}),
	})
	require.Error(t, err)
	require.NotNil(t, sum)
	assert.Equal(t, 1, sum.Total)
	assert.Equal(t, 0, sum.Succeeded)

	// Records are still written, with neutral calibration.
	require.Equal(t, 1, c.Tables().Wfdisc.Len())
	wfdisc := c.Tables().Wfdisc.Records()[0].(*css.Wfdisc)
	assert.InDelta(t, 1.0, wfdisc.Calib, 1e-9)
	assert.InDelta(t, 1.0, wfdisc.Calper, 1e-9)
	assert.Equal(t, "-", wfdisc.Segtype)

	// Table files are flushed even though the run failed.
	_, statErr := os.Stat(filepath.Join(dir, "testdb.wfdisc"))
	assert.NoError(t, statErr)
}

func TestRunMetadataMiss(t *testing.T) {
	dir := t.TempDir()
	src := &stubMeta{err: meta.ErrNotFound}
	start := time.Date(2017, 7, 14, 4, 0, 0, 0, time.UTC)

	c := New(Options{OutputDir: dir, DatabaseName: "testdb"}, src)
	sum, err := c.Run(context.Background(), []stream.Segment{
		testSegment(start, []int32{1}),
	})
	require.Error(t, err)
	require.NotNil(t, sum)
	assert.Equal(t, 0, sum.Succeeded)

	for _, set := range c.Tables().All() {
		assert.Equal(t, 0, set.Len(), set.Name())
		_, statErr := os.Stat(filepath.Join(dir, "testdb."+set.Name()))
		assert.NoError(t, statErr, set.Name())
	}
}

func TestRunNoSegments(t *testing.T) {
	c := New(Options{OutputDir: t.TempDir()}, &stubMeta{tree: testMetaTree(true)})

	_, err := c.Run(context.Background(), nil)
	require.Error(t, err)
}

func TestRunSeparateWaveformDir(t *testing.T) {
	outDir := t.TempDir()
	wfDir := filepath.Join(outDir, "waveforms")
	src := &stubMeta{tree: testMetaTree(true)}
	start := time.Date(2017, 7, 14, 4, 0, 0, 0, time.UTC)

	c := New(Options{OutputDir: outDir, WaveformDir: wfDir, DatabaseName: "testdb"}, src)
	_, err := c.Run(context.Background(), []stream.Segment{
		testSegment(start, []int32{1, 2}),
	})
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(wfDir, "testdb.w"))
	assert.NoError(t, statErr)

	wfdisc := c.Tables().Wfdisc.Records()[0].(*css.Wfdisc)
	assert.Equal(t, "waveforms", wfdisc.Dir)
}

func TestRunAbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	src := &stubMeta{tree: testMetaTree(true)}
	start := time.Date(2017, 7, 14, 4, 0, 0, 0, time.UTC)

	c := New(Options{OutputDir: dir, DatabaseName: "testdb", AbsolutePaths: true}, src)
	_, err := c.Run(context.Background(), []stream.Segment{
		testSegment(start, []int32{1}),
	})
	require.NoError(t, err)

	wfdisc := c.Tables().Wfdisc.Records()[0].(*css.Wfdisc)
	assert.True(t, filepath.IsAbs(wfdisc.Dir))
}

func TestRunArchive(t *testing.T) {
	dir := t.TempDir()
	src := &stubMeta{tree: testMetaTree(true)}
	start := time.Date(2017, 7, 14, 4, 0, 0, 0, time.UTC)

	c := New(Options{OutputDir: dir, DatabaseName: "testdb", Archive: true}, src)
	_, err := c.Run(context.Background(), []stream.Segment{
		testSegment(start, []int32{1, 2}),
	})
	require.NoError(t, err)

	r, err := zip.OpenReader(filepath.Join(dir, "testdb.zip"))
	require.NoError(t, err)
	defer r.Close() //nolint:errcheck

	names := make(map[string]bool)
	for _, f := range r.File {
		names[f.Name] = true
	}
	assert.True(t, names["testdb/testdb.w"])
	assert.True(t, names["testdb/testdb.wfdisc"])
	assert.True(t, names["testdb/testdb.network"])
	assert.True(t, names["testdb/response/streckeisensts2.IU.ANMO.BHZ"])
}
