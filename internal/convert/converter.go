// Package convert drives one conversion run: it pairs each decoded
// waveform segment with its resolved metadata, assembles the CSS3.0
// record set, appends raw samples to the waveform store, writes PAZFIR
// response files, and flushes the table files at run end.
package convert

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/seisnet/css3convert/internal/css"
	"github.com/seisnet/css3convert/internal/meta"
	"github.com/seisnet/css3convert/internal/resp"
	"github.com/seisnet/css3convert/internal/stream"
)

// Options configures a conversion run.
type Options struct {
	OutputDir     string
	WaveformDir   string // defaults to OutputDir
	DatabaseName  string // defaults to first segment's start time, YYYYMMDDHHMMSS
	AbsolutePaths bool   // store absolute paths in wfdisc.dir
	Archive       bool   // package outputs into <db>.zip
}

// Summary is the per-run outcome tally.
type Summary struct {
	Database  string
	OutputDir string
	Total     int
	Succeeded int
}

// Converter holds one run's mutable state. It is driven by a single
// goroutine; segments are processed strictly one at a time.
type Converter struct {
	opts    Options
	meta    meta.Source
	tables  *css.Tables
	ids     IDAllocator
	wf      *WaveformStore
	chanIDs map[string]int64 // sta/chan -> allocated chanid
}

// New creates a Converter resolving metadata through src.
func New(opts Options, src meta.Source) *Converter {
	return &Converter{
		opts:    opts,
		meta:    src,
		tables:  css.NewTables(),
		chanIDs: make(map[string]int64),
	}
}

// Tables exposes the working record set, used by tests and by callers
// inspecting the run after completion.
func (c *Converter) Tables() *css.Tables { return c.tables }

// Run converts the segments and flushes all outputs. Table files are
// written even when every segment fails; the returned error is non-nil
// only for setup failures or when zero segments succeed.
func (c *Converter) Run(ctx context.Context, segments []stream.Segment) (*Summary, error) {
	if len(segments) == 0 {
		return nil, eris.New("convert: no segments to process")
	}

	db := c.opts.DatabaseName
	if db == "" {
		db = segments[0].Start.UTC().Format("20060102150405")
		zap.L().Info("convert: database name derived from stream", zap.String("database", db))
	}

	outDir := c.opts.OutputDir
	wfDir := c.opts.WaveformDir
	if wfDir == "" {
		wfDir = outDir
	}
	respDir := filepath.Join(outDir, "response")
	for _, dir := range []string{outDir, wfDir, respDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrapf(err, "convert: create directory %s", dir)
		}
	}

	wf, err := OpenWaveformStore(filepath.Join(wfDir, db+".w"))
	if err != nil {
		return nil, err
	}
	c.wf = wf
	defer func() {
		if cerr := c.wf.Close(); cerr != nil {
			zap.L().Warn("convert: waveform store close failed", zap.Error(cerr))
		}
	}()

	wformDir, err := c.wfdiscDir(outDir, wfDir)
	if err != nil {
		return nil, err
	}

	sum := &Summary{Database: db, OutputDir: outDir, Total: len(segments)}
	for i, seg := range segments {
		log := zap.L().With(zap.String("segment", seg.ID()))
		log.Info("convert: processing segment",
			zap.Int("index", i+1),
			zap.Int("total", len(segments)),
		)
		if c.processSegment(ctx, seg, db, respDir, wformDir) {
			sum.Succeeded++
		} else {
			log.Warn("convert: segment unsuccessful")
		}
	}

	if err := c.tables.WriteAll(outDir, db); err != nil {
		return nil, err
	}

	if c.opts.Archive {
		if err := buildArchive(outDir, wfDir, db); err != nil {
			return nil, err
		}
	}

	zap.L().Info("convert: run complete",
		zap.String("database", db),
		zap.Int("succeeded", sum.Succeeded),
		zap.Int("total", sum.Total),
	)

	if sum.Succeeded == 0 {
		return sum, eris.New("convert: no segments converted successfully")
	}
	return sum, nil
}

// wfdiscDir computes the wfdisc.dir column value: the waveform directory
// relative to the output directory, or absolute when configured.
func (c *Converter) wfdiscDir(outDir, wfDir string) (string, error) {
	if c.opts.AbsolutePaths {
		abs, err := filepath.Abs(wfDir)
		if err != nil {
			return "", eris.Wrap(err, "convert: resolve waveform dir")
		}
		return abs, nil
	}
	rel, err := filepath.Rel(outDir, wfDir)
	if err != nil {
		return "", eris.Wrap(err, "convert: relativize waveform dir")
	}
	return rel, nil
}

// processSegment runs the per-segment sub-protocol. A segment succeeds
// only when metadata resolution, sitechan and instrument insertion and
// response encoding all succeed; duplicate network, site, affiliation,
// sensor and wfdisc insertions are shared-record no-ops that never
// downgrade success.
func (c *Converter) processSegment(ctx context.Context, seg stream.Segment, db, respDir, wformDir string) bool {
	log := zap.L().With(zap.String("segment", seg.ID()))

	tree, err := c.meta.Resolve(ctx, meta.Selector{
		Network:  seg.Network,
		Station:  seg.Station,
		Location: seg.Location,
		Channel:  seg.Channel,
		Start:    seg.Start,
		End:      seg.End,
	})
	if err != nil {
		log.Warn("convert: no metadata, skipping segment", zap.Error(err))
		return false
	}
	net, sta, ch, ok := tree.First()
	if !ok {
		log.Warn("convert: resolved metadata tree is empty")
		return false
	}

	var sens *meta.Sensitivity
	if ch.Response != nil {
		sens = ch.Response.Sensitivity
	}
	success := sens != nil
	if !success {
		log.Warn("convert: no instrument sensitivity, writing uncalibrated records")
	}

	rtype := ""
	if sens != nil {
		rtype = resp.ResponseType(sens.InputUnits, sens.InputUnitsDescription)
	}
	calib, calper := Calibration(sens)

	network := css.NewNetwork()
	network.Net = net.Code
	network.Netname = css.Str(net.Description)
	c.tables.Network.Insert(network)

	site := css.NewSite()
	site.Sta = sta.Code
	site.Ondate = css.JulianDate(sta.StartDate)
	site.Offdate = css.JulianDate(sta.EndDate)
	site.Lat = css.FloatOr(sta.Latitude, css.CoordNull)
	site.Lon = css.FloatOr(sta.Longitude, css.CoordNull)
	site.Elev = css.FloatOr(sta.Elevation, css.CoordNull)
	site.Staname = css.Str(firstNonEmpty(sta.SiteName, sta.Code))
	site.Statype = css.Str(sta.Vault)
	c.tables.Site.Insert(site)

	affiliation := css.NewAffiliation()
	affiliation.Net = net.Code
	affiliation.Sta = sta.Code
	c.tables.Affiliation.Insert(affiliation)

	// One chanid per station+channel per run; the sitechan record is
	// built only when the id is first allocated.
	chanKey := sta.Code + "/" + ch.Code
	chanid, seen := c.chanIDs[chanKey]
	if !seen {
		chanid = c.ids.NextChanID()
		c.chanIDs[chanKey] = chanid

		sitechan := css.NewSitechan()
		sitechan.Sta = sta.Code
		sitechan.Chan = ch.Code
		sitechan.Chanid = chanid
		sitechan.Ondate = css.JulianDate(ch.StartDate)
		sitechan.Offdate = css.JulianDate(ch.EndDate)
		if ch.Depth != nil {
			sitechan.Edepth = *ch.Depth / 1000.0
		}
		sitechan.Hang = css.FloatOr(ch.Azimuth, -1.0)
		if ch.Dip != nil {
			sitechan.Vang = *ch.Dip + 90.0
		}
		sitechan.Descrip = css.Str(ch.Description)
		if !c.tables.Sitechan.Insert(sitechan) {
			success = false
		}
	}

	sensorDesc := "unknown"
	if ch.Sensor != nil && ch.Sensor.Description != "" {
		sensorDesc = ch.Sensor.Description
	}
	respFile := resp.FileName(sensorDesc, net.Code, sta.Code, ch.Code)

	inid := c.ids.NextInstID()
	instrument := css.NewInstrument()
	instrument.Inid = inid
	instrument.Insname = css.Str(sensorDesc)
	instrument.Samprate = css.FloatOr(ch.SampleRate, -1.0)
	instrument.Ncalib = calib
	instrument.Ncalper = calper
	instrument.Dir = "response"
	instrument.Dfile = respFile
	instrument.Rsptype = css.Str(rtype)
	if !c.tables.Instrument.Insert(instrument) {
		success = false
	}

	sensor := css.NewSensor()
	sensor.Sta = sta.Code
	sensor.Chan = ch.Code
	sensor.Time = css.Timestamp(ch.StartDate, css.TimeNull)
	sensor.Endtime = css.Timestamp(ch.EndDate, css.TimeNull)
	sensor.Inid = inid
	sensor.Chanid = chanid
	sensor.Jdate = css.JulianDate(ch.StartDate)
	sensor.Calratio = 1.0
	sensor.Calper = calper
	c.tables.Sensor.Insert(sensor)

	foff, err := c.wf.Append(seg.Samples)
	if err != nil {
		log.Error("convert: waveform append failed", zap.Error(err))
		return false
	}

	wfdisc := css.NewWfdisc()
	wfdisc.Sta = seg.Station
	wfdisc.Chan = seg.Channel
	wfdisc.Time = css.Timestamp(&seg.Start, css.WfTimeNull)
	wfdisc.Wfid = c.ids.NextWfID()
	wfdisc.Chanid = chanid
	wfdisc.Jdate = css.JulianDate(&seg.Start)
	wfdisc.Endtime = css.Timestamp(&seg.End, css.WfTimeNull)
	wfdisc.Nsamp = int64(len(seg.Samples))
	wfdisc.Samprate = seg.SampleRate
	wfdisc.Calib = calib
	wfdisc.Calper = calper
	wfdisc.Datatype = "i4"
	wfdisc.Segtype = css.Str(rtype)
	wfdisc.Dir = wformDir
	wfdisc.Dfile = db + ".w"
	wfdisc.Foff = foff
	c.tables.Wfdisc.Insert(wfdisc)

	if sens != nil {
		if err := resp.WriteFile(filepath.Join(respDir, respFile), tree, sta, ch); err != nil {
			log.Warn("convert: response encoding failed", zap.Error(err))
			success = false
		}
	}

	return success
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
