package css

import "strings"

// The seven CSS3.0 entities. Constructors apply the schema defaults so a
// record built from partial metadata still renders a valid row; callers
// overwrite only the fields the source supplied. Column widths, formats
// and defaults follow the CSS3.0 flat-file schema and must not change.

// Network describes a seismic network. Key: net.
type Network struct {
	Net     string
	Netname string
	Nettype string
	Auth    string
	Commid  int64
	Lddate  float64
}

// NewNetwork returns a Network with schema defaults applied.
func NewNetwork() *Network {
	return &Network{
		Net:     StrNull,
		Netname: StrNull,
		Nettype: StrNull,
		Auth:    StrNull,
		Commid:  IntNull,
		Lddate:  loadDate(),
	}
}

func (r *Network) Table() string { return "network" }
func (r *Network) Key() string   { return r.Net }

func (r *Network) Row() string {
	return strings.Join([]string{
		fs(8, r.Net), fs(80, r.Netname), fs(4, r.Nettype), fs(15, r.Auth),
		fi(8, r.Commid), ff(17, 5, r.Lddate),
	}, " ")
}

// Site describes a station location. Key: (sta, ondate).
type Site struct {
	Sta     string
	Ondate  int64
	Offdate int64
	Lat     float64
	Lon     float64
	Elev    float64
	Staname string
	Statype string
	Refsta  string
	Dnorth  float64
	Deast   float64
	Lddate  float64
}

// NewSite returns a Site with schema defaults applied.
func NewSite() *Site {
	return &Site{
		Sta:     StrNull,
		Ondate:  IntNull,
		Offdate: IntNull,
		Lat:     CoordNull,
		Lon:     CoordNull,
		Elev:    CoordNull,
		Staname: StrNull,
		Statype: StrNull,
		Refsta:  StrNull,
		Lddate:  loadDate(),
	}
}

func (r *Site) Table() string { return "site" }

func (r *Site) Key() string {
	return keyJoin(r.Sta, fi(0, r.Ondate))
}

func (r *Site) Row() string {
	return strings.Join([]string{
		fs(6, r.Sta), fi(8, r.Ondate), fi(8, r.Offdate),
		ff(9, 4, r.Lat), ff(9, 4, r.Lon), ff(9, 4, r.Elev),
		fs(50, r.Staname), fs(4, r.Statype), fs(6, r.Refsta),
		ff(9, 4, r.Dnorth), ff(9, 4, r.Deast), ff(17, 5, r.Lddate),
	}, " ")
}

// Affiliation links a network to a station. Key: (net, sta).
type Affiliation struct {
	Net    string
	Sta    string
	Lddate float64
}

// NewAffiliation returns an Affiliation with schema defaults applied.
func NewAffiliation() *Affiliation {
	return &Affiliation{Net: StrNull, Sta: StrNull, Lddate: loadDate()}
}

func (r *Affiliation) Table() string { return "affiliation" }
func (r *Affiliation) Key() string   { return keyJoin(r.Net, r.Sta) }

func (r *Affiliation) Row() string {
	return strings.Join([]string{
		fs(8, r.Net), fs(6, r.Sta), ff(17, 5, r.Lddate),
	}, " ")
}

// Sitechan describes one recording channel at a station. Key: chanid.
type Sitechan struct {
	Sta     string
	Chan    string
	Ondate  int64
	Chanid  int64
	Offdate int64
	Ctype   string
	Edepth  float64
	Hang    float64
	Vang    float64
	Descrip string
	Lddate  float64
}

// NewSitechan returns a Sitechan with schema defaults applied.
func NewSitechan() *Sitechan {
	return &Sitechan{
		Sta:     StrNull,
		Chan:    StrNull,
		Ondate:  IntNull,
		Chanid:  IntNull,
		Offdate: IntNull,
		Ctype:   StrNull,
		Edepth:  -1.0,
		Hang:    -1.0,
		Vang:    -1.0,
		Descrip: StrNull,
		Lddate:  loadDate(),
	}
}

func (r *Sitechan) Table() string { return "sitechan" }
func (r *Sitechan) Key() string   { return fi(0, r.Chanid) }

func (r *Sitechan) Row() string {
	return strings.Join([]string{
		fs(6, r.Sta), fs(8, r.Chan), fi(8, r.Ondate), fi(8, r.Chanid),
		fi(8, r.Offdate), fs(4, r.Ctype), ff(9, 4, r.Edepth),
		ff(6, 1, r.Hang), ff(6, 1, r.Vang), fs(50, r.Descrip),
		ff(17, 5, r.Lddate),
	}, " ")
}

// Instrument describes a recording instrument and points at its response
// file. Key: inid.
type Instrument struct {
	Inid     int64
	Insname  string
	Instype  string
	Band     string
	Digital  string
	Samprate float64
	Ncalib   float64
	Ncalper  float64
	Dir      string
	Dfile    string
	Rsptype  string
	Lddate   float64
}

// NewInstrument returns an Instrument with schema defaults applied.
func NewInstrument() *Instrument {
	return &Instrument{
		Inid:     IntNull,
		Insname:  StrNull,
		Instype:  StrNull,
		Band:     StrNull,
		Digital:  StrNull,
		Samprate: -1.0,
		Ncalib:   1.0,
		Ncalper:  1.0,
		Dir:      StrNull,
		Dfile:    StrNull,
		Rsptype:  StrNull,
		Lddate:   loadDate(),
	}
}

func (r *Instrument) Table() string { return "instrument" }
func (r *Instrument) Key() string   { return fi(0, r.Inid) }

func (r *Instrument) Row() string {
	return strings.Join([]string{
		fi(8, r.Inid), fs(50, r.Insname), fs(6, r.Instype),
		fs(1, r.Band), fs(1, r.Digital), ff(11, 7, r.Samprate),
		ff(16, 6, r.Ncalib), ff(16, 6, r.Ncalper),
		fs(64, r.Dir), fs(32, r.Dfile), fs(6, r.Rsptype),
		ff(17, 5, r.Lddate),
	}, " ")
}

// Sensor links a sitechan to an instrument over a time range.
// Key: (sta, chan, time).
type Sensor struct {
	Sta      string
	Chan     string
	Time     float64
	Endtime  float64
	Inid     int64
	Chanid   int64
	Jdate    int64
	Calratio float64
	Calper   float64
	Tshift   float64
	Instant  string
	Lddate   float64
}

// NewSensor returns a Sensor with schema defaults applied.
func NewSensor() *Sensor {
	return &Sensor{
		Sta:      StrNull,
		Chan:     StrNull,
		Time:     TimeNull,
		Endtime:  TimeNull,
		Inid:     IntNull,
		Chanid:   IntNull,
		Jdate:    IntNull,
		Calratio: -1.0,
		Calper:   1.0,
		Instant:  "y",
		Lddate:   loadDate(),
	}
}

func (r *Sensor) Table() string { return "sensor" }

func (r *Sensor) Key() string {
	return keyJoin(r.Sta, r.Chan, keyPart(r.Time))
}

func (r *Sensor) Row() string {
	return strings.Join([]string{
		fs(6, r.Sta), fs(8, r.Chan), ff(17, 5, r.Time), ff(17, 5, r.Endtime),
		fi(8, r.Inid), fi(8, r.Chanid), fi(8, r.Jdate),
		ff(16, 6, r.Calratio), ff(16, 6, r.Calper), ff(6, 2, r.Tshift),
		fs(1, r.Instant), ff(17, 5, r.Lddate),
	}, " ")
}

// Wfdisc locates one waveform segment's samples inside the waveform
// store. Key: (sta, chan, time).
type Wfdisc struct {
	Sta      string
	Chan     string
	Time     float64
	Wfid     int64
	Chanid   int64
	Jdate    int64
	Endtime  float64
	Nsamp    int64
	Samprate float64
	Calib    float64
	Calper   float64
	Instype  string
	Segtype  string
	Datatype string
	Clip     string
	Dir      string
	Dfile    string
	Foff     int64
	Commid   int64
	Lddate   float64
}

// NewWfdisc returns a Wfdisc with schema defaults applied.
func NewWfdisc() *Wfdisc {
	return &Wfdisc{
		Sta:      StrNull,
		Chan:     StrNull,
		Time:     WfTimeNull,
		Wfid:     IntNull,
		Chanid:   IntNull,
		Jdate:    IntNull,
		Endtime:  WfTimeNull,
		Nsamp:    IntNull,
		Samprate: -1.0,
		Calib:    1.0,
		Calper:   1.0,
		Instype:  StrNull,
		Segtype:  StrNull,
		Datatype: StrNull,
		Clip:     StrNull,
		Dir:      StrNull,
		Dfile:    StrNull,
		Foff:     IntNull,
		Commid:   IntNull,
		Lddate:   loadDate(),
	}
}

func (r *Wfdisc) Table() string { return "wfdisc" }

func (r *Wfdisc) Key() string {
	return keyJoin(r.Sta, r.Chan, keyPart(r.Time))
}

func (r *Wfdisc) Row() string {
	return strings.Join([]string{
		fs(6, r.Sta), fs(8, r.Chan), ff(17, 5, r.Time), fi(8, r.Wfid),
		fi(8, r.Chanid), fi(8, r.Jdate), ff(17, 5, r.Endtime),
		fi(8, r.Nsamp), ff(11, 7, r.Samprate), ff(16, 6, r.Calib),
		ff(16, 6, r.Calper), fs(6, r.Instype), fs(1, r.Segtype),
		fs(2, r.Datatype), fs(1, r.Clip), fs(64, r.Dir), fs(32, r.Dfile),
		fi(10, r.Foff), fi(8, r.Commid), ff(17, 5, r.Lddate),
	}, " ")
}
