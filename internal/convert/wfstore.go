package convert

import (
	"bufio"
	"encoding/binary"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// WaveformStore is the single append-only binary store holding every
// segment's raw samples for one run. Samples are written as 4-byte
// signed integers in the native byte order of the run environment, with
// no header or padding; segment boundaries exist only in the wfdisc
// offsets.
type WaveformStore struct {
	f      *os.File
	w      *bufio.Writer
	offset int64
}

// OpenWaveformStore creates (or truncates) the store file at path.
func OpenWaveformStore(path string) (*WaveformStore, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, eris.Wrapf(err, "convert: open waveform store %s", path)
	}
	zap.L().Info("convert: waveform store opened", zap.String("file", path))
	return &WaveformStore{f: f, w: bufio.NewWriter(f)}, nil
}

// Append writes the samples and returns the byte offset at which they
// begin. Offsets are cumulative and never overlap.
func (s *WaveformStore) Append(samples []int32) (int64, error) {
	start := s.offset
	if err := binary.Write(s.w, binary.NativeEndian, samples); err != nil {
		return 0, eris.Wrap(err, "convert: append samples")
	}
	s.offset += int64(len(samples)) * 4
	return start, nil
}

// Offset returns the current end of the store.
func (s *WaveformStore) Offset() int64 { return s.offset }

// Close flushes and closes the store. Called exactly once, at run end or
// on abort.
func (s *WaveformStore) Close() error {
	if err := s.w.Flush(); err != nil {
		_ = s.f.Close()
		return eris.Wrap(err, "convert: flush waveform store")
	}
	return eris.Wrap(s.f.Close(), "convert: close waveform store")
}
