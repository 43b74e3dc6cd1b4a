package stream

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// FileSource reads decoded segments from a JSON document, the
// representation an upstream MiniSEED decoder emits.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource for the given JSON file.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

type segmentDoc struct {
	Segments []Segment `json:"segments"`
}

// Load implements Source. Segments are sorted by identity then start
// time so conversion order is stable across runs.
func (f *FileSource) Load() ([]Segment, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, eris.Wrapf(err, "stream: read %s", f.path)
	}

	var doc segmentDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrapf(err, "stream: parse %s", f.path)
	}

	segs := doc.Segments
	sort.SliceStable(segs, func(i, j int) bool {
		if segs[i].ID() != segs[j].ID() {
			return segs[i].ID() < segs[j].ID()
		}
		return segs[i].Start.Before(segs[j].Start)
	})

	zap.L().Info("stream: segments loaded",
		zap.String("file", f.path),
		zap.Int("segments", len(segs)),
	)
	return segs, nil
}
