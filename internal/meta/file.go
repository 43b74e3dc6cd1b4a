package meta

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// FileSource resolves metadata from a local YAML document holding a full
// metadata tree. The file is read and parsed once, on first use.
type FileSource struct {
	path string
	tree *Tree
}

// NewFileSource creates a FileSource for the given YAML file path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Resolve implements Source by filtering the parsed document down to the
// selector's channels.
func (f *FileSource) Resolve(_ context.Context, sel Selector) (*Tree, error) {
	if f.tree == nil {
		tree, err := loadTreeFile(f.path)
		if err != nil {
			return nil, err
		}
		f.tree = tree
	}

	matched := filter(f.tree, sel)
	if matched == nil {
		return nil, eris.Wrapf(ErrNotFound, "file %s: %s.%s.%s.%s",
			f.path, sel.Network, sel.Station, sel.Location, sel.Channel)
	}

	zap.L().Debug("meta: resolved from local file",
		zap.String("file", f.path),
		zap.String("station", sel.Station),
		zap.String("channel", sel.Channel),
	)
	return matched, nil
}

func loadTreeFile(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "meta: read %s", path)
	}
	var tree Tree
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, eris.Wrapf(err, "meta: parse %s", path)
	}
	return &tree, nil
}
