package css

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// WriteAll flushes every working set to one fixed-width text file per
// entity, named <database>.<entity>, in the declared table order. Rows
// are written in insertion order. Files are write-once: an existing file
// is truncated, never appended to.
func (t *Tables) WriteAll(dir, database string) error {
	for _, set := range t.All() {
		path := filepath.Join(dir, database+"."+set.Name())
		if err := writeSet(path, set); err != nil {
			return err
		}
		zap.L().Info("css: table written",
			zap.String("file", filepath.Base(path)),
			zap.Int("rows", set.Len()),
		)
	}
	return nil
}

func writeSet(path string, set *Set) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "css: create table file %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := bufio.NewWriter(f)
	for _, r := range set.Records() {
		if _, err := w.WriteString(r.Row() + "\n"); err != nil {
			return eris.Wrapf(err, "css: write row to %s", path)
		}
	}
	if err := w.Flush(); err != nil {
		return eris.Wrapf(err, "css: flush %s", path)
	}
	return nil
}
