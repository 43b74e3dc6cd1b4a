package convert

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// tableNames is the fixed entity order, shared with css.Tables.
var tableNames = []string{
	"network", "site", "affiliation", "sitechan", "instrument", "sensor", "wfdisc",
}

// buildArchive packages the waveform store, the table files and the
// response directory into <outDir>/<db>.zip, everything under a single
// top-level <db>/ directory. Missing artifacts are skipped.
func buildArchive(outDir, wfDir, db string) error {
	path := filepath.Join(outDir, db+".zip")
	zap.L().Info("convert: creating archive", zap.String("file", filepath.Base(path)))

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "convert: create archive %s", path)
	}
	defer f.Close() //nolint:errcheck

	zw := zip.NewWriter(f)

	addFile := func(src, name string) error {
		in, err := os.Open(src)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return eris.Wrapf(err, "convert: open %s", src)
		}
		defer in.Close() //nolint:errcheck

		w, err := zw.Create(name)
		if err != nil {
			return eris.Wrapf(err, "convert: add archive entry %s", name)
		}
		if _, err := io.Copy(w, in); err != nil {
			return eris.Wrapf(err, "convert: write archive entry %s", name)
		}
		return nil
	}

	if err := addFile(filepath.Join(wfDir, db+".w"), db+"/"+db+".w"); err != nil {
		return err
	}
	for _, table := range tableNames {
		name := db + "." + table
		if err := addFile(filepath.Join(outDir, name), db+"/"+name); err != nil {
			return err
		}
	}

	respDir := filepath.Join(outDir, "response")
	entries, err := os.ReadDir(respDir)
	if err != nil && !os.IsNotExist(err) {
		return eris.Wrapf(err, "convert: read response dir %s", respDir)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := addFile(filepath.Join(respDir, e.Name()), db+"/response/"+e.Name()); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return eris.Wrapf(err, "convert: finalize archive %s", path)
	}
	return nil
}
