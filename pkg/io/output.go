package io

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// OutputTo writes files under dest in order, creating parent directories as needed and
// replacing any existing content. It stops at the first failure.
func OutputTo(files []File, dest string) error {
	for _, f := range files {
		if err := writeFile(f, dest); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(f File, dest string) error {
	path := filepath.Join(dest, f.Path())
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "could not create directory for %s", path)
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, "could not open %s", path)
	}
	_, err = f.WriteTo(out)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Wrapf(err, "could not write %s", path)
	}
	return nil
}
