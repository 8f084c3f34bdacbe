// Package archive writes timestamped tar.gz snapshots of instance
// directories.
package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/lanekit/fleetctl/internal/errors"
	"github.com/lanekit/fleetctl/internal/logging"
)

// Name returns the archive filename for an instance at the given time.
func Name(instance string, at time.Time) string {
	return fmt.Sprintf("%s-%s.tar.gz", instance, at.UTC().Format("20060102-150405"))
}

// Create packs srcDir into a gzipped tarball at destPath. Entries are stored
// relative to srcDir under a top-level directory named after the instance.
// The written archive is verified to contain at least one regular file.
func Create(instance, srcDir, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return errors.ArchiveFailed(instance, err)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return errors.ArchiveFailed(instance, err)
	}

	files, err := pack(instance, srcDir, out)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(destPath)
		return errors.ArchiveFailed(instance, err)
	}
	if files == 0 {
		_ = os.Remove(destPath)
		return errors.ArchiveFailed(instance, fmt.Errorf("no files under %s", srcDir))
	}

	logging.Debug("archive written", "instance", instance, "path", destPath, "files", files)
	return nil
}

func pack(instance, srcDir string, out io.Writer) (int, error) {
	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	files := 0
	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		// Symlinks and other irregular entries are not part of instance
		// state; skip them rather than fail the snapshot.
		if !info.Mode().IsRegular() && !info.IsDir() {
			return nil
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(filepath.Join(instance, rel))
		if info.IsDir() {
			hdr.Name += "/"
		}

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		_, err = io.Copy(tw, f)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return err
		}

		files++
		return nil
	})
	if err != nil {
		_ = tw.Close()
		_ = gz.Close()
		return 0, err
	}

	if err := tw.Close(); err != nil {
		return 0, err
	}
	if err := gz.Close(); err != nil {
		return 0, err
	}
	return files, nil
}

// List returns the archive filenames for an instance under dir, newest last.
func List(dir, instance string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	prefix := instance + "-"
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".tar.gz") {
			names = append(names, name)
		}
	}
	return names, nil
}
