package syncer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// HashSourceTree digests every regular file under the given directories,
// ordered deterministically by path, so an unchanged source tree always
// produces the same hash and the pipeline can skip the run entirely.
func HashSourceTree(dirs ...string) (string, error) {
	var paths []string
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.Type().IsRegular() {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return "", fmt.Errorf("walking source dir %s: %w", dir, err)
		}
	}
	sort.Strings(paths)

	digest := sha256.New()
	for _, path := range paths {
		if err := hashFile(digest, path); err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(digest.Sum(nil)), nil
}

func hashFile(digest io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	// The path participates so renames are detected even when contents match.
	if _, err := io.WriteString(digest, path); err != nil {
		return err
	}
	if _, err := io.Copy(digest, f); err != nil {
		return fmt.Errorf("hashing %s: %w", path, err)
	}
	return nil
}
