// Package feed loads partial activities from a watched source directory. The
// engine is agnostic to where the files came from; any importer producing
// partial activities can participate.
package feed

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/portwatch/reconciler/internal/domain"
)

// Importer parses one source file of partial activities.
type Importer interface {
	// Name identifies the importer in logs.
	Name() string
	// CanImport reports whether the importer accepts the file.
	CanImport(path string) bool
	// Import parses the file into partial activities for the account.
	Import(path, account string) ([]domain.PartialActivity, error)
}

// DirectoryFeed reads a source tree laid out as <dir>/<account>/<files> and
// produces partial activities per account name.
type DirectoryFeed struct {
	dir       string
	importers []Importer
}

// NewDirectoryFeed creates a feed over the given directory.
func NewDirectoryFeed(dir string, importers ...Importer) *DirectoryFeed {
	return &DirectoryFeed{dir: dir, importers: importers}
}

// Dir returns the watched directory.
func (f *DirectoryFeed) Dir() string { return f.dir }

// Load parses every account subdirectory. A file no importer accepts is logged
// with the importers that were tried and skipped; the rest of the account
// still loads.
func (f *DirectoryFeed) Load() (map[string][]domain.PartialActivity, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("reading source dir %s: %w", f.dir, err)
	}

	byAccount := make(map[string][]domain.PartialActivity)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		account := entry.Name()
		partials, err := f.loadAccount(account)
		if err != nil {
			return nil, err
		}
		byAccount[account] = partials
	}
	return byAccount, nil
}

func (f *DirectoryFeed) loadAccount(account string) ([]domain.PartialActivity, error) {
	accountDir := filepath.Join(f.dir, account)
	entries, err := os.ReadDir(accountDir)
	if err != nil {
		return nil, fmt.Errorf("reading account dir %s: %w", accountDir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			files = append(files, filepath.Join(accountDir, entry.Name()))
		}
	}
	sort.Strings(files)

	var partials []domain.PartialActivity
	for _, file := range files {
		importer, ok := f.importerFor(file)
		if !ok {
			tried := lo.Map(f.importers, func(i Importer, _ int) string { return i.Name() })
			slog.Warn("no importer accepts source file",
				"file", file, "account", account, "tried", strings.Join(tried, ","))
			continue
		}
		parsed, err := importer.Import(file, account)
		if err != nil {
			return nil, fmt.Errorf("importing %s with %s: %w", file, importer.Name(), err)
		}
		partials = append(partials, parsed...)
	}
	return partials, nil
}

func (f *DirectoryFeed) importerFor(path string) (Importer, bool) {
	for _, importer := range f.importers {
		if importer.CanImport(path) {
			return importer, true
		}
	}
	return nil, false
}
