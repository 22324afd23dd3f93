package unitfile

import (
	"os"
	"path/filepath"
)

// unitExtensions are the file suffixes the parser recognizes; anything
// else in a unit directory is ignored (matching §6: the directory may
// hold arbitrary non-unit files, e.g. a README).
var unitExtensions = map[string]bool{
	".jig":       true,
	".scenario":  true,
	".test":      true,
	".interface": true,
}

// LoadDir parses every recognized unit file directly inside dir (not
// recursively — the external unit watcher in the real deployment is
// what would walk a nested layout; this loader covers the common flat
// case a "run"/"validate" CLI command needs at startup). It returns one
// ParseResult per file that parsed successfully; files that fail to
// parse are reported in errs, keyed by path, rather than aborting the
// whole load — a single malformed unit file should not stop every
// other unit in the directory from loading.
func LoadDir(dir string) ([]*ParseResult, map[string]error) {
	errs := make(map[string]error)

	entries, err := os.ReadDir(dir)
	if err != nil {
		errs[dir] = err
		return nil, errs
	}

	var results []*ParseResult
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !unitExtensions[filepath.Ext(entry.Name())] {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			errs[path] = err
			continue
		}

		result, err := ParseFile(path, data)
		if err != nil {
			errs[path] = err
			continue
		}
		results = append(results, result)
	}

	return results, errs
}
