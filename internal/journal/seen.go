package journal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
)

// uuidRe matches the UUID metadata comment the importer writes on every
// imported transaction.
var uuidRe = regexp.MustCompile(`^\s*;\s*UUID:\s*(\S+)`)

// SeenUUIDs scans ledger text for UUID metadata lines and returns the set of
// fingerprints already materialized. This set is the sole deduplication key
// for repeated imports.
func SeenUUIDs(r io.Reader) (map[string]bool, error) {
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if m := uuidRe.FindStringSubmatch(scanner.Text()); m != nil {
			seen[m[1]] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning ledger: %w", err)
	}
	return seen, nil
}

// LoadSeen merges the seen-UUID sets of the given ledger files. Files that do
// not exist yet contribute nothing.
func LoadSeen(paths ...string) (map[string]bool, error) {
	seen := make(map[string]bool)
	for _, path := range paths {
		f, err := os.Open(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("opening ledger %s: %w", path, err)
		}

		s, err := SeenUUIDs(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("reading ledger %s: %w", path, err)
		}
		for id := range s {
			seen[id] = true
		}
	}
	return seen, nil
}
