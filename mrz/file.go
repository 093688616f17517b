package mrz

import (
	"fmt"
	"os"
)

// ParseFile reads an MRZ text file and parses it with ParseMRZ. This is
// plumbing, not core: a thin os.ReadFile wrapper, following the teacher's
// convention of keeping file I/O as a one-line wrapper around the actual
// parse function (e.g. sim/config.go's JSON-load-then-parse shape).
func ParseFile(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("mrz: reading %s: %w", path, err)
	}
	return ParseMRZ(string(data))
}
