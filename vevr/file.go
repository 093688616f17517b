package vevr

import (
	"fmt"
	"os"
)

// LoadRecordFile reads a raw VEVR-01 file dump from disk and decodes it
// exactly as ReadRecord would decode the bytes off a card, following the
// teacher's convention of a thin os.ReadFile wrapper around the real
// decode function (e.g. mrz.ParseFile).
func LoadRecordFile(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vevr: reading %s: %w", path, err)
	}
	return decodeRecord(data)
}
