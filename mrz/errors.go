package mrz

import "fmt"

// ErrUnknownFormat is returned when the trimmed, non-blank lines of the
// input do not match one of the three (line count, line width) shapes
// for TD1 (3x30), TD2 (2x36), or TD3 (2x44).
type ErrUnknownFormat struct {
	LineCount int
	Widths    []int
}

func (e ErrUnknownFormat) Error() string {
	return fmt.Sprintf("mrz: unrecognized MRZ shape: %d lines of widths %v", e.LineCount, e.Widths)
}

// ErrBadCheckDigit reports a check-digit mismatch, holding both the digit
// printed on the document and the digit this implementation computed, for
// diagnostics.
type ErrBadCheckDigit struct {
	Which    string
	Read     int
	Computed int
}

func (e ErrBadCheckDigit) Error() string {
	return fmt.Sprintf("mrz: bad check digit for %s: read %d, computed %d", e.Which, e.Read, e.Computed)
}
