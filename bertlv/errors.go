package bertlv

import (
	"errors"
	"fmt"
)

// ErrEndOfStream is returned by Decode when called on an empty buffer —
// the normal, non-error termination condition for a decode loop.
var ErrEndOfStream = errors.New("bertlv: end of stream")

// ErrUnexpectedEOF indicates the source ran out of bytes mid-record: a
// header was present but its declared content was short, or a constructed
// block's window ended with a partial child.
var ErrUnexpectedEOF = errors.New("bertlv: unexpected end of data")

// ErrUnsupported is returned for well-formed but unsupported encodings,
// currently only the BER-TLV indefinite-length form (0x80), which this
// codec rejects per spec.
type ErrUnsupported struct {
	What string
}

func (e ErrUnsupported) Error() string {
	return fmt.Sprintf("bertlv: unsupported: %s", e.What)
}

// ErrOverflow is returned when a tag number or length value exceeds what
// this codec's destination integer type can represent.
type ErrOverflow struct {
	Field string
}

func (e ErrOverflow) Error() string {
	return fmt.Sprintf("bertlv: overflow: %s", e.Field)
}
