package vevr

import "fmt"

// ErrUnsupportedKey reports that a certificate's public key is not ECDSA,
// which is the only key type VEVR-01 verification supports.
type ErrUnsupportedKey struct {
	KeyType string
}

func (e ErrUnsupportedKey) Error() string {
	return fmt.Sprintf("vevr: unsupported certificate public key type: %s", e.KeyType)
}

// ErrMissingBlock reports that a required tag was absent from the decoded
// file content.
type ErrMissingBlock struct {
	What string
}

func (e ErrMissingBlock) Error() string {
	return fmt.Sprintf("vevr: missing %s block in file content", e.What)
}
