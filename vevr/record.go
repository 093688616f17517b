// Package vevr reads and verifies VEVR-01 vehicle-registration card
// records: a plain (no BAC, no secure messaging) BER-TLV-framed file
// holding a registration data object, an X.509 certificate, and an ECDSA
// signature over the data object. This is domain-stack plumbing, not part
// of the eMRTD hard core, but it shares the same BER-TLV codec and
// transport abstraction.
package vevr

import "docreader/bertlv"

// Record is the decoded content of one VEVR-01 elementary file: the
// opaque registration data object, the DER-encoded certificate that
// signed it, and the raw ECDSA signature bytes.
type Record struct {
	DataObject  bertlv.Block
	Certificate bertlv.Block
	Signature   bertlv.Block
	Verified    bool
}

// BER-TLV tags used by the VEVR-01 file format: three sibling
// Application-class blocks.
const (
	tagDataObject  = 1
	tagCertificate = 2
	tagSignature   = 3
)
