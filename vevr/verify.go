package vevr

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"crypto/x509"
	"fmt"

	"docreader/bertlv"
)

// Verify checks rec.Signature against the SHA-256 digest of rec.DataObject
// re-encoded canonically, using the public key carried in rec.Certificate.
// It sets rec.Verified and also returns the result directly so callers
// can act on it without inspecting the record afterwards.
func Verify(rec *Record) (bool, error) {
	cert, err := x509.ParseCertificate(rec.Certificate.Raw())
	if err != nil {
		return false, fmt.Errorf("vevr: parsing certificate: %w", err)
	}

	pub, ok := cert.PublicKey.(*ecdsa.PublicKey)
	if !ok {
		return false, ErrUnsupportedKey{KeyType: fmt.Sprintf("%T", cert.PublicKey)}
	}

	digest := sha256.Sum256(bertlv.Encode(rec.DataObject))

	ok = ecdsa.VerifyASN1(pub, digest[:], rec.Signature.Raw())
	rec.Verified = ok
	return ok, nil
}
