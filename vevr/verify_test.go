package vevr

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"docreader/bertlv"
)

// buildSignedRecord generates a self-signed ECDSA certificate, signs the
// canonical encoding of dataObject with the certificate's private key, and
// wraps everything into a Record the way ReadRecord/LoadRecordFile would.
func buildSignedRecord(t *testing.T, dataObject bertlv.Block) *Record {
	t.Helper()

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "vevr-test"},
		NotBefore:    time.Unix(0, 0),
		NotAfter:     time.Unix(0, 0).Add(100 * 365 * 24 * time.Hour),
	}
	certDER, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("CreateCertificate() error = %v", err)
	}

	digest := sha256.Sum256(bertlv.Encode(dataObject))
	sig, err := ecdsa.SignASN1(rand.Reader, priv, digest[:])
	if err != nil {
		t.Fatalf("SignASN1() error = %v", err)
	}

	return &Record{
		DataObject:  dataObject,
		Certificate: bertlv.NewPrimitive(bertlv.ClassApplication, tagCertificate, certDER),
		Signature:   bertlv.NewPrimitive(bertlv.ClassApplication, tagSignature, sig),
	}
}

func sampleDataObject() bertlv.Block {
	return bertlv.NewConstructed(bertlv.ClassApplication, tagDataObject, []bertlv.Block{
		bertlv.NewPrimitive(bertlv.ClassContextSpecific, 1, []byte("PLATE-XYZ-123")),
		bertlv.NewPrimitive(bertlv.ClassContextSpecific, 2, []byte{0x20, 0x26, 0x07, 0x29}),
	})
}

func TestVerify_ValidSignature(t *testing.T) {
	rec := buildSignedRecord(t, sampleDataObject())

	ok, err := Verify(rec)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !ok {
		t.Fatal("Verify() = false, want true for an untampered record")
	}
	if !rec.Verified {
		t.Error("Verify() succeeded but did not set rec.Verified")
	}
}

func TestVerify_TamperedDataObjectFailsVerification(t *testing.T) {
	rec := buildSignedRecord(t, sampleDataObject())

	rec.DataObject = bertlv.NewConstructed(bertlv.ClassApplication, tagDataObject, []bertlv.Block{
		bertlv.NewPrimitive(bertlv.ClassContextSpecific, 1, []byte("PLATE-TAMPERED")),
	})

	ok, err := Verify(rec)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if ok {
		t.Fatal("Verify() = true for a tampered data object, want false")
	}
	if rec.Verified {
		t.Error("rec.Verified = true after a failed verification")
	}
}

func TestVerify_WrongKeyTypeIsRejected(t *testing.T) {
	rec := buildSignedRecord(t, sampleDataObject())

	rsaCertDER := rsaSelfSignedCertDER(t)
	rec.Certificate = bertlv.NewPrimitive(bertlv.ClassApplication, tagCertificate, rsaCertDER)

	_, err := Verify(rec)
	if err == nil {
		t.Fatal("Verify() expected error for an RSA certificate, got nil")
	}
	if _, ok := err.(ErrUnsupportedKey); !ok {
		t.Errorf("Verify() error type = %T, want ErrUnsupportedKey", err)
	}
}

func rsaSelfSignedCertDER(t *testing.T) []byte {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa.GenerateKey() error = %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "vevr-rsa-test"},
		NotBefore:    time.Unix(0, 0),
		NotAfter:     time.Unix(0, 0).Add(100 * 365 * 24 * time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("CreateCertificate() error = %v", err)
	}
	return der
}
