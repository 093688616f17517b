package vevr

import (
	"bytes"
	"context"
	"testing"

	"docreader/bertlv"
	"docreader/iso7816"
)

func sampleFileBytes() []byte {
	rec := buildSignedRecordForEncoding()
	var out []byte
	out = append(out, bertlv.Encode(rec.DataObject)...)
	out = append(out, bertlv.Encode(rec.Certificate)...)
	out = append(out, bertlv.Encode(rec.Signature)...)
	return out
}

// paddedFileBytes appends an unrecognized filler block large enough to push
// the total file content past a single 255-byte READ BINARY response, so
// ReadRecord must loop.
func paddedFileBytes() []byte {
	filler := bertlv.NewPrimitive(bertlv.ClassContextSpecific, 99, bytes.Repeat([]byte{0xAA}, 300))
	return append(sampleFileBytes(), bertlv.Encode(filler)...)
}

// buildSignedRecordForEncoding builds a Record with placeholder (unsigned)
// certificate/signature bytes, since read_test.go only exercises the
// SELECT/READ BINARY/decode plumbing, not signature verification.
func buildSignedRecordForEncoding() *Record {
	return &Record{
		DataObject:  sampleDataObject(),
		Certificate: bertlv.NewPrimitive(bertlv.ClassApplication, tagCertificate, []byte{0xDE, 0xAD, 0xBE, 0xEF}),
		Signature:   bertlv.NewPrimitive(bertlv.ClassApplication, tagSignature, []byte{0xCA, 0xFE}),
	}
}

// fakeVEVRCard serves SELECT and READ BINARY against a fixed file content,
// returning at most 255 bytes per call (as the real READ BINARY Le does) so
// iso7816.ReadBinaryAll's multi-round loop is actually exercised once content
// exceeds that.
type fakeVEVRCard struct {
	content   []byte
	selected  bool
	readCalls int
}

func (f *fakeVEVRCard) Transmit(ctx context.Context, cmd iso7816.CommandAPDU) (iso7816.ResponseAPDU, error) {
	switch cmd.INS {
	case 0xA4: // SELECT
		f.selected = true
		return iso7816.ResponseAPDU{SW1: 0x90, SW2: 0x00}, nil
	case 0xB0: // READ BINARY
		f.readCalls++
		offset := int(cmd.P1)<<8 | int(cmd.P2)
		if offset >= len(f.content) {
			return iso7816.ResponseAPDU{SW1: 0x6B, SW2: 0x00}, nil
		}
		end := offset + 255
		if end > len(f.content) {
			end = len(f.content)
		}
		return iso7816.ResponseAPDU{Data: f.content[offset:end], SW1: 0x90, SW2: 0x00}, nil
	default:
		return iso7816.ResponseAPDU{SW1: 0x6D, SW2: 0x00}, nil
	}
}

func (f *fakeVEVRCard) Protocol() string { return "fake-vevr" }

func TestReadRecord_DecodesChunkedFile(t *testing.T) {
	content := paddedFileBytes()
	if len(content) <= 255 {
		t.Fatalf("test fixture too small to exercise chunking: %d bytes", len(content))
	}
	card := &fakeVEVRCard{content: content}

	rec, err := ReadRecord(context.Background(), card, []byte{0x2F, 0x01})
	if err != nil {
		t.Fatalf("ReadRecord() error = %v", err)
	}
	if !card.selected {
		t.Error("ReadRecord() never issued SELECT")
	}
	if card.readCalls < 2 {
		t.Errorf("readCalls = %d, want at least 2 to prove the loop ran", card.readCalls)
	}
	if !bytes.Equal(bertlv.Encode(rec.DataObject), bertlv.Encode(sampleDataObject())) {
		t.Error("decoded data object does not match the original encoding")
	}
}

func TestReadRecord_PropagatesSelectFailure(t *testing.T) {
	_, err := ReadRecord(context.Background(), failingSelectCard{}, []byte{0x2F, 0x01})
	if err == nil {
		t.Fatal("ReadRecord() expected error on SELECT failure, got nil")
	}
}

type failingSelectCard struct{}

func (failingSelectCard) Transmit(ctx context.Context, cmd iso7816.CommandAPDU) (iso7816.ResponseAPDU, error) {
	return iso7816.ResponseAPDU{SW1: 0x6A, SW2: 0x82}, nil
}
func (failingSelectCard) Protocol() string { return "failing" }

func TestDecodeRecord_MissingBlock(t *testing.T) {
	only := bertlv.Encode(sampleDataObject())
	_, err := decodeRecord(only)
	if err == nil {
		t.Fatal("decodeRecord() expected error for missing certificate/signature, got nil")
	}
	if _, ok := err.(ErrMissingBlock); !ok {
		t.Errorf("decodeRecord() error type = %T, want ErrMissingBlock", err)
	}
}
