package vevr

import (
	"context"
	"fmt"

	"docreader/bertlv"
	"docreader/iso7816"
)

// ReadRecord selects fileID, reads its full binary content, decodes it as
// a sequence of sibling BER-TLV blocks, and distributes them into a
// Record by tag. No BAC or Secure Messaging is performed — the VEVR-01
// applet is unprotected by design.
func ReadRecord(ctx context.Context, t iso7816.Transport, fileID []byte) (*Record, error) {
	if err := iso7816.SelectFile(ctx, t, fileID); err != nil {
		return nil, fmt.Errorf("vevr: selecting file: %w", err)
	}
	data, err := iso7816.ReadBinaryAll(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("vevr: reading file content: %w", err)
	}
	return decodeRecord(data)
}

func decodeRecord(data []byte) (*Record, error) {
	blocks, err := bertlv.DecodeAll(data)
	if err != nil {
		return nil, fmt.Errorf("vevr: decoding file content: %w", err)
	}

	rec := &Record{}
	var haveData, haveCert, haveSig bool
	for _, b := range blocks {
		switch {
		case b.Matches(bertlv.ClassApplication, tagDataObject, true):
			rec.DataObject = b
			haveData = true
		case b.Matches(bertlv.ClassApplication, tagCertificate, false):
			rec.Certificate = b
			haveCert = true
		case b.Matches(bertlv.ClassApplication, tagSignature, false):
			rec.Signature = b
			haveSig = true
		}
	}
	if !haveData {
		return nil, ErrMissingBlock{What: "registration data object"}
	}
	if !haveCert {
		return nil, ErrMissingBlock{What: "certificate"}
	}
	if !haveSig {
		return nil, ErrMissingBlock{What: "signature"}
	}
	return rec, nil
}
