// Package bac implements ICAO 9303 Basic Access Control: deriving a
// document key pair from the MRZ and running the GET CHALLENGE / EXTERNAL
// AUTHENTICATE handshake that upgrades a bare ISO 7816 transport into an
// authenticated securemsg.Channel. The handshake shape mirrors the
// teacher's card.OpenSCP02 (challenge exchange, derive session keys,
// verify a cryptogram, authenticate back), rebuilt around SHA-1
// MRZ-seeded derivation instead of a static GlobalPlatform key.
package bac

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"fmt"

	"docreader/cryptoutil"
	"docreader/iso7816"
	"docreader/mrz"
	"docreader/securemsg"
)

// DocumentKeys holds the pair of 16-byte document keys derived from an MRZ
// record, used as the starting point of the BAC challenge-response.
type DocumentKeys struct {
	KEnc []byte
	KMac []byte
}

// DeriveDocumentKeys implements the spec's key-derivation-from-MRZ
// procedure: build the BAC seed string from the document number, date of
// birth, and date of expiry (each followed by its own check digit), hash
// it with SHA-1, and derive KEnc/KMac from the resulting seed.
func DeriveDocumentKeys(rec mrz.Record) (DocumentKeys, error) {
	docNumber := padFillerTo9(rec.DocumentNumber)
	docCheck, err := mrz.CheckDigit(docNumber)
	if err != nil {
		return DocumentKeys{}, fmt.Errorf("bac: document number check digit: %w", err)
	}
	dobCheck, err := mrz.CheckDigit(rec.DateOfBirth)
	if err != nil {
		return DocumentKeys{}, fmt.Errorf("bac: date of birth check digit: %w", err)
	}
	expiryCheck, err := mrz.CheckDigit(rec.DateOfExpiry)
	if err != nil {
		return DocumentKeys{}, fmt.Errorf("bac: date of expiry check digit: %w", err)
	}

	s := fmt.Sprintf("%s%d%s%d%s%d", docNumber, docCheck, rec.DateOfBirth, dobCheck, rec.DateOfExpiry, expiryCheck)

	seedHash := sha1.Sum([]byte(s))
	kSeed := seedHash[:16]

	return DocumentKeys{KEnc: derive(kSeed, 1), KMac: derive(kSeed, 2)}, nil
}

// padFillerTo9 right-pads a document number with '<' filler to the
// 9-character width the check-digit seed string requires, matching the
// fixed-column MRZ field it was originally extracted from.
func padFillerTo9(docNumber string) string {
	if len(docNumber) >= 9 {
		return docNumber[:9]
	}
	out := docNumber
	for len(out) < 9 {
		out += "<"
	}
	return out
}

// derive computes the first 16 bytes of SHA-1(seed || c_as_big_endian_u32),
// the key/MAC derivation function shared by document-key and session-key
// derivation.
func derive(seed []byte, c uint32) []byte {
	var cBytes [4]byte
	binary.BigEndian.PutUint32(cBytes[:], c)
	h := sha1.New()
	h.Write(seed)
	h.Write(cBytes[:])
	sum := h.Sum(nil)
	return sum[:16]
}

// RunBAC performs the full Basic Access Control handshake over t using
// keys derived from rec, and returns a freshly authenticated
// securemsg.Channel on success.
func RunBAC(ctx context.Context, t iso7816.Transport, rec mrz.Record) (*securemsg.Channel, error) {
	keys, err := DeriveDocumentKeys(rec)
	if err != nil {
		return nil, err
	}

	le8 := 8
	challengeCmd := iso7816.CommandAPDU{CLA: 0x00, INS: 0x84, P1: 0x00, P2: 0x00, Le: &le8, Case: iso7816.Case2Short}
	challengeResp, err := t.Transmit(ctx, challengeCmd)
	if err != nil {
		return nil, fmt.Errorf("bac: GET CHALLENGE: %w", err)
	}
	if !challengeResp.IsOK() {
		return nil, securemsg.ErrCommunication{Process: "GET CHALLENGE", SW: challengeResp.SW()}
	}
	icRnd := challengeResp.Data
	if len(icRnd) != 8 {
		return nil, fmt.Errorf("bac: GET CHALLENGE returned %d bytes, want 8", len(icRnd))
	}

	ifdRnd := make([]byte, 8)
	if err := cryptoutil.FillRandom(ifdRnd); err != nil {
		return nil, fmt.Errorf("bac: generating ifdRnd: %w", err)
	}
	ifdKey := make([]byte, 16)
	if err := cryptoutil.FillRandom(ifdKey); err != nil {
		return nil, fmt.Errorf("bac: generating ifdKey: %w", err)
	}

	s := append(append(append([]byte{}, ifdRnd...), icRnd...), ifdKey...)
	e, err := cryptoutil.TripleDESCBCEncrypt(keys.KEnc, make([]byte, 8), s)
	if err != nil {
		return nil, fmt.Errorf("bac: encrypting authentication data: %w", err)
	}
	m, err := cryptoutil.RetailMAC(keys.KMac, make([]byte, 8), e)
	if err != nil {
		return nil, fmt.Errorf("bac: computing authentication MAC: %w", err)
	}

	authData := append(append([]byte{}, e...), m...)
	le40 := 40
	authCmd := iso7816.CommandAPDU{CLA: 0x00, INS: 0x82, P1: 0x00, P2: 0x00, Data: authData, Le: &le40, Case: iso7816.Case4Short}
	authResp, err := t.Transmit(ctx, authCmd)
	if err != nil {
		return nil, fmt.Errorf("bac: EXTERNAL AUTHENTICATE: %w", err)
	}
	if !authResp.IsOK() {
		return nil, securemsg.ErrCommunication{Process: "EXTERNAL AUTHENTICATE", SW: authResp.SW()}
	}
	if len(authResp.Data) < 40 {
		return nil, fmt.Errorf("bac: EXTERNAL AUTHENTICATE response too short: %d bytes", len(authResp.Data))
	}

	encPart := authResp.Data[0:32]
	macPart := authResp.Data[32:40]

	expectedMAC, err := cryptoutil.RetailMAC(keys.KMac, make([]byte, 8), encPart)
	if err != nil {
		return nil, fmt.Errorf("bac: computing response MAC: %w", err)
	}
	if !bytes.Equal(expectedMAC, macPart) {
		return nil, securemsg.ErrMacFailure{Process: "BAC response verification"}
	}

	dec, err := cryptoutil.TripleDESCBCDecrypt(keys.KEnc, make([]byte, 8), encPart)
	if err != nil {
		return nil, fmt.Errorf("bac: decrypting response: %w", err)
	}
	// dec[0:8] is icRnd' (not independently verified, since icRnd was never
	// secret); dec[8:16] must echo ifdRnd; dec[16:32] is the card's key half.
	ifdRndEcho := dec[8:16]
	icKey := dec[16:32]

	if !bytes.Equal(ifdRndEcho, ifdRnd) {
		return nil, securemsg.ErrNonceMismatch
	}

	sessionSeed := make([]byte, 16)
	for i := range sessionSeed {
		sessionSeed[i] = ifdKey[i] ^ icKey[i]
	}

	kEncSess := derive(sessionSeed, 1)
	kMacSess := derive(sessionSeed, 2)

	var ssc [8]byte
	copy(ssc[0:4], icRnd[4:8])
	copy(ssc[4:8], ifdRnd[4:8])

	return securemsg.New(t, kEncSess, kMacSess, ssc)
}
