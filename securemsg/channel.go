// Package securemsg implements the ICAO 9303 Secure Messaging channel: a
// stateful ISO 7816 APDU wrapper that encrypts outbound command data,
// verifies and decrypts inbound response data, and maintains the Send
// Sequence Counter that binds every message to its position in the
// session. It is the counterpart of the teacher's GlobalPlatform SCP02
// session wrapper, rebuilt around BAC-derived session keys and BER-TLV
// wire framing instead of GP's flat MAC-appended layout.
package securemsg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"docreader/bertlv"
	"docreader/cryptoutil"
	"docreader/iso7816"
)

// state tracks the channel's lifecycle per the spec's Fresh/Live state
// machine; poisoning is tracked separately since it can occur from either
// state.
type state int

const (
	stateFresh state = iota
	stateLive
)

// Channel wraps an iso7816.Transport with BAC-derived Secure Messaging.
// It exclusively owns the session keys and the Send Sequence Counter for
// its lifetime; there is no thread-safe alternative and none is offered —
// callers must not share a Channel across goroutines.
type Channel struct {
	transport iso7816.Transport

	kEnc []byte // 24-byte expanded 3DES key
	kMac []byte // 24-byte expanded 3DES key

	ssc [8]byte

	state    state
	poisoned bool
}

// New constructs a freshly authenticated Channel from BAC's output: the
// two 16-byte session keys and the initial 8-byte SSC.
func New(transport iso7816.Transport, kEncSess, kMacSess []byte, ssc [8]byte) (*Channel, error) {
	enc, err := cryptoutil.ExpandTo3DESKey(kEncSess)
	if err != nil {
		return nil, fmt.Errorf("securemsg: session encryption key: %w", err)
	}
	mac, err := cryptoutil.ExpandTo3DESKey(kMacSess)
	if err != nil {
		return nil, fmt.Errorf("securemsg: session MAC key: %w", err)
	}
	return &Channel{
		transport: transport,
		kEnc:      enc,
		kMac:      mac,
		ssc:       ssc,
		state:     stateFresh,
	}, nil
}

// Protocol reports the protocol of the underlying transport.
func (c *Channel) Protocol() string { return c.transport.Protocol() }

// Close zeroes the session keys in place. The underlying transport is the
// caller's responsibility to release.
func (c *Channel) Close() {
	for i := range c.kEnc {
		c.kEnc[i] = 0
	}
	for i := range c.kMac {
		c.kMac[i] = 0
	}
	c.poisoned = true
}

// Transmit wraps cmd, sends it over the underlying transport, and unwraps
// the response. cmd.CLA must be 0x00 (rewritten to 0x0C for the wire); any
// other CLA is rejected. Any MAC or cipher-format failure poisons the
// channel for the rest of its lifetime.
func (c *Channel) Transmit(ctx context.Context, cmd iso7816.CommandAPDU) (iso7816.ResponseAPDU, error) {
	if c.poisoned {
		return iso7816.ResponseAPDU{}, ErrPoisoned
	}
	if cmd.CLA != 0x00 {
		return iso7816.ResponseAPDU{}, fmt.Errorf("securemsg: CLA must be 0x00, got 0x%02X", cmd.CLA)
	}

	wireCmd, err := c.wrap(cmd)
	if err != nil {
		return iso7816.ResponseAPDU{}, err
	}

	raw, err := c.transport.Transmit(ctx, wireCmd)
	if err != nil {
		return iso7816.ResponseAPDU{}, err
	}

	resp, err := c.unwrap(raw)
	if err != nil {
		c.poisoned = true
		return iso7816.ResponseAPDU{}, err
	}
	c.state = stateLive
	return resp, nil
}

// wrap implements the outbound transformation described in the Secure
// Messaging component design: optional encrypted-data block, optional
// expected-length block, then a MAC block computed over the SSC, a
// rewritten header, and the assembled body.
func (c *Channel) wrap(cmd iso7816.CommandAPDU) (iso7816.CommandAPDU, error) {
	var blocks []bertlv.Block

	if cmd.Case.IsSendingData() {
		padded := cryptoutil.ISO7816Pad(cmd.Data, 8)
		enc, err := cryptoutil.TripleDESCBCEncrypt(c.kEnc, make([]byte, 8), padded)
		if err != nil {
			return iso7816.CommandAPDU{}, fmt.Errorf("securemsg: encrypting command data: %w", err)
		}
		value := append([]byte{0x01}, enc...)
		blocks = append(blocks, bertlv.NewPrimitive(bertlv.ClassContextSpecific, 0x07, value))
	}

	if cmd.Case.IsReceivingData() {
		var leBytes []byte
		le := 0
		if cmd.Le != nil {
			le = *cmd.Le
		}
		switch cmd.Case {
		case iso7816.Case2Extended, iso7816.Case4Extended:
			leBytes = []byte{byte(le >> 8), byte(le)}
		default:
			leBytes = []byte{byte(le)}
		}
		blocks = append(blocks, bertlv.NewPrimitive(bertlv.ClassContextSpecific, 0x17, leBytes))
	}

	macHeader := cryptoutil.ISO7816Pad([]byte{0x0C, cmd.INS, cmd.P1, cmd.P2}, 8)

	cryptoutil.Increment(c.ssc[:])

	fullBody := encodeAll(blocks)
	mIn := append(append([]byte{}, c.ssc[:]...), macHeader...)
	mIn = append(mIn, fullBody...)

	// RetailMAC applies the ISO 7816-4 padding itself.
	mac, err := cryptoutil.RetailMAC(c.kMac, make([]byte, 8), mIn)
	if err != nil {
		return iso7816.CommandAPDU{}, fmt.Errorf("securemsg: computing C-MAC: %w", err)
	}
	blocks = append(blocks, bertlv.NewPrimitive(bertlv.ClassContextSpecific, 0x0E, mac))
	fullBody = encodeAll(blocks)

	zero := 0
	return iso7816.CommandAPDU{
		CLA:  0x0C,
		INS:  cmd.INS,
		P1:   cmd.P1,
		P2:   cmd.P2,
		Data: fullBody,
		Le:   &zero,
		Case: iso7816.Case4Short,
	}, nil
}

// unwrap implements the inbound transformation: parse the response body as
// sibling BER-TLV blocks, verify the MAC, extract the status and data
// blocks, and decrypt/unpad the data block if present.
func (c *Channel) unwrap(resp iso7816.ResponseAPDU) (iso7816.ResponseAPDU, error) {
	if len(resp.Data) == 0 {
		return resp, nil
	}

	blocks, err := bertlv.DecodeAll(resp.Data)
	if err != nil {
		if errors.Is(err, bertlv.ErrUnexpectedEOF) {
			return iso7816.ResponseAPDU{}, ErrUnexpectedEOF
		}
		return iso7816.ResponseAPDU{}, fmt.Errorf("securemsg: decoding response body: %w", err)
	}

	cryptoutil.Increment(c.ssc[:])

	var withoutMAC []bertlv.Block
	for _, b := range blocks {
		if !b.Matches(bertlv.ClassContextSpecific, 0x0E, false) {
			withoutMAC = append(withoutMAC, b)
		}
	}
	mIn := append(append([]byte{}, c.ssc[:]...), encodeAll(withoutMAC)...)
	expectedMAC, err := cryptoutil.RetailMAC(c.kMac, make([]byte, 8), mIn)
	if err != nil {
		return iso7816.ResponseAPDU{}, fmt.Errorf("securemsg: computing expected R-MAC: %w", err)
	}

	if macBlock, ok := findBlock(blocks, bertlv.ClassContextSpecific, 0x0E, false); ok {
		if !bytes.Equal(macBlock.Raw(), expectedMAC) {
			return iso7816.ResponseAPDU{}, ErrMacFailure{Process: "secure messaging unwrap"}
		}
	} else {
		slog.Warn("securemsg: response carried no MAC block; skipping MAC verification")
	}

	sw1, sw2 := resp.SW1, resp.SW2
	if statusBlock, ok := findBlock(blocks, bertlv.ClassContextSpecific, 0x19, false); ok {
		raw := statusBlock.Raw()
		if len(raw) == 2 {
			sw1, sw2 = raw[0], raw[1]
		}
	}

	var plaintext []byte
	if dataBlock, ok := findBlock(blocks, bertlv.ClassContextSpecific, 0x07, false); ok {
		raw := dataBlock.Raw()
		if len(raw) == 0 || raw[0] != 0x01 {
			return iso7816.ResponseAPDU{}, ErrCipherFormat{Process: "secure messaging unwrap", Detail: "missing or wrong padding-indicator byte"}
		}
		dec, err := cryptoutil.TripleDESCBCDecrypt(c.kEnc, make([]byte, 8), raw[1:])
		if err != nil {
			return iso7816.ResponseAPDU{}, fmt.Errorf("securemsg: decrypting response data: %w", err)
		}
		plaintext, err = cryptoutil.ISO7816Unpad(dec)
		if err != nil {
			return iso7816.ResponseAPDU{}, ErrCipherFormat{Process: "secure messaging unwrap", Detail: err.Error()}
		}
	}

	return iso7816.ResponseAPDU{Data: plaintext, SW1: sw1, SW2: sw2}, nil
}

func encodeAll(blocks []bertlv.Block) []byte {
	var out []byte
	for _, b := range blocks {
		out = append(out, bertlv.Encode(b)...)
	}
	return out
}

func findBlock(blocks []bertlv.Block, class bertlv.Class, tag uint64, constructed bool) (bertlv.Block, bool) {
	for _, b := range blocks {
		if b.Matches(class, tag, constructed) {
			return b, true
		}
	}
	return bertlv.Block{}, false
}

