// Package iso7816 models the ISO 7816-4 command/response APDU pair and the
// abstract transport that carries them. The hard core (bertlv, mrz, bac,
// securemsg) depends only on the Transport interface defined here; a
// concrete PC/SC-backed implementation lives in package pcsc.
package iso7816

import (
	"context"
	"fmt"
)

// Case enumerates the four ISO 7816-3 APDU cases (short and extended Lc/Le
// variants), describing which of the data/Le fields are present.
type Case int

const (
	Case1        Case = iota // no data, no Le
	Case2Short               // no data, short Le
	Case2Extended            // no data, extended Le
	Case3Short               // short data, no Le
	Case3Extended            // extended data, no Le
	Case4Short               // short data, short Le
	Case4Extended            // extended data, extended Le
)

// IsSendingData reports whether a CommandAPDU of this case carries a data field.
func (c Case) IsSendingData() bool {
	switch c {
	case Case3Short, Case3Extended, Case4Short, Case4Extended:
		return true
	default:
		return false
	}
}

// IsReceivingData reports whether a CommandAPDU of this case expects response data.
func (c Case) IsReceivingData() bool {
	switch c {
	case Case2Short, Case2Extended, Case4Short, Case4Extended:
		return true
	default:
		return false
	}
}

func (c Case) String() string {
	switch c {
	case Case1:
		return "Case1"
	case Case2Short:
		return "Case2Short"
	case Case2Extended:
		return "Case2Extended"
	case Case3Short:
		return "Case3Short"
	case Case3Extended:
		return "Case3Extended"
	case Case4Short:
		return "Case4Short"
	case Case4Extended:
		return "Case4Extended"
	default:
		return fmt.Sprintf("Case(%d)", int(c))
	}
}

// CommandAPDU is an ISO 7816-4 command.
type CommandAPDU struct {
	CLA  byte
	INS  byte
	P1   byte
	P2   byte
	Data []byte // nil when the case does not send data
	Le   *int   // nil when the case does not expect data; 0 means "up to the maximum"
	Case Case
}

// ResponseAPDU is an ISO 7816-4 response: a data field followed by the two
// status bytes.
type ResponseAPDU struct {
	Data []byte
	SW1  byte
	SW2  byte
}

// SW returns the status word as a single 16-bit value.
func (r ResponseAPDU) SW() uint16 {
	return uint16(r.SW1)<<8 | uint16(r.SW2)
}

// IsOK reports whether the response signals success (SW=9000).
func (r ResponseAPDU) IsOK() bool {
	return r.SW() == SWOK
}

// Error returns a descriptive error if the response did not signal success.
func (r ResponseAPDU) Error() error {
	if r.IsOK() {
		return nil
	}
	return fmt.Errorf("APDU error: SW=%04X (%s)", r.SW(), SWToString(r.SW()))
}

// Status-word constants used throughout BAC/Secure-Messaging/VEVR-01 flows.
const (
	SWOK               uint16 = 0x9000
	SWEndOfFile        uint16 = 0x6B00
	SWNotFound         uint16 = 0x6A82
	SWWrongLength      uint16 = 0x6700
	SWSecurityNotSatis uint16 = 0x6982
	SWConditionsNotSat uint16 = 0x6985
	SWWrongP1P2        uint16 = 0x6A86
	SWInsNotSupported  uint16 = 0x6D00
	SWClaNotSupported  uint16 = 0x6E00
)

// SWToString renders a status word as a short human-readable description,
// following the teacher's SWToString convention in card/apdu.go.
func SWToString(sw uint16) string {
	switch sw {
	case SWOK:
		return "Success"
	case SWEndOfFile:
		return "End of file / record reached"
	case SWNotFound:
		return "File or record not found"
	case SWWrongLength:
		return "Wrong length"
	case SWSecurityNotSatis:
		return "Security status not satisfied"
	case SWConditionsNotSat:
		return "Conditions of use not satisfied"
	case SWWrongP1P2:
		return "Incorrect P1 P2"
	case SWInsNotSupported:
		return "Instruction not supported"
	case SWClaNotSupported:
		return "Class not supported"
	default:
		sw1 := byte(sw >> 8)
		sw2 := byte(sw)
		if sw1 == 0x61 {
			return fmt.Sprintf("%d bytes available", sw2)
		}
		if sw1 == 0x6C {
			return fmt.Sprintf("retry with Le=%d", sw2)
		}
		return "unknown status"
	}
}

// Transport is the abstract collaborator the hard core depends on: send one
// CommandAPDU, get back one ResponseAPDU. Concrete implementations (PC/SC,
// a secure-messaging wrapper) live outside this package.
type Transport interface {
	Transmit(ctx context.Context, cmd CommandAPDU) (ResponseAPDU, error)
	Protocol() string
}

// Marshal renders cmd as the raw bytes a transport sends over the wire,
// following the teacher's manual byte-assembly idiom in card/apdu.go's
// Select/ReadBinary (header bytes, then Lc+data, then Le). Only the short
// (single-byte Lc/Le) cases are supported — nothing in this module ever
// needs extended-length APDUs.
func (cmd CommandAPDU) Marshal() ([]byte, error) {
	switch cmd.Case {
	case Case2Extended, Case3Extended, Case4Extended:
		return nil, fmt.Errorf("iso7816: extended-length APDUs are not supported")
	}

	out := []byte{cmd.CLA, cmd.INS, cmd.P1, cmd.P2}
	if cmd.Case.IsSendingData() {
		if len(cmd.Data) > 255 {
			return nil, fmt.Errorf("iso7816: short APDU data too long: %d bytes", len(cmd.Data))
		}
		out = append(out, byte(len(cmd.Data)))
		out = append(out, cmd.Data...)
	}
	if cmd.Case.IsReceivingData() {
		if cmd.Le == nil {
			return nil, fmt.Errorf("iso7816: case %s requires Le", cmd.Case)
		}
		out = append(out, byte(*cmd.Le))
	}
	return out, nil
}

// ParseResponseAPDU splits raw transport bytes into a ResponseAPDU: the
// trailing two status bytes and everything before them as data, following
// card/apdu.go's SendAPDU parsing.
func ParseResponseAPDU(raw []byte) (ResponseAPDU, error) {
	if len(raw) < 2 {
		return ResponseAPDU{}, fmt.Errorf("iso7816: response too short: %d bytes", len(raw))
	}
	return ResponseAPDU{
		Data: raw[:len(raw)-2],
		SW1:  raw[len(raw)-2],
		SW2:  raw[len(raw)-1],
	}, nil
}
