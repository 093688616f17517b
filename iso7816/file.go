package iso7816

import "context"

// SelectFile issues SELECT FILE (by 2-byte EF identifier) under the plain
// CLA 0x00, the shared first step of every elementary-file read whether or
// not the transport underneath is secure-messaging-wrapped.
func SelectFile(ctx context.Context, t Transport, fileID []byte) error {
	cmd := CommandAPDU{CLA: 0x00, INS: 0xA4, P1: 0x00, P2: 0x0C, Data: fileID, Case: Case3Short}
	resp, err := t.Transmit(ctx, cmd)
	if err != nil {
		return err
	}
	if !resp.IsOK() {
		return resp.Error()
	}
	return nil
}

// ReadBinaryAll reads the full content of the currently selected elementary
// file by looping READ BINARY over successive offsets, following the
// teacher's Reader.ReadAllBinary offset-cursor idiom but without a
// pre-known file size: it stops at the first short read or an end-of-file/
// not-found status.
func ReadBinaryAll(ctx context.Context, t Transport) ([]byte, error) {
	const chunk = 0xFF
	var data []byte
	offset := 0
	for {
		le := chunk
		cmd := CommandAPDU{
			CLA:  0x00,
			INS:  0xB0,
			P1:   byte(offset >> 8),
			P2:   byte(offset),
			Le:   &le,
			Case: Case2Short,
		}
		resp, err := t.Transmit(ctx, cmd)
		if err != nil {
			return nil, err
		}
		if resp.SW() == SWEndOfFile || resp.SW() == SWNotFound {
			break
		}
		if !resp.IsOK() && len(resp.Data) == 0 {
			return nil, resp.Error()
		}
		data = append(data, resp.Data...)
		if len(resp.Data) < chunk {
			break
		}
		offset += len(resp.Data)
	}
	return data, nil
}
