// Package pcsc implements iso7816.Transport over a real PC/SC smart card
// reader, adapted from the teacher's card.Reader: the same scard.Context/
// scard.Card connection-management idiom, reshaped to speak
// CommandAPDU/ResponseAPDU instead of raw byte slices, and to accept a
// context.Context on every transmit.
package pcsc

import (
	"context"
	"fmt"

	"github.com/ebfe/scard"

	"docreader/iso7816"
)

// Transport is a PC/SC-backed iso7816.Transport for one connected card.
type Transport struct {
	ctx  *scard.Context
	card *scard.Card
	name string
	atr  []byte
}

// ListReaders returns the names of available PC/SC readers.
func ListReaders() ([]string, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("pcsc: establishing context: %w", err)
	}
	defer ctx.Release()

	readers, err := ctx.ListReaders()
	if err != nil {
		return nil, fmt.Errorf("pcsc: listing readers: %w", err)
	}
	return readers, nil
}

// Connect connects to the card present in the reader at readerIndex.
func Connect(readerIndex int) (*Transport, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("pcsc: establishing context: %w", err)
	}

	readers, err := ctx.ListReaders()
	if err != nil {
		ctx.Release()
		return nil, fmt.Errorf("pcsc: listing readers: %w", err)
	}
	if len(readers) == 0 {
		ctx.Release()
		return nil, fmt.Errorf("pcsc: no smart card readers found")
	}
	if readerIndex < 0 || readerIndex >= len(readers) {
		ctx.Release()
		return nil, fmt.Errorf("pcsc: reader index %d out of range (0-%d)", readerIndex, len(readers)-1)
	}

	readerName := readers[readerIndex]
	card, err := ctx.Connect(readerName, scard.ShareShared, scard.ProtocolAny)
	if err != nil {
		ctx.Release()
		return nil, fmt.Errorf("pcsc: connecting to card in reader %q: %w", readerName, err)
	}

	status, err := card.Status()
	if err != nil {
		card.Disconnect(scard.LeaveCard)
		ctx.Release()
		return nil, fmt.Errorf("pcsc: reading card status: %w", err)
	}

	return &Transport{ctx: ctx, card: card, name: readerName, atr: status.Atr}, nil
}

// ConnectFirst connects to the card in the first available reader.
func ConnectFirst() (*Transport, error) {
	return Connect(0)
}

// Transmit marshals cmd, sends it to the card, and parses the response,
// honoring ctx cancellation around the blocking scard.Card.Transmit call
// the way the teacher's token processor races a blocking read against
// ctx.Done (see DESIGN.md's grounding for this package).
func (t *Transport) Transmit(ctx context.Context, cmd iso7816.CommandAPDU) (iso7816.ResponseAPDU, error) {
	raw, err := cmd.Marshal()
	if err != nil {
		return iso7816.ResponseAPDU{}, err
	}

	type result struct {
		raw []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		raw, err := t.card.Transmit(raw)
		done <- result{raw, err}
	}()

	select {
	case <-ctx.Done():
		return iso7816.ResponseAPDU{}, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return iso7816.ResponseAPDU{}, fmt.Errorf("pcsc: transmit failed: %w", r.err)
		}
		return iso7816.ParseResponseAPDU(r.raw)
	}
}

// Protocol identifies this transport for logging/diagnostics.
func (t *Transport) Protocol() string { return "pcsc" }

// Name returns the reader name this transport is connected to.
func (t *Transport) Name() string { return t.name }

// ATR returns the card's Answer To Reset bytes.
func (t *Transport) ATR() []byte { return t.atr }

// Reconnect resets the card connection; cold performs a full power cycle.
func (t *Transport) Reconnect(cold bool) error {
	initType := scard.ResetCard
	if cold {
		initType = scard.UnpowerCard
	}
	if err := t.card.Reconnect(scard.ShareShared, scard.ProtocolAny, initType); err != nil {
		return fmt.Errorf("pcsc: reconnect failed: %w", err)
	}
	status, err := t.card.Status()
	if err == nil {
		t.atr = status.Atr
	}
	return nil
}

// Close disconnects from the card and releases the PC/SC context.
func (t *Transport) Close() error {
	if t.card != nil {
		t.card.Disconnect(scard.LeaveCard)
	}
	if t.ctx != nil {
		t.ctx.Release()
	}
	return nil
}
