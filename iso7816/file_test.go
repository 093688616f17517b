package iso7816

import (
	"bytes"
	"context"
	"testing"
)

type fakeFileCard struct {
	content   []byte
	selected  bool
	readCalls int
}

func (f *fakeFileCard) Transmit(ctx context.Context, cmd CommandAPDU) (ResponseAPDU, error) {
	switch cmd.INS {
	case 0xA4:
		f.selected = true
		return ResponseAPDU{SW1: 0x90, SW2: 0x00}, nil
	case 0xB0:
		f.readCalls++
		offset := int(cmd.P1)<<8 | int(cmd.P2)
		if offset >= len(f.content) {
			return ResponseAPDU{SW1: 0x6B, SW2: 0x00}, nil
		}
		end := offset + 255
		if end > len(f.content) {
			end = len(f.content)
		}
		return ResponseAPDU{Data: f.content[offset:end], SW1: 0x90, SW2: 0x00}, nil
	default:
		return ResponseAPDU{SW1: 0x6D, SW2: 0x00}, nil
	}
}

func (f *fakeFileCard) Protocol() string { return "fake" }

func TestSelectFile(t *testing.T) {
	card := &fakeFileCard{}
	if err := SelectFile(context.Background(), card, []byte{0x2F, 0x01}); err != nil {
		t.Fatalf("SelectFile() error = %v", err)
	}
	if !card.selected {
		t.Error("SelectFile() never issued SELECT")
	}
}

func TestSelectFile_Failure(t *testing.T) {
	failing := &failingCard{sw1: 0x6A, sw2: 0x82}
	if err := SelectFile(context.Background(), failing, []byte{0x2F, 0x01}); err == nil {
		t.Fatal("SelectFile() expected error, got nil")
	}
}

func TestReadBinaryAll_LoopsAcrossChunks(t *testing.T) {
	content := bytes.Repeat([]byte{0x42}, 400)
	card := &fakeFileCard{content: content}

	got, err := ReadBinaryAll(context.Background(), card)
	if err != nil {
		t.Fatalf("ReadBinaryAll() error = %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("ReadBinaryAll() returned %d bytes, want %d", len(got), len(content))
	}
	if card.readCalls < 2 {
		t.Errorf("readCalls = %d, want at least 2", card.readCalls)
	}
}

func TestReadBinaryAll_ShortContent(t *testing.T) {
	content := []byte{0x01, 0x02, 0x03}
	card := &fakeFileCard{content: content}

	got, err := ReadBinaryAll(context.Background(), card)
	if err != nil {
		t.Fatalf("ReadBinaryAll() error = %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("ReadBinaryAll() = % X, want % X", got, content)
	}
	if card.readCalls != 1 {
		t.Errorf("readCalls = %d, want 1", card.readCalls)
	}
}

type failingCard struct {
	sw1, sw2 byte
}

func (f *failingCard) Transmit(ctx context.Context, cmd CommandAPDU) (ResponseAPDU, error) {
	return ResponseAPDU{SW1: f.sw1, SW2: f.sw2}, nil
}
func (f *failingCard) Protocol() string { return "failing" }
