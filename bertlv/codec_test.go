package bertlv

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundtrip(t *testing.T) {
	tests := []struct {
		name string
		b    Block
	}{
		{
			name: "primitive short tag short length",
			b:    NewPrimitive(ClassContextSpecific, 7, []byte{0x01, 0xAA, 0xBB}),
		},
		{
			name: "primitive empty content",
			b:    NewPrimitive(ClassUniversal, 2, nil),
		},
		{
			name: "primitive long tag",
			b:    NewPrimitive(ClassApplication, 0x41, []byte{0xDE, 0xAD}),
		},
		{
			name: "primitive long length",
			b:    NewPrimitive(ClassPrivate, 1, bytes.Repeat([]byte{0x42}, 300)),
		},
		{
			name: "constructed with two children",
			b: NewConstructed(ClassUniversal, 0x10, []Block{
				NewPrimitive(ClassContextSpecific, 1, []byte{0x01}),
				NewPrimitive(ClassContextSpecific, 2, []byte{0x02, 0x03}),
			}),
		},
		{
			name: "nested constructed",
			b: NewConstructed(ClassApplication, 0x62, []Block{
				NewConstructed(ClassContextSpecific, 0x70, []Block{
					NewPrimitive(ClassUniversal, 0x04, []byte("hello")),
				}),
			}),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			encoded := Encode(tc.b)
			decoded, rest, err := Decode(encoded)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if len(rest) != 0 {
				t.Fatalf("Decode() left %d trailing bytes", len(rest))
			}
			if !blocksEqual(decoded, tc.b) {
				t.Fatalf("roundtrip mismatch: got %+v, want %+v", decoded, tc.b)
			}
			reencoded := Encode(decoded)
			if !bytes.Equal(reencoded, encoded) {
				t.Fatalf("canonical re-encoding mismatch: got % X, want % X", reencoded, encoded)
			}
		})
	}
}

func blocksEqual(a, b Block) bool {
	if a.class != b.class || a.constructed != b.constructed || a.tag != b.tag {
		return false
	}
	if a.constructed {
		if len(a.children) != len(b.children) {
			return false
		}
		for i := range a.children {
			if !blocksEqual(a.children[i], b.children[i]) {
				return false
			}
		}
		return true
	}
	return bytes.Equal(a.raw, b.raw)
}

func TestBERTLVEncodeExample(t *testing.T) {
	b := NewPrimitive(ClassContextSpecific, 7, []byte{0x01, 0xAA, 0xBB})
	got := Encode(b)
	want := []byte{0x87, 0x03, 0x01, 0xAA, 0xBB}
	if !bytes.Equal(got, want) {
		t.Fatalf("Encode() = % X, want % X", got, want)
	}
}

func TestDecode_IndefiniteLengthRejected(t *testing.T) {
	// Context-specific, primitive, tag 7, indefinite length marker 0x80.
	data := []byte{0x87, 0x80, 0x01, 0x02}
	_, _, err := Decode(data)
	if _, ok := err.(ErrUnsupported); !ok {
		t.Fatalf("Decode() error = %v, want ErrUnsupported", err)
	}
}

func TestDecode_UnexpectedEOF(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty after tag", []byte{0x87}},
		{"short content", []byte{0x87, 0x05, 0x01, 0x02}},
		{"truncated long length", []byte{0x87, 0x82, 0x01}},
		{"truncated long tag", []byte{0x9F, 0x80}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Decode(tc.data)
			if err != ErrUnexpectedEOF {
				t.Fatalf("Decode() error = %v, want ErrUnexpectedEOF", err)
			}
		})
	}
}

func TestDecode_EndOfStream(t *testing.T) {
	_, _, err := Decode(nil)
	if err != ErrEndOfStream {
		t.Fatalf("Decode() error = %v, want ErrEndOfStream", err)
	}
}

func TestDecodeAll(t *testing.T) {
	b1 := NewPrimitive(ClassContextSpecific, 1, []byte{0x01})
	b2 := NewPrimitive(ClassContextSpecific, 2, []byte{0x02, 0x03})
	data := append(Encode(b1), Encode(b2)...)

	blocks, err := DecodeAll(data)
	if err != nil {
		t.Fatalf("DecodeAll() error = %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("DecodeAll() returned %d blocks, want 2", len(blocks))
	}
	if !blocksEqual(blocks[0], b1) || !blocksEqual(blocks[1], b2) {
		t.Fatalf("DecodeAll() blocks mismatch: %+v", blocks)
	}
}

func TestMatchesAndFind(t *testing.T) {
	inner := NewPrimitive(ClassContextSpecific, 0x0E, []byte{0xAB})
	outer := NewConstructed(ClassUniversal, 0x30, []Block{inner})

	got, ok := outer.Find(ClassContextSpecific, 0x0E, false)
	if !ok {
		t.Fatalf("Find() did not locate tag 0x0E")
	}
	if !bytes.Equal(got.Raw(), []byte{0xAB}) {
		t.Fatalf("Find() returned wrong block: %+v", got)
	}

	if _, ok := outer.Find(ClassContextSpecific, 0x0E, true); ok {
		t.Fatalf("Find() matched a primitive block against a constructed selector")
	}
}

func TestRawPanicsOnConstructed(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Raw() on constructed block did not panic")
		}
	}()
	NewConstructed(ClassUniversal, 0x30, nil).Raw()
}

func TestChildrenPanicsOnPrimitive(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Children() on primitive block did not panic")
		}
	}()
	NewPrimitive(ClassUniversal, 0x04, nil).Children()
}
