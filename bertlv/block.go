// Package bertlv implements a self-describing BER-TLV (Basic Encoding
// Rules, Tag-Length-Value) codec: the framing used by Secure Messaging
// and the VEVR-01 file format alike.
//
// A Block is a tagged variant: it is either primitive (it owns raw bytes)
// or constructed (it owns an ordered sequence of child Blocks), never
// both. This mirrors the distinction esim/asn1.Form draws between
// FormPrimitive and FormConstructed, but is enforced here at the type
// level rather than left to the caller to keep straight.
package bertlv

import "fmt"

// Class is the 2-bit tag class carried in the top bits of the first tag byte.
type Class byte

const (
	ClassUniversal       Class = 0
	ClassApplication     Class = 1
	ClassContextSpecific Class = 2
	ClassPrivate         Class = 3
)

func (c Class) String() string {
	switch c {
	case ClassUniversal:
		return "Universal"
	case ClassApplication:
		return "Application"
	case ClassContextSpecific:
		return "Context-specific"
	case ClassPrivate:
		return "Private"
	default:
		return fmt.Sprintf("Class(%d)", byte(c))
	}
}

// Form is whether a block is primitive (carries raw bytes) or constructed
// (carries nested blocks).
type Form byte

const (
	FormPrimitive   Form = 0
	FormConstructed Form = 1
)

func (f Form) String() string {
	if f == FormConstructed {
		return "Constructed"
	}
	return "Primitive"
}

// Block is a single BER-TLV value: either primitive, carrying raw content
// bytes, or constructed, carrying an ordered sequence of child blocks.
// Never both — see NewPrimitive/NewConstructed.
type Block struct {
	class       Class
	constructed bool
	tag         uint64
	raw         []byte
	children    []Block
}

// NewPrimitive builds a primitive block. The content is copied so the
// resulting Block owns its bytes independently of the caller's slice.
func NewPrimitive(class Class, tag uint64, content []byte) Block {
	owned := append([]byte(nil), content...)
	return Block{class: class, constructed: false, tag: tag, raw: owned}
}

// NewConstructed builds a constructed block from an ordered list of children.
func NewConstructed(class Class, tag uint64, children []Block) Block {
	owned := append([]Block(nil), children...)
	return Block{class: class, constructed: true, tag: tag, children: owned}
}

// Class returns the block's tag class.
func (b Block) Class() Class { return b.class }

// Constructed reports whether the block is constructed (true) or primitive (false).
func (b Block) Constructed() bool { return b.constructed }

// Tag returns the block's tag number (without class/form bits).
func (b Block) Tag() uint64 { return b.tag }

// Raw returns the primitive block's content bytes. It panics if called on
// a constructed block — this is a programmer error, never reachable from
// attacker-controlled input, which is always routed through Decode.
func (b Block) Raw() []byte {
	if b.constructed {
		panic("bertlv: Raw() called on a constructed block")
	}
	return b.raw
}

// Children returns the constructed block's child sequence. It panics if
// called on a primitive block, for the same reason as Raw.
func (b Block) Children() []Block {
	if !b.constructed {
		panic("bertlv: Children() called on a primitive block")
	}
	return b.children
}

// Matches reports whether the block's (tag, class, constructed) triple
// equals the given selector, following the spec's requirement that
// tag-matching never confuse the same low tag number across classes.
func (b Block) Matches(class Class, tag uint64, constructed bool) bool {
	return b.class == class && b.tag == tag && b.constructed == constructed
}

// Find returns the first child of a constructed block matching the given
// selector, or false if none match. Panics on a primitive receiver.
func (b Block) Find(class Class, tag uint64, constructed bool) (Block, bool) {
	for _, c := range b.Children() {
		if c.Matches(class, tag, constructed) {
			return c, true
		}
	}
	return Block{}, false
}
