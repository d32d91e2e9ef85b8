package layout

import (
	"encoding/binary"
	"fmt"

	"github.com/wippyai/memseg/errors"
)

// Kind identifies how the bytes of a layout are interpreted
type Kind uint8

const (
	KindInvalid Kind = iota
	KindS8
	KindU8
	KindS16
	KindU16
	KindS32
	KindU32
	KindS64
	KindU64
	KindF32
	KindF64
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindS8:      "s8",
	KindU8:      "u8",
	KindS16:     "s16",
	KindU16:     "u16",
	KindS32:     "s32",
	KindU32:     "u32",
	KindS64:     "s64",
	KindU64:     "u64",
	KindF32:     "f32",
	KindF64:     "f64",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Signed reports whether values of this kind are sign-extended on read.
func (k Kind) Signed() bool {
	switch k {
	case KindS8, KindS16, KindS32, KindS64:
		return true
	}
	return false
}

// Float reports whether the kind is an IEEE 754 type.
func (k Kind) Float() bool {
	return k == KindF32 || k == KindF64
}

// ByteOrder selects the order in which multi-byte values are stored
type ByteOrder uint8

const (
	LittleEndian ByteOrder = iota
	BigEndian
)

// Binary returns the encoding/binary implementation for the order.
func (o ByteOrder) Binary() binary.ByteOrder {
	if o == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (o ByteOrder) String() string {
	if o == BigEndian {
		return "be"
	}
	return "le"
}

// Layout describes one fixed-width element
type Layout struct {
	Size  uint64
	Align uint64
	Kind  Kind
	Order ByteOrder
}

// Predefined little-endian layouts.
var (
	S8  = Layout{Kind: KindS8, Size: 1, Align: 1}
	U8  = Layout{Kind: KindU8, Size: 1, Align: 1}
	S16 = Layout{Kind: KindS16, Size: 2, Align: 2}
	U16 = Layout{Kind: KindU16, Size: 2, Align: 2}
	S32 = Layout{Kind: KindS32, Size: 4, Align: 4}
	U32 = Layout{Kind: KindU32, Size: 4, Align: 4}
	S64 = Layout{Kind: KindS64, Size: 8, Align: 8}
	U64 = Layout{Kind: KindU64, Size: 8, Align: 8}
	F32 = Layout{Kind: KindF32, Size: 4, Align: 4}
	F64 = Layout{Kind: KindF64, Size: 8, Align: 8}
)

// Of returns the little-endian layout for a kind.
func Of(k Kind) (Layout, error) {
	switch k {
	case KindS8:
		return S8, nil
	case KindU8:
		return U8, nil
	case KindS16:
		return S16, nil
	case KindU16:
		return U16, nil
	case KindS32:
		return S32, nil
	case KindU32:
		return U32, nil
	case KindS64:
		return S64, nil
	case KindU64:
		return U64, nil
	case KindF32:
		return F32, nil
	case KindF64:
		return F64, nil
	}
	return Layout{}, errors.InvalidLayout(fmt.Sprintf("unknown kind %s", k))
}

// Parse resolves names like "s32", "f64be" or "u16le".
func Parse(name string) (Layout, error) {
	order := LittleEndian
	switch {
	case len(name) > 2 && name[len(name)-2:] == "be":
		order = BigEndian
		name = name[:len(name)-2]
	case len(name) > 2 && name[len(name)-2:] == "le":
		name = name[:len(name)-2]
	}
	for k := KindS8; k <= KindF64; k++ {
		if kindNames[k] == name {
			l, _ := Of(k)
			return l.WithOrder(order), nil
		}
	}
	return Layout{}, errors.InvalidLayout(fmt.Sprintf("unknown layout %q", name))
}

// WithOrder returns a copy of l using the given byte order.
func (l Layout) WithOrder(o ByteOrder) Layout {
	l.Order = o
	return l
}

// WithAlign returns a copy of l with a different alignment.
func (l Layout) WithAlign(align uint64) Layout {
	l.Align = align
	return l
}

// Validate checks that the layout can be used for typed access.
func (l Layout) Validate() error {
	if l.Size == 0 {
		return errors.InvalidLayout("size must be greater than zero")
	}
	if l.Align == 0 || l.Align&(l.Align-1) != 0 {
		return errors.InvalidLayout(fmt.Sprintf("alignment %d is not a power of two", l.Align))
	}
	want, err := Of(l.Kind)
	if err != nil {
		return err
	}
	if want.Size != l.Size {
		return errors.InvalidLayout(fmt.Sprintf("%s requires size %d, got %d", l.Kind, want.Size, l.Size))
	}
	return nil
}

// Aligned reports whether offset satisfies the layout's alignment.
func (l Layout) Aligned(offset uint64) bool {
	if l.Align <= 1 {
		return true
	}
	return offset&(l.Align-1) == 0
}

func (l Layout) String() string {
	return l.Kind.String() + l.Order.String()
}

// AlignTo rounds offset up to the next multiple of align.
func AlignTo(offset, align uint64) uint64 {
	if align <= 1 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}
