package layout

import "math"

// Value holds the bits of one element read through a Layout. Signed
// kinds are sign-extended to 64 bits on decode.
type Value struct {
	bits uint64
}

// Bits wraps raw bits as a Value.
func Bits(b uint64) Value { return Value{bits: b} }

func OfInt64(v int64) Value     { return Value{bits: uint64(v)} }
func OfInt32(v int32) Value     { return Value{bits: uint64(int64(v))} }
func OfUint64(v uint64) Value   { return Value{bits: v} }
func OfUint32(v uint32) Value   { return Value{bits: uint64(v)} }
func OfFloat32(v float32) Value { return Value{bits: uint64(math.Float32bits(v))} }
func OfFloat64(v float64) Value { return Value{bits: math.Float64bits(v)} }

func (v Value) Bits() uint64     { return v.bits }
func (v Value) Int8() int8       { return int8(v.bits) }
func (v Value) Uint8() uint8     { return uint8(v.bits) }
func (v Value) Int16() int16     { return int16(v.bits) }
func (v Value) Uint16() uint16   { return uint16(v.bits) }
func (v Value) Int32() int32     { return int32(v.bits) }
func (v Value) Uint32() uint32   { return uint32(v.bits) }
func (v Value) Int64() int64     { return int64(v.bits) }
func (v Value) Uint64() uint64   { return v.bits }
func (v Value) Float32() float32 { return math.Float32frombits(uint32(v.bits)) }
func (v Value) Float64() float64 { return math.Float64frombits(v.bits) }

// Decode interprets the first l.Size bytes of b. Callers must have
// bounds-checked b against the layout.
func Decode(b []byte, l Layout) Value {
	order := l.Order.Binary()
	var bits uint64
	switch l.Size {
	case 1:
		bits = uint64(b[0])
		if l.Kind == KindS8 {
			bits = uint64(int64(int8(b[0])))
		}
	case 2:
		u := order.Uint16(b)
		bits = uint64(u)
		if l.Kind == KindS16 {
			bits = uint64(int64(int16(u)))
		}
	case 4:
		u := order.Uint32(b)
		bits = uint64(u)
		if l.Kind == KindS32 {
			bits = uint64(int64(int32(u)))
		}
	case 8:
		bits = order.Uint64(b)
	}
	return Value{bits: bits}
}

// Encode writes the low l.Size bytes of v into b.
func Encode(b []byte, l Layout, v Value) {
	order := l.Order.Binary()
	switch l.Size {
	case 1:
		b[0] = byte(v.bits)
	case 2:
		order.PutUint16(b, uint16(v.bits))
	case 4:
		order.PutUint32(b, uint32(v.bits))
	case 8:
		order.PutUint64(b, v.bits)
	}
}
