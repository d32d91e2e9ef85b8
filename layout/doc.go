// Package layout describes how a fixed number of bytes is interpreted as a
// typed value.
//
// A Layout is a pure value: element kind, byte size, alignment and byte
// order. It carries no storage. Backing stores use Decode and Encode so that
// identical bytes produce bit-identical values regardless of where they live.
//
//	Layout  Size  Align
//	──────────────────
//	S8/U8   1     1
//	S16/U16 2     2
//	S32/U32 4     4
//	F32     4     4
//	S64/U64 8     8
//	F64     8     8
//
// All predefined layouts are little-endian; use WithOrder for big-endian
// access:
//
//	be := layout.S32.WithOrder(layout.BigEndian)
//
// FromWIT maps WIT primitive types onto the same table.
package layout
