package layout

import (
	"fmt"

	"github.com/wippyai/memseg/errors"
	"go.bytecodealliance.org/wit"
)

// FromWIT returns the layout of a fixed-width WIT primitive. bool maps to
// u8 and char to u32, matching their canonical ABI representation. Type
// aliases are followed; compound types are rejected.
func FromWIT(t wit.Type) (Layout, error) {
	switch typ := t.(type) {
	case wit.Bool, wit.U8:
		return U8, nil
	case wit.S8:
		return S8, nil
	case wit.U16:
		return U16, nil
	case wit.S16:
		return S16, nil
	case wit.U32, wit.Char:
		return U32, nil
	case wit.S32:
		return S32, nil
	case wit.U64:
		return U64, nil
	case wit.S64:
		return S64, nil
	case wit.F32:
		return F32, nil
	case wit.F64:
		return F64, nil
	case *wit.TypeDef:
		if typ == nil {
			break
		}
		if inner, ok := typ.Kind.(wit.Type); ok {
			return FromWIT(inner)
		}
		return Layout{}, errors.InvalidLayout(fmt.Sprintf("WIT type %T is not a fixed-width primitive", typ.Kind))
	}
	return Layout{}, errors.InvalidLayout(fmt.Sprintf("WIT type %T is not a fixed-width primitive", t))
}
