// Package types defines PlasmType, the semantic type model shared by the
// name analyser, type analyser and IR builder, plus the implicit-upcast
// lattice used by type analysis and IR lowering.
//
// PlasmType is compared structurally and rendered with a single String
// method; the lattice widens within the fixed-width numeric family,
// accepts any in either direction, and otherwise requires equal types.
package types

import "strings"

// Kind discriminates the shape of a PlasmType.
type Kind int

const (
	Primitive Kind = iota
	Named        // a user-declared class
	Generic      // N<T...>  (array<T>, tuple, ...)
	Function     // (T...) -> T
)

// PlasmType is the semantic type of an expression or declaration.
type PlasmType struct {
	Kind Kind

	// Primitive
	Name string // "u8", "i64", "bool", "string", "void", "any", ...

	// Named
	ClassName string

	// Generic
	GenericName string
	Args        []*PlasmType

	// Function
	Params  []*PlasmType
	Returns *PlasmType
}

// Well-known primitive singletons.
var (
	U8     = &PlasmType{Kind: Primitive, Name: "u8"}
	U16    = &PlasmType{Kind: Primitive, Name: "u16"}
	U32    = &PlasmType{Kind: Primitive, Name: "u32"}
	U64    = &PlasmType{Kind: Primitive, Name: "u64"}
	I8     = &PlasmType{Kind: Primitive, Name: "i8"}
	I16    = &PlasmType{Kind: Primitive, Name: "i16"}
	I32    = &PlasmType{Kind: Primitive, Name: "i32"}
	I64    = &PlasmType{Kind: Primitive, Name: "i64"}
	F32    = &PlasmType{Kind: Primitive, Name: "f32"}
	F64    = &PlasmType{Kind: Primitive, Name: "f64"}
	Bool   = &PlasmType{Kind: Primitive, Name: "bool"}
	String = &PlasmType{Kind: Primitive, Name: "string"}
	Void   = &PlasmType{Kind: Primitive, Name: "void"}
	Any    = &PlasmType{Kind: Primitive, Name: "any"}
)

var primitivesByName = map[string]*PlasmType{
	"u8": U8, "u16": U16, "u32": U32, "u64": U64,
	"i8": I8, "i16": I16, "i32": I32, "i64": I64,
	"f32": F32, "f64": F64, "bool": Bool, "string": String,
	"void": Void, "any": Any,
}

// PrimitiveByName looks up one of the fixed singletons by name.
func PrimitiveByName(name string) *PlasmType {
	return primitivesByName[name]
}

// NamedType constructs the type of a user-declared class.
func NamedType(class string) *PlasmType {
	return &PlasmType{Kind: Named, ClassName: class, Name: class}
}

// GenericType constructs a parameterised type such as array<T>.
func GenericType(name string, args ...*PlasmType) *PlasmType {
	return &PlasmType{Kind: Generic, GenericName: name, Args: args}
}

// ArrayOf is shorthand for GenericType("array", elem).
func ArrayOf(elem *PlasmType) *PlasmType {
	return GenericType("array", elem)
}

// FunctionType constructs a (params...) -> returns function type.
func FunctionType(params []*PlasmType, returns *PlasmType) *PlasmType {
	return &PlasmType{Kind: Function, Params: params, Returns: returns}
}

var bitWidths = map[string]int{
	"u8": 8, "u16": 16, "u32": 32, "u64": 64,
	"i8": 8, "i16": 16, "i32": 32, "i64": 64,
	"f32": 32, "f64": 64,
}

// BitWidth returns the bit width of a numeric primitive, or 0 if t is not
// numeric.
func BitWidth(t *PlasmType) int {
	if t == nil || t.Kind != Primitive {
		return 0
	}
	return bitWidths[t.Name]
}

// IsInteger reports whether t is one of the u*/i* primitive families.
func IsInteger(t *PlasmType) bool {
	if t == nil || t.Kind != Primitive {
		return false
	}
	switch t.Name {
	case "u8", "u16", "u32", "u64", "i8", "i16", "i32", "i64":
		return true
	}
	return false
}

// IsFloating reports whether t is f32 or f64.
func IsFloating(t *PlasmType) bool {
	if t == nil || t.Kind != Primitive {
		return false
	}
	return t.Name == "f32" || t.Name == "f64"
}

// IsUnsigned reports whether t is one of the u* families.
func IsUnsigned(t *PlasmType) bool {
	if t == nil || t.Kind != Primitive {
		return false
	}
	switch t.Name {
	case "u8", "u16", "u32", "u64":
		return true
	}
	return false
}

// IsSigned reports whether t is one of the i* families.
func IsSigned(t *PlasmType) bool {
	if t == nil || t.Kind != Primitive {
		return false
	}
	switch t.Name {
	case "i8", "i16", "i32", "i64":
		return true
	}
	return false
}

// IsNumeric reports whether t is integer or floating.
func IsNumeric(t *PlasmType) bool {
	return IsInteger(t) || IsFloating(t)
}

// IsAny reports whether t is the `any` escape hatch.
func IsAny(t *PlasmType) bool {
	return t != nil && t.Kind == Primitive && t.Name == "any"
}

// Equal reports structural equality.
func Equal(a, b *PlasmType) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Primitive:
		return a.Name == b.Name
	case Named:
		return a.ClassName == b.ClassName
	case Generic:
		if a.GenericName != b.GenericName || len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if !Equal(a.Args[i], b.Args[i]) {
				return false
			}
		}
		return true
	case Function:
		if len(a.Params) != len(b.Params) || !Equal(a.Returns, b.Returns) {
			return false
		}
		for i := range a.Params {
			if !Equal(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// CanImplicitlyUpcast implements the implicit numeric conversion lattice.
// It is reflexive, monotone in bit-width within a signedness family, and
// deliberately excludes u64->i64 and every signed->unsigned conversion.
func CanImplicitlyUpcast(from, to *PlasmType) bool {
	if Equal(from, to) {
		return true
	}
	if IsAny(from) || IsAny(to) {
		return true
	}
	if from == nil || to == nil || from.Kind != Primitive || to.Kind != Primitive {
		return false
	}
	switch {
	case IsUnsigned(from) && IsUnsigned(to):
		return BitWidth(from) < BitWidth(to)
	case IsUnsigned(from) && IsSigned(to):
		return BitWidth(from) < BitWidth(to)
	case IsSigned(from) && IsSigned(to):
		return BitWidth(from) < BitWidth(to)
	case IsInteger(from) && IsFloating(to):
		return BitWidth(from) <= BitWidth(to)
	case from.Name == "f32" && to.Name == "f64":
		return true
	}
	return false
}

// IsCompatibleWith reports whether a value of type from may be used where
// to is expected, i.e. the types are equal or from implicitly upcasts to
// to. Used for call-argument and overload matching.
func IsCompatibleWith(from, to *PlasmType) bool {
	return Equal(from, to) || CanImplicitlyUpcast(from, to)
}

// String renders t in source-level syntax.
func (t *PlasmType) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case Primitive:
		return t.Name
	case Named:
		return t.ClassName
	case Generic:
		parts := make([]string, len(t.Args))
		for i, a := range t.Args {
			parts[i] = a.String()
		}
		return t.GenericName + "<" + strings.Join(parts, ", ") + ">"
	case Function:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.String()
		}
		return "(" + strings.Join(parts, ", ") + ") => " + t.Returns.String()
	}
	return "<invalid>"
}
