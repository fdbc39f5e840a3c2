package types

import "testing"

import "github.com/nalgeon/be"

func TestEqual(t *testing.T) {
	tests := []struct {
		name     string
		a, b     *PlasmType
		expected bool
	}{
		{"same primitive", U8, U8, true},
		{"different primitive", U8, U16, false},
		{"different kind", U8, ArrayOf(U8), false},
		{"same generic", ArrayOf(U8), ArrayOf(U8), true},
		{"different generic args", ArrayOf(U8), ArrayOf(U16), false},
		{"same named", NamedType("Point"), NamedType("Point"), true},
		{"different named", NamedType("Point"), NamedType("Line"), false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			be.Equal(t, test.expected, Equal(test.a, test.b))
		})
	}
}

func TestCanImplicitlyUpcast(t *testing.T) {
	tests := []struct {
		name     string
		from, to *PlasmType
		expected bool
	}{
		{"identity", U8, U8, true},
		{"u8 to u16", U8, U16, true},
		{"u16 to u8 narrowing", U16, U8, false},
		{"u8 to i16", U8, I16, true},
		{"u64 to i64 forbidden", U64, I64, false},
		{"i8 to i16", I8, I16, true},
		{"i8 to u8 forbidden", I8, U8, false},
		{"i32 to f64", I32, F64, true},
		{"f64 to i32 forbidden", F64, I32, false},
		{"f32 to f64", F32, F64, true},
		{"f64 to f32 forbidden", F64, F32, false},
		{"any accepts anything", I64, Any, true},
		{"any converts to anything", Any, String, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			be.Equal(t, test.expected, CanImplicitlyUpcast(test.from, test.to))
		})
	}
}

func TestCanImplicitlyUpcastReflexive(t *testing.T) {
	for _, p := range []*PlasmType{U8, U16, U32, U64, I8, I16, I32, I64, F32, F64, Bool, String} {
		be.True(t, CanImplicitlyUpcast(p, p))
	}
}

func TestCanImplicitlyUpcastMonotoneSameSignedness(t *testing.T) {
	unsigned := []*PlasmType{U8, U16, U32, U64}
	for i := range unsigned {
		for j := range unsigned {
			expect := BitWidth(unsigned[i]) <= BitWidth(unsigned[j])
			be.Equal(t, expect, CanImplicitlyUpcast(unsigned[i], unsigned[j]))
		}
	}
}

func TestString(t *testing.T) {
	be.Equal(t, "i64", I64.String())
	be.Equal(t, "array<u8>", ArrayOf(U8).String())
	be.Equal(t, "Point", NamedType("Point").String())
	be.Equal(t, "(u64) => u64", FunctionType([]*PlasmType{U64}, U64).String())
}
