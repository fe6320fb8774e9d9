package ir

import (
	"strings"
)

// PrimitiveKind names a built-in scalar type.
type PrimitiveKind string

const (
	String PrimitiveKind = "string"
	Char   PrimitiveKind = "char"
	Bool   PrimitiveKind = "bool"
	I8     PrimitiveKind = "i8"
	I16    PrimitiveKind = "i16"
	I32    PrimitiveKind = "i32"
	I64    PrimitiveKind = "i64"
	U8     PrimitiveKind = "u8"
	U16    PrimitiveKind = "u16"
	U32    PrimitiveKind = "u32"
	U64    PrimitiveKind = "u64"
	ISize  PrimitiveKind = "isize"
	USize  PrimitiveKind = "usize"
	F32    PrimitiveKind = "f32"
	F64    PrimitiveKind = "f64"
	Unit   PrimitiveKind = "unit"
)

var primitiveKinds = map[string]PrimitiveKind{
	"string": String, "char": Char, "bool": Bool,
	"i8": I8, "i16": I16, "i32": I32, "i64": I64,
	"u8": U8, "u16": U16, "u32": U32, "u64": U64,
	"isize": ISize, "usize": USize,
	"f32": F32, "f64": F64,
	"unit": Unit,
}

// ParsePrimitive looks up a primitive kind by its canonical name.
func ParsePrimitive(s string) (PrimitiveKind, bool) {
	k, ok := primitiveKinds[s]
	return k, ok
}

// IsInteger reports whether k is one of the signed or unsigned integer kinds.
func (k PrimitiveKind) IsInteger() bool {
	switch k {
	case I8, I16, I32, I64, U8, U16, U32, U64, ISize, USize:
		return true
	}
	return false
}

// IsFloat reports whether k is f32 or f64.
func (k PrimitiveKind) IsFloat() bool {
	return k == F32 || k == F64
}

// RefKind discriminates the TypeRef variants.
type RefKind int

const (
	RefPrimitive RefKind = iota
	RefList
	RefMap
	RefOptional
	RefNamed
)

func (k RefKind) String() string {
	switch k {
	case RefPrimitive:
		return "primitive"
	case RefList:
		return "list"
	case RefMap:
		return "map"
	case RefOptional:
		return "optional"
	case RefNamed:
		return "named"
	}
	return "unknown"
}

// TypeRef is a recursive reference to a type.
//
// Only the members relevant to Kind are set: Primitive for RefPrimitive,
// Elem for RefList and RefOptional, Key and Value for RefMap, Name and Args
// for RefNamed.
type TypeRef struct {
	Kind      RefKind
	Primitive PrimitiveKind
	Elem      *TypeRef
	Key       *TypeRef
	Value     *TypeRef
	Name      string
	Args      []TypeRef
}

// Primitive returns a reference to a built-in scalar.
func Primitive(k PrimitiveKind) TypeRef {
	return TypeRef{Kind: RefPrimitive, Primitive: k}
}

// List returns list<elem>.
func List(elem TypeRef) TypeRef {
	return TypeRef{Kind: RefList, Elem: &elem}
}

// Map returns map<key, value>.
func Map(key, value TypeRef) TypeRef {
	return TypeRef{Kind: RefMap, Key: &key, Value: &value}
}

// Optional returns optional<elem>.
func Optional(elem TypeRef) TypeRef {
	return TypeRef{Kind: RefOptional, Elem: &elem}
}

// Named returns a reference to a declaration, type variable or external type.
func Named(name string, args ...TypeRef) TypeRef {
	return TypeRef{Kind: RefNamed, Name: name, Args: args}
}

// IsOptional reports whether the outermost layer is optional.
func (t TypeRef) IsOptional() bool {
	return t.Kind == RefOptional
}

// IsTypeVar reports whether t names one of params.
func (t TypeRef) IsTypeVar(params []string) bool {
	if t.Kind != RefNamed || len(t.Args) > 0 {
		return false
	}
	for _, p := range params {
		if p == t.Name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (t TypeRef) Clone() TypeRef {
	out := TypeRef{Kind: t.Kind, Primitive: t.Primitive, Name: t.Name}
	if t.Elem != nil {
		e := t.Elem.Clone()
		out.Elem = &e
	}
	if t.Key != nil {
		k := t.Key.Clone()
		out.Key = &k
	}
	if t.Value != nil {
		v := t.Value.Clone()
		out.Value = &v
	}
	if len(t.Args) > 0 {
		out.Args = make([]TypeRef, len(t.Args))
		for i, a := range t.Args {
			out.Args[i] = a.Clone()
		}
	}
	return out
}

// Equal reports structural equality.
func (t TypeRef) Equal(o TypeRef) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case RefPrimitive:
		return t.Primitive == o.Primitive
	case RefList, RefOptional:
		return t.Elem.Equal(*o.Elem)
	case RefMap:
		return t.Key.Equal(*o.Key) && t.Value.Equal(*o.Value)
	case RefNamed:
		if t.Name != o.Name || len(t.Args) != len(o.Args) {
			return false
		}
		for i := range t.Args {
			if !t.Args[i].Equal(o.Args[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Walk calls fn for t and every nested reference, parents first.
func (t TypeRef) Walk(fn func(TypeRef)) {
	fn(t)
	switch t.Kind {
	case RefList, RefOptional:
		t.Elem.Walk(fn)
	case RefMap:
		t.Key.Walk(fn)
		t.Value.Walk(fn)
	case RefNamed:
		for _, a := range t.Args {
			a.Walk(fn)
		}
	}
}

// Uses returns the members of params referenced anywhere inside t, in params order.
func (t TypeRef) Uses(params []string) []string {
	if len(params) == 0 {
		return nil
	}
	seen := make(map[string]bool)
	t.Walk(func(r TypeRef) {
		if r.IsTypeVar(params) {
			seen[r.Name] = true
		}
	})
	var used []string
	for _, p := range params {
		if seen[p] {
			used = append(used, p)
		}
	}
	return used
}

// String renders the canonical type expression, e.g. map<string, list<Foo<T>>>.
func (t TypeRef) String() string {
	var sb strings.Builder
	t.write(&sb)
	return sb.String()
}

func (t TypeRef) write(sb *strings.Builder) {
	switch t.Kind {
	case RefPrimitive:
		sb.WriteString(string(t.Primitive))
	case RefList:
		sb.WriteString("list<")
		t.Elem.write(sb)
		sb.WriteString(">")
	case RefOptional:
		sb.WriteString("optional<")
		t.Elem.write(sb)
		sb.WriteString(">")
	case RefMap:
		sb.WriteString("map<")
		t.Key.write(sb)
		sb.WriteString(", ")
		t.Value.write(sb)
		sb.WriteString(">")
	case RefNamed:
		sb.WriteString(t.Name)
		if len(t.Args) > 0 {
			sb.WriteString("<")
			for i, a := range t.Args {
				if i > 0 {
					sb.WriteString(", ")
				}
				a.write(sb)
			}
			sb.WriteString(">")
		}
	}
}
