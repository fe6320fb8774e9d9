package ir

// DeclKind discriminates top-level declarations.
type DeclKind int

const (
	KindStruct DeclKind = iota
	KindEnum
	KindAlias
)

func (k DeclKind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	case KindAlias:
		return "alias"
	}
	return "unknown"
}

// Decl is a top-level declaration: *Struct, *Enum or *Alias.
type Decl interface {
	Info() *DeclInfo
	Kind() DeclKind
	cloneDecl() Decl
}

// DeclInfo holds what every declaration carries.
type DeclInfo struct {
	Name     string
	Doc      []string
	Generics []string
}

// Info returns the shared declaration header.
func (d *DeclInfo) Info() *DeclInfo { return d }

func (d DeclInfo) clone() DeclInfo {
	return DeclInfo{
		Name:     d.Name,
		Doc:      cloneStrings(d.Doc),
		Generics: cloneStrings(d.Generics),
	}
}

// Field belongs to a struct, an enum's shared fields or an anonymous variant payload.
type Field struct {
	Name     string
	Type     TypeRef
	Optional bool
	Rename   string
	Doc      []string
}

// WireName is the serialized key: the rename when present, else the source identifier.
func (f Field) WireName() string {
	if f.Rename != "" {
		return f.Rename
	}
	return f.Name
}

// Clone returns a deep copy.
func (f Field) Clone() Field {
	return Field{
		Name:     f.Name,
		Type:     f.Type.Clone(),
		Optional: f.Optional,
		Rename:   f.Rename,
		Doc:      cloneStrings(f.Doc),
	}
}

func cloneFields(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	for i, f := range fields {
		out[i] = f.Clone()
	}
	return out
}

// Origin records the enum variant a synthesized struct was promoted from.
type Origin struct {
	Enum    string
	Variant string
}

// Struct is a record type.
type Struct struct {
	DeclInfo
	Fields []Field
	Origin *Origin
}

func (*Struct) Kind() DeclKind { return KindStruct }

func (s *Struct) cloneDecl() Decl {
	out := &Struct{DeclInfo: s.DeclInfo.clone(), Fields: cloneFields(s.Fields)}
	if s.Origin != nil {
		o := *s.Origin
		out.Origin = &o
	}
	return out
}

// PayloadKind discriminates what a variant carries.
type PayloadKind int

const (
	PayloadUnit PayloadKind = iota
	PayloadTyped
	PayloadAnonymous
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadUnit:
		return "unit"
	case PayloadTyped:
		return "typed"
	case PayloadAnonymous:
		return "anonymous"
	}
	return "unknown"
}

// Payload is the data associated with a variant.
type Payload struct {
	Kind   PayloadKind
	Type   *TypeRef
	Fields []Field
}

// UnitPayload carries no data.
func UnitPayload() Payload { return Payload{Kind: PayloadUnit} }

// TypedPayload carries a value of an existing type.
func TypedPayload(t TypeRef) Payload { return Payload{Kind: PayloadTyped, Type: &t} }

// AnonymousPayload carries an inline field list with no independent name.
func AnonymousPayload(fields ...Field) Payload {
	return Payload{Kind: PayloadAnonymous, Fields: fields}
}

func (p Payload) clone() Payload {
	out := Payload{Kind: p.Kind, Fields: cloneFields(p.Fields)}
	if p.Type != nil {
		t := p.Type.Clone()
		out.Type = &t
	}
	return out
}

// Variant is one alternative of an enum.
type Variant struct {
	Name    string
	Rename  string
	Skip    bool
	Doc     []string
	Payload Payload
}

// WireName is the serialized discriminant: the rename when present, else the identifier.
func (v Variant) WireName() string {
	if v.Rename != "" {
		return v.Rename
	}
	return v.Name
}

// Default tag and content keys of the adjacently tagged wire form.
const (
	DefaultTagKey     = "type"
	DefaultContentKey = "content"
)

// Enum is an algebraic enum. It serializes either as a bare discriminant
// value or as a {tag, content} pair.
type Enum struct {
	DeclInfo
	SharedFields []Field
	Variants     []Variant
	TagKey       string
	ContentKey   string
}

func (*Enum) Kind() DeclKind { return KindEnum }

// Tag returns the tag key, defaulting to "type".
func (e *Enum) Tag() string {
	if e.TagKey == "" {
		return DefaultTagKey
	}
	return e.TagKey
}

// Content returns the content key, defaulting to "content".
func (e *Enum) Content() string {
	if e.ContentKey == "" {
		return DefaultContentKey
	}
	return e.ContentKey
}

// Variant returns the variant with the given identifier.
func (e *Enum) Variant(name string) (*Variant, bool) {
	for i := range e.Variants {
		if e.Variants[i].Name == name {
			return &e.Variants[i], true
		}
	}
	return nil, false
}

func (e *Enum) cloneDecl() Decl {
	out := &Enum{
		DeclInfo:     e.DeclInfo.clone(),
		SharedFields: cloneFields(e.SharedFields),
		TagKey:       e.TagKey,
		ContentKey:   e.ContentKey,
	}
	if e.Variants != nil {
		out.Variants = make([]Variant, len(e.Variants))
		for i, v := range e.Variants {
			out.Variants[i] = Variant{
				Name:    v.Name,
				Rename:  v.Rename,
				Skip:    v.Skip,
				Doc:     cloneStrings(v.Doc),
				Payload: v.Payload.clone(),
			}
		}
	}
	return out
}

// Alias gives a new name to an existing type.
type Alias struct {
	DeclInfo
	Target TypeRef
}

func (*Alias) Kind() DeclKind { return KindAlias }

func (a *Alias) cloneDecl() Decl {
	return &Alias{DeclInfo: a.DeclInfo.clone(), Target: a.Target.Clone()}
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
