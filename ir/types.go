package ir

import "strings"

// TypeKind identifies the shape of a Type.
type TypeKind int

const (
	TypeScalar TypeKind = iota
	TypeUnion
	TypeIntersection
)

// String returns the string representation of the type kind.
func (k TypeKind) String() string {
	switch k {
	case TypeScalar:
		return "Scalar"
	case TypeUnion:
		return "Union"
	case TypeIntersection:
		return "Intersection"
	default:
		return "Unknown"
	}
}

// CollectionKind describes whether a scalar type is a sequence.
type CollectionKind int

const (
	CollectionNone CollectionKind = iota
	CollectionArray
	CollectionList
)

// Canonical primitive names. Type references with no Definition carry one
// of these names; the convention policy of each target translates them.
const (
	String         = "string"
	Boolean        = "boolean"
	Integer        = "integer"
	Int64          = "int64"
	Float          = "float"
	Double         = "double"
	Decimal        = "decimal"
	GUID           = "guid"
	DateTimeOffset = "datetimeoffset"
	DateOnly       = "dateonly"
	TimeOnly       = "timeonly"
	Duration       = "duration"
	Byte           = "byte"
	SByte          = "sbyte"
	Binary         = "binary"
	Base64         = "base64"
	Stream         = "stream"
	Void           = "void"
	UntypedNode    = "untypednode"
)

// Type is the interface implemented by every type descriptor.
type Type interface {
	// Kind returns the type kind for type switching.
	Kind() TypeKind

	// IsNullable reports whether the value may be absent.
	IsNullable() bool

	// String returns a readable description used in error messages.
	String() string

	sealed()
}

// Definition is a declared element a type reference can point at.
// It is implemented by *Class and *Enum.
type Definition interface {
	DefinitionName() string
	DeclaringNamespace() *Namespace
	definition()
}

// TypeRef is a scalar type reference, optionally a collection.
type TypeRef struct {
	// Name is the canonical primitive name or the declared element's name.
	Name string

	// Definition points at the declared Class or Enum. Nil for primitives.
	Definition Definition

	Collection CollectionKind
	Nullable   bool
}

func (*TypeRef) Kind() TypeKind        { return TypeScalar }
func (t *TypeRef) IsNullable() bool   { return t.Nullable }
func (*TypeRef) sealed()              {}
func (t *TypeRef) IsCollection() bool { return t.Collection != CollectionNone }

func (t *TypeRef) String() string {
	s := t.Name
	if t.Definition != nil {
		s = qualifiedName(t.Definition)
	}
	switch t.Collection {
	case CollectionArray:
		s += "[]"
	case CollectionList:
		s = "list<" + s + ">"
	}
	if t.Nullable {
		s += "?"
	}
	return s
}

// Class returns the referenced class, or nil.
func (t *TypeRef) Class() *Class {
	c, _ := t.Definition.(*Class)
	return c
}

// Enum returns the referenced enum, or nil.
func (t *TypeRef) Enum() *Enum {
	e, _ := t.Definition.(*Enum)
	return e
}

// IsPrimitive reports whether the reference names no declared element
// and is neither a stream nor void.
func (t *TypeRef) IsPrimitive() bool {
	return t.Definition == nil && !t.IsStream() && !t.IsVoid()
}

// IsStream reports whether the reference is the canonical stream type.
func (t *TypeRef) IsStream() bool {
	return t.Definition == nil && strings.EqualFold(t.Name, Stream)
}

// IsVoid reports whether the reference is the canonical void type.
func (t *TypeRef) IsVoid() bool {
	return t.Definition == nil && strings.EqualFold(t.Name, Void)
}

// IsByteArray reports whether the reference is a binary or base64 scalar.
func (t *TypeRef) IsByteArray() bool {
	return t.Definition == nil && (strings.EqualFold(t.Name, Binary) || strings.EqualFold(t.Name, Base64))
}

// ElementType returns a copy of t with no collection.
func (t *TypeRef) ElementType() *TypeRef {
	c := *t
	c.Collection = CollectionNone
	return &c
}

// Primitive returns a reference to the canonical primitive name.
func Primitive(name string) *TypeRef {
	return &TypeRef{Name: name}
}

// Ref returns a reference to a declared Class or Enum.
func Ref(def Definition) *TypeRef {
	return &TypeRef{Name: def.DefinitionName(), Definition: def}
}

// ArrayOf returns a copy of t as an array collection.
func ArrayOf(t *TypeRef) *TypeRef {
	c := *t
	c.Collection = CollectionArray
	return &c
}

// ListOf returns a copy of t as a list collection.
func ListOf(t *TypeRef) *TypeRef {
	c := *t
	c.Collection = CollectionList
	return &c
}

// UnionType is an ordered set of alternative types.
type UnionType struct {
	// Name is the name the upstream builder would give a wrapper class.
	Name     string
	Types    []Type
	Nullable bool
}

func (*UnionType) Kind() TypeKind     { return TypeUnion }
func (u *UnionType) IsNullable() bool { return u.Nullable }
func (*UnionType) sealed()            {}
func (u *UnionType) String() string   { return composedString(u.Name, u.Types, " | ") }

// IntersectionType is an ordered set of types all of which apply.
type IntersectionType struct {
	Name     string
	Types    []Type
	Nullable bool
}

func (*IntersectionType) Kind() TypeKind     { return TypeIntersection }
func (i *IntersectionType) IsNullable() bool { return i.Nullable }
func (*IntersectionType) sealed()            {}
func (i *IntersectionType) String() string   { return composedString(i.Name, i.Types, " & ") }

func composedString(name string, types []Type, sep string) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.String()
	}
	s := "(" + strings.Join(parts, sep) + ")"
	if name != "" {
		s = name + s
	}
	return s
}

// AsRef returns t as a scalar reference, or nil for composed types.
func AsRef(t Type) *TypeRef {
	r, _ := t.(*TypeRef)
	return r
}

func qualifiedName(d Definition) string {
	if ns := d.DeclaringNamespace(); ns != nil && ns.Name != "" {
		return ns.Name + "." + d.DefinitionName()
	}
	return d.DefinitionName()
}
