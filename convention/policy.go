// Package convention supplies the per-target naming and type translation rules
// consulted by synthesis and emission.
//
// A Policy is immutable once built. Each generation run constructs its own
// policies, and per-unit mutable state lives in a Scope.
package convention

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/iancoleman/strcase"

	"github.com/broady/apigen/ir"
)

// Language identifiers recognized by ForLanguage.
const (
	CSharp     = "csharp"
	TypeScript = "typescript"
	Go         = "go"
	CLI        = "cli"
)

// Languages returns every supported language identifier.
func Languages() []string {
	return []string{CSharp, TypeScript, Go, CLI}
}

// NullableMarker describes how a target marks a nullable type.
type NullableMarker int

const (
	NullableNone NullableMarker = iota
	NullableSuffix
	NullableUnion
	NullablePointer
)

// Casing selects an identifier casing rule.
type Casing int

const (
	CasePascal Casing = iota
	CaseCamel
	CaseSnake
	CaseKebab
)

// Apply converts s to the casing.
func (c Casing) Apply(s string) string {
	switch c {
	case CasePascal:
		return strcase.ToCamel(s)
	case CaseCamel:
		return strcase.ToLowerCamel(s)
	case CaseSnake:
		return strcase.ToSnake(s)
	case CaseKebab:
		return strcase.ToKebab(s)
	default:
		return s
	}
}

// Policy holds the conventions of one target.
type Policy struct {
	target       string
	primitives   map[string]bool
	translations map[string]string
	access       map[ir.Access]string
	reserved     map[string]bool

	nullable NullableMarker
	array    string
	list     string
	qualify  func(ns, name string) string

	// qualifyForeign forces qualification of every type declared outside
	// the referencing namespace.
	qualifyForeign bool

	// DocPrefix starts every documentation comment line.
	DocPrefix string

	StreamTypeName string
	VoidTypeName   string

	// NativeComposedTypes reports whether union and intersection types can
	// be expressed without a wrapper class.
	NativeComposedTypes bool

	TypeCase   Casing
	MemberCase Casing
	FileCase   Casing

	// FileExtension includes the leading dot.
	FileExtension string
}

// Target returns the language identifier.
func (p *Policy) Target() string { return p.target }

// ForLanguage returns a freshly built policy for the language identifier.
func ForLanguage(lang string) (*Policy, error) {
	switch strings.ToLower(lang) {
	case CSharp:
		return NewCSharp(), nil
	case CLI:
		return NewCLI(), nil
	case TypeScript:
		return NewTypeScript(), nil
	case Go:
		return NewGo(), nil
	default:
		return nil, errors.Newf("unknown language %q (expected one of %s)", lang, strings.Join(Languages(), ", "))
	}
}

// IsPrimitive reports whether a translated type name belongs to the
// target's primitive set.
func (p *Policy) IsPrimitive(translated string) bool {
	return p.primitives[translated]
}

// Access returns the target keyword for an access level.
func (p *Policy) Access(a ir.Access) string {
	return p.access[a]
}

// IsReserved reports whether name is a reserved word of the target.
func (p *Policy) IsReserved(name string) bool {
	return p.reserved[name]
}

// Identifier returns name converted to c, with reserved words escaped.
func (p *Policy) Identifier(name string, c Casing) string {
	id := c.Apply(name)
	if p.reserved[id] {
		id += "_"
	}
	return id
}

// TypeName returns the target name of a declared element.
func (p *Policy) TypeName(def ir.Definition) string {
	return p.Identifier(def.DefinitionName(), p.TypeCase)
}

// MemberName returns the target name of a property, parameter or method.
func (p *Policy) MemberName(name string) string {
	return p.Identifier(name, p.MemberCase)
}

// Doc returns text as documentation comment lines.
func (p *Policy) Doc(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = p.DocPrefix + strings.TrimRight(l, " \t")
	}
	return lines
}

// Translate returns the target type name for t without namespace
// qualification. Composed types are rejected unless the target expresses
// them natively.
func (p *Policy) Translate(t ir.Type) (string, error) {
	return p.translate(t, nil, nil)
}

func (p *Policy) translate(t ir.Type, s *Scope, from *ir.Namespace) (string, error) {
	switch t := t.(type) {
	case *ir.TypeRef:
		return p.translateRef(t, s, from), nil
	case *ir.UnionType:
		return p.translateComposed(t, t.Types, " | ", t.Nullable, s, from)
	case *ir.IntersectionType:
		return p.translateComposed(t, t.Types, " & ", t.Nullable, s, from)
	case nil:
		return p.VoidTypeName, nil
	default:
		return "", errors.Newf("unsupported type kind: %s", t.Kind())
	}
}

func (p *Policy) translateComposed(t ir.Type, members []ir.Type, sep string, nullable bool, s *Scope, from *ir.Namespace) (string, error) {
	if !p.NativeComposedTypes {
		return "", ir.NewUnsupportedConstruct(p.target, t)
	}
	parts := make([]string, 0, len(members))
	for _, m := range members {
		name, err := p.translate(m, s, from)
		if err != nil {
			return "", err
		}
		parts = append(parts, name)
	}
	name := strings.Join(parts, sep)
	if nullable {
		name = p.markNullable(name)
	}
	return name, nil
}

func (p *Policy) translateRef(t *ir.TypeRef, s *Scope, from *ir.Namespace) string {
	var name string
	switch {
	case t.Definition != nil && s != nil:
		name = s.Name(t.Definition, from)
	case t.Definition != nil:
		name = p.TypeName(t.Definition)
	default:
		name = p.ScalarName(t.Name)
	}
	switch t.Collection {
	case ir.CollectionArray:
		name = strings.ReplaceAll(p.array, "%s", name)
	case ir.CollectionList:
		name = strings.ReplaceAll(p.list, "%s", name)
	}
	if t.Nullable {
		name = p.markNullable(name)
	}
	return name
}

// ScalarName translates a canonical primitive name. Unknown names pass
// through unchanged.
func (p *Policy) ScalarName(canonical string) string {
	if name, ok := p.translations[strings.ToLower(canonical)]; ok {
		return name
	}
	return canonical
}

func (p *Policy) markNullable(name string) string {
	switch p.nullable {
	case NullableSuffix:
		return name + "?"
	case NullableUnion:
		return name + " | null"
	case NullablePointer:
		if strings.HasPrefix(name, "[]") || strings.HasPrefix(name, "map[") || strings.HasPrefix(name, "*") {
			return name
		}
		return "*" + name
	default:
		return name
	}
}
