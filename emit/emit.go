// Package emit defines what emitters produce and the naming shared by every
// target's rendering of synthesized operations.
package emit

import (
	"context"
	"path"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/broady/apigen/convention"
	"github.com/broady/apigen/ir"
	"github.com/broady/apigen/synth"
)

// Unit is one generated file.
type Unit struct {
	// Path is relative to the target output directory and uses forward
	// slashes.
	Path    string
	Content []byte
}

// Emitter renders an element graph as source files.
type Emitter interface {
	// Emit synthesizes every method through e and returns the units in a
	// stable order. The graph is not modified.
	Emit(ctx context.Context, e *synth.Engine, root *ir.Namespace) ([]Unit, error)
}

// UnitPath returns the file path of def below the root namespace: one
// directory per namespace segment, and a file named with the policy's file
// casing.
func UnitPath(p *convention.Policy, root *ir.Namespace, def ir.Definition) string {
	return path.Join(Dir(root, def.DeclaringNamespace()), p.FileCase.Apply(def.DefinitionName())+p.FileExtension)
}

// Dir returns the directory of ns relative to root.
func Dir(root, ns *ir.Namespace) string {
	if ns == nil || ns == root {
		return ""
	}
	rel := strings.TrimPrefix(ns.Name, root.Name)
	rel = strings.TrimPrefix(rel, ".")
	return strings.ToLower(strings.ReplaceAll(rel, ".", "/"))
}

// Emitted reports whether method m has a body on targets without a
// command line. Command builders only exist on the command-line target.
func Emitted(m *ir.Method, commands bool) bool {
	return commands || m.Kind != ir.MethodCommandBuilder
}

// ValueMethod returns the suffix of the serialization writer or parse node
// accessor for a value, such as "StringValue" or
// "CollectionOfObjectValues".
func ValueMethod(v synth.ValueVariant, t ir.Type) string {
	switch v {
	case synth.ValueEnum:
		return "EnumValue"
	case synth.ValueByteArray:
		return "ByteArrayValue"
	case synth.ValueCollectionOfPrimitive:
		return "CollectionOfPrimitiveValues"
	case synth.ValueCollectionOfEnum:
		return "CollectionOfEnumValues"
	case synth.ValueCollectionOfObject:
		return "CollectionOfObjectValues"
	case synth.ValueObject, synth.ValueComposed:
		return "ObjectValue"
	}
	name := ir.String
	if ref := ir.AsRef(t); ref != nil && ref.Name != "" {
		name = ref.Name
	}
	if name == ir.UntypedNode {
		return "ObjectValue"
	}
	if known, ok := valueNames[name]; ok {
		name = known
	}
	return strcase.ToCamel(name) + "Value"
}

var valueNames = map[string]string{
	ir.Int64:          "Long",
	ir.Integer:        "Int",
	ir.Boolean:        "Bool",
	ir.GUID:           "Guid",
	ir.DateTimeOffset: "DateTimeOffset",
	ir.DateOnly:       "DateOnly",
	ir.TimeOnly:       "TimeOnly",
}

// SendMethod returns the request adapter method for a send variant.
func SendMethod(v synth.SendVariant) string {
	switch v {
	case synth.SendNoContent:
		return "SendNoContent"
	case synth.SendPrimitive:
		return "SendPrimitive"
	case synth.SendPrimitiveCollection:
		return "SendPrimitiveCollection"
	case synth.SendObjectCollection:
		return "SendCollection"
	default:
		return "Send"
	}
}

// Arguments renders the arguments of a call to gen, one per parameter of
// gen.Signature(). A nil entry of args renders as none. When optional is
// set, trailing nil arguments bound to optional parameters are dropped.
func Arguments(gen *ir.Method, args []*ir.Parameter, render func(*ir.Parameter) string, none string, optional bool) []string {
	sig := gen.Signature()
	n := len(args)
	if optional {
		for n > 0 && args[n-1] == nil && n <= len(sig) && sig[n-1].Optional {
			n--
		}
	}
	out := make([]string, 0, n)
	for _, a := range args[:n] {
		if a == nil {
			out = append(out, none)
			continue
		}
		out = append(out, render(a))
	}
	return out
}

// FactoryMethod is the name of the static discriminator factory of a
// class, before member casing.
const FactoryMethod = "CreateFromDiscriminatorValue"

// Relative returns the slash separated path of target relative to the
// directory dir.
func Relative(dir, target string) string {
	from := split(dir)
	to := split(target)
	i := 0
	for i < len(from) && i < len(to)-1 && from[i] == to[i] {
		i++
	}
	var parts []string
	for range from[i:] {
		parts = append(parts, "..")
	}
	parts = append(parts, to[i:]...)
	rel := strings.Join(parts, "/")
	if !strings.HasPrefix(rel, "..") {
		rel = "./" + rel
	}
	return rel
}

func split(p string) []string {
	if p == "" || p == "." {
		return nil
	}
	return strings.Split(p, "/")
}

// HTTPMethodName returns the upper-case name of an HTTP method.
func HTTPMethodName(m ir.HTTPMethod) string {
	return strings.ToUpper(string(m))
}
