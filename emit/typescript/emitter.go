// Package typescript renders synthesized element graphs as TypeScript
// client sources, one module per class or enum.
package typescript

import (
	"context"
	"path"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/broady/apigen/convention"
	"github.com/broady/apigen/emit"
	"github.com/broady/apigen/emit/code"
	"github.com/broady/apigen/ir"
	"github.com/broady/apigen/synth"
)

// Runtime is the module the generated code imports abstractions from.
const Runtime = "@microsoft/kiota-abstractions"

// Emitter renders TypeScript modules.
type Emitter struct {
	logger *zap.Logger

	// Indent is the indentation unit. Defaults to four spaces.
	Indent string
}

// New returns an emitter logging to logger, which may be nil.
func New(logger *zap.Logger) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{logger: logger, Indent: "    "}
}

var _ emit.Emitter = (*Emitter)(nil)

// Emit renders every enum and class below root.
func (em *Emitter) Emit(ctx context.Context, e *synth.Engine, root *ir.Namespace) ([]emit.Unit, error) {
	p := e.Context().Policy
	var units []emit.Unit
	for _, en := range root.AllEnums() {
		u := em.newUnit(p, root, en.Namespace)
		u.enum(en)
		units = append(units, u.finish(emit.UnitPath(p, root, en)))
	}
	for _, c := range root.AllClasses() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		u := em.newUnit(p, root, c.Namespace)
		if err := u.class(e, c); err != nil {
			return nil, errors.Wrapf(err, "emit %s", c.QualifiedName())
		}
		units = append(units, u.finish(emit.UnitPath(p, root, c)))
	}
	return units, nil
}

type unit struct {
	em     *Emitter
	policy *convention.Policy
	scope  *convention.Scope
	root   *ir.Namespace
	ns     *ir.Namespace
	w      *code.Writer

	// refs maps each foreign definition to the local name it is used by.
	refs map[ir.Definition]string

	// runtime holds the abstractions the unit uses.
	runtime map[string]bool

	method  *ir.Method
	aliases synth.Aliases

	// recv is the object member operations apply to.
	recv string
}

func (em *Emitter) newUnit(p *convention.Policy, root, ns *ir.Namespace) *unit {
	return &unit{
		em:      em,
		policy:  p,
		scope:   p.NewScope(),
		root:    root,
		ns:      ns,
		w:       code.New(em.Indent),
		refs:    make(map[ir.Definition]string),
		runtime: make(map[string]bool),
		recv:    "this",
	}
}

// finish prepends the import block.
func (u *unit) finish(file string) emit.Unit {
	var head strings.Builder
	if len(u.runtime) > 0 {
		names := sortedKeys(u.runtime)
		head.WriteString("import { " + strings.Join(names, ", ") + " } from " + code.Quote(Runtime) + ";\n")
	}

	byModule := make(map[string][]string)
	for def, local := range u.refs {
		target := strings.TrimSuffix(emit.UnitPath(u.policy, u.root, def), u.policy.FileExtension)
		mod := emit.Relative(path.Dir(file), target)
		name := u.policy.TypeName(def)
		if local != name {
			name += " as " + local
		}
		byModule[mod] = append(byModule[mod], name)
	}
	mods := make([]string, 0, len(byModule))
	for m := range byModule {
		mods = append(mods, m)
	}
	sort.Strings(mods)
	for _, m := range mods {
		names := byModule[m]
		sort.Strings(names)
		head.WriteString("import { " + strings.Join(names, ", ") + " } from " + code.Quote(m) + ";\n")
	}
	if head.Len() > 0 {
		head.WriteString("\n")
	}
	return emit.Unit{Path: file, Content: append([]byte(head.String()), u.w.Bytes()...)}
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (u *unit) use(names ...string) {
	for _, n := range names {
		u.runtime[n] = true
	}
}

// runtimeTypes are the abstractions that reach the graph as primitive
// names. They are imported from Runtime when used.
var runtimeTypes = map[string]bool{
	"BackingStore":        true,
	"BackingStoreFactory": true,
	"Parsable":            true,
	"ParseNode":           true,
	"RequestAdapter":      true,
	"RequestInformation":  true,
	"RequestOption":       true,
	"SerializationWriter": true,
	"UntypedNode":         true,
}

// mapType is the rendering of dictionary primitives.
const mapType = "Record<string, unknown>"

// typeName translates t and records the definitions and runtime types it
// references.
func (u *unit) typeName(t ir.Type) (string, error) {
	if t == nil {
		return u.policy.VoidTypeName, nil
	}
	ref := ir.AsRef(t)
	scalar := ref != nil && ref.Definition == nil && !ref.IsCollection()
	if scalar && (strings.EqualFold(ref.Name, "dictionary") || strings.EqualFold(ref.Name, "map")) {
		return mapType, nil
	}
	name, err := u.scope.Translate(t, u.ns)
	if err != nil {
		return "", err
	}
	if base := strings.TrimSuffix(name, " | null"); scalar && runtimeTypes[base] {
		u.use(base)
	}
	u.reference(t)
	return name, nil
}

// propertyType returns the declared type of p. Runtime members have fixed
// abstractions types.
func (u *unit) propertyType(p *ir.Property) (string, error) {
	switch p.Kind {
	case ir.PropertyPathParameters, ir.PropertyAdditionalData:
		return mapType, nil
	case ir.PropertyHeaders:
		return "Record<string, string[]>", nil
	case ir.PropertyOptions:
		u.use("RequestOption")
		return "RequestOption[]", nil
	case ir.PropertyRequestAdapter:
		u.use("RequestAdapter")
		return "RequestAdapter", nil
	case ir.PropertyBackingStore:
		u.use("BackingStore")
		return "BackingStore", nil
	case ir.PropertyUrlTemplate:
		return "string", nil
	}
	return u.typeName(p.Type)
}

// paramType returns the declared type of p. The request configuration is
// a configurator called with a fresh configuration object.
func (u *unit) paramType(p *ir.Parameter) (string, error) {
	switch p.Kind {
	case ir.ParamPathParameters:
		return mapType, nil
	case ir.ParamRequestAdapter:
		u.use("RequestAdapter")
		return "RequestAdapter", nil
	case ir.ParamSerializer:
		u.use("SerializationWriter")
		return "SerializationWriter", nil
	case ir.ParamParseNode:
		u.use("ParseNode")
		return "ParseNode", nil
	case ir.ParamBackingStore:
		u.use("BackingStoreFactory")
		return "BackingStoreFactory", nil
	case ir.ParamRawUrl:
		return "string", nil
	case ir.ParamRequestConfiguration:
		if ref := ir.AsRef(p.Type); ref != nil && ref.Class() != nil {
			return "(config: " + u.define(ref.Class()) + ") => void", nil
		}
	}
	return u.typeName(p.Type)
}

// runtimeMember reports whether p is assigned by every constructor of its
// request builder.
func runtimeMember(p *ir.Property) bool {
	switch p.Kind {
	case ir.PropertyPathParameters, ir.PropertyRequestAdapter, ir.PropertyUrlTemplate:
		return p.Parent != nil && p.Parent.Kind == ir.ClassRequestBuilder
	}
	return false
}

func (u *unit) reference(t ir.Type) {
	switch t := t.(type) {
	case *ir.TypeRef:
		if t.Definition != nil {
			u.define(t.Definition)
		}
	case *ir.UnionType:
		for _, m := range t.Types {
			u.reference(m)
		}
	case *ir.IntersectionType:
		for _, m := range t.Types {
			u.reference(m)
		}
	}
}

// define returns the local name of def, recording an import when it is
// declared in another module.
func (u *unit) define(def ir.Definition) string {
	name := u.scope.Name(def, u.ns)
	if _, seen := u.refs[def]; !seen && !u.declaredHere(def) {
		u.refs[def] = name
	}
	return name
}

func (u *unit) declaredHere(def ir.Definition) bool {
	return u.method != nil && u.method.Parent == def
}

func (u *unit) doc(d ir.Documentation) {
	text := d.Description
	if d.Link != "" {
		text = strings.TrimSpace(text + "\n@see {@link " + d.Link + "|" + linkLabel(d) + "}")
	}
	lines := u.policy.Doc(text)
	if len(lines) == 0 {
		return
	}
	u.w.Line("/**")
	u.w.Lines(lines)
	u.w.Line(" */")
}

func linkLabel(d ir.Documentation) string {
	if d.LinkLabel != "" {
		return d.LinkLabel
	}
	return "Find more info here"
}

func (u *unit) enum(en *ir.Enum) {
	u.doc(en.Documentation)
	u.w.Block("export enum "+u.policy.TypeName(en)+" {", "}", func() {
		for _, o := range en.Options {
			u.doc(o.Documentation)
			u.w.Line("%s = %s,", u.policy.Identifier(o.Name, convention.CasePascal), code.Quote(o.WireName()))
		}
	})
}

func (u *unit) class(e *synth.Engine, c *ir.Class) error {
	u.method = &ir.Method{Parent: c}
	decl := "export class " + u.policy.TypeName(c)
	if c.Inherits != nil {
		base, err := u.typeName(c.Inherits)
		if err != nil {
			return err
		}
		decl += " extends " + base
	}
	var impl []string
	for _, t := range c.Implements {
		name, err := u.typeName(t)
		if err != nil {
			return err
		}
		impl = append(impl, name)
	}
	if c.Kind == ir.ClassModel || c.Kind == ir.ClassErrorDefinition {
		u.use("Parsable")
		impl = append([]string{"Parsable"}, impl...)
	}
	if len(impl) > 0 {
		decl += " implements " + strings.Join(impl, ", ")
	}

	u.doc(c.Documentation)
	var err error
	u.w.Block(decl+" {", "}", func() {
		for _, p := range c.Properties {
			if err = u.property(p); err != nil {
				return
			}
		}
		for _, m := range c.Methods {
			if !emit.Emitted(m, false) {
				u.em.logger.Debug("skipping command builder", zap.String("method", m.QualifiedName()))
				continue
			}
			if err = u.emitMethod(e, m); err != nil {
				return
			}
		}
	})
	return err
}

func (u *unit) property(p *ir.Property) error {
	if p.ExistsInBaseType {
		return nil
	}
	t, err := u.propertyType(p)
	if err != nil {
		return errors.Wrapf(err, "property %s", p.Name)
	}
	u.doc(p.Documentation)
	mod := u.policy.Access(p.Access)
	if p.ReadOnly {
		mod += " readonly"
	}
	opt := "?"
	if runtimeMember(p) {
		opt = "!"
	}
	u.w.Line("%s %s%s: %s;", mod, u.member(p), opt, t)
	return nil
}

func (u *unit) member(p *ir.Property) string {
	return u.policy.MemberName(p.Name)
}

func (u *unit) param(p *ir.Parameter) string {
	return u.policy.MemberName(u.aliases.Name(p))
}

func (u *unit) emitMethod(e *synth.Engine, m *ir.Method) error {
	body, err := e.Synthesize(m)
	if err != nil {
		return err
	}
	u.method = m
	u.aliases = body.Aliases

	sig, err := u.signature(m)
	if err != nil {
		return errors.Wrapf(err, "method %s", m.Name)
	}
	u.w.Line("")
	u.doc(m.Documentation)
	u.w.Line("%s {", sig)
	u.w.Indent()
	switch {
	case m.Kind == ir.MethodRawUrlConstructor:
		// Constructors cannot be overloaded; the raw URL form builds an
		// instance without running the main constructor.
		name := u.policy.TypeName(m.Parent)
		u.recv = "builder"
		u.w.Line("const builder = Object.create(%s.prototype) as %s;", name, name)
	case m.Kind.IsConstructor() && m.Parent.Inherits != nil:
		u.w.Line("super();")
	}
	for _, op := range body.Ops {
		if err := u.op(op); err != nil {
			return errors.Wrapf(err, "method %s", m.Name)
		}
	}
	switch m.Kind {
	case ir.MethodRequestGenerator:
		u.w.Line("return %s;", requestInfoVar)
	case ir.MethodRawUrlConstructor:
		u.w.Line("return builder;")
		u.recv = "this"
	}
	u.w.Dedent()
	u.w.Line("}")
	return nil
}

func (u *unit) signature(m *ir.Method) (string, error) {
	var params []string
	for _, p := range m.Signature() {
		if p.Kind == ir.ParamCancellation {
			continue
		}
		t, err := u.paramType(p)
		if err != nil {
			return "", err
		}
		opt := ""
		if p.Optional {
			opt = "?"
		}
		params = append(params, u.param(p)+opt+": "+t)
	}
	args := "(" + strings.Join(params, ", ") + ")"
	access := u.policy.Access(m.Access)

	switch m.Kind {
	case ir.MethodConstructor, ir.MethodClientConstructor:
		return access + " constructor" + args, nil
	case ir.MethodRawUrlConstructor:
		return access + " static withUrl" + args + ": " + u.policy.TypeName(m.Parent), nil
	case ir.MethodGetter:
		t, err := u.typeName(m.AccessedProperty.Type)
		if err != nil {
			return "", err
		}
		return access + " get " + u.member(m.AccessedProperty) + "Value(): " + t + " | undefined", nil
	case ir.MethodSetter:
		return access + " set " + u.member(m.AccessedProperty) + "Value" + args, nil
	case ir.MethodFactory:
		return access + " static " + u.policy.MemberName(emit.FactoryMethod) + args + ": " + u.policy.TypeName(m.Parent), nil
	}

	ret, err := u.typeName(m.ReturnType)
	if err != nil {
		return "", err
	}
	name := u.policy.MemberName(m.Name)
	switch m.Kind {
	case ir.MethodRequestExecutor:
		if ret != u.policy.VoidTypeName {
			ret += " | undefined"
		}
		return access + " async " + name + args + ": Promise<" + ret + ">", nil
	case ir.MethodSerializer:
		return access + " " + name + args + ": void", nil
	case ir.MethodDeserializer:
		u.use("ParseNode")
		return access + " " + name + args + ": Record<string, (node: ParseNode) => void>", nil
	}
	return access + " " + name + args + ": " + ret, nil
}
