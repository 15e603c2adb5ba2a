// Package csharp renders synthesized element graphs as C# sources, one
// file per class or enum.
//
// An emitter created by NewCommandLine also renders command builder
// methods, producing a System.CommandLine application on top of the
// client.
package csharp

import (
	"context"
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

// Namespaces the generated code imports.
const (
	abstractions  = "Microsoft.Kiota.Abstractions"
	serialization = "Microsoft.Kiota.Abstractions.Serialization"
	store         = "Microsoft.Kiota.Abstractions.Store"
)

var (
	sdkUsings = []string{"System", "System.Collections.Generic", "System.IO", "System.Linq", "System.Threading", "System.Threading.Tasks"}
	cliUsings = []string{
		"Microsoft.Extensions.DependencyInjection",
		"Microsoft.Kiota.Cli.Commons",
		"Microsoft.Kiota.Cli.Commons.Extensions",
		"Microsoft.Kiota.Cli.Commons.IO",
		"System.CommandLine",
		"System.Text",
	}
)

// Emitter renders C# files.
type Emitter struct {
	logger *zap.Logger

	// Indent is the indentation unit. Defaults to four spaces.
	Indent string

	// Commands enables command builder rendering.
	Commands bool
}

// New returns a client emitter logging to logger, which may be nil.
func New(logger *zap.Logger) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{logger: logger, Indent: "    "}
}

// NewCommandLine returns an emitter that also renders command builders.
func NewCommandLine(logger *zap.Logger) *Emitter {
	em := New(logger)
	em.Commands = true
	return em
}

var _ emit.Emitter = (*Emitter)(nil)

// Emit renders every enum and class below root.
func (em *Emitter) Emit(ctx context.Context, e *synth.Engine, root *ir.Namespace) ([]emit.Unit, error) {
	p := e.Context().Policy
	var units []emit.Unit
	for _, en := range root.AllEnums() {
		u := em.newUnit(p, en.Namespace)
		u.enum(en)
		units = append(units, u.finish(emit.UnitPath(p, root, en)))
	}
	for _, c := range root.AllClasses() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		u := em.newUnit(p, c.Namespace)
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
	ns     *ir.Namespace
	w      *code.Writer
	usings map[string]bool

	method  *ir.Method
	aliases synth.Aliases

	// Command builder state, reset per method.
	options  []synth.CommandOption
	builders map[*ir.Class]string
	handler  bool
	temps    int
}

func (em *Emitter) newUnit(p *convention.Policy, ns *ir.Namespace) *unit {
	u := &unit{
		em:     em,
		policy: p,
		scope:  p.NewScope(),
		ns:     ns,
		w:      code.New(em.Indent),
		usings: make(map[string]bool),
	}
	// Declarations sit inside the namespace block.
	u.w.Indent()
	return u
}

// NamespaceName returns the C# namespace of ns.
func NamespaceName(p *convention.Policy, ns *ir.Namespace) string {
	if ns == nil {
		return ""
	}
	segs := strings.Split(ns.Name, ".")
	for i, s := range segs {
		segs[i] = p.Identifier(s, convention.CasePascal)
	}
	return strings.Join(segs, ".")
}

func (u *unit) finish(file string) emit.Unit {
	for _, ns := range u.scope.Imports() {
		if ns != u.ns {
			u.usings[NamespaceName(u.policy, ns)] = true
		}
	}
	names := make([]string, 0, len(u.usings))
	for n := range u.usings {
		names = append(names, n)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("// <auto-generated/>\n")
	for _, n := range names {
		sb.WriteString("using " + n + ";\n")
	}
	sb.WriteString("namespace " + NamespaceName(u.policy, u.ns) + " {\n")
	sb.Write(u.w.Bytes())
	sb.WriteString("}\n")
	return emit.Unit{Path: file, Content: []byte(sb.String())}
}

func (u *unit) use(names ...string) {
	for _, n := range names {
		u.usings[n] = true
	}
}

func (u *unit) typeName(t ir.Type) (string, error) {
	if t == nil {
		return u.policy.VoidTypeName, nil
	}
	return u.scope.Translate(t, u.ns)
}

// propertyType returns the declared type of p. Runtime members have fixed
// abstractions types.
func (u *unit) propertyType(p *ir.Property) (string, error) {
	switch p.Kind {
	case ir.PropertyPathParameters:
		return "Dictionary<string, object>", nil
	case ir.PropertyAdditionalData:
		return "IDictionary<string, object>", nil
	case ir.PropertyHeaders:
		return "RequestHeaders", nil
	case ir.PropertyOptions:
		return "IList<IRequestOption>", nil
	case ir.PropertyRequestAdapter:
		return "IRequestAdapter", nil
	case ir.PropertyBackingStore:
		u.use(store)
		return "IBackingStore", nil
	case ir.PropertyUrlTemplate:
		return "string", nil
	}
	return u.typeName(p.Type)
}

// paramType returns the declared type of p. The request configuration is
// a configurator invoked on a fresh configuration object.
func (u *unit) paramType(p *ir.Parameter) (string, error) {
	switch p.Kind {
	case ir.ParamPathParameters:
		return "Dictionary<string, object>", nil
	case ir.ParamRequestAdapter:
		return "IRequestAdapter", nil
	case ir.ParamSerializer:
		u.use(serialization)
		return "ISerializationWriter", nil
	case ir.ParamParseNode:
		u.use(serialization)
		return "IParseNode", nil
	case ir.ParamBackingStore:
		u.use(store)
		return "IBackingStoreFactory", nil
	case ir.ParamRawUrl:
		return "string", nil
	case ir.ParamCancellation:
		return "CancellationToken", nil
	case ir.ParamRequestConfiguration:
		if cls := configClass(p); cls != nil {
			return "Action<" + u.define(cls) + ">", nil
		}
	}
	return u.typeName(p.Type)
}

// configClass returns the configuration class of a request configuration
// parameter, or nil.
func configClass(p *ir.Parameter) *ir.Class {
	if ref := ir.AsRef(p.Type); ref != nil {
		return ref.Class()
	}
	return nil
}

func (u *unit) define(def ir.Definition) string {
	return u.scope.Name(def, u.ns)
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func (u *unit) doc(d ir.Documentation) {
	text := strings.TrimSpace(d.Description)
	if text == "" && d.Link == "" {
		return
	}
	u.w.Line("/// <summary>")
	u.w.Lines(u.policy.Doc(xmlEscaper.Replace(text)))
	if d.Link != "" {
		label := d.LinkLabel
		if label == "" {
			label = "Find more info here"
		}
		u.w.Line("/// %s <see href=%s />", xmlEscaper.Replace(label), code.Quote(d.Link))
	}
	u.w.Line("/// </summary>")
}

func (u *unit) enum(en *ir.Enum) {
	u.use("System.Runtime.Serialization")
	u.doc(en.Documentation)
	if en.Flags {
		u.use("System")
		u.w.Line("[Flags]")
	}
	u.w.Block("public enum "+u.policy.TypeName(en)+" {", "}", func() {
		for i, o := range en.Options {
			u.doc(o.Documentation)
			u.w.Line("[EnumMember(Value = %s)]", code.Quote(o.WireName()))
			name := u.policy.Identifier(o.Name, convention.CasePascal)
			if en.Flags {
				u.w.Line("%s = %d,", name, 1<<i)
			} else {
				u.w.Line("%s,", name)
			}
		}
	})
}

func (u *unit) class(e *synth.Engine, c *ir.Class) error {
	u.use(abstractions)
	u.use(sdkUsings...)

	var bases []string
	switch {
	case c.Inherits != nil:
		base, err := u.typeName(c.Inherits)
		if err != nil {
			return err
		}
		bases = append(bases, base)
	case c.Kind == ir.ClassErrorDefinition:
		bases = append(bases, "ApiException")
	}
	if c.Kind == ir.ClassModel || c.Kind == ir.ClassErrorDefinition {
		u.use(serialization)
		if c.Inherits == nil && c.PropertyOfKind(ir.PropertyAdditionalData) != nil {
			bases = append(bases, "IAdditionalDataHolder")
		}
		if c.Inherits == nil && c.PropertyOfKind(ir.PropertyBackingStore) != nil {
			u.use(store)
			bases = append(bases, "IBackedModel")
		}
		bases = append(bases, "IParsable")
	}
	for _, t := range c.Implements {
		name, err := u.typeName(t)
		if err != nil {
			return err
		}
		bases = append(bases, name)
	}
	decl := "public partial class " + u.policy.TypeName(c)
	if len(bases) > 0 {
		decl += " : " + strings.Join(bases, ", ")
	}

	u.doc(c.Documentation)
	var err error
	u.w.Block(decl+" {", "}", func() {
		for _, p := range c.Properties {
			if err = u.property(p); err != nil {
				return
			}
		}
		for _, x := range c.DeclaredIndexers() {
			if err = u.indexer(x); err != nil {
				return
			}
		}
		for _, m := range c.Methods {
			if !emit.Emitted(m, u.em.Commands) {
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
	access := u.policy.Access(p.Access)
	name := u.policy.MemberName(p.Name)

	if p.Kind == ir.PropertyRequestBuilder && p.Parent != nil {
		path := p.Parent.PropertyOfKind(ir.PropertyPathParameters)
		adapter := p.Parent.PropertyOfKind(ir.PropertyRequestAdapter)
		if path != nil && adapter != nil {
			u.w.Line("%s %s %s {", access, t, name)
			u.w.Indent()
			u.w.Line("get => new %s(%s, %s);", t, u.prop(path), u.prop(adapter))
			u.w.Dedent()
			u.w.Line("}")
			return nil
		}
	}
	if p.ReadOnly {
		u.w.Line("%s %s %s { get; private set; }", access, t, name)
		return nil
	}
	u.w.Line("%s %s %s { get; set; }", access, t, name)
	return nil
}

func (u *unit) indexer(x *ir.Indexer) error {
	cls := x.Parent
	path := cls.PropertyOfKind(ir.PropertyPathParameters)
	adapter := cls.PropertyOfKind(ir.PropertyRequestAdapter)
	if path == nil || adapter == nil || x.TargetClass() == nil {
		u.em.logger.Debug("skipping indexer", zap.String("class", cls.QualifiedName()), zap.String("indexer", x.Name))
		return nil
	}
	ret, err := u.typeName(x.ReturnType)
	if err != nil {
		return err
	}
	idx, err := u.typeName(x.IndexType)
	if err != nil {
		return err
	}
	param := "position"
	if x.ParameterName != "" {
		param = u.policy.Identifier(x.ParameterName, convention.CaseCamel)
	}
	key := x.SerializationName
	if key == "" {
		key = param
	}
	u.doc(x.Documentation)
	u.w.Block("public "+ret+" this["+idx+" "+param+"] {", "}", func() {
		u.w.Block("get {", "}", func() {
			u.w.Line("var %s = new Dictionary<string, object>(%s);", pathParamsVar, u.prop(path))
			u.w.Line("%s.Add(%s, %s);", pathParamsVar, code.Quote(key), param)
			u.w.Line("return new %s(%s, %s);", ret, pathParamsVar, u.prop(adapter))
		})
	})
	return nil
}

// prop returns the member name of p, or null.
func (u *unit) prop(p *ir.Property) string {
	if p == nil {
		return "null"
	}
	return u.policy.MemberName(p.Name)
}

func (u *unit) param(p *ir.Parameter) string {
	return u.policy.Identifier(u.aliases.Name(p), convention.CaseCamel)
}

func (u *unit) emitMethod(e *synth.Engine, m *ir.Method) error {
	body, err := e.Synthesize(m)
	if err != nil {
		return err
	}
	u.method = m
	u.aliases = body.Aliases
	u.options = nil
	u.builders = make(map[*ir.Class]string)
	u.temps = 0

	sig, err := u.signature(m)
	if err != nil {
		return errors.Wrapf(err, "method %s", m.Name)
	}
	u.w.Line("")
	u.doc(m.Documentation)
	u.w.Line("%s {", sig)
	u.w.Indent()
	if m.Kind == ir.MethodFactory {
		if pn := m.ParameterOfKind(ir.ParamParseNode); pn != nil {
			name := u.param(pn)
			u.w.Line("_ = %s ?? throw new ArgumentNullException(nameof(%s));", name, name)
		}
	}
	for _, op := range body.Ops {
		if err := u.op(op); err != nil {
			return errors.Wrapf(err, "method %s", m.Name)
		}
	}
	if m.Kind == ir.MethodRequestGenerator {
		u.w.Line("return %s;", requestInfoVar)
	}
	u.w.Dedent()
	u.w.Line("}")
	return nil
}

func (u *unit) signature(m *ir.Method) (string, error) {
	var params []string
	for _, p := range m.Signature() {
		t, err := u.paramType(p)
		if err != nil {
			return "", err
		}
		decl := t + " " + u.param(p)
		if p.Optional {
			if p.Kind != ir.ParamCancellation && !strings.HasSuffix(t, "?") {
				decl = t + "? " + u.param(p)
			}
			decl += " = default"
		}
		params = append(params, decl)
	}
	args := "(" + strings.Join(params, ", ") + ")"
	access := u.policy.Access(m.Access)
	name := u.policy.MemberName(m.Name)
	modifier := "virtual"
	if m.Parent.BaseClass() != nil {
		modifier = "override"
	}

	switch m.Kind {
	case ir.MethodConstructor, ir.MethodClientConstructor, ir.MethodRawUrlConstructor:
		return access + " " + u.policy.TypeName(m.Parent) + args, nil
	case ir.MethodFactory:
		return access + " static " + u.policy.TypeName(m.Parent) + " " + u.policy.MemberName(emit.FactoryMethod) + args, nil
	case ir.MethodSerializer:
		return access + " " + modifier + " void " + name + args, nil
	case ir.MethodDeserializer:
		return access + " " + modifier + " IDictionary<string, Action<IParseNode>> " + name + args, nil
	case ir.MethodCommandBuilder:
		u.use(cliUsings...)
		if returnsItems(m) {
			return access + " Tuple<List<Command>, List<Command>> " + name + args, nil
		}
		return access + " Command " + name + args, nil
	}

	ret, err := u.typeName(m.ReturnType)
	if err != nil {
		return "", err
	}
	if m.Kind == ir.MethodRequestExecutor {
		if ret == u.policy.VoidTypeName {
			return access + " async Task " + name + "Async" + args, nil
		}
		if !strings.HasSuffix(ret, "?") {
			ret += "?"
		}
		return access + " async Task<" + ret + "> " + name + "Async" + args, nil
	}
	return access + " " + ret + " " + name + args, nil
}

func returnsItems(m *ir.Method) bool {
	if m.OriginalIndexer != nil {
		return true
	}
	ref := m.ReturnRef()
	return ref != nil && ref.IsCollection()
}
