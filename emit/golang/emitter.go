// Package golang renders synthesized element graphs as Go client
// packages, one package per namespace and one file per class or enum.
//
// Output is formatted with golang.org/x/tools/imports, so every unit is
// guaranteed to parse.
package golang

import (
	"context"
	"path"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/tools/imports"

	"github.com/broady/apigen/convention"
	"github.com/broady/apigen/emit"
	"github.com/broady/apigen/emit/code"
	"github.com/broady/apigen/ir"
	"github.com/broady/apigen/synth"
)

// Import paths of the runtime the generated code depends on.
const (
	AbstractionsPath  = "github.com/microsoft/kiota-abstractions-go"
	SerializationPath = AbstractionsPath + "/serialization"
	StorePath         = AbstractionsPath + "/store"
	uuidPath          = "github.com/google/uuid"
)

// Emitter renders Go files.
type Emitter struct {
	logger *zap.Logger

	// ImportPath is the import path of the package generated for the root
	// namespace. Defaults to the root package name.
	ImportPath string
}

// New returns an emitter logging to logger, which may be nil.
func New(logger *zap.Logger, importPath string) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{logger: logger, ImportPath: importPath}
}

var _ emit.Emitter = (*Emitter)(nil)

// Emit renders every enum and class below root.
func (em *Emitter) Emit(ctx context.Context, e *synth.Engine, root *ir.Namespace) ([]emit.Unit, error) {
	p := e.Context().Policy
	var units []emit.Unit
	for _, en := range root.AllEnums() {
		u := em.newUnit(p, root, en.Namespace)
		u.enum(en)
		unit, err := u.finish(emit.UnitPath(p, root, en))
		if err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	for _, c := range root.AllClasses() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		u := em.newUnit(p, root, c.Namespace)
		if err := u.class(e, c); err != nil {
			return nil, errors.Wrapf(err, "emit %s", c.QualifiedName())
		}
		unit, err := u.finish(emit.UnitPath(p, root, c))
		if err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	return units, nil
}

type unit struct {
	em      *Emitter
	policy  *convention.Policy
	scope   *convention.Scope
	root    *ir.Namespace
	ns      *ir.Namespace
	w       *code.Writer
	imports map[string]bool

	method  *ir.Method
	aliases synth.Aliases

	// fail is the statement returning an error from the current function.
	fail string

	discriminator *synth.ReadDiscriminator
}

func (em *Emitter) newUnit(p *convention.Policy, root, ns *ir.Namespace) *unit {
	return &unit{
		em:      em,
		policy:  p,
		scope:   p.NewScope(),
		root:    root,
		ns:      ns,
		w:       code.New("\t"),
		imports: make(map[string]bool),
	}
}

func (u *unit) use(paths ...string) {
	for _, p := range paths {
		u.imports[p] = true
	}
}

// importPath returns the import path of the package generated for ns.
func (u *unit) importPath(ns *ir.Namespace) string {
	base := u.em.ImportPath
	if base == "" {
		base = convention.PackageName(u.root.Name)
	}
	if dir := emit.Dir(u.root, ns); dir != "" {
		return base + "/" + dir
	}
	return base
}

func (u *unit) finish(file string) (emit.Unit, error) {
	specs := make(map[string]string)
	for p := range u.imports {
		specs[p] = code.Quote(p)
	}
	for _, ns := range u.scope.Imports() {
		if ns == u.ns {
			continue
		}
		p := u.importPath(ns)
		spec := code.Quote(p)
		if name := convention.PackageName(ns.Name); name != path.Base(p) {
			spec = name + " " + spec
		}
		specs[p] = spec
	}
	paths := make([]string, 0, len(specs))
	for p := range specs {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var sb strings.Builder
	sb.WriteString("// Code generated by apigen. DO NOT EDIT.\n\n")
	sb.WriteString("package " + convention.PackageName(u.ns.Name) + "\n\n")
	if len(paths) > 0 {
		sb.WriteString("import (\n")
		for _, p := range paths {
			sb.WriteString("\t" + specs[p] + "\n")
		}
		sb.WriteString(")\n\n")
	}
	sb.Write(u.w.Bytes())

	out, err := imports.Process(file, []byte(sb.String()), &imports.Options{
		FormatOnly: true,
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
	})
	if err != nil {
		return emit.Unit{}, errors.Wrapf(err, "format %s", file)
	}
	return emit.Unit{Path: file, Content: out}, nil
}

// doc writes a doc comment for the declaration named name.
func (u *unit) doc(name string, d ir.Documentation) {
	text := strings.TrimSpace(d.Description)
	if text == "" && d.Link == "" {
		return
	}
	if text != "" {
		u.w.Lines(u.policy.Doc(name + " " + lowerFirst(text)))
	}
	if d.Link != "" {
		label := d.LinkLabel
		if label == "" {
			label = "Find more info here"
		}
		if text != "" {
			u.w.Line("//")
		}
		u.w.Line("// [%s]: %s", label, d.Link)
	}
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	next, _ := utf8.DecodeRuneInString(s[n:])
	if unicode.IsUpper(next) {
		return s
	}
	return string(unicode.ToLower(r)) + s[n:]
}

// define returns the possibly package-qualified name of def.
func (u *unit) define(def ir.Definition) string {
	return u.scope.Name(def, u.ns)
}

// prefixed applies fn to the unqualified part of a possibly qualified
// name: prefixed("models.User", "New") is "models.NewUser".
func prefixed(name, prefix, suffix string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i+1] + prefix + name[i+1:] + suffix
	}
	return prefix + name + suffix
}

func (u *unit) constructor(c *ir.Class) string {
	name := prefixed(u.define(c), "New", "")
	if c.Kind == ir.ClassRequestBuilder {
		name += "Internal"
	}
	return name
}

func (u *unit) factory(c *ir.Class) string {
	if c == nil {
		return "nil"
	}
	return prefixed(u.define(c), "Create", "FromDiscriminatorValue")
}

// goType renders t. Class references are pointers; nullable scalars are
// pointers.
func (u *unit) goType(t ir.Type) (string, error) {
	ref := ir.AsRef(t)
	if ref == nil {
		return u.scope.Translate(t, u.ns)
	}
	if ref.IsVoid() {
		return "", nil
	}
	var name string
	pointer := false
	switch {
	case ref.Class() != nil:
		name, pointer = u.define(ref.Definition), true
	case ref.Definition != nil:
		name = u.define(ref.Definition)
	default:
		name = u.scalar(ref.Name)
	}
	if ref.IsCollection() {
		if pointer {
			name = "*" + name
		}
		return "[]" + name, nil
	}
	if pointer || ref.Nullable {
		return ptr(name), nil
	}
	return name, nil
}

// scalar translates a primitive name and records the import it needs.
func (u *unit) scalar(canonical string) string {
	name := u.policy.ScalarName(canonical)
	switch {
	case strings.HasPrefix(name, "uuid."):
		u.use(uuidPath)
	case strings.HasPrefix(name, "time."):
		u.use("time")
	case strings.HasPrefix(name, "serialization."):
		u.use(SerializationPath)
	}
	return name
}

// ptr returns a pointer to t unless t is already nilable.
func ptr(t string) string {
	for _, p := range []string{"*", "[]", "map[", "func(", "any", "interface"} {
		if strings.HasPrefix(t, p) {
			return t
		}
	}
	return "*" + t
}

func nilable(t string) bool { return ptr(t) == t }

func (u *unit) fieldType(p *ir.Property) (string, error) {
	switch p.Kind {
	case ir.PropertyPathParameters:
		return "map[string]string", nil
	case ir.PropertyAdditionalData:
		return "map[string]any", nil
	case ir.PropertyHeaders:
		u.use(AbstractionsPath)
		return "*abstractions.RequestHeaders", nil
	case ir.PropertyOptions:
		u.use(AbstractionsPath)
		return "[]abstractions.RequestOption", nil
	case ir.PropertyRequestAdapter:
		u.use(AbstractionsPath)
		return "abstractions.RequestAdapter", nil
	case ir.PropertyBackingStore:
		u.use(StorePath)
		return "store.BackingStore", nil
	case ir.PropertyUrlTemplate:
		return "string", nil
	}
	t, err := u.goType(p.Type)
	if err != nil {
		return "", err
	}
	if p.Kind == ir.PropertyCustom || p.Kind == ir.PropertyQueryParameter {
		t = ptr(t)
	}
	return t, nil
}

func (u *unit) paramType(p *ir.Parameter) (string, error) {
	switch p.Kind {
	case ir.ParamPathParameters:
		return "map[string]string", nil
	case ir.ParamRequestAdapter:
		u.use(AbstractionsPath)
		return "abstractions.RequestAdapter", nil
	case ir.ParamSerializer:
		u.use(SerializationPath)
		return "serialization.SerializationWriter", nil
	case ir.ParamParseNode:
		u.use(SerializationPath)
		return "serialization.ParseNode", nil
	case ir.ParamBackingStore:
		u.use(StorePath)
		return "store.BackingStoreFactory", nil
	case ir.ParamRawUrl:
		return "string", nil
	}
	t, err := u.goType(p.Type)
	if err != nil {
		return "", err
	}
	if p.Optional {
		t = ptr(t)
	}
	return t, nil
}

// field returns the struct field name of p. Only public properties are
// exported.
func (u *unit) field(p *ir.Property) string {
	if p.Access == ir.AccessPublic {
		return u.policy.MemberName(p.Name)
	}
	return u.policy.Identifier(p.Name, convention.CaseCamel)
}

func (u *unit) this(p *ir.Property) string {
	if p == nil {
		return "nil"
	}
	return "m." + u.field(p)
}

func (u *unit) param(p *ir.Parameter) string {
	return u.policy.Identifier(u.aliases.Name(p), convention.CaseCamel)
}
