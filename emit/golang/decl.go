package golang

import (
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/broady/apigen/convention"
	"github.com/broady/apigen/emit"
	"github.com/broady/apigen/emit/code"
	"github.com/broady/apigen/ir"
	"github.com/broady/apigen/synth"
)

func (u *unit) enum(en *ir.Enum) {
	name := u.policy.TypeName(en)
	u.doc(name, en.Documentation)
	u.w.Line("type %s int", name)

	consts := make([]string, len(en.Options))
	wires := make([]string, len(en.Options))
	for i, o := range en.Options {
		consts[i] = name + u.policy.Identifier(o.Name, convention.CasePascal)
		wires[i] = code.Quote(o.WireName())
	}
	if len(en.Options) > 0 {
		u.w.Line("")
		u.w.Block("const (", ")", func() {
			for i, o := range en.Options {
				u.doc(consts[i], o.Documentation)
				switch {
				case i > 0:
					u.w.Line("%s", consts[i])
				case en.Flags:
					u.w.Line("%s %s = 1 << iota", consts[i], name)
				default:
					u.w.Line("%s %s = iota", consts[i], name)
				}
			}
		})
	}

	options := "[]string{" + strings.Join(wires, ", ") + "}"
	u.w.Line("")
	u.w.Block("func (i "+name+") String() string {", "}", func() {
		if !en.Flags {
			u.w.Line("return %s[i]", options)
			return
		}
		u.use("strings")
		u.w.Line("var values []string")
		u.w.Line("options := %s", options)
		u.w.Block("for p := 0; p < len(options); p++ {", "}", func() {
			u.w.Line("bit := %s(1 << p)", name)
			u.w.Block("if i&bit == bit {", "}", func() {
				u.w.Line("values = append(values, options[p])")
			})
		})
		u.w.Line(`return strings.Join(values, ",")`)
	})

	u.use("errors")
	parse := func(input string, assign func(c string) string) {
		u.w.Block("switch "+input+" {", "}", func() {
			for i := range en.Options {
				u.w.Line("case %s:", wires[i])
				u.w.Indent()
				u.w.Line("%s", assign(consts[i]))
				u.w.Dedent()
			}
			u.w.Line("default:")
			u.w.Indent()
			u.w.Line("return nil, errors.New(%s + %s)", code.Quote("unknown "+name+" value: "), input)
			u.w.Dedent()
		})
	}
	u.w.Line("")
	u.w.Block("func Parse"+name+"(v string) (any, error) {", "}", func() {
		u.w.Line("var result %s", name)
		if en.Flags {
			u.use("strings")
			u.w.Block(`for _, str := range strings.Split(v, ",") {`, "}", func() {
				parse("str", func(c string) string { return "result |= " + c })
			})
		} else {
			parse("v", func(c string) string { return "result = " + c })
		}
		u.w.Line("return &result, nil")
	})

	u.w.Line("")
	u.w.Block("func Serialize"+name+"(values []"+name+") []string {", "}", func() {
		u.w.Line("result := make([]string, len(values))")
		u.w.Block("for i, v := range values {", "}", func() {
			u.w.Line("result[i] = v.String()")
		})
		u.w.Line("return result")
	})
}

func (u *unit) class(e *synth.Engine, c *ir.Class) error {
	name := u.policy.TypeName(c)

	var embedded string
	switch {
	case c.Inherits != nil:
		base, err := u.goType(c.Inherits)
		if err != nil {
			return err
		}
		embedded = strings.TrimPrefix(base, "*")
	case c.Kind == ir.ClassErrorDefinition:
		u.use(AbstractionsPath)
		embedded = "abstractions.ApiError"
	}

	var fields []string
	for _, p := range c.Properties {
		if p.ExistsInBaseType || p.Kind == ir.PropertyRequestBuilder {
			continue
		}
		t, err := u.fieldType(p)
		if err != nil {
			return errors.Wrapf(err, "property %s", p.Name)
		}
		decl := u.field(p) + " " + t
		if p.Kind == ir.PropertyQueryParameter {
			decl += " `uriparametername:" + code.Quote(p.WireName()) + "`"
		}
		fields = append(fields, decl)
	}

	u.doc(name, c.Documentation)
	u.w.Block("type "+name+" struct {", "}", func() {
		if embedded != "" {
			u.w.Line("%s", embedded)
		}
		i := 0
		for _, p := range c.Properties {
			if p.ExistsInBaseType || p.Kind == ir.PropertyRequestBuilder {
				continue
			}
			u.doc(u.field(p), p.Documentation)
			u.w.Line("%s", fields[i])
			i++
		}
	})

	for _, p := range c.PropertiesOfKind(ir.PropertyRequestBuilder) {
		if err := u.navigation(p); err != nil {
			return err
		}
	}
	for _, x := range c.DeclaredIndexers() {
		u.em.logger.Debug("skipping indexer", zap.String("class", c.QualifiedName()), zap.String("indexer", x.Name))
	}
	for _, m := range c.Methods {
		if !emit.Emitted(m, false) {
			u.em.logger.Debug("skipping command builder", zap.String("method", m.QualifiedName()))
			continue
		}
		if err := u.emitMethod(e, m, embedded); err != nil {
			return err
		}
	}
	return nil
}

// navigation renders a request builder property as a method returning a
// builder that shares the parent's path parameters.
func (u *unit) navigation(p *ir.Property) error {
	ref := ir.AsRef(p.Type)
	if ref == nil || ref.Class() == nil {
		return errors.Newf("property %s: navigation target is not a class", p.Name)
	}
	t, err := u.goType(ref)
	if err != nil {
		return err
	}
	path := p.Parent.PropertyOfKind(ir.PropertyPathParameters)
	adapter := p.Parent.PropertyOfKind(ir.PropertyRequestAdapter)
	name := u.policy.MemberName(p.Name)
	u.w.Line("")
	u.doc(name, p.Documentation)
	u.w.Block("func (m *"+u.policy.TypeName(p.Parent)+") "+name+"() "+t+" {", "}", func() {
		u.w.Line("return %s(%s, %s)", u.constructor(ref.Class()), u.this(path), u.this(adapter))
	})
	return nil
}

func (u *unit) emitMethod(e *synth.Engine, m *ir.Method, embedded string) error {
	body, err := e.Synthesize(m)
	if err != nil {
		return err
	}
	u.method = m
	u.aliases = body.Aliases

	sig, fail, err := u.signature(m)
	if err != nil {
		return errors.Wrapf(err, "method %s", m.Name)
	}
	u.fail = fail

	u.w.Line("")
	u.doc(u.methodName(m), m.Documentation)
	u.w.Line("%s {", sig)
	u.w.Indent()
	if m.Kind.IsConstructor() {
		self := u.policy.TypeName(m.Parent)
		switch {
		case embedded == "abstractions.ApiError":
			u.w.Line("m := &%s{ApiError: *abstractions.NewApiError()}", self)
		case embedded != "":
			u.w.Line("m := &%s{%s: *%s()}", self, embedded[strings.LastIndexByte(embedded, '.')+1:], prefixed(embedded, "New", ""))
		default:
			u.w.Line("m := &%s{}", self)
		}
	}
	for _, op := range body.Ops {
		if err := u.op(op); err != nil {
			return errors.Wrapf(err, "method %s", m.Name)
		}
	}
	switch m.Kind {
	case ir.MethodConstructor, ir.MethodClientConstructor, ir.MethodRawUrlConstructor:
		u.w.Line("return m")
	case ir.MethodSerializer:
		u.w.Line("return nil")
	case ir.MethodRequestGenerator:
		u.w.Line("return %s, nil", requestInfoVar)
	}
	u.w.Dedent()
	u.w.Line("}")
	return nil
}

func (u *unit) methodName(m *ir.Method) string {
	switch m.Kind {
	case ir.MethodConstructor, ir.MethodClientConstructor, ir.MethodRawUrlConstructor:
		return u.constructorName(m)
	case ir.MethodFactory:
		return u.factory(m.Parent)
	}
	return u.policy.MemberName(m.Name)
}

func (u *unit) constructorName(m *ir.Method) string {
	if m.Kind == ir.MethodConstructor {
		return u.constructor(m.Parent)
	}
	return "New" + u.policy.TypeName(m.Parent)
}

// signature returns the function header of m and the statement returning
// an error from it.
func (u *unit) signature(m *ir.Method) (string, string, error) {
	var params []string
	if m.Kind == ir.MethodRequestGenerator || m.Kind == ir.MethodRequestExecutor {
		u.use("context")
		params = append(params, "ctx context.Context")
	}
	for _, p := range m.Signature() {
		if p.Kind == ir.ParamCancellation {
			continue
		}
		t, err := u.paramType(p)
		if err != nil {
			return "", "", err
		}
		if p.Kind == ir.ParamSetterValue {
			t = ptr(t)
		}
		params = append(params, u.param(p)+" "+t)
	}
	args := "(" + strings.Join(params, ", ") + ")"
	self := u.policy.TypeName(m.Parent)
	recv := "func (m *" + self + ") " + u.policy.MemberName(m.Name)

	switch m.Kind {
	case ir.MethodConstructor, ir.MethodClientConstructor, ir.MethodRawUrlConstructor:
		return "func " + u.constructorName(m) + args + " *" + self, "", nil
	case ir.MethodFactory:
		u.use(SerializationPath)
		return "func " + u.factory(m.Parent) + args + " (serialization.Parsable, error)", "return nil, err", nil
	case ir.MethodSerializer:
		return recv + args + " error", "return err", nil
	case ir.MethodDeserializer:
		u.use(SerializationPath)
		return recv + args + " map[string]func(serialization.ParseNode) error", "return err", nil
	case ir.MethodSetter:
		return recv + args, "panic(err)", nil
	case ir.MethodRequestGenerator:
		u.use(AbstractionsPath)
		return recv + args + " (*abstractions.RequestInformation, error)", "return nil, err", nil
	case ir.MethodRequestExecutor:
		ret, err := u.returnType(m)
		if err != nil {
			return "", "", err
		}
		if ret == "" {
			return recv + args + " error", "return err", nil
		}
		return recv + args + " (" + ret + ", error)", "return nil, err", nil
	}

	ret, err := u.returnType(m)
	if err != nil {
		return "", "", err
	}
	if ret != "" {
		ret = " " + ret
	}
	return recv + args + ret, "panic(err)", nil
}

func (u *unit) returnType(m *ir.Method) (string, error) {
	t, err := u.goType(m.ReturnType)
	if err != nil || t == "" {
		return t, err
	}
	switch m.Kind {
	case ir.MethodGetter, ir.MethodRequestExecutor:
		return ptr(t), nil
	}
	return t, nil
}
