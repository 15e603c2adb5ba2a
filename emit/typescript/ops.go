package typescript

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/broady/apigen/emit"
	"github.com/broady/apigen/emit/code"
	"github.com/broady/apigen/ir"
	"github.com/broady/apigen/synth"
)

const (
	requestInfoVar = "requestInfo"
	errorMapVar    = "errorMapping"
	pathParamsVar  = "urlTplParams"
	mappingVar     = "mappingValue"
	configVar      = "config"
)

func (u *unit) this(p *ir.Property) string {
	if p == nil {
		return "undefined"
	}
	return u.recv + "." + u.member(p)
}

func (u *unit) writerVar() string {
	if p := u.method.ParameterOfKind(ir.ParamSerializer); p != nil {
		return u.param(p)
	}
	return "writer"
}

func (u *unit) factory(c *ir.Class) string {
	if c == nil {
		return "undefined"
	}
	return u.define(c) + "." + u.policy.MemberName(emit.FactoryMethod)
}

// contentType renders the content type argument, preferring the caller
// supplied parameter.
func (u *unit) contentType(fixed string, param *ir.Parameter) string {
	switch {
	case param != nil && fixed != "":
		return u.param(param) + " ?? " + code.Quote(fixed)
	case param != nil:
		return u.param(param)
	default:
		return code.Quote(fixed)
	}
}

func (u *unit) op(op synth.Op) error {
	w := u.w
	switch op := op.(type) {
	case *synth.CallBaseSerializer:
		w.Line("super.%s(%s);", u.policy.MemberName(u.method.Name), u.writerVar())

	case *synth.WriteValue:
		w.Line("%s.write%s(%s, %s);", u.writerVar(), emit.ValueMethod(op.Variant, op.Property.Type), code.Quote(op.Key), u.this(op.Property))

	case *synth.WriteAdditionalData:
		w.Line("%s.writeAdditionalData(%s);", u.writerVar(), u.this(op.Property))

	case *synth.FieldMap:
		u.use("ParseNode")
		w.Line("return {")
		w.Indent()
		if op.Base != nil {
			w.Line("...super.%s(),", u.policy.MemberName(u.method.Name))
		}
		for _, e := range op.Entries {
			read, err := u.read(e)
			if err != nil {
				return err
			}
			w.Line("%s: n => { %s = %s; },", code.Quote(e.Key), u.this(e.Property), read)
		}
		w.Dedent()
		w.Line("};")

	case *synth.NewRequestInfo:
		u.use("RequestInformation", "HttpMethod")
		tpl, params := `""`, "{}"
		if op.URLTemplate != nil {
			tpl = u.this(op.URLTemplate)
		}
		if op.PathParameters != nil {
			params = u.this(op.PathParameters)
		}
		w.Line("const %s = new RequestInformation(HttpMethod.%s, %s, %s);", requestInfoVar, emit.HTTPMethodName(op.HTTPMethod), tpl, params)

	case *synth.AddHeader:
		w.Line("%s.headers.tryAdd(%s, %s);", requestInfoVar, code.Quote(op.Name), code.Quote(op.Value))

	case *synth.SetStreamContent:
		w.Line("%s.setStreamContent(%s, %s);", requestInfoVar, u.param(op.Body), u.contentType(op.ContentType, op.ContentTypeParam))

	case *synth.SetStructuredContent:
		cls := op.Type.Class()
		w.Line("%s.setContentFromParsable(this.requestAdapter, %s, %s, %s);", requestInfoVar, u.contentType(op.ContentType, op.ContentTypeParam), u.param(op.Body), u.factory(cls))

	case *synth.SetScalarContent:
		w.Line("%s.setContentFromScalar(this.requestAdapter, %s, %s);", requestInfoVar, u.contentType(op.ContentType, op.ContentTypeParam), u.param(op.Body))

	case *synth.ConfigureRequest:
		cfg := u.param(op.Config)
		w.Block("if ("+cfg+") {", "}", func() {
			src := cfg
			if op.Class != nil {
				w.Line("const %s = new %s();", configVar, u.define(op.Class))
				w.Line("%s(%s);", cfg, configVar)
				src = configVar
			}
			if op.Headers {
				w.Line("%s.addRequestHeaders(%s.headers);", requestInfoVar, src)
			}
			if op.QueryParameters {
				w.Line("%s.setQueryStringParametersFromRawObject(%s.queryParameters);", requestInfoVar, src)
			}
			if op.Options {
				w.Line("%s.addRequestOptions(%s.options);", requestInfoVar, src)
			}
		})

	case *synth.CallGenerator:
		args := emit.Arguments(op.Generator, op.Arguments, u.param, "undefined", true)
		w.Line("const %s = this.%s(%s);", requestInfoVar, u.policy.MemberName(op.Generator.Name), strings.Join(args, ", "))

	case *synth.ErrorMappingTable:
		u.use("ErrorMappings")
		w.Line("const %s = {", errorMapVar)
		w.Indent()
		for _, e := range op.Entries {
			w.Line("%s: %s,", code.Quote(e.Pattern), u.factory(e.Type.Class()))
		}
		w.Dedent()
		w.Line("} as ErrorMappings;")

	case *synth.Send:
		return u.send(op)

	case *synth.AssignDefault:
		value := op.Value
		if op.Enum != nil {
			value = u.define(op.Enum) + "." + u.policy.Identifier(op.Value, u.policy.TypeCase)
		}
		w.Line("%s = %s;", u.this(op.Property), value)

	case *synth.SeedPathParameters:
		src := "{}"
		if op.Source != nil {
			src = "{..." + u.param(op.Source) + "}"
		}
		w.Line("const %s: Record<string, unknown> = %s;", pathParamsVar, src)
		for _, e := range op.Entries {
			w.Line("%s[%s] = %s;", pathParamsVar, code.Quote(e.Key), u.param(e.Parameter))
		}
		w.Line("%s = %s;", u.this(op.Property), pathParamsVar)

	case *synth.SeedRawURL:
		w.Line("%s = { %s: %s };", u.this(op.Property), code.Quote(op.Key), u.param(op.Parameter))

	case *synth.ForwardParameter:
		w.Line("%s = %s;", u.this(op.Property), u.param(op.Parameter))

	case *synth.RegisterSerializer:
		u.use("registerDefaultSerializer")
		w.Line("registerDefaultSerializer(%s);", op.Module)

	case *synth.RegisterDeserializer:
		u.use("registerDefaultDeserializer")
		w.Line("registerDefaultDeserializer(%s);", op.Module)

	case *synth.SetBaseURL:
		adapter := u.this(op.Adapter)
		w.Block("if (!"+adapter+".baseUrl) {", "}", func() {
			w.Line("%s.baseUrl = %s;", adapter, code.Quote(op.URL))
		})

	case *synth.AddBaseURLParameter:
		w.Line("%s ??= {};", u.this(op.Property))
		w.Line("%s[%s] = %s.baseUrl;", u.this(op.Property), code.Quote(synth.BaseURLKey), u.this(op.Adapter))

	case *synth.EnableBackingStore:
		w.Line("%s.enableBackingStore(%s);", u.this(op.Adapter), u.param(op.Parameter))

	case *synth.ConfigureRetry:
		w.Line("%s.configureRetry({ delay: %d, maxRetries: %d });", u.this(op.Adapter), op.DelaySeconds, op.MaxRetries)

	case *synth.ConfigureRedirect:
		w.Line("%s.configureRedirect({ maxRedirects: %d });", u.this(op.Adapter), op.MaxRedirects)

	case *synth.ReadDiscriminator:
		w.Line("const %s = %s?.getChildNode(%s)?.getStringValue();", mappingVar, u.param(op.ParseNode), code.Quote(op.PropertyName))

	case *synth.DiscriminatorSwitch:
		w.Block("switch ("+mappingVar+") {", "}", func() {
			for _, c := range op.Cases {
				w.Line("case %s:", code.Quote(c.Key))
				w.Indent()
				w.Line("return new %s();", u.define(c.Type))
				w.Dedent()
			}
		})
		w.Line("return new %s();", u.define(op.Default))

	case *synth.Construct:
		w.Line("return new %s();", u.define(op.Type))

	case *synth.ConstructBuilder:
		target := u.define(op.Target.Definition)
		if len(op.Extra) == 0 {
			w.Line("return new %s(%s, %s);", target, u.this(op.PathParameters), u.this(op.Adapter))
			return nil
		}
		w.Line("const %s: Record<string, unknown> = {...%s};", pathParamsVar, u.this(op.PathParameters))
		for _, e := range op.Extra {
			w.Line("%s[%s] = %s;", pathParamsVar, code.Quote(e.Key), u.param(e.Parameter))
		}
		w.Line("return new %s(%s, %s);", target, pathParamsVar, u.this(op.Adapter))

	case *synth.ReadProperty:
		if op.BackingStore != nil {
			w.Line("return %s.get(%s);", u.this(op.BackingStore), code.Quote(op.Key))
		} else {
			w.Line("return %s;", u.this(op.Property))
		}

	case *synth.WriteProperty:
		if op.BackingStore != nil {
			w.Line("%s.set(%s, %s);", u.this(op.BackingStore), code.Quote(op.Key), u.param(op.Value))
		} else {
			w.Line("%s = %s;", u.this(op.Property), u.param(op.Value))
		}

	case *synth.MapQueryName:
		in := u.param(op.Input)
		if len(op.Cases) > 0 {
			w.Block("switch ("+in+".toLowerCase()) {", "}", func() {
				for _, c := range op.Cases {
					w.Line("case %s: return %s;", code.Quote(strings.ToLower(c.Name)), code.Quote(c.SerializationName))
				}
			})
		}
		w.Line("return %s;", in)

	default:
		return errors.Newf("typescript: unsupported operation %T", op)
	}
	return nil
}

func (u *unit) read(e synth.FieldEntry) (string, error) {
	get := "n.get" + emit.ValueMethod(e.Variant, e.Property.Type)
	ref := ir.AsRef(e.Property.Type)
	switch e.Variant {
	case synth.ValueObject, synth.ValueCollectionOfObject:
		return get + "(" + u.factory(ref.Class()) + ")", nil
	case synth.ValueEnum, synth.ValueCollectionOfEnum:
		return get + "(" + u.define(ref.Enum()) + ")", nil
	case synth.ValueCollectionOfPrimitive:
		elem, err := u.typeName(ref.ElementType())
		if err != nil {
			return "", err
		}
		return get + "<" + elem + ">()", nil
	case synth.ValueComposed:
		t, err := u.typeName(e.Property.Type)
		if err != nil {
			return "", err
		}
		return get + "() as " + t, nil
	}
	return get + "()", nil
}

func (u *unit) send(op *synth.Send) error {
	var args []string
	args = append(args, requestInfoVar)
	if op.Type != nil {
		switch {
		case op.Type.Class() != nil:
			args = append(args, u.factory(op.Type.Class()))
		default:
			t, err := u.typeName(op.Type)
			if err != nil {
				return err
			}
			args = append(args, code.Quote(t))
		}
	}
	if op.ErrorMapping {
		args = append(args, errorMapVar)
	} else {
		args = append(args, "undefined")
	}
	call := "this.requestAdapter." + u.policy.MemberName(emit.SendMethod(op.Variant)) + "(" + strings.Join(args, ", ") + ")"
	if op.Variant == synth.SendNoContent {
		u.w.Line("await %s;", call)
		return nil
	}
	u.w.Line("return await %s;", call)
	return nil
}
