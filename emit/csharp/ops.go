package csharp

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
	configVar      = "requestConfig"
	commandVar     = "command"
)

func (u *unit) writerVar() string {
	if p := u.method.ParameterOfKind(ir.ParamSerializer); p != nil {
		return u.param(p)
	}
	return "writer"
}

func (u *unit) factory(c *ir.Class) string {
	if c == nil {
		return "null"
	}
	return u.define(c) + "." + u.policy.MemberName(emit.FactoryMethod)
}

func (u *unit) adapter() string {
	return u.prop(u.method.Parent.PropertyOfKind(ir.PropertyRequestAdapter))
}

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

// generic returns the type argument for value methods that take one.
func (u *unit) generic(v synth.ValueVariant, t ir.Type) (string, error) {
	ref := ir.AsRef(t)
	switch v {
	case synth.ValueEnum, synth.ValueObject:
		return "<" + u.define(ref.Definition) + ">", nil
	case synth.ValueCollectionOfEnum, synth.ValueCollectionOfObject, synth.ValueCollectionOfPrimitive:
		name, err := u.typeName(ref.ElementType())
		if err != nil {
			return "", err
		}
		return "<" + name + ">", nil
	}
	return "", nil
}

func (u *unit) op(op synth.Op) error {
	w := u.w
	switch op := op.(type) {
	case *synth.CallBaseSerializer:
		w.Line("base.%s(%s);", u.policy.MemberName(u.method.Name), u.writerVar())

	case *synth.WriteValue:
		g, err := u.generic(op.Variant, op.Property.Type)
		if err != nil {
			return err
		}
		w.Line("%s.Write%s%s(%s, %s);", u.writerVar(), emit.ValueMethod(op.Variant, op.Property.Type), g, code.Quote(op.Key), u.prop(op.Property))

	case *synth.WriteAdditionalData:
		w.Line("%s.WriteAdditionalData(%s);", u.writerVar(), u.prop(op.Property))

	case *synth.FieldMap:
		open := "return new Dictionary<string, Action<IParseNode>> {"
		if op.Base != nil {
			open = "return new Dictionary<string, Action<IParseNode>>(base." + u.policy.MemberName(u.method.Name) + "()) {"
		}
		var err error
		w.Block(open, "};", func() {
			for _, e := range op.Entries {
				var read string
				if read, err = u.read(e); err != nil {
					return
				}
				w.Line("{ %s, n => { %s = %s; } },", code.Quote(e.Key), u.prop(e.Property), read)
			}
		})
		return err

	case *synth.NewRequestInfo:
		tpl, params := `""`, "new Dictionary<string, object>()"
		if op.URLTemplate != nil {
			tpl = u.prop(op.URLTemplate)
		}
		if op.PathParameters != nil {
			params = u.prop(op.PathParameters)
		}
		w.Line("var %s = new RequestInformation(Method.%s, %s, %s);", requestInfoVar, emit.HTTPMethodName(op.HTTPMethod), tpl, params)

	case *synth.AddHeader:
		w.Line("%s.Headers.TryAdd(%s, %s);", requestInfoVar, code.Quote(op.Name), code.Quote(op.Value))

	case *synth.SetStreamContent:
		w.Line("%s.SetStreamContent(%s, %s);", requestInfoVar, u.param(op.Body), u.contentType(op.ContentType, op.ContentTypeParam))

	case *synth.SetStructuredContent:
		w.Line("%s.SetContentFromParsable(%s, %s, %s);", requestInfoVar, u.adapter(), u.contentType(op.ContentType, op.ContentTypeParam), u.param(op.Body))

	case *synth.SetScalarContent:
		w.Line("%s.SetContentFromScalar(%s, %s, %s);", requestInfoVar, u.adapter(), u.contentType(op.ContentType, op.ContentTypeParam), u.param(op.Body))

	case *synth.ConfigureRequest:
		cfg := u.param(op.Config)
		w.Block("if ("+cfg+" != null) {", "}", func() {
			if op.Class != nil {
				w.Line("var %s = new %s();", configVar, u.define(op.Class))
				w.Line("%s.Invoke(%s);", cfg, configVar)
				cfg = configVar
			}
			if op.Headers {
				w.Line("%s.AddHeaders(%s.Headers);", requestInfoVar, cfg)
			}
			if op.QueryParameters {
				w.Line("%s.AddQueryParameters(%s.QueryParameters);", requestInfoVar, cfg)
			}
			if op.Options {
				w.Line("%s.AddRequestOptions(%s.Options);", requestInfoVar, cfg)
			}
		})

	case *synth.CallGenerator:
		args := emit.Arguments(op.Generator, op.Arguments, u.param, "default", true)
		w.Line("var %s = %s(%s);", requestInfoVar, u.policy.MemberName(op.Generator.Name), strings.Join(args, ", "))

	case *synth.ErrorMappingTable:
		w.Block("var "+errorMapVar+" = new Dictionary<string, ParsableFactory<IParsable>> {", "};", func() {
			for _, e := range op.Entries {
				w.Line("{ %s, %s },", code.Quote(e.Pattern), u.factory(e.Type.Class()))
			}
		})

	case *synth.Send:
		if u.handler {
			return u.sendCommand(op)
		}
		return u.send(op)

	case *synth.AssignDefault:
		value := op.Value
		if op.Enum != nil {
			value = u.define(op.Enum) + "." + u.policy.Identifier(op.Value, u.policy.TypeCase)
		}
		w.Line("%s = %s;", u.prop(op.Property), value)

	case *synth.SeedPathParameters:
		src := ""
		if op.Source != nil {
			src = u.param(op.Source)
		}
		w.Line("var %s = new Dictionary<string, object>(%s);", pathParamsVar, src)
		for _, e := range op.Entries {
			w.Line("%s.Add(%s, %s);", pathParamsVar, code.Quote(e.Key), u.param(e.Parameter))
		}
		w.Line("%s = %s;", u.prop(op.Property), pathParamsVar)

	case *synth.SeedRawURL:
		w.Line("%s = new Dictionary<string, object> { { %s, %s } };", u.prop(op.Property), code.Quote(op.Key), u.param(op.Parameter))

	case *synth.ForwardParameter:
		name := u.param(op.Parameter)
		w.Line("%s = %s ?? throw new ArgumentNullException(nameof(%s));", u.prop(op.Property), name, name)

	case *synth.RegisterSerializer:
		w.Line("ApiClientBuilder.RegisterDefaultSerializer<%s>();", op.Module)

	case *synth.RegisterDeserializer:
		w.Line("ApiClientBuilder.RegisterDefaultDeserializer<%s>();", op.Module)

	case *synth.SetBaseURL:
		adapter := u.prop(op.Adapter)
		w.Block("if (string.IsNullOrEmpty("+adapter+".BaseUrl)) {", "}", func() {
			w.Line("%s.BaseUrl = %s;", adapter, code.Quote(op.URL))
		})

	case *synth.AddBaseURLParameter:
		w.Line("%s ??= new Dictionary<string, object>();", u.prop(op.Property))
		w.Line("%s.TryAdd(%s, %s.BaseUrl);", u.prop(op.Property), code.Quote(synth.BaseURLKey), u.prop(op.Adapter))

	case *synth.EnableBackingStore:
		w.Line("%s.EnableBackingStore(%s);", u.prop(op.Adapter), u.param(op.Parameter))

	case *synth.ConfigureRetry:
		w.Line("%s.ConfigureRetry(TimeSpan.FromSeconds(%d), %d);", u.prop(op.Adapter), op.DelaySeconds, op.MaxRetries)

	case *synth.ConfigureRedirect:
		w.Line("%s.ConfigureRedirect(%d);", u.prop(op.Adapter), op.MaxRedirects)

	case *synth.ReadDiscriminator:
		w.Line("var %s = %s.GetChildNode(%s)?.GetStringValue();", mappingVar, u.param(op.ParseNode), code.Quote(op.PropertyName))

	case *synth.DiscriminatorSwitch:
		w.Block("return "+mappingVar+" switch {", "};", func() {
			for _, c := range op.Cases {
				w.Line("%s => new %s(),", code.Quote(c.Key), u.define(c.Type))
			}
			w.Line("_ => new %s(),", u.define(op.Default))
		})

	case *synth.Construct:
		w.Line("return new %s();", u.define(op.Type))

	case *synth.ConstructBuilder:
		target := u.define(op.Target.Definition)
		if len(op.Extra) == 0 {
			w.Line("return new %s(%s, %s);", target, u.prop(op.PathParameters), u.prop(op.Adapter))
			return nil
		}
		w.Line("var %s = new Dictionary<string, object>(%s);", pathParamsVar, u.prop(op.PathParameters))
		for _, e := range op.Extra {
			w.Line("%s.Add(%s, %s);", pathParamsVar, code.Quote(e.Key), u.param(e.Parameter))
		}
		w.Line("return new %s(%s, %s);", target, pathParamsVar, u.prop(op.Adapter))

	case *synth.ReadProperty:
		if op.BackingStore == nil {
			w.Line("return %s;", u.prop(op.Property))
			return nil
		}
		t, err := u.typeName(op.Property.Type)
		if err != nil {
			return err
		}
		w.Line("return %s?.Get<%s>(%s);", u.prop(op.BackingStore), t, code.Quote(op.Key))

	case *synth.WriteProperty:
		if op.BackingStore != nil {
			w.Line("%s?.Set(%s, %s);", u.prop(op.BackingStore), code.Quote(op.Key), u.param(op.Value))
		} else {
			w.Line("%s = %s;", u.prop(op.Property), u.param(op.Value))
		}

	case *synth.MapQueryName:
		in := u.param(op.Input)
		w.Block("return "+in+" switch {", "};", func() {
			for _, c := range op.Cases {
				w.Line("%s => %s,", code.Quote(u.policy.MemberName(c.Name)), code.Quote(c.SerializationName))
			}
			w.Line("_ => %s,", in)
		})

	default:
		if u.em.Commands {
			return u.commandOp(op)
		}
		return errors.Newf("csharp: unsupported operation %T", op)
	}
	return nil
}

func (u *unit) read(e synth.FieldEntry) (string, error) {
	g, err := u.generic(e.Variant, e.Property.Type)
	if err != nil {
		return "", err
	}
	get := "n.Get" + emit.ValueMethod(e.Variant, e.Property.Type) + g
	ref := ir.AsRef(e.Property.Type)
	switch e.Variant {
	case synth.ValueObject:
		return get + "(" + u.factory(ref.Class()) + ")", nil
	case synth.ValueCollectionOfObject:
		return get + "(" + u.factory(ref.Class()) + ")?.ToList()", nil
	case synth.ValueCollectionOfEnum, synth.ValueCollectionOfPrimitive:
		return get + "()?.ToList()", nil
	}
	return get + "()", nil
}

func (u *unit) send(op *synth.Send) error {
	mapping := "default"
	if op.ErrorMapping {
		mapping = errorMapVar
	}
	cancel := "default"
	if op.Cancellation != nil {
		cancel = u.param(op.Cancellation)
	}
	call := u.adapter() + "." + emit.SendMethod(op.Variant) + "Async"
	switch op.Variant {
	case synth.SendNoContent:
		u.w.Line("await %s(%s, %s, %s).ConfigureAwait(false);", call, requestInfoVar, mapping, cancel)
		return nil
	case synth.SendObject, synth.SendObjectCollection:
		cls := op.Type.Class()
		args := strings.Join([]string{requestInfoVar, u.factory(cls), mapping, cancel}, ", ")
		if op.Variant == synth.SendObject {
			u.w.Line("return await %s<%s>(%s).ConfigureAwait(false);", call, u.define(cls), args)
			return nil
		}
		u.w.Line("var collectionResult = await %s<%s>(%s).ConfigureAwait(false);", call, u.define(cls), args)
		u.w.Line("return collectionResult?.ToList();")
		return nil
	}
	t, err := u.typeName(op.Type)
	if err != nil {
		return err
	}
	args := strings.Join([]string{requestInfoVar, mapping, cancel}, ", ")
	if op.Variant == synth.SendPrimitiveCollection {
		u.w.Line("var collectionResult = await %s<%s>(%s).ConfigureAwait(false);", call, t, args)
		u.w.Line("return collectionResult?.ToList();")
		return nil
	}
	u.w.Line("return await %s<%s>(%s).ConfigureAwait(false);", call, t, args)
	return nil
}
