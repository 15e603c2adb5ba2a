package golang

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/iancoleman/strcase"

	"github.com/broady/apigen/convention"
	"github.com/broady/apigen/emit"
	"github.com/broady/apigen/emit/code"
	"github.com/broady/apigen/ir"
	"github.com/broady/apigen/synth"
)

const (
	requestInfoVar = "requestInfo"
	errorMapVar    = "errorMapping"
	pathParamsVar  = "urlTplParams"
)

func (u *unit) writerVar() string {
	if p := u.method.ParameterOfKind(ir.ParamSerializer); p != nil {
		return u.param(p)
	}
	return "writer"
}

// check writes call guarded by an error check.
func (u *unit) check(format string, args ...any) {
	u.w.Block("if err := "+fmt.Sprintf(format, args...)+"; err != nil {", "}", func() {
		u.w.Line("%s", u.fail)
	})
}

func (u *unit) errCheck() {
	u.w.Block("if err != nil {", "}", func() {
		u.w.Line("%s", u.fail)
	})
}

// contentType renders the content type argument, preferring the caller
// supplied parameter.
func (u *unit) contentType(fixed string, param *ir.Parameter) string {
	if param != nil {
		return u.param(param)
	}
	return code.Quote(fixed)
}

var valueNames = map[string]string{
	"uuid.UUID":                 "UUID",
	"time.Time":                 "Time",
	"serialization.DateOnly":    "DateOnly",
	"serialization.TimeOnly":    "TimeOnly",
	"serialization.ISODuration": "ISODuration",
	"[]byte":                    "ByteArray",
}

// valueMethod returns the accessor suffix for a primitive: "Int32Value"
// for int32.
func (u *unit) valueMethod(t ir.Type) string {
	name := "string"
	if ref := ir.AsRef(t); ref != nil {
		name = u.scalar(ref.ElementType().Name)
	}
	if known, ok := valueNames[name]; ok {
		return known + "Value"
	}
	return strcase.ToCamel(name) + "Value"
}

func enumOf(t ir.Type) *ir.Enum {
	if ref := ir.AsRef(t); ref != nil {
		return ref.ElementType().Enum()
	}
	return nil
}

func classOf(t ir.Type) *ir.Class {
	if ref := ir.AsRef(t); ref != nil {
		return ref.ElementType().Class()
	}
	return nil
}

func (u *unit) elemType(t ir.Type) (string, error) {
	ref := ir.AsRef(t)
	if ref == nil {
		return u.goType(t)
	}
	return u.goType(ref.ElementType())
}

func (u *unit) op(op synth.Op) error {
	w := u.w
	switch op := op.(type) {
	case *synth.CallBaseSerializer:
		u.check("m.%s.%s(%s)", u.policy.TypeName(op.Base), u.policy.MemberName(u.method.Name), u.writerVar())
	case *synth.WriteValue:
		return u.writeValue(op)
	case *synth.WriteAdditionalData:
		u.check("%s.WriteAdditionalData(%s)", u.writerVar(), u.this(op.Property))

	case *synth.FieldMap:
		u.use(SerializationPath)
		if op.Base != nil {
			w.Line("res := m.%s.%s()", u.policy.TypeName(op.Base), u.policy.MemberName(u.method.Name))
		} else {
			w.Line("res := make(map[string]func(serialization.ParseNode) error)")
		}
		for _, entry := range op.Entries {
			var err error
			w.Block("res["+code.Quote(entry.Key)+"] = func(n serialization.ParseNode) error {", "}", func() {
				err = u.readValue(entry)
				w.Line("return nil")
			})
			if err != nil {
				return err
			}
		}
		w.Line("return res")

	case *synth.NewRequestInfo:
		u.use(AbstractionsPath)
		tpl, params := `""`, "map[string]string{}"
		if op.URLTemplate != nil {
			tpl = u.this(op.URLTemplate)
		}
		if op.PathParameters != nil {
			params = u.this(op.PathParameters)
		}
		w.Line("%s := abstractions.NewRequestInformationWithMethodAndUrlTemplateAndPathParameters(abstractions.%s, %s, %s)",
			requestInfoVar, emit.HTTPMethodName(op.HTTPMethod), tpl, params)
	case *synth.AddHeader:
		w.Line("%s.Headers.TryAdd(%s, %s)", requestInfoVar, code.Quote(op.Name), code.Quote(op.Value))
	case *synth.SetStreamContent:
		w.Line("%s.SetStreamContentAndContentType(%s, %s)", requestInfoVar, u.param(op.Body), u.contentType(op.ContentType, op.ContentTypeParam))
	case *synth.SetStructuredContent:
		u.check("%s.SetContentFromParsable(ctx, m.%s, %s, %s)", requestInfoVar, u.adapterField(), u.contentType(op.ContentType, op.ContentTypeParam), u.param(op.Body))
	case *synth.SetScalarContent:
		u.check("%s.SetContentFromScalar(ctx, m.%s, %s, %s)", requestInfoVar, u.adapterField(), u.contentType(op.ContentType, op.ContentTypeParam), u.param(op.Body))
	case *synth.ConfigureRequest:
		u.configureRequest(op)

	case *synth.CallGenerator:
		sig := op.Generator.Signature()
		args := []string{"ctx"}
		for i, a := range emit.Arguments(op.Generator, op.Arguments, u.param, "nil", false) {
			if op.Arguments[i] == nil && sig[i].Kind == ir.ParamRequestBodyContentType {
				a = `""`
			}
			args = append(args, a)
		}
		w.Line("%s, err := m.%s(%s)", requestInfoVar, u.policy.MemberName(op.Generator.Name), strings.Join(args, ", "))
		u.errCheck()
	case *synth.ErrorMappingTable:
		u.use(AbstractionsPath)
		w.Block(errorMapVar+" := abstractions.ErrorMappings{", "}", func() {
			for _, entry := range op.Entries {
				w.Line("%s: %s,", code.Quote(entry.Pattern), u.factory(entry.Type.Class()))
			}
		})
	case *synth.Send:
		return u.send(op)

	case *synth.AssignDefault:
		return u.assignDefault(op)
	case *synth.SeedPathParameters:
		w.Line("%s := make(map[string]string)", pathParamsVar)
		if op.Source != nil {
			w.Block("for k, v := range "+u.param(op.Source)+" {", "}", func() {
				w.Line("%s[k] = v", pathParamsVar)
			})
		}
		for _, entry := range op.Entries {
			w.Line("%s[%s] = %s", pathParamsVar, code.Quote(entry.Key), u.param(entry.Parameter))
		}
		w.Line("%s = %s", u.this(op.Property), pathParamsVar)
	case *synth.SeedRawURL:
		w.Line("%s = map[string]string{%s: %s}", u.this(op.Property), code.Quote(op.Key), u.param(op.Parameter))
	case *synth.ForwardParameter:
		w.Line("%s = %s", u.this(op.Property), u.param(op.Parameter))

	case *synth.RegisterSerializer:
		u.use(AbstractionsPath, SerializationPath)
		w.Block("abstractions.RegisterDefaultSerializer(func() serialization.SerializationWriterFactory {", "})", func() {
			w.Line("return %s()", prefixed(op.Module, "New", ""))
		})
	case *synth.RegisterDeserializer:
		u.use(AbstractionsPath, SerializationPath)
		w.Block("abstractions.RegisterDefaultDeserializer(func() serialization.ParseNodeFactory {", "})", func() {
			w.Line("return %s()", prefixed(op.Module, "New", ""))
		})
	case *synth.SetBaseURL:
		adapter := u.this(op.Adapter)
		w.Block("if "+adapter+".GetBaseUrl() == \"\" {", "}", func() {
			w.Line("%s.SetBaseUrl(%s)", adapter, code.Quote(op.URL))
		})
	case *synth.AddBaseURLParameter:
		params := u.this(op.Property)
		w.Block("if "+params+" == nil {", "}", func() {
			w.Line("%s = make(map[string]string)", params)
		})
		w.Line("%s[%s] = %s.GetBaseUrl()", params, code.Quote(synth.BaseURLKey), u.this(op.Adapter))
	case *synth.EnableBackingStore:
		w.Line("%s.EnableBackingStore(%s)", u.this(op.Adapter), u.param(op.Parameter))
	case *synth.ConfigureRetry:
		u.use("time")
		w.Line("%s.ConfigureRetry(%d*time.Second, %d)", u.this(op.Adapter), op.DelaySeconds, op.MaxRetries)
	case *synth.ConfigureRedirect:
		w.Line("%s.ConfigureRedirect(%d)", u.this(op.Adapter), op.MaxRedirects)

	case *synth.ReadDiscriminator:
		u.discriminator = op
	case *synth.DiscriminatorSwitch:
		u.discriminatorSwitch(op)
	case *synth.Construct:
		w.Line("return %s(), nil", u.constructor(op.Type))

	case *synth.ConstructBuilder:
		return u.constructBuilder(op)
	case *synth.ReadProperty:
		return u.readProperty(op)
	case *synth.WriteProperty:
		if op.BackingStore == nil {
			w.Line("%s = %s", u.this(op.Property), u.param(op.Value))
			return nil
		}
		u.check("%s.Set(%s, %s)", u.this(op.BackingStore), code.Quote(op.Key), u.param(op.Value))
	case *synth.MapQueryName:
		input := u.param(op.Input)
		if len(op.Cases) > 0 {
			u.use("strings")
			w.Block("switch strings.ToLower("+input+") {", "}", func() {
				for _, c := range op.Cases {
					w.Line("case %s:", code.Quote(strings.ToLower(c.Name)))
					w.Indent()
					w.Line("return %s", code.Quote(c.SerializationName))
					w.Dedent()
				}
			})
		}
		w.Line("return %s", input)

	default:
		return errors.Newf("golang: unsupported operation %T", op)
	}
	return nil
}

func (u *unit) adapterField() string {
	if p := u.method.Parent.PropertyOfKind(ir.PropertyRequestAdapter); p != nil {
		return u.field(p)
	}
	return "requestAdapter"
}

func (u *unit) writeValue(op *synth.WriteValue) error {
	w := u.w
	writer := u.writerVar()
	field := u.this(op.Property)
	key := code.Quote(op.Key)
	switch op.Variant {
	case synth.ValueEnum:
		w.Block("if "+field+" != nil {", "}", func() {
			w.Line("cast := (*%s).String()", field)
			u.check("%s.WriteStringValue(%s, &cast)", writer, key)
		})
	case synth.ValueCollectionOfEnum:
		en := enumOf(op.Property.Type)
		if en == nil {
			return errors.Newf("property %s: not an enum collection", op.Property.Name)
		}
		serialize := prefixed(u.define(en), "Serialize", "")
		w.Block("if "+field+" != nil {", "}", func() {
			u.check("%s.WriteCollectionOfStringValues(%s, %s(%s))", writer, key, serialize, field)
		})
	case synth.ValueCollectionOfObject:
		u.use(SerializationPath)
		w.Block("if "+field+" != nil {", "}", func() {
			w.Line("cast := make([]serialization.Parsable, len(%s))", field)
			w.Block("for i, v := range "+field+" {", "}", func() {
				w.Block("if v != nil {", "}", func() {
					w.Line("cast[i] = v")
				})
			})
			u.check("%s.WriteCollectionOfObjectValues(%s, cast)", writer, key)
		})
	case synth.ValueCollectionOfPrimitive:
		u.check("%s.WriteCollectionOf%ss(%s, %s)", writer, u.valueMethod(op.Property.Type), key, field)
	case synth.ValueObject:
		u.check("%s.WriteObjectValue(%s, %s)", writer, key, field)
	case synth.ValueComposed:
		return ir.NewUnsupportedConstruct(convention.Go, op.Property.Type)
	default:
		u.check("%s.Write%s(%s, %s)", writer, u.valueMethod(op.Property.Type), key, field)
	}
	return nil
}

// readValue renders the body of one field deserializer, which assigns the
// value read from n.
func (u *unit) readValue(entry synth.FieldEntry) error {
	w := u.w
	field := u.this(entry.Property)
	var read, assign string
	switch entry.Variant {
	case synth.ValueEnum:
		en := enumOf(entry.Property.Type)
		if en == nil {
			return errors.Newf("property %s: not an enum", entry.Property.Name)
		}
		read = "n.GetEnumValue(" + prefixed(u.define(en), "Parse", "") + ")"
		assign = "val.(*" + u.define(en) + ")"
	case synth.ValueObject:
		t, err := u.goType(entry.Property.Type)
		if err != nil {
			return err
		}
		read = "n.GetObjectValue(" + u.factory(classOf(entry.Property.Type)) + ")"
		assign = "val.(" + t + ")"
	case synth.ValueCollectionOfPrimitive, synth.ValueCollectionOfEnum, synth.ValueCollectionOfObject:
		return u.readCollection(entry, field)
	case synth.ValueComposed:
		return ir.NewUnsupportedConstruct(convention.Go, entry.Property.Type)
	default:
		read = "n.Get" + u.valueMethod(entry.Property.Type) + "()"
		assign = "val"
	}
	w.Line("val, err := %s", read)
	u.errCheck()
	w.Block("if val != nil {", "}", func() {
		w.Line("%s = %s", field, assign)
	})
	return nil
}

func (u *unit) readCollection(entry synth.FieldEntry, field string) error {
	w := u.w
	elem, err := u.elemType(entry.Property.Type)
	if err != nil {
		return err
	}
	var read, item string
	switch entry.Variant {
	case synth.ValueCollectionOfPrimitive:
		read = "n.GetCollectionOfPrimitiveValues(" + code.Quote(strings.TrimPrefix(elem, "*")) + ")"
		item = "*(v.(*" + strings.TrimPrefix(elem, "*") + "))"
	case synth.ValueCollectionOfEnum:
		en := enumOf(entry.Property.Type)
		if en == nil {
			return errors.Newf("property %s: not an enum collection", entry.Property.Name)
		}
		read = "n.GetCollectionOfEnumValues(" + prefixed(u.define(en), "Parse", "") + ")"
		item = "*(v.(*" + elem + "))"
	default:
		read = "n.GetCollectionOfObjectValues(" + u.factory(classOf(entry.Property.Type)) + ")"
		item = "v.(" + elem + ")"
	}
	w.Line("val, err := %s", read)
	u.errCheck()
	w.Block("if val != nil {", "}", func() {
		w.Line("items := make([]%s, len(val))", elem)
		w.Block("for i, v := range val {", "}", func() {
			w.Block("if v != nil {", "}", func() {
				w.Line("items[i] = %s", item)
			})
		})
		w.Line("%s = items", field)
	})
	return nil
}

func (u *unit) configureRequest(op *synth.ConfigureRequest) {
	cfg := u.param(op.Config)
	prop := func(k ir.PropertyKind, fallback string) string {
		if op.Class != nil {
			if p := op.Class.PropertyOfKind(k); p != nil {
				return cfg + "." + u.field(p)
			}
		}
		return cfg + "." + fallback
	}
	u.w.Block("if "+cfg+" != nil {", "}", func() {
		if op.QueryParameters {
			q := prop(ir.PropertyQueryParameters, "QueryParameters")
			u.w.Block("if "+q+" != nil {", "}", func() {
				u.w.Line("%s.AddQueryParameters(*(%s))", requestInfoVar, q)
			})
		}
		if op.Headers {
			u.w.Line("%s.Headers.AddAll(%s)", requestInfoVar, prop(ir.PropertyHeaders, "Headers"))
		}
		if op.Options {
			u.w.Line("%s.AddRequestOptions(%s)", requestInfoVar, prop(ir.PropertyOptions, "Options"))
		}
	})
}

func (u *unit) send(op *synth.Send) error {
	w := u.w
	mapping := "nil"
	if op.ErrorMapping {
		mapping = errorMapVar
	}
	adapter := "m." + u.adapterField()
	switch op.Variant {
	case synth.SendNoContent:
		u.check("%s.SendNoContent(ctx, %s, %s)", adapter, requestInfoVar, mapping)
		w.Line("return nil")
		return nil
	case synth.SendObject, synth.SendObjectCollection:
		t, err := u.goType(op.Type)
		if err != nil {
			return err
		}
		w.Line("res, err := %s.%s(ctx, %s, %s, %s)", adapter, emit.SendMethod(op.Variant), requestInfoVar, u.factory(op.Type.Class()), mapping)
		u.errCheck()
		if op.Variant == synth.SendObject {
			w.Block("if res == nil {", "}", func() {
				w.Line("return nil, nil")
			})
			w.Line("return res.(%s), nil", t)
			return nil
		}
		w.Line("val := make([]%s, len(res))", t)
		w.Block("for i, v := range res {", "}", func() {
			w.Block("if v != nil {", "}", func() {
				w.Line("val[i] = v.(%s)", t)
			})
		})
		w.Line("return val, nil")
		return nil
	}

	scalar := u.scalar(op.Type.Name)
	if op.Type.Enum() != nil {
		scalar = "string"
	}
	w.Line("res, err := %s.%s(ctx, %s, %s, %s)", adapter, emit.SendMethod(op.Variant), requestInfoVar, code.Quote(scalar), mapping)
	u.errCheck()
	if op.Variant == synth.SendPrimitiveCollection {
		w.Line("val := make([]%s, len(res))", scalar)
		w.Block("for i, v := range res {", "}", func() {
			w.Block("if v != nil {", "}", func() {
				w.Line("val[i] = *(v.(*%s))", scalar)
			})
		})
		w.Line("return val, nil")
		return nil
	}
	w.Block("if res == nil {", "}", func() {
		w.Line("return nil, nil")
	})
	w.Line("return res.(%s), nil", ptr(scalar))
	return nil
}

func (u *unit) assignDefault(op *synth.AssignDefault) error {
	t, err := u.fieldType(op.Property)
	if err != nil {
		return err
	}
	value := op.Value
	if op.Enum != nil {
		value = prefixed(u.define(op.Enum), "", u.policy.Identifier(op.Value, convention.CasePascal))
	}
	field := u.this(op.Property)
	if !strings.HasPrefix(t, "*") {
		u.w.Line("%s = %s", field, value)
		return nil
	}
	local := u.policy.Identifier(op.Property.Name, convention.CaseCamel)
	if op.Enum != nil {
		u.w.Line("%s := %s", local, value)
	} else {
		u.w.Line("%s := %s(%s)", local, t[1:], value)
	}
	u.w.Line("%s = &%s", field, local)
	return nil
}

func (u *unit) discriminatorSwitch(op *synth.DiscriminatorSwitch) {
	w := u.w
	read := u.discriminator
	u.discriminator = nil
	if read != nil && len(op.Cases) > 0 {
		node := u.param(read.ParseNode)
		w.Block("if "+node+" != nil {", "}", func() {
			w.Line("mappingValueNode, err := %s.GetChildNode(%s)", node, code.Quote(read.PropertyName))
			u.errCheck()
			w.Block("if mappingValueNode != nil {", "}", func() {
				w.Line("mappingValue, err := mappingValueNode.GetStringValue()")
				u.errCheck()
				w.Block("if mappingValue != nil {", "}", func() {
					w.Block("switch *mappingValue {", "}", func() {
						for _, c := range op.Cases {
							w.Line("case %s:", code.Quote(c.Key))
							w.Indent()
							w.Line("return %s(), nil", u.constructor(c.Type))
							w.Dedent()
						}
					})
				})
			})
		})
	}
	w.Line("return %s(), nil", u.constructor(op.Default))
}

func (u *unit) constructBuilder(op *synth.ConstructBuilder) error {
	target := op.Target.Class()
	if target == nil {
		return errors.Newf("builder target %s is not a class", op.Target)
	}
	ctor := u.constructor(target)
	adapter := u.this(op.Adapter)
	if len(op.Extra) == 0 {
		u.w.Line("return %s(%s, %s)", ctor, u.this(op.PathParameters), adapter)
		return nil
	}
	u.w.Line("%s := make(map[string]string)", pathParamsVar)
	u.w.Block("for k, v := range "+u.this(op.PathParameters)+" {", "}", func() {
		u.w.Line("%s[k] = v", pathParamsVar)
	})
	for _, entry := range op.Extra {
		u.w.Line("%s[%s] = %s", pathParamsVar, code.Quote(entry.Key), u.param(entry.Parameter))
	}
	u.w.Line("return %s(%s, %s)", ctor, pathParamsVar, adapter)
	return nil
}

func (u *unit) readProperty(op *synth.ReadProperty) error {
	if op.BackingStore == nil {
		u.w.Line("return %s", u.this(op.Property))
		return nil
	}
	t, err := u.fieldType(op.Property)
	if err != nil {
		return err
	}
	u.w.Line("val, err := %s.Get(%s)", u.this(op.BackingStore), code.Quote(op.Key))
	u.errCheck()
	u.w.Block("if val != nil {", "}", func() {
		u.w.Line("return val.(%s)", t)
	})
	if nilable(t) {
		u.w.Line("return nil")
		return nil
	}
	u.w.Line("var zero %s", t)
	u.w.Line("return zero")
	return nil
}
