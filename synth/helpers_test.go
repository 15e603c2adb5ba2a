package synth

import (
	"testing"

	"github.com/broady/apigen/convention"
	"github.com/broady/apigen/ir"
)

func newTestEngine(t *testing.T, policy *convention.Policy, opts Options) *Engine {
	t.Helper()
	if policy == nil {
		policy = convention.NewCSharp()
	}
	e, err := NewEngine(&Context{Policy: policy, Options: opts}, DefaultHandlers(), nil)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func mustSynthesize(t *testing.T, e *Engine, m *ir.Method) *Body {
	t.Helper()
	b, err := e.Synthesize(m)
	if err != nil {
		t.Fatalf("Synthesize(%s) error = %v", m.QualifiedName(), err)
	}
	return b
}

// modelFixture returns a models namespace with an enum and a nested class.
type modelFixture struct {
	root    *ir.Namespace
	models  *ir.Namespace
	color   *ir.Enum
	address *ir.Class
}

func newModelFixture() *modelFixture {
	root := ir.NewNamespace("ApiSdk")
	models := root.AddNamespace("models")
	f := &modelFixture{root: root, models: models}
	f.color = models.AddEnum(&ir.Enum{Name: "Color", Options: []ir.EnumOption{{Name: "Red", SerializationName: "red"}, {Name: "Blue", SerializationName: "blue"}}})
	f.address = models.AddClass(&ir.Class{Name: "Address", Kind: ir.ClassModel})
	return f
}

func (f *modelFixture) model(name string) *ir.Class {
	return f.models.AddClass(&ir.Class{Name: name, Kind: ir.ClassModel})
}

func addSerializers(c *ir.Class) (ser, de *ir.Method) {
	ser = c.AddMethod(&ir.Method{Name: "Serialize", Kind: ir.MethodSerializer, ReturnType: ir.Primitive(ir.Void)})
	de = c.AddMethod(&ir.Method{Name: "GetFieldDeserializers", Kind: ir.MethodDeserializer, ReturnType: ir.Primitive("map")})
	return ser, de
}

// builderFixture is a request builder with url template, path parameters
// and request adapter properties.
type builderFixture struct {
	root     *ir.Namespace
	builder  *ir.Class
	urlTpl   *ir.Property
	pathProp *ir.Property
	adapter  *ir.Property
}

func newBuilderFixture() *builderFixture {
	root := ir.NewNamespace("ApiSdk")
	users := root.AddNamespace("users")
	b := users.AddClass(&ir.Class{Name: "UsersRequestBuilder", Kind: ir.ClassRequestBuilder})
	return &builderFixture{
		root:     root,
		builder:  b,
		urlTpl:   b.AddProperty(&ir.Property{Name: "UrlTemplate", Kind: ir.PropertyUrlTemplate, Type: ir.Primitive(ir.String), DefaultValue: "{+baseurl}/users{?%24top}"}),
		pathProp: b.AddProperty(&ir.Property{Name: "PathParameters", Kind: ir.PropertyPathParameters, Type: ir.Primitive("map")}),
		adapter:  b.AddProperty(&ir.Property{Name: "RequestAdapter", Kind: ir.PropertyRequestAdapter, Type: ir.Primitive("RequestAdapter")}),
	}
}

func (f *builderFixture) generator(h ir.HTTPMethod, params ...*ir.Parameter) *ir.Method {
	return f.builder.AddMethod(&ir.Method{
		Name:       "To" + string(h) + "RequestInformation",
		Kind:       ir.MethodRequestGenerator,
		HTTPMethod: h,
		ReturnType: ir.Primitive("RequestInformation"),
		Parameters: params,
	})
}

func (f *builderFixture) executor(h ir.HTTPMethod, ret ir.Type, params ...*ir.Parameter) *ir.Method {
	return f.builder.AddMethod(&ir.Method{
		Name:       string(h),
		Kind:       ir.MethodRequestExecutor,
		HTTPMethod: h,
		ReturnType: ret,
		Parameters: params,
	})
}
