package synth

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/broady/apigen/ir"
)

func TestConstructor_DefaultOrder(t *testing.T) {
	f := newModelFixture()
	c := f.model("Settings")
	c.AddProperty(&ir.Property{Name: "Theme", Kind: ir.PropertyCustom, Type: ir.Ref(f.color), DefaultValue: "blue"})
	c.AddProperty(&ir.Property{Name: "AdditionalData", Kind: ir.PropertyAdditionalData, Type: ir.Primitive("map"), DefaultValue: "new Dictionary<string, object>()"})
	c.AddProperty(&ir.Property{Name: "Alpha", Kind: ir.PropertyCustom, Type: ir.Primitive(ir.String), DefaultValue: "\"a\""})
	c.AddProperty(&ir.Property{Name: "BackingStore", Kind: ir.PropertyBackingStore, Type: ir.Primitive("IBackingStore"), DefaultValue: "BackingStoreFactorySingleton.Instance.CreateBackingStore()"})
	c.AddProperty(&ir.Property{Name: "Plain", Kind: ir.PropertyCustom, Type: ir.Primitive(ir.String)})
	m := c.AddMethod(&ir.Method{Name: "Settings", Kind: ir.MethodConstructor})

	b := mustSynthesize(t, newTestEngine(t, nil, Options{}), m)

	var got []string
	for _, op := range OpsOf[*AssignDefault](b) {
		got = append(got, op.Property.Name+"="+op.Value)
	}
	want := []string{
		"BackingStore=BackingStoreFactorySingleton.Instance.CreateBackingStore()",
		"AdditionalData=new Dictionary<string, object>()",
		"Alpha=\"a\"",
		"Theme=Blue",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	if theme := OpsOf[*AssignDefault](b)[3]; theme.Enum != f.color {
		t.Errorf("Theme default should resolve against enum Color, got %v", theme.Enum)
	}
}

func TestConstructor_PathParameters(t *testing.T) {
	f := newBuilderFixture()
	m := f.builder.AddMethod(&ir.Method{
		Name: "UsersRequestBuilder",
		Kind: ir.MethodConstructor,
		Parameters: []*ir.Parameter{
			{Name: "pathParameters", Kind: ir.ParamPathParameters, Type: ir.Primitive("map")},
			{Name: "requestAdapter", Kind: ir.ParamRequestAdapter, Type: ir.Primitive("RequestAdapter")},
			{Name: "userId", SerializationName: "user%2Did", Kind: ir.ParamPath, Type: ir.Primitive(ir.String)},
			{Name: "position", Kind: ir.ParamPath, Type: ir.Primitive(ir.Integer)},
		},
	})

	b := mustSynthesize(t, newTestEngine(t, nil, Options{}), m)

	seed := OpsOf[*SeedPathParameters](b)
	if len(seed) != 1 {
		t.Fatalf("SeedPathParameters ops = %d, want 1", len(seed))
	}
	if seed[0].Property != f.pathProp || seed[0].Source != m.Parameters[0] {
		t.Errorf("SeedPathParameters = %+v", seed[0])
	}
	var keys []string
	for _, e := range seed[0].Entries {
		keys = append(keys, e.Key)
	}
	if diff := cmp.Diff([]string{"user%2Did", "position"}, keys); diff != "" {
		t.Errorf("path keys mismatch (-want +got):\n%s", diff)
	}

	fwd := OpsOf[*ForwardParameter](b)
	if len(fwd) != 1 || fwd[0].Property != f.adapter || fwd[0].Parameter != m.Parameters[1] {
		t.Errorf("ForwardParameter = %+v", fwd)
	}
	if got := OpsOf[*AssignDefault](b); len(got) != 1 || got[0].Property != f.urlTpl {
		t.Errorf("url template default should be assigned, got %+v", got)
	}
}

func TestConstructor_RawURL(t *testing.T) {
	f := newBuilderFixture()
	raw := &ir.Parameter{Name: "rawUrl", Kind: ir.ParamRawUrl, Type: ir.Primitive(ir.String)}
	m := f.builder.AddMethod(&ir.Method{Name: "UsersRequestBuilder", Kind: ir.MethodRawUrlConstructor, Parameters: []*ir.Parameter{raw}})

	b := mustSynthesize(t, newTestEngine(t, nil, Options{}), m)
	seed := OpsOf[*SeedRawURL](b)
	if len(seed) != 1 || seed[0].Property != f.pathProp || seed[0].Parameter != raw || seed[0].Key != "request-raw-url" {
		t.Errorf("SeedRawURL = %+v", seed)
	}
	if len(OpsOf[*SeedPathParameters](b)) != 0 {
		t.Error("raw url constructor should not seed path parameters")
	}
}

func TestClientConstructor(t *testing.T) {
	f := newBuilderFixture()
	store := &ir.Parameter{Name: "backingStore", Kind: ir.ParamBackingStore, Type: ir.Primitive("IBackingStoreFactory"), Optional: true}
	m := f.builder.AddMethod(&ir.Method{
		Name:              "ApiClient",
		Kind:              ir.MethodClientConstructor,
		BaseURL:           "https://graph.microsoft.com/v1.0",
		SerializerModules: []string{"JsonSerializationWriterFactory"},
		Parameters: []*ir.Parameter{
			{Name: "requestAdapter", Kind: ir.ParamRequestAdapter, Type: ir.Primitive("RequestAdapter")},
			store,
		},
	})
	opts := Options{
		Deserializers: []string{"JsonParseNodeFactory", "TextParseNodeFactory"},
		Retry:         RetryDefaults{DelaySeconds: 3, MaxRetries: 2},
	}

	b := mustSynthesize(t, newTestEngine(t, nil, opts), m)

	var got []string
	for _, op := range b.Ops {
		switch op := op.(type) {
		case *RegisterSerializer:
			got = append(got, "ser:"+op.Module)
		case *RegisterDeserializer:
			got = append(got, "de:"+op.Module)
		case *SetBaseURL:
			got = append(got, "base:"+op.URL)
		case *AddBaseURLParameter:
			got = append(got, "param:"+BaseURLKey)
		case *EnableBackingStore:
			got = append(got, "store:"+op.Parameter.Name)
		case *ConfigureRetry:
			got = append(got, fmt.Sprintf("retry:%d/%d", op.DelaySeconds, op.MaxRetries))
		case *ConfigureRedirect:
			got = append(got, "redirect")
		}
	}
	want := []string{
		"ser:JsonSerializationWriterFactory",
		"de:JsonParseNodeFactory",
		"de:TextParseNodeFactory",
		"base:https://graph.microsoft.com/v1.0",
		"param:baseurl",
		"store:backingStore",
		"retry:3/2",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("client setup mismatch (-want +got):\n%s", diff)
	}
}

func factoryFixture(t *testing.T, mapping bool) (*Body, *ir.Class, *ir.Class) {
	t.Helper()
	f := newModelFixture()
	parent := f.model("ParentModel")
	child := f.model("ChildModel")
	child.Inherits = ir.Ref(parent)
	if mapping {
		parent.Discriminator = ir.Discriminator{
			PropertyName: "@odata.type",
			Mappings:     []ir.DiscriminatorMapping{{Key: "ns.childmodel", Type: ir.Ref(child)}},
		}
	}
	m := parent.AddMethod(&ir.Method{
		Name:       "CreateFromDiscriminatorValue",
		Kind:       ir.MethodFactory,
		ReturnType: ir.Ref(parent),
		Parameters: []*ir.Parameter{{Name: "parseNode", Kind: ir.ParamParseNode, Type: ir.Primitive("ParseNode")}},
	})
	return mustSynthesize(t, newTestEngine(t, nil, Options{}), m), parent, child
}

func TestFactory_Discriminator(t *testing.T) {
	b, parent, child := factoryFixture(t, true)

	str := func(s string) *string { return &s }
	tests := []struct {
		name  string
		value *string
		want  *ir.Class
	}{
		{"mapped", str("ns.childmodel"), child},
		{"case differs", str("NS.ChildModel"), parent},
		{"unknown", str("unknown"), parent},
		{"absent", nil, parent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveFactory(b, tt.value)
			if err != nil {
				t.Fatalf("ResolveFactory() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveFactory() = %s, want %s", got.Name, tt.want.Name)
			}
		})
	}

	read := OpsOf[*ReadDiscriminator](b)
	if len(read) != 1 || read[0].PropertyName != "@odata.type" {
		t.Errorf("ReadDiscriminator = %+v", read)
	}
}

func TestFactory_NoDiscriminator(t *testing.T) {
	b, parent, _ := factoryFixture(t, false)
	if len(b.Ops) != 1 {
		t.Fatalf("ops = %d, want only Construct", len(b.Ops))
	}
	if c, ok := b.Ops[0].(*Construct); !ok || c.Type != parent {
		t.Errorf("op = %#v, want Construct{ParentModel}", b.Ops[0])
	}
}

func TestFactory_MappingWithoutClass(t *testing.T) {
	f := newModelFixture()
	parent := f.model("ParentModel")
	parent.Discriminator = ir.Discriminator{PropertyName: "kind", Mappings: []ir.DiscriminatorMapping{{Key: "x", Type: ir.Primitive(ir.String)}}}
	m := parent.AddMethod(&ir.Method{
		Name:       "CreateFromDiscriminatorValue",
		Kind:       ir.MethodFactory,
		ReturnType: ir.Ref(parent),
		Parameters: []*ir.Parameter{{Name: "parseNode", Kind: ir.ParamParseNode}},
	})
	_, err := newTestEngine(t, nil, Options{}).Synthesize(m)
	var se *ir.StructuralError
	if !errors.As(err, &se) || se.Code != ir.CodeUnreachableDiscriminator {
		t.Errorf("error = %v, want %s", err, ir.CodeUnreachableDiscriminator)
	}
}

func TestQueryParametersMapper(t *testing.T) {
	root := ir.NewNamespace("ApiSdk")
	qp := root.AddClass(&ir.Class{Name: "UsersRequestBuilderGetQueryParameters", Kind: ir.ClassQueryParameters})
	qp.AddProperty(&ir.Property{Name: "Top", SerializationName: "%24top", Kind: ir.PropertyQueryParameter, Type: ir.Primitive(ir.Integer)})
	qp.AddProperty(&ir.Property{Name: "Select", SerializationName: "%24select", Kind: ir.PropertyQueryParameter, Type: ir.ArrayOf(ir.Primitive(ir.String))})
	qp.AddProperty(&ir.Property{Name: "Search", SerializationName: "Search", Kind: ir.PropertyQueryParameter, Type: ir.Primitive(ir.String)})
	m := qp.AddMethod(&ir.Method{
		Name:       "GetQueryParameter",
		Kind:       ir.MethodQueryParametersMapper,
		ReturnType: ir.Primitive(ir.String),
		Parameters: []*ir.Parameter{{Name: "originalName", Kind: ir.ParamQueryParametersMapper, Type: ir.Primitive(ir.String)}},
	})

	b := mustSynthesize(t, newTestEngine(t, nil, Options{}), m)
	if cases := OpsOf[*MapQueryName](b)[0].Cases; len(cases) != 2 {
		t.Errorf("cases = %+v, want two (Search has no distinct serialization name)", cases)
	}

	tests := map[string]string{
		"top":    "%24top",
		"TOP":    "%24top",
		"select": "%24select",
		"Search": "Search",
		"filter": "filter",
	}
	for in, want := range tests {
		if got := MapQueryParameter(b, in); got != want {
			t.Errorf("MapQueryParameter(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestQueryParametersMapper_MissingParameter(t *testing.T) {
	root := ir.NewNamespace("ApiSdk")
	qp := root.AddClass(&ir.Class{Name: "Q", Kind: ir.ClassQueryParameters})
	m := qp.AddMethod(&ir.Method{Name: "GetQueryParameter", Kind: ir.MethodQueryParametersMapper, ReturnType: ir.Primitive(ir.String)})

	_, err := newTestEngine(t, nil, Options{}).Synthesize(m)
	var se *ir.StructuralError
	if !errors.As(err, &se) || se.Code != ir.CodeMissingMapperParameter {
		t.Errorf("error = %v, want %s", err, ir.CodeMissingMapperParameter)
	}
}

func TestAccessors_BackingStore(t *testing.T) {
	for _, uses := range []bool{false, true} {
		t.Run(fmt.Sprintf("UsesBackingStore=%v", uses), func(t *testing.T) {
			f := newModelFixture()
			c := f.model("User")
			name := c.AddProperty(&ir.Property{Name: "DisplayName", Kind: ir.PropertyCustom, Type: ir.Primitive(ir.String)})
			store := c.AddProperty(&ir.Property{Name: "BackingStore", Kind: ir.PropertyBackingStore, Type: ir.Primitive("IBackingStore")})
			get := c.AddMethod(&ir.Method{Name: "GetDisplayName", Kind: ir.MethodGetter, ReturnType: ir.Primitive(ir.String), AccessedProperty: name})
			set := c.AddMethod(&ir.Method{
				Name:             "SetDisplayName",
				Kind:             ir.MethodSetter,
				ReturnType:       ir.Primitive(ir.Void),
				AccessedProperty: name,
				Parameters:       []*ir.Parameter{{Name: "value", Kind: ir.ParamSetterValue, Type: ir.Primitive(ir.String)}},
			})

			e := newTestEngine(t, nil, Options{UsesBackingStore: uses})
			var wantStore *ir.Property
			if uses {
				wantStore = store
			}

			read := OpsOf[*ReadProperty](mustSynthesize(t, e, get))
			if len(read) != 1 || read[0].Property != name || read[0].BackingStore != wantStore || read[0].Key != "displayName" {
				t.Errorf("getter = %+v", read)
			}
			write := OpsOf[*WriteProperty](mustSynthesize(t, e, set))
			if len(write) != 1 || write[0].Value != set.Parameters[0] || write[0].BackingStore != wantStore {
				t.Errorf("setter = %+v", write)
			}
		})
	}
}

func TestIndexerBackwardCompatibility(t *testing.T) {
	f := newBuilderFixture()
	item := f.root.AddClass(&ir.Class{Name: "UserItemRequestBuilder", Kind: ir.ClassRequestBuilder})
	f.builder.AddIndexer(&ir.Indexer{Name: "Item", ReturnType: ir.Ref(item), SerializationName: "user%2Did", Parent: f.builder})
	id := &ir.Parameter{Name: "id", Kind: ir.ParamPath, Type: ir.Primitive(ir.String)}
	m := f.builder.AddMethod(&ir.Method{Name: "ByUserId", Kind: ir.MethodIndexerBackwardCompatibility, ReturnType: ir.Ref(item), Parameters: []*ir.Parameter{id}})

	b := mustSynthesize(t, newTestEngine(t, nil, Options{}), m)
	cb := OpsOf[*ConstructBuilder](b)
	if len(cb) != 1 {
		t.Fatalf("ConstructBuilder ops = %d, want 1", len(cb))
	}
	if cb[0].Target.Class() != item {
		t.Errorf("Target = %s, want UserItemRequestBuilder", cb[0].Target)
	}
	if len(cb[0].Extra) != 1 || cb[0].Extra[0].Key != "user%2Did" || cb[0].Extra[0].Parameter != id {
		t.Errorf("Extra = %+v", cb[0].Extra)
	}
}
