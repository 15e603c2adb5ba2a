package golang

import (
	"context"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"path"
	"sort"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"

	"github.com/broady/apigen/convention"
	"github.com/broady/apigen/internal/testfixtures"
	"github.com/broady/apigen/ir"
	"github.com/broady/apigen/synth"
)

const importPath = "example.com/apisdk"

func emitGraph(t *testing.T, root *ir.Namespace, opts synth.Options) map[string]string {
	t.Helper()
	e, err := synth.NewEngine(&synth.Context{Policy: convention.NewGo(), Options: opts}, synth.DefaultHandlers(), nil)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	units, err := New(nil, importPath).Emit(context.Background(), e, root)
	if err != nil {
		t.Fatalf("Emit() error = %+v", err)
	}
	files := make(map[string]string, len(units))
	for _, u := range units {
		files[u.Path] = string(u.Content)
	}
	return files
}

func unitOf(t *testing.T, files map[string]string, path string) string {
	t.Helper()
	src, ok := files[path]
	if !ok {
		var have []string
		for k := range files {
			have = append(have, k)
		}
		t.Fatalf("no unit %s; have %v", path, have)
	}
	return src
}

func assertContains(t *testing.T, files map[string]string, path string, want ...string) {
	t.Helper()
	src := unitOf(t, files, path)
	for _, w := range want {
		if !strings.Contains(src, w) {
			t.Errorf("%s does not contain %q\n--- got ---\n%s", path, w, src)
		}
	}
}

func parse(t *testing.T, files map[string]string, path string) *ast.File {
	t.Helper()
	f, err := parser.ParseFile(token.NewFileSet(), path, unitOf(t, files, path), parser.ParseComments)
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return f
}

// funcs returns the declared functions of f keyed by "Recv.Name" or "Name".
func funcs(f *ast.File) map[string]bool {
	out := make(map[string]bool)
	for _, d := range f.Decls {
		fn, ok := d.(*ast.FuncDecl)
		if !ok {
			continue
		}
		name := fn.Name.Name
		if fn.Recv != nil && len(fn.Recv.List) == 1 {
			name = strings.TrimPrefix(types.ExprString(fn.Recv.List[0].Type), "*") + "." + name
		}
		out[name] = true
	}
	return out
}

// fields returns the fields of struct typeName as name to type, with
// embedded fields keyed by their type.
func fields(t *testing.T, f *ast.File, typeName string) map[string]string {
	t.Helper()
	for _, d := range f.Decls {
		gen, ok := d.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, s := range gen.Specs {
			ts := s.(*ast.TypeSpec)
			st, ok := ts.Type.(*ast.StructType)
			if !ok || ts.Name.Name != typeName {
				continue
			}
			out := make(map[string]string)
			for _, fld := range st.Fields.List {
				typ := types.ExprString(fld.Type)
				if len(fld.Names) == 0 {
					out[typ] = typ
				}
				for _, n := range fld.Names {
					out[n.Name] = typ
				}
			}
			return out
		}
	}
	t.Fatalf("no struct %s", typeName)
	return nil
}

func assertFuncs(t *testing.T, f *ast.File, want ...string) {
	t.Helper()
	have := funcs(f)
	for _, w := range want {
		if !have[w] {
			t.Errorf("missing func %s; have %v", w, have)
		}
	}
}

func TestEmit_Models(t *testing.T) {
	g := testfixtures.New()
	files := emitGraph(t, g.Root, synth.Options{UsesBackingStore: true})

	assertContains(t, files, "models/color.go",
		"// Code generated by apigen. DO NOT EDIT.",
		"package models",
		"// Color favorite colors.",
		"type Color int",
		"ColorRed Color = iota",
		`return []string{"red", "blue"}[i]`,
		"func ParseColor(v string) (any, error) {",
		`case "blue":`,
		"result = ColorBlue",
		`return nil, errors.New("unknown Color value: " + v)`,
		"func SerializeColor(values []Color) []string {",
	)

	user := parse(t, files, "models/user.go")
	wantFields := map[string]string{
		"Entity":        "Entity",
		"DisplayName":   "*string",
		"FavoriteColor": "*Color",
		"Tags":          "[]string",
		"HomeAddress":   "*Address",
		"CreatedBy":     "*string",
		"BackingStore":  "store.BackingStore",
	}
	if diff := cmp.Diff(wantFields, fields(t, user, "User")); diff != "" {
		t.Errorf("User fields mismatch (-want +got):\n%s", diff)
	}
	assertFuncs(t, user,
		"NewUser",
		"CreateUserFromDiscriminatorValue",
		"User.Serialize",
		"User.GetFieldDeserializers",
		"User.GetDisplayName",
		"User.SetDisplayName",
	)
	assertContains(t, files, "models/user.go",
		`"github.com/microsoft/kiota-abstractions-go/serialization"`,
		`"github.com/microsoft/kiota-abstractions-go/store"`,
		"// User a directory user.",
		"// [Find more info here]: https://learn.example/user",
		"func NewUser() *User {",
		"m := &User{Entity: *NewEntity()}",
		"favoriteColor := ColorBlue",
		"m.FavoriteColor = &favoriteColor",
		"func (m *User) Serialize(writer serialization.SerializationWriter) error {",
		"if err := m.Entity.Serialize(writer); err != nil {",
		`if err := writer.WriteStringValue("displayName", m.DisplayName); err != nil {`,
		"cast := (*m.FavoriteColor).String()",
		`if err := writer.WriteStringValue("favoriteColor", &cast); err != nil {`,
		`if err := writer.WriteCollectionOfStringValues("tags", m.Tags); err != nil {`,
		`if err := writer.WriteObjectValue("homeAddress", m.HomeAddress); err != nil {`,
		"func (m *User) GetFieldDeserializers() map[string]func(serialization.ParseNode) error {",
		"res := m.Entity.GetFieldDeserializers()",
		`res["displayName"] = func(n serialization.ParseNode) error {`,
		"val, err := n.GetEnumValue(ParseColor)",
		"m.FavoriteColor = val.(*Color)",
		`val, err := n.GetCollectionOfPrimitiveValues("string")`,
		"items[i] = *(v.(*string))",
		"val, err := n.GetObjectValue(CreateAddressFromDiscriminatorValue)",
		"m.HomeAddress = val.(*Address)",
		`res["createdBy"] = func(n serialization.ParseNode) error {`,
		"return res",
		"func CreateUserFromDiscriminatorValue(parseNode serialization.ParseNode) (serialization.Parsable, error) {",
		"return NewUser(), nil",
		"func (m *User) GetDisplayName() *string {",
		`val, err := m.BackingStore.Get("displayName")`,
		"return val.(*string)",
		"func (m *User) SetDisplayName(value *string) {",
		`if err := m.BackingStore.Set("displayName", value); err != nil {`,
		"panic(err)",
	)
	if strings.Contains(files["models/user.go"], `"createdBy", m.CreatedBy`) {
		t.Error("read-only properties must not be serialized")
	}

	entity := parse(t, files, "models/entity.go")
	if diff := cmp.Diff(map[string]string{
		"Id":             "*string",
		"OdataType":      "*string",
		"AdditionalData": "map[string]any",
	}, fields(t, entity, "Entity")); diff != "" {
		t.Errorf("Entity fields mismatch (-want +got):\n%s", diff)
	}
	assertContains(t, files, "models/entity.go",
		"m := &Entity{}",
		"res := make(map[string]func(serialization.ParseNode) error)",
		`mappingValueNode, err := parseNode.GetChildNode("@odata.type")`,
		"mappingValue, err := mappingValueNode.GetStringValue()",
		"switch *mappingValue {",
		`case "#microsoft.graph.user":`,
		"return NewUser(), nil",
		"return NewEntity(), nil",
		`if err := writer.WriteStringValue("@odata.type", m.OdataType); err != nil {`,
		"if err := writer.WriteAdditionalData(m.AdditionalData); err != nil {",
	)

	var errorUnit string
	for path, src := range files {
		if strings.Contains(src, "type OdataError struct") {
			errorUnit = path
		}
	}
	if errorUnit == "" {
		t.Fatal("no unit declares OdataError")
	}
	assertContains(t, files, errorUnit,
		`"github.com/microsoft/kiota-abstractions-go"`,
		"m := &OdataError{ApiError: *abstractions.NewApiError()}",
		"func CreateOdataErrorFromDiscriminatorValue(",
	)
	if got := fields(t, parse(t, files, errorUnit), "OdataError"); got["abstractions.ApiError"] == "" {
		t.Errorf("OdataError does not embed abstractions.ApiError: %v", got)
	}
}

func TestEmit_RequestBuilders(t *testing.T) {
	g := testfixtures.New()
	files := emitGraph(t, g.Root, synth.Options{Serializers: []string{"JsonSerializationWriterFactory"}})

	users := parse(t, files, "users/users_request_builder.go")
	if diff := cmp.Diff(map[string]string{
		"pathParameters": "map[string]string",
		"requestAdapter": "abstractions.RequestAdapter",
		"urlTemplate":    "string",
	}, fields(t, users, "UsersRequestBuilder")); diff != "" {
		t.Errorf("UsersRequestBuilder fields mismatch (-want +got):\n%s", diff)
	}
	assertFuncs(t, users,
		"NewUsersRequestBuilderInternal",
		"NewUsersRequestBuilder",
		"UsersRequestBuilder.ToGetRequestInformation",
		"UsersRequestBuilder.Get",
		"UsersRequestBuilder.ToPostRequestInformation",
		"UsersRequestBuilder.Post",
		"UsersRequestBuilder.ByUserId",
	)
	assertContains(t, files, "users/users_request_builder.go",
		"package users",
		`"example.com/apisdk/models"`,
		`"example.com/apisdk/users/item"`,
		"func NewUsersRequestBuilderInternal(pathParameters map[string]string, requestAdapter abstractions.RequestAdapter) *UsersRequestBuilder {",
		`m.urlTemplate = "{+baseurl}/users{?%24top}"`,
		"for k, v := range pathParameters {",
		"m.pathParameters = urlTplParams",
		"m.requestAdapter = requestAdapter",
		"func NewUsersRequestBuilder(rawUrl string, requestAdapter abstractions.RequestAdapter) *UsersRequestBuilder {",
		`m.pathParameters = map[string]string{"request-raw-url": rawUrl}`,
		"func (m *UsersRequestBuilder) ToGetRequestInformation(ctx context.Context, requestConfiguration *UsersRequestBuilderGetRequestConfiguration) (*abstractions.RequestInformation, error) {",
		"requestInfo := abstractions.NewRequestInformationWithMethodAndUrlTemplateAndPathParameters(abstractions.GET, m.urlTemplate, m.pathParameters)",
		`requestInfo.Headers.TryAdd("Accept", "application/json")`,
		"requestInfo.AddQueryParameters(*(requestConfiguration.QueryParameters))",
		"requestInfo.Headers.AddAll(requestConfiguration.Headers)",
		"requestInfo.AddRequestOptions(requestConfiguration.Options)",
		"return requestInfo, nil",
		"// Get list users.",
		"// [Find more info here]: https://learn.example/users-list",
		"func (m *UsersRequestBuilder) Get(ctx context.Context, requestConfiguration *UsersRequestBuilderGetRequestConfiguration) ([]*models.User, error) {",
		"requestInfo, err := m.ToGetRequestInformation(ctx, requestConfiguration)",
		`"4XX": models.CreateOdataErrorFromDiscriminatorValue,`,
		`"5XX": models.CreateOdataErrorFromDiscriminatorValue,`,
		"res, err := m.requestAdapter.SendCollection(ctx, requestInfo, models.CreateUserFromDiscriminatorValue, errorMapping)",
		"val[i] = v.(*models.User)",
		"func (m *UsersRequestBuilder) Post(ctx context.Context, body *models.User) (*models.User, error) {",
		"requestInfo, err := m.ToPostRequestInformation(ctx, body)",
		`if err := requestInfo.SetContentFromParsable(ctx, m.requestAdapter, "application/json", body); err != nil {`,
		"return res.(*models.User), nil",
		"func (m *UsersRequestBuilder) ByUserId(userId string) *item.UserItemRequestBuilder {",
		`urlTplParams["user%2Did"] = userId`,
		"return item.NewUserItemRequestBuilderInternal(urlTplParams, m.requestAdapter)",
	)
	if strings.Contains(files["users/users_request_builder.go"], "BuildListCommand") {
		t.Error("command builders are only emitted for the command line")
	}

	assertContains(t, files, "users/item/user_item_request_builder.go",
		"package item",
		"func (m *UserItemRequestBuilder) Delete(ctx context.Context) error {",
		"abstractions.DELETE",
		"func (m *UserItemRequestBuilder) ToDeleteRequestInformation(ctx context.Context) (*abstractions.RequestInformation, error) {",
		"requestInfo, err := m.ToDeleteRequestInformation(ctx)",
		"if err := m.requestAdapter.SendNoContent(ctx, requestInfo, nil); err != nil {",
	)

	query := parse(t, files, "users/users_request_builder_get_query_parameters.go")
	if diff := cmp.Diff(map[string]string{
		"Top":    "*int32",
		"Search": "*string",
	}, fields(t, query, "UsersRequestBuilderGetQueryParameters")); diff != "" {
		t.Errorf("query parameter fields mismatch (-want +got):\n%s", diff)
	}
	assertContains(t, files, "users/users_request_builder_get_query_parameters.go",
		"`uriparametername:\"%24top\"`",
		"switch strings.ToLower(originalName) {",
		`case "top":`,
		`return "%24top"`,
		"return originalName",
	)

	assertContains(t, files, "users/users_request_builder_get_request_configuration.go",
		"*abstractions.RequestHeaders",
		"[]abstractions.RequestOption",
		"*UsersRequestBuilderGetQueryParameters",
	)

	client := parse(t, files, "api_client.go")
	assertFuncs(t, client, "NewApiClient", "ApiClient.Users")
	assertContains(t, files, "api_client.go",
		"package apisdk",
		`"example.com/apisdk/users"`,
		"func NewApiClient(requestAdapter abstractions.RequestAdapter, backingStore store.BackingStoreFactory) *ApiClient {",
		"abstractions.RegisterDefaultSerializer(func() serialization.SerializationWriterFactory {",
		"return NewJsonSerializationWriterFactory()",
		`if m.requestAdapter.GetBaseUrl() == "" {`,
		`m.requestAdapter.SetBaseUrl("https://graph.example.com/v1.0")`,
		`m.pathParameters["baseurl"] = m.requestAdapter.GetBaseUrl()`,
		"m.requestAdapter.EnableBackingStore(backingStore)",
		"// ApiClient the main entry point of the SDK.",
		"func (m *ApiClient) Users() *users.UsersRequestBuilder {",
		"return users.NewUsersRequestBuilderInternal(m.pathParameters, m.requestAdapter)",
	)
}

func TestEmit_FlagsEnum(t *testing.T) {
	root := ir.NewNamespace("ApiSdk")
	root.AddEnum(&ir.Enum{
		Name:  "Permission",
		Flags: true,
		Options: []ir.EnumOption{
			{Name: "Read", SerializationName: "read"},
			{Name: "Write", SerializationName: "write"},
		},
	})
	files := emitGraph(t, root, synth.Options{})
	assertContains(t, files, "permission.go",
		"package apisdk",
		"PermissionRead Permission = 1 << iota",
		"PermissionWrite",
		"bit := Permission(1 << p)",
		`return strings.Join(values, ",")`,
		`for _, str := range strings.Split(v, ",") {`,
		"result |= PermissionWrite",
	)
	assertFuncs(t, parse(t, files, "permission.go"), "Permission.String", "ParsePermission", "SerializePermission")
}

func TestEmit_DefaultImportPath(t *testing.T) {
	g := testfixtures.New()
	e, err := synth.NewEngine(&synth.Context{Policy: convention.NewGo()}, synth.DefaultHandlers(), nil)
	if err != nil {
		t.Fatal(err)
	}
	units, err := New(nil, "").Emit(context.Background(), e, g.Root)
	if err != nil {
		t.Fatal(err)
	}
	for _, u := range units {
		if u.Path == "api_client.go" {
			if !strings.Contains(string(u.Content), `"apisdk/users"`) {
				t.Errorf("api_client.go does not import the users package by root package name:\n%s", u.Content)
			}
			return
		}
	}
	t.Fatal("no api_client.go unit")
}

func TestEmit_ComposedTypesUnsupported(t *testing.T) {
	root := ir.NewNamespace("ApiSdk")
	c := root.AddClass(&ir.Class{Name: "Holder", Kind: ir.ClassModel})
	c.AddProperty(&ir.Property{
		Name: "Value",
		Kind: ir.PropertyCustom,
		Type: &ir.UnionType{Types: []ir.Type{ir.Primitive(ir.String), ir.Primitive(ir.Integer)}},
	})
	e, err := synth.NewEngine(&synth.Context{Policy: convention.NewGo()}, synth.DefaultHandlers(), nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = New(nil, importPath).Emit(context.Background(), e, root)
	var unsupported *ir.UnsupportedConstructError
	if !errors.As(err, &unsupported) {
		t.Fatalf("Emit() error = %v, want an unsupported construct error", err)
	}
	if !strings.HasPrefix(err.Error(), "emit ApiSdk.Holder") {
		t.Errorf("error %q does not name the class", err)
	}
}

func TestEmit_Canceled(t *testing.T) {
	e, err := synth.NewEngine(&synth.Context{Policy: convention.NewGo()}, synth.DefaultHandlers(), nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(nil, importPath).Emit(ctx, e, testfixtures.New().Root); err == nil {
		t.Fatal("Emit() with a canceled context should fail")
	}
}

// runtimeStubs declare the runtime types the generated code names. They
// carry no functions, so only calls between generated declarations are
// checked.
var runtimeStubs = map[string]string{
	AbstractionsPath: `package abstractions
type RequestAdapter interface{}
type RequestInformation struct{}
type RequestHeaders struct{}
type RequestOption interface{}
type ErrorMappings map[string]any
type ApiError struct{}
`,
	SerializationPath: `package serialization
type Parsable interface{}
type ParseNode interface{}
type ParseNodeFactory interface{}
type SerializationWriter interface{}
type SerializationWriterFactory interface{}
type UntypedNodeable interface{}
type DateOnly struct{}
type TimeOnly struct{}
type ISODuration struct{}
`,
	StorePath: `package store
type BackingStore interface{}
type BackingStoreFactory func() BackingStore
`,
	uuidPath: `package uuid
type UUID [16]byte
`,
}

type importerFunc func(path string) (*types.Package, error)

func (f importerFunc) Import(path string) (*types.Package, error) { return f(path) }

// typeCheck checks every generated package and returns the errors of
// calls whose arguments disagree with the declaration they call.
func typeCheck(t *testing.T, files map[string]string) []string {
	t.Helper()
	fset := token.NewFileSet()
	sources := make(map[string][]*ast.File)
	for p, src := range files {
		f, err := parser.ParseFile(fset, p, src, 0)
		if err != nil {
			t.Fatalf("parse %s: %v", p, err)
		}
		pkg := importPath
		if dir := path.Dir(p); dir != "." {
			pkg += "/" + dir
		}
		sources[pkg] = append(sources[pkg], f)
	}
	for p, src := range runtimeStubs {
		f, err := parser.ParseFile(fset, p, src, 0)
		if err != nil {
			t.Fatalf("parse stub %s: %v", p, err)
		}
		sources[p] = []*ast.File{f}
	}

	var mismatched []string
	checked := make(map[string]*types.Package)
	std := importer.ForCompiler(fset, "source", nil)
	var imp importerFunc
	imp = func(p string) (*types.Package, error) {
		if pkg, ok := checked[p]; ok {
			return pkg, nil
		}
		files, ok := sources[p]
		if !ok {
			return std.Import(p)
		}
		conf := types.Config{
			Importer: imp,
			Error: func(err error) {
				msg := err.Error()
				if strings.Contains(msg, "arguments in call to") || strings.Contains(msg, "in argument to") {
					mismatched = append(mismatched, msg)
				}
			},
		}
		pkg, _ := conf.Check(p, fset, files, nil)
		checked[p] = pkg
		return pkg, nil
	}

	var paths []string
	for p := range sources {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		if _, err := imp.Import(p); err != nil {
			t.Fatalf("import %s: %v", p, err)
		}
	}
	return mismatched
}

func TestEmit_CallsMatchDeclarations(t *testing.T) {
	for name, opts := range map[string]synth.Options{
		"plain":         {},
		"backing store": {UsesBackingStore: true, Serializers: []string{"JsonSerializationWriterFactory"}},
	} {
		t.Run(name, func(t *testing.T) {
			files := emitGraph(t, testfixtures.New().Root, opts)
			for _, msg := range typeCheck(t, files) {
				t.Error(msg)
			}
		})
	}
}
