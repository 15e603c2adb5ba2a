package irdoc

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/apigen/ir"
)

const usersDoc = `
name: ApiSdk
classes:
  - name: ApiClient
    kind: request_builder
    description: The main entry point of the SDK.
    properties:
      - {name: RequestAdapter, kind: request_adapter, type: RequestAdapter}
      - {name: Users, kind: request_builder, type: users.UsersRequestBuilder}
    methods:
      - name: ApiClient
        kind: client_constructor
        base_url: https://api.example.com/v1
        serializer_modules: [JsonSerializationWriterFactory]
        parameters:
          - {name: requestAdapter, kind: request_adapter, type: RequestAdapter}
namespaces:
  - name: models
    enums:
      - name: Color
        options:
          - {name: Red, serialization_name: red}
          - {name: Blue, serialization_name: blue}
    classes:
      - name: Entity
        discriminator:
          property: "@odata.type"
          mappings:
            - {key: "#user", type: User}
        properties:
          - {name: Id, type: "string?"}
      - name: User
        inherits: Entity
        properties:
          - {name: DisplayName, serialization_name: displayName, type: "string?"}
          - {name: Tags, type: "string[]"}
          - {name: Favorite, type: Color, default: Blue}
      - name: ODataError
        kind: error_definition
  - name: users
    classes:
      - name: UsersRequestBuilder
        kind: request_builder
        properties:
          - {name: UrlTemplate, kind: url_template, type: string, access: protected}
        methods:
          - name: Get
            kind: request_executor
            http_method: get
            return_type: {name: User, collection: list}
            error_mappings:
              - {code: 4XX, type: models.ODataError}
            parameters:
              - {name: requestConfiguration, kind: request_configuration, type: string, optional: true}
          - name: ToGetRequestInformation
            kind: request_generator
            http_method: GET
            return_type: RequestInformation
          - name: BuildGetCommand
            kind: command_builder
            return_type: Command
            original_method: Get
`

func decode(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := Decode(strings.NewReader(src))
	require.NoError(t, err)
	return doc
}

func classNamed(t *testing.T, root *ir.Namespace, name string) *ir.Class {
	t.Helper()
	for _, c := range root.AllClasses() {
		if c.QualifiedName() == name {
			return c
		}
	}
	t.Fatalf("class %s not found", name)
	return nil
}

func TestDecode(t *testing.T) {
	doc := decode(t, usersDoc)
	root := doc.Root
	assert.Equal(t, "ApiSdk", root.Name)
	assert.Empty(t, ir.Validate(root))

	client := classNamed(t, root, "ApiSdk.ApiClient")
	assert.Equal(t, ir.ClassRequestBuilder, client.Kind)
	assert.Equal(t, "The main entry point of the SDK.", client.Documentation.Description)
	ctor := client.Methods[0]
	assert.Equal(t, ir.MethodClientConstructor, ctor.Kind)
	assert.Equal(t, "https://api.example.com/v1", ctor.BaseURL)
	assert.Equal(t, []string{"JsonSerializationWriterFactory"}, ctor.SerializerModules)
	assert.Equal(t, ir.ParamRequestAdapter, ctor.Parameters[0].Kind)
	assert.Equal(t, "RequestAdapter", ir.AsRef(ctor.Parameters[0].Type).Name)

	users := client.PropertyOfKind(ir.PropertyRequestBuilder)
	require.NotNil(t, users)
	assert.Equal(t, "ApiSdk.users.UsersRequestBuilder", ir.AsRef(users.Type).Class().QualifiedName())

	entity := classNamed(t, root, "ApiSdk.models.Entity")
	user := classNamed(t, root, "ApiSdk.models.User")
	assert.Equal(t, ir.ClassModel, user.Kind)
	assert.Same(t, entity, user.Inherits.Class())
	assert.Equal(t, "@odata.type", entity.Discriminator.PropertyName)
	require.Len(t, entity.Discriminator.Mappings, 1)
	assert.Same(t, user, entity.Discriminator.Mappings[0].Type.Class())

	display := user.Properties[0]
	assert.Equal(t, ir.PropertyCustom, display.Kind)
	assert.Equal(t, "displayName", display.WireName())
	assert.True(t, display.Type.IsNullable())
	assert.Equal(t, ir.String, ir.AsRef(display.Type).Name)
	assert.Equal(t, ir.CollectionList, ir.AsRef(user.Properties[1].Type).Collection)
	favorite := ir.AsRef(user.Properties[2].Type)
	require.NotNil(t, favorite.Enum())
	assert.Equal(t, "Blue", user.Properties[2].DefaultValue)
	assert.Len(t, favorite.Enum().Options, 2)

	builder := classNamed(t, root, "ApiSdk.users.UsersRequestBuilder")
	assert.Equal(t, ir.AccessProtected, builder.Properties[0].Access)
	get := builder.Methods[0]
	assert.Equal(t, ir.HTTPGet, get.HTTPMethod)
	assert.Same(t, user, get.ReturnRef().Class())
	assert.True(t, get.ReturnRef().IsCollection())
	require.Len(t, get.ErrorMappings, 1)
	assert.Equal(t, ir.ClassErrorDefinition, get.ErrorMappings[0].Type.Class().Kind)
	assert.True(t, get.Parameters[0].Optional)
	cmd := builder.Methods[2]
	assert.Equal(t, ir.MethodCommandBuilder, cmd.Kind)
	assert.Same(t, get, cmd.OriginalMethod)
}

func TestDecode_JSON(t *testing.T) {
	doc := decode(t, `{
  "name": "Sdk",
  "namespaces": [{
    "name": "models",
    "classes": [{
      "name": "Pet",
      "properties": [{"name": "Age", "type": {"name": "integer", "nullable": true}}]
    }]
  }]
}`)
	pet := classNamed(t, doc.Root, "Sdk.models.Pet")
	age := ir.AsRef(pet.Properties[0].Type)
	assert.Equal(t, ir.Integer, age.Name)
	assert.True(t, age.Nullable)
}

func TestDecode_Composed(t *testing.T) {
	doc := decode(t, `
name: Sdk
classes:
  - name: Cat
  - name: Dog
  - name: Owner
    properties:
      - name: Pet
        type:
          name: CatOrDog
          union: [Cat, Dog]
`)
	owner := classNamed(t, doc.Root, "Sdk.Owner")
	u, ok := owner.Properties[0].Type.(*ir.UnionType)
	require.True(t, ok, "got %T", owner.Properties[0].Type)
	assert.Equal(t, "CatOrDog", u.Name)
	assert.Len(t, u.Types, 2)
}

func TestDecode_Hash(t *testing.T) {
	doc := decode(t, usersDoc)
	sum := sha256.Sum256([]byte(usersDoc))
	assert.Equal(t, hex.EncodeToString(sum[:]), doc.Hash)

	other := decode(t, usersDoc+"\n# trailing comment\n")
	assert.NotEqual(t, doc.Hash, other.Hash)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"empty", "", "empty IR document"},
		{"no root name", "classes: []", "root namespace has no name"},
		{"unknown field", "name: Sdk\ncolour: blue", "colour"},
		{"unknown class kind", "name: Sdk\nclasses: [{name: A, kind: widget}]", `unknown class kind "widget"`},
		{"unknown method kind", "name: Sdk\nclasses: [{name: A, methods: [{name: M, kind: teleport}]}]", `unknown method kind "teleport"`},
		{"unknown access", "name: Sdk\nclasses: [{name: A, properties: [{name: P, type: string, access: secret}]}]", `unknown access "secret"`},
		{"unknown collection", "name: Sdk\nclasses: [{name: A, properties: [{name: P, type: {name: string, collection: set}}]}]", `unknown collection "set"`},
		{
			"ambiguous",
			"name: Sdk\nnamespaces:\n  - {name: a, classes: [{name: Item}]}\n  - {name: b, classes: [{name: Item}]}\nclasses: [{name: Holder, properties: [{name: P, type: Item}]}]",
			`ambiguous type name "Item"`,
		},
		{"missing original", "name: Sdk\nclasses: [{name: A, kind: request_builder, methods: [{name: C, kind: command_builder, original_method: Get}]}]", `original method "Get" not found`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDecode_NamespaceRelative(t *testing.T) {
	doc := decode(t, `
name: Sdk
namespaces:
  - name: a
    classes:
      - {name: Item}
      - name: Holder
        properties: [{name: P, type: Item}]
  - name: b
    classes: [{name: Item}]
`)
	holder := classNamed(t, doc.Root, "Sdk.a.Holder")
	assert.Equal(t, "Sdk.a.Item", ir.AsRef(holder.Properties[0].Type).Class().QualifiedName())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.yaml")
	require.NoError(t, os.WriteFile(path, []byte(usersDoc), 0o644))
	doc, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, doc.Root.AllClasses(), 5)

	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
