// Package testfixtures builds element graphs used by emitter and
// generation tests.
package testfixtures

import "github.com/broady/apigen/ir"

// Graph is a users API:
//
//	GET    /users        list users, paged
//	POST   /users        create a user
//	GET    /users/{id}   get a user
//	DELETE /users/{id}   delete a user
//
// with polymorphic entity models, an error type, and command builders for
// the command-line target.
type Graph struct {
	Root   *ir.Namespace
	Models *ir.Namespace

	Color   *ir.Enum
	Entity  *ir.Class
	User    *ir.Class
	Address *ir.Class
	Error   *ir.Class

	Client        *ir.Class
	Users         *ir.Class
	UserItem      *ir.Class
	QueryParams   *ir.Class
	RequestConfig *ir.Class

	ClientConstructor *ir.Method
	ListExecutor      *ir.Method
	CreateExecutor    *ir.Method
}

// Primitive type names that are valid identifiers on every target.
const (
	DictionaryType      = "Dictionary"
	AdapterType         = "RequestAdapter"
	BackingStoreType    = "BackingStore"
	WriterType          = "SerializationWriter"
	ParseNodeType       = "ParseNode"
	RequestInfoType     = "RequestInformation"
	CommandType         = "Command"
	CancellationType    = "CancellationToken"
	BackingStoreFactory = "BackingStoreFactory"
)

// UsersURLTemplate is the url template of the users collection, as a
// source literal.
const UsersURLTemplate = `"{+baseurl}/users{?%24top}"`

// New returns a freshly built graph.
func New() *Graph {
	g := &Graph{Root: ir.NewNamespace("ApiSdk")}
	g.Models = g.Root.AddNamespace("models")
	g.models()
	g.builders()
	return g
}

func prim(name string) *ir.TypeRef { return ir.Primitive(name) }

// modelMethods adds the constructor, serializer, deserializer and
// factory every model carries.
func modelMethods(c *ir.Class) {
	c.AddMethod(&ir.Method{Name: c.Name, Kind: ir.MethodConstructor})
	c.AddMethod(&ir.Method{
		Name:       "Serialize",
		Kind:       ir.MethodSerializer,
		ReturnType: prim(ir.Void),
		Parameters: []*ir.Parameter{{Name: "writer", Kind: ir.ParamSerializer, Type: prim(WriterType)}},
	})
	c.AddMethod(&ir.Method{Name: "GetFieldDeserializers", Kind: ir.MethodDeserializer, ReturnType: prim(DictionaryType)})
	c.AddMethod(&ir.Method{
		Name:       "CreateFromDiscriminatorValue",
		Kind:       ir.MethodFactory,
		ReturnType: ir.Ref(c),
		Parameters: []*ir.Parameter{{Name: "parseNode", Kind: ir.ParamParseNode, Type: prim(ParseNodeType)}},
	})
}

func (g *Graph) models() {
	g.Color = g.Models.AddEnum(&ir.Enum{
		Name: "Color",
		Options: []ir.EnumOption{
			{Name: "Red", SerializationName: "red"},
			{Name: "Blue", SerializationName: "blue"},
		},
		Documentation: ir.Documentation{Description: "Favorite colors."},
	})

	g.Address = g.Models.AddClass(&ir.Class{Name: "Address", Kind: ir.ClassModel})
	g.Address.AddProperty(&ir.Property{Name: "Street", Kind: ir.PropertyCustom, Type: prim(ir.String)})
	g.Address.AddProperty(&ir.Property{Name: "City", Kind: ir.PropertyCustom, Type: prim(ir.String)})
	modelMethods(g.Address)

	g.Entity = g.Models.AddClass(&ir.Class{Name: "Entity", Kind: ir.ClassModel})
	g.Entity.AddProperty(&ir.Property{Name: "Id", Kind: ir.PropertyCustom, Type: prim(ir.String)})
	g.Entity.AddProperty(&ir.Property{Name: "OdataType", SerializationName: "@odata.type", Kind: ir.PropertyCustom, Type: prim(ir.String)})
	g.Entity.AddProperty(&ir.Property{Name: "AdditionalData", Kind: ir.PropertyAdditionalData, Type: prim(DictionaryType)})
	modelMethods(g.Entity)

	g.User = g.Models.AddClass(&ir.Class{
		Name:          "User",
		Kind:          ir.ClassModel,
		Inherits:      ir.Ref(g.Entity),
		Documentation: ir.Documentation{Description: "A directory user.", Link: "https://learn.example/user"},
	})
	display := g.User.AddProperty(&ir.Property{Name: "DisplayName", Kind: ir.PropertyCustom, Type: &ir.TypeRef{Name: ir.String, Nullable: true}})
	g.User.AddProperty(&ir.Property{Name: "FavoriteColor", Kind: ir.PropertyCustom, Type: ir.Ref(g.Color), DefaultValue: "blue"})
	g.User.AddProperty(&ir.Property{Name: "Tags", Kind: ir.PropertyCustom, Type: ir.ListOf(prim(ir.String))})
	g.User.AddProperty(&ir.Property{Name: "HomeAddress", Kind: ir.PropertyCustom, Type: ir.Ref(g.Address)})
	g.User.AddProperty(&ir.Property{Name: "CreatedBy", Kind: ir.PropertyCustom, Type: prim(ir.String), ReadOnly: true})
	g.User.AddProperty(&ir.Property{Name: "BackingStore", Kind: ir.PropertyBackingStore, Type: prim(BackingStoreType)})
	modelMethods(g.User)
	g.User.AddMethod(&ir.Method{Name: "GetDisplayName", Kind: ir.MethodGetter, ReturnType: display.Type, AccessedProperty: display})
	g.User.AddMethod(&ir.Method{
		Name:             "SetDisplayName",
		Kind:             ir.MethodSetter,
		ReturnType:       prim(ir.Void),
		AccessedProperty: display,
		Parameters:       []*ir.Parameter{{Name: "value", Kind: ir.ParamSetterValue, Type: display.Type}},
	})

	g.Entity.Discriminator = ir.Discriminator{
		PropertyName: "@odata.type",
		Mappings:     []ir.DiscriminatorMapping{{Key: "#microsoft.graph.user", Type: ir.Ref(g.User)}},
	}

	g.Error = g.Models.AddClass(&ir.Class{Name: "ODataError", Kind: ir.ClassErrorDefinition})
	g.Error.AddProperty(&ir.Property{Name: "Message", Kind: ir.PropertyCustom, Type: prim(ir.String)})
	modelMethods(g.Error)
}

func builderProperties(c *ir.Class, template string) {
	c.AddProperty(&ir.Property{Name: "PathParameters", Kind: ir.PropertyPathParameters, Type: prim(DictionaryType), Access: ir.AccessProtected})
	c.AddProperty(&ir.Property{Name: "RequestAdapter", Kind: ir.PropertyRequestAdapter, Type: prim(AdapterType), Access: ir.AccessProtected})
	c.AddProperty(&ir.Property{Name: "UrlTemplate", Kind: ir.PropertyUrlTemplate, Type: prim(ir.String), Access: ir.AccessProtected, DefaultValue: template})
}

func builderConstructors(c *ir.Class) {
	c.AddMethod(&ir.Method{
		Name: c.Name,
		Kind: ir.MethodConstructor,
		Parameters: []*ir.Parameter{
			{Name: "pathParameters", Kind: ir.ParamPathParameters, Type: prim(DictionaryType)},
			{Name: "requestAdapter", Kind: ir.ParamRequestAdapter, Type: prim(AdapterType)},
		},
	})
	c.AddMethod(&ir.Method{
		Name: c.Name,
		Kind: ir.MethodRawUrlConstructor,
		Parameters: []*ir.Parameter{
			{Name: "rawUrl", Kind: ir.ParamRawUrl, Type: prim(ir.String)},
			{Name: "requestAdapter", Kind: ir.ParamRequestAdapter, Type: prim(AdapterType)},
		},
	})
}

func commandBuilder(c *ir.Class, name string) *ir.Method {
	return c.AddMethod(&ir.Method{Name: "Build" + name + "Command", Kind: ir.MethodCommandBuilder, ReturnType: prim(CommandType)})
}

func (g *Graph) builders() {
	usersNS := g.Root.AddNamespace("users")
	itemNS := usersNS.AddNamespace("item")

	g.Client = g.Root.AddClass(&ir.Class{Name: "ApiClient", Kind: ir.ClassRequestBuilder, Documentation: ir.Documentation{Description: "The main entry point of the SDK."}})
	builderProperties(g.Client, `"{+baseurl}"`)
	g.ClientConstructor = g.Client.AddMethod(&ir.Method{
		Name:    "ApiClient",
		Kind:    ir.MethodClientConstructor,
		BaseURL: "https://graph.example.com/v1.0",
		Parameters: []*ir.Parameter{
			{Name: "requestAdapter", Kind: ir.ParamRequestAdapter, Type: prim(AdapterType)},
			{Name: "backingStore", Kind: ir.ParamBackingStore, Type: prim(BackingStoreFactory), Optional: true},
		},
	})

	g.Users = usersNS.AddClass(&ir.Class{Name: "UsersRequestBuilder", Kind: ir.ClassRequestBuilder})
	builderProperties(g.Users, UsersURLTemplate)
	builderConstructors(g.Users)
	usersProp := g.Client.AddProperty(&ir.Property{Name: "Users", Kind: ir.PropertyRequestBuilder, Type: ir.Ref(g.Users)})

	root := commandBuilder(g.Client, "Root")
	root.OriginalMethod = g.ClientConstructor
	commandBuilder(g.Client, "Users").AccessedProperty = usersProp

	g.QueryParams = usersNS.AddClass(&ir.Class{Name: "UsersRequestBuilderGetQueryParameters", Kind: ir.ClassQueryParameters})
	g.QueryParams.AddProperty(&ir.Property{Name: "Top", SerializationName: "%24top", Kind: ir.PropertyQueryParameter, Type: &ir.TypeRef{Name: ir.Integer, Nullable: true}})
	g.QueryParams.AddProperty(&ir.Property{Name: "Search", Kind: ir.PropertyQueryParameter, Type: prim(ir.String)})
	g.QueryParams.AddMethod(&ir.Method{
		Name:       "GetQueryParameter",
		Kind:       ir.MethodQueryParametersMapper,
		ReturnType: prim(ir.String),
		Parameters: []*ir.Parameter{{Name: "originalName", Kind: ir.ParamQueryParametersMapper, Type: prim(ir.String)}},
	})

	g.RequestConfig = usersNS.AddClass(&ir.Class{Name: "UsersRequestBuilderGetRequestConfiguration", Kind: ir.ClassRequestConfiguration})
	g.RequestConfig.AddProperty(&ir.Property{Name: "Headers", Kind: ir.PropertyHeaders, Type: prim(DictionaryType)})
	g.RequestConfig.AddProperty(&ir.Property{Name: "Options", Kind: ir.PropertyOptions, Type: prim(DictionaryType)})
	g.RequestConfig.AddProperty(&ir.Property{Name: "QueryParameters", Kind: ir.PropertyQueryParameters, Type: ir.Ref(g.QueryParams)})

	config := &ir.Parameter{Name: "requestConfiguration", Kind: ir.ParamRequestConfiguration, Type: ir.Ref(g.RequestConfig), Optional: true}
	cancel := &ir.Parameter{Name: "cancellationToken", Kind: ir.ParamCancellation, Type: prim(CancellationType), Optional: true}
	top := &ir.Parameter{Name: "top", SerializationName: "%24top", Kind: ir.ParamQueryParameter, Type: prim(ir.Integer), Optional: true}

	g.Users.AddMethod(&ir.Method{
		Name:                  "ToGetRequestInformation",
		Kind:                  ir.MethodRequestGenerator,
		HTTPMethod:            ir.HTTPGet,
		ReturnType:            prim(RequestInfoType),
		AcceptedResponseTypes: []string{"application/json"},
		Parameters:            []*ir.Parameter{top, config},
	})
	g.ListExecutor = g.Users.AddMethod(&ir.Method{
		Name:          "Get",
		Kind:          ir.MethodRequestExecutor,
		HTTPMethod:    ir.HTTPGet,
		ReturnType:    ir.ListOf(ir.Ref(g.User)),
		Parameters:    []*ir.Parameter{config, cancel},
		ErrorMappings: []ir.ErrorMapping{{Code: "4XX", Type: ir.Ref(g.Error)}, {Code: "5XX", Type: ir.Ref(g.Error)}},
		Paging:        &ir.PagingInformation{ItemName: "value", NextLinkName: "@odata.nextLink"},
		Documentation: ir.Documentation{Description: "List users.", Link: "https://learn.example/users-list"},
	})

	body := &ir.Parameter{Name: "body", Kind: ir.ParamRequestBody, Type: ir.Ref(g.User)}
	g.Users.AddMethod(&ir.Method{
		Name:                   "ToPostRequestInformation",
		Kind:                   ir.MethodRequestGenerator,
		HTTPMethod:             ir.HTTPPost,
		ReturnType:             prim(RequestInfoType),
		RequestBodyContentType: "application/json",
		Parameters:             []*ir.Parameter{body},
	})
	g.CreateExecutor = g.Users.AddMethod(&ir.Method{
		Name:          "Post",
		Kind:          ir.MethodRequestExecutor,
		HTTPMethod:    ir.HTTPPost,
		ReturnType:    ir.Ref(g.User),
		Parameters:    []*ir.Parameter{body, cancel},
		ErrorMappings: []ir.ErrorMapping{{Code: "4XX", Type: ir.Ref(g.Error)}},
	})

	g.UserItem = itemNS.AddClass(&ir.Class{Name: "UserItemRequestBuilder", Kind: ir.ClassRequestBuilder})
	builderProperties(g.UserItem, `"{+baseurl}/users/{user%2Did}"`)
	builderConstructors(g.UserItem)

	userID := &ir.Parameter{Name: "userId", SerializationName: "user%2Did", Kind: ir.ParamPath, Type: prim(ir.String)}
	g.Users.AddMethod(&ir.Method{
		Name:       "ByUserId",
		Kind:       ir.MethodRequestBuilderWithParameters,
		ReturnType: ir.Ref(g.UserItem),
		Parameters: []*ir.Parameter{userID},
	})
	indexer := g.Users.AddIndexer(&ir.Indexer{
		Name:              "Item",
		IndexType:         prim(ir.String),
		ReturnType:        ir.Ref(g.UserItem),
		SerializationName: "user%2Did",
		ParameterName:     "userId",
	})

	list := commandBuilder(g.Users, "List")
	list.HTTPMethod, list.OriginalMethod = ir.HTTPGet, g.ListExecutor
	create := commandBuilder(g.Users, "Create")
	create.HTTPMethod, create.OriginalMethod = ir.HTTPPost, g.CreateExecutor
	g.Users.AddMethod(&ir.Method{Name: "BuildItemCommand", Kind: ir.MethodCommandBuilder, ReturnType: ir.ListOf(prim(CommandType)), OriginalIndexer: indexer})

	g.UserItem.AddMethod(&ir.Method{Name: "ToGetRequestInformation", Kind: ir.MethodRequestGenerator, HTTPMethod: ir.HTTPGet, ReturnType: prim(RequestInfoType), Parameters: []*ir.Parameter{userID}})
	get := g.UserItem.AddMethod(&ir.Method{
		Name:          "Get",
		Kind:          ir.MethodRequestExecutor,
		HTTPMethod:    ir.HTTPGet,
		ReturnType:    ir.Ref(g.User),
		ErrorMappings: []ir.ErrorMapping{{Code: "4XX", Type: ir.Ref(g.Error)}},
	})
	g.UserItem.AddMethod(&ir.Method{Name: "ToDeleteRequestInformation", Kind: ir.MethodRequestGenerator, HTTPMethod: ir.HTTPDelete, ReturnType: prim(RequestInfoType), Parameters: []*ir.Parameter{userID}})
	del := g.UserItem.AddMethod(&ir.Method{Name: "Delete", Kind: ir.MethodRequestExecutor, HTTPMethod: ir.HTTPDelete, ReturnType: prim(ir.Void)})

	getCmd := commandBuilder(g.UserItem, "Get")
	getCmd.HTTPMethod, getCmd.OriginalMethod = ir.HTTPGet, get
	delCmd := commandBuilder(g.UserItem, "Delete")
	delCmd.HTTPMethod, delCmd.OriginalMethod = ir.HTTPDelete, del
}
