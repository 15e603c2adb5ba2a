package cmdtree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/broady/apigen/convention"
	"github.com/broady/apigen/ir"
	"github.com/broady/apigen/synth"
)

func newEngine(t *testing.T, opts synth.Options) *synth.Engine {
	t.Helper()
	e, err := synth.NewEngine(&synth.Context{Policy: convention.NewCLI(), Options: opts}, Handlers(), nil)
	require.NoError(t, err)
	return e
}

func newBuilder(ns *ir.Namespace, name string) *ir.Class {
	c := ns.AddClass(&ir.Class{Name: name, Kind: ir.ClassRequestBuilder})
	c.AddProperty(&ir.Property{Name: "PathParameters", Kind: ir.PropertyPathParameters, Type: ir.Primitive("map")})
	c.AddProperty(&ir.Property{Name: "RequestAdapter", Kind: ir.PropertyRequestAdapter, Type: ir.Primitive("RequestAdapter")})
	return c
}

func commandType() *ir.TypeRef  { return ir.Primitive("Command") }
func commandsType() *ir.TypeRef { return ir.ListOf(ir.Primitive("Command")) }

// nav adds a navigation command builder to c for the property named name
// returning target.
func nav(c *ir.Class, name string, target *ir.Class) *ir.Method {
	prop := c.AddProperty(&ir.Property{Name: name, Kind: ir.PropertyRequestBuilder, Type: ir.Ref(target)})
	return c.AddMethod(&ir.Method{Name: "Build" + name + "Command", Kind: ir.MethodCommandBuilder, ReturnType: commandType(), AccessedProperty: prop})
}

// operation adds a generator, an executor and an executable command
// builder named name to c.
func operation(c *ir.Class, name string, h ir.HTTPMethod, ret ir.Type, params ...*ir.Parameter) (gen, exec, cmd *ir.Method) {
	gen = c.AddMethod(&ir.Method{Name: "To" + name + "RequestInformation", Kind: ir.MethodRequestGenerator, HTTPMethod: h, ReturnType: ir.Primitive("RequestInformation"), Parameters: params})
	exec = c.AddMethod(&ir.Method{Name: name, Kind: ir.MethodRequestExecutor, HTTPMethod: h, ReturnType: ret})
	cmd = c.AddMethod(&ir.Method{Name: "Build" + name + "Command", Kind: ir.MethodCommandBuilder, HTTPMethod: h, ReturnType: commandType(), OriginalMethod: exec})
	return gen, exec, cmd
}

// usersFixture is a client with a users collection whose item also
// navigates to a "list" builder:
//
//	GET  /users             (list)
//	POST /users             (create)
//	GET  /users/{id}        (get)
//	GET  /users/{id}/list   (list get)
type usersFixture struct {
	root       *ir.Namespace
	client     *ir.Class
	users      *ir.Class
	item       *ir.Class
	list       *ir.Class
	rootCmd    *ir.Method
	usersCmd   *ir.Method
	listExec   *ir.Method
	itemCmd    *ir.Method
	itemList   *ir.Method
	indexer    *ir.Indexer
	user       *ir.Class
	userIDPath *ir.Parameter
}

func newUsersFixture() *usersFixture {
	root := ir.NewNamespace("ApiSdk")
	f := &usersFixture{root: root}
	f.user = root.AddNamespace("models").AddClass(&ir.Class{Name: "User", Kind: ir.ClassModel})

	f.client = newBuilder(root, "ApiClient")
	ctor := f.client.AddMethod(&ir.Method{Name: "ApiClient", Kind: ir.MethodClientConstructor})
	f.rootCmd = f.client.AddMethod(&ir.Method{Name: "BuildRootCommand", Kind: ir.MethodCommandBuilder, ReturnType: commandType(), OriginalMethod: ctor})

	usersNS := root.AddNamespace("users")
	f.users = newBuilder(usersNS, "UsersRequestBuilder")
	f.item = newBuilder(usersNS.AddNamespace("item"), "UserItemRequestBuilder")
	f.list = newBuilder(usersNS.AddNamespace("item").AddNamespace("list"), "ListRequestBuilder")

	f.usersCmd = nav(f.client, "Users", f.users)

	_, _, f.listExec = operation(f.users, "List", ir.HTTPGet, ir.ListOf(ir.Ref(f.user)))
	body := &ir.Parameter{Name: "body", Kind: ir.ParamRequestBody, Type: ir.Ref(f.user)}
	createGen, createExec, _ := operation(f.users, "Create", ir.HTTPPost, ir.Ref(f.user), body)
	createGen.RequestBodyContentType = "application/json"
	createExec.AddParameter(body)

	f.indexer = f.users.AddIndexer(&ir.Indexer{Name: "Item", ReturnType: ir.Ref(f.item), SerializationName: "user%2Did"})
	f.itemCmd = f.users.AddMethod(&ir.Method{Name: "BuildItemCommand", Kind: ir.MethodCommandBuilder, ReturnType: commandsType(), OriginalIndexer: f.indexer})

	f.userIDPath = &ir.Parameter{Name: "userId", SerializationName: "user%2Did", Kind: ir.ParamPath, Type: ir.Primitive(ir.String)}
	operation(f.item, "Get", ir.HTTPGet, ir.Ref(f.user), f.userIDPath)
	f.itemList = nav(f.item, "List", f.list)

	operation(f.list, "Get", ir.HTTPGet, ir.Primitive(ir.Stream))
	return f
}
