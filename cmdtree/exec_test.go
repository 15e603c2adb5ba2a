package cmdtree

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/apigen/ir"
	"github.com/broady/apigen/synth"
)

func optionNames(opts []synth.CommandOption) []string {
	var out []string
	for _, o := range opts {
		out = append(out, o.Name)
	}
	return out
}

func TestOptions(t *testing.T) {
	root := ir.NewNamespace("ApiSdk")
	user := root.AddClass(&ir.Class{Name: "User", Kind: ir.ClassModel})
	c := newBuilder(root, "UsersRequestBuilder")

	gen, exec, _ := operation(c, "Post", ir.HTTPPost, ir.ArrayOf(ir.Ref(user)),
		&ir.Parameter{Name: "userId", Kind: ir.ParamPath, Type: ir.Primitive(ir.String), Optional: true},
		&ir.Parameter{Name: "select", Kind: ir.ParamQueryParameter, Type: ir.ArrayOf(ir.Primitive(ir.String)), Optional: true},
		&ir.Parameter{Name: "top", Kind: ir.ParamQueryParameter, Type: ir.Primitive(ir.Integer), Optional: true},
		&ir.Parameter{Name: "headers", Kind: ir.ParamHeaders, Type: ir.Primitive(ir.String)},
	)
	gen.RequestBodyContentType = "application/json"
	exec.Paging = &ir.PagingInformation{ItemName: "value", NextLinkName: "@odata.nextLink"}
	exec.AddParameter(&ir.Parameter{Name: "body", Kind: ir.ParamRequestBody, Type: ir.Ref(user)})
	exec.AddParameter(&ir.Parameter{
		Name:           "contentType",
		Kind:           ir.ParamRequestBodyContentType,
		Type:           ir.Primitive(ir.String),
		PossibleValues: []string{"application/json", "text/plain"},
		Documentation:  ir.Documentation{Description: "Body content type"},
	})

	opts := Options(&synth.Context{}, gen, exec)
	assert.Equal(t, []string{"user-id", "select", "top", "headers", "body", "content-type", "output", "query", "all"}, optionNames(opts))

	byName := make(map[string]synth.CommandOption)
	for _, o := range opts {
		byName[o.Name] = o
	}

	id := byName["user-id"]
	assert.True(t, id.Required, "path options are always required")
	assert.Equal(t, synth.ArityDefault, id.Arity)

	sel := byName["select"]
	assert.False(t, sel.Required)
	assert.True(t, sel.Collection)
	assert.Equal(t, synth.ArityZeroOrMore, sel.Arity)

	h := byName["headers"]
	assert.Equal(t, synth.OptionHeader, h.Source)
	assert.True(t, h.Collection)
	assert.Equal(t, synth.ArityOneOrMore, h.Arity)

	body := byName["body"]
	assert.Equal(t, synth.OptionBody, body.Source)
	assert.Equal(t, ir.String, body.Type.Name, "structured bodies are passed as text")
	assert.True(t, body.Required)

	ct := byName["content-type"]
	assert.Equal(t, "application/json", ct.DefaultValue)
	assert.False(t, ct.Required)
	assert.Equal(t, "Body content type\nAllowed values: \n  - application/json\n  - text/plain", ct.Description)

	assert.Equal(t, DefaultOutputFormat, byName["output"].DefaultValue)
	assert.Equal(t, synth.OptionAll, byName["all"].Source)
}

func TestOptions_ReturnShapes(t *testing.T) {
	root := ir.NewNamespace("ApiSdk")
	user := root.AddClass(&ir.Class{Name: "User", Kind: ir.ClassModel})
	paging := &ir.PagingInformation{ItemName: "value", NextLinkName: "nextLink"}

	tests := []struct {
		name   string
		ret    ir.Type
		paging *ir.PagingInformation
		want   []string
		mode   synth.OutputMode
	}{
		{name: "void", ret: ir.Primitive(ir.Void), mode: synth.OutputSuccess},
		{name: "stream", ret: ir.Primitive(ir.Stream), want: []string{OutputFileOption}, mode: synth.OutputStream},
		{name: "primitive", ret: ir.Primitive(ir.Integer), mode: synth.OutputText},
		{name: "primitive paged", ret: ir.Primitive(ir.Integer), paging: paging, mode: synth.OutputText},
		{name: "object", ret: ir.Ref(user), want: []string{OutputOption, QueryOption}, mode: synth.OutputFormatted},
		{name: "object paged", ret: ir.ListOf(ir.Ref(user)), paging: paging, want: []string{OutputOption, QueryOption, AllOption}, mode: synth.OutputFormatted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newBuilder(root, "B")
			_, exec, cmd := operation(c, "Get", ir.HTTPGet, tt.ret)
			exec.Paging = tt.paging

			b, err := Synthesize(&synth.Context{}, cmd)
			require.NoError(t, err)

			var opts []synth.CommandOption
			for _, op := range synth.OpsOf[*synth.AddOption](b) {
				opts = append(opts, op.Option)
			}
			assert.Equal(t, tt.want, optionNames(opts))

			h := synth.OpsOf[*synth.CommandHandler](b)
			require.Len(t, h, 1)
			var out *synth.WriteOutput
			var paged bool
			for _, op := range h[0].Ops {
				switch op := op.(type) {
				case *synth.WriteOutput:
					out = op
				case *synth.SendPaged:
					paged = true
				}
			}
			require.NotNil(t, out)
			assert.Equal(t, tt.mode, out.Mode)
			assert.Equal(t, tt.mode == synth.OutputFormatted && tt.paging != nil, paged)
		})
	}
}

func TestHandler_Bodies(t *testing.T) {
	root := ir.NewNamespace("ApiSdk")
	user := root.AddClass(&ir.Class{Name: "User", Kind: ir.ClassModel})

	t.Run("structured", func(t *testing.T) {
		c := newBuilder(root, "Users")
		body := &ir.Parameter{Name: "body", Kind: ir.ParamRequestBody, Type: ir.Ref(user)}
		gen, exec, cmd := operation(c, "Post", ir.HTTPPost, ir.Primitive(ir.Void), body)
		gen.RequestBodyContentType = "application/json"
		exec.AddParameter(body)
		exec.ErrorMappings = []ir.ErrorMapping{{Code: "4xx", Type: ir.Ref(user)}}

		b, err := Synthesize(&synth.Context{}, cmd)
		require.NoError(t, err)
		ops := synth.OpsOf[*synth.CommandHandler](b)[0].Ops
		require.IsType(t, &synth.ParseBody{}, ops[0])
		assert.Equal(t, "application/json", ops[0].(*synth.ParseBody).ContentType)
		assert.Equal(t, "model", b.Aliases.Name(body))
		require.IsType(t, &synth.BuildRequest{}, ops[1])
		require.IsType(t, &synth.ErrorMappingTable{}, ops[2])
		assert.Equal(t, "4XX", ops[2].(*synth.ErrorMappingTable).Entries[0].Pattern)
		send := ops[3].(*synth.Send)
		assert.Equal(t, synth.SendNoContent, send.Variant)
		assert.True(t, send.ErrorMapping)
		assert.Equal(t, "body", body.Name, "the IR parameter is not renamed")
	})

	t.Run("stream", func(t *testing.T) {
		c := newBuilder(root, "Content")
		body := &ir.Parameter{Name: "body", Kind: ir.ParamRequestBody, Type: ir.Primitive(ir.Stream)}
		_, exec, cmd := operation(c, "Put", ir.HTTPPut, ir.Primitive(ir.Void), body)
		exec.AddParameter(body)

		b, err := Synthesize(&synth.Context{}, cmd)
		require.NoError(t, err)
		opt := synth.OpsOf[*synth.AddOption](b)[0].Option
		assert.Equal(t, InputFileOption, opt.Name)
		assert.Equal(t, synth.OptionBodyFile, opt.Source)
		ops := synth.OpsOf[*synth.CommandHandler](b)[0].Ops
		require.IsType(t, &synth.OpenInputFile{}, ops[0])
		assert.True(t, ops[1].(*synth.BuildRequest).Stream)
		assert.Equal(t, "stream", b.Aliases.Name(body))
	})

	t.Run("missing content type", func(t *testing.T) {
		c := newBuilder(root, "Broken")
		c.AddProperty(&ir.Property{Name: "UrlTemplate", Kind: ir.PropertyUrlTemplate, Type: ir.Primitive(ir.String), DefaultValue: "{+baseurl}/broken"})
		body := &ir.Parameter{Name: "body", Kind: ir.ParamRequestBody, Type: ir.Ref(user)}
		_, exec, cmd := operation(c, "Post", ir.HTTPPost, ir.Primitive(ir.Void), body)
		exec.AddParameter(body)

		_, err := Synthesize(&synth.Context{}, cmd)
		var cte *synth.ContentTypeError
		require.True(t, errors.As(err, &cte), "error = %v", err)
		assert.Equal(t, "{+baseurl}/broken", cte.URLTemplate)
	})

	t.Run("missing executor", func(t *testing.T) {
		c := newBuilder(root, "Orphan")
		cmd := c.AddMethod(&ir.Method{Name: "BuildGetCommand", Kind: ir.MethodCommandBuilder, HTTPMethod: ir.HTTPGet, ReturnType: commandType()})
		_, err := Synthesize(&synth.Context{}, cmd)
		var se *ir.StructuralError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, ir.CodeMissingExecutor, se.Code)
	})
}

func TestDescribe(t *testing.T) {
	doc := ir.Documentation{Description: "List users.", Link: "https://learn.example/users", LinkLabel: "Find more info here"}
	assert.Equal(t, "List users.\n\nFind more info here:\n  https://learn.example/users", describe(doc, false))
	assert.Equal(t, "List users.\nFind more info here: https://learn.example/users", describe(doc, true))

	doc.LinkLabel = ""
	assert.Equal(t, "List users.\nSee: https://learn.example/users", describe(doc, true))
	assert.Equal(t, "Related Links:\n  https://learn.example/users", describe(ir.Documentation{Link: doc.Link}, false))
}
