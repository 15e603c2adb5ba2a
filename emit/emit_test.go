package emit

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/broady/apigen/convention"
	"github.com/broady/apigen/ir"
	"github.com/broady/apigen/synth"
)

func TestUnitPath(t *testing.T) {
	root := ir.NewNamespace("ApiSdk")
	item := root.AddNamespace("users").AddNamespace("item")
	c := item.AddClass(&ir.Class{Name: "UserItemRequestBuilder"})
	client := root.AddClass(&ir.Class{Name: "ApiClient"})

	tests := []struct {
		policy *convention.Policy
		def    ir.Definition
		want   string
	}{
		{convention.NewCSharp(), c, "users/item/UserItemRequestBuilder.cs"},
		{convention.NewTypeScript(), c, "users/item/user-item-request-builder.ts"},
		{convention.NewGo(), c, "users/item/user_item_request_builder.go"},
		{convention.NewCSharp(), client, "ApiClient.cs"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := UnitPath(tt.policy, root, tt.def); got != tt.want {
				t.Errorf("UnitPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRelative(t *testing.T) {
	tests := []struct {
		dir, target, want string
	}{
		{"users/item", "models/user", "../../models/user"},
		{"", "models/user", "./models/user"},
		{"models", "models/address", "./address"},
		{"models/odata", "models/user", "../user"},
	}
	for _, tt := range tests {
		if got := Relative(tt.dir, tt.target); got != tt.want {
			t.Errorf("Relative(%q, %q) = %q, want %q", tt.dir, tt.target, got, tt.want)
		}
	}
}

func TestValueMethod(t *testing.T) {
	tests := []struct {
		v    synth.ValueVariant
		t    ir.Type
		want string
	}{
		{synth.ValuePrimitive, ir.Primitive(ir.String), "StringValue"},
		{synth.ValuePrimitive, ir.Primitive(ir.Integer), "IntValue"},
		{synth.ValuePrimitive, ir.Primitive(ir.Int64), "LongValue"},
		{synth.ValuePrimitive, ir.Primitive(ir.Boolean), "BoolValue"},
		{synth.ValuePrimitive, ir.Primitive(ir.DateTimeOffset), "DateTimeOffsetValue"},
		{synth.ValueEnum, nil, "EnumValue"},
		{synth.ValueCollectionOfObject, nil, "CollectionOfObjectValues"},
		{synth.ValueComposed, nil, "ObjectValue"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := ValueMethod(tt.v, tt.t); got != tt.want {
				t.Errorf("ValueMethod(%s) = %q, want %q", tt.v, got, tt.want)
			}
		})
	}
}

func TestEmitted(t *testing.T) {
	cmd := &ir.Method{Kind: ir.MethodCommandBuilder}
	if Emitted(cmd, false) {
		t.Error("command builders are not emitted without a command line")
	}
	if !Emitted(cmd, true) || !Emitted(&ir.Method{Kind: ir.MethodGetter}, false) {
		t.Error("expected method to be emitted")
	}
}

func TestArguments(t *testing.T) {
	body := &ir.Parameter{Name: "body", Kind: ir.ParamRequestBody}
	ct := &ir.Parameter{Name: "contentType", Kind: ir.ParamRequestBodyContentType, Optional: true}
	cfg := &ir.Parameter{Name: "requestConfiguration", Kind: ir.ParamRequestConfiguration, Optional: true}
	gen := &ir.Method{
		Name:       "ToPostRequestInformation",
		Kind:       ir.MethodRequestGenerator,
		Parameters: []*ir.Parameter{body, {Name: "top", Kind: ir.ParamQueryParameter}, ct, cfg},
	}
	name := func(p *ir.Parameter) string { return p.Name }

	tests := []struct {
		name     string
		args     []*ir.Parameter
		optional bool
		want     []string
	}{
		{"all bound", []*ir.Parameter{body, ct, cfg}, true, []string{"body", "contentType", "requestConfiguration"}},
		{"trailing optional dropped", []*ir.Parameter{body, nil, nil}, true, []string{"body"}},
		{"gap kept", []*ir.Parameter{body, nil, cfg}, true, []string{"body", "none", "requestConfiguration"}},
		{"no default values", []*ir.Parameter{body, nil, nil}, false, []string{"body", "none", "none"}},
		{"required missing", []*ir.Parameter{nil, nil, nil}, true, []string{"none"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Arguments(gen, tt.args, name, "none", tt.optional)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Arguments() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
