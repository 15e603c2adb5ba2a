// Package irdoc loads an element graph from a YAML or JSON document.
//
// A document is a tree of namespaces. Type references name a primitive
// ("string", "integer") or a declared class or enum, either qualified
// ("ApiSdk.models.User"), relative to the root ("models.User"), relative to
// the referencing namespace, or by a short name that is unique in the
// document. A scalar type may carry a "[]" suffix for a list and a "?"
// suffix for nullable:
//
//	name: ApiSdk
//	namespaces:
//	  - name: models
//	    classes:
//	      - name: User
//	        kind: model
//	        properties:
//	          - {name: DisplayName, kind: custom, type: "string?"}
//	          - {name: Tags, kind: custom, type: "string[]"}
package irdoc

import (
	"strings"

	"gopkg.in/yaml.v3"
)

type text struct {
	Description string `yaml:"description"`
	Link        string `yaml:"link"`
	LinkLabel   string `yaml:"link_label"`
}

type namespaceDoc struct {
	Name       string         `yaml:"name"`
	Enums      []enumDoc      `yaml:"enums"`
	Classes    []classDoc     `yaml:"classes"`
	Namespaces []namespaceDoc `yaml:"namespaces"`
}

type enumDoc struct {
	Name    string      `yaml:"name"`
	Flags   bool        `yaml:"flags"`
	Options []optionDoc `yaml:"options"`
	text    `yaml:",inline"`
}

type optionDoc struct {
	Name              string `yaml:"name"`
	SerializationName string `yaml:"serialization_name"`
	text              `yaml:",inline"`
}

type classDoc struct {
	Name          string            `yaml:"name"`
	Kind          string            `yaml:"kind"`
	Inherits      *typeDoc          `yaml:"inherits"`
	Implements    []typeDoc         `yaml:"implements"`
	Discriminator *discriminatorDoc `yaml:"discriminator"`
	Properties    []propertyDoc     `yaml:"properties"`
	Indexers      []indexerDoc      `yaml:"indexers"`
	Methods       []methodDoc       `yaml:"methods"`
	text          `yaml:",inline"`
}

type discriminatorDoc struct {
	Property string       `yaml:"property"`
	Mappings []mappingDoc `yaml:"mappings"`
}

type mappingDoc struct {
	Key  string  `yaml:"key"`
	Type typeDoc `yaml:"type"`
}

type propertyDoc struct {
	Name              string  `yaml:"name"`
	SerializationName string  `yaml:"serialization_name"`
	Kind              string  `yaml:"kind"`
	Type              typeDoc `yaml:"type"`
	Default           string  `yaml:"default"`
	ReadOnly          bool    `yaml:"read_only"`
	Access            string  `yaml:"access"`
	ExistsInBaseType  bool    `yaml:"exists_in_base_type"`
	text              `yaml:",inline"`
}

type parameterDoc struct {
	Name              string   `yaml:"name"`
	SerializationName string   `yaml:"serialization_name"`
	Kind              string   `yaml:"kind"`
	Type              typeDoc  `yaml:"type"`
	Optional          bool     `yaml:"optional"`
	Default           string   `yaml:"default"`
	PossibleValues    []string `yaml:"possible_values"`
	text              `yaml:",inline"`
}

type indexerDoc struct {
	Name              string  `yaml:"name"`
	IndexType         typeDoc `yaml:"index_type"`
	ReturnType        typeDoc `yaml:"return_type"`
	SerializationName string  `yaml:"serialization_name"`
	ParameterName     string  `yaml:"parameter_name"`
	text              `yaml:",inline"`
}

type errorMappingDoc struct {
	Code string  `yaml:"code"`
	Type typeDoc `yaml:"type"`
}

type pagingDoc struct {
	ItemName      string `yaml:"item_name"`
	NextLinkName  string `yaml:"next_link_name"`
	OperationName string `yaml:"operation_name"`
}

type methodDoc struct {
	Name       string         `yaml:"name"`
	Kind       string         `yaml:"kind"`
	ReturnType *typeDoc       `yaml:"return_type"`
	Parameters []parameterDoc `yaml:"parameters"`
	Access     string         `yaml:"access"`
	HTTPMethod string         `yaml:"http_method"`

	ErrorMappings          []errorMappingDoc `yaml:"error_mappings"`
	AcceptedResponseTypes  []string          `yaml:"accepted_response_types"`
	RequestBodyContentType string            `yaml:"request_body_content_type"`
	Paging                 *pagingDoc        `yaml:"paging"`

	// Names of members of the same class.
	OriginalMethod   string `yaml:"original_method"`
	OriginalIndexer  string `yaml:"original_indexer"`
	AccessedProperty string `yaml:"accessed_property"`

	BaseURL             string   `yaml:"base_url"`
	SerializerModules   []string `yaml:"serializer_modules"`
	DeserializerModules []string `yaml:"deserializer_modules"`
	text                `yaml:",inline"`
}

type typeDoc struct {
	Name         string    `yaml:"name"`
	Collection   string    `yaml:"collection"`
	Nullable     bool      `yaml:"nullable"`
	Union        []typeDoc `yaml:"union"`
	Intersection []typeDoc `yaml:"intersection"`
}

// UnmarshalYAML accepts both the mapping form and the scalar shorthand.
func (t *typeDoc) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		name := strings.TrimSpace(n.Value)
		if s, ok := strings.CutSuffix(name, "?"); ok {
			name, t.Nullable = s, true
		}
		if s, ok := strings.CutSuffix(name, "[]"); ok {
			name, t.Collection = s, "list"
		}
		t.Name = name
		return nil
	}
	type plain typeDoc
	return n.Decode((*plain)(t))
}
