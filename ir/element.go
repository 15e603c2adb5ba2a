package ir

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Documentation holds descriptive text attached to an element.
type Documentation struct {
	Description string
	Link        string
	LinkLabel   string
}

// IsZero reports whether the documentation is empty.
func (d Documentation) IsZero() bool {
	return d.Description == "" && d.Link == ""
}

// Namespace owns classes, enums and child namespaces.
type Namespace struct {
	// Name is the fully qualified, dot separated name.
	Name string

	Parent     *Namespace
	Namespaces []*Namespace
	Classes    []*Class
	Enums      []*Enum
}

// NewNamespace creates a root namespace.
func NewNamespace(name string) *Namespace {
	return &Namespace{Name: name}
}

// AddNamespace returns the child namespace named by appending segment,
// creating it if needed.
func (n *Namespace) AddNamespace(segment string) *Namespace {
	name := segment
	if n.Name != "" {
		name = n.Name + "." + segment
	}
	for _, c := range n.Namespaces {
		if c.Name == name {
			return c
		}
	}
	child := &Namespace{Name: name, Parent: n}
	n.Namespaces = append(n.Namespaces, child)
	return child
}

// AddClass attaches c to the namespace.
func (n *Namespace) AddClass(c *Class) *Class {
	c.Namespace = n
	n.Classes = append(n.Classes, c)
	return c
}

// AddEnum attaches e to the namespace.
func (n *Namespace) AddEnum(e *Enum) *Enum {
	e.Namespace = n
	n.Enums = append(n.Enums, e)
	return e
}

// Segment returns the last component of the namespace name.
func (n *Namespace) Segment() string {
	if i := strings.LastIndexByte(n.Name, '.'); i >= 0 {
		return n.Name[i+1:]
	}
	return n.Name
}

// Root returns the outermost namespace.
func (n *Namespace) Root() *Namespace {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

// AllNamespaces returns n and every descendant, depth first.
func (n *Namespace) AllNamespaces() []*Namespace {
	out := []*Namespace{n}
	for _, child := range n.Namespaces {
		out = append(out, child.AllNamespaces()...)
	}
	return out
}

// AllClasses returns every class in n and its descendants, depth first.
func (n *Namespace) AllClasses() []*Class {
	var out []*Class
	for _, ns := range n.AllNamespaces() {
		out = append(out, ns.Classes...)
	}
	return out
}

// AllEnums returns every enum in n and its descendants, depth first.
func (n *Namespace) AllEnums() []*Enum {
	var out []*Enum
	for _, ns := range n.AllNamespaces() {
		out = append(out, ns.Enums...)
	}
	return out
}

// Discriminator selects a concrete subtype at deserialization time.
type Discriminator struct {
	PropertyName string
	Mappings     []DiscriminatorMapping
}

// DiscriminatorMapping maps one discriminator value to a concrete type.
type DiscriminatorMapping struct {
	Key  string
	Type *TypeRef
}

// IsZero reports whether no dispatch should be generated.
func (d Discriminator) IsZero() bool {
	return d.PropertyName == "" || len(d.Mappings) == 0
}

// Class is a model, request builder or supporting class.
type Class struct {
	Name          string
	Kind          ClassKind
	Namespace     *Namespace
	Inherits      *TypeRef
	Implements    []*TypeRef
	Properties    []*Property
	Methods       []*Method
	Indexers      []*Indexer
	Discriminator Discriminator
	Documentation Documentation
}

func (c *Class) DefinitionName() string          { return c.Name }
func (c *Class) DeclaringNamespace() *Namespace { return c.Namespace }
func (*Class) definition()                      {}

// QualifiedName returns the namespace qualified class name.
func (c *Class) QualifiedName() string { return qualifiedName(c) }

// AddProperty attaches p to the class.
func (c *Class) AddProperty(p *Property) *Property {
	p.Parent = c
	c.Properties = append(c.Properties, p)
	return p
}

// AddMethod attaches m to the class.
func (c *Class) AddMethod(m *Method) *Method {
	m.Parent = c
	c.Methods = append(c.Methods, m)
	return m
}

// AddIndexer attaches x to the class.
func (c *Class) AddIndexer(x *Indexer) *Indexer {
	x.Parent = c
	c.Indexers = append(c.Indexers, x)
	return x
}

// BaseClass returns the inherited class, or nil.
func (c *Class) BaseClass() *Class {
	if c.Inherits == nil {
		return nil
	}
	return c.Inherits.Class()
}

// PropertyOfKind returns the first property with the given kind, or nil.
func (c *Class) PropertyOfKind(kind PropertyKind) *Property {
	for _, p := range c.Properties {
		if p.Kind == kind {
			return p
		}
	}
	return nil
}

// PropertiesOfKind returns the properties with the given kind, ordered by name.
func (c *Class) PropertiesOfKind(kind PropertyKind) []*Property {
	var out []*Property
	for _, p := range c.Properties {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// MethodsOfKind returns the methods with the given kind, ordered by name.
func (c *Class) MethodsOfKind(kind MethodKind) []*Method {
	var out []*Method
	for _, m := range c.Methods {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// FindMethod returns the first method matching pred, or nil.
func (c *Class) FindMethod(pred func(*Method) bool) *Method {
	for _, m := range c.Methods {
		if pred(m) {
			return m
		}
	}
	return nil
}

// DeclaredIndexers returns the distinct indexers of c: those attached
// directly and those referenced through a method's OriginalIndexer.
func (c *Class) DeclaredIndexers() []*Indexer {
	seen := make(map[*Indexer]bool)
	var out []*Indexer
	add := func(x *Indexer) {
		if x != nil && !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}
	for _, x := range c.Indexers {
		add(x)
	}
	for _, m := range c.Methods {
		add(m.OriginalIndexer)
	}
	return out
}

// Indexer returns the single indexer of c, nil when there is none, or a
// structural error when more than one is declared.
func (c *Class) Indexer() (*Indexer, error) {
	xs := c.DeclaredIndexers()
	switch len(xs) {
	case 0:
		return nil, nil
	case 1:
		return xs[0], nil
	default:
		return nil, &StructuralError{
			Code:    CodeMultipleIndexers,
			Element: c.QualifiedName(),
			Message: "class declares more than one indexer",
		}
	}
}

// Enum is a declared enumeration.
type Enum struct {
	Name          string
	Namespace     *Namespace
	Options       []EnumOption
	Flags         bool
	Documentation Documentation
}

// EnumOption is one enumeration member.
type EnumOption struct {
	Name              string
	SerializationName string
	Documentation     Documentation
}

// WireName returns the serialized form of the option.
func (o EnumOption) WireName() string {
	if o.SerializationName != "" {
		return o.SerializationName
	}
	return o.Name
}

func (e *Enum) DefinitionName() string          { return e.Name }
func (e *Enum) DeclaringNamespace() *Namespace { return e.Namespace }
func (*Enum) definition()                      {}

// QualifiedName returns the namespace qualified enum name.
func (e *Enum) QualifiedName() string { return qualifiedName(e) }

// Option returns the option whose name or serialization name matches value.
func (e *Enum) Option(value string) (EnumOption, bool) {
	for _, o := range e.Options {
		if o.Name == value || o.SerializationName == value {
			return o, true
		}
	}
	return EnumOption{}, false
}

// Property is a member of a Class.
type Property struct {
	Name              string
	SerializationName string
	Kind              PropertyKind
	Type              Type
	DefaultValue      string
	ReadOnly          bool
	Access            Access
	Documentation     Documentation

	// ExistsInBaseType marks properties the base class already handles.
	ExistsInBaseType bool

	// OriginalPropertyFromBaseType is a non-owning back-reference.
	OriginalPropertyFromBaseType *Property

	Parent *Class
}

// WireName returns the serialized key of the property.
func (p *Property) WireName() string {
	if p.SerializationName != "" {
		return p.SerializationName
	}
	return LowerFirst(p.Name)
}

// QualifiedName returns the owning class name plus the property name.
func (p *Property) QualifiedName() string {
	if p.Parent == nil {
		return p.Name
	}
	return p.Parent.QualifiedName() + "." + p.Name
}

// Parameter is a Method parameter.
type Parameter struct {
	Name              string
	SerializationName string
	Kind              ParameterKind
	Type              Type
	Optional          bool
	DefaultValue      string
	Documentation     Documentation

	// PossibleValues lists the accepted values, e.g. content types.
	PossibleValues []string
}

// WireName returns the serialization name, falling back to the name.
func (p *Parameter) WireName() string {
	if p.SerializationName != "" {
		return p.SerializationName
	}
	return p.Name
}

// ErrorMapping maps a status code pattern to an error type.
type ErrorMapping struct {
	// Code is a status code or pattern such as "4XX".
	Code string
	Type *TypeRef
}

// PagingInformation describes a pageable response.
type PagingInformation struct {
	ItemName      string
	NextLinkName  string
	OperationName string
}

// Method is a member function of a Class.
type Method struct {
	Name          string
	Kind          MethodKind
	ReturnType    Type
	Parameters    []*Parameter
	Access        Access
	Documentation Documentation

	// HTTPMethod is required for request generators and executors.
	HTTPMethod HTTPMethod

	ErrorMappings          []ErrorMapping
	AcceptedResponseTypes  []string
	RequestBodyContentType string
	Paging                 *PagingInformation

	// CommandBuilder discriminators. At most one is set.
	OriginalMethod   *Method
	OriginalIndexer  *Indexer
	AccessedProperty *Property

	// ClientConstructor settings.
	BaseURL             string
	SerializerModules   []string
	DeserializerModules []string

	Parent *Class
}

// SimpleName returns the name without a leading "Build" and trailing
// "Command", as used for command names.
func (m *Method) SimpleName() string {
	name := m.Name
	if m.Kind == MethodCommandBuilder {
		name = strings.TrimPrefix(name, "Build")
		name = strings.TrimSuffix(name, "Command")
	}
	return name
}

// QualifiedName returns the owning class name plus the method name.
func (m *Method) QualifiedName() string {
	if m.Parent == nil {
		return m.Name
	}
	return m.Parent.QualifiedName() + "." + m.Name
}

// AddParameter appends p and returns it.
func (m *Method) AddParameter(p *Parameter) *Parameter {
	m.Parameters = append(m.Parameters, p)
	return p
}

// ParameterOfKind returns the first parameter with the given kind, or nil.
func (m *Method) ParameterOfKind(kind ParameterKind) *Parameter {
	for _, p := range m.Parameters {
		if p.Kind == kind {
			return p
		}
	}
	return nil
}

// ParametersOfKind returns the parameters with any of the given kinds, in
// declaration order.
func (m *Method) ParametersOfKind(kinds ...ParameterKind) []*Parameter {
	var out []*Parameter
	for _, p := range m.Parameters {
		for _, k := range kinds {
			if p.Kind == k {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// Signature returns the parameters a target declares for m. Request
// generators and executors reach path, query and header values through
// the path parameters and the request configuration, so those parameters
// only describe the URL and are left out.
func (m *Method) Signature() []*Parameter {
	if m.Kind != MethodRequestGenerator && m.Kind != MethodRequestExecutor {
		return m.Parameters
	}
	var out []*Parameter
	for _, p := range m.Parameters {
		switch p.Kind {
		case ParamPath, ParamQueryParameter, ParamHeaders:
		default:
			out = append(out, p)
		}
	}
	return out
}

// ReturnRef returns the scalar return type, or nil.
func (m *Method) ReturnRef() *TypeRef {
	if m.ReturnType == nil {
		return nil
	}
	return AsRef(m.ReturnType)
}

// Indexer exposes item access on a request builder.
type Indexer struct {
	Name              string
	IndexType         *TypeRef
	ReturnType        *TypeRef
	SerializationName string

	// ParameterName is the name of the index argument.
	ParameterName string
	Documentation Documentation

	Parent *Class
}

// TargetClass returns the builder class the indexer returns, or nil.
func (x *Indexer) TargetClass() *Class {
	if x.ReturnType == nil {
		return nil
	}
	return x.ReturnType.Class()
}

// LowerFirst returns s with its first rune lower-cased.
func LowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
