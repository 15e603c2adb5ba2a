package irdoc

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"

	"github.com/broady/apigen/ir"
)

// Document is a loaded element graph.
type Document struct {
	Root *ir.Namespace

	// Hash is the hex SHA-256 of the source bytes.
	Hash string
}

// Load decodes the document at path.
func Load(path string) (*Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read IR document")
	}
	doc, err := DecodeBytes(b)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return doc, nil
}

// Decode reads a document from r.
func Decode(r io.Reader) (*Document, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read IR document")
	}
	return DecodeBytes(b)
}

// DecodeBytes decodes a YAML or JSON document.
func DecodeBytes(b []byte) (*Document, error) {
	var top namespaceDoc
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&top); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty IR document")
		}
		return nil, errors.Wrap(err, "parse IR document")
	}
	if strings.TrimSpace(top.Name) == "" {
		return nil, errors.New("root namespace has no name")
	}

	d := &decoder{
		root:  ir.NewNamespace(top.Name),
		names: make(map[string]ir.Definition),
		short: make(map[string][]ir.Definition),
	}
	d.declare(&top, d.root)
	for _, p := range d.pending {
		if err := d.fill(p.doc, p.class); err != nil {
			return nil, errors.Wrapf(err, "class %s", p.class.QualifiedName())
		}
	}
	sum := sha256.Sum256(b)
	return &Document{Root: d.root, Hash: hex.EncodeToString(sum[:])}, nil
}

type pendingClass struct {
	doc   *classDoc
	class *ir.Class
}

type decoder struct {
	root    *ir.Namespace
	names   map[string]ir.Definition
	short   map[string][]ir.Definition
	pending []pendingClass
}

func documentation(t text) ir.Documentation {
	return ir.Documentation{Description: t.Description, Link: t.Link, LinkLabel: t.LinkLabel}
}

// declare creates every namespace, enum and class so types can refer to
// any of them regardless of order.
func (d *decoder) declare(doc *namespaceDoc, ns *ir.Namespace) {
	for i := range doc.Enums {
		e := &doc.Enums[i]
		en := &ir.Enum{Name: e.Name, Flags: e.Flags, Documentation: documentation(e.text)}
		for _, o := range e.Options {
			en.Options = append(en.Options, ir.EnumOption{
				Name:              o.Name,
				SerializationName: o.SerializationName,
				Documentation:     documentation(o.text),
			})
		}
		d.register(ns.AddEnum(en))
	}
	for i := range doc.Classes {
		c := &doc.Classes[i]
		cls := ns.AddClass(&ir.Class{Name: c.Name, Documentation: documentation(c.text)})
		d.register(cls)
		d.pending = append(d.pending, pendingClass{doc: c, class: cls})
	}
	for i := range doc.Namespaces {
		child := &doc.Namespaces[i]
		d.declare(child, ns.AddNamespace(child.Name))
	}
}

func (d *decoder) register(def ir.Definition) {
	qualified := def.DeclaringNamespace().Name + "." + def.DefinitionName()
	d.names[qualified] = def
	d.short[def.DefinitionName()] = append(d.short[def.DefinitionName()], def)
}

// lookup resolves name to a declared element, or nil for primitives.
func (d *decoder) lookup(name string, from *ir.Namespace) (ir.Definition, error) {
	candidates := []string{name, d.root.Name + "." + name}
	if from != nil && from != d.root {
		candidates = append(candidates, from.Name+"."+name)
	}
	for _, c := range candidates {
		if def, ok := d.names[c]; ok {
			return def, nil
		}
	}
	switch defs := d.short[name]; len(defs) {
	case 0:
		return nil, nil
	case 1:
		return defs[0], nil
	default:
		return nil, errors.Newf("ambiguous type name %q: qualify it with its namespace", name)
	}
}

func (d *decoder) ref(t typeDoc, from *ir.Namespace) (*ir.TypeRef, error) {
	if len(t.Union) > 0 || len(t.Intersection) > 0 {
		return nil, errors.Newf("composed type is not allowed here")
	}
	if t.Name == "" {
		return nil, errors.New("type has no name")
	}
	def, err := d.lookup(t.Name, from)
	if err != nil {
		return nil, err
	}
	var ref *ir.TypeRef
	switch lower := strings.ToLower(t.Name); {
	case def != nil:
		ref = ir.Ref(def)
	case primitives[lower]:
		ref = ir.Primitive(lower)
	default:
		// Runtime type names such as RequestAdapter keep their spelling.
		ref = ir.Primitive(t.Name)
	}
	ref.Nullable = t.Nullable
	switch t.Collection {
	case "":
	case "list":
		ref.Collection = ir.CollectionList
	case "array":
		ref.Collection = ir.CollectionArray
	default:
		return nil, errors.Newf("type %s: unknown collection %q", t.Name, t.Collection)
	}
	return ref, nil
}

func (d *decoder) typ(t typeDoc, from *ir.Namespace) (ir.Type, error) {
	members := t.Union
	if len(members) == 0 {
		members = t.Intersection
	}
	if len(members) == 0 {
		return d.ref(t, from)
	}
	types := make([]ir.Type, 0, len(members))
	for _, m := range members {
		mt, err := d.typ(m, from)
		if err != nil {
			return nil, err
		}
		types = append(types, mt)
	}
	if len(t.Union) > 0 {
		return &ir.UnionType{Name: t.Name, Types: types, Nullable: t.Nullable}, nil
	}
	return &ir.IntersectionType{Name: t.Name, Types: types, Nullable: t.Nullable}, nil
}

func (d *decoder) optionalType(t *typeDoc, from *ir.Namespace) (ir.Type, error) {
	if t == nil {
		return nil, nil
	}
	return d.typ(*t, from)
}

func (d *decoder) fill(doc *classDoc, c *ir.Class) error {
	ns := c.Namespace
	var err error
	if c.Kind, err = classKind(doc.Kind); err != nil {
		return err
	}
	if doc.Inherits != nil {
		if c.Inherits, err = d.ref(*doc.Inherits, ns); err != nil {
			return errors.Wrap(err, "inherits")
		}
	}
	for _, t := range doc.Implements {
		ref, err := d.ref(t, ns)
		if err != nil {
			return errors.Wrap(err, "implements")
		}
		c.Implements = append(c.Implements, ref)
	}
	if doc.Discriminator != nil {
		c.Discriminator.PropertyName = doc.Discriminator.Property
		for _, m := range doc.Discriminator.Mappings {
			ref, err := d.ref(m.Type, ns)
			if err != nil {
				return errors.Wrapf(err, "discriminator mapping %q", m.Key)
			}
			c.Discriminator.Mappings = append(c.Discriminator.Mappings, ir.DiscriminatorMapping{Key: m.Key, Type: ref})
		}
	}

	for _, pd := range doc.Properties {
		p, err := d.property(pd, ns)
		if err != nil {
			return errors.Wrapf(err, "property %s", pd.Name)
		}
		c.AddProperty(p)
	}
	for _, xd := range doc.Indexers {
		idx, err := d.ref(xd.IndexType, ns)
		if err != nil {
			return errors.Wrapf(err, "indexer %s", xd.Name)
		}
		ret, err := d.ref(xd.ReturnType, ns)
		if err != nil {
			return errors.Wrapf(err, "indexer %s", xd.Name)
		}
		c.AddIndexer(&ir.Indexer{
			Name:              xd.Name,
			IndexType:         idx,
			ReturnType:        ret,
			SerializationName: xd.SerializationName,
			ParameterName:     xd.ParameterName,
			Documentation:     documentation(xd.text),
		})
	}
	for i := range doc.Methods {
		m, err := d.method(&doc.Methods[i], ns)
		if err != nil {
			return errors.Wrapf(err, "method %s", doc.Methods[i].Name)
		}
		c.AddMethod(m)
	}
	// Member links may point forward, so they resolve once every member
	// exists.
	for i, md := range doc.Methods {
		if err := link(c, c.Methods[i], &md); err != nil {
			return errors.Wrapf(err, "method %s", md.Name)
		}
	}
	return nil
}

func (d *decoder) property(pd propertyDoc, ns *ir.Namespace) (*ir.Property, error) {
	kind, err := propertyKind(pd.Kind)
	if err != nil {
		return nil, err
	}
	access, err := accessLevel(pd.Access)
	if err != nil {
		return nil, err
	}
	t, err := d.typ(pd.Type, ns)
	if err != nil {
		return nil, err
	}
	return &ir.Property{
		Name:              pd.Name,
		SerializationName: pd.SerializationName,
		Kind:              kind,
		Type:              t,
		DefaultValue:      pd.Default,
		ReadOnly:          pd.ReadOnly,
		Access:            access,
		ExistsInBaseType:  pd.ExistsInBaseType,
		Documentation:     documentation(pd.text),
	}, nil
}

func (d *decoder) method(md *methodDoc, ns *ir.Namespace) (*ir.Method, error) {
	kind, err := methodKind(md.Kind)
	if err != nil {
		return nil, err
	}
	access, err := accessLevel(md.Access)
	if err != nil {
		return nil, err
	}
	ret, err := d.optionalType(md.ReturnType, ns)
	if err != nil {
		return nil, errors.Wrap(err, "return type")
	}
	m := &ir.Method{
		Name:                   md.Name,
		Kind:                   kind,
		ReturnType:             ret,
		Access:                 access,
		Documentation:          documentation(md.text),
		HTTPMethod:             ir.HTTPMethod(strings.ToUpper(md.HTTPMethod)),
		AcceptedResponseTypes:  md.AcceptedResponseTypes,
		RequestBodyContentType: md.RequestBodyContentType,
		BaseURL:                md.BaseURL,
		SerializerModules:      md.SerializerModules,
		DeserializerModules:    md.DeserializerModules,
	}
	if md.Paging != nil {
		m.Paging = &ir.PagingInformation{
			ItemName:      md.Paging.ItemName,
			NextLinkName:  md.Paging.NextLinkName,
			OperationName: md.Paging.OperationName,
		}
	}
	for _, em := range md.ErrorMappings {
		ref, err := d.ref(em.Type, ns)
		if err != nil {
			return nil, errors.Wrapf(err, "error mapping %s", em.Code)
		}
		m.ErrorMappings = append(m.ErrorMappings, ir.ErrorMapping{Code: em.Code, Type: ref})
	}
	for _, pd := range md.Parameters {
		pk, err := parameterKind(pd.Kind)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %s", pd.Name)
		}
		t, err := d.typ(pd.Type, ns)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %s", pd.Name)
		}
		m.AddParameter(&ir.Parameter{
			Name:              pd.Name,
			SerializationName: pd.SerializationName,
			Kind:              pk,
			Type:              t,
			Optional:          pd.Optional,
			DefaultValue:      pd.Default,
			PossibleValues:    pd.PossibleValues,
			Documentation:     documentation(pd.text),
		})
	}
	return m, nil
}

func link(c *ir.Class, m *ir.Method, md *methodDoc) error {
	if md.OriginalMethod != "" {
		m.OriginalMethod = c.FindMethod(func(o *ir.Method) bool {
			return o.Name == md.OriginalMethod && o.Kind != ir.MethodCommandBuilder
		})
		if m.OriginalMethod == nil {
			return errors.Newf("original method %q not found", md.OriginalMethod)
		}
	}
	if md.OriginalIndexer != "" {
		for _, x := range c.Indexers {
			if x.Name == md.OriginalIndexer {
				m.OriginalIndexer = x
			}
		}
		if m.OriginalIndexer == nil {
			return errors.Newf("original indexer %q not found", md.OriginalIndexer)
		}
	}
	if md.AccessedProperty != "" {
		for _, p := range c.Properties {
			if p.Name == md.AccessedProperty {
				m.AccessedProperty = p
			}
		}
		if m.AccessedProperty == nil {
			return errors.Newf("accessed property %q not found", md.AccessedProperty)
		}
	}
	return nil
}

var primitives = map[string]bool{
	ir.String: true, ir.Boolean: true, ir.Integer: true, ir.Int64: true,
	ir.Float: true, ir.Double: true, ir.Decimal: true, ir.GUID: true,
	ir.DateTimeOffset: true, ir.DateOnly: true, ir.TimeOnly: true,
	ir.Duration: true, ir.Byte: true, ir.SByte: true, ir.Binary: true,
	ir.Base64: true, ir.Stream: true, ir.Void: true, ir.UntypedNode: true,
}

// kindTable maps the snake case form of every String() value of a kind
// enumeration to the kind.
func kindTable[K interface {
	~int
	String() string
}]() map[string]K {
	out := make(map[string]K)
	for k := K(0); k.String() != "Unknown"; k++ {
		out[strcase.ToSnake(k.String())] = k
	}
	return out
}

var (
	classKinds     = kindTable[ir.ClassKind]()
	propertyKinds  = kindTable[ir.PropertyKind]()
	parameterKinds = kindTable[ir.ParameterKind]()
	methodKinds    = kindTable[ir.MethodKind]()
)

func lookupKind[K any](table map[string]K, what, s string) (K, error) {
	k, ok := table[strcase.ToSnake(strings.TrimSpace(s))]
	if !ok {
		var zero K
		return zero, errors.Newf("unknown %s kind %q", what, s)
	}
	return k, nil
}

func classKind(s string) (ir.ClassKind, error) {
	if s == "" {
		return ir.ClassModel, nil
	}
	return lookupKind(classKinds, "class", s)
}

func propertyKind(s string) (ir.PropertyKind, error) {
	if s == "" {
		return ir.PropertyCustom, nil
	}
	return lookupKind(propertyKinds, "property", s)
}

func parameterKind(s string) (ir.ParameterKind, error) {
	return lookupKind(parameterKinds, "parameter", s)
}

func methodKind(s string) (ir.MethodKind, error) {
	return lookupKind(methodKinds, "method", s)
}

func accessLevel(s string) (ir.Access, error) {
	switch strings.ToLower(s) {
	case "", "public":
		return ir.AccessPublic, nil
	case "protected":
		return ir.AccessProtected, nil
	case "private":
		return ir.AccessPrivate, nil
	}
	return 0, errors.Newf("unknown access %q", s)
}
