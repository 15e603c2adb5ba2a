package synth

import (
	"sort"

	"github.com/broady/apigen/ir"
)

// defaultProperties returns the properties of c with a default value,
// ordered by kind descending, then name.
func defaultProperties(c *ir.Class) []*ir.Property {
	var out []*ir.Property
	for _, p := range c.Properties {
		if p.DefaultValue != "" {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind > out[j].Kind
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func synthesizeConstructor(c *Context, m *ir.Method) (*Body, error) {
	cls := m.Parent
	b := newBody(m)

	for _, p := range defaultProperties(cls) {
		op := &AssignDefault{Property: p, Value: p.DefaultValue}
		if ref := ir.AsRef(p.Type); ref != nil {
			if e := ref.Enum(); e != nil {
				if opt, ok := e.Option(p.DefaultValue); ok {
					op.Enum = e
					op.Value = opt.Name
				}
			}
		}
		b.add(op)
	}

	pathProp := cls.PropertyOfKind(ir.PropertyPathParameters)
	if cls.Kind == ir.ClassRequestBuilder && pathProp != nil {
		switch m.Kind {
		case ir.MethodConstructor:
			src := m.ParameterOfKind(ir.ParamPathParameters)
			entries := pathEntries(m)
			if src != nil || len(entries) > 0 {
				b.add(&SeedPathParameters{Property: pathProp, Source: src, Entries: entries})
			}
		case ir.MethodRawUrlConstructor:
			if raw := m.ParameterOfKind(ir.ParamRawUrl); raw != nil {
				b.add(&SeedRawURL{Property: pathProp, Parameter: raw, Key: RawURLKey})
			}
		}
	}

	adapterProp := cls.PropertyOfKind(ir.PropertyRequestAdapter)
	if adapterParam := m.ParameterOfKind(ir.ParamRequestAdapter); adapterParam != nil && adapterProp != nil {
		b.add(&ForwardParameter{Property: adapterProp, Parameter: adapterParam})
	}

	if m.Kind == ir.MethodClientConstructor {
		synthesizeClientSetup(c, m, b, adapterProp, pathProp)
	}
	return b, nil
}

func synthesizeClientSetup(c *Context, m *ir.Method, b *Body, adapter, pathProp *ir.Property) {
	serializers := m.SerializerModules
	if len(serializers) == 0 {
		serializers = c.Options.Serializers
	}
	for _, mod := range serializers {
		b.add(&RegisterSerializer{Module: mod})
	}
	deserializers := m.DeserializerModules
	if len(deserializers) == 0 {
		deserializers = c.Options.Deserializers
	}
	for _, mod := range deserializers {
		b.add(&RegisterDeserializer{Module: mod})
	}
	if adapter == nil {
		return
	}
	if m.BaseURL != "" {
		b.add(&SetBaseURL{Adapter: adapter, URL: m.BaseURL})
	}
	if pathProp != nil {
		b.add(&AddBaseURLParameter{Property: pathProp, Adapter: adapter})
	}
	if store := m.ParameterOfKind(ir.ParamBackingStore); store != nil {
		b.add(&EnableBackingStore{Adapter: adapter, Parameter: store})
	}
	if r := c.Options.Retry; r.DelaySeconds != 0 || r.MaxRetries != 0 {
		b.add(&ConfigureRetry{Adapter: adapter, DelaySeconds: r.DelaySeconds, MaxRetries: r.MaxRetries})
	}
	if r := c.Options.Redirect; r.MaxRedirects != 0 {
		b.add(&ConfigureRedirect{Adapter: adapter, MaxRedirects: r.MaxRedirects})
	}
}

// pathEntries returns one entry per Path parameter of m, keyed by its
// serialization name or, failing that, its name.
func pathEntries(m *ir.Method) []PathEntry {
	var out []PathEntry
	for _, p := range m.ParametersOfKind(ir.ParamPath) {
		out = append(out, PathEntry{Key: p.WireName(), Parameter: p})
	}
	return out
}

func synthesizeFactory(c *Context, m *ir.Method) (*Body, error) {
	cls := m.Parent
	b := newBody(m)
	parseNode := m.ParameterOfKind(ir.ParamParseNode)
	if cls.Discriminator.IsZero() || parseNode == nil {
		b.add(&Construct{Type: cls})
		return b, nil
	}

	sw := &DiscriminatorSwitch{Default: cls}
	for _, mapping := range cls.Discriminator.Mappings {
		var target *ir.Class
		if mapping.Type != nil {
			target = mapping.Type.Class()
		}
		if target == nil {
			return nil, &ir.StructuralError{
				Code:    ir.CodeUnreachableDiscriminator,
				Element: cls.QualifiedName(),
				Message: "discriminator mapping \"" + mapping.Key + "\" does not target a class",
			}
		}
		sw.Cases = append(sw.Cases, DiscriminatorCase{Key: mapping.Key, Type: target})
	}
	b.add(&ReadDiscriminator{ParseNode: parseNode, PropertyName: cls.Discriminator.PropertyName}, sw)
	return b, nil
}

func synthesizeBuilderWithParameters(c *Context, m *ir.Method) (*Body, error) {
	ref := m.ReturnRef()
	if ref == nil || ref.Class() == nil {
		return nil, &ir.StructuralError{Code: ir.CodeMissingReturnType, Element: m.QualifiedName(), Message: "method does not return a request builder"}
	}
	b := newBody(m)
	b.add(&ConstructBuilder{
		Target:         ref,
		PathParameters: m.Parent.PropertyOfKind(ir.PropertyPathParameters),
		Adapter:        m.Parent.PropertyOfKind(ir.PropertyRequestAdapter),
		Extra:          pathEntries(m),
	})
	return b, nil
}

func synthesizeIndexerBackwardCompatibility(c *Context, m *ir.Method) (*Body, error) {
	x := m.OriginalIndexer
	if x == nil {
		var err error
		if x, err = m.Parent.Indexer(); err != nil {
			return nil, err
		}
	}
	if x == nil || x.TargetClass() == nil {
		return nil, &ir.StructuralError{Code: ir.CodeMissingReturnType, Element: m.QualifiedName(), Message: "indexer does not return a request builder"}
	}
	id := m.ParameterOfKind(ir.ParamPath)
	if id == nil {
		return nil, &ir.StructuralError{Code: ir.CodeMissingIndexParameter, Element: m.QualifiedName(), Message: "indexer method has no Path parameter"}
	}
	key := x.SerializationName
	if key == "" {
		key = id.WireName()
	}
	b := newBody(m)
	b.add(&ConstructBuilder{
		Target:         x.ReturnType,
		PathParameters: m.Parent.PropertyOfKind(ir.PropertyPathParameters),
		Adapter:        m.Parent.PropertyOfKind(ir.PropertyRequestAdapter),
		Extra:          []PathEntry{{Key: key, Parameter: id}},
	})
	return b, nil
}

func accessedProperty(m *ir.Method) (*ir.Property, error) {
	if m.AccessedProperty == nil {
		return nil, &ir.StructuralError{Code: ir.CodeMissingAccessedProperty, Element: m.QualifiedName(), Message: m.Kind.String() + " method has no accessed property"}
	}
	return m.AccessedProperty, nil
}

func backingStore(c *Context, cls *ir.Class) *ir.Property {
	if !c.Options.UsesBackingStore {
		return nil
	}
	return cls.PropertyOfKind(ir.PropertyBackingStore)
}

func synthesizeGetter(c *Context, m *ir.Method) (*Body, error) {
	prop, err := accessedProperty(m)
	if err != nil {
		return nil, err
	}
	b := newBody(m)
	b.add(&ReadProperty{Property: prop, BackingStore: backingStore(c, m.Parent), Key: ir.LowerFirst(prop.Name)})
	return b, nil
}

func synthesizeSetter(c *Context, m *ir.Method) (*Body, error) {
	prop, err := accessedProperty(m)
	if err != nil {
		return nil, err
	}
	value := m.ParameterOfKind(ir.ParamSetterValue)
	if value == nil && len(m.Parameters) > 0 {
		value = m.Parameters[0]
	}
	if value == nil {
		return nil, &ir.StructuralError{Code: ir.CodeMissingAccessedProperty, Element: m.QualifiedName(), Message: "setter has no value parameter"}
	}
	b := newBody(m)
	b.add(&WriteProperty{Property: prop, Value: value, BackingStore: backingStore(c, m.Parent), Key: ir.LowerFirst(prop.Name)})
	return b, nil
}

func synthesizeQueryParametersMapper(c *Context, m *ir.Method) (*Body, error) {
	input := m.ParameterOfKind(ir.ParamQueryParametersMapper)
	if input == nil {
		return nil, &ir.StructuralError{Code: ir.CodeMissingMapperParameter, Element: m.QualifiedName(), Message: "query parameters mapper has no input parameter"}
	}
	op := &MapQueryName{Input: input}
	for _, p := range m.Parent.Properties {
		if p.Kind != ir.PropertyQueryParameter || p.SerializationName == "" || p.SerializationName == p.Name {
			continue
		}
		op.Cases = append(op.Cases, QueryNameCase{Name: p.Name, SerializationName: p.SerializationName})
	}
	b := newBody(m)
	b.add(op)
	return b, nil
}
