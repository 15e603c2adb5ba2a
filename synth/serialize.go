package synth

import (
	"sort"

	"github.com/broady/apigen/ir"
)

// ResolveVariant selects the value variant for t. Serializer and
// deserializer synthesis share it so reads mirror writes.
func ResolveVariant(c *Context, t ir.Type) (ValueVariant, error) {
	ref := ir.AsRef(t)
	if ref == nil {
		if c.Policy.NativeComposedTypes {
			return ValueComposed, nil
		}
		return 0, ir.NewUnsupportedConstruct(c.Policy.Target(), t)
	}
	collection := ref.IsCollection()
	switch {
	case ref.Enum() != nil && collection:
		return ValueCollectionOfEnum, nil
	case ref.Enum() != nil:
		return ValueEnum, nil
	case ref.Class() != nil && collection:
		return ValueCollectionOfObject, nil
	case ref.Class() != nil:
		return ValueObject, nil
	case collection:
		return ValueCollectionOfPrimitive, nil
	case ref.IsByteArray():
		return ValueByteArray, nil
	default:
		return ValuePrimitive, nil
	}
}

// ownCustomProperties returns the custom properties c declares itself,
// ordered by name.
func ownCustomProperties(c *ir.Class, includeReadOnly bool) []*ir.Property {
	var out []*ir.Property
	for _, p := range c.Properties {
		if p.Kind != ir.PropertyCustom || p.ExistsInBaseType {
			continue
		}
		if p.ReadOnly && !includeReadOnly {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func synthesizeSerializer(c *Context, m *ir.Method) (*Body, error) {
	cls := m.Parent
	b := newBody(m)
	if base := cls.BaseClass(); base != nil {
		b.add(&CallBaseSerializer{Base: base})
	}
	for _, p := range ownCustomProperties(cls, false) {
		v, err := ResolveVariant(c, p.Type)
		if err != nil {
			return nil, err
		}
		b.add(&WriteValue{Key: p.WireName(), Property: p, Variant: v})
	}
	if ad := cls.PropertyOfKind(ir.PropertyAdditionalData); ad != nil {
		b.add(&WriteAdditionalData{Property: ad})
	}
	return b, nil
}

func synthesizeDeserializer(c *Context, m *ir.Method) (*Body, error) {
	cls := m.Parent
	b := newBody(m)
	fm := &FieldMap{Base: cls.BaseClass()}
	for _, p := range ownCustomProperties(cls, true) {
		v, err := ResolveVariant(c, p.Type)
		if err != nil {
			return nil, err
		}
		fm.Entries = append(fm.Entries, FieldEntry{Key: p.WireName(), Property: p, Variant: v})
	}
	b.add(fm)
	return b, nil
}
