package synth

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/broady/apigen/ir"
)

// ResolveFactory evaluates a factory body against a discriminator value.
// A nil value means the discriminator node is absent.
func ResolveFactory(b *Body, value *string) (*ir.Class, error) {
	for _, op := range b.Ops {
		switch op := op.(type) {
		case *Construct:
			return op.Type, nil
		case *DiscriminatorSwitch:
			if value == nil {
				return op.Default, nil
			}
			for _, c := range op.Cases {
				if c.Key == *value {
					return c.Type, nil
				}
			}
			return op.Default, nil
		}
	}
	return nil, errors.Newf("synth: %s is not a factory body", b.Method.QualifiedName())
}

// MapQueryParameter evaluates a query parameters mapper body.
func MapQueryParameter(b *Body, name string) string {
	for _, op := range OpsOf[*MapQueryName](b) {
		for _, c := range op.Cases {
			if strings.EqualFold(c.Name, name) {
				return c.SerializationName
			}
		}
	}
	return name
}

// WrittenKeys returns the keys a serializer body writes, in order.
func WrittenKeys(b *Body) []string {
	var keys []string
	for _, op := range OpsOf[*WriteValue](b) {
		keys = append(keys, op.Key)
	}
	return keys
}

// ReadKeys returns the keys a deserializer body maps, in order.
func ReadKeys(b *Body) []string {
	var keys []string
	for _, op := range OpsOf[*FieldMap](b) {
		for _, e := range op.Entries {
			keys = append(keys, e.Key)
		}
	}
	return keys
}
