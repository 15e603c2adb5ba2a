package convention

import (
	"sort"

	"github.com/broady/apigen/ir"
)

// Scope resolves symbol collisions within one emission unit. The first
// declared type to claim a translated name keeps the short form; a distinct
// type translating to the same name is qualified by its namespace.
//
// A Scope is not safe for concurrent use; emitters create one per unit.
type Scope struct {
	policy  *Policy
	bound   map[string]ir.Definition
	imports map[*ir.Namespace]bool
}

// NewScope returns an empty scope bound to the policy.
func (p *Policy) NewScope() *Scope {
	return &Scope{
		policy:  p,
		bound:   make(map[string]ir.Definition),
		imports: make(map[*ir.Namespace]bool),
	}
}

// Policy returns the policy the scope was created from.
func (s *Scope) Policy() *Policy { return s.policy }

// Name returns the name to use for def when referenced from namespace from.
func (s *Scope) Name(def ir.Definition, from *ir.Namespace) string {
	short := s.policy.TypeName(def)
	ns := def.DeclaringNamespace()
	foreign := ns != nil && ns != from

	if foreign && s.policy.qualifyForeign {
		s.imports[ns] = true
		return s.policy.qualify(ns.Name, short)
	}

	owner, taken := s.bound[short]
	if !taken {
		s.bound[short] = def
		owner = def
	}
	if owner != def {
		if ns == nil {
			return short
		}
		return s.policy.qualify(ns.Name, short)
	}
	if foreign {
		s.imports[ns] = true
	}
	return short
}

// Translate returns the target type name for t referenced from namespace
// from, qualifying colliding names.
func (s *Scope) Translate(t ir.Type, from *ir.Namespace) (string, error) {
	return s.policy.translate(t, s, from)
}

// Imports returns the foreign namespaces referenced by short name or, on
// targets that always qualify, by package, ordered by name.
func (s *Scope) Imports() []*ir.Namespace {
	out := make([]*ir.Namespace, 0, len(s.imports))
	for ns := range s.imports {
		out = append(out, ns)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
