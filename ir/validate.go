package ir

import "strings"

// Validate checks the graph rooted at root for structural issues.
// Returns all validation errors found (not just the first).
func Validate(root *Namespace) []error {
	var errs []error

	reachable := make(map[*Class]bool)
	for _, c := range root.AllClasses() {
		reachable[c] = true
	}

	for _, c := range root.AllClasses() {
		if _, err := c.Indexer(); err != nil {
			errs = append(errs, err)
		}
		errs = append(errs, validateDiscriminator(c, reachable)...)
		for _, p := range c.Properties {
			if err := validateProperty(c, p); err != nil {
				errs = append(errs, err)
			}
		}
		for _, m := range c.Methods {
			errs = append(errs, validateMethod(c, m)...)
		}
	}
	return errs
}

func validateDiscriminator(c *Class, reachable map[*Class]bool) []error {
	var errs []error
	seen := make(map[string]bool)
	for _, mapping := range c.Discriminator.Mappings {
		if seen[mapping.Key] {
			errs = append(errs, &StructuralError{
				Code:    CodeDuplicateDiscriminator,
				Element: c.QualifiedName(),
				Message: "duplicate discriminator mapping key " + quote(mapping.Key),
			})
		}
		seen[mapping.Key] = true

		var target *Class
		if mapping.Type != nil {
			target = mapping.Type.Class()
		}
		if target == nil || !reachable[target] {
			name := "<nil>"
			if mapping.Type != nil {
				name = mapping.Type.String()
			}
			errs = append(errs, &StructuralError{
				Code:    CodeUnreachableDiscriminator,
				Element: c.QualifiedName(),
				Message: "discriminator mapping " + quote(mapping.Key) + " targets " + name + ", which is not a class in this graph",
			})
		}
	}
	return errs
}

func validateProperty(c *Class, p *Property) error {
	var want []ClassKind
	switch p.Kind {
	case PropertyQueryParameter:
		want = []ClassKind{ClassQueryParameters}
	case PropertyPathParameters, PropertyUrlTemplate, PropertyRequestAdapter:
		want = []ClassKind{ClassRequestBuilder}
	case PropertyHeaders, PropertyOptions, PropertyQueryParameters:
		want = []ClassKind{ClassRequestConfiguration}
	default:
		return nil
	}
	if hasKind(c.Kind, want) {
		return nil
	}
	return &StructuralError{
		Code:    CodeWrongParentKind,
		Element: p.QualifiedName(),
		Message: p.Kind.String() + " property declared on " + c.Kind.String() + " class, want " + kindList(want),
	}
}

func validateMethod(c *Class, m *Method) []error {
	var errs []error
	name := c.QualifiedName() + "." + m.Name

	if m.Parent != c {
		errs = append(errs, &StructuralError{
			Code:    CodeMissingParent,
			Element: name,
			Message: "method parent does not point at its declaring class",
		})
	}

	if m.ReturnType == nil && !m.Kind.IsConstructor() {
		errs = append(errs, &StructuralError{
			Code:    CodeMissingReturnType,
			Element: name,
			Message: m.Kind.String() + " method has no return type",
		})
	}

	if want := parentKindsFor(m.Kind); want != nil && !hasKind(c.Kind, want) {
		errs = append(errs, &StructuralError{
			Code:    CodeWrongParentKind,
			Element: name,
			Message: m.Kind.String() + " method declared on " + c.Kind.String() + " class, want " + kindList(want),
		})
	}

	switch m.Kind {
	case MethodRequestGenerator:
		if m.HTTPMethod == "" {
			errs = append(errs, missingHTTPMethod(name, m))
		}
	case MethodRequestExecutor:
		if m.HTTPMethod == "" {
			errs = append(errs, missingHTTPMethod(name, m))
			break
		}
		if _, err := FindGenerator(m); err != nil {
			errs = append(errs, err)
		}
	case MethodCommandBuilder:
		set := 0
		if m.OriginalIndexer != nil {
			set++
		}
		if m.AccessedProperty != nil {
			set++
		}
		if m.OriginalMethod != nil && m.OriginalMethod.Kind == MethodClientConstructor {
			set++
		}
		if set > 1 {
			errs = append(errs, &StructuralError{
				Code:    CodeAmbiguousCommandSource,
				Element: name,
				Message: "command builder sets more than one of OriginalMethod, OriginalIndexer and AccessedProperty",
			})
		}
	case MethodQueryParametersMapper:
		if m.ParameterOfKind(ParamQueryParametersMapper) == nil {
			errs = append(errs, &StructuralError{
				Code:    CodeMissingMapperParameter,
				Element: name,
				Message: "query parameters mapper has no " + ParamQueryParametersMapper.String() + " parameter",
			})
		}
	}
	return errs
}

// FindGenerator returns the RequestGenerator sibling of the executor m,
// matched by parent class and HTTP method.
func FindGenerator(m *Method) (*Method, error) {
	name := m.QualifiedName()
	if m.Parent == nil {
		return nil, &StructuralError{Code: CodeMissingParent, Element: name, Message: "method has no parent class"}
	}
	if m.HTTPMethod == "" {
		return nil, missingHTTPMethod(name, m)
	}
	var found []*Method
	for _, sibling := range m.Parent.Methods {
		if sibling.Kind == MethodRequestGenerator && sibling.HTTPMethod == m.HTTPMethod {
			found = append(found, sibling)
		}
	}
	switch len(found) {
	case 0:
		return nil, &StructuralError{
			Code:    CodeMissingGenerator,
			Element: name,
			Message: "no " + MethodRequestGenerator.String() + " sibling for " + string(m.HTTPMethod),
		}
	case 1:
		return found[0], nil
	default:
		return nil, &StructuralError{
			Code:    CodeDuplicateGenerator,
			Element: name,
			Message: "more than one " + MethodRequestGenerator.String() + " sibling for " + string(m.HTTPMethod),
		}
	}
}

func missingHTTPMethod(name string, m *Method) error {
	return &StructuralError{
		Code:    CodeMissingHTTPMethod,
		Element: name,
		Message: m.Kind.String() + " method has no HTTP method",
	}
}

func parentKindsFor(k MethodKind) []ClassKind {
	switch k {
	case MethodRequestGenerator, MethodRequestExecutor, MethodClientConstructor, MethodRawUrlConstructor,
		MethodRequestBuilderWithParameters, MethodCommandBuilder, MethodIndexerBackwardCompatibility:
		return []ClassKind{ClassRequestBuilder}
	case MethodSerializer, MethodDeserializer, MethodFactory:
		return []ClassKind{ClassModel, ClassErrorDefinition}
	case MethodQueryParametersMapper:
		return []ClassKind{ClassQueryParameters}
	default:
		return nil
	}
}

func hasKind(k ClassKind, kinds []ClassKind) bool {
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

func kindList(kinds []ClassKind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return strings.Join(names, " or ")
}

func quote(s string) string {
	return `"` + s + `"`
}
