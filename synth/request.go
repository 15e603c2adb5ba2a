package synth

import (
	"fmt"
	"strings"

	"github.com/broady/apigen/ir"
)

// ContentTypeError reports a request body with no content type to
// serialize it with.
type ContentTypeError struct {
	Method      string
	HTTPMethod  ir.HTTPMethod
	URLTemplate string
}

func (e *ContentTypeError) Error() string {
	return fmt.Sprintf("%s: no content type found when generating %s request for %s", e.Method, e.HTTPMethod, e.URLTemplate)
}

// URLTemplate returns the url template of cls, or "N/A".
func URLTemplate(cls *ir.Class) string {
	if cls != nil {
		if p := cls.PropertyOfKind(ir.PropertyUrlTemplate); p != nil && strings.TrimSpace(p.DefaultValue) != "" {
			return p.DefaultValue
		}
	}
	return "N/A"
}

// CheckContentType fails when generator m sends a non-stream body but
// declares neither a content type nor a content type parameter.
func CheckContentType(m *ir.Method) error {
	body := m.ParameterOfKind(ir.ParamRequestBody)
	if body == nil {
		return nil
	}
	if ref := ir.AsRef(body.Type); ref != nil && ref.IsStream() {
		return nil
	}
	if strings.TrimSpace(m.RequestBodyContentType) != "" || m.ParameterOfKind(ir.ParamRequestBodyContentType) != nil {
		return nil
	}
	return &ContentTypeError{
		Method:      m.QualifiedName(),
		HTTPMethod:  m.HTTPMethod,
		URLTemplate: URLTemplate(m.Parent),
	}
}

func synthesizeRequestGenerator(c *Context, m *ir.Method) (*Body, error) {
	if m.HTTPMethod == "" {
		return nil, missingHTTPMethod(m)
	}
	cls := m.Parent
	b := newBody(m)
	b.add(&NewRequestInfo{
		HTTPMethod:     m.HTTPMethod,
		URLTemplate:    cls.PropertyOfKind(ir.PropertyUrlTemplate),
		PathParameters: cls.PropertyOfKind(ir.PropertyPathParameters),
	})
	if len(m.AcceptedResponseTypes) > 0 {
		b.add(&AddHeader{Name: "Accept", Value: strings.Join(m.AcceptedResponseTypes, ", ")})
	}

	if body := m.ParameterOfKind(ir.ParamRequestBody); body != nil {
		if err := CheckContentType(m); err != nil {
			return nil, err
		}
		ctParam := m.ParameterOfKind(ir.ParamRequestBodyContentType)
		ref := ir.AsRef(body.Type)
		switch {
		case ref != nil && ref.IsStream():
			b.add(&SetStreamContent{Body: body, ContentType: m.RequestBodyContentType, ContentTypeParam: ctParam})
		case ref != nil && ref.Class() != nil:
			b.add(&SetStructuredContent{Body: body, Type: ref, ContentType: m.RequestBodyContentType, ContentTypeParam: ctParam})
		default:
			b.add(&SetScalarContent{Body: body, Type: body.Type, ContentType: m.RequestBodyContentType, ContentTypeParam: ctParam})
		}
	}

	if cfg := m.ParameterOfKind(ir.ParamRequestConfiguration); cfg != nil {
		op := &ConfigureRequest{Config: cfg}
		if ref := ir.AsRef(cfg.Type); ref != nil {
			op.Class = ref.Class()
		}
		if op.Class != nil {
			op.QueryParameters = op.Class.PropertyOfKind(ir.PropertyQueryParameters) != nil
			op.Options = op.Class.PropertyOfKind(ir.PropertyOptions) != nil
			op.Headers = op.Class.PropertyOfKind(ir.PropertyHeaders) != nil
		}
		b.add(op)
	}
	return b, nil
}

func synthesizeRequestExecutor(c *Context, m *ir.Method) (*Body, error) {
	gen, err := ir.FindGenerator(m)
	if err != nil {
		return nil, err
	}
	b := newBody(m)
	b.add(GeneratorCall(gen, m))

	if table := ErrorTable(m); table != nil {
		b.add(table)
	}

	send, err := SendFor(c, m)
	if err != nil {
		return nil, err
	}
	send.Cancellation = m.ParameterOfKind(ir.ParamCancellation)
	b.add(send)
	return b, nil
}

// GeneratorCall returns the call of generator gen from executor m. Each
// generator parameter is matched with the executor parameter of the same
// kind, taken in order.
func GeneratorCall(gen, m *ir.Method) *CallGenerator {
	call := &CallGenerator{Generator: gen}
	used := make(map[*ir.Parameter]bool)
	for _, p := range gen.Signature() {
		var arg *ir.Parameter
		for _, q := range m.Signature() {
			if q.Kind == p.Kind && !used[q] {
				arg = q
				used[q] = true
				break
			}
		}
		call.Arguments = append(call.Arguments, arg)
	}
	return call
}

// ErrorTable returns the error mapping table of m, or nil when m maps no
// status codes.
func ErrorTable(m *ir.Method) *ErrorMappingTable {
	if len(m.ErrorMappings) == 0 {
		return nil
	}
	table := &ErrorMappingTable{}
	for _, em := range m.ErrorMappings {
		table.Entries = append(table.Entries, ErrorEntry{Pattern: strings.ToUpper(em.Code), Type: em.Type})
	}
	return table
}

// SendFor selects the send variant for the return type of m.
func SendFor(c *Context, m *ir.Method) (*Send, error) {
	if m.ReturnType == nil {
		return nil, &ir.StructuralError{Code: ir.CodeMissingReturnType, Element: m.QualifiedName(), Message: "request executor has no return type"}
	}
	ref := m.ReturnRef()
	if ref == nil {
		return nil, ir.NewUnsupportedConstruct(c.Policy.Target(), m.ReturnType)
	}
	s := &Send{ErrorMapping: len(m.ErrorMappings) > 0}
	switch {
	case ref.IsVoid():
		s.Variant = SendNoContent
		return s, nil
	case ref.Class() != nil && ref.IsCollection():
		s.Variant = SendObjectCollection
	case ref.Class() != nil:
		s.Variant = SendObject
	case ref.IsCollection():
		s.Variant = SendPrimitiveCollection
	default:
		s.Variant = SendPrimitive
	}
	s.Type = ref.ElementType()
	s.UnwrapArray = ref.Collection == ir.CollectionArray
	return s, nil
}

func missingHTTPMethod(m *ir.Method) error {
	return &ir.StructuralError{
		Code:    ir.CodeMissingHTTPMethod,
		Element: m.QualifiedName(),
		Message: m.Kind.String() + " method has no HTTP method",
	}
}
