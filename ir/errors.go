package ir

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Structural error codes.
const (
	CodeMissingGenerator         = "missing_generator"
	CodeDuplicateGenerator       = "duplicate_generator"
	CodeMissingHTTPMethod        = "missing_http_method"
	CodeMissingReturnType        = "missing_return_type"
	CodeMultipleIndexers         = "multiple_indexers"
	CodeWrongParentKind          = "wrong_parent_kind"
	CodeDuplicateDiscriminator   = "duplicate_discriminator"
	CodeUnreachableDiscriminator = "unreachable_discriminator"
	CodeAmbiguousCommandSource   = "ambiguous_command_source"
	CodeMissingMapperParameter   = "missing_mapper_parameter"
	CodeDuplicateCommand         = "duplicate_command"
	CodeMissingParent            = "missing_parent"
	CodeMissingIndexParameter    = "missing_index_parameter"
	CodeMissingAccessedProperty  = "missing_accessed_property"
	CodeCommandCycle             = "command_cycle"
	CodeMissingExecutor          = "missing_executor"
)

// StructuralError reports a violated graph invariant.
type StructuralError struct {
	Code string

	// Element is the qualified name of the offending element.
	Element string

	Message string
}

func (e *StructuralError) Error() string {
	return e.Element + ": " + e.Message
}

// UnsupportedConstructError reports a construct a target cannot express.
type UnsupportedConstructError struct {
	// Construct is the kind of construct, e.g. "union type".
	Construct string

	// Type names the offending type.
	Type string

	Target string
}

func (e *UnsupportedConstructError) Error() string {
	return fmt.Sprintf("%s target cannot express %s %s", e.Target, e.Construct, e.Type)
}

// NewUnsupportedConstruct returns an UnsupportedConstructError for t.
// Composed types reaching a target are a fault of the upstream flattening
// stage, and the returned error carries a hint saying so.
func NewUnsupportedConstruct(target string, t Type) error {
	construct := "type"
	switch t.Kind() {
	case TypeUnion:
		construct = "union type"
	case TypeIntersection:
		construct = "intersection type"
	}
	err := &UnsupportedConstructError{Construct: construct, Type: t.String(), Target: target}
	return errors.WithHint(err, "composed types must be flattened into a wrapper class before reaching this target; the IR builder skipped that pass")
}
