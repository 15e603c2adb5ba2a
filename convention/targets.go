package convention

import (
	"strings"

	"github.com/broady/apigen/ir"
)

// NewCSharp returns the C# conventions.
func NewCSharp() *Policy {
	return &Policy{
		target: CSharp,
		primitives: set("string", "bool", "int", "long", "float", "double", "decimal", "Guid",
			"DateTimeOffset", "Date", "Time", "TimeSpan", "byte[]", "byte", "sbyte", "void", "Stream"),
		translations: map[string]string{
			ir.String:         "string",
			ir.Boolean:        "bool",
			ir.Integer:        "int",
			ir.Int64:          "long",
			ir.Float:          "float",
			ir.Double:         "double",
			ir.Decimal:        "decimal",
			ir.GUID:           "Guid",
			ir.DateTimeOffset: "DateTimeOffset",
			ir.DateOnly:       "Date",
			ir.TimeOnly:       "Time",
			ir.Duration:       "TimeSpan",
			ir.Byte:           "byte",
			ir.SByte:          "sbyte",
			ir.Binary:         "byte[]",
			ir.Base64:         "byte[]",
			ir.Stream:         "Stream",
			ir.Void:           "void",
			ir.UntypedNode:    "UntypedNode",
		},
		access: map[ir.Access]string{
			ir.AccessPublic:    "public",
			ir.AccessProtected: "protected",
			ir.AccessPrivate:   "private",
		},
		reserved:       set(csharpReserved...),
		nullable:       NullableSuffix,
		array:          "%s[]",
		list:           "List<%s>",
		qualify:        func(ns, name string) string { return ns + "." + name },
		DocPrefix:      "/// ",
		StreamTypeName: "Stream",
		VoidTypeName:   "void",
		TypeCase:       CasePascal,
		MemberCase:     CasePascal,
		FileCase:       CasePascal,
		FileExtension:  ".cs",
	}
}

// NewCLI returns the conventions for the C# command-line target. They match
// C# except for the target identifier.
func NewCLI() *Policy {
	p := NewCSharp()
	p.target = CLI
	return p
}

// NewTypeScript returns the TypeScript conventions.
func NewTypeScript() *Policy {
	return &Policy{
		target:     TypeScript,
		primitives: set("string", "boolean", "number", "Guid", "Date", "DateOnly", "TimeOnly", "Duration", "ArrayBuffer", "void"),
		translations: map[string]string{
			ir.String:         "string",
			ir.Boolean:        "boolean",
			ir.Integer:        "number",
			ir.Int64:          "number",
			ir.Float:          "number",
			ir.Double:         "number",
			ir.Decimal:        "number",
			ir.Byte:           "number",
			ir.SByte:          "number",
			ir.GUID:           "Guid",
			ir.DateTimeOffset: "Date",
			ir.DateOnly:       "DateOnly",
			ir.TimeOnly:       "TimeOnly",
			ir.Duration:       "Duration",
			ir.Binary:         "string",
			ir.Base64:         "string",
			ir.Stream:         "ArrayBuffer",
			ir.Void:           "void",
			ir.UntypedNode:    "UntypedNode",
		},
		access: map[ir.Access]string{
			ir.AccessPublic:    "public",
			ir.AccessProtected: "protected",
			ir.AccessPrivate:   "private",
		},
		reserved: set(typescriptReserved...),
		nullable: NullableUnion,
		array:    "%s[]",
		list:     "%s[]",
		qualify: func(ns, name string) string {
			return strings.ReplaceAll(ns, ".", "_") + "_" + name
		},
		DocPrefix:           " * ",
		StreamTypeName:      "ArrayBuffer",
		VoidTypeName:        "void",
		NativeComposedTypes: true,
		TypeCase:            CasePascal,
		MemberCase:          CaseCamel,
		FileCase:            CaseKebab,
		FileExtension:       ".ts",
	}
}

// NewGo returns the Go conventions.
func NewGo() *Policy {
	return &Policy{
		target: Go,
		primitives: set("string", "bool", "int32", "int64", "float32", "float64", "uuid.UUID", "time.Time",
			"serialization.DateOnly", "serialization.TimeOnly", "serialization.ISODuration", "byte", "int8", "[]byte"),
		translations: map[string]string{
			ir.String:         "string",
			ir.Boolean:        "bool",
			ir.Integer:        "int32",
			ir.Int64:          "int64",
			ir.Float:          "float32",
			ir.Double:         "float64",
			ir.Decimal:        "float64",
			ir.Byte:           "byte",
			ir.SByte:          "int8",
			ir.GUID:           "uuid.UUID",
			ir.DateTimeOffset: "time.Time",
			ir.DateOnly:       "serialization.DateOnly",
			ir.TimeOnly:       "serialization.TimeOnly",
			ir.Duration:       "serialization.ISODuration",
			ir.Binary:         "[]byte",
			ir.Base64:         "[]byte",
			ir.Stream:         "[]byte",
			ir.Void:           "",
			ir.UntypedNode:    "serialization.UntypedNodeable",
		},
		access: map[ir.Access]string{
			ir.AccessPublic:    "",
			ir.AccessProtected: "",
			ir.AccessPrivate:   "",
		},
		reserved: set(goReserved...),
		nullable: NullablePointer,
		array:    "[]%s",
		list:     "[]%s",
		qualify: func(ns, name string) string {
			return PackageName(ns) + "." + name
		},
		qualifyForeign: true,
		DocPrefix:      "// ",
		StreamTypeName: "[]byte",
		VoidTypeName:   "",
		TypeCase:       CasePascal,
		MemberCase:     CasePascal,
		FileCase:       CaseSnake,
		FileExtension:  ".go",
	}
}

// PackageName returns the Go package name for a dotted namespace.
func PackageName(ns string) string {
	if i := strings.LastIndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	return strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(ns))
}

func set(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, s := range items {
		m[s] = true
	}
	return m
}

var csharpReserved = []string{
	"abstract", "as", "base", "bool", "break", "byte", "case", "catch", "char", "checked",
	"class", "const", "continue", "decimal", "default", "delegate", "do", "double", "else",
	"enum", "event", "explicit", "extern", "false", "finally", "fixed", "float", "for",
	"foreach", "goto", "if", "implicit", "in", "int", "interface", "internal", "is", "lock",
	"long", "namespace", "new", "null", "object", "operator", "out", "override", "params",
	"private", "protected", "public", "readonly", "ref", "return", "sbyte", "sealed", "short",
	"sizeof", "stackalloc", "static", "string", "struct", "switch", "this", "throw", "true",
	"try", "typeof", "uint", "ulong", "unchecked", "unsafe", "ushort", "using", "virtual",
	"void", "volatile", "while",
}

var typescriptReserved = []string{
	"break", "case", "catch", "class", "const", "continue", "debugger", "default", "delete",
	"do", "else", "enum", "export", "extends", "false", "finally", "for", "function", "if",
	"implements", "import", "in", "instanceof", "interface", "let", "new", "null", "package",
	"private", "protected", "public", "return", "static", "super", "switch", "this", "throw",
	"true", "try", "type", "typeof", "var", "void", "while", "with", "yield",
}

var goReserved = []string{
	"break", "case", "chan", "const", "continue", "default", "defer", "else", "fallthrough",
	"for", "func", "go", "goto", "if", "import", "interface", "map", "package", "range",
	"return", "select", "struct", "switch", "type", "var",
}
