package synth

import "github.com/broady/apigen/ir"

// Op is one abstract operation of a synthesized method body.
// Emitters type-switch on the concrete operation.
type Op interface {
	op()
}

// ValueVariant selects the read or write primitive used for a value.
type ValueVariant int

const (
	ValuePrimitive ValueVariant = iota
	ValueEnum
	ValueByteArray
	ValueCollectionOfPrimitive
	ValueCollectionOfEnum
	ValueCollectionOfObject
	ValueObject
	ValueComposed
)

// String returns the string representation of the variant.
func (v ValueVariant) String() string {
	switch v {
	case ValuePrimitive:
		return "Primitive"
	case ValueEnum:
		return "Enum"
	case ValueByteArray:
		return "ByteArray"
	case ValueCollectionOfPrimitive:
		return "CollectionOfPrimitive"
	case ValueCollectionOfEnum:
		return "CollectionOfEnum"
	case ValueCollectionOfObject:
		return "CollectionOfObject"
	case ValueObject:
		return "Object"
	case ValueComposed:
		return "Composed"
	default:
		return "Unknown"
	}
}

// Serializer operations.
type (
	// CallBaseSerializer writes the properties handled by the base class.
	CallBaseSerializer struct {
		Base *ir.Class
	}

	// WriteValue writes one property under Key.
	WriteValue struct {
		Key      string
		Property *ir.Property
		Variant  ValueVariant
	}

	// WriteAdditionalData writes the unmapped key/value pairs.
	WriteAdditionalData struct {
		Property *ir.Property
	}
)

// Deserializer operations.
type (
	// FieldMap builds the serialization name to setter mapping. When Base is
	// set the map starts as a copy of the base class map.
	FieldMap struct {
		Base    *ir.Class
		Entries []FieldEntry
	}

	FieldEntry struct {
		Key      string
		Property *ir.Property
		Variant  ValueVariant
	}
)

// Request generator operations.
type (
	// NewRequestInfo creates the request descriptor. Nil properties mean
	// an empty template or parameter set.
	NewRequestInfo struct {
		HTTPMethod     ir.HTTPMethod
		URLTemplate    *ir.Property
		PathParameters *ir.Property
	}

	// AddHeader adds a header entry to the request descriptor.
	AddHeader struct {
		Name  string
		Value string
	}

	// SetStreamContent sets a binary body. ContentTypeParam, when set,
	// overrides ContentType at call time.
	SetStreamContent struct {
		Body             *ir.Parameter
		ContentType      string
		ContentTypeParam *ir.Parameter
	}

	// SetStructuredContent serializes a declared class body.
	SetStructuredContent struct {
		Body             *ir.Parameter
		Type             *ir.TypeRef
		ContentType      string
		ContentTypeParam *ir.Parameter
	}

	// SetScalarContent serializes a primitive or enum body.
	SetScalarContent struct {
		Body             *ir.Parameter
		Type             ir.Type
		ContentType      string
		ContentTypeParam *ir.Parameter
	}

	// ConfigureRequest invokes the caller configurator when it is non-nil,
	// then applies each declared configuration sub-object.
	ConfigureRequest struct {
		Config          *ir.Parameter
		Class           *ir.Class
		QueryParameters bool
		Options         bool
		Headers         bool
	}
)

// SendVariant selects how a request executor sends the request.
type SendVariant int

const (
	SendNoContent SendVariant = iota
	SendPrimitive
	SendPrimitiveCollection
	SendObject
	SendObjectCollection
)

// String returns the string representation of the send variant.
func (v SendVariant) String() string {
	switch v {
	case SendNoContent:
		return "NoContent"
	case SendPrimitive:
		return "Primitive"
	case SendPrimitiveCollection:
		return "PrimitiveCollection"
	case SendObject:
		return "Object"
	case SendObjectCollection:
		return "ObjectCollection"
	default:
		return "Unknown"
	}
}

// Request executor operations.
type (
	// CallGenerator obtains the request descriptor from the sibling
	// generator. Arguments line up with Generator.Signature(); a nil entry
	// is a generator parameter the executor has no counterpart for.
	CallGenerator struct {
		Generator *ir.Method
		Arguments []*ir.Parameter
	}

	// ErrorMappingTable maps upper-cased status patterns to error factories.
	ErrorMappingTable struct {
		Entries []ErrorEntry
	}

	ErrorEntry struct {
		Pattern string
		Type    *ir.TypeRef
	}

	// Send dispatches the request. Type is the element type for collection
	// variants and nil for SendNoContent.
	Send struct {
		Variant      SendVariant
		Type         *ir.TypeRef
		UnwrapArray  bool
		ErrorMapping bool
		Cancellation *ir.Parameter
	}
)

// Constructor operations.
type (
	// AssignDefault assigns a property default. Enum is set when the value
	// resolved to an option of the property's enum.
	AssignDefault struct {
		Property *ir.Property
		Value    string
		Enum     *ir.Enum
	}

	// SeedPathParameters copies Source (if any) into a temporary dictionary,
	// adds each entry and assigns the result to Property.
	SeedPathParameters struct {
		Property *ir.Property
		Source   *ir.Parameter
		Entries  []PathEntry
	}

	PathEntry struct {
		Key       string
		Parameter *ir.Parameter
	}

	// SeedRawURL stores the raw URL under Key in a new parameter dictionary.
	SeedRawURL struct {
		Property  *ir.Property
		Parameter *ir.Parameter
		Key       string
	}

	// ForwardParameter assigns a constructor argument to a property.
	ForwardParameter struct {
		Property  *ir.Property
		Parameter *ir.Parameter
	}
)

// RawURLKey is the path parameter key holding a raw request URL.
const RawURLKey = "request-raw-url"

// BaseURLKey is the path parameter key holding the adapter base URL.
const BaseURLKey = "baseurl"

// Client constructor operations.
type (
	RegisterSerializer struct {
		Module string
	}

	RegisterDeserializer struct {
		Module string
	}

	// SetBaseURL assigns URL to the adapter only when its base URL is unset.
	SetBaseURL struct {
		Adapter *ir.Property
		URL     string
	}

	// AddBaseURLParameter records the adapter base URL under BaseURLKey.
	AddBaseURLParameter struct {
		Property *ir.Property
		Adapter  *ir.Property
	}

	// EnableBackingStore hands the caller-supplied store factory to the adapter.
	EnableBackingStore struct {
		Adapter   *ir.Property
		Parameter *ir.Parameter
	}

	// ConfigureRetry installs default retry handler options.
	ConfigureRetry struct {
		Adapter      *ir.Property
		DelaySeconds int
		MaxRetries   int
	}

	// ConfigureRedirect installs default redirect handler options.
	ConfigureRedirect struct {
		Adapter      *ir.Property
		MaxRedirects int
	}
)

// Factory operations.
type (
	// ReadDiscriminator reads the string value of the child node named
	// PropertyName, producing no value when the node is absent.
	ReadDiscriminator struct {
		ParseNode    *ir.Parameter
		PropertyName string
	}

	// DiscriminatorSwitch constructs the case type whose key equals the
	// read value exactly, or Default.
	DiscriminatorSwitch struct {
		Cases   []DiscriminatorCase
		Default *ir.Class
	}

	DiscriminatorCase struct {
		Key  string
		Type *ir.Class
	}

	// Construct unconditionally constructs Type.
	Construct struct {
		Type *ir.Class
	}
)

// Builder navigation and accessor operations.
type (
	// ConstructBuilder constructs Target from the current path parameters
	// plus Extra entries.
	ConstructBuilder struct {
		Target         *ir.TypeRef
		PathParameters *ir.Property
		Adapter        *ir.Property
		Extra          []PathEntry
	}

	// ReadProperty returns the property value, through the backing store
	// under Key when BackingStore is set.
	ReadProperty struct {
		Property     *ir.Property
		BackingStore *ir.Property
		Key          string
	}

	// WriteProperty assigns Value, through the backing store when set.
	WriteProperty struct {
		Property     *ir.Property
		Value        *ir.Parameter
		BackingStore *ir.Property
		Key          string
	}

	// MapQueryName returns the serialization name of the first case whose
	// name equals Input ignoring case, or Input unchanged.
	MapQueryName struct {
		Input *ir.Parameter
		Cases []QueryNameCase
	}

	QueryNameCase struct {
		Name              string
		SerializationName string
	}
)

func (*CallBaseSerializer) op()   {}
func (*WriteValue) op()           {}
func (*WriteAdditionalData) op()  {}
func (*FieldMap) op()             {}
func (*NewRequestInfo) op()       {}
func (*AddHeader) op()            {}
func (*SetStreamContent) op()     {}
func (*SetStructuredContent) op() {}
func (*SetScalarContent) op()     {}
func (*ConfigureRequest) op()     {}
func (*CallGenerator) op()        {}
func (*ErrorMappingTable) op()    {}
func (*Send) op()                 {}
func (*AssignDefault) op()        {}
func (*SeedPathParameters) op()   {}
func (*SeedRawURL) op()           {}
func (*ForwardParameter) op()     {}
func (*RegisterSerializer) op()   {}
func (*RegisterDeserializer) op() {}
func (*SetBaseURL) op()           {}
func (*AddBaseURLParameter) op()  {}
func (*EnableBackingStore) op()   {}
func (*ConfigureRetry) op()       {}
func (*ConfigureRedirect) op()    {}
func (*ReadDiscriminator) op()    {}
func (*DiscriminatorSwitch) op()  {}
func (*Construct) op()            {}
func (*ConstructBuilder) op()     {}
func (*ReadProperty) op()         {}
func (*WriteProperty) op()        {}
func (*MapQueryName) op()         {}
