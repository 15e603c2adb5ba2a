package ir

// ClassKind identifies the semantic role of a Class.
type ClassKind int

const (
	ClassModel ClassKind = iota
	ClassRequestBuilder
	ClassQueryParameters
	ClassRequestConfiguration
	ClassErrorDefinition
)

// String returns the string representation of the class kind.
func (k ClassKind) String() string {
	switch k {
	case ClassModel:
		return "Model"
	case ClassRequestBuilder:
		return "RequestBuilder"
	case ClassQueryParameters:
		return "QueryParameters"
	case ClassRequestConfiguration:
		return "RequestConfiguration"
	case ClassErrorDefinition:
		return "ErrorDefinition"
	default:
		return "Unknown"
	}
}

// PropertyKind identifies the semantic role of a Property.
//
// The declaration order is significant: constructor synthesis assigns
// defaults by kind, highest value first.
type PropertyKind int

const (
	PropertyCustom PropertyKind = iota
	PropertyAdditionalData
	PropertyRequestBuilder
	PropertyPathParameters
	PropertyRequestAdapter
	PropertyUrlTemplate
	PropertyBackingStore
	PropertyQueryParameter
	PropertyHeaders
	PropertyOptions
	PropertyQueryParameters
)

// String returns the string representation of the property kind.
func (k PropertyKind) String() string {
	switch k {
	case PropertyCustom:
		return "Custom"
	case PropertyAdditionalData:
		return "AdditionalData"
	case PropertyRequestBuilder:
		return "RequestBuilder"
	case PropertyPathParameters:
		return "PathParameters"
	case PropertyRequestAdapter:
		return "RequestAdapter"
	case PropertyUrlTemplate:
		return "UrlTemplate"
	case PropertyBackingStore:
		return "BackingStore"
	case PropertyQueryParameter:
		return "QueryParameter"
	case PropertyHeaders:
		return "Headers"
	case PropertyOptions:
		return "Options"
	case PropertyQueryParameters:
		return "QueryParameters"
	default:
		return "Unknown"
	}
}

// ParameterKind identifies the semantic role of a Parameter.
type ParameterKind int

const (
	ParamRequestBody ParameterKind = iota
	ParamRequestBodyContentType
	ParamRequestConfiguration
	ParamPathParameters
	ParamPath
	ParamHeaders
	ParamQueryParameter
	ParamResponseHandler
	ParamCancellation
	ParamBackingStore
	ParamParseNode
	ParamRawUrl
	ParamQueryParametersMapper
	ParamRequestAdapter
	ParamSerializer
	ParamSetterValue
)

// String returns the string representation of the parameter kind.
func (k ParameterKind) String() string {
	switch k {
	case ParamRequestBody:
		return "RequestBody"
	case ParamRequestBodyContentType:
		return "RequestBodyContentType"
	case ParamRequestConfiguration:
		return "RequestConfiguration"
	case ParamPathParameters:
		return "PathParameters"
	case ParamPath:
		return "Path"
	case ParamHeaders:
		return "Headers"
	case ParamQueryParameter:
		return "QueryParameter"
	case ParamResponseHandler:
		return "ResponseHandler"
	case ParamCancellation:
		return "Cancellation"
	case ParamBackingStore:
		return "BackingStore"
	case ParamParseNode:
		return "ParseNode"
	case ParamRawUrl:
		return "RawUrl"
	case ParamQueryParametersMapper:
		return "QueryParametersMapperParameter"
	case ParamRequestAdapter:
		return "RequestAdapter"
	case ParamSerializer:
		return "Serializer"
	case ParamSetterValue:
		return "SetterValue"
	default:
		return "Unknown"
	}
}

// MethodKind identifies the synthesis algorithm applied to a Method.
type MethodKind int

const (
	MethodSerializer MethodKind = iota
	MethodDeserializer
	MethodRequestGenerator
	MethodRequestExecutor
	MethodConstructor
	MethodClientConstructor
	MethodRawUrlConstructor
	MethodRequestBuilderWithParameters
	MethodGetter
	MethodSetter
	MethodFactory
	MethodCommandBuilder
	MethodQueryParametersMapper
	MethodIndexerBackwardCompatibility
)

// MethodKinds returns every method kind in declaration order.
// Handler tables are checked against this list for exhaustiveness.
func MethodKinds() []MethodKind {
	return []MethodKind{
		MethodSerializer,
		MethodDeserializer,
		MethodRequestGenerator,
		MethodRequestExecutor,
		MethodConstructor,
		MethodClientConstructor,
		MethodRawUrlConstructor,
		MethodRequestBuilderWithParameters,
		MethodGetter,
		MethodSetter,
		MethodFactory,
		MethodCommandBuilder,
		MethodQueryParametersMapper,
		MethodIndexerBackwardCompatibility,
	}
}

// String returns the string representation of the method kind.
func (k MethodKind) String() string {
	switch k {
	case MethodSerializer:
		return "Serializer"
	case MethodDeserializer:
		return "Deserializer"
	case MethodRequestGenerator:
		return "RequestGenerator"
	case MethodRequestExecutor:
		return "RequestExecutor"
	case MethodConstructor:
		return "Constructor"
	case MethodClientConstructor:
		return "ClientConstructor"
	case MethodRawUrlConstructor:
		return "RawUrlConstructor"
	case MethodRequestBuilderWithParameters:
		return "RequestBuilderWithParameters"
	case MethodGetter:
		return "Getter"
	case MethodSetter:
		return "Setter"
	case MethodFactory:
		return "Factory"
	case MethodCommandBuilder:
		return "CommandBuilder"
	case MethodQueryParametersMapper:
		return "QueryParametersMapper"
	case MethodIndexerBackwardCompatibility:
		return "IndexerBackwardCompatibility"
	default:
		return "Unknown"
	}
}

// IsConstructor reports whether the kind is one of the constructor kinds.
func (k MethodKind) IsConstructor() bool {
	return k == MethodConstructor || k == MethodClientConstructor || k == MethodRawUrlConstructor
}

// Access is the visibility of a member.
type Access int

const (
	AccessPublic Access = iota
	AccessProtected
	AccessPrivate
)

// String returns the string representation of the access level.
func (a Access) String() string {
	switch a {
	case AccessPublic:
		return "Public"
	case AccessProtected:
		return "Protected"
	case AccessPrivate:
		return "Private"
	default:
		return "Unknown"
	}
}

// HTTPMethod is an HTTP request method. The zero value means none.
type HTTPMethod string

const (
	HTTPGet     HTTPMethod = "GET"
	HTTPPost    HTTPMethod = "POST"
	HTTPPatch   HTTPMethod = "PATCH"
	HTTPPut     HTTPMethod = "PUT"
	HTTPDelete  HTTPMethod = "DELETE"
	HTTPOptions HTTPMethod = "OPTIONS"
	HTTPHead    HTTPMethod = "HEAD"
	HTTPConnect HTTPMethod = "CONNECT"
	HTTPTrace   HTTPMethod = "TRACE"
)
