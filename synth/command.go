package synth

import "github.com/broady/apigen/ir"

// CommandSource records how a command object is established.
type CommandSource int

const (
	// CommandNew creates a fresh, empty command.
	CommandNew CommandSource = iota
	// CommandRoot creates the root command.
	CommandRoot
	// CommandFromIndexer reuses a command built by the indexer's builder.
	CommandFromIndexer
	// CommandFromNavigation reuses a sibling navigation command.
	CommandFromNavigation
)

// String returns the string representation of the command source.
func (s CommandSource) String() string {
	switch s {
	case CommandNew:
		return "New"
	case CommandRoot:
		return "Root"
	case CommandFromIndexer:
		return "FromIndexer"
	case CommandFromNavigation:
		return "FromNavigation"
	default:
		return "Unknown"
	}
}

// Arity is the number of values an option accepts.
type Arity int

const (
	ArityDefault Arity = iota
	ArityZeroOrMore
	ArityOneOrMore
)

// String returns the string representation of the arity.
func (a Arity) String() string {
	switch a {
	case ArityDefault:
		return "Default"
	case ArityZeroOrMore:
		return "ZeroOrMore"
	case ArityOneOrMore:
		return "OneOrMore"
	default:
		return "Unknown"
	}
}

// OptionSource identifies where a command option comes from.
type OptionSource int

const (
	OptionPath OptionSource = iota
	OptionQuery
	OptionHeader
	OptionBody
	OptionBodyFile
	OptionContentType
	OptionOutputFormat
	OptionOutputFilter
	OptionOutputFile
	OptionAll
)

// String returns the string representation of the option source.
func (s OptionSource) String() string {
	switch s {
	case OptionPath:
		return "Path"
	case OptionQuery:
		return "Query"
	case OptionHeader:
		return "Header"
	case OptionBody:
		return "Body"
	case OptionBodyFile:
		return "BodyFile"
	case OptionContentType:
		return "ContentType"
	case OptionOutputFormat:
		return "OutputFormat"
	case OptionOutputFilter:
		return "OutputFilter"
	case OptionOutputFile:
		return "OutputFile"
	case OptionAll:
		return "All"
	default:
		return "Unknown"
	}
}

// CommandOption is one option of an executable command.
type CommandOption struct {
	// Name is the option name without leading dashes.
	Name string

	Source OptionSource

	// Parameter is the generator or executor parameter the option binds
	// to. Nil for output options.
	Parameter *ir.Parameter

	// Type is the option value type. Body values are strings and files are
	// the stream type.
	Type *ir.TypeRef

	Required     bool
	Collection   bool
	Arity        Arity
	DefaultValue string
	Description  string
}

// OutputMode selects how an executable command writes its response.
type OutputMode int

const (
	// OutputSuccess prints a success line for void responses.
	OutputSuccess OutputMode = iota
	// OutputStream writes a stream to the output file or standard output.
	OutputStream
	// OutputFormatted writes through the formatter for the chosen format.
	OutputFormatted
	// OutputText writes primitive responses through the text formatter.
	OutputText
)

// String returns the string representation of the output mode.
func (m OutputMode) String() string {
	switch m {
	case OutputSuccess:
		return "Success"
	case OutputStream:
		return "Stream"
	case OutputFormatted:
		return "Formatted"
	case OutputText:
		return "Text"
	default:
		return "Unknown"
	}
}

// Command builder operations.
type (
	// InitCommand establishes the command object. Reused is the method
	// whose command is reused; Builder is the indexer's target class.
	InitCommand struct {
		Source      CommandSource
		Name        string
		Description string
		Indexer     *ir.Indexer
		Builder     *ir.Class
		Reused      *ir.Method
	}

	// InstantiateBuilder constructs Target from the current path parameters
	// plus the method's Path parameters and binds it to Var.
	InstantiateBuilder struct {
		Var            string
		Target         *ir.Class
		PathParameters *ir.Property
		Path           []*ir.Parameter
	}

	// AddSubCommands adds sub-commands. Executables are added before
	// containers unless Direct is set, in which case commands are added in
	// order. SortContainers orders containers by name.
	AddSubCommands struct {
		Commands       []SubCommand
		Direct         bool
		SortContainers bool
	}

	// SubCommand is a command builder call. Builder is the variable the
	// method is called on, or empty for the current class. Items is set when
	// the method returns executable and container lists.
	SubCommand struct {
		Builder string
		Method  *ir.Method
		Items   bool
	}

	// ReturnItemCommands returns the executable and container commands of
	// an indexer target.
	ReturnItemCommands struct {
		Builder     string
		Executables []*ir.Method
		Containers  []*ir.Method
	}

	// AddOption declares one option on the command.
	AddOption struct {
		Option CommandOption
	}

	// CommandHandler is the code run when the command is invoked.
	CommandHandler struct {
		Ops []Op
	}

	// ReturnCommand returns the established command.
	ReturnCommand struct{}
)

// Command handler operations.
type (
	// ParseBody parses a JSON body option into a structured value, exiting
	// early when nothing parses.
	ParseBody struct {
		Parameter   *ir.Parameter
		Type        *ir.TypeRef
		ContentType string
	}

	// OpenInputFile opens the body file, exiting early when it is missing.
	OpenInputFile struct {
		Parameter *ir.Parameter
	}

	// BuildRequest calls the generator and applies the bound options.
	BuildRequest struct {
		Generator   *ir.Method
		Body        *ir.Parameter
		ContentType *ir.Parameter
		Query       []*ir.Parameter
		Path        []*ir.Parameter
		Headers     []*ir.Parameter
		Stream      bool
	}

	// SendPaged fetches pages through the paging service.
	SendPaged struct {
		ItemName     string
		NextLinkName string
		ErrorMapping bool
	}

	// WriteOutput writes the response according to Mode.
	WriteOutput struct {
		Mode   OutputMode
		Filter bool
		Paged  bool
	}
)

func (*InitCommand) op()        {}
func (*InstantiateBuilder) op() {}
func (*AddSubCommands) op()     {}
func (*ReturnItemCommands) op() {}
func (*AddOption) op()          {}
func (*CommandHandler) op()     {}
func (*ReturnCommand) op()      {}
func (*ParseBody) op()          {}
func (*OpenInputFile) op()      {}
func (*BuildRequest) op()       {}
func (*SendPaged) op()          {}
func (*WriteOutput) op()        {}
