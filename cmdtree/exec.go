package cmdtree

import (
	"strings"

	"github.com/broady/apigen/ir"
	"github.com/broady/apigen/synth"
)

// Names of the options every executable command may add.
const (
	InputFileOption  = "input-file"
	OutputFileOption = "output-file"
	OutputOption     = "output"
	QueryOption      = "query"
	AllOption        = "all"

	// DefaultOutputFormat is the default of the output option.
	DefaultOutputFormat = "json"
)

// executable synthesizes a leaf command that sends the request of its
// executor.
func executable(c *synth.Context, m *ir.Method, b *synth.Body) error {
	exec := m.OriginalMethod
	if exec == nil || exec.Kind != ir.MethodRequestExecutor {
		return &ir.StructuralError{Code: ir.CodeMissingExecutor, Element: m.QualifiedName(), Message: "executable command has no request executor"}
	}
	gen, err := ir.FindGenerator(m)
	if err != nil {
		return err
	}

	included, err := initShared(c, m, b)
	if err != nil {
		return err
	}
	addCommands(b, included)

	for _, opt := range Options(c, gen, exec) {
		b.Ops = append(b.Ops, &synth.AddOption{Option: opt})
	}

	handler, err := handlerOps(gen, exec, b.Aliases)
	if err != nil {
		return err
	}
	b.Ops = append(b.Ops, &synth.CommandHandler{Ops: handler}, &synth.ReturnCommand{})
	return nil
}

// Options returns the options of the executable command for the generator
// gen and executor exec, in declaration order.
func Options(c *synth.Context, gen, exec *ir.Method) []synth.CommandOption {
	params := gen.ParametersOfKind(ir.ParamPath, ir.ParamQueryParameter, ir.ParamHeaders)
	if body := exec.ParameterOfKind(ir.ParamRequestBody); body != nil {
		params = append(params, body)
	}
	if ct := exec.ParameterOfKind(ir.ParamRequestBodyContentType); ct != nil {
		params = append(params, ct)
	}

	var out []synth.CommandOption
	seen := make(map[string]bool)
	for _, p := range params {
		if strings.TrimSpace(p.Name) == "" {
			continue
		}
		opt := parameterOption(c, p)
		if seen[opt.Name] {
			continue
		}
		seen[opt.Name] = true
		out = append(out, opt)
	}
	return append(out, outputOptions(exec)...)
}

func parameterOption(c *synth.Context, p *ir.Parameter) synth.CommandOption {
	ref := ir.AsRef(p.Type)
	opt := synth.CommandOption{
		Name:         OptionName(c, p.Name),
		Parameter:    p,
		Type:         ref,
		Collection:   ref != nil && ref.IsCollection(),
		DefaultValue: p.DefaultValue,
		Description:  describe(p.Documentation, true),
	}
	optional := p.Optional

	switch p.Kind {
	case ir.ParamPath:
		opt.Source = synth.OptionPath
	case ir.ParamQueryParameter:
		opt.Source = synth.OptionQuery
	case ir.ParamHeaders:
		// Headers repeat: --header a --header b.
		opt.Source = synth.OptionHeader
		opt.Collection = true
	case ir.ParamRequestBody:
		opt.Source = synth.OptionBody
		switch {
		case ref != nil && ref.IsStream():
			opt.Source = synth.OptionBodyFile
			opt.Name = InputFileOption
		case ref != nil && ref.Class() != nil:
			opt.Type = ir.Primitive(ir.String)
			opt.Collection = false
		}
	case ir.ParamRequestBodyContentType:
		opt.Source = synth.OptionContentType
		opt.DefaultValue = ""
		if len(p.PossibleValues) > 0 {
			opt.DefaultValue = p.PossibleValues[0]
		}
		optional = true
		if len(p.PossibleValues) > 1 {
			opt.Description = describe(p.Documentation, true, allowedValues(p.PossibleValues))
		}
	}

	opt.Required = !optional || p.Kind == ir.ParamPath
	if opt.Collection {
		opt.Arity = synth.ArityZeroOrMore
		if opt.Required {
			opt.Arity = synth.ArityOneOrMore
		}
	}
	return opt
}

// returnShape classifies the executor response.
type returnShape struct {
	void, stream, primitive, paged bool
}

func shapeOf(exec *ir.Method) returnShape {
	ref := exec.ReturnRef()
	s := returnShape{paged: exec.Paging != nil}
	switch {
	case ref == nil || ref.IsVoid():
		s.void = true
	case ref.IsStream():
		s.stream = true
	case ref.Definition == nil:
		s.primitive = true
	}
	return s
}

func outputOptions(exec *ir.Method) []synth.CommandOption {
	s := shapeOf(exec)
	switch {
	case s.stream:
		return []synth.CommandOption{{Name: OutputFileOption, Source: synth.OptionOutputFile, Type: ir.Primitive(ir.Stream)}}
	case s.void || s.primitive:
		return nil
	}
	out := []synth.CommandOption{
		{Name: OutputOption, Source: synth.OptionOutputFormat, Type: ir.Primitive(ir.String), DefaultValue: DefaultOutputFormat},
		{Name: QueryOption, Source: synth.OptionOutputFilter, Type: ir.Primitive(ir.String)},
	}
	if s.paged {
		out = append(out, synth.CommandOption{Name: AllOption, Source: synth.OptionAll, Type: ir.Primitive(ir.Boolean)})
	}
	return out
}

// handlerOps returns the operations run when the command is invoked.
func handlerOps(gen, exec *ir.Method, aliases synth.Aliases) ([]synth.Op, error) {
	var ops []synth.Op
	body := exec.ParameterOfKind(ir.ParamRequestBody)
	stream := false
	if body != nil {
		ref := ir.AsRef(body.Type)
		switch {
		case ref != nil && ref.Class() != nil:
			ops = append(ops, &synth.ParseBody{Parameter: body, Type: ref, ContentType: gen.RequestBodyContentType})
			aliases[body] = modelVar
		case ref != nil && ref.IsStream():
			ops = append(ops, &synth.OpenInputFile{Parameter: body})
			aliases[body] = streamVar
			stream = true
		}
		if !stream {
			if err := synth.CheckContentType(gen); err != nil {
				return nil, err
			}
		}
	}

	ops = append(ops, &synth.BuildRequest{
		Generator:   gen,
		Body:        body,
		ContentType: exec.ParameterOfKind(ir.ParamRequestBodyContentType),
		Query:       gen.ParametersOfKind(ir.ParamQueryParameter),
		Path:        gen.ParametersOfKind(ir.ParamPath),
		Headers:     gen.ParametersOfKind(ir.ParamHeaders),
		Stream:      stream,
	})
	if table := synth.ErrorTable(exec); table != nil {
		ops = append(ops, table)
	}

	s := shapeOf(exec)
	mapped := len(exec.ErrorMappings) > 0
	switch {
	case s.void:
		ops = append(ops, &synth.Send{Variant: synth.SendNoContent, ErrorMapping: mapped})
	case !s.stream && !s.primitive && s.paged:
		ops = append(ops, &synth.SendPaged{ItemName: exec.Paging.ItemName, NextLinkName: exec.Paging.NextLinkName, ErrorMapping: mapped})
	default:
		ops = append(ops, &synth.Send{Variant: synth.SendPrimitive, Type: ir.Primitive(ir.Stream), ErrorMapping: mapped})
	}

	out := &synth.WriteOutput{Paged: s.paged}
	switch {
	case s.void:
		out.Mode = synth.OutputSuccess
	case s.stream:
		out.Mode = synth.OutputStream
	case s.primitive:
		out.Mode = synth.OutputText
	default:
		out.Mode = synth.OutputFormatted
		out.Filter = true
	}
	return append(ops, out), nil
}
