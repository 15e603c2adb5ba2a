package csharp

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/broady/apigen/convention"
	"github.com/broady/apigen/emit"
	"github.com/broady/apigen/emit/code"
	"github.com/broady/apigen/ir"
	"github.com/broady/apigen/synth"
)

const (
	execCommandsVar    = "execCommands"
	nonExecCommandsVar = "nonExecCommands"
	responseVar        = "response"
	cancellationVar    = "cancellationToken"
)

func (u *unit) commandOp(op synth.Op) error {
	w := u.w
	switch op := op.(type) {
	case *synth.InitCommand:
		switch op.Source {
		case synth.CommandRoot:
			w.Line("var %s = new RootCommand();", commandVar)
		case synth.CommandNew:
			w.Line("var %s = new Command(%s);", commandVar, code.Quote(op.Name))
		case synth.CommandFromIndexer:
			w.Line("var %s = %s.%s();", commandVar, u.builders[op.Builder], u.policy.MemberName(op.Reused.Name))
		case synth.CommandFromNavigation:
			w.Line("var %s = %s();", commandVar, u.policy.MemberName(op.Reused.Name))
		default:
			return errors.Newf("csharp: unsupported command source %s", op.Source)
		}
		if op.Description != "" {
			w.Line("%s.Description = %s;", commandVar, code.Quote(op.Description))
		}

	case *synth.InstantiateBuilder:
		u.builders[op.Target] = op.Var
		params := "new Dictionary<string, object>()"
		if op.PathParameters != nil {
			params = u.prop(op.PathParameters)
		}
		if len(op.Path) > 0 {
			tmp := u.temp(pathParamsVar)
			w.Line("var %s = new Dictionary<string, object>(%s);", tmp, params)
			for _, p := range op.Path {
				w.Line("%s.Add(%s, %s);", tmp, code.Quote(p.WireName()), u.param(p))
			}
			params = tmp
		}
		w.Line("var %s = new %s(%s, %s);", op.Var, u.define(op.Target), params, u.adapter())

	case *synth.AddSubCommands:
		if op.Direct {
			for _, s := range op.Commands {
				call := u.call(s.Builder, s.Method)
				if !s.Items {
					w.Line("%s.AddCommand(%s);", commandVar, call)
					continue
				}
				tmp := u.temp("cmds")
				w.Line("var %s = %s;", tmp, call)
				w.Line("foreach (var cmd in %s.Item1.Concat(%s.Item2)) %s.AddCommand(cmd);", tmp, tmp, commandVar)
			}
			return nil
		}
		w.Line("var %s = new List<Command>();", execCommandsVar)
		w.Line("var %s = new List<Command>();", nonExecCommandsVar)
		for _, s := range op.Commands {
			call := u.call(s.Builder, s.Method)
			switch {
			case s.Items:
				tmp := u.temp("cmds")
				w.Line("var %s = %s;", tmp, call)
				w.Line("%s.AddRange(%s.Item1);", execCommandsVar, tmp)
				w.Line("%s.AddRange(%s.Item2);", nonExecCommandsVar, tmp)
			case s.Method.HTTPMethod != "":
				w.Line("%s.Add(%s);", execCommandsVar, call)
			default:
				w.Line("%s.Add(%s);", nonExecCommandsVar, call)
			}
		}
		w.Block("foreach (var cmd in "+execCommandsVar+") {", "}", func() {
			w.Line("%s.AddCommand(cmd);", commandVar)
		})
		containers := nonExecCommandsVar
		if op.SortContainers {
			containers += ".OrderBy(static c => c.Name, StringComparer.Ordinal)"
		}
		w.Block("foreach (var cmd in "+containers+") {", "}", func() {
			w.Line("%s.AddCommand(cmd);", commandVar)
		})

	case *synth.ReturnItemCommands:
		w.Line("var executables = new List<Command>();")
		w.Line("var commands = new List<Command>();")
		for _, m := range op.Executables {
			w.Line("executables.Add(%s);", u.call(op.Builder, m))
		}
		for _, m := range op.Containers {
			w.Line("commands.Add(%s);", u.call(op.Builder, m))
		}
		w.Line("return new(executables, commands);")

	case *synth.AddOption:
		return u.addOption(op.Option)

	case *synth.CommandHandler:
		return u.commandHandler(op)

	case *synth.ReturnCommand:
		w.Line("return %s;", commandVar)

	case *synth.ParseBody:
		body := u.optionLocal(op.Parameter)
		ct := op.ContentType
		if ct == "" {
			ct = "application/json"
		}
		w.Line("using var stream = new MemoryStream(Encoding.UTF8.GetBytes(%s));", body)
		w.Line("var parseNode = ParseNodeFactoryRegistry.DefaultInstance.GetRootParseNode(%s, stream);", code.Quote(ct))
		w.Line("var %s = parseNode.GetObjectValue<%s>(%s);", u.param(op.Parameter), u.define(op.Type.Definition), u.factory(op.Type.Class()))
		w.Block("if ("+u.param(op.Parameter)+" is null) {", "}", func() {
			w.Line(`Console.Error.WriteLine("No model data to send.");`)
			w.Line("return;")
		})

	case *synth.OpenInputFile:
		file := u.optionLocal(op.Parameter)
		w.Block("if ("+file+" is null || !"+file+".Exists) {", "}", func() {
			w.Line(`Console.Error.WriteLine("No available file to send.");`)
			w.Line("return;")
		})
		w.Line("using var %s = %s.OpenRead();", u.param(op.Parameter), file)

	case *synth.BuildRequest:
		return u.buildRequest(op)

	case *synth.SendPaged:
		mapping := "default"
		if op.ErrorMapping {
			mapping = errorMapVar
		}
		w.Line("var pagingData = new PageLinkData(%s, null, itemName: %s, nextLinkName: %s);", requestInfoVar, code.Quote(op.ItemName), code.Quote(op.NextLinkName))
		w.Line("var pageResponse = await pagingService.GetPagedDataAsync((info, token) => %s.SendPrimitiveAsync<Stream>(info, %s, cancellationToken: token), pagingData, %s, %s);",
			u.adapter(), mapping, u.outputLocal(synth.OptionAll, "false"), cancellationVar)
		w.Line("var %s = pageResponse?.Response ?? Stream.Null;", responseVar)

	case *synth.WriteOutput:
		u.writeOutput(op)

	default:
		return errors.Newf("csharp: unsupported operation %T", op)
	}
	return nil
}

func (u *unit) call(builder string, m *ir.Method) string {
	name := u.policy.MemberName(m.Name) + "()"
	if builder == "" {
		return name
	}
	return builder + "." + name
}

func (u *unit) temp(prefix string) string {
	u.temps++
	if u.temps == 1 {
		return prefix
	}
	return prefix + strconv.Itoa(u.temps)
}

// optionLocal returns the handler variable holding the option value bound
// to p.
func (u *unit) optionLocal(p *ir.Parameter) string {
	for _, o := range u.options {
		if o.Parameter == p {
			return u.local(o)
		}
	}
	return u.policy.Identifier(p.Name, convention.CaseCamel)
}

func (u *unit) outputLocal(src synth.OptionSource, fallback string) string {
	for _, o := range u.options {
		if o.Source == src {
			return u.local(o)
		}
	}
	return fallback
}

func (u *unit) local(o synth.CommandOption) string {
	return u.policy.Identifier(o.Name, convention.CaseCamel)
}

func (u *unit) optionType(o synth.CommandOption) (string, error) {
	switch o.Source {
	case synth.OptionBodyFile, synth.OptionOutputFile:
		return "FileInfo", nil
	case synth.OptionHeader:
		return "string[]", nil
	}
	if o.Type == nil {
		return "string", nil
	}
	if o.Collection {
		elem, err := u.typeName(o.Type.ElementType())
		if err != nil {
			return "", err
		}
		return strings.TrimSuffix(elem, "?") + "[]", nil
	}
	t, err := u.typeName(o.Type)
	if err != nil {
		return "", err
	}
	if !o.Required && t != "string" && !strings.HasSuffix(t, "?") {
		t += "?"
	}
	return t, nil
}

// optionDefault renders the default of o. Parameter defaults are already
// source literals.
func optionDefault(o synth.CommandOption) string {
	switch o.Source {
	case synth.OptionOutputFormat, synth.OptionContentType:
		return code.Quote(o.DefaultValue)
	}
	return o.DefaultValue
}

func (u *unit) addOption(o synth.CommandOption) error {
	t, err := u.optionType(o)
	if err != nil {
		return err
	}
	v := u.local(o) + "Option"
	args := []string{code.Quote("--" + o.Name)}
	if o.DefaultValue != "" {
		args = append(args, "getDefaultValue: () => "+optionDefault(o))
	}
	args = append(args, "description: "+code.Quote(o.Description))
	u.w.Block("var "+v+" = new Option<"+t+">("+strings.Join(args, ", ")+") {", "};", func() {
		u.w.Line("IsRequired = %t,", o.Required)
		if o.Collection {
			u.w.Line("Arity = ArgumentArity.%s,", o.Arity)
		}
	})
	u.w.Line("%s.AddOption(%s);", commandVar, v)
	u.options = append(u.options, o)
	return nil
}

func (u *unit) commandHandler(op *synth.CommandHandler) error {
	var err error
	u.w.Block(commandVar+".SetHandler(async (invocationContext) => {", "});", func() {
		for _, o := range u.options {
			u.w.Line("var %s = invocationContext.ParseResult.GetValueForOption(%sOption);", u.local(o), u.local(o))
		}
		for _, h := range op.Ops {
			switch h := h.(type) {
			case *synth.SendPaged:
				u.w.Line("var pagingService = invocationContext.BindingContext.GetRequiredService<IPagingService>();")
			case *synth.WriteOutput:
				if h.Mode == synth.OutputFormatted || h.Mode == synth.OutputText {
					u.w.Line("var outputFormatterFactory = invocationContext.BindingContext.GetRequiredService<IOutputFormatterFactory>();")
				}
				if h.Filter {
					u.w.Line("var outputFilter = invocationContext.BindingContext.GetRequiredService<IOutputFilter>();")
				}
			}
		}
		u.w.Line("var %s = invocationContext.GetCancellationToken();", cancellationVar)

		u.handler = true
		defer func() { u.handler = false }()
		for _, h := range op.Ops {
			if err = u.op(h); err != nil {
				return
			}
		}
	})
	return err
}

func (u *unit) buildRequest(op *synth.BuildRequest) error {
	args := make([]*ir.Parameter, 0, len(op.Generator.Signature()))
	for _, p := range op.Generator.Signature() {
		switch p.Kind {
		case ir.ParamRequestBody:
			args = append(args, op.Body)
		case ir.ParamRequestBodyContentType:
			args = append(args, op.ContentType)
		default:
			args = append(args, nil)
		}
	}
	call := emit.Arguments(op.Generator, args, u.optionOrParam, "default", true)
	u.w.Line("var %s = %s(%s);", requestInfoVar, u.policy.MemberName(op.Generator.Name), strings.Join(call, ", "))
	for _, p := range op.Path {
		v := u.optionLocal(p)
		u.w.Line("if (%s is not null) %s.PathParameters.Add(%s, %s);", v, requestInfoVar, code.Quote(p.WireName()), v)
	}
	for _, p := range op.Query {
		v := u.optionLocal(p)
		u.w.Line("if (%s is not null) %s.QueryParameters.Add(%s, %s);", v, requestInfoVar, code.Quote(p.WireName()), v)
	}
	for _, p := range op.Headers {
		v := u.optionLocal(p)
		u.w.Line("%s.Headers.AddAll(%s);", requestInfoVar, v)
	}
	return nil
}

// optionOrParam returns the handler variable of p: the parsed body for
// body parameters and the bound option otherwise.
func (u *unit) optionOrParam(p *ir.Parameter) string {
	if p.Kind == ir.ParamRequestBody {
		return u.param(p)
	}
	return u.optionLocal(p)
}

func (u *unit) sendCommand(op *synth.Send) error {
	mapping := "default"
	if op.ErrorMapping {
		mapping = errorMapVar
	}
	if op.Variant == synth.SendNoContent {
		u.w.Line("await %s.SendNoContentAsync(%s, errorMapping: %s, cancellationToken: %s);", u.adapter(), requestInfoVar, mapping, cancellationVar)
		return nil
	}
	t, err := u.typeName(op.Type)
	if err != nil {
		return err
	}
	u.w.Line("var %s = await %s.SendPrimitiveAsync<%s>(%s, errorMapping: %s, cancellationToken: %s) ?? Stream.Null;", responseVar, u.adapter(), t, requestInfoVar, mapping, cancellationVar)
	return nil
}

func (u *unit) writeOutput(op *synth.WriteOutput) {
	w := u.w
	switch op.Mode {
	case synth.OutputSuccess:
		w.Line(`Console.WriteLine("Success");`)
	case synth.OutputStream:
		file := u.outputLocal(synth.OptionOutputFile, "null")
		w.Block("if ("+file+" == null) {", "}", func() {
			w.Line("using var writeStream = Console.OpenStandardOutput();")
			w.Line("await %s.CopyToAsync(writeStream, %s);", responseVar, cancellationVar)
		})
		w.Block("else {", "}", func() {
			w.Line("using var writeStream = %s.OpenWrite();", file)
			w.Line("await %s.CopyToAsync(writeStream, %s);", responseVar, cancellationVar)
			w.Line("Console.WriteLine($\"Content written to {%s.FullName}.\");", file)
		})
	case synth.OutputText:
		w.Line("var formatter = outputFormatterFactory.GetFormatter(FormatterType.TEXT);")
		w.Line("await formatter.WriteOutputAsync(%s, null, %s);", responseVar, cancellationVar)
	case synth.OutputFormatted:
		if op.Filter {
			query := u.outputLocal(synth.OptionOutputFilter, "null")
			w.Line("%s = (%s != Stream.Null) ? await outputFilter.FilterOutputAsync(%s, %s, %s) : %s;", responseVar, responseVar, responseVar, query, cancellationVar, responseVar)
		}
		w.Line("var formatter = outputFormatterFactory.GetFormatter(%s);", u.outputLocal(synth.OptionOutputFormat, code.Quote("json")))
		w.Line("await formatter.WriteOutputAsync(%s, null, %s);", responseVar, cancellationVar)
	}
}
