// Package cmdtree synthesizes command builder methods for command-line
// targets and assembles the resulting command tree.
//
// Commands are contributed by three strategies: the root command, indexer
// item commands and navigation commands, plus executable leaf commands.
// Before a navigation or leaf command creates a fresh command object it
// looks for one to reuse, first among the indexer target's builders and
// then among sibling navigation builders, so that sibling names stay
// unique.
package cmdtree

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/broady/apigen/convention"
	"github.com/broady/apigen/ir"
	"github.com/broady/apigen/synth"
)

const (
	builderVar = "builder"
	modelVar   = "model"
	streamVar  = "stream"
)

// Handlers returns the default handler table with command builders
// synthesized by Synthesize.
func Handlers() synth.Handlers {
	return synth.DefaultHandlers().With(ir.MethodCommandBuilder, Synthesize)
}

// Synthesize is the handler for command builder methods.
func Synthesize(c *synth.Context, m *ir.Method) (*synth.Body, error) {
	if m.Kind != ir.MethodCommandBuilder {
		return nil, &ir.StructuralError{Code: ir.CodeWrongParentKind, Element: m.QualifiedName(), Message: "not a command builder method"}
	}
	b := &synth.Body{Method: m, Aliases: make(synth.Aliases)}
	var err error
	switch {
	case m.HTTPMethod != "":
		err = executable(c, m, b)
	case m.OriginalMethod != nil && m.OriginalMethod.Kind == ir.MethodClientConstructor:
		root(c, m, b)
	case m.OriginalIndexer != nil:
		err = items(c, m, b)
	default:
		err = navigation(c, m, b)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// CommandName returns the command name of m.
func CommandName(c *synth.Context, m *ir.Method) string {
	return names(c).Apply(m.SimpleName())
}

// OptionName returns the option name for the parameter name name.
func OptionName(c *synth.Context, name string) string {
	return names(c).Apply(name)
}

func names(c *synth.Context) convention.Casing {
	if c.Options.WordSeparator == convention.CaseSnake {
		return convention.CaseSnake
	}
	return convention.CaseKebab
}

func logger(c *synth.Context) *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func isCommandBuilder(m *ir.Method) bool { return m.Kind == ir.MethodCommandBuilder }

// isExecutable reports whether m builds a command with a handler.
func isExecutable(m *ir.Method) bool {
	return m.HTTPMethod != "" || (m.OriginalMethod != nil && m.OriginalMethod.HTTPMethod != "")
}

// returnsItems reports whether m returns executable and container lists
// rather than a single command.
func returnsItems(m *ir.Method) bool {
	if m.OriginalIndexer != nil {
		return true
	}
	ref := m.ReturnRef()
	return ref != nil && ref.IsCollection()
}

func pathParameters(m *ir.Method) []*ir.Parameter {
	return m.ParametersOfKind(ir.ParamPath)
}

func root(c *synth.Context, m *ir.Method, b *synth.Body) {
	b.Ops = append(b.Ops, &synth.InitCommand{Source: synth.CommandRoot, Description: describe(m.Documentation, false)})
	sub := &synth.AddSubCommands{Direct: true}
	for _, other := range m.Parent.Methods {
		if other == m || !isCommandBuilder(other) {
			continue
		}
		sub.Commands = append(sub.Commands, synth.SubCommand{Method: other, Items: returnsItems(other)})
	}
	if len(sub.Commands) > 0 {
		b.Ops = append(b.Ops, sub)
	}
	b.Ops = append(b.Ops, &synth.ReturnCommand{})
}

// items synthesizes an indexer item command: every command builder of the
// indexer target whose name is not already used by the owning class,
// split into executables and containers.
func items(c *synth.Context, m *ir.Method, b *synth.Body) error {
	target := m.OriginalIndexer.TargetClass()
	if target == nil {
		return &ir.StructuralError{Code: ir.CodeMissingReturnType, Element: m.QualifiedName(), Message: "indexer does not return a request builder"}
	}
	taken := make(map[string]bool)
	for _, other := range m.Parent.Methods {
		if isCommandBuilder(other) && strings.TrimSpace(other.SimpleName()) != "" {
			taken[strings.ToLower(other.SimpleName())] = true
		}
	}
	ret := &synth.ReturnItemCommands{Builder: builderVar}
	for _, tm := range target.Methods {
		if !isCommandBuilder(tm) || taken[strings.ToLower(tm.SimpleName())] {
			continue
		}
		if tm.HTTPMethod != "" {
			ret.Executables = append(ret.Executables, tm)
		} else {
			ret.Containers = append(ret.Containers, tm)
		}
	}
	if len(ret.Executables)+len(ret.Containers) > 0 {
		b.Ops = append(b.Ops, &synth.InstantiateBuilder{
			Var:            builderVar,
			Target:         target,
			PathParameters: m.Parent.PropertyOfKind(ir.PropertyPathParameters),
			Path:           pathParameters(m),
		})
		ret.Builder = builderVar
	}
	b.Ops = append(b.Ops, ret)
	return nil
}

// navigation synthesizes a container command for the builder m navigates
// to.
func navigation(c *synth.Context, m *ir.Method, b *synth.Body) error {
	var ref *ir.TypeRef
	if m.AccessedProperty != nil {
		ref = ir.AsRef(m.AccessedProperty.Type)
	} else if m.OriginalMethod != nil {
		ref = m.OriginalMethod.ReturnRef()
	}
	var target *ir.Class
	if ref != nil {
		target = ref.Class()
	}

	var children []*ir.Method
	if target != nil {
		children = builderMethods(c, CommandName(c, m), target)
	}

	included, err := initShared(c, m, b)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		b.Ops = append(b.Ops, &synth.InstantiateBuilder{
			Var:            builderVar,
			Target:         target,
			PathParameters: m.Parent.PropertyOfKind(ir.PropertyPathParameters),
			Path:           pathParameters(m),
		})
	}
	var subs []synth.SubCommand
	for _, child := range children {
		subs = append(subs, synth.SubCommand{Builder: builderVar, Method: child, Items: returnsItems(child)})
	}
	addCommands(b, append(subs, included...))
	b.Ops = append(b.Ops, &synth.ReturnCommand{})
	return nil
}

// builderMethods returns the command builders of target, one per
// case-insensitive name. Groups with more than one member keep the members
// that are not navigation properties, or the first member when all are.
func builderMethods(c *synth.Context, parent string, target *ir.Class) []*ir.Method {
	var order []string
	groups := make(map[string][]*ir.Method)
	for _, tm := range target.MethodsOfKind(ir.MethodCommandBuilder) {
		key := strings.ToLower(tm.SimpleName())
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], tm)
	}
	var out []*ir.Method
	for _, key := range order {
		group := groups[key]
		if len(group) == 1 {
			out = append(out, group[0])
			continue
		}
		var keep []*ir.Method
		for _, tm := range group {
			if tm.AccessedProperty == nil {
				keep = append(keep, tm)
			}
		}
		if len(keep) == 0 {
			keep = group[:1]
		}
		logger(c).Warn("skipping ambiguous sub-commands",
			zap.String("command", parent),
			zap.String("name", key),
			zap.Int("skipped", len(group)-len(keep)))
		out = append(out, keep...)
	}
	return out
}

// initShared establishes the command object of m and returns sub-commands
// that the indexer target contributes under the same name.
func initShared(c *synth.Context, m *ir.Method, b *synth.Body) ([]synth.SubCommand, error) {
	name := CommandName(c, m)
	init := &synth.InitCommand{Source: synth.CommandNew, Name: name, Description: describe(m.Documentation, false)}

	x, err := m.Parent.Indexer()
	if err != nil {
		return nil, err
	}
	var target *ir.Class
	if x != nil {
		target = x.TargetClass()
	}
	indexerVar := ""
	if target != nil {
		indexerVar = indexerVarName(x)
	}

	var matched *ir.Method
	if target != nil && strings.TrimSpace(m.SimpleName()) != "" {
		matched = indexerMatch(m, target)
	}
	if matched != nil {
		init.Source = synth.CommandFromIndexer
		init.Indexer = x
		init.Builder = target
		init.Reused = matched
	} else if nav := navigationMatch(m); nav != nil {
		init.Source = synth.CommandFromNavigation
		init.Reused = nav
	}

	var included []synth.SubCommand
	if target != nil && strings.TrimSpace(m.SimpleName()) != "" {
		for _, tm := range target.Methods {
			if tm == matched || !isCommandBuilder(tm) || !strings.EqualFold(tm.SimpleName(), m.SimpleName()) {
				continue
			}
			included = append(included, synth.SubCommand{Builder: indexerVar, Method: tm, Items: returnsItems(tm)})
		}
	}

	if matched != nil || len(included) > 0 {
		b.Ops = append(b.Ops, &synth.InstantiateBuilder{
			Var:            indexerVar,
			Target:         target,
			PathParameters: m.Parent.PropertyOfKind(ir.PropertyPathParameters),
			Path:           pathParameters(m),
		})
	}
	b.Ops = append(b.Ops, init)
	return included, nil
}

// indexerMatch returns the container command builder of the indexer
// target that has the name of m.
func indexerMatch(m *ir.Method, target *ir.Class) *ir.Method {
	for _, tm := range target.Methods {
		if isCommandBuilder(tm) && !returnsItems(tm) && tm.HTTPMethod == "" &&
			strings.EqualFold(tm.SimpleName(), m.SimpleName()) {
			return tm
		}
	}
	return nil
}

// navigationMatch returns the sibling navigation builder whose command m
// reuses. A navigation builder only reuses siblings declared before it,
// so reuse never forms a cycle within a class.
func navigationMatch(m *ir.Method) *ir.Method {
	if strings.TrimSpace(m.SimpleName()) == "" {
		return nil
	}
	for _, other := range m.Parent.Methods {
		if other == m {
			if m.AccessedProperty != nil {
				return nil
			}
			continue
		}
		if isCommandBuilder(other) && other.AccessedProperty != nil && strings.EqualFold(other.SimpleName(), m.SimpleName()) {
			return other
		}
	}
	return nil
}

func indexerVarName(x *ir.Indexer) string {
	return convention.CaseCamel.Apply(x.Name) + "Builder"
}

// addCommands appends the op adding subs: own commands before item
// commands, containers sorted when item commands contribute.
func addCommands(b *synth.Body, subs []synth.SubCommand) {
	if len(subs) == 0 {
		return
	}
	sort.SliceStable(subs, func(i, j int) bool { return !subs[i].Items && subs[j].Items })
	op := &synth.AddSubCommands{Commands: subs}
	for _, s := range subs {
		if s.Items {
			op.SortContainers = true
		}
	}
	b.Ops = append(b.Ops, op)
}
