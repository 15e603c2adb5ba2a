package cmdtree

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/broady/apigen/ir"
	"github.com/broady/apigen/synth"
)

// Node is one command of an assembled tree.
type Node struct {
	Name        string
	Description string

	// Method is the command builder that established the command.
	Method *ir.Method

	// Executable is set when the command has a handler.
	Executable bool
	HTTPMethod ir.HTTPMethod

	Options  []synth.CommandOption
	Children []*Node
}

// Child returns the child named name, compared case-insensitively.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// Find returns the descendant at path, or nil.
func (n *Node) Find(path ...string) *Node {
	cur := n
	for _, name := range path {
		if cur = cur.Child(name); cur == nil {
			return nil
		}
	}
	return cur
}

// Option returns the option named name, or nil.
func (n *Node) Option(name string) *synth.CommandOption {
	for i := range n.Options {
		if n.Options[i].Name == name {
			return &n.Options[i]
		}
	}
	return nil
}

// Walk calls fn for n and every descendant, depth first, with the path
// of command names leading to each node.
func (n *Node) Walk(fn func(path []string, n *Node)) {
	var walk func(path []string, n *Node)
	walk = func(path []string, n *Node) {
		fn(path, n)
		for _, c := range n.Children {
			walk(append(path[:len(path):len(path)], c.Name), c)
		}
	}
	walk(nil, n)
}

func (n *Node) add(child *Node) error {
	if existing := n.Child(child.Name); existing != nil {
		return &ir.StructuralError{
			Code:    ir.CodeDuplicateCommand,
			Element: child.Method.QualifiedName(),
			Message: "command \"" + n.Name + "\" already has a sub-command named \"" + child.Name + "\"",
		}
	}
	n.Children = append(n.Children, child)
	return nil
}

// Assemble evaluates the command builders reachable from the root command
// of graph and returns the resulting tree. The engine must synthesize
// command builders, as with Handlers.
func Assemble(e *synth.Engine, graph *ir.Namespace) (*Node, error) {
	var roots []*ir.Method
	for _, c := range graph.AllClasses() {
		for _, m := range c.Methods {
			if isCommandBuilder(m) && m.OriginalMethod != nil && m.OriginalMethod.Kind == ir.MethodClientConstructor {
				roots = append(roots, m)
			}
		}
	}
	switch len(roots) {
	case 0:
		return nil, errors.New("cmdtree: graph has no root command builder")
	case 1:
	default:
		return nil, &ir.StructuralError{Code: ir.CodeDuplicateCommand, Element: roots[1].QualifiedName(), Message: "more than one root command builder"}
	}
	a := &assembler{engine: e, bodies: make(map[*ir.Method]*synth.Body), active: make(map[*ir.Method]bool)}
	return a.command(roots[0])
}

type assembler struct {
	engine *synth.Engine
	bodies map[*ir.Method]*synth.Body

	// active holds the builders being evaluated.
	active map[*ir.Method]bool
}

func (a *assembler) body(m *ir.Method) (*synth.Body, error) {
	if b, ok := a.bodies[m]; ok {
		return b, nil
	}
	b, err := a.engine.Synthesize(m)
	if err != nil {
		return nil, err
	}
	a.bodies[m] = b
	return b, nil
}

func (a *assembler) enter(m *ir.Method) error {
	if a.active[m] {
		return &ir.StructuralError{Code: ir.CodeCommandCycle, Element: m.QualifiedName(), Message: "command builder reaches itself"}
	}
	a.active[m] = true
	return nil
}

func (a *assembler) command(m *ir.Method) (*Node, error) {
	if err := a.enter(m); err != nil {
		return nil, err
	}
	defer delete(a.active, m)

	b, err := a.body(m)
	if err != nil {
		return nil, err
	}
	var n *Node
	for _, op := range b.Ops {
		switch op := op.(type) {
		case *synth.InitCommand:
			if op.Reused != nil {
				if n, err = a.command(op.Reused); err != nil {
					return nil, err
				}
			} else {
				n = &Node{Name: op.Name, Method: m}
			}
			if n.Description == "" {
				n.Description = op.Description
			}
		case *synth.AddSubCommands:
			if err := a.addSubCommands(n, op); err != nil {
				return nil, err
			}
		case *synth.AddOption:
			n.Options = append(n.Options, op.Option)
		case *synth.CommandHandler:
			n.Executable = true
			n.HTTPMethod = m.HTTPMethod
		case *synth.ReturnItemCommands:
			return nil, errors.Newf("cmdtree: %s returns item commands, not a command", m.QualifiedName())
		}
	}
	if n == nil {
		return nil, errors.Newf("cmdtree: %s does not establish a command", m.QualifiedName())
	}
	return n, nil
}

// items evaluates an item command builder.
func (a *assembler) items(m *ir.Method) (execs, containers []*Node, err error) {
	if err := a.enter(m); err != nil {
		return nil, nil, err
	}
	defer delete(a.active, m)

	b, err := a.body(m)
	if err != nil {
		return nil, nil, err
	}
	for _, ret := range synth.OpsOf[*synth.ReturnItemCommands](b) {
		for _, em := range ret.Executables {
			n, err := a.command(em)
			if err != nil {
				return nil, nil, err
			}
			execs = append(execs, n)
		}
		for _, cm := range ret.Containers {
			if returnsItems(cm) {
				e, c, err := a.items(cm)
				if err != nil {
					return nil, nil, err
				}
				execs = append(execs, e...)
				containers = append(containers, c...)
				continue
			}
			n, err := a.command(cm)
			if err != nil {
				return nil, nil, err
			}
			containers = append(containers, n)
		}
	}
	return execs, containers, nil
}

func (a *assembler) addSubCommands(n *Node, op *synth.AddSubCommands) error {
	var execs, containers []*Node
	for _, sc := range op.Commands {
		if sc.Items {
			e, c, err := a.items(sc.Method)
			if err != nil {
				return err
			}
			execs = append(execs, e...)
			containers = append(containers, c...)
			continue
		}
		child, err := a.command(sc.Method)
		if err != nil {
			return err
		}
		if op.Direct {
			if err := n.add(child); err != nil {
				return err
			}
			continue
		}
		if isExecutable(sc.Method) {
			execs = append(execs, child)
		} else {
			containers = append(containers, child)
		}
	}
	if op.SortContainers {
		sort.SliceStable(containers, func(i, j int) bool { return containers[i].Name < containers[j].Name })
	}
	for _, child := range append(execs, containers...) {
		if err := n.add(child); err != nil {
			return err
		}
	}
	return nil
}
