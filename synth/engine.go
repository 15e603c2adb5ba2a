// Package synth turns IR methods into abstract operation sequences.
//
// Every method kind maps to exactly one handler. The handler table is
// checked for exhaustiveness when an Engine is built, and targets replace
// individual entries instead of subclassing.
package synth

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/broady/apigen/convention"
	"github.com/broady/apigen/ir"
)

// Body is the synthesized, target independent body of a method.
type Body struct {
	Method *ir.Method
	Ops    []Op

	// Aliases holds local names for parameters that are rebound during
	// the body. The IR itself is never renamed.
	Aliases Aliases
}

func newBody(m *ir.Method) *Body {
	return &Body{Method: m, Aliases: make(Aliases)}
}

func (b *Body) add(ops ...Op) {
	b.Ops = append(b.Ops, ops...)
}

// Aliases maps a parameter to the local name standing in for it.
type Aliases map[*ir.Parameter]string

// Name returns the alias of p, or p's own name.
func (a Aliases) Name(p *ir.Parameter) string {
	if name, ok := a[p]; ok {
		return name
	}
	return p.Name
}

// OpsOf returns the operations of b with concrete type T, in order.
func OpsOf[T Op](b *Body) []T {
	var out []T
	for _, op := range b.Ops {
		if t, ok := op.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// RetryDefaults are default retry handler options installed by client
// constructors. Zero values leave the runtime defaults in place.
type RetryDefaults struct {
	DelaySeconds int
	MaxRetries   int
}

// RedirectDefaults are default redirect handler options.
type RedirectDefaults struct {
	MaxRedirects int
}

// Options are the run-level settings synthesis consults.
type Options struct {
	UsesBackingStore bool

	// Serializers and Deserializers are registered by client constructors
	// whose method does not list its own modules.
	Serializers   []string
	Deserializers []string

	Retry    RetryDefaults
	Redirect RedirectDefaults

	// WordSeparator is the casing of command and option names.
	WordSeparator convention.Casing
}

// Context is passed to every handler.
type Context struct {
	Policy  *convention.Policy
	Options Options
	Logger  *zap.Logger
}

// Handler synthesizes the body of one method.
type Handler func(c *Context, m *ir.Method) (*Body, error)

// Handlers maps each method kind to its handler.
type Handlers map[ir.MethodKind]Handler

// DefaultHandlers returns the target independent handler table. The
// CommandBuilder entry reports the kind as unsupported; command-line
// targets replace it.
func DefaultHandlers() Handlers {
	return Handlers{
		ir.MethodSerializer:                   synthesizeSerializer,
		ir.MethodDeserializer:                 synthesizeDeserializer,
		ir.MethodRequestGenerator:             synthesizeRequestGenerator,
		ir.MethodRequestExecutor:              synthesizeRequestExecutor,
		ir.MethodConstructor:                  synthesizeConstructor,
		ir.MethodClientConstructor:            synthesizeConstructor,
		ir.MethodRawUrlConstructor:            synthesizeConstructor,
		ir.MethodRequestBuilderWithParameters: synthesizeBuilderWithParameters,
		ir.MethodGetter:                       synthesizeGetter,
		ir.MethodSetter:                       synthesizeSetter,
		ir.MethodFactory:                      synthesizeFactory,
		ir.MethodCommandBuilder:               unsupportedCommandBuilder,
		ir.MethodQueryParametersMapper:        synthesizeQueryParametersMapper,
		ir.MethodIndexerBackwardCompatibility: synthesizeIndexerBackwardCompatibility,
	}
}

// With returns a copy of h with the handler for kind replaced.
func (h Handlers) With(kind ir.MethodKind, handler Handler) Handlers {
	out := make(Handlers, len(h)+1)
	for k, v := range h {
		out[k] = v
	}
	out[kind] = handler
	return out
}

// Observer is notified after each synthesized method.
type Observer func(m *ir.Method, err error)

// Engine dispatches methods to their handlers.
type Engine struct {
	ctx      *Context
	handlers Handlers
	observer Observer
}

// NewEngine returns an engine using handlers, which must cover every
// method kind. A nil observer is allowed.
func NewEngine(c *Context, handlers Handlers, observer Observer) (*Engine, error) {
	if c == nil || c.Policy == nil {
		return nil, errors.New("synth: context with a policy is required")
	}
	for _, kind := range ir.MethodKinds() {
		if handlers[kind] == nil {
			return nil, errors.Newf("synth: no handler for method kind %s", kind)
		}
	}
	if c.Logger == nil {
		cc := *c
		cc.Logger = zap.NewNop()
		c = &cc
	}
	return &Engine{ctx: c, handlers: handlers, observer: observer}, nil
}

// Context returns the context handed to handlers.
func (e *Engine) Context() *Context { return e.ctx }

// Synthesize returns the body of m.
func (e *Engine) Synthesize(m *ir.Method) (*Body, error) {
	h, ok := e.handlers[m.Kind]
	if !ok {
		return nil, errors.Newf("synth: unknown method kind %s on %s", m.Kind, m.QualifiedName())
	}
	if m.Parent == nil {
		return nil, &ir.StructuralError{Code: ir.CodeMissingParent, Element: m.QualifiedName(), Message: "method has no parent class"}
	}
	body, err := h(e.ctx, m)
	if err != nil {
		err = errors.Wrapf(err, "synthesize %s %s", m.Kind, m.QualifiedName())
	}
	if e.observer != nil {
		e.observer(m, err)
	}
	if err != nil {
		return nil, err
	}
	e.ctx.Logger.Debug("synthesized method",
		zap.String("method", m.QualifiedName()),
		zap.Stringer("kind", m.Kind),
		zap.Int("ops", len(body.Ops)))
	return body, nil
}

func unsupportedCommandBuilder(c *Context, m *ir.Method) (*Body, error) {
	return nil, &ir.UnsupportedConstructError{
		Construct: "command builder method",
		Type:      m.QualifiedName(),
		Target:    c.Policy.Target(),
	}
}
