package dispatch

import "go.fiberkit.dev/reconciler/fiber"

// Context is a value channel threaded down the tree without prop
// drilling. Provider and Consumer element types both reference the same
// *Context by pointer identity.
type Context struct {
	name string
	def  any

	// stack is the provider value stack for this context, pushed on
	// ContextProvider begin_work and popped on its complete_work. Reading
	// during render always sees the innermost enclosing Provider.
	stack []any
}

// NewContext creates a context carrying defaultValue when no Provider is
// present above the reading fiber.
func NewContext(name string, defaultValue any) *Context {
	return &Context{name: name, def: defaultValue}
}

func (c *Context) push(v any) { c.stack = append(c.stack, v) }
func (c *Context) pop()       { c.stack = c.stack[:len(c.stack)-1] }

// Read returns the innermost provided value, or the default if no
// Provider is currently pushed.
func (c *Context) Read() any {
	if len(c.stack) == 0 {
		return c.def
	}
	return c.stack[len(c.stack)-1]
}

// ProviderType identifies a ContextProvider element; Props["value"] is
// the value pushed for descendants.
type ProviderType struct {
	Context *Context
}

// ConsumerType identifies a ContextConsumer element; Props["children"]
// is ignored, and its child comes from Props["render"], a function
// `func(value any) Element` called with the context's current value.
type ConsumerType struct {
	Context *Context
}

// recordDependency adds ctx to the front of wip's dependency list if not
// already present, per §4.2's Dependencies tracking. The only reader is
// begin_work's bailout check, which refuses to bail out for any fiber
// with a recorded dependency.
func recordDependency(a *fiber.Arena, wip fiber.ID, ctx *Context) {
	w := a.Get(wip)
	if w.Dependencies == nil {
		w.Dependencies = &fiber.Dependencies{}
	}
	for d := w.Dependencies.FirstContext; d != nil; d = d.Next {
		if d.Context == ctx {
			return
		}
	}
	w.Dependencies.FirstContext = &fiber.ContextDependency{
		Context: ctx,
		Next:    w.Dependencies.FirstContext,
	}
}
