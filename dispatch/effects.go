package dispatch

import "go.fiberkit.dev/reconciler/fiber"

// HasEffects is optionally implemented by a class Instance to register
// passive (post-commit) effects (glossary "Passive effect") without a
// hooks runtime: each returned setup function runs once this render
// commits and may itself return a cleanup, run before the next setup or
// on unmount. There is no dependency-array skip; a component that wants
// to skip re-running an effect should compare props/state itself before
// returning a non-nil setup.
type HasEffects interface {
	Effects() []func() func()
}

func registerEffects(wipFiber *fiber.Fiber, inst any) {
	e, ok := inst.(HasEffects)
	if !ok {
		return
	}
	setups := e.Effects()
	if len(setups) == 0 {
		return
	}
	wipFiber.PassiveEffects = setups
	wipFiber.Flags |= fiber.Passive
}
