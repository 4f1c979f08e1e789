package commit

import "go.fiberkit.dev/reconciler/fiber"

// collectPassiveMounts walks the just-committed tree in post-order,
// queuing every fiber with a fresh PassiveEffects list for the next
// FlushPendingPassiveEffects call.
func (d *Driver) collectPassiveMounts(a *fiber.Arena, node fiber.ID, root *fiber.Root) {
	f := a.Get(node)
	if f.Flags&passiveMask == 0 && f.SubtreeFlags&passiveMask == 0 {
		return
	}
	for c := f.FirstChild; c != fiber.NoID; c = a.Get(c).NextSibling {
		d.collectPassiveMounts(a, c, root)
	}
	if f.Flags.Has(fiber.Passive) && len(f.PassiveEffects) > 0 {
		d.pendingMounts[root] = append(d.pendingMounts[root], passiveEntry{fiberPtr: f})
	}
}

// FlushPendingPassiveEffects runs every queued passive effect for root:
// first every queued unmount cleanup, then every queued mount (tearing
// down that fiber's previous cleanups before running its fresh setups),
// both in the post-order they were queued (§9's resolved ordering:
// "unmount-all-then-mount-all in post-order"). Returns whether any work
// ran, matching schedule.WorkPerformer's contract.
func (d *Driver) FlushPendingPassiveEffects(root *fiber.Root) bool {
	unmounts := d.pendingUnmounts[root]
	mounts := d.pendingMounts[root]
	delete(d.pendingUnmounts, root)
	delete(d.pendingMounts, root)

	if len(unmounts) == 0 && len(mounts) == 0 {
		return false
	}

	for _, cleanup := range unmounts {
		if cleanup != nil {
			cleanup()
		}
	}

	for _, entry := range mounts {
		f := entry.fiberPtr
		for _, cleanup := range f.PassiveCleanups {
			if cleanup != nil {
				cleanup()
			}
		}
		setups := f.PassiveEffects
		f.PassiveEffects = nil
		var newCleanups []func()
		for _, setup := range setups {
			if setup == nil {
				continue
			}
			if cleanup := setup(); cleanup != nil {
				newCleanups = append(newCleanups, cleanup)
			}
		}
		f.PassiveCleanups = newCleanups
	}

	return true
}
