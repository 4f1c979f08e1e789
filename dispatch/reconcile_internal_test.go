package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.fiberkit.dev/reconciler/fiber"
)

func mountChildren(t *testing.T, a *fiber.Arena, parent fiber.ID, els ...Element) {
	t.Helper()
	reconcileChildren(a, parent, fiber.NoID, els)
}

func childKeys(a *fiber.Arena, parent fiber.ID) []fiber.Key {
	var out []fiber.Key
	for id := a.Get(parent).FirstChild; id != fiber.NoID; id = a.Get(id).NextSibling {
		out = append(out, a.Get(id).Key)
	}
	return out
}

func newParent(a *fiber.Arena) fiber.ID {
	id := a.Alloc()
	a.Get(id).Tag = fiber.HostElement
	return id
}

func TestReconcileChildrenInitialMountFlagsPlacement(t *testing.T) {
	a := fiber.NewArena()
	parent := newParent(a)

	mountChildren(t, a, parent, Element{Type: "li", Key: "a"}, Element{Type: "li", Key: "b"})

	assert.Equal(t, []fiber.Key{"a", "b"}, childKeys(a, parent))
	for id := a.Get(parent).FirstChild; id != fiber.NoID; id = a.Get(id).NextSibling {
		assert.True(t, a.Get(id).Flags.Has(fiber.Placement))
	}
}

func TestReconcileChildrenReordersByKeyWithoutRemount(t *testing.T) {
	a := fiber.NewArena()
	parent := newParent(a)
	mountChildren(t, a, parent, Element{Type: "li", Key: "a"}, Element{Type: "li", Key: "b"}, Element{Type: "li", Key: "c"})

	oldFirstChild := a.Get(parent).FirstChild
	oldA := oldFirstChild

	// Simulate this generation's children becoming "current" for the next
	// reconciliation pass by reconciling directly against them again.
	reconcileChildren(a, parent, oldFirstChild, []Element{
		{Type: "li", Key: "c"},
		{Type: "li", Key: "a"},
		{Type: "li", Key: "b"},
	})

	keys := childKeys(a, parent)
	require.Equal(t, []fiber.Key{"c", "a", "b"}, keys)

	// "a" is reused (its alternate points back to the original node)
	// rather than remounted from scratch.
	newFirst := a.Get(parent).FirstChild
	aChild := a.Get(newFirst).NextSibling
	assert.Equal(t, oldA, a.Get(aChild).Alternate)
}

func TestReconcileChildrenCollectsDeletions(t *testing.T) {
	a := fiber.NewArena()
	parent := newParent(a)
	mountChildren(t, a, parent, Element{Type: "li", Key: "a"}, Element{Type: "li", Key: "b"}, Element{Type: "li", Key: "c"})
	oldFirstChild := a.Get(parent).FirstChild

	reconcileChildren(a, parent, oldFirstChild, []Element{
		{Type: "li", Key: "a"},
	})

	assert.Equal(t, []fiber.Key{"a"}, childKeys(a, parent))
	assert.Len(t, a.Get(parent).Deletions, 2)
	assert.True(t, a.Get(parent).Flags.Has(fiber.ChildDeletion))
}

func TestReconcileChildrenPositionalFallbackWithoutKeys(t *testing.T) {
	a := fiber.NewArena()
	parent := newParent(a)
	mountChildren(t, a, parent, Element{Type: "span"}, Element{Type: "span"})
	oldFirstChild := a.Get(parent).FirstChild
	oldFirst := oldFirstChild

	reconcileChildren(a, parent, oldFirstChild, []Element{
		{Type: "span"},
		{Type: "span"},
		{Type: "span"},
	})

	keys := childKeys(a, parent)
	assert.Len(t, keys, 3)
	newFirst := a.Get(parent).FirstChild
	assert.Equal(t, oldFirst, a.Get(newFirst).Alternate)
}

func TestReconcileChildrenTypeChangeIsNotReused(t *testing.T) {
	a := fiber.NewArena()
	parent := newParent(a)
	mountChildren(t, a, parent, Element{Type: "li", Key: "a"})
	oldFirstChild := a.Get(parent).FirstChild
	oldA := oldFirstChild

	reconcileChildren(a, parent, oldFirstChild, []Element{
		{Type: "div", Key: "a"},
	})

	newFirst := a.Get(parent).FirstChild
	assert.Equal(t, fiber.NoID, a.Get(newFirst).Alternate, "a same-keyed but different-typed element must not reuse the old fiber")
	assert.Equal(t, []fiber.ID{oldA}, a.Get(parent).Deletions)
}
