package dispatch

import "go.fiberkit.dev/reconciler/fiber"

// normalizeChildren flattens the shapes an Element.Children field may
// hold into a uniform slice for reconcileChildren, wrapping bare strings
// as text elements.
func normalizeChildren(children any) []Element {
	switch c := children.(type) {
	case nil:
		return nil
	case string:
		return []Element{{Type: textType, Children: c}}
	case Element:
		// The zero Element (no Type) renders nothing.
		if c.Type == nil {
			return nil
		}
		return []Element{c}
	case []Element:
		return c
	default:
		return nil
	}
}

// underlyingType resolves an element Type to the fiber.type identity
// that should drive rendering: for MemoComponent this is the wrapped
// inner type (§3 "type: the component identity ... element_type: the
// unresolved form").
func underlyingType(elementType any) any {
	if m, ok := elementType.(*MemoType); ok {
		return m.Inner
	}
	return elementType
}

// reconcileChildren implements §4.6's child reconciliation: match old
// children against new descriptors by key (falling back to position),
// reuse matched fibers via create_work_in_progress, flag moved and new
// fibers with Placement, and collect unmatched leftovers as deletions.
func reconcileChildren(a *fiber.Arena, wip fiber.ID, currentFirstChild fiber.ID, newChildrenRaw any) {
	newChildren := normalizeChildren(newChildrenRaw)
	wipFiber := a.Get(wip)

	var oldOrder []fiber.ID
	oldByKey := map[fiber.Key]fiber.ID{}
	for id := currentFirstChild; id != fiber.NoID; id = a.Get(id).NextSibling {
		f := a.Get(id)
		if f.Key != "" {
			oldByKey[f.Key] = id
		}
		oldOrder = append(oldOrder, id)
	}
	matched := make(map[fiber.ID]bool, len(oldOrder))

	var firstNew, lastNew fiber.ID = fiber.NoID, fiber.NoID
	lastPlacedIndex := -1

	for i, el := range newChildren {
		oldMatch := findMatch(a, el, i, oldOrder, oldByKey, matched)

		props := propsWithChildren(el.Props, el.Children)

		var childID fiber.ID
		if oldMatch != fiber.NoID {
			matched[oldMatch] = true
			oldIndex := a.Get(oldMatch).Index
			childID = fiber.CreateWorkInProgress(a, oldMatch, props)
			cf := a.Get(childID)
			cf.ElementType = el.Type
			// A lazy fiber that already resolved keeps its resolved Type.
			if _, lazy := el.Type.(*LazyType); !lazy || cf.Tag == fiber.LazyComponent {
				cf.Type = underlyingType(el.Type)
			}
			cf.Key = el.Key
			cf.Index = i
			applyText(cf, el)
			if oldIndex < lastPlacedIndex {
				cf.Flags |= fiber.Placement
			} else {
				lastPlacedIndex = oldIndex
			}
		} else {
			childID = a.Alloc()
			cf := a.Get(childID)
			cf.Tag = tagOf(el.Type)
			cf.ElementType = el.Type
			cf.Type = underlyingType(el.Type)
			cf.Key = el.Key
			cf.PendingProps = props
			cf.Index = i
			cf.Mode = wipFiber.Mode
			cf.Flags = fiber.Placement
			applyText(cf, el)
		}

		cf := a.Get(childID)
		cf.Parent = wip
		if firstNew == fiber.NoID {
			firstNew = childID
		} else {
			a.Get(lastNew).NextSibling = childID
		}
		lastNew = childID
	}
	if lastNew != fiber.NoID {
		a.Get(lastNew).NextSibling = fiber.NoID
	}

	var deletions []fiber.ID
	for _, id := range oldOrder {
		if !matched[id] {
			deletions = append(deletions, id)
		}
	}

	wipFiber.FirstChild = firstNew
	wipFiber.Deletions = deletions
	if len(deletions) > 0 {
		wipFiber.Flags |= fiber.ChildDeletion
	}
}

func findMatch(a *fiber.Arena, el Element, position int, oldOrder []fiber.ID, oldByKey map[fiber.Key]fiber.ID, matched map[fiber.ID]bool) fiber.ID {
	if el.Key != "" {
		id, ok := oldByKey[el.Key]
		if !ok || matched[id] {
			return fiber.NoID
		}
		if sameType(a.Get(id).ElementType, el.Type) {
			return id
		}
		return fiber.NoID
	}
	if position >= len(oldOrder) {
		return fiber.NoID
	}
	id := oldOrder[position]
	if matched[id] || a.Get(id).Key != "" {
		return fiber.NoID
	}
	if sameType(a.Get(id).ElementType, el.Type) {
		return id
	}
	return fiber.NoID
}

func applyText(f *fiber.Fiber, el Element) {
	if el.Type != textType {
		return
	}
	text, _ := el.Children.(string)
	f.PendingProps = text
}

// propsWithChildren folds children into a shallow copy of props under the
// "children" key, the same convention a JSX-like descriptor factory would
// bake in at element-construction time (out of this package's scope per
// spec). A nil children leaves props untouched so its reference identity
// is preserved for begin_work's early-bailout check.
func propsWithChildren(props map[string]any, children any) map[string]any {
	if children == nil {
		return props
	}
	out := make(map[string]any, len(props)+1)
	for k, v := range props {
		out[k] = v
	}
	out["children"] = children
	return out
}

