// Package debug renders a fiber tree as a table for interactive
// inspection, grounded on the pack's use of go-pretty/v6/table for
// tabular CLI output (delaneyj-signalparty/cmd/benchmark).
package debug

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"go.fiberkit.dev/reconciler/fiber"
)

// PrintTree renders root's current tree as an indented table: one row
// per fiber, showing its tag, host type, flags, and lane state. Intended
// for ad hoc inspection (a REPL, a failing test's t.Log) rather than
// machine parsing.
func PrintTree(root *fiber.Root) string {
	tbl := table.NewWriter()
	tbl.AppendHeader(table.Row{"fiber", "tag", "type", "flags", "lanes", "child-lanes"})

	var walk func(id fiber.ID, depth int)
	walk = func(id fiber.ID, depth int) {
		if id == fiber.NoID {
			return
		}
		f := root.Arena.Get(id)
		tbl.AppendRow(table.Row{
			strings.Repeat("  ", depth) + fmt.Sprintf("#%d", id),
			f.Tag,
			typeLabel(f.Type),
			flagLabel(f),
			f.Lanes,
			f.ChildLanes,
		})
		for c := f.FirstChild; c != fiber.NoID; c = root.Arena.Get(c).NextSibling {
			walk(c, depth+1)
		}
	}
	walk(root.Current, 0)

	return tbl.Render()
}

func typeLabel(t any) string {
	switch v := t.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case nil:
		return "-"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func flagLabel(f *fiber.Fiber) string {
	var parts []string
	for _, bit := range []struct {
		flag fiber.Flags
		name string
	}{
		{fiber.Placement, "placement"},
		{fiber.Update, "update"},
		{fiber.ChildDeletion, "child-deletion"},
		{fiber.Ref, "ref"},
		{fiber.Snapshot, "snapshot"},
		{fiber.Passive, "passive"},
		{fiber.DidCapture, "did-capture"},
		{fiber.ShouldCapture, "should-capture"},
		{fiber.Incomplete, "incomplete"},
	} {
		if f.Flags.Has(bit.flag) {
			parts = append(parts, bit.name)
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}
