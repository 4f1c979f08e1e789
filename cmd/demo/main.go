// Command demo renders a small counter UI against host/fake, printing the
// container instance after each update and the adapter's recorded host
// event trace once at the end, exercising the reconciler package end to
// end without a real rendering surface.
package main

import (
	"fmt"
	"time"

	"go.fiberkit.dev/reconciler/dispatch"
	"go.fiberkit.dev/reconciler/host/fake"
	"go.fiberkit.dev/reconciler/internal/log"
	"go.fiberkit.dev/reconciler/reconciler"
)

type counter struct {
	value int
}

func (c *counter) Render(props map[string]any, state any) dispatch.Element {
	label, _ := props["label"].(string)
	return dispatch.Element{
		Type: "div",
		Props: map[string]any{
			"id": "counter",
		},
		Children: []dispatch.Element{
			{Type: "span", Children: fmt.Sprintf("%s: %d", label, c.value)},
		},
	}
}

func (c *counter) ComponentDidMount() {
	fmt.Println("counter mounted")
}

func app(n int) dispatch.Element {
	return dispatch.Element{
		Type: &dispatch.ClassComponent{
			Name: "Counter",
			New:  func() dispatch.Instance { return &counter{value: n} },
		},
		Props: map[string]any{"label": "clicks"},
	}
}

func main() {
	adapter := fake.NewAdapter()
	scheduler := fake.NewScheduler(time.Unix(0, 0))
	logger := log.NewNoop()

	root := &fake.Instance{ElementType: "container"}
	container := reconciler.CreateContainer(root, reconciler.Options{
		Adapter:          adapter,
		Scheduler:        scheduler,
		Logger:           logger,
		IdentifierPrefix: "demo",
	})

	for n := 0; n <= 3; n++ {
		element := app(n)
		container.FlushSync(func() { container.UpdateContainer(element) })
		fmt.Printf("render %d: %s\n", n, root)
	}

	fmt.Println("host events:")
	for _, ev := range adapter.Events {
		fmt.Printf("  %s %s\n", ev.Kind, ev.Args)
	}

	container.Unmount()
	fmt.Printf("after unmount: %s\n", root)
}
