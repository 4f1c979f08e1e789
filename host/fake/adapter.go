package fake

import (
	"fmt"

	"go.fiberkit.dev/reconciler/host"
)

// Adapter is the reference host.Adapter implementation used by the
// package's own end-to-end tests and by cmd/demo.
type Adapter struct {
	Events []Event
}

func NewAdapter() *Adapter { return &Adapter{} }

func (a *Adapter) record(kind EventKind, args string) {
	a.Events = append(a.Events, Event{Kind: kind, Args: args})
}

func (a *Adapter) CreateInstance(elementType, props, _rootContainer, _hostContext any) (any, error) {
	et, _ := elementType.(string)
	p, _ := props.(map[string]any)
	inst := &Instance{ElementType: et, Props: p}
	a.record(EventCreateInstance, inst.String())
	return inst, nil
}

func (a *Adapter) CreateTextInstance(text string, _rootContainer, _hostContext any) (any, error) {
	inst := &Instance{IsText: true, Text: text}
	a.record(EventCreateText, inst.String())
	return inst, nil
}

func (a *Adapter) AppendInitialChild(parent, child any) {
	p := parent.(*Instance)
	c := child.(*Instance)
	p.Children = append(p.Children, c)
	a.record(EventAppendInitialChild, fmt.Sprintf("%s under %s", c, p))
}

func (a *Adapter) FinalizeInitialChildren(_instance, _elementType, _props any) (bool, error) {
	return false, nil
}

func (a *Adapter) PrepareUpdate(_instance, _elementType, oldProps, newProps any) (any, error) {
	op, _ := oldProps.(map[string]any)
	np, _ := newProps.(map[string]any)
	var diff map[string]any
	for k, v := range np {
		// Children are reconciled as fibers, not diffed as a host prop
		// (a []Element value is not comparable with !=).
		if k == "children" {
			continue
		}
		if ov, ok := op[k]; !ok || ov != v {
			if diff == nil {
				diff = map[string]any{}
			}
			diff[k] = v
		}
	}
	if diff == nil {
		return nil, nil
	}
	return diff, nil
}

func (a *Adapter) CommitUpdate(instance, payload, _elementType, _oldProps, newProps any) error {
	inst := instance.(*Instance)
	diff, _ := payload.(map[string]any)
	if inst.Props == nil {
		inst.Props = map[string]any{}
	}
	for k, v := range diff {
		inst.Props[k] = v
	}
	a.record(EventCommitUpdate, inst.String())
	return nil
}

func (a *Adapter) CommitTextUpdate(textInstance any, _oldText, newText string) error {
	inst := textInstance.(*Instance)
	inst.Text = newText
	a.record(EventCommitTextUpdate, inst.String())
	return nil
}

func (a *Adapter) AppendChild(parent, child any) error {
	p := parent.(*Instance)
	c := child.(*Instance)
	p.Children = append(p.Children, c)
	a.record(EventAppendChild, fmt.Sprintf("%s under %s", c, p))
	return nil
}

func (a *Adapter) InsertBefore(parent, child, beforeChild any) error {
	p := parent.(*Instance)
	c := child.(*Instance)
	b, _ := beforeChild.(*Instance)

	a.removeFromChildren(p, c)
	if b == nil {
		p.Children = append(p.Children, c)
		a.record(EventInsertBefore, fmt.Sprintf("%s before <end> in %s", c, p))
		return nil
	}
	idx := indexOf(p.Children, b)
	if idx < 0 {
		p.Children = append(p.Children, c)
	} else {
		p.Children = append(p.Children, nil)
		copy(p.Children[idx+1:], p.Children[idx:])
		p.Children[idx] = c
	}
	a.record(EventInsertBefore, fmt.Sprintf("%s before %s in %s", c, b, p))
	return nil
}

func (a *Adapter) RemoveChild(parent, child any) error {
	p := parent.(*Instance)
	c := child.(*Instance)
	a.removeFromChildren(p, c)
	a.record(EventRemoveChild, fmt.Sprintf("%s from %s", c, p))
	return nil
}

func (a *Adapter) PrepareForCommit(_container any) any  { return nil }
func (a *Adapter) ResetAfterCommit(_container any)      {}
func (a *Adapter) GetRootHostContext(_container any) (any, error) { return nil, nil }
func (a *Adapter) GetChildHostContext(parentContext, _elementType any) (any, error) {
	return parentContext, nil
}

func (a *Adapter) removeFromChildren(p, c *Instance) {
	idx := indexOf(p.Children, c)
	if idx < 0 {
		return
	}
	p.Children = append(p.Children[:idx], p.Children[idx+1:]...)
}

func indexOf(children []*Instance, target *Instance) int {
	for i, c := range children {
		if c == target {
			return i
		}
	}
	return -1
}

var _ host.Adapter = (*Adapter)(nil)
