// Package fake implements the host adapter trait (host.Adapter) against
// an in-memory tree of *Instance nodes, plus a manually-stepped
// host.Scheduler, so the end-to-end scenarios in spec §8 can assert on
// the exact host-event trace without a real rendering surface.
package fake

import "fmt"

// EventKind names a single host adapter call, recorded into Adapter.Events
// for scenario assertions (§8 "host events is the ordered trace the host
// adapter receives").
type EventKind string

const (
	EventCreateInstance     EventKind = "create_instance"
	EventCreateText         EventKind = "create_text_instance"
	EventAppendInitialChild EventKind = "append_initial_child"
	EventAppendChild        EventKind = "append_child"
	EventInsertBefore       EventKind = "insert_before"
	EventRemoveChild        EventKind = "remove_child"
	EventCommitUpdate       EventKind = "commit_update"
	EventCommitTextUpdate   EventKind = "commit_text_update"
)

// Event is one recorded host adapter call.
type Event struct {
	Kind EventKind
	// Args is a short human-readable description, e.g. "a" or "b under
	// container" — enough for scenario tests to assert against without
	// reaching back into the Instance graph.
	Args string
}

// Instance is a node in the fake host tree: either an element instance
// (ElementType != "") or a text instance (IsText).
type Instance struct {
	ElementType string
	Props       map[string]any
	IsText      bool
	Text        string
	Children    []*Instance
}

func (i *Instance) String() string {
	if i.IsText {
		return fmt.Sprintf("text(%q)", i.Text)
	}
	if id, ok := i.Props["id"]; ok {
		return fmt.Sprintf("%s#%v", i.ElementType, id)
	}
	return i.ElementType
}

// Container is the root container handle passed to create_container
// (§6's container_info).
type Container struct {
	Root *Instance
}
