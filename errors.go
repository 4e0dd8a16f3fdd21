package asyncdraw

import (
	"errors"
	"fmt"
)

// Sentinel errors for the asyncdraw package.
var (
	// ErrLayoutUnresolved is returned when a layout collaborator cannot
	// produce a frame for a node. Nothing is committed for that node.
	ErrLayoutUnresolved = errors.New("asyncdraw: layout unresolved")

	// ErrPrecondition is returned when a render is requested for a node
	// whose layout is not complete, or with an invalid canvas or scale.
	// It signals a caller bug, not a runtime condition.
	ErrPrecondition = errors.New("asyncdraw: precondition violated")

	// ErrNodeNotFound is returned when a NodeID does not resolve to a live node.
	ErrNodeNotFound = errors.New("asyncdraw: node not found")
)

// LayoutError describes a node whose layout could not be resolved.
// It unwraps to ErrLayoutUnresolved and, when present, to the
// collaborator's own error.
type LayoutError struct {
	Node NodeID
	Name string
	Err  error
}

func (e *LayoutError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("asyncdraw: layout unresolved for node %s", e.label())
	}
	return fmt.Sprintf("asyncdraw: layout unresolved for node %s: %v", e.label(), e.Err)
}

func (e *LayoutError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrLayoutUnresolved}
	}
	return []error{ErrLayoutUnresolved, e.Err}
}

func (e *LayoutError) label() string {
	if e.Name != "" {
		return fmt.Sprintf("%q (%s)", e.Name, e.Node)
	}
	return e.Node.String()
}

// PreconditionError describes a render call that violated its contract.
type PreconditionError struct {
	Node   NodeID
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("asyncdraw: precondition violated for node %s: %s", e.Node, e.Reason)
}

func (e *PreconditionError) Unwrap() error { return ErrPrecondition }
