package dnd

import (
	"errors"
	"fmt"
)

var (
	// ErrSnapshotMismatch means an element's snapshot matched no item in the
	// container it was believed to belong to.
	ErrSnapshotMismatch = errors.New("snapshot matches no item")

	// ErrUnknownGroup is returned by host-facing mutators for a group id that
	// was never registered. Lookups report absence with (nil, false) instead.
	ErrUnknownGroup = errors.New("unknown container group")

	// ErrUnknownContainer is the container counterpart of ErrUnknownGroup.
	ErrUnknownContainer = errors.New("unknown container")

	// ErrNoSnapshot means an element carried no serialized model.
	ErrNoSnapshot = errors.New("element has no snapshot")
)

// InconsistencyError describes a reconciliation step that was skipped
// because the model could not be matched to what the engine reported.
// The engine has already changed the rendered order, so the caller logs it
// and moves on; it is never fatal.
type InconsistencyError struct {
	Op          string
	GroupID     string
	ContainerID string
	Snapshot    string
	Err         error
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("%s in %s/%s skipped (snapshot %q): %v", e.Op, e.GroupID, e.ContainerID, e.Snapshot, e.Err)
}

func (e *InconsistencyError) Unwrap() error {
	return e.Err
}

// DesyncError reports a container whose rendered order differs from its
// model order. Diff is a line diff from model to rendered snapshots.
type DesyncError struct {
	GroupID     string
	ContainerID string
	Diff        string
}

func (e *DesyncError) Error() string {
	return fmt.Sprintf("container %s/%s out of sync with rendered elements:\n%s", e.GroupID, e.ContainerID, e.Diff)
}
