package dnd

import (
	"errors"
	"fmt"

	"github.com/zjrosen/dragsync/internal/log"
	"github.com/zjrosen/dragsync/internal/pubsub"
)

// ChangeKind names a model mutation.
type ChangeKind string

const (
	ChangeReordered ChangeKind = "reordered"
	ChangeMoved     ChangeKind = "moved"
	ChangeCopied    ChangeKind = "copied"
	ChangeRemoved   ChangeKind = "removed"
	ChangeSkipped   ChangeKind = "skipped"
)

// Change describes one mutation applied by the Reconciler, or one that was
// skipped (Kind ChangeSkipped, Err set).
type Change struct {
	Kind      ChangeKind
	GroupID   string
	From      string
	To        string
	FromIndex int
	ToIndex   int
	Snapshot  string
	Err       error
}

func (c Change) String() string {
	switch c.Kind {
	case ChangeRemoved:
		return fmt.Sprintf("%s %s from %s[%d]", c.Kind, c.Snapshot, c.From, c.FromIndex)
	case ChangeSkipped:
		return fmt.Sprintf("%s: %v", c.Kind, c.Err)
	default:
		return fmt.Sprintf("%s %s from %s[%d] to %s[%d]", c.Kind, c.Snapshot, c.From, c.FromIndex, c.To, c.ToIndex)
	}
}

func (c Change) eventType() pubsub.EventType {
	switch c.Kind {
	case ChangeCopied:
		return pubsub.CreatedEvent
	case ChangeRemoved:
		return pubsub.DeletedEvent
	case ChangeSkipped:
		return pubsub.WarnedEvent
	default:
		return pubsub.UpdatedEvent
	}
}

// Reconciler applies move, copy and remove to container item collections.
type Reconciler struct {
	state   *State
	matcher *Matcher
	changes pubsub.Publisher[Change]
}

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithChanges publishes every applied or skipped change to p.
func WithChanges(p pubsub.Publisher[Change]) ReconcilerOption {
	return func(r *Reconciler) { r.changes = p }
}

// NewReconciler creates a Reconciler over state.
func NewReconciler(state *State, matcher *Matcher, opts ...ReconcilerOption) *Reconciler {
	if matcher == nil {
		matcher = NewMatcher(nil)
	}
	r := &Reconciler{state: state, matcher: matcher}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// containerOf resolves a rendered container element to its registered container.
func (r *Reconciler) containerOf(el ContainerElement) (*Container, error) {
	if el == nil {
		return nil, ErrUnknownContainer
	}
	if _, ok := r.state.Group(el.GroupID()); !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownGroup, el.GroupID())
	}
	c, ok := r.state.containerFor(el)
	if !ok {
		return nil, fmt.Errorf("%w %q in group %q", ErrUnknownContainer, el.ContainerID(), el.GroupID())
	}
	return c, nil
}

// Matcher returns the matcher used to resolve snapshots.
func (r *Reconciler) Matcher() *Matcher { return r.matcher }

// Move moves item out of source and into target before sibling. A nil
// sibling means the tail of target.
//
// Within one container the sibling's index is taken before the item is
// removed, so a downward move lands one slot earlier than that index.
// Dropping an item in front of itself is a no-op.
func (r *Reconciler) Move(source *Container, item *Item, target *Container, sibling *Item) (Change, error) {
	from := source.indexOf(item)
	if from < 0 {
		return r.skip("move", source, item, ErrSnapshotMismatch)
	}

	if source == target {
		to := source.indexOf(sibling)
		if sibling != nil && from == to {
			return Change{Kind: ChangeReordered, GroupID: source.groupID, From: source.id, To: source.id, FromIndex: from, ToIndex: from}, nil
		}

		moved := source.removeAt(from)
		var at int
		switch {
		case to < 0:
			at = len(source.items)
		case from < to:
			at = to - 1
		default:
			at = to
		}
		source.insertAt(at, moved)

		return r.applied(Change{Kind: ChangeReordered, GroupID: source.groupID, From: source.id, To: source.id, FromIndex: from, ToIndex: at}, moved), nil
	}

	moved := source.removeAt(from)
	at := target.indexOf(sibling)
	if at < 0 {
		at = len(target.items)
	}
	target.insertAt(at, moved)

	return r.applied(Change{Kind: ChangeMoved, GroupID: source.groupID, From: source.id, To: target.id, FromIndex: from, ToIndex: at}, moved), nil
}

// Copy inserts a data-only duplicate of item into target before sibling.
// source is left untouched.
func (r *Reconciler) Copy(source *Container, item *Item, target *Container, sibling *Item) (Change, error) {
	from := source.indexOf(item)
	if from < 0 {
		return r.skip("copy", source, item, ErrSnapshotMismatch)
	}

	dup, err := r.matcher.Duplicate(item)
	if err != nil {
		return r.skip("copy", source, item, err)
	}

	at := target.indexOf(sibling)
	if at < 0 {
		at = len(target.items)
	}
	target.insertAt(at, dup)

	return r.applied(Change{Kind: ChangeCopied, GroupID: source.groupID, From: source.id, To: target.id, FromIndex: from, ToIndex: at}, dup), nil
}

// Remove deletes item from source.
func (r *Reconciler) Remove(source *Container, item *Item) (Change, error) {
	from := source.indexOf(item)
	if from < 0 {
		return r.skip("remove", source, item, ErrSnapshotMismatch)
	}
	removed := source.removeAt(from)
	return r.applied(Change{Kind: ChangeRemoved, GroupID: source.groupID, From: source.id, FromIndex: from, ToIndex: -1}, removed), nil
}

func (r *Reconciler) applied(c Change, item *Item) Change {
	c.Snapshot, _ = r.matcher.Snapshot(item)
	log.Debug(log.CatReconcile, "applied", "kind", c.Kind, "group", c.GroupID, "from", c.From, "to", c.To,
		"fromIndex", c.FromIndex, "toIndex", c.ToIndex)
	r.publish(c)
	return c
}

func (r *Reconciler) skip(op string, source *Container, item *Item, cause error) (Change, error) {
	snapshot := ""
	if item != nil {
		snapshot, _ = r.matcher.Snapshot(item)
	}
	err := &InconsistencyError{Op: op, GroupID: source.groupID, ContainerID: source.id, Snapshot: snapshot, Err: cause}
	return r.Skipped(err), err
}

// Skipped records a reconciliation that could not be applied. The error is
// logged and published; the model is left as it was.
func (r *Reconciler) Skipped(err error) Change {
	c := Change{Kind: ChangeSkipped, FromIndex: -1, ToIndex: -1, Err: err}
	var ie *InconsistencyError
	if errors.As(err, &ie) {
		c.GroupID = ie.GroupID
		c.From = ie.ContainerID
		c.Snapshot = ie.Snapshot
	}
	log.Warn(log.CatReconcile, "reconciliation skipped", "group", c.GroupID, "container", c.From, "error", err)
	r.publish(c)
	return c
}

func (r *Reconciler) publish(c Change) {
	if r.changes != nil {
		r.changes.Publish(c.eventType(), c)
	}
}
