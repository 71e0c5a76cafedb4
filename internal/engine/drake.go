package engine

import (
	"errors"
	"slices"

	"github.com/google/uuid"

	"github.com/zjrosen/dragsync/internal/dnd"
	"github.com/zjrosen/dragsync/internal/log"
)

var (
	// ErrDragging is returned by Start while a gesture is in progress.
	ErrDragging = errors.New("a drag is already in progress")
	// ErrNotDragging is returned by gesture methods when no drag is active.
	ErrNotDragging = errors.New("no drag in progress")
	// ErrNotDraggable means the node is not in any box of the drake, or the
	// moves/invalid predicates refused it.
	ErrNotDraggable = errors.New("node is not draggable")
)

type gesture struct {
	node    *Node
	source  *Box
	next    *Node // sibling that followed node when the drag started
	copy    *Node
	over    *Box
	shadow  *Box
	sibling *Node
}

// Drake drives drag gestures over a set of boxes. Events are emitted
// synchronously on the calling goroutine; a Drake is not safe for concurrent
// use.
type Drake struct {
	id        string
	opts      dnd.EngineOptions
	boxes     []*Box
	listeners map[dnd.EventName][]dnd.Listener
	drag      *gesture
}

// New creates a drake configured with opts.
func New(opts dnd.EngineOptions) *Drake {
	return &Drake{
		id:        uuid.New().String(),
		opts:      opts,
		listeners: make(map[dnd.EventName][]dnd.Listener),
	}
}

// Factory adapts New to dnd.EngineFactory.
func Factory(opts dnd.EngineOptions) dnd.Drake {
	return New(opts)
}

// ID implements dnd.Drake.
func (d *Drake) ID() string { return d.id }

// Options returns the configuration the drake was created with.
func (d *Drake) Options() dnd.EngineOptions { return d.opts }

// Direction is the axis boxes are laid out on.
func (d *Drake) Direction() dnd.Direction {
	return d.opts.Direction.Or(dnd.Vertical)
}

// AddContainer implements dnd.Drake. Only *Box elements can be driven.
func (d *Drake) AddContainer(c dnd.ContainerElement) {
	b, ok := c.(*Box)
	if !ok {
		log.Warn(log.CatEngine, "ignoring foreign container element", "container", c.ContainerID())
		return
	}
	if slices.Contains(d.boxes, b) {
		return
	}
	d.boxes = append(d.boxes, b)
}

// Containers implements dnd.Drake.
func (d *Drake) Containers() []dnd.ContainerElement {
	out := make([]dnd.ContainerElement, len(d.boxes))
	for i, b := range d.boxes {
		out[i] = b
	}
	return out
}

// On implements dnd.Drake.
func (d *Drake) On(name dnd.EventName, fn dnd.Listener) {
	d.listeners[name] = append(d.listeners[name], fn)
}

func (d *Drake) emit(ev dnd.Event) {
	log.Debug(log.CatEngine, "emit", "drake", d.id, "event", ev.Name)
	for _, fn := range d.listeners[ev.Name] {
		fn(ev)
	}
}

// Dragging reports whether a gesture is in progress.
func (d *Drake) Dragging() bool { return d.drag != nil }

// Dragged returns the node being dragged, or nil.
func (d *Drake) Dragged() *Node {
	if d.drag == nil {
		return nil
	}
	return d.drag.node
}

// Copying reports whether the current gesture copies.
func (d *Drake) Copying() bool { return d.drag != nil && d.drag.copy != nil }

// Owns reports whether b is one of the drake's boxes.
func (d *Drake) Owns(b *Box) bool { return slices.Contains(d.boxes, b) }

func (d *Drake) boxOf(n *Node) *Box {
	for _, b := range d.boxes {
		if b.IndexOf(n) >= 0 {
			return b
		}
	}
	return nil
}

func (d *Drake) isContainer(b *Box) bool {
	if b == nil {
		return false
	}
	if d.Owns(b) {
		return true
	}
	return d.opts.IsContainer != nil && d.opts.IsContainer(b)
}

// Start begins dragging n. It emits drag, then cloned for the mirror and,
// when the copy decision holds, cloned for the copy.
func (d *Drake) Start(n *Node) error {
	if d.drag != nil {
		return ErrDragging
	}
	source := d.boxOf(n)
	if source == nil {
		return ErrNotDraggable
	}
	next := source.Node(source.IndexOf(n) + 1)
	if d.opts.Invalid != nil && d.opts.Invalid(n, n) {
		return ErrNotDraggable
	}
	if d.opts.Moves != nil && !d.opts.Moves(n, source, n, nodeElement(next)) {
		return ErrNotDraggable
	}

	g := &gesture{node: n, source: source, next: next}
	if d.opts.Copy != nil && d.opts.Copy(n, source) {
		g.copy = n.clone()
	}
	d.drag = g

	d.emit(dnd.Event{Name: dnd.EventDrag, Element: n, Source: source})
	d.emit(dnd.Event{Name: dnd.EventCloned, Element: n.clone(), Original: n, Kind: dnd.CloneMirror})
	if g.copy != nil {
		d.emit(dnd.Event{Name: dnd.EventCloned, Element: g.copy, Original: n, Kind: dnd.CloneCopy})
	}
	return nil
}

// Hover moves the shadow into b before the node at index, emitting out and
// over when the hovered box changes and shadow every time. A box that does
// not accept the item is ignored.
func (d *Drake) Hover(b *Box, index int) error {
	g := d.drag
	if g == nil {
		return ErrNotDragging
	}
	sibling := b.Node(index)
	if !d.accepts(b, sibling) {
		return nil
	}

	el := d.element()
	if g.over != b {
		if g.over != nil {
			d.emit(dnd.Event{Name: dnd.EventOut, Element: el, Container: g.over, Source: g.source})
		}
		g.over = b
		d.emit(dnd.Event{Name: dnd.EventOver, Element: el, Container: b, Source: g.source})
	}
	g.shadow, g.sibling = b, sibling
	d.emit(dnd.Event{Name: dnd.EventShadow, Element: el, Container: b, Source: g.source})
	return nil
}

// Drop releases the drag into b before the node at index. index past the
// end drops at the tail. A nil or refusing target spills.
func (d *Drake) Drop(b *Box, index int) error {
	if d.drag == nil {
		return ErrNotDragging
	}
	if b == nil {
		return d.Spill()
	}
	sibling := b.Node(index)
	if !d.accepts(b, sibling) {
		return d.Spill()
	}
	d.release(b, sibling)
	return nil
}

// Spill releases the drag outside any box. With removeOnSpill the node is
// removed; with revertOnSpill, or before any shadow was placed, the drag is
// cancelled; otherwise the node drops where the shadow last was.
func (d *Drake) Spill() error {
	g := d.drag
	if g == nil {
		return ErrNotDragging
	}
	switch {
	case d.opts.RemoveOnSpill.Or(false):
		d.remove()
	case d.opts.RevertOnSpill.Or(false) || g.shadow == nil:
		d.cancel()
	default:
		d.release(g.shadow, g.sibling)
	}
	return nil
}

// Cancel aborts the drag, leaving every box unchanged.
func (d *Drake) Cancel() error {
	if d.drag == nil {
		return ErrNotDragging
	}
	d.cancel()
	return nil
}

// accepts decides whether b is a legal drop target for the current drag.
// A copying drag never sorts inside its own source unless copySortSource
// is set.
func (d *Drake) accepts(b *Box, sibling *Node) bool {
	g := d.drag
	if !d.isContainer(b) {
		return false
	}
	if g.copy != nil && b == g.source && !d.opts.CopySortSource {
		return false
	}
	if d.opts.Accepts != nil && !d.opts.Accepts(d.element(), b, g.source, nodeElement(sibling)) {
		return false
	}
	return true
}

func (d *Drake) release(target *Box, sibling *Node) {
	g := d.drag
	el := d.element()

	if g.copy != nil && !(d.opts.CopySortSource && target == g.source) {
		target.insertBefore(g.copy, sibling)
		d.finish(dnd.Event{Name: dnd.EventDrop, Element: g.copy, Container: target, Source: g.source, Sibling: nodeElement(sibling)})
		return
	}

	if sibling == g.node {
		sibling = g.next
	}
	if target == g.source && sibling == g.next {
		log.Debug(log.CatEngine, "initial placement, cancelling", "drake", d.id)
		if g.copy == nil {
			d.cancel()
			return
		}
	}

	g.source.remove(g.node)
	target.insertBefore(g.node, sibling)
	d.finish(dnd.Event{Name: dnd.EventDrop, Element: el, Container: target, Source: g.source, Sibling: nodeElement(sibling)})
}

func (d *Drake) remove() {
	g := d.drag
	if g.copy != nil {
		d.cancel()
		return
	}
	g.source.remove(g.node)
	d.finish(dnd.Event{Name: dnd.EventRemove, Element: g.node, Container: g.source, Source: g.source})
}

func (d *Drake) cancel() {
	g := d.drag
	d.finish(dnd.Event{Name: dnd.EventCancel, Element: d.element(), Container: g.source, Source: g.source})
}

// finish emits the settling event, out for any hovered box and dragend, in
// that order, and clears the gesture.
func (d *Drake) finish(ev dnd.Event) {
	g := d.drag
	d.drag = nil
	d.emit(ev)
	if g.over != nil {
		d.emit(dnd.Event{Name: dnd.EventOut, Element: ev.Element, Container: g.over, Source: g.source})
	}
	d.emit(dnd.Event{Name: dnd.EventDragEnd, Element: ev.Element})
}

// element is the node the gesture currently moves: the copy when copying.
func (d *Drake) element() *Node {
	if d.drag.copy != nil {
		return d.drag.copy
	}
	return d.drag.node
}

// nodeElement avoids wrapping a nil *Node in a non-nil interface.
func nodeElement(n *Node) dnd.Element {
	if n == nil {
		return nil
	}
	return n
}
