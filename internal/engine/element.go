// Package engine is an in-memory drag-gesture engine. Boxes are rendered
// containers holding Nodes; a Drake tracks one gesture at a time over its
// boxes, rearranges nodes when the gesture ends and emits the lifecycle
// events the dnd adapter consumes.
package engine

import (
	"slices"

	"github.com/google/uuid"

	"github.com/zjrosen/dragsync/internal/dnd"
)

// Node is a rendered item.
type Node struct {
	id       string
	snapshot string
	hasModel bool
}

// NewNode creates a node carrying snapshot.
func NewNode(snapshot string) *Node {
	return &Node{id: uuid.New().String(), snapshot: snapshot, hasModel: true}
}

// NewBareNode creates a node without a model, such as a placeholder.
func NewBareNode() *Node {
	return &Node{id: uuid.New().String()}
}

// ID is unique per node, including clones.
func (n *Node) ID() string { return n.id }

// Snapshot implements dnd.Element.
func (n *Node) Snapshot() (string, bool) { return n.snapshot, n.hasModel }

func (n *Node) clone() *Node {
	return &Node{id: uuid.New().String(), snapshot: n.snapshot, hasModel: n.hasModel}
}

// Box is a rendered container.
type Box struct {
	group     string
	container string
	options   dnd.OptionValues
	handlers  map[string]string
	nodes     []*Node
}

// NewBox creates an empty box declaring membership of group.
func NewBox(group, container string, options dnd.OptionValues) *Box {
	return &Box{group: group, container: container, options: options}
}

// GroupID implements dnd.ContainerElement.
func (b *Box) GroupID() string { return b.group }

// ContainerID implements dnd.ContainerElement.
func (b *Box) ContainerID() string { return b.container }

// Options implements dnd.ContainerElement.
func (b *Box) Options() dnd.OptionValues { return b.options }

// SetHandlerNames binds lifecycle events to host handler names.
func (b *Box) SetHandlerNames(names map[string]string) { b.handlers = names }

// HandlerNames implements dnd.HandlerNamer.
func (b *Box) HandlerNames() map[string]string { return b.handlers }

// Elements implements dnd.ElementLister.
func (b *Box) Elements() []dnd.Element {
	out := make([]dnd.Element, len(b.nodes))
	for i, n := range b.nodes {
		out[i] = n
	}
	return out
}

// Nodes returns the nodes in rendered order.
func (b *Box) Nodes() []*Node { return slices.Clone(b.nodes) }

// Len returns the number of nodes.
func (b *Box) Len() int { return len(b.nodes) }

// Node returns the node at i, or nil when i is out of range.
func (b *Box) Node(i int) *Node {
	if i < 0 || i >= len(b.nodes) {
		return nil
	}
	return b.nodes[i]
}

// IndexOf returns the position of n, or -1.
func (b *Box) IndexOf(n *Node) int {
	if n == nil {
		return -1
	}
	return slices.Index(b.nodes, n)
}

// Append adds nodes at the end.
func (b *Box) Append(nodes ...*Node) {
	b.nodes = append(b.nodes, nodes...)
}

// Render replaces the nodes with fresh ones for items, the way a templating
// layer materializes new elements after the model changes.
func (b *Box) Render(items []*dnd.Item, codec dnd.Codec) error {
	nodes := make([]*Node, 0, len(items))
	for _, item := range items {
		s, err := codec.Encode(item.Data)
		if err != nil {
			return err
		}
		nodes = append(nodes, NewNode(s))
	}
	b.nodes = nodes
	return nil
}

func (b *Box) remove(n *Node) bool {
	i := b.IndexOf(n)
	if i < 0 {
		return false
	}
	b.nodes = slices.Delete(b.nodes, i, i+1)
	return true
}

// insertBefore inserts n before sibling, or at the end when sibling is nil
// or not a child.
func (b *Box) insertBefore(n, sibling *Node) {
	i := b.IndexOf(sibling)
	if i < 0 {
		b.nodes = append(b.nodes, n)
		return
	}
	b.nodes = slices.Insert(b.nodes, i, n)
}

// Document is an ordered set of boxes.
type Document struct {
	boxes []*Box
}

// NewDocument creates a document holding boxes in order.
func NewDocument(boxes ...*Box) *Document {
	return &Document{boxes: boxes}
}

// Add appends a box.
func (d *Document) Add(b *Box) { d.boxes = append(d.boxes, b) }

// Boxes returns the boxes in document order.
func (d *Document) Boxes() []*Box { return slices.Clone(d.boxes) }

// Box finds the box (group, container).
func (d *Document) Box(group, container string) (*Box, bool) {
	for _, b := range d.boxes {
		if b.group == group && b.container == container {
			return b, true
		}
	}
	return nil, false
}

// ContainerElements implements dnd.Document.
func (d *Document) ContainerElements() []dnd.ContainerElement {
	out := make([]dnd.ContainerElement, len(d.boxes))
	for i, b := range d.boxes {
		out[i] = b
	}
	return out
}
