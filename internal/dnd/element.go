package dnd

// Element is a rendered item as seen by the drag engine.
// Snapshot returns the serialized model attached by the rendering layer;
// the second result is false when the element carries no model.
type Element interface {
	Snapshot() (string, bool)
}

// ContainerElement is a rendered container.
type ContainerElement interface {
	// GroupID is the group the container declares membership of.
	GroupID() string
	// ContainerID identifies the container within its group.
	ContainerID() string
	// Options returns the declared behavior options. Only the leader
	// container's options are ever consulted.
	Options() OptionValues
}

// ElementLister is implemented by container elements that can report their
// current children in order. Verify uses it to compare engine and model order.
type ElementLister interface {
	Elements() []Element
}

// Document yields every qualifying container element in document order.
type Document interface {
	ContainerElements() []ContainerElement
}

// EventName is a drag engine lifecycle event.
type EventName string

const (
	EventCancel  EventName = "cancel"
	EventCloned  EventName = "cloned"
	EventDrag    EventName = "drag"
	EventDragEnd EventName = "dragend"
	EventDrop    EventName = "drop"
	EventOut     EventName = "out"
	EventOver    EventName = "over"
	EventRemove  EventName = "remove"
	EventShadow  EventName = "shadow"
)

// Events lists every lifecycle event the Adapter subscribes to.
var Events = []EventName{
	EventCancel,
	EventCloned,
	EventDrag,
	EventDragEnd,
	EventDrop,
	EventOut,
	EventOver,
	EventRemove,
	EventShadow,
}

// CloneKind tells what a cloned event produced.
type CloneKind string

const (
	CloneMirror CloneKind = "mirror"
	CloneCopy   CloneKind = "copy"
)

// Event carries the arguments of one lifecycle event. Which fields are set
// depends on Name:
//
//	drag      Element, Source
//	dragend   Element
//	drop      Element, Container (target, nil on spill), Source, Sibling (nil = tail)
//	remove    Element, Container, Source
//	over/out  Element, Container, Source
//	shadow    Element, Container, Source
//	cancel    Element, Container, Source
//	cloned    Element (clone), Original, Kind
type Event struct {
	Name      EventName
	Element   Element
	Original  Element
	Kind      CloneKind
	Container ContainerElement
	Source    ContainerElement
	Sibling   Element
}

// Listener receives lifecycle events from a Drake.
type Listener func(Event)

// Drake is one drag engine handle. A group owns exactly one.
type Drake interface {
	// ID identifies the handle in logs.
	ID() string
	// AddContainer makes c a drop target of this handle.
	AddContainer(c ContainerElement)
	// Containers returns the container elements in insertion order.
	Containers() []ContainerElement
	// On subscribes fn to the named event.
	On(name EventName, fn Listener)
}

// EngineFactory creates a drake configured with the group's engine options.
type EngineFactory func(opts EngineOptions) Drake

// Handlers are the host's optional callbacks, one slot per lifecycle event.
// A nil slot means the event is not observed. Handlers always run before any
// model mutation caused by the same event.
type Handlers struct {
	Cancel  func(el Element, container, source ContainerElement)
	Cloned  func(clone, original Element, kind CloneKind)
	Drag    func(el Element, source ContainerElement)
	DragEnd func(el Element)
	Drop    func(el Element, target, source ContainerElement, sibling Element)
	Out     func(el Element, container, source ContainerElement)
	Over    func(el Element, container, source ContainerElement)
	Remove  func(el Element, container, source ContainerElement)
	Shadow  func(el Element, container, source ContainerElement)
}

// dispatch calls the slot matching ev.Name. It reports whether a slot existed.
func (h Handlers) dispatch(ev Event) bool {
	switch ev.Name {
	case EventCancel:
		if h.Cancel != nil {
			h.Cancel(ev.Element, ev.Container, ev.Source)
			return true
		}
	case EventCloned:
		if h.Cloned != nil {
			h.Cloned(ev.Element, ev.Original, ev.Kind)
			return true
		}
	case EventDrag:
		if h.Drag != nil {
			h.Drag(ev.Element, ev.Source)
			return true
		}
	case EventDragEnd:
		if h.DragEnd != nil {
			h.DragEnd(ev.Element)
			return true
		}
	case EventDrop:
		if h.Drop != nil {
			h.Drop(ev.Element, ev.Container, ev.Source, ev.Sibling)
			return true
		}
	case EventOut:
		if h.Out != nil {
			h.Out(ev.Element, ev.Container, ev.Source)
			return true
		}
	case EventOver:
		if h.Over != nil {
			h.Over(ev.Element, ev.Container, ev.Source)
			return true
		}
	case EventRemove:
		if h.Remove != nil {
			h.Remove(ev.Element, ev.Container, ev.Source)
			return true
		}
	case EventShadow:
		if h.Shadow != nil {
			h.Shadow(ev.Element, ev.Container, ev.Source)
			return true
		}
	}
	return false
}
