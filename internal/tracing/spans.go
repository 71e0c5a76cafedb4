package tracing

// Span attribute keys.
const (
	AttrGroupID       = "dnd.group.id"
	AttrOp            = "dnd.op"
	AttrSource        = "dnd.container.source"
	AttrTarget        = "dnd.container.target"
	AttrFromIndex     = "dnd.index.from"
	AttrToIndex       = "dnd.index.to"
	AttrSnapshot      = "dnd.snapshot"
	AttrChangeKind    = "dnd.change.kind"
	AttrSiblingOnTail = "dnd.sibling.tail"
	AttrEvent         = "dnd.event"
)

// Span names.
const (
	SpanGesture = "dnd.gesture"
	SpanDrop    = "dnd.drop"
	SpanRemove  = "dnd.remove"
)

// Span event names.
const (
	EventLifecycle       = "lifecycle"
	EventSpill           = "spill"
	EventSiblingMismatch = "sibling.mismatch"
	EventSkipped         = "reconcile.skipped"
)
