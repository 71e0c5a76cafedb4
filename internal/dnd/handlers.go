package dnd

import (
	"fmt"
	"sort"
	"strings"
)

// HandlerNamer is implemented by container elements that name host handlers
// per lifecycle event. Only the leader's names are consulted.
type HandlerNamer interface {
	HandlerNames() map[string]string
}

// HandlerFunc is a host callback addressable by name. It receives the raw
// event, whatever its kind.
type HandlerFunc func(Event)

// HandlerTable holds the host's named callbacks.
type HandlerTable map[string]HandlerFunc

// ResolveHandlers builds a Handlers value from event-to-name bindings looked
// up in table. Event keys are case-insensitive. Unknown events and missing
// names produce warnings and leave the slot empty.
func ResolveHandlers(groupID string, names map[string]string, table HandlerTable) (Handlers, []Warning) {
	var (
		h        Handlers
		warnings []Warning
	)
	warn := func(option string, kind WarningKind, msg string) {
		warnings = append(warnings, Warning{GroupID: groupID, Option: option, Kind: kind, Message: msg})
	}

	keys := make([]string, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		name := strings.TrimSpace(names[k])
		if name == "" {
			continue
		}
		event := EventName(strings.ToLower(strings.TrimSpace(k)))
		fn, ok := table[name]
		if !ok {
			warn(k+"-handler", WarnMissingHandler, fmt.Sprintf("no host handler named %q; event not observed", name))
			continue
		}
		if !h.set(event, fn) {
			warn(k+"-handler", WarnUnknownOption, "unrecognized lifecycle event ignored")
		}
	}
	return h, warnings
}

// set fills the slot for event with fn. It reports false for unknown events.
func (h *Handlers) set(event EventName, fn HandlerFunc) bool {
	switch event {
	case EventCancel:
		h.Cancel = func(el Element, container, source ContainerElement) {
			fn(Event{Name: event, Element: el, Container: container, Source: source})
		}
	case EventCloned:
		h.Cloned = func(clone, original Element, kind CloneKind) {
			fn(Event{Name: event, Element: clone, Original: original, Kind: kind})
		}
	case EventDrag:
		h.Drag = func(el Element, source ContainerElement) {
			fn(Event{Name: event, Element: el, Source: source})
		}
	case EventDragEnd:
		h.DragEnd = func(el Element) {
			fn(Event{Name: event, Element: el})
		}
	case EventDrop:
		h.Drop = func(el Element, target, source ContainerElement, sibling Element) {
			fn(Event{Name: event, Element: el, Container: target, Source: source, Sibling: sibling})
		}
	case EventOut:
		h.Out = func(el Element, container, source ContainerElement) {
			fn(Event{Name: event, Element: el, Container: container, Source: source})
		}
	case EventOver:
		h.Over = func(el Element, container, source ContainerElement) {
			fn(Event{Name: event, Element: el, Container: container, Source: source})
		}
	case EventRemove:
		h.Remove = func(el Element, container, source ContainerElement) {
			fn(Event{Name: event, Element: el, Container: container, Source: source})
		}
	case EventShadow:
		h.Shadow = func(el Element, container, source ContainerElement) {
			fn(Event{Name: event, Element: el, Container: container, Source: source})
		}
	default:
		return false
	}
	return true
}
