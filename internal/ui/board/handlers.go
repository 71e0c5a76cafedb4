package board

import (
	"fmt"

	"github.com/zjrosen/dragsync/internal/dnd"
	"github.com/zjrosen/dragsync/internal/log"
)

// Predicate names usable in container options.
const (
	PredAlways         = "always"
	PredNever          = "never"
	PredHasModel       = "hasModel"
	PredNoModel        = "noModel"
	PredSameContainer  = "sameContainer"
	PredOtherContainer = "otherContainer"
	PredNotLast        = "notLast"
)

// Handler names usable in container handler bindings.
const (
	HandlerStatus = "status"
	HandlerLog    = "log"
)

func hasModel(el dnd.Element) bool {
	if el == nil {
		return false
	}
	_, ok := el.Snapshot()
	return ok
}

// Predicates returns the board's named predicates.
func Predicates() dnd.Predicates {
	return dnd.Predicates{
		Accepts: map[string]dnd.AcceptsFunc{
			PredAlways: func(dnd.Element, dnd.ContainerElement, dnd.ContainerElement, dnd.Element) bool { return true },
			PredSameContainer: func(_ dnd.Element, target, source dnd.ContainerElement, _ dnd.Element) bool {
				return target == source
			},
			PredOtherContainer: func(_ dnd.Element, target, source dnd.ContainerElement, _ dnd.Element) bool {
				return target != source
			},
		},
		Copy: map[string]dnd.CopyFunc{
			PredAlways:   func(dnd.Element, dnd.ContainerElement) bool { return true },
			PredNever:    func(dnd.Element, dnd.ContainerElement) bool { return false },
			PredHasModel: func(el dnd.Element, _ dnd.ContainerElement) bool { return hasModel(el) },
		},
		Invalid: map[string]dnd.InvalidFunc{
			PredNever:   func(dnd.Element, dnd.Element) bool { return false },
			PredNoModel: func(el, _ dnd.Element) bool { return !hasModel(el) },
		},
		IsContainer: map[string]dnd.IsContainerFunc{
			PredNever: func(dnd.ContainerElement) bool { return false },
		},
		Moves: map[string]dnd.MovesFunc{
			PredAlways:   func(dnd.Element, dnd.ContainerElement, dnd.Element, dnd.Element) bool { return true },
			PredHasModel: func(el dnd.Element, _ dnd.ContainerElement, _, _ dnd.Element) bool { return hasModel(el) },
			// An item with no following sibling is the last one in its container.
			PredNotLast: func(_ dnd.Element, _ dnd.ContainerElement, _, sibling dnd.Element) bool { return sibling != nil },
		},
	}
}

// handlerTable returns the named host handlers containers may bind to
// lifecycle events.
func (h *Host) handlerTable() dnd.HandlerTable {
	return dnd.HandlerTable{
		HandlerStatus: func(ev dnd.Event) {
			h.setStatus(statusLevel(ev.Name), "%s", describeEvent(ev))
		},
		HandlerLog: func(ev dnd.Event) {
			log.Info(log.CatUI, "lifecycle event", "event", ev.Name, "detail", describeEvent(ev))
		},
	}
}

func statusLevel(name dnd.EventName) StatusLevel {
	switch name {
	case dnd.EventDrop:
		return StatusSuccess
	case dnd.EventRemove, dnd.EventCancel:
		return StatusWarning
	default:
		return StatusInfo
	}
}

func describeEvent(ev dnd.Event) string {
	snapshot, _ := snapshotOf(ev.Element)
	switch ev.Name {
	case dnd.EventDrop:
		if ev.Container == nil {
			return fmt.Sprintf("dropped %s outside", snapshot)
		}
		return fmt.Sprintf("dropped %s into %s from %s", snapshot, containerID(ev.Container), containerID(ev.Source))
	case dnd.EventRemove:
		return fmt.Sprintf("removed %s from %s", snapshot, containerID(ev.Source))
	case dnd.EventCancel:
		return fmt.Sprintf("cancelled drag of %s", snapshot)
	case dnd.EventCloned:
		return fmt.Sprintf("cloned %s (%s)", snapshot, ev.Kind)
	default:
		return fmt.Sprintf("%s %s", ev.Name, snapshot)
	}
}

func snapshotOf(el dnd.Element) (string, bool) {
	if el == nil {
		return "", false
	}
	return el.Snapshot()
}

func containerID(c dnd.ContainerElement) string {
	if c == nil {
		return "-"
	}
	return c.ContainerID()
}
