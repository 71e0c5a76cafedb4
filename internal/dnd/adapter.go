package dnd

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/dragsync/internal/log"
	"github.com/zjrosen/dragsync/internal/tracing"
)

// Phase is the drag state of one group.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDragging
)

func (p Phase) String() string {
	if p == PhaseDragging {
		return "dragging"
	}
	return "idle"
}

// DiagnosticFunc receives non-fatal reconciliation problems.
type DiagnosticFunc func(groupID string, err error)

type gesture struct {
	phase Phase
	ctx   context.Context
	span  trace.Span
}

// Adapter turns drake lifecycle events into reconciliation calls.
type Adapter struct {
	reconciler *Reconciler
	tracer     trace.Tracer
	diagnose   DiagnosticFunc
	gestures   map[string]*gesture
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithTracer traces every gesture and reconciliation with t.
func WithTracer(t trace.Tracer) AdapterOption {
	return func(a *Adapter) {
		if t != nil {
			a.tracer = t
		}
	}
}

// WithDiagnosticHandler sends reconciliation inconsistencies to fn in
// addition to the log.
func WithDiagnosticHandler(fn DiagnosticFunc) AdapterOption {
	return func(a *Adapter) { a.diagnose = fn }
}

// NewAdapter creates an Adapter that mutates state through reconciler.
func NewAdapter(reconciler *Reconciler, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		reconciler: reconciler,
		tracer:     noop.NewTracerProvider().Tracer("dnd"),
		gestures:   make(map[string]*gesture),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Phase returns the drag state of the group. Unknown groups are idle.
func (a *Adapter) Phase(groupID string) Phase {
	if g, ok := a.gestures[groupID]; ok {
		return g.phase
	}
	return PhaseIdle
}

// Bind subscribes the adapter to every lifecycle event of g's drake. h is
// captured here; the host cannot swap handlers later.
func (a *Adapter) Bind(g *Group, h Handlers) {
	for _, name := range Events {
		g.drake.On(name, func(ev Event) {
			ev.Name = name
			a.Handle(g, h, ev)
		})
	}
	log.Debug(log.CatAdapter, "bound lifecycle events", "group", g.id, "drake", g.drake.ID())
}

// Handle processes one lifecycle event for g. The host handler always runs
// first and sees the model before any mutation.
func (a *Adapter) Handle(g *Group, h Handlers, ev Event) {
	observed := h.dispatch(ev)
	log.Debug(log.CatAdapter, "event", "group", g.id, "event", ev.Name, "observed", observed, "phase", a.Phase(g.id))

	ges := a.gesture(g.id)
	switch ev.Name {
	case EventDrag:
		if ges.phase == PhaseDragging {
			log.Debug(log.CatAdapter, "drag while dragging, restarting gesture", "group", g.id)
			ges.span.End()
		}
		ges.ctx, ges.span = a.tracer.Start(context.Background(), tracing.SpanGesture,
			trace.WithAttributes(attribute.String(tracing.AttrGroupID, g.id)))
		ges.phase = PhaseDragging
	case EventCancel:
		a.settle(g.id, ges, ev.Name)
	case EventDrop:
		if ges.phase == PhaseIdle {
			log.Debug(log.CatAdapter, "drop without drag", "group", g.id)
		}
		a.drop(ges.ctx, g, ev)
		a.settle(g.id, ges, ev.Name)
	case EventRemove:
		a.remove(ges.ctx, g, ev)
		a.settle(g.id, ges, ev.Name)
	default:
		if ges.span != nil {
			ges.span.AddEvent(tracing.EventLifecycle, trace.WithAttributes(attribute.String(tracing.AttrEvent, string(ev.Name))))
		}
	}
}

func (a *Adapter) gesture(groupID string) *gesture {
	ges, ok := a.gestures[groupID]
	if !ok {
		ges = &gesture{ctx: context.Background()}
		a.gestures[groupID] = ges
	}
	return ges
}

func (a *Adapter) settle(groupID string, ges *gesture, by EventName) {
	if ges.span != nil {
		ges.span.SetAttributes(attribute.String(tracing.AttrEvent, string(by)))
		ges.span.End()
	}
	ges.phase = PhaseIdle
	ges.ctx = context.Background()
	ges.span = nil
	log.Debug(log.CatAdapter, "gesture settled", "group", groupID, "by", by)
}

// drop applies the group's drop dispatch: no target is a no-op, copy wins
// unless copySortSource turns a same-container drop into a sort, and
// everything else is a move.
func (a *Adapter) drop(ctx context.Context, g *Group, ev Event) {
	_ = tracing.Run(ctx, a.tracer, tracing.SpanDrop, []attribute.KeyValue{attribute.String(tracing.AttrGroupID, g.id)},
		func(_ context.Context, span trace.Span) error {
			if ev.Container == nil {
				span.AddEvent(tracing.EventSpill)
				log.Debug(log.CatAdapter, "drop outside any container", "group", g.id)
				return nil
			}

			source, err := a.reconciler.containerOf(ev.Source)
			if err != nil {
				return a.skipped(g.id, span, &InconsistencyError{Op: "drop", GroupID: g.id, ContainerID: elementID(ev.Source), Err: err})
			}
			target, err := a.reconciler.containerOf(ev.Container)
			if err != nil {
				return a.skipped(g.id, span, &InconsistencyError{Op: "drop", GroupID: g.id, ContainerID: elementID(ev.Container), Err: err})
			}

			matcher := a.reconciler.Matcher()
			item, _, snapshot, err := matcher.FindElement(source, ev.Element)
			if err != nil {
				return a.skipped(g.id, span, &InconsistencyError{Op: "drop", GroupID: g.id, ContainerID: source.id, Snapshot: snapshot, Err: err})
			}
			sibling := a.sibling(g.id, span, target, ev.Sibling)

			op := "move"
			if g.policy.Copy(ev.Element, ev.Source) && !(g.policy.CopySortSource() && source == target) {
				op = "copy"
			}
			span.SetAttributes(
				attribute.String(tracing.AttrOp, op),
				attribute.String(tracing.AttrSource, source.id),
				attribute.String(tracing.AttrTarget, target.id),
				attribute.String(tracing.AttrSnapshot, snapshot),
				attribute.Bool(tracing.AttrSiblingOnTail, sibling == nil),
			)

			var change Change
			if op == "copy" {
				change, err = a.reconciler.Copy(source, item, target, sibling)
			} else {
				change, err = a.reconciler.Move(source, item, target, sibling)
			}
			if err != nil {
				a.notify(g.id, err)
				return err
			}
			span.SetAttributes(
				attribute.String(tracing.AttrChangeKind, string(change.Kind)),
				attribute.Int(tracing.AttrFromIndex, change.FromIndex),
				attribute.Int(tracing.AttrToIndex, change.ToIndex),
			)
			return nil
		})
}

// remove deletes the dragged item from the container the drag started in.
func (a *Adapter) remove(ctx context.Context, g *Group, ev Event) {
	_ = tracing.Run(ctx, a.tracer, tracing.SpanRemove, []attribute.KeyValue{attribute.String(tracing.AttrGroupID, g.id)},
		func(_ context.Context, span trace.Span) error {
			from := ev.Source
			if from == nil {
				from = ev.Container
			}
			source, err := a.reconciler.containerOf(from)
			if err != nil {
				return a.skipped(g.id, span, &InconsistencyError{Op: "remove", GroupID: g.id, ContainerID: elementID(from), Err: err})
			}

			item, _, snapshot, err := a.reconciler.Matcher().FindElement(source, ev.Element)
			if err != nil {
				return a.skipped(g.id, span, &InconsistencyError{Op: "remove", GroupID: g.id, ContainerID: source.id, Snapshot: snapshot, Err: err})
			}
			span.SetAttributes(attribute.String(tracing.AttrSource, source.id), attribute.String(tracing.AttrSnapshot, snapshot))

			change, err := a.reconciler.Remove(source, item)
			if err != nil {
				a.notify(g.id, err)
				return err
			}
			span.SetAttributes(
				attribute.String(tracing.AttrChangeKind, string(change.Kind)),
				attribute.Int(tracing.AttrFromIndex, change.FromIndex),
			)
			return nil
		})
}

// sibling resolves the element following the drop point. An element that
// matches nothing in target degrades to a tail insertion.
func (a *Adapter) sibling(groupID string, span trace.Span, target *Container, el Element) *Item {
	if el == nil {
		return nil
	}
	item, _, snapshot, err := a.reconciler.Matcher().FindElement(target, el)
	if err == nil {
		return item
	}
	span.AddEvent(tracing.EventSiblingMismatch, trace.WithAttributes(attribute.String(tracing.AttrSnapshot, snapshot)))
	err = fmt.Errorf("sibling %q in %s/%s, inserting at tail: %w", snapshot, groupID, target.id, err)
	log.Warn(log.CatAdapter, "unmatched sibling", "group", groupID, "container", target.id, "error", err)
	a.notify(groupID, err)
	return nil
}

func (a *Adapter) skipped(groupID string, span trace.Span, err *InconsistencyError) error {
	span.AddEvent(tracing.EventSkipped)
	a.reconciler.Skipped(err)
	a.notify(groupID, err)
	return err
}

func (a *Adapter) notify(groupID string, err error) {
	if a.diagnose != nil {
		a.diagnose(groupID, err)
	}
}

func elementID(el ContainerElement) string {
	if el == nil {
		return ""
	}
	return el.ContainerID()
}
