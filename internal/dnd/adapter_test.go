package dnd_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zjrosen/dragsync/internal/dnd"
	"github.com/zjrosen/dragsync/internal/engine"
	"github.com/zjrosen/dragsync/internal/tracing"
)

func twoColumns(options dnd.OptionValues) []*engine.Box {
	return []*engine.Box{
		engine.NewBox("G", "c0", options),
		engine.NewBox("G", "c1", nil),
	}
}

func TestAdapter_DropMovesAcrossContainers(t *testing.T) {
	b := newBoard(t, boardOptions{}, twoColumns(dnd.OptionValues{"copy": "false"})...)
	b.load("G", "c0", "1", "2", "3")
	b.load("G", "c1", "4", "5")

	b.dragTo("G", "c0", "2", "c1", 1)

	require.Equal(t, []string{"1", "3"}, b.ids("G", "c0"))
	require.Equal(t, []string{"4", "2", "5"}, b.ids("G", "c1"))
	require.NoError(t, b.reg.Verify("G"))
	require.Empty(t, b.diags)
}

func TestAdapter_DropCopiesAcrossContainers(t *testing.T) {
	b := newBoard(t, boardOptions{}, twoColumns(dnd.OptionValues{"copy": "true"})...)
	b.load("G", "c0", "1", "2", "3")
	b.load("G", "c1", "4", "5")

	b.dragTo("G", "c0", "2", "c1", 1)

	require.Equal(t, []string{"1", "2", "3"}, b.ids("G", "c0"))
	require.Equal(t, []string{"4", "2", "5"}, b.ids("G", "c1"))
	require.NoError(t, b.reg.Verify("G"))

	src, _ := b.reg.Items("G", "c0")
	dst, _ := b.reg.Items("G", "c1")
	require.NotSame(t, src[1], dst[1])
}

func TestAdapter_DropWithoutTargetLeavesModel(t *testing.T) {
	b := newBoard(t, boardOptions{}, twoColumns(nil)...)
	b.load("G", "c0", "1", "2")
	b.load("G", "c1")
	g, ok := b.reg.Group("G")
	require.True(t, ok)
	revs := []uint64{mustContainer(t, b, "G", "c0").Revision(), mustContainer(t, b, "G", "c1").Revision()}

	el := b.node("G", "c0", "1")
	source := b.box("G", "c0")
	b.adapter.Handle(g, dnd.Handlers{}, dnd.Event{Name: dnd.EventDrag, Element: el, Source: source})
	b.adapter.Handle(g, dnd.Handlers{}, dnd.Event{Name: dnd.EventDrop, Element: el, Container: nil, Source: source})

	require.Equal(t, []string{"1", "2"}, b.ids("G", "c0"))
	require.Empty(t, b.ids("G", "c1"))
	require.Equal(t, revs, []uint64{mustContainer(t, b, "G", "c0").Revision(), mustContainer(t, b, "G", "c1").Revision()})
	require.Empty(t, b.diags)
	require.Equal(t, dnd.PhaseIdle, b.adapter.Phase("G"))
}

func TestAdapter_CopyPredicateDecidesPerDrop(t *testing.T) {
	odd := func(el dnd.Element, _ dnd.ContainerElement) bool {
		s, ok := el.Snapshot()
		return ok && (s == `{"id":"1"}` || s == `{"id":"3"}`)
	}
	b := newBoard(t, boardOptions{preds: dnd.Predicates{Copy: map[string]dnd.CopyFunc{"odd": odd}}},
		twoColumns(dnd.OptionValues{"copy": "odd"})...)
	b.load("G", "c0", "1", "2")
	b.load("G", "c1", "3")

	b.dragTo("G", "c0", "1", "c1", 0)
	require.Equal(t, []string{"1", "2"}, b.ids("G", "c0"), "odd items are copied")
	require.Equal(t, []string{"1", "3"}, b.ids("G", "c1"))

	b.dragTo("G", "c0", "2", "c1", 0)
	require.Equal(t, []string{"1"}, b.ids("G", "c0"), "even items are moved")
	require.Equal(t, []string{"2", "1", "3"}, b.ids("G", "c1"))

	require.NoError(t, b.reg.Verify("G"))
	require.Empty(t, b.diags)
}

func TestAdapter_SpillRemovesItem(t *testing.T) {
	b := newBoard(t, boardOptions{}, engine.NewBox("G", "only", dnd.OptionValues{"removeOnSpill": "true"}))
	b.load("G", "only", "6")

	d := b.drake("G")
	require.NoError(t, d.Start(b.node("G", "only", "6")))
	require.NoError(t, d.Spill())

	require.Empty(t, b.ids("G", "only"))
	require.NoError(t, b.reg.Verify("G"))
}

func TestAdapter_ReorderWithinContainer(t *testing.T) {
	tests := []struct {
		name  string
		item  string
		index int
		want  []string
	}{
		{name: "down", item: "A", index: 3, want: []string{"B", "C", "A", "D"}},
		{name: "up", item: "D", index: 1, want: []string{"A", "D", "B", "C"}},
		{name: "tail", item: "B", index: 4, want: []string{"A", "C", "D", "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBoard(t, boardOptions{}, engine.NewBox("G", "c", nil))
			b.load("G", "c", "A", "B", "C", "D")

			b.dragTo("G", "c", tt.item, "c", tt.index)

			require.Equal(t, tt.want, b.ids("G", "c"))
			require.NoError(t, b.reg.Verify("G"))
		})
	}
}

func TestAdapter_InitialPlacementCancels(t *testing.T) {
	var cancelled int
	b := newBoard(t, boardOptions{handlers: map[string]dnd.Handlers{
		"G": {Cancel: func(dnd.Element, dnd.ContainerElement, dnd.ContainerElement) { cancelled++ }},
	}}, engine.NewBox("G", "c", nil))
	b.load("G", "c", "A", "B", "C")
	rev := mustContainer(t, b, "G", "c").Revision()

	b.dragTo("G", "c", "B", "c", 2)

	require.Equal(t, 1, cancelled)
	require.Equal(t, []string{"A", "B", "C"}, b.ids("G", "c"))
	require.Equal(t, rev, mustContainer(t, b, "G", "c").Revision())
	require.Equal(t, dnd.PhaseIdle, b.adapter.Phase("G"))
}

func TestAdapter_PolicyComesFromLeader(t *testing.T) {
	boxes := []*engine.Box{
		engine.NewBox("G", "c0", dnd.OptionValues{"copy": "false"}),
		engine.NewBox("G", "c1", dnd.OptionValues{"copy": "true"}),
	}
	b := newBoard(t, boardOptions{}, boxes...)
	b.load("G", "c0", "1")
	b.load("G", "c1", "2")

	b.dragTo("G", "c1", "2", "c0", 0)

	require.Equal(t, []string{"2", "1"}, b.ids("G", "c0"))
	require.Empty(t, b.ids("G", "c1"), "the follower's copy option is never consulted")
}

func TestAdapter_CopySortSourceSortsInSource(t *testing.T) {
	b := newBoard(t, boardOptions{}, twoColumns(dnd.OptionValues{"copy": "true", "copySortSource": "true"})...)
	b.load("G", "c0", "1", "2", "3")
	b.load("G", "c1")

	b.dragTo("G", "c0", "3", "c0", 0)
	require.Equal(t, []string{"3", "1", "2"}, b.ids("G", "c0"))

	b.dragTo("G", "c0", "1", "c1", 0)
	require.Equal(t, []string{"3", "1", "2"}, b.ids("G", "c0"))
	require.Equal(t, []string{"1"}, b.ids("G", "c1"))
	require.NoError(t, b.reg.Verify("G"))
}

func TestAdapter_CopyRefusesOwnSource(t *testing.T) {
	b := newBoard(t, boardOptions{}, twoColumns(dnd.OptionValues{"copy": "true"})...)
	b.load("G", "c0", "1", "2")

	b.dragTo("G", "c0", "2", "c0", 0)

	require.Equal(t, []string{"1", "2"}, b.ids("G", "c0"))
	require.NoError(t, b.reg.Verify("G"))
}

func TestAdapter_HandlersSeeModelBeforeMutation(t *testing.T) {
	var seen [][]string
	var order []dnd.EventName
	var b *board
	handlers := dnd.Handlers{
		Drag: func(dnd.Element, dnd.ContainerElement) { order = append(order, dnd.EventDrag) },
		Cloned: func(_, _ dnd.Element, kind dnd.CloneKind) {
			order = append(order, dnd.EventName("cloned:"+string(kind)))
		},
		Over:   func(dnd.Element, dnd.ContainerElement, dnd.ContainerElement) { order = append(order, dnd.EventOver) },
		Shadow: func(dnd.Element, dnd.ContainerElement, dnd.ContainerElement) { order = append(order, dnd.EventShadow) },
		Drop: func(_ dnd.Element, target, source dnd.ContainerElement, sibling dnd.Element) {
			order = append(order, dnd.EventDrop)
			require.Equal(t, "c1", target.ContainerID())
			require.Equal(t, "c0", source.ContainerID())
			require.Nil(t, sibling)
			seen = append(seen, b.ids("G", "c0"), b.ids("G", "c1"))
		},
		Out:     func(dnd.Element, dnd.ContainerElement, dnd.ContainerElement) { order = append(order, dnd.EventOut) },
		DragEnd: func(dnd.Element) { order = append(order, dnd.EventDragEnd) },
	}
	b = newBoard(t, boardOptions{handlers: map[string]dnd.Handlers{"G": handlers}}, twoColumns(nil)...)
	b.load("G", "c0", "1", "2")
	b.load("G", "c1", "3")

	b.dragTo("G", "c0", "1", "c1", 1)

	require.Equal(t, [][]string{{"1", "2"}, {"3"}}, seen)
	require.Equal(t, []string{"3", "1"}, b.ids("G", "c1"))
	require.Equal(t, []dnd.EventName{
		dnd.EventDrag, "cloned:mirror", dnd.EventOver, dnd.EventShadow, dnd.EventDrop, dnd.EventOut, dnd.EventDragEnd,
	}, order)
}

func TestAdapter_PhaseFollowsGesture(t *testing.T) {
	b := newBoard(t, boardOptions{}, twoColumns(nil)...)
	b.load("G", "c0", "1")
	d := b.drake("G")

	require.Equal(t, dnd.PhaseIdle, b.adapter.Phase("G"))
	require.NoError(t, d.Start(b.node("G", "c0", "1")))
	require.Equal(t, dnd.PhaseDragging, b.adapter.Phase("G"))
	require.NoError(t, d.Hover(b.box("G", "c1"), 0))
	require.Equal(t, dnd.PhaseDragging, b.adapter.Phase("G"), "over and shadow are informational")
	require.NoError(t, d.Cancel())
	require.Equal(t, dnd.PhaseIdle, b.adapter.Phase("G"))
	require.Equal(t, dnd.PhaseIdle, b.adapter.Phase("unknown"))
}

func TestAdapter_StaleElementIsSkipped(t *testing.T) {
	b := newBoard(t, boardOptions{}, twoColumns(nil)...)
	b.load("G", "c0", "1", "2")
	b.load("G", "c1", "3")

	// The model moves on without the box being re-rendered.
	require.NoError(t, b.reg.RegisterContainerItems("G", "c0", objs("1")))

	b.dragTo("G", "c0", "2", "c1", 0)

	require.Len(t, b.diags, 1)
	var ie *dnd.InconsistencyError
	require.True(t, errors.As(b.diags[0], &ie))
	require.ErrorIs(t, ie, dnd.ErrSnapshotMismatch)
	require.Equal(t, "drop", ie.Op)
	require.Equal(t, []string{"1"}, b.ids("G", "c0"))
	require.Equal(t, []string{"3"}, b.ids("G", "c1"))

	// Later events are unaffected.
	b.dragTo("G", "c0", "1", "c1", 2)
	require.Empty(t, b.ids("G", "c0"))
	require.Equal(t, []string{"3", "1"}, b.ids("G", "c1"))
}

func TestAdapter_UnmatchedSiblingInsertsAtTail(t *testing.T) {
	b := newBoard(t, boardOptions{}, twoColumns(nil)...)
	b.load("G", "c0", "1")
	b.load("G", "c1", "4", "5")
	require.NoError(t, b.reg.RegisterContainerItems("G", "c1", objs("4")))

	b.dragTo("G", "c0", "1", "c1", 1)

	require.Equal(t, []string{"4", "1"}, b.ids("G", "c1"))
	require.Len(t, b.diags, 1)
	require.ErrorIs(t, b.diags[0], dnd.ErrSnapshotMismatch)
	require.Contains(t, b.diags[0].Error(), "inserting at tail")
}

func TestAdapter_RemoveWithStaleModel(t *testing.T) {
	b := newBoard(t, boardOptions{}, engine.NewBox("G", "c", dnd.OptionValues{"removeOnSpill": "true"}))
	b.load("G", "c", "1", "2")
	require.NoError(t, b.reg.RegisterContainerItems("G", "c", objs("1")))

	d := b.drake("G")
	require.NoError(t, d.Start(b.node("G", "c", "2")))
	require.NoError(t, d.Spill())

	require.Len(t, b.diags, 1)
	require.ErrorIs(t, b.diags[0], dnd.ErrSnapshotMismatch)
	require.Equal(t, []string{"1"}, b.ids("G", "c"))
}

func TestAdapter_TracesGestures(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	b := newBoard(t, boardOptions{tracer: tp.Tracer("test")}, twoColumns(nil)...)
	b.load("G", "c0", "1")
	b.load("G", "c1")

	b.dragTo("G", "c0", "1", "c1", 0)

	spans := rec.Ended()
	require.Len(t, spans, 2)
	drop, gesture := spans[0], spans[1]
	require.Equal(t, tracing.SpanDrop, drop.Name())
	require.Equal(t, tracing.SpanGesture, gesture.Name())
	require.Equal(t, gesture.SpanContext().SpanID(), drop.Parent().SpanID())

	attrs := map[string]any{}
	for _, kv := range drop.Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	require.Equal(t, "move", attrs[tracing.AttrOp])
	require.Equal(t, "moved", attrs[tracing.AttrChangeKind])
	require.Equal(t, "c1", attrs[tracing.AttrTarget])
	require.Equal(t, true, attrs[tracing.AttrSiblingOnTail])
}

func mustContainer(t *testing.T, b *board, group, container string) *dnd.Container {
	t.Helper()
	c, ok := b.reg.Container(group, container)
	require.True(t, ok)
	return c
}
