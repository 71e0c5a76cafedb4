package dnd_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/dragsync/internal/dnd"
	"github.com/zjrosen/dragsync/internal/engine"
)

type board struct {
	t       *testing.T
	state   *dnd.State
	reg     *dnd.Registry
	adapter *dnd.Adapter
	doc     *engine.Document
	diags   []error
}

type boardOptions struct {
	preds    dnd.Predicates
	handlers map[string]dnd.Handlers
	table    dnd.HandlerTable
	tracer   trace.Tracer
	hide     bool
}

func newBoard(t *testing.T, opts boardOptions, boxes ...*engine.Box) *board {
	t.Helper()
	b := &board{t: t, state: dnd.NewState(), doc: engine.NewDocument(boxes...)}

	adapterOpts := []dnd.AdapterOption{
		dnd.WithDiagnosticHandler(func(_ string, err error) { b.diags = append(b.diags, err) }),
	}
	if opts.tracer != nil {
		adapterOpts = append(adapterOpts, dnd.WithTracer(opts.tracer))
	}
	b.adapter = dnd.NewAdapter(dnd.NewReconciler(b.state, dnd.NewMatcher(nil)), adapterOpts...)
	b.reg = dnd.NewRegistry(b.state, engine.Factory, b.adapter, dnd.RegistryConfig{
		Predicates:   opts.preds,
		Handlers:     opts.handlers,
		HandlerTable: opts.table,
		HideWarnings: opts.hide,
	})
	b.reg.DiscoverAndRegister(b.doc)
	return b
}

func obj(id string) map[string]any { return map[string]any{"id": id} }

func objs(ids ...string) []*dnd.Item {
	items := make([]*dnd.Item, len(ids))
	for i, id := range ids {
		items[i] = dnd.NewItem(obj(id))
	}
	return items
}

// load registers items for a container and renders its box from them.
func (b *board) load(group, container string, ids ...string) {
	b.t.Helper()
	items := objs(ids...)
	require.NoError(b.t, b.reg.RegisterContainerItems(group, container, items))
	box, ok := b.doc.Box(group, container)
	require.True(b.t, ok)
	require.NoError(b.t, box.Render(items, dnd.JSONCodec{}))
}

func (b *board) box(group, container string) *engine.Box {
	b.t.Helper()
	box, ok := b.doc.Box(group, container)
	require.True(b.t, ok)
	return box
}

func (b *board) drake(group string) *engine.Drake {
	b.t.Helper()
	g, ok := b.reg.Group(group)
	require.True(b.t, ok)
	d, ok := g.Drake().(*engine.Drake)
	require.True(b.t, ok)
	return d
}

func (b *board) ids(group, container string) []string {
	b.t.Helper()
	items, ok := b.reg.Items(group, container)
	require.True(b.t, ok)
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Data.(map[string]any)["id"].(string)
	}
	return out
}

// node returns the rendered node for item id in a box.
func (b *board) node(group, container, id string) *engine.Node {
	b.t.Helper()
	want, err := dnd.JSONCodec{}.Encode(obj(id))
	require.NoError(b.t, err)
	for _, n := range b.box(group, container).Nodes() {
		if s, _ := n.Snapshot(); s == want {
			return n
		}
	}
	b.t.Fatalf("no node %s in %s/%s", id, group, container)
	return nil
}

// dragTo performs a full gesture: start on item id, hover, drop at index.
func (b *board) dragTo(group, fromContainer, id, toContainer string, index int) {
	b.t.Helper()
	d := b.drake(group)
	require.NoError(b.t, d.Start(b.node(group, fromContainer, id)))
	target := b.box(group, toContainer)
	require.NoError(b.t, d.Hover(target, index))
	require.NoError(b.t, d.Drop(target, index))
}
