package board

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/dragsync/internal/config"
	"github.com/zjrosen/dragsync/internal/dnd"
	"github.com/zjrosen/dragsync/internal/engine"
	"github.com/zjrosen/dragsync/internal/log"
	"github.com/zjrosen/dragsync/internal/pubsub"
)

// BehaviorDescribe is attached to every item loaded from configuration or
// the items file. Copies made by a drop do not have it.
const BehaviorDescribe = "describe"

// Host owns the rendered document and the drag-and-drop registry behind the
// board. It is the application the registry serves: it declares containers,
// registers their items, drives gestures and re-renders after changes.
type Host struct {
	cfg       config.Config
	doc       *engine.Document
	titles    map[*engine.Box]string
	colors    map[*engine.Box]string
	registry  *dnd.Registry
	changes   *pubsub.Broker[dnd.Change]
	behaviors *dnd.Behaviors
	active    *engine.Drake
	status    Status
}

// Status is the last message the host wants shown.
type Status struct {
	Text  string
	Level StatusLevel
}

// StatusLevel drives status bar styling.
type StatusLevel int

const (
	StatusInfo StatusLevel = iota
	StatusSuccess
	StatusWarning
	StatusError
)

// HostOption configures a Host.
type HostOption func(*hostOptions)

type hostOptions struct {
	tracer trace.Tracer
}

// WithTracer traces gestures with t.
func WithTracer(t trace.Tracer) HostOption {
	return func(o *hostOptions) { o.tracer = t }
}

// NewHost builds the document from the configured containers, discovers it
// and loads the initial items: inline items first, then the items file.
func NewHost(cfg config.Config, opts ...HostOption) (*Host, error) {
	var o hostOptions
	for _, opt := range opts {
		opt(&o)
	}

	h := &Host{
		cfg:       cfg,
		doc:       engine.NewDocument(),
		titles:    make(map[*engine.Box]string),
		colors:    make(map[*engine.Box]string),
		changes:   pubsub.NewBroker[dnd.Change](),
		behaviors: dnd.NewBehaviors(),
	}

	for _, cc := range cfg.GetContainers() {
		box := engine.NewBox(cc.Group, cc.ID, dnd.OptionValues(cc.Options))
		box.SetHandlerNames(cc.Handlers)
		h.doc.Add(box)
		h.titles[box] = cmp.Or(cc.Title, cc.ID)
		h.colors[box] = cc.Color
	}

	state := dnd.NewState()
	matcher := dnd.NewMatcher(dnd.JSONCodec{}, dnd.WithIndexCache(dnd.NewIndexCache()))
	reconciler := dnd.NewReconciler(state, matcher, dnd.WithChanges(h.changes))
	adapterOpts := []dnd.AdapterOption{dnd.WithDiagnosticHandler(h.diagnose)}
	if o.tracer != nil {
		adapterOpts = append(adapterOpts, dnd.WithTracer(o.tracer))
	}
	adapter := dnd.NewAdapter(reconciler, adapterOpts...)

	h.registry = dnd.NewRegistry(state, engine.Factory, adapter, dnd.RegistryConfig{
		Predicates:   Predicates(),
		HandlerTable: h.handlerTable(),
		HideWarnings: cfg.HideWarnings,
	})
	h.registry.DiscoverAndRegister(h.doc)

	if err := h.Reload(); err != nil {
		return nil, err
	}
	return h, nil
}

// Registry exposes the registry for lookups.
func (h *Host) Registry() *dnd.Registry { return h.registry }

// Changes is the broker every reconciliation is published on.
func (h *Host) Changes() *pubsub.Broker[dnd.Change] { return h.changes }

// Boxes returns the rendered containers in board order.
func (h *Host) Boxes() []*engine.Box { return h.doc.Boxes() }

// Title returns the display title of a box.
func (h *Host) Title(b *engine.Box) string { return h.titles[b] }

// Color returns the configured hex color of a box, or "".
func (h *Host) Color(b *engine.Box) string { return h.colors[b] }

// Status returns the last status message.
func (h *Host) Status() Status { return h.status }

func (h *Host) setStatus(level StatusLevel, format string, args ...any) {
	h.status = Status{Text: fmt.Sprintf(format, args...), Level: level}
}

// Reload registers the configured items again and re-renders. When an items
// file is configured its containers override the inline items. Items for
// undeclared containers are reported in the status, not returned.
func (h *Host) Reload() error {
	sets := h.cfg.Items()
	if h.cfg.ItemsFile != "" {
		fromFile, err := config.LoadItems(h.cfg.ItemsFile)
		if err != nil {
			return err
		}
		sets = append(sets, fromFile...)
	}

	var errs []error
	for _, set := range sets {
		if old, ok := h.registry.Items(set.Group, set.Container); ok {
			for _, item := range old {
				h.behaviors.Forget(item)
			}
		}
		items := dnd.NewItems(set.Items...)
		for _, item := range items {
			h.attachBehaviors(item)
		}
		if err := h.registry.RegisterContainerItems(set.Group, set.Container, items); err != nil {
			log.Warn(log.CatUI, "items for undeclared container ignored", "group", set.Group, "container", set.Container)
			errs = append(errs, err)
		}
	}
	if err := h.Render(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		h.setStatus(StatusWarning, "%v", err)
		return nil
	}
	h.setStatus(StatusInfo, "loaded %d containers", len(sets))
	return nil
}

func (h *Host) attachBehaviors(item *dnd.Item) {
	h.behaviors.Attach(item, BehaviorDescribe, func(it *dnd.Item, _ ...any) any {
		return fmt.Sprintf("%v", it.Data)
	})
}

// Render materializes every box from its container's model order, the way a
// templating layer re-renders after the model changes.
func (h *Host) Render() error {
	codec := dnd.JSONCodec{}
	for _, box := range h.doc.Boxes() {
		items, ok := h.registry.Items(box.GroupID(), box.ContainerID())
		if !ok {
			continue
		}
		if err := box.Render(items, codec); err != nil {
			return fmt.Errorf("rendering %s/%s: %w", box.GroupID(), box.ContainerID(), err)
		}
	}
	return nil
}

// Dragging reports whether a gesture is in progress.
func (h *Host) Dragging() bool { return h.active != nil && h.active.Dragging() }

// Dragged returns the node being dragged, or nil.
func (h *Host) Dragged() *engine.Node {
	if h.active == nil {
		return nil
	}
	return h.active.Dragged()
}

// Copying reports whether the current gesture copies.
func (h *Host) Copying() bool { return h.active != nil && h.active.Copying() }

func (h *Host) drakeFor(b *engine.Box) (*engine.Drake, error) {
	g, ok := h.registry.Group(b.GroupID())
	if !ok {
		return nil, fmt.Errorf("%w %q", dnd.ErrUnknownGroup, b.GroupID())
	}
	d, ok := g.Drake().(*engine.Drake)
	if !ok {
		return nil, fmt.Errorf("group %q is not driven by the board engine", b.GroupID())
	}
	return d, nil
}

// Grab starts dragging the node at index in b.
func (h *Host) Grab(b *engine.Box, index int) error {
	n := b.Node(index)
	if n == nil {
		return fmt.Errorf("nothing to grab at %s[%d]", b.ContainerID(), index)
	}
	d, err := h.drakeFor(b)
	if err != nil {
		return err
	}
	if err := d.Start(n); err != nil {
		h.setStatus(StatusWarning, "cannot grab: %v", err)
		return err
	}
	h.active = d
	return nil
}

// Hover moves the drop position to index in b.
func (h *Host) Hover(b *engine.Box, index int) error {
	if !h.Dragging() {
		return engine.ErrNotDragging
	}
	return h.active.Hover(b, index)
}

// Drop releases the drag into b before index. A box of another group spills,
// since items only travel within their group.
func (h *Host) Drop(b *engine.Box, index int) error {
	if !h.Dragging() {
		return engine.ErrNotDragging
	}
	var err error
	if b == nil || !h.active.Owns(b) {
		err = h.active.Spill()
	} else {
		err = h.active.Drop(b, index)
	}
	return h.settle(err)
}

// Spill releases the drag outside every container.
func (h *Host) Spill() error {
	if !h.Dragging() {
		return engine.ErrNotDragging
	}
	return h.settle(h.active.Spill())
}

// Cancel aborts the drag.
func (h *Host) Cancel() error {
	if !h.Dragging() {
		return engine.ErrNotDragging
	}
	return h.settle(h.active.Cancel())
}

// settle verifies the gesture's group, when enabled, before re-rendering
// from the model so drift between the two is reported rather than hidden.
func (h *Host) settle(err error) error {
	group := h.active.Containers()[0].GroupID()
	h.active = nil
	if err != nil {
		return err
	}
	if h.cfg.Verify {
		if verr := h.registry.Verify(group); verr != nil {
			h.setStatus(StatusError, "%s", firstLine(verr.Error()))
		}
	}
	return h.Render()
}

// Inspect looks the item at index in b up in the registry by its label
// field and describes it.
func (h *Host) Inspect(b *engine.Box, index int) (string, bool) {
	items, ok := h.registry.Items(b.GroupID(), b.ContainerID())
	if !ok || index < 0 || index >= len(items) {
		return "", false
	}
	item := items[index]

	field := h.cfg.UI.LabelField
	if m, isMap := item.Data.(map[string]any); isMap && field != "" {
		if v, has := m[field]; has {
			found, ok := h.registry.ItemByProperties(b.GroupID(), b.ContainerID(), []string{field}, []any{v})
			if !ok {
				return "", false
			}
			item = found
		}
	}

	desc, ok := h.behaviors.Call(item, BehaviorDescribe)
	if !ok {
		return fmt.Sprintf("%v (copy: no behaviors)", item.Data), true
	}
	return fmt.Sprint(desc), true
}

// Label renders the line shown for n: the label field first, then the
// remaining fields, or the raw snapshot for scalars.
func (h *Host) Label(n *engine.Node) string {
	snapshot, ok := n.Snapshot()
	if !ok {
		return "<no model>"
	}
	if h.cfg.UI.ShowSnapshots || h.cfg.UI.LabelField == "" {
		return snapshot
	}
	v, err := dnd.JSONCodec{}.Decode(snapshot)
	if err != nil {
		return snapshot
	}
	m, ok := v.(map[string]any)
	if !ok {
		return snapshot
	}
	label, ok := m[h.cfg.UI.LabelField]
	if !ok {
		return snapshot
	}
	var rest []string
	for _, k := range slices.Sorted(maps.Keys(m)) {
		if k != h.cfg.UI.LabelField {
			rest = append(rest, fmt.Sprintf("%s=%v", k, m[k]))
		}
	}
	if len(rest) == 0 {
		return fmt.Sprint(label)
	}
	return fmt.Sprintf("%v  %s", label, strings.Join(rest, " "))
}

func (h *Host) diagnose(groupID string, err error) {
	h.setStatus(StatusWarning, "%s: %s", groupID, firstLine(err.Error()))
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
