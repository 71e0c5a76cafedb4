package dnd

import (
	"fmt"
	"slices"

	"github.com/zjrosen/dragsync/internal/log"
)

// RegistryConfig is what the host supplies once, up front.
type RegistryConfig struct {
	// Predicates resolves predicate-valued options by name.
	Predicates Predicates
	// Handlers holds the host callbacks per group id. A group without an
	// entry falls back to the handler names declared on its leader, resolved
	// against HandlerTable.
	Handlers map[string]Handlers
	// HandlerTable holds the named callbacks leaders may refer to.
	HandlerTable HandlerTable
	// HideWarnings logs configuration warnings at debug level only.
	HideWarnings bool
}

// Registry discovers containers, creates their groups and answers host lookups.
type Registry struct {
	state   *State
	factory EngineFactory
	adapter *Adapter
	cfg     RegistryConfig
}

// NewRegistry creates a Registry over state. Groups it creates get a drake
// from factory and are bound to adapter.
func NewRegistry(state *State, factory EngineFactory, adapter *Adapter, cfg RegistryConfig) *Registry {
	return &Registry{state: state, factory: factory, adapter: adapter, cfg: cfg}
}

// State returns the registry's state.
func (r *Registry) State() *State { return r.state }

// DiscoverAndRegister walks doc's container elements once, in document order.
// The first element seen for a group id leads it: its options define the
// group's policy and a drake is created for it. Later elements of the same
// group join that drake and never change the policy.
func (r *Registry) DiscoverAndRegister(doc Document) {
	for _, el := range doc.ContainerElements() {
		r.register(el)
	}
}

func (r *Registry) register(el ContainerElement) {
	groupID, containerID := el.GroupID(), el.ContainerID()
	if groupID == "" {
		log.Warn(log.CatRegistry, "container without group skipped", "container", containerID)
		return
	}

	if g, ok := r.state.Group(groupID); ok {
		if _, added := g.addContainer(el); !added {
			log.Warn(log.CatRegistry, "duplicate container skipped", "group", groupID, "container", containerID)
			return
		}
		g.drake.AddContainer(el)
		log.Debug(log.CatRegistry, "container joined group", "group", groupID, "container", containerID)
		return
	}

	policy, warnings := ResolvePolicy(groupID, el.Options(), r.cfg.Predicates)
	g := &Group{
		id:         groupID,
		policy:     policy,
		leader:     el,
		drake:      r.factory(policy.EngineOptions()),
		containers: make(map[string]*Container),
		warnings:   warnings,
	}
	h, hw := r.handlers(groupID, el)
	g.warnings = append(g.warnings, hw...)
	r.state.addGroup(g)
	logWarnings(g.warnings, r.cfg.HideWarnings)

	r.adapter.Bind(g, h)
	g.addContainer(el)
	g.drake.AddContainer(el)
	log.Info(log.CatRegistry, "group created", "group", groupID, "leader", containerID, "drake", g.drake.ID())
}

// handlers picks the host callbacks for a new group: explicit Handlers win,
// then names declared on the leader.
func (r *Registry) handlers(groupID string, leader ContainerElement) (Handlers, []Warning) {
	if h, ok := r.cfg.Handlers[groupID]; ok {
		return h, nil
	}
	namer, ok := leader.(HandlerNamer)
	if !ok {
		return Handlers{}, nil
	}
	return ResolveHandlers(groupID, namer.HandlerNames(), r.cfg.HandlerTable)
}

// Group returns the group with the given id.
func (r *Registry) Group(id string) (*Group, bool) {
	return r.state.Group(id)
}

// Container returns the container (groupID, containerID).
func (r *Registry) Container(groupID, containerID string) (*Container, bool) {
	return r.state.Container(groupID, containerID)
}

// Items returns a copy of the container's items.
func (r *Registry) Items(groupID, containerID string) ([]*Item, bool) {
	c, ok := r.state.Container(groupID, containerID)
	if !ok {
		return nil, false
	}
	return c.Items(), true
}

// Warnings returns the configuration warnings of a group.
func (r *Registry) Warnings(groupID string) []Warning {
	g, ok := r.state.Group(groupID)
	if !ok {
		return nil
	}
	return g.Warnings()
}

func (r *Registry) mustContainer(groupID, containerID string) (*Container, error) {
	g, ok := r.state.Group(groupID)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownGroup, groupID)
	}
	c, ok := g.Container(containerID)
	if !ok {
		return nil, fmt.Errorf("%w %q in group %q", ErrUnknownContainer, containerID, groupID)
	}
	return c, nil
}

// RegisterContainerItems replaces the container's items. Nil entries are
// rejected and leave the container unchanged.
func (r *Registry) RegisterContainerItems(groupID, containerID string, items []*Item) error {
	c, err := r.mustContainer(groupID, containerID)
	if err != nil {
		return err
	}
	if i := slices.Index(items, nil); i >= 0 {
		return fmt.Errorf("register %s/%s: nil item at index %d", groupID, containerID, i)
	}
	c.replace(items)
	log.Debug(log.CatRegistry, "items registered", "group", groupID, "container", containerID, "count", len(items))
	return nil
}

// InsertItem inserts item at index. An index outside the collection appends.
func (r *Registry) InsertItem(groupID, containerID string, index int, item *Item) error {
	if item == nil {
		return fmt.Errorf("insert into %s/%s: nil item", groupID, containerID)
	}
	c, err := r.mustContainer(groupID, containerID)
	if err != nil {
		return err
	}
	c.insertAt(index, item)
	return nil
}

// ItemBySnapshotPredicate returns the first item for which pred is true. A
// nil pred matches nothing.
func (r *Registry) ItemBySnapshotPredicate(groupID, containerID string, pred func(*Item) bool) (*Item, bool) {
	c, ok := r.state.Container(groupID, containerID)
	if !ok || pred == nil {
		return nil, false
	}
	for _, item := range c.items {
		if pred(item) {
			return item, true
		}
	}
	return nil, false
}

// ItemByProperties returns the first item whose data, decoded as an object,
// holds values[i] under names[i] for every i. Values compare by their codec
// encoding, so 2 and 2.0 are equal under JSON. Each item is encoded, which
// makes this O(n) in the container size.
func (r *Registry) ItemByProperties(groupID, containerID string, names []string, values []any) (*Item, bool) {
	if len(names) != len(values) {
		log.Warn(log.CatRegistry, "property lookup with mismatched names and values", "names", len(names), "values", len(values))
		return nil, false
	}
	codec := r.adapter.reconciler.Matcher().Codec()

	want := make([]string, len(values))
	for i, v := range values {
		s, err := codec.Encode(v)
		if err != nil {
			return nil, false
		}
		want[i] = s
	}

	return r.ItemBySnapshotPredicate(groupID, containerID, func(item *Item) bool {
		props, ok := properties(codec, item)
		if !ok {
			return false
		}
		for i, name := range names {
			got, ok := props[name]
			if !ok {
				return false
			}
			s, err := codec.Encode(got)
			if err != nil || s != want[i] {
				return false
			}
		}
		return true
	})
}

func properties(codec Codec, item *Item) (map[string]any, bool) {
	if m, ok := item.Data.(map[string]any); ok {
		return m, true
	}
	s, err := codec.Encode(item.Data)
	if err != nil {
		return nil, false
	}
	v, err := codec.Decode(s)
	if err != nil {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}
