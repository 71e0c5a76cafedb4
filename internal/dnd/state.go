package dnd

import (
	"slices"
)

// Container is a named ordered collection of items inside one group.
type Container struct {
	id       string
	groupID  string
	element  ContainerElement
	items    []*Item
	revision uint64
}

// ID returns the container id.
func (c *Container) ID() string { return c.id }

// GroupID returns the id of the owning group.
func (c *Container) GroupID() string { return c.groupID }

// Element returns the container element the container was registered from.
func (c *Container) Element() ContainerElement { return c.element }

// Items returns a copy of the ordered items. Mutating the returned slice
// does not affect the container; the items themselves are shared.
func (c *Container) Items() []*Item {
	return slices.Clone(c.items)
}

// Len returns the number of items.
func (c *Container) Len() int { return len(c.items) }

// Revision increments on every change to the item order.
func (c *Container) Revision() uint64 { return c.revision }

func (c *Container) indexOf(item *Item) int {
	if item == nil {
		return -1
	}
	return slices.Index(c.items, item)
}

func (c *Container) removeAt(i int) *Item {
	item := c.items[i]
	c.items = slices.Delete(c.items, i, i+1)
	c.revision++
	return item
}

func (c *Container) insertAt(i int, item *Item) {
	if i < 0 || i > len(c.items) {
		i = len(c.items)
	}
	c.items = slices.Insert(c.items, i, item)
	c.revision++
}

func (c *Container) replace(items []*Item) {
	c.items = slices.Clone(items)
	c.revision++
}

// Group is a set of containers sharing one drake and one Policy.
type Group struct {
	id         string
	policy     *Policy
	leader     ContainerElement
	drake      Drake
	containers map[string]*Container
	order      []string
	warnings   []Warning
}

// ID returns the group id.
func (g *Group) ID() string { return g.id }

// Policy returns the policy fixed when the leader was registered.
func (g *Group) Policy() *Policy { return g.policy }

// Leader returns the container element that defined the policy.
func (g *Group) Leader() ContainerElement { return g.leader }

// Drake returns the group's drag engine handle.
func (g *Group) Drake() Drake { return g.drake }

// Warnings returns the configuration warnings raised while resolving the policy.
func (g *Group) Warnings() []Warning { return slices.Clone(g.warnings) }

// Container returns the container with the given id.
func (g *Group) Container(id string) (*Container, bool) {
	c, ok := g.containers[id]
	return c, ok
}

// Containers returns the containers in registration order.
func (g *Group) Containers() []*Container {
	out := make([]*Container, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.containers[id])
	}
	return out
}

func (g *Group) addContainer(el ContainerElement) (*Container, bool) {
	id := el.ContainerID()
	if _, exists := g.containers[id]; exists {
		return nil, false
	}
	c := &Container{id: id, groupID: g.id, element: el}
	g.containers[id] = c
	g.order = append(g.order, id)
	return c, true
}

// State holds every group of one host view. The host owns it and passes it
// to the Registry, Adapter and Reconciler; nothing in this package keeps
// state of its own.
type State struct {
	groups map[string]*Group
	order  []string
}

// NewState creates an empty State.
func NewState() *State {
	return &State{groups: make(map[string]*Group)}
}

// Group returns the group with the given id.
func (s *State) Group(id string) (*Group, bool) {
	g, ok := s.groups[id]
	return g, ok
}

// Groups returns the groups in creation order.
func (s *State) Groups() []*Group {
	out := make([]*Group, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.groups[id])
	}
	return out
}

// Container returns the container registered under (groupID, containerID).
func (s *State) Container(groupID, containerID string) (*Container, bool) {
	g, ok := s.groups[groupID]
	if !ok {
		return nil, false
	}
	return g.Container(containerID)
}

// containerFor resolves the container a rendered container element maps to.
func (s *State) containerFor(el ContainerElement) (*Container, bool) {
	if el == nil {
		return nil, false
	}
	return s.Container(el.GroupID(), el.ContainerID())
}

func (s *State) addGroup(g *Group) {
	s.groups[g.id] = g
	s.order = append(s.order, g.id)
}
