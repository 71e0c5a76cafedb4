package dnd

func obj(id string) map[string]any { return map[string]any{"id": id} }

func newContainer(group, id string, ids ...string) *Container {
	c := &Container{id: id, groupID: group}
	for _, v := range ids {
		c.items = append(c.items, NewItem(obj(v)))
	}
	return c
}

func idsOf(c *Container) []string {
	out := make([]string, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, it.Data.(map[string]any)["id"].(string))
	}
	return out
}

func itemByID(c *Container, id string) *Item {
	for _, it := range c.items {
		if it.Data.(map[string]any)["id"] == id {
			return it
		}
	}
	return nil
}

// element is a rendered item stand-in.
type element struct {
	snapshot string
	ok       bool
}

func (e element) Snapshot() (string, bool) { return e.snapshot, e.ok }

func elementFor(id string) element {
	s, _ := JSONCodec{}.Encode(obj(id))
	return element{snapshot: s, ok: true}
}
