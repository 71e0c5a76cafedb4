// Package dnd keeps ordered item collections in sync with drag gestures.
//
// Containers are partitioned into groups. Every group owns one drag engine
// handle and one immutable Policy taken from its leader container. The engine
// reports lifecycle events with opaque element references; the Adapter maps
// those elements back to model items by snapshot equality and the Reconciler
// applies move, copy or remove to the owning containers.
package dnd

import (
	"encoding/json"
	"fmt"
)

// Item is a single model value held by a Container.
// The core treats Data as opaque and only ever inspects its canonical
// serialization, produced by a Codec.
type Item struct {
	Data any
}

// NewItem wraps a data value.
func NewItem(data any) *Item {
	return &Item{Data: data}
}

// NewItems wraps each value in values.
func NewItems(values ...any) []*Item {
	items := make([]*Item, len(values))
	for i, v := range values {
		items[i] = NewItem(v)
	}
	return items
}

// Codec produces the canonical serialization ("snapshot") of item data and
// turns a snapshot back into data. Two items match when their snapshots are
// equal, so Encode must be deterministic.
type Codec interface {
	Encode(data any) (string, error)
	Decode(snapshot string) (any, error)
}

// JSONCodec is the default Codec. encoding/json writes map keys in sorted
// order, which makes the output canonical for map-shaped data.
type JSONCodec struct{}

// Encode implements Codec.
func (JSONCodec) Encode(data any) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}
	return string(b), nil
}

// Decode implements Codec.
func (JSONCodec) Decode(snapshot string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(snapshot), &v); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return v, nil
}

// Behavior is a function attached to an item outside its serialized form.
type Behavior func(item *Item, args ...any) any

// Behaviors is a capability table keyed by item identity.
// Copies made by the Reconciler are new items and never inherit entries,
// which keeps copy a pure data operation.
type Behaviors struct {
	table map[*Item]map[string]Behavior
}

// NewBehaviors creates an empty table.
func NewBehaviors() *Behaviors {
	return &Behaviors{table: make(map[*Item]map[string]Behavior)}
}

// Attach registers fn under name for item.
func (b *Behaviors) Attach(item *Item, name string, fn Behavior) {
	if item == nil || fn == nil {
		return
	}
	fns, ok := b.table[item]
	if !ok {
		fns = make(map[string]Behavior)
		b.table[item] = fns
	}
	fns[name] = fn
}

// Lookup returns the behavior registered under name for item.
func (b *Behaviors) Lookup(item *Item, name string) (Behavior, bool) {
	fn, ok := b.table[item][name]
	return fn, ok
}

// Call invokes the named behavior. The second result is false when the item
// has no such behavior, which is the normal outcome for copied items.
func (b *Behaviors) Call(item *Item, name string, args ...any) (any, bool) {
	fn, ok := b.Lookup(item, name)
	if !ok {
		return nil, false
	}
	return fn(item, args...), true
}

// Forget drops every behavior attached to item.
func (b *Behaviors) Forget(item *Item) {
	delete(b.table, item)
}
