package dnd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zjrosen/dragsync/internal/log"
)

// Option names recognized by ResolvePolicy. Keys are matched ignoring case,
// dashes and underscores, so "copy-sort-source" and "copy_sort_source"
// resolve to OptCopySortSource.
const (
	OptAccepts                  = "accepts"
	OptCopy                     = "copy"
	OptCopySortSource           = "copySortSource"
	OptDirection                = "direction"
	OptIgnoreInputTextSelection = "ignoreInputTextSelection"
	OptInvalid                  = "invalid"
	OptIsContainer              = "isContainer"
	OptMirrorContainer          = "mirrorContainer"
	OptMoves                    = "moves"
	OptRemoveOnSpill            = "removeOnSpill"
	OptRevertOnSpill            = "revertOnSpill"
)

var knownOptions = func() map[string]string {
	names := []string{
		OptAccepts, OptCopy, OptCopySortSource, OptDirection, OptIgnoreInputTextSelection,
		OptInvalid, OptIsContainer, OptMirrorContainer, OptMoves, OptRemoveOnSpill, OptRevertOnSpill,
	}
	m := make(map[string]string, len(names))
	for _, n := range names {
		m[normalizeOptionKey(n)] = n
	}
	return m
}()

func normalizeOptionKey(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	k = strings.TrimPrefix(k, "data-option-")
	return strings.NewReplacer("-", "", "_", "").Replace(k)
}

// OptionValues are the declared option strings of a container element.
type OptionValues map[string]string

// Direction is the axis used for drop-position geometry.
type Direction string

const (
	Vertical   Direction = "vertical"
	Horizontal Direction = "horizontal"
)

// Host predicates. Their shapes follow the drag engine's callbacks.
type (
	AcceptsFunc     func(el Element, target, source ContainerElement, sibling Element) bool
	CopyFunc        func(el Element, source ContainerElement) bool
	InvalidFunc     func(el, handle Element) bool
	IsContainerFunc func(el ContainerElement) bool
	MovesFunc       func(el Element, source ContainerElement, handle, sibling Element) bool
)

// Predicates is the host's table of named predicates. Option values naming a
// predicate are resolved against it once, when the group is created.
type Predicates struct {
	Accepts     map[string]AcceptsFunc
	Copy        map[string]CopyFunc
	Invalid     map[string]InvalidFunc
	IsContainer map[string]IsContainerFunc
	Moves       map[string]MovesFunc
}

// Optional is a value that may be unset. Unset options leave the drag
// engine's own default in place.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns a set Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Get returns the value and whether it was set.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// Or returns the value, or def when unset.
func (o Optional[T]) Or(def T) T {
	if !o.set {
		return def
	}
	return o.value
}

// Policy is the immutable behavior record of a group.
type Policy struct {
	copy                     Optional[bool]
	copyFn                   CopyFunc
	copySortSource           Optional[bool]
	direction                Optional[Direction]
	ignoreInputTextSelection Optional[bool]
	removeOnSpill            Optional[bool]
	revertOnSpill            Optional[bool]
	accepts                  AcceptsFunc
	invalid                  InvalidFunc
	isContainer              IsContainerFunc
	moves                    MovesFunc
}

// Copy reports whether a drag of el out of source copies instead of moving.
// A predicate-valued copy option is evaluated on every call.
func (p *Policy) Copy(el Element, source ContainerElement) bool {
	if p.copyFn != nil {
		return p.copyFn(el, source)
	}
	return p.copy.Or(false)
}

// CopyDeclared reports whether copy was configured at all, either statically
// or as a predicate.
func (p *Policy) CopyDeclared() bool {
	_, set := p.copy.Get()
	return set || p.copyFn != nil
}

// StaticCopy returns the static copy value; false when copy is unset or a predicate.
func (p *Policy) StaticCopy() Optional[bool] { return p.copy }

// CopySortSource reports whether reordering inside the source container is
// allowed while copy is active.
func (p *Policy) CopySortSource() bool { return p.copySortSource.Or(false) }

// Direction returns the configured axis.
func (p *Policy) Direction() Optional[Direction] { return p.direction }

// IgnoreInputTextSelection returns the configured value.
func (p *Policy) IgnoreInputTextSelection() Optional[bool] { return p.ignoreInputTextSelection }

// RemoveOnSpill returns the configured value.
func (p *Policy) RemoveOnSpill() Optional[bool] { return p.removeOnSpill }

// RevertOnSpill returns the configured value.
func (p *Policy) RevertOnSpill() Optional[bool] { return p.revertOnSpill }

// Accepts returns the acceptance predicate, or nil.
func (p *Policy) Accepts() AcceptsFunc { return p.accepts }

// Invalid returns the invalid-handle predicate, or nil.
func (p *Policy) Invalid() InvalidFunc { return p.invalid }

// IsContainer returns the dynamic container predicate, or nil.
func (p *Policy) IsContainer() IsContainerFunc { return p.isContainer }

// Moves returns the draggability predicate, or nil.
func (p *Policy) Moves() MovesFunc { return p.moves }

// String renders the set options, one per line, for diagnostics.
func (p *Policy) String() string {
	var lines []string
	add := func(name string, v any) { lines = append(lines, fmt.Sprintf("%s=%v", name, v)) }

	if p.copyFn != nil {
		add(OptCopy, "<predicate>")
	} else if v, ok := p.copy.Get(); ok {
		add(OptCopy, v)
	}
	if v, ok := p.copySortSource.Get(); ok {
		add(OptCopySortSource, v)
	}
	if v, ok := p.direction.Get(); ok {
		add(OptDirection, v)
	}
	if v, ok := p.ignoreInputTextSelection.Get(); ok {
		add(OptIgnoreInputTextSelection, v)
	}
	if v, ok := p.removeOnSpill.Get(); ok {
		add(OptRemoveOnSpill, v)
	}
	if v, ok := p.revertOnSpill.Get(); ok {
		add(OptRevertOnSpill, v)
	}
	for name, set := range map[string]bool{
		OptAccepts:     p.accepts != nil,
		OptInvalid:     p.invalid != nil,
		OptIsContainer: p.isContainer != nil,
		OptMoves:       p.moves != nil,
	} {
		if set {
			add(name, "<predicate>")
		}
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

// EngineOptions is what a drake is configured with. Unset fields keep the
// engine's defaults.
type EngineOptions struct {
	Copy                     func(el Element, source ContainerElement) bool
	CopySortSource           bool
	Direction                Optional[Direction]
	IgnoreInputTextSelection Optional[bool]
	RemoveOnSpill            Optional[bool]
	RevertOnSpill            Optional[bool]
	Accepts                  AcceptsFunc
	Invalid                  InvalidFunc
	IsContainer              IsContainerFunc
	Moves                    MovesFunc
}

// EngineOptions converts the policy into drake configuration.
func (p *Policy) EngineOptions() EngineOptions {
	opts := EngineOptions{
		CopySortSource:           p.CopySortSource(),
		Direction:                p.direction,
		IgnoreInputTextSelection: p.ignoreInputTextSelection,
		RemoveOnSpill:            p.removeOnSpill,
		RevertOnSpill:            p.revertOnSpill,
		Accepts:                  p.accepts,
		Invalid:                  p.invalid,
		IsContainer:              p.isContainer,
		Moves:                    p.moves,
	}
	if p.CopyDeclared() {
		opts.Copy = p.Copy
	}
	return opts
}

// WarningKind classifies a configuration warning.
type WarningKind string

const (
	WarnInvalidValue      WarningKind = "invalid-value"
	WarnUnknownOption     WarningKind = "unknown-option"
	WarnMissingPredicate  WarningKind = "missing-predicate"
	WarnCopyIgnoresSpill  WarningKind = "copy-ignores-remove-on-spill"
	WarnRemoveOnSpillBug  WarningKind = "remove-on-spill-defect"
	WarnCopySortSourceBug WarningKind = "copy-sort-source-defect"
	WarnUnimplemented     WarningKind = "unimplemented"
	WarnMissingHandler    WarningKind = "missing-handler"
)

// Warning is a non-fatal configuration problem found while resolving a policy.
type Warning struct {
	GroupID string
	Option  string
	Kind    WarningKind
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("group %q option %q: %s", w.GroupID, w.Option, w.Message)
}

const (
	copySortSourceDefect = "same-position drops can desynchronize engine-rendered and model-rendered elements: " +
		"drop an item onto itself, then drag a lower item to the placeholder just above it"
	removeOnSpillDefect = "spilling an item dragged across another container can remove that container's last " +
		"element from the engine while the model keeps both items"
)

// ResolvePolicy builds the policy for groupID from its leader's option values.
// Absent or invalid options are omitted. Problems are returned as warnings;
// resolution itself never fails.
func ResolvePolicy(groupID string, values OptionValues, preds Predicates) (*Policy, []Warning) {
	r := resolver{groupID: groupID, preds: preds, raw: make(map[string]string, len(values))}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		name, ok := knownOptions[normalizeOptionKey(k)]
		if !ok {
			r.warn(k, WarnUnknownOption, "unrecognized option ignored")
			continue
		}
		r.raw[name] = strings.TrimSpace(values[k])
	}

	p := &Policy{}
	r.accepts(p)
	r.copy(p)
	r.copySortSource(p)
	r.direction(p)
	r.ignoreInputTextSelection(p)
	r.invalid(p)
	r.isContainer(p)
	r.mirrorContainer()
	r.moves(p)
	r.removeOnSpill(p)
	r.revertOnSpill(p)

	return p, r.warnings
}

type resolver struct {
	groupID  string
	preds    Predicates
	raw      map[string]string
	warnings []Warning
}

func (r *resolver) warn(option string, kind WarningKind, format string, args ...any) {
	r.warnings = append(r.warnings, Warning{
		GroupID: r.groupID,
		Option:  option,
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	})
}

// value returns the trimmed value of a declared, non-empty option.
func (r *resolver) value(name string) (string, bool) {
	v, ok := r.raw[name]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (r *resolver) boolean(name string) (bool, bool) {
	v, ok := r.value(name)
	if !ok {
		return false, false
	}
	switch strings.ToLower(v) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	r.warn(name, WarnInvalidValue, "expected true or false, got %q", v)
	return false, false
}

func lookup[F any](r *resolver, name string, table map[string]F) (F, bool) {
	var zero F
	v, ok := r.value(name)
	if !ok {
		return zero, false
	}
	fn, found := table[v]
	if !found {
		r.warn(name, WarnMissingPredicate, "no host predicate named %q; option skipped", v)
		return zero, false
	}
	return fn, true
}

func (r *resolver) accepts(p *Policy) {
	if fn, ok := lookup(r, OptAccepts, r.preds.Accepts); ok && fn != nil {
		p.accepts = fn
	}
}

func (r *resolver) copy(p *Policy) {
	v, ok := r.value(OptCopy)
	if !ok {
		return
	}
	switch strings.ToLower(v) {
	case "true":
		p.copy = Some(true)
		return
	case "false":
		p.copy = Some(false)
		return
	}
	if fn, ok := lookup(r, OptCopy, r.preds.Copy); ok && fn != nil {
		p.copyFn = fn
	}
}

func (r *resolver) copySortSource(p *Policy) {
	v, ok := r.boolean(OptCopySortSource)
	if !ok {
		return
	}
	if v {
		r.warn(OptCopySortSource, WarnCopySortSourceBug, "known defect: %s", copySortSourceDefect)
	}
	p.copySortSource = Some(v)
}

func (r *resolver) direction(p *Policy) {
	v, ok := r.value(OptDirection)
	if !ok {
		return
	}
	switch d := Direction(strings.ToLower(v)); d {
	case Horizontal, Vertical:
		p.direction = Some(d)
	default:
		r.warn(OptDirection, WarnInvalidValue, "expected horizontal or vertical, got %q", v)
	}
}

func (r *resolver) ignoreInputTextSelection(p *Policy) {
	if v, ok := r.boolean(OptIgnoreInputTextSelection); ok {
		p.ignoreInputTextSelection = Some(v)
	}
}

func (r *resolver) invalid(p *Policy) {
	if fn, ok := lookup(r, OptInvalid, r.preds.Invalid); ok && fn != nil {
		p.invalid = fn
	}
}

func (r *resolver) isContainer(p *Policy) {
	if fn, ok := lookup(r, OptIsContainer, r.preds.IsContainer); ok && fn != nil {
		p.isContainer = fn
	}
}

func (r *resolver) mirrorContainer() {
	if _, ok := r.value(OptMirrorContainer); ok {
		r.warn(OptMirrorContainer, WarnUnimplemented, "not implemented; configure the drake directly")
	}
}

func (r *resolver) moves(p *Policy) {
	if fn, ok := lookup(r, OptMoves, r.preds.Moves); ok && fn != nil {
		p.moves = fn
	}
}

func (r *resolver) removeOnSpill(p *Policy) {
	v, ok := r.boolean(OptRemoveOnSpill)
	if !ok {
		return
	}
	if v {
		if c, set := p.copy.Get(); set && c {
			r.warn(OptRemoveOnSpill, WarnCopyIgnoresSpill, "ignored while copy is true")
		} else {
			r.warn(OptRemoveOnSpill, WarnRemoveOnSpillBug, "known defect: %s", removeOnSpillDefect)
		}
	}
	p.removeOnSpill = Some(v)
}

func (r *resolver) revertOnSpill(p *Policy) {
	if v, ok := r.boolean(OptRevertOnSpill); ok {
		p.revertOnSpill = Some(v)
	}
}

// logWarnings reports warnings once for a group. Hidden warnings drop to debug.
func logWarnings(warnings []Warning, hide bool) {
	for _, w := range warnings {
		if hide {
			log.Debug(log.CatPolicy, "configuration warning (hidden)", "group", w.GroupID, "option", w.Option, "kind", w.Kind)
			continue
		}
		log.Warn(log.CatPolicy, w.Message, "group", w.GroupID, "option", w.Option, "kind", w.Kind)
	}
}
