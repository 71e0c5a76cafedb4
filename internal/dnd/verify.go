package dnd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/zjrosen/dragsync/internal/log"
)

// Verify compares the rendered order of every container in the group with
// its model order. Containers whose element does not implement ElementLister
// are not checked. It returns one *DesyncError per container that differs,
// joined with errors.Join.
func (r *Registry) Verify(groupID string) error {
	g, ok := r.state.Group(groupID)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownGroup, groupID)
	}
	matcher := r.adapter.reconciler.Matcher()

	var errs []error
	for _, c := range g.Containers() {
		lister, ok := c.element.(ElementLister)
		if !ok {
			continue
		}

		rendered := make([]string, 0, c.Len())
		for _, el := range lister.Elements() {
			s, ok := el.Snapshot()
			if !ok {
				s = "<no snapshot>"
			}
			rendered = append(rendered, s)
		}
		model := make([]string, 0, c.Len())
		for _, item := range c.items {
			s, err := matcher.Snapshot(item)
			if err != nil {
				s = "<unencodable>"
			}
			model = append(model, s)
		}

		if diff, differs := lineDiff(model, rendered); differs {
			log.Warn(log.CatReconcile, "container out of sync", "group", g.id, "container", c.id)
			errs = append(errs, &DesyncError{GroupID: g.id, ContainerID: c.id, Diff: diff})
		}
	}
	return errors.Join(errs...)
}

// lineDiff renders a unified-style line diff from want to got.
func lineDiff(want, got []string) (string, bool) {
	a := strings.Join(want, "\n") + "\n"
	b := strings.Join(got, "\n") + "\n"
	if a == b {
		return "", false
	}

	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix)
			sb.WriteString(line)
		}
	}
	return sb.String(), true
}
