package saveable

import "sort"

type (
	// TrackChanges is implemented by items and collections that record
	// which named fields changed since tracking was turned on.
	TrackChanges interface {
		// SetTrackChanges turns change tracking on or off. Turning it
		// on or off always starts from an empty change set.
		SetTrackChanges(on bool)

		// TrackChange records a change to the named field. It has no
		// effect while tracking is off.
		TrackChange(what string)

		// IsChanged reports whether the named field changed. With no
		// argument it reports whether anything changed.
		IsChanged(what ...string) bool

		// Changes returns the names of all changed fields, sorted.
		Changes() []string

		// ResetTrackChanges clears the change set and keeps the current
		// tracking state.
		ResetTrackChanges()
	}

	// Tracker is the embeddable implementation of TrackChanges. The zero
	// value has tracking off.
	Tracker struct {
		tracking bool
		changes  map[string]struct{}
	}
)

var _ TrackChanges = (*Tracker)(nil)

func (t *Tracker) SetTrackChanges(on bool) {
	t.tracking = on
	t.changes = nil
}

// TrackingChanges reports whether tracking is on.
func (t *Tracker) TrackingChanges() bool {
	return t.tracking
}

func (t *Tracker) TrackChange(what string) {
	if !t.tracking {
		return
	}
	if t.changes == nil {
		t.changes = map[string]struct{}{}
	}
	t.changes[what] = struct{}{}
}

// untrack drops a recorded change, used when the change is undone.
func (t *Tracker) untrack(what string) {
	delete(t.changes, what)
}

func (t *Tracker) IsChanged(what ...string) bool {
	if len(what) == 0 || what[0] == "" {
		return len(t.changes) > 0
	}
	for _, w := range what {
		if _, ok := t.changes[w]; ok {
			return true
		}
	}
	return false
}

func (t *Tracker) Changes() []string {
	out := make([]string, 0, len(t.changes))
	for what := range t.changes {
		out = append(out, what)
	}
	sort.Strings(out)
	return out
}

func (t *Tracker) ResetTrackChanges() {
	t.changes = nil
}
