package registry

import (
	"reflect"

	"surrogated/internal/model"
	"surrogated/internal/ndarray"
)

// RepairReport summarizes one RepairBuffers pass.
type RepairReport struct {
	// Components is the number of distinct components visited.
	Components int
	// Buffers is the number of buffers inspected.
	Buffers int
	// Replaced is the number of buffers swapped for a canonical copy.
	Replaced int
	// Skipped counts components whose buffers could not be enumerated.
	Skipped int
}

// RepairBuffers walks c and everything reachable from it through Children,
// replacing every buffer that is a view, not C-contiguous, or of a
// non-canonical dtype with an owning canonical copy. Each component is
// visited at most once, so cyclic graphs terminate. A component that panics
// while being enumerated is skipped and the walk continues.
//
// Values are preserved exactly, so running it again on a repaired handle
// replaces nothing.
func RepairBuffers(c model.Component) RepairReport {
	w := repairWalk{seen: map[model.Component]struct{}{}}
	w.visit(c)
	if w.rep.Replaced > 0 {
		buffersRepaired.Add(float64(w.rep.Replaced))
	}
	return w.rep
}

type repairWalk struct {
	seen map[model.Component]struct{}
	rep  RepairReport
}

func (w *repairWalk) visit(c model.Component) {
	if c == nil {
		return
	}
	if rv := reflect.ValueOf(c); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return
	}
	// Non-comparable components cannot be map keys; they are value types and
	// cannot form cycles, so they are walked without tracking.
	if reflect.TypeOf(c).Comparable() {
		if _, ok := w.seen[c]; ok {
			return
		}
		w.seen[c] = struct{}{}
	}
	w.rep.Components++

	bufs, children, ok := enumerate(c)
	if !ok {
		w.rep.Skipped++
		return
	}
	for _, b := range bufs {
		if b == nil {
			continue
		}
		w.rep.Buffers++
		if repairBuffer(b) {
			w.rep.Replaced++
		}
	}
	for _, ch := range children {
		w.visit(ch)
	}
}

// enumerate isolates misbehaving components.
func enumerate(c model.Component) (bufs []*model.Buffer, children []model.Component, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	bufs = c.Buffers()
	if p, isParent := c.(model.Parent); isParent {
		children = p.Children()
	}
	return bufs, children, true
}

// repairBuffer swaps in a canonical copy. A concurrent repair that wins the
// swap leaves an equally canonical array behind, so losing it is fine.
func repairBuffer(b *model.Buffer) bool {
	old := b.Load()
	if old == nil || old.IsCanonical() {
		return false
	}
	return b.Swap(old, ndarray.Canonical(old))
}
