package blame

import (
	"fmt"
	"strings"

	"github.com/nooga/tsblame/pkg/types"
)

// correlate handles an event arriving at an intersection node and reports
// whether it should continue upward.
//
// Positive blame names one offending branch and is forwarded at once.
// Negative blame is held under its correlation key until every branch that
// could have accepted the same access has blamed too; the forwarded event
// then carries all their messages.
func (t *Tree) correlate(r *record, ev *Event) bool {
	full := r.path.Append(ev.Path...)
	if ev.Polarity == Positive {
		ev.Path = full
		return true
	}

	truncated := ev.Path.Truncate()
	key := truncated.Key()
	msgs, ok := r.blamed[key]
	if !ok {
		msgs = make(map[int]string)
		r.blamed[key] = msgs
	}
	msgs[ev.branch] = fmt.Sprintf("ID=%d/%s %s", ev.branch, full.Pretty(), ev.Message)

	var reachable []int
	for i, ty := range r.branches {
		if Reachable(truncated, ty) {
			reachable = append(reachable, i)
		}
	}
	ev.Path = full
	if len(reachable) == 0 {
		return true
	}
	combined := make([]string, 0, len(reachable))
	for _, b := range reachable {
		m, blamed := msgs[b]
		if !blamed {
			return false
		}
		combined = append(combined, m)
	}
	ev.Message = "INTER{ " + strings.Join(combined, "\n") + "}"
	return true
}

// Reachable reports whether following p through ty ends at a call site or
// at a writable declared property: the last segment must be an application
// of a function or a set on an object, array or dictionary. Hybrid and
// union branches, forall bodies and lazy references are looked through.
func Reachable(p Path, ty types.Type) bool {
	if len(p) == 0 {
		return false
	}
	ty = types.Unfold(ty)
	switch tt := ty.(type) {
	case *types.HybridType:
		return anyReachable(p, tt.Types)
	case *types.UnionType:
		return anyReachable(p, tt.Types)
	case *types.ForallType:
		return Reachable(p, tt.Body)
	}

	seg := p[0]
	if len(p) == 1 {
		switch seg.Tag {
		case TagApplication:
			return ty.Kind() == types.KindFunction
		case TagSet:
			switch tt := ty.(type) {
			case *types.ObjectType:
				_, ok := tt.Lookup(seg.Prop)
				return ok
			case *types.ArrayType:
				return seg.IsArray || types.IsIndex(seg.Prop)
			case *types.DictionaryType:
				return true
			}
		}
		return false
	}

	if seg.Tag != TagGet {
		return false
	}
	switch tt := ty.(type) {
	case *types.ObjectType:
		if prop, ok := tt.Lookup(seg.Prop); ok {
			return Reachable(p[1:], prop)
		}
	case *types.ArrayType:
		if seg.IsArray || types.IsIndex(seg.Prop) {
			return Reachable(p[1:], tt.Elem)
		}
	case *types.DictionaryType:
		return Reachable(p[1:], tt.Elem)
	}
	return false
}

func anyReachable(p Path, ts []types.Type) bool {
	for _, t := range ts {
		if Reachable(p, t) {
			return true
		}
	}
	return false
}
