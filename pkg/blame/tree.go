package blame

import (
	"github.com/kr/pretty"

	"github.com/nooga/tsblame/pkg/types"

	tserr "github.com/nooga/tsblame/pkg/errors"
)

// Source names the kind of node an event last passed through.
type Source string

const (
	SourceFlat        Source = "flat"
	SourceSeal        Source = "seal"
	SourceDomain      Source = "dom"
	SourceCodomain    Source = "cod"
	SourceApplication Source = "app"
	SourceGet         Source = "get"
	SourceSet         Source = "set"
	SourceObject      Source = "obj"
)

// Event travels from an observation point up to the root.
type Event struct {
	Polarity Polarity
	Source   Source
	Path     Path
	Message  string

	app    int // set by domain/codomain nodes
	field  int // set by get/set nodes
	branch int // set by branch nodes
}

type nodeKind uint8

const (
	kindBase nodeKind = iota
	kindFlat
	kindSeal
	kindFunction
	kindDomain
	kindCodomain
	kindObject
	kindGet
	kindSet
	kindIntersection
	kindBranch
)

var nodeKindNames = [...]string{
	kindBase:         "base",
	kindFlat:         "flat",
	kindSeal:         "seal",
	kindFunction:     "function",
	kindDomain:       "domain",
	kindCodomain:     "codomain",
	kindObject:       "object",
	kindGet:          "get",
	kindSet:          "set",
	kindIntersection: "intersection",
	kindBranch:       "branch",
}

func (k nodeKind) String() string { return nodeKindNames[k] }

// record is the state of one node. Parents are referenced by index.
type record struct {
	kind   nodeKind
	parent int
	path   Path
	index  int // application, access or branch number

	// function
	liable map[int]bool
	apps   int

	// object
	gets, sets     int
	raisedNegative bool

	// intersection
	branches []types.Type
	blamed   map[string]map[int]string
}

// Tree owns every blame node below one root. A Tree is not safe for
// concurrent use; the engine is single-threaded.
type Tree struct {
	label    string
	reporter Reporter
	nodes    []record
}

// NewTree creates a tree whose root reports to reporter.
func NewTree(label string, reporter Reporter) *Tree {
	t := &Tree{label: label, reporter: reporter}
	t.nodes = append(t.nodes, record{kind: kindBase, parent: -1})
	return t
}

func (t *Tree) Label() string { return t.label }

// Root returns the base node.
func (t *Tree) Root() Node { return Node{tree: t, id: 0} }

// Len is the number of nodes allocated so far.
func (t *Tree) Len() int { return len(t.nodes) }

func (t *Tree) add(r record) Node {
	t.nodes = append(t.nodes, r)
	return Node{tree: t, id: len(t.nodes) - 1}
}

// Node is a handle to a node in a Tree.
type Node struct {
	tree *Tree
	id   int
}

func (n Node) Tree() *Tree { return n.tree }

// IsZero reports a handle not bound to any tree.
func (n Node) IsZero() bool { return n.tree == nil }

func (n Node) rec() *record { return &n.tree.nodes[n.id] }

// Path is the path accumulated at this node.
func (n Node) Path() Path { return n.rec().path }

// Kind names the node variant.
func (n Node) Kind() string { return n.rec().kind.String() }

func (n Node) must(kinds ...nodeKind) *record {
	r := n.rec()
	for _, k := range kinds {
		if r.kind == k {
			return r
		}
	}
	panic(tserr.Invariantf("operation not supported on %s node", r.kind))
}

// position checks that n is a point where wrapping may attach children:
// the root, a domain or codomain, a property access or a branch.
func (n Node) position() *record {
	return n.must(kindBase, kindDomain, kindCodomain, kindGet, kindSet, kindBranch)
}

func (n Node) child(kind nodeKind) Node {
	r := n.position()
	return n.tree.add(record{kind: kind, parent: n.id, path: r.path})
}

// Flat creates an observation point that blames positively.
func (n Node) Flat() Node { return n.child(kindFlat) }

// Seal creates an observation point that blames negatively.
func (n Node) Seal() Node { return n.child(kindSeal) }

// Fun creates a function node.
func (n Node) Fun() Node {
	fn := n.child(kindFunction)
	fn.rec().liable = make(map[int]bool)
	return fn
}

// Obj creates an object node.
func (n Node) Obj() Node { return n.child(kindObject) }

// Inter creates an intersection node over the given branch types.
func (n Node) Inter(branches []types.Type) Node {
	in := n.child(kindIntersection)
	r := in.rec()
	r.branches = append([]types.Type(nil), branches...)
	r.blamed = make(map[string]map[int]string)
	return in
}

// Application allocates the domain and codomain nodes of the next call.
func (n Node) Application() (dom, cod Node) {
	r := n.must(kindFunction)
	id := r.apps
	r.apps++
	r.liable[id] = true
	path := r.path
	dom = n.tree.add(record{kind: kindDomain, parent: n.id, index: id,
		path: path.Append(Segment{Tag: TagApplication, ID: id, Domain: true})})
	cod = n.tree.add(record{kind: kindCodomain, parent: n.id, index: id,
		path: path.Append(Segment{Tag: TagApplication, ID: id})})
	return dom, cod
}

// Get allocates the node of the next property read.
func (n Node) Get(prop string, isArray bool) Node {
	r := n.must(kindObject)
	id := r.gets
	r.gets++
	return n.tree.add(record{kind: kindGet, parent: n.id, index: id,
		path: r.path.Append(Segment{Tag: TagGet, ID: id, Prop: prop, IsArray: isArray})})
}

// Set allocates the node of the next property write.
func (n Node) Set(prop string, isArray bool) Node {
	r := n.must(kindObject)
	id := r.sets
	r.sets++
	return n.tree.add(record{kind: kindSet, parent: n.id, index: id,
		path: r.path.Append(Segment{Tag: TagSet, ID: id, Prop: prop, IsArray: isArray})})
}

// RaisedNegative reports whether a write through this object node was ever
// blamed.
func (n Node) RaisedNegative() bool {
	return n.must(kindObject).raisedNegative
}

// Branch returns a fresh node for branch i. Paths below a branch are
// relative to the intersection.
func (n Node) Branch(i int) Node {
	r := n.must(kindIntersection)
	if i < 0 || i >= len(r.branches) {
		panic(tserr.Invariantf("requested branch %d exceeds size of intersection (%d)", i, len(r.branches)))
	}
	return n.tree.add(record{kind: kindBranch, parent: n.id, index: i})
}

// Blame raises message at a flat or seal node. The error is the root
// reporter's verdict and is nil unless it aborts.
func (n Node) Blame(message string) error {
	r := n.must(kindFlat, kindSeal)
	ev := &Event{Polarity: Positive, Source: SourceFlat, Path: r.path, Message: message}
	if r.kind == kindSeal {
		ev.Polarity = Negative
		ev.Source = SourceSeal
	}
	return n.tree.propagate(r.parent, ev)
}

// propagate walks ev up from node id, transforming it on the way.
func (t *Tree) propagate(id int, ev *Event) error {
	for id >= 0 {
		r := &t.nodes[id]
		switch r.kind {
		case kindBase:
			return t.reporter.Report(Report{
				Label:    t.label,
				Polarity: ev.Polarity,
				Path:     ev.Path,
				Source:   ev.Source,
				Message:  ev.Message,
			})

		case kindDomain:
			ev.Source = SourceDomain
			ev.app = r.index

		case kindCodomain:
			ev.Source = SourceCodomain
			ev.app = r.index

		case kindFunction:
			switch ev.Source {
			case SourceDomain:
				ev.Source = SourceApplication
				if ev.Polarity == Positive {
					r.liable[ev.app] = false
					ev.Polarity = Negative
				} else {
					ev.Polarity = Positive
				}
			case SourceCodomain:
				ev.Source = SourceApplication
				if ev.Polarity == Positive && !r.liable[ev.app] {
					return nil
				}
			default:
				panic(tserr.Invariantf("function node received %s event: %# v", ev.Source, pretty.Formatter(*ev)))
			}

		case kindGet:
			ev.Source = SourceGet
			ev.field = r.index

		case kindSet:
			ev.Source = SourceSet
			ev.field = r.index

		case kindObject:
			switch ev.Source {
			case SourceGet:
				ev.Source = SourceObject
			case SourceSet:
				r.raisedNegative = true
				ev.Source = SourceObject
				ev.Polarity = ev.Polarity.Negate()
			default:
				panic(tserr.Invariantf("object node received %s event: %# v", ev.Source, pretty.Formatter(*ev)))
			}

		case kindBranch:
			ev.branch = r.index

		case kindIntersection:
			if !t.correlate(r, ev) {
				return nil
			}

		case kindFlat, kindSeal:
			panic(tserr.Invariantf("%s node cannot receive events", r.kind))
		}
		id = r.parent
	}
	return nil
}
