package blame

import (
	"strconv"
	"strings"

	tserr "github.com/nooga/tsblame/pkg/errors"
)

// Polarity says who is at fault: Positive blames the consumer of a value,
// Negative its producer.
type Polarity int

const (
	Positive Polarity = iota
	Negative
)

func (p Polarity) String() string {
	switch p {
	case Positive:
		return "+ POSITIVE +"
	case Negative:
		return "- NEGATIVE -"
	}
	panic(tserr.Invariantf("unknown blame polarity %d", int(p)))
}

// Negate flips the polarity.
func (p Polarity) Negate() Polarity {
	switch p {
	case Positive:
		return Negative
	case Negative:
		return Positive
	}
	panic(tserr.Invariantf("unknown blame polarity %d", int(p)))
}

// Tag identifies the kind of a path segment.
type Tag int

const (
	TagFlat Tag = iota
	TagSeal
	TagIntersection
	TagApplication
	TagGet
	TagSet
)

// Segment is one step of a blame path.
type Segment struct {
	Tag         Tag
	ID          int    // application or access counter
	Domain      bool   // application: domain (true) or codomain
	Prop        string // get/set: property name
	IsArray     bool   // get/set: anonymous array access
	Description string // flat: free text
}

// Pretty renders the segment for humans.
func (s Segment) Pretty() string {
	switch s.Tag {
	case TagFlat:
		return "FLAT[" + s.Description + "]"
	case TagSeal:
		return "SEAL"
	case TagIntersection:
		return "INTER"
	case TagApplication:
		if s.Domain {
			return "DOM"
		}
		return "COD"
	case TagGet:
		if s.IsArray {
			return "GET_ARRAY[]"
		}
		return "GET[" + s.Prop + "]"
	case TagSet:
		if s.IsArray {
			return "SET_ARRAY[]"
		}
		return "SET[" + s.Prop + "]"
	}
	panic(tserr.Invariantf("unrecognised path tag %d", int(s.Tag)))
}

// Key renders the segment with its counter, for correlation.
func (s Segment) Key() string {
	id := "[" + strconv.Itoa(s.ID) + "]"
	switch s.Tag {
	case TagFlat:
		return "FLAT"
	case TagSeal:
		return "SEAL"
	case TagIntersection:
		return "INTER"
	case TagApplication:
		return "APP" + id
	case TagGet:
		if s.IsArray {
			return "GET_ARRAY[]" + id
		}
		return "GET[" + s.Prop + "]" + id
	case TagSet:
		if s.IsArray {
			return "SET_ARRAY[]" + id
		}
		return "SET[" + s.Prop + "]" + id
	}
	panic(tserr.Invariantf("unrecognised path tag %d", int(s.Tag)))
}

// stripped drops the property so that array, dictionary and object
// accesses with the same counter correlate.
func (s Segment) stripped() Segment {
	if s.Tag == TagGet || s.Tag == TagSet {
		return Segment{Tag: s.Tag, ID: s.ID}
	}
	return s
}

// Path is an ordered list of segments from a root to an observation point.
type Path []Segment

// Pretty joins the pretty segments with "/".
func (p Path) Pretty() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.Pretty()
	}
	return strings.Join(parts, "/")
}

// Key is the correlation key: segments without properties, with counters.
func (p Path) Key() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.stripped().Key()
	}
	return strings.Join(parts, "/")
}

// Truncate cuts the path after its first application. A path where a set
// comes before any application is mutation blame and is kept whole.
func (p Path) Truncate() Path {
	for i, s := range p {
		switch s.Tag {
		case TagSet:
			return p
		case TagApplication:
			return p[:i+1]
		}
	}
	return p
}

// Append returns a new path; p is never modified.
func (p Path) Append(segs ...Segment) Path {
	res := make(Path, 0, len(p)+len(segs))
	return append(append(res, p...), segs...)
}
