// Package document implements TagSpeak's in-memory structured document: a
// recursive object/array/scalar tree isomorphic to JSON, addressable by
// dotted/bracketed paths and mutated through the primitives backing the
// [mod] packet family.
package document

import "math"

// Kind discriminates the shape of a Node.
type Kind int

const (
	Null Kind = iota
	Num
	Str
	Bool
	Object
	Array
)

// Node is one position in a Document tree. Only the fields matching Kind
// are meaningful; the zero value is Null.
type Node struct {
	Kind Kind

	num  float64
	str  string
	b    bool
	obj  *OrderedMap
	arr  []*Node
}

func NewNull() *Node { return &Node{Kind: Null} }

func NewNum(f float64) *Node { return &Node{Kind: Num, num: f} }

func NewStr(s string) *Node { return &Node{Kind: Str, str: s} }

func NewBool(b bool) *Node { return &Node{Kind: Bool, b: b} }

func NewObject() *Node { return &Node{Kind: Object, obj: NewOrderedMap()} }

func NewArray(items ...*Node) *Node { return &Node{Kind: Array, arr: items} }

func (n *Node) NumValue() float64 { return n.num }
func (n *Node) StrValue() string  { return n.str }
func (n *Node) BoolValue() bool   { return n.b }
func (n *Node) Object() *OrderedMap {
	if n.obj == nil {
		n.obj = NewOrderedMap()
	}
	return n.obj
}
func (n *Node) Array() []*Node { return n.arr }

func (n *Node) SetArray(items []*Node) { n.arr = items }

func (n *Node) KindString() string {
	switch n.Kind {
	case Null:
		return "null"
	case Num:
		return "number"
	case Str:
		return "string"
	case Bool:
		return "bool"
	case Object:
		return "object"
	case Array:
		return "array"
	default:
		return "unknown"
	}
}

// Clone deep-copies a node so mutation of the copy never affects the
// original, copying maps and slices element-by-element rather than
// sharing backing storage.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{Kind: n.Kind, num: n.num, str: n.str, b: n.b}
	if n.obj != nil {
		out.obj = n.obj.Clone()
	}
	if n.arr != nil {
		out.arr = make([]*Node, len(n.arr))
		for i, c := range n.arr {
			out.arr[i] = c.Clone()
		}
	}
	return out
}

// Equal implements the deep structural equality used by [if] comparisons
// on Doc values.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.Kind != other.Kind {
		return false
	}
	switch n.Kind {
	case Null:
		return true
	case Num:
		return n.num == other.num
	case Str:
		return n.str == other.str
	case Bool:
		return n.b == other.b
	case Array:
		if len(n.arr) != len(other.arr) {
			return false
		}
		for i := range n.arr {
			if !n.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case Object:
		keys := n.Object().Keys()
		if len(keys) != len(other.Object().Keys()) {
			return false
		}
		for _, k := range keys {
			ov, ok := other.Object().Get(k)
			if !ok {
				return false
			}
			v, _ := n.Object().Get(k)
			if !v.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Truthy mirrors the Value truthiness rule for Doc handles: never-empty
// object/array or a truthy scalar.
func (n *Node) Truthy() bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case Null:
		return false
	case Num:
		return n.num != 0 && !math.IsNaN(n.num)
	case Str:
		return n.str != ""
	case Bool:
		return n.b
	case Object:
		return len(n.Object().Keys()) > 0
	case Array:
		return len(n.arr) > 0
	default:
		return false
	}
}
