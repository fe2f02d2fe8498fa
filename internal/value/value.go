// Package value implements TagSpeak's tagged runtime Value:
// numbers, strings, booleans, the unit value, shared document handles, and
// first-class comparators.
package value

import (
	"fmt"
	"math"

	"github.com/tagspeak/tagspeak/internal/document"
)

// Kind discriminates the variant held by a Value.
type Kind int

const (
	KindNum Kind = iota
	KindStr
	KindBool
	KindUnit
	KindDoc
	KindComparator
)

func (k Kind) String() string {
	switch k {
	case KindNum:
		return "num"
	case KindStr:
		return "str"
	case KindBool:
		return "bool"
	case KindUnit:
		return "unit"
	case KindDoc:
		return "doc"
	case KindComparator:
		return "comparator"
	default:
		return "unknown"
	}
}

// Value is the tagged union threaded between packets as the chain's "last
// value". Num/Str/Bool/Unit/Comparator are immutable by identity; Doc is a
// shared mutable reference (the handle's lifetime is the lifetime of the
// bindings that reference it).
type Value struct {
	Kind       Kind
	Num        float64
	Str        string
	Bool       bool
	Doc        *document.Document
	Comparator Comparator
}

func Unit() Value                { return Value{Kind: KindUnit} }
func Num(f float64) Value        { return Value{Kind: KindNum, Num: f} }
func Str(s string) Value         { return Value{Kind: KindStr, Str: s} }
func Bool(b bool) Value          { return Value{Kind: KindBool, Bool: b} }
func Doc(d *document.Document) Value { return Value{Kind: KindDoc, Doc: d} }
func Cmp(c Comparator) Value     { return Value{Kind: KindComparator, Comparator: c} }

// IsInteger reports whether a Num value has zero fractional part, the
// precondition for handlers requiring integer semantics (loop counts,
// array indices).
func (v Value) IsInteger() bool {
	return v.Kind == KindNum && v.Num == math.Trunc(v.Num) && !math.IsNaN(v.Num) && !math.IsInf(v.Num, 0)
}

// Int returns the Num value's integer form, erroring with E_TYPE if it
// isn't integral or isn't a Num at all.
func (v Value) Int() (int64, error) {
	if v.Kind != KindNum {
		return 0, typeError(fmt.Sprintf("expected integer, got %s", v.Kind))
	}
	if !v.IsInteger() {
		return 0, typeError(fmt.Sprintf("expected integer-valued number, got %v", v.Num))
	}
	return int64(v.Num), nil
}

// Truthy reports whether v counts as true in a condition context.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindNum:
		return v.Num != 0 && !math.IsNaN(v.Num)
	case KindStr:
		return v.Str != ""
	case KindUnit:
		return false
	case KindDoc:
		return v.Doc != nil && v.Doc.Root.Truthy()
	case KindComparator:
		return true
	default:
		return false
	}
}

// Equal compares two values: byte-wise on Str, NaN-never-equal on Num,
// deep structural on Doc, false on mismatched variants (never an error).
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindNum:
		return v.Num == other.Num
	case KindStr:
		return v.Str == other.Str
	case KindBool:
		return v.Bool == other.Bool
	case KindUnit:
		return true
	case KindDoc:
		if v.Doc == nil || other.Doc == nil {
			return v.Doc == other.Doc
		}
		return v.Doc.Root.Equal(other.Doc.Root)
	case KindComparator:
		return v.Comparator == other.Comparator
	default:
		return false
	}
}

// String renders a Value for [dump]/[print]/log output.
func (v Value) String() string {
	switch v.Kind {
	case KindNum:
		if v.IsInteger() {
			return fmt.Sprintf("%d", int64(v.Num))
		}
		return fmt.Sprintf("%g", v.Num)
	case KindStr:
		return v.Str
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindUnit:
		return ""
	case KindDoc:
		return "<doc>"
	case KindComparator:
		return v.Comparator.String()
	default:
		return "<unknown>"
	}
}
