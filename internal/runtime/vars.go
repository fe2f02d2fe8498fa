package runtime

import (
	"github.com/tagspeak/tagspeak/internal/lang"
	"github.com/tagspeak/tagspeak/internal/value"
)

// Discipline is a variable slot's write policy.
type Discipline int

const (
	Fluid Discipline = iota
	Rigid
	Context
)

// contextEntry is one guarded binding of a Context-discipline variable;
// Default is true for the entry that applies when no predicate matches.
type contextEntry struct {
	Predicate lang.Expr
	Value     value.Value
	Default   bool
}

// varSlot is one variable table entry.
type varSlot struct {
	discipline Discipline
	value      value.Value
	bound      bool
	contexts   []contextEntry
}

// VarTable is the runtime's variable store. Predicate evaluation for
// Context-discipline reads is supplied by the caller (the router), since
// it needs to evaluate an expression against the current table — the
// table itself only stores the guarded binding list.
type VarTable struct {
	slots map[string]*varSlot
}

func NewVarTable() *VarTable {
	return &VarTable{slots: make(map[string]*varSlot)}
}

// StoreRigid binds name for the first time only; a second write fails.
func (t *VarTable) StoreRigid(name string, v value.Value) error {
	if s, ok := t.slots[name]; ok && s.bound {
		return rigidRebind(name)
	}
	t.slots[name] = &varSlot{discipline: Rigid, value: v, bound: true}
	return nil
}

// StoreFluid binds or rebinds name unconditionally.
func (t *VarTable) StoreFluid(name string, v value.Value) {
	t.slots[name] = &varSlot{discipline: Fluid, value: v, bound: true}
}

// PushContext appends a guarded binding to name's context list, creating
// the slot on first use. predicate is nil for the (default==true) entry.
func (t *VarTable) PushContext(name string, predicate lang.Expr, v value.Value, isDefault bool) {
	s, ok := t.slots[name]
	if !ok || s.discipline != Context {
		s = &varSlot{discipline: Context, bound: true}
		t.slots[name] = s
	}
	s.contexts = append(s.contexts, contextEntry{Predicate: predicate, Value: v, Default: isDefault})
}

// ResolveContext evaluates name's guarded bindings in push order using
// eval, returning the first whose predicate is true. If none match, the
// entry pushed with isDefault true is used instead; if there is no
// default and nothing matched, ResolveContext fails with
// E_NO_CONTEXT_MATCH.
func (t *VarTable) ResolveContext(name string, eval func(lang.Expr) (bool, error)) (value.Value, error) {
	s, ok := t.slots[name]
	if !ok || s.discipline != Context {
		return value.Unit(), unknownVar(name)
	}
	var fallback *contextEntry
	for i := range s.contexts {
		entry := &s.contexts[i]
		if entry.Default {
			fallback = entry
			continue
		}
		matched, err := eval(entry.Predicate)
		if err != nil {
			return value.Unit(), err
		}
		if matched {
			return entry.Value, nil
		}
	}
	if fallback != nil {
		return fallback.Value, nil
	}
	return value.Unit(), noContextMatch(name)
}

// Get returns the plain current value of name: the stored value for
// Fluid/Rigid. For a Context slot it returns the slot's unset value with
// discipline Context, not a resolved binding (use ResolveContext instead,
// since resolving a Context read requires evaluating predicates).
func (t *VarTable) Get(name string) (value.Value, Discipline, bool) {
	s, ok := t.slots[name]
	if !ok {
		return value.Unit(), Fluid, false
	}
	return s.value, s.discipline, true
}

// Slot exposes the raw slot for context-predicate resolution by the
// router, which owns predicate evaluation.
func (t *VarTable) Slot(name string) (discipline Discipline, contexts []contextEntry, ok bool) {
	s, ok := t.slots[name]
	if !ok {
		return Fluid, nil, false
	}
	return s.discipline, s.contexts, true
}
