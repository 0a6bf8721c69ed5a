package reusecycle

import (
	"slices"
)

// Cycle is the set of canonical names used inside one running window.
// It is kept sorted so persisted rows stay stable.
type Cycle []string

func (c Cycle) Contains(name string) bool {
	_, found := slices.BinarySearch(c, name)
	return found
}

func (c Cycle) with(name string) (Cycle, bool) {
	idx, found := slices.BinarySearch(c, name)
	if found {
		return c, false
	}
	return slices.Insert(slices.Clone(c), idx, name), true
}

func (c Cycle) without(name string) (Cycle, bool) {
	idx, found := slices.BinarySearch(c, name)
	if !found {
		return c, false
	}
	return slices.Delete(slices.Clone(c), idx, idx+1), true
}

// State is the position of a stack's current cycle in its lifecycle.
type State string

const (
	StateCurrent   State = "current"
	StateExhausted State = "exhausted"
)

// Stack holds every cycle of one kind; the last element is the current cycle.
type Stack []Cycle

// Current returns the running cycle, empty when nothing has been used.
func (s Stack) Current() Cycle {
	if len(s) == 0 {
		return nil
	}
	return s[len(s)-1]
}

// Number is the 1-based index of the current cycle.
func (s Stack) Number() int {
	if len(s) == 0 {
		return 1
	}
	return len(s)
}

// Used returns a copy of the current cycle.
func (s Stack) Used() []string {
	return slices.Clone(s.Current())
}

// Contains reports whether name is in the current cycle.
func (s Stack) Contains(name string) bool {
	return s.Current().Contains(name)
}

// Ever reports whether name appears in any cycle.
func (s Stack) Ever(name string) bool {
	for _, c := range s {
		if c.Contains(name) {
			return true
		}
	}
	return false
}

// AddUsed puts name in the current cycle. It reports false when name was already there.
func (s *Stack) AddUsed(name string) bool {
	if name == "" {
		return false
	}
	if len(*s) == 0 {
		*s = Stack{Cycle{}}
	}
	last := len(*s) - 1
	next, changed := (*s)[last].with(name)
	(*s)[last] = next
	return changed
}

// RemoveUsed drops name from the current cycle. A cycle emptied this way
// after a rollover is discarded, which reverts the rollover.
func (s *Stack) RemoveUsed(name string) bool {
	if len(*s) == 0 {
		return false
	}
	last := len(*s) - 1
	next, changed := (*s)[last].without(name)
	if !changed {
		return false
	}
	(*s)[last] = next
	if len(next) == 0 && last > 0 {
		*s = (*s)[:last]
	}
	return true
}

// State classifies the current cycle against the roster.
func (s Stack) State(members []string, policy ExhaustionPolicy) State {
	if policy == nil {
		policy = FullRosterPolicy{}
	}
	if policy.Exhausted(s.Current(), members) {
		return StateExhausted
	}
	return StateCurrent
}

// Rollover pushes a new empty cycle.
func (s *Stack) Rollover() {
	*s = append(*s, Cycle{})
}

// Remaining lists roster members not yet used in the current cycle.
func (s Stack) Remaining(members []string) []string {
	current := s.Current()
	out := make([]string, 0, len(members))
	for _, m := range members {
		if !current.Contains(m) {
			out = append(out, m)
		}
	}
	return out
}

// Blocked returns the names that may not be picked right now. Repeats are
// allowed when the cycle is exhausted, or when the same pick also uses up
// every remaining member so the repeats open the next cycle.
func (s Stack) Blocked(names []string, members []string, policy ExhaustionPolicy) []string {
	if s.State(members, policy) == StateExhausted {
		return nil
	}

	var repeated []string
	fresh := make(map[string]struct{}, len(names))
	for _, name := range names {
		if s.Contains(name) {
			repeated = append(repeated, name)
			continue
		}
		fresh[name] = struct{}{}
	}
	if len(repeated) == 0 {
		return nil
	}

	for _, m := range s.Remaining(members) {
		if _, ok := fresh[m]; !ok {
			return repeated
		}
	}
	return nil
}

// Record adds names in pick order, rolling over first whenever the current
// cycle is exhausted. Names not yet in the cycle are recorded before repeats.
func (s *Stack) Record(names []string, members []string, policy ExhaustionPolicy) bool {
	ordered := make([]string, 0, len(names))
	for _, name := range names {
		if !s.Contains(name) {
			ordered = append(ordered, name)
		}
	}
	for _, name := range names {
		if s.Contains(name) {
			ordered = append(ordered, name)
		}
	}

	changed := false
	for _, name := range ordered {
		if name == "" {
			continue
		}
		if s.Contains(name) && s.State(members, policy) != StateExhausted {
			continue
		}
		if len(*s) > 0 && s.State(members, policy) == StateExhausted {
			s.Rollover()
			changed = true
		}
		if s.AddUsed(name) {
			changed = true
		}
	}
	return changed
}

// Replay rebuilds a stack by recording each pick in order, which is the
// state the same sequence of first-time saves produces.
func Replay(picks [][]string, members []string, policy ExhaustionPolicy) Stack {
	var s Stack
	for _, names := range picks {
		s.Record(names, members, policy)
	}
	return s
}

// Equal reports whether both stacks hold the same cycles.
func (s Stack) Equal(other Stack) bool {
	return slices.EqualFunc(s, other, func(a, b Cycle) bool { return slices.Equal(a, b) })
}

// Clone returns a deep copy.
func (s Stack) Clone() Stack {
	if s == nil {
		return nil
	}
	out := make(Stack, len(s))
	for i, c := range s {
		out[i] = slices.Clone(c)
	}
	return out
}
