package reusecycle

// ExhaustionPolicy decides when the current cycle is used up and reuse opens again.
type ExhaustionPolicy interface {
	Exhausted(current Cycle, members []string) bool
}

// FullRosterPolicy ends a cycle once every roster member has been used in it.
type FullRosterPolicy struct{}

func (FullRosterPolicy) Exhausted(current Cycle, members []string) bool {
	if len(members) == 0 {
		return false
	}
	for _, m := range members {
		if !current.Contains(m) {
			return false
		}
	}
	return true
}
