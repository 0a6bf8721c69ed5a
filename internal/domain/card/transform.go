package card

import (
	"fmt"
	"slices"
	"strings"
)

// RandomSource draws a uniform integer in [0, n).
type RandomSource interface {
	IntN(n int) int
}

// Transforms reports whether activating def draws another card.
func (d Definition) Transforms() bool {
	return (d.Type == TypeDriver && d.EffectType == EffectMystery) ||
		(d.Type == TypeTeam && d.EffectType == EffectRandom)
}

// TransformCandidates lists the pool def draws from, ordered by id.
// Mystery driver cards draw from active driver cards except other mystery
// cards; random team cards draw from every active team card.
func TransformCandidates(def Definition, catalog []Definition) []Definition {
	out := make([]Definition, 0, len(catalog))
	for _, c := range catalog {
		if !c.IsActive || c.Type != def.Type {
			continue
		}
		if def.EffectType == EffectMystery && c.EffectType == EffectMystery {
			continue
		}
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b Definition) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// ResolveTransformation returns the drawn card id for def. A previously
// stored outcome is returned unchanged so a draw happens at most once.
func ResolveTransformation(def Definition, catalog []Definition, stored string, rnd RandomSource) (string, error) {
	if !def.Transforms() {
		return "", nil
	}
	if stored != "" {
		return stored, nil
	}

	candidates := TransformCandidates(def, catalog)
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoTransformCandidate, def.ID)
	}
	return candidates[rnd.IntN(len(candidates))].ID, nil
}
