package card

import (
	"errors"
	"testing"
)

type stubRandom struct {
	next  int
	calls int
}

func (s *stubRandom) IntN(n int) int {
	s.calls++
	return s.next % n
}

func TestTransformCandidates(t *testing.T) {
	catalog := DefaultCatalog()
	defs := Index(catalog)

	mystery := TransformCandidates(defs["drv-mystery"], catalog)
	for _, c := range mystery {
		if c.Type != TypeDriver || c.EffectType == EffectMystery || !c.IsActive {
			t.Fatalf("unexpected mystery candidate %+v", c)
		}
	}
	if len(mystery) != 8 {
		t.Fatalf("expected 8 mystery candidates, got %d", len(mystery))
	}

	random := TransformCandidates(defs["team-random"], catalog)
	if len(random) != 6 {
		t.Fatalf("expected 6 random candidates, got %d", len(random))
	}
	for i := 1; i < len(random); i++ {
		if random[i-1].ID > random[i].ID {
			t.Fatalf("expected candidates sorted by id, got %s before %s", random[i-1].ID, random[i].ID)
		}
	}
}

func TestResolveTransformation(t *testing.T) {
	catalog := DefaultCatalog()
	defs := Index(catalog)

	rnd := &stubRandom{next: 0}
	got, err := ResolveTransformation(defs["drv-mystery"], catalog, "", rnd)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "drv-double-points" {
		t.Fatalf("expected first candidate, got %s", got)
	}

	again, err := ResolveTransformation(defs["drv-mystery"], catalog, got, &stubRandom{next: 5})
	if err != nil {
		t.Fatalf("resolve stored: %v", err)
	}
	if again != got {
		t.Fatalf("expected stored outcome %s, got %s", got, again)
	}

	plain, err := ResolveTransformation(defs["drv-pole-hunter"], catalog, "", rnd)
	if err != nil || plain != "" {
		t.Fatalf("expected no transformation, got %q err=%v", plain, err)
	}
	if rnd.calls != 1 {
		t.Fatalf("expected exactly one draw, got %d", rnd.calls)
	}
}

func TestResolveTransformation_NoCandidates(t *testing.T) {
	def := Definition{ID: "solo", Type: TypeDriver, EffectType: EffectMystery, IsActive: true}
	_, err := ResolveTransformation(def, []Definition{def}, "", &stubRandom{})
	if !errors.Is(err, ErrNoTransformCandidate) {
		t.Fatalf("expected no candidate error, got %v", err)
	}
}
