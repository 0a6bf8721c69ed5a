package randsrc

import "testing"

func TestSource_SeededIsReproducible(t *testing.T) {
	a := New(42)
	b := New(42)

	for i := 0; i < 32; i++ {
		x, y := a.IntN(10), b.IntN(10)
		if x != y {
			t.Fatalf("draw %d differs: %d vs %d", i, x, y)
		}
		if x < 0 || x >= 10 {
			t.Fatalf("draw %d out of range: %d", i, x)
		}
	}
}
