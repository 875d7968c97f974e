package shuffle

import "testing"

func TestDeterministicForSameSeed(t *testing.T) {
	a := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	b := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	NewFromString("session-1").Shuffle(len(a), func(i, j int) { a[i], a[j] = a[j], a[i] })
	NewFromString("session-1").Shuffle(len(b), func(i, j int) { b[i], b[j] = b[j], b[i] })

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed diverged at %d: %v vs %v", i, a, b)
		}
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	b := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	NewFromString("session-1").Shuffle(len(a), func(i, j int) { a[i], a[j] = a[j], a[i] })
	NewFromString("session-2").Shuffle(len(b), func(i, j int) { b[i], b[j] = b[j], b[i] })

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("different seeds produced identical order: %v", a)
	}
}

func TestIntnBounds(t *testing.T) {
	r := New(42)
	for i := 0; i < 1000; i++ {
		v := r.Intn(7)
		if v < 0 || v >= 7 {
			t.Fatalf("Intn out of range: %d", v)
		}
	}
	if r.Intn(0) != 0 {
		t.Fatalf("Intn(0) should return 0")
	}
}

func TestFloat64Bounds(t *testing.T) {
	r := New(7)
	for i := 0; i < 1000; i++ {
		v := r.Float64()
		if v < 0 || v >= 1 {
			t.Fatalf("Float64 out of range: %f", v)
		}
	}
}
